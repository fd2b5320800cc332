package models

import "strings"

// Timeframe is a prediction horizon.
type Timeframe string

const (
	TF1D Timeframe = "1D"
	TF1W Timeframe = "1W"
	TF1M Timeframe = "1M"
	TF3M Timeframe = "3M"
	TF6M Timeframe = "6M"
	TF1Y Timeframe = "1Y"
)

var allTimeframes = []Timeframe{TF1D, TF1W, TF1M, TF3M, TF6M, TF1Y}

// AllTimeframes returns every supported horizon, shortest first.
func AllTimeframes() []Timeframe {
	out := make([]Timeframe, len(allTimeframes))
	copy(out, allTimeframes)
	return out
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1D, TF1W, TF1M, TF3M, TF6M, TF1Y:
		return true
	default:
		return false
	}
}

// NormalizeTimeframe upper-cases raw input ("1d" -> "1D"). The result may still be invalid.
func NormalizeTimeframe(s string) Timeframe {
	return Timeframe(strings.ToUpper(strings.TrimSpace(s)))
}

// Label is the human form used in reasoning text.
func (tf Timeframe) Label() string {
	switch tf {
	case TF1D:
		return "1-day"
	case TF1W:
		return "1-week"
	case TF1M:
		return "1-month"
	case TF3M:
		return "3-month"
	case TF6M:
		return "6-month"
	case TF1Y:
		return "1-year"
	default:
		return string(tf)
	}
}
