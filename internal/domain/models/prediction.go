package models

import (
	"encoding/json"
	"time"
)

type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Signals are heuristic strength scores in [60, 100).
type Signals struct {
	Technical   int `json:"technical"`
	Fundamental int `json:"fundamental"`
	Sentiment   int `json:"sentiment"`
	Macro       int `json:"macro"`
}

// SyntheticMetric carries a fabricated number. It is never the output of an
// evaluated model and always serialises with "synthetic": true.
type SyntheticMetric[T any] struct {
	value T
}

// Synthetic wraps v as a synthetic metric.
func Synthetic[T any](v T) SyntheticMetric[T] {
	return SyntheticMetric[T]{value: v}
}

func (m SyntheticMetric[T]) Value() T { return m.value }

func (m SyntheticMetric[T]) IsSynthetic() bool { return true }

type syntheticWire[T any] struct {
	Value     T    `json:"value"`
	Synthetic bool `json:"synthetic"`
}

func (m SyntheticMetric[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(syntheticWire[T]{Value: m.value, Synthetic: true})
}

func (m *SyntheticMetric[T]) UnmarshalJSON(b []byte) error {
	var w syntheticWire[T]
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	m.value = w.Value
	return nil
}

// PredictionRecord is one fabricated forecast for a single horizon.
type PredictionRecord struct {
	Timeframe          Timeframe                `json:"timeframe"`
	CurrentPrice       float64                  `json:"currentPrice"`
	TargetPrice        float64                  `json:"targetPrice"`
	PotentialReturnPct float64                  `json:"potentialReturnPct"`
	Direction          Direction                `json:"direction"`
	Confidence         SyntheticMetric[float64] `json:"confidence"`
	RiskLevel          RiskLevel                `json:"riskLevel"`
	Signals            Signals                  `json:"signals"`
	Reasoning          []string                 `json:"reasoning"`
	Accuracy           SyntheticMetric[float64] `json:"accuracy"`
	ModelID            string                   `json:"modelId"`
	GeneratedAt        time.Time                `json:"generatedAt"`
}
