package features

import (
	"math"

	"FinForge/internal/domain/models"
)

// TradingDaysPerYear annualises daily-bar volatility.
const TradingDaysPerYear = 252.0

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func ComputeLogReturns(candles models.CandleSeries) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over the last window returns.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}

// Summarize returns series statistics, or nil for an empty series.
func Summarize(candles models.CandleSeries) *models.SeriesStats {
	if len(candles) == 0 {
		return nil
	}
	st := &models.SeriesStats{
		Bars: len(candles),
		High: candles[0].High,
		Low:  candles[0].Low,
	}
	for _, c := range candles[1:] {
		st.High = math.Max(st.High, c.High)
		st.Low = math.Min(st.Low, c.Low)
	}
	first := candles[0].Open
	last := candles[len(candles)-1].Close
	if first > 0 {
		st.ChangePct = (last - first) / first * 100
	}
	rets := ComputeLogReturns(candles)
	st.RealizedVolatility = RealizedVolatility(rets, len(rets), TradingDaysPerYear)
	return st
}
