package models

import "time"

// SeriesStats summarises a generated candle series.
type SeriesStats struct {
	Bars               int
	ChangePct          float64
	RealizedVolatility float64 // annualised, daily bars
	High               float64
	Low                float64
}

// Dashboard is a consolidated synthetic view of one instrument.
// Errors holds per-part failures; the other parts are still returned.
// Seed replays the candles and PredictionSeed the predictions; they differ
// when no explicit seed was given.
type Dashboard struct {
	Instrument     InstrumentDescriptor
	Seed           uint64
	PredictionSeed uint64
	Candles        CandleSeries
	Stats          *SeriesStats
	Predictions    map[Timeframe]PredictionRecord
	News           []NewsImpactRecord
	GeneratedAt    time.Time
	Errors         map[string]string
}

// ForecastEvent is published after a fresh (uncached) generation.
type ForecastEvent struct {
	ID          string                         `json:"id"`
	Kind        string                         `json:"kind"`
	Symbol      string                         `json:"symbol"`
	Seed        uint64                         `json:"seed"`
	Day         string                         `json:"day"`
	Bars        int                            `json:"bars,omitempty"`
	Predictions map[Timeframe]PredictionRecord `json:"predictions,omitempty"`
	CreatedAt   time.Time                      `json:"createdAt"`
}
