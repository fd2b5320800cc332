package service

import (
	"context"

	"FinForge/internal/domain/models"
)

// Rand is the random source threaded through every generator call.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// ForecastEngine fabricates candles, predictions and news for an instrument.
// Implementations are pure: identical inputs and rng state give identical output.
type ForecastEngine interface {
	Candles(ctx context.Context, inst models.InstrumentDescriptor, horizonDays int, rng Rand) (models.CandleSeries, error)
	Predict(ctx context.Context, inst models.InstrumentDescriptor, timeframes []models.Timeframe, rng Rand) (map[models.Timeframe]models.PredictionRecord, error)
	News(ctx context.Context, inst models.InstrumentDescriptor) ([]models.NewsImpactRecord, error)
}
