package synth

import (
	"context"
	"time"

	"FinForge/internal/domain/models"
	domsvc "FinForge/internal/domain/service"
)

// Engine bundles the generators behind the ForecastEngine port.
// The context is accepted for the port's sake; generation never blocks.
type Engine struct {
	candles   *CandleGenerator
	predictor *Predictor
	news      *NewsSynthesizer
}

var _ domsvc.ForecastEngine = (*Engine)(nil)

// NewEngine builds an engine whose generators share one clock.
func NewEngine(now func() time.Time, candleOpts ...CandleOption) *Engine {
	if now == nil {
		now = time.Now
	}
	opts := append([]CandleOption{WithCandleClock(now)}, candleOpts...)
	return &Engine{
		candles:   NewCandleGenerator(opts...),
		predictor: NewPredictor(WithPredictorClock(now)),
		news:      NewNewsSynthesizer(WithNewsClock(now)),
	}
}

func (e *Engine) Candles(_ context.Context, inst models.InstrumentDescriptor, horizonDays int, rng domsvc.Rand) (models.CandleSeries, error) {
	return e.candles.Generate(inst, horizonDays, rng)
}

func (e *Engine) Predict(_ context.Context, inst models.InstrumentDescriptor, timeframes []models.Timeframe, rng domsvc.Rand) (map[models.Timeframe]models.PredictionRecord, error) {
	return e.predictor.Predict(inst, timeframes, rng)
}

func (e *Engine) News(_ context.Context, inst models.InstrumentDescriptor) ([]models.NewsImpactRecord, error) {
	return e.news.Generate(inst)
}
