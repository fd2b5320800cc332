package usecase

import (
	"context"
	"time"

	"FinForge/internal/domain/models"
	"FinForge/internal/services/features"
	"FinForge/internal/services/synth"
)

// DashboardUseCase assembles candles, predictions and news for one instrument.
type DashboardUseCase struct {
	forecast *ForecastUseCase
	timeout  time.Duration
}

func NewDashboardUseCase(forecast *ForecastUseCase, timeout time.Duration) *DashboardUseCase {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &DashboardUseCase{forecast: forecast, timeout: timeout}
}

type DashboardParams struct {
	Days       int
	Timeframes []models.Timeframe
	Seed       *uint64
}

// Get resolves symbol from the catalog; an unknown symbol fails the whole call.
func (uc *DashboardUseCase) Get(ctx context.Context, symbol string, p DashboardParams) (*models.Dashboard, error) {
	inst, err := uc.forecast.resolve(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return uc.GetFor(ctx, inst, p)
}

// GetFor runs the three parts concurrently. A failing or timed-out part is reported in
// Errors while the others are still returned; an invalid instrument fails the call.
func (uc *DashboardUseCase) GetFor(ctx context.Context, inst models.InstrumentDescriptor, p DashboardParams) (*models.Dashboard, error) {
	if err := synth.ValidateInstrument(inst); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.Dashboard{
		Instrument:  inst,
		GeneratedAt: uc.forecast.now().UTC(),
		Errors:      map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)

	go func() {
		v, err := uc.forecast.CandlesFor(ctx, inst, p.Days, p.Seed)
		ch <- item{KindCandles, v, err}
	}()
	go func() {
		v, err := uc.forecast.PredictionsFor(ctx, inst, p.Timeframes, p.Seed)
		ch <- item{KindPredictions, v, err}
	}()
	go func() {
		v, err := uc.forecast.NewsFor(ctx, inst)
		ch <- item{KindNews, v, err}
	}()

	pending := map[string]bool{KindCandles: true, KindPredictions: true, KindNews: true}
	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			for name := range pending {
				res.Errors[name] = ctx.Err().Error()
			}
			pending = nil
		case it := <-ch:
			delete(pending, it.name)
			if it.err != nil {
				res.Errors[it.name] = it.err.Error()
				continue
			}
			switch v := it.val.(type) {
			case *CandlesResult:
				res.Candles = v.Candles
				res.Seed = v.Seed
				res.Stats = features.Summarize(v.Candles)
			case *PredictionsResult:
				res.Predictions = v.Predictions
				res.PredictionSeed = v.Seed
			case *NewsResult:
				res.News = v.News
			}
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
