package synthobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"FinForge/internal/domain/models"
	domsvc "FinForge/internal/domain/service"
	"FinForge/pkg/logger"
	"FinForge/pkg/trace"
)

type observableEngine struct {
	engine domsvc.ForecastEngine
	l      *logger.Logger
}

var _ domsvc.ForecastEngine = (*observableEngine)(nil)

// Wrap adds a span and a debug/error log line around every engine call.
func Wrap(eng domsvc.ForecastEngine, l *logger.Logger) domsvc.ForecastEngine {
	if l == nil {
		l = logger.Nop()
	}
	return &observableEngine{engine: eng, l: l}
}

func (o *observableEngine) Candles(ctx context.Context, inst models.InstrumentDescriptor, horizonDays int, rng domsvc.Rand) (models.CandleSeries, error) {
	ctx, span := trace.StartSpan(ctx, "synth.Candles")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", inst.Symbol), attribute.Int("horizon_days", horizonDays))
	start := time.Now()

	series, err := o.engine.Candles(ctx, inst, horizonDays, rng)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.l.Ctx(ctx).Error("candle generation failed",
			logger.String("symbol", inst.Symbol),
			logger.Int("horizon_days", horizonDays),
			logger.Error(err))
		return nil, err
	}
	o.l.Ctx(ctx).Debug("candles generated",
		logger.String("symbol", inst.Symbol),
		logger.Int("bars", len(series)),
		logger.Duration("duration_ms", time.Since(start)))
	return series, nil
}

func (o *observableEngine) Predict(ctx context.Context, inst models.InstrumentDescriptor, timeframes []models.Timeframe, rng domsvc.Rand) (map[models.Timeframe]models.PredictionRecord, error) {
	ctx, span := trace.StartSpan(ctx, "synth.Predict")
	defer span.End()
	tfs := make([]string, len(timeframes))
	for i, tf := range timeframes {
		tfs[i] = string(tf)
	}
	span.SetAttributes(attribute.String("symbol", inst.Symbol), attribute.StringSlice("timeframes", tfs))
	start := time.Now()

	recs, err := o.engine.Predict(ctx, inst, timeframes, rng)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.l.Ctx(ctx).Error("prediction failed",
			logger.String("symbol", inst.Symbol),
			logger.Strings("timeframes", tfs),
			logger.Error(err))
		return nil, err
	}
	o.l.Ctx(ctx).Debug("predictions generated",
		logger.String("symbol", inst.Symbol),
		logger.Int("count", len(recs)),
		logger.Duration("duration_ms", time.Since(start)))
	return recs, nil
}

func (o *observableEngine) News(ctx context.Context, inst models.InstrumentDescriptor) ([]models.NewsImpactRecord, error) {
	ctx, span := trace.StartSpan(ctx, "synth.News")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", inst.Symbol))

	news, err := o.engine.News(ctx, inst)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.l.Ctx(ctx).Error("news generation failed", logger.String("symbol", inst.Symbol), logger.Error(err))
		return nil, err
	}
	return news, nil
}
