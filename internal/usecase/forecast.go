package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"FinForge/internal/domain/models"
	domrepo "FinForge/internal/domain/repository"
	domsvc "FinForge/internal/domain/service"
	"FinForge/internal/services/synth"
	"FinForge/pkg/cache"
	"FinForge/pkg/logger"
	"FinForge/pkg/util"
)

const (
	KindCandles     = "candles"
	KindPredictions = "predictions"
	KindNews        = "news"
)

// ForecastUseCase resolves instruments, derives seeds and memoizes engine output.
type ForecastUseCase struct {
	engine    domsvc.ForecastEngine
	catalog   domrepo.InstrumentProvider
	metrics   domrepo.Metrics
	cache     cache.Service
	ttl       time.Duration
	publisher domrepo.ForecastPublisher
	l         *logger.Logger
	now       func() time.Time
	maxDays   int
}

type ForecastOption func(*ForecastUseCase)

// WithCache enables memoization. A nil cache disables it.
func WithCache(c cache.Service, ttl time.Duration) ForecastOption {
	return func(uc *ForecastUseCase) {
		uc.cache = c
		if ttl > 0 {
			uc.ttl = ttl
		}
	}
}

func WithPublisher(p domrepo.ForecastPublisher) ForecastOption {
	return func(uc *ForecastUseCase) {
		if p != nil {
			uc.publisher = p
		}
	}
}

func WithLogger(l *logger.Logger) ForecastOption {
	return func(uc *ForecastUseCase) {
		if l != nil {
			uc.l = l
		}
	}
}

// WithClock sets the clock used for day-bucketed seeds and cache keys.
func WithClock(now func() time.Time) ForecastOption {
	return func(uc *ForecastUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

func WithMaxHorizonDays(n int) ForecastOption {
	return func(uc *ForecastUseCase) {
		if n > 0 {
			uc.maxDays = n
		}
	}
}

func NewForecastUseCase(engine domsvc.ForecastEngine, catalog domrepo.InstrumentProvider, metrics domrepo.Metrics, opts ...ForecastOption) *ForecastUseCase {
	uc := &ForecastUseCase{
		engine:    engine,
		catalog:   catalog,
		metrics:   metrics,
		ttl:       24 * time.Hour,
		publisher: noopPublisher{},
		l:         logger.Nop(),
		now:       time.Now,
		maxDays:   3650,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type CandlesParams struct {
	Symbol string
	Days   int
	Seed   *uint64
}

type CandlesResult struct {
	Instrument models.InstrumentDescriptor
	Seed       uint64
	Days       int
	Candles    models.CandleSeries
	Cached     bool
}

type PredictionsParams struct {
	Symbol     string
	Timeframes []models.Timeframe
	Seed       *uint64
}

// PredictionsResult carries the base seed; each timeframe draws from MixSeed(Seed, timeframe).
type PredictionsResult struct {
	Instrument  models.InstrumentDescriptor
	Seed        uint64
	Predictions map[models.Timeframe]models.PredictionRecord
	Cached      int
}

type NewsResult struct {
	Instrument models.InstrumentDescriptor
	News       []models.NewsImpactRecord
}

// ParseTimeframes normalises raw labels, drops duplicates and keeps order.
// An empty input means every timeframe.
func ParseTimeframes(raw []string) ([]models.Timeframe, error) {
	if len(raw) == 0 {
		return models.AllTimeframes(), nil
	}
	out := make([]models.Timeframe, 0, len(raw))
	seen := make(map[models.Timeframe]bool, len(raw))
	for _, r := range raw {
		tf := models.NormalizeTimeframe(r)
		if !models.IsValidTimeframe(tf) {
			return nil, fmt.Errorf("%w: %q", synth.ErrUnsupportedTimeframe, r)
		}
		if seen[tf] {
			continue
		}
		seen[tf] = true
		out = append(out, tf)
	}
	return out, nil
}

// Instruments lists the catalog.
func (uc *ForecastUseCase) Instruments(ctx context.Context) ([]models.InstrumentDescriptor, error) {
	return uc.catalog.List(ctx)
}

func (uc *ForecastUseCase) resolve(ctx context.Context, symbol string) (models.InstrumentDescriptor, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return models.InstrumentDescriptor{}, fmt.Errorf("%w: symbol is required", synth.ErrInvalidArgument)
	}
	return uc.catalog.Get(ctx, symbol)
}

func (uc *ForecastUseCase) Candles(ctx context.Context, p CandlesParams) (*CandlesResult, error) {
	inst, err := uc.resolve(ctx, p.Symbol)
	if err != nil {
		return nil, err
	}
	return uc.CandlesFor(ctx, inst, p.Days, p.Seed)
}

// CandlesFor generates (or loads) a series for a caller-supplied instrument.
func (uc *ForecastUseCase) CandlesFor(ctx context.Context, inst models.InstrumentDescriptor, days int, seed *uint64) (*CandlesResult, error) {
	start := time.Now()
	if err := synth.ValidateInstrument(inst); err != nil {
		uc.metrics.RecordError(KindCandles)
		return nil, err
	}
	if days < 0 || days > uc.maxDays {
		uc.metrics.RecordError(KindCandles)
		return nil, fmt.Errorf("%w: days must be within [0, %d], got %d", synth.ErrInvalidArgument, uc.maxDays, days)
	}

	now := uc.now()
	s := uc.seed(seed, inst.Symbol, KindCandles, now)
	key := cache.GenerateKeyWithParams("forecast", KindCandles, strings.ToUpper(inst.Symbol), days, util.DayKey(now), s, fingerprint(inst))

	series, hit, err := cache.GetOrSet(ctx, uc.cache, key, uc.ttlAt(now), func() (models.CandleSeries, error) {
		return uc.engine.Candles(ctx, inst, days, synth.NewRand(s))
	})
	if err != nil {
		uc.metrics.RecordError(KindCandles)
		return nil, err
	}
	uc.recordCache(KindCandles, hit)
	if !hit {
		uc.metrics.RecordGeneration(KindCandles, inst.Symbol)
		uc.publish(ctx, &models.ForecastEvent{Kind: KindCandles, Symbol: inst.Symbol, Seed: s, Day: util.DayKey(now), Bars: len(series)})
	}
	uc.metrics.RecordLatency(KindCandles, time.Since(start).Seconds())

	return &CandlesResult{Instrument: inst, Seed: s, Days: days, Candles: series, Cached: hit}, nil
}

func (uc *ForecastUseCase) Predictions(ctx context.Context, p PredictionsParams) (*PredictionsResult, error) {
	inst, err := uc.resolve(ctx, p.Symbol)
	if err != nil {
		return nil, err
	}
	return uc.PredictionsFor(ctx, inst, p.Timeframes, p.Seed)
}

// PredictionsFor predicts each timeframe from its own seeded stream so every
// timeframe is cached on its own key.
func (uc *ForecastUseCase) PredictionsFor(ctx context.Context, inst models.InstrumentDescriptor, timeframes []models.Timeframe, seed *uint64) (*PredictionsResult, error) {
	start := time.Now()
	if err := synth.ValidateInstrument(inst); err != nil {
		uc.metrics.RecordError(KindPredictions)
		return nil, err
	}
	labels := make([]string, len(timeframes))
	for i, tf := range timeframes {
		labels[i] = string(tf)
	}
	tfs, err := ParseTimeframes(labels)
	if err != nil {
		uc.metrics.RecordError(KindPredictions)
		return nil, err
	}

	now := uc.now()
	base := uc.seed(seed, inst.Symbol, KindPredictions, now)
	day := util.DayKey(now)
	fp := fingerprint(inst)
	keys := make(map[models.Timeframe]string, len(tfs))
	keyList := make([]string, 0, len(tfs))
	for _, tf := range tfs {
		k := cache.GenerateKeyWithParams("forecast", KindPredictions, strings.ToUpper(inst.Symbol), tf, day, base, fp)
		keys[tf] = k
		keyList = append(keyList, k)
	}

	cached := map[string]models.PredictionRecord{}
	if uc.cache != nil {
		got, err := cache.MGetTyped[models.PredictionRecord](ctx, uc.cache, keyList...)
		if err != nil {
			uc.l.Ctx(ctx).Warn("prediction cache read failed", logger.String("symbol", inst.Symbol), logger.Error(err))
		} else {
			cached = got
		}
	}

	out := make(map[models.Timeframe]models.PredictionRecord, len(tfs))
	fresh := make(map[models.Timeframe]models.PredictionRecord)
	toStore := make(map[string]interface{})
	for _, tf := range tfs {
		if rec, ok := cached[keys[tf]]; ok {
			out[tf] = rec
			uc.recordCache(KindPredictions, true)
			continue
		}
		uc.recordCache(KindPredictions, false)
		recs, err := uc.engine.Predict(ctx, inst, []models.Timeframe{tf}, synth.NewRand(synth.MixSeed(base, string(tf))))
		if err != nil {
			uc.metrics.RecordError(KindPredictions)
			return nil, err
		}
		rec := recs[tf]
		out[tf] = rec
		fresh[tf] = rec
		toStore[keys[tf]] = rec
	}

	if len(fresh) > 0 {
		if uc.cache != nil {
			if err := uc.cache.MSet(ctx, toStore, uc.ttlAt(now)); err != nil {
				uc.l.Ctx(ctx).Warn("prediction cache write failed", logger.String("symbol", inst.Symbol), logger.Error(err))
			}
		}
		uc.metrics.RecordGeneration(KindPredictions, inst.Symbol)
		uc.publish(ctx, &models.ForecastEvent{Kind: KindPredictions, Symbol: inst.Symbol, Seed: base, Day: day, Predictions: fresh})
	}
	uc.metrics.RecordLatency(KindPredictions, time.Since(start).Seconds())

	return &PredictionsResult{Instrument: inst, Seed: base, Predictions: out, Cached: len(tfs) - len(fresh)}, nil
}

func (uc *ForecastUseCase) News(ctx context.Context, symbol string) (*NewsResult, error) {
	inst, err := uc.resolve(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return uc.NewsFor(ctx, inst)
}

// NewsFor is not cached; the templates are deterministic per day.
func (uc *ForecastUseCase) NewsFor(ctx context.Context, inst models.InstrumentDescriptor) (*NewsResult, error) {
	news, err := uc.engine.News(ctx, inst)
	if err != nil {
		uc.metrics.RecordError(KindNews)
		return nil, err
	}
	uc.metrics.RecordGeneration(KindNews, inst.Symbol)
	return &NewsResult{Instrument: inst, News: news}, nil
}

// Prewarm computes and caches the day's default candles and predictions for every
// catalog instrument. It returns the number of instruments warmed.
func (uc *ForecastUseCase) Prewarm(ctx context.Context, days int) (int, error) {
	insts, err := uc.catalog.List(ctx)
	if err != nil {
		return 0, err
	}
	warmed := 0
	for _, inst := range insts {
		if ctx.Err() != nil {
			return warmed, ctx.Err()
		}
		if err := uc.prewarmOne(ctx, inst, days); err != nil {
			uc.l.Warn("prewarm failed", logger.String("symbol", inst.Symbol), logger.Error(err))
			continue
		}
		warmed++
	}
	return warmed, nil
}

// PrewarmSymbol warms a single instrument by symbol.
func (uc *ForecastUseCase) PrewarmSymbol(ctx context.Context, symbol string, days int) error {
	inst, err := uc.resolve(ctx, symbol)
	if err != nil {
		return err
	}
	return uc.prewarmOne(ctx, inst, days)
}

func (uc *ForecastUseCase) prewarmOne(ctx context.Context, inst models.InstrumentDescriptor, days int) error {
	if _, err := uc.CandlesFor(ctx, inst, days, nil); err != nil {
		return fmt.Errorf("candles: %w", err)
	}
	if _, err := uc.PredictionsFor(ctx, inst, nil, nil); err != nil {
		return fmt.Errorf("predictions: %w", err)
	}
	return nil
}

// seed returns the explicit seed, or one stable for the symbol and kind within the day.
func (uc *ForecastUseCase) seed(explicit *uint64, symbol, kind string, now time.Time) uint64 {
	if explicit != nil {
		return *explicit
	}
	return synth.SeedFor(symbol, kind, now)
}

// ttlAt bounds the entry lifetime by the end of the UTC day its key belongs to.
func (uc *ForecastUseCase) ttlAt(now time.Time) time.Duration {
	if rest := util.UntilNextDay(now); rest > 0 && rest < uc.ttl {
		return rest
	}
	return uc.ttl
}

func (uc *ForecastUseCase) recordCache(kind string, hit bool) {
	if uc.cache != nil {
		uc.metrics.RecordCache(kind, hit)
	}
}

func (uc *ForecastUseCase) publish(ctx context.Context, ev *models.ForecastEvent) {
	ev.ID = uuid.NewString()
	ev.CreatedAt = uc.now().UTC()
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.metrics.RecordError("publish")
		uc.l.Ctx(ctx).Warn("forecast event publish failed",
			logger.String("symbol", ev.Symbol),
			logger.String("kind", ev.Kind),
			logger.Error(err))
	}
}

// fingerprint folds every generator input of the descriptor into the key, so a
// moved price or a caller-supplied descriptor never reads another's entry.
func fingerprint(inst models.InstrumentDescriptor) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return cache.HashKey(strings.Join([]string{
		f(inst.CurrentPrice), f(inst.DayChange), f(inst.Beta), strings.ToLower(inst.Sector),
	}, "|"))
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *models.ForecastEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
