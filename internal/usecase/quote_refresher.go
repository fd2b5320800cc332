package usecase

import (
	"context"

	domrepo "FinForge/internal/domain/repository"
	"FinForge/pkg/logger"
)

// QuoteRefresher polls a QuoteSource for every catalog symbol and applies the result.
type QuoteRefresher struct {
	catalog domrepo.InstrumentProvider
	source  domrepo.QuoteSource
	sink    domrepo.QuoteSink
	metrics domrepo.Metrics
	l       *logger.Logger
}

func NewQuoteRefresher(catalog domrepo.InstrumentProvider, source domrepo.QuoteSource, sink domrepo.QuoteSink, metrics domrepo.Metrics, l *logger.Logger) *QuoteRefresher {
	if l == nil {
		l = logger.Nop()
	}
	return &QuoteRefresher{catalog: catalog, source: source, sink: sink, metrics: metrics, l: l}
}

// Refresh returns how many symbols were updated. Per-symbol failures are logged and skipped.
func (r *QuoteRefresher) Refresh(ctx context.Context) (int, error) {
	insts, err := r.catalog.List(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, inst := range insts {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		q, err := r.source.LatestQuote(ctx, inst.Symbol)
		if err != nil {
			r.metrics.RecordError("quote_refresh")
			r.l.Warn("quote refresh failed", logger.String("symbol", inst.Symbol), logger.Error(err))
			continue
		}
		if err := r.sink.ApplyQuote(ctx, q); err != nil {
			r.metrics.RecordError("quote_apply")
			r.l.Warn("quote apply failed", logger.String("symbol", inst.Symbol), logger.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}
