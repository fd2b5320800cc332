package usecase

import (
	"context"
	"fmt"

	domrepo "FinForge/internal/domain/repository"
	"FinForge/pkg/logger"
	"FinForge/pkg/queue"
)

const PrewarmJobType = "forecast.prewarm"

type PrewarmPayload struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
}

// PrewarmJob warms one symbol per queue message.
type PrewarmJob struct {
	uc *ForecastUseCase
}

var _ queue.Job = (*PrewarmJob)(nil)

func NewPrewarmJob(uc *ForecastUseCase) *PrewarmJob {
	return &PrewarmJob{uc: uc}
}

func (j *PrewarmJob) Name() string { return "prewarm_symbol" }
func (j *PrewarmJob) Type() string { return PrewarmJobType }

func (j *PrewarmJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[PrewarmPayload](payload)
	if err != nil {
		return err
	}
	if p.Symbol == "" {
		return fmt.Errorf("prewarm payload without symbol")
	}
	return j.uc.PrewarmSymbol(ctx, p.Symbol, p.Days)
}

// PrewarmDispatcher enqueues one PrewarmJob per catalog instrument so replicas
// sharing the queue split the work.
type PrewarmDispatcher struct {
	catalog domrepo.InstrumentProvider
	pub     queue.Publisher
	l       *logger.Logger
}

func NewPrewarmDispatcher(catalog domrepo.InstrumentProvider, pub queue.Publisher, l *logger.Logger) *PrewarmDispatcher {
	if l == nil {
		l = logger.Nop()
	}
	return &PrewarmDispatcher{catalog: catalog, pub: pub, l: l.With(logger.String("component", "prewarm_dispatcher"))}
}

// Prewarm returns the number of jobs enqueued.
func (d *PrewarmDispatcher) Prewarm(ctx context.Context, days int) (int, error) {
	insts, err := d.catalog.List(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, inst := range insts {
		if err := d.pub.PublishMessage(ctx, PrewarmJobType, PrewarmPayload{Symbol: inst.Symbol, Days: days}); err != nil {
			d.l.Error("enqueue prewarm failed", logger.String("symbol", inst.Symbol), logger.Error(err))
			continue
		}
		queued++
	}
	if queued == 0 && len(insts) > 0 {
		return 0, fmt.Errorf("no prewarm jobs enqueued")
	}
	return queued, nil
}
