package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"FinForge/internal/repository"
)

type queuePublisher struct {
	mu     sync.Mutex
	failOn string
	msgs   []PrewarmPayload
}

func (q *queuePublisher) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	if msgType != PrewarmJobType {
		return errors.New("unexpected type " + msgType)
	}
	p := payload.(PrewarmPayload)
	if p.Symbol == q.failOn {
		return errors.New("redis down")
	}
	q.mu.Lock()
	q.msgs = append(q.msgs, p)
	q.mu.Unlock()
	return nil
}

func TestPrewarmJobWarmsSymbol(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t, true)
	ctx := context.Background()
	job := NewPrewarmJob(uc)

	if err := job.Handle(ctx, json.RawMessage(`{"symbol":"msft","days":5}`)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	res, err := uc.Candles(ctx, CandlesParams{Symbol: "MSFT", Days: 5})
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	if !res.Cached || len(res.Candles) != 6 {
		t.Fatalf("expected warmed candles, cached=%v bars=%d", res.Cached, len(res.Candles))
	}
	preds, err := uc.Predictions(ctx, PredictionsParams{Symbol: "MSFT"})
	if err != nil || preds.Cached != len(preds.Predictions) {
		t.Fatalf("expected warmed predictions: %v", err)
	}
}

func TestPrewarmJobRejectsBadPayloads(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t, false)
	job := NewPrewarmJob(uc)
	ctx := context.Background()

	if err := job.Handle(ctx, json.RawMessage(`{"days":5}`)); err == nil {
		t.Fatalf("missing symbol must fail")
	}
	if err := job.Handle(ctx, json.RawMessage(`{"symbol":"NOPE","days":5}`)); err == nil {
		t.Fatalf("unknown symbol must fail")
	}
	if err := job.Handle(ctx, 42); err == nil {
		t.Fatalf("unsupported payload type must fail")
	}
	if err := job.Handle(ctx, PrewarmPayload{Symbol: "AAPL", Days: 3}); err != nil {
		t.Fatalf("in-process payload: %v", err)
	}
}

func TestPrewarmDispatcherEnqueuesPerInstrument(t *testing.T) {
	catalog := repository.NewMemoryCatalog(repository.DefaultInstruments(), newCountingMetrics())
	pub := &queuePublisher{failOn: "TSLA"}
	d := NewPrewarmDispatcher(catalog, pub, nil)

	insts, _ := catalog.List(context.Background())
	n, err := d.Prewarm(context.Background(), 30)
	if err != nil {
		t.Fatalf("prewarm: %v", err)
	}
	if n != len(insts)-1 || len(pub.msgs) != n {
		t.Fatalf("expected %d jobs, got n=%d msgs=%d", len(insts)-1, n, len(pub.msgs))
	}
	for _, m := range pub.msgs {
		if m.Days != 30 || m.Symbol == "TSLA" {
			t.Fatalf("unexpected payload %+v", m)
		}
	}
}

func TestPrewarmDispatcherAllFailed(t *testing.T) {
	catalog := repository.NewMemoryCatalog(repository.DefaultInstruments()[:1], newCountingMetrics())
	first := repository.DefaultInstruments()[0].Symbol
	d := NewPrewarmDispatcher(catalog, &queuePublisher{failOn: first}, nil)
	if _, err := d.Prewarm(context.Background(), 30); err == nil {
		t.Fatalf("expected error when nothing was enqueued")
	}
}
