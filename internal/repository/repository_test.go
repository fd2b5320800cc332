package repository

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"FinForge/internal/domain/models"
	domrepo "FinForge/internal/domain/repository"
)

type priceRecorder struct {
	last map[string]float64
}

func (p *priceRecorder) RecordGeneration(string, string) {}
func (p *priceRecorder) RecordError(string)              {}
func (p *priceRecorder) RecordLatency(string, float64)   {}
func (p *priceRecorder) RecordCache(string, bool)        {}
func (p *priceRecorder) RecordLastPrice(symbol string, price float64) {
	p.last[symbol] = price
}

func TestMemoryCatalogGetAndList(t *testing.T) {
	c := NewMemoryCatalog(DefaultInstruments(), nil)
	ctx := context.Background()

	inst, err := c.Get(ctx, " aapl ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if inst.Symbol != "AAPL" || inst.CurrentPrice != 175.43 {
		t.Fatalf("unexpected instrument %+v", inst)
	}
	if _, err := c.Get(ctx, "ZZZZ"); !errors.Is(err, domrepo.ErrInstrumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	list, _ := c.List(ctx)
	if len(list) != len(DefaultInstruments()) {
		t.Fatalf("list size %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Symbol >= list[i].Symbol {
			t.Fatalf("list not sorted: %s >= %s", list[i-1].Symbol, list[i].Symbol)
		}
	}
}

func TestMemoryCatalogUpsertKeepsBeta(t *testing.T) {
	c := NewMemoryCatalog(nil, nil)
	c.Upsert(models.InstrumentDescriptor{Symbol: "abc", CurrentPrice: 10, Beta: 0})
	c.Upsert(models.InstrumentDescriptor{Symbol: "  ", CurrentPrice: 10})
	inst, err := c.Get(context.Background(), "ABC")
	if err != nil || inst.Beta != 0 {
		t.Fatalf("beta 0 must be stored as given, got %+v (%v)", inst, err)
	}
	list, _ := c.List(context.Background())
	if len(list) != 1 {
		t.Fatalf("blank symbol should be skipped, got %d items", len(list))
	}
}

func TestMemoryCatalogApplyQuote(t *testing.T) {
	rec := &priceRecorder{last: map[string]float64{}}
	c := NewMemoryCatalog([]models.InstrumentDescriptor{
		{Symbol: "AAPL", CurrentPrice: 175, DayChange: 5, Beta: 1.2},
	}, rec)
	ctx := context.Background()

	if err := c.ApplyQuote(ctx, &models.Quote{Symbol: "aapl", Price: 180, Timestamp: 2000}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	inst, _ := c.Get(ctx, "AAPL")
	if inst.CurrentPrice != 180 || math.Abs(inst.DayChange-10) > 1e-9 {
		t.Fatalf("previous close should stay at 170, got %+v", inst)
	}
	if rec.last["AAPL"] != 180 {
		t.Fatalf("last price not recorded: %v", rec.last)
	}

	// older quote is ignored
	_ = c.ApplyQuote(ctx, &models.Quote{Symbol: "AAPL", Price: 1, Timestamp: 1000})
	inst, _ = c.Get(ctx, "AAPL")
	if inst.CurrentPrice != 180 {
		t.Fatalf("stale quote applied: %+v", inst)
	}

	// explicit previous close wins
	_ = c.ApplyQuote(ctx, &models.Quote{Symbol: "AAPL", Price: 181, PreviousClose: 179, Timestamp: 3000})
	inst, _ = c.Get(ctx, "AAPL")
	if math.Abs(inst.DayChange-2) > 1e-9 {
		t.Fatalf("day change=%v", inst.DayChange)
	}

	for _, q := range []*models.Quote{nil, {Symbol: "AAPL", Price: 0}, {Symbol: "AAPL", Price: math.NaN()}, {Symbol: "", Price: 3}} {
		if err := c.ApplyQuote(ctx, q); !errors.Is(err, ErrInvalidQuote) {
			t.Fatalf("expected invalid quote for %+v, got %v", q, err)
		}
	}
	if err := c.ApplyQuote(ctx, &models.Quote{Symbol: "NOPE", Price: 3}); !errors.Is(err, domrepo.ErrInstrumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type fakeScanner struct{ vals []any }

func (f fakeScanner) Scan(dest ...any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = f.vals[i].(string)
		case *float64:
			*p = f.vals[i].(float64)
		}
	}
	return nil
}

func TestScanInstrumentColumnOrder(t *testing.T) {
	inst, err := scanInstrument(fakeScanner{vals: []any{
		"MSFT", "Microsoft", 415.0, -1.5, 0.9, "technology", "US", 3e12, 2e7, 35.0,
	}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := models.InstrumentDescriptor{Symbol: "MSFT", Name: "Microsoft", CurrentPrice: 415, DayChange: -1.5, Beta: 0.9,
		Sector: "technology", Country: "US", MarketCap: 3e12, Volume: 2e7, PERatio: 35}
	if inst != want {
		t.Fatalf("got %+v want %+v", inst, want)
	}
	if args := insertArgs(want, fixedTime()); len(args) != 11 || args[0] != "MSFT" {
		t.Fatalf("unexpected insert args %v", args)
	}
}

type fakeProducer struct {
	topic string
	key   []byte
	value interface{}
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, key, value
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestKafkaForecastPublisherKeysBySymbol(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaForecastPublisher(fp, "finforge.forecasts")
	ev := &models.ForecastEvent{ID: "x", Kind: "predictions", Symbol: "TSLA"}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fp.topic != "finforge.forecasts" || string(fp.key) != "TSLA" || fp.value != ev {
		t.Fatalf("unexpected publish %q %q %v", fp.topic, fp.key, fp.value)
	}
	if err := (NoopPublisher{}).Publish(context.Background(), ev); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
}

func fixedTime() time.Time { return time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC) }

func TestKafkaQuoteForwarder(t *testing.T) {
	fp := &fakeProducer{}
	f := NewKafkaQuoteForwarder(fp, "finforge.quotes")
	q := &models.Quote{Symbol: "msft", Price: 420, Timestamp: 1}
	if err := f.ApplyQuote(context.Background(), q); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if string(fp.key) != "MSFT" || fp.value != q {
		t.Fatalf("unexpected forward %q %v", fp.key, fp.value)
	}
	if err := f.ApplyQuote(context.Background(), &models.Quote{Symbol: "MSFT"}); !errors.Is(err, ErrInvalidQuote) {
		t.Fatalf("expected invalid quote, got %v", err)
	}
}
