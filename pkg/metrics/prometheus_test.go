package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordGeneration("candles", "AAPL")
	r.RecordGeneration("candles", "AAPL")
	r.RecordCache("candles", true)
	r.RecordCache("candles", false)
	r.RecordLastPrice("AAPL", 175.43)
	r.RecordError("publish")

	if v := testutil.ToFloat64(r.generations.WithLabelValues("candles", "AAPL")); v != 2 {
		t.Fatalf("expected 2 generations, got %v", v)
	}
	if v := testutil.ToFloat64(r.cache.WithLabelValues("candles", "hit")); v != 1 {
		t.Fatalf("expected 1 hit, got %v", v)
	}
	if v := testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")); v != 175.43 {
		t.Fatalf("unexpected last price %v", v)
	}
	if n := testutil.CollectAndCount(r.errorsTotal); n != 1 {
		t.Fatalf("expected one error series, got %d", n)
	}
}
