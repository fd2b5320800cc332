package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "FinForge/internal/domain/repository"
)

func TestDecodeTrades(t *testing.T) {
	frame := []byte(`{"type":"trade","data":[{"s":"AAPL","p":175.5,"v":10,"t":1718370000000},{"s":"MSFT","p":420.1,"v":3,"t":1718370000500}]}`)
	qs := decodeTrades(frame)
	if len(qs) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(qs))
	}
	if qs[0].Symbol != "AAPL" || qs[0].Price != 175.5 || qs[0].Timestamp != 1718370000000 {
		t.Fatalf("unexpected quote %+v", qs[0])
	}
	if got := decodeTrades([]byte(`{"type":"ping"}`)); got != nil {
		t.Fatalf("ping frame should yield nothing, got %v", got)
	}
	if got := decodeTrades([]byte(`not json`)); got != nil {
		t.Fatalf("garbage should yield nothing, got %v", got)
	}
}

func TestRESTClientLatestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" || r.URL.Query().Get("token") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			_, _ = w.Write([]byte(`{"c":176.2,"d":0.8,"pc":175.4,"t":1718370000}`))
		default:
			_, _ = w.Write([]byte(`{"c":0,"d":null,"pc":0,"t":0}`))
		}
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL+"/", "k", time.Second)
	q, err := c.LatestQuote(context.Background(), " aapl ")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Symbol != "AAPL" || q.Price != 176.2 || q.PreviousClose != 175.4 || q.Timestamp != 1718370000000 {
		t.Fatalf("unexpected quote %+v", q)
	}

	if _, err := c.LatestQuote(context.Background(), "NOPE"); !errors.Is(err, drepo.ErrInstrumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	bad := NewRESTClient(srv.URL, "wrong", time.Second)
	if _, err := bad.LatestQuote(context.Background(), "AAPL"); err == nil {
		t.Fatalf("expected status error")
	}
}
