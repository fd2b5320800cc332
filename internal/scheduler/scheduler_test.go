package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"FinForge/pkg/cache"
)

type countingPrewarmer struct {
	calls atomic.Int32
	err   error
}

func (p *countingPrewarmer) Prewarm(_ context.Context, days int) (int, error) {
	p.calls.Add(1)
	return days, p.err
}

type countingRefresher struct{ calls atomic.Int32 }

func (r *countingRefresher) Refresh(context.Context) (int, error) {
	r.calls.Add(1)
	return 3, nil
}

func TestRunPrewarmOncePerDay(t *testing.T) {
	p := &countingPrewarmer{}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := New(Config{PrewarmDays: 30}, p, nil, mc, nil)

	if !s.RunPrewarm(context.Background()) {
		t.Fatalf("first prewarm should run")
	}
	if s.RunPrewarm(context.Background()) {
		t.Fatalf("second prewarm on the same day should be skipped")
	}
	if p.calls.Load() != 1 {
		t.Fatalf("calls=%d", p.calls.Load())
	}

	s.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	if !s.RunPrewarm(context.Background()) {
		t.Fatalf("prewarm should run on the next day")
	}
}

func TestRunPrewarmReleasesLockOnFailure(t *testing.T) {
	p := &countingPrewarmer{err: errors.New("boom")}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := New(Config{}, p, nil, mc, nil)

	s.RunPrewarm(context.Background())
	s.RunPrewarm(context.Background())
	if p.calls.Load() != 2 {
		t.Fatalf("a failed prewarm must be retried, calls=%d", p.calls.Load())
	}
}

func TestRegisterAll(t *testing.T) {
	s := New(Config{PrewarmSpec: "0 5 0 * * *", QuoteSpec: "*/1 * * * * *"}, &countingPrewarmer{}, &countingRefresher{}, nil, nil)
	if err := s.RegisterAll(); err != nil {
		t.Fatalf("register: %v", err)
	}
	if s.Jobs() != 2 {
		t.Fatalf("jobs=%d", s.Jobs())
	}

	noRefresh := New(Config{PrewarmSpec: "0 5 0 * * *", QuoteSpec: "*/1 * * * * *"}, &countingPrewarmer{}, nil, nil, nil)
	if err := noRefresh.RegisterAll(); err != nil || noRefresh.Jobs() != 1 {
		t.Fatalf("jobs=%d err=%v", noRefresh.Jobs(), err)
	}

	bad := New(Config{PrewarmSpec: "not a spec"}, &countingPrewarmer{}, nil, nil, nil)
	if err := bad.RegisterAll(); err == nil {
		t.Fatalf("expected an error for an invalid spec")
	}
}

func TestRefreshJobRuns(t *testing.T) {
	r := &countingRefresher{}
	s := New(Config{QuoteSpec: "* * * * * *"}, nil, r, nil, nil)
	if err := s.RegisterAll(); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.Start()

	deadline := time.Now().Add(3 * time.Second)
	for r.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if r.calls.Load() == 0 {
		t.Fatalf("refresh job never ran")
	}
}
