package ratelimit

import (
	"testing"
	"time"
)

func TestAllowRefills(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(2, 1, WithClock(func() time.Time { return now }))

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst of 2 should pass")
	}
	if l.Allow("a") {
		t.Fatalf("third call should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("keys are independent")
	}
	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Fatalf("one token should be back after 1s")
	}
	if l.Allow("a") {
		t.Fatalf("only one token refilled")
	}
}

func TestSweep(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(1, 1, WithClock(func() time.Time { return now }))
	l.Allow("a")
	now = now.Add(10 * time.Minute)
	l.Allow("b")
	if n := l.Sweep(5 * time.Minute); n != 1 {
		t.Fatalf("expected 1 swept, got %d", n)
	}
}
