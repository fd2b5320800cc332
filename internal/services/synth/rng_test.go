package synth

import (
	"testing"
	"time"
)

func TestSeedFor(t *testing.T) {
	day := time.Date(2024, 6, 14, 1, 0, 0, 0, time.UTC)
	later := time.Date(2024, 6, 14, 23, 59, 0, 0, time.UTC)
	if SeedFor("aapl", "1M", day) != SeedFor("AAPL", "1M", later) {
		t.Fatalf("seed must be stable within a day and case-insensitive on symbol")
	}
	if SeedFor("AAPL", "1M", day) == SeedFor("AAPL", "1M", day.AddDate(0, 0, 1)) {
		t.Fatalf("seed should change with the day")
	}
	if SeedFor("AAPL", "1M", day) == SeedFor("AAPL", "1W", day) {
		t.Fatalf("seed should change with the kind")
	}
	if MixSeed(42, "1D") == MixSeed(42, "1W") || MixSeed(42, "1D") != MixSeed(42, "1D") {
		t.Fatalf("MixSeed must be deterministic and kind-sensitive")
	}
}

func TestNewRandReproducible(t *testing.T) {
	a, b := NewRand(99), NewRand(99)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("streams diverged at %d", i)
		}
	}
}
