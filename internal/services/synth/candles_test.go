package synth

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"FinForge/internal/domain/models"
)

var fixedNow = time.Date(2024, 6, 14, 15, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func aapl() models.InstrumentDescriptor {
	return models.InstrumentDescriptor{
		Symbol:       "AAPL",
		Name:         "Apple Inc.",
		CurrentPrice: 175.43,
		DayChange:    2.15,
		Beta:         1.2,
		Sector:       "technology",
		Country:      "US",
	}
}

func checkSeries(t *testing.T, s models.CandleSeries, price float64) {
	t.Helper()
	for i, c := range s {
		if c.Low > math.Min(c.Open, c.Close) {
			t.Fatalf("candle %d: low %v above body %v/%v", i, c.Low, c.Open, c.Close)
		}
		if c.High < math.Max(c.Open, c.Close) {
			t.Fatalf("candle %d: high %v below body %v/%v", i, c.High, c.Open, c.Close)
		}
		if c.Volume <= 0 {
			t.Fatalf("candle %d: volume %v", i, c.Volume)
		}
		if c.Open < PriceEpsilon || c.Low <= 0 {
			t.Fatalf("candle %d: non-positive price %+v", i, c)
		}
		if i == 0 {
			continue
		}
		if s[i].Open != s[i-1].Close {
			t.Fatalf("candle %d: open %v != prev close %v", i, s[i].Open, s[i-1].Close)
		}
		if d := s[i].Timestamp.Sub(s[i-1].Timestamp); d != 24*time.Hour {
			t.Fatalf("candle %d: spacing %v", i, d)
		}
	}
	last, ok := s.Last()
	if !ok || last.Close != price {
		t.Fatalf("last close %v, want %v", last.Close, price)
	}
}

func TestGenerateCandlesInvariants(t *testing.T) {
	g := NewCandleGenerator(WithCandleClock(fixedClock))
	for seed := uint64(0); seed < 50; seed++ {
		for _, days := range []int{0, 1, 7, 30, 90} {
			s, err := g.Generate(aapl(), days, NewRand(seed))
			if err != nil {
				t.Fatalf("seed %d days %d: %v", seed, days, err)
			}
			if len(s) != days+1 {
				t.Fatalf("expected %d candles, got %d", days+1, len(s))
			}
			checkSeries(t, s, 175.43)
		}
	}
}

// 30 days back from a price of 100 gives 31 anchored candles.
func TestGenerateCandlesThirtyDays(t *testing.T) {
	inst := models.InstrumentDescriptor{Symbol: "XYZ", CurrentPrice: 100, DayChange: 1.5, Beta: 1}
	g := NewCandleGenerator(WithCandleClock(fixedClock))
	s, err := g.Generate(inst, 30, NewRand(7))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(s) != 31 {
		t.Fatalf("expected 31 candles, got %d", len(s))
	}
	checkSeries(t, s, 100)
	if s[0].Open != 98.5 {
		t.Fatalf("walk should start at previous close 98.5, got %v", s[0].Open)
	}
	wantLast := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	if !s[30].Timestamp.Equal(wantLast) || !s[0].Timestamp.Equal(wantLast.AddDate(0, 0, -30)) {
		t.Fatalf("unexpected range %v..%v", s[0].Timestamp, s[30].Timestamp)
	}
	for i, c := range s {
		if c.Volume < DefaultVolumeBase || c.Volume >= DefaultVolumeBase+DefaultVolumeScale {
			t.Fatalf("candle %d: volume %v out of range", i, c.Volume)
		}
	}
}

func TestGenerateCandlesSingleDay(t *testing.T) {
	g := NewCandleGenerator(WithCandleClock(fixedClock))
	s, err := g.Generate(aapl(), 0, NewRand(1))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(s) != 1 {
		t.Fatalf("expected one candle, got %d", len(s))
	}
	checkSeries(t, s, 175.43)
}

func TestGenerateCandlesClampsNonPositive(t *testing.T) {
	inst := models.InstrumentDescriptor{Symbol: "PNY", CurrentPrice: 0.05, DayChange: 3}
	g := NewCandleGenerator(WithCandleClock(fixedClock))
	s, err := g.Generate(inst, 20, NewRand(3))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s[0].Open != PriceEpsilon {
		t.Fatalf("expected clamped start %v, got %v", PriceEpsilon, s[0].Open)
	}
	checkSeries(t, s, 0.05)
}

func TestGenerateCandlesDeterministic(t *testing.T) {
	g := NewCandleGenerator(WithCandleClock(fixedClock))
	a, _ := g.Generate(aapl(), 30, NewRand(42))
	b, _ := g.Generate(aapl(), 30, NewRand(42))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed must give same series")
	}
	c, _ := g.Generate(aapl(), 30, NewRand(43))
	if reflect.DeepEqual(a, c) {
		t.Fatalf("different seeds should differ")
	}
}

func TestGenerateCandlesVolumeOption(t *testing.T) {
	g := NewCandleGenerator(WithCandleClock(fixedClock), WithVolume(10, 0))
	s, _ := g.Generate(aapl(), 5, NewRand(1))
	for _, c := range s {
		if c.Volume != 10 {
			t.Fatalf("expected volume 10, got %v", c.Volume)
		}
	}
}

func TestGenerateCandlesErrors(t *testing.T) {
	g := NewCandleGenerator(WithCandleClock(fixedClock))
	bad := aapl()
	bad.CurrentPrice = 0
	if _, err := g.Generate(bad, 10, NewRand(1)); !errors.Is(err, ErrInvalidInstrument) {
		t.Fatalf("expected ErrInvalidInstrument, got %v", err)
	}
	bad = aapl()
	bad.Symbol = "  "
	if _, err := g.Generate(bad, 10, NewRand(1)); !errors.Is(err, ErrInvalidInstrument) {
		t.Fatalf("expected ErrInvalidInstrument for blank symbol, got %v", err)
	}
	bad = aapl()
	bad.CurrentPrice = math.NaN()
	if _, err := g.Generate(bad, 10, NewRand(1)); !errors.Is(err, ErrInvalidInstrument) {
		t.Fatalf("expected ErrInvalidInstrument for NaN, got %v", err)
	}
	if _, err := g.Generate(aapl(), -1, NewRand(1)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := g.Generate(aapl(), 3, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for nil rng, got %v", err)
	}
}
