package synth

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"FinForge/internal/domain/models"
)

func bankContains(direction models.Direction, sector string, tf models.Timeframe, phrase string) bool {
	if sector == "" {
		sector = genericSector
	}
	r := strings.NewReplacer("{sector}", sector, "{timeframe}", tf.Label())
	for _, p := range reasoningBank[direction] {
		if r.Replace(p) == phrase {
			return true
		}
	}
	return false
}

func checkRecord(t *testing.T, inst models.InstrumentDescriptor, rec models.PredictionRecord) {
	t.Helper()
	ret := rec.PotentialReturnPct
	switch {
	case ret > 2 && rec.Direction != models.DirectionBullish,
		ret < -2 && rec.Direction != models.DirectionBearish,
		ret >= -2 && ret <= 2 && rec.Direction != models.DirectionNeutral:
		t.Fatalf("direction %s does not match return %v", rec.Direction, ret)
	}
	a := math.Abs(ret)
	switch {
	case a > 15 && rec.RiskLevel != models.RiskHigh,
		a > 7 && a <= 15 && rec.RiskLevel != models.RiskMedium,
		a <= 7 && rec.RiskLevel != models.RiskLow:
		t.Fatalf("risk %s does not match return %v", rec.RiskLevel, ret)
	}
	if c := rec.Confidence.Value(); c < 60 || c > 95 {
		t.Fatalf("confidence %v out of bounds", c)
	}
	if acc := rec.Accuracy.Value(); acc < 80 || acc >= 95 {
		t.Fatalf("accuracy %v out of bounds", acc)
	}
	for name, v := range map[string]int{
		"technical": rec.Signals.Technical, "fundamental": rec.Signals.Fundamental,
		"sentiment": rec.Signals.Sentiment, "macro": rec.Signals.Macro,
	} {
		if v < 60 || v >= 100 {
			t.Fatalf("signal %s=%d out of bounds", name, v)
		}
	}
	if n := len(rec.Reasoning); n < 3 || n > 5 {
		t.Fatalf("expected 3-5 reasons, got %d", n)
	}
	seen := map[string]bool{}
	for _, p := range rec.Reasoning {
		if seen[p] {
			t.Fatalf("duplicate reason %q", p)
		}
		seen[p] = true
		if !bankContains(rec.Direction, inst.Sector, rec.Timeframe, p) {
			t.Fatalf("reason %q not from the %s bank", p, rec.Direction)
		}
	}
	if math.Abs(rec.TargetPrice-(inst.CurrentPrice+inst.CurrentPrice*ret/100)) > 1e-9 {
		t.Fatalf("target %v inconsistent with return %v", rec.TargetPrice, ret)
	}
	if rec.ModelID != ModelID || rec.CurrentPrice != inst.CurrentPrice {
		t.Fatalf("unexpected record header %+v", rec)
	}
}

// Same seed, same record; a different seed moves the target.
func TestPredictSeededAAPL(t *testing.T) {
	p := NewPredictor(WithPredictorClock(fixedClock))
	tfs := []models.Timeframe{models.TF1M}

	a, err := p.Predict(aapl(), tfs, NewRand(42))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rec, ok := a[models.TF1M]
	if !ok || len(a) != 1 {
		t.Fatalf("expected a single 1M record, got %v", a)
	}
	checkRecord(t, aapl(), rec)
	if !rec.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("unexpected generatedAt %v", rec.GeneratedAt)
	}

	b, _ := p.Predict(aapl(), tfs, NewRand(42))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed must give identical records")
	}
	c, _ := p.Predict(aapl(), tfs, NewRand(43))
	if c[models.TF1M].TargetPrice == rec.TargetPrice {
		t.Fatalf("different seeds should give different targets")
	}
}

func TestPredictLawsAcrossSeeds(t *testing.T) {
	p := NewPredictor(WithPredictorClock(fixedClock))
	insts := []models.InstrumentDescriptor{
		aapl(),
		{Symbol: "JPM", CurrentPrice: 190, Beta: 1.1, Sector: "Finance"},
		{Symbol: "XOM", CurrentPrice: 110, Beta: 0.8, Sector: "energy"},
		{Symbol: "ODD", CurrentPrice: 3, Beta: 2.5},
	}
	for _, inst := range insts {
		for seed := uint64(0); seed < 100; seed++ {
			recs, err := p.Predict(inst, nil, NewRand(seed))
			if err != nil {
				t.Fatalf("%s seed %d: %v", inst.Symbol, seed, err)
			}
			if len(recs) != 6 {
				t.Fatalf("empty timeframe list should give all six, got %d", len(recs))
			}
			for tf, rec := range recs {
				if rec.Timeframe != tf {
					t.Fatalf("record keyed %s has timeframe %s", tf, rec.Timeframe)
				}
				checkRecord(t, inst, rec)
			}
		}
	}
}

func TestPredictSectorBias(t *testing.T) {
	p := NewPredictor(WithPredictorClock(fixedClock))
	tech := aapl()
	tech.Sector = "Technology"
	fin := aapl()
	fin.Sector = "FINANCE"
	tfs := []models.Timeframe{models.TF1D}

	a, _ := p.Predict(tech, tfs, NewRand(9))
	b, _ := p.Predict(fin, tfs, NewRand(9))
	diff := a[models.TF1D].TargetPrice - b[models.TF1D].TargetPrice
	if math.Abs(diff-0.03*tech.CurrentPrice) > 1e-9 {
		t.Fatalf("expected bias gap %v, got %v", 0.03*tech.CurrentPrice, diff)
	}
	if SectorBias("utilities") != 0 {
		t.Fatalf("unknown sectors carry no bias")
	}
}

func TestPredictDuplicatesAndOrder(t *testing.T) {
	p := NewPredictor(WithPredictorClock(fixedClock))
	recs, err := p.Predict(aapl(), []models.Timeframe{models.TF1W, models.TF1W, models.TF1Y}, NewRand(5))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

func TestPredictErrors(t *testing.T) {
	p := NewPredictor(WithPredictorClock(fixedClock))
	if _, err := p.Predict(aapl(), []models.Timeframe{models.TF1D, "2D"}, NewRand(1)); !errors.Is(err, ErrUnsupportedTimeframe) {
		t.Fatalf("expected ErrUnsupportedTimeframe, got %v", err)
	}
	bad := aapl()
	bad.CurrentPrice = -4
	if _, err := p.Predict(bad, nil, NewRand(1)); !errors.Is(err, ErrInvalidInstrument) {
		t.Fatalf("expected ErrInvalidInstrument, got %v", err)
	}
	bad = aapl()
	bad.Beta = math.Inf(1)
	if _, err := p.Predict(bad, nil, NewRand(1)); !errors.Is(err, ErrInvalidInstrument) {
		t.Fatalf("expected ErrInvalidInstrument for infinite beta, got %v", err)
	}
}

func TestPredictZeroBeta(t *testing.T) {
	p := NewPredictor(WithPredictorClock(fixedClock))
	inst := models.InstrumentDescriptor{Symbol: "CASH", CurrentPrice: 100, Beta: 0}
	recs, err := p.Predict(inst, []models.Timeframe{models.TF1Y}, NewRand(3))
	if err != nil {
		t.Fatalf("beta 0 is a valid input: %v", err)
	}
	// no volatility or sector drift: only the random factor moves the target
	if r := recs[models.TF1Y].PotentialReturnPct; math.Abs(r) > randomFactorSpan*100+1e-9 {
		t.Fatalf("return %v exceeds the random span", r)
	}
}

func TestDirectionConfidenceRisk(t *testing.T) {
	cases := []struct {
		ret  float64
		dir  models.Direction
		risk models.RiskLevel
		conf float64
	}{
		{0, models.DirectionNeutral, models.RiskLow, 85},
		{2, models.DirectionNeutral, models.RiskLow, 81},
		{2.5, models.DirectionBullish, models.RiskLow, 80},
		{-3, models.DirectionBearish, models.RiskLow, 79},
		{7, models.DirectionBullish, models.RiskLow, 71},
		{10, models.DirectionBullish, models.RiskMedium, 65},
		{15, models.DirectionBullish, models.RiskMedium, 60},
		{-40, models.DirectionBearish, models.RiskHigh, 60},
	}
	for _, c := range cases {
		if got := DirectionFor(c.ret); got != c.dir {
			t.Errorf("DirectionFor(%v)=%s want %s", c.ret, got, c.dir)
		}
		if got := RiskFor(c.ret); got != c.risk {
			t.Errorf("RiskFor(%v)=%s want %s", c.ret, got, c.risk)
		}
		if got := ConfidenceFor(c.ret); math.Abs(got-c.conf) > 1e-9 {
			t.Errorf("ConfidenceFor(%v)=%v want %v", c.ret, got, c.conf)
		}
	}
}
