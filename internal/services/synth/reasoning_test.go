package synth

import (
	"errors"
	"strings"
	"testing"

	"FinForge/internal/domain/models"
)

func TestPickReasoningFromMatchingBank(t *testing.T) {
	for _, dir := range []models.Direction{models.DirectionBullish, models.DirectionBearish, models.DirectionNeutral} {
		for seed := uint64(0); seed < 200; seed++ {
			got, err := PickReasoning(dir, "technology", models.TF3M, NewRand(seed))
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(got) < 3 || len(got) > 5 {
				t.Fatalf("expected 3-5 reasons, got %d", len(got))
			}
			for _, p := range got {
				if strings.Contains(p, "{") {
					t.Fatalf("placeholder left in %q", p)
				}
				if !bankContains(dir, "technology", models.TF3M, p) {
					t.Fatalf("%q not in %s bank", p, dir)
				}
			}
		}
	}
}

func TestPickReasoningCoversAllSizes(t *testing.T) {
	sizes := map[int]bool{}
	for seed := uint64(0); seed < 200; seed++ {
		got, _ := PickReasoning(models.DirectionNeutral, "", models.TF1D, NewRand(seed))
		sizes[len(got)] = true
	}
	for k := 3; k <= 5; k++ {
		if !sizes[k] {
			t.Fatalf("size %d never sampled: %v", k, sizes)
		}
	}
}

func TestPickReasoningUnknownDirection(t *testing.T) {
	if _, err := PickReasoning("sideways", "x", models.TF1D, NewRand(1)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSampleIndexesDistinct(t *testing.T) {
	rng := NewRand(11)
	for i := 0; i < 100; i++ {
		idx := sampleIndexes(6, 6, rng)
		seen := map[int]bool{}
		for _, v := range idx {
			if v < 0 || v >= 6 || seen[v] {
				t.Fatalf("bad sample %v", idx)
			}
			seen[v] = true
		}
	}
}
