package synth

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"FinForge/internal/domain/models"
)

func TestNewsForTSLA(t *testing.T) {
	n := NewNewsSynthesizer(WithNewsClock(fixedClock))
	inst := models.InstrumentDescriptor{Symbol: "TSLA", Name: "Tesla, Inc.", CurrentPrice: 245.1, Sector: "automotive"}
	got, err := n.Generate(inst)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 records, got %d", len(got))
	}
	for i, r := range got {
		if r.Importance < 1 || r.Importance > 10 {
			t.Fatalf("record %d importance %d", i, r.Importance)
		}
		if strings.Contains(r.Title, "{") {
			t.Fatalf("placeholder left in %q", r.Title)
		}
		if i > 0 && !r.Date.Before(got[i-1].Date) {
			t.Fatalf("dates not strictly decreasing at %d", i)
		}
	}
	if !strings.Contains(got[0].Title, "Tesla, Inc. (TSLA)") {
		t.Fatalf("unexpected title %q", got[0].Title)
	}
	if got[0].Date.Format("2006-01-02") != "2024-06-14" || got[5].Date.Format("2006-01-02") != "2024-06-09" {
		t.Fatalf("unexpected date range %v..%v", got[0].Date, got[5].Date)
	}
}

func TestNewsRequiresInstrument(t *testing.T) {
	n := NewNewsSynthesizer()
	if _, err := n.Generate(models.InstrumentDescriptor{Symbol: "X"}); !errors.Is(err, ErrInvalidInstrument) {
		t.Fatalf("expected ErrInvalidInstrument, got %v", err)
	}
}

func TestNewsSectorMultiByte(t *testing.T) {
	n := NewNewsSynthesizer(WithNewsClock(fixedClock))
	inst := models.InstrumentDescriptor{Symbol: "TTE", Name: "TotalEnergies", CurrentPrice: 61.2, Sector: "énergie"}
	got, err := n.Generate(inst)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	found := false
	for _, r := range got {
		if !utf8.ValidString(r.Title) {
			t.Fatalf("invalid utf-8 in %q", r.Title)
		}
		if strings.Contains(r.Title, "Énergie") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the capitalised sector in a headline")
	}
	if upperFirst("") != "" || upperFirst("x") != "X" {
		t.Fatalf("unexpected upperFirst edge cases")
	}
}
