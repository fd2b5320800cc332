package synthobs

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"FinForge/internal/domain/models"
	"FinForge/internal/services/synth"
	"FinForge/pkg/logger"
)

func TestWrapIsTransparent(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }
	eng := synth.NewEngine(now)
	obs := Wrap(eng, logger.Nop())
	inst := models.InstrumentDescriptor{Symbol: "MSFT", CurrentPrice: 410.2, Beta: 0.9, Sector: "technology"}
	ctx := context.Background()

	a, err := eng.Candles(ctx, inst, 10, synth.NewRand(1))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := obs.Candles(ctx, inst, 10, synth.NewRand(1))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("wrapper changed output")
	}

	pa, _ := eng.Predict(ctx, inst, nil, synth.NewRand(2))
	pb, _ := obs.Predict(ctx, inst, nil, synth.NewRand(2))
	if !reflect.DeepEqual(pa, pb) {
		t.Fatalf("wrapper changed predictions")
	}
}

func TestWrapLogsErrors(t *testing.T) {
	var buf bytes.Buffer
	l, _ := logger.New(&logger.Config{Level: "debug", Writer: &buf})
	obs := Wrap(synth.NewEngine(nil), l)

	_, err := obs.News(context.Background(), models.InstrumentDescriptor{Symbol: "BAD"})
	if !errors.Is(err, synth.ErrInvalidInstrument) {
		t.Fatalf("expected ErrInvalidInstrument, got %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("news generation failed")) {
		t.Fatalf("expected error log, got %s", buf.String())
	}
}
