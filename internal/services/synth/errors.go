package synth

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"FinForge/internal/domain/models"
)

var (
	ErrInvalidInstrument    = errors.New("invalid instrument")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUnsupportedTimeframe = errors.New("unsupported timeframe")
)

// ValidateInstrument checks the fields every generator depends on.
func ValidateInstrument(inst models.InstrumentDescriptor) error {
	if strings.TrimSpace(inst.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidInstrument)
	}
	if !(inst.CurrentPrice > 0) || math.IsInf(inst.CurrentPrice, 0) {
		return fmt.Errorf("%w: current price must be positive, got %v", ErrInvalidInstrument, inst.CurrentPrice)
	}
	if math.IsNaN(inst.Beta) || math.IsInf(inst.Beta, 0) {
		return fmt.Errorf("%w: beta must be finite", ErrInvalidInstrument)
	}
	if math.IsNaN(inst.DayChange) || math.IsInf(inst.DayChange, 0) {
		return fmt.Errorf("%w: day change must be finite", ErrInvalidInstrument)
	}
	return nil
}
