package synth

import (
	"fmt"
	"math"
	"time"

	"FinForge/internal/domain/models"
	"FinForge/pkg/util"
)

const (
	minStepVolatility = 0.02
	maxStepVolatility = 0.05

	// PriceEpsilon is the floor every generated price is clamped to.
	PriceEpsilon = 0.01

	DefaultVolumeBase  = 1_000_000
	DefaultVolumeScale = 9_000_000
)

// CandleGenerator builds an anchored daily random walk ending at the
// instrument's current price.
type CandleGenerator struct {
	now         func() time.Time
	volumeBase  float64
	volumeScale float64
}

type CandleOption func(*CandleGenerator)

// WithCandleClock sets the clock that decides the last candle's day.
func WithCandleClock(now func() time.Time) CandleOption {
	return func(g *CandleGenerator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithVolume overrides volume = base + U(0,1)*scale. base must be positive.
func WithVolume(base, scale float64) CandleOption {
	return func(g *CandleGenerator) {
		if base > 0 && scale >= 0 {
			g.volumeBase = base
			g.volumeScale = scale
		}
	}
}

func NewCandleGenerator(opts ...CandleOption) *CandleGenerator {
	g := &CandleGenerator{
		now:         time.Now,
		volumeBase:  DefaultVolumeBase,
		volumeScale: DefaultVolumeScale,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns horizonDays+1 daily candles. The walk starts at the previous
// close (CurrentPrice - DayChange) and the final close equals CurrentPrice.
func (g *CandleGenerator) Generate(inst models.InstrumentDescriptor, horizonDays int, rng Rand) (models.CandleSeries, error) {
	if err := ValidateInstrument(inst); err != nil {
		return nil, err
	}
	if horizonDays < 0 {
		return nil, fmt.Errorf("%w: horizon days must be >= 0, got %d", ErrInvalidArgument, horizonDays)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidArgument)
	}

	end := util.StartOfDay(g.now())
	start := end.AddDate(0, 0, -horizonDays)
	series := make(models.CandleSeries, 0, horizonDays+1)

	prevClose := clampPrice(inst.PreviousClose())
	for i := 0; i <= horizonDays; i++ {
		step := uniform(rng, minStepVolatility, maxStepVolatility)
		dir := 1.0
		if rng.Float64() < 0.5 {
			dir = -1.0
		}
		open := prevClose
		move := open * step
		closePx := clampPrice(open + move*dir)
		high := math.Max(open, closePx) + move*rng.Float64()
		low := clampPrice(math.Min(open, closePx) - move*rng.Float64())
		volume := g.volumeBase + rng.Float64()*g.volumeScale

		series = append(series, models.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
			Volume:    volume,
		})
		prevClose = closePx
	}

	anchorLast(series, inst.CurrentPrice)
	return series, nil
}

// anchorLast pins the final close and widens its range so Low <= Close <= High.
func anchorLast(series models.CandleSeries, price float64) {
	last := &series[len(series)-1]
	last.Close = price
	last.High = math.Max(last.High, price)
	last.Low = math.Min(last.Low, price)
}

func clampPrice(p float64) float64 {
	if p < PriceEpsilon || math.IsNaN(p) {
		return PriceEpsilon
	}
	return p
}
