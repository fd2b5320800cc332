package synth

import (
	"fmt"
	"math"
	"strings"
	"time"

	"FinForge/internal/domain/models"
)

// ModelID tags every record produced by this engine.
const ModelID = "finforge-synthetic-v1"

var horizonBaseline = map[models.Timeframe]float64{
	models.TF1D: 0.002,
	models.TF1W: 0.01,
	models.TF1M: 0.05,
	models.TF3M: 0.15,
	models.TF6M: 0.25,
	models.TF1Y: 0.45,
}

var sectorBias = map[string]float64{
	"technology": 0.02,
	"finance":    -0.01,
}

const (
	randomFactorSpan = 0.05

	bullishThreshold = 2.0
	bearishThreshold = -2.0

	confidenceBase  = 85.0
	confidenceSlope = 2.0
	confidenceMin   = 60.0
	confidenceMax   = 95.0

	highRiskAbove   = 15.0
	mediumRiskAbove = 7.0

	accuracyMin = 80.0
	accuracyMax = 95.0
)

// Predictor fabricates one PredictionRecord per requested timeframe.
type Predictor struct {
	now func() time.Time
}

type PredictorOption func(*Predictor)

func WithPredictorClock(now func() time.Time) PredictorOption {
	return func(p *Predictor) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPredictor(opts ...PredictorOption) *Predictor {
	p := &Predictor{now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Predict returns a record per timeframe. An empty list means every timeframe.
// Timeframes are processed in request order; duplicates are generated once.
func (p *Predictor) Predict(inst models.InstrumentDescriptor, timeframes []models.Timeframe, rng Rand) (map[models.Timeframe]models.PredictionRecord, error) {
	if err := ValidateInstrument(inst); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidArgument)
	}
	if len(timeframes) == 0 {
		timeframes = models.AllTimeframes()
	}
	for _, tf := range timeframes {
		if !models.IsValidTimeframe(tf) {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedTimeframe, tf)
		}
	}

	now := p.now()
	out := make(map[models.Timeframe]models.PredictionRecord, len(timeframes))
	for _, tf := range timeframes {
		if _, done := out[tf]; done {
			continue
		}
		rec, err := p.predictOne(inst, tf, rng, now)
		if err != nil {
			return nil, err
		}
		out[tf] = rec
	}
	return out, nil
}

func (p *Predictor) predictOne(inst models.InstrumentDescriptor, tf models.Timeframe, rng Rand, now time.Time) (models.PredictionRecord, error) {
	volatilityFactor := inst.Beta * horizonBaseline[tf]
	bias := SectorBias(inst.Sector)
	randomFactor := uniform(rng, -randomFactorSpan, randomFactorSpan)

	price := inst.CurrentPrice
	change := price * (volatilityFactor + bias + randomFactor)
	target := price + change
	ret := change / price * 100

	direction := DirectionFor(ret)
	accuracy := uniform(rng, accuracyMin, accuracyMax)
	reasoning, err := PickReasoning(direction, inst.Sector, tf, rng)
	if err != nil {
		return models.PredictionRecord{}, err
	}
	signals := ScoreSignals(rng)

	return models.PredictionRecord{
		Timeframe:          tf,
		CurrentPrice:       price,
		TargetPrice:        target,
		PotentialReturnPct: ret,
		Direction:          direction,
		Confidence:         models.Synthetic(ConfidenceFor(ret)),
		RiskLevel:          RiskFor(ret),
		Signals:            signals,
		Reasoning:          reasoning,
		Accuracy:           models.Synthetic(accuracy),
		ModelID:            ModelID,
		GeneratedAt:        now,
	}, nil
}

// SectorBias is the drift added for a sector, matched case-insensitively.
func SectorBias(sector string) float64 {
	return sectorBias[strings.ToLower(strings.TrimSpace(sector))]
}

// DirectionFor classifies a potential return in percent.
func DirectionFor(retPct float64) models.Direction {
	switch {
	case retPct > bullishThreshold:
		return models.DirectionBullish
	case retPct < bearishThreshold:
		return models.DirectionBearish
	default:
		return models.DirectionNeutral
	}
}

// ConfidenceFor shrinks with the size of the move, bounded to [60, 95].
func ConfidenceFor(retPct float64) float64 {
	c := confidenceBase - math.Abs(retPct)*confidenceSlope
	return math.Max(confidenceMin, math.Min(confidenceMax, c))
}

// RiskFor grades a potential return in percent.
func RiskFor(retPct float64) models.RiskLevel {
	a := math.Abs(retPct)
	switch {
	case a > highRiskAbove:
		return models.RiskHigh
	case a > mediumRiskAbove:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
