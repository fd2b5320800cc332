package synth

import "FinForge/internal/domain/models"

const (
	signalFloor = 60
	signalSpan  = 40
)

// ScoreSignals draws four independent scores in [60, 100).
func ScoreSignals(rng Rand) models.Signals {
	return models.Signals{
		Technical:   signalFloor + rng.IntN(signalSpan),
		Fundamental: signalFloor + rng.IntN(signalSpan),
		Sentiment:   signalFloor + rng.IntN(signalSpan),
		Macro:       signalFloor + rng.IntN(signalSpan),
	}
}
