package synth

import (
	"fmt"
	"strings"

	"FinForge/internal/domain/models"
)

const (
	minReasons = 3
	maxReasons = 5

	genericSector = "broader market"
)

var reasoningBank = map[models.Direction][]string{
	models.DirectionBullish: {
		"Strong momentum in the {sector} sector supports upside over the {timeframe} horizon",
		"Technical indicators point to a breakout above recent resistance",
		"Institutional accumulation has picked up across {sector} names",
		"Earnings revisions are trending higher heading into the {timeframe} window",
		"Relative strength versus the broader index keeps improving",
		"Volume profile confirms buying pressure on up days",
		"Macro tailwinds favour {sector} exposure over the next {timeframe} period",
	},
	models.DirectionBearish: {
		"Momentum in the {sector} sector is fading into the {timeframe} horizon",
		"Price failed to hold above key moving averages",
		"Distribution patterns suggest institutions are trimming {sector} positions",
		"Margin pressure is a risk for earnings over the {timeframe} window",
		"Relative strength versus the broader index continues to deteriorate",
		"Selling volume outweighs buying volume on recent sessions",
		"Tightening financial conditions weigh on {sector} valuations",
	},
	models.DirectionNeutral: {
		"Price is consolidating within a well defined range",
		"Signals across the {sector} sector are mixed for the {timeframe} horizon",
		"Valuation looks fair relative to {sector} peers",
		"No strong catalyst is expected within the {timeframe} window",
		"Volume is close to its recent average with no clear bias",
		"Upside and downside risks appear balanced",
	},
}

// PickReasoning samples 3 to 5 distinct phrases from the bank matching direction,
// with sector and timeframe interpolated.
func PickReasoning(direction models.Direction, sector string, tf models.Timeframe, rng Rand) ([]string, error) {
	bank, ok := reasoningBank[direction]
	if !ok {
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidArgument, direction)
	}
	k := minReasons + rng.IntN(maxReasons-minReasons+1)
	if k > len(bank) {
		k = len(bank)
	}

	sector = strings.TrimSpace(sector)
	if sector == "" {
		sector = genericSector
	}
	r := strings.NewReplacer("{sector}", sector, "{timeframe}", tf.Label())

	idx := sampleIndexes(len(bank), k, rng)
	out := make([]string, 0, k)
	for _, i := range idx {
		out = append(out, r.Replace(bank[i]))
	}
	return out, nil
}

// sampleIndexes picks k distinct indexes from [0,n) with a partial Fisher-Yates shuffle.
func sampleIndexes(n, k int, rng Rand) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k]
}
