package synth

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	domsvc "FinForge/internal/domain/service"
	"FinForge/pkg/util"
)

// Rand is the caller-supplied random source.
type Rand = domsvc.Rand

// NewRand returns a PCG-backed source. Equal seeds yield equal streams.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeedFor derives a seed stable for (symbol, kind) within one UTC day.
func SeedFor(symbol, kind string, day time.Time) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(kind))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(util.DayKey(day)))
	return h.Sum64()
}

// MixSeed derives a sub-seed of an explicit seed for one kind of output,
// so e.g. each timeframe of a seeded request draws from its own stream.
func MixSeed(seed uint64, kind string) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for i := range b {
		b[i] = byte(seed >> (8 * i))
	}
	_, _ = h.Write(b[:])
	_, _ = h.Write([]byte(kind))
	return h.Sum64()
}

func uniform(rng Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
