package game

import (
	"math/rand"
	"time"
)

// RandomSource supplies the goalkeeper's jitter. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a deterministic source for seed. A zero seed picks
// one from the clock.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// randRange draws uniformly from [min, max).
func randRange(rng RandomSource, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}
