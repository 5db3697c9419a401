package agent

import "math/rand"

// RandomSource supplies the draws used for exploration. *rand.Rand satisfies it.
type RandomSource interface {
	// Float64 returns a uniform number in [0, 1).
	Float64() float64
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
}

// NewRandomSource returns a seeded source so episodes are reproducible.
func NewRandomSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}
