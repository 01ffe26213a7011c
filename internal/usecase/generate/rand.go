package generate

import "math/rand/v2"

// NewRand returns a PCG-backed source. Seed 0 draws a fresh seed per call.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Fork derives an independent source from rng. It consumes two draws.
func Fork(rng Rand) *rand.Rand {
	return rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
}
