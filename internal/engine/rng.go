package engine

import "math/rand/v2"

// newRNG builds the single RNG instance a Simulation threads into every
// protocol invocation. math/rand/v2's NewPCG is the stdlib's literal PCG64
// generator — the corpus carries no third-party PCG implementation to defer
// to instead.
func newRNG(seed uint64) *rand.Rand {
	// Two distinct, seed-derived streams so NewPCG's two-word state isn't
	// fed the same value twice.
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}
