package sim

import "math/rand/v2"

// pcgStream is the fixed PCG increment; the seed alone selects the stream.
const pcgStream = 0x4c617374566563 // "LastVec"

// RNG is the single seeded random stream of an engine.
// Every stochastic decision in the simulation draws from it and nothing else does.
type RNG struct {
	r     *rand.Rand
	draws uint64
}

// NewRNG creates a stream seeded with seed.
func NewRNG(seed uint64) *RNG {
	g := &RNG{}
	g.Reseed(seed)
	return g
}

// Reseed resets the stream to the state fully determined by all 64 bits of seed.
func (g *RNG) Reseed(seed uint64) {
	g.r = rand.New(rand.NewPCG(seed, pcgStream))
	g.draws = 0
}

// Uniform returns a value in [lo, hi). It consumes one draw.
func (g *RNG) Uniform(lo, hi float64) float64 {
	g.draws++
	// The explicit conversion forbids a fused multiply-add.
	return lo + float64((hi-lo)*g.r.Float64())
}

// UniformInt returns a value in [lo, hi], bounds inclusive. It consumes one draw.
func (g *RNG) UniformInt(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	g.draws++
	return lo + g.r.IntN(hi-lo+1)
}

// Draws returns how many draws were consumed since the last reseed.
func (g *RNG) Draws() uint64 {
	return g.draws
}
