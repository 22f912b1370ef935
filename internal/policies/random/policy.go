// Package random provides a uniformly random policy, useful as a baseline
// and for fuzzing the simulation.
package random

import (
	"context"
	"math/rand/v2"

	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/sim"
)

// seedSalt selects a PCG stream distinct from the engine's stream
// for the same episode seed.
const seedSalt = 0x5eed_1a57

// Policy draws every action from its own seeded stream.
type Policy struct {
	rng *rand.Rand
}

// New creates a random policy seeded with 0.
func New() *Policy {
	p := &Policy{}
	p.Reset(0)
	return p
}

// ID returns the unique identifier for this policy.
func (p *Policy) ID() string {
	return "random"
}

// Title returns the display name.
func (p *Policy) Title() string {
	return "Random"
}

// Reset reseeds the policy's stream from the episode seed.
func (p *Policy) Reset(seed uint64) {
	p.rng = rand.New(rand.NewPCG(seed, seedSalt))
}

// Act returns a uniformly random action.
func (p *Policy) Act(_ context.Context, obs []float32) (sim.Action, error) {
	a := sim.Action{
		MoveX:         p.axis(),
		MoveY:         p.axis(),
		AimX:          p.axis(),
		AimY:          p.axis(),
		Shoot:         p.rng.Float64() < 0.5,
		Sprint:        p.rng.Float64() < 0.2,
		Reload:        p.rng.Float64() < 0.02,
		UpgradeChoice: sim.NoChoice,
	}
	if sim.View(obs).Choosing() {
		a.UpgradeChoice = p.rng.IntN(3)
	}
	return a, nil
}

func (p *Policy) axis() float64 {
	return p.rng.Float64()*2 - 1
}

// Register the policy with the registry
func init() {
	registry.Register("random", func() registry.Policy {
		return New()
	})
}
