// Package idle provides the do-nothing baseline policy.
package idle

import (
	"context"

	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/sim"
)

// Policy stands still and never fires. It takes the first offered upgrade
// so episodes are not stalled by an open offer.
type Policy struct{}

// New creates an idle policy.
func New() *Policy {
	return &Policy{}
}

// ID returns the unique identifier for this policy.
func (p *Policy) ID() string {
	return "idle"
}

// Title returns the display name.
func (p *Policy) Title() string {
	return "Idle"
}

// Reset is a no-op; the policy has no state.
func (p *Policy) Reset(seed uint64) {}

// Act returns a no-op action, answering any open offer with slot 0.
func (p *Policy) Act(_ context.Context, obs []float32) (sim.Action, error) {
	a := sim.NoOp()
	if sim.View(obs).Choosing() {
		a.UpgradeChoice = 0
	}
	return a, nil
}

// Register the policy with the registry
func init() {
	registry.Register("idle", func() registry.Policy {
		return New()
	})
}
