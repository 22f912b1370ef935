// Package heuristic provides a scripted kite-and-shoot policy that reads
// only the observation vector, the same input a learned agent gets.
package heuristic

import (
	"context"
	"math"

	"github.com/Zordux/Last-Vector/internal/config"
	"github.com/Zordux/Last-Vector/internal/core"
	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/sim"
)

const (
	kiteDistance  = 0.36 // Normalized distance at which the policy backs off
	panicDistance = 0.12 // Sprint away below this
	wallClearance = 0.15 // Obstacle ray reading treated as blocked
)

// Policy aims at the nearest zombie, fires whenever it can, backs away
// from anything inside kiting range and steers around walls using the
// obstacle rays.
type Policy struct {
	width, height float64
}

// New creates a heuristic policy sized for the default arena.
func New() *Policy {
	cfg := config.DefaultSimConfig()
	return NewForArena(cfg.Arena.Width, cfg.Arena.Height)
}

// NewForArena creates a heuristic policy for an arena of the given size.
func NewForArena(width, height float64) *Policy {
	return &Policy{width: width, height: height}
}

// ID returns the unique identifier for this policy.
func (p *Policy) ID() string {
	return "heuristic"
}

// Title returns the display name.
func (p *Policy) Title() string {
	return "Heuristic Kiter"
}

// Reset is a no-op; the policy has no per-episode state.
func (p *Policy) Reset(seed uint64) {}

// Act picks an action from one observation.
func (p *Policy) Act(_ context.Context, obs []float32) (sim.Action, error) {
	v := sim.View(obs)
	a := sim.NoOp()
	if !v.Valid() {
		return a, nil
	}

	if v.Choosing() {
		a.UpgradeChoice = pickUpgrade(v)
		return a, nil
	}

	relX, relY, dist, ok := v.Zombie(0)
	if !ok {
		// Quiet moment: top off and drift back toward the middle.
		a.Reload = v.Magazine() < 1 && !v.Reloading()
		x, y := v.Position()
		a.MoveX, a.MoveY = p.steer(v, (0.5-x)*4, (0.5-y)*4)
		return a, nil
	}

	aim := core.V(relX*p.width, relY*p.height).Normalize()
	a.AimX, a.AimY = aim.X, aim.Y
	a.Shoot = !v.Reloading() && v.Magazine() > 0
	a.Reload = v.Magazine() == 0

	if dist < kiteDistance {
		a.MoveX, a.MoveY = p.steer(v, -aim.X, -aim.Y)
		a.Sprint = dist < panicDistance && v.Stamina() > 0.2
	}
	return a, nil
}

// steer returns the free ray direction closest to the wanted one, scaled
// to the wanted magnitude.
func (p *Policy) steer(v sim.View, wx, wy float64) (float64, float64) {
	want := core.V(wx, wy)
	mag := math.Min(1, want.Len())
	if mag < 1e-3 {
		return 0, 0
	}

	angle := math.Atan2(want.Y, want.X)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	start := int(math.Round(angle/(2*math.Pi)*sim.RayCount)) % sim.RayCount

	if v.ObstacleRay(start) >= wallClearance {
		w := want.Normalize().Scale(mag)
		return w.X, w.Y
	}

	// Search outward from the wanted ray for the first clear one.
	for off := 1; off <= sim.RayCount/2; off++ {
		for _, i := range []int{start + off, start - off} {
			i = (i + sim.RayCount) % sim.RayCount
			if v.ObstacleRay(i) >= wallClearance {
				th := sim.RayAngle(i)
				return math.Cos(th) * mag, math.Sin(th) * mag
			}
		}
	}
	return 0, 0
}

// pickUpgrade takes the first offered upgrade that is not already maxed.
func pickUpgrade(v sim.View) int {
	for slot := 0; slot < 3; slot++ {
		id, ok := v.Offer(slot)
		if ok && v.UpgradeLevel(id) < 1 {
			return slot
		}
	}
	return 0
}

// Register the policy with the registry
func init() {
	registry.Register("heuristic", func() registry.Policy {
		return New()
	})
}
