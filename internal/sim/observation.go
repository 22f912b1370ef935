package sim

import (
	"math"
	"sort"

	"github.com/Zordux/Last-Vector/internal/core"
)

// Observation layout.
const (
	PlayerFeatures  = 11
	ZombieSlots     = 8
	ZombieFeatures  = 5
	RayCount        = 16
	RayChannels     = 2
	ScalarFeatures  = 2 + 3 + int(UpgradeCount)
	observationSize = PlayerFeatures + ZombieSlots*ZombieFeatures + RayCount*RayChannels + ScalarFeatures
)

// ObservationDim returns the length of every observation vector.
func ObservationDim() int {
	return observationSize
}

// Observation encodes the current world. It reads state only and never
// consumes random draws. Every component is finite.
func (e *Engine) Observation() []float32 {
	return Encode(&e.world, e.cfg.Arena.Width, e.cfg.Arena.Height, e.sensors())
}

// Sensors holds the scales used when encoding observations.
type Sensors struct {
	RayRange      float64
	VelocityScale float64
	DistanceScale float64
	ReserveScale  float64
	ZombieRadius  float64
	Catalog       Catalog
}

func (e *Engine) sensors() Sensors {
	sc := e.cfg.Sensors
	return Sensors{
		RayRange:      sc.RayRange,
		VelocityScale: sc.VelocityScale,
		DistanceScale: sc.DistanceScale,
		ReserveScale:  sc.ReserveScale,
		ZombieRadius:  e.cfg.Zombie.Radius,
		Catalog:       e.catalog,
	}
}

// Encode builds the observation vector of w in an arena of the given size.
func Encode(w *World, width, height float64, s Sensors) []float32 {
	obs := make([]float32, 0, observationSize)
	push := func(v float64) {
		obs = append(obs, float32(finiteOr(v, 0)))
	}

	p := w.Player
	push(p.Pos.X / width)
	push(p.Pos.Y / height)
	push(core.ClampF(p.Vel.X/s.VelocityScale, -1, 1))
	push(core.ClampF(p.Vel.Y/s.VelocityScale, -1, 1))
	push(p.Health / math.Max(1, p.MaxHealth))
	push(p.Stamina / math.Max(1, p.MaxStamina))
	push(float64(p.Mag) / float64(core.Max(1, p.MagCapacity)))
	push(float64(p.Reserve) / s.ReserveScale)
	push(p.ShootCooldown)
	push(p.ReloadTimer)
	push(p.InvulnTimer)

	for _, z := range nearestZombies(w, ZombieSlots) {
		rel := z.Pos.Sub(p.Pos)
		push(rel.X / width)
		push(rel.Y / height)
		push(core.ClampF(rel.Len()/s.DistanceScale, 0, 1))
		push(core.ClampF((z.Vel.X-p.Vel.X)/s.VelocityScale, -1, 1))
		push(core.ClampF((z.Vel.Y-p.Vel.Y)/s.VelocityScale, -1, 1))
	}
	for len(obs) < PlayerFeatures+ZombieSlots*ZombieFeatures {
		obs = append(obs, 0, 0, 1, 0, 0)
	}

	for i := 0; i < RayCount; i++ {
		theta := float64(i) / RayCount * 2 * math.Pi
		dir := core.V(math.Cos(theta), math.Sin(theta))
		push(core.ClampF(obstacleDistance(w, p.Pos, dir, width, height)/s.RayRange, 0, 1))
		push(core.ClampF(zombieDistance(w, p.Pos, dir, s.ZombieRadius, s.RayRange)/s.RayRange, 0, 1))
	}

	choosing := w.Phase == PhaseChoosingUpgrade
	push(w.Difficulty)
	push(boolValue(choosing))
	for _, id := range w.Offer {
		if choosing {
			push((float64(id) + 0.5) / float64(UpgradeCount))
		} else {
			push(0)
		}
	}
	for id := UpgradeID(0); id < UpgradeCount; id++ {
		maxStacks := math.Max(1, float64(s.Catalog.Def(id).MaxStacks))
		push(float64(w.Upgrades.Level(id)) / maxStacks)
	}

	return obs
}

// nearestZombies returns up to k zombies sorted by squared distance to the
// player. Ties keep slice order.
func nearestZombies(w *World, k int) []Zombie {
	zs := append([]Zombie(nil), w.Zombies...)
	origin := w.Player.Pos
	sort.SliceStable(zs, func(i, j int) bool {
		return zs[i].Pos.Sub(origin).LenSq() < zs[j].Pos.Sub(origin).LenSq()
	})
	if len(zs) > k {
		zs = zs[:k]
	}
	return zs
}

func obstacleDistance(w *World, origin, dir core.Vec2, width, height float64) float64 {
	best := RayBoundary(origin, dir, width, height)
	for _, o := range w.Obstacles {
		if t, ok := RayBox(origin, dir, o); ok && t < best {
			best = t
		}
	}
	return best
}

func zombieDistance(w *World, origin, dir core.Vec2, radius, maxRange float64) float64 {
	best := maxRange
	for _, z := range w.Zombies {
		if t, ok := RayCircle(origin, dir, z.Pos, radius); ok && t < best {
			best = t
		}
	}
	return best
}
