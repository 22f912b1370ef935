package sim

import "github.com/Zordux/Last-Vector/internal/core"

const (
	edgeLeft = iota
	edgeRight
	edgeTop
	edgeBottom
)

// spawn refreshes the difficulty level, accrues spawn budget and places
// zombies on the arena edges while budget and the population cap allow.
func (e *Engine) spawn() {
	sc := e.cfg.Spawn
	d := e.difficulty.Level(e.world.Elapsed)
	e.world.Difficulty = d

	e.world.SpawnBudget += (sc.BaseRate + sc.RatePerLevel*d) * e.dt
	if sc.MaxBudget > 0 && e.world.SpawnBudget > sc.MaxBudget {
		e.world.SpawnBudget = sc.MaxBudget
	}

	maxAlive := sc.BaseMaxAlive + int(sc.MaxAlivePerLevel*d)
	for e.world.SpawnBudget >= 1 && len(e.world.Zombies) < maxAlive {
		e.world.SpawnBudget--
		e.spawnZombie(d)
	}
}

func (e *Engine) spawnZombie(d float64) {
	zc := e.cfg.Zombie
	r := zc.Radius
	w := e.cfg.Arena.Width
	h := e.cfg.Arena.Height

	var pos core.Vec2
	switch e.rng.UniformInt(edgeLeft, edgeBottom) {
	case edgeLeft:
		pos = core.V(r, e.rng.Uniform(r, h-r))
	case edgeRight:
		pos = core.V(w-r, e.rng.Uniform(r, h-r))
	case edgeTop:
		pos = core.V(e.rng.Uniform(r, w-r), r)
	default:
		pos = core.V(e.rng.Uniform(r, w-r), h-r)
	}

	e.world.Zombies = append(e.world.Zombies, Zombie{
		ID:  e.world.NextZombieID,
		Pos: e.resolve(pos, r),
		HP:  zc.BaseHP + zc.HPPerLevel*d,
	})
	e.world.NextZombieID++
}

// advanceUpgradeClock opens the upgrade choice once enough time was survived.
// The offer shown is the one rolled when the previous choice was made.
func (e *Engine) advanceUpgradeClock() {
	e.world.UpgradeClock += e.dt
	if e.world.UpgradeClock >= e.cfg.Upgrades.IntervalSeconds {
		e.world.Phase = PhaseChoosingUpgrade
		e.world.UpgradeClock = 0
		e.world.ChoiceClock = 0
	}
}
