package sim

import "github.com/Zordux/Last-Vector/internal/core"

// Phase is the engine's state-machine state.
type Phase uint8

const (
	PhasePlaying Phase = iota
	PhaseChoosingUpgrade
	PhaseDead
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseChoosingUpgrade:
		return "choosing_upgrade"
	case PhaseDead:
		return "dead"
	default:
		return "unknown"
	}
}

// RunMode tags how an episode is being driven. It does not affect simulation.
type RunMode uint8

const (
	RunModeHeadless RunMode = iota
	RunModeRendered
)

// String returns a human-readable name for the run mode.
func (m RunMode) String() string {
	if m == RunModeRendered {
		return "rendered"
	}
	return "headless"
}

// Player is the controlled survivor.
type Player struct {
	Pos, Vel      core.Vec2
	Health        float64
	MaxHealth     float64
	Stamina       float64
	MaxStamina    float64
	Mag           int
	MagCapacity   int
	Reserve       int
	ShootCooldown float64
	ReloadTimer   float64
	InvulnTimer   float64
	Reloading     bool
}

// Zombie is one enemy. IDs are unique within an episode and start at 1.
type Zombie struct {
	ID            uint64
	Pos, Vel      core.Vec2
	HP            float64
	SlowTimer     float64
	TouchCooldown float64
}

// Bullet is one projectile in flight.
type Bullet struct {
	Pos, Vel  core.Vec2
	Radius    float64
	Damage    float64
	Pierce    int      // Extra zombies this bullet may still hit
	HitIDs    []uint64 // Zombies already struck, at most pierce+1
}

// Stats are cumulative episode counters.
type Stats struct {
	Kills       int
	ShotsFired  int
	ShotsHit    int
	DamageDealt float64
	DamageTaken float64
}

// Accuracy returns hits per shot, or 0 before the first shot.
func (s Stats) Accuracy() float64 {
	if s.ShotsFired == 0 {
		return 0
	}
	return float64(s.ShotsHit) / float64(s.ShotsFired)
}

// World is the complete simulation state. The engine owns the only mutable
// copy; everything else sees clones.
type World struct {
	Seed       uint64
	Tick       uint64
	Elapsed    float64 // Seconds, always Tick * dt
	Mode       RunMode
	Phase      Phase
	Difficulty float64

	Player    Player
	Zombies   []Zombie
	Bullets   []Bullet
	Obstacles []core.Box

	Upgrades UpgradeState
	Offer    [3]UpgradeID

	SpawnBudget  float64
	UpgradeClock float64 // Seconds played since the last offer
	ChoiceClock  float64 // Seconds spent in the current choice
	NextZombieID uint64

	Stats Stats
}

// Clone returns a deep copy of w.
func (w World) Clone() World {
	c := w
	c.Zombies = append([]Zombie(nil), w.Zombies...)
	c.Bullets = append([]Bullet(nil), w.Bullets...)
	for i := range c.Bullets {
		c.Bullets[i].HitIDs = append([]uint64(nil), w.Bullets[i].HitIDs...)
	}
	c.Obstacles = append([]core.Box(nil), w.Obstacles...)
	return c
}

// NearestZombie returns the distance from the player to the closest zombie.
// With no zombies alive it returns fallback.
func (w World) NearestZombie(fallback float64) float64 {
	best := fallback
	found := false
	for _, z := range w.Zombies {
		d := z.Pos.Sub(w.Player.Pos).Len()
		if !found || d < best {
			best = d
			found = true
		}
	}
	return best
}
