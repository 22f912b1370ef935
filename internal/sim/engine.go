// Package sim implements the deterministic Last-Vector survival simulation:
// a fixed-timestep arena where one survivor holds off zombie waves,
// collects upgrades, and is scored for reinforcement learning.
package sim

import (
	"github.com/Zordux/Last-Vector/internal/config"
	"github.com/Zordux/Last-Vector/internal/core"
)

// ErrInvalidConfig is returned by New for a configuration that fails validation.
var ErrInvalidConfig = config.ErrInvalidConfig

// StepResult is the outcome of one Step call.
type StepResult struct {
	Observation []float32
	Reward      float64
	Terminated  bool // The player died
	Truncated   bool // The episode time limit was reached
	Info        Info
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunMode tags the engine's episodes as headless or rendered.
func WithRunMode(mode RunMode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithInitialDifficulty overrides the configured starting difficulty level.
func WithInitialDifficulty(level float64) Option {
	return func(e *Engine) {
		e.difficulty.SetInitialLevel(level)
	}
}

// Engine owns one world and its random stream. It is not safe for
// concurrent use; run one engine per goroutine.
type Engine struct {
	cfg        config.SimConfig
	catalog    Catalog
	difficulty *config.DifficultyManager
	rng        *RNG
	mode       RunMode
	dt         float64
	limit      uint64

	world World
	prev  Stats

	// Per-step events reported through Info.
	selected UpgradeID
	picked   bool
	revived  bool
}

// New validates cfg and returns an engine already reset with seed 0.
func New(cfg config.SimConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Arena.Obstacles = append([]core.Box(nil), cfg.Arena.Obstacles...)
	e := &Engine{
		cfg:        cfg,
		catalog:    NewCatalog(),
		difficulty: config.NewDifficultyManager(cfg.Difficulty),
		rng:        NewRNG(0),
		dt:         cfg.DT(),
		limit:      cfg.EpisodeTicks(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.Reset(0)
	return e, nil
}

// Reset starts a new episode fully determined by seed and returns the
// first observation.
func (e *Engine) Reset(seed uint64) []float32 {
	e.rng.Reseed(seed)

	pc := e.cfg.Player
	wc := e.cfg.Weapon
	spawn := ResolveWorld(core.V(pc.SpawnX, pc.SpawnY), pc.Radius,
		e.cfg.Arena.Width, e.cfg.Arena.Height, e.cfg.Arena.Obstacles)

	e.world = World{
		Seed:       seed,
		Mode:       e.mode,
		Phase:      PhasePlaying,
		Difficulty: e.difficulty.Level(0),
		Player: Player{
			Pos:         spawn,
			Health:      pc.MaxHealth,
			MaxHealth:   pc.MaxHealth,
			Stamina:     pc.MaxStamina,
			MaxStamina:  pc.MaxStamina,
			Mag:         wc.MagazineSize,
			MagCapacity: wc.MagazineSize,
			Reserve:     wc.ReserveAmmo,
		},
		Obstacles:    append([]core.Box(nil), e.cfg.Arena.Obstacles...),
		NextZombieID: 1,
	}
	e.world.Offer = e.rollOffer()
	e.prev = Stats{}
	e.clearEvents()

	return e.Observation()
}

// Step advances the episode by one tick using a.
//
// While an upgrade is being chosen only the choice is evaluated; a valid
// choice applies the offered upgrade and the same call then simulates a
// tick. Once the player is dead every call returns reward 0 and
// Terminated without touching the world.
func (e *Engine) Step(a Action) StepResult {
	a = a.Sanitized()
	e.clearEvents()

	if e.world.Phase == PhaseDead {
		return StepResult{
			Observation: e.Observation(),
			Terminated:  true,
			Truncated:   e.world.Tick >= e.limit,
			Info:        e.info(),
		}
	}

	if e.world.Phase != PhaseChoosingUpgrade {
		a.UpgradeChoice = NoChoice
	} else {
		e.handleChoice(a.UpgradeChoice)
	}

	advanced := false
	if e.world.Phase == PhasePlaying {
		e.tick(a)
		advanced = true
	}

	reward := e.reward(advanced)
	e.prev = e.world.Stats

	return StepResult{
		Observation: e.Observation(),
		Reward:      reward,
		Terminated:  e.world.Phase == PhaseDead,
		Truncated:   e.world.Tick >= e.limit,
		Info:        e.info(),
	}
}

// handleChoice applies a valid offer slot, or runs the optional choice
// timeout. Anything else leaves the engine choosing.
func (e *Engine) handleChoice(choice int) {
	if choice >= 0 && choice <= 2 {
		e.applyChoice(choice)
		return
	}

	e.world.ChoiceClock += e.dt
	timeout := e.cfg.Upgrades.ChoiceTimeoutSeconds
	if timeout > 0 && e.world.ChoiceClock >= timeout {
		e.applyChoice(0)
	}
}

func (e *Engine) applyChoice(slot int) {
	id := e.world.Offer[slot]
	e.world.Upgrades.Apply(e.catalog, id)
	e.selected, e.picked = id, true

	e.world.UpgradeClock = 0
	e.world.ChoiceClock = 0
	e.world.Offer = e.rollOffer()
	e.world.Phase = PhasePlaying
}

// rollOffer draws three upgrade ids. Duplicates are allowed.
func (e *Engine) rollOffer() [3]UpgradeID {
	var offer [3]UpgradeID
	for i := range offer {
		offer[i] = UpgradeID(e.rng.UniformInt(0, int(UpgradeCount)-1))
	}
	return offer
}

func (e *Engine) clearEvents() {
	e.selected, e.picked, e.revived = 0, false, false
}

// Snapshot returns a deep copy of the current world.
func (e *Engine) Snapshot() World {
	return e.world.Clone()
}

// Phase returns the current state-machine phase.
func (e *Engine) Phase() Phase {
	return e.world.Phase
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.SimConfig {
	cfg := e.cfg
	cfg.Arena.Obstacles = append([]core.Box(nil), e.cfg.Arena.Obstacles...)
	return cfg
}

// Catalog returns the engine's upgrade catalog.
func (e *Engine) Catalog() Catalog {
	return e.catalog
}

// EpisodeTicks returns the tick count at which episodes are truncated.
func (e *Engine) EpisodeTicks() uint64 {
	return e.limit
}

// RNGDraws returns how many random draws the current episode consumed.
func (e *Engine) RNGDraws() uint64 {
	return e.rng.Draws()
}

func (e *Engine) level(id UpgradeID) float64 {
	return float64(e.world.Upgrades.Level(id))
}
