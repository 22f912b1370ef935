// Package config provides YAML-based simulation configuration loading and
// difficulty management for Last-Vector.
package config

import (
	"errors"
	"fmt"

	"github.com/Zordux/Last-Vector/internal/core"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid simulation config")

// SimConfig contains every tuning value the simulation reads.
type SimConfig struct {
	Arena      ArenaConfig      `yaml:"arena"`
	Player     PlayerConfig     `yaml:"player"`
	Weapon     WeaponConfig     `yaml:"weapon"`
	Zombie     ZombieConfig     `yaml:"zombie"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Upgrades   UpgradeConfig    `yaml:"upgrades"`
	Reward     RewardConfig     `yaml:"reward"`
	Episode    EpisodeConfig    `yaml:"episode"`
	Sensors    SensorConfig     `yaml:"sensors"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// ArenaConfig defines the playfield and the fixed timestep.
type ArenaConfig struct {
	Width     float64    `yaml:"width"`
	Height    float64    `yaml:"height"`
	TickRate  int        `yaml:"tick_rate"` // Fixed ticks per simulated second
	Obstacles []core.Box `yaml:"obstacles"`
}

// PlayerConfig defines player movement and vitals.
type PlayerConfig struct {
	Radius           float64 `yaml:"radius"`
	SpawnX           float64 `yaml:"spawn_x"`
	SpawnY           float64 `yaml:"spawn_y"`
	MaxHealth        float64 `yaml:"max_health"`
	MaxStamina       float64 `yaml:"max_stamina"`
	Accel            float64 `yaml:"accel"`
	Friction         float64 `yaml:"friction"` // Fraction of velocity lost per second
	SprintMultiplier float64 `yaml:"sprint_multiplier"`
	SprintMinStamina float64 `yaml:"sprint_min_stamina"`
	StaminaDrain     float64 `yaml:"stamina_drain"` // Per second while sprinting
	StaminaRegen     float64 `yaml:"stamina_regen"` // Per second otherwise
	HitInvulnSeconds float64 `yaml:"hit_invuln_seconds"`
	PushShare        float64 `yaml:"push_share"` // Share of a zombie overlap the player absorbs
}

// WeaponConfig defines the base gun before upgrades.
type WeaponConfig struct {
	MagazineSize     int     `yaml:"magazine_size"`
	ReserveAmmo      int     `yaml:"reserve_ammo"`
	BulletSpeed      float64 `yaml:"bullet_speed"`
	BulletRadius     float64 `yaml:"bullet_radius"`
	BulletDamage     float64 `yaml:"bullet_damage"`
	ShootCooldown    float64 `yaml:"shoot_cooldown"`
	ReloadSeconds    float64 `yaml:"reload_seconds"`
	MinReloadSeconds float64 `yaml:"min_reload_seconds"`
	AutoReload       bool    `yaml:"auto_reload"` // Start reloading when the magazine runs dry
}

// ZombieConfig defines zombie stats and contact behavior.
type ZombieConfig struct {
	Radius               float64 `yaml:"radius"`
	BaseHP               float64 `yaml:"base_hp"`
	HPPerLevel           float64 `yaml:"hp_per_level"`
	BaseSpeed            float64 `yaml:"base_speed"`
	SpeedPerLevel        float64 `yaml:"speed_per_level"`
	SlowFactor           float64 `yaml:"slow_factor"`
	ContactDamage        float64 `yaml:"contact_damage"`
	ContactCooldown      float64 `yaml:"contact_cooldown"`
	ContactReach         float64 `yaml:"contact_reach"` // Extra distance beyond touching that still counts as contact
	SeparationIterations int     `yaml:"separation_iterations"`
}

// SpawnConfig defines the spawn budget and population cap.
type SpawnConfig struct {
	BaseRate         float64 `yaml:"base_rate"` // Spawns per second at difficulty 0
	RatePerLevel     float64 `yaml:"rate_per_level"`
	BaseMaxAlive     int     `yaml:"base_max_alive"`
	MaxAlivePerLevel float64 `yaml:"max_alive_per_level"`
	MaxBudget        float64 `yaml:"max_budget"` // Credits kept while the population is capped
}

// UpgradeConfig defines the offer cadence and per-level upgrade effects.
type UpgradeConfig struct {
	IntervalSeconds      float64 `yaml:"interval_seconds"`
	ChoiceTimeoutSeconds float64 `yaml:"choice_timeout_seconds"` // 0 waits forever

	RingBaseRadius     float64 `yaml:"ring_base_radius"`
	RingRadiusPerLevel float64 `yaml:"ring_radius_per_level"`
	RingBaseDPS        float64 `yaml:"ring_base_dps"`
	RingDPSPerLevel    float64 `yaml:"ring_dps_per_level"`

	BigShotRadius   float64 `yaml:"big_shot_radius"`
	BigShotDamage   float64 `yaml:"big_shot_damage"`
	BigShotCooldown float64 `yaml:"big_shot_cooldown"`

	FrostBaseSeconds     float64 `yaml:"frost_base_seconds"`
	FrostSecondsPerLevel float64 `yaml:"frost_seconds_per_level"`

	FastHandsReduction float64 `yaml:"fast_hands_reduction"`
	ExtendedMagRounds  int     `yaml:"extended_mag_rounds"`

	CardioStamina        float64 `yaml:"cardio_stamina"`
	CardioDrainReduction float64 `yaml:"cardio_drain_reduction"`
	CardioRegen          float64 `yaml:"cardio_regen"`

	SecondWindHealth float64 `yaml:"second_wind_health"` // Fraction of max health restored
	SecondWindInvuln float64 `yaml:"second_wind_invuln"`
}

// RewardConfig holds the shaping weights.
type RewardConfig struct {
	Survival        float64 `yaml:"survival"`
	Kill            float64 `yaml:"kill"`
	Hit             float64 `yaml:"hit"`
	DamageDealt     float64 `yaml:"damage_dealt"`
	DamageTaken     float64 `yaml:"damage_taken"`
	ProximityRadius float64 `yaml:"proximity_radius"`
	ProximityScale  float64 `yaml:"proximity_scale"`
	Spray           float64 `yaml:"spray"`
}

// EpisodeConfig defines episode length.
type EpisodeConfig struct {
	LimitSeconds float64 `yaml:"limit_seconds"`
}

// SensorConfig defines observation normalization constants.
type SensorConfig struct {
	RayRange      float64 `yaml:"ray_range"`
	VelocityScale float64 `yaml:"velocity_scale"`
	DistanceScale float64 `yaml:"distance_scale"`
	ReserveScale  float64 `yaml:"reserve_scale"`
}

// DifficultyConfig defines how the difficulty scalar grows with time.
type DifficultyConfig struct {
	Enabled      bool    `yaml:"enabled"`
	InitialLevel float64 `yaml:"initial_level"`
	RampSeconds  float64 `yaml:"ramp_seconds"` // Seconds per +1.0 of difficulty
	MaxLevel     float64 `yaml:"max_level"`    // 0 means uncapped
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. The empty string means no preset.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch DifficultyPreset(s) {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return DifficultyPreset(s), nil
	default:
		return "", fmt.Errorf("config: unknown difficulty preset %q", s)
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyHard:
		return 1.0
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// DT returns the fixed timestep in seconds.
func (c SimConfig) DT() float64 {
	return 1.0 / float64(c.Arena.TickRate)
}

// EpisodeTicks returns the number of ticks in a full-length episode.
func (c SimConfig) EpisodeTicks() uint64 {
	ticks := c.Episode.LimitSeconds*float64(c.Arena.TickRate) + 0.5
	if ticks < 1 {
		return 1
	}
	return uint64(ticks)
}

// Validate reports configuration values the simulation cannot run with.
func (c SimConfig) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Arena.Width > 0 && c.Arena.Height > 0, "arena dimensions must be positive"},
		{c.Arena.TickRate > 0, "arena.tick_rate must be positive"},
		{c.Player.Radius > 0, "player.radius must be positive"},
		{c.Player.MaxHealth > 0, "player.max_health must be positive"},
		{c.Player.MaxStamina >= 0, "player.max_stamina must not be negative"},
		{c.Player.Friction*c.DT() <= 1, "player.friction must not exceed the tick rate"},
		{c.Player.PushShare >= 0 && c.Player.PushShare <= 1, "player.push_share must be within [0, 1]"},
		{c.Weapon.MagazineSize > 0, "weapon.magazine_size must be positive"},
		{c.Weapon.ReserveAmmo >= 0, "weapon.reserve_ammo must not be negative"},
		{c.Weapon.BulletRadius > 0, "weapon.bullet_radius must be positive"},
		{c.Zombie.Radius > 0, "zombie.radius must be positive"},
		{c.Zombie.BaseHP > 0, "zombie.base_hp must be positive"},
		{c.Zombie.ContactReach >= 0, "zombie.contact_reach must not be negative"},
		{c.Zombie.SeparationIterations >= 0, "zombie.separation_iterations must not be negative"},
		{c.Spawn.BaseRate >= 0 && c.Spawn.RatePerLevel >= 0, "spawn rates must not be negative"},
		{c.Spawn.BaseMaxAlive >= 0, "spawn.base_max_alive must not be negative"},
		{c.Upgrades.IntervalSeconds > 0, "upgrades.interval_seconds must be positive"},
		{c.Upgrades.ChoiceTimeoutSeconds >= 0, "upgrades.choice_timeout_seconds must not be negative"},
		{c.Episode.LimitSeconds > 0, "episode.limit_seconds must be positive"},
		{c.Sensors.RayRange > 0, "sensors.ray_range must be positive"},
		{c.Sensors.VelocityScale > 0 && c.Sensors.DistanceScale > 0 && c.Sensors.ReserveScale > 0, "sensor scales must be positive"},
		{c.Difficulty.RampSeconds > 0, "difficulty.ramp_seconds must be positive"},
		{c.Difficulty.MaxLevel >= 0, "difficulty.max_level must not be negative"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, ch.msg)
		}
	}

	for i, o := range c.Arena.Obstacles {
		if o.W <= 0 || o.H <= 0 {
			return fmt.Errorf("%w: obstacle %d has non-positive size", ErrInvalidConfig, i)
		}
	}
	return nil
}
