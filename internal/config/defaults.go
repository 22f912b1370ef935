package config

import (
	_ "embed"

	"github.com/Zordux/Last-Vector/internal/core"
)

//go:embed defaults/lastvector.yaml
var defaultSimYAML []byte

// DefaultObstacles returns the fixed arena layout.
func DefaultObstacles() []core.Box {
	return []core.Box{
		{X: 220, Y: 150, W: 180, H: 60},
		{X: 470, Y: 260, W: 140, H: 50},
		{X: 640, Y: 90, W: 80, H: 220},
		{X: 920, Y: 170, W: 150, H: 60},
		{X: 1080, Y: 330, W: 120, H: 120},
		{X: 180, Y: 420, W: 200, H: 70},
		{X: 440, Y: 520, W: 60, H: 200},
		{X: 620, Y: 440, W: 200, H: 80},
		{X: 860, Y: 560, W: 180, H: 60},
		{X: 1140, Y: 520, W: 80, H: 200},
		{X: 250, Y: 700, W: 220, H: 70},
		{X: 560, Y: 760, W: 140, H: 60},
	}
}

// DefaultSimConfig returns the built-in simulation configuration.
// It must stay in sync with defaults/lastvector.yaml.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Arena: ArenaConfig{
			Width:     1400,
			Height:    900,
			TickRate:  60,
			Obstacles: DefaultObstacles(),
		},
		Player: PlayerConfig{
			Radius:           11,
			SpawnX:           700,
			SpawnY:           380,
			MaxHealth:        100,
			MaxStamina:       100,
			Accel:            900,
			Friction:         7.5,
			SprintMultiplier: 1.55,
			SprintMinStamina: 1,
			StaminaDrain:     22,
			StaminaRegen:     14,
			HitInvulnSeconds: 0.45,
			PushShare:        0.2,
		},
		Weapon: WeaponConfig{
			MagazineSize:     12,
			ReserveAmmo:      120,
			BulletSpeed:      760,
			BulletRadius:     4,
			BulletDamage:     22,
			ShootCooldown:    0.17,
			ReloadSeconds:    1.2,
			MinReloadSeconds: 0.35,
			AutoReload:       true,
		},
		Zombie: ZombieConfig{
			Radius:               10,
			BaseHP:               26,
			HPPerLevel:           3,
			BaseSpeed:            155,
			SpeedPerLevel:        16,
			SlowFactor:           0.62,
			ContactDamage:        10,
			ContactCooldown:      0.25,
			ContactReach:         2,
			SeparationIterations: 2,
		},
		Spawn: SpawnConfig{
			BaseRate:         1.0,
			RatePerLevel:     1.2,
			BaseMaxAlive:     16,
			MaxAlivePerLevel: 18,
			MaxBudget:        4,
		},
		Upgrades: UpgradeConfig{
			IntervalSeconds:      20,
			ChoiceTimeoutSeconds: 0,
			RingBaseRadius:       70,
			RingRadiusPerLevel:   16,
			RingBaseDPS:          18,
			RingDPSPerLevel:      7,
			BigShotRadius:        1,
			BigShotDamage:        9,
			BigShotCooldown:      0.06,
			FrostBaseSeconds:     0.4,
			FrostSecondsPerLevel: 0.3,
			FastHandsReduction:   0.15,
			ExtendedMagRounds:    3,
			CardioStamina:        12,
			CardioDrainReduction: 2,
			CardioRegen:          2.5,
			SecondWindHealth:     0.6,
			SecondWindInvuln:     2.0,
		},
		Reward: RewardConfig{
			Survival:        0.02,
			Kill:            1.45,
			Hit:             0.03,
			DamageDealt:     0.002,
			DamageTaken:     0.05,
			ProximityRadius: 120,
			ProximityScale:  0.0008,
			Spray:           0.008,
		},
		Episode: EpisodeConfig{
			LimitSeconds: 180,
		},
		Sensors: SensorConfig{
			RayRange:      320,
			VelocityScale: 400,
			DistanceScale: 500,
			ReserveScale:  300,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			RampSeconds:  90,
			MaxLevel:     0,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultSimYAML
}
