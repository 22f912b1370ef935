package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file searched for in the config directories.
const ConfigFileName = "lastvector.yaml"

// LoadSim loads the simulation configuration.
// Search order: customPath -> ~/.lastvector/configs/lastvector.yaml ->
// ./configs/lastvector.yaml -> embedded default.
// Files are decoded over the defaults, so partial files are allowed.
func LoadSim(customPath string) (SimConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return SimConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseSim(data)
		if err != nil {
			return SimConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(ConfigFileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := ParseSim(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", ConfigFileName)); err == nil {
		if cfg, err := ParseSim(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := ParseSim(defaultSimYAML)
	if err != nil {
		return DefaultSimConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ParseSim decodes YAML over the built-in defaults and validates the result.
func ParseSim(data []byte) (SimConfig, error) {
	cfg := DefaultSimConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SimConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return SimConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lastvector", "configs", filename)
}

// ApplySimPreset modifies the config based on a difficulty preset.
// The empty preset leaves the config untouched.
func ApplySimPreset(cfg *SimConfig, preset DifficultyPreset) {
	if preset == "" {
		return
	}
	if IsFixedPreset(preset) {
		cfg.Difficulty.Enabled = false
		return
	}

	cfg.Difficulty.Enabled = true
	cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)

	// Adjust pacing based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Difficulty.RampSeconds = 120
		cfg.Player.MaxHealth = 150
	case DifficultyHard:
		cfg.Difficulty.RampSeconds = 60
		cfg.Weapon.ReserveAmmo = 90
	}
}
