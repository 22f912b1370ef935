package config

import "math"

// DifficultyManager maps elapsed episode time to the difficulty scalar.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: math.Max(0, cfg.InitialLevel),
	}
}

// SetInitialLevel overrides the starting difficulty level.
func (d *DifficultyManager) SetInitialLevel(level float64) {
	d.initialLevel = math.Max(0, level)
}

// SetEnabled enables or disables difficulty progression.
func (d *DifficultyManager) SetEnabled(enabled bool) {
	d.cfg.Enabled = enabled
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.RampSeconds > 0
}

// Level returns the difficulty scalar after elapsedSeconds of survived time.
// It grows by 1.0 every ramp_seconds and never decreases.
func (d *DifficultyManager) Level(elapsedSeconds float64) float64 {
	if !d.IsEnabled() || !(elapsedSeconds > 0) {
		return d.initialLevel
	}

	level := d.initialLevel + elapsedSeconds/d.cfg.RampSeconds
	if d.cfg.MaxLevel > 0 && level > d.cfg.MaxLevel {
		level = math.Max(d.cfg.MaxLevel, d.initialLevel)
	}
	return level
}
