package core

// RuntimeConfig contains the settings a viewer needs at startup.
// The simulation has its own tuning config; this one covers only the
// terminal surface and wall-clock pacing.
type RuntimeConfig struct {
	ScreenW  int    // Screen width in characters
	ScreenH  int    // Screen height in characters
	TickRate int    // Wall-clock ticks per second (default 60)
	Seed     uint64 // Episode seed; 0 means pick one from the clock
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0,
	}
}
