package sim

// Info summarizes the episode after a step.
type Info struct {
	Kills       int
	DamageTaken float64
	DamageDealt float64
	ShotsFired  int
	ShotsHit    int
	Accuracy    float64 // Hits per shot; above 1 is possible with piercing rounds
	Choosing    bool

	Tick           uint64
	EpisodeTime    float64
	Difficulty     float64
	ZombiesAlive   int
	NearestZombie  float64
	Selected       UpgradeID // Valid only when Picked is set
	Picked         bool      // An upgrade was applied during this step
	Revived        bool      // Second wind fired during this step
	Health         float64
	UpgradesChosen int
}

func (e *Engine) info() Info {
	w := &e.world
	chosen := 0
	for _, lvl := range w.Upgrades.Levels {
		chosen += lvl
	}
	return Info{
		Kills:          w.Stats.Kills,
		DamageTaken:    w.Stats.DamageTaken,
		DamageDealt:    w.Stats.DamageDealt,
		ShotsFired:     w.Stats.ShotsFired,
		ShotsHit:       w.Stats.ShotsHit,
		Accuracy:       w.Stats.Accuracy(),
		Choosing:       w.Phase == PhaseChoosingUpgrade,
		Tick:           w.Tick,
		EpisodeTime:    w.Elapsed,
		Difficulty:     w.Difficulty,
		ZombiesAlive:   len(w.Zombies),
		NearestZombie:  w.NearestZombie(e.arenaDiagonal()),
		Selected:       e.selected,
		Picked:         e.picked,
		Revived:        e.revived,
		Health:         w.Player.Health,
		UpgradesChosen: chosen,
	}
}

// Scalars flattens the info into named values for logs and metrics.
func (i Info) Scalars() map[string]float64 {
	selected := -1.0
	if i.Picked {
		selected = float64(i.Selected)
	}
	return map[string]float64{
		"kills":                   float64(i.Kills),
		"damage_taken":            i.DamageTaken,
		"damage_dealt":            i.DamageDealt,
		"shots_fired":             float64(i.ShotsFired),
		"shots_hit":               float64(i.ShotsHit),
		"accuracy":                i.Accuracy,
		"is_choosing_upgrade":     boolValue(i.Choosing),
		"tick":                    float64(i.Tick),
		"episode_time_s":          i.EpisodeTime,
		"difficulty":              i.Difficulty,
		"zombies_alive":           float64(i.ZombiesAlive),
		"nearest_zombie_distance": i.NearestZombie,
		"selected_upgrade":        selected,
		"revived":                 boolValue(i.Revived),
		"health":                  i.Health,
	}
}
