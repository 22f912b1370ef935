package sim

import "math"

// reward scores the step from the stat deltas since the previous step and
// the current distance to the nearest zombie. advanced reports whether the
// world simulated a tick during the step.
func (e *Engine) reward(advanced bool) float64 {
	rc := e.cfg.Reward
	cur := e.world.Stats
	prev := e.prev

	kills := float64(cur.Kills - prev.Kills)
	shots := float64(cur.ShotsFired - prev.ShotsFired)
	hits := float64(cur.ShotsHit - prev.ShotsHit)
	dealt := cur.DamageDealt - prev.DamageDealt
	taken := cur.DamageTaken - prev.DamageTaken

	r := 0.0
	if advanced {
		r += rc.Survival
	}
	r += rc.Kill * kills
	r += rc.Hit * hits
	r += rc.DamageDealt * dealt
	r -= rc.DamageTaken * taken

	if nearest := e.world.NearestZombie(e.arenaDiagonal()); nearest < rc.ProximityRadius {
		r -= (rc.ProximityRadius - nearest) * rc.ProximityScale
	}

	if shots > 0 && hits <= 0 {
		r -= rc.Spray * shots
	}

	return finiteOr(r, 0)
}

func (e *Engine) arenaDiagonal() float64 {
	return math.Hypot(e.cfg.Arena.Width, e.cfg.Arena.Height)
}
