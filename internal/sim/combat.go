package sim

import (
	"math"
	"slices"
)

// updateBullets moves every bullet, drops the ones that left the arena or
// struck an obstacle, and applies hits to zombies in slice order.
// A bullet never hits a dead zombie or one it already struck.
func (e *Engine) updateBullets() {
	w := e.cfg.Arena.Width
	h := e.cfg.Arena.Height
	zr := e.cfg.Zombie.Radius
	uc := e.cfg.Upgrades
	frost := e.level(UpgradeFrostRounds)

	kept := e.world.Bullets[:0]
	for _, b := range e.world.Bullets {
		b.Pos = b.Pos.Add(b.Vel.Scale(e.dt))
		if b.Pos.X < 0 || b.Pos.X > w || b.Pos.Y < 0 || b.Pos.Y > h {
			continue
		}
		if e.hitsObstacle(b) {
			continue
		}

		alive := true
		for i := range e.world.Zombies {
			z := &e.world.Zombies[i]
			if z.HP <= 0 || slices.Contains(b.HitIDs, z.ID) {
				continue
			}
			if z.Pos.Sub(b.Pos).Len() > zr+b.Radius {
				continue
			}

			e.world.Stats.DamageDealt += math.Min(b.Damage, z.HP)
			e.world.Stats.ShotsHit++
			z.HP -= b.Damage
			if frost > 0 {
				z.SlowTimer = math.Max(z.SlowTimer, uc.FrostBaseSeconds+uc.FrostSecondsPerLevel*frost)
			}

			b.HitIDs = append(b.HitIDs, z.ID)
			b.Pierce--
			if b.Pierce < 0 {
				alive = false
				break
			}
		}

		if alive {
			kept = append(kept, b)
		}
	}

	// Clear the tail so dropped bullets do not linger in the backing array.
	for i := len(kept); i < len(e.world.Bullets); i++ {
		e.world.Bullets[i] = Bullet{}
	}
	e.world.Bullets = kept
}

func (e *Engine) hitsObstacle(b Bullet) bool {
	for _, o := range e.world.Obstacles {
		if CircleOverlapsBox(b.Pos, b.Radius, o) {
			return true
		}
	}
	return false
}

// removeDead drops zombies with no hit points left and returns how many.
func (e *Engine) removeDead() int {
	kept := e.world.Zombies[:0]
	for _, z := range e.world.Zombies {
		if z.HP > 0 {
			kept = append(kept, z)
		}
	}
	removed := len(e.world.Zombies) - len(kept)
	e.world.Zombies = kept
	return removed
}

// RingRadius returns the current ring of fire radius, or 0 without the upgrade.
func (e *Engine) RingRadius() float64 {
	lvl := e.level(UpgradeRingOfFire)
	if lvl <= 0 {
		return 0
	}
	return e.cfg.Upgrades.RingBaseRadius + e.cfg.Upgrades.RingRadiusPerLevel*lvl
}

func (e *Engine) applyRingOfFire() {
	radius := e.RingRadius()
	if radius <= 0 {
		return
	}

	lvl := e.level(UpgradeRingOfFire)
	uc := e.cfg.Upgrades
	dmg := (uc.RingBaseDPS + uc.RingDPSPerLevel*lvl) * e.dt
	center := e.world.Player.Pos

	for i := range e.world.Zombies {
		z := &e.world.Zombies[i]
		if z.Pos.Sub(center).Len() > radius {
			continue
		}
		e.world.Stats.DamageDealt += math.Min(dmg, math.Max(z.HP, 0))
		z.HP -= dmg
	}
}

// applyContact lets touching zombies hurt the player. Each hit starts the
// zombie's touch cooldown and the player's invulnerability window, so at
// most one zombie lands a hit per tick.
func (e *Engine) applyContact() {
	zc := e.cfg.Zombie
	p := &e.world.Player
	reach := zc.Radius + e.cfg.Player.Radius + zc.ContactReach

	for i := range e.world.Zombies {
		z := &e.world.Zombies[i]
		if z.TouchCooldown > 0 || p.InvulnTimer > 0 {
			continue
		}
		if z.Pos.Sub(p.Pos).Len() >= reach {
			continue
		}

		dmg := math.Min(zc.ContactDamage, p.Health)
		p.Health -= dmg
		e.world.Stats.DamageTaken += dmg
		z.TouchCooldown = zc.ContactCooldown
		p.InvulnTimer = e.cfg.Player.HitInvulnSeconds
	}
}

func (e *Engine) trySecondWind() {
	if !e.world.Upgrades.Consume(e.catalog, UpgradeSecondWind) {
		return
	}
	p := &e.world.Player
	p.Health = p.MaxHealth * e.cfg.Upgrades.SecondWindHealth
	p.InvulnTimer = e.cfg.Upgrades.SecondWindInvuln
	e.revived = true
}
