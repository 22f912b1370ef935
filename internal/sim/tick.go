package sim

import (
	"math"

	"github.com/Zordux/Last-Vector/internal/core"
)

// Axis movement below this is treated as blocked and zeroes that velocity axis.
const stuckEpsilon = 1e-4

// tick runs one fixed step of the playing phase. The order of the stages
// is part of the determinism contract.
func (e *Engine) tick(a Action) {
	e.decayTimers()
	e.movePlayer(a)
	e.handleReload(a)
	e.handleFire(a)
	e.moveZombies()
	e.separate()
	e.updateBullets()
	e.world.Stats.Kills += e.removeDead()
	e.applyRingOfFire()
	e.world.Stats.Kills += e.removeDead()
	e.applyContact()

	if e.world.Player.Health <= 0 {
		e.trySecondWind()
	}
	if e.world.Player.Health <= 0 {
		e.world.Player.Health = 0
		e.world.Phase = PhaseDead
	} else {
		e.spawn()
		e.advanceUpgradeClock()
	}

	e.world.Tick++
	e.world.Elapsed = float64(e.world.Tick) * e.dt
	e.sanitizeWorld()
}

func (e *Engine) decayTimers() {
	p := &e.world.Player
	p.ShootCooldown = math.Max(0, p.ShootCooldown-e.dt)
	p.ReloadTimer = math.Max(0, p.ReloadTimer-e.dt)
	p.InvulnTimer = math.Max(0, p.InvulnTimer-e.dt)

	for i := range e.world.Zombies {
		z := &e.world.Zombies[i]
		z.SlowTimer = math.Max(0, z.SlowTimer-e.dt)
		z.TouchCooldown = math.Max(0, z.TouchCooldown-e.dt)
	}
}

func (e *Engine) movePlayer(a Action) {
	pc := e.cfg.Player
	uc := e.cfg.Upgrades
	p := &e.world.Player

	cardio := e.level(UpgradeCardio)
	p.MaxStamina = pc.MaxStamina + uc.CardioStamina*cardio

	mul := 1.0
	if a.Sprint && p.Stamina > pc.SprintMinStamina {
		mul = pc.SprintMultiplier
		drain := math.Max(0, pc.StaminaDrain-uc.CardioDrainReduction*cardio)
		p.Stamina -= drain * e.dt
	} else {
		p.Stamina += (pc.StaminaRegen + uc.CardioRegen*cardio) * e.dt
	}
	p.Stamina = core.ClampF(p.Stamina, 0, p.MaxStamina)

	wish := core.V(a.MoveX, a.MoveY)
	if wish.LenSq() > 1 {
		wish = wish.Normalize()
	}

	p.Vel = p.Vel.Add(wish.Scale(pc.Accel * mul * e.dt))
	p.Vel = p.Vel.Scale(math.Max(0, 1-pc.Friction*e.dt))

	prev := p.Pos
	p.Pos = e.resolve(p.Pos.Add(p.Vel.Scale(e.dt)), pc.Radius)
	p.Vel = zeroBlockedAxes(prev, p.Pos, p.Vel)
}

// handleReload finishes a reload whose timer ran out, then starts a new one
// when requested or when the magazine is empty and auto reload is on.
func (e *Engine) handleReload(a Action) {
	wc := e.cfg.Weapon
	p := &e.world.Player

	p.MagCapacity = wc.MagazineSize + e.cfg.Upgrades.ExtendedMagRounds*e.world.Upgrades.Level(UpgradeExtendedMag)

	if p.Reloading && p.ReloadTimer <= 0 {
		moved := core.Min(p.MagCapacity-p.Mag, p.Reserve)
		if moved > 0 {
			p.Mag += moved
			p.Reserve -= moved
		}
		p.Reloading = false
	}

	want := a.Reload || (wc.AutoReload && p.Mag == 0)
	if want && !p.Reloading && p.Mag < p.MagCapacity && p.Reserve > 0 {
		p.Reloading = true
		p.ReloadTimer = math.Max(wc.MinReloadSeconds,
			wc.ReloadSeconds-e.cfg.Upgrades.FastHandsReduction*e.level(UpgradeFastHands))
	}
}

func (e *Engine) handleFire(a Action) {
	p := &e.world.Player
	if !a.Shoot || p.Reloading || p.ShootCooldown > 0 || p.Mag <= 0 {
		return
	}

	dir := core.V(a.AimX, a.AimY).Normalize()
	if dir.LenSq() < 0.01 {
		dir = core.V(1, 0)
	}

	wc := e.cfg.Weapon
	uc := e.cfg.Upgrades
	big := e.level(UpgradeBigShot)

	e.world.Bullets = append(e.world.Bullets, Bullet{
		Pos:    p.Pos,
		Vel:    dir.Scale(wc.BulletSpeed),
		Radius: wc.BulletRadius + uc.BigShotRadius*big,
		Damage: wc.BulletDamage + uc.BigShotDamage*big,
		Pierce: e.world.Upgrades.Level(UpgradePiercingRounds),
	})
	p.Mag--
	p.ShootCooldown = wc.ShootCooldown + uc.BigShotCooldown*big
	e.world.Stats.ShotsFired++
}

func (e *Engine) moveZombies() {
	zc := e.cfg.Zombie
	speed := zc.BaseSpeed + zc.SpeedPerLevel*e.world.Difficulty
	target := e.world.Player.Pos

	for i := range e.world.Zombies {
		z := &e.world.Zombies[i]
		s := speed
		if z.SlowTimer > 0 {
			s *= zc.SlowFactor
		}

		z.Vel = target.Sub(z.Pos).Normalize().Scale(s)
		prev := z.Pos
		z.Pos = e.resolve(z.Pos.Add(z.Vel.Scale(e.dt)), zc.Radius)
		z.Vel = zeroBlockedAxes(prev, z.Pos, z.Vel)
	}
}

// separate relaxes zombie-zombie and zombie-player overlaps for a fixed
// number of passes. Zombie pairs split the correction evenly; the player
// absorbs only its configured share.
func (e *Engine) separate() {
	zr := e.cfg.Zombie.Radius
	pr := e.cfg.Player.Radius
	share := e.cfg.Player.PushShare
	zs := e.world.Zombies
	p := &e.world.Player

	for it := 0; it < e.cfg.Zombie.SeparationIterations; it++ {
		for i := 0; i < len(zs); i++ {
			for j := i + 1; j < len(zs); j++ {
				a, b, moved := SeparateCircles(zs[i].Pos, zs[j].Pos, 2*zr, 0.5)
				if !moved {
					continue
				}
				zs[i].Pos = e.resolve(a, zr)
				zs[j].Pos = e.resolve(b, zr)
			}
		}

		for i := range zs {
			a, b, moved := SeparateCircles(p.Pos, zs[i].Pos, zr+pr, share)
			if !moved {
				continue
			}
			p.Pos = e.resolve(a, pr)
			zs[i].Pos = e.resolve(b, zr)
		}
	}
}

func (e *Engine) resolve(p core.Vec2, radius float64) core.Vec2 {
	return ResolveWorld(p, radius, e.cfg.Arena.Width, e.cfg.Arena.Height, e.world.Obstacles)
}

func zeroBlockedAxes(prev, cur, vel core.Vec2) core.Vec2 {
	if math.Abs(cur.X-prev.X) < stuckEpsilon {
		vel.X = 0
	}
	if math.Abs(cur.Y-prev.Y) < stuckEpsilon {
		vel.Y = 0
	}
	return vel
}

// sanitizeWorld replaces any non-finite kinematic value so a numeric fault
// cannot reach observations or rewards.
func (e *Engine) sanitizeWorld() {
	p := &e.world.Player
	if !p.Pos.IsFinite() {
		p.Pos = e.resolve(core.V(e.cfg.Player.SpawnX, e.cfg.Player.SpawnY), e.cfg.Player.Radius)
	}
	if !p.Vel.IsFinite() {
		p.Vel = core.Vec2{}
	}
	p.Health = core.ClampF(finiteOr(p.Health, 0), 0, p.MaxHealth)
	p.Stamina = core.ClampF(finiteOr(p.Stamina, 0), 0, p.MaxStamina)

	for i := range e.world.Zombies {
		z := &e.world.Zombies[i]
		if !z.Pos.IsFinite() {
			z.Pos = e.resolve(core.V(e.cfg.Zombie.Radius, e.cfg.Zombie.Radius), e.cfg.Zombie.Radius)
		}
		if !z.Vel.IsFinite() {
			z.Vel = core.Vec2{}
		}
	}
}
