package sim

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Digest returns a 64-bit hash of the complete world state. Two engines
// that replayed the same seed and actions on the same machine produce the
// same digest.
func (e *Engine) Digest() uint64 {
	return WorldDigest(&e.world)
}

// WorldDigest hashes w field by field in a fixed order.
func WorldDigest(w *World) uint64 {
	d := digester{h: xxhash.New()}

	d.u64(w.Seed)
	d.u64(w.Tick)
	d.f64(w.Elapsed)
	d.u64(uint64(w.Phase))
	d.f64(w.Difficulty)

	p := w.Player
	d.f64(p.Pos.X, p.Pos.Y, p.Vel.X, p.Vel.Y)
	d.f64(p.Health, p.MaxHealth, p.Stamina, p.MaxStamina)
	d.i64(p.Mag, p.MagCapacity, p.Reserve)
	d.f64(p.ShootCooldown, p.ReloadTimer, p.InvulnTimer)
	d.flag(p.Reloading)

	d.u64(uint64(len(w.Zombies)))
	for _, z := range w.Zombies {
		d.u64(z.ID)
		d.f64(z.Pos.X, z.Pos.Y, z.Vel.X, z.Vel.Y, z.HP, z.SlowTimer, z.TouchCooldown)
	}

	d.u64(uint64(len(w.Bullets)))
	for _, b := range w.Bullets {
		d.f64(b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y, b.Radius, b.Damage)
		d.i64(b.Pierce)
		d.u64(uint64(len(b.HitIDs)))
		for _, id := range b.HitIDs {
			d.u64(id)
		}
	}

	for id := UpgradeID(0); id < UpgradeCount; id++ {
		d.i64(w.Upgrades.Levels[id])
		d.flag(w.Upgrades.Used[id])
	}
	for _, id := range w.Offer {
		d.u64(uint64(id))
	}

	d.f64(w.SpawnBudget, w.UpgradeClock, w.ChoiceClock)
	d.u64(w.NextZombieID)

	s := w.Stats
	d.i64(s.Kills, s.ShotsFired, s.ShotsHit)
	d.f64(s.DamageDealt, s.DamageTaken)

	return d.h.Sum64()
}

type digester struct {
	h   *xxhash.Digest
	buf [8]byte
}

func (d *digester) u64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	_, _ = d.h.Write(d.buf[:])
}

func (d *digester) f64(vs ...float64) {
	for _, v := range vs {
		d.u64(math.Float64bits(v))
	}
}

func (d *digester) i64(vs ...int) {
	for _, v := range vs {
		d.u64(uint64(int64(v)))
	}
}

func (d *digester) flag(b bool) {
	if b {
		d.u64(1)
		return
	}
	d.u64(0)
}
