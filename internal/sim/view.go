package sim

import "math"

// View gives named read access to an encoded observation. Accessors on a
// vector of the wrong length return zero values.
type View []float32

func (v View) at(i int) float64 {
	if i < 0 || i >= len(v) || len(v) != observationSize {
		return 0
	}
	return float64(v[i])
}

// Valid reports whether v has the observation length.
func (v View) Valid() bool {
	return len(v) == observationSize
}

// Position returns the player position as arena fractions.
func (v View) Position() (x, y float64) { return v.at(0), v.at(1) }

// Health returns the health fraction.
func (v View) Health() float64 { return v.at(4) }

// Stamina returns the stamina fraction.
func (v View) Stamina() float64 { return v.at(5) }

// Magazine returns the magazine fraction.
func (v View) Magazine() float64 { return v.at(6) }

// Reserve returns the normalized reserve ammo.
func (v View) Reserve() float64 { return v.at(7) }

// ShootCooldown returns the raw shot cooldown in seconds.
func (v View) ShootCooldown() float64 { return v.at(8) }

// Reloading reports whether a reload timer is running.
func (v View) Reloading() bool { return v.at(9) > 0 }

// Zombie returns slot i of the nearest-zombie block: the offset from the
// player as arena fractions and the normalized distance. ok is false for a
// padding slot.
func (v View) Zombie(i int) (relX, relY, dist float64, ok bool) {
	if i < 0 || i >= ZombieSlots || !v.Valid() {
		return 0, 0, 1, false
	}
	base := PlayerFeatures + i*ZombieFeatures
	relX, relY, dist = v.at(base), v.at(base+1), v.at(base+2)
	if relX == 0 && relY == 0 && dist == 1 {
		return 0, 0, 1, false
	}
	return relX, relY, dist, true
}

// ObstacleRay returns ray i's obstacle channel in [0, 1].
func (v View) ObstacleRay(i int) float64 {
	return v.at(PlayerFeatures + ZombieSlots*ZombieFeatures + i*RayChannels)
}

// ZombieRay returns ray i's zombie channel in [0, 1].
func (v View) ZombieRay(i int) float64 {
	return v.at(PlayerFeatures + ZombieSlots*ZombieFeatures + i*RayChannels + 1)
}

// RayAngle returns the direction of ray i in radians.
func RayAngle(i int) float64 {
	return float64(i) / RayCount * 2 * math.Pi
}

func (v View) scalar(i int) float64 {
	return v.at(PlayerFeatures + ZombieSlots*ZombieFeatures + RayCount*RayChannels + i)
}

// Difficulty returns the difficulty scalar.
func (v View) Difficulty() float64 { return v.scalar(0) }

// Choosing reports whether an upgrade offer is open.
func (v View) Choosing() bool { return v.scalar(1) > 0.5 }

// Offer returns the upgrade id in offer slot i, or false when no offer is
// open.
func (v View) Offer(i int) (UpgradeID, bool) {
	if i < 0 || i > 2 || !v.Choosing() {
		return 0, false
	}
	id := int(math.Floor(v.scalar(2+i) * float64(UpgradeCount)))
	if id < 0 || id >= int(UpgradeCount) {
		return 0, false
	}
	return UpgradeID(id), true
}

// UpgradeLevel returns the level of id as a fraction of its max stacks.
func (v View) UpgradeLevel(id UpgradeID) float64 {
	if !id.Valid() {
		return 0
	}
	return v.scalar(5 + int(id))
}
