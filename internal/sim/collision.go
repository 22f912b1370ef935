package sim

import (
	"math"

	"github.com/Zordux/Last-Vector/internal/core"
)

const (
	// Squared distance under which a circle center counts as sitting on the box.
	degenerateDistSq = 1e-12
	// Direction components smaller than this are treated as parallel to an axis.
	parallelEps = 1e-9
)

// ClosestPointOnBox clamps p into the extent of b.
func ClosestPointOnBox(p core.Vec2, b core.Box) core.Vec2 {
	return core.Vec2{
		X: core.ClampF(p.X, b.X, b.MaxX()),
		Y: core.ClampF(p.Y, b.Y, b.MaxY()),
	}
}

// CircleOverlapsBox reports whether a circle touches or overlaps b.
func CircleOverlapsBox(center core.Vec2, radius float64, b core.Box) bool {
	d := center.Sub(ClosestPointOnBox(center, b))
	return d.LenSq() <= radius*radius
}

// ResolveCircleBox pushes a circle out of b so it ends tangent to the box.
//
// When the center lies inside the box the push follows the axis of least
// penetration, ties broken in the order left, right, top, bottom.
// It returns the corrected center and whether a correction was applied.
func ResolveCircleBox(center core.Vec2, radius float64, b core.Box) (core.Vec2, bool) {
	closest := ClosestPointOnBox(center, b)
	d := center.Sub(closest)
	d2 := d.LenSq()
	if d2 >= radius*radius {
		return center, false
	}

	if d2 > degenerateDistSq {
		dist := math.Sqrt(d2)
		return closest.Add(d.Scale(radius / dist)), true
	}

	left := math.Abs(center.X - b.X)
	right := math.Abs(b.MaxX() - center.X)
	top := math.Abs(center.Y - b.Y)
	bottom := math.Abs(b.MaxY() - center.Y)

	axis, best := 0, left
	if right < best {
		axis, best = 1, right
	}
	if top < best {
		axis, best = 2, top
	}
	if bottom < best {
		axis = 3
	}

	switch axis {
	case 0:
		center.X = b.X - radius
	case 1:
		center.X = b.MaxX() + radius
	case 2:
		center.Y = b.Y - radius
	default:
		center.Y = b.MaxY() + radius
	}
	return center, true
}

// RayBox returns the smallest non-negative parameter t where origin+t*dir
// enters b. An origin inside the box hits at t = 0.
// A zero-length direction only hits when the origin is inside.
func RayBox(origin, dir core.Vec2, b core.Box) (float64, bool) {
	if dir.LenSq() <= parallelEps*parallelEps {
		return 0, b.Contains(origin)
	}

	tmin, tmax := 0.0, math.Inf(1)

	if math.Abs(dir.X) < parallelEps {
		if origin.X < b.X || origin.X > b.MaxX() {
			return 0, false
		}
	} else {
		t1 := (b.X - origin.X) / dir.X
		t2 := (b.MaxX() - origin.X) / dir.X
		tmin = math.Max(tmin, math.Min(t1, t2))
		tmax = math.Min(tmax, math.Max(t1, t2))
	}

	if math.Abs(dir.Y) < parallelEps {
		if origin.Y < b.Y || origin.Y > b.MaxY() {
			return 0, false
		}
	} else {
		t1 := (b.Y - origin.Y) / dir.Y
		t2 := (b.MaxY() - origin.Y) / dir.Y
		tmin = math.Max(tmin, math.Min(t1, t2))
		tmax = math.Min(tmax, math.Max(t1, t2))
	}

	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return tmin, true
}

// RayCircle returns the smallest non-negative parameter t where
// origin+t*dir meets the circle. An origin inside the circle hits at t = 0.
// A zero-length direction only hits when the origin is inside.
func RayCircle(origin, dir, center core.Vec2, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	c := oc.LenSq() - radius*radius
	if c <= 0 {
		return 0, true
	}

	a := dir.LenSq()
	if a <= parallelEps*parallelEps {
		return 0, false
	}

	b := 2 * oc.Dot(dir)
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}

	s := math.Sqrt(disc)
	t0 := (-b - s) / (2 * a)
	t1 := (-b + s) / (2 * a)
	if t0 >= 0 {
		return t0, true
	}
	if t1 >= 0 {
		return t1, true
	}
	return 0, false
}

// RayBoundary returns the parameter where a ray from inside the arena
// leaves it. Directions with no exit component return +Inf.
func RayBoundary(origin, dir core.Vec2, width, height float64) float64 {
	best := math.Inf(1)
	if dir.X > parallelEps {
		best = math.Min(best, (width-origin.X)/dir.X)
	}
	if dir.X < -parallelEps {
		best = math.Min(best, -origin.X/dir.X)
	}
	if dir.Y > parallelEps {
		best = math.Min(best, (height-origin.Y)/dir.Y)
	}
	if dir.Y < -parallelEps {
		best = math.Min(best, -origin.Y/dir.Y)
	}
	return math.Max(best, 0)
}

// SeparateCircles pushes two circles apart until their centers are at least
// minDist apart. shareA is the fraction of the correction applied to a; the
// rest moves b. Coincident centers separate along +X.
func SeparateCircles(a, b core.Vec2, minDist, shareA float64) (core.Vec2, core.Vec2, bool) {
	d := b.Sub(a)
	dist := d.Len()
	if dist >= minDist {
		return a, b, false
	}

	n := core.Vec2{X: 1}
	if dist > 1e-9 {
		n = d.Scale(1 / dist)
	}
	overlap := minDist - dist
	a = a.Sub(n.Scale(overlap * shareA))
	b = b.Add(n.Scale(overlap * (1 - shareA)))
	return a, b, true
}

// ClampToArena keeps a circle of the given radius inside the arena.
func ClampToArena(p core.Vec2, radius, width, height float64) core.Vec2 {
	return core.Vec2{
		X: core.ClampF(p.X, radius, math.Max(radius, width-radius)),
		Y: core.ClampF(p.Y, radius, math.Max(radius, height-radius)),
	}
}

// ResolveWorld clamps a circle into the arena, pushes it out of every
// obstacle in order, then clamps again.
func ResolveWorld(p core.Vec2, radius, width, height float64, obstacles []core.Box) core.Vec2 {
	p = ClampToArena(p, radius, width, height)
	for _, o := range obstacles {
		p, _ = ResolveCircleBox(p, radius, o)
	}
	return ClampToArena(p, radius, width, height)
}
