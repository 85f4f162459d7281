package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a ray in the space it was constructed for (world, or local to a
// mesh/object after the scene-level inverse-model transform, §4.5).
type Ray struct {
	Origin, Dir mgl64.Vec3
}

// MissT is the sentinel distance returned by a missed slab test.
const MissT = -1.0

// SlabTest performs the scalar ray/AABB slab test of §4.1. It returns
// (tEnter, true) on a hit, or (MissT, false) on a miss. A ray that
// starts inside the box hits at tEnter == 0.
func SlabTest(box AABB, origin, dir mgl64.Vec3) (float64, bool) {
	tMin, tMax := 0.0, math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		lo, hi := box.Min[axis], box.Max[axis]

		if absf(d) < Epsilon {
			if o < lo || o > hi {
				return MissT, false
			}
			continue
		}

		inv := 1.0 / d
		t0 := (lo - o) * inv
		t1 := (hi - o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return MissT, false
		}
	}
	return tMin, true
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Slab4 packs 4 AABBs for the widened ray/AABB test of §4.1.
type Slab4 struct {
	Min, Max [3][4]float64
}

// NewSlab4 builds a Slab4 from up to 4 boxes; unused trailing lanes are
// filled with an AABB that can never be hit (empty, inverted bounds),
// so a test against them always reports a 0 bit.
func NewSlab4(boxes []AABB) Slab4 {
	var s Slab4
	for i := 0; i < 4; i++ {
		b := Empty()
		if i < len(boxes) {
			b = boxes[i]
		}
		for axis := 0; axis < 3; axis++ {
			s.Min[axis][i] = b.Min[axis]
			s.Max[axis][i] = b.Max[axis]
		}
	}
	return s
}

// SlabTest4 is the 4-wide ray/AABB test of §4.1: inputs are 4 boxes, a
// ray origin, and a precomputed inverse direction. Bit i of the
// returned mask is set iff box i is hit; failing lanes report 0, never
// a negative/garbage bit.
func SlabTest4(s Slab4, origin, invDir mgl64.Vec3) uint8 {
	var mask uint8
	for i := 0; i < 4; i++ {
		if slabLaneHit(s, i, origin, invDir) {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

func slabLaneHit(s Slab4, lane int, origin, invDir mgl64.Vec3) bool {
	tMin, tMax := 0.0, math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		lo, hi := s.Min[axis][lane], s.Max[axis][lane]
		o, invD := origin[axis], invDir[axis]

		if math.IsInf(invD, 0) {
			if o < lo || o > hi {
				return false
			}
			continue
		}

		t0 := (lo - o) * invD
		t1 := (hi - o) * invD
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}

// InvDir precomputes the per-component reciprocal of a direction,
// producing +Inf for a component with |d| < Epsilon so SlabTest4's parallel-axis
// branch can detect it via math.IsInf.
func InvDir(dir mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		if absf(dir[axis]) < Epsilon {
			out[axis] = math.Inf(1)
		} else {
			out[axis] = 1.0 / dir[axis]
		}
	}
	return out
}
