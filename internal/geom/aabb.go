// Package geom implements the ray/primitive kernels: AABB construction
// and transform, the scalar and 4-wide ray/AABB slab tests, and the
// Möller–Trumbore ray/triangle test. These are leaf-level kernels with
// no dependency on the BVH or scene packages.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for "effectively zero" comparisons
// across the ray/primitive kernels (parallel-axis detection, degenerate
// direction/determinant checks).
const Epsilon = 1e-8

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl64.Vec3
}

// Empty returns an AABB with inverted bounds, suitable as the identity
// element for repeated Union calls.
func Empty() AABB {
	return AABB{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// FromPoints returns the AABB spanning the given points.
func FromPoints(points ...mgl64.Vec3) AABB {
	box := Empty()
	for _, p := range points {
		box = box.ExpandPoint(p)
	}
	return box
}

// ExpandPoint returns a new AABB containing the receiver and p.
func (b AABB) ExpandPoint(p mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(b.Min.X(), p.X()), math.Min(b.Min.Y(), p.Y()), math.Min(b.Min.Z(), p.Z())},
		Max: mgl64.Vec3{math.Max(b.Max.X(), p.X()), math.Max(b.Max.Y(), p.Y()), math.Max(b.Max.Z(), p.Z())},
	}
}

// Union returns the component-wise union of two boxes (used by the BVH
// builder's internal-node AABB computation, §4.2).
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(b.Min.X(), o.Min.X()), math.Min(b.Min.Y(), o.Min.Y()), math.Min(b.Min.Z(), o.Min.Z())},
		Max: mgl64.Vec3{math.Max(b.Max.X(), o.Max.X()), math.Max(b.Max.Y(), o.Max.Y()), math.Max(b.Max.Z(), o.Max.Z())},
	}
}

// Contains reports whether o's bounds lie within b, component-wise
// (used by BVH invariant tests: I.min <= c.min, I.max >= c.max).
func (b AABB) Contains(o AABB) bool {
	return b.Min.X() <= o.Min.X() && b.Min.Y() <= o.Min.Y() && b.Min.Z() <= o.Min.Z() &&
		b.Max.X() >= o.Max.X() && b.Max.Y() >= o.Max.Y() && b.Max.Z() >= o.Max.Z()
}

// Centroid returns (min+max)/2, the point the BVH builder pairs on.
func (b AABB) Centroid() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// corners returns the 8 corners of the box.
func (b AABB) corners() [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{b.Min.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Min.Z()},
		{b.Min.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Max.Y(), b.Min.Z()},
		{b.Min.X(), b.Min.Y(), b.Max.Z()},
		{b.Max.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Max.Z()},
		{b.Max.X(), b.Max.Y(), b.Max.Z()},
	}
}

// TransformTRS transforms an AABB by a 4x4 TRS matrix, expanding the 8
// corners and taking the component-wise bound of the result (§4.5: "add
// object to scene" path that produces the world-space object AABB).
func (b AABB) TransformTRS(m mgl64.Mat4) AABB {
	corners := b.corners()
	out := Empty()
	for _, c := range corners {
		v4 := m.Mul4x1(mgl64.Vec4{c.X(), c.Y(), c.Z(), 1})
		out = out.ExpandPoint(mgl64.Vec3{v4.X(), v4.Y(), v4.Z()})
	}
	return out
}
