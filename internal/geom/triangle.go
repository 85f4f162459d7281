package geom

import "github.com/go-gl/mathgl/mgl64"

// TriHit is the result of a successful Möller–Trumbore test.
type TriHit struct {
	T          float64
	Normal     mgl64.Vec3 // unnormalized geometric normal, e1 x e2
	U, V       float64    // barycentric; W = 1 - U - V is left to the caller
}

// IntersectTriangle implements the Möller–Trumbore test of §4.1. tMinBound
// is the current best t for the traversal ("current best t_min" in the
// spec); a candidate must beat it strictly to be reported. Returns
// (hit, ok).
func IntersectTriangle(origin, dir, a, b, c mgl64.Vec3, tMinBound float64) (TriHit, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)

	p := dir.Cross(e2)
	det := p.Dot(e1)
	if absf(det) < Epsilon {
		return TriHit{}, false
	}

	inv := 1.0 / det
	s := origin.Sub(a)
	u := inv * p.Dot(s)
	if u < 0 || u > 1 {
		return TriHit{}, false
	}

	q := s.Cross(e1)
	v := inv * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return TriHit{}, false
	}

	t := inv * e2.Dot(q)
	if t <= Epsilon || t >= tMinBound {
		return TriHit{}, false
	}

	return TriHit{
		T:      t,
		Normal: e1.Cross(e2),
		U:      u,
		V:      v,
	}, true
}
