package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirstar13/pathtracer/internal/mathutil"
	"github.com/mirstar13/pathtracer/internal/scene"
)

// selfIntersectEpsilon offsets a bounce's origin along the surface
// normal to avoid immediately re-hitting the same triangle (§4.7).
const selfIntersectEpsilon = 1e-4

// pathVertex is one vertex of a constructed path, §4.7.
type pathVertex struct {
	background bool

	outgoingDir mgl64.Vec3 // direction from this vertex back toward the previous one (== -rayDir)
	incomingDir mgl64.Vec3 // chosen bounce direction (unused for background vertices)
	normal      mgl64.Vec3
	worldPoint  mgl64.Vec3
	uv          mgl64.Vec2
	materialID  int32
}

// cosineWeightedBounce samples a bounce direction around normal using
// n + unitRandomVec renormalized, flipping if it points into the
// surface, exactly as §4.7 specifies.
func cosineWeightedBounce(normal mgl64.Vec3, rng *mathutil.RNG) mgl64.Vec3 {
	rv := rng.UnitVec3()
	candidate := normal.Add(mgl64.Vec3{rv[0], rv[1], rv[2]})
	if candidate.Len() < 1e-12 {
		return normal
	}
	candidate = candidate.Normalize()
	if candidate.Dot(normal) < 0 {
		candidate = candidate.Mul(-1)
	}
	return candidate
}

// TracePath constructs a path of up to MaxBounces vertices from a
// primary ray and resolves its radiance via the reverse sweep of
// §4.7. sc's material system must hold a BackgroundMaterialID entry
// for environment emission to be sampled on a miss; if absent,
// background vertices contribute zero emission.
func TracePath(sc *scene.Scene, origin, dir mgl64.Vec3, rng *mathutil.RNG, local *PerThreadMetrics) mgl64.Vec3 {
	vertices := make([]pathVertex, 0, MaxBounces)

	curOrigin, curDir := origin, dir
	for bounce := 0; bounce < MaxBounces; bounce++ {
		local.Rays++

		var sceneMetrics scene.SceneMetrics
		hit, ok := sc.IntersectScene(curOrigin, curDir, &sceneMetrics)
		local.BroadphaseTests += sceneMetrics.BroadphaseAabbTests
		local.MidphaseTests += sceneMetrics.MeshMetrics.AabbTests
		local.TriangleTests += sceneMetrics.MeshMetrics.TriangleTests
		if sceneMetrics.Incomplete {
			local.TraversalAborts++
		}
		local.TraversalAborts += sceneMetrics.MeshMetrics.MidphaseAborts

		if !ok {
			local.BackgroundHits++
			vertices = append(vertices, pathVertex{
				background:  true,
				outgoingDir: curDir.Mul(-1),
				materialID:  BackgroundMaterialID,
			})
			break
		}

		nextDir := cosineWeightedBounce(hit.Normal, rng)
		worldPoint := curOrigin.Add(curDir.Mul(hit.T))

		vertices = append(vertices, pathVertex{
			outgoingDir: curDir.Mul(-1),
			incomingDir: nextDir,
			normal:      hit.Normal,
			worldPoint:  worldPoint,
			uv:          hit.UV,
			materialID:  hit.MaterialID,
		})

		local.Bounces++
		curOrigin = worldPoint.Add(hit.Normal.Mul(selfIntersectEpsilon))
		curDir = nextDir
	}

	return accumulateRadiance(sc, vertices)
}

func accumulateRadiance(sc *scene.Scene, vertices []pathVertex) mgl64.Vec3 {
	radiance := mgl64.Vec3{0, 0, 0}

	for i := len(vertices) - 1; i >= 0; i-- {
		v := vertices[i]

		if v.background {
			mat, ok := sc.Materials.Material(BackgroundMaterialID)
			if !ok {
				radiance = mgl64.Vec3{0, 0, 0}
				continue
			}
			_, emission := sc.Materials.EvaluateMaterial(mat, scene.Vertex{OutgoingDir: v.outgoingDir})
			radiance = emission
			continue
		}

		mat, ok := sc.Materials.Material(v.materialID)
		if !ok {
			mat = scene.Material{AlbedoTextureID: scene.SentinelID, EmissionTextureID: scene.SentinelID}
		}
		albedo, emission := sc.Materials.EvaluateMaterial(mat, scene.Vertex{UV: v.uv, OutgoingDir: v.outgoingDir})

		cosTerm := math.Max(0, v.normal.Dot(v.incomingDir))
		bounced := mgl64.Vec3{albedo.X() * radiance.X(), albedo.Y() * radiance.Y(), albedo.Z() * radiance.Z()}.Mul(cosTerm)
		radiance = emission.Add(bounced)
	}

	return clampRadiance(radiance)
}

func clampRadiance(c mgl64.Vec3) mgl64.Vec3 {
	clampOne := func(x float64) float64 {
		if x < 0 {
			return 0
		}
		if x > RadianceClamp {
			return RadianceClamp
		}
		return x
	}
	return mgl64.Vec3{clampOne(c.X()), clampOne(c.Y()), clampOne(c.Z())}
}
