package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirstar13/pathtracer/internal/mathutil"
	"github.com/mirstar13/pathtracer/internal/scene"
)

func TestNewCameraOrthonormalBasis(t *testing.T) {
	cam := NewCamera(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), 1.0, 200, 100)

	if cam.Forward.Dot(cam.Right) > 1e-9 || cam.Forward.Dot(cam.Up) > 1e-9 || cam.Right.Dot(cam.Up) > 1e-9 {
		t.Fatalf("expected orthonormal basis, got right=%v up=%v forward=%v", cam.Right, cam.Up, cam.Forward)
	}
	if math.Abs(cam.HalfFilmWidth-1.0) > 1e-9 {
		t.Fatalf("expected the wider axis to have half-extent 1.0, got %v", cam.HalfFilmWidth)
	}
	if cam.HalfFilmHeight >= 1.0 {
		t.Fatalf("expected the narrower axis half-extent < 1.0, got %v", cam.HalfFilmHeight)
	}
}

func TestCameraPrimaryRayThroughCenterHitsForward(t *testing.T) {
	cam := NewCamera(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), 1.0, 100, 100)
	_, dir := cam.PrimaryRay(49, 49, 100, 100, 0, 0)
	if dir.Sub(cam.Forward).Len() > 0.05 {
		t.Fatalf("expected ray through image center to point near forward %v, got %v", cam.Forward, dir)
	}
}

func flatQuadSceneFacingCamera(t *testing.T) *scene.Scene {
	t.Helper()
	verts := []scene.Vert{
		{Position: mgl64.Vec3{-5, -5, -5}, Normal: mgl64.Vec3{0, 0, 1}, UV: mgl64.Vec2{0, 0}},
		{Position: mgl64.Vec3{5, -5, -5}, Normal: mgl64.Vec3{0, 0, 1}, UV: mgl64.Vec2{1, 0}},
		{Position: mgl64.Vec3{5, 5, -5}, Normal: mgl64.Vec3{0, 0, 1}, UV: mgl64.Vec2{1, 1}},
		{Position: mgl64.Vec3{-5, 5, -5}, Normal: mgl64.Vec3{0, 0, 1}, UV: mgl64.Vec2{0, 1}},
	}
	mesh, err := scene.NewMesh(verts, []uint32{0, 1, 2, 0, 2, 3}, true)
	if err != nil {
		t.Fatal(err)
	}
	mesh.BuildMidphase()

	sc := scene.NewScene()
	if err := sc.AddObject(mesh, 1, mgl64.Ident4()); err != nil {
		t.Fatal(err)
	}
	sc.BuildBroadphase()

	if err := sc.Materials.RegisterMaterial(1, scene.Material{
		Albedo:            mgl64.Vec3{0.8, 0.2, 0.2},
		Emission:          mgl64.Vec3{0, 0, 0},
		AlbedoTextureID:   scene.SentinelID,
		EmissionTextureID: scene.SentinelID,
	}); err != nil {
		t.Fatal(err)
	}
	if err := sc.Materials.RegisterMaterial(BackgroundMaterialID, scene.Material{
		Emission:          mgl64.Vec3{0.5, 0.5, 0.9},
		AlbedoTextureID:   scene.SentinelID,
		EmissionTextureID: scene.SentinelID,
	}); err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestTracePathHitsQuadAndAccumulatesSomeRadiance(t *testing.T) {
	sc := flatQuadSceneFacingCamera(t)
	rng := mathutil.NewRNG(1)
	var local PerThreadMetrics

	radiance := TracePath(sc, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1}, rng, &local)
	if radiance.X() == 0 && radiance.Y() == 0 && radiance.Z() == 0 {
		t.Fatal("expected nonzero radiance from an emissive background reached through bounces")
	}
	if local.Rays == 0 {
		t.Fatal("expected at least one ray traced")
	}
}

func TestTracePathMissReturnsBackgroundEmission(t *testing.T) {
	sc := flatQuadSceneFacingCamera(t)
	rng := mathutil.NewRNG(2)
	var local PerThreadMetrics

	radiance := TracePath(sc, mgl64.Vec3{0, 0, 100}, mgl64.Vec3{0, 0, 1}, rng, &local)
	if radiance != (mgl64.Vec3{0.5, 0.5, 0.9}) {
		t.Fatalf("expected direct background emission (0.5,0.5,0.9), got %v", radiance)
	}
	if local.BackgroundHits != 1 {
		t.Fatalf("expected 1 background hit, got %d", local.BackgroundHits)
	}
}

func TestPathTraceTileOnlyTouchesItsOwnPixels(t *testing.T) {
	sc := flatQuadSceneFacingCamera(t)
	cam := NewCamera(mgl64.Vec3{0, 0, 10}, mgl64.QuatIdent(), 1, 8, 8)
	ctx := &RenderContext{Scene: sc, Camera: cam, Output: NewFrameBuffer(8, 8)}

	sentinel := mgl64.Vec3{-999, -999, -999}
	for i := range ctx.Output.Pixels {
		ctx.Output.Pixels[i] = sentinel
	}

	SamplesPerPixel = 2
	defer func() { SamplesPerPixel = 64 }()

	rng := mathutil.NewRNG(3)
	var local PerThreadMetrics
	tile := Tile{MinX: 2, MinY: 2, MaxX: 4, MaxY: 4}
	PathTraceTile(ctx, tile, rng, &local)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			inTile := tile.MinX <= x && x < tile.MaxX && tile.MinY <= y && y < tile.MaxY
			p := ctx.Output.Pixels[y*8+x]
			if inTile && p == sentinel {
				t.Fatalf("pixel (%d,%d) inside tile was not written", x, y)
			}
			if !inTile && p != sentinel {
				t.Fatalf("pixel (%d,%d) outside tile was modified", x, y)
			}
		}
	}
}

func TestCosineWeightedBounceStaysAboveSurface(t *testing.T) {
	rng := mathutil.NewRNG(5)
	normal := mgl64.Vec3{0, 0, 1}
	for i := 0; i < 200; i++ {
		d := cosineWeightedBounce(normal, rng)
		if d.Dot(normal) < 0 {
			t.Fatalf("bounce direction %v points below the surface", d)
		}
		if math.Abs(d.Len()-1) > 1e-6 {
			t.Fatalf("expected a unit bounce direction, got length %v", d.Len())
		}
	}
}
