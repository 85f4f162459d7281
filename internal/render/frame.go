package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirstar13/pathtracer/internal/mathutil"
	"github.com/mirstar13/pathtracer/internal/scene"
)

// FrameBuffer is the output buffer written by PathTraceTile: one RGB
// float64 radiance value (mgl64.Vec3) per pixel, row-major with origin
// top-left like HdrImage. It has no alpha channel.
type FrameBuffer struct {
	Width, Height int
	Pixels        []mgl64.Vec3
}

// NewFrameBuffer allocates a zeroed buffer.
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{Width: width, Height: height, Pixels: make([]mgl64.Vec3, width*height)}
}

// RenderContext bundles everything a tile needs to trace its pixels:
// the scene, camera, and shared output buffer. It outlives the
// WorkQueue that hands out tiles against it (§3's Task entity).
type RenderContext struct {
	Scene  *scene.Scene
	Camera *Camera
	Output *FrameBuffer
}

// PathTraceTile implements path_trace_tile of §6: it writes RGB
// radiance for exactly the pixels inside tile and touches
// nothing outside it. rng is the calling worker's private generator.
func PathTraceTile(ctx *RenderContext, tile Tile, rng *mathutil.RNG, local *PerThreadMetrics) {
	w, h := ctx.Output.Width, ctx.Output.Height
	spp := SamplesPerPixel

	for y := tile.MinY; y < tile.MaxY; y++ {
		for x := tile.MinX; x < tile.MaxX; x++ {
			sum := mgl64.Vec3{0, 0, 0}
			for s := 0; s < spp; s++ {
				jitterX := rng.Range(-ctx.Camera.HalfPixelWidth, ctx.Camera.HalfPixelWidth)
				jitterY := rng.Range(-ctx.Camera.HalfPixelHeight, ctx.Camera.HalfPixelHeight)

				origin, dir := ctx.Camera.PrimaryRay(x, y, w, h, jitterX, jitterY)
				sum = sum.Add(TracePath(ctx.Scene, origin, dir, rng, local))
			}
			ctx.Output.Pixels[y*w+x] = sum.Mul(1.0 / float64(spp))
		}
	}
}
