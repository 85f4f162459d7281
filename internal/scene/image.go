package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// HdrImage is a read-only, row-major (origin top-left), 4-channel
// floating-point image: environment maps and albedo/emission
// textures alike are stored this way so sampling needs no format
// branch. Pixels are RGBA in [0,1]+ (HDR values may exceed 1).
type HdrImage struct {
	Width, Height int
	Pixels        []mgl64.Vec4
}

// NewHdrImage allocates a zeroed image of the given dimensions.
func NewHdrImage(width, height int) *HdrImage {
	return &HdrImage{
		Width:  width,
		Height: height,
		Pixels: make([]mgl64.Vec4, width*height),
	}
}

func (img *HdrImage) at(x, y int) mgl64.Vec4 {
	x = clampInt(x, 0, img.Width-1)
	y = clampInt(y, 0, img.Height-1)
	return img.Pixels[y*img.Width+x]
}

// SampleNearest performs nearest-neighbor sampling at (u,v) in
// [0,1]x[0,1], matching the teacher's sampleNearest shape.
func (img *HdrImage) SampleNearest(u, v float64) mgl64.Vec4 {
	x := int(u * float64(img.Width))
	y := int(v * float64(img.Height))
	return img.at(x, y)
}

// SampleBilinear performs bilinear interpolation at (u,v), matching
// the teacher's sampleLinear shape generalized to float HDR channels.
func (img *HdrImage) SampleBilinear(u, v float64) mgl64.Vec4 {
	x := u*float64(img.Width) - 0.5
	y := v*float64(img.Height) - 0.5

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1

	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := img.at(x0, y0)
	c10 := img.at(x1, y0)
	c01 := img.at(x0, y1)
	c11 := img.at(x1, y1)

	cx0 := lerpVec4(c00, c10, fx)
	cx1 := lerpVec4(c01, c11, fx)
	return lerpVec4(cx0, cx1, fy)
}

func lerpVec4(a, b mgl64.Vec4, t float64) mgl64.Vec4 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
