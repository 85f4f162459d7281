package assets

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"golang.org/x/image/draw"

	"github.com/mirstar13/pathtracer/internal/render"
)

// gamma is the display encoding gamma applied before quantizing to
// 8-bit output, matching the teacher's color.go gamma-correction
// constant for its terminal/OpenGL backends.
const gamma = 1.0 / 2.2

// toImage tonemaps a FrameBuffer's linear radiance to an 8-bit RGBA
// image (clamp to [0,1], gamma-encode), shared by WritePNG and
// WritePreviewPNG.
func toImage(fb *render.FrameBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Pixels[y*fb.Width+x]
			img.SetRGBA(x, y, toRGBA(c))
		}
	}
	return img
}

func encodePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("assets: creating output file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("assets: encoding PNG to %s: %w", path, err)
	}
	return w.Flush()
}

// WritePNG tonemaps a rendered FrameBuffer's linear radiance to 8-bit
// sRGB-ish output and writes it as a full-resolution PNG at path.
func WritePNG(path string, fb *render.FrameBuffer) error {
	return encodePNG(path, toImage(fb))
}

// WritePreviewPNG tonemaps fb and writes a downsampled PNG at path,
// previewWidth wide with height scaled to preserve fb's aspect ratio.
// Used by cmd/pathtrace's --preview-width flag to produce a quick-to-
// transfer thumbnail alongside the full-resolution render.
func WritePreviewPNG(path string, fb *render.FrameBuffer, previewWidth int) error {
	if previewWidth <= 0 || previewWidth >= fb.Width {
		return fmt.Errorf("assets: preview width %d must be in (0, %d)", previewWidth, fb.Width)
	}
	previewHeight := (fb.Height*previewWidth + fb.Width/2) / fb.Width
	if previewHeight < 1 {
		previewHeight = 1
	}
	return encodePNG(path, Resize(toImage(fb), previewWidth, previewHeight))
}

// Resize scales src to the given dimensions using x/image/draw's
// bilinear scaler.
func Resize(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func toRGBA(c mgl64.Vec3) color.RGBA {
	encode := func(v float64) uint8 {
		v = math.Max(0, math.Min(1, v))
		v = math.Pow(v, gamma)
		return uint8(v*255 + 0.5)
	}
	return color.RGBA{R: encode(c.X()), G: encode(c.Y()), B: encode(c.Z()), A: 255}
}
