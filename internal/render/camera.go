package render

import "github.com/go-gl/mathgl/mgl64"

// Camera is the §4.7 viewing model: position + unit quaternion
// orientation + film distance + image aspect, generalized from the
// teacher's Camera (camera.go) which tracked the same basis vectors
// through a Transform. Here the orthonormal basis and film geometry
// are derived once at construction rather than recomputed per query.
type Camera struct {
	Position     mgl64.Vec3
	Orientation  mgl64.Quat

	Right, Up, Forward mgl64.Vec3
	FilmCenter         mgl64.Vec3
	HalfFilmWidth      float64
	HalfFilmHeight     float64
	HalfPixelWidth     float64
	HalfPixelHeight    float64
}

// NewCamera builds the orthonormal basis and film geometry of §4.7.
// imageWidth/imageHeight set the aspect ratio; the longer axis has a
// half-extent of 1.0.
func NewCamera(position mgl64.Vec3, orientation mgl64.Quat, filmDistance float64, imageWidth, imageHeight int) *Camera {
	rot := orientation.Mat4()
	right := rot.Mul4x1(mgl64.Vec4{1, 0, 0, 0}).Vec3().Normalize()
	up := rot.Mul4x1(mgl64.Vec4{0, 1, 0, 0}).Vec3().Normalize()
	forward := rot.Mul4x1(mgl64.Vec4{0, 0, -1, 0}).Vec3().Normalize()

	halfW, halfH := 1.0, 1.0
	if imageWidth >= imageHeight {
		halfH = float64(imageHeight) / float64(imageWidth)
	} else {
		halfW = float64(imageWidth) / float64(imageHeight)
	}

	return &Camera{
		Position:        position,
		Orientation:     orientation,
		Right:           right,
		Up:              up,
		Forward:         forward,
		FilmCenter:      position.Add(forward.Mul(filmDistance)),
		HalfFilmWidth:   halfW,
		HalfFilmHeight:  halfH,
		HalfPixelWidth:  0.5 / float64(imageWidth),
		HalfPixelHeight: 0.5 / float64(imageHeight),
	}
}

// FilmPoint maps normalized film coordinates (nx, ny in [-1,1]) to a
// world-space point on the film plane.
func (c *Camera) FilmPoint(nx, ny float64) mgl64.Vec3 {
	offset := c.Right.Mul(nx * c.HalfFilmWidth).Add(c.Up.Mul(ny * c.HalfFilmHeight))
	return c.FilmCenter.Add(offset)
}

// PrimaryRay emits a ray from the camera position through a film
// point at pixel (x,y), image dims (width,height), offset by a
// sub-pixel jitter in [-halfPixel, halfPixel]^2.
func (c *Camera) PrimaryRay(x, y, width, height int, jitterX, jitterY float64) (origin, dir mgl64.Vec3) {
	nx := (2*(float64(x)+0.5)/float64(width) - 1) + jitterX/c.HalfFilmWidth
	ny := (1 - 2*(float64(y)+0.5)/float64(height)) + jitterY/c.HalfFilmHeight

	film := c.FilmPoint(nx, ny)
	dir = film.Sub(c.Position).Normalize()
	return c.Position, dir
}
