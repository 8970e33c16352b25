// Package render provides the drawing surface the effects engine paints
// onto: anti-aliased vector shapes, cached sprites and reduced-resolution
// additive glow layers over an RGBA frame buffer.
package render

import (
	"errors"
	"image"
	"image/color"
	"math"
)

// ErrNoSurface is returned when a canvas cannot be created with the
// requested dimensions.
var ErrNoSurface = errors.New("render: unusable drawing surface")

// Mode selects how a shape is composited onto the surface.
type Mode uint8

const (
	// Over is normal source-over alpha blending.
	Over Mode = iota
	// Add sums color channels, saturating at white ("lighter").
	Add
)

// Transform places a shape: scale, then rotate (radians), then translate.
type Transform struct {
	X, Y     float64
	Scale    float64
	Rotation float64
}

// Apply maps a shape-space point into surface coordinates.
func (t Transform) Apply(px, py float64) (float64, float64) {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	x, y := px*s, py*s
	if t.Rotation != 0 {
		sin, cos := math.Sincos(t.Rotation)
		x, y = x*cos-y*sin, x*sin+y*cos
	}
	return t.X + x, t.Y + y
}

// Surface is a 2D drawing target. Coordinates are canvas pixels with Y
// pointing down.
type Surface interface {
	// Bounds returns the drawable area in surface coordinates.
	Bounds() image.Rectangle
	// FillCircle fills a circle centered at (cx, cy).
	FillCircle(cx, cy, r float64, c color.NRGBA, mode Mode)
	// FillRect fills a w×h rectangle centered at (cx, cy) and rotated by
	// angle radians around its center.
	FillRect(cx, cy, w, h, angle float64, c color.NRGBA, mode Mode)
	// FillPath fills p after applying t.
	FillPath(p *Path, t Transform, c color.NRGBA, mode Mode)
	// StrokeLine draws a straight segment of the given width.
	StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA, mode Mode)
	// DrawSprite draws s centered at (cx, cy) with the given opacity.
	DrawSprite(s *image.RGBA, cx, cy, alpha float64, mode Mode)
	// Glow runs fn against a reduced-resolution layer that is blurred by
	// blur pixels and added onto this surface afterwards. Surfaces that
	// have glow disabled skip fn entirely.
	Glow(blur float64, fn func(Surface))
}

// WithAlpha returns c with its alpha scaled by a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	switch {
	case a <= 0:
		c.A = 0
	case a < 1:
		c.A = uint8(float64(c.A)*a + 0.5)
	}
	return c
}
