package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// circleKappa places cubic control points for a quarter-circle arc.
const circleKappa = 0.5522847498

// Canvas is a Surface backed by an *image.RGBA frame buffer. Shapes are
// rasterized into a reusable coverage mask sized to their clipped bounding
// box and composited from there.
//
// A Canvas is owned by the frame loop and is not safe for concurrent use.
type Canvas struct {
	img           *image.RGBA
	width, height int
	// scale maps logical coordinates to pixels; below 1 for glow layers
	scale   float64
	isLayer bool

	ras     *vector.Rasterizer
	maskBuf []uint8
	mask    image.Alpha
	src     image.Uniform
	pathBuf []float64
	scratch *image.RGBA
	dirty   bool

	glowEnabled bool
	glowScale   float64
	glow        *glowLayer
}

// NewCanvas creates a transparent canvas. Non-positive dimensions return
// ErrNoSurface.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoSurface, width, height)
	}
	return newCanvas(width, height, 1), nil
}

func newCanvas(width, height int, scale float64) *Canvas {
	pw := int(math.Ceil(float64(width) * scale))
	ph := int(math.Ceil(float64(height) * scale))
	return &Canvas{
		img:         image.NewRGBA(image.Rect(0, 0, max(pw, 1), max(ph, 1))),
		width:       width,
		height:      height,
		scale:       scale,
		ras:         vector.NewRasterizer(1, 1),
		glowEnabled: true,
		glowScale:   DefaultGlowScale,
	}
}

// SetGlow toggles glow layers and sets their resolution relative to the
// canvas. Scales outside (0, 1] fall back to DefaultGlowScale.
func (c *Canvas) SetGlow(enabled bool, scale float64) {
	if scale <= 0 || scale > 1 {
		scale = DefaultGlowScale
	}
	if scale != c.glowScale {
		c.glow = nil
	}
	c.glowEnabled = enabled
	c.glowScale = scale
}

// GlowEnabled reports whether Glow passes are drawn.
func (c *Canvas) GlowEnabled() bool {
	return c.glowEnabled
}

// Bounds returns the logical canvas area.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// Size returns the logical canvas dimensions.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// Image returns the backing frame buffer.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear resets every pixel to transparent black.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
	c.dirty = false
}

// Fill paints the whole canvas with col.
func (c *Canvas) Fill(col color.Color) {
	xdraw.Draw(c.img, c.img.Rect, image.NewUniform(col), image.Point{}, xdraw.Src)
	c.dirty = true
}

// DrawBackground scales the sr region of src to cover the canvas.
func (c *Canvas) DrawBackground(src image.Image, sr image.Rectangle) {
	if src == nil || sr.Empty() {
		return
	}
	xdraw.ApproxBiLinear.Scale(c.img, c.img.Rect, src, sr, xdraw.Src, nil)
	c.dirty = true
}

// FillCircle implements Surface.
func (c *Canvas) FillCircle(cx, cy, r float64, col color.NRGBA, mode Mode) {
	if r <= 0 || col.A == 0 {
		return
	}
	cx, cy, r = cx*c.scale, cy*c.scale, r*c.scale

	rect, ok := c.clip(cx-r, cy-r, cx+r, cy+r)
	if !ok {
		return
	}
	c.begin(rect)

	x, y := cx-float64(rect.Min.X), cy-float64(rect.Min.Y)
	k := r * circleKappa
	c.ras.MoveTo(f32(x+r), f32(y))
	c.ras.CubeTo(f32(x+r), f32(y+k), f32(x+k), f32(y+r), f32(x), f32(y+r))
	c.ras.CubeTo(f32(x-k), f32(y+r), f32(x-r), f32(y+k), f32(x-r), f32(y))
	c.ras.CubeTo(f32(x-r), f32(y-k), f32(x-k), f32(y-r), f32(x), f32(y-r))
	c.ras.CubeTo(f32(x+k), f32(y-r), f32(x+r), f32(y-k), f32(x+r), f32(y))
	c.ras.ClosePath()

	c.finish(rect, col, mode)
}

// FillRect implements Surface.
func (c *Canvas) FillRect(cx, cy, w, h, angle float64, col color.NRGBA, mode Mode) {
	if w <= 0 || h <= 0 || col.A == 0 {
		return
	}
	t := Transform{X: cx, Y: cy, Rotation: angle}
	var quad [8]float64
	for i, corner := range [4][2]float64{{-w / 2, -h / 2}, {w / 2, -h / 2}, {w / 2, h / 2}, {-w / 2, h / 2}} {
		quad[2*i], quad[2*i+1] = t.Apply(corner[0], corner[1])
	}
	c.fillPolygon(quad[:], col, mode)
}

// StrokeLine implements Surface.
func (c *Canvas) StrokeLine(x0, y0, x1, y1, width float64, col color.NRGBA, mode Mode) {
	if width <= 0 || col.A == 0 {
		return
	}
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		c.FillCircle(x0, y0, width/2, col, mode)
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	quad := [8]float64{
		x0 + nx, y0 + ny,
		x1 + nx, y1 + ny,
		x1 - nx, y1 - ny,
		x0 - nx, y0 - ny,
	}
	c.fillPolygon(quad[:], col, mode)
}

// fillPolygon fills a closed polygon given as logical x,y pairs.
func (c *Canvas) fillPolygon(pts []float64, col color.NRGBA, mode Mode) {
	if len(pts) < 6 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(pts); i += 2 {
		pts[i] *= c.scale
		pts[i+1] *= c.scale
		minX, maxX = math.Min(minX, pts[i]), math.Max(maxX, pts[i])
		minY, maxY = math.Min(minY, pts[i+1]), math.Max(maxY, pts[i+1])
	}

	rect, ok := c.clip(minX, minY, maxX, maxY)
	if !ok {
		return
	}
	c.begin(rect)

	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	c.ras.MoveTo(f32(pts[0]-ox), f32(pts[1]-oy))
	for i := 2; i+1 < len(pts); i += 2 {
		c.ras.LineTo(f32(pts[i]-ox), f32(pts[i+1]-oy))
	}
	c.ras.ClosePath()

	c.finish(rect, col, mode)
}

// FillPath implements Surface.
func (c *Canvas) FillPath(p *Path, t Transform, col color.NRGBA, mode Mode) {
	if p.Empty() || col.A == 0 {
		return
	}

	// First pass: transform every point and find the bounding box. Control
	// points bound a cubic, so the box covers the curve.
	buf := c.pathBuf[:0]
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range p.segs {
		n := 1
		switch s.kind {
		case segClose:
			continue
		case segCube:
			n = 3
		}
		for i := 0; i < n; i++ {
			x, y := t.Apply(s.pts[i][0], s.pts[i][1])
			x, y = x*c.scale, y*c.scale
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
			buf = append(buf, x, y)
		}
	}
	c.pathBuf = buf

	rect, ok := c.clip(minX, minY, maxX, maxY)
	if !ok {
		return
	}
	c.begin(rect)

	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	pt := func(i int) (float32, float32) {
		return f32(buf[2*i] - ox), f32(buf[2*i+1] - oy)
	}
	idx := 0
	for _, s := range p.segs {
		switch s.kind {
		case segMove:
			c.ras.MoveTo(pt(idx))
			idx++
		case segLine:
			c.ras.LineTo(pt(idx))
			idx++
		case segCube:
			ax, ay := pt(idx)
			bx, by := pt(idx + 1)
			dx, dy := pt(idx + 2)
			c.ras.CubeTo(ax, ay, bx, by, dx, dy)
			idx += 3
		case segClose:
			c.ras.ClosePath()
		}
	}
	c.ras.ClosePath()

	c.finish(rect, col, mode)
}

// DrawSprite implements Surface.
func (c *Canvas) DrawSprite(s *image.RGBA, cx, cy, alpha float64, mode Mode) {
	if s == nil || alpha <= 0 {
		return
	}
	sb := s.Bounds()
	w, h := float64(sb.Dx())*c.scale, float64(sb.Dy())*c.scale
	x0, y0 := cx*c.scale-w/2, cy*c.scale-h/2
	dr := image.Rect(round(x0), round(y0), round(x0)+max(round(w), 1), round(y0)+max(round(h), 1))
	if !dr.Overlaps(c.img.Rect) {
		return
	}
	a := uint8(math.Round(math.Min(alpha, 1) * 255))
	c.dirty = true

	src, sp := s, sb.Min
	if dr.Dx() != sb.Dx() || dr.Dy() != sb.Dy() {
		src = c.scratchRGBA(dr.Dx(), dr.Dy())
		xdraw.ApproxBiLinear.Scale(src, src.Rect, s, sb, xdraw.Src, nil)
		sp = image.Point{}
	}

	if mode == Add {
		addImageAt(c.img, dr, src, sp, uint32(a))
		return
	}
	xdraw.DrawMask(c.img, dr, src, sp, image.NewUniform(color.Alpha{A: a}), image.Point{}, xdraw.Over)
}

func (c *Canvas) scratchRGBA(w, h int) *image.RGBA {
	if c.scratch == nil || c.scratch.Rect.Dx() < w || c.scratch.Rect.Dy() < h {
		c.scratch = image.NewRGBA(image.Rect(0, 0, max(w, 16), max(h, 16)))
	}
	return c.scratch.SubImage(image.Rect(0, 0, w, h)).(*image.RGBA)
}

// clip converts a floating-point box to pixels and intersects it with the
// frame buffer.
func (c *Canvas) clip(minX, minY, maxX, maxY float64) (image.Rectangle, bool) {
	if math.IsNaN(minX) || math.IsNaN(minY) || math.IsNaN(maxX) || math.IsNaN(maxY) {
		return image.Rectangle{}, false
	}
	b := c.img.Rect
	if maxX < float64(b.Min.X) || maxY < float64(b.Min.Y) || minX > float64(b.Max.X) || minY > float64(b.Max.Y) {
		return image.Rectangle{}, false
	}
	r := image.Rect(
		int(math.Floor(math.Max(minX, float64(b.Min.X)))),
		int(math.Floor(math.Max(minY, float64(b.Min.Y)))),
		int(math.Ceil(math.Min(maxX, float64(b.Max.X)))),
		int(math.Ceil(math.Min(maxY, float64(b.Max.Y)))),
	).Intersect(b)
	return r, !r.Empty()
}

func (c *Canvas) begin(rect image.Rectangle) {
	c.ras.Reset(rect.Dx(), rect.Dy())
	c.ras.DrawOp = xdraw.Src
}

func (c *Canvas) finish(rect image.Rectangle, col color.NRGBA, mode Mode) {
	w, h := rect.Dx(), rect.Dy()
	n := w * h
	if cap(c.maskBuf) < n {
		c.maskBuf = make([]uint8, n)
	}
	c.mask = image.Alpha{Pix: c.maskBuf[:n], Stride: w, Rect: image.Rect(0, 0, w, h)}
	c.ras.Draw(&c.mask, c.mask.Rect, image.Opaque, image.Point{})

	if mode == Add {
		addMasked(c.img, rect, &c.mask, col)
	} else {
		c.src.C = col
		xdraw.DrawMask(c.img, rect, &c.src, image.Point{}, &c.mask, image.Point{}, xdraw.Over)
	}
	c.dirty = true
}

func f32(v float64) float32 { return float32(v) }

func round(v float64) int { return int(math.Round(v)) }
