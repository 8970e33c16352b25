package render

import (
	"image"

	"github.com/disintegration/gift"
	xdraw "golang.org/x/image/draw"
)

// DefaultGlowScale is the resolution of glow layers relative to the canvas.
const DefaultGlowScale = 0.5

// glowLayer is the offscreen pass behind Canvas.Glow: shapes are drawn at
// reduced resolution, blurred, upscaled and added onto the canvas.
type glowLayer struct {
	layer   *Canvas
	blurred *image.RGBA
	full    *image.RGBA
	filters map[float32]*gift.GIFT
}

func newGlowLayer(width, height int, scale float64, full image.Rectangle) *glowLayer {
	layer := newCanvas(width, height, scale)
	layer.isLayer = true
	layer.glowEnabled = false
	return &glowLayer{
		layer:   layer,
		blurred: image.NewRGBA(layer.img.Rect),
		full:    image.NewRGBA(full),
		filters: make(map[float32]*gift.GIFT),
	}
}

func (g *glowLayer) filter(sigma float32) *gift.GIFT {
	f, ok := g.filters[sigma]
	if !ok {
		f = gift.New(gift.GaussianBlur(sigma))
		g.filters[sigma] = f
	}
	return f
}

// Glow implements Surface. The callback draws in canvas coordinates; blur
// is given in canvas pixels. Layers never nest.
func (c *Canvas) Glow(blur float64, fn func(Surface)) {
	if !c.glowEnabled || c.isLayer || fn == nil {
		return
	}
	if c.glow == nil {
		c.glow = newGlowLayer(c.width, c.height, c.glowScale, c.img.Rect)
	}
	g := c.glow

	g.layer.Clear()
	fn(g.layer)
	if !g.layer.dirty {
		return
	}

	src := g.layer.img
	if sigma := float32(blur * c.glowScale); sigma > 0 {
		g.filter(sigma).Draw(g.blurred, src)
		src = g.blurred
	}
	xdraw.ApproxBiLinear.Scale(g.full, g.full.Rect, src, src.Rect, xdraw.Src, nil)
	addImage(c.img, g.full)
	c.dirty = true
}
