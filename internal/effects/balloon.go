package effects

import (
	"math"
	"math/rand"

	"github.com/ayusman/halo/internal/render"
)

const (
	balloonMinSpeed = 60.0
	balloonMaxSpeed = 110.0
	balloonLife     = 20.0
	balloonTether   = 1.4 // string length relative to balloon height
)

var balloonKnot = render.Polygon(-0.5, 0, 0.5, 0, 0, 0.7)

type balloon struct {
	body
	baseX     float64
	swayAmp   float64
	swayFreq  float64
	swayPhase float64
	sprites   *render.SpriteCache
}

func newBalloonFactory(sprites *render.SpriteCache) func() *balloon {
	return func() *balloon { return &balloon{sprites: sprites} }
}

func (b *balloon) reset() { *b = balloon{sprites: b.sprites} }

// init releases a balloon just below the bottom edge at x.
func (b *balloon) init(rng *rand.Rand, x, h, fade float64) {
	b.reset()
	b.active = true
	b.fadeOut = fade
	b.total = balloonLife
	b.life = b.total
	// Sizes snap to 4px steps to share sprites
	b.size = 32 + float64(rng.Intn(6))*4
	b.color = pick(rng, balloonColors)
	b.baseX = x
	b.x = x
	b.y = h + b.size
	b.vy = -between(rng, balloonMinSpeed, balloonMaxSpeed)
	b.swayAmp = between(rng, 8, 24)
	b.swayFreq = between(rng, 0.8, 1.6)
	b.swayPhase = rng.Float64() * 2 * math.Pi
}

func (b *balloon) Update(dt, t float64) bool {
	if !b.age(dt) {
		return false
	}
	b.y += b.vy * dt
	b.x = b.baseX + math.Sin(t*b.swayFreq+b.swayPhase)*b.swayAmp
	b.rot = math.Cos(t*b.swayFreq+b.swayPhase) * 0.08
	// Gone once the string clears the top edge
	return b.y+b.size*(0.6+balloonTether) > 0
}

// spriteSize returns the sprite dimensions: the body plus its string.
func (b *balloon) spriteSize() (w, h int) {
	return int(b.size) + 4, int(b.size*(1.2+balloonTether)) + 4
}

func (b *balloon) paint(c *render.Canvas) {
	w, h := c.Size()
	cx := float64(w) / 2
	bodyH := b.size * 1.2
	cy := bodyH/2 + 2

	// The body is a circle stretched vertically by stacking two circles
	r := b.size / 2
	c.FillCircle(cx, cy-r*0.1, r, b.color, render.Over)
	c.FillCircle(cx, cy+r*0.15, r*0.92, b.color, render.Over)
	c.FillPath(balloonKnot, render.Transform{X: cx, Y: cy + bodyH/2 - 1, Scale: r * 0.35}, b.color, render.Over)
	c.FillCircle(cx-r*0.35, cy-r*0.4, r*0.22, render.WithAlpha(stringColor, 0.5), render.Over)

	// String hangs below the knot with a slight wave
	top := cy + bodyH/2 + r*0.2
	bottom := float64(h) - 2
	seg := (bottom - top) / 4
	for i := 0; i < 4; i++ {
		y0, y1 := top+float64(i)*seg, top+float64(i+1)*seg
		x0 := cx + math.Sin(float64(i))*2
		x1 := cx + math.Sin(float64(i+1))*2
		c.StrokeLine(x0, y0, x1, y1, 1.2, stringColor, render.Over)
	}
}

func (b *balloon) Render(s render.Surface, t float64) {
	if !b.active {
		return
	}
	a := b.alpha()
	if b.sprites == nil {
		s.FillCircle(b.x, b.y, b.size/2, render.WithAlpha(b.color, a), render.Over)
		return
	}

	w, h := b.spriteSize()
	key := render.SpriteKey{Kind: "balloon", Size: int(b.size), Color: b.color}
	img := b.sprites.Get(key, w, h, b.paint)
	// The sprite's upper part is the body; offset so (x, y) is its center
	s.DrawSprite(img, b.x, b.y+float64(h)/2-b.size*0.6, a, render.Over)
}
