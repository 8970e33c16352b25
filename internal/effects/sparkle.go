package effects

import (
	"math"
	"math/rand"

	"github.com/ayusman/halo/internal/render"
)

const (
	sparkleGravity = 240.0
	sparkleMinLife = 0.8
	sparkleMaxLife = 1.6
	// sparkleBuckets quantizes sprite sizes so the cache stays small
	sparkleBuckets = 4
	sparkleMinSize = 6.0
	sparkleStep    = 3.0
)

var sparkleStar = render.Star(4, 0.35)

type sparkle struct {
	body
	ground  float64
	sprites *render.SpriteCache
}

func newSparkleFactory(sprites *render.SpriteCache) func() *sparkle {
	return func() *sparkle { return &sparkle{sprites: sprites} }
}

func (s *sparkle) reset() { *s = sparkle{sprites: s.sprites} }

// init emits a sparkle at (x, y) that drifts and falls toward ground.
func (s *sparkle) init(rng *rand.Rand, x, y, ground float64, burst bool, fade float64) {
	s.reset()
	s.active = true
	s.fadeOut = fade
	s.total = between(rng, sparkleMinLife, sparkleMaxLife)
	s.life = s.total
	s.x, s.y = x, y
	s.ground = ground
	s.size = sparkleMinSize + float64(rng.Intn(sparkleBuckets))*sparkleStep
	s.color = pick(rng, sparkleColors)
	s.rot = rng.Float64() * math.Pi

	s.vx = between(rng, -40, 40)
	s.vy = -between(rng, 30, 110)
	if burst {
		angle := rng.Float64() * 2 * math.Pi
		speed := between(rng, 80, 200)
		s.vx, s.vy = math.Cos(angle)*speed, math.Sin(angle)*speed
	}
}

func (s *sparkle) Update(dt, t float64) bool {
	if !s.age(dt) {
		return false
	}
	s.vy += sparkleGravity * dt
	s.x += s.vx * dt
	s.y += s.vy * dt
	return s.y < s.ground
}

func (s *sparkle) key() render.SpriteKey {
	return render.SpriteKey{Kind: "sparkle", Size: int(s.size), Color: s.color}
}

func (s *sparkle) Render(surface render.Surface, t float64) {
	if !s.active {
		return
	}
	twinkle := 0.65 + 0.35*math.Sin(t*14+s.rot*7)
	a := twinkle * s.alpha()
	if s.sprites == nil {
		surface.FillPath(sparkleStar, render.Transform{X: s.x, Y: s.y, Scale: s.size}, render.WithAlpha(s.color, a), render.Add)
		return
	}

	size := int(s.size)*2 + 2
	img := s.sprites.Get(s.key(), size, size, func(c *render.Canvas) {
		mid := float64(size) / 2
		c.FillPath(sparkleStar, render.Transform{X: mid, Y: mid, Scale: s.size}, s.color, render.Over)
		c.FillCircle(mid, mid, s.size*0.25, render.WithAlpha(s.color, 1), render.Add)
	})
	surface.DrawSprite(img, s.x, s.y, a, render.Add)
}

func (s *sparkle) renderGlow(surface render.Surface) {
	if !s.active {
		return
	}
	surface.FillCircle(s.x, s.y, s.size*1.4, render.WithAlpha(s.color, 0.45*s.alpha()), render.Add)
}
