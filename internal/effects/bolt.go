package effects

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/ayusman/halo/internal/pool"
	"github.com/ayusman/halo/internal/render"
)

// Rocket and spark physics.
const (
	rocketGravity  = 520.0
	rocketMinRise  = 0.45
	rocketMaxRise  = 0.75
	rocketMaxLife  = 3.0
	rocketTrail    = 14.0
	sparkGravity   = 160.0
	sparkDrag      = 1.6
	sparkMinLife   = 0.7
	sparkMaxLife   = 1.25
	sparkMinSpeed  = 110.0
	sparkMaxSpeed  = 250.0
	sparkBaseCount = 18
	sparkExtra     = 10 // sparks per burst span 18..27 before scaling
)

type spark struct {
	body
}

func newSpark() *spark { return &spark{} }

func (s *spark) reset() { *s = spark{} }

func (s *spark) Update(dt, t float64) bool {
	if !s.age(dt) {
		return false
	}
	damp := math.Max(0, 1-sparkDrag*dt)
	s.vx *= damp
	s.vy = s.vy*damp + sparkGravity*dt
	s.x += s.vx * dt
	s.y += s.vy * dt
	return true
}

// remaining is the fraction of lifetime left, which shrinks and dims the
// spark as it decays.
func (s *spark) remaining() float64 {
	if s.total <= 0 {
		return 0
	}
	return math.Max(0, s.life/s.total)
}

func (s *spark) Render(surface render.Surface, t float64) {
	if !s.active {
		return
	}
	k := s.remaining()
	a := math.Min(k*1.5, 1) * s.alpha()
	surface.FillCircle(s.x, s.y, s.size*(0.4+0.6*k), render.WithAlpha(s.color, a), render.Add)
	surface.StrokeLine(s.x, s.y, s.x-s.vx*0.03, s.y-s.vy*0.03, s.size*0.6, render.WithAlpha(s.color, a*0.6), render.Add)
}

func (s *spark) renderGlow(surface render.Surface) {
	if !s.active {
		return
	}
	surface.FillCircle(s.x, s.y, s.size*3, render.WithAlpha(s.color, 0.5*s.remaining()*s.alpha()), render.Add)
}

// bolt is one firework: a rising rocket that bursts into pooled sparks.
// It stays alive while the rocket flies or any spark is lit.
type bolt struct {
	body
	scale     float64
	rising    bool
	pending   bool
	sparks    []*spark
	sparkPool *pool.Pool[*spark]
}

func newBoltFactory(sparks *pool.Pool[*spark]) func() *bolt {
	return func() *bolt {
		return &bolt{sparkPool: sparks}
	}
}

// reset releases any lit sparks back to their pool.
func (b *bolt) reset() {
	for _, s := range b.sparks {
		s.reset()
		b.sparkPool.Release(s)
	}
	clear(b.sparks)
	*b = bolt{sparks: b.sparks[:0], sparkPool: b.sparkPool}
}

// init launches a rocket from x at the bottom of a w×h canvas.
func (b *bolt) init(rng *rand.Rand, x, w, h, fade float64) {
	b.reset()
	b.active = true
	b.rising = true
	b.fadeOut = fade
	b.total = rocketMaxLife
	b.life = b.total
	b.x = x
	b.y = h + 4
	b.size = 3
	b.color = pick(rng, boltColors)
	b.scale = between(rng, 0.8, 1.3)

	rise := between(rng, rocketMinRise, rocketMaxRise) * h
	b.vy = -math.Sqrt(2 * rocketGravity * rise)
	b.vx = between(rng, -0.04, 0.04) * w
}

func (b *bolt) clampLife(max float64) {
	b.body.clampLife(max)
	for _, s := range b.sparks {
		s.clampLife(max)
	}
}

func (b *bolt) Update(dt, t float64) bool {
	if !b.active {
		return false
	}

	if b.rising {
		b.life -= dt
		b.vy += rocketGravity * dt
		b.x += b.vx * dt
		b.y += b.vy * dt
		switch {
		case b.life <= lifeEpsilon:
			b.rising = false
		case b.vy >= 0:
			b.rising = false
			b.pending = true
		}
	}

	kept := b.sparks[:0]
	for _, s := range b.sparks {
		if s.Update(dt, t) {
			kept = append(kept, s)
			continue
		}
		s.reset()
		b.sparkPool.Release(s)
	}
	clear(b.sparks[len(kept):])
	b.sparks = kept

	return b.rising || b.pending || len(b.sparks) > 0
}

// explode turns the rocket into at most limit sparks.
func (b *bolt) explode(rng *rand.Rand, limit int) {
	b.pending = false
	n := int(math.Round(float64(sparkBaseCount+rng.Intn(sparkExtra)) * b.scale))
	n = min(n, limit)
	for i := 0; i < n; i++ {
		s := b.sparkPool.Get()
		s.active = true
		s.fadeOut = b.fadeOut
		s.total = between(rng, sparkMinLife, sparkMaxLife)
		s.life = s.total
		s.x, s.y = b.x, b.y
		s.size = between(rng, 1.5, 3) * b.scale
		s.color = b.color
		if rng.Intn(4) == 0 {
			s.color = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}

		angle := float64(i)/float64(n)*2*math.Pi + between(rng, -0.15, 0.15)
		speed := between(rng, sparkMinSpeed, sparkMaxSpeed) * b.scale
		s.vx = math.Cos(angle) * speed
		s.vy = math.Sin(angle) * speed
		b.sparks = append(b.sparks, s)
	}
}

// cancel drops a pending explosion; used while the scene shuts down.
func (b *bolt) cancel() {
	b.pending = false
}

// particles counts the rocket (while it flies) plus lit sparks.
func (b *bolt) particles() int {
	n := len(b.sparks)
	if b.rising || b.pending {
		n++
	}
	return n
}

func (b *bolt) Render(s render.Surface, t float64) {
	if !b.active {
		return
	}
	if b.rising {
		a := b.alpha()
		s.StrokeLine(b.x, b.y, b.x-b.vx*0.02, b.y+rocketTrail, 2, render.WithAlpha(rocketColor, 0.6*a), render.Add)
		s.FillCircle(b.x, b.y, b.size, render.WithAlpha(rocketColor, a), render.Add)
	}
	for _, sp := range b.sparks {
		sp.Render(s, t)
	}
}

func (b *bolt) renderGlow(s render.Surface) {
	if !b.active {
		return
	}
	if b.rising {
		s.FillCircle(b.x, b.y, b.size*4, render.WithAlpha(b.color, 0.5*b.alpha()), render.Add)
	}
	for _, sp := range b.sparks {
		sp.renderGlow(s)
	}
}
