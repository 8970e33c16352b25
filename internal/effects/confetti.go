package effects

import (
	"math"
	"math/rand"

	"github.com/ayusman/halo/internal/render"
)

// Confetti physics, in canvas pixels and seconds.
const (
	confettiGravity   = 380.0
	confettiDrag      = 0.9
	confettiWind      = 70.0
	confettiWindFreq  = 1.7
	confettiMargin    = 40.0
	confettiMinLife   = 2.5
	confettiMaxLife   = 4.0
	confettiRoundOdds = 0.25
)

type confetti struct {
	body
	phase         float64
	round         bool
	width, height float64
}

func newConfetti() *confetti { return &confetti{} }

func (c *confetti) reset() { *c = confetti{} }

// init launches a piece from a random screen edge.
func (c *confetti) init(rng *rand.Rand, w, h, fade float64) {
	c.reset()
	c.width, c.height = w, h
	c.active = true
	c.fadeOut = fade
	c.total = between(rng, confettiMinLife, confettiMaxLife)
	c.life = c.total
	c.size = between(rng, 6, 12)
	c.color = pick(rng, confettiColors)
	c.round = rng.Float64() < confettiRoundOdds
	c.phase = rng.Float64() * 2 * math.Pi
	c.rot = rng.Float64() * 2 * math.Pi
	c.spin = between(rng, -8, 8)

	switch rng.Intn(3) {
	case 0: // top edge, drifting down
		c.x = rng.Float64() * w
		c.y = -c.size
		c.vx = between(rng, -60, 60)
		c.vy = between(rng, 40, 160)
	case 1: // left edge, thrown inward and up
		c.x = -c.size
		c.y = between(rng, 0.2, 0.7) * h
		c.vx = between(rng, 180, 420)
		c.vy = between(rng, -320, -80)
	default: // right edge
		c.x = w + c.size
		c.y = between(rng, 0.2, 0.7) * h
		c.vx = -between(rng, 180, 420)
		c.vy = between(rng, -320, -80)
	}
}

func (c *confetti) Update(dt, t float64) bool {
	if !c.age(dt) {
		return false
	}

	c.vy += confettiGravity * dt
	c.vx += math.Sin(t*confettiWindFreq+c.phase) * confettiWind * dt
	damp := math.Max(0, 1-confettiDrag*dt)
	c.vx *= damp
	c.vy *= damp
	c.x += c.vx * dt
	c.y += c.vy * dt
	if !c.round {
		c.rot += c.spin * dt
	}

	m := confettiMargin + c.size
	if c.x < -m || c.x > c.width+m || c.y > c.height+m {
		return false
	}
	return true
}

func (c *confetti) Render(s render.Surface, t float64) {
	if !c.active {
		return
	}
	col := render.WithAlpha(c.color, c.alpha())
	if c.round {
		s.FillCircle(c.x, c.y, c.size/2, col, render.Over)
		return
	}
	// Flutter by squashing the strip as it spins
	h := c.size * (0.35 + 0.25*math.Abs(math.Sin(t*6+c.phase)))
	s.FillRect(c.x, c.y, c.size, h, c.rot, col, render.Over)
}
