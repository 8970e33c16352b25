package effects

import (
	"math"
	"math/rand"

	"github.com/ayusman/halo/internal/render"
)

const (
	heartMinLife = 2.0
	heartMaxLife = 3.2
	// heartFade is the closing fade every heart gets, even without a
	// release event
	heartFade = 0.4
)

// heartPath is a unit heart centered on the origin, about one unit wide.
var heartPath = (&render.Path{}).
	MoveTo(0, -0.25).
	CubeTo(0, -0.55, -0.5, -0.6, -0.5, -0.2).
	CubeTo(-0.5, 0.1, -0.2, 0.3, 0, 0.6).
	CubeTo(0.2, 0.3, 0.5, 0.1, 0.5, -0.2).
	CubeTo(0.5, -0.6, 0, -0.55, 0, -0.25).
	Close()

type heart struct {
	body
	baseX     float64
	swayAmp   float64
	swayFreq  float64
	swayPhase float64
}

func newHeart() *heart { return &heart{} }

func (h *heart) reset() { *h = heart{} }

// init floats a heart up from (x, y). Burst hearts scatter wider.
func (h *heart) init(rng *rand.Rand, x, y float64, burst bool, fade float64) {
	h.reset()
	h.active = true
	h.fadeOut = math.Max(fade, heartFade)
	h.total = between(rng, heartMinLife, heartMaxLife)
	h.life = h.total
	h.size = between(rng, 16, 34)
	h.color = pick(rng, heartColors)

	spread := 24.0
	if burst {
		spread = 90
	}
	h.baseX = x + between(rng, -spread, spread)
	h.x = h.baseX
	h.y = y + between(rng, -spread/2, spread/2)
	h.vy = -between(rng, 60, 140)
	h.swayAmp = between(rng, 12, 36)
	h.swayFreq = between(rng, 1.8, 3.2)
	h.swayPhase = rng.Float64() * 2 * math.Pi
	h.rot = between(rng, -0.3, 0.3)
}

func (h *heart) Update(dt, t float64) bool {
	if !h.age(dt) {
		return false
	}
	h.y += h.vy * dt
	h.x = h.baseX + math.Sin(t*h.swayFreq+h.swayPhase)*h.swayAmp
	return h.y > -h.size
}

func (h *heart) transform(scale float64) render.Transform {
	return render.Transform{X: h.x, Y: h.y, Scale: h.size * scale, Rotation: h.rot}
}

func (h *heart) Render(s render.Surface, t float64) {
	if !h.active {
		return
	}
	s.FillPath(heartPath, h.transform(1), render.WithAlpha(h.color, h.alpha()), render.Over)
}

// renderGlow draws the enlarged halo used in the glow pass.
func (h *heart) renderGlow(s render.Surface) {
	if !h.active {
		return
	}
	s.FillPath(heartPath, h.transform(1.6), render.WithAlpha(heartGlow, h.alpha()), render.Add)
}
