package effects

import (
	"image/color"

	"github.com/ayusman/halo/internal/pool"
	"github.com/ayusman/halo/internal/render"
)

// lifeEpsilon absorbs float drift when lifetimes count down by dt.
const lifeEpsilon = 1e-9

// particle is the behavior shared by every effect variant.
type particle interface {
	// Update advances the particle by dt seconds at time t and reports
	// whether it is still alive.
	Update(dt, t float64) bool
	// Render draws the particle's sharp core.
	Render(s render.Surface, t float64)
	// clampLife shortens the remaining lifetime to at most max seconds.
	clampLife(max float64)
	// reset returns the particle to its zero, inactive state.
	reset()
}

// body holds the fields every particle variant carries.
type body struct {
	x, y      float64
	vx, vy    float64
	rot, spin float64
	// life is remaining seconds, total the lifetime at spawn
	life, total float64
	size        float64
	color       color.NRGBA
	// fadeOut is the length of the closing fade
	fadeOut float64
	active  bool
}

func (b *body) clampLife(max float64) {
	if b.life > max {
		b.life = max
	}
}

// age counts the lifetime down and reports whether any remains.
func (b *body) age(dt float64) bool {
	if !b.active {
		return false
	}
	b.life -= dt
	return b.life > lifeEpsilon
}

// alpha is 1 until the last fadeOut seconds, then ramps to 0.
func (b *body) alpha() float64 {
	if b.fadeOut <= 0 || b.life >= b.fadeOut {
		return 1
	}
	if b.life <= 0 {
		return 0
	}
	return b.life / b.fadeOut
}

// system is one effect's active list plus the pool its particles return to.
type system[P particle] struct {
	active []P
	pool   *pool.Pool[P]
	max    int
}

func newSystem[P particle](factory func() P, max int) *system[P] {
	return &system[P]{
		active: make([]P, 0, max),
		pool:   pool.New(factory, min(max, pool.DefaultMaxFree)),
		max:    max,
	}
}

// spawn borrows a particle and appends it to the active list, or reports
// false when the system is at its cap.
func (s *system[P]) spawn() (P, bool) {
	if len(s.active) >= s.max {
		var zero P
		return zero, false
	}
	p := s.pool.Get()
	s.active = append(s.active, p)
	return p, true
}

// update advances every particle, compacting survivors in place and
// releasing the rest.
func (s *system[P]) update(dt, t float64) {
	kept := s.active[:0]
	for _, p := range s.active {
		if p.Update(dt, t) {
			kept = append(kept, p)
			continue
		}
		s.release(p)
	}
	clear(s.active[len(kept):])
	s.active = kept
}

func (s *system[P]) release(p P) {
	p.reset()
	s.pool.Release(p)
}

// clear releases every active particle.
func (s *system[P]) clear() {
	for _, p := range s.active {
		s.release(p)
	}
	clear(s.active)
	s.active = s.active[:0]
}

func (s *system[P]) clampLife(max float64) {
	for _, p := range s.active {
		p.clampLife(max)
	}
}

func (s *system[P]) render(surface render.Surface, t float64) {
	for _, p := range s.active {
		p.Render(surface, t)
	}
}

func (s *system[P]) len() int {
	return len(s.active)
}
