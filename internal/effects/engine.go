// Package effects runs the particle systems that celebrate a locked
// gesture: confetti, hearts, firework bolts, sparkles and balloons, all
// sharing one global particle budget.
package effects

import (
	"math"
	"math/rand"
	"time"

	"github.com/ayusman/halo/internal/gesture"
	"github.com/ayusman/halo/internal/landmark"
	"github.com/ayusman/halo/internal/mapping"
	"github.com/ayusman/halo/internal/pool"
	"github.com/ayusman/halo/internal/render"
)

// Glow blur radii in canvas pixels.
const (
	heartGlowBlur   = 10.0
	boltGlowBlur    = 6.0
	sparkleGlowBlur = 5.0
)

// Stats reports how many particles are active.
type Stats struct {
	Confetti     int          `json:"confetti"`
	Hearts       int          `json:"hearts"`
	Bolts        int          `json:"bolts"`
	Sparks       int          `json:"sparks"`
	Sparkles     int          `json:"sparkles"`
	Balloons     int          `json:"balloons"`
	Total        int          `json:"total"`
	Gesture      gesture.Type `json:"gesture"`
	ShuttingDown bool         `json:"shuttingDown"`
}

// Engine owns the five particle systems and reacts to gesture changes.
// Update and Render are called from the same frame loop; an Engine is not
// safe for concurrent use.
type Engine struct {
	opts Options
	rng  *rand.Rand
	fade float64

	width, height int
	tracker       mapping.Tracker
	mapper        *mapping.Mapper

	sprites   *render.SpriteCache
	sparkPool *pool.Pool[*spark]
	confetti  *system[*confetti]
	hearts    *system[*heart]
	bolts     *system[*bolt]
	sparkles  *system[*sparkle]
	balloons  *system[*balloon]

	current         gesture.Type
	balloonsEnabled bool
	shuttingDown    bool
	shutdownLeft    float64

	confettiAcc  float64
	heartAcc     float64
	sparkleAcc   [2]float64
	boltTimer    float64
	balloonTimer float64
}

// New creates an engine drawing onto a width×height canvas.
func New(opts Options, width, height int) *Engine {
	opts = opts.withDefaults()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		opts:      opts,
		rng:       rand.New(rand.NewSource(seed)),
		fade:      opts.FadeWindow.Seconds(),
		sprites:   render.NewSpriteCache(render.DefaultSpriteLimit),
		sparkPool: pool.New(newSpark, pool.DefaultMaxFree),
		current:   gesture.None,
	}
	e.confetti = newSystem(newConfetti, opts.MaxConfetti)
	e.hearts = newSystem(newHeart, opts.MaxHearts)
	e.bolts = newSystem(newBoltFactory(e.sparkPool), opts.MaxBolts)
	e.sparkles = newSystem(newSparkleFactory(e.sprites), opts.MaxSparkles)
	e.balloons = newSystem(newBalloonFactory(e.sprites), opts.MaxBalloons)

	e.SetViewport(width, height, 0, 0)
	return e
}

// Options returns the effective engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// SetViewport sets the canvas size and, when known, the source video size
// used to anchor particles on hands. The landmark mapping is rebuilt only
// when a dimension changes.
func (e *Engine) SetViewport(canvasWidth, canvasHeight, srcWidth, srcHeight int) {
	e.width, e.height = canvasWidth, canvasHeight
	e.mapper = e.tracker.Update(srcWidth, srcHeight, canvasWidth, canvasHeight)
}

// Active returns the gesture the engine is currently celebrating.
func (e *Engine) Active() gesture.Type {
	return e.current
}

// Update advances every particle by dt seconds, then reacts to g: a change
// to a new gesture is a lock event that bursts that effect, a change to
// None is a release event that fades everything out over the fade window.
// Continuous spawning runs on every other tick while g stays active.
func (e *Engine) Update(dt, now float64, g gesture.Type, frame *landmark.DetectionFrame) {
	if !(dt > 0) {
		dt = 0
	}
	if !g.Valid() {
		g = gesture.None
	}

	e.confetti.update(dt, now)
	e.hearts.update(dt, now)
	e.bolts.update(dt, now)
	e.sparkles.update(dt, now)
	e.balloons.update(dt, now)
	e.detonate()

	if e.shuttingDown {
		e.shutdownLeft -= dt
		if e.shutdownLeft <= lifeEpsilon {
			e.Clear()
		}
	}

	lockTick := false
	switch {
	case g != gesture.None && g != e.current:
		e.lock(g, frame)
		lockTick = true
	case g == gesture.None && e.current != gesture.None:
		e.release()
	}
	e.current = g

	if e.balloonsEnabled && e.balloons.len() == 0 && e.current != gesture.PeaceSign {
		e.balloonsEnabled = false
	}

	if !lockTick && e.current != gesture.None {
		e.spawnContinuous(dt, frame)
	}
}

// detonate bursts rockets that reached their apex. Nothing explodes while
// the scene is shutting down.
func (e *Engine) detonate() {
	for _, b := range e.bolts.active {
		if !b.pending {
			continue
		}
		if e.shuttingDown {
			b.cancel()
			continue
		}
		// The rocket itself stops counting once it bursts
		b.explode(e.rng, e.room()+1)
	}
}

// lock clears the effect for g and fires its opening burst.
func (e *Engine) lock(g gesture.Type, frame *landmark.DetectionFrame) {
	if e.current != gesture.None {
		// Switching straight between gestures fades the old effect
		e.clampAll()
	}
	e.shuttingDown = false
	e.shutdownLeft = 0
	e.resetTimers()

	switch g {
	case gesture.ThumbsUpHalo:
		e.confetti.clear()
		e.spawnConfetti(e.opts.ConfettiBurst)
	case gesture.TwoHandHeart:
		e.hearts.clear()
		x, y := e.heartAnchor(frame)
		e.spawnHearts(e.opts.HeartBurst, x, y, true)
	case gesture.RockSign:
		e.bolts.clear()
	case gesture.PointSparkles:
		e.sparkles.clear()
		e.sparkleBurst(frame)
	case gesture.PeaceSign:
		e.balloons.clear()
		e.balloonsEnabled = true
		span := e.opts.BalloonBurstMax - e.opts.BalloonBurstMin + 1
		e.spawnBalloons(e.opts.BalloonBurstMin + e.rng.Intn(span))
	}
}

// release starts the graceful shutdown.
func (e *Engine) release() {
	e.clampAll()
	e.shuttingDown = true
	e.shutdownLeft = e.fade
	e.resetTimers()
}

func (e *Engine) clampAll() {
	e.confetti.clampLife(e.fade)
	e.hearts.clampLife(e.fade)
	e.bolts.clampLife(e.fade)
	e.sparkles.clampLife(e.fade)
	e.balloons.clampLife(e.fade)
}

func (e *Engine) resetTimers() {
	e.confettiAcc = 0
	e.heartAcc = 0
	e.sparkleAcc = [2]float64{}
	e.boltTimer = 0
	e.balloonTimer = e.opts.BalloonInterval.Seconds()
}

// Clear releases every particle to its pool and forgets the current
// gesture. It is the engine's only cancellation.
func (e *Engine) Clear() {
	e.confetti.clear()
	e.hearts.clear()
	e.bolts.clear()
	e.sparkles.clear()
	e.balloons.clear()

	e.current = gesture.None
	e.balloonsEnabled = false
	e.shuttingDown = false
	e.shutdownLeft = 0
	e.resetTimers()
}

// Render draws back to front: confetti, hearts, bolts, sparkles, then
// balloons on top whenever they are enabled. Glowing systems draw a
// blurred layer first and their sharp cores over it.
func (e *Engine) Render(s render.Surface, now float64) {
	if s == nil {
		return
	}

	e.confetti.render(s, now)

	if e.hearts.len() > 0 {
		s.Glow(heartGlowBlur, func(g render.Surface) {
			for _, h := range e.hearts.active {
				h.renderGlow(g)
			}
		})
		e.hearts.render(s, now)
	}

	if e.bolts.len() > 0 {
		s.Glow(boltGlowBlur, func(g render.Surface) {
			for _, b := range e.bolts.active {
				b.renderGlow(g)
			}
		})
		e.bolts.render(s, now)
	}

	if e.sparkles.len() > 0 {
		s.Glow(sparkleGlowBlur, func(g render.Surface) {
			for _, sp := range e.sparkles.active {
				sp.renderGlow(g)
			}
		})
		e.sparkles.render(s, now)
	}

	if e.balloonsEnabled {
		e.balloons.render(s, now)
	}
}

// Stats returns the active particle counts.
func (e *Engine) Stats() Stats {
	st := Stats{
		Confetti:     e.confetti.len(),
		Hearts:       e.hearts.len(),
		Bolts:        e.bolts.len(),
		Sparkles:     e.sparkles.len(),
		Balloons:     e.balloons.len(),
		Gesture:      e.current,
		ShuttingDown: e.shuttingDown,
	}
	for _, b := range e.bolts.active {
		st.Sparks += len(b.sparks)
	}
	st.Total = e.activeCount()
	return st
}

// activeCount sums live particles across all systems, counting each
// rocket in flight and each lit spark.
func (e *Engine) activeCount() int {
	n := e.confetti.len() + e.hearts.len() + e.sparkles.len() + e.balloons.len()
	for _, b := range e.bolts.active {
		n += b.particles()
	}
	return n
}

// room is how many more particles fit in the global budget.
func (e *Engine) room() int {
	return max(0, e.opts.GlobalBudget-e.activeCount())
}

func (e *Engine) canvasSize() (float64, float64) {
	return float64(e.width), float64(e.height)
}

func (e *Engine) center() (float64, float64) {
	return float64(e.width) / 2, float64(e.height) / 2
}

// handPoint maps landmark idx of h to canvas pixels.
func (e *Engine) handPoint(h *landmark.HandLandmarks, idx int) (x, y float64, ok bool) {
	p, ok := h.At(idx)
	if !ok || e.mapper == nil {
		return 0, 0, false
	}
	x, y = e.mapper.ToPixel(p.X, p.Y)
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, false
	}
	return x, y, true
}
