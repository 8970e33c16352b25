package effects

import (
	"github.com/ayusman/halo/internal/gesture"
	"github.com/ayusman/halo/internal/landmark"
)

// Every spawn helper stops silently once its system cap or the global
// budget is reached.

func (e *Engine) spawnConfetti(n int) {
	w, h := e.canvasSize()
	for n = min(n, e.room()); n > 0; n-- {
		c, ok := e.confetti.spawn()
		if !ok {
			return
		}
		c.init(e.rng, w, h, e.fade)
	}
}

func (e *Engine) spawnHearts(n int, x, y float64, burst bool) {
	for n = min(n, e.room()); n > 0; n-- {
		h, ok := e.hearts.spawn()
		if !ok {
			return
		}
		h.init(e.rng, x, y, burst, e.fade)
	}
}

func (e *Engine) spawnSparkles(n int, x, y float64, burst bool) {
	_, ground := e.canvasSize()
	for n = min(n, e.room()); n > 0; n-- {
		s, ok := e.sparkles.spawn()
		if !ok {
			return
		}
		s.init(e.rng, x, y, ground, burst, e.fade)
	}
}

func (e *Engine) spawnBolt() {
	if e.room() == 0 {
		return
	}
	b, ok := e.bolts.spawn()
	if !ok {
		return
	}
	w, h := e.canvasSize()
	b.init(e.rng, between(e.rng, 0.1, 0.9)*w, w, h, e.fade)
}

func (e *Engine) spawnBalloons(n int) {
	w, h := e.canvasSize()
	for n = min(n, e.room()); n > 0; n-- {
		b, ok := e.balloons.spawn()
		if !ok {
			return
		}
		b.init(e.rng, between(e.rng, 0.08, 0.92)*w, h, e.fade)
	}
}

// heartAnchor is the midpoint of the two index fingertips, or the canvas
// center when either hand is missing.
func (e *Engine) heartAnchor(f *landmark.DetectionFrame) (float64, float64) {
	if f == nil {
		return e.center()
	}
	lx, ly, lok := e.handPoint(f.Hands.Left, landmark.IndexTip)
	rx, ry, rok := e.handPoint(f.Hands.Right, landmark.IndexTip)
	if !lok || !rok {
		return e.center()
	}
	return (lx + rx) / 2, (ly + ry) / 2
}

// pointingTips returns the mapped index fingertip of each pointing hand,
// left then right; ok is false for hands that are not pointing.
func (e *Engine) pointingTips(f *landmark.DetectionFrame) (tips [2][2]float64, ok [2]bool) {
	if f == nil {
		return tips, ok
	}
	for i, h := range [2]*landmark.HandLandmarks{f.Hands.Left, f.Hands.Right} {
		if !gesture.IsPointing(h, e.opts.Gesture) {
			continue
		}
		x, y, found := e.handPoint(h, landmark.IndexTip)
		if !found {
			continue
		}
		tips[i] = [2]float64{x, y}
		ok[i] = true
	}
	return tips, ok
}

// sparkleBurst splits the opening burst across pointing hands, falling back
// to the canvas center.
func (e *Engine) sparkleBurst(f *landmark.DetectionFrame) {
	tips, ok := e.pointingTips(f)
	hands := 0
	for _, found := range ok {
		if found {
			hands++
		}
	}
	if hands == 0 {
		x, y := e.center()
		e.spawnSparkles(e.opts.SparkleBurst, x, y, true)
		return
	}
	share := e.opts.SparkleBurst / hands
	extra := e.opts.SparkleBurst - share*hands
	for i, found := range ok {
		if !found {
			continue
		}
		n := share + extra
		extra = 0
		e.spawnSparkles(n, tips[i][0], tips[i][1], true)
	}
}

func peaceHand(f *landmark.DetectionFrame, opts gesture.Options) bool {
	if f == nil {
		return false
	}
	return gesture.IsPeace(f.Hands.Left, opts) || gesture.IsPeace(f.Hands.Right, opts)
}

// drain adds rate*dt to acc and returns the whole units due.
func drain(acc *float64, rate, dt float64) int {
	*acc += rate * dt
	n := int(*acc)
	*acc -= float64(n)
	return n
}

// spawnContinuous applies the active gesture's steady-state spawn policy.
func (e *Engine) spawnContinuous(dt float64, f *landmark.DetectionFrame) {
	switch e.current {
	case gesture.ThumbsUpHalo:
		e.spawnConfetti(drain(&e.confettiAcc, e.opts.ConfettiRate, dt))

	case gesture.TwoHandHeart:
		if n := drain(&e.heartAcc, e.opts.HeartRate, dt); n > 0 {
			x, y := e.heartAnchor(f)
			e.spawnHearts(n, x, y, false)
		}

	case gesture.RockSign:
		e.boltTimer -= dt
		if e.boltTimer <= 0 {
			e.spawnBolt()
			lo, hi := e.opts.BoltIntervalMin.Seconds(), e.opts.BoltIntervalMax.Seconds()
			e.boltTimer = between(e.rng, lo, hi)
		}

	case gesture.PointSparkles:
		tips, ok := e.pointingTips(f)
		for i := range ok {
			if !ok[i] {
				e.sparkleAcc[i] = 0
				continue
			}
			if n := drain(&e.sparkleAcc[i], e.opts.SparkleRate, dt); n > 0 {
				e.spawnSparkles(n, tips[i][0], tips[i][1], false)
			}
		}

	case gesture.PeaceSign:
		e.balloonTimer -= dt
		if e.balloonTimer <= 0 {
			if peaceHand(f, e.opts.Gesture) {
				e.spawnBalloons(e.opts.BalloonsPerWave)
			}
			e.balloonTimer += e.opts.BalloonInterval.Seconds()
			if e.balloonTimer <= 0 {
				e.balloonTimer = e.opts.BalloonInterval.Seconds()
			}
		}
	}
}
