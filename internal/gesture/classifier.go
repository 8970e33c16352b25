package gesture

import "github.com/ayusman/halo/internal/landmark"

// Classifier evaluates detection frames and tracks the lock state.
// A Classifier is owned by a single frame loop and is not safe for
// concurrent use.
type Classifier struct {
	opts           Options
	state          State
	graceRemaining int
}

// NewClassifier creates a Classifier. Zero-valued option fields take their
// defaults.
func NewClassifier(opts Options) *Classifier {
	c := &Classifier{opts: opts.withDefaults()}
	c.Reset()
	return c
}

// Options returns the effective classifier options.
func (c *Classifier) Options() Options {
	return c.opts
}

// ClassifyFrame returns the best single-frame gesture without applying any
// temporal hold. Frames with neither pose nor hands yield (None, 0).
func (c *Classifier) ClassifyFrame(f *landmark.DetectionFrame) (Type, float64) {
	r := Classify(f, c.opts)
	return r.Type, r.Confidence
}

// Classify evaluates the five detectors against f and returns the highest
// confidence result. Ties go to the earlier detector in evaluation order.
func Classify(f *landmark.DetectionFrame, opts Options) Result {
	if f.Empty() {
		return noResult
	}
	opts = opts.withDefaults()

	candidates := [...]Result{
		perHand(f.Hands, opts, detectThumbsUp),
		detectHeart(f.Hands, opts),
		perHand(f.Hands, opts, detectRock),
		perHand(f.Hands, opts, detectPoint),
		perHand(f.Hands, opts, detectPeace),
	}

	best := noResult
	for _, r := range candidates {
		if r.Type == None {
			continue
		}
		best = better(best, r)
	}
	if best.Confidence <= 0 {
		return noResult
	}
	return best
}

// UpdateState classifies f and advances the lock state machine:
//
//  1. Locked and the same type: hold unchanged and refill grace.
//  2. Locked and a different type: spend one grace frame and hold while
//     grace remains; once exhausted, unlock and continue with this frame.
//  3. Unlocked and the same non-NONE type as before: count toward
//     StabilityFrames, tracking the peak confidence, and lock on reaching it.
//  4. Otherwise restart counting on the new type.
func (c *Classifier) UpdateState(f *landmark.DetectionFrame) State {
	_, state := c.Step(f)
	return state
}

// Step is UpdateState that also returns the single-frame result the state
// machine was fed.
func (c *Classifier) Step(f *landmark.DetectionFrame) (Result, State) {
	r := Classify(f, c.opts)
	return r, c.advance(r.Type, r.Confidence)
}

func (c *Classifier) advance(t Type, conf float64) State {
	if c.state.Locked {
		if t == c.state.Type {
			// Grace counts consecutive misses only.
			c.graceRemaining = c.opts.LostGraceFrames
			return c.state
		}
		if c.graceRemaining > 0 {
			c.graceRemaining--
		}
		if c.graceRemaining > 0 {
			return c.state
		}
		c.state.Locked = false
		c.state.StabilityCount = 0
	}

	if t == c.state.Type && t != None {
		c.state.StabilityCount++
		if conf > c.state.Confidence {
			c.state.Confidence = conf
		}
	} else {
		c.state.Type = t
		c.state.Confidence = conf
		c.state.StabilityCount = 1
	}

	if c.state.Type != None && c.state.StabilityCount >= c.opts.StabilityFrames {
		c.state.Locked = true
		c.graceRemaining = c.opts.LostGraceFrames
	}

	return c.state
}

// Reset clears the state to {NONE, 0, false, 0} and zeroes the grace
// counter.
func (c *Classifier) Reset() {
	c.state = State{Type: None}
	c.graceRemaining = 0
}

// CurrentState returns a snapshot of the classifier state.
func (c *Classifier) CurrentState() State {
	return c.state
}
