package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/halo/internal/capture"
	"github.com/ayusman/halo/internal/detector"
	"github.com/ayusman/halo/internal/gesture"
	"github.com/ayusman/halo/internal/landmark"
)

// Run opens the camera and drives Tick until ctx is cancelled or a replay
// detector runs out of frames.
//
// Pacing follows the motion detector:
//  1. Start in idle mode at Loop.IdleFPS.
//  2. On motion, or while a gesture or effect is live, switch to
//     Loop.ActiveFPS and run landmark detection every tick.
//  3. After Loop.IdleTimeout with nothing going on, drop back to idle.
func (a *App) Run(ctx context.Context) error {
	if a.camera != nil {
		if err := a.camera.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
		defer func() {
			if err := a.camera.Close(); err != nil {
				log.Printf("Error closing camera: %v", err)
			}
		}()
		a.camera.SetFPS(a.cfg.Loop.IdleFPS)
	}
	if a.motion != nil {
		defer a.motion.Close()
	}
	defer func() {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}()

	fps := a.targetFPS()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	start := time.Now()
	log.Println("Frame loop started")

	for {
		select {
		case <-ctx.Done():
			log.Println("Frame loop stopped")
			return nil
		case <-ticker.C:
		}

		err := a.Tick(time.Since(start).Seconds())
		if errors.Is(err, detector.ErrExhausted) {
			log.Println("Replay finished")
			return nil
		}
		if err != nil {
			log.Printf("Tick error: %v", err)
		}

		if next := a.targetFPS(); next != fps {
			fps = next
			ticker.Reset(time.Second / time.Duration(fps))
			if a.camera != nil {
				a.camera.SetFPS(fps)
			}
			if a.activeMode {
				log.Println("Switched to active mode")
			} else {
				log.Println("Switched to idle mode")
			}
		}
	}
}

func (a *App) targetFPS() int {
	if a.activeMode || a.camera == nil {
		return a.cfg.Loop.ActiveFPS
	}
	return a.cfg.Loop.IdleFPS
}

// Tick runs one frame at time now (seconds): the update phase advances the
// classifier and effects by the elapsed time, capped at Loop.MaxDelta, and
// the render phase draws the camera background and every effect onto the
// canvas. Detection and camera errors are logged and treated as an empty
// frame; only a drained replay is returned.
func (a *App) Tick(now float64) error {
	a.drainRequests()

	dt := 0.0
	if a.ticked {
		dt = min(now-a.lastTick, a.cfg.Loop.MaxDelta.Seconds())
	}
	a.lastTick = now
	a.ticked = true

	var frame *gocv.Mat
	if a.camera != nil {
		f, err := a.camera.ReadFrame()
		if err != nil {
			log.Printf("Error reading frame: %v", err)
		} else {
			frame = f
			defer frame.Close()
		}
	}

	a.updateMode(frame, now)

	var detection landmark.DetectionFrame
	detected := false
	if a.camera == nil || (frame != nil && a.activeMode) {
		d, err := a.detector.Detect(frame, now)
		switch {
		case errors.Is(err, detector.ErrExhausted):
			return err
		case err != nil:
			log.Printf("Error detecting landmarks: %v", err)
		default:
			detection = a.mirror(d)
			detected = true
		}
	}

	prev := a.classifier.CurrentState()
	raw, state := gesture.Result{Type: gesture.None}, prev
	if detected || prev.Type != gesture.None {
		raw, state = a.classifier.Step(&detection)
	}
	a.announce(prev, state, now)

	srcW, srcH := frameSize(frame)
	a.engine.SetViewport(a.cfg.Render.Width, a.cfg.Render.Height, srcW, srcH)
	a.engine.Update(dt, now, state.Active(), &detection)

	a.draw(frame, srcW, srcH, now)
	a.publish(raw.Type, now, state)
	return nil
}

// updateMode tracks motion and switches between idle and active mode.
func (a *App) updateMode(frame *gocv.Mat, now float64) {
	if a.motion != nil && frame != nil {
		if m := a.motion.Detect(frame); m.Detected {
			a.lastMotion = now
		}
	}

	busy := a.classifier.CurrentState().Type != gesture.None || a.engine.Stats().Total > 0
	if busy {
		a.lastMotion = now
	}

	idleFor := now - a.lastMotion
	a.activeMode = a.camera == nil || idleFor < a.cfg.Loop.IdleTimeout.Seconds()
}

// announce logs and emits lock and release transitions.
func (a *App) announce(prev, state gesture.State, now float64) {
	before, after := prev.Active(), state.Active()
	if before == after {
		return
	}
	if before != gesture.None {
		log.Printf("Gesture released: %s", before)
		a.emit(Event{Kind: EventRelease, Gesture: before, T: now})
	}
	if after != gesture.None {
		log.Printf("Gesture locked: %s (confidence %.2f)", after, state.Confidence)
		a.emit(Event{Kind: EventLock, Gesture: after, T: now})
	}
}

// draw renders the background and effects onto the canvas.
func (a *App) draw(frame *gocv.Mat, srcW, srcH int, now float64) {
	a.canvas.Clear()

	if frame != nil && a.cfg.Render.Background {
		if err := a.drawBackground(frame, srcW, srcH); err != nil {
			log.Printf("Error drawing background: %v", err)
		}
	}

	a.engine.Render(a.canvas, now)
}

func (a *App) drawBackground(frame *gocv.Mat, srcW, srcH int) error {
	src := frame
	if a.cfg.Render.Mirror {
		flipped := gocv.NewMat()
		defer flipped.Close()
		gocv.Flip(*frame, &flipped, 1)
		src = &flipped
	}

	img, err := capture.ToRGBA(src, a.background)
	if err != nil {
		return err
	}
	a.background = img

	crop := a.tracker.Update(srcW, srcH, a.cfg.Render.Width, a.cfg.Render.Height).Crop()
	a.canvas.DrawBackground(img, crop)
	return nil
}

func frameSize(frame *gocv.Mat) (int, int) {
	if frame == nil || frame.Empty() {
		return 0, 0
	}
	return frame.Cols(), frame.Rows()
}
