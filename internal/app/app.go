// Package app runs the halo frame loop: camera frames are gated by motion,
// turned into landmarks, classified, and celebrated by the effects engine.
package app

import (
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/halo/internal/capture"
	"github.com/ayusman/halo/internal/config"
	"github.com/ayusman/halo/internal/detector"
	"github.com/ayusman/halo/internal/effects"
	"github.com/ayusman/halo/internal/gesture"
	"github.com/ayusman/halo/internal/landmark"
	"github.com/ayusman/halo/internal/mapping"
	"github.com/ayusman/halo/internal/render"
)

// requestQueueSize bounds pending Reset/retune requests.
const requestQueueSize = 16

// Config holds the collaborators of the frame loop.
type Config struct {
	Settings *config.Config
	// Camera may be nil, in which case every tick runs detection without a
	// video frame (replay mode).
	Camera   capture.Camera
	Detector detector.Detector
}

// EventKind distinguishes lock and release events.
type EventKind string

const (
	EventLock    EventKind = "lock"
	EventRelease EventKind = "release"
)

// Event is published when a gesture locks or releases.
type Event struct {
	Kind    EventKind    `json:"kind"`
	Gesture gesture.Type `json:"gesture"`
	T       float64      `json:"t"`
}

// Snapshot is the externally visible state after the latest tick.
type Snapshot struct {
	T          float64       `json:"t"`
	Raw        gesture.Type  `json:"raw"`
	State      gesture.State `json:"state"`
	Stats      effects.Stats `json:"stats"`
	ActiveMode bool          `json:"activeMode"`
	Ticks      uint64        `json:"ticks"`
}

// App is the main application that ties detection to the effects engine.
// Everything except the exported accessors runs on the loop goroutine.
type App struct {
	cfg      *config.Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector

	classifier *gesture.Classifier
	engine     *effects.Engine
	canvas     *render.Canvas
	tracker    mapping.Tracker
	background *image.RGBA

	activeMode bool
	lastMotion float64
	lastTick   float64
	ticked     bool

	requests chan func()

	mu        sync.RWMutex
	snap      Snapshot
	front     *image.RGBA
	frameSeq  uint64
	listeners []func(Event)
	viewers   atomic.Int32
}

// New creates an App. The canvas is sized from cfg.Settings.Render.
func New(cfg Config) (*App, error) {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Detector == nil {
		return nil, fmt.Errorf("app: a detector is required")
	}
	settings := cfg.Settings

	canvas, err := render.NewCanvas(settings.Render.Width, settings.Render.Height)
	if err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}
	canvas.SetGlow(settings.Render.Glow, settings.Render.GlowScale)

	a := &App{
		cfg:        settings,
		camera:     cfg.Camera,
		detector:   cfg.Detector,
		classifier: gesture.NewClassifier(settings.Gesture),
		engine:     effects.New(settings.EffectsOptions(), settings.Render.Width, settings.Render.Height),
		canvas:     canvas,
		requests:   make(chan func(), requestQueueSize),
	}
	if a.camera != nil {
		a.motion = capture.NewMotionDetector(settings.Loop.MotionThreshold)
	}
	a.snap.State = a.classifier.CurrentState()
	a.snap.Stats = a.engine.Stats()
	return a, nil
}

// OnEvent registers fn to be called on the loop goroutine for every lock
// and release.
func (a *App) OnEvent(fn func(Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Snapshot returns the state published by the latest tick.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

// Reset clears every particle and the classifier lock on the next tick.
func (a *App) Reset() {
	a.enqueue(func() {
		a.engine.Clear()
		a.classifier.Reset()
		log.Println("Effects and classifier reset")
	})
}

// SetGlow toggles glow layers on the next tick.
func (a *App) SetGlow(enabled bool) {
	a.enqueue(func() {
		a.mu.Lock()
		a.cfg.Render.Glow = enabled
		a.mu.Unlock()
		a.canvas.SetGlow(enabled, a.cfg.Render.GlowScale)
	})
}

// ApplyTuning validates a YAML tuning overlay and, on the next tick,
// rebuilds the classifier and effects engine from it. Live particles and
// the current lock are dropped.
func (a *App) ApplyTuning(data []byte) error {
	a.mu.RLock()
	next := *a.cfg
	a.mu.RUnlock()

	if err := next.ApplyTuning(data); err != nil {
		return err
	}
	if next.Render.Width != a.cfg.Render.Width || next.Render.Height != a.cfg.Render.Height {
		return fmt.Errorf("%w: canvas size cannot change while running", config.ErrInvalid)
	}

	a.enqueue(func() {
		a.mu.Lock()
		*a.cfg = next
		a.mu.Unlock()
		a.classifier = gesture.NewClassifier(next.Gesture)
		a.engine = effects.New(next.EffectsOptions(), next.Render.Width, next.Render.Height)
		a.canvas.SetGlow(next.Render.Glow, next.Render.GlowScale)
		log.Println("Applied new tuning")
	})
	return nil
}

// MarshalTuning returns the running tuning as YAML.
func (a *App) MarshalTuning() ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.MarshalTuning()
}

func (a *App) enqueue(fn func()) {
	select {
	case a.requests <- fn:
	default:
		log.Println("Request queue full, dropping request")
	}
}

// drainRequests runs pending requests on the loop goroutine.
func (a *App) drainRequests() {
	for {
		select {
		case fn := <-a.requests:
			fn()
		default:
			return
		}
	}
}

// WatchFrames starts publishing rendered frames for LatestFrame. The
// returned function stops watching.
func (a *App) WatchFrames() (stop func()) {
	a.viewers.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { a.viewers.Add(-1) })
	}
}

// LatestFrame copies the most recent rendered frame into dst, allocating
// when dst is nil or sized differently. seq increases with every published
// frame and is zero before the first one.
func (a *App) LatestFrame(dst *image.RGBA) (img *image.RGBA, seq uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.front == nil {
		return dst, 0
	}
	if dst == nil || dst.Rect != a.front.Rect {
		dst = image.NewRGBA(a.front.Rect)
	}
	copy(dst.Pix, a.front.Pix)
	return dst, a.frameSeq
}

func (a *App) publish(raw gesture.Type, now float64, state gesture.State) {
	stats := a.engine.Stats()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.snap = Snapshot{
		T:          now,
		Raw:        raw,
		State:      state,
		Stats:      stats,
		ActiveMode: a.activeMode,
		Ticks:      a.snap.Ticks + 1,
	}

	if a.viewers.Load() > 0 {
		src := a.canvas.Image()
		if a.front == nil || a.front.Rect != src.Rect {
			a.front = image.NewRGBA(src.Rect)
		}
		copy(a.front.Pix, src.Pix)
		a.frameSeq++
	}
}

func (a *App) emit(ev Event) {
	a.mu.RLock()
	listeners := a.listeners
	a.mu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// Classifier returns the gesture classifier. It must only be used from the
// loop goroutine or while the loop is stopped.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier
}

// Engine returns the effects engine, under the same restriction as
// Classifier.
func (a *App) Engine() *effects.Engine {
	return a.engine
}

// Canvas returns the render target, under the same restriction as
// Classifier.
func (a *App) Canvas() *render.Canvas {
	return a.canvas
}

// mirror applies the configured horizontal flip to a detection frame.
func (a *App) mirror(f landmark.DetectionFrame) landmark.DetectionFrame {
	if !a.cfg.Render.Mirror {
		return f
	}
	return f.Mirrored()
}
