// Package config loads the halo configuration: classifier thresholds,
// effects tuning, canvas, camera, detector and server settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/halo/internal/capture"
	"github.com/ayusman/halo/internal/detector"
	"github.com/ayusman/halo/internal/effects"
	"github.com/ayusman/halo/internal/gesture"
	"github.com/ayusman/halo/internal/render"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Render controls the output canvas.
type Render struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Glow enables the reduced-resolution glow layers.
	Glow bool `yaml:"glow"`
	// GlowScale is the glow layer resolution relative to the canvas.
	GlowScale float64 `yaml:"glow_scale"`
	// Background draws the camera image under the effects.
	Background bool `yaml:"background"`
	// Mirror flips the camera image and landmarks horizontally.
	Mirror bool `yaml:"mirror"`
}

// Loop controls frame pacing of the live driver.
type Loop struct {
	// MaxDelta caps the simulation step after a stall.
	MaxDelta time.Duration `yaml:"max_delta"`
	// IdleFPS is the tick rate while nothing moves in view.
	IdleFPS int `yaml:"idle_fps"`
	// ActiveFPS is the tick rate while motion or effects are live.
	ActiveFPS int `yaml:"active_fps"`
	// IdleTimeout is how long without motion before dropping to IdleFPS.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// MotionThreshold is the percentage of changed pixels that counts as
	// motion.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// Server controls the HTTP preview and state API.
type Server struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	// StreamFPS caps the MJPEG preview rate.
	StreamFPS int `yaml:"stream_fps"`
	// JPEGQuality is the MJPEG encoder quality, 1-100.
	JPEGQuality int `yaml:"jpeg_quality"`
}

// Config is the complete application configuration.
type Config struct {
	Gesture  gesture.Options `yaml:"gesture"`
	Effects  effects.Options `yaml:"effects"`
	Render   Render          `yaml:"render"`
	Camera   capture.Options `yaml:"camera"`
	Detector detector.Config `yaml:"detector"`
	Loop     Loop            `yaml:"loop"`
	Server   Server          `yaml:"server"`
	Tray     bool            `yaml:"tray"`
	// DataDir holds the profile database.
	DataDir string `yaml:"data_dir"`
}

// Tuning is the part of the configuration saved in named profiles.
type Tuning struct {
	Gesture gesture.Options `yaml:"gesture"`
	Effects effects.Options `yaml:"effects"`
	Render  Render          `yaml:"render"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Gesture: gesture.DefaultOptions(),
		Effects: effects.DefaultOptions(),
		Render: Render{
			Width:      1280,
			Height:     720,
			Glow:       true,
			GlowScale:  render.DefaultGlowScale,
			Background: true,
			Mirror:     true,
		},
		Camera:   capture.DefaultOptions(),
		Detector: detector.DefaultConfig(),
		Loop: Loop{
			MaxDelta:        time.Second / 30,
			IdleFPS:         5,
			ActiveFPS:       30,
			IdleTimeout:     2 * time.Second,
			MotionThreshold: capture.DefaultMotionThreshold,
		},
		Server: Server{
			Enabled:     true,
			Addr:        "127.0.0.1:8080",
			StreamFPS:   15,
			JPEGQuality: 80,
		},
		DataDir: defaultDataDir(),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".halo"
	}
	return filepath.Join(home, ".halo")
}

// Load reads a YAML file over the defaults. Fields the file leaves out keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Tuning returns the profile-able subset of c.
func (c *Config) Tuning() Tuning {
	return Tuning{Gesture: c.Gesture, Effects: c.Effects, Render: c.Render}
}

// MarshalTuning encodes the profile-able subset of c.
func (c *Config) MarshalTuning() ([]byte, error) {
	return yaml.Marshal(c.Tuning())
}

// ApplyTuning overlays a profile's YAML onto c. On error c is unchanged.
func (c *Config) ApplyTuning(data []byte) error {
	t := c.Tuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("parse profile: %w", err)
	}
	next := *c
	next.Gesture, next.Effects, next.Render = t.Gesture, t.Effects, t.Render
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// EffectsOptions returns the effects tuning with the classifier thresholds
// it uses to find pointing and peace-sign hands.
func (c *Config) EffectsOptions() effects.Options {
	o := c.Effects
	o.Gesture = c.Gesture
	return o
}

// Validate reports the first setting outside its allowed range.
func (c *Config) Validate() error {
	g := c.Gesture
	switch {
	case g.StabilityFrames < 1:
		return invalid("gesture.stability_frames must be at least 1, got %d", g.StabilityFrames)
	case g.LostGraceFrames < 0:
		return invalid("gesture.lost_grace_frames must not be negative, got %d", g.LostGraceFrames)
	case g.FingerExtendedAngle <= 0 || g.FingerExtendedAngle >= 180:
		return invalid("gesture.finger_extended_angle must be in (0, 180), got %g", g.FingerExtendedAngle)
	case g.HeartThreshold <= 0 || g.HeartBand <= 0:
		return invalid("gesture.heart_threshold and heart_band must be positive")
	case g.PeaceMinSeparation < 0:
		return invalid("gesture.peace_min_separation must not be negative, got %g", g.PeaceMinSeparation)
	}

	e := c.Effects
	switch {
	case e.GlobalBudget < 0:
		return invalid("effects.global_budget must not be negative, got %d", e.GlobalBudget)
	case e.BalloonBurstMax > 0 && e.BalloonBurstMax < e.BalloonBurstMin:
		return invalid("effects.balloon_burst_max %d is below balloon_burst_min %d", e.BalloonBurstMax, e.BalloonBurstMin)
	case e.BoltIntervalMax > 0 && e.BoltIntervalMax < e.BoltIntervalMin:
		return invalid("effects.bolt_interval_max %s is below bolt_interval_min %s", e.BoltIntervalMax, e.BoltIntervalMin)
	case e.FadeWindow < 0:
		return invalid("effects.fade_window must not be negative, got %s", e.FadeWindow)
	}

	r := c.Render
	switch {
	case r.Width <= 0 || r.Height <= 0:
		return invalid("render size must be positive, got %dx%d", r.Width, r.Height)
	case r.GlowScale <= 0 || r.GlowScale > 1:
		return invalid("render.glow_scale must be in (0, 1], got %g", r.GlowScale)
	}

	l := c.Loop
	switch {
	case l.MaxDelta <= 0:
		return invalid("loop.max_delta must be positive, got %s", l.MaxDelta)
	case l.IdleFPS <= 0 || l.ActiveFPS <= 0:
		return invalid("loop fps must be positive, got idle %d active %d", l.IdleFPS, l.ActiveFPS)
	case l.IdleFPS > l.ActiveFPS:
		return invalid("loop.idle_fps %d exceeds active_fps %d", l.IdleFPS, l.ActiveFPS)
	}

	if c.Detector.MaxHands < 0 || c.Detector.MaxHands > 2 {
		return invalid("detector.max_hands must be 0-2, got %d", c.Detector.MaxHands)
	}

	s := c.Server
	if s.Enabled {
		switch {
		case s.Addr == "":
			return invalid("server.addr is required when the server is enabled")
		case s.StreamFPS <= 0:
			return invalid("server.stream_fps must be positive, got %d", s.StreamFPS)
		case s.JPEGQuality < 1 || s.JPEGQuality > 100:
			return invalid("server.jpeg_quality must be 1-100, got %d", s.JPEGQuality)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}
