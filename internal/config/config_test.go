package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/halo/internal/effects"
	"github.com/ayusman/halo/internal/gesture"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Gesture.StabilityFrames != gesture.DefaultStabilityFrames {
		t.Errorf("expected %d stability frames, got %d", gesture.DefaultStabilityFrames, cfg.Gesture.StabilityFrames)
	}
	if cfg.Effects.GlobalBudget != effects.DefaultGlobalBudget {
		t.Errorf("expected budget %d, got %d", effects.DefaultGlobalBudget, cfg.Effects.GlobalBudget)
	}
	if cfg.Loop.MaxDelta != time.Second/30 {
		t.Errorf("expected max delta 1/30s, got %s", cfg.Loop.MaxDelta)
	}
}

func TestParse_OverlaysDefaults(t *testing.T) {
	data := []byte(`
gesture:
  stability_frames: 10
effects:
  fade_window: 250ms
  global_budget: 120
render:
  width: 640
  height: 480
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Gesture.StabilityFrames != 10 {
		t.Errorf("expected stability frames 10, got %d", cfg.Gesture.StabilityFrames)
	}
	if cfg.Gesture.LostGraceFrames != gesture.DefaultLostGraceFrames {
		t.Errorf("expected default grace frames, got %d", cfg.Gesture.LostGraceFrames)
	}
	if cfg.Effects.FadeWindow != 250*time.Millisecond {
		t.Errorf("expected fade window 250ms, got %s", cfg.Effects.FadeWindow)
	}
	if cfg.Effects.MaxConfetti != effects.DefaultMaxConfetti {
		t.Errorf("expected default confetti cap, got %d", cfg.Effects.MaxConfetti)
	}
	if cfg.Render.Width != 640 || cfg.Render.Height != 480 {
		t.Errorf("expected 640x480, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if !cfg.Render.Glow {
		t.Error("expected glow to stay enabled")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero stability", "gesture:\n  stability_frames: 0\n"},
		{"angle out of range", "gesture:\n  finger_extended_angle: 200\n"},
		{"balloon range inverted", "effects:\n  balloon_burst_min: 9\n  balloon_burst_max: 4\n"},
		{"bolt interval inverted", "effects:\n  bolt_interval_min: 200ms\n  bolt_interval_max: 100ms\n"},
		{"negative budget", "effects:\n  global_budget: -1\n"},
		{"zero canvas", "render:\n  width: 0\n"},
		{"glow scale too big", "render:\n  glow_scale: 2\n"},
		{"zero max delta", "loop:\n  max_delta: 0s\n"},
		{"idle faster than active", "loop:\n  idle_fps: 60\n"},
		{"three hands", "detector:\n  max_hands: 3\n"},
		{"server without addr", "server:\n  addr: \"\"\n"},
		{"jpeg quality", "server:\n  jpeg_quality: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}

	t.Run("disabled server skips its checks", func(t *testing.T) {
		if _, err := Parse([]byte("server:\n  enabled: false\n  addr: \"\"\n")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("gesture: [unclosed"))
		if err == nil || errors.Is(err, ErrInvalid) {
			t.Errorf("expected a parse error, got %v", err)
		}
	})
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halo.yaml")
	cfg := Default()
	cfg.Gesture.LostGraceFrames = 8
	cfg.Effects.HeartBurst = 35
	cfg.Loop.IdleTimeout = 1500 * time.Millisecond

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config changed across save/load (-want +got):\n%s", diff)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestApplyTuning(t *testing.T) {
	t.Run("overlays only the given fields", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Addr = ":9999"

		if err := cfg.ApplyTuning([]byte("effects:\n  global_budget: 100\ngesture:\n  lost_grace_frames: 4\n")); err != nil {
			t.Fatalf("ApplyTuning() error = %v", err)
		}

		if cfg.Effects.GlobalBudget != 100 {
			t.Errorf("expected budget 100, got %d", cfg.Effects.GlobalBudget)
		}
		if cfg.Gesture.LostGraceFrames != 4 {
			t.Errorf("expected 4 grace frames, got %d", cfg.Gesture.LostGraceFrames)
		}
		if cfg.Gesture.StabilityFrames != gesture.DefaultStabilityFrames {
			t.Errorf("expected stability frames untouched, got %d", cfg.Gesture.StabilityFrames)
		}
		if cfg.Server.Addr != ":9999" {
			t.Errorf("tuning must not touch server settings, got %q", cfg.Server.Addr)
		}
	})

	t.Run("invalid tuning leaves config unchanged", func(t *testing.T) {
		cfg := Default()
		want := *cfg

		err := cfg.ApplyTuning([]byte("render:\n  glow_scale: 5\n"))
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid, got %v", err)
		}
		if diff := cmp.Diff(&want, cfg); diff != "" {
			t.Errorf("config changed (-want +got):\n%s", diff)
		}
	})

	t.Run("round trip through MarshalTuning", func(t *testing.T) {
		src := Default()
		src.Effects.ConfettiBurst = 80
		src.Render.Glow = false
		data, err := src.MarshalTuning()
		if err != nil {
			t.Fatalf("MarshalTuning() error = %v", err)
		}

		dst := Default()
		if err := dst.ApplyTuning(data); err != nil {
			t.Fatalf("ApplyTuning() error = %v", err)
		}
		if diff := cmp.Diff(src.Tuning(), dst.Tuning()); diff != "" {
			t.Errorf("tuning mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestEffectsOptions_CarriesGestureThresholds(t *testing.T) {
	cfg := Default()
	cfg.Gesture.FingerExtendedAngle = 55

	if got := cfg.EffectsOptions().Gesture.FingerExtendedAngle; got != 55 {
		t.Errorf("expected finger angle 55, got %g", got)
	}
}
