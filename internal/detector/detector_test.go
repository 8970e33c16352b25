package detector

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/halo/internal/landmark"
)

func handPoints(n int, x, y float64) []jsonPoint {
	pts := make([]jsonPoint, n)
	for i := range pts {
		pts[i] = jsonPoint{X: x, Y: y, Visibility: 1}
	}
	return pts
}

func TestServiceResponse_ToFrame(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("hands go to their handedness slot", func(t *testing.T) {
		resp := serviceResponse{Hands: []jsonHand{
			{Points: handPoints(21, 0.7, 0.5), Handedness: "Right", Score: 0.9},
			{Points: handPoints(21, 0.3, 0.5), Handedness: "Left", Score: 0.9},
		}}

		f := resp.toFrame(1.5, cfg)

		if f.Timestamp != 1.5 {
			t.Errorf("expected timestamp 1.5, got %f", f.Timestamp)
		}
		if f.Hands.Left == nil || f.Hands.Left.Points[landmark.Wrist].X != 0.3 {
			t.Errorf("expected left hand at x=0.3, got %+v", f.Hands.Left)
		}
		if f.Hands.Right == nil || f.Hands.Right.Points[landmark.Wrist].X != 0.7 {
			t.Errorf("expected right hand at x=0.7, got %+v", f.Hands.Right)
		}
	})

	t.Run("duplicate handedness takes the free slot", func(t *testing.T) {
		resp := serviceResponse{Hands: []jsonHand{
			{Points: handPoints(21, 0.3, 0.5), Handedness: "Left", Score: 0.9},
			{Points: handPoints(21, 0.7, 0.5), Handedness: "Left", Score: 0.8},
		}}

		f := resp.toFrame(0, cfg)

		if f.Hands.Count() != 2 {
			t.Fatalf("expected 2 hands, got %d", f.Hands.Count())
		}
		if f.Hands.Right.Points[landmark.Wrist].X != 0.7 {
			t.Errorf("expected second left hand in right slot, got x=%f", f.Hands.Right.Points[landmark.Wrist].X)
		}
	})

	t.Run("low confidence hands are dropped", func(t *testing.T) {
		resp := serviceResponse{Hands: []jsonHand{
			{Points: handPoints(21, 0.5, 0.5), Handedness: "Left", Score: 0.2},
		}}

		f := resp.toFrame(0, cfg)

		if f.Hands.Count() != 0 {
			t.Errorf("expected no hands, got %d", f.Hands.Count())
		}
	})

	t.Run("max hands is honored", func(t *testing.T) {
		one := cfg
		one.MaxHands = 1
		resp := serviceResponse{Hands: []jsonHand{
			{Points: handPoints(21, 0.3, 0.5), Handedness: "Left", Score: 0.9},
			{Points: handPoints(21, 0.7, 0.5), Handedness: "Right", Score: 0.9},
		}}

		f := resp.toFrame(0, one)

		if f.Hands.Count() != 1 || f.Hands.Left == nil {
			t.Errorf("expected only the left hand, got %+v", f.Hands)
		}
	})

	t.Run("short point lists mark landmarks missing", func(t *testing.T) {
		resp := serviceResponse{Hands: []jsonHand{
			{Points: handPoints(9, 0.5, 0.5), Handedness: "Right", Score: 0.9},
		}}

		h := resp.toFrame(0, cfg).Hands.Right

		if !h.Has(landmark.IndexTip) {
			t.Error("expected index tip to be present")
		}
		if h.Has(landmark.MiddleMCP) || h.Has(landmark.PinkyTip) {
			t.Error("expected landmarks past the list to be missing")
		}
	})

	t.Run("coordinates are clamped to the frame", func(t *testing.T) {
		resp := serviceResponse{Hands: []jsonHand{
			{Points: handPoints(21, -0.1, 1.2), Handedness: "Right", Score: 0.9},
		}}

		f := resp.toFrame(0, cfg)

		if err := f.Validate(); err != nil {
			t.Errorf("expected clamped frame to validate, got %v", err)
		}
		p := f.Hands.Right.Points[landmark.Wrist]
		if p.X != 0 || p.Y != 1 {
			t.Errorf("expected (0, 1), got (%f, %f)", p.X, p.Y)
		}
	})
}

func TestServiceResponse_Pose(t *testing.T) {
	pts := make([]jsonPoint, 33)
	for i := range pts {
		pts[i] = jsonPoint{X: float64(i) / 40, Y: 0.5, Visibility: 0.9}
	}
	pts[23].Visibility = 0.1 // left hip out of view

	resp := serviceResponse{Pose: &jsonPose{Points: pts}}

	t.Run("maps the upper body subset", func(t *testing.T) {
		f := resp.toFrame(0, DefaultConfig())
		if f.Pose == nil {
			t.Fatal("expected a pose")
		}

		if got := f.Pose.Points[landmark.LeftShoulder].X; got != 11.0/40 {
			t.Errorf("expected left shoulder from index 11, got x=%f", got)
		}
		if got := f.Pose.Points[landmark.RightHip].X; got != 24.0/40 {
			t.Errorf("expected right hip from index 24, got x=%f", got)
		}
		if f.Pose.Has(landmark.LeftHip) {
			t.Error("expected low-visibility left hip to be missing")
		}
		if !f.Pose.Has(landmark.Nose) {
			t.Error("expected nose to be present")
		}
	})

	t.Run("pose disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Pose = false

		if f := resp.toFrame(0, cfg); f.Pose != nil {
			t.Error("expected no pose when the pose model is disabled")
		}
	})

	t.Run("nothing visible", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinVisibility = 0.95

		if f := resp.toFrame(0, cfg); f.Pose != nil {
			t.Error("expected nil pose when no landmark is visible")
		}
	})
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		hands   int
		wantErr bool
	}{
		{"empty", `{"hands": []}`, 0, false},
		{"one hand", `{"hands": [{"points": [], "handedness": "Left", "score": 0.9}]}`, 1, false},
		{"service error", `{"error": "decode failed"}`, 0, true},
		{"garbage", `not json`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseResponse([]byte(tt.line))
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if err == nil && len(resp.Hands) != tt.hands {
				t.Errorf("expected %d hands, got %d", tt.hands, len(resp.Hands))
			}
		})
	}
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Script = filepath.Join(t.TempDir(), "missing.py")

	if _, err := NewMediaPipeDetector(cfg); err == nil {
		t.Error("expected error for a missing script")
	}
}

func TestMediaPipeDetector_Args(t *testing.T) {
	d := &MediaPipeDetector{config: DefaultConfig(), script: "svc.py"}

	args := d.args()

	if args[0] != "svc.py" {
		t.Errorf("expected script first, got %s", args[0])
	}
	if args[len(args)-1] != "--pose" {
		t.Errorf("expected --pose flag, got %v", args)
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns an empty frame by default", func(t *testing.T) {
		mock := NewMockDetector()

		f, err := mock.Detect(nil, 2)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !f.Empty() {
			t.Errorf("expected empty frame, got %+v", f)
		}
		if f.Timestamp != 2 {
			t.Errorf("expected timestamp 2, got %f", f.Timestamp)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		left, right := landmark.HeartPair()
		mock.SetHands(left, right)

		f, err := mock.Detect(nil, 0)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if f.Hands.Count() != 2 {
			t.Errorf("expected 2 hands, got %d", f.Hands.Count())
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		_, err := mock.Detect(nil, 0)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*ReplayDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestReplayDetector(t *testing.T) {
	frames := []landmark.DetectionFrame{
		landmark.Frame(0.0, landmark.RockSign(), nil),
		landmark.Frame(0.5, nil, landmark.Pointing()),
	}

	t.Run("plays frames in order with the caller's clock", func(t *testing.T) {
		r := NewReplayDetector(frames, false)

		f, err := r.Detect(nil, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Hands.Left == nil || f.Timestamp != 10 {
			t.Errorf("expected first frame stamped 10, got %+v", f)
		}

		f, _ = r.Detect(nil, 11)
		if f.Hands.Right == nil {
			t.Error("expected second frame")
		}

		if _, err := r.Detect(nil, 12); !errors.Is(err, ErrExhausted) {
			t.Errorf("expected ErrExhausted, got %v", err)
		}
		if frames[0].Timestamp != 0 {
			t.Error("replay must not modify the recording")
		}
	})

	t.Run("loops", func(t *testing.T) {
		r := NewReplayDetector(frames, true)
		for i := 0; i < 5; i++ {
			if _, err := r.Detect(nil, float64(i)); err != nil {
				t.Fatalf("iteration %d: unexpected error: %v", i, err)
			}
		}
	})

	t.Run("empty loop is exhausted", func(t *testing.T) {
		r := NewReplayDetector(nil, true)
		if _, err := r.Detect(nil, 0); !errors.Is(err, ErrExhausted) {
			t.Errorf("expected ErrExhausted, got %v", err)
		}
	})

	t.Run("reset", func(t *testing.T) {
		r := NewReplayDetector(frames, false)
		r.Detect(nil, 0)
		r.Detect(nil, 0)
		r.Reset()
		if _, err := r.Detect(nil, 0); err != nil {
			t.Errorf("expected playback after reset, got %v", err)
		}
	})
}

func TestLoadReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	frames := []landmark.DetectionFrame{
		landmark.Frame(0, landmark.ThumbsUp(), nil),
		landmark.Frame(0.033, landmark.ThumbsUp(), nil),
	}
	if err := landmark.WriteFrames(f, frames); err != nil {
		t.Fatalf("failed to write frames: %v", err)
	}
	f.Close()

	r, err := LoadReplay(path, false)
	if err != nil {
		t.Fatalf("LoadReplay() error = %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 frames, got %d", r.Len())
	}

	if _, err := LoadReplay(filepath.Join(t.TempDir(), "none.jsonl"), false); err == nil {
		t.Error("expected error for a missing recording")
	}
}
