package landmark

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadFrames(t *testing.T) {
	input := `{"timestamp": 0.033, "hands": {"Left": {"wrist": {"x": 0.5, "y": 0.8}, "index_tip": {"x": 0.5, "y": 0.2}}}}

{"timestamp": 0.066, "pose": {"nose": {"x": 0.5, "y": 0.1, "visibility": 0.9}}}
`
	frames, err := ReadFrames(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFrames() error = %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}

	first := frames[0]
	if first.Timestamp != 0.033 {
		t.Errorf("expected timestamp 0.033, got %f", first.Timestamp)
	}
	if first.Hands.Left == nil || first.Hands.Right != nil {
		t.Fatal("expected only a left hand")
	}
	if tip, ok := first.Hands.Left.At(IndexTip); !ok || tip.Y != 0.2 {
		t.Errorf("expected index tip y 0.2, got %+v (present %v)", tip, ok)
	}
	if first.Hands.Left.Has(ThumbTip) {
		t.Error("absent landmark names should be recorded as missing")
	}

	second := frames[1]
	if second.Pose == nil || !second.Pose.Has(Nose) {
		t.Fatal("expected pose with nose")
	}
	if second.Pose.Has(LeftHip) {
		t.Error("expected left hip to be missing")
	}
	if second.Pose.Points[Nose].Visibility != 0.9 {
		t.Errorf("expected visibility 0.9, got %f", second.Pose.Points[Nose].Visibility)
	}
}

func TestReadFrames_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    string
		invalid bool
	}{
		{
			name:  "malformed json",
			input: "{\"timestamp\": 0}\n{not json\n",
			line:  "line 2",
		},
		{
			name:    "out of range",
			input:   `{"timestamp": 0, "hands": {"right": {"wrist": {"x": 1.2, "y": 0.5}}}}`,
			line:    "line 1",
			invalid: true,
		},
		{
			name:    "unknown hand key",
			input:   "\n" + `{"timestamp": 0, "hands": {"middle": {}}}`,
			line:    "line 2",
			invalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrames(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Errorf("expected error to name %q, got %v", tt.line, err)
			}
			if tt.invalid && !errors.Is(err, ErrInvalidFrame) {
				t.Errorf("expected ErrInvalidFrame, got %v", err)
			}
		})
	}
}

func TestWriteFrames_ReadBack(t *testing.T) {
	left, right := HeartPair()
	right.Missing = 1 << PinkyTip
	right.Points[PinkyTip] = Point{}
	frames := []DetectionFrame{
		Frame(0, left, right),
		Frame(0.5, nil, RockSign()),
		{Timestamp: 1},
	}

	var buf bytes.Buffer
	if err := WriteFrames(&buf, frames); err != nil {
		t.Fatalf("WriteFrames() error = %v", err)
	}

	if lines := strings.Count(buf.String(), "\n"); lines != len(frames) {
		t.Errorf("expected %d lines, got %d", len(frames), lines)
	}

	got, err := ReadFrames(&buf)
	if err != nil {
		t.Fatalf("ReadFrames() error = %v", err)
	}
	if diff := cmp.Diff(frames, got); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestHandLandmarks_MarshalOmitsMissing(t *testing.T) {
	h := Fist()
	h.Missing = 1 << ThumbTip

	data, err := h.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if strings.Contains(string(data), `"thumb_tip"`) {
		t.Error("missing landmark should not be serialized")
	}
	if !strings.Contains(string(data), `"thumb_ip"`) {
		t.Error("present landmark should be serialized")
	}
}
