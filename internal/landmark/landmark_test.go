package landmark

import (
	"math"
	"testing"
)

func TestHandLandmarks_Missing(t *testing.T) {
	h := OpenPalm()
	h.Missing = 1 << IndexTip

	if h.Has(IndexTip) {
		t.Error("expected IndexTip to be missing")
	}
	if !h.Has(Wrist) {
		t.Error("expected Wrist to be present")
	}
	if _, ok := h.At(IndexTip); ok {
		t.Error("At() should report missing landmark")
	}
	if h.HasAll(Wrist, IndexTip) {
		t.Error("HasAll() should fail when any landmark is missing")
	}
	if !h.HasAll(Wrist, MiddleTip) {
		t.Error("HasAll() should pass when all landmarks are present")
	}

	var nilHand *HandLandmarks
	if nilHand.Has(Wrist) || nilHand.HasAll() {
		t.Error("nil hand should have no landmarks")
	}
	if h.Has(-1) || h.Has(NumLandmarks) {
		t.Error("out-of-range indices should not be present")
	}
}

func TestDetectionFrame_Empty(t *testing.T) {
	tests := []struct {
		name  string
		frame *DetectionFrame
		want  bool
	}{
		{"nil", nil, true},
		{"no data", &DetectionFrame{}, true},
		{"one hand", &DetectionFrame{Hands: Hands{Right: Fist()}}, false},
		{"pose only", &DetectionFrame{Pose: &PoseLandmarks{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.Empty(); got != tt.want {
				t.Errorf("expected Empty() = %v, got %v", tt.want, got)
			}
		})
	}
}

func TestHands_CountEach(t *testing.T) {
	left, right := HeartPair()
	h := Hands{Left: left, Right: right}

	if h.Count() != 2 {
		t.Errorf("expected 2 hands, got %d", h.Count())
	}

	var order []*HandLandmarks
	h.Each(func(hand *HandLandmarks) { order = append(order, hand) })
	if len(order) != 2 || order[0] != left || order[1] != right {
		t.Error("Each() should visit left then right")
	}
}

func TestDistanceMidpoint(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 0.3, Y: 0.4}

	if d := Distance(a, b); math.Abs(d-0.5) > 1e-9 {
		t.Errorf("expected distance 0.5, got %f", d)
	}
	m := Midpoint(a, b)
	if math.Abs(m.X-0.15) > 1e-9 || math.Abs(m.Y-0.2) > 1e-9 {
		t.Errorf("expected midpoint (0.15, 0.2), got (%f, %f)", m.X, m.Y)
	}
}

func TestDetectionFrame_Mirrored(t *testing.T) {
	hand := Pointing()
	hand.Missing = 1 << PinkyTip
	pose := &PoseLandmarks{}
	pose.Points[Nose] = Point{X: 0.25, Y: 0.3}

	f := DetectionFrame{Timestamp: 1.5, Pose: pose, Hands: Hands{Left: hand}}
	m := f.Mirrored()

	if m.Timestamp != 1.5 {
		t.Errorf("expected timestamp 1.5, got %f", m.Timestamp)
	}
	if m.Hands.Right != nil {
		t.Error("mirroring should keep handedness slots")
	}
	if got := m.Hands.Left.Points[IndexTip].X; math.Abs(got-(1-hand.Points[IndexTip].X)) > 1e-9 {
		t.Errorf("expected flipped index tip X, got %f", got)
	}
	if got := m.Hands.Left.Points[IndexTip].Y; got != hand.Points[IndexTip].Y {
		t.Errorf("expected Y unchanged, got %f", got)
	}
	if m.Hands.Left.Has(PinkyTip) {
		t.Error("mirroring should keep the missing mask")
	}
	if got := m.Pose.Points[Nose].X; math.Abs(got-0.75) > 1e-9 {
		t.Errorf("expected pose nose X 0.75, got %f", got)
	}

	// The source frame is untouched
	if f.Pose.Points[Nose].X != 0.25 || m.Hands.Left == hand {
		t.Error("Mirrored() should not modify the original frame")
	}
}

func TestPresets_InRange(t *testing.T) {
	left, right := HeartPair()
	hands := map[string]*HandLandmarks{
		"open palm":   OpenPalm(),
		"thumbs up":   ThumbsUp(),
		"rock":        RockSign(),
		"pointing":    Pointing(),
		"peace":       PeaceSign(),
		"fist":        Fist(),
		"heart left":  left,
		"heart right": right,
	}

	for name, h := range hands {
		t.Run(name, func(t *testing.T) {
			f := Frame(0, h, nil)
			if err := f.Validate(); err != nil {
				t.Errorf("preset should be in range: %v", err)
			}
		})
	}
}
