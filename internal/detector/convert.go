package detector

import (
	"strings"

	"github.com/ayusman/halo/internal/landmark"
)

// poseSource maps each tracked pose landmark to its index in the 33-point
// MediaPipe pose model.
var poseSource = [landmark.NumPoseLandmarks]int{
	landmark.Nose:          0,
	landmark.LeftShoulder:  11,
	landmark.RightShoulder: 12,
	landmark.LeftElbow:     13,
	landmark.RightElbow:    14,
	landmark.LeftWrist:     15,
	landmark.RightWrist:    16,
	landmark.LeftHip:       23,
	landmark.RightHip:      24,
}

// serviceResponse is one JSON line from the landmark service.
type serviceResponse struct {
	Hands []jsonHand `json:"hands"`
	Pose  *jsonPose  `json:"pose,omitempty"`
	Error string     `json:"error,omitempty"`
}

type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPose struct {
	Points []jsonPoint `json:"points"`
}

type jsonPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

func (p jsonPoint) toPoint() landmark.Point {
	return landmark.Point{X: clamp01(p.X), Y: clamp01(p.Y), Z: p.Z, Visibility: clamp01(p.Visibility)}
}

// clamp01 pins model output to the normalized frame. Landmarks of a hand
// partly out of view come back slightly outside [0,1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func (h jsonHand) toHand() *landmark.HandLandmarks {
	out := &landmark.HandLandmarks{}
	for i := 0; i < landmark.NumLandmarks; i++ {
		if i >= len(h.Points) {
			out.Missing |= 1 << uint(i)
			continue
		}
		out.Points[i] = h.Points[i].toPoint()
	}
	return out
}

func (p *jsonPose) toPose(minVisibility float64) *landmark.PoseLandmarks {
	if p == nil || len(p.Points) == 0 {
		return nil
	}
	out := &landmark.PoseLandmarks{}
	found := false
	for i, src := range poseSource {
		if src >= len(p.Points) || p.Points[src].Visibility < minVisibility {
			out.Missing |= 1 << uint(i)
			continue
		}
		out.Points[i] = p.Points[src].toPoint()
		found = true
	}
	if !found {
		return nil
	}
	return out
}

// toFrame builds a detection frame from a service response. Hands below the
// confidence threshold are dropped; a hand whose handedness slot is taken
// moves to the free slot.
func (r serviceResponse) toFrame(ts float64, cfg Config) landmark.DetectionFrame {
	f := landmark.DetectionFrame{Timestamp: ts}
	if cfg.Pose {
		f.Pose = r.Pose.toPose(cfg.MinVisibility)
	}

	maxHands := cfg.MaxHands
	if maxHands <= 0 || maxHands > 2 {
		maxHands = 2
	}
	for _, h := range r.Hands {
		if f.Hands.Count() >= maxHands {
			break
		}
		if h.Score < cfg.MinConfidence {
			continue
		}
		hand := h.toHand()
		left := strings.EqualFold(h.Handedness, "left")
		switch {
		case left && f.Hands.Left == nil:
			f.Hands.Left = hand
		case !left && f.Hands.Right == nil:
			f.Hands.Right = hand
		case f.Hands.Left == nil:
			f.Hands.Left = hand
		default:
			f.Hands.Right = hand
		}
	}
	return f
}
