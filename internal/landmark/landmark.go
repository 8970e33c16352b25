// Package landmark provides the normalized body-landmark types consumed by
// gesture classification and effect anchoring.
package landmark

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Pose landmark indices for the upper-body subset tracked per person.
const (
	Nose = iota
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	NumPoseLandmarks
)

// Point is a landmark position normalized to [0,1] relative to the source
// video frame. Z and Visibility are carried through but ignored by
// classification.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Visibility float64 `json:"visibility,omitempty"`
}

// Distance returns the 2D Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// HandLandmarks represents the 21 landmarks of one hand.
// Missing is a bitmask of landmark indices the detector did not report;
// the zero value means every landmark is present.
type HandLandmarks struct {
	Points  [NumLandmarks]Point
	Missing uint32
}

// Has reports whether landmark i is present.
func (h *HandLandmarks) Has(i int) bool {
	if h == nil || i < 0 || i >= NumLandmarks {
		return false
	}
	return h.Missing&(1<<uint(i)) == 0
}

// HasAll reports whether every listed landmark is present.
func (h *HandLandmarks) HasAll(indices ...int) bool {
	for _, i := range indices {
		if !h.Has(i) {
			return false
		}
	}
	return h != nil
}

// At returns landmark i and whether it is present.
func (h *HandLandmarks) At(i int) (Point, bool) {
	if !h.Has(i) {
		return Point{}, false
	}
	return h.Points[i], true
}

// PoseLandmarks represents the upper-body landmarks of a single person.
type PoseLandmarks struct {
	Points  [NumPoseLandmarks]Point
	Missing uint16
}

// Has reports whether pose landmark i is present.
func (p *PoseLandmarks) Has(i int) bool {
	if p == nil || i < 0 || i >= NumPoseLandmarks {
		return false
	}
	return p.Missing&(1<<uint(i)) == 0
}

// Hands holds up to two hands tagged by the external handedness classifier.
type Hands struct {
	Left  *HandLandmarks
	Right *HandLandmarks
}

// Count returns the number of hands present.
func (h Hands) Count() int {
	n := 0
	if h.Left != nil {
		n++
	}
	if h.Right != nil {
		n++
	}
	return n
}

// Each calls fn for every present hand, left first.
func (h Hands) Each(fn func(hand *HandLandmarks)) {
	if h.Left != nil {
		fn(h.Left)
	}
	if h.Right != nil {
		fn(h.Right)
	}
}

// DetectionFrame is the per-frame bundle produced by the landmark detector.
// Frames are treated as immutable once built.
type DetectionFrame struct {
	Timestamp float64
	Pose      *PoseLandmarks
	Hands     Hands
}

// Empty reports whether the frame carries neither pose nor hand data.
func (f *DetectionFrame) Empty() bool {
	return f == nil || (f.Pose == nil && f.Hands.Count() == 0)
}

// Mirrored returns a copy of f flipped horizontally, matching a camera image
// shown as a mirror. Handedness slots are kept.
func (f DetectionFrame) Mirrored() DetectionFrame {
	out := DetectionFrame{Timestamp: f.Timestamp}
	if f.Pose != nil {
		p := *f.Pose
		for i := range p.Points {
			p.Points[i].X = 1 - p.Points[i].X
		}
		out.Pose = &p
	}
	out.Hands.Left = mirrorHand(f.Hands.Left)
	out.Hands.Right = mirrorHand(f.Hands.Right)
	return out
}

func mirrorHand(h *HandLandmarks) *HandLandmarks {
	if h == nil {
		return nil
	}
	m := *h
	for i := range m.Points {
		m.Points[i].X = 1 - m.Points[i].X
	}
	return &m
}
