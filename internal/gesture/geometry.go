package gesture

import (
	"math"

	"github.com/ayusman/halo/internal/landmark"
)

// Finger identifies one of the four non-thumb digits by its MCP index.
type Finger int

const (
	Index  Finger = landmark.IndexMCP
	Middle Finger = landmark.MiddleMCP
	Ring   Finger = landmark.RingMCP
	Pinky  Finger = landmark.PinkyMCP
)

func (f Finger) mcp() int { return int(f) }
func (f Finger) pip() int { return int(f) + 1 }
func (f Finger) tip() int { return int(f) + 3 }

// curledAngle is reported for degenerate joints so they read as fully
// curled.
const curledAngle = 180.0

// FingerAngle returns the bend angle in degrees between the MCP→PIP and
// PIP→TIP vectors. ok is false when any of the three landmarks is missing.
// Zero-length vectors yield 180.
func FingerAngle(h *landmark.HandLandmarks, f Finger) (angle float64, ok bool) {
	if !h.HasAll(f.mcp(), f.pip(), f.tip()) {
		return 0, false
	}
	mcp := h.Points[f.mcp()]
	pip := h.Points[f.pip()]
	tip := h.Points[f.tip()]

	v1x, v1y := pip.X-mcp.X, pip.Y-mcp.Y
	v2x, v2y := tip.X-pip.X, tip.Y-pip.Y

	mag1 := math.Sqrt(v1x*v1x + v1y*v1y)
	mag2 := math.Sqrt(v2x*v2x + v2y*v2y)
	if mag1 == 0 || mag2 == 0 {
		return curledAngle, true
	}

	cos := (v1x*v2x + v1y*v2y) / (mag1 * mag2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, true
}

// extensionConfidence scales linearly from 1 at 0° to 0 at the threshold.
func extensionConfidence(angle, threshold float64) float64 {
	return clamp01(1 - angle/threshold)
}

// curlConfidence scales linearly from 0 at the threshold to 1 at 180°.
func curlConfidence(angle, threshold float64) float64 {
	return clamp01((angle - threshold) / (curledAngle - threshold))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// fingerAngles returns the bend angles of the four fingers in Index,
// Middle, Ring, Pinky order.
func fingerAngles(h *landmark.HandLandmarks) (angles [4]float64, ok bool) {
	for i, f := range [4]Finger{Index, Middle, Ring, Pinky} {
		a, present := FingerAngle(h, f)
		if !present {
			return angles, false
		}
		angles[i] = a
	}
	return angles, true
}
