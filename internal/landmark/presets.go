package landmark

// Preset hand shapes used by the mock detector, the demo driver and tests.
// Coordinates are normalized with Y increasing downward.

const (
	extendedSegment = 0.06
	curledSegment   = 0.03
)

// setFinger writes MCP/PIP/DIP/TIP for the finger whose MCP index is mcpIdx.
// An extended finger continues roughly along the MCP→PIP direction; lean
// tilts it sideways. A curled finger folds its tip back toward the palm.
func setFinger(h *HandLandmarks, mcpIdx int, mcp Point, extended bool, lean float64) {
	h.Points[mcpIdx] = mcp
	if extended {
		pip := Point{X: mcp.X + lean*0.5, Y: mcp.Y - extendedSegment}
		dip := Point{X: pip.X + lean*0.5, Y: pip.Y - 0.04}
		tip := Point{X: dip.X + lean*0.5, Y: dip.Y - 0.035}
		h.Points[mcpIdx+1] = pip
		h.Points[mcpIdx+2] = dip
		h.Points[mcpIdx+3] = tip
		return
	}
	pip := Point{X: mcp.X, Y: mcp.Y - curledSegment}
	h.Points[mcpIdx+1] = pip
	h.Points[mcpIdx+2] = Point{X: pip.X + 0.005, Y: pip.Y + 0.012}
	h.Points[mcpIdx+3] = Point{X: pip.X + 0.008, Y: pip.Y + 0.025}
}

// tuckedThumb places the thumb folded across the palm.
func tuckedThumb(h *HandLandmarks, wrist Point) {
	h.Points[ThumbCMC] = Point{X: wrist.X - 0.03, Y: wrist.Y - 0.04}
	h.Points[ThumbMCP] = Point{X: wrist.X - 0.06, Y: wrist.Y - 0.09}
	h.Points[ThumbIP] = Point{X: wrist.X - 0.05, Y: wrist.Y - 0.13}
	h.Points[ThumbTip] = Point{X: wrist.X - 0.02, Y: wrist.Y - 0.12}
}

// fingerHand builds an upright hand whose four fingers are extended or
// curled according to ext (index, middle, ring, pinky).
func fingerHand(wrist Point, ext [4]bool, lean [4]float64) *HandLandmarks {
	h := &HandLandmarks{}
	h.Points[Wrist] = wrist
	tuckedThumb(h, wrist)

	mcps := [4]int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	for i, idx := range mcps {
		mcp := Point{X: wrist.X - 0.06 + float64(i)*0.04, Y: wrist.Y - 0.18 + absf(float64(i)-1.2)*0.01}
		setFinger(h, idx, mcp, ext[i], lean[i])
	}
	return h
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// OpenPalm returns a hand with all fingers extended.
func OpenPalm() *HandLandmarks {
	h := fingerHand(Point{X: 0.5, Y: 0.8}, [4]bool{true, true, true, true}, [4]float64{-0.03, -0.01, 0.01, 0.03})
	h.Points[ThumbCMC] = Point{X: 0.45, Y: 0.76}
	h.Points[ThumbMCP] = Point{X: 0.40, Y: 0.71}
	h.Points[ThumbIP] = Point{X: 0.36, Y: 0.66}
	h.Points[ThumbTip] = Point{X: 0.33, Y: 0.62}
	return h
}

// ThumbsUp returns a hand with the thumb raised and the four fingers curled.
func ThumbsUp() *HandLandmarks {
	h := &HandLandmarks{}

	h.Points[Wrist] = Point{X: 0.5, Y: 0.8}

	// Thumb extended upward
	h.Points[ThumbCMC] = Point{X: 0.55, Y: 0.75}
	h.Points[ThumbMCP] = Point{X: 0.58, Y: 0.65}
	h.Points[ThumbIP] = Point{X: 0.58, Y: 0.50}
	h.Points[ThumbTip] = Point{X: 0.58, Y: 0.35}

	// Fingers curled: knuckles close together, tips folded toward the palm
	h.Points[IndexMCP] = Point{X: 0.55, Y: 0.70}
	h.Points[IndexPIP] = Point{X: 0.55, Y: 0.68}
	h.Points[IndexDIP] = Point{X: 0.52, Y: 0.70}
	h.Points[IndexTip] = Point{X: 0.50, Y: 0.72}

	h.Points[MiddleMCP] = Point{X: 0.50, Y: 0.68}
	h.Points[MiddlePIP] = Point{X: 0.50, Y: 0.66}
	h.Points[MiddleDIP] = Point{X: 0.47, Y: 0.68}
	h.Points[MiddleTip] = Point{X: 0.45, Y: 0.70}

	h.Points[RingMCP] = Point{X: 0.45, Y: 0.70}
	h.Points[RingPIP] = Point{X: 0.45, Y: 0.68}
	h.Points[RingDIP] = Point{X: 0.42, Y: 0.70}
	h.Points[RingTip] = Point{X: 0.40, Y: 0.72}

	h.Points[PinkyMCP] = Point{X: 0.40, Y: 0.72}
	h.Points[PinkyPIP] = Point{X: 0.40, Y: 0.70}
	h.Points[PinkyDIP] = Point{X: 0.37, Y: 0.72}
	h.Points[PinkyTip] = Point{X: 0.35, Y: 0.74}

	return h
}

// RockSign returns a hand with index and pinky extended, middle and ring
// curled.
func RockSign() *HandLandmarks {
	return fingerHand(Point{X: 0.5, Y: 0.8}, [4]bool{true, false, false, true}, [4]float64{-0.02, 0, 0, 0.02})
}

// Pointing returns a hand with only the index finger extended.
func Pointing() *HandLandmarks {
	return fingerHand(Point{X: 0.5, Y: 0.8}, [4]bool{true, false, false, false}, [4]float64{0.01, 0, 0, 0})
}

// PeaceSign returns a hand with index and middle extended in a V.
func PeaceSign() *HandLandmarks {
	return fingerHand(Point{X: 0.5, Y: 0.8}, [4]bool{true, true, false, false}, [4]float64{-0.04, 0.04, 0, 0})
}

// Fist returns a hand with every finger curled and the thumb tucked.
func Fist() *HandLandmarks {
	return fingerHand(Point{X: 0.5, Y: 0.8}, [4]bool{}, [4]float64{})
}

// HeartPair returns left and right hands whose thumbs and index fingers
// meet to form a heart in front of the chest.
func HeartPair() (left, right *HandLandmarks) {
	return heartHand(-1), heartHand(1)
}

// heartHand mirrors one half of the heart around x=0.5; side is -1 for the
// left hand and +1 for the right.
func heartHand(side float64) *HandLandmarks {
	at := func(dx, y float64) Point { return Point{X: 0.5 + side*dx, Y: y} }

	h := &HandLandmarks{}
	h.Points[Wrist] = at(0.14, 0.72)

	// Thumb tip points down to the base of the heart
	h.Points[ThumbCMC] = at(0.12, 0.68)
	h.Points[ThumbMCP] = at(0.08, 0.64)
	h.Points[ThumbIP] = at(0.04, 0.58)
	h.Points[ThumbTip] = at(0.01, 0.62)

	// Index finger arcs over the top of the heart
	h.Points[IndexMCP] = at(0.10, 0.55)
	h.Points[IndexPIP] = at(0.08, 0.46)
	h.Points[IndexDIP] = at(0.04, 0.45)
	h.Points[IndexTip] = at(0.01, 0.48)

	// Remaining fingers folded behind
	for i, idx := range []int{MiddleMCP, RingMCP, PinkyMCP} {
		mcp := at(0.12+float64(i)*0.02, 0.57+float64(i)*0.02)
		pip := Point{X: mcp.X, Y: mcp.Y - curledSegment}
		h.Points[idx] = mcp
		h.Points[idx+1] = pip
		h.Points[idx+2] = Point{X: pip.X, Y: pip.Y + 0.012}
		h.Points[idx+3] = Point{X: pip.X - side*0.008, Y: pip.Y + 0.025}
	}
	return h
}

// Frame builds a detection frame carrying the given hands.
func Frame(ts float64, left, right *HandLandmarks) DetectionFrame {
	return DetectionFrame{Timestamp: ts, Hands: Hands{Left: left, Right: right}}
}
