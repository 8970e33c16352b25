package gesture

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/halo/internal/landmark"
)

// Result is a single detector's verdict for one frame.
type Result struct {
	Type       Type
	Confidence float64
}

var noResult = Result{Type: None}

// better returns whichever result has the strictly higher confidence,
// keeping a on ties.
func better(a, b Result) Result {
	if b.Confidence > a.Confidence {
		return b
	}
	return a
}

// perHand evaluates check on each present hand and keeps the best result.
func perHand(hands landmark.Hands, opts Options, check func(*landmark.HandLandmarks, Options) Result) Result {
	best := noResult
	hands.Each(func(h *landmark.HandLandmarks) {
		best = better(best, check(h, opts))
	})
	return best
}

// detectThumbsUp: thumb tip above the IP joint with all four fingers
// curled. Confidence is the mean of the thumb term and four curl terms.
func detectThumbsUp(h *landmark.HandLandmarks, opts Options) Result {
	if !h.HasAll(landmark.ThumbTip, landmark.ThumbIP) {
		return noResult
	}
	angles, ok := fingerAngles(h)
	if !ok {
		return noResult
	}

	if h.Points[landmark.ThumbTip].Y >= h.Points[landmark.ThumbIP].Y {
		return noResult
	}
	terms := make([]float64, 0, 5)
	terms = append(terms, 1)
	for _, a := range angles {
		if a < opts.FingerExtendedAngle {
			return noResult
		}
		terms = append(terms, curlConfidence(a, opts.FingerExtendedAngle))
	}

	return Result{Type: ThumbsUpHalo, Confidence: clamp01(stat.Mean(terms, nil))}
}

// detectHeart: both thumb tips and both index tips close together and each
// pair level. Confidence is 1 - avgDistance/threshold.
func detectHeart(hands landmark.Hands, opts Options) Result {
	l, r := hands.Left, hands.Right
	if !l.HasAll(landmark.ThumbTip, landmark.IndexTip) || !r.HasAll(landmark.ThumbTip, landmark.IndexTip) {
		return noResult
	}

	lt, rt := l.Points[landmark.ThumbTip], r.Points[landmark.ThumbTip]
	li, ri := l.Points[landmark.IndexTip], r.Points[landmark.IndexTip]

	thumbDist := landmark.Distance(lt, rt)
	indexDist := landmark.Distance(li, ri)
	if thumbDist >= opts.HeartThreshold || indexDist >= opts.HeartThreshold {
		return noResult
	}
	if math.Abs(lt.Y-rt.Y) >= opts.HeartBand || math.Abs(li.Y-ri.Y) >= opts.HeartBand {
		return noResult
	}

	avg := (thumbDist + indexDist) / 2
	return Result{Type: TwoHandHeart, Confidence: clamp01(1 - avg/opts.HeartThreshold)}
}

// detectRock: index and pinky extended, middle and ring curled.
func detectRock(h *landmark.HandLandmarks, opts Options) Result {
	angles, ok := fingerAngles(h)
	if !ok {
		return noResult
	}
	thr := opts.FingerExtendedAngle
	index, middle, ring, pinky := angles[0], angles[1], angles[2], angles[3]
	if !(index < thr && pinky < thr && middle >= thr && ring >= thr) {
		return noResult
	}

	terms := []float64{
		extensionConfidence(index, thr),
		extensionConfidence(pinky, thr),
		1 - extensionConfidence(middle, thr),
		1 - extensionConfidence(ring, thr),
	}
	return Result{Type: RockSign, Confidence: clamp01(stat.Mean(terms, nil))}
}

// detectPoint: index extended, the other three curled.
func detectPoint(h *landmark.HandLandmarks, opts Options) Result {
	angles, ok := fingerAngles(h)
	if !ok {
		return noResult
	}
	thr := opts.FingerExtendedAngle
	index, middle, ring, pinky := angles[0], angles[1], angles[2], angles[3]
	if !(index < thr && middle >= thr && ring >= thr && pinky >= thr) {
		return noResult
	}

	terms := []float64{
		extensionConfidence(index, thr),
		1 - extensionConfidence(middle, thr),
		1 - extensionConfidence(ring, thr),
		1 - extensionConfidence(pinky, thr),
	}
	return Result{Type: PointSparkles, Confidence: clamp01(stat.Mean(terms, nil))}
}

// detectPeace: index and middle extended above the wrist and spread apart,
// ring and pinky curled.
func detectPeace(h *landmark.HandLandmarks, opts Options) Result {
	if !h.HasAll(landmark.Wrist, landmark.IndexTip, landmark.MiddleTip, landmark.IndexMCP, landmark.PinkyMCP) {
		return noResult
	}
	angles, ok := fingerAngles(h)
	if !ok {
		return noResult
	}
	thr := opts.FingerExtendedAngle
	index, middle, ring, pinky := angles[0], angles[1], angles[2], angles[3]
	if !(index < thr && middle < thr && ring >= thr && pinky >= thr) {
		return noResult
	}

	wrist := h.Points[landmark.Wrist]
	indexTip := h.Points[landmark.IndexTip]
	middleTip := h.Points[landmark.MiddleTip]
	if indexTip.Y >= wrist.Y || middleTip.Y >= wrist.Y {
		return noResult
	}

	palmWidth := landmark.Distance(h.Points[landmark.PinkyMCP], h.Points[landmark.IndexMCP])
	if palmWidth == 0 {
		return noResult
	}
	separation := landmark.Distance(indexTip, middleTip)
	if separation < opts.PeaceMinSeparation*palmWidth {
		return noResult
	}

	terms := []float64{
		extensionConfidence(index, thr),
		extensionConfidence(middle, thr),
		1 - extensionConfidence(ring, thr),
		1 - extensionConfidence(pinky, thr),
		math.Min(1, separation/palmWidth),
	}
	return Result{Type: PeaceSign, Confidence: clamp01(stat.Mean(terms, nil))}
}

// IsPointing reports whether a single hand forms the point gesture.
func IsPointing(h *landmark.HandLandmarks, opts Options) bool {
	return detectPoint(h, opts.withDefaults()).Type == PointSparkles
}

// IsPeace reports whether a single hand forms the peace sign.
func IsPeace(h *landmark.HandLandmarks, opts Options) bool {
	return detectPeace(h, opts.withDefaults()).Type == PeaceSign
}
