package gesture

import "github.com/ayusman/halo/internal/landmark"

// FrameResult records the raw and locked classification of one frame.
type FrameResult struct {
	T      float64 `json:"t"`
	Raw    Type    `json:"raw"`
	Locked Type    `json:"locked"`
	Conf   float64 `json:"conf"`
}

// ClassifyStream runs frames through the classifier in order, applying the
// lock state machine, and returns one result per frame.
func (c *Classifier) ClassifyStream(frames []landmark.DetectionFrame) []FrameResult {
	results := make([]FrameResult, 0, len(frames))
	for i := range frames {
		raw, conf := c.ClassifyFrame(&frames[i])
		state := c.advance(raw, conf)
		results = append(results, FrameResult{
			T:      frames[i].Timestamp,
			Raw:    raw,
			Locked: state.Active(),
			Conf:   conf,
		})
	}
	return results
}

// Interval is a contiguous span during which a gesture stayed locked.
type Interval struct {
	Type  Type    `json:"type"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Intervals collapses stream results into locked spans. NONE spans are
// omitted; a span still open at the end closes at the last timestamp.
func Intervals(results []FrameResult) []Interval {
	var out []Interval
	current := None
	var start float64

	for _, r := range results {
		if r.Locked == current {
			continue
		}
		if current != None {
			out = append(out, Interval{Type: current, Start: start, End: r.T})
		}
		current = r.Locked
		start = r.T
	}
	if current != None && len(results) > 0 {
		out = append(out, Interval{Type: current, Start: start, End: results[len(results)-1].T})
	}
	return out
}
