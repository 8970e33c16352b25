package landmark

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidFrame is returned when a serialized frame fails validation.
var ErrInvalidFrame = errors.New("invalid detection frame")

// HandNames maps hand landmark indices to their serialized names.
var HandNames = [NumLandmarks]string{
	"wrist",
	"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
	"index_mcp", "index_pip", "index_dip", "index_tip",
	"middle_mcp", "middle_pip", "middle_dip", "middle_tip",
	"ring_mcp", "ring_pip", "ring_dip", "ring_tip",
	"pinky_mcp", "pinky_pip", "pinky_dip", "pinky_tip",
}

// PoseNames maps pose landmark indices to their serialized names.
var PoseNames = [NumPoseLandmarks]string{
	"nose",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_hip", "right_hip",
}

// MarshalJSON encodes the hand as an object keyed by landmark name.
// Missing landmarks are omitted.
func (h HandLandmarks) MarshalJSON() ([]byte, error) {
	m := make(map[string]Point, NumLandmarks)
	for i, name := range HandNames {
		if h.Has(i) {
			m[name] = h.Points[i]
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a named-landmark object. Absent names are recorded
// in Missing rather than rejected.
func (h *HandLandmarks) UnmarshalJSON(data []byte) error {
	var m map[string]Point
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*h = HandLandmarks{}
	for i, name := range HandNames {
		p, ok := m[name]
		if !ok {
			h.Missing |= 1 << uint(i)
			continue
		}
		h.Points[i] = p
	}
	return nil
}

// MarshalJSON encodes the pose as an object keyed by landmark name.
func (p PoseLandmarks) MarshalJSON() ([]byte, error) {
	m := make(map[string]Point, NumPoseLandmarks)
	for i, name := range PoseNames {
		if p.Has(i) {
			m[name] = p.Points[i]
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a named pose-landmark object.
func (p *PoseLandmarks) UnmarshalJSON(data []byte) error {
	var m map[string]Point
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*p = PoseLandmarks{}
	for i, name := range PoseNames {
		pt, ok := m[name]
		if !ok {
			p.Missing |= 1 << uint(i)
			continue
		}
		p.Points[i] = pt
	}
	return nil
}

type jsonFrame struct {
	Timestamp float64                   `json:"timestamp"`
	Pose      *PoseLandmarks            `json:"pose,omitempty"`
	Hands     map[string]*HandLandmarks `json:"hands,omitempty"`
}

// MarshalJSON encodes the frame with hands keyed "left"/"right".
func (f DetectionFrame) MarshalJSON() ([]byte, error) {
	jf := jsonFrame{Timestamp: f.Timestamp, Pose: f.Pose}
	if f.Hands.Count() > 0 {
		jf.Hands = make(map[string]*HandLandmarks, 2)
		if f.Hands.Left != nil {
			jf.Hands["left"] = f.Hands.Left
		}
		if f.Hands.Right != nil {
			jf.Hands["right"] = f.Hands.Right
		}
	}
	return json.Marshal(jf)
}

// UnmarshalJSON decodes a frame. Hand keys are matched case-insensitively.
func (f *DetectionFrame) UnmarshalJSON(data []byte) error {
	var jf jsonFrame
	if err := json.Unmarshal(data, &jf); err != nil {
		return err
	}
	*f = DetectionFrame{Timestamp: jf.Timestamp, Pose: jf.Pose}
	for key, hand := range jf.Hands {
		switch strings.ToLower(key) {
		case "left":
			f.Hands.Left = hand
		case "right":
			f.Hands.Right = hand
		default:
			return fmt.Errorf("%w: unknown hand key %q", ErrInvalidFrame, key)
		}
	}
	return nil
}

// Validate checks that every present landmark lies in the normalized [0,1]
// range.
func (f *DetectionFrame) Validate() error {
	if f.Pose != nil {
		for i, name := range PoseNames {
			if f.Pose.Has(i) {
				if err := checkRange("pose."+name, f.Pose.Points[i]); err != nil {
					return err
				}
			}
		}
	}
	check := func(side string, h *HandLandmarks) error {
		if h == nil {
			return nil
		}
		for i, name := range HandNames {
			if h.Has(i) {
				if err := checkRange(side+"."+name, h.Points[i]); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := check("left", f.Hands.Left); err != nil {
		return err
	}
	return check("right", f.Hands.Right)
}

func checkRange(name string, p Point) error {
	if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
		return fmt.Errorf("%w: %s (%.3f, %.3f) outside [0,1]", ErrInvalidFrame, name, p.X, p.Y)
	}
	if p.Visibility < 0 || p.Visibility > 1 {
		return fmt.Errorf("%w: %s visibility %.3f outside [0,1]", ErrInvalidFrame, name, p.Visibility)
	}
	return nil
}

// ReadFrames reads newline-delimited JSON detection frames. Blank lines are
// skipped; errors report the offending line number.
func ReadFrames(r io.Reader) ([]DetectionFrame, error) {
	var frames []DetectionFrame
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var f DetectionFrame
		if err := json.Unmarshal([]byte(text), &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}

	return frames, nil
}

// WriteFrames writes frames as newline-delimited JSON.
func WriteFrames(w io.Writer, frames []DetectionFrame) error {
	enc := json.NewEncoder(w)
	for i := range frames {
		if err := enc.Encode(frames[i]); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	return nil
}
