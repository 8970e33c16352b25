// Package detector adapts external landmark models into detection frames
// for the gesture classifier.
package detector

import (
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/halo/internal/landmark"
)

// ErrExhausted is returned by a replay source with no frames left.
var ErrExhausted = errors.New("no more frames")

// Detector turns a video frame into pose and hand landmarks.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks found in it,
	// stamped with ts seconds. A frame with nobody in view is empty, not an
	// error.
	Detect(frame *gocv.Mat, ts float64) (landmark.DetectionFrame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int `yaml:"max_hands"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`

	// MinVisibility drops pose landmarks the model is unsure about.
	MinVisibility float64 `yaml:"min_visibility"`

	// Pose enables the upper-body pose model alongside hands.
	Pose bool `yaml:"pose"`

	// Script overrides the landmark service script location.
	Script string `yaml:"script"`

	// IdleTimeout stops the service after this long without a request.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		MinVisibility:   0.5,
		Pose:            true,
		IdleTimeout:     30 * time.Second,
	}
}
