package detector

import (
	"fmt"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/halo/internal/landmark"
)

// ReplayDetector plays back recorded detection frames, one per call,
// ignoring the video frame. Recorded timestamps are replaced by the caller's
// so playback follows the live clock.
type ReplayDetector struct {
	frames []landmark.DetectionFrame
	index  int
	loop   bool
	mu     sync.Mutex
}

// NewReplayDetector plays frames in order, starting over at the end when
// loop is set.
func NewReplayDetector(frames []landmark.DetectionFrame, loop bool) *ReplayDetector {
	return &ReplayDetector{frames: frames, loop: loop}
}

// LoadReplay reads a JSONL recording from path.
func LoadReplay(path string, loop bool) (*ReplayDetector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	frames, err := landmark.ReadFrames(f)
	if err != nil {
		return nil, fmt.Errorf("read replay %s: %w", path, err)
	}
	return NewReplayDetector(frames, loop), nil
}

// Detect returns the next recorded frame.
func (r *ReplayDetector) Detect(_ *gocv.Mat, ts float64) (landmark.DetectionFrame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index >= len(r.frames) {
		if !r.loop || len(r.frames) == 0 {
			return landmark.DetectionFrame{}, ErrExhausted
		}
		r.index = 0
	}

	f := r.frames[r.index]
	r.index++
	f.Timestamp = ts
	return f, nil
}

// Len returns the number of recorded frames.
func (r *ReplayDetector) Len() int {
	return len(r.frames)
}

// Reset restarts playback from the beginning.
func (r *ReplayDetector) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = 0
}

// Close is a no-op.
func (r *ReplayDetector) Close() error {
	return nil
}
