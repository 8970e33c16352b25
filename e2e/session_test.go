package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/halo/internal/landmark"
)

// segment holds one pose for a number of frames. Nil hands mean nobody is
// in view.
type segment struct {
	left, right *landmark.HandLandmarks
	frames      int
}

func thumbsUp(n int) segment { return segment{right: landmark.ThumbsUp(), frames: n} }
func rock(n int) segment     { return segment{right: landmark.RockSign(), frames: n} }
func empty(n int) segment    { return segment{frames: n} }

func heart(n int) segment {
	l, r := landmark.HeartPair()
	return segment{left: l, right: r, frames: n}
}

// script expands segments into frames spaced 1/30s apart.
func script(segs ...segment) []landmark.DetectionFrame {
	var frames []landmark.DetectionFrame
	for _, s := range segs {
		for i := 0; i < s.frames; i++ {
			ts := float64(len(frames)) / 30
			frames = append(frames, landmark.Frame(ts, s.left, s.right))
		}
	}
	return frames
}

// writeSession records frames as JSONL in a temp dir and returns the path.
func writeSession(t *testing.T, frames []landmark.DetectionFrame) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	defer f.Close()

	if err := landmark.WriteFrames(f, frames); err != nil {
		t.Fatalf("write session: %v", err)
	}
	return path
}

// blankFrames returns n black BGR frames; they are closed when the test
// ends.
func blankFrames(t *testing.T, n, width, height int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		m := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		frames = append(frames, &m)
	}
	t.Cleanup(func() {
		for _, m := range frames {
			m.Close()
		}
	})
	return frames
}
