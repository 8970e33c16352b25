package capture

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{"default threshold", 1.0, 1.0},
		{"high threshold", 5.0, 5.0},
		{"zero takes default", 0, DefaultMotionThreshold},
		{"negative takes default", -2, DefaultMotionThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if md.threshold != tt.want {
				t.Errorf("threshold = %f, want %f", md.threshold, tt.want)
			}
			if md.initialized {
				t.Error("motion detector should not be initialized initially")
			}
		})
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	if m := md.Detect(&frame1); m.Detected || m.Percent != 0 {
		t.Errorf("first frame should only set the baseline, got %+v", m)
	}

	m := md.Detect(&frame2)
	if m.Detected {
		t.Errorf("identical frames should not detect motion, percent = %f", m.Percent)
	}
	if !m.Region.Empty() {
		t.Errorf("expected empty region, got %v", m.Region)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()
	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&blackFrame)
	m := md.Detect(&whiteFrame)

	if !m.Detected {
		t.Errorf("black to white should detect motion, percent = %f", m.Percent)
	}
	if m.Percent < 50.0 {
		t.Errorf("percent = %f, expected > 50%% for black to white transition", m.Percent)
	}
	if m.Region.Dx() < 600 || m.Region.Dy() < 440 {
		t.Errorf("region = %v, expected close to the full frame", m.Region)
	}
}

func TestMotionDetector_Region(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	before := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer before.Close()
	after := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer after.Close()

	// A bright block appears in the right half
	block := after.Region(image.Rect(400, 100, 600, 300))
	block.SetTo(gocv.NewScalar(255, 255, 255, 0))
	block.Close()

	md.Detect(&before)
	m := md.Detect(&after)

	if !m.Detected {
		t.Fatalf("expected motion, percent = %f", m.Percent)
	}
	if m.Region.Min.X < 300 || m.Region.Max.X > 640 {
		t.Errorf("region = %v, expected it to sit in the right half", m.Region)
	}
	if !m.Region.Overlaps(image.Rect(400, 100, 600, 300)) {
		t.Errorf("region = %v does not cover the block", m.Region)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)

	if !md.initialized {
		t.Error("detector should be initialized after first Detect")
	}

	md.Reset()

	if md.initialized {
		t.Error("detector should not be initialized after Reset")
	}
	if !md.prevGray.Empty() {
		t.Error("prevGray should be empty after Reset")
	}
}

func TestMotionDetector_SizeChangeResetsBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	small := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer small.Close()
	// Shrinks to 320x180 for analysis
	wide := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer wide.Close()
	wide.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&small)

	if m := md.Detect(&wide); m.Detected {
		t.Error("a frame of a new size should only set the baseline")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0 after SetThreshold", md.threshold)
	}

	md.SetThreshold(-1.0)
	if md.threshold != 5.0 {
		t.Errorf("negative threshold should be ignored, got %f", md.threshold)
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)

	md.Close()
	md.Close()
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if m := md.Detect(nil); m.Detected {
		t.Error("nil frame should not detect motion")
	}
}
