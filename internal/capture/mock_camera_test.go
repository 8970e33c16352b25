package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen before Open, got %v", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	if w, h := cam.Size(); w != 640 || h != 480 {
		t.Errorf("Size() = %dx%d, want 640x480", w, h)
	}

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames after all frames consumed, got %v", err)
	}

	cam.Reset()
	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after Reset error = %v", err)
	}
	f.Close()
}

func TestMockCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_FPS(t *testing.T) {
	cam := NewMockCamera(nil, false)

	cam.SetFPS(12)
	cam.SetFPS(0)

	if got := cam.FPS(); got != 12 {
		t.Errorf("FPS() = %d, want 12", got)
	}
	if w, h := cam.Size(); w != 0 || h != 0 {
		t.Errorf("Size() = %dx%d, want 0x0 with no frames", w, h)
	}
}
