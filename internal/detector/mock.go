package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/halo/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands landmark.Hands
	pose  *landmark.PoseLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(left, right *landmark.HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = landmark.Hands{Left: left, Right: right}
}

// SetPose sets the pose that will be returned by Detect.
func (m *MockDetector) SetPose(p *landmark.PoseLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = p
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured landmarks or error.
func (m *MockDetector) Detect(frame *gocv.Mat, ts float64) (landmark.DetectionFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return landmark.DetectionFrame{}, m.err
	}
	return landmark.DetectionFrame{Timestamp: ts, Pose: m.pose, Hands: m.hands}, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
