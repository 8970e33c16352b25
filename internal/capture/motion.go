package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
	// AnalysisWidth is the width frames are shrunk to before differencing.
	AnalysisWidth = 320
	// DefaultMotionThreshold is the percentage of changed pixels that
	// counts as motion.
	DefaultMotionThreshold = 1.0
)

// Motion is the result of comparing a frame against its predecessor.
type Motion struct {
	Detected bool
	// Percent of analysed pixels that changed.
	Percent float64
	// Region bounds the changed pixels in source-frame coordinates; empty
	// when nothing changed.
	Region image.Rectangle
}

// MotionDetector gates landmark detection: the live loop only pays for the
// landmark model while something in view is moving. It uses frame
// differencing with Gaussian blur for noise reduction.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a new MotionDetector with the given threshold.
// The threshold is the percentage of pixels that must change to detect
// motion; non-positive values take DefaultMotionThreshold.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares frame with the previous one. The first frame after
// creation or Reset only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) Motion {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Motion{}
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	small := gocv.NewMat()
	defer small.Close()

	scale := 1.0
	if gray.Cols() > AnalysisWidth {
		scale = float64(AnalysisWidth) / float64(gray.Cols())
		gocv.Resize(gray, &small, image.Point{}, scale, scale, gocv.InterpolationArea)
	} else {
		gray.CopyTo(&small)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(small, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	// A size change invalidates the baseline
	if !m.initialized || blurred.Cols() != m.prevGray.Cols() || blurred.Rows() != m.prevGray.Rows() {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return Motion{}
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	blurred.CopyTo(&m.prevGray)

	res := Motion{Percent: float64(nonZero) / float64(totalPixels) * 100.0}
	res.Detected = res.Percent > m.threshold
	if nonZero > 0 {
		pts := changedPoints(thresh)
		r := gocv.BoundingRect(pts)
		pts.Close()
		res.Region = image.Rect(
			int(float64(r.Min.X)/scale), int(float64(r.Min.Y)/scale),
			int(float64(r.Max.X)/scale), int(float64(r.Max.Y)/scale),
		)
	}
	return res
}

// changedPoints returns the outline of every changed blob. The caller
// closes the vector.
func changedPoints(mask gocv.Mat) gocv.PointVector {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var pts []image.Point
	for i := 0; i < contours.Size(); i++ {
		pts = append(pts, contours.At(i).ToPoints()...)
	}
	return gocv.NewPointVectorFromPoints(pts)
}

// Reset clears the motion detector state, allowing it to be reused
// with a new baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// SetThreshold sets the motion detection threshold.
// Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}
