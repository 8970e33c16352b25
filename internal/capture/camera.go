// Package capture provides camera capture and motion gating using GoCV
// (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS    = 30
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// ErrEmptyFrame is returned when the device delivers no pixels.
var ErrEmptyFrame = errors.New("captured frame is empty")

// Options selects the capture device and requested format. Devices may
// deliver a different size; Camera.Size reports what actually arrives.
type Options struct {
	DeviceID int `yaml:"device"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	FPS      int `yaml:"fps"`
}

// DefaultOptions returns the default capture format on device 0.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS}
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	Size() (width, height int)
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	opts    Options
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	width   int
	height  int
}

// NewCamera creates a new Camera. Non-positive format fields take the
// defaults.
func NewCamera(opts Options) Camera {
	def := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	return &cameraImpl{opts: opts}
}

// Open opens the camera and requests the configured format.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.opts.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.opts.DeviceID, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.opts.FPS))

	c.capture = capture
	c.running = true
	c.width = int(capture.Get(gocv.VideoCaptureFrameWidth))
	c.height = int(capture.Get(gocv.VideoCaptureFrameHeight))

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	c.width, c.height = mat.Cols(), mat.Rows()
	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.opts.FPS = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.opts.FPS
}

// Size returns the size of the frames the device delivers, or the
// requested size before the first frame.
func (c *cameraImpl) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.width > 0 && c.height > 0 {
		return c.width, c.height
	}
	return c.opts.Width, c.opts.Height
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// ToRGBA converts a BGR camera frame into dst, reallocating dst when the
// frame size changed. The returned image is what the renderer composites
// under the effects.
func ToRGBA(frame *gocv.Mat, dst *image.RGBA) (*image.RGBA, error) {
	if frame == nil || frame.Empty() {
		return dst, ErrEmptyFrame
	}

	rgba := gocv.NewMat()
	defer rgba.Close()

	switch frame.Channels() {
	case 1:
		gocv.CvtColor(*frame, &rgba, gocv.ColorGrayToRGBA)
	case 4:
		gocv.CvtColor(*frame, &rgba, gocv.ColorBGRAToRGBA)
	default:
		gocv.CvtColor(*frame, &rgba, gocv.ColorBGRToRGBA)
	}

	w, h := rgba.Cols(), rgba.Rows()
	if dst == nil || dst.Rect.Dx() != w || dst.Rect.Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	data, err := rgba.DataPtrUint8()
	if err != nil {
		return dst, fmt.Errorf("frame data: %w", err)
	}
	if !rgba.IsContinuous() || len(data) < len(dst.Pix) {
		return dst, fmt.Errorf("unexpected frame layout %dx%d", w, h)
	}
	copy(dst.Pix, data)
	return dst, nil
}
