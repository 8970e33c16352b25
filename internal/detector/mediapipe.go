package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/halo/internal/landmark"
)

const serviceScript = "landmark_service.py"

// ErrServiceNotFound is returned when the landmark service script is missing.
var ErrServiceNotFound = errors.New(serviceScript + " not found")

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess
// that runs the hand and pose models on JPEG frames.
type MediaPipeDetector struct {
	config    Config
	script    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.Script
	if script == "" {
		script = findScript()
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("landmark service: %w", err)
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
	}, nil
}

// Detect sends one frame to the service and decodes its landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat, ts float64) (landmark.DetectionFrame, error) {
	if frame == nil || frame.Empty() {
		return landmark.DetectionFrame{Timestamp: ts}, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return landmark.DetectionFrame{}, err
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return landmark.DetectionFrame{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Length-prefixed (4 bytes big-endian) JPEG payload
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))

	if _, err := d.stdin.Write(length[:]); err != nil {
		d.shutdown()
		return landmark.DetectionFrame{}, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		d.shutdown()
		return landmark.DetectionFrame{}, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		d.shutdown()
		return landmark.DetectionFrame{}, fmt.Errorf("read response: %w", err)
	}

	resp, err := parseResponse(line)
	if err != nil {
		return landmark.DetectionFrame{}, err
	}

	d.resetIdleTimer()
	return resp.toFrame(ts, d.config), nil
}

func parseResponse(line []byte) (serviceResponse, error) {
	var resp serviceResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return resp, fmt.Errorf("landmark service: %s", resp.Error)
	}
	return resp, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) args() []string {
	args := []string{
		d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	}
	if d.config.Pose {
		args = append(args, "--pose")
	}
	return args
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	// Use virtual environment Python if available
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, d.args()...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Model warnings go straight to our stderr
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.config.IdleTimeout <= 0 {
		return
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(d.config.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

// findScript looks for the service script next to the working directory,
// the executable and the user's ~/.halo directory.
func findScript() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", serviceScript),
		filepath.Join("..", "scripts", serviceScript),
		filepath.Join(execDir, "scripts", serviceScript),
		filepath.Join(os.Getenv("HOME"), ".halo", "scripts", serviceScript),
	}
	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".halo/venv/bin/python"),
	}
	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
