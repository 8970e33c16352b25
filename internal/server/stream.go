package server

import (
	"fmt"
	"image"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// StreamHandler serves the rendered canvas as MJPEG.
type StreamHandler struct {
	source  Source
	fps     int
	quality int
}

// NewStreamHandler creates a new StreamHandler for the given frame source.
func NewStreamHandler(source Source, fps, quality int) *StreamHandler {
	return &StreamHandler{source: source, fps: fps, quality: quality}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stop := h.source.WatchFrames()
	defer stop()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(time.Second / time.Duration(h.fps))
	defer ticker.Stop()

	var (
		img  *image.RGBA
		seq  uint64
		last uint64
	)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		img, seq = h.source.LatestFrame(img)
		if seq == 0 || seq == last {
			continue
		}
		last = seq

		jpeg, err := encodeJPEG(img, h.quality)
		if err != nil {
			continue
		}

		if err := writePart(w, jpeg); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

// encodeJPEG compresses img with OpenCV at the given quality.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// writePart writes one multipart MJPEG frame.
func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
