package mapping

import (
	"image"
	"math"
)

// Mapper converts landmarks normalized to the full source video frame into
// pixel coordinates on a target canvas that shows a centered,
// aspect-preserving crop of that frame.
type Mapper struct {
	// srcWidth is the width of the source video
	srcWidth int
	// srcHeight is the height of the source video
	srcHeight int
	// dstWidth is the width of the target canvas
	dstWidth int
	// dstHeight is the height of the target canvas
	dstHeight int
	// crop rectangle in source pixels
	sx, sy, sw, sh int
}

// NewMapper returns a Mapper for the given source and target dimensions.
// When the source dimensions are unknown (zero) the whole canvas is treated
// as the source frame.
func NewMapper(srcWidth, srcHeight, dstWidth, dstHeight int) *Mapper {
	m := &Mapper{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		dstWidth:  dstWidth,
		dstHeight: dstHeight,
	}

	m.preCalc()

	return m
}

// preCalc computes the centered crop rectangle
func (m *Mapper) preCalc() {
	vw, vh := m.srcWidth, m.srcHeight
	if vw <= 0 || vh <= 0 {
		vw, vh = m.dstWidth, m.dstHeight
		m.srcWidth, m.srcHeight = vw, vh
	}

	m.sx, m.sy, m.sw, m.sh = 0, 0, vw, vh
	if vw <= 0 || vh <= 0 || m.dstWidth <= 0 || m.dstHeight <= 0 {
		return
	}

	srcAspect := float64(vw) / float64(vh)
	dstAspect := float64(m.dstWidth) / float64(m.dstHeight)

	if srcAspect > dstAspect {
		// source is wider: trim left and right
		m.sw = int(math.Round(float64(vh) * dstAspect))
		m.sx = int(math.Round(float64(vw-m.sw) / 2))
	} else {
		// source is taller: trim top and bottom
		m.sh = int(math.Round(float64(vw) / dstAspect))
		m.sy = int(math.Round(float64(vh-m.sh) / 2))
	}
}

// ToPixel maps a normalized (nx, ny) source coordinate to canvas pixels.
// A zero-sized crop axis maps to 0.
func (m *Mapper) ToPixel(nx, ny float64) (x, y float64) {
	if m.sw != 0 {
		x = (nx*float64(m.srcWidth) - float64(m.sx)) * float64(m.dstWidth) / float64(m.sw)
	}
	if m.sh != 0 {
		y = (ny*float64(m.srcHeight) - float64(m.sy)) * float64(m.dstHeight) / float64(m.sh)
	}
	return x, y
}

// Crop returns the crop rectangle in source pixels.
func (m *Mapper) Crop() image.Rectangle {
	return image.Rect(m.sx, m.sy, m.sx+m.sw, m.sy+m.sh)
}

// SrcSize returns the source dimensions the mapping was computed for.
func (m *Mapper) SrcSize() (int, int) {
	return m.srcWidth, m.srcHeight
}

// DstSize returns the canvas dimensions the mapping was computed for.
func (m *Mapper) DstSize() (int, int) {
	return m.dstWidth, m.dstHeight
}

// Tracker holds the current Mapper and rebuilds it whenever the source or
// canvas dimensions change.
type Tracker struct {
	current *Mapper
	dims    [4]int
}

// Update returns the mapper for the given dimensions, recomputing it only
// when they differ from the previous call.
func (t *Tracker) Update(srcWidth, srcHeight, dstWidth, dstHeight int) *Mapper {
	dims := [4]int{srcWidth, srcHeight, dstWidth, dstHeight}
	if t.current != nil && dims == t.dims {
		return t.current
	}
	t.current = NewMapper(srcWidth, srcHeight, dstWidth, dstHeight)
	t.dims = dims
	return t.current
}

// Mapper returns the current mapper, or nil before the first Update.
func (t *Tracker) Mapper() *Mapper {
	return t.current
}
