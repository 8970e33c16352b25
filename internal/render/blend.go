package render

import (
	"image"
	"image/color"
)

// Additive ("lighter") compositing. Both buffers hold premultiplied RGBA,
// so channels add directly and saturate.

func addSat(a uint8, b uint32) uint8 {
	s := uint32(a) + b
	if s > 0xff {
		return 0xff
	}
	return uint8(s)
}

// addMasked adds col, weighted by mask coverage, into dst over r. The mask
// origin lines up with r.Min.
func addMasked(dst *image.RGBA, r image.Rectangle, mask *image.Alpha, col color.NRGBA) {
	cr, cg, cb, ca := col.RGBA()
	w, h := r.Dx(), r.Dy()
	for y := 0; y < h; y++ {
		mi := y * mask.Stride
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		for x := 0; x < w; x, di = x+1, di+4 {
			m := uint32(mask.Pix[mi+x])
			if m == 0 {
				continue
			}
			m |= m << 8
			p := dst.Pix[di : di+4 : di+4]
			p[0] = addSat(p[0], cr*m/0xffff>>8)
			p[1] = addSat(p[1], cg*m/0xffff>>8)
			p[2] = addSat(p[2], cb*m/0xffff>>8)
			p[3] = addSat(p[3], ca*m/0xffff>>8)
		}
	}
}

// addImageAt adds src, starting at sp and scaled by alpha/255, into the r
// region of dst.
func addImageAt(dst *image.RGBA, r image.Rectangle, src *image.RGBA, sp image.Point, alpha uint32) {
	clipped := r.Intersect(dst.Rect)
	if clipped.Empty() {
		return
	}
	sp = sp.Add(clipped.Min.Sub(r.Min))
	w, h := clipped.Dx(), clipped.Dy()
	for y := 0; y < h; y++ {
		di := dst.PixOffset(clipped.Min.X, clipped.Min.Y+y)
		si := src.PixOffset(sp.X, sp.Y+y)
		for x := 0; x < w; x, di, si = x+1, di+4, si+4 {
			s := src.Pix[si : si+4 : si+4]
			if s[3] == 0 {
				continue
			}
			p := dst.Pix[di : di+4 : di+4]
			p[0] = addSat(p[0], uint32(s[0])*alpha/0xff)
			p[1] = addSat(p[1], uint32(s[1])*alpha/0xff)
			p[2] = addSat(p[2], uint32(s[2])*alpha/0xff)
			p[3] = addSat(p[3], uint32(s[3])*alpha/0xff)
		}
	}
}

// addImage adds the whole of src into dst; both must share bounds.
func addImage(dst, src *image.RGBA) {
	n := min(len(dst.Pix), len(src.Pix))
	for i := 0; i < n; i++ {
		if v := src.Pix[i]; v != 0 {
			dst.Pix[i] = addSat(dst.Pix[i], uint32(v))
		}
	}
}
