package render

import "math"

type segKind uint8

const (
	segMove segKind = iota
	segLine
	segCube
	segClose
)

type segment struct {
	kind segKind
	pts  [3][2]float64
}

// Path is a reusable outline in shape space, built once and filled many
// times with different transforms.
type Path struct {
	segs []segment
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) *Path {
	p.segs = append(p.segs, segment{kind: segMove, pts: [3][2]float64{{x, y}}})
	return p
}

// LineTo adds a straight edge.
func (p *Path) LineTo(x, y float64) *Path {
	p.segs = append(p.segs, segment{kind: segLine, pts: [3][2]float64{{x, y}}})
	return p
}

// CubeTo adds a cubic Bézier edge.
func (p *Path) CubeTo(c1x, c1y, c2x, c2y, x, y float64) *Path {
	p.segs = append(p.segs, segment{kind: segCube, pts: [3][2]float64{{c1x, c1y}, {c2x, c2y}, {x, y}}})
	return p
}

// Close closes the current subpath.
func (p *Path) Close() *Path {
	p.segs = append(p.segs, segment{kind: segClose})
	return p
}

// Empty reports whether the path has no segments.
func (p *Path) Empty() bool {
	return p == nil || len(p.segs) == 0
}

// Polygon builds a closed path through pts given as x,y pairs.
func Polygon(pts ...float64) *Path {
	p := &Path{}
	for i := 0; i+1 < len(pts); i += 2 {
		if i == 0 {
			p.MoveTo(pts[i], pts[i+1])
			continue
		}
		p.LineTo(pts[i], pts[i+1])
	}
	return p.Close()
}

// Star builds a closed star with n points, outer radius 1 and the given
// inner radius, pointing up.
func Star(n int, inner float64) *Path {
	pts := make([]float64, 0, 4*n)
	for i := 0; i < 2*n; i++ {
		r := 1.0
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + float64(i)*math.Pi/float64(n)
		pts = append(pts, r*math.Cos(a), r*math.Sin(a))
	}
	return Polygon(pts...)
}
