// Package report charts offline classification runs: the raw per-frame
// confidence as a line, with every locked interval shaded behind it.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/halo/internal/gesture"
)

// ErrNoData is returned when there are no frames to chart.
var ErrNoData = errors.New("no frames to plot")

// Default chart size.
const (
	DefaultWidth  = 14 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// Options controls the chart.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Gesture Confidence"
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// shades holds the interval fill per gesture; alpha keeps the confidence
// line readable on top.
var shades = map[gesture.Type]color.Color{
	gesture.ThumbsUpHalo:  color.NRGBA{R: 255, G: 196, B: 0, A: 80},
	gesture.TwoHandHeart:  color.NRGBA{R: 230, G: 40, B: 90, A: 80},
	gesture.RockSign:      color.NRGBA{R: 120, G: 80, B: 255, A: 80},
	gesture.PointSparkles: color.NRGBA{R: 0, G: 190, B: 220, A: 80},
	gesture.PeaceSign:     color.NRGBA{R: 60, G: 200, B: 90, A: 80},
}

// Timeline builds the confidence chart for results.
func Timeline(results []gesture.FrameResult, opts Options) (*plot.Plot, error) {
	if len(results) == 0 {
		return nil, ErrNoData
	}
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Raw Confidence"
	p.Y.Min = 0
	p.Y.Max = 1.05

	// Intervals first so the line draws over them
	seen := make(map[gesture.Type]bool)
	for _, iv := range gesture.Intervals(results) {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: iv.Start, Y: 0},
			{X: iv.End, Y: 0},
			{X: iv.End, Y: 1},
			{X: iv.Start, Y: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("interval %s at %.3f: %w", iv.Type, iv.Start, err)
		}
		poly.Color = shades[iv.Type]
		poly.LineStyle.Width = 0
		p.Add(poly)
		if !seen[iv.Type] {
			seen[iv.Type] = true
			p.Legend.Add(iv.Type.Label(), poly)
		}
	}

	pts := make(plotter.XYs, len(results))
	for i, r := range results {
		pts[i] = plotter.XY{X: r.T, Y: r.Conf}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = color.Black
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("confidence", line)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// Save writes the chart to path; the extension picks the format (png, svg,
// pdf...).
func Save(path string, results []gesture.FrameResult, opts Options) error {
	p, err := Timeline(results, opts)
	if err != nil {
		return err
	}
	opts = opts.withDefaults()
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("save plot %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Write renders the chart to w in the given format.
func Write(w io.Writer, format string, results []gesture.FrameResult, opts Options) error {
	p, err := Timeline(results, opts)
	if err != nil {
		return err
	}
	opts = opts.withDefaults()
	wt, err := p.WriterTo(opts.Width, opts.Height, strings.ToLower(format))
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
