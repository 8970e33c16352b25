// Command halo-classify runs recorded landmark frames through the gesture
// classifier and prints per-frame results, a locked-interval summary, or a
// confidence chart.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/ayusman/halo/internal/config"
	"github.com/ayusman/halo/internal/gesture"
	"github.com/ayusman/halo/internal/landmark"
	"github.com/ayusman/halo/internal/report"
)

type options struct {
	input   string
	config  string
	csv     bool
	summary bool
	plot    string
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "i", "-", "JSONL file of detection frames (- for stdin)")
	flag.StringVar(&opts.config, "config", "", "YAML config with classifier thresholds")
	flag.BoolVar(&opts.csv, "csv", false, "Print per-frame results as CSV")
	flag.BoolVar(&opts.summary, "summary", false, "Print locked intervals instead of per-frame results")
	flag.StringVar(&opts.plot, "plot", "", "Write a confidence chart to this file (png, svg or pdf)")
	flag.Parse()

	log.SetFlags(0)
	if err := run(opts, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("halo-classify: %v", err)
	}
}

func run(opts options, stdin io.Reader, out io.Writer) error {
	gestureOpts := gesture.DefaultOptions()
	if opts.config != "" {
		cfg, err := config.Load(opts.config)
		if err != nil {
			return err
		}
		gestureOpts = cfg.Gesture
	}

	frames, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}

	results := gesture.NewClassifier(gestureOpts).ClassifyStream(frames)

	if opts.plot != "" {
		if err := report.Save(opts.plot, results, report.Options{}); err != nil {
			return err
		}
	}

	switch {
	case opts.summary:
		return writeSummary(out, gesture.Intervals(results))
	case opts.csv:
		return writeCSV(out, results)
	default:
		return writeLines(out, results)
	}
}

func readInput(path string, stdin io.Reader) ([]landmark.DetectionFrame, error) {
	if path == "-" || path == "" {
		return landmark.ReadFrames(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	frames, err := landmark.ReadFrames(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frames, nil
}

func writeLines(w io.Writer, results []gesture.FrameResult) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "t=%.3f raw=%s conf=%.3f locked=%s\n", r.T, r.Raw, r.Conf, r.Locked); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, results []gesture.FrameResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "raw_label", "locked_label", "confidence"}); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			strconv.FormatFloat(r.T, 'f', 3, 64),
			string(r.Raw),
			string(r.Locked),
			strconv.FormatFloat(r.Conf, 'f', 3, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSummary(w io.Writer, intervals []gesture.Interval) error {
	if len(intervals) == 0 {
		_, err := fmt.Fprintln(w, "no gestures locked")
		return err
	}
	for _, iv := range intervals {
		if _, err := fmt.Fprintf(w, "%s: %.3f - %.3f (%.3fs)\n", iv.Type, iv.Start, iv.End, iv.End-iv.Start); err != nil {
			return err
		}
	}
	return nil
}
