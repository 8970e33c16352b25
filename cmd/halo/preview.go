package main

import (
	"context"
	"fmt"
	"image"
	"os/exec"
	"runtime"

	"gocv.io/x/gocv"

	"github.com/ayusman/halo/internal/app"
)

const keyEscape = 27

// runWindow shows rendered frames until ctx is done, the window is closed,
// or Esc/q is pressed.
func runWindow(ctx context.Context, a *app.App, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	delay := 1000 / fps

	stopWatching := a.WatchFrames()
	defer stopWatching()

	win := gocv.NewWindow("Halo")
	defer win.Close()

	var (
		img  *image.RGBA
		seq  uint64
		last uint64
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		img, seq = a.LatestFrame(img)
		if img != nil && seq != last {
			last = seq
			mat, err := gocv.ImageToMatRGB(img)
			if err != nil {
				return fmt.Errorf("convert frame: %w", err)
			}
			win.IMShow(mat)
			mat.Close()
		}

		key := win.WaitKey(delay)
		if key == keyEscape || key == 'q' {
			return nil
		}
		if !win.IsOpen() {
			return nil
		}
	}
}

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
