package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/halo/internal/app"
	"github.com/ayusman/halo/internal/capture"
	"github.com/ayusman/halo/internal/config"
	"github.com/ayusman/halo/internal/detector"
	"github.com/ayusman/halo/internal/gesture"
	"github.com/ayusman/halo/internal/server"
	"github.com/ayusman/halo/internal/store"
	"github.com/ayusman/halo/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default: built-in settings)")
	profileRef := flag.String("profile", "", "Profile name or ID to apply (default: the active profile)")
	replayPath := flag.String("replay", "", "Play landmarks from a JSONL recording instead of the camera")
	loopReplay := flag.Bool("loop", false, "Restart the replay when it ends")
	window := flag.Bool("window", false, "Show the rendered output in a preview window")
	noTray := flag.Bool("no-tray", false, "Disable the system tray menu")
	flag.Parse()

	fmt.Println("Halo - Gesture Effects")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := store.New(filepath.Join(cfg.DataDir, "halo.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if err := applyProfile(st, cfg, *profileRef); err != nil {
		log.Fatalf("Failed to apply profile: %v", err)
	}

	var (
		cam capture.Camera
		det detector.Detector
	)
	if *replayPath != "" {
		rd, err := detector.LoadReplay(*replayPath, *loopReplay)
		if err != nil {
			log.Fatalf("Failed to load replay: %v", err)
		}
		log.Printf("Replaying %d frames from %s", rd.Len(), *replayPath)
		det = rd
	} else {
		md, err := detector.NewMediaPipeDetector(cfg.Detector)
		if err != nil {
			log.Fatalf("Failed to start detector: %v", err)
		}
		det = md
		cam = capture.NewCamera(cfg.Camera)
	}
	defer det.Close()

	a, err := app.New(app.Config{Settings: cfg, Camera: cam, Detector: det})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The loop ending (replay finished) shuts everything else down
		defer stop()
		return a.Run(ctx)
	})

	previewURL := ""
	if cfg.Server.Enabled {
		previewURL = "http://" + cfg.Server.Addr + "/"
		srv := server.New(server.Config{
			StaticDir:   resolveStaticDir(cfg.Server.StaticDir),
			Store:       st,
			Source:      a,
			StreamFPS:   cfg.Server.StreamFPS,
			JPEGQuality: cfg.Server.JPEGQuality,
		})
		g.Go(func() error {
			return srv.Run(ctx, cfg.Server.Addr)
		})
	}

	// The preview window and the tray both need the main thread
	switch {
	case *window:
		if err := runWindow(ctx, a, cfg.Server.StreamFPS); err != nil {
			log.Printf("Preview window failed: %v", err)
		}
		stop()
	case cfg.Tray && !*noTray:
		runTray(ctx, a, cfg.Render.Glow, previewURL, stop)
		stop()
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Halo stopped: %v", err)
	}
	log.Println("Halo stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// applyProfile overlays the named profile, or the active one when ref is
// empty, onto cfg.
func applyProfile(st *store.Store, cfg *config.Config, ref string) error {
	profiles := st.Profiles()

	var (
		p   *store.Profile
		err error
	)
	if ref != "" {
		p, err = profiles.Find(ref)
	} else {
		p, err = profiles.Active()
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("profile %q: %w", ref, err)
	}

	if err := cfg.ApplyTuning([]byte(p.Tuning)); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	log.Printf("Using profile %s", p.Name)
	return nil
}

func runTray(ctx context.Context, a *app.App, glow bool, previewURL string, quit func()) {
	t := tray.New(glow)
	t.OnGlow(a.SetGlow)
	t.OnReset(a.Reset)
	t.OnQuit(quit)
	if previewURL != "" {
		t.OnPreview(func() {
			if err := openBrowser(previewURL); err != nil {
				log.Printf("Failed to open preview: %v", err)
			}
		})
	}
	a.OnEvent(func(ev app.Event) {
		if ev.Kind == app.EventRelease {
			t.SetGesture(gesture.None)
			return
		}
		t.SetGesture(ev.Gesture)
	})

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

// resolveStaticDir returns dir when set, otherwise the first web directory
// found next to the working directory or in ~/.halo/web.
func resolveStaticDir(dir string) string {
	if dir != "" {
		return dir
	}

	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".halo", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
