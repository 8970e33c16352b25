// Package server provides the HTTP server for halo: health, live state,
// reset, profiles, an MJPEG preview of the rendered canvas and a WebSocket
// state feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/halo/internal/app"
	"github.com/ayusman/halo/internal/server/api"
	"github.com/ayusman/halo/internal/store"
)

// Default stream settings.
const (
	DefaultStreamFPS   = 15
	DefaultJPEGQuality = 80
)

// Source is the running frame loop the server reports on and controls.
type Source interface {
	api.Tuner
	Snapshot() app.Snapshot
	Reset()
	OnEvent(fn func(app.Event))
	WatchFrames() (stop func())
	LatestFrame(dst *image.RGBA) (*image.RGBA, uint64)
}

// Config holds the server configuration.
type Config struct {
	StaticDir   string
	Store       *store.Store
	Source      Source
	StreamFPS   int
	JPEGQuality int
}

// Server represents the HTTP server for the halo application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	events *StateHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.StreamFPS <= 0 {
		config.StreamFPS = DefaultStreamFPS
	}
	if config.JPEGQuality <= 0 {
		config.JPEGQuality = DefaultJPEGQuality
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register profile API handler if Store is configured
	if s.config.Store != nil {
		var tuner api.Tuner
		if s.config.Source != nil {
			tuner = s.config.Source
		}
		profiles := api.NewProfileHandler(s.config.Store, tuner)
		s.mux.Handle("/api/profiles", profiles)
		s.mux.Handle("/api/profiles/", profiles)
	}

	// Live endpoints need the running frame loop
	if s.config.Source != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.HandleFunc("/api/reset", s.handleReset)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Source, s.config.StreamFPS, s.config.JPEGQuality))

		s.events = NewStateHandler(s.config.Source, s.config.StreamFPS)
		s.mux.Handle("/api/events", s.events)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleState handles GET /api/state with the latest frame-loop snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Source.Snapshot())
}

// handleReset handles POST /api/reset, clearing effects and the lock.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.config.Source.Reset()
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if s.events != nil {
		s.events.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
