package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/halo/internal/app"
	"github.com/ayusman/halo/internal/config"
	"github.com/ayusman/halo/internal/detector"
	"github.com/ayusman/halo/internal/gesture"
	"github.com/ayusman/halo/internal/landmark"
	"github.com/ayusman/halo/internal/store"
)

func newTestApp(t *testing.T) (*app.App, *detector.MockDetector) {
	t.Helper()

	cfg := config.Default()
	cfg.Render.Width, cfg.Render.Height = 160, 120
	cfg.Gesture.StabilityFrames = 3
	cfg.Effects.Seed = 1

	mock := detector.NewMockDetector()
	a, err := app.New(app.Config{Settings: cfg, Detector: mock})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	return a, mock
}

func tickN(t *testing.T, a *app.App, start float64, n int) float64 {
	t.Helper()
	for i := 0; i < n; i++ {
		start += 1.0 / 30
		if err := a.Tick(start); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	return start
}

func TestAPI_ProfileWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, _ := store.New(filepath.Join(tmpDir, "test.db"))
	defer s.Close()

	a, mock := newTestApp(t)
	srv := New(Config{Store: s, Source: a})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.events.Close()

	client := ts.Client()

	// 1. Create a profile
	createBody := `{"name": "patient", "tuning": "gesture:\n  stability_frames: 5\n"}`
	resp, err := client.Post(ts.URL+"/api/profiles", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/profiles error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Name != "patient" {
		t.Errorf("created name = %s, want patient", created.Name)
	}

	// 2. Activate it on the running app
	resp, err = client.Post(ts.URL+"/api/profiles/"+created.ID+"/activate", "application/json", nil)
	if err != nil {
		t.Fatalf("POST activate error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 3. The new stability frames apply from the next tick
	mock.SetHands(landmark.Pointing(), nil)
	now := tickN(t, a, 0, 4)
	if a.Snapshot().State.Locked {
		t.Error("expected no lock after 4 frames with stability_frames 5")
	}
	tickN(t, a, now, 1)
	if !a.Snapshot().State.Locked {
		t.Error("expected lock on frame 5")
	}

	// 4. List shows it as active
	resp, _ = client.Get(ts.URL + "/api/profiles")
	var listed struct {
		Active string `json:"active"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if listed.Active != created.ID {
		t.Errorf("active = %q, want %q", listed.Active, created.ID)
	}
}

func TestAPI_StateAndReset(t *testing.T) {
	a, mock := newTestApp(t)
	srv := New(Config{Source: a})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.events.Close()

	client := ts.Client()

	mock.SetHands(nil, landmark.RockSign())
	now := tickN(t, a, 0, 3)

	resp, err := client.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state error = %v", err)
	}
	var snap app.Snapshot
	json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()

	if !snap.State.Locked || snap.State.Type != gesture.RockSign {
		t.Fatalf("state = %+v, want locked %s", snap.State, gesture.RockSign)
	}

	resp, err = client.Post(ts.URL+"/api/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/reset error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("reset status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}

	mock.SetHands(nil, nil)
	tickN(t, a, now, 1)

	resp, _ = client.Get(ts.URL + "/api/state")
	json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()

	if snap.State.Locked || snap.Stats.Total != 0 {
		t.Errorf("after reset state = %+v, particles = %d", snap.State, snap.Stats.Total)
	}
}

func TestAPI_EventsFeed(t *testing.T) {
	a, mock := newTestApp(t)
	srv := New(Config{Source: a})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.events.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello error = %v", err)
	}
	if hello.Type != "hello" || hello.ClientID == "" {
		t.Fatalf("expected hello with client id, got %+v", hello)
	}

	// Wait until the broadcaster has registered the client
	deadline := time.Now().Add(2 * time.Second)
	for srv.events.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	mock.SetHands(landmark.PeaceSign(), nil)
	tickN(t, a, 0, 3)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("expected a lock event, read error = %v", err)
		}
		if msg.Type == "event" {
			if msg.Event.Kind != app.EventLock || msg.Event.Gesture != gesture.PeaceSign {
				t.Errorf("expected lock of %s, got %+v", gesture.PeaceSign, msg.Event)
			}
			return
		}
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
