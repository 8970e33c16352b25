package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/halo/internal/config"
	"github.com/ayusman/halo/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "halo.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestApplyProfile_NoActive(t *testing.T) {
	st := newStore(t)
	cfg := config.Default()

	if err := applyProfile(st, cfg, ""); err != nil {
		t.Fatalf("applyProfile() error = %v", err)
	}
	if cfg.Gesture.StabilityFrames != config.Default().Gesture.StabilityFrames {
		t.Errorf("expected defaults to be kept, got stability %d", cfg.Gesture.StabilityFrames)
	}
}

func TestApplyProfile_Named(t *testing.T) {
	st := newStore(t)
	p := &store.Profile{Name: "calm", Tuning: "gesture:\n  stability_frames: 9\n"}
	if err := st.Profiles().Create(p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cfg := config.Default()
	if err := applyProfile(st, cfg, "calm"); err != nil {
		t.Fatalf("applyProfile() error = %v", err)
	}
	if cfg.Gesture.StabilityFrames != 9 {
		t.Errorf("expected stability 9, got %d", cfg.Gesture.StabilityFrames)
	}
}

func TestApplyProfile_Active(t *testing.T) {
	st := newStore(t)
	p := &store.Profile{Name: "quick", Tuning: "gesture:\n  lost_grace_frames: 3\n"}
	if err := st.Profiles().Create(p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := st.Profiles().SetActive(p.ID); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	cfg := config.Default()
	if err := applyProfile(st, cfg, ""); err != nil {
		t.Fatalf("applyProfile() error = %v", err)
	}
	if cfg.Gesture.LostGraceFrames != 3 {
		t.Errorf("expected grace 3, got %d", cfg.Gesture.LostGraceFrames)
	}
}

func TestApplyProfile_Errors(t *testing.T) {
	st := newStore(t)
	bad := &store.Profile{Name: "broken", Tuning: "gesture:\n  stability_frames: 0\n"}
	if err := st.Profiles().Create(bad); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := applyProfile(st, config.Default(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := applyProfile(st, config.Default(), "broken"); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestResolveStaticDir(t *testing.T) {
	if got := resolveStaticDir("/srv/halo"); got != "/srv/halo" {
		t.Errorf("expected explicit dir to win, got %q", got)
	}

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "web"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	want, _ := filepath.Abs("web")
	if got := resolveStaticDir(""); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
