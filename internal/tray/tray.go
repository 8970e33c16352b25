// Package tray provides a system tray menu for halo: the current gesture,
// a glow toggle, reset and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/halo/internal/gesture"
)

// Tray represents the system tray application.
type Tray struct {
	onGlow    func(enabled bool)
	onReset   func()
	onPreview func()
	onQuit    func()
	glow      bool
	status    string
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuGlow   *systray.MenuItem
}

// New creates a new Tray. glow is the initial state of the glow toggle.
func New(glow bool) *Tray {
	return &Tray{
		glow:   glow,
		status: StatusText(gesture.None),
	}
}

// OnGlow sets the callback function to be called when glow is toggled.
func (t *Tray) OnGlow(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onGlow = fn
}

// OnReset sets the callback function to be called when reset is clicked.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnPreview sets the callback function to be called when the preview menu
// item is clicked.
func (t *Tray) OnPreview(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPreview = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Halo")
	systray.SetTooltip("Halo gesture effects")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Current gesture")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuGlow = systray.AddMenuItemCheckbox("Glow", "Toggle glow layers", t.glow)
	t.mu.Unlock()

	menuReset := systray.AddMenuItem("Reset Effects", "Clear particles and the gesture lock")
	menuPreview := systray.AddMenuItem("Open Preview...", "Open the live preview in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Halo")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuGlow.ClickedCh:
				t.handleGlow()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuPreview.ClickedCh:
				t.handlePreview()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleGlow handles the glow menu item click.
func (t *Tray) handleGlow() {
	t.mu.Lock()
	t.glow = !t.glow
	enabled := t.glow

	if enabled {
		t.menuGlow.Check()
	} else {
		t.menuGlow.Uncheck()
	}

	callback := t.onGlow
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleReset handles the reset menu item click.
func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handlePreview handles the preview menu item click.
func (t *Tray) handlePreview() {
	t.mu.RLock()
	callback := t.onPreview
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetGesture updates the status line with the locked gesture.
func (t *Tray) SetGesture(g gesture.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = StatusText(g)
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(t.status)
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// GlowEnabled returns the current glow toggle state.
func (t *Tray) GlowEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.glow
}

// StatusText formats the status line for a locked gesture.
func StatusText(g gesture.Type) string {
	if g == gesture.None || !g.Valid() {
		return "Waiting for a gesture"
	}
	return "Locked: " + g.Label()
}
