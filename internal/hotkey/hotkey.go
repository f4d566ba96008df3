package hotkey

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"golang.design/x/hotkey"
)

// Manager owns the single global hotkey that drives the kill switch: held
// down, it suspends key resolution (active_profile forced to 0); released,
// it restores whatever profile was active before (spec.md §9 REDESIGN
// FLAGS). Only one hotkey is ever registered at a time — the kill switch is
// the only thing this driver binds to a global shortcut.
type Manager struct {
	mu        sync.Mutex
	hk        *hotkey.Hotkey
	cancel    context.CancelFunc
	onEngage  func()
	onRelease func()
}

// NewManager creates a kill-switch hotkey manager. onEngage fires when the
// combo goes down (suspend), onRelease when it comes back up (restore).
func NewManager(onEngage, onRelease func()) *Manager {
	return &Manager{
		onEngage:  onEngage,
		onRelease: onRelease,
	}
}

// Register binds the kill switch to the given modifiers and key. If a combo
// is already registered, it is unregistered first — the driver only ever
// holds one kill-switch binding.
func (m *Manager) Register(mods []string, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Unregister existing hotkey
	m.unregisterLocked()

	// Parse modifiers and key
	parsedMods, err := ParseModifiers(mods)
	if err != nil {
		return fmt.Errorf("parse modifiers: %w", err)
	}
	parsedKey, err := ParseKey(key)
	if err != nil {
		return fmt.Errorf("parse key: %w", err)
	}

	// Create and register the hotkey
	hk := hotkey.New(parsedMods, parsedKey)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey: %w", err)
	}

	m.hk = hk

	// Start listening for kill-switch engage/release events.
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.listen(ctx, hk)

	log.Printf("[hotkey] kill switch registered: %v", mods)
	return nil
}

// listen loops on keydown/keyup for the kill-switch combo and engages or
// releases the suspend accordingly. The combo is meant to be held; on Linux
// the debounce below keeps X11 auto-repeat from flickering the device off
// and back on while it is held. A short tap still engages and then releases.
func (m *Manager) listen(ctx context.Context, hk *hotkey.Hotkey) {
	// Linux X11 auto-repeats a held key as keyup/keydown pairs every ~30ms.
	// Debounce: on keyup, wait 50ms before calling onRelease; a keydown
	// within that window is auto-repeat, not a real release of the combo.
	isLinux := runtime.GOOS == "linux"
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return
		case <-hk.Keydown():
			if isLinux && debounceTimer != nil {
				// Cancel the pending release — the combo never actually
				// went up, X11 just re-sent the keydown.
				debounceTimer.Stop()
				debounceTimer = nil
				continue
			}
			if m.onEngage != nil {
				m.onEngage()
			}
		case <-hk.Keyup():
			if isLinux {
				debounceTimer = time.AfterFunc(50*time.Millisecond, func() {
					if m.onRelease != nil {
						m.onRelease()
					}
					m.mu.Lock()
					debounceTimer = nil
					m.mu.Unlock()
				})
			} else if m.onRelease != nil {
				m.onRelease()
			}
		}
	}
}

// Unregister removes the kill-switch hotkey.
func (m *Manager) Unregister() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregisterLocked()
}

func (m *Manager) unregisterLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.hk != nil {
		m.hk.Unregister()
		m.hk = nil
	}
}
