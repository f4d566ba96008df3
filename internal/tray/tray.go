// Package tray manages the system tray icon and menu: current profile,
// connection state, and quick actions (spec.md §6 ambient surface).
package tray

import (
	"fmt"
	"strings"

	"fyne.io/systray"

	"github.com/tartarusdrv/keypadd/internal/keypad"
	"github.com/tartarusdrv/keypadd/internal/profile"
)

// RunOpts configures the system tray.
type RunOpts struct {
	Version          string // app version string (e.g., "1.0.0")
	AutoStartEnabled bool   // initial state of "Start on Login" checkbox
	ActiveProfile    byte   // initial profile number shown as checked (0 = disabled)
	OnReady          func()
	OnSettings       func()
	OnAutoStart      func(enabled bool)   // called when user toggles auto-start
	OnSelectProfile  func(num byte)       // called when user picks a profile (0 = disable)
	OnQuit           func()
}

var (
	statusItem   *systray.MenuItem
	profileItems [profile.Count + 1]*systray.MenuItem // index 0 = "Disabled"
)

// Run starts the system tray. It blocks on the main thread.
func Run(opts RunOpts) {
	systray.Run(func() {
		systray.SetIcon(IconDisconnected)
		systray.SetTitle("")
		systray.SetTooltip("Keypadd — No device")

		versionLabel := "Keypadd"
		if opts.Version != "" && opts.Version != "dev" {
			versionLabel += " v" + strings.TrimPrefix(opts.Version, "v")
		}
		mVersion := systray.AddMenuItem(versionLabel, "")
		mVersion.Disable()

		systray.AddSeparator()

		mSettings := systray.AddMenuItem("Settings...", "Open the configuration API")
		mAutoStart := systray.AddMenuItemCheckbox("Start on Login", "Launch automatically on login", opts.AutoStartEnabled)

		mProfile := systray.AddMenuItem("Profile", "Select the active profile")
		profileItems[0] = mProfile.AddSubMenuItemCheckbox("Disabled", "Disable key resolution", opts.ActiveProfile == 0)
		for i := 1; i <= profile.Count; i++ {
			label := fmt.Sprintf("Profile %d", i)
			profileItems[i] = mProfile.AddSubMenuItemCheckbox(label, label, opts.ActiveProfile == byte(i))
		}

		systray.AddSeparator()

		mStatus := systray.AddMenuItem("Status: Disconnected", "")
		mStatus.Disable()

		systray.AddSeparator()

		mQuit := systray.AddMenuItem("Quit", "Exit keypadd")

		statusItem = mStatus

		if opts.OnReady != nil {
			opts.OnReady()
		}

		for i, item := range profileItems {
			num := byte(i)
			item := item
			go func() {
				for range item.ClickedCh {
					checkProfile(num)
					if opts.OnSelectProfile != nil {
						opts.OnSelectProfile(num)
					}
				}
			}()
		}

		go func() {
			for {
				select {
				case <-mSettings.ClickedCh:
					if opts.OnSettings != nil {
						opts.OnSettings()
					}
				case <-mAutoStart.ClickedCh:
					if mAutoStart.Checked() {
						mAutoStart.Uncheck()
						if opts.OnAutoStart != nil {
							opts.OnAutoStart(false)
						}
					} else {
						mAutoStart.Check()
						if opts.OnAutoStart != nil {
							opts.OnAutoStart(true)
						}
					}
				case <-mQuit.ClickedCh:
					if opts.OnQuit != nil {
						opts.OnQuit()
					}
					systray.Quit()
					return
				}
			}
		}()
	}, func() {
		// cleanup on systray exit
	})
}

// checkProfile marks num's submenu item checked and unchecks every other.
func checkProfile(num byte) {
	for i, item := range profileItems {
		if item == nil {
			continue
		}
		if byte(i) == num {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// SetState updates the tray icon and status line from the keypad's
// connection state and active profile number.
func SetState(state keypad.State, activeProfile byte) {
	switch state {
	case keypad.Disconnected:
		systray.SetIcon(IconDisconnected)
		systray.SetTooltip("Keypadd — No device")
		if statusItem != nil {
			statusItem.SetTitle("Status: Disconnected")
		}
	case keypad.Connected:
		if activeProfile == 0 {
			systray.SetIcon(IconDisabled)
			systray.SetTooltip("Keypadd — Disabled")
			if statusItem != nil {
				statusItem.SetTitle("Status: Connected (disabled)")
			}
		} else {
			systray.SetIcon(IconConnected)
			systray.SetTooltip(fmt.Sprintf("Keypadd — Profile %d", activeProfile))
			if statusItem != nil {
				statusItem.SetTitle(fmt.Sprintf("Status: Connected (profile %d)", activeProfile))
			}
		}
	}
	checkProfile(activeProfile)
}

// Quit stops the system tray.
func Quit() {
	systray.Quit()
}
