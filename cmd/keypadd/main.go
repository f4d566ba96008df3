// Keypadd — Razer Tartarus V2 gaming keypad driver.
//
// Reads the keypad's 8-byte HID reports, resolves them against the active
// profile's bind table (including hypershift and profile-swap semantics),
// and forwards synthesized key/LED events. A tray icon and a loopback HTTP
// API expose profile selection and the kill-switch hotkey.
package main

import (
	"context"
	"log"
	"os/exec"
	"runtime"

	"github.com/tartarusdrv/keypadd/internal/autostart"
	"github.com/tartarusdrv/keypadd/internal/config"
	"github.com/tartarusdrv/keypadd/internal/hotkey"
	"github.com/tartarusdrv/keypadd/internal/keypad"
	"github.com/tartarusdrv/keypadd/internal/profile"
	"github.com/tartarusdrv/keypadd/internal/server"
	"github.com/tartarusdrv/keypadd/internal/tray"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[keypadd] config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	store := profile.NewStore()

	// Keypad manager — auto-detects the Tartarus V2, reconnects on
	// disconnect, resolves reports, and drives the LEDs.
	var kpMgr *keypad.Manager
	kpMgr = keypad.NewManager(cfg.GetSerial(), 1, store,
		func(state keypad.State) {
			tray.SetState(state, kpMgr.ActiveProfile())
			log.Printf("[keypadd] device: %s", state)
		},
		func(ev keypad.HostEvent) {
			// TODO: wire into a host key-injection backend (e.g. a uinput
			// device on Linux); for now, forwarded events are only logged.
			log.Printf("[keypadd] key %d pressed=%v", ev.KeyCode, ev.Pressed)
		},
	)

	// Kill-switch hotkey — forces active_profile to 0 while held, restoring
	// the prior profile on release (spec.md §9 REDESIGN FLAGS).
	var suspended byte
	killMgr := hotkey.NewManager(
		func() {
			suspended = kpMgr.ActiveProfile()
			kpMgr.SetProfileNum(0)
			log.Println("[keypadd] kill switch engaged")
		},
		func() {
			kpMgr.SetProfileNum(suspended)
			log.Println("[keypadd] kill switch released")
		},
	)

	srv := server.New(killMgr, kpMgr, cfg, version)

	tray.Run(tray.RunOpts{
		Version:          version,
		AutoStartEnabled: cfg.GetAutoStart(),
		ActiveProfile:    kpMgr.ActiveProfile(),

		OnReady: func() {
			go kpMgr.Run(ctx)

			ks := cfg.GetKillSwitch()
			if err := killMgr.Register(ks.Modifiers, ks.Key); err != nil {
				log.Printf("[keypadd] kill-switch hotkey register failed: %v", err)
			} else {
				log.Printf("[keypadd] kill switch: %s", ks.String())
			}

			if cfg.GetServerEnable() {
				if _, err := srv.Start(); err != nil {
					log.Printf("[keypadd] config server: %v", err)
				}
			}

			log.Printf("[keypadd] ready (version %s)", version)
		},

		OnSettings: func() {
			url := srv.URL()
			if url == "" {
				log.Println("[keypadd] config server not running")
				return
			}
			openBrowser(url)
		},

		OnAutoStart: func(enabled bool) {
			if enabled {
				if err := autostart.Enable(); err != nil {
					log.Printf("[keypadd] enable autostart: %v", err)
					return
				}
			} else {
				if err := autostart.Disable(); err != nil {
					log.Printf("[keypadd] disable autostart: %v", err)
					return
				}
			}
			if err := cfg.SetAutoStart(enabled); err != nil {
				log.Printf("[keypadd] save autostart config: %v", err)
			}
			log.Printf("[keypadd] auto-start: %v", enabled)
		},

		OnSelectProfile: func(num byte) {
			kpMgr.SetProfileNum(num)
			log.Printf("[keypadd] profile -> %d", num)
		},

		OnQuit: func() {
			cancel()
			killMgr.Unregister()
			kpMgr.Close()
			srv.Stop()
		},
	})
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default: // linux, bsd
		cmd = "xdg-open"
		args = []string{url}
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		log.Printf("[keypadd] open browser: %v", err)
	}
}
