// Package hotkey provides cross-platform global hotkey registration used for
// the keypad's kill-switch (hold it to switch the device off without
// unplugging it — spec.md §9 REDESIGN FLAGS).
package hotkey

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

// ParseModifiers converts string modifier names to hotkey.Modifier values.
// modMap is defined per-OS in keymap_<os>.go, since the underlying library
// exposes different modifier keys per platform.
func ParseModifiers(names []string) ([]hotkey.Modifier, error) {
	var mods []hotkey.Modifier
	for _, name := range names {
		m, ok := modMap[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown modifier: %q (available: ctrl, shift, alt, super)", name)
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// ParseKey converts a string key name to a hotkey.Key value.
func ParseKey(name string) (hotkey.Key, error) {
	k, ok := keyMap[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown key: %q", name)
	}
	return k, nil
}

// keyMap is shared across platforms: hotkey.Key identifies keys the same
// way regardless of OS, unlike Modifier.
var keyMap = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
	"space": hotkey.KeySpace, "return": hotkey.KeyReturn, "escape": hotkey.KeyEscape,
	"delete": hotkey.KeyDelete, "tab": hotkey.KeyTab,
	"up": hotkey.KeyUp, "down": hotkey.KeyDown, "left": hotkey.KeyLeft, "right": hotkey.KeyRight,
}
