//go:build linux

package hotkey

import "golang.design/x/hotkey"

// modMap maps our generic modifier names to X11 modifier masks.
var modMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"super": hotkey.Mod4,
}
