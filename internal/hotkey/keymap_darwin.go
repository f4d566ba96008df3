//go:build darwin

package hotkey

import "golang.design/x/hotkey"

// modMap maps our generic modifier names to Carbon/Cocoa modifier flags.
var modMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.ModOption,
	"super": hotkey.ModCmd,
}
