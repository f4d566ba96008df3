//go:build windows

package hotkey

import "golang.design/x/hotkey"

// modMap maps our generic modifier names to Win32 MOD_* flags.
var modMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.ModAlt,
	"super": hotkey.ModWin,
}
