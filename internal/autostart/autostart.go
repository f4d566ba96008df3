// Package autostart registers keypadd to launch on login, so the kill
// switch and config server are available without the user relaunching the
// driver by hand after each reboot. Each platform has its own
// implementation file.
package autostart

import "os"

// appPath returns the path to the currently running keypadd executable —
// the target every platform's autostart entry points at.
func appPath() (string, error) {
	return os.Executable()
}
