package profile

import "github.com/tartarusdrv/keypadd/internal/bind"

// Host keycodes emitted for KEY binds in the default layout. These are the
// same Linux evdev keycode values the original Tartarus V2 kernel driver
// targeted via input_report_key() (see original_source/tartarus.c), kept
// here as named constants instead of raw literals.
const (
	keyEsc   byte = 1
	key1     byte = 2
	key2     byte = 3
	key3     byte = 4
	key4     byte = 5
	key5     byte = 6
	keyTab   byte = 15
	keyQ     byte = 16
	keyW     byte = 17
	keyE     byte = 18
	keyR     byte = 19
	keyCaps  byte = 58
	keyA     byte = 30
	keyS     byte = 31
	keyD     byte = 32
	keyF     byte = 33
	keyLSh   byte = 42
	keyZ     byte = 44
	keyX     byte = 45
	keyC     byte = 46
	keySpace byte = 57
	keyLAlt  byte = 56
	keyUp    byte = 103
	keyDown  byte = 108
	keyLeft  byte = 105
	keyRight byte = 106
)

// DefaultLayout returns the well-known Razer Tartarus V2 mapping: the 20
// main keys transparently forward their native scancode to the same-named
// host key (digits/QWERTY-row letters/space), the hat maps to arrow keys,
// the shift key maps to host shift, and the circular alt button maps to
// host alt (spec.md §4.2). Every call returns an independent value — there
// is no shared mutable default (spec.md §9).
func DefaultLayout() Profile {
	var p Profile

	// Row 1: digits 1-5 — native scancode equals the key's own HID usage.
	p.Set(0x1E, bind.Key(key1))
	p.Set(0x1F, bind.Key(key2))
	p.Set(0x20, bind.Key(key3))
	p.Set(0x21, bind.Key(key4))
	p.Set(0x22, bind.Key(key5))

	// Row 2: Tab, Q, W, E, R.
	p.Set(0x2B, bind.Key(keyTab))
	p.Set(0x14, bind.Key(keyQ))
	p.Set(0x1A, bind.Key(keyW))
	p.Set(0x08, bind.Key(keyE))
	p.Set(0x15, bind.Key(keyR))

	// Row 3: Caps, A, S, D, F.
	p.Set(0x39, bind.Key(keyCaps))
	p.Set(0x04, bind.Key(keyA))
	p.Set(0x16, bind.Key(keyS))
	p.Set(0x07, bind.Key(keyD))
	p.Set(0x09, bind.Key(keyF))

	// Row 4: LShift(as key), Z, X, C, Space.
	p.Set(0x82, bind.Key(keyLSh))
	p.Set(0x1D, bind.Key(keyZ))
	p.Set(0x1B, bind.Key(keyX))
	p.Set(0x06, bind.Key(keyC))
	p.Set(0x2C, bind.Key(keySpace))

	// 4-way hat -> arrow keys.
	p.Set(ScancodeLeft, bind.Key(keyLeft))
	p.Set(ScancodeUp, bind.Key(keyUp))
	p.Set(ScancodeRight, bind.Key(keyRight))
	p.Set(ScancodeDown, bind.Key(keyDown))

	// Synthesized modifier indices -> plain keyboard modifiers.
	p.Set(KeyIndexShift, bind.Key(keyLSh))
	p.Set(KeyIndexAlt, bind.Key(keyLAlt))

	return p
}
