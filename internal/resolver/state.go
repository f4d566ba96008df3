// Package resolver turns decoder events into host key events and LED/profile
// state transitions, implementing the hypershift overlay and profile-swap
// semantics of a single keypad interface (spec.md §4.3, §4.3.1).
package resolver

import "github.com/tartarusdrv/keypadd/internal/decoder"

// Bitmap256 is a 256-bit set addressed by key index, used for the
// shift-overlay and ignore-mask bitmaps (spec.md §3).
type Bitmap256 [32]byte

func (b *Bitmap256) Set(idx byte)   { b[idx/8] |= 1 << (idx % 8) }
func (b *Bitmap256) Clear(idx byte) { b[idx/8] &^= 1 << (idx % 8) }
func (b *Bitmap256) Test(idx byte) bool {
	return b[idx/8]&(1<<(idx%8)) != 0
}

// State is one interface's resolution state: the decoder's held-key mirror
// plus the profile/hypershift bookkeeping the resolver owns (spec.md §3).
// The owning Manager serializes all access with its interface mutex.
type State struct {
	PrevMod  byte
	HeldKeys decoder.KeyRegion

	ActiveProfile byte
	RevertProfile byte
	ShiftProfile  byte

	ShiftOverlay Bitmap256
	IgnoreMask   Bitmap256
}

// NewState returns a state with the given starting profile (0 disables
// resolution entirely, per spec.md invariant 5).
func NewState(activeProfile byte) *State {
	return &State{ActiveProfile: activeProfile}
}

// heldIndices returns every key index the interface currently believes is
// held: the scancode region plus any active modifier indices.
func (s *State) heldIndices() []byte {
	var out []byte
	for _, v := range s.HeldKeys {
		if v != 0 {
			out = append(out, v)
		}
	}
	if s.PrevMod&0x02 != 0 {
		out = append(out, 0x42)
	}
	if s.PrevMod&0x04 != 0 {
		out = append(out, 0x44)
	}
	return out
}

// apply folds a resolved decoder event into the held-key mirror: presses
// append to the first free scancode slot (or flip a modifier bit), releases
// collapse the scancode region leftward (or clear a modifier bit). This
// mirrors how the device itself rewrites its report; the decoder keeps no
// state, so the resolver tracks held keys here for the next Decode call and
// for the swap procedure.
func (s *State) apply(ev decoder.Event) {
	switch ev.Index {
	case 0x42:
		if ev.Pressed {
			s.PrevMod |= 0x02
		} else {
			s.PrevMod &^= 0x02
		}
		return
	case 0x44:
		if ev.Pressed {
			s.PrevMod |= 0x04
		} else {
			s.PrevMod &^= 0x04
		}
		return
	}

	if ev.Pressed {
		for i, v := range s.HeldKeys {
			if v == 0 {
				s.HeldKeys[i] = ev.Index
				return
			}
		}
		return // rollover: device never reports more than len(HeldKeys) held
	}

	for i, v := range s.HeldKeys {
		if v == ev.Index {
			copy(s.HeldKeys[i:], s.HeldKeys[i+1:])
			s.HeldKeys[len(s.HeldKeys)-1] = 0
			return
		}
	}
}
