package resolver

import (
	"github.com/tartarusdrv/keypadd/internal/bind"
	"github.com/tartarusdrv/keypadd/internal/decoder"
	"github.com/tartarusdrv/keypadd/internal/profile"
)

// HostEvent is a key event to deliver to the host, already translated
// through a profile's bind table.
type HostEvent struct {
	KeyCode byte
	Pressed bool
}

// Resolve processes one decoder event against st, mutating st in place and
// returning the host key events it produces (spec.md §4.3).
//
// If st.ActiveProfile is 0 the device is disabled: every lookup
// short-circuits to NOP and nothing is emitted (invariant 5), though the
// held-key mirror is still updated so state stays consistent once a profile
// is selected again.
func Resolve(store *profile.Store, st *State, ev decoder.Event) []HostEvent {
	// Fold the event into the held-key mirror before resolving: a
	// profile-swap dispatched by this very event must see this key as
	// already held, since physically it is (spec.md §4.3.1).
	st.apply(ev)

	if st.ActiveProfile == 0 {
		return nil
	}

	idx := ev.Index
	preActive, preShift := st.ActiveProfile, st.ShiftProfile

	// Step 1: pick the lookup profile.
	var lookupProfile byte
	if ev.Pressed {
		lookupProfile = st.ActiveProfile
	} else {
		lookupProfile = releaseProfile(st, idx)
	}

	// Step 2: the overlay bit is cleared on every event regardless of
	// direction (invariant 3).
	st.ShiftOverlay.Clear(idx)

	// Step 3: ignore check — a release whose press was already swallowed by
	// a profile swap is consumed silently.
	if st.IgnoreMask.Test(idx) {
		st.IgnoreMask.Clear(idx)
		return nil
	}

	p := store.Get(lookupProfile)
	if p == nil {
		return nil
	}
	b := p.At(idx)

	var events []HostEvent

	switch b.Kind {
	case bind.KEY:
		events = append(events, HostEvent{KeyCode: b.Arg, Pressed: ev.Pressed})

	case bind.SHIFT:
		if ev.Pressed {
			if st.ShiftProfile != 0 && st.ShiftProfile != b.Arg {
				events = append(events, swap(store, st, 0, &st.ShiftOverlay)...)
			}
			if st.RevertProfile == 0 {
				st.RevertProfile = st.ActiveProfile
			}
			st.ShiftProfile = b.Arg
			st.ActiveProfile = b.Arg
		} else if st.RevertProfile != 0 {
			st.ActiveProfile = st.RevertProfile
			st.RevertProfile = 0
		}

	case bind.PROFILE:
		if ev.Pressed {
			events = append(events, swap(store, st, b.Arg, nil)...) // PROFILE swap is unfiltered
			st.ActiveProfile = b.Arg
			st.ShiftProfile = 0
			st.RevertProfile = 0
		}
		// Releases are ignored outright.

	case bind.NOP, bind.MACRO, bind.SCRIPT, bind.DEBUG,
		bind.SWAP_KEY, bind.MOUSE_MOVE, bind.MOUSE_WHEEL:
		// Not emitted to the host (spec.md Non-goals / DESIGN.md Open
		// Question 2: MACRO/SCRIPT resolve as NOP in this implementation).
	}

	// Step 5: mark this key as "entered during hypershift" using the
	// pre-dispatch profile pair, so its eventual release still routes back
	// to shift_profile even though dispatch above may have just changed
	// active_profile/shift_profile for this very event.
	if ev.Pressed && preActive == preShift {
		st.ShiftOverlay.Set(idx)
	}

	return events
}

// SetProfile performs the external profile-change procedure (spec.md §6):
// "write triggers a profile-swap (release-all) followed by current-profile
// update". It is the same release/press swap Resolve runs for an in-band
// PROFILE bind (see the bind.PROFILE case above), exposed so a caller
// driving profile changes from outside the report stream — the config
// server, the tray, the kill-switch hotkey — never leaves a key held under
// the outgoing profile stuck from the host's perspective (invariant 4).
// Caller holds st's lock.
func SetProfile(store *profile.Store, st *State, target byte) []HostEvent {
	events := swap(store, st, target, nil)
	st.ActiveProfile = target
	st.ShiftProfile = 0
	st.RevertProfile = 0
	return events
}

// releaseProfile implements the release-profile lookup rule (spec.md §4.3
// step 1): a key whose overlay bit is set routes to shift_profile; a key
// released while still inside hypershift (active_profile == shift_profile)
// routes to revert_profile; otherwise it routes to the active profile.
func releaseProfile(st *State, idx byte) byte {
	if st.ShiftOverlay.Test(idx) && st.ShiftProfile != 0 {
		return st.ShiftProfile
	}
	if st.ActiveProfile == st.ShiftProfile {
		return st.RevertProfile
	}
	return st.ActiveProfile
}

// swap implements the profile-swap procedure (spec.md §4.3.1): every
// currently-held key (including the key whose press triggered this very
// dispatch, since physically it is already down) is resolved under its
// outgoing profile via the release-profile rule and under the incoming
// profile via plain press semantics. A transparent swap — same KEY arg on
// both sides — emits nothing. Otherwise the outgoing side's release is
// emitted first, followed by the incoming side's press if it resolves to a
// KEY. A held key whose outgoing bind is not a KEY is marked in ignore_mask
// so its eventual physical release is swallowed.
//
// target 0 means release-only (hypershift exit): no incoming press is ever
// emitted. filter, when non-nil, restricts participation to keys whose bit
// is set (used when a SHIFT press interrupts an already-active hypershift).
func swap(store *profile.Store, st *State, target byte, filter *Bitmap256) []HostEvent {
	var events []HostEvent
	for _, idx := range st.heldIndices() {
		if st.IgnoreMask.Test(idx) {
			continue
		}
		if filter != nil && !filter.Test(idx) {
			continue
		}

		outgoing := store.Get(releaseProfile(st, idx))
		var releaseBind bind.Bind
		if outgoing != nil {
			releaseBind = outgoing.At(idx)
		}

		var pressBind bind.Bind
		if target != 0 {
			if incoming := store.Get(target); incoming != nil {
				pressBind = incoming.At(idx)
			}
		}

		relKey, relIsKey := releaseBind.IsKey()
		pressKey, pressIsKey := pressBind.IsKey()

		switch {
		case relIsKey && pressIsKey && relKey == pressKey:
			// Transparent: the key means the same thing on both sides.

		case relIsKey:
			events = append(events, HostEvent{KeyCode: relKey, Pressed: false})
			if pressIsKey {
				events = append(events, HostEvent{KeyCode: pressKey, Pressed: true})
			}

		default:
			// The outgoing bind isn't a plain key (it's itself a
			// SHIFT/PROFILE/etc. action key, or NOP): there is nothing to
			// release, but its physical release must still be swallowed.
			st.IgnoreMask.Set(idx)
		}

		st.ShiftOverlay.Clear(idx)
	}
	return events
}
