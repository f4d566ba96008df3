// Package decoder diffs successive 8-byte keypad HID reports into ordered
// press/release events over the 256-entry key-index space (spec.md §4.1).
//
// The decoder never mutates caller state: it is handed the previous
// modifier byte and held-key region and returns the events the caller must
// apply. The resolver folds each event into its own held_keys mirror as it
// resolves it (see resolver.State).
package decoder

const (
	modShift byte = 0x02
	modAlt   byte = 0x04

	// modKeyBase is OR'd with a changed modifier bit to synthesize its key
	// index (spec.md §3: shift -> 0x42, alt -> 0x44).
	modKeyBase byte = 0x40

	// keyRegionLen is the size of the held-scancode region, report bytes 2..7.
	keyRegionLen = 6

	// maxDiffSteps bounds the single-pass walk; a report needing more steps
	// than this cannot have arisen from the device's one-key-per-report
	// contract and is treated as unreconcilable (spec.md §9).
	maxDiffSteps = keyRegionLen*2 + 1
)

// Event is one observed press or release at a key index.
type Event struct {
	Index   byte
	Pressed bool
}

// KeyRegion is the held-scancode portion of a report (bytes 2..7).
type KeyRegion [keyRegionLen]byte

// Decode compares the previous modifier byte and held-key region against a
// freshly clamped 8-byte report and returns the ordered events implied by
// the difference.
//
// ok is false when the diff could not be reconciled in a single pass; per
// spec.md §9 the caller must drop the report without emitting events and
// rely on the device resending the full held set on its next poll.
func Decode(prevMod byte, prevHeld KeyRegion, report [8]byte) (events []Event, ok bool) {
	newMod := report[0]
	if changed := prevMod ^ newMod; changed&(modShift|modAlt) != 0 {
		// Invariant 2: a modifier change and a key-byte change never share a
		// report. On any modifier change we return immediately without
		// scanning the key bytes.
		for _, bit := range [2]byte{modShift, modAlt} {
			if changed&bit == 0 {
				continue
			}
			events = append(events, Event{
				Index:   modKeyBase | bit,
				Pressed: newMod&bit != 0,
			})
		}
		return events, true
	}

	var newHeld KeyRegion
	copy(newHeld[:], report[2:8])
	return diffHeld(prevHeld, newHeld)
}

// diffHeld walks the old and new held-key regions in lockstep with a carry
// offset, per the algorithm in spec.md §4.1 step 2.
func diffHeld(old, new KeyRegion) (events []Event, ok bool) {
	i, off := 0, 0
	for steps := 0; i < keyRegionLen; steps++ {
		if steps > maxDiffSteps {
			return nil, false
		}

		var oldVal byte
		if oldIdx := i + off; oldIdx < keyRegionLen {
			oldVal = old[oldIdx]
		}
		newVal := new[i]

		switch {
		case oldVal == newVal:
			if oldVal == 0 {
				// Both sides exhausted: nothing further held on either side.
				return events, true
			}
			i++

		case oldVal != 0:
			// Slot vacated on the old side; the dropped key is released
			// first (tie-break: drop before press, spec.md §4.1).
			events = append(events, Event{Index: oldVal, Pressed: false})
			off++

		case newVal != 0:
			events = append(events, Event{Index: newVal, Pressed: true})
			i++

		default:
			return events, true
		}
	}
	return events, true
}

// Clamp normalizes a raw report to exactly 8 bytes: short reports are
// zero-padded, long ones truncated (spec.md §4.1 Failure). malformed
// reports whether the input needed clamping, so the caller can log it.
func Clamp(raw []byte) (report [8]byte, malformed bool) {
	n := copy(report[:], raw)
	return report, n != len(raw) || len(raw) != 8
}
