// Package profile owns the per-interface profile store: eight
// user-programmable 256-entry bind tables plus the hard-coded default
// Tartarus V2 layout.
package profile

import "github.com/tartarusdrv/keypadd/internal/bind"

// KeySpace is the size of the key-index space (8-bit, spec.md §3).
const KeySpace = 256

// Count is the number of profiles a Store holds per interface.
const Count = 8

// Synthesized key indices for the two modifier bits, chosen not to collide
// with any native HID scancode the keypad emits (spec.md §3).
const (
	KeyIndexShift byte = 0x42
	KeyIndexAlt   byte = 0x44
)

// Native HID usage codes for the keypad's 4-way hat.
const (
	ScancodeLeft  byte = 0x50
	ScancodeRight byte = 0x4F
	ScancodeUp    byte = 0x52
	ScancodeDown  byte = 0x51
)

// Profile is a dense map of KeySpace binds, indexed by key index.
type Profile [KeySpace]bind.Bind

// At returns the bind at the given key index.
func (p *Profile) At(idx byte) bind.Bind { return p[idx] }

// Set assigns the bind at the given key index.
func (p *Profile) Set(idx byte, b bind.Bind) { p[idx] = b }

// Size is the serialized byte size of a profile: 2 bytes per entry.
const Size = KeySpace * 2

// Serialize encodes a profile as Size bytes: {kind,arg} pairs in key-index order.
func (p *Profile) Serialize() []byte {
	out := make([]byte, Size)
	for i, b := range p {
		out[i*2] = byte(b.Kind)
		out[i*2+1] = b.Arg
	}
	return out
}

// Deserialize replaces the profile's contents from raw bytes. Any shortfall
// is zero-filled (a wholly missing entry decodes as NOP); excess bytes beyond
// Size are ignored.
func (p *Profile) Deserialize(data []byte) {
	for i := range p {
		off := i * 2
		var pair [2]byte
		if off < len(data) {
			copy(pair[:], data[off:])
		}
		p[i] = bind.Bind{Kind: bind.Kind(pair[0]), Arg: pair[1]}
	}
}

// Store owns Count profiles, addressed by profile number 1..Count.
// Profile number 0 is reserved ("device disabled") and is never stored here.
type Store struct {
	profiles [Count]Profile
}

// NewStore builds a Store with all profiles seeded from DefaultLayout.
func NewStore() *Store {
	s := &Store{}
	for i := range s.profiles {
		s.profiles[i] = DefaultLayout()
	}
	return s
}

// valid reports whether num is a usable profile number (1..Count).
func valid(num byte) bool {
	return num >= 1 && int(num) <= Count
}

// Get returns the profile for the given profile number (1..Count).
// Undefined (returns nil) for profile number 0 or out of range, per spec.md §4.2.
func (s *Store) Get(num byte) *Profile {
	if !valid(num) {
		return nil
	}
	return &s.profiles[num-1]
}

// Overwrite replaces the contents of the given profile from raw bytes.
// Caller must hold the owning interface's lock (spec.md §4.2).
func (s *Store) Overwrite(num byte, data []byte) bool {
	p := s.Get(num)
	if p == nil {
		return false
	}
	p.Deserialize(data)
	return true
}

// Read serializes the given profile for external consumption.
// Caller must hold the owning interface's lock (spec.md §4.2).
func (s *Store) Read(num byte) ([]byte, bool) {
	p := s.Get(num)
	if p == nil {
		return nil, false
	}
	return p.Serialize(), true
}
