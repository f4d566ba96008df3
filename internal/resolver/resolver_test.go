package resolver

import (
	"testing"

	"github.com/tartarusdrv/keypadd/internal/bind"
	"github.com/tartarusdrv/keypadd/internal/decoder"
	"github.com/tartarusdrv/keypadd/internal/profile"
)

// newStore builds a store where profile 1 and profile 2 are blank (all NOP)
// so each test wires only the binds it cares about.
func newStore() *profile.Store {
	s := profile.NewStore()
	blank := profile.Profile{}
	*s.Get(1) = blank
	*s.Get(2) = blank
	return s
}

func press(idx byte) decoder.Event  { return decoder.Event{Index: idx, Pressed: true} }
func release(idx byte) decoder.Event { return decoder.Event{Index: idx, Pressed: false} }

const (
	keyA = 0x04 // native scancode, used directly as both index and arg in these tests
	keyB = 0x05
)

func TestResolve_BasicPressRelease(t *testing.T) {
	store := newStore()
	store.Get(1).Set(keyA, bind.Key(30)) // host keycode 30 ("A")
	st := NewState(1)

	got := Resolve(store, st, press(keyA))
	if len(got) != 1 || got[0] != (HostEvent{KeyCode: 30, Pressed: true}) {
		t.Fatalf("press: %+v", got)
	}

	got = Resolve(store, st, release(keyA))
	if len(got) != 1 || got[0] != (HostEvent{KeyCode: 30, Pressed: false}) {
		t.Fatalf("release: %+v", got)
	}
}

func TestResolve_Hypershift(t *testing.T) {
	store := newStore()
	store.Get(1).Set(0x44, bind.Shift(2))  // alt key -> hypershift into profile 2
	store.Get(2).Set(keyA, bind.Key(66))   // "B" on profile 2
	st := NewState(1)

	var out []HostEvent
	out = append(out, Resolve(store, st, press(0x44))...)     // press alt
	out = append(out, Resolve(store, st, press(keyA))...)      // press 0x04
	out = append(out, Resolve(store, st, release(keyA))...)    // release 0x04
	out = append(out, Resolve(store, st, release(0x44))...)    // release alt

	want := []HostEvent{{KeyCode: 66, Pressed: true}, {KeyCode: 66, Pressed: false}}
	if len(out) != len(want) {
		t.Fatalf("got %+v want %+v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("event %d: got %+v want %+v", i, out[i], want[i])
		}
	}

	if st.ActiveProfile != 1 {
		t.Fatalf("active profile should have reverted to 1, got %d", st.ActiveProfile)
	}
	if st.ShiftOverlay != (Bitmap256{}) {
		t.Fatalf("shift overlay should be all-zero, got %+v", st.ShiftOverlay)
	}
}

func TestResolve_CrossLayerRelease(t *testing.T) {
	store := newStore()
	store.Get(1).Set(keyA, bind.Key(30))
	store.Get(1).Set(0x44, bind.Shift(2))
	store.Get(2).Set(keyA, bind.Key(66))
	st := NewState(1)

	var out []HostEvent
	out = append(out, Resolve(store, st, press(keyA))...)   // press 0x04 under profile 1
	out = append(out, Resolve(store, st, press(0x44))...)   // press alt -> enter hypershift
	out = append(out, Resolve(store, st, release(keyA))...) // release 0x04 must route back to profile 1
	out = append(out, Resolve(store, st, release(0x44))...) // release alt

	want := []HostEvent{{KeyCode: 30, Pressed: true}, {KeyCode: 30, Pressed: false}}
	if len(out) != len(want) {
		t.Fatalf("got %+v want %+v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("event %d: got %+v want %+v", i, out[i], want[i])
		}
	}
	if st.ActiveProfile != 1 {
		t.Fatalf("active profile should be back to 1, got %d", st.ActiveProfile)
	}
}

func TestResolve_ProfileSwapWithHeldKeys(t *testing.T) {
	store := newStore()
	store.Get(1).Set(keyA, bind.Key(30))
	store.Get(1).Set(0x40, bind.Profile(2)) // arbitrary key index used as the swap trigger
	store.Get(2).Set(keyA, bind.Key(66))
	st := NewState(1)

	var out []HostEvent
	out = append(out, Resolve(store, st, press(keyA))...) // press A first, held across the swap
	out = append(out, Resolve(store, st, press(0x40))...) // press profile-change key

	want := []HostEvent{
		{KeyCode: 30, Pressed: true},
		{KeyCode: 30, Pressed: false},
		{KeyCode: 66, Pressed: true},
	}
	if len(out) != len(want) {
		t.Fatalf("got %+v want %+v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("event %d: got %+v want %+v", i, out[i], want[i])
		}
	}
	if st.ActiveProfile != 2 {
		t.Fatalf("expected active profile 2, got %d", st.ActiveProfile)
	}

	// The profile key's own eventual release must be swallowed.
	if !st.IgnoreMask.Test(0x40) {
		t.Fatal("expected profile key's index to be ignore-marked")
	}
	got := Resolve(store, st, release(0x40))
	if len(got) != 0 {
		t.Fatalf("expected profile key release to be swallowed, got %+v", got)
	}
}

func TestResolve_TransparentSwap(t *testing.T) {
	store := newStore()
	store.Get(1).Set(keyA, bind.Key(30))
	store.Get(1).Set(0x40, bind.Profile(2))
	store.Get(2).Set(keyA, bind.Key(30)) // identical bind on both sides
	st := NewState(1)

	var out []HostEvent
	out = append(out, Resolve(store, st, press(keyA))...)
	out = append(out, Resolve(store, st, press(0x40))...)

	want := []HostEvent{{KeyCode: 30, Pressed: true}} // nothing emitted for the transparent swap
	if len(out) != len(want) || out[0] != want[0] {
		t.Fatalf("got %+v want %+v", out, want)
	}
}

func TestResolve_ModifierOnly(t *testing.T) {
	store := newStore()
	store.Get(1).Set(0x42, bind.Key(42)) // plain shift bind, not hypershift
	st := NewState(1)

	got := Resolve(store, st, press(0x42))
	if len(got) != 1 || got[0] != (HostEvent{KeyCode: 42, Pressed: true}) {
		t.Fatalf("press: %+v", got)
	}
	got = Resolve(store, st, release(0x42))
	if len(got) != 1 || got[0] != (HostEvent{KeyCode: 42, Pressed: false}) {
		t.Fatalf("release: %+v", got)
	}
}

func TestResolve_ActiveProfileZeroShortCircuits(t *testing.T) {
	store := newStore()
	store.Get(1).Set(keyA, bind.Key(30))
	st := NewState(0)

	if got := Resolve(store, st, press(keyA)); len(got) != 0 {
		t.Fatalf("expected no emission while disabled, got %+v", got)
	}
}

func TestResolve_NonKeyBindsSwallowed(t *testing.T) {
	store := newStore()
	store.Get(1).Set(keyA, bind.Bind{Kind: bind.MACRO, Arg: 3})
	st := NewState(1)

	if got := Resolve(store, st, press(keyA)); len(got) != 0 {
		t.Fatalf("expected MACRO press to emit nothing, got %+v", got)
	}
}

func TestSetProfile_ReleasesHeldKeysAcrossExternalSwap(t *testing.T) {
	store := newStore()
	store.Get(1).Set(keyA, bind.Key(30))
	store.Get(2).Set(keyA, bind.Key(66))
	st := NewState(1)

	Resolve(store, st, press(keyA)) // held under profile 1 when the external swap fires

	got := SetProfile(store, st, 2)
	want := []HostEvent{{KeyCode: 30, Pressed: false}, {KeyCode: 66, Pressed: true}}
	if len(got) != len(want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %+v want %+v", i, got[i], want[i])
		}
	}
	if st.ActiveProfile != 2 || st.ShiftProfile != 0 || st.RevertProfile != 0 {
		t.Fatalf("state after SetProfile: active=%d shift=%d revert=%d", st.ActiveProfile, st.ShiftProfile, st.RevertProfile)
	}
}

func TestSetProfile_DisableReleasesHeldKeysOnly(t *testing.T) {
	store := newStore()
	store.Get(1).Set(keyA, bind.Key(30))
	st := NewState(1)

	Resolve(store, st, press(keyA))

	got := SetProfile(store, st, 0)
	want := []HostEvent{{KeyCode: 30, Pressed: false}}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if st.ActiveProfile != 0 {
		t.Fatalf("expected active profile 0, got %d", st.ActiveProfile)
	}
}
