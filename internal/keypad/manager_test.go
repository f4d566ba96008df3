package keypad

import (
	"testing"

	"github.com/tartarusdrv/keypadd/internal/profile"
)

func newTestManager() *Manager {
	store := profile.NewStore()
	return NewManager("", 1, store, nil, nil)
}

func TestNewManagerStartsDisconnected(t *testing.T) {
	m := newTestManager()
	if got := m.State(); got != Disconnected {
		t.Fatalf("State() = %v, want Disconnected", got)
	}
}

func TestSetProfileNumUpdatesActiveProfile(t *testing.T) {
	m := newTestManager()
	m.SetProfileNum(3)
	if got := m.ActiveProfile(); got != 3 {
		t.Fatalf("ActiveProfile() = %d, want 3", got)
	}
}

func TestSetProfileNumClearsHypershiftState(t *testing.T) {
	m := newTestManager()
	m.rst.ShiftProfile = 2
	m.rst.RevertProfile = 1
	m.rst.HeldKeys[0] = 0x04 // key must be held for swap() to visit its overlay bit
	m.rst.ShiftOverlay.Set(0x04)

	m.SetProfileNum(4)

	if m.rst.ShiftProfile != 0 || m.rst.RevertProfile != 0 {
		t.Fatalf("hypershift state not cleared: shift=%d revert=%d", m.rst.ShiftProfile, m.rst.RevertProfile)
	}
	if m.rst.ShiftOverlay.Test(0x04) {
		t.Fatal("shift overlay bit survived SetProfileNum")
	}
}

func TestUploadDownloadProfileRoundTrip(t *testing.T) {
	m := newTestManager()

	payload := make([]byte, profile.Size)
	payload[0], payload[1] = 1, 0x04 // KEY bind at index 0

	if ok := m.UploadProfile(2, payload); !ok {
		t.Fatal("UploadProfile(2) = false, want true")
	}

	got, ok := m.DownloadProfile(2)
	if !ok {
		t.Fatal("DownloadProfile(2) = false, want true")
	}
	if got[0] != 1 || got[1] != 0x04 {
		t.Fatalf("round trip mismatch: got[0:2] = %v", got[:2])
	}
}

func TestUploadProfileRejectsOutOfRange(t *testing.T) {
	m := newTestManager()
	if ok := m.UploadProfile(0, make([]byte, profile.Size)); ok {
		t.Fatal("UploadProfile(0) = true, want false")
	}
	if ok := m.UploadProfile(9, make([]byte, profile.Size)); ok {
		t.Fatal("UploadProfile(9) = true, want false")
	}
}

func TestProcessForwardsHostEvents(t *testing.T) {
	store := profile.NewStore()
	var events []HostEvent
	m := NewManager("", 1, store, nil, func(e HostEvent) {
		events = append(events, e)
	})

	// Profile 1's default layout binds key index 0x04 ('a') to KEY(30).
	report := [8]byte{0, 0, 0x04, 0, 0, 0, 0, 0}
	m.process(report)

	if len(events) != 1 {
		t.Fatalf("got %d host events, want 1: %v", len(events), events)
	}
	if !events[0].Pressed {
		t.Fatalf("first event not a press: %+v", events[0])
	}
}
