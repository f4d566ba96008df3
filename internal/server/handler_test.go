package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tartarusdrv/keypadd/internal/config"
	"github.com/tartarusdrv/keypadd/internal/keypad"
	"github.com/tartarusdrv/keypadd/internal/profile"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := profile.NewStore()
	km := keypad.NewManager("", 1, store, nil, nil)
	cfg := config.DefaultConfig()
	return New(nil, km, cfg, "test")
}

func TestClampProfileNum(t *testing.T) {
	cases := []struct {
		in   int
		want byte
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{8, 8},
		{9, 1},
		{16, 8},
		{17, 1},
	}
	for _, c := range cases {
		if got := clampProfileNum(c.in); got != c.want {
			t.Errorf("clampProfileNum(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestHandleProfileCount(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/profile_count", nil)
	rec := httptest.NewRecorder()

	s.handleProfileCount(rec, req)

	var resp profileCountResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ProfileCount != profile.Count {
		t.Errorf("profile_count = %d, want %d", resp.ProfileCount, profile.Count)
	}
}

func TestHandleProfileNumGetSet(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(profileNumRequest{ProfileNum: 10})
	req := httptest.NewRequest(http.MethodPost, "/profile_num", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleProfileNum(rec, req)

	var postResp profileNumResponse
	if err := json.NewDecoder(rec.Body).Decode(&postResp); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	if postResp.ProfileNum != 2 { // ((10-1) mod 8) + 1 == 2
		t.Fatalf("profile_num after clamp = %d, want 2", postResp.ProfileNum)
	}

	req = httptest.NewRequest(http.MethodGet, "/profile_num", nil)
	rec = httptest.NewRecorder()
	s.handleProfileNum(rec, req)

	var getResp profileNumResponse
	if err := json.NewDecoder(rec.Body).Decode(&getResp); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if getResp.ProfileNum != 2 {
		t.Fatalf("profile_num readback = %d, want 2", getResp.ProfileNum)
	}
}

func TestHandleProfileRoundTrip(t *testing.T) {
	s := newTestServer(t)

	payload := make([]byte, profile.Size)
	payload[0], payload[1] = 1, 0x05

	req := httptest.NewRequest(http.MethodPost, "/profile", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	s.handleProfile(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("POST /profile status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec = httptest.NewRecorder()
	s.handleProfile(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /profile status = %d, want 200", rec.Code)
	}
	got := rec.Body.Bytes()
	if len(got) != profile.Size || got[0] != 1 || got[1] != 0x05 {
		t.Fatalf("round trip mismatch: len=%d got[0:2]=%v", len(got), got[:2])
	}
}

func TestHandleProfileConflictWhenDisabled(t *testing.T) {
	s := newTestServer(t)
	s.keypadMgr.SetProfileNum(0)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	s.handleProfile(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestHandleIntfType(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/intf_type", nil)
	rec := httptest.NewRecorder()
	s.handleIntfType(rec, req)

	var resp intfTypeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.IntfType != "keyboard" {
		t.Errorf("intf_type = %q, want %q", resp.IntfType, "keyboard")
	}
}
