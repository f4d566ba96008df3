package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/tartarusdrv/keypadd/internal/autostart"
	"github.com/tartarusdrv/keypadd/internal/keypad"
	"github.com/tartarusdrv/keypadd/internal/profile"
)

// statusResponse is the JSON response for GET /status.
type statusResponse struct {
	State      string `json:"state"`
	ProfileNum int    `json:"profile_num"`
	KillSwitch string `json:"kill_switch"`
	Version    string `json:"version"`
	AutoStart  bool   `json:"auto_start"`
}

// handleStatus returns the current device state and configuration summary.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ks := s.cfg.GetKillSwitch()
	writeJSON(w, statusResponse{
		State:      s.keypadMgr.State().String(),
		ProfileNum: int(s.keypadMgr.ActiveProfile()),
		KillSwitch: ks.String(),
		Version:    s.version,
		AutoStart:  s.cfg.GetAutoStart(),
	})
}

// profileCountResponse is the JSON response for GET /profile_count.
type profileCountResponse struct {
	ProfileCount int `json:"profile_count"`
}

// handleProfileCount reports the compiled profile ceiling (spec.md §6).
func (s *Server) handleProfileCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, profileCountResponse{ProfileCount: profile.Count})
}

// profileNumResponse is the JSON response for GET/POST /profile_num.
type profileNumResponse struct {
	ProfileNum int    `json:"profile_num"`
	Error      string `json:"error,omitempty"`
}

// profileNumRequest is the JSON body for POST /profile_num.
type profileNumRequest struct {
	ProfileNum int `json:"profile_num"`
}

// handleProfileNum reads or writes the active profile number. Writes are
// clamped per spec.md §6 rather than rejected: ((v-1) mod 8) + 1 for v >= 1,
// 0 for v == 0.
func (s *Server) handleProfileNum(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, profileNumResponse{ProfileNum: int(s.keypadMgr.ActiveProfile())})

	case http.MethodPost:
		var req profileNumRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, profileNumResponse{Error: "invalid JSON"})
			return
		}

		clamped := clampProfileNum(req.ProfileNum)
		s.keypadMgr.SetProfileNum(clamped)
		log.Printf("[server] profile_num -> %d", clamped)
		writeJSON(w, profileNumResponse{ProfileNum: int(clamped)})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// clampProfileNum implements spec.md §6's write-clamp law: a request value
// v >= 1 wraps into 1..profile.Count; v == 0 (or negative) disables.
func clampProfileNum(v int) byte {
	if v <= 0 {
		return 0
	}
	return byte(((v-1)%profile.Count)+1)
}

// handleProfile reads or replaces the active profile's bind table as a raw
// binary blob (spec.md §6). There is no current profile to read or write
// while profile_num is 0.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	num := s.keypadMgr.ActiveProfile()
	if num == 0 {
		http.Error(w, "no active profile", http.StatusConflict)
		return
	}

	switch r.Method {
	case http.MethodGet:
		data, ok := s.keypadMgr.DownloadProfile(num)
		if !ok {
			http.Error(w, "no active profile", http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)

	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, profile.Size))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		// Short writes are zero-padded, long writes truncated inside
		// profile.Profile.Deserialize; the request body is never rejected.
		if !s.keypadMgr.UploadProfile(num, body) {
			http.Error(w, "no active profile", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// intfTypeResponse is the JSON response for GET /intf_type.
type intfTypeResponse struct {
	IntfType string `json:"intf_type"`
}

// handleIntfType identifies which HID interface a number corresponds to.
// Defaults to the keyboard interface this config surface attaches to
// (interface 0); an explicit ?interface=N reports what interfaces 1
// (unused) and 2 (mouse-stub) are for, even though this driver never opens
// them (spec.md §6, §2).
func (s *Server) handleIntfType(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	num := 0
	if q := r.URL.Query().Get("interface"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			http.Error(w, "invalid interface number", http.StatusBadRequest)
			return
		}
		num = n
	}

	t, ok := keypad.InterfaceType(num)
	if !ok {
		http.Error(w, "unknown interface", http.StatusNotFound)
		return
	}
	writeJSON(w, intfTypeResponse{IntfType: t})
}

// autoStartRequest is the JSON body for POST /autostart.
type autoStartRequest struct {
	Enabled bool `json:"enabled"`
}

// autoStartResponse is the JSON response for POST /autostart.
type autoStartResponse struct {
	AutoStart bool   `json:"auto_start"`
	Error     string `json:"error,omitempty"`
}

// handleAutoStart toggles the auto-start on login setting.
func (s *Server) handleAutoStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req autoStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, autoStartResponse{Error: "invalid JSON"})
		return
	}

	if req.Enabled {
		if err := autostart.Enable(); err != nil {
			log.Printf("[server] enable autostart: %v", err)
			writeJSON(w, autoStartResponse{Error: "failed to enable auto-start: " + err.Error()})
			return
		}
	} else {
		if err := autostart.Disable(); err != nil {
			log.Printf("[server] disable autostart: %v", err)
			writeJSON(w, autoStartResponse{Error: "failed to disable auto-start: " + err.Error()})
			return
		}
	}

	if err := s.cfg.SetAutoStart(req.Enabled); err != nil {
		log.Printf("[server] save autostart config: %v", err)
		writeJSON(w, autoStartResponse{Error: "setting changed but failed to persist"})
		return
	}

	log.Printf("[server] auto-start: %v", req.Enabled)
	writeJSON(w, autoStartResponse{AutoStart: req.Enabled})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
