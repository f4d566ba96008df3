// Package server exposes the keyboard interface's configuration surface
// over loopback HTTP: profile_count, profile_num, profile, intf_type
// (spec.md §6).
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/tartarusdrv/keypadd/internal/config"
	"github.com/tartarusdrv/keypadd/internal/hotkey"
	"github.com/tartarusdrv/keypadd/internal/keypad"
)

// Server serves the local configuration API on loopback.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	hotkeyMgr  *hotkey.Manager
	keypadMgr  *keypad.Manager
	cfg        *config.Config
	version    string
}

// New creates a configuration server.
func New(hotkeyMgr *hotkey.Manager, keypadMgr *keypad.Manager, cfg *config.Config, version string) *Server {
	return &Server{
		hotkeyMgr: hotkeyMgr,
		keypadMgr: keypadMgr,
		cfg:       cfg,
		version:   version,
	}
}

// Start begins serving on a random loopback port, or the configured port
// if non-zero. Returns the base URL.
func (s *Server) Start() (string, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/profile_count", s.handleProfileCount)
	mux.HandleFunc("/profile_num", s.handleProfileNum)
	mux.HandleFunc("/profile", s.handleProfile)
	mux.HandleFunc("/intf_type", s.handleIntfType)
	mux.HandleFunc("/autostart", s.handleAutoStart)

	addr := "127.0.0.1:0"
	if port := s.cfg.GetServerPort(); port != 0 {
		addr = fmt.Sprintf("127.0.0.1:%d", port)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[server] error: %v", err)
		}
	}()

	url := fmt.Sprintf("http://%s", ln.Addr().String())
	log.Printf("[server] config surface available at %s", url)
	return url, nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// URL returns the server's URL, or empty string if not started.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s", s.listener.Addr().String())
}
