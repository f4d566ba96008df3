// Package config handles loading and saving keypadd's process configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Config holds the application configuration.
type Config struct {
	mu sync.RWMutex `json:"-"`

	// Serial restricts device discovery to a specific unit; empty matches
	// the first Tartarus V2 found.
	Serial string `json:"serial"`

	KillSwitch   HotkeyConfig `json:"kill_switch"`
	AutoStart    bool         `json:"auto_start"`
	ServerEnable bool         `json:"server_enable"`
	ServerPort   int          `json:"server_port"`
}

// HotkeyConfig defines a global hotkey binding.
type HotkeyConfig struct {
	Modifiers []string `json:"modifiers"` // "ctrl", "shift", "alt", "super"
	Key       string   `json:"key"`       // "r", "space", "f5", etc.
}

// String returns a human-readable representation like "Ctrl+Alt+R".
func (h HotkeyConfig) String() string {
	s := ""
	for _, m := range h.Modifiers {
		switch m {
		case "ctrl":
			s += "Ctrl+"
		case "shift":
			s += "Shift+"
		case "alt":
			s += "Alt+"
		case "super":
			s += "Super+"
		}
	}
	if len(h.Key) == 1 {
		s += string(h.Key[0] - 32) // uppercase single letter
	} else {
		s += h.Key
	}
	return s
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		KillSwitch: HotkeyConfig{
			Modifiers: []string{"ctrl", "alt"},
			Key:       "k",
		},
		ServerEnable: true,
		ServerPort:   9271,
	}
}

// Dir returns the OS-appropriate config directory for keypadd.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(base, "keypadd"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk. If the file doesn't exist, it creates
// a default config and saves it.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		if saveErr := cfg.Save(); saveErr != nil {
			return nil, fmt.Errorf("create default config: %w", saveErr)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig() // start with defaults so new fields get populated
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk atomically (write temp, rename).
func (c *Config) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	p, err := Path()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// GetSerial returns the configured device serial filter (empty = any).
func (c *Config) GetSerial() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Serial
}

// SetSerial updates the device serial filter and saves to disk.
func (c *Config) SetSerial(serial string) error {
	c.mu.Lock()
	c.Serial = serial
	c.mu.Unlock()
	return c.Save()
}

// GetKillSwitch returns a copy of the current kill-switch hotkey configuration.
func (c *Config) GetKillSwitch() HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mods := make([]string, len(c.KillSwitch.Modifiers))
	copy(mods, c.KillSwitch.Modifiers)
	return HotkeyConfig{Modifiers: mods, Key: c.KillSwitch.Key}
}

// SetKillSwitch updates the kill-switch hotkey configuration and saves to disk.
func (c *Config) SetKillSwitch(mods []string, key string) error {
	c.mu.Lock()
	c.KillSwitch = HotkeyConfig{Modifiers: mods, Key: key}
	c.mu.Unlock()
	return c.Save()
}

// GetAutoStart returns the current auto-start setting.
func (c *Config) GetAutoStart() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AutoStart
}

// SetAutoStart updates the auto-start setting and saves to disk.
func (c *Config) SetAutoStart(enabled bool) error {
	c.mu.Lock()
	c.AutoStart = enabled
	c.mu.Unlock()
	return c.Save()
}

// GetServerEnable returns whether the local config HTTP surface is enabled.
func (c *Config) GetServerEnable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerEnable
}

// GetServerPort returns the configured local config-server port.
func (c *Config) GetServerPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerPort
}

// SetServer updates the config-server enable flag and port and saves to disk.
func (c *Config) SetServer(enabled bool, port int) error {
	c.mu.Lock()
	c.ServerEnable = enabled
	c.ServerPort = port
	c.mu.Unlock()
	return c.Save()
}
