// Package keypad owns the USB connection to a Razer Tartarus V2 and the
// per-interface state guarded by its lock: the decoder/resolver pipeline
// that turns interrupt-transfer reports into host key events and LED
// updates (spec.md §3, §4.4 "Concurrency Shell").
package keypad

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/gousb"

	"github.com/tartarusdrv/keypadd/internal/decoder"
	"github.com/tartarusdrv/keypadd/internal/led"
	"github.com/tartarusdrv/keypadd/internal/profile"
	"github.com/tartarusdrv/keypadd/internal/razerproto"
	"github.com/tartarusdrv/keypadd/internal/resolver"
)

// Tartarus V2 USB identity (spec.md §2).
const (
	VendorID  = 0x1532
	ProductID = 0x022b
)

// Interface numbers (spec.md §2): 0 is the active keyboard-report
// interface; 1 is present but never produces usable reports; 2 is a
// reserved mouse-wheel stub, neither of which this driver reads from.
const keyboardInterfaceNum = 0

// InterfaceType names the HID interface a given number corresponds to
// (spec.md §2/§6). This driver only ever claims interface 0; 1 and 2 are
// reported for the config server's intf_type endpoint but never opened.
func InterfaceType(num int) (string, bool) {
	switch num {
	case keyboardInterfaceNum:
		return "keyboard", true
	case 1:
		return "unused", true
	case 2:
		return "mouse-stub", true
	default:
		return "", false
	}
}

// keyboardEndpoint is the interrupt IN endpoint number carrying 8-byte
// keyboard reports. The original kernel driver never touches raw endpoint
// numbers itself (the HID subsystem does that for it); 1 is the
// conventional address for a composite HID device's first interrupt IN
// endpoint and is what this driver assumes.
const keyboardEndpoint = 1

const reconnectPoll = 2 * time.Second

// State represents the current device connection state.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// HostEvent is re-exported so callers outside this module don't need to
// import internal/resolver directly.
type HostEvent = resolver.HostEvent

// Manager owns one keypad's USB connection and keyboard-interface state.
// All device and state access is serialized by mu, matching the
// single-lock-per-interface contract in spec.md §4.4.
type Manager struct {
	mu     sync.Mutex
	ctx    *gousb.Context
	dev    *gousb.Device
	cfg    *gousb.Config
	intf   *gousb.Interface
	epIn   *gousb.InEndpoint
	state  State
	serial string

	store *profile.Store
	rst   *resolver.State
	leds  *led.Driver

	onChange    func(State)
	onHostEvent func(HostEvent)
}

// NewManager builds a Manager. serial restricts discovery to a specific
// unit (empty matches the first Tartarus V2 found). startProfile is the
// profile number active on connect (spec.md §3's active_profile, 0
// disables resolution entirely).
func NewManager(serial string, startProfile byte, store *profile.Store, onChange func(State), onHostEvent func(HostEvent)) *Manager {
	return &Manager{
		state:       Disconnected,
		serial:      serial,
		store:       store,
		rst:         resolver.NewState(startProfile),
		onChange:    onChange,
		onHostEvent: onHostEvent,
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ActiveProfile returns the currently active profile number (0 = disabled).
func (m *Manager) ActiveProfile() byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rst.ActiveProfile
}

// SetProfileNum changes the active profile directly (e.g. from the config
// server, a tray menu click, or the kill-switch hotkey). It runs the same
// profile-swap (release-all) procedure an in-band PROFILE bind triggers, so
// no key held under the outgoing profile is left stuck from the host's
// perspective, then pushes the new LED state (spec.md §6).
func (m *Manager) SetProfileNum(num byte) {
	m.mu.Lock()
	events := resolver.SetProfile(m.store, m.rst, num)
	leds := m.leds
	m.mu.Unlock()

	for _, he := range events {
		if m.onHostEvent != nil {
			m.onHostEvent(he)
		}
	}
	if leds != nil {
		leds.SetProfile(num)
	}
}

// UploadProfile overwrites the given profile's bind table.
func (m *Manager) UploadProfile(num byte, data []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Overwrite(num, data)
}

// DownloadProfile serializes the given profile's bind table.
func (m *Manager) DownloadProfile(num byte) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Read(num)
}

// Run drives the connect/reconnect loop. Blocks until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	m.tryConnect()

	ticker := time.NewTicker(reconnectPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return
		case <-ticker.C:
			m.mu.Lock()
			disconnected := m.state == Disconnected
			m.mu.Unlock()
			if disconnected {
				m.tryConnect()
			}
		}
	}
}

// tryConnect opens the keypad and claims its keyboard interface, then
// starts the read loop. A failure here just means try again next tick.
func (m *Manager) tryConnect() {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(VendorID) && desc.Product == gousb.ID(ProductID)
	})
	if err != nil && len(devs) == 0 {
		ctx.Close()
		return
	}

	var dev *gousb.Device
	for _, d := range devs {
		s, _ := d.SerialNumber()
		if m.serial == "" || s == m.serial {
			if dev == nil {
				dev = d
				continue
			}
		}
		d.Close()
	}
	if dev == nil {
		ctx.Close()
		return
	}

	dev.SetAutoDetach(true)

	cfg, err := dev.Config(1)
	if err != nil {
		log.Printf("[keypad] config: %v", err)
		dev.Close()
		ctx.Close()
		return
	}

	intf, err := cfg.Interface(keyboardInterfaceNum, 0)
	if err != nil {
		log.Printf("[keypad] claim interface %d: %v", keyboardInterfaceNum, err)
		cfg.Close()
		dev.Close()
		ctx.Close()
		return
	}

	epIn, err := intf.InEndpoint(keyboardEndpoint)
	if err != nil {
		log.Printf("[keypad] open in-endpoint: %v", err)
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return
	}

	m.mu.Lock()
	m.ctx, m.dev, m.cfg, m.intf, m.epIn = ctx, dev, cfg, intf, epIn
	m.state = Connected
	m.leds = led.New(dev)
	m.mu.Unlock()

	log.Println("[keypad] connected")
	if m.onChange != nil {
		m.onChange(Connected)
	}

	go queryLayout(dev)
	go m.readLoop()
}

// queryLayout issues a best-effort CMD_KBD_LAYOUT control transaction at
// connect time and logs the device's reported keyboard layout. Failures are
// logged only — this is purely informational, never load-bearing for key
// resolution (SPEC_FULL.md §6, grounded in module.h's CMD_KBD_LAYOUT).
func queryLayout(dev *gousb.Device) {
	req := razerproto.New(razerproto.ClassKeyboardLayout, razerproto.IDKeyboardLayout, razerproto.SizeKeyboardLayout)
	raw := req.Encode()
	if _, err := dev.Control(razerproto.ReqTypeOut, razerproto.ReqSetReport, razerproto.ReportValue, razerproto.ReportIndex, raw[:]); err != nil {
		log.Printf("[keypad] layout query write: %v", err)
		return
	}

	var reply [razerproto.ReportLen]byte
	if _, err := dev.Control(razerproto.ReqTypeIn, razerproto.ReqGetReport, razerproto.ReportValue, razerproto.ReportIndex, reply[:]); err != nil {
		log.Printf("[keypad] layout query read: %v", err)
		return
	}

	if !razerproto.Verify(reply) {
		log.Printf("[keypad] layout query: checksum mismatch, ignoring")
		return
	}

	resp := razerproto.Decode(reply)
	log.Printf("[keypad] keyboard layout: 0x%02x", resp.Data[0])
}

// readLoop blocks reading 8-byte interrupt reports until the transfer
// fails, at which point it tears down the connection and lets Run's
// reconnect ticker try again.
func (m *Manager) readLoop() {
	buf := make([]byte, 8)
	for {
		n, err := m.epIn.Read(buf)
		if err != nil {
			m.handleError(err)
			return
		}

		report, _ := decoder.Clamp(buf[:n])
		m.process(report)
	}
}

// process decodes one raw report and resolves every event it implies,
// forwarding host key events and LED updates afterward. Decode and every
// Resolve call for the report run under a single critical section
// (spec.md §4.4, §5): a report can legitimately decode to more than one
// event (the §4.1 drop-before-press tie-break, or both modifier bits
// changing at once), and a concurrent SetProfileNum/UploadProfile must
// never interleave between them.
func (m *Manager) process(report [8]byte) {
	m.mu.Lock()
	prevMod, prevHeld := m.rst.PrevMod, m.rst.HeldKeys
	events, ok := decoder.Decode(prevMod, prevHeld, report)
	if !ok {
		m.mu.Unlock()
		log.Printf("[keypad] unreconcilable report dropped: % x", report)
		return // unreconcilable diff: drop, wait for the device to resettle
	}

	before := m.rst.ActiveProfile
	var hostEvents []resolver.HostEvent
	for _, ev := range events {
		hostEvents = append(hostEvents, resolver.Resolve(m.store, m.rst, ev)...)
	}
	after := m.rst.ActiveProfile
	leds := m.leds
	m.mu.Unlock()

	for _, he := range hostEvents {
		if m.onHostEvent != nil {
			m.onHostEvent(he)
		}
	}
	if after != before && leds != nil {
		leds.SetProfile(after)
	}
}

// handleError tears down the USB connection after a failed transfer.
func (m *Manager) handleError(err error) {
	log.Printf("[keypad] disconnected: %v", err)
	m.Close()
	if m.onChange != nil {
		m.onChange(Disconnected)
	}
}

// Close releases USB resources.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.intf != nil {
		m.intf.Close()
		m.intf = nil
	}
	if m.cfg != nil {
		m.cfg.Close()
		m.cfg = nil
	}
	if m.dev != nil {
		m.dev.Close()
		m.dev = nil
	}
	if m.ctx != nil {
		m.ctx.Close()
		m.ctx = nil
	}
	m.leds = nil
	m.state = Disconnected
}
