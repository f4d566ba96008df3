// Package led drives the three profile-indicator LEDs (red/green/blue)
// exposed by the keypad's command interface, encoding the active profile
// number in binary across them (spec.md §4.5).
package led

import (
	"fmt"
	"log"

	"github.com/tartarusdrv/keypadd/internal/razerproto"
)

// ControlTransferer is the subset of *gousb.Device the driver needs. Real
// wiring passes a *gousb.Device; tests pass a fake.
type ControlTransferer interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
}

// channel is one LED's command byte, taken from the profile-LED block in
// the original command sequence (bit 0 -> blue, bit 1 -> green, bit 2 -> red).
type channel struct {
	cmdByte byte
	bit     uint
}

var channels = [3]channel{
	{cmdByte: 0x0E, bit: 0}, // blue
	{cmdByte: 0x0D, bit: 1}, // green
	{cmdByte: 0x0C, bit: 2}, // red
}

// Driver issues fire-and-forget LED control transactions for one interface.
type Driver struct {
	dev ControlTransferer
}

// New returns a Driver bound to dev.
func New(dev ControlTransferer) *Driver {
	return &Driver{dev: dev}
}

// SetProfile asynchronously pushes the three LED control transactions that
// encode profile (1..8, or 0 for "all off") in binary. It returns
// immediately; failures are logged, not returned, since LED state is
// cosmetic and must never block key resolution (spec.md §4.5, §9).
func (d *Driver) SetProfile(profile byte) {
	go d.dispatch(profile)
}

func (d *Driver) dispatch(profile byte) {
	for _, ch := range channels {
		bit := byte(0)
		if profile>>ch.bit&1 != 0 {
			bit = 1
		}
		if err := d.send(ch.cmdByte, bit); err != nil {
			log.Printf("[led] channel 0x%02x: %v", ch.cmdByte, err)
		}
	}
}

func (d *Driver) send(channelByte, state byte) error {
	r := razerproto.New(razerproto.ClassSetLED, razerproto.IDSetLED, razerproto.SizeSetLED)
	r.Data[0] = 0x01 // variable store
	r.Data[1] = channelByte
	r.Data[2] = state

	raw := r.Encode()
	if _, err := d.dev.Control(razerproto.ReqTypeOut, razerproto.ReqSetReport, razerproto.ReportValue, razerproto.ReportIndex, raw[:]); err != nil {
		return fmt.Errorf("control transfer: %w", err)
	}
	return nil
}
