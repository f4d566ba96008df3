// Package razerproto encodes and decodes the 90-byte Razer control report
// used by every Tartarus V2 USB transaction (spec.md §2, §4.5).
package razerproto

import "encoding/binary"

// ReportLen is the fixed wire size of a razer control report.
const ReportLen = 90

// dataLen is the size of the payload region (bytes 8..87).
const dataLen = 80

// HID control-transfer parameters every report is sent/received with
// (wValue 0x0300 selects report type "feature" / report ID 0, wIndex
// addresses the keyboard interface's control endpoint).
const (
	ReqSetReport  uint8 = 0x09
	ReqGetReport  uint8 = 0x01
	ReqTypeOut    uint8 = 0x21 // USB_TYPE_CLASS | USB_RECIP_INTERFACE | USB_DIR_OUT
	ReqTypeIn     uint8 = 0xA1 // USB_TYPE_CLASS | USB_RECIP_INTERFACE | USB_DIR_IN
	ReportValue   uint16 = 0x0300
	ReportIndex   uint16 = 0x01
)

// Command classes/IDs the keypad understands.
const (
	ClassKeyboardLayout byte = 0x00
	IDKeyboardLayout    byte = 0x86
	SizeKeyboardLayout  byte = 0x02

	ClassSetLED byte = 0x03
	IDSetLED    byte = 0x00
	SizeSetLED  byte = 0x03
)

// transactionID is the fixed transaction id every request uses; the
// multi-device addressing scheme described in the report layout is not
// exercised by a single-keypad driver.
const transactionID = 0xFF

// Report mirrors the struct razer_report wire layout byte for byte:
// status(1) | tr_id(1) | remaining(2,BE) | type(1) | size(1) | class(1) |
// cmd_id(1) | data(80) | cksum(1) | reserved(1) = 90 bytes.
type Report struct {
	Status    byte
	TrID      byte
	Remaining uint16
	Type      byte
	Size      byte
	Class     byte
	CmdID     byte
	Data      [dataLen]byte
}

// New builds a host-to-device request report for the given command.
func New(class, id, size byte) Report {
	r := Report{TrID: transactionID, Class: class, CmdID: id, Size: size}
	return r
}

// Encode serializes r into the 90-byte wire format with a freshly computed
// checksum. Byte 89 (reserved) is always zero.
func (r Report) Encode() [ReportLen]byte {
	var raw [ReportLen]byte
	raw[0] = r.Status
	raw[1] = r.TrID
	binary.BigEndian.PutUint16(raw[2:4], r.Remaining)
	raw[4] = r.Type
	raw[5] = r.Size
	raw[6] = r.Class
	raw[7] = r.CmdID
	copy(raw[8:88], r.Data[:])
	raw[88] = checksum(raw)
	raw[89] = 0
	return raw
}

// Decode parses a 90-byte wire report into a Report, ignoring the trailing
// checksum and reserved byte (use Verify to check them against raw first).
func Decode(raw [ReportLen]byte) Report {
	var r Report
	r.Status = raw[0]
	r.TrID = raw[1]
	r.Remaining = binary.BigEndian.Uint16(raw[2:4])
	r.Type = raw[4]
	r.Size = raw[5]
	r.Class = raw[6]
	r.CmdID = raw[7]
	copy(r.Data[:], raw[8:88])
	return r
}

// checksum computes the XOR of raw[2:88] (inclusive of index 2, exclusive
// of 88), matching the device's own algorithm (spec.md §4.5).
func checksum(raw [ReportLen]byte) byte {
	var ck byte
	for i := 2; i < 88; i++ {
		ck ^= raw[i]
	}
	return ck
}

// Verify reports whether raw's embedded checksum matches its payload.
func Verify(raw [ReportLen]byte) bool {
	return raw[88] == checksum(raw)
}
