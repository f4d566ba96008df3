package razerproto

import "testing"

func TestEncodeChecksumRoundTrip(t *testing.T) {
	r := New(ClassSetLED, IDSetLED, SizeSetLED)
	r.Data[0] = 0x01
	r.Data[1] = 0x0E
	r.Data[2] = 1

	raw := r.Encode()
	if len(raw) != ReportLen {
		t.Fatalf("expected %d bytes, got %d", ReportLen, len(raw))
	}
	if !Verify(raw) {
		t.Fatal("expected encoded report to verify")
	}

	decoded := Decode(raw)
	if decoded.Class != ClassSetLED || decoded.CmdID != IDSetLED || decoded.Size != SizeSetLED {
		t.Fatalf("round-trip mismatch: %+v", decoded)
	}
	if decoded.Data[1] != 0x0E || decoded.Data[2] != 1 {
		t.Fatalf("payload mismatch: %+v", decoded.Data[:4])
	}
}

func TestVerifyRejectsCorruption(t *testing.T) {
	r := New(ClassKeyboardLayout, IDKeyboardLayout, SizeKeyboardLayout)
	raw := r.Encode()
	raw[40] ^= 0xFF // corrupt a payload byte without touching the checksum
	if Verify(raw) {
		t.Fatal("expected corrupted report to fail verification")
	}
}

func TestChecksumExcludesHeaderAndTrailer(t *testing.T) {
	r := New(ClassSetLED, IDSetLED, SizeSetLED)
	raw := r.Encode()
	raw[0] = 0x02  // status byte, outside the checksum range
	raw[89] = 0x07 // reserved byte, outside the checksum range
	if !Verify(raw) {
		t.Fatal("status/reserved bytes must not affect the checksum")
	}
}
