package tray

// Tray icon bitmaps, ICO-encoded per fyne.io/systray's SetIcon contract.
//
// TODO: these are 1x1 placeholder glyphs (grey/green/amber squares) encoded
// directly so the package compiles standalone; swap in real multi-resolution
// ICO art for the disconnected/connected/disabled states before shipping.
var (
	IconDisconnected = mustICO(0x90, 0x90, 0x90)
	IconConnected    = mustICO(0x2E, 0xA0, 0x43)
	IconDisabled     = mustICO(0xC9, 0x8A, 0x1E)
)

// mustICO builds a minimal single-pixel, 32-bit BGRA ICO image carrying the
// given RGB color, so each tray state has a distinct icon without shipping
// binary asset files.
func mustICO(r, g, b byte) []byte {
	const (
		width, height = 1, 1
		bpp           = 32
	)

	pixelData := []byte{b, g, r, 0xFF} // BGRA, bottom-up
	andMask := []byte{0x00}            // no transparency bits used at 32bpp

	dibHeaderSize := 40
	imageSize := len(pixelData) + len(andMask)

	dib := make([]byte, 0, dibHeaderSize)
	dib = le32(dib, uint32(dibHeaderSize))
	dib = le32(dib, uint32(width))
	dib = le32(dib, uint32(height*2)) // ICO doubles height for the AND mask
	dib = le16(dib, 1)                // planes
	dib = le16(dib, bpp)
	dib = le32(dib, 0) // no compression
	dib = le32(dib, uint32(imageSize))
	dib = le32(dib, 0)
	dib = le32(dib, 0)
	dib = le32(dib, 0)
	dib = le32(dib, 0)

	icoHeader := []byte{0, 0, 1, 0, 1, 0}
	const entrySize = 16
	dataOffset := uint32(len(icoHeader) + entrySize)

	entry := make([]byte, 0, entrySize)
	entry = append(entry, byte(width), byte(height), 0, 0)
	entry = le16(entry, 1)
	entry = le16(entry, bpp)
	entry = le32(entry, uint32(dibHeaderSize+imageSize))
	entry = le32(entry, dataOffset)

	out := make([]byte, 0, len(icoHeader)+len(entry)+len(dib)+imageSize)
	out = append(out, icoHeader...)
	out = append(out, entry...)
	out = append(out, dib...)
	out = append(out, pixelData...)
	out = append(out, andMask...)
	return out
}

func le16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func le32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
