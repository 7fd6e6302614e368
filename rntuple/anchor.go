package rntuple

import (
	"encoding/binary"
	"fmt"
)

// Anchor is the RNTuple pointer that locates the header and footer
// envelopes: big-endian struct ">IIIQIIQIIQ" — 7 u32 fields
// and 3 u64 fields, 52 bytes total. Unlike the header/footer/page-list
// envelopes, the anchor lives inside the enclosing ROOT file's own
// big-endian key framework, which is why its byte order differs from the
// little-endian envelopes it points at.
type Anchor struct {
	Checksum     uint32
	Version      uint32
	Size         uint32
	SeekHeader   uint64
	NBytesHeader uint32
	LenHeader    uint32
	SeekFooter   uint64
	NBytesFooter uint32
	LenFooter    uint32
	Reserved     uint64
}

// AnchorSize is the fixed size, in bytes, of a serialized Anchor.
const AnchorSize = 52

// ReadAnchor parses a 52-byte big-endian Anchor record.
func ReadAnchor(b []byte) (Anchor, error) {
	if len(b) < AnchorSize {
		return Anchor{}, fmt.Errorf("%w: anchor record needs %d bytes, got %d", FormatError, AnchorSize, len(b))
	}
	be := binary.BigEndian
	return Anchor{
		Checksum:     be.Uint32(b[0:4]),
		Version:      be.Uint32(b[4:8]),
		Size:         be.Uint32(b[8:12]),
		SeekHeader:   be.Uint64(b[12:20]),
		NBytesHeader: be.Uint32(b[20:24]),
		LenHeader:    be.Uint32(b[24:28]),
		SeekFooter:   be.Uint64(b[28:36]),
		NBytesFooter: be.Uint32(b[36:40]),
		LenFooter:    be.Uint32(b[40:44]),
		Reserved:     be.Uint64(b[44:52]),
	}, nil
}

// HeaderLink returns the EnvelopeLink addressing the header envelope.
func (a Anchor) HeaderLink() EnvelopeLink {
	return EnvelopeLink{
		UncompressedSize: a.LenHeader,
		Locator:          Locator{NumBytes: int32(a.NBytesHeader), Offset: a.SeekHeader},
	}
}

// FooterLink returns the EnvelopeLink addressing the footer envelope.
func (a Anchor) FooterLink() EnvelopeLink {
	return EnvelopeLink{
		UncompressedSize: a.LenFooter,
		Locator:          Locator{NumBytes: int32(a.NBytesFooter), Offset: a.SeekFooter},
	}
}

// String renders a short operator-facing summary of the anchor.
func (a Anchor) String() string {
	return fmt.Sprintf(
		"RNTuple anchor(version=%d, header=[seek=%d, nbytes=%d, len=%d], footer=[seek=%d, nbytes=%d, len=%d])",
		a.Version, a.SeekHeader, a.NBytesHeader, a.LenHeader, a.SeekFooter, a.NBytesFooter, a.LenFooter,
	)
}
