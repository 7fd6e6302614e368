package rntuple

import "fmt"

// Locator addresses a contiguous region of the file:
// "i32 num_bytes, u64 offset" (little-endian). NumBytes == UncompSize means
// the region is stored uncompressed. A negative NumBytes reserves
// non-disk locators, which this reader treats as fatal.
type Locator struct {
	NumBytes int32
	Offset   uint64
}

// ReadLocator parses a Locator from c.
func ReadLocator(c *Cursor) (Locator, error) {
	n, err := c.ReadInt32()
	if err != nil {
		return Locator{}, err
	}
	off, err := c.ReadUint64()
	if err != nil {
		return Locator{}, err
	}
	if n < 0 {
		return Locator{}, fmt.Errorf("%w: non-disk locator (num_bytes=%d) is not supported", UnsupportedFeature, n)
	}
	return Locator{NumBytes: n, Offset: off}, nil
}

// IsCompressed reports whether the region's on-disk size differs from its
// uncompressed size.
func (l Locator) IsCompressed(uncompressedSize uint32) bool {
	return uint32(l.NumBytes) != uncompressedSize
}

// EnvelopeLink is an envelope-sized Locator plus the envelope's declared
// uncompressed size.
type EnvelopeLink struct {
	UncompressedSize uint32
	Locator          Locator
}

func ReadEnvelopeLink(c *Cursor) (EnvelopeLink, error) {
	size, err := c.ReadUint32()
	if err != nil {
		return EnvelopeLink{}, err
	}
	loc, err := ReadLocator(c)
	if err != nil {
		return EnvelopeLink{}, err
	}
	return EnvelopeLink{UncompressedSize: size, Locator: loc}, nil
}
