package rntuple

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Decompressor expands a compressed region to exactly uncompressedSize
// bytes. *compress.Decompressor satisfies this interface directly.
type Decompressor interface {
	Decode(dst, src []byte, uncompressedSize int) ([]byte, error)
}

// EnvelopeVersion is the two-field header every envelope starts with.
type EnvelopeVersion struct {
	EnvVersion uint16
	MinVersion uint16
}

// FetchEnvelope retrieves the bytes addressed by link from source,
// decompressing them if the locator's on-disk size differs from the
// envelope's declared uncompressed size.
func FetchEnvelope(source Source, link EnvelopeLink, decompressor Decompressor) ([]byte, error) {
	loc := link.Locator
	chunk, err := source.Chunk(loc.Offset, loc.Offset+uint64(loc.NumBytes))
	if err != nil {
		return nil, fmt.Errorf("fetching envelope bytes: %w", err)
	}

	if !loc.IsCompressed(link.UncompressedSize) {
		return chunk.Bytes(), nil
	}
	if decompressor == nil {
		return nil, fmt.Errorf("%w: envelope is compressed but no decompressor was configured", UnsupportedFeature)
	}
	return decompressor.Decode(nil, chunk.Bytes(), int(link.UncompressedSize))
}

// ReadEnvelope parses the envelope header from raw (the full, already
// decompressed envelope buffer: header + payload + trailing CRC32) and
// verifies the trailing checksum. It returns the
// envelope version and a cursor bounded to the payload.
func ReadEnvelope(raw []byte) (EnvelopeVersion, *Cursor, error) {
	return readEnvelope(raw, false)
}

// ReadEnvelopeSkipChecksum is ReadEnvelope without the CRC32 verification
// step, for the SkipEnvelopeChecksum ReaderOption.
func ReadEnvelopeSkipChecksum(raw []byte) (EnvelopeVersion, *Cursor, error) {
	return readEnvelope(raw, true)
}

func readEnvelope(raw []byte, skipChecksum bool) (EnvelopeVersion, *Cursor, error) {
	if len(raw) < 4+4 {
		return EnvelopeVersion{}, nil, fmt.Errorf("%w: envelope of %d bytes is too small to hold a header and CRC", FormatError, len(raw))
	}

	if !skipChecksum {
		payloadAndCRC := raw[:len(raw)-4]
		trailing := binary.LittleEndian.Uint32(raw[len(raw)-4:])
		if got := crc32.ChecksumIEEE(payloadAndCRC); got != trailing {
			return EnvelopeVersion{}, nil, fmt.Errorf("%w: envelope CRC32 mismatch: computed %#x, stored %#x", FormatError, got, trailing)
		}
	}

	chunk := NewChunk(0, raw)
	c := NewCursor(chunk)
	envVersion, err := c.ReadUint16()
	if err != nil {
		return EnvelopeVersion{}, nil, err
	}
	minVersion, err := c.ReadUint16()
	if err != nil {
		return EnvelopeVersion{}, nil, err
	}

	payload, err := c.Sub(len(raw) - 4 - 4)
	if err != nil {
		return EnvelopeVersion{}, nil, err
	}
	return EnvelopeVersion{EnvVersion: envVersion, MinVersion: minVersion}, payload, nil
}
