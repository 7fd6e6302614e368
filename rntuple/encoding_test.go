package rntuple_test

import "encoding/binary"

// This file collects the little-endian byte-building helpers shared by
// this package's tests, mirroring the frame/record shapes rntuple parses.

func u16b(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u32b(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func i32b(v int32) []byte { return u32b(uint32(v)) }

func u64b(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func i64b(v int64) []byte { return u64b(uint64(v)) }

func strb(s string) []byte {
	return append(u32b(uint32(len(s))), []byte(s)...)
}

func cat(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// recordFrame wraps payload in a record frame: a u32 size header followed
// by payload itself.
func recordFrame(payload []byte) []byte {
	return cat(u32b(uint32(len(payload))), payload)
}

// listFrame wraps payload (already containing count serialized items) in
// a list frame: a negative i32 total-size header, an i32 count, then the
// payload.
func listFrame(payload []byte, count int32) []byte {
	total := int32(8 + len(payload))
	return cat(i32b(-total), i32b(count), payload)
}

// locatorBytes serializes a Locator: i32 num_bytes, u64 offset.
func locatorBytes(numBytes int32, offset uint64) []byte {
	return cat(i32b(numBytes), u64b(offset))
}

// envelopeLinkBytes serializes an EnvelopeLink: u32 uncompressed size plus
// a Locator.
func envelopeLinkBytes(uncompressedSize uint32, numBytes int32, offset uint64) []byte {
	return cat(u32b(uncompressedSize), locatorBytes(numBytes, offset))
}
