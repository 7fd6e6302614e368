package rntuple

import "fmt"

// Chunk is an immutable byte window with a known absolute file offset.
// Sources return Chunks; Cursors index into them.
type Chunk struct {
	offset uint64
	data   []byte
}

// NewChunk wraps data as a Chunk beginning at the given absolute offset.
func NewChunk(offset uint64, data []byte) Chunk {
	return Chunk{offset: offset, data: data}
}

// Offset returns the absolute file offset of the first byte in the chunk.
func (c Chunk) Offset() uint64 { return c.offset }

// Len returns the number of bytes in the chunk.
func (c Chunk) Len() int { return len(c.data) }

// Bytes returns the chunk's underlying byte slice. Callers must not mutate
// it: chunks are immutable once decoded.
func (c Chunk) Bytes() []byte { return c.data }

// Slice returns the sub-chunk covering the absolute range [begin, end).
func (c Chunk) Slice(begin, end uint64) (Chunk, error) {
	if begin < c.offset || end > c.offset+uint64(len(c.data)) || begin > end {
		return Chunk{}, fmt.Errorf("rntuple: slice [%d,%d) out of bounds for chunk [%d,%d)", begin, end, c.offset, c.offset+uint64(len(c.data)))
	}
	lo := begin - c.offset
	hi := end - c.offset
	return Chunk{offset: begin, data: c.data[lo:hi]}, nil
}

// Source is the byte-range source RNTuple reads through:
// read-only, shared, and safe to call from multiple goroutines without
// locking.
type Source interface {
	// Chunk returns the byte range [begin, end) of the underlying file.
	Chunk(begin, end uint64) (Chunk, error)
}
