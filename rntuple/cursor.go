package rntuple

import (
	"encoding/binary"
	"fmt"
)

// Cursor is a pointer into a Chunk with an absolute file offset. Reads
// never span chunks; a read past the end of the chunk's data is a
// FormatError rather than a panic, since truncated envelopes are a
// legitimate (if fatal) input.
type Cursor struct {
	chunk Chunk
	pos   int // byte index into chunk.data
}

// NewCursor returns a Cursor positioned at the start of chunk.
func NewCursor(chunk Chunk) *Cursor {
	return &Cursor{chunk: chunk}
}

// Offset returns the cursor's current absolute file offset.
func (c *Cursor) Offset() uint64 { return c.chunk.offset + uint64(c.pos) }

// Len returns the number of unread bytes remaining in the cursor's chunk.
func (c *Cursor) Len() int { return len(c.chunk.data) - c.pos }

// Copy returns an independent cursor at the same position, enabling
// look-ahead reads that don't disturb the caller's cursor.
func (c *Cursor) Copy() *Cursor {
	cp := *c
	return &cp
}

// Skip advances the cursor by n bytes without interpreting them.
func (c *Cursor) Skip(n int) error {
	if n < 0 || n > c.Len() {
		return fmt.Errorf("%w: skip %d bytes at offset %d exceeds chunk bounds", FormatError, n, c.Offset())
	}
	c.pos += n
	return nil
}

// MoveTo repositions the cursor to an absolute file offset within the same
// chunk.
func (c *Cursor) MoveTo(absolute uint64) error {
	if absolute < c.chunk.offset || absolute > c.chunk.offset+uint64(len(c.chunk.data)) {
		return fmt.Errorf("%w: move to offset %d outside chunk [%d,%d)", FormatError, absolute, c.chunk.offset, c.chunk.offset+uint64(len(c.chunk.data)))
	}
	c.pos = int(absolute - c.chunk.offset)
	return nil
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.Len() {
		return nil, fmt.Errorf("%w: read of %d bytes at offset %d exceeds chunk bounds", FormatError, n, c.Offset())
	}
	b := c.chunk.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadInt32() (int32, error) {
	u, err := c.ReadUint32()
	return int32(u), err
}

func (c *Cursor) ReadUint64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) ReadInt64() (int64, error) {
	u, err := c.ReadUint64()
	return int64(u), err
}

// ReadString reads a length-prefixed (u32) UTF-8 string.
func (c *Cursor) ReadString() (string, error) {
	n, err := c.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Sub returns a Cursor bounded to exactly n bytes starting at the current
// position, without advancing this cursor.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	if n < 0 || n > c.Len() {
		return nil, fmt.Errorf("%w: sub-cursor of %d bytes at offset %d exceeds chunk bounds", FormatError, n, c.Offset())
	}
	chunk, err := c.chunk.Slice(c.Offset(), c.Offset()+uint64(n))
	if err != nil {
		return nil, err
	}
	return NewCursor(chunk), nil
}
