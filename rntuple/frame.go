package rntuple

import "fmt"

// ReadRecordFrame reads a record frame: a u32 size
// header followed by exactly size bytes of payload. It returns a cursor
// bounded to the payload; the receiver cursor is left positioned
// immediately after the frame.
func ReadRecordFrame(c *Cursor) (*Cursor, error) {
	size, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	inner, err := c.Sub(int(size))
	if err != nil {
		return nil, err
	}
	if err := c.Skip(int(size)); err != nil {
		return nil, err
	}
	return inner, nil
}

// ReadListFrame reads a list frame: a signed i32 size
// header (negative by construction), then an i32 count, then count
// payloads. |size| is the frame's total length including the 8-byte
// header. It returns a cursor bounded to the count payloads (the header is
// already consumed) and the item count; the receiver cursor is left
// positioned immediately after the whole frame.
func ReadListFrame(c *Cursor) (inner *Cursor, count int32, err error) {
	size, err := c.ReadInt32()
	if err != nil {
		return nil, 0, err
	}
	if size >= 0 {
		return nil, 0, fmt.Errorf("%w: list frame size %d is not negative", FormatError, size)
	}
	count, err = c.ReadInt32()
	if err != nil {
		return nil, 0, err
	}
	total := -int64(size)
	payloadLen := total - 8
	if payloadLen < 0 {
		return nil, 0, fmt.Errorf("%w: list frame size %d too small for its own header", FormatError, size)
	}
	inner, err = c.Sub(int(payloadLen))
	if err != nil {
		return nil, 0, err
	}
	if err := c.Skip(int(payloadLen)); err != nil {
		return nil, 0, err
	}
	return inner, count, nil
}
