package ttree

import (
	"encoding/binary"
	"fmt"
)

// writeTString serializes s in ROOT's on-disk TString format: a 1-byte
// length prefix, or 0xFF followed by a big-endian u32 length when s is 255
// bytes or longer.
func writeTString(s string) []byte {
	if len(s) < 0xff {
		return append([]byte{byte(len(s))}, s...)
	}
	b := make([]byte, 0, 5+len(s))
	b = append(b, 0xff)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(s)))
	b = append(b, lenBuf...)
	return append(b, s...)
}

// keyHeader is the basket's self-describing record header:
// "length, version, object length, datime, key-header length, cycle, seek
// self, seek parent".
type keyHeader struct {
	Version      int16
	ObjLen       int32
	Datime       uint32
	Cycle        int16
	SeekKey      int64
	SeekPdir     int64
	ClassName    string
	Name         string
	Title        string
}

// encode serializes the key header plus its trailing class/name/title
// strings. The leading total-length field is patched in by the caller once
// the basket's full on-disk size is known.
func (k keyHeader) encode() []byte {
	body := make([]byte, 0, 32)
	body = append(body, int16Bytes(k.Version)...)
	body = append(body, int32Bytes(k.ObjLen)...)
	body = append(body, uint32Bytes(k.Datime)...)
	// keylen placeholder, patched below once the full header length is known
	body = append(body, 0, 0)
	body = append(body, int16Bytes(k.Cycle)...)
	body = append(body, int64Bytes(k.SeekKey)...)
	body = append(body, int64Bytes(k.SeekPdir)...)
	body = append(body, writeTString(k.ClassName)...)
	body = append(body, writeTString(k.Name)...)
	body = append(body, writeTString(k.Title)...)

	keylen := uint16(4 + len(body)) // +4 for the leading total-length field written by the caller
	binary.BigEndian.PutUint16(body[10:12], keylen)
	return body
}

func int16Bytes(v int16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(v))
	return b
}

func int32Bytes(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func int64Bytes(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

// basketSubHeader is the basket-specific block following the key header:
// version, buffer size, element size, element count, last-byte offset.
type basketSubHeader struct {
	Version        int16
	BufferSize     int32
	ElementSize    int32
	ElementCount   int32 // fNevBuf
	LastByteOffset int32 // fLast
}

func (h basketSubHeader) encode() []byte {
	return append(append(append(append(
		int16Bytes(h.Version),
		int32Bytes(h.BufferSize)...),
		int32Bytes(h.ElementSize)...),
		int32Bytes(h.ElementCount)...),
		int32Bytes(h.LastByteOffset)...)
}

// encodedBasket is a fully serialized basket, ready to write to a Sink at
// an allocated offset.
type encodedBasket struct {
	bytes          []byte
	entryOffsetLen int32
}

// encodeFlatBasket builds a flat basket: key header, basket sub-header, a
// zero byte, then big-endian row-major payload.
func encodeFlatBasket(b *Branch, payload []byte, nev int32, seekKey, seekPdir int64) encodedBasket {
	key := keyHeader{
		Version:   1,
		ClassName: "TBasket",
		Name:      b.Name,
		Title:     b.Title,
		SeekKey:   seekKey,
		SeekPdir:  seekPdir,
	}
	keyBytes := key.encode()
	sub := basketSubHeader{
		Version:        1,
		ElementSize:    int32(b.Type.ItemSize() * b.rowShapeSize()),
		ElementCount:   nev,
		LastByteOffset: int32(len(keyBytes)) + int32(len(payload)),
	}
	subBytes := sub.encode()

	objLen := int32(len(subBytes) + 1 + len(payload))
	binary.BigEndian.PutUint32(keyBytes[2:6], uint32(objLen))
	sub.BufferSize = objLen
	subBytes = sub.encode() // re-encode now that BufferSize is known

	full := make([]byte, 0, 4+len(keyBytes)+len(subBytes)+1+len(payload))
	full = append(full, 0, 0, 0, 0) // total length placeholder, patched below
	full = append(full, keyBytes...)
	full = append(full, subBytes...)
	full = append(full, 0) // speedbump / zero separator byte
	full = append(full, payload...)
	binary.BigEndian.PutUint32(full[0:4], uint32(len(full)))

	return encodedBasket{bytes: full}
}

// encodeJaggedBasket builds a jagged basket: payload bytes, a u32 offsets
// count, then the offsets array scaled by item size and biased by key
// length, with the final entry replaced by a zero sentinel and the true
// terminator recorded in the sub-header's LastByteOffset.
func encodeJaggedBasket(b *Branch, data []byte, offsets []int32, seekKey, seekPdir int64) (encodedBasket, error) {
	if len(offsets) < 1 {
		return encodedBasket{}, fmt.Errorf("%w: jagged basket for %q needs at least one offset", ShapeError, b.Name)
	}

	key := keyHeader{
		Version:   1,
		ClassName: "TBasket",
		Name:      b.Name,
		Title:     b.Title,
		SeekKey:   seekKey,
		SeekPdir:  seekPdir,
	}
	keyBytes := key.encode()
	keylen := int32(len(keyBytes)) + 4 // +4 for the leading total-length field

	itemSize := int32(b.Type.ItemSize())
	scaled := make([]byte, 4*len(offsets))
	for i, off := range offsets {
		v := off*itemSize + keylen
		if i == len(offsets)-1 {
			v = 0
		}
		binary.BigEndian.PutUint32(scaled[i*4:], uint32(v))
	}
	trueLast := offsets[len(offsets)-1]*itemSize + keylen

	offsetsBlock := append(uint32Bytes(uint32(len(offsets))), scaled...)
	payload := append(append([]byte(nil), data...), offsetsBlock...)

	sub := basketSubHeader{
		Version:        1,
		ElementSize:    itemSize,
		ElementCount:   int32(len(offsets) - 1), // fNevBuf: number of entries
		LastByteOffset: trueLast,
	}
	subBytes := sub.encode()

	objLen := int32(len(subBytes) + 1 + len(payload))
	binary.BigEndian.PutUint32(keyBytes[2:6], uint32(objLen))
	sub.BufferSize = objLen
	subBytes = sub.encode()

	full := make([]byte, 0, 4+len(keyBytes)+len(subBytes)+1+len(payload))
	full = append(full, 0, 0, 0, 0)
	full = append(full, keyBytes...)
	full = append(full, subBytes...)
	full = append(full, 0)
	full = append(full, payload...)
	binary.BigEndian.PutUint32(full[0:4], uint32(len(full)))

	return encodedBasket{bytes: full, entryOffsetLen: 4 * int32(len(offsets)-1)}, nil
}
