package rntuple

import (
	"encoding/binary"
	"fmt"
	"math"
)

// takeN validates buf holds exactly n elements of itemSize bytes and
// returns it unchanged; every typed decoder below calls this first so a
// truncated page fails with a FormatError instead of a slice panic.
func takeN(buf []byte, n, itemSize int) ([]byte, error) {
	want := n * itemSize
	if len(buf) < want {
		return nil, fmt.Errorf("%w: page has %d bytes, need %d for %d elements of size %d", FormatError, len(buf), want, n, itemSize)
	}
	return buf[:want], nil
}

func decodeUint16s(buf []byte, n int) ([]uint16, error) {
	b, err := takeN(buf, n, 2)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return out, nil
}

func decodeUint32s(buf []byte, n int) ([]uint32, error) {
	b, err := takeN(buf, n, 4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out, nil
}

func decodeInt32s(buf []byte, n int) ([]int32, error) {
	u32, err := decodeUint32s(buf, n)
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i, v := range u32 {
		out[i] = int32(v)
	}
	return out, nil
}

func decodeUint64s(buf []byte, n int) ([]uint64, error) {
	b, err := takeN(buf, n, 8)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return out, nil
}

func decodeInt64s(buf []byte, n int) ([]int64, error) {
	u64, err := decodeUint64s(buf, n)
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i, v := range u64 {
		out[i] = int64(v)
	}
	return out, nil
}

func decodeFloat32s(buf []byte, n int) ([]float32, error) {
	u32, err := decodeUint32s(buf, n)
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i, v := range u32 {
		out[i] = math.Float32frombits(v)
	}
	return out, nil
}

func decodeFloat64s(buf []byte, n int) ([]float64, error) {
	u64, err := decodeUint64s(buf, n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, v := range u64 {
		out[i] = math.Float64frombits(v)
	}
	return out, nil
}
