package rntuple

import (
	"fmt"

	"github.com/lobis/uproot-go/format"

	"github.com/lobis/uproot-go/internal/bits"
)

// DecodePage expands one page's raw, already-fetched bytes into typed
// column values. raw must already be decompressed
// to numElements * columnType.ItemSize() bytes (or the bit-packed
// equivalent for Bit columns). This is the single-page primitive only: it
// does not apply the offset-index leading zero, zig-zag or delta
// (prefix-sum) steps, since those apply after all pages are concatenated —
// once per (column id, cluster range), not once per page.
// Callers that need a whole column's values across a cluster range must go
// through Reader.DecodeColumn, which concatenates every page this function
// returns and then applies those column-wide steps exactly once.
//
// The returned slice's concrete element type depends on columnType:
//
//	Bit                      -> []bool
//	Real32, SplitReal32      -> []float32
//	Real64, SplitReal64      -> []float64
//	Real16                   -> []uint16 (half-float bits, unconverted)
//	Int16/32/64, SplitInt16/32/64 -> []int16 / []int32 / []int64 (zigzag-free splits only; see below)
//	SplitZigzagInt16/32/64   -> []uint16 / []uint32 / []uint64 (still zigzag-encoded)
//	UInt8/16/32/64 and splits, Byte, Char -> []uint8 / []uint16 / []uint32 / []uint64
//	Index32, Index64         -> []uint32 / []uint64 (no leading zero yet)
//	Switch                   -> []SwitchValue
func DecodePage(raw []byte, columnType format.ColumnType, numElements int) (interface{}, error) {
	switch {
	case columnType.IsBit():
		return bits.UnpackBool(nil, raw, numElements), nil
	case columnType.IsSwitch():
		return decodeSwitch(raw, numElements)
	case columnType.IsOffsetIndex():
		return decodeOffsetValues(raw, columnType, numElements)
	default:
		return decodeNumeric(raw, columnType, numElements)
	}
}

// pageUncompressedSize returns a page's decompressed byte length from its
// element count and column type: n_read =
// ceil(n / (is_bit ? 8 : 1)); uncompressed_bytes = n_read * itemsize(dtype).
func pageUncompressedSize(columnType format.ColumnType, numElements int) int {
	if columnType.IsBit() {
		return (numElements + 7) / 8
	}
	return numElements * columnType.ItemSize()
}

// concatTyped appends every page's decoded values, all of concrete type
// []T, into one contiguous slice, in page order.
func concatTyped[T any](pages []interface{}) ([]T, error) {
	out := make([]T, 0)
	for _, p := range pages {
		v, ok := p.([]T)
		if !ok {
			return nil, fmt.Errorf("%w: expected %T page, got %T", UnsupportedFeature, out, p)
		}
		out = append(out, v...)
	}
	return out, nil
}

// concatPages concatenates a column's already-decoded pages (each the
// result of DecodePage, in cluster/page order) into one contiguous buffer
// of the shared concrete element type.
func concatPages(pages []interface{}) (interface{}, error) {
	if len(pages) == 0 {
		return nil, nil
	}
	switch pages[0].(type) {
	case []bool:
		return concatTyped[bool](pages)
	case []byte:
		return concatTyped[byte](pages)
	case []uint16:
		return concatTyped[uint16](pages)
	case []int16:
		return concatTyped[int16](pages)
	case []uint32:
		return concatTyped[uint32](pages)
	case []int32:
		return concatTyped[int32](pages)
	case []uint64:
		return concatTyped[uint64](pages)
	case []int64:
		return concatTyped[int64](pages)
	case []float32:
		return concatTyped[float32](pages)
	case []float64:
		return concatTyped[float64](pages)
	case []SwitchValue:
		return concatTyped[SwitchValue](pages)
	default:
		return nil, fmt.Errorf("%w: unexpected page value type %T", UnsupportedFeature, pages[0])
	}
}

// finishColumn applies, over a column's full per-cluster-range
// concatenation and exactly once: the offset-index leading zero, zig-zag
// decoding and delta
// (running prefix-sum) decoding. Column types needing none of these are
// returned unchanged.
func finishColumn(columnType format.ColumnType, concatenated interface{}) (interface{}, error) {
	switch {
	case columnType.IsOffsetIndex():
		switch columnType {
		case format.Index32:
			v, _ := concatenated.([]uint32)
			out := make([]uint32, 0, len(v)+1)
			out = append(out, 0)
			return append(out, v...), nil
		case format.Index64:
			v, _ := concatenated.([]uint64)
			out := make([]uint64, 0, len(v)+1)
			out = append(out, 0)
			return append(out, v...), nil
		}
	case columnType.IsZigzag():
		switch columnType {
		case format.SplitZigzagInt16:
			v, _ := concatenated.([]uint16)
			out := make([]int16, len(v))
			for i, u := range v {
				out[i] = bits.ZigZagDecode16(u)
			}
			return out, nil
		case format.SplitZigzagInt32:
			v, _ := concatenated.([]uint32)
			out := make([]int32, len(v))
			for i, u := range v {
				out[i] = bits.ZigZagDecode32(u)
			}
			return out, nil
		case format.SplitZigzagInt64:
			v, _ := concatenated.([]uint64)
			out := make([]int64, len(v))
			for i, u := range v {
				out[i] = bits.ZigZagDecode64(u)
			}
			return out, nil
		}
	case columnType.IsDelta():
		switch columnType {
		case format.SplitInt16:
			v, _ := concatenated.([]int16)
			bits.PrefixSum16(v)
			return v, nil
		case format.SplitUInt16:
			v, _ := concatenated.([]uint16)
			signed := make([]int16, len(v))
			for i, u := range v {
				signed[i] = int16(u)
			}
			bits.PrefixSum16(signed)
			out := make([]uint16, len(v))
			for i, s := range signed {
				out[i] = uint16(s)
			}
			return out, nil
		}
	}
	return concatenated, nil
}

// SwitchValue is one decoded entry of a Switch column:
// the low 44 bits of the 64-bit word give the index into the referenced
// collection, the high 20 bits minus one give the selected variant tag. A
// tag of -1 means "this entry selects no variant" (the member is absent).
type SwitchValue struct {
	Index int64
	Tag   int32
}

const (
	switchIndexBits = 44
	switchIndexMask = (uint64(1) << switchIndexBits) - 1
)

func decodeSwitch(raw []byte, numElements int) ([]SwitchValue, error) {
	words, err := decodeUint64s(raw, numElements)
	if err != nil {
		return nil, err
	}
	out := make([]SwitchValue, numElements)
	for i, w := range words {
		out[i] = SwitchValue{
			Index: int64(w & switchIndexMask),
			Tag:   int32(w>>switchIndexBits) - 1,
		}
	}
	return out, nil
}

// decodeOffsetValues decodes an Index32/Index64 column's raw element
// values for one page. The leading zero every offset-index column
// implicitly starts with belongs once per (column, cluster range), not
// once per page; finishColumn adds it after every page has been
// concatenated.
func decodeOffsetValues(raw []byte, columnType format.ColumnType, numElements int) (interface{}, error) {
	switch columnType {
	case format.Index32:
		return decodeUint32s(raw, numElements)
	case format.Index64:
		return decodeUint64s(raw, numElements)
	default:
		return nil, fmt.Errorf("%w: %s is not an offset-index type", FormatError, columnType)
	}
}

// decodeNumeric applies un-splitting, the only per-page step left once
// zig-zag and delta (prefix-sum) decoding have moved to finishColumn's
// post-concatenation pass.
func decodeNumeric(raw []byte, columnType format.ColumnType, numElements int) (interface{}, error) {
	width := columnType.ItemSize()
	if width == 0 {
		return nil, fmt.Errorf("%w: column type %s has no fixed element width", UnsupportedFeature, columnType)
	}

	buf := raw
	if columnType.IsSplit() {
		unsplit := make([]byte, len(raw))
		bits.Unsplit(unsplit, raw, width)
		buf = unsplit
	}

	switch width {
	case 1:
		return decodeWidth1(buf, columnType, numElements)
	case 2:
		return decodeWidth2(buf, columnType, numElements)
	case 4:
		return decodeWidth4(buf, columnType, numElements)
	case 8:
		return decodeWidth8(buf, columnType, numElements)
	default:
		return nil, fmt.Errorf("%w: unsupported element width %d for %s", UnsupportedFeature, width, columnType)
	}
}

func decodeWidth1(buf []byte, columnType format.ColumnType, n int) (interface{}, error) {
	vals, err := takeN(buf, n, 1)
	if err != nil {
		return nil, err
	}
	switch columnType {
	case format.Byte, format.Char:
		return append([]byte(nil), vals...), nil
	case format.UInt8:
		return append([]uint8(nil), vals...), nil
	default:
		return nil, fmt.Errorf("%w: unexpected 1-byte column type %s", UnsupportedFeature, columnType)
	}
}

func decodeWidth2(buf []byte, columnType format.ColumnType, n int) (interface{}, error) {
	switch columnType {
	case format.Real16, format.SplitZigzagInt16, format.UInt16, format.SplitUInt16:
		// Zigzag- and delta-encoded columns are left in their raw,
		// still-encoded form here; finishColumn decodes zigzag and
		// un-deltas once over the whole column-range concatenation.
		return decodeUint16s(buf, n)
	case format.Int16, format.SplitInt16:
		u16, err := decodeUint16s(buf, n)
		if err != nil {
			return nil, err
		}
		out := make([]int16, n)
		for i, v := range u16 {
			out[i] = int16(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unexpected 2-byte column type %s", UnsupportedFeature, columnType)
	}
}

func decodeWidth4(buf []byte, columnType format.ColumnType, n int) (interface{}, error) {
	switch columnType {
	case format.Real32, format.SplitReal32:
		return decodeFloat32s(buf, n)
	case format.Int32, format.SplitInt32:
		return decodeInt32s(buf, n)
	case format.UInt32, format.SplitUInt32, format.SplitZigzagInt32:
		// SplitZigzagInt32 is left zigzag-encoded; finishColumn decodes it
		// once over the concatenated column.
		return decodeUint32s(buf, n)
	default:
		return nil, fmt.Errorf("%w: unexpected 4-byte column type %s", UnsupportedFeature, columnType)
	}
}

func decodeWidth8(buf []byte, columnType format.ColumnType, n int) (interface{}, error) {
	switch columnType {
	case format.Real64, format.SplitReal64:
		return decodeFloat64s(buf, n)
	case format.Int64, format.SplitInt64:
		return decodeInt64s(buf, n)
	case format.UInt64, format.SplitUInt64, format.Switch, format.SplitZigzagInt64:
		// SplitZigzagInt64 is left zigzag-encoded; finishColumn decodes it
		// once over the concatenated column.
		return decodeUint64s(buf, n)
	default:
		return nil, fmt.Errorf("%w: unexpected 8-byte column type %s", UnsupportedFeature, columnType)
	}
}
