// Package format holds the on-disk enumerations shared between the rntuple
// and compress packages: the RNTuple column type table and the compression
// codec identifiers used to select a Decompressor.
//
// The column type codes are banded by encoding: offset columns in the
// lowest band, split-encoded ids 14..21 and 26..28, zig-zag ids 26..28,
// delta ids 14..15, with the predicate methods below keyed to those bands.
package format

// ColumnType identifies the physical, on-disk representation of a column.
type ColumnType uint16

const (
	Index32 ColumnType = iota // offset column, 32-bit exclusive-end boundaries
	Index64                   // offset column, 64-bit exclusive-end boundaries
	Switch                    // 64-bit discriminated-union selector
	Byte                      // raw uninterpreted bytes
	Char                      // 1-byte string payload element
	Bit                       // 1-bit boolean, 8 per byte
	Real64
	Real32
	Real16
	Int64
	UInt64
	Int32
	UInt32
	Int16
	SplitInt16       // split
	SplitUInt16      // split
	SplitInt32       // split
	SplitUInt32      // split
	SplitInt64       // split
	SplitUInt64      // split
	SplitReal32      // split
	SplitReal64      // split
	UInt8
	UInt16
	reserved24
	reserved25
	SplitZigzagInt16 // split, zigzag
	SplitZigzagInt32 // split, zigzag
	SplitZigzagInt64 // split, zigzag
)

func (t ColumnType) String() string {
	if s, ok := columnTypeNames[t]; ok {
		return s
	}
	return "Unknown"
}

var columnTypeNames = map[ColumnType]string{
	Index32:          "Index32",
	Index64:          "Index64",
	Switch:           "Switch",
	Byte:             "Byte",
	Char:             "Char",
	Bit:              "Bit",
	Real64:           "Real64",
	Real32:           "Real32",
	Real16:           "Real16",
	Int64:            "Int64",
	UInt64:           "UInt64",
	Int32:            "Int32",
	UInt32:           "UInt32",
	Int16:            "Int16",
	SplitInt16:       "SplitInt16",
	SplitUInt16:      "SplitUInt16",
	SplitInt32:       "SplitInt32",
	SplitUInt32:      "SplitUInt32",
	SplitInt64:       "SplitInt64",
	SplitUInt64:      "SplitUInt64",
	SplitReal32:      "SplitReal32",
	SplitReal64:      "SplitReal64",
	UInt8:            "UInt8",
	UInt16:           "UInt16",
	SplitZigzagInt16: "SplitZigzagInt16",
	SplitZigzagInt32: "SplitZigzagInt32",
	SplitZigzagInt64: "SplitZigzagInt64",
}

// IsOffsetIndex reports whether this column stores exclusive-end row
// boundaries; decoded values of such a column are prepended with a single
// leading zero.
func (t ColumnType) IsOffsetIndex() bool { return t == Index32 || t == Index64 }

// IsSplit reports whether the on-disk bytes are transposed byte lanes that
// must be un-interleaved before use.
func (t ColumnType) IsSplit() bool {
	switch t {
	case SplitInt16, SplitUInt16, SplitInt32, SplitUInt32, SplitInt64, SplitUInt64,
		SplitReal32, SplitReal64, SplitZigzagInt16, SplitZigzagInt32, SplitZigzagInt64:
		return true
	}
	return false
}

// IsZigzag reports whether decoded elements must be un-zigzagged.
func (t ColumnType) IsZigzag() bool {
	switch t {
	case SplitZigzagInt16, SplitZigzagInt32, SplitZigzagInt64:
		return true
	}
	return false
}

// IsDelta reports whether decoded elements must be replaced with their
// running prefix sum.
func (t ColumnType) IsDelta() bool {
	switch t {
	case SplitInt16, SplitUInt16:
		return true
	}
	return false
}

// IsBit reports whether this column stores one boolean per bit.
func (t ColumnType) IsBit() bool { return t == Bit }

// IsSwitch reports whether this column stores discriminated-union tags.
func (t ColumnType) IsSwitch() bool { return t == Switch }

// IsChar reports whether this column is the data half of a string field.
func (t ColumnType) IsChar() bool { return t == Char }

// ItemSize returns the width, in bytes, of one on-disk element (ignoring
// Bit, whose elements are sub-byte).
func (t ColumnType) ItemSize() int {
	switch t {
	case Byte, Char, Bit, UInt8:
		return 1
	case Int16, UInt16, SplitInt16, SplitUInt16, SplitZigzagInt16, Real16:
		return 2
	case Int32, UInt32, SplitInt32, SplitUInt32, SplitReal32, SplitZigzagInt32, Real32:
		return 4
	case Int64, UInt64, SplitInt64, SplitUInt64, SplitReal64, SplitZigzagInt64, Real64, Switch, Index64:
		return 8
	case Index32:
		return 4
	default:
		return 0
	}
}

// CompressionCodec identifies the algorithm used to compress an envelope or
// page region, as reported out-of-band by the byte-range source; RNTuple
// itself does not encode the codec on disk, so this enum exists purely to
// select a registered compress.Codec at the call site.
type CompressionCodec uint8

const (
	Uncompressed CompressionCodec = iota
	Zlib
	LZMA
	LZ4
	Zstd
	Snappy
	Brotli
)

func (c CompressionCodec) String() string {
	switch c {
	case Uncompressed:
		return "none"
	case Zlib:
		return "zlib"
	case LZMA:
		return "lzma"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	case Snappy:
		return "snappy"
	case Brotli:
		return "brotli"
	default:
		return "unknown"
	}
}
