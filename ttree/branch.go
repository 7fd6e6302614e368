package ttree

import (
	"fmt"
	"strings"
)

// LeafType is a branch's primitive element dtype, title-encoded by one of
// the letters O,B,b,S,s,I,i,L,l,F,D (case selecting signed vs unsigned).
type LeafType uint8

const (
	Bool LeafType = iota
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
)

// Letter returns the title-encoding letter for this type.
func (t LeafType) Letter() string {
	switch t {
	case Bool:
		return "O"
	case Int8:
		return "B"
	case UInt8:
		return "b"
	case Int16:
		return "S"
	case UInt16:
		return "s"
	case Int32:
		return "I"
	case UInt32:
		return "i"
	case Int64:
		return "L"
	case UInt64:
		return "l"
	case Float32:
		return "F"
	case Float64:
		return "D"
	default:
		return "?"
	}
}

// ItemSize returns the on-disk width, in bytes, of one element.
func (t LeafType) ItemSize() int {
	switch t {
	case Bool, Int8, UInt8:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, UInt32, Float32:
		return 4
	case Int64, UInt64, Float64:
		return 8
	default:
		return 0
	}
}

// BranchKind classifies how a branch's values are produced: flat numeric,
// a counter tracking its maximum, jagged rows sized by a counter branch,
// or a virtual record grouping that expands to one branch per field.
type BranchKind uint8

const (
	KindNormal BranchKind = iota
	KindCounter
	KindJagged
	KindRecord
)

// Branch is one branch descriptor: its identity, shape, and
// the three on-disk basket tables sized to the tree's basket_capacity.
type Branch struct {
	Name  string
	Title string
	Kind  BranchKind
	Type  LeafType

	// Shape is the fixed per-row array shape for a regular
	// multi-dimensional branch; nil/empty means scalar.
	Shape []int

	// CounterName names this jagged branch's counter branch.
	CounterName string
	counter     *Branch

	// counterMaxValue tracks a counter branch's running maximum, written
	// back into the leaf's special struct on every extend.
	counterMaxValue int64

	// Fields holds the sub-branches of a KindRecord virtual branch,
	// named "<Name>.<field>".
	Fields []*Branch

	basketBytes []int32
	basketEntry []int64
	basketSeek  []int64

	// entryOffsetLen is 4*(len(offsets)-1) for the branch's most recent
	// jagged basket.
	entryOffsetLen int32

	// Byte positions of this branch's mutable metadata within the
	// serialized tree record, recorded at serialization time and patched
	// in place on every extend: branch-level
	// metadata, the three basket tables, and the counter leaf's special
	// struct holding its tracked maximum.
	metadataStart       int64
	basketMetadataStart int64
	leafSpecialStart    int64
}

// branchTitle builds the "name[d1][d2]/<letter>" title string encoding
// the branch's fixed shape and leaf dtype; a jagged branch names its
// counter in place of a dimension.
func branchTitle(b *Branch) string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	for _, d := range b.Shape {
		fmt.Fprintf(&sb, "[%d]", d)
	}
	if b.Kind == KindJagged {
		fmt.Fprintf(&sb, "[%s]", b.CounterName)
	}
	sb.WriteByte('/')
	sb.WriteString(b.Type.Letter())
	return sb.String()
}

// rowShapeSize returns the number of elements one row of this branch
// occupies (product of Shape, 1 for a scalar).
func (b *Branch) rowShapeSize() int {
	n := 1
	for _, d := range b.Shape {
		n *= d
	}
	return n
}

// BasketBytes returns the branch's fBasketBytes table: each basket's
// on-disk size in bytes.
func (b *Branch) BasketBytes() []int32 { return b.basketBytes }

// BasketEntry returns the branch's fBasketEntry table: the starting
// entry index of each basket, with a trailing fencepost entry.
func (b *Branch) BasketEntry() []int64 { return b.basketEntry }

// BasketSeek returns the branch's fBasketSeek table: each basket's file
// offset.
func (b *Branch) BasketSeek() []int64 { return b.basketSeek }

// EntryOffsetLen returns 4*(len(offsets)-1) for this branch's most
// recently written jagged basket.
func (b *Branch) EntryOffsetLen() int32 { return b.entryOffsetLen }

// CounterMaxValue returns the running maximum value tracked for a
// KindCounter branch.
func (b *Branch) CounterMaxValue() int64 { return b.counterMaxValue }
