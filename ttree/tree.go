package ttree

import (
	"fmt"

	"github.com/google/uuid"
)

// Tree is the writer's tree-level state: its ordered
// branch list, basket-table sizing, and the sink offset of the serialized
// tree record whose leading bytes hold its mutable counters.
type Tree struct {
	branches []*Branch
	byName   map[string]*Branch

	numEntries     int64
	numBaskets     int
	basketCapacity int
	resizeFactor   float64

	// metadataStart is the absolute sink offset of the current tree
	// record, whose first bytes hold numEntries/numBaskets and friends.
	metadataStart int64

	// totalBytes is an uncompressed running total, kept even though this
	// writer never compresses (every basket's fNbytes is fKeylen + fObjlen).
	totalBytes int64

	// uuid identifies this tree the way a ROOT TFile gives every named
	// object a TUUID.
	uuid uuid.UUID
}

// NewTree creates an empty Tree with no branches.
func NewTree(opts ...WriterOption) *Tree {
	cfg := newWriterConfig(opts...)
	return &Tree{
		byName:         make(map[string]*Branch),
		basketCapacity: cfg.basketCapacity,
		resizeFactor:   cfg.resizeFactor,
		uuid:           uuid.New(),
	}
}

// UUID returns the tree's generated identifier.
func (t *Tree) UUID() uuid.UUID { return t.uuid }

// NumEntries returns the total number of rows written so far.
func (t *Tree) NumEntries() int64 { return t.numEntries }

// TotalBytes returns the running uncompressed byte total.
func (t *Tree) TotalBytes() int64 { return t.totalBytes }

// Branches returns the tree's top-level branch descriptors in declaration
// order (record branches are listed once, not expanded).
func (t *Tree) Branches() []*Branch { return t.branches }

// BasketCapacity returns the current size of every branch's basket
// tables.
func (t *Tree) BasketCapacity() int { return t.basketCapacity }

// MetadataStart returns the absolute byte offset of the tree-level
// counters within the sink, i.e. the start of the current tree record.
func (t *Tree) MetadataStart() int64 { return t.metadataStart }

// NumBaskets returns the number of baskets written so far per branch.
func (t *Tree) NumBaskets() int { return t.numBaskets }

// AddBranch declares a new scalar, fixed-shape, or jagged branch. For a
// jagged branch, counterName must already name an existing KindCounter
// branch.
func (t *Tree) AddBranch(name string, typ LeafType, shape []int, kind BranchKind, counterName string) (*Branch, error) {
	if _, exists := t.byName[name]; exists {
		return nil, fmt.Errorf("%w: branch %q already exists", NameError, name)
	}

	b, err := t.newBranch(name, typ, shape, kind, counterName)
	if err != nil {
		return nil, err
	}

	t.branches = append(t.branches, b)
	t.byName[name] = b
	return b, nil
}

// newBranch builds a Branch without registering it in t.branches/t.byName,
// for use by AddBranch directly and by AddRecordBranch for sub-branches
// that are only reachable through their parent's Fields.
func (t *Tree) newBranch(name string, typ LeafType, shape []int, kind BranchKind, counterName string) (*Branch, error) {
	b := &Branch{
		Name:        name,
		Kind:        kind,
		Type:        typ,
		Shape:       append([]int(nil), shape...),
		CounterName: counterName,
		basketBytes: make([]int32, t.basketCapacity),
		basketEntry: make([]int64, t.basketCapacity),
		basketSeek:  make([]int64, t.basketCapacity),
	}

	if kind == KindJagged {
		counter, ok := t.byName[counterName]
		if !ok || counter.Kind != KindCounter {
			return nil, fmt.Errorf("%w: jagged branch %q needs an existing counter branch %q", NameError, name, counterName)
		}
		b.counter = counter
	}

	b.Title = branchTitle(b)
	return b, nil
}

// AddRecordBranch declares a virtual record branch that expands into one
// sub-branch per field, named "<name>.<field>". The
// sub-branches are only reachable through the record's Fields, not as
// independent top-level branches: Extend expects one map[string]Row value
// keyed by the record's own name, not one entry per field.
func (t *Tree) AddRecordBranch(name string, fields map[string]LeafType) (*Branch, error) {
	if _, exists := t.byName[name]; exists {
		return nil, fmt.Errorf("%w: branch %q already exists", NameError, name)
	}
	rec := &Branch{Name: name, Kind: KindRecord}
	for field, typ := range fields {
		sub, err := t.newBranch(name+"."+field, typ, nil, KindNormal, "")
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, sub)
	}
	t.branches = append(t.branches, rec)
	t.byName[name] = rec
	return rec, nil
}

// needsGrowth reports whether the next basket would take the last slot of
// the basket tables, leaving no slot for the fencepost entry after it.
func (t *Tree) needsGrowth() bool {
	return t.numBaskets >= t.basketCapacity-1
}

// grow raises basket_capacity to the larger of capacity+1 and
// capacity*resizeFactor (truncated to an int) and reallocates every
// branch's three basket-table arrays at that length, copying the existing
// entries. It does not write the fencepost entry; see growBranchTables.
func (t *Tree) grow() {
	oldCapacity := t.basketCapacity
	newCapacity := oldCapacity + 1
	if grown := int(float64(oldCapacity) * t.resizeFactor); grown > newCapacity {
		newCapacity = grown
	}
	t.basketCapacity = newCapacity

	for _, b := range t.branches {
		if b.Kind == KindRecord {
			for _, field := range b.Fields {
				growBranchTables(field, newCapacity)
			}
			continue
		}
		growBranchTables(b, newCapacity)
	}
}

// growBranchTables only widens the basket tables; the fencepost entry at
// the new num_baskets slot is (re)written by Writer.Extend once the batch
// that triggered the growth has actually been counted.
func growBranchTables(b *Branch, newCapacity int) {
	b.basketBytes = growInt32(b.basketBytes, newCapacity)
	b.basketEntry = growInt64(b.basketEntry, newCapacity)
	b.basketSeek = growInt64(b.basketSeek, newCapacity)
}

func growInt32(s []int32, n int) []int32 {
	grown := make([]int32, n)
	copy(grown, s)
	return grown
}

func growInt64(s []int64, n int) []int64 {
	grown := make([]int64, n)
	copy(grown, s)
	return grown
}
