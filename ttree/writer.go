package ttree

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer is the TTree writer façade: a Tree's state plus the Sink it
// appends baskets and patches metadata through.
type Writer struct {
	tree *Tree
	sink Sink

	recordOffset    int64
	recordLength    int64
	relocationCount int
}

// RelocationCount returns the number of times the tree record has been
// moved to a new region.
func (w *Writer) RelocationCount() int { return w.relocationCount }

// Open creates a Writer over sink with no branches yet declared.
func Open(sink Sink, opts ...WriterOption) *Writer {
	return &Writer{tree: NewTree(opts...), sink: sink}
}

// Tree exposes the writer's underlying Tree state, e.g. to call AddBranch.
func (w *Writer) Tree() *Tree { return w.tree }

// Row is one entry's value for a single branch in an Extend batch: either
// a flat value (scalar or fixed-shape array, serialized per Branch.Type)
// or, for a KindJagged branch, a variable-length slice of that type.
type Row = interface{}

// Extend appends one batch of rows, one basket per branch: capacity
// check and growth, batch normalization, per-branch encoding, basket
// emission, then the in-place metadata patch-up.
func (w *Writer) Extend(batch map[string]Row) error {
	if err := w.checkBatchNames(batch); err != nil {
		return err
	}

	if w.tree.needsGrowth() {
		w.tree.grow()
		if err := w.relocateTreeRecord(); err != nil {
			return fmt.Errorf("relocating tree record: %w", err)
		}
	}

	batchSize, err := w.batchSize(batch)
	if err != nil {
		return err
	}

	// Counter branches are updated before the jagged branches that
	// depend on them, so a jagged basket never lands ahead of its
	// counter's fMaximum.
	for _, b := range w.tree.branches {
		if b.Kind == KindCounter {
			if err := w.emitFlatBasket(b, batch[b.Name], batchSize); err != nil {
				return fmt.Errorf("branch %q: %w", b.Name, err)
			}
		}
	}
	for _, b := range w.tree.branches {
		switch b.Kind {
		case KindCounter:
			continue // already emitted above
		case KindNormal:
			if err := w.emitFlatBasket(b, batch[b.Name], batchSize); err != nil {
				return fmt.Errorf("branch %q: %w", b.Name, err)
			}
		case KindJagged:
			if err := w.emitJaggedBasket(b, batch[b.Name]); err != nil {
				return fmt.Errorf("branch %q: %w", b.Name, err)
			}
		case KindRecord:
			for _, field := range b.Fields {
				sub, ok := batch[b.Name].(map[string]Row)
				if !ok {
					return fmt.Errorf("%w: record branch %q needs a map[string]Row value", ShapeError, b.Name)
				}
				fieldName := field.Name[len(b.Name)+1:]
				if err := w.emitFlatBasket(field, sub[fieldName], batchSize); err != nil {
					return fmt.Errorf("branch %q: %w", field.Name, err)
				}
			}
		}
	}

	w.tree.numEntries += int64(batchSize)
	w.tree.numBaskets++
	w.setFencepost()

	return w.patchMetadata()
}

// setFencepost writes basket_entry[num_baskets] == num_entries on every
// branch, whenever num_baskets still falls within the current basket
// table. It runs after every Extend call,
// not only when the tree grows, since growth only makes room for the
// slot — it does not know the entry count the next extend will reach.
func (w *Writer) setFencepost() {
	if w.tree.numBaskets >= w.tree.basketCapacity {
		return
	}
	for _, b := range w.tree.branches {
		if b.Kind == KindRecord {
			for _, field := range b.Fields {
				field.basketEntry[w.tree.numBaskets] = w.tree.numEntries
			}
			continue
		}
		b.basketEntry[w.tree.numBaskets] = w.tree.numEntries
	}
}

func (w *Writer) checkBatchNames(batch map[string]Row) error {
	seen := make(map[string]bool, len(batch))
	for _, b := range w.tree.branches {
		if b.Kind == KindRecord {
			if _, ok := batch[b.Name]; !ok {
				return fmt.Errorf("%w: missing record branch %q", NameError, b.Name)
			}
			seen[b.Name] = true
			continue
		}
		if _, ok := batch[b.Name]; !ok {
			return fmt.Errorf("%w: missing branch %q", NameError, b.Name)
		}
		seen[b.Name] = true
	}
	for name := range batch {
		if !seen[name] {
			return fmt.Errorf("%w: unexpected branch %q in batch", NameError, name)
		}
	}
	return nil
}

// batchSize returns the common row count across every non-jagged,
// non-record branch's value, erroring if they disagree.
func (w *Writer) batchSize(batch map[string]Row) (int, error) {
	size := -1
	for _, b := range w.tree.branches {
		if b.Kind == KindJagged || b.Kind == KindRecord {
			continue
		}
		n, err := flatRowCount(batch[b.Name], b)
		if err != nil {
			return 0, fmt.Errorf("branch %q: %w", b.Name, err)
		}
		if size == -1 {
			size = n
		} else if n != size {
			return 0, fmt.Errorf("%w: branch %q has %d rows, expected %d", ShapeError, b.Name, n, size)
		}
	}
	if size == -1 {
		size = 0
	}
	return size, nil
}

// emitFlatBasket converts value to big-endian bytes of b's dtype,
// verifying the per-row shape, updates a counter branch's tracked
// maximum, and writes exactly one basket.
func (w *Writer) emitFlatBasket(b *Branch, value Row, nRows int) error {
	n, err := flatRowCount(value, b)
	if err != nil {
		return err
	}
	if n != nRows {
		return fmt.Errorf("%w: branch %q has %d rows, batch has %d", ShapeError, b.Name, n, nRows)
	}

	payload, maxVal, err := encodeFlatValues(value, b.Type)
	if err != nil {
		return err
	}
	if b.Kind == KindCounter && maxVal > b.counterMaxValue {
		b.counterMaxValue = maxVal
	}

	seekKey, err := w.sink.Allocate(int64(len(payload)) + 256) // conservative upper bound on key overhead
	if err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}
	encoded := encodeFlatBasket(b, payload, int32(n), seekKey, w.recordOffset)
	if err := w.sink.Write(seekKey, encoded.bytes); err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}

	appendBasketTableEntry(b, w.tree.numBaskets, int32(len(encoded.bytes)), w.tree.numEntries, seekKey)
	w.tree.totalBytes += int64(len(encoded.bytes))
	return nil
}

// emitJaggedBasket materializes a variable-length row set (a [][]T) as a
// flat payload plus an offsets array, and writes one basket. The offsets
// are built from the rows themselves, starting at 0 and ending at the
// payload's element count, so no content lies outside them.
func (w *Writer) emitJaggedBasket(b *Branch, value Row) error {
	data, offsets, err := encodeJaggedValues(value, b.Type)
	if err != nil {
		return err
	}

	seekKey, err := w.sink.Allocate(int64(len(data)+4*len(offsets)) + 256)
	if err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}
	encoded, err := encodeJaggedBasket(b, data, offsets, seekKey, w.recordOffset)
	if err != nil {
		return err
	}
	if err := w.sink.Write(seekKey, encoded.bytes); err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}

	b.entryOffsetLen = encoded.entryOffsetLen
	appendBasketTableEntry(b, w.tree.numBaskets, int32(len(encoded.bytes)), w.tree.numEntries, seekKey)
	w.tree.totalBytes += int64(len(encoded.bytes))
	return nil
}

func appendBasketTableEntry(b *Branch, slot int, nbytes int32, entry int64, seek int64) {
	if slot < len(b.basketBytes) {
		b.basketBytes[slot] = nbytes
		b.basketEntry[slot] = entry
		b.basketSeek[slot] = seek
	}
}

// relocateTreeRecord re-serializes the tree record at a freshly allocated
// region, releasing the old one.
func (w *Writer) relocateTreeRecord() error {
	record := w.serializeTreeRecord()
	newOffset, err := w.sink.Allocate(int64(len(record)))
	if err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}
	if err := w.sink.Write(newOffset, record); err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}
	if w.recordLength > 0 {
		if err := w.sink.Release(w.recordOffset, w.recordOffset+w.recordLength); err != nil {
			return fmt.Errorf("%w: %v", IOError, err)
		}
		w.relocationCount++
	}
	w.recordOffset = newOffset
	w.recordLength = int64(len(record))
	w.tree.metadataStart = newOffset
	return nil
}

// patchMetadata writes back the tree-level counters and every branch's
// mutable metadata at the byte positions recorded when the record was
// last serialized: the tree counters at metadata_start, each branch's
// metadata, basket tables and counter leaf maximum at its own three
// positions. All patches land before the single Flush, so the patch-up is
// atomic from the caller's perspective. The positions stay valid between
// relocations because the record's layout depends only on the branch list
// and basket_capacity, both of which relocate the record when they change.
func (w *Writer) patchMetadata() error {
	if w.recordLength == 0 || w.recordSize() != w.recordLength {
		if err := w.relocateTreeRecord(); err != nil {
			return err
		}
		return w.sink.Flush()
	}

	if err := w.sink.Write(w.tree.metadataStart, w.treeCounters()); err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}
	for _, b := range w.tree.branches {
		if b.Kind == KindRecord {
			for _, field := range b.Fields {
				if err := w.patchBranch(field); err != nil {
					return err
				}
			}
			continue
		}
		if err := w.patchBranch(b); err != nil {
			return err
		}
	}
	return w.sink.Flush()
}

func (w *Writer) patchBranch(b *Branch) error {
	if err := w.sink.Write(w.recordOffset+b.metadataStart, branchMetadata(b)); err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}
	if err := w.sink.Write(w.recordOffset+b.basketMetadataStart, basketTables(b)); err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}
	if err := w.sink.Write(w.recordOffset+b.leafSpecialStart, int64Bytes(b.counterMaxValue)); err != nil {
		return fmt.Errorf("%w: %v", IOError, err)
	}
	return nil
}

// serializeTreeRecord renders the tree's mutable state as a single
// contiguous blob — the tree-level counters, then per branch its metadata,
// basket tables and counter leaf maximum — recording each block's byte
// position on the Tree and Branch as it goes, for patchMetadata's in-place
// writes. It does not attempt ROOT's byte-exact `_ttree20_format1`
// object-stream layout (out of scope without a real ROOT reader to
// validate against).
func (w *Writer) serializeTreeRecord() []byte {
	buf := make([]byte, 0, int(w.recordSize()))
	buf = append(buf, w.treeCounters()...)

	for _, b := range w.tree.branches {
		if b.Kind == KindRecord {
			for _, field := range b.Fields {
				buf = appendBranchRecord(buf, field)
			}
			continue
		}
		buf = appendBranchRecord(buf, b)
	}
	return buf
}

// recordSize returns the serialized tree record's length, derived from the
// branch list and basket_capacity alone so patchMetadata can detect a
// layout change without serializing.
func (w *Writer) recordSize() int64 {
	n := int64(24)
	perBranch := int64(4 + 20*w.tree.basketCapacity + 8)
	for _, b := range w.tree.branches {
		if b.Kind == KindRecord {
			n += int64(len(b.Fields)) * perBranch
			continue
		}
		n += perBranch
	}
	return n
}

func (w *Writer) treeCounters() []byte {
	buf := make([]byte, 0, 24)
	buf = append(buf, int64Bytes(w.tree.numEntries)...)
	buf = append(buf, int32Bytes(int32(w.tree.numBaskets))...)
	buf = append(buf, int32Bytes(int32(w.tree.basketCapacity))...)
	buf = append(buf, int64Bytes(w.tree.totalBytes)...)
	return buf
}

func appendBranchRecord(buf []byte, b *Branch) []byte {
	b.metadataStart = int64(len(buf))
	buf = append(buf, branchMetadata(b)...)
	b.basketMetadataStart = int64(len(buf))
	buf = append(buf, basketTables(b)...)
	b.leafSpecialStart = int64(len(buf))
	buf = append(buf, int64Bytes(b.counterMaxValue)...)
	return buf
}

func branchMetadata(b *Branch) []byte {
	return int32Bytes(b.entryOffsetLen)
}

func basketTables(b *Branch) []byte {
	buf := make([]byte, 0, 20*len(b.basketBytes))
	for _, v := range b.basketBytes {
		buf = append(buf, int32Bytes(v)...)
	}
	for _, v := range b.basketEntry {
		buf = append(buf, int64Bytes(v)...)
	}
	for _, v := range b.basketSeek {
		buf = append(buf, int64Bytes(v)...)
	}
	return buf
}

// Flush forces the sink to durably persist pending writes.
func (w *Writer) Flush() error { return w.sink.Flush() }

func flatRowCount(value Row, b *Branch) (int, error) {
	switch v := value.(type) {
	case []float64:
		return divideExact(len(v), b.rowShapeSize(), b)
	case []float32:
		return divideExact(len(v), b.rowShapeSize(), b)
	case []int32:
		return divideExact(len(v), b.rowShapeSize(), b)
	case []int64:
		return divideExact(len(v), b.rowShapeSize(), b)
	case []bool:
		return divideExact(len(v), b.rowShapeSize(), b)
	default:
		return 0, fmt.Errorf("%w: branch %q received unsupported value type %T", ShapeError, b.Name, value)
	}
}

func divideExact(total, per int, b *Branch) (int, error) {
	if per == 0 || total%per != 0 {
		return 0, fmt.Errorf("%w: branch %q length %d is not a multiple of row shape %d", ShapeError, b.Name, total, per)
	}
	return total / per, nil
}

func encodeFlatValues(value Row, typ LeafType) (payload []byte, maxVal int64, err error) {
	switch v := value.(type) {
	case []float64:
		if typ != Float64 {
			return nil, 0, fmt.Errorf("%w: value is []float64, branch type is %v", ShapeError, typ)
		}
		buf := make([]byte, 8*len(v))
		for i, x := range v {
			binary.BigEndian.PutUint64(buf[i*8:], math.Float64bits(x))
		}
		return buf, 0, nil
	case []float32:
		if typ != Float32 {
			return nil, 0, fmt.Errorf("%w: value is []float32, branch type is %v", ShapeError, typ)
		}
		buf := make([]byte, 4*len(v))
		for i, x := range v {
			binary.BigEndian.PutUint32(buf[i*4:], math.Float32bits(x))
		}
		return buf, 0, nil
	case []int32:
		if typ != Int32 {
			return nil, 0, fmt.Errorf("%w: value is []int32, branch type is %v", ShapeError, typ)
		}
		buf := make([]byte, 4*len(v))
		var max int64
		for i, x := range v {
			binary.BigEndian.PutUint32(buf[i*4:], uint32(x))
			if int64(x) > max {
				max = int64(x)
			}
		}
		return buf, max, nil
	case []int64:
		if typ != Int64 {
			return nil, 0, fmt.Errorf("%w: value is []int64, branch type is %v", ShapeError, typ)
		}
		buf := make([]byte, 8*len(v))
		var max int64
		for i, x := range v {
			binary.BigEndian.PutUint64(buf[i*8:], uint64(x))
			if x > max {
				max = x
			}
		}
		return buf, max, nil
	case []bool:
		if typ != Bool {
			return nil, 0, fmt.Errorf("%w: value is []bool, branch type is %v", ShapeError, typ)
		}
		buf := make([]byte, len(v))
		for i, x := range v {
			if x {
				buf[i] = 1
			}
		}
		return buf, 0, nil
	default:
		return nil, 0, fmt.Errorf("%w: unsupported value type %T", ShapeError, value)
	}
}

// encodeJaggedValues flattens a jagged branch's per-row slices into one
// contiguous big-endian payload plus an offsets array, dispatching on typ
// the same way encodeFlatValues does for flat branches.
func encodeJaggedValues(value Row, typ LeafType) (data []byte, offsets []int32, err error) {
	switch rows := value.(type) {
	case [][]float64:
		if typ != Float64 {
			return nil, nil, fmt.Errorf("%w: jagged value is [][]float64 rows, branch type is %v", ShapeError, typ)
		}
		offsets = rowOffsets(rowLengths(rows))
		data = make([]byte, 8*offsets[len(offsets)-1])
		var i int
		for _, row := range rows {
			for _, x := range row {
				binary.BigEndian.PutUint64(data[i*8:], math.Float64bits(x))
				i++
			}
		}
		return data, offsets, nil
	case [][]float32:
		if typ != Float32 {
			return nil, nil, fmt.Errorf("%w: jagged value is [][]float32 rows, branch type is %v", ShapeError, typ)
		}
		offsets = rowOffsets(rowLengths(rows))
		data = make([]byte, 4*offsets[len(offsets)-1])
		var i int
		for _, row := range rows {
			for _, x := range row {
				binary.BigEndian.PutUint32(data[i*4:], math.Float32bits(x))
				i++
			}
		}
		return data, offsets, nil
	case [][]int32:
		if typ != Int32 {
			return nil, nil, fmt.Errorf("%w: jagged value is [][]int32 rows, branch type is %v", ShapeError, typ)
		}
		offsets = rowOffsets(rowLengths(rows))
		data = make([]byte, 4*offsets[len(offsets)-1])
		var i int
		for _, row := range rows {
			for _, x := range row {
				binary.BigEndian.PutUint32(data[i*4:], uint32(x))
				i++
			}
		}
		return data, offsets, nil
	case [][]int64:
		if typ != Int64 {
			return nil, nil, fmt.Errorf("%w: jagged value is [][]int64 rows, branch type is %v", ShapeError, typ)
		}
		offsets = rowOffsets(rowLengths(rows))
		data = make([]byte, 8*offsets[len(offsets)-1])
		var i int
		for _, row := range rows {
			for _, x := range row {
				binary.BigEndian.PutUint64(data[i*8:], uint64(x))
				i++
			}
		}
		return data, offsets, nil
	default:
		return nil, nil, fmt.Errorf("%w: unsupported jagged value type %T", ShapeError, value)
	}
}

func rowLengths[T any](rows [][]T) []int {
	lens := make([]int, len(rows))
	for i, row := range rows {
		lens[i] = len(row)
	}
	return lens
}

func rowOffsets(lens []int) []int32 {
	offsets := make([]int32, len(lens)+1)
	for i, n := range lens {
		offsets[i+1] = offsets[i] + int32(n)
	}
	return offsets
}
