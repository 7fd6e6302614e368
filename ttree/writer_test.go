package ttree_test

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lobis/uproot-go/internal/difftest"
	"github.com/lobis/uproot-go/ttree"
)

func newScalarTree(t *testing.T, capacity int, resizeFactor float64) (*ttree.Writer, *ttree.Branch) {
	t.Helper()
	w, b, _ := newScalarTreeWithSink(t, capacity, resizeFactor)
	return w, b
}

func newScalarTreeWithSink(t *testing.T, capacity int, resizeFactor float64) (*ttree.Writer, *ttree.Branch, *ttree.MemorySink) {
	t.Helper()
	sink := ttree.NewMemorySink()
	w := ttree.Open(sink, ttree.WithBasketCapacity(capacity), ttree.WithResizeFactor(resizeFactor))
	b, err := w.Tree().AddBranch("x", ttree.Float64, nil, ttree.KindNormal, "")
	require.NoError(t, err)
	return w, b, sink
}

// Exhausting the basket capacity doubles the tables and relocates the
// tree record exactly once, releasing the old region.
func TestExtendCapacityDoubling(t *testing.T) {
	w, b, sink := newScalarTreeWithSink(t, 2, 2.0)

	batch0 := []float64{1, 2, 3}
	batch1 := []float64{4, 5}
	batch2 := []float64{6, 7, 8, 9}

	require.NoError(t, w.Extend(map[string]ttree.Row{"x": batch0}))
	require.NoError(t, w.Extend(map[string]ttree.Row{"x": batch1}))
	require.NoError(t, w.Extend(map[string]ttree.Row{"x": batch2}))

	require.Equal(t, 4, w.Tree().BasketCapacity())
	require.EqualValues(t, len(batch0)+len(batch1)+len(batch2), w.Tree().NumEntries())
	require.Equal(t, int64(len(batch0)+len(batch1)), b.BasketEntry()[2])
	require.Equal(t, 1, w.RelocationCount())
	// The first record's region was released and nothing since has been
	// small enough to reuse it, so it is still sitting in the free list.
	require.Positive(t, sink.FreeBytes())

	// The patched-in-place tree counters at metadata_start reflect the
	// final entry total.
	start := w.Tree().MetadataStart()
	require.EqualValues(t, w.Tree().NumEntries(), binary.BigEndian.Uint64(sink.Bytes()[start:start+8]))
}

// Every extend must honor the fencepost invariant
// (basket_entry[num_baskets] == num_entries), not only the call that
// happens to trigger growth.
func TestExtendFencepostEveryCall(t *testing.T) {
	w, b := newScalarTree(t, 10, 1.5)

	total := int64(0)
	for _, n := range []int{2, 3, 1} {
		batch := make([]float64, n)
		require.NoError(t, w.Extend(map[string]ttree.Row{"x": batch}))
		total += int64(n)
		require.Equal(t, total, b.BasketEntry()[w.Tree().NumBaskets()])
	}
}

func TestExtendMissingBranchName(t *testing.T) {
	w, _ := newScalarTree(t, 4, 2.0)
	err := w.Extend(map[string]ttree.Row{"y": []float64{1}})
	require.ErrorIs(t, err, ttree.NameError)
}

func TestExtendShapeMismatch(t *testing.T) {
	sink := ttree.NewMemorySink()
	w := ttree.Open(sink)
	_, err := w.Tree().AddBranch("p", ttree.Float32, []int{3}, ttree.KindNormal, "")
	require.NoError(t, err)

	err = w.Extend(map[string]ttree.Row{"p": []float32{1, 2}}) // not a multiple of 3
	require.ErrorIs(t, err, ttree.ShapeError)
}

func TestExtendBatchSizeMismatchAcrossBranches(t *testing.T) {
	sink := ttree.NewMemorySink()
	w := ttree.Open(sink)
	_, err := w.Tree().AddBranch("a", ttree.Float64, nil, ttree.KindNormal, "")
	require.NoError(t, err)
	_, err = w.Tree().AddBranch("b", ttree.Float64, nil, ttree.KindNormal, "")
	require.NoError(t, err)

	err = w.Extend(map[string]ttree.Row{
		"a": []float64{1, 2},
		"b": []float64{1, 2, 3},
	})
	require.ErrorIs(t, err, ttree.ShapeError)
}

// A jagged basket holds the flat payload followed by the scaled,
// key-biased offsets block.
func TestExtendJaggedBasketLayout(t *testing.T) {
	sink := ttree.NewMemorySink()
	w := ttree.Open(sink)
	_, err := w.Tree().AddBranch("n", ttree.Int32, nil, ttree.KindCounter, "")
	require.NoError(t, err)
	vBranch, err := w.Tree().AddBranch("v", ttree.Float64, nil, ttree.KindJagged, "n")
	require.NoError(t, err)

	rows := [][]float64{{1, 2}, {3, 4, 5}} // offsets [0,2,5]
	require.NoError(t, w.Extend(map[string]ttree.Row{
		"n": []int32{2, 3},
		"v": rows,
	}))

	require.EqualValues(t, 8, vBranch.EntryOffsetLen()) // 4*(len(offsets)-1) = 4*2

	seek := vBranch.BasketSeek()[0]
	nbytes := vBranch.BasketBytes()[0]
	raw := sink.Bytes()[seek : seek+int64(nbytes)]

	// Layout: u32 total length, key header (patched keylen at bytes 10..12
	// of the header), then the 18-byte basket sub-header, a zero
	// speedbump byte, then the payload.
	require.EqualValues(t, len(raw), binary.BigEndian.Uint32(raw[0:4]))

	keylen := binary.BigEndian.Uint16(raw[4+10 : 4+12])
	subHeader := raw[4+int(keylen)-4 : 4+int(keylen)-4+18]
	nevBuf := int32(binary.BigEndian.Uint32(subHeader[10:14]))
	lastByteOffset := int32(binary.BigEndian.Uint32(subHeader[14:18]))
	require.EqualValues(t, 2, nevBuf) // fNevBuf == 2

	payload := raw[4+int(keylen)-4+18+1:]

	// The offsets block sits after the flat data: a u32 count then the
	// scaled/biased int32 offsets, the last one replaced by 0. Data here
	// is 5 float64 elements (8 bytes each).
	dataLen := 8 * 5
	offsetsBlock := payload[dataLen:]
	count := binary.BigEndian.Uint32(offsetsBlock[0:4])
	require.EqualValues(t, 3, count)

	itemSize := int32(8) // float64
	keylenI32 := int32(keylen)
	off0 := int32(binary.BigEndian.Uint32(offsetsBlock[4:8]))
	off1 := int32(binary.BigEndian.Uint32(offsetsBlock[8:12]))
	off2 := int32(binary.BigEndian.Uint32(offsetsBlock[12:16]))
	require.EqualValues(t, 0*itemSize+keylenI32, off0)
	require.EqualValues(t, 2*itemSize+keylenI32, off1)
	require.EqualValues(t, 0, off2) // final entry replaced by the zero sentinel

	trueLast := 5*itemSize + keylenI32
	require.EqualValues(t, trueLast, lastByteOffset) // fLast holds the true terminator
}

// The int32 jagged case: offsets [0,2,5], data [1,2,3,4,5] as 20
// big-endian bytes, fNevBuf == 2.
func TestExtendJaggedBasketLayoutInt32(t *testing.T) {
	sink := ttree.NewMemorySink()
	w := ttree.Open(sink)
	_, err := w.Tree().AddBranch("n", ttree.Int32, nil, ttree.KindCounter, "")
	require.NoError(t, err)
	vBranch, err := w.Tree().AddBranch("v", ttree.Int32, nil, ttree.KindJagged, "n")
	require.NoError(t, err)

	rows := [][]int32{{1, 2}, {3, 4, 5}}
	require.NoError(t, w.Extend(map[string]ttree.Row{
		"n": []int32{2, 3},
		"v": rows,
	}))

	seek := vBranch.BasketSeek()[0]
	nbytes := vBranch.BasketBytes()[0]
	raw := sink.Bytes()[seek : seek+int64(nbytes)]

	keylen := binary.BigEndian.Uint16(raw[4+10 : 4+12])
	subHeader := raw[4+int(keylen)-4 : 4+int(keylen)-4+18]
	nevBuf := int32(binary.BigEndian.Uint32(subHeader[10:14]))
	require.EqualValues(t, 2, nevBuf, "fNevBuf == 2")

	payload := raw[4+int(keylen)-4+18+1:]
	data := payload[:20]
	wantData := []byte{0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0, 4, 0, 0, 0, 5}
	if diff := difftest.Diff("jagged-i32-data", hex.Dump(wantData), hex.Dump(data)); diff != "" {
		t.Errorf("jagged i32 payload mismatch:\n%s", diff)
	}
}

func TestWriterDump(t *testing.T) {
	w, _ := newScalarTree(t, 4, 2.0)
	require.NoError(t, w.Extend(map[string]ttree.Row{"x": []float64{1, 2, 3}}))

	var out bytes.Buffer
	w.Dump(&out)
	require.Contains(t, out.String(), "x")
	require.Contains(t, out.String(), "normal")
}
