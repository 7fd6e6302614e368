package rntuple_test

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lobis/uproot-go/format"
	"github.com/lobis/uproot-go/internal/bits"
	"github.com/lobis/uproot-go/rntuple"
)

// buildRNTupleColumn assembles a minimal single-field, single-column
// RNTuple whose column's pages are distributed across pagesByCluster
// (outer index: cluster, inner index: page within that cluster), so tests
// can exercise Reader.DecodeColumn's cross-page and cross-cluster
// concatenation. elementsByCluster gives each page's
// element count in the same nesting.
func buildRNTupleColumn(t *testing.T, columnType format.ColumnType, nbits uint16, pagesByCluster [][][]byte, elementsByCluster [][]int) ([]byte, rntuple.Anchor) {
	t.Helper()

	headerPayload := cat(
		u64b(0),
		u32b(1),
		strb("tree"),
		strb(""),
		strb("uproot-go"),
		listFrame(fieldRecordBytes(0, 0, 0, rntuple.RoleLeaf, "x", "raw", "", ""), 1),
		listFrame(columnRecordBytes(columnType, nbits, 0), 1),
		listFrame(nil, 0),
		listFrame(nil, 0),
	)
	headerEnvelope := wrapEnvelope(headerPayload)

	var buf []byte
	var clusters []byte
	var clusterSummaryEntries []byte

	for ci, pages := range pagesByCluster {
		var pageDescriptors []byte
		var clusterElements uint64
		for pi, p := range pages {
			offset := uint64(len(buf))
			buf = append(buf, p...)
			pageDescriptors = append(pageDescriptors, cat(u32b(uint32(elementsByCluster[ci][pi])), locatorBytes(int32(len(p)), offset))...)
			clusterElements += uint64(elementsByCluster[ci][pi])
		}
		pagesFrame := listFrame(pageDescriptors, int32(len(pages)))
		column := cat(pagesFrame, i64b(0), u32b(0))
		columns := listFrame(column, 1)
		clusters = append(clusters, columns...)
		clusterSummaryEntries = append(clusterSummaryEntries, cat(u64b(0), u64b(clusterElements))...)
	}

	clustersFrame := listFrame(clusters, int32(len(pagesByCluster)))
	pageListPayload := cat(u32b(0), clustersFrame)
	pageListEnvelope := wrapEnvelope(pageListPayload)

	emptyColumnGroup := listFrame(nil, 0)
	columnGroups := listFrame(emptyColumnGroup, 1)
	clusterSummaries := listFrame(clusterSummaryEntries, int32(len(pagesByCluster)))

	headerOffset := uint64(len(buf))
	buf = append(buf, headerEnvelope...)

	pageListOffset := uint64(len(buf))
	buf = append(buf, pageListEnvelope...)

	clusterGroup := cat(u32b(uint32(len(pagesByCluster))), envelopeLinkBytes(uint32(len(pageListEnvelope)), int32(len(pageListEnvelope)), pageListOffset))
	clusterGroups := listFrame(clusterGroup, 1)
	headerCRC32 := crc32.ChecksumIEEE(headerEnvelope[:len(headerEnvelope)-4])
	footerPayload := cat(
		u64b(0),
		u32b(headerCRC32),
		emptySchemaExtensionBytes(),
		columnGroups,
		clusterSummaries,
		clusterGroups,
	)
	footerEnvelope := wrapEnvelope(footerPayload)
	footerOffset := uint64(len(buf))
	buf = append(buf, footerEnvelope...)

	anchor := rntuple.Anchor{
		Version:      1,
		SeekHeader:   headerOffset,
		NBytesHeader: uint32(len(headerEnvelope)),
		LenHeader:    uint32(len(headerEnvelope)),
		SeekFooter:   footerOffset,
		NBytesFooter: uint32(len(footerEnvelope)),
		LenFooter:    uint32(len(footerEnvelope)),
	}
	return buf, anchor
}

// A two-page offset column must get its leading zero exactly once, at the
// very start; prepending per page would insert a spurious 0 in the middle
// of the buffer.
func TestDecodeColumnOffsetIndexAcrossPages(t *testing.T) {
	page0 := cat(u32b(3), u32b(7))
	page1 := cat(u32b(10), u32b(12))

	buf, anchor := buildRNTupleColumn(t, format.Index32, 32,
		[][][]byte{{page0, page1}},
		[][]int{{2, 2}},
	)
	src := &memorySource{data: buf}
	r, err := rntuple.Open(src, anchor)
	require.NoError(t, err)

	got, err := r.DecodeColumn(0, format.Index32, 0, r.NumClusters())
	require.NoError(t, err)
	offsets, ok := got.([]uint32)
	require.True(t, ok)
	require.Equal(t, []uint32{0, 3, 7, 10, 12}, offsets)
}

// Two pages of deltas {1,2,3,4} and {5,6,7,8} must prefix-sum as one
// continuous run, not as two runs each restarting from zero at the page
// boundary.
func TestDecodeColumnDeltaAcrossPages(t *testing.T) {
	firstDeltas := []int16{1, 2, 3, 4}
	secondDeltas := []int16{5, 6, 7, 8}

	splitPage := func(deltas []int16) []byte {
		natural := make([]byte, 0, len(deltas)*2)
		for _, v := range deltas {
			natural = append(natural, u16b(uint16(v))...)
		}
		split := make([]byte, len(natural))
		bits.Split(split, natural, 2)
		return split
	}

	buf, anchor := buildRNTupleColumn(t, format.SplitInt16, 16,
		[][][]byte{{splitPage(firstDeltas), splitPage(secondDeltas)}},
		[][]int{{len(firstDeltas), len(secondDeltas)}},
	)
	src := &memorySource{data: buf}
	r, err := rntuple.Open(src, anchor)
	require.NoError(t, err)

	got, err := r.DecodeColumn(0, format.SplitInt16, 0, r.NumClusters())
	require.NoError(t, err)
	ints, ok := got.([]int16)
	require.True(t, ok)
	// Prefix sum of {1,2,3,4,5,6,7,8} run continuously, not restarted at
	// the page boundary after element 4.
	require.Equal(t, []int16{1, 3, 6, 10, 15, 21, 28, 36}, ints)
}

// TestDecodeColumnOffsetIndexAcrossClusters exercises the (column id,
// cluster range) contract directly: the same column split
// across two clusters, each a single page, must concatenate and prepend
// its leading zero exactly once across the whole [0, 2) range.
func TestDecodeColumnOffsetIndexAcrossClusters(t *testing.T) {
	cluster0 := cat(u32b(4), u32b(9))
	cluster1 := cat(u32b(1), u32b(2))

	buf, anchor := buildRNTupleColumn(t, format.Index32, 32,
		[][][]byte{{cluster0}, {cluster1}},
		[][]int{{2}, {2}},
	)
	src := &memorySource{data: buf}
	r, err := rntuple.Open(src, anchor)
	require.NoError(t, err)
	require.Equal(t, 2, r.NumClusters())

	got, err := r.DecodeColumn(0, format.Index32, 0, r.NumClusters())
	require.NoError(t, err)
	offsets, ok := got.([]uint32)
	require.True(t, ok)
	require.Equal(t, []uint32{0, 4, 9, 1, 2}, offsets)
}
