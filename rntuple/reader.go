package rntuple

import (
	"fmt"
	"hash/crc32"

	"github.com/lobis/uproot-go/format"
)

// Reader is the assembled view of one RNTuple: its merged schema, form
// forest, and cluster/page index, ready for on-demand page decoding.
type Reader struct {
	source       Source
	decompressor Decompressor
	cfg          *readerConfig

	anchor Anchor
	schema Schema
	footer Footer
	forest []Node

	pageLists []PageList // one per cluster group, lazily parallel to footer.ClusterGroups
}

// Open reads the anchor, header and footer envelopes from source and
// builds the merged schema and form forest. Cluster page-list envelopes
// are fetched lazily, on first use by ColumnPages, since a reader interested in only a few
// columns should not have to pull every page-list envelope up front.
func Open(source Source, anchor Anchor, opts ...ReaderOption) (*Reader, error) {
	cfg := newReaderConfig(opts...)

	r := &Reader{
		source:       source,
		decompressor: cfg.decompressor,
		cfg:          cfg,
		anchor:       anchor,
	}

	headerRaw, err := FetchEnvelope(source, anchor.HeaderLink(), r.decompressor)
	if err != nil {
		return nil, fmt.Errorf("fetching header envelope: %w", err)
	}
	_, headerPayload, err := r.readEnvelope(headerRaw)
	if err != nil {
		return nil, fmt.Errorf("reading header envelope: %w", err)
	}
	r.schema, err = ReadSchema(headerPayload)
	if err != nil {
		return nil, fmt.Errorf("parsing header schema: %w", err)
	}

	footerRaw, err := FetchEnvelope(source, anchor.FooterLink(), r.decompressor)
	if err != nil {
		return nil, fmt.Errorf("fetching footer envelope: %w", err)
	}
	_, footerPayload, err := r.readEnvelope(footerRaw)
	if err != nil {
		return nil, fmt.Errorf("reading footer envelope: %w", err)
	}
	r.footer, err = ReadFooter(footerPayload)
	if err != nil {
		return nil, fmt.Errorf("parsing footer: %w", err)
	}

	// The footer carries the header's CRC32; a mismatch is a fatal
	// format error, caught here before any cluster is decoded or the
	// form forest is built.
	if !cfg.skipEnvelopeChecksum {
		if got := crc32.ChecksumIEEE(headerRaw[:len(headerRaw)-4]); got != r.footer.HeaderCRC32 {
			return nil, fmt.Errorf("%w: footer's recorded header CRC32 %#x does not match header envelope CRC32 %#x", FormatError, r.footer.HeaderCRC32, got)
		}
	}

	r.schema.extend(r.footer.SchemaExtension)

	r.forest, err = BuildForest(r.schema)
	if err != nil {
		return nil, fmt.Errorf("building form forest: %w", err)
	}

	r.pageLists = make([]PageList, len(r.footer.ClusterGroups))
	return r, nil
}

func (r *Reader) readEnvelope(raw []byte) (EnvelopeVersion, *Cursor, error) {
	if r.cfg.skipEnvelopeChecksum {
		return ReadEnvelopeSkipChecksum(raw)
	}
	return ReadEnvelope(raw)
}

// Fields returns the top-level form nodes, one per field declared at the
// schema's root.
func (r *Reader) Fields() []Node { return r.forest }

// NumEntries returns the total entry count, the sum of every cluster's
// entry count across every cluster group.
func (r *Reader) NumEntries() uint64 {
	var total uint64
	for _, cs := range r.footer.ClusterSummary {
		total += cs.NumEntries
	}
	return total
}

// NumClusters returns the number of clusters in the ntuple.
func (r *Reader) NumClusters() int { return len(r.footer.ClusterSummary) }

// clusterGroupOf returns the index of the cluster group covering global
// cluster index clusterIdx, and the cluster's position within that group.
func (r *Reader) clusterGroupOf(clusterIdx int) (group, withinGroup int, err error) {
	remaining := clusterIdx
	for gi, cg := range r.footer.ClusterGroups {
		if remaining < int(cg.NumClusters) {
			return gi, remaining, nil
		}
		remaining -= int(cg.NumClusters)
	}
	return 0, 0, fmt.Errorf("%w: cluster index %d out of range", FormatError, clusterIdx)
}

// pageList returns the parsed page-list envelope for cluster group gi,
// fetching and parsing it on first use.
func (r *Reader) pageList(gi int) (PageList, error) {
	if r.pageLists[gi].Clusters != nil {
		return r.pageLists[gi], nil
	}
	cg := r.footer.ClusterGroups[gi]
	raw, err := FetchEnvelope(r.source, cg.PageListLink, r.decompressor)
	if err != nil {
		return PageList{}, fmt.Errorf("fetching page-list envelope %d: %w", gi, err)
	}
	_, payload, err := r.readEnvelope(raw)
	if err != nil {
		return PageList{}, fmt.Errorf("reading page-list envelope %d: %w", gi, err)
	}
	pl, err := ReadPageList(payload)
	if err != nil {
		return PageList{}, fmt.Errorf("parsing page-list envelope %d: %w", gi, err)
	}
	r.pageLists[gi] = pl
	return pl, nil
}

// ColumnPages returns the page descriptors for physicalColumnID within
// cluster clusterIdx, fetching that cluster's page-list envelope if it has
// not already been read.
func (r *Reader) ColumnPages(clusterIdx int, physicalColumnID uint32) (ColumnPages, error) {
	gi, within, err := r.clusterGroupOf(clusterIdx)
	if err != nil {
		return ColumnPages{}, err
	}
	pl, err := r.pageList(gi)
	if err != nil {
		return ColumnPages{}, err
	}
	if within >= len(pl.Clusters) {
		return ColumnPages{}, fmt.Errorf("%w: cluster %d not present in its page-list envelope", FormatError, clusterIdx)
	}
	cluster := pl.Clusters[within]
	if int(physicalColumnID) >= len(cluster.Columns) {
		return ColumnPages{}, fmt.Errorf("%w: column %d not present in cluster %d", FormatError, physicalColumnID, clusterIdx)
	}
	return cluster.Columns[physicalColumnID], nil
}

// DecodePage fetches, decompresses and decodes one page.
// uncompressedSize is the page's decompressed byte length, computed by the
// caller from p.NumElements and columnType (bit-packed for Bit columns).
func (r *Reader) DecodePage(p PageDescriptor, columnType format.ColumnType, uncompressedSize int) (interface{}, error) {
	loc := p.Locator
	chunk, err := r.source.Chunk(loc.Offset, loc.Offset+uint64(loc.NumBytes))
	if err != nil {
		return nil, fmt.Errorf("fetching page bytes: %w", err)
	}

	raw := chunk.Bytes()
	if loc.IsCompressed(uint32(uncompressedSize)) {
		if r.decompressor == nil {
			return nil, fmt.Errorf("%w: page is compressed but no decompressor was configured", UnsupportedFeature)
		}
		raw, err = r.decompressor.Decode(nil, raw, uncompressedSize)
		if err != nil {
			return nil, fmt.Errorf("decompressing page: %w", err)
		}
	}

	return DecodePage(raw, columnType, int(p.NumElements))
}

// DecodeColumn decodes physicalColumnID across the cluster range
// [firstCluster, lastCluster) into a single contiguous buffer of the
// column's primitive dtype. Every page
// in the range is fetched, decompressed and decoded in cluster then page
// order, concatenated, and only then has the offset-index leading zero,
// zig-zag and delta (prefix-sum) steps applied — once over the whole range,
// never per page, so a column spanning more than one page decodes
// correctly regardless of where page boundaries fall.
func (r *Reader) DecodeColumn(physicalColumnID uint32, columnType format.ColumnType, firstCluster, lastCluster int) (interface{}, error) {
	var pages []interface{}
	for c := firstCluster; c < lastCluster; c++ {
		cp, err := r.ColumnPages(c, physicalColumnID)
		if err != nil {
			return nil, err
		}
		for _, p := range cp.Pages {
			v, err := r.DecodePage(p, columnType, pageUncompressedSize(columnType, int(p.NumElements)))
			if err != nil {
				return nil, err
			}
			pages = append(pages, v)
		}
	}

	concatenated, err := concatPages(pages)
	if err != nil {
		return nil, err
	}
	return finishColumn(columnType, concatenated)
}
