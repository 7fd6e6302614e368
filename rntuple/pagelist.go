package rntuple

// PageList is one page-list envelope's contents: the per-cluster,
// per-column page descriptor lists plus each cluster's per-column element
// offset. A RNTuple's clusters are split across
// multiple page-list envelopes according to the footer's cluster groups;
// each PageList covers the clusters named by its ClusterGroup.
type PageList struct {
	Clusters []ClusterPages
}

// ClusterPages holds one cluster's pages, indexed by physical column ID.
type ClusterPages struct {
	Columns []ColumnPages
}

// ColumnPages holds one column's pages within a cluster plus the column's
// element offset at the start of the cluster, as recorded in the page
// list. Reader.DecodeColumn does not read ElementOffset: a delta column is
// prefix-summed from zero at the start of the requested cluster range.
type ColumnPages struct {
	Pages            []PageDescriptor
	ElementOffset    int64
	CompressionFlags uint32
}

// ReadPageList parses a page-list envelope payload: an outer list frame of
// clusters, each itself a list frame of columns, each column a list frame
// of page descriptors followed by a column-level element offset and
// compression-settings word.
func ReadPageList(c *Cursor) (PageList, error) {
	// The header CRC32 this page list was generated against; not
	// independently useful to a reader that already trusts its own
	// envelope checksum, so it is read and discarded.
	if _, err := c.ReadUint32(); err != nil {
		return PageList{}, err
	}

	clusters, clusterCount, err := ReadListFrame(c)
	if err != nil {
		return PageList{}, err
	}

	pl := PageList{Clusters: make([]ClusterPages, 0, clusterCount)}
	for i := int32(0); i < clusterCount; i++ {
		columns, columnCount, err := ReadListFrame(clusters)
		if err != nil {
			return PageList{}, err
		}

		cp := ClusterPages{Columns: make([]ColumnPages, 0, columnCount)}
		for j := int32(0); j < columnCount; j++ {
			pages, pageCount, err := ReadListFrame(columns)
			if err != nil {
				return PageList{}, err
			}
			colPages := make([]PageDescriptor, 0, pageCount)
			for k := int32(0); k < pageCount; k++ {
				pd, err := ReadPageDescriptor(pages)
				if err != nil {
					return PageList{}, err
				}
				colPages = append(colPages, pd)
			}

			elementOffset, err := columns.ReadInt64()
			if err != nil {
				return PageList{}, err
			}
			compressionFlags, err := columns.ReadUint32()
			if err != nil {
				return PageList{}, err
			}

			cp.Columns = append(cp.Columns, ColumnPages{
				Pages:            colPages,
				ElementOffset:    elementOffset,
				CompressionFlags: compressionFlags,
			})
		}
		pl.Clusters = append(pl.Clusters, cp)
	}

	return pl, nil
}
