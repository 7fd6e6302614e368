package rntuple

import "fmt"

// Footer is the parsed footer envelope: a feature flag,
// a CRC32 of the header envelope the footer was generated against, an
// optional schema extension, the column group list, the cluster summary
// and cluster group lists, and a list of meta-block links this reader does
// not interpret.
type Footer struct {
	FeatureFlag uint64
	HeaderCRC32 uint32

	SchemaExtension Schema
	ColumnGroups    []ColumnGroup
	ClusterSummary  []ClusterSummary
	ClusterGroups   []ClusterGroup
}

// ColumnGroup names the physical columns that together form one projected
// view of the data. The format specifies no group payload beyond the
// column index list itself, so an empty group is a valid marker for "no
// grouping", not an error.
type ColumnGroup struct {
	PhysicalColumnIDs []uint32
}

func readColumnGroup(c *Cursor) (ColumnGroup, error) {
	ids, count, err := ReadListFrame(c)
	if err != nil {
		return ColumnGroup{}, err
	}
	g := ColumnGroup{PhysicalColumnIDs: make([]uint32, 0, count)}
	for i := int32(0); i < count; i++ {
		id, err := ids.ReadUint32()
		if err != nil {
			return ColumnGroup{}, err
		}
		g.PhysicalColumnIDs = append(g.PhysicalColumnIDs, id)
	}
	return g, nil
}

// ReadFooter parses a footer envelope payload.
func ReadFooter(c *Cursor) (Footer, error) {
	var f Footer
	var err error

	f.FeatureFlag, err = c.ReadUint64()
	if err != nil {
		return Footer{}, err
	}
	f.HeaderCRC32, err = c.ReadUint32()
	if err != nil {
		return Footer{}, err
	}

	extFields, err := ReadRecordFrame(c)
	if err != nil {
		return Footer{}, fmt.Errorf("footer schema extension: %w", err)
	}
	f.SchemaExtension, err = readSchemaExtensionBody(extFields)
	if err != nil {
		return Footer{}, fmt.Errorf("footer schema extension: %w", err)
	}

	groups, groupCount, err := ReadListFrame(c)
	if err != nil {
		return Footer{}, err
	}
	f.ColumnGroups = make([]ColumnGroup, 0, groupCount)
	for i := int32(0); i < groupCount; i++ {
		g, err := readColumnGroup(groups)
		if err != nil {
			return Footer{}, err
		}
		f.ColumnGroups = append(f.ColumnGroups, g)
	}

	summaries, summaryCount, err := ReadListFrame(c)
	if err != nil {
		return Footer{}, err
	}
	f.ClusterSummary = make([]ClusterSummary, 0, summaryCount)
	for i := int32(0); i < summaryCount; i++ {
		s, err := ReadClusterSummary(summaries)
		if err != nil {
			return Footer{}, err
		}
		f.ClusterSummary = append(f.ClusterSummary, s)
	}

	clusterGroups, clusterGroupCount, err := ReadListFrame(c)
	if err != nil {
		return Footer{}, err
	}
	f.ClusterGroups = make([]ClusterGroup, 0, clusterGroupCount)
	for i := int32(0); i < clusterGroupCount; i++ {
		g, err := ReadClusterGroup(clusterGroups)
		if err != nil {
			return Footer{}, err
		}
		f.ClusterGroups = append(f.ClusterGroups, g)
	}

	// The trailing meta-block-link list is reserved for forward
	// compatibility; this reader parses it only far enough to confirm it
	// is well-formed and otherwise ignores its contents.
	if c.Len() > 0 {
		if _, _, err := ReadListFrame(c); err != nil {
			return Footer{}, fmt.Errorf("footer meta-block links: %w", err)
		}
	}

	return f, nil
}

// readSchemaExtensionBody parses the schema extension's four list frames
// (fields, columns, alias columns, extra type infos), the same shape as
// the header's schema but without the header's identification strings.
func readSchemaExtensionBody(c *Cursor) (Schema, error) {
	var s Schema

	fields, fieldCount, err := ReadListFrame(c)
	if err != nil {
		return Schema{}, err
	}
	s.Fields = make([]FieldRecord, 0, fieldCount)
	for i := int32(0); i < fieldCount; i++ {
		f, err := ReadFieldRecord(fields, uint32(i))
		if err != nil {
			return Schema{}, err
		}
		s.Fields = append(s.Fields, f)
	}

	columns, columnCount, err := ReadListFrame(c)
	if err != nil {
		return Schema{}, err
	}
	s.Columns = make([]ColumnRecord, 0, columnCount)
	for i := int32(0); i < columnCount; i++ {
		col, err := ReadColumnRecord(columns, uint32(i))
		if err != nil {
			return Schema{}, err
		}
		s.Columns = append(s.Columns, col)
	}

	aliases, aliasCount, err := ReadListFrame(c)
	if err != nil {
		return Schema{}, err
	}
	s.AliasColumns = make([]AliasColumn, 0, aliasCount)
	for i := int32(0); i < aliasCount; i++ {
		a, err := ReadAliasColumn(aliases)
		if err != nil {
			return Schema{}, err
		}
		s.AliasColumns = append(s.AliasColumns, a)
	}

	extras, extraCount, err := ReadListFrame(c)
	if err != nil {
		return Schema{}, err
	}
	s.ExtraTypeInfo = make([]ExtraTypeInfo, 0, extraCount)
	for i := int32(0); i < extraCount; i++ {
		e, err := ReadExtraTypeInfo(extras)
		if err != nil {
			return Schema{}, err
		}
		s.ExtraTypeInfo = append(s.ExtraTypeInfo, e)
	}

	return s, nil
}
