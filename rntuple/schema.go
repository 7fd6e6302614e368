package rntuple

// Schema is the parsed header envelope: the field and column forests plus
// the writer-supplied identification strings.
type Schema struct {
	FeatureFlag uint64
	WriterTag   uint32

	Name        string
	Description string
	WriterIdent string

	Fields        []FieldRecord
	Columns       []ColumnRecord
	AliasColumns  []AliasColumn
	ExtraTypeInfo []ExtraTypeInfo
}

// ReadSchema parses a header envelope payload: a u64 feature
// flag, a u32 writer tag, three length-prefixed strings, then four list
// frames (fields, columns, alias columns, extra type infos).
func ReadSchema(c *Cursor) (Schema, error) {
	var s Schema
	var err error

	s.FeatureFlag, err = c.ReadUint64()
	if err != nil {
		return Schema{}, err
	}
	s.WriterTag, err = c.ReadUint32()
	if err != nil {
		return Schema{}, err
	}
	s.Name, err = c.ReadString()
	if err != nil {
		return Schema{}, err
	}
	s.Description, err = c.ReadString()
	if err != nil {
		return Schema{}, err
	}
	s.WriterIdent, err = c.ReadString()
	if err != nil {
		return Schema{}, err
	}

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

// extend appends a schema extension's fields, columns, alias columns and
// extra type infos onto s, continuing the header's own ID numbering
// (the footer's schema extension is logically concatenated
// onto the header's schema before the field forest is built).
func (s *Schema) extend(ext Schema) {
	// Parent ids in the extension are relative to the extension's own
	// numbering, including the parent-is-self marker for top-level
	// fields, so shifting ID and ParentFieldID by the same base
	// preserves both ordinary parent links and the top-level marker.
	base := uint32(len(s.Fields))
	for _, f := range ext.Fields {
		f.ID += base
		f.ParentFieldID += base
		s.Fields = append(s.Fields, f)
	}

	colBase := uint32(len(s.Columns))
	for _, col := range ext.Columns {
		col.ID += colBase
		col.FieldID += base
		s.Columns = append(s.Columns, col)
	}

	for _, a := range ext.AliasColumns {
		a.FieldID += base
		s.AliasColumns = append(s.AliasColumns, a)
	}

	s.ExtraTypeInfo = append(s.ExtraTypeInfo, ext.ExtraTypeInfo...)
}
