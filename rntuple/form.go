package rntuple

import (
	"fmt"

	"github.com/lobis/uproot-go/format"
)

// Node is one entry in the schema's decoded form tree. Every
// concrete form shares the same traversal surface regardless of shape, so
// walkers need no type switch at every call site.
type Node interface {
	Name() string
	Children() []Node
}

// NumpyForm is a leaf backed by exactly one physical column.
type NumpyForm struct {
	FieldName        string
	ColumnType       format.ColumnType
	PhysicalColumnID uint32
}

func (f *NumpyForm) Name() string     { return f.FieldName }
func (f *NumpyForm) Children() []Node { return nil }

// ListOffsetForm is a variable-length sequence: an offset-index column
// paired with a content form. String and vector-of-T
// fields both take this shape; strings are distinguished only by Content
// being a Char-typed NumpyForm.
type ListOffsetForm struct {
	FieldName      string
	Content        Node
	OffsetColumnID uint32
}

func (f *ListOffsetForm) Name() string     { return f.FieldName }
func (f *ListOffsetForm) Children() []Node { return []Node{f.Content} }

// RegularForm is a fixed-length sequence: Size elements of Content per
// entry, with no offset-index column (the repetition>0 case
// of a leaf field — a fixed-size array such as std::array).
type RegularForm struct {
	FieldName string
	Content   Node
	Size      uint64
}

func (f *RegularForm) Name() string     { return f.FieldName }
func (f *RegularForm) Children() []Node { return []Node{f.Content} }

// RecordForm groups named children with no storage of its own.
type RecordForm struct {
	FieldName string
	Fields    []Node
}

func (f *RecordForm) Name() string     { return f.FieldName }
func (f *RecordForm) Children() []Node { return f.Fields }

// UnionForm is a tagged choice among Contents, selected per-entry by the
// switch column TagColumnID.
type UnionForm struct {
	FieldName   string
	Contents    []Node
	TagColumnID uint32
}

func (f *UnionForm) Name() string     { return f.FieldName }
func (f *UnionForm) Children() []Node { return f.Contents }

// BuildForest turns a parsed Schema into one Node per top-level field
// (a field is top-level when its parent_field_id equals its
// own id).
func BuildForest(schema Schema) ([]Node, error) {
	visited := make(map[uint32]bool, len(schema.Fields))
	var roots []Node
	for _, f := range schema.Fields {
		if !f.IsTopLevel() {
			continue
		}
		n, err := buildNode(schema, f, visited)
		if err != nil {
			return nil, fmt.Errorf("building form for field %q: %w", f.FieldName, err)
		}
		roots = append(roots, n)
	}
	return roots, nil
}

func buildNode(schema Schema, field FieldRecord, visited map[uint32]bool) (Node, error) {
	if visited[field.ID] {
		return nil, fmt.Errorf("%w: cycle detected at field id %d", FormatError, field.ID)
	}
	visited[field.ID] = true

	switch field.StructRole {
	case RoleLeaf:
		return buildLeaf(schema, field, visited)
	case RoleCollection:
		return buildCollection(schema, field, visited)
	case RoleRecord:
		children, err := buildChildren(schema, field, visited)
		if err != nil {
			return nil, err
		}
		return &RecordForm{FieldName: field.FieldName, Fields: children}, nil
	case RoleVariant:
		return buildVariant(schema, field, visited)
	default:
		return nil, fmt.Errorf("%w: struct role %d on field %q", UnsupportedFeature, field.StructRole, field.FieldName)
	}
}

// buildLeaf handles the two leaf shapes distinguished by repetition: a
// non-zero repetition is the fixed-size-array case ("std::array"), a leaf
// field that owns no columns of its own and wraps the sole child field
// whose parent is this field in a RegularForm of Size repetition.
// Repetition zero is the ordinary case, dispatched on the number of
// physical columns the field owns: one column is a plain
// Numpy form; two columns is the string case, an offset-index column
// paired with a Char content column.
func buildLeaf(schema Schema, field FieldRecord, visited map[uint32]bool) (Node, error) {
	if field.Repetition != 0 {
		children, err := buildChildren(schema, field, visited)
		if err != nil {
			return nil, err
		}
		if len(children) != 1 {
			return nil, fmt.Errorf("%w: fixed-size leaf field %q must wrap exactly one item field, found %d", FormatError, field.FieldName, len(children))
		}
		return &RegularForm{FieldName: field.FieldName, Content: children[0], Size: field.Repetition}, nil
	}

	cols := columnsForField(schema, field.ID)
	switch len(cols) {
	case 1:
		return &NumpyForm{FieldName: field.FieldName, ColumnType: cols[0].Type, PhysicalColumnID: cols[0].ID}, nil
	case 2:
		offsetCol, charCol := cols[0], cols[1]
		if !offsetCol.Type.IsOffsetIndex() {
			offsetCol, charCol = charCol, offsetCol
		}
		if !offsetCol.Type.IsOffsetIndex() || !charCol.Type.IsChar() {
			return nil, fmt.Errorf("%w: field %q has two columns but is not the string shape", FormatError, field.FieldName)
		}
		content := &NumpyForm{FieldName: field.FieldName, ColumnType: charCol.Type, PhysicalColumnID: charCol.ID}
		return &ListOffsetForm{FieldName: field.FieldName, Content: content, OffsetColumnID: offsetCol.ID}, nil
	default:
		return nil, fmt.Errorf("%w: field %q has %d leaf columns", errUnsupportedColumnArity, field.FieldName, len(cols))
	}
}

// buildCollection builds a variable-length sequence field:
// "collection: ListOffset(u32, inner_form, form_key = offset column);
// inner_form is the sole child field." A collection field owns exactly one
// offset-index column and wraps exactly one child field describing the
// item type. The fixed-size-array case is a leaf (repetition on the leaf
// field itself, handled in buildLeaf), not a collection.
func buildCollection(schema Schema, field FieldRecord, visited map[uint32]bool) (Node, error) {
	cols := columnsForField(schema, field.ID)
	if len(cols) != 1 || !cols[0].Type.IsOffsetIndex() {
		return nil, fmt.Errorf("%w: collection field %q must own exactly one offset-index column", FormatError, field.FieldName)
	}

	children, err := buildChildren(schema, field, visited)
	if err != nil {
		return nil, err
	}
	if len(children) != 1 {
		return nil, fmt.Errorf("%w: collection field %q must wrap exactly one item field, found %d", FormatError, field.FieldName, len(children))
	}

	return &ListOffsetForm{FieldName: field.FieldName, Content: children[0], OffsetColumnID: cols[0].ID}, nil
}

// buildVariant builds a tagged-union field: one Switch
// column selects among the field's children by entry.
func buildVariant(schema Schema, field FieldRecord, visited map[uint32]bool) (Node, error) {
	cols := columnsForField(schema, field.ID)
	var tagColID uint32
	var found bool
	for _, col := range cols {
		if col.Type.IsSwitch() {
			tagColID = col.ID
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: variant field %q has no switch column", FormatError, field.FieldName)
	}

	children, err := buildChildren(schema, field, visited)
	if err != nil {
		return nil, err
	}
	return &UnionForm{FieldName: field.FieldName, Contents: children, TagColumnID: tagColID}, nil
}

// buildChildren returns the form nodes of field's direct children, in
// schema declaration order.
func buildChildren(schema Schema, field FieldRecord, visited map[uint32]bool) ([]Node, error) {
	var out []Node
	for _, f := range schema.Fields {
		if f.ID == field.ID || f.ParentFieldID != field.ID {
			continue
		}
		child, err := buildNode(schema, f, visited)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// columnsForField gathers the physical columns belonging to fieldID,
// including columns reached indirectly through an alias column.
func columnsForField(schema Schema, fieldID uint32) []ColumnRecord {
	var cols []ColumnRecord
	for _, col := range schema.Columns {
		if col.FieldID == fieldID {
			cols = append(cols, col)
		}
	}
	for _, alias := range schema.AliasColumns {
		if alias.FieldID != fieldID {
			continue
		}
		for _, col := range schema.Columns {
			if col.ID == alias.PhysicalID {
				cols = append(cols, col)
			}
		}
	}
	return cols
}
