package rntuple_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/lobis/uproot-go/format"
	"github.com/lobis/uproot-go/rntuple"
)

func leafField(id, parentID uint32, name string) rntuple.FieldRecord {
	return rntuple.FieldRecord{ID: id, ParentFieldID: parentID, StructRole: rntuple.RoleLeaf, FieldName: name}
}

func TestBuildForestNumpyLeaf(t *testing.T) {
	schema := rntuple.Schema{
		Fields:  []rntuple.FieldRecord{leafField(0, 0, "x")},
		Columns: []rntuple.ColumnRecord{{ID: 0, Type: format.Real32, FieldID: 0}},
	}
	roots, err := rntuple.BuildForest(schema)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	n, ok := roots[0].(*rntuple.NumpyForm)
	require.True(t, ok)
	require.Equal(t, "x", n.Name())
	require.Empty(t, n.Children())
	require.Equal(t, format.Real32, n.ColumnType)
}

func TestBuildForestStringField(t *testing.T) {
	schema := rntuple.Schema{
		Fields: []rntuple.FieldRecord{leafField(0, 0, "name")},
		Columns: []rntuple.ColumnRecord{
			{ID: 0, Type: format.Index32, FieldID: 0},
			{ID: 1, Type: format.Char, FieldID: 0},
		},
	}
	roots, err := rntuple.BuildForest(schema)
	require.NoError(t, err)
	lo, ok := roots[0].(*rntuple.ListOffsetForm)
	require.True(t, ok)
	require.Equal(t, uint32(0), lo.OffsetColumnID)
	content, ok := lo.Content.(*rntuple.NumpyForm)
	require.True(t, ok)
	require.Equal(t, format.Char, content.ColumnType)
}

func TestBuildForestCollectionOfFloat(t *testing.T) {
	schema := rntuple.Schema{
		Fields: []rntuple.FieldRecord{
			{ID: 0, ParentFieldID: 0, StructRole: rntuple.RoleCollection, FieldName: "values"},
			leafField(1, 0, "values._0"),
		},
		Columns: []rntuple.ColumnRecord{
			{ID: 0, Type: format.Index32, FieldID: 0},
			{ID: 1, Type: format.Real32, FieldID: 1},
		},
	}
	roots, err := rntuple.BuildForest(schema)
	require.NoError(t, err)
	lo, ok := roots[0].(*rntuple.ListOffsetForm)
	require.True(t, ok)
	require.Equal(t, "values", lo.Name())
	item, ok := lo.Content.(*rntuple.NumpyForm)
	require.True(t, ok)
	require.Equal(t, format.Real32, item.ColumnType)
}

// A fixed-size-array ("std::array") field is a RoleLeaf field with a
// non-zero repetition, owning no columns
// of its own — the columns live on its sole child field.
func TestBuildForestFixedSizeArray(t *testing.T) {
	schema := rntuple.Schema{
		Fields: []rntuple.FieldRecord{
			{ID: 0, ParentFieldID: 0, StructRole: rntuple.RoleLeaf, FieldName: "quad", Flags: 0x1, Repetition: 4},
			leafField(1, 0, "quad._0"),
		},
		Columns: []rntuple.ColumnRecord{
			{ID: 0, Type: format.Real64, FieldID: 1},
		},
	}
	roots, err := rntuple.BuildForest(schema)
	require.NoError(t, err)
	reg, ok := roots[0].(*rntuple.RegularForm)
	require.True(t, ok)
	require.Equal(t, uint64(4), reg.Size)
	item, ok := reg.Content.(*rntuple.NumpyForm)
	require.True(t, ok)
	require.Equal(t, format.Real64, item.ColumnType)
}

func TestBuildForestRecord(t *testing.T) {
	schema := rntuple.Schema{
		Fields: []rntuple.FieldRecord{
			{ID: 0, ParentFieldID: 0, StructRole: rntuple.RoleRecord, FieldName: "point"},
			leafField(1, 0, "point.x"),
			leafField(2, 0, "point.y"),
		},
		Columns: []rntuple.ColumnRecord{
			{ID: 0, Type: format.Real64, FieldID: 1},
			{ID: 1, Type: format.Real64, FieldID: 2},
		},
	}
	roots, err := rntuple.BuildForest(schema)
	require.NoError(t, err)
	rec, ok := roots[0].(*rntuple.RecordForm)
	require.True(t, ok)
	require.Len(t, rec.Children(), 2)
}

func TestBuildForestVariant(t *testing.T) {
	schema := rntuple.Schema{
		Fields: []rntuple.FieldRecord{
			{ID: 0, ParentFieldID: 0, StructRole: rntuple.RoleVariant, FieldName: "choice"},
			leafField(1, 0, "choice.int_opt"),
			leafField(2, 0, "choice.float_opt"),
		},
		Columns: []rntuple.ColumnRecord{
			{ID: 0, Type: format.Switch, FieldID: 0},
			{ID: 1, Type: format.Int32, FieldID: 1},
			{ID: 2, Type: format.Real32, FieldID: 2},
		},
	}
	roots, err := rntuple.BuildForest(schema)
	require.NoError(t, err)
	un, ok := roots[0].(*rntuple.UnionForm)
	require.True(t, ok)
	require.Equal(t, uint32(0), un.TagColumnID)
	require.Len(t, un.Contents, 2)
}

func TestBuildForestAliasColumnResolution(t *testing.T) {
	schema := rntuple.Schema{
		Fields: []rntuple.FieldRecord{
			leafField(0, 0, "x"),
			leafField(1, 1, "x_alias"),
		},
		Columns: []rntuple.ColumnRecord{
			{ID: 0, Type: format.Real32, FieldID: 0},
		},
		AliasColumns: []rntuple.AliasColumn{{PhysicalID: 0, FieldID: 1}},
	}
	roots, err := rntuple.BuildForest(schema)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	n, ok := roots[1].(*rntuple.NumpyForm)
	require.True(t, ok)
	require.Equal(t, format.Real32, n.ColumnType)
	require.Equal(t, uint32(0), n.PhysicalColumnID)
}

// TestBuildForestNestedStructuralEquality compares a nested record-of-
// collection form tree against its expected shape with go-cmp: a deep
// structural comparison reads better than a pile of field-by-field
// assertions for a whole tree.
func TestBuildForestNestedStructuralEquality(t *testing.T) {
	schema := rntuple.Schema{
		Fields: []rntuple.FieldRecord{
			{ID: 0, ParentFieldID: 0, StructRole: rntuple.RoleRecord, FieldName: "hit"},
			{ID: 1, ParentFieldID: 0, StructRole: rntuple.RoleCollection, FieldName: "hit.energies"},
			leafField(2, 1, "hit.energies._0"),
		},
		Columns: []rntuple.ColumnRecord{
			{ID: 0, Type: format.Index32, FieldID: 1},
			{ID: 1, Type: format.Real32, FieldID: 2},
		},
	}
	roots, err := rntuple.BuildForest(schema)
	require.NoError(t, err)
	require.Len(t, roots, 1)

	want := &rntuple.RecordForm{
		FieldName: "hit",
		Fields: []rntuple.Node{
			&rntuple.ListOffsetForm{
				FieldName:      "hit.energies",
				OffsetColumnID: 0,
				Content: &rntuple.NumpyForm{
					FieldName:        "hit.energies._0",
					ColumnType:       format.Real32,
					PhysicalColumnID: 1,
				},
			},
		},
	}

	if diff := cmp.Diff(want, roots[0]); diff != "" {
		t.Errorf("form tree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildForestDuplicateIDDetected(t *testing.T) {
	// Two distinct field records erroneously sharing id 0 both look
	// top-level; the second visit must be rejected rather than silently
	// producing two roots for the same id.
	schema := rntuple.Schema{
		Fields: []rntuple.FieldRecord{
			{ID: 0, ParentFieldID: 0, StructRole: rntuple.RoleRecord, FieldName: "a"},
			{ID: 0, ParentFieldID: 0, StructRole: rntuple.RoleRecord, FieldName: "a-duplicate"},
		},
	}
	_, err := rntuple.BuildForest(schema)
	require.Error(t, err)
}
