package rntuple

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Dump renders a human-readable table of the reader's top-level fields
// (name, form kind, backing column id(s)). Debug only, never called from
// the decode path.
func (r *Reader) Dump(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Kind", "Columns"})
	for _, n := range r.forest {
		appendFormRow(table, n, "")
	}
	table.Render()
}

func appendFormRow(table *tablewriter.Table, n Node, prefix string) {
	name := prefix + n.Name()
	table.Append([]string{name, formKind(n), formColumns(n)})
	for _, child := range n.Children() {
		appendFormRow(table, child, name+".")
	}
}

func formKind(n Node) string {
	switch n.(type) {
	case *NumpyForm:
		return "leaf"
	case *ListOffsetForm:
		return "list-offset"
	case *RegularForm:
		return "regular"
	case *RecordForm:
		return "record"
	case *UnionForm:
		return "union"
	default:
		return "?"
	}
}

func formColumns(n Node) string {
	switch f := n.(type) {
	case *NumpyForm:
		return fmt.Sprintf("%d (%s)", f.PhysicalColumnID, f.ColumnType)
	case *ListOffsetForm:
		return fmt.Sprintf("%d (offsets)", f.OffsetColumnID)
	case *UnionForm:
		return fmt.Sprintf("%d (switch)", f.TagColumnID)
	default:
		return ""
	}
}
