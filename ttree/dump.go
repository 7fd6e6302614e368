package ttree

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Dump renders a human-readable table of the tree's branches — name,
// kind, dtype, basket count and current entry total. Debug only, never
// called from Extend's hot path.
func (w *Writer) Dump(out io.Writer) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Branch", "Kind", "Type", "Baskets", "Entries"})
	for _, b := range w.tree.branches {
		if b.Kind == KindRecord {
			for _, field := range b.Fields {
				appendBranchRow(table, field, w.tree.numBaskets, w.tree.numEntries)
			}
			continue
		}
		appendBranchRow(table, b, w.tree.numBaskets, w.tree.numEntries)
	}
	table.Render()
}

func appendBranchRow(table *tablewriter.Table, b *Branch, numBaskets int, numEntries int64) {
	table.Append([]string{
		b.Name,
		branchKindName(b.Kind),
		b.Type.Letter(),
		fmt.Sprintf("%d", numBaskets),
		fmt.Sprintf("%d", numEntries),
	})
}

func branchKindName(k BranchKind) string {
	switch k {
	case KindNormal:
		return "normal"
	case KindCounter:
		return "counter"
	case KindJagged:
		return "jagged"
	case KindRecord:
		return "record"
	default:
		return "?"
	}
}
