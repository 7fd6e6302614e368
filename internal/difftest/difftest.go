// Package difftest renders a unified diff between an expected and an
// actual string, for use in test failure messages where a byte-layout or
// tree mismatch is easier to read as a diff than as two dumps.
package difftest

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Diff returns a unified diff of want vs got, empty if they are equal. name
// labels both sides of the diff header.
func Diff(name string, want, got string) string {
	if want == got {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(name), want, got)
	return fmt.Sprint(gotextdiff.ToUnified("want/"+name, "got/"+name, want, edits))
}
