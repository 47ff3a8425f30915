// Package romgen turns a raw byte blob into combc source text for a
// single lookup-table module: one match arm per byte, keyed by address.
// It exists purely as a developer convenience for authoring combinator
// ROMs from binary data without hand-writing the match clause.
package romgen

import (
	"fmt"
	"strings"
)

const entriesPerLine = 8

// Generate emits a module named modName that maps a $A-typed "addr"
// input to data[i], keyed by i+offset, via a match expression with one
// arm per byte. The generated text is meant to be pasted into (or
// concatenated onto) a combc source file ahead of the module that
// calls it.
func Generate(modName string, data []byte, offset int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mod %s(addr: $A) -> $X {\n\toutput(match(addr) {\n", modName)
	for i, v := range data {
		fmt.Fprintf(&b, "\t\t== %d => %d", i+offset, v)
		if i != len(data)-1 {
			b.WriteString(",")
		}
		if i%entriesPerLine == entriesPerLine-1 || i == len(data)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\t});\n}\n")
	return b.String()
}
