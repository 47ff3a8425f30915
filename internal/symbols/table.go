// Package symbols implements the symbol-index -> concrete-signal table
// loaded from the embedded assets and the constraint-based symbol
// selector that assigns every IR node an integer symbol.
package symbols

import (
	"encoding/json"
	"strings"

	"combc/internal/errors"
)

// Signal is a concrete Factorio signal reference.
type Signal struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type entry struct {
	ID     string `json:"id"`
	Signal Signal `json:"signal"`
}

// Table is the symbol-index -> Signal table loaded once from
// assets/symbols.json before any module is built, then treated as
// read-only.
type Table struct {
	entries []entry
	byID    map[string]int
}

// Load parses the symbols.json asset. Lookups by id are case-insensitive.
func Load(data []byte) (*Table, error) {
	var raw []entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.EmitInvalid, "", "malformed symbols.json")
	}
	t := &Table{entries: raw, byID: make(map[string]int, len(raw))}
	for i, e := range raw {
		t.byID[strings.ToLower(e.ID)] = i
	}
	return t, nil
}

// Resolve satisfies builder.SymbolResolver: it maps a source-level "$NAME"
// annotation (NAME, without the sigil) to its symbol-table index.
func (t *Table) Resolve(name string) (int, bool) {
	idx, ok := t.byID[strings.ToLower(name)]
	return idx, ok
}

// Signal returns the concrete signal bound to a resolved symbol index.
// Index 0 is always valid: it is the display signal hardcoded for a
// bare constant output, independent of symbol selection.
func (t *Table) Signal(symbol int) (Signal, bool) {
	if symbol < 0 || symbol >= len(t.entries) {
		return Signal{}, false
	}
	return t.entries[symbol].Signal, true
}

// Len reports how many symbols the table defines.
func (t *Table) Len() int { return len(t.entries) }
