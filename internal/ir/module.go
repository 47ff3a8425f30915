package ir

// Endpoint is one side of a net or a finished link: the node it touches,
// which port direction, and (once colors are chosen) which color.
type Endpoint struct {
	Node  int
	Dir   Direction
	Color WireColor
}

// WireLink is a single finished wire segment between two endpoints —
// the pairwise, length-checked output of the router.
type WireLink struct {
	Color WireColor
	A, B  Endpoint
}

// Settings are the compile-time switches threaded through the builder's
// post-build pipeline.
type Settings struct {
	Fold  bool
	Prune bool
}

// DefaultSettings enables every optimization.
func DefaultSettings() Settings { return Settings{Fold: true, Prune: true} }

// Module is one compiled module's intermediate representation: its
// node list plus everything later passes hang off each node by index.
type Module struct {
	Name     string
	Settings Settings

	PortCount int
	// Bindings maps a source identifier to the IRArg it currently
	// resolves to (a let-binding, an argument, or a call-site proxy).
	Bindings map[string]Arg

	Nodes []Node

	// OutputsSet is true once an output(...) statement has been lowered;
	// any statement after output(...) is fatal.
	OutputsSet bool

	// ArgTypeHints / ReturnTypeHints hold resolved symbol-table indices
	// (nil = no annotation) used to seed EqualToSymbol constraints.
	ArgTypeHints    []*int
	ReturnTypeHints []*int

	// Links is populated by the placer/router once layout succeeds.
	Links []WireLink
}

// NewModule allocates an empty module ready for argument binding.
func NewModule(name string, settings Settings) *Module {
	return &Module{
		Name:     name,
		Settings: settings,
		Bindings: make(map[string]Arg),
	}
}

// Add appends a node and returns its index.
func (m *Module) Add(n Node) int {
	m.Nodes = append(m.Nodes, n)
	return len(m.Nodes) - 1
}

// Resolve follows a Link's target index through any chain of
// MultiDrivers to the first non-MultiDriver node, returning -1 if the
// chain is empty or malformed: every Link must resolve transitively to
// a node that is not Removed.
func (m *Module) Resolve(idx int) (int, bool) {
	seen := make(map[int]bool)
	for {
		if idx < 0 || idx >= len(m.Nodes) {
			return -1, false
		}
		if seen[idx] {
			return -1, false
		}
		seen[idx] = true
		n := &m.Nodes[idx]
		if n.Kind == KindRemoved {
			return -1, false
		}
		if n.Kind != KindMultiDriver {
			return idx, true
		}
		if len(n.Args) == 0 {
			return -1, false
		}
		// A MultiDriver resolves through its first link operand; callers
		// that need every producer should walk Args directly instead.
		found := false
		for _, a := range n.Args {
			if !a.IsConstant {
				idx = a.Node
				found = true
				break
			}
		}
		if !found {
			return -1, false
		}
	}
}

// ConstantTable maps a top-level constant identifier to its literal
// value, process-wide during a single compilation.
type ConstantTable map[string]int64

// Table is the set of fully-built modules known during a compilation,
// keyed by declared name.
type Table struct {
	Modules map[string]*Module
}

func NewTable() *Table {
	return &Table{Modules: make(map[string]*Module)}
}
