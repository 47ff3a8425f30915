package optimizer

import "combc/internal/ir"

// Prune is a mark-and-sweep reachability pass. Input and Output nodes
// are roots — Inputs survive unconditionally since callers may still
// reference them by index even with no local reader, Outputs seed the
// worklist. Anything left unvisited becomes Removed.
func Prune(m *ir.Module) error {
	reached := make([]bool, len(m.Nodes))
	var worklist []int

	for i, n := range m.Nodes {
		if n.Kind == ir.KindInput {
			reached[i] = true
		}
		if n.Kind == ir.KindOutput {
			reached[i] = true
			worklist = append(worklist, i)
		}
	}

	for len(worklist) > 0 {
		idx := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, a := range m.Nodes[idx].Args {
			if a.IsConstant || reached[a.Node] {
				continue
			}
			reached[a.Node] = true
			worklist = append(worklist, a.Node)
		}
	}

	for i := range m.Nodes {
		if !reached[i] {
			m.Nodes[i] = ir.Node{Kind: ir.KindRemoved}
		}
	}
	return nil
}
