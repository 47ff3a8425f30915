package layout

import "combc/internal/ir"

// Run places every node and routes every net for a built module,
// mutating m.Nodes[i].Pos and m.Links in place.
func Run(m *ir.Module, seed int64) error {
	Place(m)
	nets, err := BuildNets(m)
	if err != nil {
		return err
	}
	return Route(m, nets, seed)
}
