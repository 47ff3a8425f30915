package layout

import (
	"golang.org/x/exp/slices"

	"combc/internal/errors"
	"combc/internal/ir"
)

// Net is a coalesced set of endpoints that all sit on one logical wire
// color — the unit the router connects with pairwise WireLinks.
type Net struct {
	Color     ir.WireColor
	Endpoints []ir.Endpoint
}

type registry struct {
	m       *ir.Module
	nets    []*Net
	indexOf map[ir.Endpoint]int
}

// BuildNets walks the node list and forms nets from every consumer's
// Link operands, recursing through MultiDriver sources.
func BuildNets(m *ir.Module) ([]*Net, error) {
	r := &registry{m: m, indexOf: make(map[ir.Endpoint]int)}
	for i, n := range m.Nodes {
		if n.IsRemoved() {
			continue
		}
		switch n.Kind {
		case ir.KindOutput:
			if len(n.Args) > 0 {
				if err := r.addLink(n.Args[0], i); err != nil {
					return nil, err
				}
			}
		case ir.KindBinOp, ir.KindBinOpCmpGate:
			for _, a := range n.Args {
				if err := r.addLink(a, i); err != nil {
					return nil, err
				}
			}
		case ir.KindBinOpSame:
			if err := r.addLink(n.Args[0], i); err != nil {
				return nil, err
			}
		}
	}
	// Endpoint order within a net otherwise reflects map-assisted
	// union order; sort it so the router's pairwise scan (and hence
	// which links it emits first) is reproducible across runs.
	for _, nt := range r.nets {
		slices.SortFunc(nt.Endpoints, func(a, b ir.Endpoint) int {
			if a.Node != b.Node {
				return a.Node - b.Node
			}
			return int(a.Dir) - int(b.Dir)
		})
	}
	return r.nets, nil
}

// addLink registers a wire between src (a consumer's operand) and
// destNode (the consumer). Constant operands carry no wire. A
// MultiDriver source is expanded into its producers, each wired with
// the consumer's color.
func (r *registry) addLink(src ir.Arg, destNode int) error {
	if src.IsConstant {
		return nil
	}
	if r.m.Nodes[src.Node].Kind == ir.KindMultiDriver {
		for _, a := range r.m.Nodes[src.Node].Args {
			if a.IsConstant {
				return errors.New(errors.EmitInvalid, r.m.Name, "", "node %d: MultiDriver retains a constant operand at net-formation time", src.Node)
			}
			a.Color = src.Color
			if err := r.addLink(a, destNode); err != nil {
				return err
			}
		}
		return nil
	}
	if src.Color == ir.ColorNone {
		return errors.New(errors.EmitInvalid, r.m.Name, "", "node %d: link to node %d reached net formation uncolored", destNode, src.Node)
	}
	srcEP := ir.Endpoint{Node: src.Node, Dir: ir.DirOut, Color: src.Color}
	destEP := ir.Endpoint{Node: destNode, Dir: ir.DirIn, Color: src.Color}
	return r.union(srcEP, destEP)
}

func (r *registry) union(a, b ir.Endpoint) error {
	ia, aok := r.indexOf[a]
	ib, bok := r.indexOf[b]
	switch {
	case aok && bok:
		if ia != ib {
			return errors.New(errors.PlacementConflict, r.m.Name, "", "endpoints %+v and %+v already belong to distinct nets", a, b)
		}
	case aok:
		r.nets[ia].Endpoints = append(r.nets[ia].Endpoints, b)
		r.indexOf[b] = ia
	case bok:
		r.nets[ib].Endpoints = append(r.nets[ib].Endpoints, a)
		r.indexOf[a] = ib
	default:
		idx := len(r.nets)
		r.nets = append(r.nets, &Net{Color: a.Color, Endpoints: []ir.Endpoint{a, b}})
		r.indexOf[a] = idx
		r.indexOf[b] = idx
	}
	return nil
}
