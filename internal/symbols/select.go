package symbols

import (
	"golang.org/x/exp/slices"

	"combc/internal/errors"
	"combc/internal/ir"
)

type notEqual struct{ a, b int }

// Select derives Equal/NotEqual/EqualToSymbol constraints from a
// module's node list, solves them with union-find plus an inequality
// repair loop, and writes the result into each node's Symbol field.
func Select(m *ir.Module) error {
	uf := newUnionFind(len(m.Nodes))
	pinned := make(map[int]int) // root -> pinned symbol
	var notEquals []notEqual

	pin := func(node, symbol int) error {
		root := uf.find(node)
		if existing, ok := pinned[root]; ok && existing != symbol {
			return errors.New(errors.TypeConflict, m.Name, "", "node %d pinned to both symbol %d and %d", node, existing, symbol)
		}
		pinned[root] = symbol
		return nil
	}

	for i, n := range m.Nodes {
		switch n.Kind {
		case ir.KindInput:
			if n.Port < len(m.ArgTypeHints) && m.ArgTypeHints[n.Port] != nil {
				if err := pin(i, *m.ArgTypeHints[n.Port]); err != nil {
					return err
				}
			}
		case ir.KindOutput:
			if n.Port < len(m.ReturnTypeHints) && m.ReturnTypeHints[n.Port] != nil {
				target := i
				if len(n.Args) > 0 && !n.Args[0].IsConstant {
					target = n.Args[0].Node
				}
				if err := pin(target, *m.ReturnTypeHints[n.Port]); err != nil {
					return err
				}
			}
		case ir.KindBinOp:
			if !n.Args[0].IsConstant && !n.Args[1].IsConstant {
				notEquals = append(notEquals, notEqual{n.Args[0].Node, n.Args[1].Node})
			}
		case ir.KindBinOpCmpGate:
			lhs, gated := n.Args[0], n.Args[1]
			if !lhs.IsConstant && !gated.IsConstant {
				notEquals = append(notEquals, notEqual{lhs.Node, gated.Node})
			}
			if !gated.IsConstant {
				uf.union(gated.Node, i)
			}
		case ir.KindMultiDriver:
			for _, a := range n.Args {
				if !a.IsConstant {
					uf.union(a.Node, i)
				}
			}
		}
	}

	for root, symbol := range pinned {
		pinned[uf.find(root)] = symbol
	}

	slices.SortFunc(notEquals, func(a, b notEqual) int {
		if a.a != b.a {
			return a.a - b.a
		}
		return a.b - b.b
	})

	for _, ne := range notEquals {
		ra, rb := uf.find(ne.a), uf.find(ne.b)
		if ra == rb {
			return errors.New(errors.TypeConflict, m.Name, "", "nodes %d and %d must differ but were unified", ne.a, ne.b)
		}
	}

	symbolOf := make(map[int]int)
	for root, s := range pinned {
		symbolOf[root] = s
	}

	const maxPasses = 1 << 16
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, ne := range notEquals {
			ra, rb := uf.find(ne.a), uf.find(ne.b)
			sa, saOK := symbolOf[ra]
			sb, sbOK := symbolOf[rb]
			if !saOK {
				sa = 0
			}
			if !sbOK {
				sb = 0
			}
			if sa != sb {
				continue
			}
			_, aPinned := pinned[ra]
			_, bPinned := pinned[rb]
			switch {
			case aPinned && bPinned:
				return errors.New(errors.TypeConflict, m.Name, "", "nodes %d and %d both pinned to symbol %d but must differ", ne.a, ne.b, sa)
			case bPinned:
				symbolOf[ra] = sa + 1
			default:
				symbolOf[rb] = sb + 1
			}
			changed = true
		}
		if !changed {
			break
		}
		if pass == maxPasses-1 {
			return errors.New(errors.TypeConflict, m.Name, "", "symbol repair loop failed to converge")
		}
	}

	for i := range m.Nodes {
		root := uf.find(i)
		m.Nodes[i].Symbol = symbolOf[root]
	}
	return nil
}
