package optimizer

import "combc/internal/errors"
import "combc/internal/ir"

// Fix legalizes the graph into the shapes the back end can emit. Steps
// run in a single forward sweep —
// self-operand collapse, comparator-LHS correction, MultiDriver
// constant materialization, and Gate expansion — because the builder
// appends a node's operands before the node itself, so by the time a
// later node is visited its operands have already been fixed. The one
// exception is a let-binding slot, reserved before its right-hand side;
// it is a MultiDriver, whose fix (constant materialization) does not
// depend on its operands' shapes.
// The short-cycle check runs once afterward over the whole graph.
func Fix(m *ir.Module) error {
	for i := range m.Nodes {
		n := &m.Nodes[i]
		if n.IsRemoved() {
			continue
		}
		switch n.Kind {
		case ir.KindBinOp:
			fixBinOp(m, i)
		case ir.KindMultiDriver:
			fixMultiDriver(m, i)
		case ir.KindGate:
			fixGate(m, i)
		}
	}
	return checkShortCycles(m)
}

func fixBinOp(m *ir.Module, i int) {
	n := &m.Nodes[i]
	lhs, rhs := n.Args[0], n.Args[1]

	if !lhs.IsConstant && !rhs.IsConstant && lhs.Node == rhs.Node {
		op := n.Op
		*n = ir.NewBinOpSame(lhs, op)
		return
	}

	if !n.Op.IsComparator() {
		return
	}
	if !lhs.IsConstant {
		return
	}
	if !rhs.IsConstant {
		n.Args[0], n.Args[1] = rhs, lhs
		n.Op = n.Op.Flip()
		return
	}
	idx := materializeConstant(m, i, lhs.Value)
	n.Args[0] = ir.Link(idx)
}

func fixMultiDriver(m *ir.Module, i int) {
	n := &m.Nodes[i]
	for j, a := range n.Args {
		if !a.IsConstant {
			continue
		}
		idx := materializeConstant(m, i, a.Value)
		n.Args[j] = ir.Link(idx)
	}
}

func fixGate(m *ir.Module, i int) {
	n := &m.Nodes[i]
	cond, gated, polarity := n.Args[0], n.Args[1], n.Polarity

	if gated.IsConstant {
		gated = ir.Link(materializeConstant(m, i, gated.Value))
	}

	if !cond.IsConstant {
		target := m.Nodes[cond.Node]
		if target.Kind == ir.KindBinOp && target.Op.IsComparator() {
			tlhs, trhs := target.Args[0], target.Args[1]
			if !tlhs.IsConstant && trhs.IsConstant {
				op := target.Op
				if !polarity {
					op = op.Invert()
				}
				m.Nodes[i] = ir.NewBinOpCmpGate(tlhs, op, trhs.Value, gated)
				return
			}
		}
	}

	if cond.IsConstant {
		cond = ir.Link(materializeConstant(m, i, cond.Value))
	}
	op := ir.OpEq
	if polarity {
		op = ir.OpNeq
	}
	m.Nodes[i] = ir.NewBinOpCmpGate(cond, op, 0, gated)
}

// materializeConstant creates a Link to a Constant(v) node, preferring
// to reuse a Removed slot near the referring node so the list stays
// compact rather than growing unboundedly across repeated legalization.
func materializeConstant(m *ir.Module, near int, v int32) int {
	for offset := 0; offset <= len(m.Nodes); offset++ {
		if idx := near + offset; idx < len(m.Nodes) && m.Nodes[idx].Kind == ir.KindRemoved {
			m.Nodes[idx] = ir.NewConstant(v)
			return idx
		}
		if offset == 0 {
			continue
		}
		if idx := near - offset; idx >= 0 && m.Nodes[idx].Kind == ir.KindRemoved {
			m.Nodes[idx] = ir.NewConstant(v)
			return idx
		}
	}
	return m.Add(ir.NewConstant(v))
}

func checkShortCycles(m *ir.Module) error {
	for i, n := range m.Nodes {
		if n.Kind != ir.KindMultiDriver {
			continue
		}
		if err := traceMultiDriver(m, i, i, map[int]bool{i: true}); err != nil {
			return err
		}
	}
	return nil
}

func traceMultiDriver(m *ir.Module, origin, idx int, visiting map[int]bool) error {
	for _, a := range m.Nodes[idx].Args {
		if a.IsConstant {
			continue
		}
		if a.Node == origin {
			return errors.New(errors.ShortCycle, m.Name, "", "multi-driver node %d re-enters itself", origin)
		}
		if m.Nodes[a.Node].Kind != ir.KindMultiDriver || visiting[a.Node] {
			continue
		}
		visiting[a.Node] = true
		if err := traceMultiDriver(m, origin, a.Node, visiting); err != nil {
			return err
		}
	}
	return nil
}
