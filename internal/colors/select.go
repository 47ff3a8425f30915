// Package colors implements the color selector: every operand Link is
// assigned Red or Green, tracking per-producer fan-out counts so a
// producer feeding many consumers spreads across both colors instead
// of piling onto one.
package colors

import "combc/internal/errors"
import "combc/internal/ir"

type fanout struct{ red, green int }

// Select walks m.Nodes and colors every Link operand in place, except
// the operands of MultiDriver nodes: those stay uncolored and take the
// color of the MultiDriver's consumer when nets are formed.
func Select(m *ir.Module) error {
	counts := make(map[int]*fanout, len(m.Nodes))
	countOf := func(node int) *fanout {
		f, ok := counts[node]
		if !ok {
			f = &fanout{}
			counts[node] = f
		}
		return f
	}

	// pick chooses a color for a Link operand whose source is `src`,
	// honoring a forbidden color if one applies.
	pick := func(src int, forbidGreen, forbidRed bool) ir.WireColor {
		f := countOf(src)
		var color ir.WireColor
		switch {
		case forbidGreen:
			color = ir.ColorRed
		case forbidRed:
			color = ir.ColorGreen
		case f.red <= f.green:
			color = ir.ColorRed
		default:
			color = ir.ColorGreen
		}
		if color == ir.ColorRed {
			f.red++
		} else {
			f.green++
		}
		return color
	}

	for i := range m.Nodes {
		n := &m.Nodes[i]
		if n.IsRemoved() {
			continue
		}
		switch n.Kind {
		case ir.KindOutput:
			if len(n.Args) > 0 && !n.Args[0].IsConstant {
				n.Args[0].Color = pick(n.Args[0].Node, true, false)
			}

		case ir.KindBinOp, ir.KindBinOpCmpGate:
			lhs, rhs := &n.Args[0], &n.Args[1]
			lhsInput := isInput(m, lhs.Node) && !lhs.IsConstant
			rhsInput := isInput(m, rhs.Node) && !rhs.IsConstant
			if lhsInput && rhsInput {
				return errors.New(errors.InputAmbiguity, m.Name, "", "node %d: both operands trace to module Inputs", i)
			}
			switch {
			case lhsInput:
				if !rhs.IsConstant {
					c := pick(rhs.Node, false, false)
					rhs.Color = c
					lhs.Color = invert(c)
				}
			case rhsInput:
				if !lhs.IsConstant {
					c := pick(lhs.Node, false, false)
					lhs.Color = c
					rhs.Color = invert(c)
				}
			default:
				if !lhs.IsConstant {
					lhs.Color = pick(lhs.Node, false, false)
				}
				if !rhs.IsConstant {
					rhs.Color = pick(rhs.Node, false, false)
				}
			}

		case ir.KindBinOpSame:
			arg := &n.Args[0]
			if !arg.IsConstant {
				arg.Color = pick(arg.Node, isInput(m, arg.Node), false)
			}
		}
	}
	return nil
}

func invert(c ir.WireColor) ir.WireColor {
	if c == ir.ColorRed {
		return ir.ColorGreen
	}
	return ir.ColorRed
}

// isInput reports whether node idx is, transitively through
// MultiDrivers, fed directly by a module Input.
func isInput(m *ir.Module, idx int) bool {
	if idx < 0 || idx >= len(m.Nodes) {
		return false
	}
	n := m.Nodes[idx]
	switch n.Kind {
	case ir.KindInput:
		return true
	case ir.KindMultiDriver:
		for _, a := range n.Args {
			if !a.IsConstant && isInput(m, a.Node) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
