// Package optimizer implements the three post-build passes run over
// every module in order: constant folding, mark-and-sweep pruning, and
// node-shape legalization.
package optimizer

import (
	"combc/internal/errors"
	"combc/internal/ir"
)

// Fold iterates constant folding to a fixed point. Each pass inlines
// any operand that references a Constant node, then
// collapses BinOp/Gate/MultiDriver nodes whose operands are now fully
// constant. Termination is guaranteed because every change strictly
// reduces the number of Link-to-Constant references.
func Fold(m *ir.Module) error {
	for {
		changed, err := foldPass(m)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
	}
}

func foldPass(m *ir.Module) (bool, error) {
	changed := false

	inlineConstants := func(n *ir.Node) {
		for i, a := range n.Args {
			if a.IsConstant {
				continue
			}
			if target := &m.Nodes[a.Node]; target.Kind == ir.KindConstant {
				n.Args[i] = ir.Const(target.Value)
				changed = true
			}
		}
	}

	for i := range m.Nodes {
		n := &m.Nodes[i]
		if n.IsRemoved() {
			continue
		}
		inlineConstants(n)

		switch n.Kind {
		case ir.KindBinOp:
			lhs, rhs := n.Args[0], n.Args[1]
			if lhs.IsConstant && rhs.IsConstant {
				v, err := n.Op.Fold(lhs.Value, rhs.Value)
				if err != nil {
					return false, errors.New(errors.TypeConflict, m.Name, "", "%v", err)
				}
				*n = ir.NewConstant(v)
				changed = true
			}

		case ir.KindGate:
			cond, gated := n.Args[0], n.Args[1]
			if gated.IsConstant && gated.Value == 0 {
				*n = ir.NewConstant(0)
				changed = true
				continue
			}
			if cond.IsConstant {
				pass := (cond.Value != 0) == n.Polarity
				if pass {
					if gated.IsConstant {
						*n = ir.NewConstant(gated.Value)
					} else {
						*n = ir.Node{Kind: ir.KindMultiDriver, Args: []ir.Arg{gated}}
					}
				} else {
					*n = ir.NewConstant(0)
				}
				changed = true
			}

		case ir.KindMultiDriver:
			var sum int32
			var links []ir.Arg
			sawConstant := false
			for _, a := range n.Args {
				if a.IsConstant {
					sum += a.Value
					sawConstant = true
				} else {
					links = append(links, a)
				}
			}
			if !sawConstant {
				continue
			}
			if len(links) == 0 {
				*n = ir.NewConstant(sum)
			} else if sum != 0 {
				n.Args = append(links, ir.Const(sum))
			} else {
				n.Args = links
			}
			changed = true
		}
	}

	return changed, nil
}
