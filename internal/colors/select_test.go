package colors

import (
	"testing"

	"combc/internal/ir"
)

func TestSelectColorsOutputLinkRed(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	c := m.Add(ir.NewConstant(1))
	out := m.Add(ir.NewOutput(0, ir.Link(c)))

	if err := Select(m); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := m.Nodes[out].Args[0].Color; got != ir.ColorRed {
		t.Fatalf("expected Output's forwarded arg to forbid Green and pick Red, got %v", got)
	}
}

func TestSelectRejectsBothOperandsFromInput(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	a := m.Add(ir.NewInput(0))
	b := m.Add(ir.NewInput(1))
	bin := m.Add(ir.NewBinOp(ir.Link(a), ir.OpAdd, ir.Link(b)))
	m.Add(ir.NewOutput(0, ir.Link(bin)))

	if err := Select(m); err == nil {
		t.Fatal("expected InputAmbiguity error when both BinOp operands trace to Inputs")
	}
}

func TestSelectForcesOppositeColorsWhenOneSideIsInput(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	in := m.Add(ir.NewInput(0))
	c := m.Add(ir.NewConstant(9))
	other := m.Add(ir.NewBinOp(ir.Link(c), ir.OpAdd, ir.Link(c)))
	bin := m.Add(ir.NewBinOp(ir.Link(in), ir.OpAdd, ir.Link(other)))
	m.Add(ir.NewOutput(0, ir.Link(bin)))

	if err := Select(m); err != nil {
		t.Fatalf("Select: %v", err)
	}
	lhs, rhs := m.Nodes[bin].Args[0], m.Nodes[bin].Args[1]
	if lhs.Color == rhs.Color {
		t.Fatalf("expected opposite colors when one operand is an Input, got lhs=%v rhs=%v", lhs.Color, rhs.Color)
	}
}

func TestSelectBinOpSameForbidsGreenOnInputOperand(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	in := m.Add(ir.NewInput(0))
	same := m.Add(ir.NewBinOpSame(ir.Link(in), ir.OpAdd))
	m.Add(ir.NewOutput(0, ir.Link(same)))

	if err := Select(m); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := m.Nodes[same].Args[0].Color; got != ir.ColorRed {
		t.Fatalf("expected an Input-sourced BinOpSame operand to forbid Green and pick Red, got %v", got)
	}
}

func TestSelectSpreadsFanoutAcrossColors(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	c := m.Add(ir.NewConstant(3))
	bin1 := m.Add(ir.NewBinOp(ir.Link(c), ir.OpAdd, ir.Const(1)))
	bin2 := m.Add(ir.NewBinOp(ir.Link(c), ir.OpAdd, ir.Const(2)))
	m.Add(ir.NewOutput(0, ir.Link(bin1)))
	m.Add(ir.NewOutput(1, ir.Link(bin2)))

	if err := Select(m); err != nil {
		t.Fatalf("Select: %v", err)
	}
	c1 := m.Nodes[bin1].Args[0].Color
	c2 := m.Nodes[bin2].Args[0].Color
	if c1 == c2 {
		t.Fatalf("expected the two consumers of a shared producer to spread across colors, both got %v", c1)
	}
}

func TestIsInputTracesThroughMultiDriver(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	in := m.Add(ir.NewInput(0))
	md := m.Add(ir.NewMultiDriver([]ir.Arg{ir.Link(in)}))

	if !isInput(m, md) {
		t.Fatal("expected isInput to trace through a MultiDriver to its Input source")
	}
}
