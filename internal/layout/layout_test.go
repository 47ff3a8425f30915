package layout

import (
	"testing"

	"combc/internal/ir"
)

func TestEmodIsNonNegative(t *testing.T) {
	if got := emod(-1, 18); got != 17 {
		t.Fatalf("emod(-1, 18) = %d, want 17", got)
	}
	if got := emod(19, 18); got != 1 {
		t.Fatalf("emod(19, 18) = %d, want 1", got)
	}
}

func TestReservedCellRule(t *testing.T) {
	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{1, 0, true},
		{2, 0, false},
		{0, 9, true},
		{0, 1, false},
		{-17, 0, true}, // -17 mod 18 = 1
	}
	for _, c := range cases {
		if got := reserved(c.x, c.y); got != c.want {
			t.Errorf("reserved(%d, %d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestTruePosOffsetsCombinatorsByHalfCell(t *testing.T) {
	combinator := ir.Node{Kind: ir.KindBinOp, Pos: &ir.Pos{X: 2, Y: 3}}
	x, y := TruePos(combinator)
	if x != 2 || y != 6.5 {
		t.Fatalf("combinator true position = (%v, %v), want (2, 6.5)", x, y)
	}

	plain := ir.Node{Kind: ir.KindConstant, Pos: &ir.Pos{X: 2, Y: 3}}
	x, y = TruePos(plain)
	if x != 2 || y != 6 {
		t.Fatalf("non-combinator true position = (%v, %v), want (2, 6)", x, y)
	}
}

func TestPlaceAssignsDistinctPositions(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	m.PortCount = 2
	in0 := m.Add(ir.NewInput(0))
	in1 := m.Add(ir.NewInput(1))
	c := m.Add(ir.NewConstant(5))
	bin := m.Add(ir.NewBinOp(ir.Link(in0), ir.OpAdd, ir.Link(c)))
	out := m.Add(ir.NewOutput(0, ir.Link(bin)))

	Place(m)

	seen := make(map[[2]int]int)
	for _, idx := range []int{in0, in1, c, bin, out} {
		pos := m.Nodes[idx].Pos
		if pos == nil {
			t.Fatalf("node %d was not placed", idx)
		}
		key := [2]int{pos.X, pos.Y}
		if other, ok := seen[key]; ok {
			t.Fatalf("nodes %d and %d collide at %v", other, idx, key)
		}
		seen[key] = idx
		if reserved(pos.X, pos.Y) {
			t.Fatalf("node %d placed on a reserved cell %v", idx, key)
		}
	}
}

func TestBuildNetsGroupsColoredLinks(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	in := m.Add(ir.NewInput(0))
	out := m.Add(ir.NewOutput(0, ir.LinkColored(in, ir.ColorRed)))

	nets, err := BuildNets(m)
	if err != nil {
		t.Fatalf("BuildNets: %v", err)
	}
	if len(nets) != 1 {
		t.Fatalf("expected 1 net, got %d", len(nets))
	}
	if len(nets[0].Endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(nets[0].Endpoints))
	}
	if nets[0].Color != ir.ColorRed {
		t.Fatalf("expected net color red, got %v", nets[0].Color)
	}
	_ = out
}

func TestBuildNetsRejectsUncoloredLink(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	in := m.Add(ir.NewInput(0))
	m.Add(ir.NewOutput(0, ir.Link(in))) // no color assigned

	if _, err := BuildNets(m); err == nil {
		t.Fatal("expected an error for an uncolored link reaching net formation")
	}
}

func TestRunEndToEndPlacesAndRoutesSimpleModule(t *testing.T) {
	m := ir.NewModule("main", ir.DefaultSettings())
	m.PortCount = 1
	in := m.Add(ir.NewInput(0))
	m.Add(ir.NewOutput(0, ir.LinkColored(in, ir.ColorRed)))

	if err := Run(m, 1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(m.Links) != 1 {
		t.Fatalf("expected 1 wire link, got %d", len(m.Links))
	}
}
