package ir

import "testing"

func TestOperatorFoldArithmeticWraps(t *testing.T) {
	v, err := OpAdd.Fold(2147483647, 1) // MaxInt32 + 1 wraps to MinInt32
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if v != -2147483648 {
		t.Fatalf("expected wrapping overflow to -2147483648, got %d", v)
	}
}

func TestOperatorFoldDivisionByZeroErrors(t *testing.T) {
	if _, err := OpDiv.Fold(1, 0); err == nil {
		t.Fatal("expected an error dividing by zero")
	}
}

func TestOperatorFoldPowerNegativeExponentErrors(t *testing.T) {
	if _, err := OpPower.Fold(2, -1); err == nil {
		t.Fatal("expected an error for a negative exponent")
	}
}

func TestOperatorFoldComparators(t *testing.T) {
	v, err := OpLt.Fold(1, 2)
	if err != nil || v != 1 {
		t.Fatalf("Fold(1<2) = (%d, %v), want (1, nil)", v, err)
	}
	v, err = OpLt.Fold(2, 1)
	if err != nil || v != 0 {
		t.Fatalf("Fold(2<1) = (%d, %v), want (0, nil)", v, err)
	}
}

func TestOperatorFlipAndInvert(t *testing.T) {
	if OpLt.Flip() != OpGt || OpGt.Flip() != OpLt {
		t.Fatal("expected Lt/Gt to flip into each other")
	}
	if OpEq.Flip() != OpEq {
		t.Fatal("expected Eq to be symmetric under Flip")
	}
	if OpLt.Invert() != OpGeq || OpGeq.Invert() != OpLt {
		t.Fatal("expected Lt/Geq to invert into each other")
	}
}

func TestModuleResolveFollowsMultiDriverChain(t *testing.T) {
	m := NewModule("main", DefaultSettings())
	c := m.Add(NewConstant(5))
	md1 := m.Add(NewMultiDriver([]Arg{Link(c)}))
	md2 := m.Add(NewMultiDriver([]Arg{Link(md1)}))

	target, ok := m.Resolve(md2)
	if !ok || target != c {
		t.Fatalf("expected Resolve to chase through both MultiDrivers to %d, got (%d, %v)", c, target, ok)
	}
}

func TestModuleResolveDetectsEmptyMultiDriver(t *testing.T) {
	m := NewModule("main", DefaultSettings())
	md := m.Add(NewMultiDriver(nil))

	if _, ok := m.Resolve(md); ok {
		t.Fatal("expected Resolve to fail on an empty MultiDriver")
	}
}

func TestModuleAddReturnsSequentialIndices(t *testing.T) {
	m := NewModule("main", DefaultSettings())
	a := m.Add(NewConstant(1))
	b := m.Add(NewConstant(2))
	if a != 0 || b != 1 {
		t.Fatalf("expected sequential indices 0,1, got %d,%d", a, b)
	}
}
