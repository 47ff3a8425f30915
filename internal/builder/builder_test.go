package builder

import (
	"testing"

	"combc/internal/errors"
	"combc/internal/ir"
	"combc/internal/parser"
)

type fakeResolver struct{ ids map[string]int }

func (f fakeResolver) Resolve(name string) (int, bool) {
	id, ok := f.ids[name]
	return id, ok
}

func newResolver() fakeResolver {
	return fakeResolver{ids: map[string]int{"A": 0, "B": 1, "C": 2, "D": 3}}
}

func sym(s string) *string { return &s }

func ident(name string) *parser.Ident  { return &parser.Ident{Name: name} }
func intLit(v int64) *parser.IntLit    { return &parser.IntLit{Value: v} }
func output(vals ...parser.Expr) *parser.OutputStmt {
	return &parser.OutputStmt{Values: vals}
}

// mod main(x:$A, y:$B) -> $C { output(x + y); }
func TestBuildAddTwoInputs(t *testing.T) {
	decl := &parser.ModDecl{
		Name: "main",
		Args: []parser.Param{{Name: "x", Symbol: sym("A")}, {Name: "y", Symbol: sym("B")}},
		Returns: []*string{sym("C")},
		Body: []parser.Stmt{
			output(&parser.Binary{Left: ident("x"), Op: ir.OpAdd, Right: ident("y")}),
		},
	}

	b := New(newResolver(), ir.DefaultSettings())
	table, _, err := b.Build([]parser.Item{decl})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := table.Modules["main"]
	if m == nil {
		t.Fatal("expected module main to be built")
	}

	var bin *ir.Node
	for i := range m.Nodes {
		if m.Nodes[i].Kind == ir.KindBinOp {
			bin = &m.Nodes[i]
		}
	}
	if bin == nil || bin.Op != ir.OpAdd {
		t.Fatalf("expected a surviving Add BinOp, nodes=%+v", m.Nodes)
	}
}

// mod main() -> $A { output(2 * 3 + 4); } folds to Constant(10).
func TestBuildFoldsConstantExpression(t *testing.T) {
	decl := &parser.ModDecl{
		Name:    "main",
		Returns: []*string{sym("A")},
		Body: []parser.Stmt{
			output(&parser.Binary{
				Left:  &parser.Binary{Left: intLit(2), Op: ir.OpMul, Right: intLit(3)},
				Op:    ir.OpAdd,
				Right: intLit(4),
			}),
		},
	}

	b := New(newResolver(), ir.DefaultSettings())
	table, _, err := b.Build([]parser.Item{decl})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := table.Modules["main"]

	var out *ir.Node
	for i := range m.Nodes {
		if m.Nodes[i].Kind == ir.KindOutput {
			out = &m.Nodes[i]
		}
	}
	if out == nil {
		t.Fatal("expected a surviving Output node")
	}
	arg := out.Args[0]
	if !arg.IsConstant || arg.Value != 10 {
		if arg.IsConstant {
			t.Fatalf("expected folded constant 10, got %d", arg.Value)
		}
		target := m.Nodes[arg.Node]
		if target.Kind != ir.KindConstant || target.Value != 10 {
			t.Fatalf("expected output to resolve to Constant(10), got %+v", target)
		}
	}
}

// Sub-module inlining collapses to a single BinOp.
func TestBuildInlinesSubModuleCall(t *testing.T) {
	addMod := &parser.ModDecl{
		Name:    "add",
		Args:    []parser.Param{{Name: "a", Symbol: sym("A")}, {Name: "b", Symbol: sym("B")}},
		Returns: []*string{sym("C")},
		Body: []parser.Stmt{
			output(&parser.Binary{Left: ident("a"), Op: ir.OpAdd, Right: ident("b")}),
		},
	}
	mainMod := &parser.ModDecl{
		Name:    "main",
		Args:    []parser.Param{{Name: "x", Symbol: sym("A")}, {Name: "y", Symbol: sym("B")}},
		Returns: []*string{sym("C")},
		Body: []parser.Stmt{
			output(&parser.CallExpr{Name: "add", Args: []parser.Expr{ident("x"), ident("y")}}),
		},
	}

	b := New(newResolver(), ir.DefaultSettings())
	table, _, err := b.Build([]parser.Item{addMod, mainMod})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := table.Modules["main"]

	var binCount int
	for _, n := range m.Nodes {
		if n.Kind == ir.KindBinOp {
			binCount++
		}
	}
	if binCount != 1 {
		t.Fatalf("expected exactly one surviving Add BinOp after inlining+pruning, got %d (nodes=%+v)", binCount, m.Nodes)
	}
}

func TestBuildRejectsUndefinedModuleCall(t *testing.T) {
	mainMod := &parser.ModDecl{
		Name: "main",
		Body: []parser.Stmt{
			output(&parser.CallExpr{Name: "missing", Args: nil}),
		},
	}

	b := New(newResolver(), ir.DefaultSettings())
	_, _, err := b.Build([]parser.Item{mainMod})
	if err == nil {
		t.Fatal("expected an error calling an undefined module")
	}
	ce, ok := err.(*errors.CompileError)
	if !ok || ce.Kind != errors.Undefined {
		t.Fatalf("expected Undefined compile error, got %v", err)
	}
}

func TestBuildRejectsDuplicateConstant(t *testing.T) {
	items := []parser.Item{
		&parser.ConstDecl{Name: "X", Value: 1},
		&parser.ConstDecl{Name: "X", Value: 2},
	}
	b := New(newResolver(), ir.DefaultSettings())
	_, _, err := b.Build(items)
	if err == nil {
		t.Fatal("expected an error redefining a constant")
	}
}

func TestBuildRejectsStatementAfterOutput(t *testing.T) {
	decl := &parser.ModDecl{
		Name: "main",
		Body: []parser.Stmt{
			output(intLit(1)),
			&parser.LetStmt{Names: []string{"z"}, Value: intLit(2)},
		},
	}
	b := New(newResolver(), ir.DefaultSettings())
	_, _, err := b.Build([]parser.Item{decl})
	if err == nil {
		t.Fatal("expected an error for a statement following output(...)")
	}
}

func TestBuildForwardLetBindingReferencesLaterBinding(t *testing.T) {
	decl := &parser.ModDecl{
		Name: "main",
		Body: []parser.Stmt{
			&parser.LetStmt{Names: []string{"a"}, Value: ident("b")},
			&parser.LetStmt{Names: []string{"b"}, Value: intLit(42)},
			output(ident("a")),
		},
	}
	b := New(newResolver(), ir.DefaultSettings())
	table, _, err := b.Build([]parser.Item{decl})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := table.Modules["main"]

	var out *ir.Node
	for i := range m.Nodes {
		if m.Nodes[i].Kind == ir.KindOutput {
			out = &m.Nodes[i]
		}
	}
	if out == nil {
		t.Fatal("expected a surviving Output node")
	}
	arg := out.Args[0]
	if arg.IsConstant {
		if arg.Value != 42 {
			t.Fatalf("expected forward-bound value 42, got %d", arg.Value)
		}
		return
	}
	if m.Nodes[arg.Node].Value != 42 {
		t.Fatalf("expected forward-bound value 42, got %+v", m.Nodes[arg.Node])
	}
}
