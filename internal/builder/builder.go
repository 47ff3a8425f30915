// Package builder lowers a parsed module into combc's node-graph IR:
// argument binding, two-pass forward let-bindings, expression lowering
// (including gates, matches, and sub-module inlining), and the
// post-build fold/prune/fix pipeline.
package builder

import (
	"math"

	"combc/internal/errors"
	"combc/internal/ir"
	"combc/internal/optimizer"
	"combc/internal/parser"
)

// SymbolResolver maps a source-level "$NAME" signal annotation to its
// resolved symbol-table index. internal/symbols.Table implements this.
type SymbolResolver interface {
	Resolve(name string) (int, bool)
}

// Builder accumulates the constant and module tables for one compilation.
type Builder struct {
	resolver  SymbolResolver
	settings  ir.Settings
	constants ir.ConstantTable
	table     *ir.Table
}

func New(resolver SymbolResolver, settings ir.Settings) *Builder {
	return &Builder{
		resolver:  resolver,
		settings:  settings,
		constants: ir.ConstantTable{},
		table:     ir.NewTable(),
	}
}

// Build processes top-level items in order — constants and modules both
// become visible to every item that follows, so a module's sub-module
// calls must name a module declared earlier in the same item list:
// sub-modules must be built before their callers, in textual order.
func (b *Builder) Build(items []parser.Item) (table *ir.Table, constants ir.ConstantTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*errors.CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()
	for _, item := range items {
		b.buildItem(item)
	}
	return b.table, b.constants, nil
}

func (b *Builder) buildItem(item parser.Item) {
	switch it := item.(type) {
	case *parser.ConstDecl:
		if _, exists := b.constants[it.Name]; exists {
			panic(errors.New(errors.Redefinition, "", it.Name, "duplicate constant %q", it.Name))
		}
		b.constants[it.Name] = it.Value
	case *parser.ModDecl:
		if _, exists := b.table.Modules[it.Name]; exists {
			panic(errors.New(errors.Redefinition, it.Name, "", "duplicate module %q", it.Name))
		}
		b.table.Modules[it.Name] = b.buildModule(it)
	}
}

type pendingLet struct {
	stmt  *parser.LetStmt
	slots []int
}

func (b *Builder) buildModule(decl *parser.ModDecl) *ir.Module {
	m := ir.NewModule(decl.Name, b.settings)
	seen := make(map[string]bool, len(decl.Args))

	m.ArgTypeHints = make([]*int, len(decl.Args))
	for i, p := range decl.Args {
		if seen[p.Name] {
			panic(errors.New(errors.Redefinition, decl.Name, p.Name, "duplicate argument name %q", p.Name))
		}
		seen[p.Name] = true
		idx := m.Add(ir.NewInput(i))
		m.Bindings[p.Name] = ir.Link(idx)
		if p.Symbol != nil {
			id := b.mustResolve(decl.Name, *p.Symbol)
			m.ArgTypeHints[i] = &id
		}
	}
	m.PortCount = len(decl.Args)

	if decl.Returns != nil {
		m.ReturnTypeHints = make([]*int, len(decl.Returns))
		for i, sym := range decl.Returns {
			if sym != nil {
				id := b.mustResolve(decl.Name, *sym)
				m.ReturnTypeHints[i] = &id
			}
		}
	}

	pendings := b.reserveLetSlots(m, decl, seen)

	pendingIdx := 0
	for _, stmt := range decl.Body {
		if m.OutputsSet {
			panic(errors.New(errors.ArityMismatch, decl.Name, "", "statement follows output(...)"))
		}
		switch s := stmt.(type) {
		case *parser.LetStmt:
			pd := pendings[pendingIdx]
			pendingIdx++
			b.fillLet(m, decl.Name, s, pd.slots)
		case *parser.OutputStmt:
			b.lowerOutput(m, decl, s)
		}
	}

	if err := b.runPipeline(m); err != nil {
		panic(err)
	}
	return m
}

// reserveLetSlots is pass one of the two-pass forward-binding protocol:
// every let target gets a PlaceHolder node and a binding before any
// right-hand side is lowered, so later bindings may reference earlier
// *or* later identifiers freely.
func (b *Builder) reserveLetSlots(m *ir.Module, decl *parser.ModDecl, seen map[string]bool) []pendingLet {
	var pendings []pendingLet
	for _, stmt := range decl.Body {
		ls, ok := stmt.(*parser.LetStmt)
		if !ok {
			continue
		}
		slots := make([]int, len(ls.Names))
		for i, name := range ls.Names {
			if seen[name] {
				panic(errors.New(errors.Redefinition, decl.Name, name, "duplicate binding %q", name))
			}
			seen[name] = true
			idx := m.Add(ir.Node{Kind: ir.KindPlaceHolder})
			slots[i] = idx
			m.Bindings[name] = ir.Link(idx)
		}
		pendings = append(pendings, pendingLet{stmt: ls, slots: slots})
	}
	return pendings
}

func (b *Builder) fillLet(m *ir.Module, modName string, s *parser.LetStmt, slots []int) {
	if len(s.Names) == 1 {
		b.addExprInto(m, s.Value, slots[0])
		return
	}
	call, ok := s.Value.(*parser.CallExpr)
	if !ok {
		panic(errors.New(errors.ArityMismatch, modName, "", "multi-target let requires a sub-module call on the right-hand side"))
	}
	vals := b.addCall(m, call)
	if len(vals) != len(s.Names) {
		panic(errors.New(errors.ArityMismatch, modName, call.Name, "multi-binding expects %d values, call returns %d", len(s.Names), len(vals)))
	}
	for i, v := range vals {
		m.Nodes[slots[i]] = ir.NewMultiDriver([]ir.Arg{v})
	}
}

func (b *Builder) lowerOutput(m *ir.Module, decl *parser.ModDecl, s *parser.OutputStmt) {
	if decl.Returns != nil && len(s.Values) != len(decl.Returns) {
		panic(errors.New(errors.ArityMismatch, decl.Name, "", "output arity %d does not match declared return arity %d", len(s.Values), len(decl.Returns)))
	}
	for i, v := range s.Values {
		a := b.addExpr(m, v)
		m.Add(ir.NewOutput(i, a))
	}
	m.OutputsSet = true
}

// addExprInto lowers e and fills the PlaceHolder at slot with the
// result. Filling always goes through a wrapping MultiDriver rather
// than relocating whatever node e produced: a forward-referenced let
// binding's computed node may already be referenced by index from
// elsewhere in the same expression tree (e.g. a shared sub-module
// output), so moving it would dangle those references. The indirection
// costs one extra virtual node per forward binding and is always safe.
func (b *Builder) addExprInto(m *ir.Module, e parser.Expr, slot int) ir.Arg {
	result := b.addExpr(m, e)
	m.Nodes[slot] = ir.NewMultiDriver([]ir.Arg{result})
	return ir.Link(slot)
}

func (b *Builder) addExpr(m *ir.Module, e parser.Expr) ir.Arg {
	switch ex := e.(type) {
	case *parser.Ident:
		if a, ok := m.Bindings[ex.Name]; ok {
			return a
		}
		if v, ok := b.constants[ex.Name]; ok {
			idx := m.Add(ir.NewConstant(b.narrow(m.Name, v)))
			return ir.Link(idx)
		}
		panic(errors.New(errors.Undefined, m.Name, ex.Name, "undefined identifier %q", ex.Name))

	case *parser.IntLit:
		return ir.Const(b.narrow(m.Name, ex.Value))

	case *parser.Unary:
		x := b.addExpr(m, ex.Operand)
		var node ir.Node
		switch ex.Op {
		case "-":
			node = ir.NewBinOp(ir.Const(0), ir.OpSub, x)
		case "+":
			node = ir.NewBinOp(x, ir.OpAdd, ir.Const(0))
		case "~":
			node = ir.NewBinOp(x, ir.OpBitXor, ir.Const(-1))
		case "!":
			node = ir.NewBinOp(x, ir.OpEq, ir.Const(0))
		default:
			panic(errors.New(errors.Undefined, m.Name, ex.Op, "unknown unary operator %q", ex.Op))
		}
		return ir.Link(m.Add(node))

	case *parser.Binary:
		l := b.addExpr(m, ex.Left)
		r := b.addExpr(m, ex.Right)
		return ir.Link(m.Add(ir.NewBinOp(l, ex.Op, r)))

	case *parser.IfExpr:
		cond := b.addExpr(m, ex.Cond)
		then := b.addExpr(m, ex.Then)
		gateThen := m.Add(ir.NewGate(cond, true, then))
		if ex.Else == nil {
			return ir.Link(gateThen)
		}
		els := b.addExpr(m, ex.Else)
		gateElse := m.Add(ir.NewGate(cond, false, els))
		md := m.Add(ir.NewMultiDriver([]ir.Arg{ir.Link(gateThen), ir.Link(gateElse)}))
		return ir.Link(md)

	case *parser.MatchExpr:
		subject := b.addExpr(m, ex.Subject)
		gates := make([]ir.Arg, 0, len(ex.Arms))
		for _, arm := range ex.Arms {
			test := b.addExpr(m, arm.Test)
			cmp := m.Add(ir.NewBinOp(subject, arm.Op, test))
			result := b.addExpr(m, arm.Result)
			gate := m.Add(ir.NewGate(ir.Link(cmp), true, result))
			gates = append(gates, ir.Link(gate))
		}
		return ir.Link(m.Add(ir.NewMultiDriver(gates)))

	case *parser.CallExpr:
		vals := b.addCall(m, ex)
		if len(vals) != 1 {
			panic(errors.New(errors.ArityMismatch, m.Name, ex.Name, "expected a single return value here, call returns %d", len(vals)))
		}
		return vals[0]

	default:
		panic(errors.New(errors.Undefined, m.Name, "", "unsupported expression type %T", e))
	}
}

// addCall inlines a sub-module call: the callee's nodes are copied 1:1
// into the caller with link indices rebased by offset. Input N becomes
// a MultiDriver proxying the caller's Nth lowered argument; Output
// nodes do not emit at all — their rebased argument is recorded and the
// slot is replaced with Removed.
func (b *Builder) addCall(m *ir.Module, call *parser.CallExpr) []ir.Arg {
	callee, ok := b.table.Modules[call.Name]
	if !ok {
		panic(errors.New(errors.Undefined, m.Name, call.Name, "undefined module %q", call.Name))
	}
	if len(call.Args) != callee.PortCount {
		panic(errors.New(errors.ArityMismatch, m.Name, call.Name, "call passes %d arguments, %q declares %d", len(call.Args), call.Name, callee.PortCount))
	}

	loweredArgs := make([]ir.Arg, len(call.Args))
	for i, a := range call.Args {
		loweredArgs[i] = b.addExpr(m, a)
	}

	offset := len(m.Nodes)
	outputs := make(map[int]ir.Arg)
	maxPort := -1
	for _, n := range callee.Nodes {
		var cloned ir.Node
		switch n.Kind {
		case ir.KindInput:
			cloned = ir.NewMultiDriver([]ir.Arg{loweredArgs[n.Port]})
		case ir.KindOutput:
			outputs[n.Port] = rebaseArg(n.Args[0], offset)
			if n.Port > maxPort {
				maxPort = n.Port
			}
			cloned = ir.Node{Kind: ir.KindRemoved}
		case ir.KindRemoved:
			cloned = ir.Node{Kind: ir.KindRemoved}
		default:
			cloned = cloneRebased(n, offset)
		}
		m.Add(cloned)
	}

	result := make([]ir.Arg, maxPort+1)
	for i := range result {
		result[i] = outputs[i]
	}
	return result
}

func rebaseArg(a ir.Arg, offset int) ir.Arg {
	if a.IsConstant {
		return a
	}
	return ir.Arg{Node: a.Node + offset, Color: a.Color}
}

func cloneRebased(n ir.Node, offset int) ir.Node {
	clone := n
	if len(n.Args) > 0 {
		clone.Args = make([]ir.Arg, len(n.Args))
		for i, a := range n.Args {
			clone.Args[i] = rebaseArg(a, offset)
		}
	}
	return clone
}

func (b *Builder) mustResolve(modName, symbol string) int {
	id, ok := b.resolver.Resolve(symbol)
	if !ok {
		panic(errors.New(errors.Undefined, modName, symbol, "unknown signal %q", symbol))
	}
	return id
}

// narrow accepts a 64-bit literal that fits either the signed or the
// unsigned 32-bit range, yielding the corresponding bit pattern (so
// both -1 and 0xFFFF_FFFF narrow to the same int32).
func (b *Builder) narrow(modName string, v int64) int32 {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return int32(v)
	}
	if v >= 0 && v <= int64(math.MaxUint32) {
		return int32(uint32(v))
	}
	panic(errors.New(errors.NarrowOverflow, modName, "", "integer literal %d fits neither i32 nor u32", v))
}

func (b *Builder) runPipeline(m *ir.Module) error {
	if m.Settings.Fold {
		if err := optimizer.Fold(m); err != nil {
			return err
		}
	}
	if m.Settings.Prune {
		if err := optimizer.Prune(m); err != nil {
			return err
		}
	}
	if err := optimizer.Fix(m); err != nil {
		return err
	}
	if m.Settings.Prune {
		if err := optimizer.Prune(m); err != nil {
			return err
		}
	}
	return nil
}
