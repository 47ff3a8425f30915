// Package parser turns a combc source file's token stream into the
// small AST the builder lowers: consts, mods, let/output statements,
// if/match expressions, and sub-module calls.
package parser

import "combc/internal/ir"

// Item is a top-level declaration: a const or a mod.
type Item interface{ itemNode() }

type ConstDecl struct {
	Name  string
	Value int64
	Line  int
}

func (*ConstDecl) itemNode() {}

type Param struct {
	Name   string
	Symbol *string // nil when untyped
}

type ModDecl struct {
	Name    string
	Args    []Param
	Returns []*string // one entry per declared return value; nil entries are untyped
	Body    []Stmt
	Line    int
}

func (*ModDecl) itemNode() {}

// Stmt is a module body statement.
type Stmt interface{ stmtNode() }

type OutputStmt struct {
	Values []Expr
	Line   int
}

func (*OutputStmt) stmtNode() {}

type LetStmt struct {
	Names []string // len 1 for `let x = ...`, len N for `let (a,b) = ...`
	Value Expr
	Line  int
}

func (*LetStmt) stmtNode() {}

// Expr is any value-producing expression.
type Expr interface{ exprNode() }

type Ident struct {
	Name string
	Line int
}

func (*Ident) exprNode() {}

type IntLit struct {
	Value int64
	Line  int
}

func (*IntLit) exprNode() {}

type Unary struct {
	Op      string // "-", "+", "~", "!"
	Operand Expr
	Line    int
}

func (*Unary) exprNode() {}

type Binary struct {
	Left  Expr
	Op    ir.Operator
	Right Expr
	Line  int
}

func (*Binary) exprNode() {}

type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr // nil if there is no else branch
	Line int
}

func (*IfExpr) exprNode() {}

type MatchArm struct {
	Op     ir.Operator
	Test   Expr
	Result Expr
}

type MatchExpr struct {
	Subject Expr
	Arms    []MatchArm
	Line    int
}

func (*MatchExpr) exprNode() {}

// CallExpr invokes a previously-declared module by name.
type CallExpr struct {
	Name string
	Args []Expr
	Line int
}

func (*CallExpr) exprNode() {}
