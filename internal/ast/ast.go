// Package ast defines the µScript abstract syntax tree. Nodes are ordinary
// Go pointers (see DESIGN.md for why this departs from a literal arena);
// every node carries a diag.Span so downstream phases can always point at
// exact source text, following the teacher's Node/Pos/Span split in
// internal/ast/ast.go.
package ast

import "github.com/sunholo/uscript/internal/diag"

// Node is the common interface of every AST node.
type Node interface {
	Span() diag.Span
}

// Module is the root of one parsed file: `@modid { [$[…];] decl* }`.
type Module struct {
	ModuleID string
	Symbols  []string // declared $[...] table, in source order; nil if absent
	Decls    []Decl
	Sp       diag.Span
}

func (m *Module) Span() diag.Span { return m.Sp }

// Decl is any top-level declaration: import, export, type, value, function.
type Decl interface {
	Node
	declNode()
}

// ImportDecl: `: alias = modid;`
type ImportDecl struct {
	Alias    string
	ModuleID string
	Sp       diag.Span
}

func (d *ImportDecl) Span() diag.Span { return d.Sp }
func (*ImportDecl) declNode()         {}

// ExportDecl: `E[name,…];`
type ExportDecl struct {
	Names []string
	Sp    diag.Span
}

func (d *ExportDecl) Span() diag.Span { return d.Sp }
func (*ExportDecl) declNode()         {}

// Ctor is one ADT constructor with its ordered payload types.
type Ctor struct {
	Name    string
	Payload []Type
	Sp      diag.Span
}

// TypeDecl: `T name[params]? = ctor(|ctor)*;`
type TypeDecl struct {
	Name     string
	Params   []string
	Ctors    []Ctor
	Sp       diag.Span
}

func (d *TypeDecl) Span() diag.Span { return d.Sp }
func (*TypeDecl) declNode()         {}

// ValueDecl: `V name:type=expr;`
type ValueDecl struct {
	Name string
	Type Type
	Body Expr
	Sp   diag.Span
}

func (d *ValueDecl) Span() diag.Span { return d.Sp }
func (*ValueDecl) declNode()         {}

// Param is one function or lambda parameter: name with its declared type
// (type may be nil on a lambda parameter when it is inferable from the
// enclosing FuncDecl's declared function type).
type Param struct {
	Name string
	Type Type
}

// FuncDecl: `F name[tparams]?:funtype=expr;`. Per spec.md §3, the
// declaration itself carries the type-parameter list and the full function
// type (parameter *types*, return, effects); value parameter *names* are
// supplied by Body when Body is a Lambda — a zero-arity function's Body is
// just a Block/expression directly, matching scenario S1's
// `F main:()->i32!{io}={...}`. See DESIGN.md Open Question "function
// parameter binding".
type FuncDecl struct {
	Name       string
	TypeParams []string
	Type       TFunc
	Body       Expr
	Sp         diag.Span
}

func (d *FuncDecl) Span() diag.Span { return d.Sp }
func (*FuncDecl) declNode()         {}
