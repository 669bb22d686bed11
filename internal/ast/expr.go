package ast

import "github.com/sunholo/uscript/internal/diag"

// Expr is any expression node. Bracket variants of let/if/match/lambda are
// surface-equivalent to their normal forms (they lower to the same node
// type; only the printer distinguishes readable vs compressed spelling).
type Expr interface {
	Node
	exprNode()
}

type baseExpr struct {
	Sp diag.Span
}

func (b baseExpr) Span() diag.Span { return b.Sp }
func (baseExpr) exprNode()         {}

// Block: a sequence of expressions; its value is the last.
type Block struct {
	baseExpr
	Exprs []Expr
}

// UnitLit: `()`.
type UnitLit struct{ baseExpr }

// IntLit, StringLit, BoolLit: literals.
type IntLit struct {
	baseExpr
	Value int64
}
type StringLit struct {
	baseExpr
	Value string
}
type BoolLit struct {
	baseExpr
	Value bool
}

// Let: `v(name[:type]=value, body)`.
type Let struct {
	baseExpr
	Name  string
	Type  Type // nil if inferred
	Value Expr
	Body  Expr
}

// If: `i(cond, then, else)`.
type If struct {
	baseExpr
	Cond, Then, Else Expr
}

// MatchArm: one pattern => expression arm, in source order.
type MatchArm struct {
	Pattern Pattern
	Body    Expr
}

// Match: `m(scrutinee){arms}`.
type Match struct {
	baseExpr
	Scrutinee Expr
	Arms      []MatchArm
}

// Call: explicit `c(fn,args…)` or compressed s-expression `(fn args…)`.
// Compressed is a printer/parser-surface distinction only; both forms
// produce this same node.
type Call struct {
	baseExpr
	Fn        Expr
	Args      []Expr
	Compressed bool // true if parsed/to-be-printed as `(fn args…)`
}

// Lambda: `l(params):Type !{effects} body`.
type Lambda struct {
	baseExpr
	Params  []Param
	Return  Type // nil if inferred
	Effects EffectSet
	Body    Expr
}

// Assert: `assert(expr[, message])`.
type Assert struct {
	baseExpr
	Cond    Expr
	Message string // "" if absent
	HasMsg  bool
}

// Require: `^expr` — a precondition contract, checked at run time
// (lowered to CONTRACT_CONST).
type Require struct {
	baseExpr
	Cond Expr
}

// Ensure: `_expr` — a postcondition contract; may reference `_r`.
type Ensure struct {
	baseExpr
	Cond Expr
}

// ResultRef: `_r`, legal only inside an Ensure, typed as the enclosing
// function's return type.
type ResultRef struct{ baseExpr }

// NameRef: a bare identifier or `#n` symbol reference (the parser keeps a
// `#n` reference as the string "#n"; internal/resolve maps it through the
// module's symbol table and also fills in the *kind* of reference —
// local/param/value/function/constructor/import — not here).
type NameRef struct {
	baseExpr
	Name string
}

// NameApp: `name(args…)`, unresolved. The resolver classifies this as
// either a constructor application or a function call once it knows what
// `name` refers to (spec.md §9 "Unresolved name-applications").
type NameApp struct {
	baseExpr
	Name string
	Args []Expr
}

// Paren: an explicitly parenthesized expression, kept only so the printer
// can decide whether parens are still needed; it carries no semantics and
// unwraps during resolution.
type Paren struct {
	baseExpr
	Inner Expr
}
