package ast

import "github.com/sunholo/uscript/internal/diag"

// Pattern is a match-arm pattern.
type Pattern interface {
	Node
	patternNode()
}

type basePattern struct {
	Sp diag.Span
}

func (b basePattern) Span() diag.Span { return b.Sp }
func (basePattern) patternNode()      {}

// PWildcard: `_`.
type PWildcard struct{ basePattern }

// PLiteral: an integer, string, or boolean literal pattern.
type PLiteral struct {
	basePattern
	Value Expr // one of IntLit, StringLit, BoolLit
}

// PName: a bare identifier. Binds a fresh name unless it resolves to a
// nullary constructor of the scrutinee's ADT, in which case it is a
// constructor-match pattern with no payload (spec.md §3 Pattern).
type PName struct {
	basePattern
	Name string
}

// PCtor: `Ctor(p1,p2,…)`, a constructor application pattern.
type PCtor struct {
	basePattern
	Name    string
	Payload []Pattern
}

// PTuple: `(p1,p2,…)`.
type PTuple struct {
	basePattern
	Elems []Pattern
}

// PParen: parenthesized pattern, unwraps during resolution.
type PParen struct {
	basePattern
	Inner Pattern
}
