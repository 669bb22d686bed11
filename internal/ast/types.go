package ast

import (
	"fmt"
	"strings"

	"github.com/sunholo/uscript/internal/diag"
)

// Type is a surface type expression. Surface types carry no free type
// variables (spec.md §3); variables only arise during inference
// (internal/types).
type Type interface {
	Node
	typeNode()
	String() string
}

type baseType struct {
	Sp diag.Span
}

func (b baseType) Span() diag.Span { return b.Sp }
func (baseType) typeNode()         {}

// WithSpan setters let the parser attach a span after constructing a zero
// value of each Type variant, without needing access to the unexported
// baseType field from outside the package.
func (t TBool) WithSpan(sp diag.Span) TBool     { t.Sp = sp; return t }
func (t TString) WithSpan(sp diag.Span) TString { t.Sp = sp; return t }
func (t TUnit) WithSpan(sp diag.Span) TUnit     { t.Sp = sp; return t }
func (t TInt) WithSpan(sp diag.Span) TInt       { t.Sp = sp; return t }
func (t TFloat) WithSpan(sp diag.Span) TFloat   { t.Sp = sp; return t }

func (t TOptional) WithSpan(sp diag.Span) TOptional { t.Sp = sp; return t }
func (t TArray) WithSpan(sp diag.Span) TArray       { t.Sp = sp; return t }
func (t TMap) WithSpan(sp diag.Span) TMap           { t.Sp = sp; return t }
func (t TTuple) WithSpan(sp diag.Span) TTuple       { t.Sp = sp; return t }
func (t TNamed) WithSpan(sp diag.Span) TNamed       { t.Sp = sp; return t }
func (t TFunc) WithSpan(sp diag.Span) TFunc         { t.Sp = sp; return t }
func (t ResultErrSugar) WithSpan(sp diag.Span) ResultErrSugar { t.Sp = sp; return t }

// TBool, TString, TUnit: nullary primitive types.
type TBool struct{ baseType }
type TString struct{ baseType }
type TUnit struct{ baseType }

func (TBool) String() string   { return "bool" }
func (TString) String() string { return "string" }
func (TUnit) String() string   { return "unit" }

// TInt is a signed or unsigned 32/64-bit integer type. Integer types are
// pairwise disjoint — no implicit widening (spec.md §4.E).
type TInt struct {
	baseType
	Bits   int  // 32 or 64
	Signed bool
}

func (t TInt) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Bits)
	}
	return fmt.Sprintf("u%d", t.Bits)
}

// TFloat is a 32 or 64 bit float type.
type TFloat struct {
	baseType
	Bits int
}

func (t TFloat) String() string { return fmt.Sprintf("f%d", t.Bits) }

// TOptional is `?T`.
type TOptional struct {
	baseType
	Elem Type
}

func (t TOptional) String() string { return "?" + t.Elem.String() }

// TArray is `array-of-T`, surface spelling `[T]`.
type TArray struct {
	baseType
	Elem Type
}

func (t TArray) String() string { return "[" + t.Elem.String() + "]" }

// TMap is `map-from-K-to-V`, surface spelling `{K:V}`.
type TMap struct {
	baseType
	Key, Val Type
}

func (t TMap) String() string { return "{" + t.Key.String() + ":" + t.Val.String() + "}" }

// TTuple is a tuple of >= 2 types, always parenthesized in canonical form.
type TTuple struct {
	baseType
	Elems []Type
}

func (t TTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// TNamed is a reference to an ADT, optionally applied to type arguments.
type TNamed struct {
	baseType
	Name string
	Args []Type
}

func (t TNamed) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "[" + strings.Join(parts, ",") + "]"
}

// TFunc is a function type: parameter types, return type, effect set.
type TFunc struct {
	baseType
	Params  []Type
	Return  Type
	Effects EffectSet
}

func (t TFunc) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ",") + ")->" + t.Return.String() + t.Effects.String()
}

// ResultErrSugar is the surface sugar `T!E`, which desugars to the
// built-in `Res[T,E]` ADT (spec.md §3). The parser builds TNamed{"Res",
// [T, E]} for `T!E` directly and never produces this node; the printer
// and types.FromAST still accept it.
type ResultErrSugar struct {
	baseType
	Ok  Type
	Err Type
}

func (t ResultErrSugar) String() string { return t.Ok.String() + "!" + t.Err.String() }

// Desugar returns the canonical Res[T,E] spelling.
func (t ResultErrSugar) Desugar() TNamed {
	return TNamed{baseType: t.baseType, Name: "Res", Args: []Type{t.Ok, t.Err}}
}

// Int32, Int64, UInt32, UInt64, Float32 and Float64 construct common
// primitive instances.
func Int32(sp diag.Span) Type  { return TInt{baseType{sp}, 32, true} }
func Int64(sp diag.Span) Type  { return TInt{baseType{sp}, 64, true} }
func UInt32(sp diag.Span) Type { return TInt{baseType{sp}, 32, false} }
func UInt64(sp diag.Span) Type { return TInt{baseType{sp}, 64, false} }
func Float32(sp diag.Span) Type { return TFloat{baseType{sp}, 32} }
func Float64(sp diag.Span) Type { return TFloat{baseType{sp}, 64} }
