// Package types implements µScript's Hindley–Milner unification,
// restricted to prenex rank-1 polymorphism on type constructors, and the
// effect-subset / match-exhaustiveness rules of spec.md §4.E.
// Grounded on the teacher's internal/types/unification.go (Substitution +
// Unifier.Unify dispatch-on-concrete-type idiom), generalized down from
// AILANG's full row-polymorphic, kind-checked, dictionary-passing system
// to µScript's much smaller surface: no records, no type classes, no
// higher-kinded types — just the eleven ast.Type shapes plus inference
// variables.
package types

import (
	"fmt"
	"strings"

	"github.com/sunholo/uscript/internal/ast"
)

// Type is an inference-time type: every ast.Type shape, plus TVar for
// unsolved positions. It is never attached to the AST; once a module
// checks clean, all vars have been solved and the surface ast.Type
// annotations remain the source of truth for the printer and lowerer.
type Type interface {
	String() string
	equals(Type) bool
}

// TVar is an unsolved inference variable, identified by a unique id
// minted by Checker.fresh.
type TVar struct{ ID int }

func (t *TVar) String() string { return fmt.Sprintf("t%d", t.ID) }
func (t *TVar) equals(o Type) bool {
	ov, ok := o.(*TVar)
	return ok && ov.ID == t.ID
}

type TBool struct{}
type TString struct{}
type TUnit struct{}

func (TBool) String() string   { return "bool" }
func (TString) String() string { return "string" }
func (TUnit) String() string   { return "unit" }
func (TBool) equals(o Type) bool   { _, ok := o.(TBool); return ok }
func (TString) equals(o Type) bool { _, ok := o.(TString); return ok }
func (TUnit) equals(o Type) bool   { _, ok := o.(TUnit); return ok }

type TInt struct {
	Bits   int
	Signed bool
}

func (t TInt) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Bits)
	}
	return fmt.Sprintf("u%d", t.Bits)
}
func (t TInt) equals(o Type) bool {
	ov, ok := o.(TInt)
	return ok && ov.Bits == t.Bits && ov.Signed == t.Signed
}

type TFloat struct{ Bits int }

func (t TFloat) String() string    { return fmt.Sprintf("f%d", t.Bits) }
func (t TFloat) equals(o Type) bool { ov, ok := o.(TFloat); return ok && ov.Bits == t.Bits }

type TOptional struct{ Elem Type }

func (t TOptional) String() string { return "?" + t.Elem.String() }
func (t TOptional) equals(o Type) bool {
	ov, ok := o.(TOptional)
	return ok && ov.Elem.equals(t.Elem)
}

type TArray struct{ Elem Type }

func (t TArray) String() string { return "[" + t.Elem.String() + "]" }
func (t TArray) equals(o Type) bool {
	ov, ok := o.(TArray)
	return ok && ov.Elem.equals(t.Elem)
}

type TMap struct{ Key, Val Type }

func (t TMap) String() string { return "{" + t.Key.String() + ":" + t.Val.String() + "}" }
func (t TMap) equals(o Type) bool {
	ov, ok := o.(TMap)
	return ok && ov.Key.equals(t.Key) && ov.Val.equals(t.Val)
}

type TTuple struct{ Elems []Type }

func (t TTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}
func (t TTuple) equals(o Type) bool {
	ov, ok := o.(TTuple)
	if !ok || len(ov.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].equals(ov.Elems[i]) {
			return false
		}
	}
	return true
}

type TNamed struct {
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
func (t TNamed) equals(o Type) bool {
	ov, ok := o.(TNamed)
	if !ok || ov.Name != t.Name || len(ov.Args) != len(t.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].equals(ov.Args[i]) {
			return false
		}
	}
	return true
}

type TFunc struct {
	Params  []Type
	Return  Type
	Effects ast.EffectSet
}

func (t TFunc) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ",") + ")->" + t.Return.String() + t.Effects.String()
}
func (t TFunc) equals(o Type) bool {
	ov, ok := o.(TFunc)
	if !ok || len(ov.Params) != len(t.Params) || ov.Effects != t.Effects {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].equals(ov.Params[i]) {
			return false
		}
	}
	return t.Return.equals(ov.Return)
}

// IsFunc reports whether t is (after substitution) a function type —
// used to reject function-value equality (spec.md §4.E, code E3004).
func IsFunc(t Type) bool {
	_, ok := t.(TFunc)
	return ok
}

// FromAST converts a ground surface type (no type-parameter names, or
// with tparams bound in scope) into an inference Type. A bare TNamed
// whose Name is a key of tparams is a reference to a function's own type
// parameter and is substituted with the bound Type (its instantiation).
func FromAST(t ast.Type, tparams map[string]Type) Type {
	switch n := t.(type) {
	case ast.TBool:
		return TBool{}
	case ast.TString:
		return TString{}
	case ast.TUnit:
		return TUnit{}
	case ast.TInt:
		return TInt{Bits: n.Bits, Signed: n.Signed}
	case ast.TFloat:
		return TFloat{Bits: n.Bits}
	case ast.TOptional:
		return TOptional{Elem: FromAST(n.Elem, tparams)}
	case ast.TArray:
		return TArray{Elem: FromAST(n.Elem, tparams)}
	case ast.TMap:
		return TMap{Key: FromAST(n.Key, tparams), Val: FromAST(n.Val, tparams)}
	case ast.TTuple:
		elems := make([]Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = FromAST(e, tparams)
		}
		return TTuple{Elems: elems}
	case ast.TNamed:
		if len(n.Args) == 0 {
			if bound, ok := tparams[n.Name]; ok {
				return bound
			}
		}
		args := make([]Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = FromAST(a, tparams)
		}
		return TNamed{Name: n.Name, Args: args}
	case ast.TFunc:
		params := make([]Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = FromAST(p, tparams)
		}
		return TFunc{Params: params, Return: FromAST(n.Return, tparams), Effects: n.Effects}
	case ast.ResultErrSugar:
		return FromAST(n.Desugar(), tparams)
	default:
		panic(fmt.Sprintf("types.FromAST: unhandled ast.Type %T", t))
	}
}
