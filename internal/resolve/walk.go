package resolve

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
)

// resolveExpr walks e resolving every NameRef/NameApp/PName occurrence
// against locals ∪ the module's declaration tables, recording Info in
// r.Refs and diagnostics in bag. inEnsure tracks whether e is nested
// inside an Ensure's condition, the only place `_r` may legally appear
// (spec.md §3 ResultRef).
func (r *Resolved) resolveExpr(e ast.Expr, locals map[string]bool, bag *diag.Bag) {
	r.resolveExprIn(e, locals, false, bag)
}

func (r *Resolved) resolveExprIn(e ast.Expr, locals map[string]bool, inEnsure bool, bag *diag.Bag) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Block:
		for _, sub := range n.Exprs {
			r.resolveExprIn(sub, locals, inEnsure, bag)
		}

	case *ast.UnitLit, *ast.IntLit, *ast.StringLit, *ast.BoolLit:
		// no names

	case *ast.Let:
		r.resolveExprIn(n.Value, locals, inEnsure, bag)
		inner := extend(locals, n.Name)
		r.resolveExprIn(n.Body, inner, inEnsure, bag)

	case *ast.If:
		r.resolveExprIn(n.Cond, locals, inEnsure, bag)
		r.resolveExprIn(n.Then, locals, inEnsure, bag)
		r.resolveExprIn(n.Else, locals, inEnsure, bag)

	case *ast.Match:
		r.resolveExprIn(n.Scrutinee, locals, inEnsure, bag)
		for _, arm := range n.Arms {
			inner := r.resolvePattern(arm.Pattern, locals, bag)
			r.resolveExprIn(arm.Body, inner, inEnsure, bag)
		}

	case *ast.Call:
		r.resolveExprIn(n.Fn, locals, inEnsure, bag)
		for _, a := range n.Args {
			r.resolveExprIn(a, locals, inEnsure, bag)
		}

	case *ast.Lambda:
		inner := locals
		for _, p := range n.Params {
			inner = extend(inner, p.Name)
		}
		r.resolveExprIn(n.Body, inner, inEnsure, bag)

	case *ast.Assert:
		r.resolveExprIn(n.Cond, locals, inEnsure, bag)

	case *ast.Require:
		r.resolveExprIn(n.Cond, locals, inEnsure, bag)

	case *ast.Ensure:
		r.resolveExprIn(n.Cond, locals, true, bag)

	case *ast.ResultRef:
		if !inEnsure {
			bag.Errorf(diag.E3013, diag.PhaseCheck, n.Sp, "_r used outside an ensure")
		}

	case *ast.NameRef:
		if info, ok := r.resolveName(n.Name, n.Sp, locals, bag); ok {
			r.Refs[n] = info
		}

	case *ast.NameApp:
		if info, ok := r.resolveName(n.Name, n.Sp, locals, bag); ok {
			if info.Kind == KindConstructor && info.Arity != len(n.Args) {
				bag.Errorf(diag.E3009, diag.PhaseCheck, n.Sp, "constructor %q expects %d argument(s), got %d", info.Name, info.Arity, len(n.Args))
			}
			r.Refs[n] = info
		}
		for _, a := range n.Args {
			r.resolveExprIn(a, locals, inEnsure, bag)
		}

	case *ast.Paren:
		r.resolveExprIn(n.Inner, locals, inEnsure, bag)

	default:
		bag.Errorf(diag.E3001, diag.PhaseResolve, e.Span(), "internal: unhandled expression node in resolver")
	}
}

// resolvePattern resolves a match-arm pattern against the scrutinee's
// constructor table (distinguishing a nullary-constructor PName from a
// fresh binding), returning the locals set extended with every name the
// pattern binds.
func (r *Resolved) resolvePattern(p ast.Pattern, locals map[string]bool, bag *diag.Bag) map[string]bool {
	switch n := p.(type) {
	case *ast.PWildcard:
		return locals

	case *ast.PLiteral:
		return locals

	case *ast.PName:
		if c, ok := r.Ctors[n.Name]; ok && c.Arity == 0 {
			r.Refs[n] = Info{Kind: KindConstructor, Name: n.Name, Arity: 0, CtorTag: c.Tag, TypeName: c.TypeName}
			return locals
		}
		return extend(locals, n.Name)

	case *ast.PCtor:
		out := locals
		if c, ok := r.Ctors[n.Name]; ok {
			r.Refs[n] = Info{Kind: KindConstructor, Name: n.Name, Arity: c.Arity, CtorTag: c.Tag, TypeName: c.TypeName}
			if c.Arity != len(n.Payload) {
				bag.Errorf(diag.E3009, diag.PhaseCheck, n.Sp, "constructor %q expects %d argument(s), got %d", n.Name, c.Arity, len(n.Payload))
			}
		} else {
			msg := "unresolved constructor " + quote(n.Name)
			d := diag.Diagnostic{Code: diag.E3001, Phase: diag.PhaseResolve, Span: n.Sp, Message: msg}
			if s := suggest(n.Name, r.declaredNames()); s != "" {
				d.Suggestion = s
			}
			bag.Add(d)
		}
		for _, sub := range n.Payload {
			out = r.resolvePattern(sub, out, bag)
		}
		return out

	case *ast.PTuple:
		out := locals
		for _, sub := range n.Elems {
			out = r.resolvePattern(sub, out, bag)
		}
		return out

	case *ast.PParen:
		return r.resolvePattern(n.Inner, locals, bag)

	default:
		bag.Errorf(diag.E2005, diag.PhaseResolve, p.Span(), "internal: unhandled pattern node in resolver")
		return locals
	}
}

// extend returns a copy of locals with name added, never mutating the
// caller's set (sibling scopes — e.g. the two branches of an if — must
// not see each other's bindings).
func extend(locals map[string]bool, name string) map[string]bool {
	out := map[string]bool{}
	for k := range locals {
		out[k] = true
	}
	out[name] = true
	return out
}
