package types

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/builtins"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/resolve"
)

// scheme is a top-level function's generalized type: its ground TFunc
// shape plus the names of its own type parameters, each of which is
// re-bound to a fresh TVar on every call site (spec.md §4.E "Hindley-Milner
// restricted to prenex rank-1 polymorphism on type constructors").
type scheme struct {
	typeParams []string
	funcType   ast.TFunc
}

// Checker holds one module's checking state: the global signature
// environment, the active function's return type (for ResultRef and
// effect-subset checking), and the diagnostic bag every rule reports into.
type Checker struct {
	resolved *resolve.Resolved
	bag      *diag.Bag

	values  map[string]Type
	schemes map[string]scheme

	nextVar int
}

// funcCtx carries the currently-checked function's declared return type
// and effect set through the expression walk.
type funcCtx struct {
	ret     Type
	declEff ast.EffectSet
}

// Check type- and effect-checks every declaration in m, reporting
// diagnostics into bag. It never aborts on the first error (spec.md §4.E).
func Check(m *ast.Module, resolved *resolve.Resolved, bag *diag.Bag) {
	c := &Checker{
		resolved: resolved,
		bag:      bag,
		values:   map[string]Type{},
		schemes:  map[string]scheme{},
	}

	for name, d := range resolved.Values {
		if d.Type == nil {
			bag.Errorf(diag.E3009, diag.PhaseCheck, d.Sp, "top-level value %q requires an explicit type annotation", name)
			continue
		}
		c.values[name] = FromAST(d.Type, nil)
	}
	for name, d := range resolved.Funcs {
		c.schemes[name] = scheme{typeParams: d.TypeParams, funcType: d.Type}
	}

	for name, d := range resolved.Values {
		want, ok := c.values[name]
		if !ok {
			continue
		}
		got, _, sub := c.infer(d.Body, map[string]Type{}, nil)
		got = Apply(sub, got)
		if _, err := Unify(want, got, sub); err != nil {
			bag.Errorf(diag.E3009, diag.PhaseCheck, d.Body.Span(), "value %q: declared type %s does not match inferred type %s", name, want, got)
		}
	}

	for name, d := range resolved.Funcs {
		c.checkFunc(name, d)
	}
}

func (c *Checker) fresh() *TVar {
	c.nextVar++
	return &TVar{ID: c.nextVar}
}

func (c *Checker) checkFunc(name string, d *ast.FuncDecl) {
	fnType := FromAST(d.Type, nil).(TFunc)
	locals := map[string]Type{}

	lam, isLambda := d.Body.(*ast.Lambda)
	if isLambda {
		if len(lam.Params) != len(fnType.Params) {
			c.bag.Errorf(diag.E3009, diag.PhaseCheck, d.Sp, "function %q: %d declared parameter type(s) but %d parameter name(s)", name, len(fnType.Params), len(lam.Params))
		}
		for i, p := range lam.Params {
			if i < len(fnType.Params) {
				locals[p.Name] = fnType.Params[i]
			}
		}
	}

	ctx := &funcCtx{ret: fnType.Return, declEff: fnType.Effects}

	body := d.Body
	if isLambda {
		body = lam.Body
	}

	got, eff, sub := c.infer(body, locals, ctx)
	got = Apply(sub, got)
	if _, err := Unify(fnType.Return, got, sub); err != nil {
		bag := c.bag
		bag.Errorf(diag.E3009, diag.PhaseCheck, body.Span(), "function %q: declared return type %s does not match inferred type %s", name, fnType.Return, got)
	}
	if !eff.IsSubsetOf(fnType.Effects) {
		c.bag.Errorf(diag.E3007, diag.PhaseCheck, body.Span(), "function %q: body effect set %s exceeds declared effect set %s", name, eff, fnType.Effects)
	}
}

// infer synthesizes e's type and effect set under locals, threading a
// substitution that accumulates every unification performed along the
// way (mirroring the teacher's Unifier.Unify(..., sub) threading idiom).
func (c *Checker) infer(e ast.Expr, locals map[string]Type, ctx *funcCtx) (Type, ast.EffectSet, Substitution) {
	sub := Substitution{}
	return c.inferSub(e, locals, ctx, sub)
}

func (c *Checker) inferSub(e ast.Expr, locals map[string]Type, ctx *funcCtx, sub Substitution) (Type, ast.EffectSet, Substitution) {
	switch n := e.(type) {
	case *ast.UnitLit:
		return TUnit{}, ast.Empty, sub
	case *ast.IntLit:
		return TInt{Bits: 64, Signed: true}, ast.Empty, sub
	case *ast.StringLit:
		return TString{}, ast.Empty, sub
	case *ast.BoolLit:
		return TBool{}, ast.Empty, sub

	case *ast.Block:
		eff := ast.Empty
		var last Type = TUnit{}
		for _, sub2 := range n.Exprs {
			var e2 ast.EffectSet
			last, e2, sub = c.inferSub(sub2, locals, ctx, sub)
			eff = eff.Union(e2)
		}
		return last, eff, sub

	case *ast.Paren:
		return c.inferSub(n.Inner, locals, ctx, sub)

	case *ast.Let:
		valT, valEff, s2 := c.inferSub(n.Value, locals, ctx, sub)
		sub = s2
		if n.Type != nil {
			declared := FromAST(n.Type, nil)
			var err error
			sub, err = Unify(declared, valT, sub)
			if err != nil {
				c.bag.Errorf(diag.E3009, diag.PhaseCheck, n.Value.Span(), "let %q: declared type %s does not match value type %s", n.Name, declared, valT)
			} else {
				valT = declared
			}
		}
		inner := extendEnv(locals, n.Name, valT)
		bodyT, bodyEff, s3 := c.inferSub(n.Body, inner, ctx, sub)
		return bodyT, valEff.Union(bodyEff), s3

	case *ast.If:
		condT, condEff, s2 := c.inferSub(n.Cond, locals, ctx, sub)
		sub = s2
		var err error
		sub, err = Unify(condT, TBool{}, sub)
		if err != nil {
			c.bag.Errorf(diag.E3009, diag.PhaseCheck, n.Cond.Span(), "if condition must be bool, got %s", condT)
		}
		thenT, thenEff, s4 := c.inferSub(n.Then, locals, ctx, sub)
		sub = s4
		elseT, elseEff, s5 := c.inferSub(n.Else, locals, ctx, sub)
		sub = s5
		sub, err = Unify(thenT, elseT, sub)
		if err != nil {
			c.bag.Errorf(diag.E3009, diag.PhaseCheck, n.Sp, "if branches disagree: %s vs %s", thenT, elseT)
		}
		return Apply(sub, thenT), condEff.Union(thenEff).Union(elseEff), sub

	case *ast.Match:
		scrT, scrEff, s2 := c.inferSub(n.Scrutinee, locals, ctx, sub)
		sub = s2
		eff := scrEff
		var result Type = c.fresh()
		for _, arm := range n.Arms {
			armLocals := c.bindPattern(arm.Pattern, scrT, locals)
			armT, armEff, s3 := c.inferSub(arm.Body, armLocals, ctx, sub)
			sub = s3
			var err error
			sub, err = Unify(result, armT, sub)
			if err != nil {
				c.bag.Errorf(diag.E3009, diag.PhaseCheck, arm.Body.Span(), "match arm type %s does not agree with other arms (%s)", armT, result)
			}
			eff = eff.Union(armEff)
		}
		checkExhaustive(c.resolved, c.bag, scrT, n)
		return Apply(sub, result), eff, sub

	case *ast.Lambda:
		inner := locals
		params := make([]Type, len(n.Params))
		for i, p := range n.Params {
			var pt Type
			if p.Type != nil {
				pt = FromAST(p.Type, nil)
			} else {
				pt = c.fresh()
			}
			params[i] = pt
			inner = extendEnv(inner, p.Name, pt)
		}
		innerCtx := ctx
		var declRet Type
		if n.Return != nil {
			declRet = FromAST(n.Return, nil)
			innerCtx = &funcCtx{ret: declRet, declEff: n.Effects}
		}
		bodyT, bodyEff, s2 := c.inferSub(n.Body, inner, innerCtx, sub)
		sub = s2
		ret := bodyT
		if declRet != nil {
			var err error
			sub, err = Unify(declRet, bodyT, sub)
			if err != nil {
				c.bag.Errorf(diag.E3009, diag.PhaseCheck, n.Body.Span(), "lambda: declared return %s does not match body type %s", declRet, bodyT)
			}
			ret = declRet
			if !bodyEff.IsSubsetOf(n.Effects) {
				c.bag.Errorf(diag.E3007, diag.PhaseCheck, n.Body.Span(), "lambda body effect set %s exceeds declared effect set %s", bodyEff, n.Effects)
			}
		}
		return TFunc{Params: params, Return: Apply(sub, ret), Effects: n.Effects}, ast.Empty, sub

	case *ast.Assert:
		_, eff, s2 := c.inferSub(n.Cond, locals, ctx, sub)
		return TUnit{}, eff, s2

	case *ast.Require:
		_, _, s2 := c.inferSub(n.Cond, locals, ctx, sub)
		return TUnit{}, ast.Empty, s2

	case *ast.Ensure:
		_, _, s2 := c.inferSub(n.Cond, locals, ctx, sub)
		return TUnit{}, ast.Empty, s2

	case *ast.ResultRef:
		if ctx == nil || ctx.ret == nil {
			return c.fresh(), ast.Empty, sub
		}
		return ctx.ret, ast.Empty, sub

	case *ast.NameRef:
		return c.inferName(n.Name, n.Sp, locals, sub)

	case *ast.NameApp:
		return c.inferCall(n.Name, n.Sp, n.Args, locals, ctx, sub)

	case *ast.Call:
		fnT, fnEff, s2 := c.inferSub(n.Fn, locals, ctx, sub)
		sub = s2
		fn, ok := fnT.(TFunc)
		if !ok {
			if tv, isVar := fnT.(*TVar); isVar {
				params := make([]Type, len(n.Args))
				for i := range params {
					params[i] = c.fresh()
				}
				ret := c.fresh()
				fn = TFunc{Params: params, Return: ret}
				var err error
				sub, err = Unify(tv, fn, sub)
				if err != nil {
					c.bag.Errorf(diag.E3009, diag.PhaseCheck, n.Sp, "cannot call %s", fnT)
					return c.fresh(), fnEff, sub
				}
			} else {
				c.bag.Errorf(diag.E3009, diag.PhaseCheck, n.Sp, "cannot call a value of type %s", fnT)
				return c.fresh(), fnEff, sub
			}
		}
		eff := fnEff.Union(fn.Effects)
		if len(n.Args) != len(fn.Params) {
			c.bag.Errorf(diag.E3009, diag.PhaseCheck, n.Sp, "call expects %d argument(s), got %d", len(fn.Params), len(n.Args))
		}
		for i, a := range n.Args {
			argT, argEff, s3 := c.inferSub(a, locals, ctx, sub)
			sub = s3
			eff = eff.Union(argEff)
			if i < len(fn.Params) {
				var err error
				sub, err = Unify(fn.Params[i], argT, sub)
				if err != nil {
					c.bag.Errorf(diag.E3009, diag.PhaseCheck, a.Span(), "argument %d: expected %s, got %s", i+1, fn.Params[i], argT)
				}
			}
		}
		return Apply(sub, fn.Return), eff, sub

	default:
		c.bag.Errorf(diag.E3009, diag.PhaseCheck, e.Span(), "internal: unhandled expression node in checker")
		return c.fresh(), ast.Empty, sub
	}
}

// inferName resolves a bare name reference to its locally-bound,
// top-level-value, function (instantiated scheme) or builtin type; a bare
// nullary constructor gets the type of its ADT.
func (c *Checker) inferName(name string, sp diag.Span, locals map[string]Type, sub Substitution) (Type, ast.EffectSet, Substitution) {
	if t, ok := locals[name]; ok {
		return t, ast.Empty, sub
	}
	if ctorInfo, ok := c.resolved.Ctors[name]; ok && ctorInfo.Arity == 0 {
		return TNamed{Name: ctorInfo.TypeName}, ast.Empty, sub
	}
	if t, ok := c.values[name]; ok {
		return t, ast.Empty, sub
	}
	if sc, ok := c.schemes[name]; ok {
		return c.instantiate(sc), ast.Empty, sub
	}
	if sig, ok := builtins.Registry[name]; ok {
		return builtinFuncType(sig), ast.Empty, sub
	}
	// Already diagnosed by internal/resolve; avoid a duplicate report here.
	return c.fresh(), ast.Empty, sub
}

func builtinFuncType(sig *builtins.Sig) TFunc {
	params := make([]Type, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = FromAST(p, nil)
	}
	eff := ast.Empty
	if !sig.Pure {
		eff = eff.With(sig.Effect)
	}
	return TFunc{Params: params, Return: FromAST(sig.Return, nil), Effects: eff}
}

func (c *Checker) instantiate(sc scheme) Type {
	tparams := map[string]Type{}
	for _, p := range sc.typeParams {
		tparams[p] = c.fresh()
	}
	return FromAST(sc.funcType, tparams)
}

// inferCall type-checks a NameApp: either a constructor application
// (ground payload types from the ADT declaration) or a call to a
// function/value/builtin of that name — including the polymorphic
// `==`/`!=` prelude functions, which FromAST/Sig cannot represent.
func (c *Checker) inferCall(name string, sp diag.Span, args []ast.Expr, locals map[string]Type, ctx *funcCtx, sub Substitution) (Type, ast.EffectSet, Substitution) {
	if name == "==" || name == "!=" || name == "eq" || name == "ne" {
		if len(args) != 2 {
			c.bag.Errorf(diag.E3009, diag.PhaseCheck, sp, "%q expects 2 arguments, got %d", name, len(args))
			return TBool{}, ast.Empty, sub
		}
		t1, e1, s2 := c.inferSub(args[0], locals, ctx, sub)
		t2, e2, s3 := c.inferSub(args[1], locals, ctx, s2)
		sub = s3
		if IsFunc(Apply(sub, t1)) || IsFunc(Apply(sub, t2)) {
			c.bag.Errorf(diag.E3004, diag.PhaseCheck, sp, "function-value equality is rejected")
		} else if _, err := Unify(t1, t2, sub); err != nil {
			c.bag.Errorf(diag.E3009, diag.PhaseCheck, sp, "%q: operand types disagree (%s vs %s)", name, t1, t2)
		}
		return TBool{}, e1.Union(e2), sub
	}

	if ctorInfo, ok := c.resolved.Ctors[name]; ok {
		eff := ast.Empty
		for i, a := range args {
			argT, argEff, s2 := c.inferSub(a, locals, ctx, sub)
			sub = s2
			eff = eff.Union(argEff)
			if i < len(ctorInfo.Payload) {
				want := FromAST(ctorInfo.Payload[i], nil)
				if _, err := Unify(want, argT, sub); err != nil {
					c.bag.Errorf(diag.E3009, diag.PhaseCheck, a.Span(), "constructor %q argument %d: expected %s, got %s", name, i+1, want, argT)
				}
			}
		}
		return TNamed{Name: ctorInfo.TypeName}, eff, sub
	}

	fnT, _, s2 := c.inferName(name, sp, locals, sub)
	sub = s2
	fn, ok := fnT.(TFunc)
	if !ok {
		c.bag.Errorf(diag.E3009, diag.PhaseCheck, sp, "%q is not callable", name)
		return c.fresh(), ast.Empty, sub
	}
	eff := fn.Effects
	if len(args) != len(fn.Params) {
		c.bag.Errorf(diag.E3009, diag.PhaseCheck, sp, "%q expects %d argument(s), got %d", name, len(fn.Params), len(args))
	}
	for i, a := range args {
		argT, argEff, s3 := c.inferSub(a, locals, ctx, sub)
		sub = s3
		eff = eff.Union(argEff)
		if i < len(fn.Params) {
			if _, err := Unify(fn.Params[i], argT, sub); err != nil {
				c.bag.Errorf(diag.E3009, diag.PhaseCheck, a.Span(), "%q argument %d: expected %s, got %s", name, i+1, fn.Params[i], argT)
			}
		}
	}
	return Apply(sub, fn.Return), eff, sub
}

func extendEnv(env map[string]Type, name string, t Type) map[string]Type {
	out := make(map[string]Type, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	out[name] = t
	return out
}
