package lower

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/bytecode"
)

// lowerLambda reserves a fresh function-table entry for n, pushes its
// captures (the enclosing frame's locals n's body actually reads, in
// first-occurrence source order per spec.md §4.G "captures pushed in
// source order"), and emits MK_CLOSURE over it. The new entry's frame
// layout is captures first (slots 0..len(captures)-1, seeded by the VM
// from the closure object at CALL_CLOSURE time), then n's own params.
func (fb *funcBuilder) lowerLambda(n *ast.Lambda, locals map[string]int) {
	free := collectFreeVars(n.Body)
	var paramNames map[string]bool
	if len(n.Params) > 0 {
		paramNames = make(map[string]bool, len(n.Params))
		for _, p := range n.Params {
			paramNames[p.Name] = true
		}
	}

	var captures []string
	for _, name := range free {
		if paramNames[name] {
			continue
		}
		if _, ok := locals[name]; ok {
			captures = append(captures, name)
		}
	}

	for _, name := range captures {
		fb.emitLoadLocal(locals[name])
	}

	child := newFuncBuilder(fb.b)
	childLocals := make(map[string]int, len(captures)+len(n.Params))
	for _, name := range captures {
		childLocals[name] = child.newSlot()
	}
	for _, p := range n.Params {
		childLocals[p.Name] = child.newSlot()
	}
	child.resultSlot = child.newSlot()
	child.lowerExpr(n.Body, childLocals)
	child.emitOp(bytecode.Return)

	fnIdx := len(fb.b.funcs)
	fb.b.funcs = append(fb.b.funcs, bytecode.FuncEntry{
		Arity:    uint8(len(n.Params)),
		Captures: uint8(len(captures)),
		Code:     child.code,
	})

	fb.emitU32U8(bytecode.MkClosure, uint32(fnIdx), uint8(len(captures)))
}

// freeVarCollector walks an expression tree collecting NameRef/NameApp
// names not bound within it, in first-occurrence order. Whether a
// collected name is actually capturable (a local of the enclosing
// frame, as opposed to a top-level function/value/constructor/builtin)
// is decided by the caller against its own locals map; this walk has no
// access to resolve.Resolved and does not need it.
type freeVarCollector struct {
	bound map[string]bool
	seen  map[string]bool
	order []string
}

func collectFreeVars(e ast.Expr) []string {
	c := &freeVarCollector{bound: map[string]bool{}, seen: map[string]bool{}}
	c.walk(e)
	return c.order
}

func (c *freeVarCollector) use(name string) {
	if c.bound[name] || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.order = append(c.order, name)
}

// withBound runs f with names added to the bound set, then restores it,
// so sibling scopes (e.g. a match arm's bindings) never leak into one
// another.
func (c *freeVarCollector) withBound(names []string, f func()) {
	added := make([]string, 0, len(names))
	for _, n := range names {
		if !c.bound[n] {
			c.bound[n] = true
			added = append(added, n)
		}
	}
	f()
	for _, n := range added {
		delete(c.bound, n)
	}
}

func (c *freeVarCollector) walk(e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Block:
		for _, sub := range n.Exprs {
			c.walk(sub)
		}

	case *ast.UnitLit, *ast.IntLit, *ast.StringLit, *ast.BoolLit:

	case *ast.Let:
		c.walk(n.Value)
		c.withBound([]string{n.Name}, func() { c.walk(n.Body) })

	case *ast.If:
		c.walk(n.Cond)
		c.walk(n.Then)
		c.walk(n.Else)

	case *ast.Match:
		c.walk(n.Scrutinee)
		for _, arm := range n.Arms {
			c.withBound(patternNames(arm.Pattern), func() { c.walk(arm.Body) })
		}

	case *ast.Call:
		c.walk(n.Fn)
		for _, a := range n.Args {
			c.walk(a)
		}

	case *ast.NameApp:
		c.use(n.Name)
		for _, a := range n.Args {
			c.walk(a)
		}

	case *ast.Lambda:
		var params []string
		for _, p := range n.Params {
			params = append(params, p.Name)
		}
		c.withBound(params, func() { c.walk(n.Body) })

	case *ast.Assert:
		c.walk(n.Cond)

	case *ast.Require:
		c.walk(n.Cond)

	case *ast.Ensure:
		c.walk(n.Cond)

	case *ast.ResultRef:

	case *ast.NameRef:
		c.use(n.Name)

	case *ast.Paren:
		c.walk(n.Inner)
	}
}

// patternNames returns every name a pattern binds, including payload
// binders nested inside constructor and tuple patterns.
func patternNames(p ast.Pattern) []string {
	switch n := p.(type) {
	case *ast.PName:
		return []string{n.Name}
	case *ast.PCtor:
		var out []string
		for _, sub := range n.Payload {
			out = append(out, patternNames(sub)...)
		}
		return out
	case *ast.PTuple:
		var out []string
		for _, sub := range n.Elems {
			out = append(out, patternNames(sub)...)
		}
		return out
	case *ast.PParen:
		return patternNames(n.Inner)
	default:
		return nil
	}
}
