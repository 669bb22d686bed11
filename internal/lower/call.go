package lower

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/resolve"
)

// loadNamed pushes the value a resolved name refers to: a local load, a
// zero-arg call to a top-level value's synthesized function (see
// DESIGN.md "Top-level value lowering"), a fresh zero-capture closure
// over a bare top-level function reference, or a nullary constructor
// instance. Shared by plain name references and by application forms
// whose callee turns out not to be directly callable (a local/value
// binding of function type).
func (fb *funcBuilder) loadNamed(name string, info resolve.Info, haveInfo bool, locals map[string]int) {
	if slot, ok := locals[name]; ok {
		fb.emitLoadLocal(slot)
		return
	}
	if !haveInfo {
		fb.emitOp(bytecode.PushUnit)
		return
	}
	switch info.Kind {
	case resolve.KindValue:
		idx := fb.b.funcIndex[info.Name]
		fb.emitU32U8(bytecode.CallFn, uint32(idx), 0)
	case resolve.KindFunction:
		idx := fb.b.funcIndex[info.Name]
		fb.emitU32U8(bytecode.MkClosure, uint32(idx), 0)
	case resolve.KindConstructor:
		fb.emitU32U8(bytecode.MkADT, uint32(info.CtorTag), 0)
	default:
		// Builtins and imports are not first-class values in this
		// version; reaching here means a bare reference to one slipped
		// past the checker, which is an internal invariant violation.
		idx := fb.b.intern("E4006")
		fb.emitU32(bytecode.Trap, uint32(idx))
	}
}

// lowerApplicationByInfo lowers args left-to-right then the call itself,
// per spec.md §4.G: CALL_FN for a direct top-level function reference,
// CALL_BUILTIN for a resolved stdlib name, MK_ADT for a constructor
// application, CALL_CLOSURE for anything else (a function-typed local,
// value, or expression).
func (fb *funcBuilder) lowerApplicationByInfo(name string, info resolve.Info, haveInfo bool, args []ast.Expr, locals map[string]int) {
	for _, a := range args {
		fb.lowerExpr(a, locals)
	}
	if haveInfo {
		switch info.Kind {
		case resolve.KindFunction:
			idx := fb.b.funcIndex[info.Name]
			fb.emitU32U8(bytecode.CallFn, uint32(idx), uint8(len(args)))
			return
		case resolve.KindBuiltin:
			id, _ := builtinID(info.Name)
			fb.emitU8U8(bytecode.CallBuiltin, uint8(id), uint8(len(args)))
			return
		case resolve.KindConstructor:
			fb.emitU32U8(bytecode.MkADT, uint32(info.CtorTag), uint8(len(args)))
			return
		}
	}
	fb.loadNamed(name, info, haveInfo, locals)
	fb.emitU8(bytecode.CallClosure, uint8(len(args)))
}

func (fb *funcBuilder) lowerCall(n *ast.Call, locals map[string]int) {
	if nr, ok := n.Fn.(*ast.NameRef); ok {
		info, ok2 := fb.b.resolved.Refs[nr]
		fb.lowerApplicationByInfo(nr.Name, info, ok2, n.Args, locals)
		return
	}
	for _, a := range n.Args {
		fb.lowerExpr(a, locals)
	}
	fb.lowerExpr(n.Fn, locals)
	fb.emitU8(bytecode.CallClosure, uint8(len(n.Args)))
}

func (fb *funcBuilder) lowerNameApp(n *ast.NameApp, locals map[string]int) {
	info, ok := fb.b.resolved.Refs[n]
	fb.lowerApplicationByInfo(n.Name, info, ok, n.Args, locals)
}
