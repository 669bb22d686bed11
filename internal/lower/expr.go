package lower

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/diag"
)

// lowerExpr compiles e, leaving exactly one value on the stack.
func (fb *funcBuilder) lowerExpr(e ast.Expr, locals map[string]int) {
	switch n := e.(type) {
	case *ast.UnitLit:
		fb.emitOp(bytecode.PushUnit)

	case *ast.IntLit:
		fb.emitI64(bytecode.PushInt, n.Value)

	case *ast.StringLit:
		idx := fb.b.intern(n.Value)
		fb.emitU32(bytecode.PushString, uint32(idx))

	case *ast.BoolLit:
		var v uint8
		if n.Value {
			v = 1
		}
		fb.emitU8(bytecode.PushBool, v)

	case *ast.Paren:
		fb.lowerExpr(n.Inner, locals)

	case *ast.Block:
		fb.lowerBlock(n, locals)

	case *ast.Let:
		fb.lowerExpr(n.Value, locals)
		slot := fb.newSlot()
		fb.emitStoreLocal(slot)
		inner := extendSlot(locals, n.Name, slot)
		fb.lowerExpr(n.Body, inner)

	case *ast.If:
		fb.lowerExpr(n.Cond, locals)
		elseLabel := &label{}
		endLabel := &label{}
		pos := fb.emitU32(bytecode.JumpIfFalse, 0)
		elseLabel.addPatch(pos + 1)
		fb.lowerExpr(n.Then, locals)
		pos = fb.emitU32(bytecode.Jump, 0)
		endLabel.addPatch(pos + 1)
		fb.resolveLabel(elseLabel, fb.here())
		fb.lowerExpr(n.Else, locals)
		fb.resolveLabel(endLabel, fb.here())

	case *ast.Match:
		fb.lowerMatch(n, locals)

	case *ast.Call:
		fb.lowerCall(n, locals)

	case *ast.NameApp:
		fb.lowerNameApp(n, locals)

	case *ast.Lambda:
		fb.lowerLambda(n, locals)

	case *ast.Assert:
		fb.lowerExpr(n.Cond, locals)
		msg := n.Message
		if !n.HasMsg {
			msg = "assertion failed"
		}
		idx := fb.b.intern(msg)
		fb.emitU32(bytecode.AssertConst, uint32(idx))
		fb.emitOp(bytecode.PushUnit)

	case *ast.Require:
		fb.lowerExpr(n.Cond, locals)
		idx := fb.b.intern("precondition violated")
		fb.emitU32(bytecode.ContractConst, uint32(idx))
		fb.emitOp(bytecode.PushUnit)

	case *ast.Ensure:
		fb.lowerExpr(n.Cond, locals)
		idx := fb.b.intern("postcondition violated")
		fb.emitU32(bytecode.ContractConst, uint32(idx))
		fb.emitOp(bytecode.PushUnit)

	case *ast.ResultRef:
		fb.emitLoadLocal(fb.resultSlot)

	case *ast.NameRef:
		fb.lowerNameRef(n, locals)

	default:
		fb.b.bag.Errorf(diag.E3016, diag.PhaseLower, e.Span(), "internal: unhandled expression node in lowering")
		fb.emitOp(bytecode.PushUnit)
	}
}

// lowerBlock compiles a sequence of expressions, discarding every
// intermediate value but the last. Every non-contract top-level statement
// also mirrors its value into the enclosing function's result slot, so a
// later sibling Ensure/Require's `_r` reads the most recently computed
// value (see DESIGN.md "ResultRef / _r lowering convention").
func (fb *funcBuilder) lowerBlock(n *ast.Block, locals map[string]int) {
	if len(n.Exprs) == 0 {
		fb.emitOp(bytecode.PushUnit)
		return
	}
	for i, sub := range n.Exprs {
		last := i == len(n.Exprs)-1
		switch sub.(type) {
		case *ast.Ensure, *ast.Require:
			fb.lowerExpr(sub, locals)
		default:
			fb.lowerExpr(sub, locals)
			fb.emitStoreLocal(fb.resultSlot)
			fb.emitLoadLocal(fb.resultSlot)
		}
		if !last {
			fb.emitOp(bytecode.Pop)
		}
	}
}

func (fb *funcBuilder) lowerNameRef(n *ast.NameRef, locals map[string]int) {
	info, ok := fb.b.resolved.Refs[n]
	fb.loadNamed(n.Name, info, ok, locals)
}

func extendSlot(locals map[string]int, name string, slot int) map[string]int {
	out := make(map[string]int, len(locals)+1)
	for k, v := range locals {
		out[k] = v
	}
	out[name] = slot
	return out
}
