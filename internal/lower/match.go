package lower

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/resolve"
)

// lowerMatch stores the scrutinee into a fresh local, then compiles each
// arm in source order as a cascading test: a failed test jumps to the
// next arm's test (JUMP_IF_TAG/JUMP_IF_FALSE follow the same
// jump-on-negative convention), a match falls through into that arm's
// payload bindings and body, then jumps to the match's shared end
// label. A final TRAP guards the fall-through past every arm, which the
// checker's exhaustiveness pass (internal/types/exhaustiveness.go)
// guarantees is unreachable in a well-typed program — spec.md §4.G
// "a final fallthrough path emits TRAP E4005 when no wildcard is
// present" and §8 "still emit TRAP E4005 so malformed bytecode cannot
// silently execute past the table."
func (fb *funcBuilder) lowerMatch(n *ast.Match, locals map[string]int) {
	fb.lowerExpr(n.Scrutinee, locals)
	scrutSlot := fb.newSlot()
	fb.emitStoreLocal(scrutSlot)

	endLabel := &label{}
	for _, arm := range n.Arms {
		nextArm := &label{}
		armLocals := fb.compilePattern(arm.Pattern, scrutSlot, locals, nextArm)
		fb.lowerExpr(arm.Body, armLocals)
		pos := fb.emitU32(bytecode.Jump, 0)
		endLabel.addPatch(pos + 1)
		fb.resolveLabel(nextArm, fb.here())
	}

	idx := fb.b.intern("E4005")
	fb.emitU32(bytecode.Trap, uint32(idx))
	fb.resolveLabel(endLabel, fb.here())
}

// compilePattern tests the value held in slot against p, jumping to fail
// on mismatch, and returns locals extended with every name p binds along
// the matched path.
func (fb *funcBuilder) compilePattern(p ast.Pattern, slot int, locals map[string]int, fail *label) map[string]int {
	switch n := p.(type) {
	case *ast.PWildcard:
		return locals

	case *ast.PLiteral:
		fb.emitLoadLocal(slot)
		fb.lowerExpr(n.Value, locals)
		id, _ := builtinID("eq")
		fb.emitU8U8(bytecode.CallBuiltin, uint8(id), 2)
		pos := fb.emitU32(bytecode.JumpIfFalse, 0)
		fail.addPatch(pos + 1)
		return locals

	case *ast.PName:
		if info, ok := fb.b.resolved.Refs[n]; ok && info.Kind == resolve.KindConstructor {
			fb.emitTagTest(slot, info.CtorTag, fail)
			return locals
		}
		bound := fb.newSlot()
		fb.emitLoadLocal(slot)
		fb.emitStoreLocal(bound)
		return extendSlot(locals, n.Name, bound)

	case *ast.PCtor:
		info, ok := fb.b.resolved.Refs[n]
		if !ok {
			idx := fb.b.intern("E4006")
			fb.emitU32(bytecode.Trap, uint32(idx))
			return locals
		}
		fb.emitTagTest(slot, info.CtorTag, fail)
		out := locals
		for i, sub := range n.Payload {
			out = fb.compileFieldPattern(sub, slot, i, out, fail)
		}
		return out

	case *ast.PTuple:
		out := locals
		for i, sub := range n.Elems {
			out = fb.compileFieldPattern(sub, slot, i, out, fail)
		}
		return out

	case *ast.PParen:
		return fb.compilePattern(n.Inner, slot, locals, fail)

	default:
		fb.b.bag.Errorf(diag.E3016, diag.PhaseLower, p.Span(), "internal: unhandled pattern node in lowering")
		return locals
	}
}

// emitTagTest loads the ADT value held in slot and jumps to fail unless
// its tag equals tag.
func (fb *funcBuilder) emitTagTest(slot int, tag int, fail *label) {
	fb.emitLoadLocal(slot)
	pos := fb.emitU32U32(bytecode.JumpIfTag, uint32(tag), 0)
	fail.addPatch(pos + 5)
}

// compileFieldPattern extracts field i of the ADT/tuple value in slot
// into a fresh local, then matches sub against it.
func (fb *funcBuilder) compileFieldPattern(sub ast.Pattern, slot int, i int, locals map[string]int, fail *label) map[string]int {
	field := fb.newSlot()
	fb.emitLoadLocal(slot)
	fb.emitU8(bytecode.GetADTField, uint8(i))
	fb.emitStoreLocal(field)
	return fb.compilePattern(sub, field, locals, fail)
}
