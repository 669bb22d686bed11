package types

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/resolve"
)

// bindPattern extends locals with every name a pattern binds, given the
// scrutinee's (possibly still-unsolved) type; payload positions of a
// constructor pattern are typed from the resolved constructor's ADT
// declaration.
func (c *Checker) bindPattern(p ast.Pattern, scrutinee Type, locals map[string]Type) map[string]Type {
	switch n := p.(type) {
	case *ast.PWildcard:
		return locals
	case *ast.PLiteral:
		return locals
	case *ast.PName:
		if ctorInfo, ok := c.resolved.Ctors[n.Name]; ok && ctorInfo.Arity == 0 {
			return locals
		}
		return extendEnv(locals, n.Name, scrutinee)
	case *ast.PCtor:
		out := locals
		ctorInfo, ok := c.resolved.Ctors[n.Name]
		if !ok {
			return out
		}
		for i, sub := range n.Payload {
			var elemT Type = c.fresh()
			if i < len(ctorInfo.Payload) {
				elemT = FromAST(ctorInfo.Payload[i], nil)
			}
			out = c.bindPattern(sub, elemT, out)
		}
		return out
	case *ast.PTuple:
		out := locals
		tup, isTuple := scrutinee.(TTuple)
		for i, sub := range n.Elems {
			var elemT Type = c.fresh()
			if isTuple && i < len(tup.Elems) {
				elemT = tup.Elems[i]
			}
			out = c.bindPattern(sub, elemT, out)
		}
		return out
	case *ast.PParen:
		return c.bindPattern(n.Inner, scrutinee, locals)
	default:
		return locals
	}
}

// checkExhaustive enforces spec.md §4.E "Match": booleans require both `t`
// and `f` (or a wildcard); ADTs require every declared constructor to
// appear at some arm (or a wildcard). Reports E3008 for missing cases and
// the E3014 warning for an arm that can never be reached because an
// earlier arm (including an earlier wildcard) already covers it.
func checkExhaustive(resolved *resolve.Resolved, bag *diag.Bag, scrutinee Type, m *ast.Match) {
	seenWildcard := false
	switch scrutinee.(type) {
	case TBool:
		seenTrue, seenFalse := false, false
		for _, arm := range m.Arms {
			if seenWildcard {
				bag.Add(diag.Diagnostic{Code: diag.E3014, Phase: diag.PhaseCheck, Span: arm.Pattern.Span(), Message: "unreachable match arm"})
				continue
			}
			switch pat := arm.Pattern.(type) {
			case *ast.PWildcard:
				seenWildcard = true
			case *ast.PLiteral:
				if lit, ok := pat.Value.(*ast.BoolLit); ok {
					if lit.Value {
						seenTrue = true
					} else {
						seenFalse = true
					}
				}
			}
		}
		if !seenWildcard && !(seenTrue && seenFalse) {
			bag.Errorf(diag.E3008, diag.PhaseCheck, m.Sp, "non-exhaustive match: missing %s", missingBoolArm(seenTrue, seenFalse))
		}

	case TNamed:
		named := scrutinee.(TNamed)
		covered := map[string]bool{}
		for _, arm := range m.Arms {
			if seenWildcard {
				bag.Add(diag.Diagnostic{Code: diag.E3014, Phase: diag.PhaseCheck, Span: arm.Pattern.Span(), Message: "unreachable match arm"})
				continue
			}
			switch pat := arm.Pattern.(type) {
			case *ast.PWildcard:
				seenWildcard = true
			case *ast.PCtor:
				covered[pat.Name] = true
			case *ast.PName:
				if _, ok := resolved.Ctors[pat.Name]; ok {
					covered[pat.Name] = true
				} else {
					seenWildcard = true // a fresh binding also covers everything else
				}
			}
		}
		if !seenWildcard {
			for name, info := range resolved.Ctors {
				if info.TypeName == named.Name && !covered[name] {
					bag.Errorf(diag.E3008, diag.PhaseCheck, m.Sp, "non-exhaustive match: missing constructor %q of type %q", name, named.Name)
				}
			}
		}

	default:
		// Other scrutinee types (int, string, tuple, ...) require a
		// wildcard or are left to runtime fallthrough (E4005) — spec.md
		// §4.E only mandates static exhaustiveness for bool and ADTs.
	}
}

func missingBoolArm(seenTrue, seenFalse bool) string {
	if !seenTrue && !seenFalse {
		return "both t and f"
	}
	if !seenTrue {
		return "t"
	}
	return "f"
}
