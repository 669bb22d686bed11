// Package vm is the bytecode stack machine: single-threaded, fuel-bounded,
// one instruction decoded and executed per step (spec.md §4.I). Grounded
// on _examples/gmofishsauce-y4/sim/sim.go's bounds-checked fetch-decode
// loop for the step shape, and on the teacher's internal/eval/value.go
// tagged Value interface for the runtime value representation,
// generalized from AILANG's tree-walking Value (one case per surface
// type) to µScript's bytecode-level Value (int/bool/unit plus
// heap-backed string/array/map/ADT/closure, spec.md §4.I).
package vm

import (
	"fmt"
	"strings"
)

// Value is any runtime value a frame's stack or locals may hold.
type Value interface {
	valueNode()
	String() string
}

// VInt is an immediate 64-bit signed integer.
type VInt int64

func (VInt) valueNode()        {}
func (v VInt) String() string  { return fmt.Sprintf("%d", int64(v)) }

// VBool is an immediate boolean.
type VBool bool

func (VBool) valueNode() {}
func (v VBool) String() string {
	if v {
		return "true"
	}
	return "false"
}

// VUnit is the immediate unit value `()`.
type VUnit struct{}

func (VUnit) valueNode()       {}
func (VUnit) String() string   { return "()" }

// VString is a heap-backed string.
type VString struct{ S string }

func (*VString) valueNode()        {}
func (v *VString) String() string  { return v.S }

// VArray is a heap-backed, mutable-length array of values.
type VArray struct{ Elems []Value }

func (*VArray) valueNode() {}
func (v *VArray) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// VMap is a heap-backed map. Keys are compared by deep structural
// equality (equalValues), not Go map identity, since Value is not
// itself a comparable Go type once arrays/maps/ADTs are involved; a
// linear scan keeps the representation uniform at the cost of O(n)
// lookup, acceptable for a scripting-language prelude map.
type VMap struct {
	Keys []Value
	Vals []Value
}

func (*VMap) valueNode() {}
func (v *VMap) String() string {
	parts := make([]string, len(v.Keys))
	for i := range v.Keys {
		parts[i] = v.Keys[i].String() + ": " + v.Vals[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v *VMap) get(key Value) (Value, bool) {
	for i, k := range v.Keys {
		if eq, _ := equalValues(k, key); eq {
			return v.Vals[i], true
		}
	}
	return nil, false
}

func (v *VMap) set(key, val Value) {
	for i, k := range v.Keys {
		if eq, _ := equalValues(k, key); eq {
			v.Vals[i] = val
			return
		}
	}
	v.Keys = append(v.Keys, key)
	v.Vals = append(v.Vals, val)
}

// VADT is a heap-backed constructor instance (spec.md §3 "named (ADT
// with type arguments)"). The container format erases constructor and
// type names entirely (only the declaration-order Tag survives past
// MK_ADT's operand, see spec.md §6 opcode table); a value's ADT/type
// identity is known statically by the checker, never recovered at this
// layer, so String() below is a debug aid only, not the canonical
// printer. TTuple values reuse this shape (Tag unused, positional
// Fields), since the decoder/lowerer have no separate tuple
// representation either (see DESIGN.md "Tuple value representation").
type VADT struct {
	Tag    uint32
	Fields []Value
}

func (*VADT) valueNode() {}
func (v *VADT) String() string {
	if len(v.Fields) == 0 {
		return fmt.Sprintf("#%d", v.Tag)
	}
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("#%d(%s)", v.Tag, strings.Join(parts, ", "))
}

// VClosure is a heap-backed closure: a function-table index plus its
// captured values, seeded into the callee frame's first slots at
// CALL_CLOSURE time (spec.md §4.G "captures pushed in source order").
type VClosure struct {
	FnIndex  uint32
	Captures []Value
}

func (*VClosure) valueNode()       {}
func (*VClosure) String() string   { return "<closure>" }

// equalValues is the VM's structural equality (spec.md §4.I "Runtime
// equality is structural and deep for heap values"). Function values
// (VClosure) are not comparable: the checker rejects this at compile
// time (E3004), but a malformed or hand-assembled bytecode stream can
// still reach CALL_BUILTIN eq/ne with one, so the VM traps instead of
// panicking or silently returning a wrong answer.
func equalValues(a, b Value) (bool, bool) {
	switch av := a.(type) {
	case VInt:
		bv, ok := b.(VInt)
		return av == bv, ok
	case VBool:
		bv, ok := b.(VBool)
		return av == bv, ok
	case VUnit:
		_, ok := b.(VUnit)
		return ok, ok
	case *VString:
		bv, ok := b.(*VString)
		return ok && av.S == bv.S, ok
	case *VArray:
		bv, ok := b.(*VArray)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false, ok
		}
		for i := range av.Elems {
			eq, valid := equalValues(av.Elems[i], bv.Elems[i])
			if !valid {
				return false, false
			}
			if !eq {
				return false, true
			}
		}
		return true, true
	case *VMap:
		bv, ok := b.(*VMap)
		if !ok || len(av.Keys) != len(bv.Keys) {
			return false, ok
		}
		for i, k := range av.Keys {
			other, found := bv.get(k)
			if !found {
				return false, true
			}
			eq, valid := equalValues(av.Vals[i], other)
			if !valid {
				return false, false
			}
			if !eq {
				return false, true
			}
		}
		return true, true
	case *VADT:
		bv, ok := b.(*VADT)
		if !ok || av.Tag != bv.Tag || len(av.Fields) != len(bv.Fields) {
			return false, ok
		}
		for i := range av.Fields {
			eq, valid := equalValues(av.Fields[i], bv.Fields[i])
			if !valid {
				return false, false
			}
			if !eq {
				return false, true
			}
		}
		return true, true
	case *VClosure:
		return false, false
	default:
		return false, false
	}
}
