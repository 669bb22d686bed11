// Package bytecode defines µScript's instruction set and the `.mub`
// container format: a flat per-function instruction byte slice plus a
// string pool and function table, grounded on
// other_examples/4455036b_ozanh-ugo__compiler.go.go's Compiler (a flat
// []byte instruction stream with an addConstant-style pool) for the
// encoder's shape, and on gmofishsauce-y4/asm's fixed-width little-endian
// container-writing idiom for the container layout.
package bytecode

import "fmt"

// Op is one instruction opcode. The numbering and operand shapes are
// fixed by the container format; never renumber once a `.mub` file with
// the old numbering could exist in the wild.
type Op byte

const (
	PushInt Op = iota + 1
	PushBool
	PushString
	PushUnit
	LoadLocal
	StoreLocal
	Pop
	Jump
	JumpIfFalse
	CallBuiltin
	Return
	MkADT
	JumpIfTag
	AssertConst
	AssertDyn
	GetADTField
	CallFn
	MkClosure
	CallClosure
	Trap
	ContractConst
)

var mnemonics = map[Op]string{
	PushInt:       "PUSH_INT",
	PushBool:      "PUSH_BOOL",
	PushString:    "PUSH_STRING",
	PushUnit:      "PUSH_UNIT",
	LoadLocal:     "LOAD_LOCAL",
	StoreLocal:    "STORE_LOCAL",
	Pop:           "POP",
	Jump:          "JUMP",
	JumpIfFalse:   "JUMP_IF_FALSE",
	CallBuiltin:   "CALL_BUILTIN",
	Return:        "RETURN",
	MkADT:         "MK_ADT",
	JumpIfTag:     "JUMP_IF_TAG",
	AssertConst:   "ASSERT_CONST",
	AssertDyn:     "ASSERT_DYN",
	GetADTField:   "GET_ADT_FIELD",
	CallFn:        "CALL_FN",
	MkClosure:     "MK_CLOSURE",
	CallClosure:   "CALL_CLOSURE",
	Trap:          "TRAP",
	ContractConst: "CONTRACT_CONST",
}

func (op Op) String() string {
	if m, ok := mnemonics[op]; ok {
		return m
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

// IsKnown reports whether op is one of the 21 defined opcodes.
func IsKnown(op Op) bool {
	_, ok := mnemonics[op]
	return ok
}

// OperandWidths returns the byte width of each operand of op, in order.
// Unknown opcodes return (nil, false).
func OperandWidths(op Op) ([]int, bool) {
	switch op {
	case PushInt:
		return []int{8}, true
	case PushBool:
		return []int{1}, true
	case PushString:
		return []int{4}, true
	case PushUnit:
		return nil, true
	case LoadLocal:
		return []int{4}, true
	case StoreLocal:
		return []int{4}, true
	case Pop:
		return nil, true
	case Jump:
		return []int{4}, true
	case JumpIfFalse:
		return []int{4}, true
	case CallBuiltin:
		return []int{1, 1}, true
	case Return:
		return nil, true
	case MkADT:
		return []int{4, 1}, true
	case JumpIfTag:
		return []int{4, 4}, true
	case AssertConst:
		return []int{4}, true
	case AssertDyn:
		return nil, true
	case GetADTField:
		return []int{1}, true
	case CallFn:
		return []int{4, 1}, true
	case MkClosure:
		return []int{4, 1}, true
	case CallClosure:
		return []int{1}, true
	case Trap:
		return []int{4}, true
	case ContractConst:
		return []int{4}, true
	default:
		return nil, false
	}
}
