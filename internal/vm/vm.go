package vm

import (
	"encoding/binary"

	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/host"
)

// OutcomeKind is the terminal state a Run reaches, one arm of spec.md
// §4.I's "Ready → (Step | Trap | FuelExhausted | Return)" state machine
// (Step is not terminal, so it has no OutcomeKind of its own).
type OutcomeKind int

const (
	OutcomeReturn OutcomeKind = iota
	OutcomeTrap
	OutcomeFuelExhausted
)

// Outcome is what a VM run produces: exactly one of a returned exit
// code, a trap code/message, or a fuel-exhaustion marker, always
// carrying how much fuel the run actually spent (spec.md §7 "The VM
// surfaces a trap as {exit_code, trapped, trap_code, stderr, fuel_used}").
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int64
	TrapCode string
	TrapMsg  string
	FuelUsed int64
}

// VM is a single-threaded, fuel-bounded stack machine over one
// bytecode.Program. Multiple VMs share no state and may run
// concurrently on distinct goroutines (spec.md §5).
type VM struct {
	prog *bytecode.Program
	host *host.Host

	fuel int64
	used int64

	stack  []Value
	frames []*frame
}

// New constructs a VM ready to execute prog's entry function. host may
// be nil, in which case every effectful builtin traps E4006 (no
// capability object supplied at all).
func New(prog *bytecode.Program, h *host.Host, fuel int64) *VM {
	return &VM{prog: prog, host: h, fuel: fuel}
}

func (m *VM) push(v Value) { m.stack = append(m.stack, v) }

func (m *VM) pop() Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

// popN returns the last n values pushed, in the order they were pushed
// (left-to-right evaluation order, spec.md §4.G), i.e. not simply
// stack-reversed.
func (m *VM) popN(n int) []Value {
	out := make([]Value, n)
	copy(out, m.stack[len(m.stack)-n:])
	m.stack = m.stack[:len(m.stack)-n]
	return out
}

func (m *VM) top() *frame { return m.frames[len(m.frames)-1] }

// Run executes the program's entry function to completion, a trap, or
// fuel exhaustion.
func (m *VM) Run(args []Value) Outcome {
	entry := m.prog.Funcs[m.prog.EntryFn]
	m.frames = []*frame{newFrame(entry.Code, int(entry.Arity), nil, args)}

	for {
		if len(m.frames) == 0 {
			return Outcome{Kind: OutcomeReturn, FuelUsed: m.used}
		}
		if m.used >= m.fuel {
			return Outcome{Kind: OutcomeFuelExhausted, FuelUsed: m.used}
		}

		fr := m.top()
		if fr.pc >= len(fr.code) {
			return m.trap("E4006", "program counter ran off the end of a function's code")
		}

		op := bytecode.Op(fr.code[fr.pc])
		m.used++

		if outcome, done := m.step(fr, op); done {
			return outcome
		}
	}
}

// trap finalizes the current run with a trap outcome.
func (m *VM) trap(code, msg string) Outcome {
	return Outcome{Kind: OutcomeTrap, TrapCode: code, TrapMsg: msg, FuelUsed: m.used}
}

func (m *VM) u32At(code []byte, pos int) uint32 {
	return binary.LittleEndian.Uint32(code[pos : pos+4])
}

func (m *VM) i64At(code []byte, pos int) int64 {
	return int64(binary.LittleEndian.Uint64(code[pos : pos+8]))
}

// step executes exactly one instruction of fr, advancing fr.pc (or
// replacing/popping/pushing a frame for calls and returns). done is
// true once outcome holds the run's final terminal state.
func (m *VM) step(fr *frame, op bytecode.Op) (outcome Outcome, done bool) {
	code := fr.code
	pos := fr.pc + 1

	switch op {
	case bytecode.PushInt:
		m.push(VInt(m.i64At(code, pos)))
		fr.pc = pos + 8

	case bytecode.PushBool:
		m.push(VBool(code[pos] != 0))
		fr.pc = pos + 1

	case bytecode.PushString:
		idx := m.u32At(code, pos)
		if int(idx) >= len(m.prog.Strings) {
			return m.trap("E4006", "string index out of range at runtime"), true
		}
		m.push(&VString{S: m.prog.Strings[idx]})
		fr.pc = pos + 4

	case bytecode.PushUnit:
		m.push(VUnit{})
		fr.pc = pos

	case bytecode.LoadLocal:
		slot := m.u32At(code, pos)
		m.push(fr.local(slot))
		fr.pc = pos + 4

	case bytecode.StoreLocal:
		slot := m.u32At(code, pos)
		fr.setLocal(slot, m.pop())
		fr.pc = pos + 4

	case bytecode.Pop:
		m.pop()
		fr.pc = pos

	case bytecode.Jump:
		fr.pc = int(m.u32At(code, pos))

	case bytecode.JumpIfFalse:
		target := m.u32At(code, pos)
		cond, ok := m.pop().(VBool)
		if !ok {
			return m.trap("E4006", "JUMP_IF_FALSE operand is not a bool"), true
		}
		if !bool(cond) {
			fr.pc = int(target)
		} else {
			fr.pc = pos + 4
		}

	case bytecode.JumpIfTag:
		tag := m.u32At(code, pos)
		target := m.u32At(code, pos+4)
		adt, ok := m.pop().(*VADT)
		if !ok {
			return m.trap("E4006", "JUMP_IF_TAG operand is not an ADT value"), true
		}
		if adt.Tag != tag {
			fr.pc = int(target)
		} else {
			fr.pc = pos + 8
		}

	case bytecode.GetADTField:
		idx := code[pos]
		adt, ok := m.pop().(*VADT)
		if !ok || int(idx) >= len(adt.Fields) {
			return m.trap("E4006", "GET_ADT_FIELD on a non-ADT value or out-of-range field"), true
		}
		m.push(adt.Fields[idx])
		fr.pc = pos + 1

	case bytecode.MkADT:
		tag := m.u32At(code, pos)
		argc := int(code[pos+4])
		fields := m.popN(argc)
		m.push(&VADT{Tag: tag, Fields: fields})
		fr.pc = pos + 5

	case bytecode.AssertConst:
		idx := m.u32At(code, pos)
		cond, ok := m.pop().(VBool)
		if !ok {
			return m.trap("E4006", "ASSERT_CONST operand is not a bool"), true
		}
		if !cond {
			return m.trap("E4001", m.stringAt(idx)), true
		}
		fr.pc = pos + 4

	case bytecode.AssertDyn:
		msg := m.pop()
		cond, ok := m.pop().(VBool)
		if !ok {
			return m.trap("E4006", "ASSERT_DYN condition is not a bool"), true
		}
		if !cond {
			s, _ := msg.(*VString)
			text := "assertion failed"
			if s != nil {
				text = s.S
			}
			return m.trap("E4001", text), true
		}
		fr.pc = pos

	case bytecode.ContractConst:
		idx := m.u32At(code, pos)
		cond, ok := m.pop().(VBool)
		if !ok {
			return m.trap("E4006", "CONTRACT_CONST operand is not a bool"), true
		}
		if !cond {
			return m.trap("E4002", m.stringAt(idx)), true
		}
		fr.pc = pos + 4

	case bytecode.Trap:
		idx := m.u32At(code, pos)
		return m.trap("E4005", m.stringAt(idx)), true

	case bytecode.CallBuiltin:
		id := int(code[pos])
		argc := int(code[pos+1])
		args := m.popN(argc)
		result, trapCode, trapMsg := m.callBuiltin(id, args)
		if trapCode != "" {
			return m.trap(trapCode, trapMsg), true
		}
		m.push(result)
		fr.pc = pos + 2

	case bytecode.CallFn:
		idx := m.u32At(code, pos)
		argc := int(code[pos+4])
		if int(idx) >= len(m.prog.Funcs) {
			return m.trap("E4006", "CALL_FN target out of range at runtime"), true
		}
		fn := m.prog.Funcs[idx]
		args := m.popN(argc)
		fr.pc = pos + 5
		m.frames = append(m.frames, newFrame(fn.Code, int(fn.Arity), nil, args))

	case bytecode.MkClosure:
		idx := m.u32At(code, pos)
		capc := int(code[pos+4])
		caps := m.popN(capc)
		m.push(&VClosure{FnIndex: idx, Captures: caps})
		fr.pc = pos + 5

	case bytecode.CallClosure:
		argc := int(code[pos])
		args := m.popN(argc)
		callee, ok := m.pop().(*VClosure)
		if !ok {
			return m.trap("E4006", "CALL_CLOSURE target is not a closure value"), true
		}
		if int(callee.FnIndex) >= len(m.prog.Funcs) {
			return m.trap("E4006", "closure's function index out of range at runtime"), true
		}
		fn := m.prog.Funcs[callee.FnIndex]
		fr.pc = pos + 1
		m.frames = append(m.frames, newFrame(fn.Code, int(fn.Arity), callee.Captures, args))

	case bytecode.Return:
		result := m.pop()
		m.frames = m.frames[:len(m.frames)-1]
		if len(m.frames) == 0 {
			return Outcome{Kind: OutcomeReturn, ExitCode: exitCodeOf(result), FuelUsed: m.used}, true
		}
		m.push(result)

	default:
		return m.trap("E4006", "unknown opcode reached at runtime"), true
	}

	return Outcome{}, false
}

func (m *VM) stringAt(idx uint32) string {
	if int(idx) >= len(m.prog.Strings) {
		return ""
	}
	return m.prog.Strings[idx]
}

// exitCodeOf converts the entry function's returned value to a process
// exit code (spec.md §4.I "Returning from the entry function with an
// integer produces the process exit code"). A non-integer return (unit,
// a script that just ends a pipeline) exits 0.
func exitCodeOf(v Value) int64 {
	if i, ok := v.(VInt); ok {
		return int64(i)
	}
	return 0
}
