package vm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/uscript/internal/builtins"
	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/host"
)

func u32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func i64(v int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

func singleFuncProgram(strings []string, code []byte) *bytecode.Program {
	return &bytecode.Program{
		Strings: strings,
		Funcs:   []bytecode.FuncEntry{{Arity: 0, Captures: 0, Code: code}},
		EntryFn: 0,
	}
}

func TestRunReturnsIntExitCode(t *testing.T) {
	code := append([]byte{byte(bytecode.PushInt)}, i64(7)...)
	code = append(code, byte(bytecode.Return))
	prog := singleFuncProgram(nil, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeReturn, out.Kind)
	assert.Equal(t, int64(7), out.ExitCode)
}

func TestRunUnitReturnGivesExitCodeZero(t *testing.T) {
	code := []byte{byte(bytecode.PushUnit), byte(bytecode.Return)}
	prog := singleFuncProgram(nil, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeReturn, out.Kind)
	assert.Equal(t, int64(0), out.ExitCode)
}

func TestRunFuelExhaustionBeforeAnyStep(t *testing.T) {
	code := []byte{byte(bytecode.PushUnit), byte(bytecode.Return)}
	prog := singleFuncProgram(nil, code)

	out := New(prog, nil, 0).Run(nil)
	assert.Equal(t, OutcomeFuelExhausted, out.Kind)
	assert.Equal(t, int64(0), out.FuelUsed)
}

func TestRunAssertFailureTrapsE4001WithMessage(t *testing.T) {
	code := []byte{byte(bytecode.PushBool), 0}
	code = append(code, byte(bytecode.AssertConst))
	code = append(code, u32(0)...)
	code = append(code, byte(bytecode.Return))
	prog := singleFuncProgram([]string{"boom"}, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeTrap, out.Kind)
	assert.Equal(t, "E4001", out.TrapCode)
	assert.Equal(t, "boom", out.TrapMsg)
}

func TestRunContractViolationTrapsE4002(t *testing.T) {
	code := []byte{byte(bytecode.PushBool), 0}
	code = append(code, byte(bytecode.ContractConst))
	code = append(code, u32(0)...)
	code = append(code, byte(bytecode.Return))
	prog := singleFuncProgram([]string{"precondition violated"}, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeTrap, out.Kind)
	assert.Equal(t, "E4002", out.TrapCode)
}

func TestRunExplicitTrapOpcode(t *testing.T) {
	code := append([]byte{byte(bytecode.Trap)}, u32(0)...)
	prog := singleFuncProgram([]string{"explicit trap"}, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeTrap, out.Kind)
	assert.Equal(t, "E4005", out.TrapCode)
	assert.Equal(t, "explicit trap", out.TrapMsg)
}

func addBuiltinCode() []byte {
	sig := builtins.Registry["add"]
	code := append([]byte{byte(bytecode.PushInt)}, i64(3)...)
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(4)...)
	code = append(code, byte(bytecode.CallBuiltin), byte(sig.ID), 2)
	code = append(code, byte(bytecode.Return))
	return code
}

func TestRunCallBuiltinArithmetic(t *testing.T) {
	prog := singleFuncProgram(nil, addBuiltinCode())
	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeReturn, out.Kind)
	assert.Equal(t, int64(7), out.ExitCode)
}

func TestRunCallBuiltinOverflowTrapsE4003(t *testing.T) {
	addID := builtins.Registry["add"].ID
	code := append([]byte{byte(bytecode.PushInt)}, i64(9223372036854775807)...)
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(1)...)
	code = append(code, byte(bytecode.CallBuiltin), byte(addID), 2)
	code = append(code, byte(bytecode.Return))
	prog := singleFuncProgram(nil, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeTrap, out.Kind)
	assert.Equal(t, "E4003", out.TrapCode)
}

// TestRunCallBuiltinDivisionByZeroTrapsE4003 exercises the scenario
// spec.md's worked example writes as `c(/,1,0)`: `/` cannot itself lex as
// a callee name (only `add`/`sub`/`mul`/`div` are the spelled-out
// arithmetic builtins), so the div-by-zero trap is exercised here under
// its real spelling, `c(div,1,0)`.
func TestRunCallBuiltinDivisionByZeroTrapsE4003(t *testing.T) {
	divID := builtins.Registry["div"].ID
	code := append([]byte{byte(bytecode.PushInt)}, i64(1)...)
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(0)...)
	code = append(code, byte(bytecode.CallBuiltin), byte(divID), 2)
	code = append(code, byte(bytecode.Return))
	prog := singleFuncProgram(nil, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeTrap, out.Kind)
	assert.Equal(t, "E4003", out.TrapCode)
}

func TestRunCallBuiltinUnknownIDTrapsE4006(t *testing.T) {
	code := []byte{byte(bytecode.CallBuiltin), 250, 0}
	code = append(code, byte(bytecode.Return))
	prog := singleFuncProgram(nil, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeTrap, out.Kind)
	assert.Equal(t, "E4006", out.TrapCode)
}

func TestRunIOBuiltinWithoutHostTrapsE4006(t *testing.T) {
	printlnID := builtins.Registry["println"].ID
	code := append([]byte{byte(bytecode.PushString)}, u32(0)...)
	code = append(code, byte(bytecode.CallBuiltin), byte(printlnID), 1)
	code = append(code, byte(bytecode.Return))
	prog := singleFuncProgram([]string{"hi"}, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeTrap, out.Kind)
	assert.Equal(t, "E4006", out.TrapCode)
}

type recordingIOHost struct {
	lines []string
}

func (h *recordingIOHost) Print(s string) error    { h.lines = append(h.lines, s); return nil }
func (h *recordingIOHost) Println(s string) error  { h.lines = append(h.lines, s); return nil }
func (h *recordingIOHost) Eprintln(s string) error { h.lines = append(h.lines, s); return nil }

func TestRunIOBuiltinWithHostGrantedWritesThrough(t *testing.T) {
	printlnID := builtins.Registry["println"].ID
	code := append([]byte{byte(bytecode.PushString)}, u32(0)...)
	code = append(code, byte(bytecode.CallBuiltin), byte(printlnID), 1)
	code = append(code, byte(bytecode.Return))
	prog := singleFuncProgram([]string{"hello"}, code)

	rec := &recordingIOHost{}
	h := &host.Host{IO: rec}
	out := New(prog, h, 1000).Run(nil)
	assert.Equal(t, OutcomeReturn, out.Kind)
	require.Len(t, rec.lines, 1)
	assert.Equal(t, "hello", rec.lines[0])
}

func TestRunIfFalseTakesElseBranch(t *testing.T) {
	// PUSH_BOOL false; JUMP_IF_FALSE elseAddr; PUSH_INT 1; RETURN;
	// elseAddr: PUSH_INT 2; RETURN
	var code []byte
	code = append(code, byte(bytecode.PushBool), 0)
	jumpPos := len(code)
	code = append(code, byte(bytecode.JumpIfFalse))
	code = append(code, u32(0)...) // placeholder, patched below
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(1)...)
	code = append(code, byte(bytecode.Return))
	elseAddr := uint32(len(code))
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(2)...)
	code = append(code, byte(bytecode.Return))
	binary.LittleEndian.PutUint32(code[jumpPos+1:jumpPos+5], elseAddr)

	prog := singleFuncProgram(nil, code)
	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeReturn, out.Kind)
	assert.Equal(t, int64(2), out.ExitCode)
}

func TestRunJumpIfTagFallsThroughOnMatchingTag(t *testing.T) {
	// MK_ADT tag=0 argc=0; JUMP_IF_TAG tag=0 elseAddr; PUSH_INT 1; RETURN;
	// elseAddr: PUSH_INT 2; RETURN
	var code []byte
	code = append(code, byte(bytecode.MkADT))
	code = append(code, u32(0)...)
	code = append(code, 0)
	jumpPos := len(code)
	code = append(code, byte(bytecode.JumpIfTag))
	code = append(code, u32(0)...) // tag to match
	code = append(code, u32(0)...) // placeholder target
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(1)...)
	code = append(code, byte(bytecode.Return))
	elseAddr := uint32(len(code))
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(2)...)
	code = append(code, byte(bytecode.Return))
	binary.LittleEndian.PutUint32(code[jumpPos+5:jumpPos+9], elseAddr)

	prog := singleFuncProgram(nil, code)
	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeReturn, out.Kind)
	assert.Equal(t, int64(1), out.ExitCode, "matching tag should fall through to the then-branch")
}

func TestRunJumpIfTagJumpsOnMismatchedTag(t *testing.T) {
	var code []byte
	code = append(code, byte(bytecode.MkADT))
	code = append(code, u32(1)...) // actual tag 1
	code = append(code, 0)
	jumpPos := len(code)
	code = append(code, byte(bytecode.JumpIfTag))
	code = append(code, u32(0)...) // expects tag 0
	code = append(code, u32(0)...)
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(1)...)
	code = append(code, byte(bytecode.Return))
	elseAddr := uint32(len(code))
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(2)...)
	code = append(code, byte(bytecode.Return))
	binary.LittleEndian.PutUint32(code[jumpPos+5:jumpPos+9], elseAddr)

	prog := singleFuncProgram(nil, code)
	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeReturn, out.Kind)
	assert.Equal(t, int64(2), out.ExitCode, "mismatched tag should jump to the else-branch")
}

func TestRunCallFnAndClosureCapture(t *testing.T) {
	// func 1 (the callee): LOAD_LOCAL 0; RETURN (identity over its single capture)
	calleeCode := append([]byte{byte(bytecode.LoadLocal)}, u32(0)...)
	calleeCode = append(calleeCode, byte(bytecode.Return))

	// func 0 (main): PUSH_INT 9; MK_CLOSURE calleeIdx capc=1; CALL_CLOSURE argc=0; RETURN
	var mainCode []byte
	mainCode = append(mainCode, byte(bytecode.PushInt))
	mainCode = append(mainCode, i64(9)...)
	mainCode = append(mainCode, byte(bytecode.MkClosure))
	mainCode = append(mainCode, u32(1)...)
	mainCode = append(mainCode, 1)
	mainCode = append(mainCode, byte(bytecode.CallClosure), 0)
	mainCode = append(mainCode, byte(bytecode.Return))

	prog := &bytecode.Program{
		Funcs: []bytecode.FuncEntry{
			{Arity: 0, Code: mainCode},
			{Arity: 0, Captures: 1, Code: calleeCode},
		},
		EntryFn: 0,
	}

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeReturn, out.Kind)
	assert.Equal(t, int64(9), out.ExitCode)
}

func TestRunPopDiscardsTopOfStack(t *testing.T) {
	code := []byte{byte(bytecode.PushBool), 1}
	code = append(code, byte(bytecode.Pop))
	code = append(code, byte(bytecode.PushInt))
	code = append(code, i64(5)...)
	code = append(code, byte(bytecode.Return))
	prog := singleFuncProgram(nil, code)

	out := New(prog, nil, 1000).Run(nil)
	assert.Equal(t, OutcomeReturn, out.Kind)
	assert.Equal(t, int64(5), out.ExitCode)
}
