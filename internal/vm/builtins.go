package vm

import (
	"github.com/sunholo/uscript/internal/builtins"
)

// Result/error constructor tags for the prelude's Res[T,E]: Ok wraps a
// value, Er wraps a recoverable host failure (spec.md §7 "Recoverable
// host errors ... are Er values of Res"). The container format carries
// no named-constructor metadata (see value.go's VADT doc comment), so
// these are the VM's own fixed tag assignment, used only by this
// package's host-call wrapping — a user ADT's tags are independently
// assigned starting at 0 per ADT and never collide with these at
// runtime, since the checker statically tracks which ADT a value
// belongs to.
const (
	resOkTag  uint32 = 0
	resErrTag uint32 = 1
)

func resOk(v Value) Value { return &VADT{Tag: resOkTag, Fields: []Value{v}} }

func resErr(code, message string) Value {
	return &VADT{Tag: resErrTag, Fields: []Value{&VString{S: code}, &VString{S: message}}}
}

// callBuiltin dispatches one CALL_BUILTIN id against its already
// popped, left-to-right-ordered argument values. A non-empty trapCode
// means the call reached an unrecoverable state (an arithmetic fault, a
// missing host capability, or a type confusion the checker should have
// prevented) and the run terminates; otherwise
// result holds the value to push back.
func (m *VM) callBuiltin(id int, args []Value) (result Value, trapCode, trapMsg string) {
	if id == builtins.Count() {
		return m.builtinEq(args)
	}
	if id == builtins.Count()+1 {
		v, tc, tm := m.builtinEq(args)
		if tc != "" {
			return nil, tc, tm
		}
		b, _ := v.(VBool)
		return VBool(!bool(b)), "", ""
	}

	sig, ok := builtins.ByID(id)
	if !ok {
		return nil, "E4006", "unknown builtin id reached at runtime"
	}

	switch sig.Name {
	case "add", "sub", "mul", "div", "mod", "neg":
		return m.builtinArith(sig.Name, args)
	case "lt", "le", "gt", "ge":
		return m.builtinCompare(sig.Name, args)
	case "and", "or", "not":
		return m.builtinBool(sig.Name, args)
	case "strlen", "strcat", "strcmp":
		return m.builtinString(sig.Name, args)
	case "print", "println", "eprintln":
		return m.builtinIO(sig.Name, args)
	case "read_file", "write_file":
		return m.builtinFS(sig.Name, args)
	case "http_get":
		return m.builtinNet(args)
	case "spawn":
		return m.builtinProc(args)
	case "rand_int":
		return m.builtinRand()
	case "now_unix":
		return m.builtinTime()
	case "new_cell", "get_cell", "set_cell":
		return m.builtinState(sig.Name, args)
	default:
		return nil, "E4006", "builtin " + sig.Name + " has no VM dispatch"
	}
}

func (m *VM) builtinEq(args []Value) (Value, string, string) {
	eq, valid := equalValues(args[0], args[1])
	if !valid {
		return nil, "E4006", "equality on a non-comparable (function) value"
	}
	return VBool(eq), "", ""
}

func intArgs(args []Value) (int64, int64, bool) {
	a, ok1 := args[0].(VInt)
	if len(args) == 1 {
		return int64(a), 0, ok1
	}
	b, ok2 := args[1].(VInt)
	return int64(a), int64(b), ok1 && ok2
}

func (m *VM) builtinArith(name string, args []Value) (Value, string, string) {
	if name == "neg" {
		a, ok := args[0].(VInt)
		if !ok {
			return nil, "E4006", "neg operand is not an int"
		}
		if a == -9223372036854775808 {
			return nil, "E4003", "signed overflow in neg(i64::MIN)"
		}
		return VInt(-a), "", ""
	}
	a, b, ok := intArgs(args)
	if !ok {
		return nil, "E4006", name + " operand is not an int"
	}
	switch name {
	case "add":
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return nil, "E4003", "signed overflow in add"
		}
		return VInt(r), "", ""
	case "sub":
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return nil, "E4003", "signed overflow in sub"
		}
		return VInt(r), "", ""
	case "mul":
		if a != 0 && b != 0 {
			r := a * b
			if r/b != a {
				return nil, "E4003", "signed overflow in mul"
			}
			return VInt(r), "", ""
		}
		return VInt(0), "", ""
	case "div":
		if b == 0 {
			return nil, "E4003", "division by zero"
		}
		if a == -9223372036854775808 && b == -1 {
			return nil, "E4003", "signed overflow in div(i64::MIN, -1)"
		}
		return VInt(a / b), "", ""
	case "mod":
		if b == 0 {
			return nil, "E4003", "modulo by zero"
		}
		if a == -9223372036854775808 && b == -1 {
			return nil, "E4003", "signed overflow in mod(i64::MIN, -1)"
		}
		return VInt(a % b), "", ""
	}
	return nil, "E4006", "unreachable arithmetic builtin"
}

func (m *VM) builtinCompare(name string, args []Value) (Value, string, string) {
	a, b, ok := intArgs(args)
	if !ok {
		return nil, "E4006", name + " operand is not an int"
	}
	switch name {
	case "lt":
		return VBool(a < b), "", ""
	case "le":
		return VBool(a <= b), "", ""
	case "gt":
		return VBool(a > b), "", ""
	case "ge":
		return VBool(a >= b), "", ""
	}
	return nil, "E4006", "unreachable comparison builtin"
}

func (m *VM) builtinBool(name string, args []Value) (Value, string, string) {
	if name == "not" {
		a, ok := args[0].(VBool)
		if !ok {
			return nil, "E4006", "not operand is not a bool"
		}
		return VBool(!bool(a)), "", ""
	}
	a, ok1 := args[0].(VBool)
	b, ok2 := args[1].(VBool)
	if !ok1 || !ok2 {
		return nil, "E4006", name + " operand is not a bool"
	}
	if name == "and" {
		return VBool(bool(a) && bool(b)), "", ""
	}
	return VBool(bool(a) || bool(b)), "", ""
}

func (m *VM) builtinString(name string, args []Value) (Value, string, string) {
	a, ok1 := args[0].(*VString)
	if !ok1 {
		return nil, "E4006", name + " operand is not a string"
	}
	if name == "strlen" {
		return VInt(len(a.S)), "", ""
	}
	b, ok2 := args[1].(*VString)
	if !ok2 {
		return nil, "E4006", name + " operand is not a string"
	}
	switch name {
	case "strcat":
		return &VString{S: a.S + b.S}, "", ""
	case "strcmp":
		switch {
		case a.S < b.S:
			return VInt(-1), "", ""
		case a.S > b.S:
			return VInt(1), "", ""
		default:
			return VInt(0), "", ""
		}
	}
	return nil, "E4006", "unreachable string builtin"
}

// hostMissing traps E4006, matching host.go's documented contract that
// a nil capability makes its effect atom's builtins unavailable rather
// than reachable-but-silently-failing.
func hostMissing() (Value, string, string) {
	return nil, "E4006", "no host capability supplied for this effect"
}

func (m *VM) builtinIO(name string, args []Value) (Value, string, string) {
	if m.host == nil || m.host.IO == nil {
		return hostMissing()
	}
	s, ok := args[0].(*VString)
	if !ok {
		return nil, "E4006", name + " operand is not a string"
	}
	var err error
	switch name {
	case "print":
		err = m.host.IO.Print(s.S)
	case "println":
		err = m.host.IO.Println(s.S)
	case "eprintln":
		err = m.host.IO.Eprintln(s.S)
	}
	if err != nil {
		return nil, "E4006", "io write failed: " + err.Error()
	}
	return VUnit{}, "", ""
}

func (m *VM) builtinFS(name string, args []Value) (Value, string, string) {
	if m.host == nil || m.host.FS == nil {
		return hostMissing()
	}
	switch name {
	case "read_file":
		path, ok := args[0].(*VString)
		if !ok {
			return nil, "E4006", "read_file path is not a string"
		}
		contents, herr := m.host.FS.ReadFile(path.S)
		if herr != nil {
			return resErr(herr.Code, herr.Message), "", ""
		}
		return resOk(&VString{S: contents}), "", ""
	case "write_file":
		path, ok1 := args[0].(*VString)
		contents, ok2 := args[1].(*VString)
		if !ok1 || !ok2 {
			return nil, "E4006", "write_file operand is not a string"
		}
		if herr := m.host.FS.WriteFile(path.S, contents.S); herr != nil {
			return resErr(herr.Code, herr.Message), "", ""
		}
		return resOk(VUnit{}), "", ""
	}
	return nil, "E4006", "unreachable fs builtin"
}

func (m *VM) builtinNet(args []Value) (Value, string, string) {
	if m.host == nil || m.host.Net == nil {
		return hostMissing()
	}
	url, ok := args[0].(*VString)
	if !ok {
		return nil, "E4006", "http_get url is not a string"
	}
	body, herr := m.host.Net.HTTPGet(url.S)
	if herr != nil {
		return resErr(herr.Code, herr.Message), "", ""
	}
	return resOk(&VString{S: body}), "", ""
}

func (m *VM) builtinProc(args []Value) (Value, string, string) {
	if m.host == nil || m.host.Proc == nil {
		return hostMissing()
	}
	cmd, ok := args[0].(*VString)
	if !ok {
		return nil, "E4006", "spawn command is not a string"
	}
	code, herr := m.host.Proc.Spawn(cmd.S)
	if herr != nil {
		return resErr(herr.Code, herr.Message), "", ""
	}
	return resOk(VInt(code)), "", ""
}

func (m *VM) builtinRand() (Value, string, string) {
	if m.host == nil || m.host.Rand == nil {
		return hostMissing()
	}
	return VInt(m.host.Rand.RandInt()), "", ""
}

func (m *VM) builtinTime() (Value, string, string) {
	if m.host == nil || m.host.Time == nil {
		return hostMissing()
	}
	return VInt(m.host.Time.NowUnix()), "", ""
}

func (m *VM) builtinState(name string, args []Value) (Value, string, string) {
	if m.host == nil || m.host.State == nil {
		return hostMissing()
	}
	switch name {
	case "new_cell":
		initial, ok := args[0].(VInt)
		if !ok {
			return nil, "E4006", "new_cell operand is not an int"
		}
		return VInt(m.host.State.NewCell(int64(initial))), "", ""
	case "get_cell":
		handle, ok := args[0].(VInt)
		if !ok {
			return nil, "E4006", "get_cell handle is not an int"
		}
		v, herr := m.host.State.GetCell(int64(handle))
		if herr != nil {
			return resErr(herr.Code, herr.Message), "", ""
		}
		return resOk(VInt(v)), "", ""
	case "set_cell":
		handle, ok1 := args[0].(VInt)
		value, ok2 := args[1].(VInt)
		if !ok1 || !ok2 {
			return nil, "E4006", "set_cell operand is not an int"
		}
		if herr := m.host.State.SetCell(int64(handle), int64(value)); herr != nil {
			return resErr(herr.Code, herr.Message), "", ""
		}
		return resOk(VUnit{}), "", ""
	}
	return nil, "E4006", "unreachable state builtin"
}
