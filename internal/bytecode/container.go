package bytecode

import (
	"encoding/binary"
	"strconv"
	"unicode/utf8"

	"github.com/sunholo/uscript/internal/diag"
)

// Magic is the fixed 4-byte `.mub` container header.
const Magic = "MUB1"

// FuncEntry is one function table slot: arity (declared parameter count,
// not counting captures), capture count, and its flat instruction stream.
type FuncEntry struct {
	Arity    uint8
	Captures uint8
	Code     []byte
}

// Program is a fully lowered module ready to encode: a string pool, a
// function table, and an entry function index (spec.md §6 "Bytecode
// module").
type Program struct {
	Strings []string
	Funcs   []FuncEntry
	EntryFn uint32
}

// DecodeError is a stable-code, span-free decode failure, mirroring the
// host package's HostError shape (a stable code plus a message, no source
// span since a `.mub` container carries none).
type DecodeError struct {
	Code    string
	Message string
}

func (e *DecodeError) Error() string { return e.Code + ": " + e.Message }

func derr(code, msg string) error { return &DecodeError{Code: code, Message: msg} }

// Encode serializes p into the `.mub` container format (spec.md §6).
// Encode never fails: a Program built by internal/lower is always
// well-formed by construction.
func Encode(p *Program) []byte {
	var buf []byte
	buf = append(buf, Magic...)

	buf = appendU32(buf, uint32(len(p.Strings)))
	for _, s := range p.Strings {
		buf = appendU32(buf, uint32(len(s)))
		buf = append(buf, s...)
	}

	buf = appendU32(buf, uint32(len(p.Funcs)))
	for _, fn := range p.Funcs {
		buf = append(buf, fn.Arity, fn.Captures)
		buf = appendU32(buf, uint32(len(fn.Code)))
		buf = append(buf, fn.Code...)
	}

	buf = appendU32(buf, p.EntryFn)
	return buf
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// reader is a bounds-checked cursor over a `.mub` byte slice. Every read
// validates before advancing so Decode never panics on arbitrary bytes
// (spec.md §4.H).
type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, derr(diag.E4102, "truncated container: need "+strconv.Itoa(n)+" bytes, have "+strconv.Itoa(r.remaining()))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Decode strictly validates and parses a `.mub` container, per spec.md
// §4.H: magic, every length field, UTF-8 validity, opcode validity, every
// string/function/jump/builtin index range, and no trailing bytes. It
// never panics on arbitrary input.
func Decode(data []byte, knownBuiltins int) (*Program, error) {
	r := &reader{data: data}

	magic, err := r.bytes(4)
	if err != nil {
		return nil, derr(diag.E4101, "container shorter than magic header")
	}
	if string(magic) != Magic {
		return nil, derr(diag.E4101, "bad magic: expected "+Magic)
	}

	nstrings, err := r.u32()
	if err != nil {
		return nil, err
	}
	strings_ := make([]string, 0, nstrings)
	for i := uint32(0); i < nstrings; i++ {
		strLen, err := r.u32()
		if err != nil {
			return nil, err
		}
		raw, err := r.bytes(int(strLen))
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(raw) {
			return nil, derr(diag.E4103, "string pool entry is not valid UTF-8")
		}
		strings_ = append(strings_, string(raw))
	}

	nfuncs, err := r.u32()
	if err != nil {
		return nil, err
	}
	funcs := make([]FuncEntry, 0, nfuncs)
	for i := uint32(0); i < nfuncs; i++ {
		arity, err := r.u8()
		if err != nil {
			return nil, err
		}
		captures, err := r.u8()
		if err != nil {
			return nil, err
		}
		codeLen, err := r.u32()
		if err != nil {
			return nil, err
		}
		code, err := r.bytes(int(codeLen))
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, FuncEntry{Arity: arity, Captures: captures, Code: append([]byte(nil), code...)})
	}

	entryFn, err := r.u32()
	if err != nil {
		return nil, err
	}

	if r.remaining() != 0 {
		return nil, derr(diag.E4109, "trailing bytes after container")
	}

	if int(entryFn) >= len(funcs) {
		return nil, derr(diag.E4106, "entry function index out of range")
	}

	p := &Program{Strings: strings_, Funcs: funcs, EntryFn: entryFn}
	if err := validate(p, knownBuiltins); err != nil {
		return nil, err
	}
	return p, nil
}

// validate walks every function's instruction stream, checking that every
// opcode is known, every operand index is in range, and every jump target
// lands inside the function's own code.
func validate(p *Program, knownBuiltins int) error {
	for fi, fn := range p.Funcs {
		code := fn.Code
		pos := 0
		for pos < len(code) {
			op := Op(code[pos])
			widths, ok := OperandWidths(op)
			if !ok {
				return derr(diag.E4104, "unknown opcode in function "+strconv.Itoa(fi))
			}
			pos++
			operands := make([]uint32, len(widths))
			for oi, w := range widths {
				if pos+w > len(code) {
					return derr(diag.E4102, "truncated instruction in function "+strconv.Itoa(fi))
				}
				switch w {
				case 1:
					operands[oi] = uint32(code[pos])
				case 4:
					operands[oi] = binary.LittleEndian.Uint32(code[pos : pos+4])
				case 8:
					// PUSH_INT's i64 operand carries no index to validate;
					// only its width matters for advancing pos.
				}
				pos += w
			}

			switch op {
			case PushString:
				if int(operands[0]) >= len(p.Strings) {
					return derr(diag.E4105, "string index out of range in function "+strconv.Itoa(fi))
				}
			case CallBuiltin:
				if int(operands[0]) >= knownBuiltins {
					return derr(diag.E4108, "unknown builtin id in function "+strconv.Itoa(fi))
				}
			case CallFn, MkClosure:
				if int(operands[0]) >= len(p.Funcs) {
					return derr(diag.E4106, "function index out of range in function "+strconv.Itoa(fi))
				}
			case Jump, JumpIfFalse:
				if int(operands[0]) > len(code) {
					return derr(diag.E4107, "jump target out of range in function "+strconv.Itoa(fi))
				}
			case JumpIfTag:
				if int(operands[1]) > len(code) {
					return derr(diag.E4107, "jump target out of range in function "+strconv.Itoa(fi))
				}
			case AssertConst, ContractConst, Trap:
				if int(operands[0]) >= len(p.Strings) {
					return derr(diag.E4105, "string index out of range in function "+strconv.Itoa(fi))
				}
			}
		}
	}
	return nil
}

