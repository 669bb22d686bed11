package lower

import (
	"encoding/binary"

	"github.com/sunholo/uscript/internal/bytecode"
)

// funcBuilder compiles one function-table entry's body: its own flat
// instruction stream, local slot allocator, and result slot for `_r`
// (spec.md §3 "_r ... refers to the enclosing function's result value").
// A new funcBuilder is created for every top-level FuncDecl/ValueDecl and
// every Lambda, since each gets its own frame.
type funcBuilder struct {
	b          *builder
	code       []byte
	nextSlot   int
	resultSlot int
}

func newFuncBuilder(b *builder) *funcBuilder {
	return &funcBuilder{b: b}
}

func (fb *funcBuilder) newSlot() int {
	s := fb.nextSlot
	fb.nextSlot++
	return s
}

// label collects the byte offsets of every u32 jump-operand placeholder
// that should be patched to the label's eventual address, the same
// emit-then-changeOperand idiom other_examples/…ugo__compiler.go.go uses
// for its own forward jumps.
type label struct {
	patches []int
}

func (l *label) addPatch(operandPos int) {
	l.patches = append(l.patches, operandPos)
}

func (fb *funcBuilder) resolveLabel(l *label, addr uint32) {
	for _, pos := range l.patches {
		binary.LittleEndian.PutUint32(fb.code[pos:pos+4], addr)
	}
}

func (fb *funcBuilder) here() uint32 { return uint32(len(fb.code)) }

func (fb *funcBuilder) emitOp(op bytecode.Op) int {
	pos := len(fb.code)
	fb.code = append(fb.code, byte(op))
	return pos
}

func (fb *funcBuilder) emitU8(op bytecode.Op, v uint8) int {
	pos := len(fb.code)
	fb.code = append(fb.code, byte(op), v)
	return pos
}

func (fb *funcBuilder) emitU8U8(op bytecode.Op, a, b uint8) int {
	pos := len(fb.code)
	fb.code = append(fb.code, byte(op), a, b)
	return pos
}

func (fb *funcBuilder) emitU32(op bytecode.Op, v uint32) int {
	pos := len(fb.code)
	fb.code = append(fb.code, byte(op))
	fb.code = appendU32(fb.code, v)
	return pos
}

func (fb *funcBuilder) emitU32U8(op bytecode.Op, a uint32, b uint8) int {
	pos := len(fb.code)
	fb.code = append(fb.code, byte(op))
	fb.code = appendU32(fb.code, a)
	fb.code = append(fb.code, b)
	return pos
}

func (fb *funcBuilder) emitU32U32(op bytecode.Op, a, b uint32) int {
	pos := len(fb.code)
	fb.code = append(fb.code, byte(op))
	fb.code = appendU32(fb.code, a)
	fb.code = appendU32(fb.code, b)
	return pos
}

func (fb *funcBuilder) emitI64(op bytecode.Op, v int64) int {
	pos := len(fb.code)
	fb.code = append(fb.code, byte(op))
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	fb.code = append(fb.code, tmp[:]...)
	return pos
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func (fb *funcBuilder) emitLoadLocal(slot int)  { fb.emitU32(bytecode.LoadLocal, uint32(slot)) }
func (fb *funcBuilder) emitStoreLocal(slot int) { fb.emitU32(bytecode.StoreLocal, uint32(slot)) }
