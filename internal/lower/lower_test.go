package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/parser"
	"github.com/sunholo/uscript/internal/resolve"
	"github.com/sunholo/uscript/internal/types"
)

func lowerSrc(t *testing.T, src string) (*bytecode.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag()
	m := parser.Parse(src, "t.mu", bag)
	require.False(t, bag.HasErrors(), "parse errors: %v", bag.Items())
	r := resolve.Resolve(m, bag)
	require.False(t, bag.HasErrors(), "resolve errors: %v", bag.Items())
	types.Check(m, r, bag)
	require.False(t, bag.HasErrors(), "check errors: %v", bag.Items())
	prog := Lower(m, r, bag)
	return prog, bag
}

func containsOp(code []byte, op bytecode.Op) bool {
	pos := 0
	for pos < len(code) {
		cur := bytecode.Op(code[pos])
		if cur == op {
			return true
		}
		widths, ok := bytecode.OperandWidths(cur)
		if !ok {
			return false
		}
		pos++
		for _, w := range widths {
			pos += w
		}
	}
	return false
}

func TestLowerProducesDecodableContainer(t *testing.T) {
	prog, _ := lowerSrc(t, `@demo { F main:()->i64=l():i64 42; }`)
	encoded := bytecode.Encode(prog)
	decoded, err := bytecode.Decode(encoded, KnownBuiltinCount())
	require.NoError(t, err)
	assert.Equal(t, prog.EntryFn, decoded.EntryFn)
}

func TestLowerMissingMainReportsE3015(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo { V a:i64=1; }`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	r := resolve.Resolve(m, bag)
	require.False(t, bag.HasErrors())
	types.Check(m, r, bag)
	require.False(t, bag.HasErrors())
	Lower(m, r, bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.E3015, bag.Items()[0].Code)
}

func TestLowerEntryFnPointsAtMain(t *testing.T) {
	prog, bag := lowerSrc(t, `@demo {
		F helper:()->i64=l():i64 1;
		F main:()->i64=l():i64 c(helper);
	}`)
	require.False(t, bag.HasErrors())
	mainCode := prog.Funcs[prog.EntryFn].Code
	assert.True(t, containsOp(mainCode, bytecode.CallFn))
}

func TestLowerIfEmitsConditionalJumps(t *testing.T) {
	prog, bag := lowerSrc(t, `@demo { F main:()->i64=l():i64 i(t,1,2); }`)
	require.False(t, bag.HasErrors())
	code := prog.Funcs[prog.EntryFn].Code
	assert.True(t, containsOp(code, bytecode.JumpIfFalse))
	assert.True(t, containsOp(code, bytecode.Jump))
}

func TestLowerBuiltinCallEmitsCallBuiltin(t *testing.T) {
	prog, bag := lowerSrc(t, `@demo { F main:()->i64=l():i64 c(add,1,2); }`)
	require.False(t, bag.HasErrors())
	code := prog.Funcs[prog.EntryFn].Code
	assert.True(t, containsOp(code, bytecode.CallBuiltin))
}

func TestLowerConstructorEmitsMkADT(t *testing.T) {
	prog, bag := lowerSrc(t, `@demo {
		T Shape = Circle(i64);
		F main:()->Shape=l():Shape Circle(1);
	}`)
	require.False(t, bag.HasErrors())
	code := prog.Funcs[prog.EntryFn].Code
	assert.True(t, containsOp(code, bytecode.MkADT))
}

func TestLowerTopLevelValueGetsOwnFunctionSlot(t *testing.T) {
	prog, bag := lowerSrc(t, `@demo {
		V greeting:i64=7;
		F main:()->i64=l():i64 greeting;
	}`)
	require.False(t, bag.HasErrors())
	require.Len(t, prog.Funcs, 2)
	code := prog.Funcs[prog.EntryFn].Code
	assert.True(t, containsOp(code, bytecode.CallFn))
}

func TestLowerAssertEmitsAssertConst(t *testing.T) {
	prog, bag := lowerSrc(t, `@demo { F main:()->unit=l():unit assert(t,"ok"); }`)
	require.False(t, bag.HasErrors())
	code := prog.Funcs[prog.EntryFn].Code
	assert.True(t, containsOp(code, bytecode.AssertConst))
}

func TestLowerRequireEmitsContractConst(t *testing.T) {
	prog, bag := lowerSrc(t, `@demo { F main:(bool)->unit=l(x:bool):unit ^x; }`)
	require.False(t, bag.HasErrors())
	code := prog.Funcs[prog.EntryFn].Code
	assert.True(t, containsOp(code, bytecode.ContractConst))
}
