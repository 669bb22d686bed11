package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/uscript/internal/ast"
)

func TestCountMatchesNamesLength(t *testing.T) {
	assert.Equal(t, Count(), len(Names()))
}

func TestByIDRoundTripsEveryRegisteredName(t *testing.T) {
	for id := 0; id < Count(); id++ {
		sig, ok := ByID(id)
		require.True(t, ok, "id %d", id)
		assert.Equal(t, id, sig.ID)
		assert.Same(t, Registry[sig.Name], sig)
	}
}

func TestByIDOutOfRangeReturnsFalse(t *testing.T) {
	_, ok := ByID(-1)
	assert.False(t, ok)
	_, ok = ByID(Count())
	assert.False(t, ok)
}

func TestAddIsPureArithmetic(t *testing.T) {
	sig, ok := Registry["add"]
	require.True(t, ok)
	assert.True(t, sig.Pure)
	require.Len(t, sig.Params, 2)
	assert.Equal(t, Int64T, sig.Params[0])
	assert.Equal(t, Int64T, sig.Return)
}

func TestPrintlnIsEffectfulIO(t *testing.T) {
	sig, ok := Registry["println"]
	require.True(t, ok)
	assert.False(t, sig.Pure)
	assert.Equal(t, ast.AtomIO, sig.Effect)
	require.Len(t, sig.Params, 1)
}

func TestEqualityOperatorsAreNotInRegistry(t *testing.T) {
	_, ok := Registry["=="]
	assert.False(t, ok, "== is special-cased by the checker, not registered as a Sig")
	_, ok = Registry["!="]
	assert.False(t, ok)
}

func TestStateBuiltinsShareStateEffect(t *testing.T) {
	for _, name := range []string{"new_cell", "get_cell", "set_cell"} {
		sig, ok := Registry[name]
		require.True(t, ok, name)
		assert.False(t, sig.Pure)
		assert.Equal(t, ast.AtomState, sig.Effect)
	}
}
