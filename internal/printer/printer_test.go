package printer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/parser"
)

// assertIdempotent fails with a unified diff (the teacher's
// internal/parser/testutil.go goldenCompare idiom) if two successive
// canonical-form printings of the same module disagree.
func assertIdempotent(t *testing.T, out, out2 string) {
	t.Helper()
	if diff := cmp.Diff(out, out2); diff != "" {
		t.Errorf("canonical form is not idempotent (-first +second):\n%s", diff)
	}
}

func TestPrintReadableValueDecl(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo { V answer:i64=42; }`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	out := Print(m, Readable)
	assert.Equal(t, `@demo{V answer:i64=42;}`, out)
}

func TestPrintReadableIsReparseable(t *testing.T) {
	src := `@demo { V a:i64=c(add,1,2); F g:(i64)->i64=l(x:i64):i64 x; }`
	bag := diag.NewBag()
	m := parser.Parse(src, "t.mu", bag)
	require.False(t, bag.HasErrors())
	out := Print(m, Readable)

	bag2 := diag.NewBag()
	m2 := parser.Parse(out, "t.mu", bag2)
	require.False(t, bag2.HasErrors(), "re-parse errors: %v", bag2.Items())
	out2 := Print(m2, Readable)
	assertIdempotent(t, out, out2)
}

func TestPrintCompressedIntroducesSymbolTableForRepeatedNames(t *testing.T) {
	src := `@demo {
		F id:(i64)->i64=l(x:i64):i64 x;
		V a:i64=c(id,1);
		V b:i64=c(id,2);
	}`
	bag := diag.NewBag()
	m := parser.Parse(src, "t.mu", bag)
	require.False(t, bag.HasErrors())
	out := Print(m, Compressed)
	assert.Contains(t, out, "$[id]")
	assert.Contains(t, out, "#0")
}

func TestPrintCompressedOmitsSymbolTableWhenNoRepeats(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo { V a:i64=1; }`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	out := Print(m, Compressed)
	assert.NotContains(t, out, "$[")
}

func TestPrintCompressedIsReparseableAndIdempotent(t *testing.T) {
	src := `@demo {
		F id:(i64)->i64=l(x:i64):i64 x;
		V a:i64=c(id,1);
		V b:i64=c(id,2);
	}`
	bag := diag.NewBag()
	m := parser.Parse(src, "t.mu", bag)
	require.False(t, bag.HasErrors())
	out := Print(m, Compressed)

	bag2 := diag.NewBag()
	m2 := parser.Parse(out, "t.mu", bag2)
	require.False(t, bag2.HasErrors(), "re-parse errors: %v", bag2.Items())
	out2 := Print(m2, Compressed)
	assertIdempotent(t, out, out2)
}

func TestPrintSymbolTableIsLexicographicallySorted(t *testing.T) {
	src := `@demo {
		F zebra:(i64)->i64=l(x:i64):i64 x;
		F apple:(i64)->i64=l(x:i64):i64 x;
		V a:i64=c(zebra,c(apple,1));
		V b:i64=c(zebra,c(apple,2));
	}`
	bag := diag.NewBag()
	m := parser.Parse(src, "t.mu", bag)
	require.False(t, bag.HasErrors())
	out := Print(m, Compressed)
	appleIdx := indexOf(out, "apple")
	zebraIdx := indexOf(out, "zebra")
	require.NotEqual(t, -1, appleIdx)
	require.NotEqual(t, -1, zebraIdx)
	assert.Less(t, appleIdx, zebraIdx)
}

func TestPrintStringEscaping(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo { V s:string="a\nb"; }`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	out := Print(m, Readable)
	assert.Contains(t, out, `"a\nb"`)
}

func TestPrintCompressedLetUsesBracketForm(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo { V a:i64=v(x=1,x); }`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	out := Print(m, Compressed)
	assert.Contains(t, out, "[v ")
}

func TestPrintReadableAfterCompressedRoundTripPreservesNames(t *testing.T) {
	src := `@demo {
		F id:(i64)->i64=l(x:i64):i64 x;
		V a:i64=c(id,1);
		V b:i64=c(id,2);
	}`
	bag := diag.NewBag()
	m := parser.Parse(src, "t.mu", bag)
	require.False(t, bag.HasErrors())
	compressed := Print(m, Compressed)

	bag2 := diag.NewBag()
	m2 := parser.Parse(compressed, "t.mu", bag2)
	require.False(t, bag2.HasErrors(), "re-parse errors: %v", bag2.Items())

	readable := Print(m2, Readable)
	assert.Contains(t, readable, "c(id,1)")
	assert.Contains(t, readable, "c(id,2)")
	assert.NotContains(t, readable, "#0")
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
