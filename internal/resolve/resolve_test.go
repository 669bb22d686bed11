package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/parser"
)

func resolveSrc(t *testing.T, src string) (*ast.Module, *Resolved, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag()
	m := parser.Parse(src, "t.mu", bag)
	require.False(t, bag.HasErrors(), "parse errors: %v", bag.Items())
	r := Resolve(m, bag)
	return m, r, bag
}

func TestResolveValueRefsFunction(t *testing.T) {
	_, r, bag := resolveSrc(t, `@demo {
		F id:(i64)->i64=l(x:i64):i64 x;
		V a:i64=c(id,1);
	}`)
	require.False(t, bag.HasErrors())
	callExpr := r.Values["a"].Body.(*ast.Call)
	nameRef := callExpr.Fn.(*ast.NameRef)
	info, ok := r.Refs[nameRef]
	require.True(t, ok)
	assert.Equal(t, KindFunction, info.Kind)
	assert.Equal(t, "id", info.Name)
}

func TestResolveBuiltinCall(t *testing.T) {
	_, r, bag := resolveSrc(t, `@demo { V a:i64=c(add,1,2); }`)
	require.False(t, bag.HasErrors())
	call := r.Values["a"].Body.(*ast.Call)
	info, ok := r.Refs[call.Fn.(*ast.NameRef)]
	require.True(t, ok)
	assert.Equal(t, KindBuiltin, info.Kind)
}

func TestResolveUnknownNameReportsE3001(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo { V a:i64=nosuch; }`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	Resolve(m, bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.E3001, bag.Items()[0].Code)
}

func TestResolveSuggestsDidYouMean(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo {
		F add1:(i64)->i64=l(x:i64):i64 x;
		V a:i64=c(ad1,1);
	}`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	Resolve(m, bag)
	require.True(t, bag.HasErrors())
	assert.NotEmpty(t, bag.Items()[0].Suggestion)
}

func TestResolveDuplicateDeclarationReportsE3002(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo { V a:i64=1; V a:i64=2; }`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	Resolve(m, bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.E3002, bag.Items()[0].Code)
}

func TestResolveExportOfUndeclaredNameReportsE3012(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo { E[missing]; }`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	Resolve(m, bag)
	require.True(t, bag.HasErrors())
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.E3012 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestResolveSymRefWithoutTableReportsE3006(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo { V a:i64=c(#0,1); }`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	Resolve(m, bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.E3006, bag.Items()[0].Code)
}

func TestResolveSymRefIndexesSymbolTable(t *testing.T) {
	bag := diag.NewBag()
	m := parser.Parse(`@demo {
		$[id];
		F id:(i64)->i64=l(x:i64):i64 x;
		V a:i64=c(#0,1);
	}`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	r := Resolve(m, bag)
	require.False(t, bag.HasErrors())
	call := r.Values["a"].Body.(*ast.Call)
	info, ok := r.Refs[call.Fn.(*ast.NameRef)]
	require.True(t, ok)
	assert.Equal(t, KindFunction, info.Kind)
	assert.Equal(t, "id", info.Name)
}

func TestResolveConstructorNameResolvesAsCtor(t *testing.T) {
	_, r, bag := resolveSrc(t, `@demo {
		T Shape = Circle(i64) | Point;
		F isCircle:(Shape)->bool=l(s:Shape):bool m(s){Circle(_)=>t;Point=>f;};
	}`)
	require.False(t, bag.HasErrors())
	fn := r.Funcs["isCircle"]
	lam := fn.Body.(*ast.Lambda)
	match := lam.Body.(*ast.Match)
	ctorPat := match.Arms[1].Pattern.(*ast.PName)
	info, ok := r.Refs[ctorPat]
	require.True(t, ok)
	assert.Equal(t, KindConstructor, info.Kind)
	assert.Equal(t, "Point", info.Name)
	assert.Equal(t, 1, info.CtorTag)
}

func TestResolveLocalShadowsTopLevel(t *testing.T) {
	_, r, bag := resolveSrc(t, `@demo {
		V x:i64=1;
		F g:(i64)->i64=l(x:i64):i64 x;
	}`)
	require.False(t, bag.HasErrors())
	fn := r.Funcs["g"]
	lam := fn.Body.(*ast.Lambda)
	nameRef := lam.Body.(*ast.NameRef)
	info, ok := r.Refs[nameRef]
	require.True(t, ok)
	assert.Equal(t, KindLocal, info.Kind)
}
