package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
)

func parseOK(t *testing.T, src string) *ast.Module {
	t.Helper()
	bag := diag.NewBag()
	m := Parse(src, "t.mu", bag)
	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Items())
	return m
}

func TestParseEmptyModule(t *testing.T) {
	m := parseOK(t, "@demo {}")
	assert.Equal(t, "demo", m.ModuleID)
	assert.Empty(t, m.Decls)
}

func TestParseDottedModuleID(t *testing.T) {
	m := parseOK(t, "@a.b.c {}")
	assert.Equal(t, "a.b.c", m.ModuleID)
}

func TestParseSymbolTable(t *testing.T) {
	m := parseOK(t, "@demo { $[foo,bar]; }")
	assert.Equal(t, []string{"foo", "bar"}, m.Symbols)
}

func TestParseImportDecl(t *testing.T) {
	m := parseOK(t, "@demo { : math = std.math; }")
	require.Len(t, m.Decls, 1)
	imp, ok := m.Decls[0].(*ast.ImportDecl)
	require.True(t, ok)
	assert.Equal(t, "math", imp.Alias)
	assert.Equal(t, "std.math", imp.ModuleID)
}

func TestParseExportDecl(t *testing.T) {
	m := parseOK(t, "@demo { E[foo,bar]; }")
	require.Len(t, m.Decls, 1)
	exp, ok := m.Decls[0].(*ast.ExportDecl)
	require.True(t, ok)
	assert.Equal(t, []string{"foo", "bar"}, exp.Names)
}

func TestParseValueDecl(t *testing.T) {
	m := parseOK(t, "@demo { V answer:i64=42; }")
	require.Len(t, m.Decls, 1)
	v, ok := m.Decls[0].(*ast.ValueDecl)
	require.True(t, ok)
	assert.Equal(t, "answer", v.Name)
	lit, ok := v.Body.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(42), lit.Value)
}

func TestParseFuncDeclWithLambdaBody(t *testing.T) {
	m := parseOK(t, "@demo { F id:(i64)->i64=l(x:i64):i64 x; }")
	require.Len(t, m.Decls, 1)
	f, ok := m.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "id", f.Name)
	lam, ok := f.Body.(*ast.Lambda)
	require.True(t, ok)
	require.Len(t, lam.Params, 1)
	assert.Equal(t, "x", lam.Params[0].Name)
}

func TestParseTypeDeclWithConstructors(t *testing.T) {
	m := parseOK(t, "@demo { T Shape = Circle(i64) | Square(i64,i64) | Point; }")
	require.Len(t, m.Decls, 1)
	td, ok := m.Decls[0].(*ast.TypeDecl)
	require.True(t, ok)
	require.Len(t, td.Ctors, 3)
	assert.Equal(t, "Circle", td.Ctors[0].Name)
	assert.Len(t, td.Ctors[0].Payload, 1)
	assert.Equal(t, "Point", td.Ctors[2].Name)
	assert.Empty(t, td.Ctors[2].Payload)
}

func TestParseExplicitCallVsSExprCall(t *testing.T) {
	m := parseOK(t, "@demo { V a:i64=c(f,1,2); V b:i64=(f 1 2); }")
	require.Len(t, m.Decls, 2)
	a := m.Decls[0].(*ast.ValueDecl)
	call, ok := a.Body.(*ast.Call)
	require.True(t, ok)
	assert.False(t, call.Compressed)

	b := m.Decls[1].(*ast.ValueDecl)
	sexpr, ok := b.Body.(*ast.Call)
	require.True(t, ok)
	assert.True(t, sexpr.Compressed)
}

func TestParseParenVsUnitVsSExpr(t *testing.T) {
	m := parseOK(t, "@demo { V a:unit=(); V b:i64=(1); }")
	a := m.Decls[0].(*ast.ValueDecl)
	_, isUnit := a.Body.(*ast.UnitLit)
	assert.True(t, isUnit)

	b := m.Decls[1].(*ast.ValueDecl)
	paren, ok := b.Body.(*ast.Paren)
	require.True(t, ok)
	_, isInt := paren.Inner.(*ast.IntLit)
	assert.True(t, isInt)
}

func TestParseIfLetMatch(t *testing.T) {
	m := parseOK(t, `@demo { V a:i64=i(t,1,2); V b:i64=v(x=1,x); V c:i64=m(x){_=>1;}; }`)
	require.Len(t, m.Decls, 3)
	_, ok := m.Decls[0].(*ast.ValueDecl).Body.(*ast.If)
	assert.True(t, ok)
	_, ok = m.Decls[1].(*ast.ValueDecl).Body.(*ast.Let)
	assert.True(t, ok)
	match, ok := m.Decls[2].(*ast.ValueDecl).Body.(*ast.Match)
	require.True(t, ok)
	require.Len(t, match.Arms, 1)
}

func TestParseBracketFormsEquivalentToPrefixForms(t *testing.T) {
	m := parseOK(t, `@demo { V a:i64=[v x=1 x]; V b:i64=[i t 1 2]; }`)
	_, ok := m.Decls[0].(*ast.ValueDecl).Body.(*ast.Let)
	assert.True(t, ok)
	_, ok = m.Decls[1].(*ast.ValueDecl).Body.(*ast.If)
	assert.True(t, ok)
}

func TestParseRequireEnsureAssert(t *testing.T) {
	m := parseOK(t, `@demo { F g:(bool)->unit=l(x:bool):unit {^x; _x; assert(x,"msg")}; }`)
	f := m.Decls[0].(*ast.FuncDecl)
	lam := f.Body.(*ast.Lambda)
	block := lam.Body.(*ast.Block)
	require.Len(t, block.Exprs, 3)
	_, ok := block.Exprs[0].(*ast.Require)
	assert.True(t, ok)
	_, ok = block.Exprs[1].(*ast.Ensure)
	assert.True(t, ok)
	_, ok = block.Exprs[2].(*ast.Assert)
	assert.True(t, ok)
}

func TestParseEffectfulFuncType(t *testing.T) {
	m := parseOK(t, `@demo { F g:()->unit!{io}=l():unit (); }`)
	f := m.Decls[0].(*ast.FuncDecl)
	assert.True(t, f.Type.Effects.Has(ast.AtomIO))
}

func TestParseResultSugarType(t *testing.T) {
	m := parseOK(t, `@demo { F g:()->i64!string!{}=l():i64!string 1; }`)
	f := m.Decls[0].(*ast.FuncDecl)
	named, ok := f.Type.Return.(ast.TNamed)
	require.True(t, ok)
	assert.Equal(t, "Res", named.Name)
	require.Len(t, named.Args, 2)
}

func TestMalformedDeclDoesNotHangAndStillClosesModule(t *testing.T) {
	bag := diag.NewBag()
	m := Parse(`@demo { V bad; }`, "t.mu", bag)
	require.True(t, bag.HasErrors())
	require.NotNil(t, m)
	assert.Equal(t, "demo", m.ModuleID)
}

func TestMalformedDeclRecoversAtNextDeclBoundary(t *testing.T) {
	bag := diag.NewBag()
	m := Parse(`@demo { : ; E[ok]; }`, "t.mu", bag)
	require.True(t, bag.HasErrors())
	found := false
	for _, d := range m.Decls {
		if _, ok := d.(*ast.ExportDecl); ok {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and keep parsing subsequent declarations")
}
