// Package builtins is the single source of truth for µScript's stdlib
// surface: every builtin's name, fixed arity, and effect atom in one
// table consumed by the resolver, checker, lowerer and VM alike.
// Grounded on the teacher's internal/builtins/registry.go BuiltinMeta
// table, generalized from AILANG's dictionary-passing type-class
// builtins (per-type-class variants like add_Int/add_Float) to
// µScript's simpler fixed-signature builtins — µScript has no type
// classes, so one name maps to one signature.
package builtins

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
)

// Sig is one builtin's compile-time signature.
type Sig struct {
	Name   string
	Params []ast.Type
	Return ast.Type
	Pure   bool
	Effect ast.Atom // meaningful only when Pure is false
	ID     int       // stable CALL_BUILTIN id, assigned in registration order
}

var (
	zero    diag.Span
	Int64T  = ast.Int64(zero)
	BoolT   = ast.TBool{}.WithSpan(zero)
	StringT = ast.TString{}.WithSpan(zero)
	UnitT   = ast.TUnit{}.WithSpan(zero)
)

// Registry maps every builtin name to its signature.
var Registry = map[string]*Sig{}

var order []string

func register(name string, params []ast.Type, ret ast.Type, pure bool, atom ast.Atom) {
	if _, dup := Registry[name]; dup {
		panic("builtins: duplicate registration of " + name)
	}
	Registry[name] = &Sig{
		Name: name, Params: params, Return: ret, Effect: atom, Pure: pure, ID: len(order),
	}
	order = append(order, name)
}

func init() {
	registerArithmetic()
	registerComparison()
	registerBoolean()
	registerStringOps()
	registerIO()
	registerFS()
	registerNet()
	registerProc()
	registerRandTime()
	registerState()
}

func registerArithmetic() {
	bin := []ast.Type{Int64T, Int64T}
	register("add", bin, Int64T, true, 0)
	register("sub", bin, Int64T, true, 0)
	register("mul", bin, Int64T, true, 0)
	register("div", bin, Int64T, true, 0)
	register("mod", bin, Int64T, true, 0)
	register("neg", []ast.Type{Int64T}, Int64T, true, 0)
}

func registerComparison() {
	bin := []ast.Type{Int64T, Int64T}
	register("lt", bin, BoolT, true, 0)
	register("le", bin, BoolT, true, 0)
	register("gt", bin, BoolT, true, 0)
	register("ge", bin, BoolT, true, 0)
	// `==`/`!=` are polymorphic over any non-function type; the checker
	// special-cases these two names (spec.md §4.E "Equality") rather than
	// fixing a Sig, since Sig has no polymorphic-parameter representation.
}

func registerBoolean() {
	bin := []ast.Type{BoolT, BoolT}
	register("and", bin, BoolT, true, 0)
	register("or", bin, BoolT, true, 0)
	register("not", []ast.Type{BoolT}, BoolT, true, 0)
}

func registerStringOps() {
	register("strlen", []ast.Type{StringT}, Int64T, true, 0)
	register("strcat", []ast.Type{StringT, StringT}, StringT, true, 0)
	register("strcmp", []ast.Type{StringT, StringT}, Int64T, true, 0)
}

func registerIO() {
	register("print", []ast.Type{StringT}, UnitT, false, ast.AtomIO)
	register("println", []ast.Type{StringT}, UnitT, false, ast.AtomIO)
	register("eprintln", []ast.Type{StringT}, UnitT, false, ast.AtomIO)
}

func registerFS() {
	register("read_file", []ast.Type{StringT}, StringT, false, ast.AtomFS)
	register("write_file", []ast.Type{StringT, StringT}, UnitT, false, ast.AtomFS)
}

func registerNet() {
	register("http_get", []ast.Type{StringT}, StringT, false, ast.AtomNet)
}

func registerProc() {
	register("spawn", []ast.Type{StringT}, Int64T, false, ast.AtomProc)
}

func registerRandTime() {
	register("rand_int", nil, Int64T, false, ast.AtomRand)
	register("now_unix", nil, Int64T, false, ast.AtomTime)
}

func registerState() {
	register("new_cell", []ast.Type{Int64T}, Int64T, false, ast.AtomState)
	register("get_cell", []ast.Type{Int64T}, Int64T, false, ast.AtomState)
	register("set_cell", []ast.Type{Int64T, Int64T}, UnitT, false, ast.AtomState)
}

// Names returns every registered builtin name (used by §7.1's fuzzy
// "did you mean" suggestions when resolving an unknown identifier).
func Names() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Count returns the number of registered builtins (the CALL_BUILTIN id
// space this registry occupies; lowering/decoding extend past it for the
// `eq`/`ne` special forms, see internal/lower).
func Count() int {
	return len(order)
}

// ByID returns the builtin registered with the given CALL_BUILTIN id.
func ByID(id int) (*Sig, bool) {
	if id < 0 || id >= len(order) {
		return nil, false
	}
	return Registry[order[id]], true
}
