// Package resolve binds every name in a parsed module against its
// module/import/ADT/constructor tables and the optional `$[…]` symbol
// table, producing stable diagnostics for anything that doesn't bind.
// Grounded on the teacher's internal/module/resolver.go and
// internal/link/resolver.go (declaration-table construction,
// forward-reference tolerance, duplicate-decl diagnostics).
package resolve

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/builtins"
	"github.com/sunholo/uscript/internal/diag"
)

// Kind classifies what a resolved name refers to.
type Kind int

const (
	KindUnknown Kind = iota
	KindLocal        // let-bound or lambda/function parameter
	KindValue        // top-level V declaration
	KindFunction     // top-level F declaration
	KindConstructor  // ADT constructor
	KindImport       // import alias
	KindBuiltin      // stdlib builtin
)

// Info is what the resolver records for one resolved name occurrence.
type Info struct {
	Kind Kind
	Name string // canonical declared name (never a "#n" spelling)
	// Arity is the constructor payload arity, when Kind == KindConstructor.
	Arity int
	// CtorTag is the constructor's declaration-order tag within its ADT,
	// when Kind == KindConstructor.
	CtorTag int
	// TypeName is the owning ADT name, when Kind == KindConstructor.
	TypeName string
}

// CtorInfo describes one declared ADT constructor for resolution and,
// later, exhaustiveness checking and lowering's MK_ADT tag assignment.
type CtorInfo struct {
	TypeName string
	Tag      int
	Arity    int
	Payload  []ast.Type
}

// Resolved is the output of Resolve: a module's declaration tables plus a
// per-node lookup of what every name reference resolved to.
type Resolved struct {
	Module *ast.Module

	Imports map[string]string // alias -> module id
	Values  map[string]*ast.ValueDecl
	Funcs   map[string]*ast.FuncDecl
	Types   map[string]*ast.TypeDecl
	Ctors   map[string]CtorInfo

	// Symbols is the $[…] table indexed by position: Symbols[n] is the
	// name #n refers to.
	Symbols []string

	// Refs maps each name-bearing AST node (by pointer identity) to what
	// it resolved to. Populated for ast.NameRef, ast.NameApp and
	// ast.PName nodes that the tree walk visited.
	Refs map[ast.Node]Info
}

// declaredNames returns every declared top-level name (value, function,
// type, constructor) for fuzzy "did you mean" suggestions.
func (r *Resolved) declaredNames() []string {
	var names []string
	for n := range r.Values {
		names = append(names, n)
	}
	for n := range r.Funcs {
		names = append(names, n)
	}
	for n := range r.Ctors {
		names = append(names, n)
	}
	for n := range r.Imports {
		names = append(names, n)
	}
	names = append(names, builtins.Names()...)
	sort.Strings(names)
	return names
}

// suggest finds the closest declared name to an unresolved reference,
// the same findClosestMatch idiom opal-lang-opal's planner uses for its
// own "did you mean" diagnostics.
func suggest(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}

// Resolve builds declaration tables for m and resolves every name
// occurrence in every value/function body, appending diagnostics to bag.
// Declaration-by-declaration in source order; forward references within
// the module are permitted (spec.md §4.D).
func Resolve(m *ast.Module, bag *diag.Bag) *Resolved {
	r := &Resolved{
		Module:  m,
		Imports: map[string]string{},
		Values:  map[string]*ast.ValueDecl{},
		Funcs:   map[string]*ast.FuncDecl{},
		Types:   map[string]*ast.TypeDecl{},
		Ctors:   map[string]CtorInfo{},
		Symbols: m.Symbols,
		Refs:    map[ast.Node]Info{},
	}

	var exports *ast.ExportDecl

	declaredAt := map[string]diag.Span{}
	checkDup := func(name string, sp diag.Span, code string) bool {
		if prev, ok := declaredAt[name]; ok {
			bag.Errorf(code, diag.PhaseResolve, sp, "duplicate declaration of %q (first declared at %s)", name, prev)
			return false
		}
		declaredAt[name] = sp
		return true
	}

	for _, decl := range m.Decls {
		switch d := decl.(type) {
		case *ast.ImportDecl:
			if checkDup(d.Alias, d.Sp, diag.E3002) {
				r.Imports[d.Alias] = d.ModuleID
			}
		case *ast.ExportDecl:
			exports = d
		case *ast.TypeDecl:
			if checkDup(d.Name, d.Sp, diag.E3002) {
				r.Types[d.Name] = d
			}
			for tag, c := range d.Ctors {
				if !checkDup(c.Name, c.Sp, diag.E3002) {
					continue
				}
				r.Ctors[c.Name] = CtorInfo{TypeName: d.Name, Tag: tag, Arity: len(c.Payload), Payload: c.Payload}
			}
		case *ast.ValueDecl:
			if checkDup(d.Name, d.Sp, diag.E3002) {
				r.Values[d.Name] = d
			}
		case *ast.FuncDecl:
			if checkDup(d.Name, d.Sp, diag.E3002) {
				r.Funcs[d.Name] = d
			}
		}
	}

	if exports != nil {
		seenExport := map[string]bool{}
		for _, name := range exports.Names {
			if seenExport[name] {
				bag.Errorf(diag.E3002, diag.PhaseResolve, exports.Sp, "duplicate export %q", name)
				continue
			}
			seenExport[name] = true
			if !r.isDeclared(name) {
				bag.Errorf(diag.E3012, diag.PhaseResolve, exports.Sp, "exported name %q is not declared in this module", name)
			}
		}
	}

	seenSym := map[string]bool{}
	for _, s := range m.Symbols {
		if seenSym[s] {
			bag.Errorf(diag.E3003, diag.PhaseResolve, m.Sp, "duplicate symbol-table entry %q", s)
			continue
		}
		seenSym[s] = true
	}

	for _, d := range r.Values {
		r.resolveExpr(d.Body, nil, bag)
	}
	for _, d := range r.Funcs {
		locals := map[string]bool{}
		if lam, ok := d.Body.(*ast.Lambda); ok {
			for _, p := range lam.Params {
				locals[p.Name] = true
			}
		}
		r.resolveExpr(d.Body, locals, bag)
	}

	return r
}

func (r *Resolved) isDeclared(name string) bool {
	if _, ok := r.Values[name]; ok {
		return true
	}
	if _, ok := r.Funcs[name]; ok {
		return true
	}
	if _, ok := r.Types[name]; ok {
		return true
	}
	if _, ok := r.Ctors[name]; ok {
		return true
	}
	return false
}

// resolveName resolves a single canonical-or-#n name string (see the `#n`
// representation note in DESIGN.md) in a given local-scope set, returning
// its Info and recording a diagnostic if it fails to bind.
func (r *Resolved) resolveName(raw string, sp diag.Span, locals map[string]bool, bag *diag.Bag) (Info, bool) {
	name := raw
	if len(raw) > 0 && raw[0] == '#' {
		idx, ok := parseSymRefIndex(raw[1:])
		if !ok {
			bag.Errorf(diag.E3005, diag.PhaseResolve, sp, "malformed symbol reference %q", raw)
			return Info{}, false
		}
		if len(r.Symbols) == 0 {
			bag.Errorf(diag.E3006, diag.PhaseResolve, sp, "#%d used without a $[...] directive", idx)
			return Info{}, false
		}
		if idx < 0 || idx >= len(r.Symbols) {
			bag.Errorf(diag.E3005, diag.PhaseResolve, sp, "symbol reference #%d out of range (table has %d entries)", idx, len(r.Symbols))
			return Info{}, false
		}
		name = r.Symbols[idx]
	}

	if locals != nil && locals[name] {
		return Info{Kind: KindLocal, Name: name}, true
	}
	if c, ok := r.Ctors[name]; ok {
		return Info{Kind: KindConstructor, Name: name, Arity: c.Arity, CtorTag: c.Tag, TypeName: c.TypeName}, true
	}
	if _, ok := r.Funcs[name]; ok {
		return Info{Kind: KindFunction, Name: name}, true
	}
	if _, ok := r.Values[name]; ok {
		return Info{Kind: KindValue, Name: name}, true
	}
	if _, ok := r.Imports[name]; ok {
		return Info{Kind: KindImport, Name: name}, true
	}
	if name == "==" || name == "!=" || name == "eq" || name == "ne" {
		return Info{Kind: KindBuiltin, Name: name}, true
	}
	if _, ok := builtins.Registry[name]; ok {
		return Info{Kind: KindBuiltin, Name: name}, true
	}

	d := diag.Diagnostic{Code: diag.E3001, Phase: diag.PhaseResolve, Span: sp, Message: "unresolved name " + quote(name)}
	if s := suggest(name, r.declaredNames()); s != "" {
		d.Suggestion = s
	}
	bag.Add(d)
	return Info{}, false
}

func quote(s string) string { return "\"" + s + "\"" }

func parseSymRefIndex(digits string) (int, bool) {
	if digits == "" {
		return 0, false
	}
	n := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
