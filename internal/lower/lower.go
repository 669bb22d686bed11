// Package lower compiles a resolved µScript module into a
// internal/bytecode.Program: AST-directed, strict left-to-right
// evaluation order, one function-table entry per top-level function and
// per lambda encountered (spec.md §4.G). No teacher analogue (AILANG
// tree-walks Core ANF directly); grounded on
// other_examples/4455036b_ozanh-ugo__compiler.go.go's single-pass
// Compiler for the emit/backpatch idiom.
package lower

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/builtins"
	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/resolve"
)

// builder holds module-wide lowering state: the string pool and the
// function table, shared across every per-function funcBuilder.
type builder struct {
	resolved *resolve.Resolved
	bag      *diag.Bag

	strings  []string
	strIndex map[string]int

	funcs     []bytecode.FuncEntry
	funcIndex map[string]int // top-level Value/FuncDecl name -> function table index
}

// Lower compiles m (already name-resolved) into a bytecode.Program.
// Reports a missing "main" entry function via diag.E3015; all other
// lowering failures are internal invariant violations (the checker has
// already rejected anything that would make lowering fail) and are never
// expected in practice.
func Lower(m *ast.Module, resolved *resolve.Resolved, bag *diag.Bag) *bytecode.Program {
	b := &builder{
		resolved:  resolved,
		bag:       bag,
		strIndex:  map[string]int{},
		funcIndex: map[string]int{},
	}

	// Pass 1: reserve a function-table slot for every top-level
	// declaration (functions and values alike, see DESIGN.md "Top-level
	// value lowering") in source order, so forward references resolve
	// regardless of declaration order (spec.md §4.D).
	type pending struct {
		name string
		decl ast.Decl
	}
	var work []pending
	for _, d := range m.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			b.funcIndex[n.Name] = len(b.funcs)
			arity := 0
			if lam, ok := n.Body.(*ast.Lambda); ok {
				arity = len(lam.Params)
			}
			b.funcs = append(b.funcs, bytecode.FuncEntry{Arity: uint8(arity)})
			work = append(work, pending{n.Name, n})
		case *ast.ValueDecl:
			b.funcIndex[n.Name] = len(b.funcs)
			b.funcs = append(b.funcs, bytecode.FuncEntry{})
			work = append(work, pending{n.Name, n})
		}
	}

	// Pass 2: compile each body into its reserved slot.
	for _, item := range work {
		switch n := item.decl.(type) {
		case *ast.FuncDecl:
			idx := b.funcIndex[n.Name]
			b.funcs[idx] = b.compileFunc(n)
		case *ast.ValueDecl:
			idx := b.funcIndex[n.Name]
			b.funcs[idx] = b.compileValue(n)
		}
	}

	entryIdx, ok := b.funcIndex["main"]
	if !ok {
		bag.Errorf(diag.E3015, diag.PhaseLower, m.Sp, "module has no entry function %q", "main")
		entryIdx = 0
	}

	return &bytecode.Program{Strings: b.strings, Funcs: b.funcs, EntryFn: uint32(entryIdx)}
}

// intern returns s's string pool index, adding it on first use. Dedup is
// a size optimization only; the pool is not required to be
// content-addressable (spec.md §3 "Bytecode module").
func (b *builder) intern(s string) int {
	if idx, ok := b.strIndex[s]; ok {
		return idx
	}
	idx := len(b.strings)
	b.strings = append(b.strings, s)
	b.strIndex[s] = idx
	return idx
}

// builtinID resolves a builtin or special prelude name to its
// CALL_BUILTIN dispatch id. `eq`/`ne` (and their `==`/`!=` spellings) are
// not in builtins.Registry (they are polymorphic over any non-function
// type, see internal/builtins' registration note) so they get two
// synthetic ids appended past the registry's range.
func builtinID(name string) (int, bool) {
	switch name {
	case "==", "eq":
		return builtins.Count(), true
	case "!=", "ne":
		return builtins.Count() + 1, true
	}
	if sig, ok := builtins.Registry[name]; ok {
		return sig.ID, true
	}
	return 0, false
}

// KnownBuiltinCount is the number of distinct CALL_BUILTIN ids a decoder
// must accept: the registry plus the two synthetic eq/ne ids.
func KnownBuiltinCount() int {
	return builtins.Count() + 2
}

func (b *builder) compileValue(d *ast.ValueDecl) bytecode.FuncEntry {
	fb := newFuncBuilder(b)
	fb.resultSlot = fb.newSlot()
	fb.lowerExpr(d.Body, map[string]int{})
	fb.emitOp(bytecode.Return)
	return bytecode.FuncEntry{Arity: 0, Captures: 0, Code: fb.code}
}

func (b *builder) compileFunc(d *ast.FuncDecl) bytecode.FuncEntry {
	fb := newFuncBuilder(b)
	locals := map[string]int{}
	if lam, ok := d.Body.(*ast.Lambda); ok {
		for _, p := range lam.Params {
			locals[p.Name] = fb.newSlot()
		}
	}
	fb.resultSlot = fb.newSlot()
	body := d.Body
	if lam, ok := d.Body.(*ast.Lambda); ok {
		body = lam.Body
	}
	fb.lowerExpr(body, locals)
	fb.emitOp(bytecode.Return)
	arity := 0
	if lam, ok := d.Body.(*ast.Lambda); ok {
		arity = len(lam.Params)
	}
	return bytecode.FuncEntry{Arity: uint8(arity), Captures: 0, Code: fb.code}
}
