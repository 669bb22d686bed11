// Package printer implements µScript's canonical two-mode printer: a
// single AST walker that emits either fully-spelled-out readable text or
// the symbol-table-backed compressed surface (spec.md §4.F). Grounded on
// the teacher's internal/ast/print.go walker shape (switch-on-node-type
// recursive descent building a string), generalized from a JSON debug
// dump to an actual round-trippable surface-syntax emitter, since
// µScript's printer output is itself the language's canonical-form
// contract, not a test fixture.
package printer

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sunholo/uscript/internal/ast"
)

// Mode selects readable or compressed output.
type Mode int

const (
	Readable Mode = iota
	Compressed
)

// Print renders m in the requested mode. The result is itself a valid
// µScript module and is idempotent: Print(Parse(Print(m, mode)), mode) ==
// Print(m, mode) (spec.md §3 invariants 1-2).
func Print(m *ast.Module, mode Mode) string {
	p := &printerState{mode: mode, declSymbols: m.Symbols}
	if mode == Compressed {
		p.symbols = buildSymbolTable(m)
		for i, s := range p.symbols {
			if p.symIndex == nil {
				p.symIndex = map[string]int{}
			}
			p.symIndex[s] = i
		}
	}
	p.printModule(m)
	return p.sb.String()
}

type printerState struct {
	sb      strings.Builder
	mode    Mode
	symbols []string
	symIndex map[string]int
	// declSymbols is the input module's own `$[…]` table (nil if the
	// module carries none), used to expand any `#n` reference the parser
	// deferred to internal/resolve back into its literal spelling before
	// the printer does anything else with it. Without this, re-printing
	// an already-compressed module would count and emit the literal
	// string "#n" as if it were an identifier, breaking the idempotence
	// and round-trip invariants (spec.md §3 invariants 1-2).
	declSymbols []string
}

// canonicalize expands a raw `#n` symbol reference (see DESIGN.md's `#n`
// representation note) against declSymbols, the module's own `$[…]`
// table, returning it unchanged if it isn't a symbol reference or the
// index doesn't resolve (that case is already diagnosed at the resolve
// phase; the printer isn't the place to re-report it).
func canonicalize(raw string, declSymbols []string) string {
	if len(raw) == 0 || raw[0] != '#' {
		return raw
	}
	idx, err := strconv.Atoi(raw[1:])
	if err != nil || idx < 0 || idx >= len(declSymbols) {
		return raw
	}
	return declSymbols[idx]
}

// name renders an identifier occurrence: in compressed mode, any name
// present in the symbol table is replaced by its `#n` form (spec.md §4.F
// rule 2); declaration sites are never passed through name (callers print
// the literal spelling directly so a declared name is always readable,
// only *references* to it get compressed). n is canonicalized first so a
// `#n` reference carried over from an already-compressed input is always
// treated as its literal name, never as a fresh identifier in its own
// right.
func (p *printerState) name(n string) string {
	n = canonicalize(n, p.declSymbols)
	if p.mode == Compressed {
		if idx, ok := p.symIndex[n]; ok {
			return "#" + strconv.Itoa(idx)
		}
	}
	return n
}

func (p *printerState) printModule(m *ast.Module) {
	p.sb.WriteString("@")
	p.sb.WriteString(m.ModuleID)
	p.sb.WriteString("{")
	if p.mode == Compressed && len(p.symbols) > 0 {
		p.sb.WriteString("$[")
		p.sb.WriteString(strings.Join(p.symbols, ","))
		p.sb.WriteString("];")
	}
	for _, d := range m.Decls {
		p.printDecl(d)
	}
	p.sb.WriteString("}")
}

func (p *printerState) printDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.ImportDecl:
		p.sb.WriteString(":")
		p.sb.WriteString(n.Alias)
		p.sb.WriteString("=")
		p.sb.WriteString(n.ModuleID)
		p.sb.WriteString(";")

	case *ast.ExportDecl:
		p.sb.WriteString("E[")
		p.sb.WriteString(strings.Join(n.Names, ","))
		p.sb.WriteString("];")

	case *ast.TypeDecl:
		p.sb.WriteString("T ")
		p.sb.WriteString(n.Name)
		if len(n.Params) > 0 {
			p.sb.WriteString("[")
			p.sb.WriteString(strings.Join(n.Params, ","))
			p.sb.WriteString("]")
		}
		p.sb.WriteString("=")
		for i, c := range n.Ctors {
			if i > 0 {
				p.sb.WriteString("|")
			}
			p.sb.WriteString(c.Name)
			if len(c.Payload) > 0 {
				p.sb.WriteString("(")
				for j, t := range c.Payload {
					if j > 0 {
						p.sb.WriteString(",")
					}
					p.printType(t)
				}
				p.sb.WriteString(")")
			}
		}
		p.sb.WriteString(";")

	case *ast.ValueDecl:
		p.sb.WriteString("V ")
		p.sb.WriteString(n.Name)
		if n.Type != nil {
			p.sb.WriteString(":")
			p.printType(n.Type)
		}
		p.sb.WriteString("=")
		p.printExpr(n.Body)
		p.sb.WriteString(";")

	case *ast.FuncDecl:
		p.sb.WriteString("F ")
		p.sb.WriteString(n.Name)
		if len(n.TypeParams) > 0 {
			p.sb.WriteString("[")
			p.sb.WriteString(strings.Join(n.TypeParams, ","))
			p.sb.WriteString("]")
		}
		p.sb.WriteString(":")
		p.printType(n.Type)
		p.sb.WriteString("=")
		p.printExpr(n.Body)
		p.sb.WriteString(";")
	}
}

func (p *printerState) printType(t ast.Type) {
	switch n := t.(type) {
	case ast.TBool:
		p.sb.WriteString("bool")
	case ast.TString:
		p.sb.WriteString("string")
	case ast.TUnit:
		p.sb.WriteString("unit")
	case ast.TInt:
		p.sb.WriteString(n.String())
	case ast.TFloat:
		p.sb.WriteString(n.String())
	case ast.TOptional:
		p.sb.WriteString("?")
		p.printType(n.Elem)
	case ast.TArray:
		p.sb.WriteString("[")
		p.printType(n.Elem)
		p.sb.WriteString("]")
	case ast.TMap:
		p.sb.WriteString("{")
		p.printType(n.Key)
		p.sb.WriteString(":")
		p.printType(n.Val)
		p.sb.WriteString("}")
	case ast.TTuple:
		p.sb.WriteString("(")
		for i, e := range n.Elems {
			if i > 0 {
				p.sb.WriteString(",")
			}
			p.printType(e)
		}
		p.sb.WriteString(")")
	case ast.TNamed:
		p.sb.WriteString(p.name(n.Name))
		if len(n.Args) > 0 {
			p.sb.WriteString("[")
			for i, a := range n.Args {
				if i > 0 {
					p.sb.WriteString(",")
				}
				p.printType(a)
			}
			p.sb.WriteString("]")
		}
	case ast.TFunc:
		p.sb.WriteString("(")
		for i, param := range n.Params {
			if i > 0 {
				p.sb.WriteString(",")
			}
			p.printType(param)
		}
		p.sb.WriteString(")->")
		p.printType(n.Return)
		p.printEffects(n.Effects)
	case ast.ResultErrSugar:
		p.printType(n.Ok)
		p.sb.WriteString("!")
		p.printType(n.Err)
	}
}

func (p *printerState) printEffects(eff ast.EffectSet) {
	if p.mode == Compressed {
		p.sb.WriteString(eff.StringCompressed())
	} else {
		p.sb.WriteString(eff.String())
	}
}

// buildSymbolTable collects every identifier referenced (not declared)
// more than once across the module, in lexicographic order via a Unicode
// collator (spec.md §3 "Symbol table": "emitted in lexicographic order of
// names for determinism").
func buildSymbolTable(m *ast.Module) []string {
	counts := map[string]int{}
	bump := func(n string) { counts[canonicalize(n, m.Symbols)]++ }

	var walkExpr func(ast.Expr)
	var walkPattern func(ast.Pattern)

	walkExpr = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.Block:
			for _, s := range n.Exprs {
				walkExpr(s)
			}
		case *ast.Let:
			walkExpr(n.Value)
			walkExpr(n.Body)
		case *ast.If:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *ast.Match:
			walkExpr(n.Scrutinee)
			for _, arm := range n.Arms {
				walkPattern(arm.Pattern)
				walkExpr(arm.Body)
			}
		case *ast.Call:
			walkExpr(n.Fn)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.Lambda:
			walkExpr(n.Body)
		case *ast.Assert:
			walkExpr(n.Cond)
		case *ast.Require:
			walkExpr(n.Cond)
		case *ast.Ensure:
			walkExpr(n.Cond)
		case *ast.NameRef:
			bump(n.Name)
		case *ast.NameApp:
			bump(n.Name)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.Paren:
			walkExpr(n.Inner)
		}
	}

	walkPattern = func(pt ast.Pattern) {
		switch n := pt.(type) {
		case *ast.PName:
			bump(n.Name)
		case *ast.PCtor:
			bump(n.Name)
			for _, sub := range n.Payload {
				walkPattern(sub)
			}
		case *ast.PTuple:
			for _, sub := range n.Elems {
				walkPattern(sub)
			}
		case *ast.PParen:
			walkPattern(n.Inner)
		}
	}

	for _, d := range m.Decls {
		switch n := d.(type) {
		case *ast.ValueDecl:
			walkExpr(n.Body)
		case *ast.FuncDecl:
			walkExpr(n.Body)
		}
	}

	var repeated []string
	for name, n := range counts {
		if n > 1 {
			repeated = append(repeated, name)
		}
	}

	col := collate.New(language.Und)
	sort.Slice(repeated, func(i, j int) bool {
		return col.CompareString(repeated[i], repeated[j]) < 0
	})
	return repeated
}
