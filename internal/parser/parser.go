// Package parser implements µScript's predictive recursive-descent parser.
// It is total over its token stream: malformed structure yields a
// diagnostic and the parser resynchronises at the next declaration or
// statement boundary (spec.md §4.C), the same resilience strategy the
// teacher's internal/parser package uses (see parser_error.go there).
package parser

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/lexer"
)

// Parser holds the full token buffer for a single file plus a cursor. An
// upfront Tokenize pass (rather than the teacher's pull-based
// current/peek-token pair) gives the parser unlimited lookahead, which it
// needs to disambiguate `()` / `(e)` / `(e e2 …)` and compressed bracket
// forms without backtracking.
type Parser struct {
	toks []lexer.Token
	pos  int
	file string
	bag  *diag.Bag
}

// New tokenizes input and returns a Parser ready to parse one module.
func New(input, file string, bag *diag.Bag) *Parser {
	return &Parser{
		toks: lexer.Tokenize(input, file, bag),
		file: file,
		bag:  bag,
	}
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k lexer.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) atIdent(lit string) bool {
	return p.cur().Kind == lexer.IDENT && p.cur().Literal == lit
}

func (p *Parser) errf(code string, span diag.Span, format string, args ...any) {
	p.bag.Errorf(code, diag.PhaseParse, span, format, args...)
}

// expect consumes a token of kind k or records E2001 and returns the
// current token unconsumed (caller is responsible for recovery).
func (p *Parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	tok := p.cur()
	p.errf(diag.E2001, tok.Span, "expected %s, got %s %q", k, tok.Kind, tok.Literal)
	return tok, false
}

// expectIdent consumes a keyword spelled as an identifier (µScript has no
// reserved-word token kind; keywords are just IDENT literals recognised by
// context, see internal/lexer/token.go).
func (p *Parser) expectIdentLit(lit string) bool {
	if p.atIdent(lit) {
		p.advance()
		return true
	}
	tok := p.cur()
	p.errf(diag.E2001, tok.Span, "expected %q, got %q", lit, tok.Literal)
	return false
}

// syncToDecl skips tokens until a declaration boundary: a `;` at depth 0,
// or the module-closing `}`. This bounds the damage of one malformed
// declaration to itself.
func (p *Parser) syncToDecl() {
	depth := 0
	for {
		switch p.cur().Kind {
		case lexer.EOF:
			return
		case lexer.LBRACE, lexer.LPAREN, lexer.LBRACKET:
			depth++
		case lexer.RBRACE:
			if depth == 0 {
				return
			}
			depth--
		case lexer.RPAREN, lexer.RBRACKET:
			if depth > 0 {
				depth--
			}
		case lexer.SEMI:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func spanFrom(start, end diag.Span) diag.Span {
	return diag.Span{
		File:        start.File,
		StartLine:   start.StartLine,
		StartColumn: start.StartColumn,
		StartOffset: start.StartOffset,
		EndLine:     end.EndLine,
		EndColumn:   end.EndColumn,
		EndOffset:   end.EndOffset,
	}
}

// Parse parses exactly one module: `@modid { [$[…];] decl* }`.
func Parse(input, file string, bag *diag.Bag) *ast.Module {
	p := New(input, file, bag)
	return p.parseModule()
}

func (p *Parser) parseModule() *ast.Module {
	start := p.cur().Span
	if _, ok := p.expect(lexer.AT); !ok {
		p.syncToDecl()
	}
	modID := p.parseDottedName()
	if _, ok := p.expect(lexer.LBRACE); !ok {
		p.syncToDecl()
	}

	mod := &ast.Module{ModuleID: modID}

	if p.at(lexer.DOLLAR) {
		mod.Symbols = p.parseSymbolTable()
	}

	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		decl := p.parseDecl()
		if decl != nil {
			mod.Decls = append(mod.Decls, decl)
		}
	}
	end := p.cur().Span
	p.expect(lexer.RBRACE)
	mod.Sp = spanFrom(start, end)
	return mod
}

// parseDottedName parses a dotted module id: `IDENT ("." IDENT)*`.
func (p *Parser) parseDottedName() string {
	if !p.at(lexer.IDENT) {
		tok := p.cur()
		p.errf(diag.E2003, tok.Span, "expected module id")
		return ""
	}
	name := p.advance().Literal
	for p.at(lexer.DOT) {
		p.advance()
		tok, ok := p.expect(lexer.IDENT)
		if !ok {
			break
		}
		name += "." + tok.Literal
	}
	return name
}

// parseSymbolTable parses `$[name,…];`.
func (p *Parser) parseSymbolTable() []string {
	p.advance() // $
	if _, ok := p.expect(lexer.LBRACKET); !ok {
		p.syncToDecl()
		return nil
	}
	var names []string
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		if p.at(lexer.IDENT) {
			names = append(names, p.advance().Literal)
		} else {
			tok := p.cur()
			p.errf(diag.E2007, tok.Span, "expected identifier in $[...] table")
			break
		}
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACKET)
	p.expect(lexer.SEMI)
	return names
}
