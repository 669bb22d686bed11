package parser

import (
	"strconv"

	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/lexer"
)

func (p *Parser) parseIntLit() ast.Expr {
	tok := p.advance()
	v, _ := strconv.ParseInt(tok.Literal, 10, 64)
	n := &ast.IntLit{Value: v}
	n.Sp = tok.Span
	return n
}

func (p *Parser) parseStringLit() ast.Expr {
	tok := p.advance()
	n := &ast.StringLit{Value: tok.Literal}
	n.Sp = tok.Span
	return n
}

func (p *Parser) parseBoolLit() ast.Expr {
	tok := p.advance()
	n := &ast.BoolLit{Value: tok.Literal == "t"}
	n.Sp = tok.Span
	return n
}

// parseNameRefString consumes either a plain identifier or a `#n` symbol
// reference and returns the canonical name string (see DESIGN.md's `#n`
// representation note): a bare identifier, or `"#"` followed by the
// digits, which internal/resolve treats as a symbol-table index.
func (p *Parser) parseNameRefString() (string, bool) {
	switch p.cur().Kind {
	case lexer.IDENT:
		return p.advance().Literal, true
	case lexer.SYMREF:
		return "#" + p.advance().Literal, true
	default:
		tok := p.cur()
		p.errf(diag.E2001, tok.Span, "expected identifier or #n, got %q", tok.Literal)
		return "", false
	}
}
