package parser

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/lexer"
)

// parsePattern parses one match-arm pattern: wildcard, literal, name,
// constructor application, tuple, or a parenthesized pattern.
func (p *Parser) parsePattern() ast.Pattern {
	start := p.cur().Span

	switch {
	case p.at(lexer.USCORE):
		p.advance()
		n := &ast.PWildcard{}
		n.Sp = start
		return n
	case p.at(lexer.INT):
		e := p.parseIntLit()
		n := &ast.PLiteral{Value: e}
		n.Sp = start
		return n
	case p.at(lexer.STRING):
		e := p.parseStringLit()
		n := &ast.PLiteral{Value: e}
		n.Sp = start
		return n
	case p.at(lexer.BOOL):
		e := p.parseBoolLit()
		n := &ast.PLiteral{Value: e}
		n.Sp = start
		return n
	case p.at(lexer.LPAREN):
		p.advance()
		var elems []ast.Pattern
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			elems = append(elems, p.parsePattern())
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		end := p.cur().Span
		p.expect(lexer.RPAREN)
		sp := spanFrom(start, end)
		if len(elems) == 1 {
			n := &ast.PParen{Inner: elems[0]}
			n.Sp = sp
			return n
		}
		n := &ast.PTuple{Elems: elems}
		n.Sp = sp
		return n
	case p.at(lexer.IDENT):
		name := p.advance().Literal
		if p.at(lexer.LPAREN) {
			p.advance()
			var payload []ast.Pattern
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				payload = append(payload, p.parsePattern())
				if p.at(lexer.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			end := p.cur().Span
			p.expect(lexer.RPAREN)
			n := &ast.PCtor{Name: name, Payload: payload}
			n.Sp = spanFrom(start, end)
			return n
		}
		n := &ast.PName{Name: name}
		n.Sp = start
		return n
	default:
		tok := p.cur()
		p.errf(diag.E2005, tok.Span, "expected a pattern, got %q", tok.Literal)
		p.advance()
		n := &ast.PWildcard{}
		n.Sp = tok.Span
		return n
	}
}
