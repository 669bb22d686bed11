package parser

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/lexer"
)

// parseDecl dispatches on the declaration's leading token per spec.md §6:
// `:` import, `E` export, `T` type, `V` value, `F` function.
func (p *Parser) parseDecl() ast.Decl {
	switch {
	case p.at(lexer.COLON):
		return p.parseImport()
	case p.atIdent("E"):
		return p.parseExport()
	case p.atIdent("T"):
		return p.parseTypeDecl()
	case p.atIdent("V"):
		return p.parseValueDecl()
	case p.atIdent("F"):
		return p.parseFuncDecl()
	default:
		tok := p.cur()
		p.errf(diag.E2003, tok.Span, "expected a declaration (:, E, T, V, F), got %q", tok.Literal)
		p.syncToDecl()
		return nil
	}
}

// parseImport: `: alias = modid;`
func (p *Parser) parseImport() ast.Decl {
	start := p.cur().Span
	p.advance() // :
	aliasTok, _ := p.expect(lexer.IDENT)
	p.expect(lexer.EQUALS)
	modID := p.parseDottedName()
	end := p.cur().Span
	p.expect(lexer.SEMI)
	return &ast.ImportDecl{Alias: aliasTok.Literal, ModuleID: modID, Sp: spanFrom(start, end)}
}

// parseExport: `E[name,…];`
func (p *Parser) parseExport() ast.Decl {
	start := p.cur().Span
	p.advance() // E
	p.expect(lexer.LBRACKET)
	var names []string
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		tok, ok := p.expect(lexer.IDENT)
		if ok {
			names = append(names, tok.Literal)
		}
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	end := p.cur().Span
	p.expect(lexer.SEMI)
	return &ast.ExportDecl{Names: names, Sp: spanFrom(start, end)}
}

// parseTypeDecl: `T name[params]? = ctor(|ctor)*;`
func (p *Parser) parseTypeDecl() ast.Decl {
	start := p.cur().Span
	p.advance() // T
	nameTok, _ := p.expect(lexer.IDENT)

	var params []string
	if p.at(lexer.LBRACKET) {
		p.advance()
		for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
			tok, ok := p.expect(lexer.IDENT)
			if ok {
				params = append(params, tok.Literal)
			}
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RBRACKET)
	}

	p.expect(lexer.EQUALS)

	var ctors []ast.Ctor
	for {
		ctors = append(ctors, p.parseCtor())
		if p.at(lexer.PIPE) {
			p.advance()
			continue
		}
		break
	}
	end := p.cur().Span
	p.expect(lexer.SEMI)
	return &ast.TypeDecl{Name: nameTok.Literal, Params: params, Ctors: ctors, Sp: spanFrom(start, end)}
}

func (p *Parser) parseCtor() ast.Ctor {
	start := p.cur().Span
	nameTok, _ := p.expect(lexer.IDENT)
	var payload []ast.Type
	if p.at(lexer.LPAREN) {
		p.advance()
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			payload = append(payload, p.parseType())
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RPAREN)
	}
	end := p.cur().Span
	return ast.Ctor{Name: nameTok.Literal, Payload: payload, Sp: spanFrom(start, end)}
}

// parseValueDecl: `V name:type=expr;`
func (p *Parser) parseValueDecl() ast.Decl {
	start := p.cur().Span
	p.advance() // V
	nameTok, _ := p.expect(lexer.IDENT)
	p.expect(lexer.COLON)
	typ := p.parseType()
	p.expect(lexer.EQUALS)
	body := p.parseExpr()
	end := p.cur().Span
	p.expect(lexer.SEMI)
	return &ast.ValueDecl{Name: nameTok.Literal, Type: typ, Body: body, Sp: spanFrom(start, end)}
}

// parseFuncDecl: `F name[tparams]?:funtype=expr;`. See DESIGN.md's Open
// Question on parameter binding: value parameter names live in Body when
// Body is a Lambda.
func (p *Parser) parseFuncDecl() ast.Decl {
	start := p.cur().Span
	p.advance() // F
	nameTok, _ := p.expect(lexer.IDENT)

	var tparams []string
	if p.at(lexer.LBRACKET) {
		p.advance()
		for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
			tok, ok := p.expect(lexer.IDENT)
			if ok {
				tparams = append(tparams, tok.Literal)
			}
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RBRACKET)
	}

	p.expect(lexer.COLON)
	funcType := p.parseFuncType()
	p.expect(lexer.EQUALS)
	body := p.parseExpr()
	end := p.cur().Span
	p.expect(lexer.SEMI)
	return &ast.FuncDecl{Name: nameTok.Literal, TypeParams: tparams, Type: funcType, Body: body, Sp: spanFrom(start, end)}
}
