package parser

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/lexer"
)

// µScript has no operator syntax (spec.md §1 Non-goals), so there is no
// precedence climbing: parseExpr is exactly the primary-expression parser.
func (p *Parser) parseExpr() ast.Expr {
	return p.parsePrimaryExpr()
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	start := p.cur().Span

	switch {
	case p.at(lexer.LBRACE):
		return p.parseBlock()

	case p.at(lexer.LPAREN):
		return p.parseParenOrSExpr()

	case p.at(lexer.LBRACKET) && isBracketFormKeyword(p.peek(1)):
		return p.parseBracketForm()

	case p.at(lexer.INT):
		return p.parseIntLit()
	case p.at(lexer.STRING):
		return p.parseStringLit()
	case p.at(lexer.BOOL):
		return p.parseBoolLit()

	case p.at(lexer.CARET):
		p.advance()
		cond := p.parseExpr()
		n := &ast.Require{Cond: cond}
		n.Sp = spanFrom(start, cond.Span())
		return n

	case p.at(lexer.USCORE):
		p.advance()
		cond := p.parseExpr()
		n := &ast.Ensure{Cond: cond}
		n.Sp = spanFrom(start, cond.Span())
		return n

	case p.atIdent("v") && p.peek(1).Kind == lexer.LPAREN:
		return p.parseLet()
	case p.atIdent("i") && p.peek(1).Kind == lexer.LPAREN:
		return p.parseIf()
	case p.atIdent("m") && p.peek(1).Kind == lexer.LPAREN:
		return p.parseMatch()
	case p.atIdent("c") && p.peek(1).Kind == lexer.LPAREN:
		return p.parseExplicitCall()
	case p.atIdent("l") && p.peek(1).Kind == lexer.LPAREN:
		return p.parseLambda()
	case p.atIdent("assert") && p.peek(1).Kind == lexer.LPAREN:
		return p.parseAssert()

	case p.atIdent("_r"):
		p.advance()
		n := &ast.ResultRef{}
		n.Sp = start
		return n

	case p.at(lexer.IDENT) || p.at(lexer.SYMREF):
		name, _ := p.parseNameRefString()
		if p.at(lexer.LPAREN) {
			p.advance()
			var args []ast.Expr
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				args = append(args, p.parseExpr())
				if p.at(lexer.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			end := p.cur().Span
			p.expect(lexer.RPAREN)
			n := &ast.NameApp{Name: name, Args: args}
			n.Sp = spanFrom(start, end)
			return n
		}
		n := &ast.NameRef{Name: name}
		n.Sp = start
		return n

	default:
		tok := p.cur()
		p.errf(diag.E2001, tok.Span, "expected an expression, got %q", tok.Literal)
		p.advance()
		n := &ast.UnitLit{}
		n.Sp = tok.Span
		return n
	}
}

// parseBlock: `{ e1; e2; …; en }`; value is the last expression. An empty
// block is treated as `()`.
func (p *Parser) parseBlock() ast.Expr {
	start := p.cur().Span
	p.advance() // {
	var exprs []ast.Expr
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		exprs = append(exprs, p.parseExpr())
		if p.at(lexer.SEMI) {
			p.advance()
		} else {
			break
		}
	}
	end := p.cur().Span
	p.expect(lexer.RBRACE)
	n := &ast.Block{Exprs: exprs}
	n.Sp = spanFrom(start, end)
	return n
}

// parseParenOrSExpr resolves the `()` / `(e)` / `(e e2 …)` ambiguity
// lexically, per spec.md §4.C: zero sub-expressions is unit, one is a
// parenthesization, two or more (space-separated, no commas) is a
// compressed s-expression call.
func (p *Parser) parseParenOrSExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // (
	if p.at(lexer.RPAREN) {
		end := p.cur().Span
		p.advance()
		n := &ast.UnitLit{}
		n.Sp = spanFrom(start, end)
		return n
	}
	first := p.parseExpr()
	if p.at(lexer.RPAREN) {
		end := p.cur().Span
		p.advance()
		n := &ast.Paren{Inner: first}
		n.Sp = spanFrom(start, end)
		return n
	}
	var args []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseExpr())
	}
	end := p.cur().Span
	p.expect(lexer.RPAREN)
	n := &ast.Call{Fn: first, Args: args, Compressed: true}
	n.Sp = spanFrom(start, end)
	return n
}

// parseLet: `v(name[:type]=value, body)`.
func (p *Parser) parseLet() ast.Expr {
	start := p.cur().Span
	p.advance() // v
	p.expect(lexer.LPAREN)
	nameTok, _ := p.expect(lexer.IDENT)
	var typ ast.Type
	if p.at(lexer.COLON) {
		p.advance()
		typ = p.parseType()
	}
	p.expect(lexer.EQUALS)
	value := p.parseExpr()
	p.expect(lexer.COMMA)
	body := p.parseExpr()
	end := p.cur().Span
	p.expect(lexer.RPAREN)
	n := &ast.Let{Name: nameTok.Literal, Type: typ, Value: value, Body: body}
	n.Sp = spanFrom(start, end)
	return n
}

// parseIf: `i(cond, then, else)`.
func (p *Parser) parseIf() ast.Expr {
	start := p.cur().Span
	p.advance() // i
	p.expect(lexer.LPAREN)
	cond := p.parseExpr()
	p.expect(lexer.COMMA)
	then := p.parseExpr()
	p.expect(lexer.COMMA)
	els := p.parseExpr()
	end := p.cur().Span
	p.expect(lexer.RPAREN)
	n := &ast.If{Cond: cond, Then: then, Else: els}
	n.Sp = spanFrom(start, end)
	return n
}

// parseMatch: `m(scrutinee){arms}`, arms `pattern=>expr;`.
func (p *Parser) parseMatch() ast.Expr {
	start := p.cur().Span
	p.advance() // m
	p.expect(lexer.LPAREN)
	scrutinee := p.parseExpr()
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	var arms []ast.MatchArm
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		pat := p.parsePattern()
		p.expect(lexer.FARROW)
		body := p.parseExpr()
		arms = append(arms, ast.MatchArm{Pattern: pat, Body: body})
		if p.at(lexer.SEMI) {
			p.advance()
		}
	}
	end := p.cur().Span
	p.expect(lexer.RBRACE)
	n := &ast.Match{Scrutinee: scrutinee, Arms: arms}
	n.Sp = spanFrom(start, end)
	return n
}

// parseExplicitCall: `c(fn,args…)`.
func (p *Parser) parseExplicitCall() ast.Expr {
	start := p.cur().Span
	p.advance() // c
	p.expect(lexer.LPAREN)
	fn := p.parseExpr()
	var args []ast.Expr
	for p.at(lexer.COMMA) {
		p.advance()
		args = append(args, p.parseExpr())
	}
	end := p.cur().Span
	p.expect(lexer.RPAREN)
	n := &ast.Call{Fn: fn, Args: args, Compressed: false}
	n.Sp = spanFrom(start, end)
	return n
}

// parseLambda: `l(params):Return!{effects}body`.
func (p *Parser) parseLambda() ast.Expr {
	start := p.cur().Span
	p.advance() // l
	p.expect(lexer.LPAREN)
	var params []ast.Param
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		nameTok, _ := p.expect(lexer.IDENT)
		var typ ast.Type
		if p.at(lexer.COLON) {
			p.advance()
			typ = p.parseType()
		}
		params = append(params, ast.Param{Name: nameTok.Literal, Type: typ})
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)

	var ret ast.Type
	if p.at(lexer.COLON) {
		p.advance()
		ret = p.parseType()
	}
	effs := ast.Empty
	if p.at(lexer.BANG) {
		effs = p.parseEffectSet()
	}
	body := p.parseExpr()
	n := &ast.Lambda{Params: params, Return: ret, Effects: effs, Body: body}
	n.Sp = spanFrom(start, body.Span())
	return n
}

func isBracketFormKeyword(t lexer.Token) bool {
	return t.Kind == lexer.IDENT && (t.Literal == "v" || t.Literal == "i" || t.Literal == "m" || t.Literal == "l")
}

// parseBracketForm parses the compressed-mode bracket variants of
// let/if/match/lambda: `[v name[:type]=value body]`, `[i cond then else]`,
// `[m scrutinee {arms}]`, `[l (params):Ret!{effs} body]`. These are
// surface-equivalent to their prefix-keyword forms (spec.md §3 "bracket
// variants of let/if/match/lambda"); the printer, not the parser, decides
// which spelling to emit (see DESIGN.md "compressed bracket-form syntax").
func (p *Parser) parseBracketForm() ast.Expr {
	start := p.cur().Span
	p.advance() // [
	kw := p.advance().Literal

	switch kw {
	case "v":
		nameTok, _ := p.expect(lexer.IDENT)
		var typ ast.Type
		if p.at(lexer.COLON) {
			p.advance()
			typ = p.parseType()
		}
		p.expect(lexer.EQUALS)
		value := p.parseExpr()
		body := p.parseExpr()
		end := p.cur().Span
		p.expect(lexer.RBRACKET)
		n := &ast.Let{Name: nameTok.Literal, Type: typ, Value: value, Body: body}
		n.Sp = spanFrom(start, end)
		return n

	case "i":
		cond := p.parseExpr()
		then := p.parseExpr()
		els := p.parseExpr()
		end := p.cur().Span
		p.expect(lexer.RBRACKET)
		n := &ast.If{Cond: cond, Then: then, Else: els}
		n.Sp = spanFrom(start, end)
		return n

	case "m":
		scrutinee := p.parseExpr()
		p.expect(lexer.LBRACE)
		var arms []ast.MatchArm
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			pat := p.parsePattern()
			p.expect(lexer.FARROW)
			body := p.parseExpr()
			arms = append(arms, ast.MatchArm{Pattern: pat, Body: body})
			if p.at(lexer.SEMI) {
				p.advance()
			}
		}
		p.expect(lexer.RBRACE)
		end := p.cur().Span
		p.expect(lexer.RBRACKET)
		n := &ast.Match{Scrutinee: scrutinee, Arms: arms}
		n.Sp = spanFrom(start, end)
		return n

	case "l":
		p.expect(lexer.LPAREN)
		var params []ast.Param
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			nameTok, _ := p.expect(lexer.IDENT)
			var typ ast.Type
			if p.at(lexer.COLON) {
				p.advance()
				typ = p.parseType()
			}
			params = append(params, ast.Param{Name: nameTok.Literal, Type: typ})
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RPAREN)
		var ret ast.Type
		if p.at(lexer.COLON) {
			p.advance()
			ret = p.parseType()
		}
		effs := ast.Empty
		if p.at(lexer.BANG) {
			effs = p.parseEffectSet()
		}
		body := p.parseExpr()
		end := p.cur().Span
		p.expect(lexer.RBRACKET)
		n := &ast.Lambda{Params: params, Return: ret, Effects: effs, Body: body}
		n.Sp = spanFrom(start, end)
		return n

	default:
		tok := p.cur()
		p.errf(diag.E2001, tok.Span, "unknown bracket form %q", kw)
		p.syncToDecl()
		n := &ast.UnitLit{}
		n.Sp = start
		return n
	}
}

// parseAssert: `assert(expr[, message])`.
func (p *Parser) parseAssert() ast.Expr {
	start := p.cur().Span
	p.advance() // assert
	p.expect(lexer.LPAREN)
	cond := p.parseExpr()
	var msg string
	hasMsg := false
	if p.at(lexer.COMMA) {
		p.advance()
		tok, ok := p.expect(lexer.STRING)
		if ok {
			msg, hasMsg = tok.Literal, true
		}
	}
	end := p.cur().Span
	p.expect(lexer.RPAREN)
	n := &ast.Assert{Cond: cond, Message: msg, HasMsg: hasMsg}
	n.Sp = spanFrom(start, end)
	return n
}
