package parser

import (
	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/lexer"
)

var primitiveNames = map[string]bool{
	"bool": true, "string": true, "unit": true,
	"i32": true, "i64": true, "u32": true, "u64": true,
	"f32": true, "f64": true,
}

// parseType parses any type expression, then checks for the trailing `!E`
// Result sugar (spec.md §3's `T!E` desugars to `Res[T,E]`).
func (p *Parser) parseType() ast.Type {
	base := p.parseTypePrimary()
	if p.at(lexer.BANG) && p.peek(1).Kind != lexer.LBRACE {
		sp := base.Span()
		p.advance() // !
		errT := p.parseTypePrimary()
		return ast.TNamed{Name: "Res", Args: []ast.Type{base, errT}}.WithSpan(spanFrom(sp, errT.Span()))
	}
	return base
}

func (p *Parser) parseTypePrimary() ast.Type {
	start := p.cur().Span

	switch {
	case p.at(lexer.QUESTION):
		p.advance()
		elem := p.parseType()
		return ast.TOptional{Elem: elem}.WithSpan(spanFrom(start, elem.Span()))

	case p.at(lexer.LBRACKET):
		p.advance()
		elem := p.parseType()
		end := p.cur().Span
		p.expect(lexer.RBRACKET)
		return ast.TArray{Elem: elem}.WithSpan(spanFrom(start, end))

	case p.at(lexer.LBRACE):
		p.advance()
		key := p.parseType()
		p.expect(lexer.COLON)
		val := p.parseType()
		end := p.cur().Span
		p.expect(lexer.RBRACE)
		return ast.TMap{Key: key, Val: val}.WithSpan(spanFrom(start, end))

	case p.at(lexer.LPAREN):
		p.advance()
		var elems []ast.Type
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			elems = append(elems, p.parseType())
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RPAREN)
		if p.at(lexer.ARROW) {
			p.advance()
			ret := p.parseType()
			effs := ast.Empty
			if p.at(lexer.BANG) {
				effs = p.parseEffectSet()
			}
			return ast.TFunc{Params: elems, Return: ret, Effects: effs}.WithSpan(spanFrom(start, ret.Span()))
		}
		if len(elems) == 1 {
			return elems[0]
		}
		end := p.cur().Span
		return ast.TTuple{Elems: elems}.WithSpan(spanFrom(start, end))

	case p.at(lexer.IDENT):
		name := p.advance().Literal
		if prim := primitiveType(name, start); prim != nil {
			return prim
		}
		var args []ast.Type
		end := start
		if p.at(lexer.LBRACKET) {
			p.advance()
			for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
				args = append(args, p.parseType())
				if p.at(lexer.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			end = p.cur().Span
			p.expect(lexer.RBRACKET)
		}
		return ast.TNamed{Name: name, Args: args}.WithSpan(spanFrom(start, end))

	default:
		tok := p.cur()
		p.errf(diag.E2004, tok.Span, "expected a type, got %q", tok.Literal)
		p.advance()
		return ast.TUnit{}.WithSpan(tok.Span)
	}
}

func primitiveType(name string, sp diag.Span) ast.Type {
	switch name {
	case "bool":
		t := ast.TBool{}
		return t.WithSpan(sp)
	case "string":
		t := ast.TString{}
		return t.WithSpan(sp)
	case "unit":
		t := ast.TUnit{}
		return t.WithSpan(sp)
	case "i32":
		return ast.Int32(sp)
	case "i64":
		return ast.Int64(sp)
	case "u32":
		return ast.UInt32(sp)
	case "u64":
		return ast.UInt64(sp)
	case "f32":
		return ast.Float32(sp)
	case "f64":
		return ast.Float64(sp)
	}
	return nil
}

// parseFuncType parses a top-level function declaration's type: the same
// `(...)->Return!{effects}` shape as parseTypePrimary's LPAREN branch, but
// required (a FuncDecl's type is never anything else) and returned
// unwrapped as ast.TFunc for FuncDecl.Type.
func (p *Parser) parseFuncType() ast.TFunc {
	t := p.parseType()
	if fn, ok := t.(ast.TFunc); ok {
		return fn
	}
	tok := p.cur()
	p.errf(diag.E2004, tok.Span, "expected a function type `(...)->Return`")
	return ast.TFunc{Return: ast.TUnit{}.WithSpan(tok.Span)}
}

// parseEffectSet parses `!{atom,…}` using either canonical names
// (io,fs,net,proc,rand,time,st) or compressed single-letter aliases.
func (p *Parser) parseEffectSet() ast.EffectSet {
	p.advance() // !
	p.expect(lexer.LBRACE)
	set := ast.Empty
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		tok, ok := p.expect(lexer.IDENT)
		if ok {
			if a, known := ast.AtomByName(tok.Literal); known {
				set = set.With(a)
			} else {
				p.errf(diag.E2006, tok.Span, "unknown effect atom %q", tok.Literal)
			}
		}
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return set
}
