package printer

import (
	"strconv"
	"strings"

	"github.com/sunholo/uscript/internal/ast"
)

func (p *printerState) printExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.UnitLit:
		p.sb.WriteString("()")

	case *ast.IntLit:
		p.sb.WriteString(strconv.FormatInt(n.Value, 10))

	case *ast.StringLit:
		p.sb.WriteString(quoteString(n.Value))

	case *ast.BoolLit:
		if n.Value {
			p.sb.WriteString("t")
		} else {
			p.sb.WriteString("f")
		}

	case *ast.Block:
		p.sb.WriteString("{")
		for i, sub := range n.Exprs {
			if i > 0 {
				p.sb.WriteString(";")
			}
			p.printExpr(sub)
		}
		p.sb.WriteString("}")

	case *ast.Paren:
		p.sb.WriteString("(")
		p.printExpr(n.Inner)
		p.sb.WriteString(")")

	case *ast.Let:
		if p.mode == Compressed {
			p.sb.WriteString("[v ")
			p.sb.WriteString(n.Name)
			if n.Type != nil {
				p.sb.WriteString(":")
				p.printType(n.Type)
			}
			p.sb.WriteString("=")
			p.printExpr(n.Value)
			p.sb.WriteString(" ")
			p.printExpr(n.Body)
			p.sb.WriteString("]")
			return
		}
		p.sb.WriteString("v(")
		p.sb.WriteString(n.Name)
		if n.Type != nil {
			p.sb.WriteString(":")
			p.printType(n.Type)
		}
		p.sb.WriteString("=")
		p.printExpr(n.Value)
		p.sb.WriteString(",")
		p.printExpr(n.Body)
		p.sb.WriteString(")")

	case *ast.If:
		if p.mode == Compressed {
			p.sb.WriteString("[i ")
			p.printExpr(n.Cond)
			p.sb.WriteString(" ")
			p.printExpr(n.Then)
			p.sb.WriteString(" ")
			p.printExpr(n.Else)
			p.sb.WriteString("]")
			return
		}
		p.sb.WriteString("i(")
		p.printExpr(n.Cond)
		p.sb.WriteString(",")
		p.printExpr(n.Then)
		p.sb.WriteString(",")
		p.printExpr(n.Else)
		p.sb.WriteString(")")

	case *ast.Match:
		if p.mode == Compressed {
			p.sb.WriteString("[m ")
			p.printExpr(n.Scrutinee)
			p.sb.WriteString(" {")
			p.printArms(n.Arms)
			p.sb.WriteString("}]")
			return
		}
		p.sb.WriteString("m(")
		p.printExpr(n.Scrutinee)
		p.sb.WriteString("){")
		p.printArms(n.Arms)
		p.sb.WriteString("}")

	case *ast.Call:
		if p.mode == Compressed && len(n.Args) >= 1 {
			p.sb.WriteString("(")
			p.printExpr(n.Fn)
			for _, a := range n.Args {
				p.sb.WriteString(" ")
				p.printExpr(a)
			}
			p.sb.WriteString(")")
			return
		}
		p.sb.WriteString("c(")
		p.printExpr(n.Fn)
		for _, a := range n.Args {
			p.sb.WriteString(",")
			p.printExpr(a)
		}
		p.sb.WriteString(")")

	case *ast.Lambda:
		if p.mode == Compressed {
			p.sb.WriteString("[l ")
			p.printLambdaHead(n)
			p.sb.WriteString(" ")
			p.printExpr(n.Body)
			p.sb.WriteString("]")
			return
		}
		p.sb.WriteString("l")
		p.printLambdaHead(n)
		p.sb.WriteString(" ")
		p.printExpr(n.Body)

	case *ast.Assert:
		p.sb.WriteString("assert(")
		p.printExpr(n.Cond)
		if n.HasMsg {
			p.sb.WriteString(",")
			p.sb.WriteString(quoteString(n.Message))
		}
		p.sb.WriteString(")")

	case *ast.Require:
		p.sb.WriteString("^")
		p.printExpr(n.Cond)

	case *ast.Ensure:
		p.sb.WriteString("_")
		p.printExpr(n.Cond)

	case *ast.ResultRef:
		p.sb.WriteString("_r")

	case *ast.NameRef:
		p.sb.WriteString(p.name(n.Name))

	case *ast.NameApp:
		p.sb.WriteString(p.name(n.Name))
		p.sb.WriteString("(")
		for i, a := range n.Args {
			if i > 0 {
				p.sb.WriteString(",")
			}
			p.printExpr(a)
		}
		p.sb.WriteString(")")
	}
}

func (p *printerState) printLambdaHead(n *ast.Lambda) {
	p.sb.WriteString("(")
	for i, param := range n.Params {
		if i > 0 {
			p.sb.WriteString(",")
		}
		p.sb.WriteString(param.Name)
		if param.Type != nil {
			p.sb.WriteString(":")
			p.printType(param.Type)
		}
	}
	p.sb.WriteString(")")
	if n.Return != nil {
		p.sb.WriteString(":")
		p.printType(n.Return)
	}
	p.printEffects(n.Effects)
}

func (p *printerState) printArms(arms []ast.MatchArm) {
	for i, arm := range arms {
		if i > 0 {
			p.sb.WriteString(";")
		}
		p.printPattern(arm.Pattern)
		p.sb.WriteString("=>")
		p.printExpr(arm.Body)
	}
}

func (p *printerState) printPattern(pt ast.Pattern) {
	switch n := pt.(type) {
	case *ast.PWildcard:
		p.sb.WriteString("_")
	case *ast.PLiteral:
		p.printExpr(n.Value)
	case *ast.PName:
		p.sb.WriteString(p.name(n.Name))
	case *ast.PCtor:
		p.sb.WriteString(p.name(n.Name))
		p.sb.WriteString("(")
		for i, sub := range n.Payload {
			if i > 0 {
				p.sb.WriteString(",")
			}
			p.printPattern(sub)
		}
		p.sb.WriteString(")")
	case *ast.PTuple:
		p.sb.WriteString("(")
		for i, sub := range n.Elems {
			if i > 0 {
				p.sb.WriteString(",")
			}
			p.printPattern(sub)
		}
		p.sb.WriteString(")")
	case *ast.PParen:
		p.sb.WriteString("(")
		p.printPattern(n.Inner)
		p.sb.WriteString(")")
	}
}

// quoteString renders a string literal's canonical escaped form (only the
// five escapes the lexer accepts, spec.md §4.B).
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
