package parser

import (
	"strconv"

	"github.com/ifj24/ifjc/internal/ast"
	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/token"
)

// precedence implements spec §4.2's shunting-yard precedence table:
// high to low, * / (4), + - (3), relational (2), equality (1). All
// operators are left-associative, so "precedence ≥ incoming" (not
// strictly greater) is the correct reduction test for every entry here.
func precedence(k token.Kind) int {
	switch k {
	case token.OpStar, token.OpSlash:
		return 4
	case token.OpPlus, token.OpMinus:
		return 3
	case token.OpLess, token.OpLessEq, token.OpGreater, token.OpGreaterEq:
		return 2
	case token.OpEq, token.OpNotEq:
		return 1
	default:
		return -1
	}
}

func toBinOp(k token.Kind) ast.BinOp {
	switch k {
	case token.OpPlus:
		return ast.Add
	case token.OpMinus:
		return ast.Sub
	case token.OpStar:
		return ast.Mul
	case token.OpSlash:
		return ast.Div
	case token.OpLess:
		return ast.Lt
	case token.OpLessEq:
		return ast.Le
	case token.OpGreater:
		return ast.Gt
	case token.OpGreaterEq:
		return ast.Ge
	case token.OpEq:
		return ast.Eq
	case token.OpNotEq:
		return ast.Ne
	}
	panic("toBinOp: not an operator kind")
}

// opFrame is an entry on the expression sub-parser's operator stack. It is
// either a pending binary operator or a '(' sentinel marking the start of a
// parenthesized group, kept as a separate typed stack from the operand
// stack per spec §9's explicit recommendation against overloading a single
// untyped stack.
type opFrame struct {
	isParen bool
	op      ast.BinOp
}

// parseExpression runs the shunting-yard algorithm described in spec §4.2
// over the token stream until it reaches an end-of-expression boundary (a
// ',' ';' or unmatched ')' at paren depth 0, or any other token that cannot
// continue an expression). A mismatched-parenthesis or wrong leftover
// operand count is a SYNTAX error.
func (p *Parser) parseExpression() ast.Node {
	var operands []ast.Node
	var ops []opFrame
	parenDepth := 0

	reduceTop := func() bool {
		if len(ops) == 0 || ops[len(ops)-1].isParen {
			return false
		}
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if len(operands) < 2 {
			p.syntaxErr("malformed expression: not enough operands for operator %s", top.op)
			return false
		}
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		operands = append(operands, &ast.BinaryOp{Op: top.op, Left: left, Right: right})
		return true
	}

	expectOperand := true
	for !p.ch.Failed() {
		if expectOperand {
			if p.cur.Kind == token.LParen {
				ops = append(ops, opFrame{isParen: true})
				parenDepth++
				p.advance()
				continue
			}
			operand := p.parseOperandAtom()
			if p.ch.Failed() {
				return nil
			}
			operands = append(operands, operand)
			expectOperand = false
			continue
		}

		if p.cur.Kind == token.RParen && parenDepth > 0 {
			for {
				if len(ops) == 0 {
					p.syntaxErr("mismatched parentheses in expression")
					return nil
				}
				if ops[len(ops)-1].isParen {
					ops = ops[:len(ops)-1]
					parenDepth--
					break
				}
				if !reduceTop() {
					return nil
				}
			}
			p.advance()
			continue
		}

		if p.cur.IsOperator() {
			incoming := precedence(p.cur.Kind)
			for len(ops) > 0 && !ops[len(ops)-1].isParen && precedence(opKind(ops[len(ops)-1])) >= incoming {
				if !reduceTop() {
					return nil
				}
			}
			ops = append(ops, opFrame{op: toBinOp(p.cur.Kind)})
			p.advance()
			expectOperand = true
			continue
		}

		// any other token (',' ';' ')' at depth 0, '{', EOF, ...) ends the
		// expression without being consumed.
		break
	}

	if p.ch.Failed() {
		return nil
	}

	for len(ops) > 0 {
		if ops[len(ops)-1].isParen {
			p.syntaxErr("mismatched parentheses in expression")
			return nil
		}
		if !reduceTop() {
			return nil
		}
	}

	if len(operands) != 1 {
		p.syntaxErr("malformed expression")
		return nil
	}
	return operands[0]
}

// opKind recovers the token.Kind of a stacked operator purely to look its
// precedence back up; storing ast.BinOp on the frame (rather than the raw
// token.Kind) keeps the frame type decoupled from the lexical token set, at
// the cost of this small reverse mapping.
func opKind(f opFrame) token.Kind {
	switch f.op {
	case ast.Add:
		return token.OpPlus
	case ast.Sub:
		return token.OpMinus
	case ast.Mul:
		return token.OpStar
	case ast.Div:
		return token.OpSlash
	case ast.Lt:
		return token.OpLess
	case ast.Le:
		return token.OpLessEq
	case ast.Gt:
		return token.OpGreater
	case ast.Ge:
		return token.OpGreaterEq
	case ast.Eq:
		return token.OpEq
	case ast.Ne:
		return token.OpNotEq
	}
	panic("opKind: unreachable")
}

// parseOperandAtom parses one of: identifier, (user or built-in) call,
// int/float/string literal, or the null literal. Parenthesized
// sub-expressions are handled by the caller via the operator-stack
// sentinel, not here.
func (p *Parser) parseOperandAtom() ast.Node {
	switch p.cur.Kind {
	case token.IntLit:
		v, err := strconv.ParseInt(p.cur.Lexeme, 10, 32)
		if err != nil {
			p.ch.Set(ifjerr.Newf(ifjerr.Internal, "malformed integer literal %q reached the parser", p.cur.Lexeme))
			return nil
		}
		p.advance()
		return &ast.IntLit{Value: int32(v)}

	case token.FloatLit:
		v, err := strconv.ParseFloat(p.cur.Lexeme, 64)
		if err != nil {
			p.ch.Set(ifjerr.Newf(ifjerr.Internal, "malformed float literal %q reached the parser", p.cur.Lexeme))
			return nil
		}
		p.advance()
		return &ast.FloatLit{Value: v}

	case token.StringLit:
		v := p.cur.Lexeme
		p.advance()
		return &ast.StringLit{Value: v}

	case token.KwNull:
		p.advance()
		return &ast.NullLit{}

	case token.Identifier:
		name := p.cur.Lexeme
		p.advance()

		if p.cur.Kind == token.Dot {
			p.advance()
			method := p.expect(token.Identifier)
			if p.ch.Failed() {
				return nil
			}
			call := p.parseCallTail(name + "." + method.Lexeme)
			if call != nil {
				call.IsBuiltin = name == p.alias
			}
			return call
		}

		if p.cur.Kind == token.LParen {
			return p.parseCallTail(name)
		}

		return &ast.Identifier{Name: name}

	default:
		p.syntaxErr("expected an expression operand, got %s", p.cur.Kind)
		return nil
	}
}
