// Package parser implements the recursive-descent parser of spec §4.2: one
// token of lookahead, predictive over keywords/punctuation, with an
// embedded shunting-yard expression sub-parser (expr.go) for anything that
// needs operator precedence.
//
// Every parse helper that allocates part of the tree records a failure on
// the parser's *ifjerr.Channel and abandons what it had built, instead of
// the original compiler's practice of freeing
// partial allocations by hand on every failure path: in Go the garbage
// collector reclaims an abandoned partial AST once the parser gives up on
// it, so "free on failure" simply falls out of not keeping a reference
// around, matching the teacher's general preference for result-type error
// propagation over manual cleanup.
package parser

import (
	"github.com/ifj24/ifjc/internal/ast"
	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/lexer"
	"github.com/ifj24/ifjc/internal/token"
	"github.com/ifj24/ifjc/internal/util"
)

// topLevelAlternatives and typeAlternatives name the tokens accepted at
// each position, joined with util.MakeTextList into the same "a, b, and c"
// phrasing the engine uses for in-game item lists.
var (
	topLevelAlternatives = []string{"'const'", "'var'", "'pub fn'"}
	typeAlternatives     = []string{"'void'", "'i32'", "'f64'", "'[]u8'"}
)

// Parser holds one token of lookahead over a Lexer.
type Parser struct {
	lx      *lexer.Lexer
	cur     token.Token
	ch      *ifjerr.Channel
	alias   string // the import alias bound by the mandatory prolog, e.g. "ifj"
}

// Parse runs the full grammar (prolog + top-level declarations) over lx and
// returns the Program root, or nil if ch was set to a non-neutral value.
func Parse(lx *lexer.Lexer, ch *ifjerr.Channel) *ast.Program {
	p := &Parser{lx: lx, ch: ch}
	p.advance()
	if ch.Failed() {
		return nil
	}

	alias := p.parseProlog()
	if ch.Failed() {
		return nil
	}

	prog := &ast.Program{ImportAlias: alias}
	for p.cur.Kind != token.EOF && !ch.Failed() {
		decl := p.parseTopLevelDecl()
		if ch.Failed() {
			return nil
		}
		prog.Decls = append(prog.Decls, decl)
	}
	if ch.Failed() {
		return nil
	}
	return prog
}

func (p *Parser) advance() {
	p.cur = p.lx.Next()
}

func (p *Parser) syntaxErr(format string, a ...any) {
	p.ch.Set(ifjerr.Newf(ifjerr.Syntax, format, a...).At(p.cur.Line, p.cur.Col, ""))
}

// expect consumes the current token if it has Kind k, else raises SYNTAX and
// returns the zero Token. The caller must check p.ch.Failed() after calling
// expect before using the returned token.
func (p *Parser) expect(k token.Kind) token.Token {
	if p.ch.Failed() {
		return token.Token{}
	}
	if p.cur.Kind != k {
		p.syntaxErr("expected %s, got %s", k, p.cur.Kind)
		return token.Token{}
	}
	t := p.cur
	p.advance()
	return t
}

// parseProlog requires the fixed sequence equivalent to
// `const <name> = @import("ifj24.zig");` and returns <name>, the alias that
// built-in calls will be prefixed with.
func (p *Parser) parseProlog() string {
	p.expect(token.KwConst)
	name := p.expect(token.Identifier)
	p.expect(token.OpAssign)
	p.expect(token.Import)
	p.expect(token.LParen)
	lit := p.expect(token.StringLit)
	p.expect(token.RParen)
	p.expect(token.Semicolon)
	if p.ch.Failed() {
		return ""
	}
	if lit.Lexeme != "ifj24.zig" {
		p.ch.Set(ifjerr.Newf(ifjerr.Syntax, "prolog must import \"ifj24.zig\", got %q", lit.Lexeme))
		return ""
	}
	p.alias = name.Lexeme
	return name.Lexeme
}

func (p *Parser) parseTopLevelDecl() ast.Node {
	switch p.cur.Kind {
	case token.KwConst:
		return p.parseConstOrVar(true)
	case token.KwVar:
		return p.parseConstOrVar(false)
	case token.KwPub:
		return p.parseFnDecl()
	default:
		p.syntaxErr("expected a top-level declaration (%s), got %s", util.MakeTextList(topLevelAlternatives), p.cur.Kind)
		return nil
	}
}

// parseType parses a [?]TYPE production used by both parameter and return
// type positions: an optional leading '?' marks nullability, followed by
// one of void, i32, f64, u8, []u8.
func (p *Parser) parseType() (ast.DataType, bool) {
	nullable := false
	if p.cur.Kind == token.Question {
		nullable = true
		p.advance()
	}
	switch p.cur.Kind {
	case token.KwVoid:
		p.advance()
		return ast.Void, nullable
	case token.KwI32:
		p.advance()
		return ast.I32, nullable
	case token.KwF64:
		p.advance()
		return ast.F64, nullable
	case token.KwU8:
		p.advance()
		return ast.U8, nullable
	case token.LBracket:
		p.advance()
		p.expect(token.KwU8)
		return ast.Slice, nullable
	default:
		p.syntaxErr("expected a type (%s), got %s", util.MakeTextList(typeAlternatives), p.cur.Kind)
		return ast.Unspecified, false
	}
}

func (p *Parser) parseFnDecl() *ast.FnDecl {
	p.expect(token.KwPub)
	p.expect(token.KwFn)
	name := p.expect(token.Identifier)
	p.expect(token.LParen)

	fn := &ast.FnDecl{Name: name.Lexeme}

	for p.cur.Kind != token.RParen && !p.ch.Failed() {
		pname := p.expect(token.Identifier)
		p.expect(token.Colon)
		typ, nullable := p.parseType()
		fn.Params = append(fn.Params, ast.Param{Name: pname.Lexeme, Type: typ, Nullable: nullable})

		if p.cur.Kind == token.Comma {
			p.advance()
			// tolerate a trailing comma before ')'
			continue
		}
		break
	}
	p.expect(token.RParen)

	fn.ReturnType, fn.Nullable = p.parseType()
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseBlock() *ast.Block {
	p.expect(token.LBrace)
	blk := &ast.Block{}
	for p.cur.Kind != token.RBrace && !p.ch.Failed() {
		stmt := p.parseStatement()
		if p.ch.Failed() {
			return nil
		}
		blk.Stmts = append(blk.Stmts, stmt)
	}
	p.expect(token.RBrace)
	return blk
}

func (p *Parser) parseStatement() ast.Node {
	switch p.cur.Kind {
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwConst:
		return p.parseConstOrVar(true)
	case token.KwVar:
		return p.parseConstOrVar(false)
	case token.KwReturn:
		return p.parseReturn()
	case token.Identifier:
		return p.parseIdentifierLed()
	default:
		p.syntaxErr("unexpected token %s at start of statement", p.cur.Kind)
		return nil
	}
}

func (p *Parser) parseConstOrVar(isConst bool) ast.Node {
	if isConst {
		p.expect(token.KwConst)
	} else {
		p.expect(token.KwVar)
	}
	name := p.expect(token.Identifier)

	declType := ast.Unspecified
	nullable := false
	if p.cur.Kind == token.Colon {
		p.advance()
		declType, nullable = p.parseType()
	}
	p.expect(token.OpAssign)
	init := p.parseExpression()
	p.expect(token.Semicolon)
	if p.ch.Failed() {
		return nil
	}

	if isConst {
		return &ast.ConstDecl{Name: name.Lexeme, DeclaredType: declType, Nullable: nullable, Init: init}
	}
	return &ast.VarDecl{Name: name.Lexeme, DeclaredType: declType, Nullable: nullable, Init: init}
}

func (p *Parser) parseReturn() ast.Node {
	p.expect(token.KwReturn)
	ret := &ast.Return{}
	if p.cur.Kind != token.Semicolon {
		ret.Expr = p.parseExpression()
	}
	p.expect(token.Semicolon)
	return ret
}

// elementBind parses an optional `| name |` suffix used by if/while.
func (p *Parser) elementBind() string {
	if p.cur.Kind != token.Pipe {
		return ""
	}
	p.advance()
	name := p.expect(token.Identifier)
	p.expect(token.Pipe)
	return name.Lexeme
}

func (p *Parser) parseIf() ast.Node {
	p.expect(token.KwIf)
	p.expect(token.LParen)
	cond := p.parseExpression()
	p.expect(token.RParen)
	bind := p.elementBind()
	then := p.parseBlock()

	ifNode := &ast.If{Cond: cond, ElementBind: bind, Then: then}
	if p.cur.Kind == token.KwElse {
		p.advance()
		ifNode.Else = p.parseBlock()
	}
	return ifNode
}

func (p *Parser) parseWhile() ast.Node {
	p.expect(token.KwWhile)
	p.expect(token.LParen)
	cond := p.parseExpression()
	p.expect(token.RParen)
	bind := p.elementBind()
	body := p.parseBlock()
	return &ast.While{Cond: cond, ElementBind: bind, Body: body}
}

// parseIdentifierLed handles the two statement forms that start with a bare
// identifier: an assignment ("NAME = expr;") and a call ("NAME(args);" or
// "alias.NAME(args);").
func (p *Parser) parseIdentifierLed() ast.Node {
	name := p.expect(token.Identifier)
	if p.ch.Failed() {
		return nil
	}

	if p.cur.Kind == token.OpAssign {
		p.advance()
		expr := p.parseExpression()
		p.expect(token.Semicolon)
		return &ast.Assignment{Target: name.Lexeme, Expr: expr}
	}

	if p.cur.Kind == token.Dot {
		p.advance()
		method := p.expect(token.Identifier)
		call := p.parseCallTail(name.Lexeme + "." + method.Lexeme)
		if call != nil {
			call.IsBuiltin = name.Lexeme == p.alias
		}
		p.expect(token.Semicolon)
		return call
	}

	if p.cur.Kind == token.LParen {
		call := p.parseCallTail(name.Lexeme)
		p.expect(token.Semicolon)
		return call
	}

	p.syntaxErr("expected '=' or '(' after identifier %q", name.Lexeme)
	return nil
}

// parseCallTail parses the "(args)" suffix of a call whose callee name has
// already been consumed.
func (p *Parser) parseCallTail(callee string) *ast.FnCall {
	p.expect(token.LParen)
	call := &ast.FnCall{Callee: callee}
	for p.cur.Kind != token.RParen && !p.ch.Failed() {
		arg := p.parseExpression()
		call.Args = append(call.Args, &ast.Argument{Expr: arg})
		if p.cur.Kind == token.Comma {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen)
	if p.ch.Failed() {
		return nil
	}
	return call
}
