package lexer

import (
	"strings"
	"testing"

	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/token"
	"github.com/stretchr/testify/assert"
)

func lexAll(t *testing.T, src string) ([]token.Token, *ifjerr.Channel) {
	t.Helper()
	ch := &ifjerr.Channel{}
	lx := New(strings.NewReader(src), ch)

	var toks []token.Token
	for {
		tok := lx.Next()
		if ch.Failed() {
			return toks, ch
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, ch
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func Test_Lex_tokenKindSequence(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    []token.Kind
		expectErr bool
	}{
		{name: "empty input", input: "", expect: []token.Kind{token.EOF}},
		{name: "zero literal", input: "0", expect: []token.Kind{token.IntLit, token.EOF}},
		{name: "leading zero is an error", input: "01", expectErr: true},
		{name: "simple integer", input: "42", expect: []token.Kind{token.IntLit, token.EOF}},
		{name: "float literal", input: "3.14", expect: []token.Kind{token.FloatLit, token.EOF}},
		{name: "float with exponent", input: "1.5e10", expect: []token.Kind{token.FloatLit, token.EOF}},
		{name: "int with exponent is still a float", input: "2e5", expect: []token.Kind{token.FloatLit, token.EOF}},
		{name: "malformed exponent", input: "2e", expectErr: true},
		{name: "string literal", input: `"hello"`, expect: []token.Kind{token.StringLit, token.EOF}},
		{name: "string with escape sequences", input: `"a\nb\tc"`, expect: []token.Kind{token.StringLit, token.EOF}},
		{name: "unterminated string", input: `"hello`, expectErr: true},
		{name: "newline in string is an error", input: "\"a\nb\"", expectErr: true},
		{name: "identifier", input: "myVar", expect: []token.Kind{token.Identifier, token.EOF}},
		{name: "keyword const", input: "const", expect: []token.Kind{token.KwConst, token.EOF}},
		{name: "underscore alone", input: "_", expect: []token.Kind{token.Identifier, token.EOF}},
		{name: "underscore prefixed identifier", input: "_foo", expect: []token.Kind{token.Identifier, token.EOF}},
		{name: "slice type marker", input: "[]u8", expect: []token.Kind{token.LBracket, token.KwU8, token.EOF}},
		{name: "bad bracket", input: "[x]", expectErr: true},
		{name: "nullable marker", input: "?i32", expect: []token.Kind{token.Question, token.KwI32, token.EOF}},
		{name: "relational operators", input: "< <= > >= == !=", expect: []token.Kind{
			token.OpLess, token.OpLessEq, token.OpGreater, token.OpGreaterEq, token.OpEq, token.OpNotEq, token.EOF,
		}},
		{name: "bang alone is an error", input: "!", expectErr: true},
		{name: "line comment is skipped", input: "1 // a comment\n2", expect: []token.Kind{
			token.IntLit, token.IntLit, token.EOF,
		}},
		{name: "division operator not confused with comment", input: "4 / 2", expect: []token.Kind{
			token.IntLit, token.OpSlash, token.IntLit, token.EOF,
		}},
		{name: "import marker", input: "@import", expect: []token.Kind{token.Import, token.EOF}},
		{name: "bad at-marker", input: "@export", expectErr: true},
		{name: "full prolog line", input: `const ifj = @import("ifj24.zig");`, expect: []token.Kind{
			token.KwConst, token.Identifier, token.OpAssign, token.Import,
			token.LParen, token.StringLit, token.RParen, token.Semicolon, token.EOF,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, ch := lexAll(t, tc.input)
			if tc.expectErr {
				assert.True(t, ch.Failed(), "expected a lexical error")
				return
			}
			assert.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
			assert.Equal(t, tc.expect, kinds(toks))
		})
	}
}

func Test_Lex_stringEscapeContent(t *testing.T) {
	toks, ch := lexAll(t, `"tab\there"`)
	assert.False(t, ch.Failed())
	assert.Equal(t, "tab\there", toks[0].Lexeme)
}

func Test_Lex_hexEscapeContent(t *testing.T) {
	toks, ch := lexAll(t, `"\x41\x42"`)
	assert.False(t, ch.Failed())
	assert.Equal(t, "AB", toks[0].Lexeme)
}

func Test_Lex_positionsAreOneIndexed(t *testing.T) {
	toks, ch := lexAll(t, "abc")
	assert.False(t, ch.Failed())
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Col)
}
