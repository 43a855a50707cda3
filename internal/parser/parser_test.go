package parser

import (
	"strings"
	"testing"

	"github.com/ifj24/ifjc/internal/ast"
	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prolog = `const ifj = @import("ifj24.zig");`

func parseSource(t *testing.T, src string) (*ast.Program, *ifjerr.Channel) {
	t.Helper()
	ch := &ifjerr.Channel{}
	lx := lexer.New(strings.NewReader(src), ch)
	prog := Parse(lx, ch)
	return prog, ch
}

func Test_Parse_prolog(t *testing.T) {
	prog, ch := parseSource(t, prolog)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	assert.Equal(t, "ifj", prog.ImportAlias)
	assert.Empty(t, prog.Decls)
}

func Test_Parse_prologMustImportIfj24(t *testing.T) {
	_, ch := parseSource(t, `const ifj = @import("other.zig");`)
	assert.True(t, ch.Failed())
	assert.Equal(t, ifjerr.Syntax, ch.Err().Code())
}

func Test_Parse_minimalMain(t *testing.T) {
	src := prolog + `
pub fn main() void {
}
`
	prog, ch := parseSource(t, src)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	require.Len(t, prog.Decls, 1)

	fn, ok := prog.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, ast.Void, fn.ReturnType)
	assert.False(t, fn.Nullable)
	assert.Empty(t, fn.Params)
	assert.Empty(t, fn.Body.Stmts)
}

func Test_Parse_fnWithParamsAndReturn(t *testing.T) {
	src := prolog + `
pub fn add(a: i32, b: i32) i32 {
	return a + b;
}
`
	prog, ch := parseSource(t, src)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	fn := prog.Decls[0].(*ast.FnDecl)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, ast.Param{Name: "a", Type: ast.I32}, fn.Params[0])
	assert.Equal(t, ast.Param{Name: "b", Type: ast.I32}, fn.Params[1])
	assert.Equal(t, ast.I32, fn.ReturnType)

	require.Len(t, fn.Body.Stmts, 1)
	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	require.True(t, ok)
	bin, ok := ret.Expr.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Add, bin.Op)
}

func Test_Parse_nullableParamAndReturn(t *testing.T) {
	src := prolog + `
pub fn maybe(x: ?i32) ?i32 {
	return x;
}
`
	prog, ch := parseSource(t, src)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	fn := prog.Decls[0].(*ast.FnDecl)
	assert.True(t, fn.Params[0].Nullable)
	assert.True(t, fn.Nullable)
}

func Test_Parse_ifWithElementBindAndElse(t *testing.T) {
	src := prolog + `
pub fn main() void {
	var x: ?i32 = null;
	if (x) |v| {
		var y: i32 = v;
	} else {
	}
}
`
	prog, ch := parseSource(t, src)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	fn := prog.Decls[0].(*ast.FnDecl)
	ifStmt, ok := fn.Body.Stmts[1].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, "v", ifStmt.ElementBind)
	require.NotNil(t, ifStmt.Else)
}

func Test_Parse_builtinAndUserCalls(t *testing.T) {
	src := prolog + `
pub fn helper() void {
}

pub fn main() void {
	ifj.write("hi");
	helper();
}
`
	prog, ch := parseSource(t, src)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	main := prog.Decls[1].(*ast.FnDecl)

	write := main.Body.Stmts[0].(*ast.FnCall)
	assert.Equal(t, "ifj.write", write.Callee)
	assert.True(t, write.IsBuiltin)

	call := main.Body.Stmts[1].(*ast.FnCall)
	assert.Equal(t, "helper", call.Callee)
	assert.False(t, call.IsBuiltin)
}

func Test_Parse_expressionPrecedence(t *testing.T) {
	src := prolog + `
pub fn main() void {
	var x: i32 = 1 + 2 * 3;
}
`
	prog, ch := parseSource(t, src)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	fn := prog.Decls[0].(*ast.FnDecl)
	decl := fn.Body.Stmts[0].(*ast.VarDecl)

	top, ok := decl.Init.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Add, top.Op)

	_, leftIsLit := top.Left.(*ast.IntLit)
	assert.True(t, leftIsLit)

	right, ok := top.Right.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, right.Op)
}

func Test_Parse_missingSemicolonIsSyntaxError(t *testing.T) {
	src := prolog + `
pub fn main() void {
	var x: i32 = 1
}
`
	_, ch := parseSource(t, src)
	assert.True(t, ch.Failed())
	assert.Equal(t, ifjerr.Syntax, ch.Err().Code())
}
