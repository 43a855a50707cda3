package compiler

import (
	"strings"
	"testing"

	"github.com/ifj24/ifjc/internal/ifjconfig"
	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prolog = `const ifj = @import("ifj24.zig");` + "\n"

func compile(t *testing.T, src string) Result {
	t.Helper()
	return Compile(strings.NewReader(prolog+src), ifjconfig.Default())
}

func Test_Compile_completeProgramEmitsCode(t *testing.T) {
	res := compile(t, `
pub fn fib(n: i32) i32 {
	if (n < 2) {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}

pub fn main() void {
	const result: i32 = fib(10);
	ifj.write(result);
}
`)
	require.Nil(t, res.Err, "unexpected error: %v", res.Err)
	assert.Contains(t, res.Code, "LABEL main")
	assert.Contains(t, res.Code, "LABEL fib")
	assert.Contains(t, res.Code, "CALL fib")
}

func Test_Compile_lexicalErrorStopsBeforeParsing(t *testing.T) {
	res := compile(t, `
pub fn main() void {
	const x: i32 = 01;
}
`)
	require.NotNil(t, res.Err)
	assert.Equal(t, ifjerr.Lexical, res.Err.Code())
	assert.Empty(t, res.Code)
}

func Test_Compile_syntaxErrorStopsBeforeSema(t *testing.T) {
	res := compile(t, `
pub fn main() void {
	const x: i32 = 1
}
`)
	require.NotNil(t, res.Err)
	assert.Equal(t, ifjerr.Syntax, res.Err.Code())
}

func Test_Compile_undefinedFunctionIsSemanticError(t *testing.T) {
	res := compile(t, `
pub fn main() void {
	doesNotExist();
}
`)
	require.NotNil(t, res.Err)
	assert.Equal(t, ifjerr.Undefined, res.Err.Code())
	assert.Empty(t, res.Code)
}

func Test_Compile_literalPromotionAgainstF64Succeeds(t *testing.T) {
	res := compile(t, `
pub fn main() void {
	const x: f64 = 1 + 2.0;
	ifj.write(x);
}
`)
	require.Nil(t, res.Err, "unexpected error: %v", res.Err)
	assert.Contains(t, res.Code, "INT2FLOATS")
}

func Test_Compile_identifierDoesNotPromoteAgainstF64(t *testing.T) {
	res := compile(t, `
pub fn main() void {
	const n: i32 = 1;
	const x: f64 = n + 2.0;
	ifj.write(x);
}
`)
	require.NotNil(t, res.Err)
	assert.Equal(t, ifjerr.TypeCompat, res.Err.Code())
	assert.Empty(t, res.Code)
}

func Test_Compile_emitCommentsConfigFlagReachesCodegen(t *testing.T) {
	cfg := ifjconfig.Default()
	cfg.EmitComments = true
	res := Compile(strings.NewReader(prolog+`
pub fn main() void {
}
`), cfg)
	require.Nil(t, res.Err, "unexpected error: %v", res.Err)
	assert.Contains(t, res.Code, "# function main")
}
