package sema

import (
	"strings"
	"testing"

	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/lexer"
	"github.com/ifj24/ifjc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prolog = `const ifj = @import("ifj24.zig");` + "\n"

func analyze(t *testing.T, src string) *ifjerr.Channel {
	t.Helper()
	ch := &ifjerr.Channel{}
	lx := lexer.New(strings.NewReader(prolog+src), ch)
	prog := parser.Parse(lx, ch)
	if ch.Failed() {
		return ch
	}
	Analyze(prog, ch)
	return ch
}

func Test_Analyze_minimalMainIsValid(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
}

func Test_Analyze_missingMainIsUndefined(t *testing.T) {
	ch := analyze(t, `
pub fn helper() void {
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.Undefined, ch.Err().Code())
}

func Test_Analyze_mainWithParamsIsError(t *testing.T) {
	ch := analyze(t, `
pub fn main(x: i32) void {
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.Params, ch.Err().Code())
}

func Test_Analyze_undeclaredFunctionCallIsUndefined(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	missing();
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.Undefined, ch.Err().Code())
}

func Test_Analyze_uncalledFunctionIsOtherSemanticError(t *testing.T) {
	ch := analyze(t, `
pub fn helper() void {
}
pub fn main() void {
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.OtherSem, ch.Err().Code())
}

func Test_Analyze_unusedVariableIsError(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	var x: i32 = 1;
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.UnusedVar, ch.Err().Code())
}

func Test_Analyze_neverReassignedVarIsError(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	var x: i32 = 1;
	ifj.write(x);
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.UnusedVar, ch.Err().Code())
}

func Test_Analyze_reassignedVarIsFine(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	var x: i32 = 1;
	x = 2;
	ifj.write(x);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
}

func Test_Analyze_assignToConstIsRedefinition(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	const x: i32 = 1;
	x = 2;
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.Redefinition, ch.Err().Code())
}

func Test_Analyze_literalIntPromotesAgainstF64(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	const x: f64 = 1 + 2.0;
	ifj.write(x);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
}

func Test_Analyze_identifierDoesNotPromoteAgainstF64(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	const n: i32 = 1;
	const x: f64 = n + 2.0;
	ifj.write(x);
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.TypeCompat, ch.Err().Code())
}

func Test_Analyze_nullRequiresNullableTarget(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	var x: i32 = null;
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.TypeDeriv, ch.Err().Code())
}

func Test_Analyze_elementBindUnwrapsInThenNotElse(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	var x: ?i32 = null;
	if (x) |v| {
		ifj.write(v);
	} else {
	}
	x = 1;
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
}

func Test_Analyze_elementBindRequiresNullableCondition(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	var x: i32 = 1;
	if (x) |v| {
		ifj.write(v);
	}
	x = 2;
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.TypeCompat, ch.Err().Code())
}

func Test_Analyze_nonVoidFunctionMustReturnOnEveryPath(t *testing.T) {
	ch := analyze(t, `
pub fn give() i32 {
}
pub fn main() void {
	const x: i32 = give();
	ifj.write(x);
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.Return, ch.Err().Code())
}

func Test_Analyze_discardedReturnValueMustBeExplicit(t *testing.T) {
	ch := analyze(t, `
pub fn give() i32 {
	return 1;
}
pub fn main() void {
	give();
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.Params, ch.Err().Code())
}

func Test_Analyze_discardedReturnValueWithUnderscoreIsFine(t *testing.T) {
	ch := analyze(t, `
pub fn give() i32 {
	return 1;
}
pub fn main() void {
	_ = give();
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
}

func Test_Analyze_argumentArityMismatchIsParamsError(t *testing.T) {
	ch := analyze(t, `
pub fn add(a: i32, b: i32) i32 {
	return a + b;
}
pub fn main() void {
	const x: i32 = add(1);
	ifj.write(x);
}
`)
	require.True(t, ch.Failed())
	assert.Equal(t, ifjerr.Params, ch.Err().Code())
}

func Test_Analyze_nullComparisonAgainstNullableIsAllowed(t *testing.T) {
	ch := analyze(t, `
pub fn main() void {
	const x: ?i32 = null;
	if (x) |v| {
		ifj.write(v);
	}
	var y: i32 = 1;
	if (x == null) {
		y = 2;
	}
	ifj.write(y);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
}
