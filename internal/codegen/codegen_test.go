package codegen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/lexer"
	"github.com/ifj24/ifjc/internal/parser"
	"github.com/ifj24/ifjc/internal/sema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prolog = `const ifj = @import("ifj24.zig");` + "\n"

func generate(t *testing.T, src string) (string, *ifjerr.Channel) {
	t.Helper()
	ch := &ifjerr.Channel{}
	lx := lexer.New(strings.NewReader(prolog+src), ch)
	prog := parser.Parse(lx, ch)
	require.False(t, ch.Failed(), "parse error: %v", ch.Err())

	global := sema.Analyze(prog, ch)
	require.False(t, ch.Failed(), "semantic error: %v", ch.Err())

	code := Generate(prog, global, ch, false)
	return code, ch
}

func Test_Generate_minimalMain(t *testing.T) {
	code, ch := generate(t, `
pub fn main() void {
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	assert.True(t, strings.HasPrefix(code, ".IFJcode24\n"))
	assert.Contains(t, code, "JUMP main")
	assert.Contains(t, code, "LABEL main")
	assert.Contains(t, code, "CREATEFRAME")
	assert.Contains(t, code, "PUSHFRAME")
	assert.Contains(t, code, "EXIT int@0")
}

func Test_Generate_literalIntPromotesAgainstF64(t *testing.T) {
	code, ch := generate(t, `
pub fn main() void {
	const x: f64 = 1 + 2.0;
	ifj.write(x);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	assert.Contains(t, code, "PUSHS int@1")
	assert.Contains(t, code, "INT2FLOATS")
	assert.Contains(t, code, "PUSHS float@")
	assert.Contains(t, code, "ADDS")
}

func Test_Generate_divisionIsRuntimeTypeDirected(t *testing.T) {
	code, ch := generate(t, `
pub fn main() void {
	const a: i32 = 4;
	const b: i32 = 2;
	const c: i32 = a / b;
	ifj.write(c);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	assert.Contains(t, code, "TYPE")
	assert.Contains(t, code, "DIVS")
	assert.Contains(t, code, "FLOAT2INTS")
	assert.Contains(t, code, "string@int")
	assert.Contains(t, code, "string@float")
	assert.NotContains(t, code, "IDIVS")
}

func Test_Generate_divisionTempsAreHoistedOutOfLoop(t *testing.T) {
	code, ch := generate(t, `
pub fn main() void {
	var i: i32 = 0;
	while (i < 10) {
		const c: i32 = i / 2;
		ifj.write(c);
		i = i + 1;
	}
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())

	start := strings.Index(code, "LABEL whilestart$")
	require.GreaterOrEqual(t, start, 0)
	body := code[start:]
	assert.Equal(t, 0, strings.Count(body, "DEFVAR LF@$divl_"),
		"division temporaries must be DEFVARed once at function entry, not inside the loop body")
}

func Test_Generate_relationalFoldsBoolToInt(t *testing.T) {
	code, ch := generate(t, `
pub fn main() void {
	const a: i32 = 1;
	const b: i32 = 2;
	const c: i32 = a < b;
	ifj.write(c);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	assert.Contains(t, code, "LTS")
	assert.Contains(t, code, "PUSHS bool@true")
	assert.Contains(t, code, "PUSHS int@0")
	assert.Contains(t, code, "PUSHS int@1")
}

func Test_Generate_lessEqualIsGreaterThenNots(t *testing.T) {
	code, ch := generate(t, `
pub fn main() void {
	const a: i32 = 1;
	const b: i32 = 2;
	const c: i32 = a <= b;
	ifj.write(c);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	idx := strings.Index(code, "GTS")
	require.GreaterOrEqual(t, idx, 0)
	rest := code[idx:]
	assert.True(t, strings.HasPrefix(rest, "GTS\nNOTS"), "expected GTS immediately followed by NOTS, got: %s", rest)
}

func Test_Generate_userCallUsesCreateFrameConvention(t *testing.T) {
	code, ch := generate(t, `
pub fn add(a: i32, b: i32) i32 {
	return a + b;
}
pub fn main() void {
	const x: i32 = add(1, 2);
	ifj.write(x);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())

	callSite := code[strings.Index(code, "LABEL main"):]
	assert.Contains(t, callSite, "CREATEFRAME")
	assert.Contains(t, callSite, "DEFVAR TF@0")
	assert.Contains(t, callSite, "DEFVAR TF@1")
	assert.Contains(t, callSite, "PUSHFRAME")
	assert.Contains(t, callSite, "CALL add")

	addBody := code[strings.Index(code, "LABEL add"):strings.Index(code, "LABEL main")]
	assert.NotContains(t, addBody, "DEFVAR LF@0")
	assert.Contains(t, addBody, "POPFRAME")
	assert.Contains(t, addBody, "RETURN")
}

func Test_Generate_discardedCallResultClearsStack(t *testing.T) {
	code, ch := generate(t, `
pub fn give() i32 {
	return 1;
}
pub fn main() void {
	_ = give();
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	assert.Contains(t, code, "CLEARS")
}

func Test_Generate_ifWithElementBindUnwrapsOnlyInThen(t *testing.T) {
	code, ch := generate(t, `
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
	assert.Contains(t, code, "PUSHS nil@nil")
	assert.Contains(t, code, "JUMPIFEQS else$")

	// the condition value must be popped into its hoisted frame slot
	// before anything is pushed back for the nil@nil comparison, so the
	// comparison's JUMPIFEQS (which pops both operands whether or not it
	// jumps) never strands the unwrapped value: the slot, not the stack,
	// is what carries it into the bound block.
	bindLine := regexp.MustCompile(`POPS (LF@v_\d+)\nPUSHS (LF@v_\d+)\nPUSHS nil@nil\nJUMPIFEQS else\$\d+`).FindStringSubmatch(code)
	require.NotNil(t, bindLine, "expected POPS/PUSHS/PUSHS nil@nil/JUMPIFEQS sequence on the element-bind slot, got:\n%s", code)
	assert.Equal(t, bindLine[1], bindLine[2])

	thenStart := strings.Index(code, "JUMPIFEQS else$")
	elseStart := strings.Index(code, "LABEL else$")
	require.Greater(t, elseStart, thenStart)
	thenBody := code[thenStart:elseStart]
	assert.Contains(t, thenBody, "PUSHS "+bindLine[1], "ifj.write(v) must read the bound value back out of its hoisted slot")
}

func Test_Generate_whileLoopHasStartAndEndLabels(t *testing.T) {
	code, ch := generate(t, `
pub fn main() void {
	var i: i32 = 0;
	while (i < 10) {
		i = i + 1;
	}
	ifj.write(i);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	assert.Contains(t, code, "LABEL whilestart$")
	assert.Contains(t, code, "LABEL whileend$")
	assert.Contains(t, code, "JUMP whilestart$")
}

func Test_Generate_loopLocalIsDefvaredOnceAtFunctionEntry(t *testing.T) {
	code, ch := generate(t, `
pub fn main() void {
	var i: i32 = 0;
	while (i < 10) {
		const doubled: i32 = i + i;
		ifj.write(doubled);
		i = i + 1;
	}
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())

	labelIdx := strings.Index(code, "LABEL main")
	require.GreaterOrEqual(t, labelIdx, 0)
	startIdx := strings.Index(code, "LABEL whilestart$")
	require.Greater(t, startIdx, labelIdx)

	preamble := code[labelIdx:startIdx]
	loopBody := code[startIdx:]

	assert.Regexp(t, `DEFVAR LF@doubled_\d+`, preamble, "const declared inside a loop must be DEFVARed once during function entry hoisting")
	assert.NotRegexp(t, `DEFVAR LF@doubled_\d+`, loopBody, "a loop body must never re-DEFVAR a local it declares on each iteration")
}

func Test_Generate_stringConcatUsesConcatInstruction(t *testing.T) {
	code, ch := generate(t, `
pub fn main() void {
	const s: []u8 = ifj.concat("a", "b");
	ifj.write(s);
}
`)
	require.False(t, ch.Failed(), "unexpected error: %v", ch.Err())
	assert.Contains(t, code, "CONCAT")
}

func Test_Generate_emitCommentsFlagAddsFunctionComments(t *testing.T) {
	ch := &ifjerr.Channel{}
	lx := lexer.New(strings.NewReader(prolog+`
pub fn main() void {
}
`), ch)
	prog := parser.Parse(lx, ch)
	require.False(t, ch.Failed())
	global := sema.Analyze(prog, ch)
	require.False(t, ch.Failed())

	code := Generate(prog, global, ch, true)
	assert.Contains(t, code, "# function main")
}
