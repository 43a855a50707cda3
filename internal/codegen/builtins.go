package codegen

import (
	"github.com/ifj24/ifjc/internal/ast"
	"github.com/ifj24/ifjc/internal/ifjerr"
)

// builtins maps each unqualified ifj. method to its static return type,
// used by inferType/callReturnsValue. The closed set matches
// internal/sema/builtins.go exactly; it is kept separate here because
// codegen only ever needs the return type, never the parameter shapes
// (internal/sema already proved every call site's arguments well-typed).
var builtins = map[string]ast.DataType{
	"write":     ast.Void,
	"readstr":   ast.Slice,
	"readi32":   ast.I32,
	"readf64":   ast.F64,
	"i2f":       ast.F64,
	"f2i":       ast.I32,
	"string":    ast.Slice,
	"length":    ast.I32,
	"concat":    ast.Slice,
	"substring": ast.Slice,
	"strcmp":    ast.I32,
	"ord":       ast.I32,
	"chr":       ast.Slice,
}

// evalToTemp evaluates n and pops its value into a fresh frame temp,
// returning the temp's name, for builtin sequences that need a variable
// operand rather than a bare stack value (IFJcode24's string instructions
// are var-form only; they have no *S stack-operand counterparts).
func (g *Generator) evalToTemp(n ast.Node, label string) string {
	g.genExpr(n)
	tmp := g.freshTemp(label)
	g.emit("DEFVAR %s", tmp)
	g.emit("POPS %s", tmp)
	return tmp
}

// genBuiltinCall emits one of the closed ifj. built-ins. Every case leaves
// exactly the builtin's declared return type on the stack (nothing, for
// write).
func (g *Generator) genBuiltinCall(call *ast.FnCall) {
	_, method, found := cutDot(call.Callee)
	if !found {
		method = call.Callee
	}

	switch method {
	case "write":
		tmp := g.evalToTemp(call.Args[0].Expr, "write")
		if g.ch.Failed() {
			return
		}
		g.emit("WRITE %s", tmp)

	case "readstr":
		tmp := g.freshTemp("readstr")
		g.emit("DEFVAR %s", tmp)
		g.emit("READ %s string", tmp)
		g.emit("PUSHS %s", tmp)

	case "readi32":
		tmp := g.freshTemp("readi32")
		g.emit("DEFVAR %s", tmp)
		g.emit("READ %s int", tmp)
		g.emit("PUSHS %s", tmp)

	case "readf64":
		tmp := g.freshTemp("readf64")
		g.emit("DEFVAR %s", tmp)
		g.emit("READ %s float", tmp)
		g.emit("PUSHS %s", tmp)

	case "i2f":
		g.genExpr(call.Args[0].Expr)
		if g.ch.Failed() {
			return
		}
		g.emit("INT2FLOATS")

	case "f2i":
		g.genExpr(call.Args[0].Expr)
		if g.ch.Failed() {
			return
		}
		g.emit("FLOAT2INTS")

	case "string":
		// the supplemented single-argument string-literal constructor: the
		// argument is already a []u8 value, so this is the identity.
		g.genExpr(call.Args[0].Expr)

	case "length":
		s := g.evalToTemp(call.Args[0].Expr, "len_s")
		out := g.freshTemp("len_r")
		g.emit("DEFVAR %s", out)
		g.emit("STRLEN %s %s", out, s)
		g.emit("PUSHS %s", out)

	case "concat":
		a := g.evalToTemp(call.Args[0].Expr, "cat_a")
		b := g.evalToTemp(call.Args[1].Expr, "cat_b")
		out := g.freshTemp("cat_r")
		g.emit("DEFVAR %s", out)
		g.emit("CONCAT %s %s %s", out, a, b)
		g.emit("PUSHS %s", out)

	case "substring":
		g.genSubstring(call)

	case "strcmp":
		g.genStrcmp(call)

	case "ord":
		g.genOrd(call)

	case "chr":
		idx := g.evalToTemp(call.Args[0].Expr, "chr_i")
		out := g.freshTemp("chr_r")
		g.emit("DEFVAR %s", out)
		g.emit("INT2CHAR %s %s", out, idx)
		g.emit("PUSHS %s", out)

	default:
		g.ch.Set(ifjerr.Newf(ifjerr.Internal, "codegen: unknown built-in %q reached the generator", call.Callee))
	}
}

// genSubstring implements ifj.substring(s, i, j): the [i, j) slice of s, or
// null if the range is out of bounds, via a GETCHAR loop appending one
// character at a time (there is no bulk-substring opcode in IFJcode24).
func (g *Generator) genSubstring(call *ast.FnCall) {
	s := g.evalToTemp(call.Args[0].Expr, "sub_s")
	i := g.evalToTemp(call.Args[1].Expr, "sub_i")
	j := g.evalToTemp(call.Args[2].Expr, "sub_j")

	ln := g.freshTemp("sub_len")
	g.emit("DEFVAR %s", ln)
	g.emit("STRLEN %s %s", ln, s)

	badLbl := g.newLabel("subbad")
	okLbl := g.newLabel("subok")
	endLbl := g.newLabel("subend")

	// bounds check: 0 <= i <= j <= len(s)
	g.emit("PUSHS %s", i)
	g.emit("PUSHS int@0")
	g.emit("LTS")
	g.emit("PUSHS bool@true")
	g.emit("JUMPIFEQS %s", badLbl)
	g.emit("PUSHS %s", j)
	g.emit("PUSHS %s", i)
	g.emit("LTS")
	g.emit("PUSHS bool@true")
	g.emit("JUMPIFEQS %s", badLbl)
	g.emit("PUSHS %s", ln)
	g.emit("PUSHS %s", j)
	g.emit("LTS")
	g.emit("PUSHS bool@true")
	g.emit("JUMPIFEQS %s", badLbl)
	g.emit("JUMP %s", okLbl)

	g.emit("LABEL %s", badLbl)
	g.emit("PUSHS nil@nil")
	g.emit("JUMP %s", endLbl)

	g.emit("LABEL %s", okLbl)
	out := g.freshTemp("sub_r")
	g.emit("DEFVAR %s", out)
	g.emit("MOVE %s string@", out)
	idx := g.freshTemp("sub_idx")
	g.emit("DEFVAR %s", idx)
	g.emit("MOVE %s %s", idx, i)

	ch := g.freshTemp("sub_ch")
	g.emit("DEFVAR %s", ch)

	loopLbl := g.newLabel("subloop")
	doneLbl := g.newLabel("subdone")
	g.emit("LABEL %s", loopLbl)
	g.emit("PUSHS %s", idx)
	g.emit("PUSHS %s", j)
	g.emit("LTS")
	g.emit("PUSHS bool@false")
	g.emit("JUMPIFEQS %s", doneLbl)

	g.emit("GETCHAR %s %s %s", ch, s, idx)
	g.emit("CONCAT %s %s %s", out, out, ch)
	g.emit("PUSHS %s", idx)
	g.emit("PUSHS int@1")
	g.emit("ADDS")
	g.emit("POPS %s", idx)
	g.emit("JUMP %s", loopLbl)

	g.emit("LABEL %s", doneLbl)
	g.emit("PUSHS %s", out)
	g.emit("LABEL %s", endLbl)
}

// genStrcmp implements ifj.strcmp(a, b): a GETCHAR loop comparing character
// ordinal values until a mismatch or the shorter string's end, per the
// original implementation's char-by-char strcmp (there is no STRCMP
// instruction in IFJcode24).
func (g *Generator) genStrcmp(call *ast.FnCall) {
	a := g.evalToTemp(call.Args[0].Expr, "cmp_a")
	b := g.evalToTemp(call.Args[1].Expr, "cmp_b")
	lenA := g.freshTemp("cmp_la")
	lenB := g.freshTemp("cmp_lb")
	g.emit("DEFVAR %s", lenA)
	g.emit("DEFVAR %s", lenB)
	g.emit("STRLEN %s %s", lenA, a)
	g.emit("STRLEN %s %s", lenB, b)

	idx := g.freshTemp("cmp_i")
	g.emit("DEFVAR %s", idx)
	g.emit("MOVE %s int@0", idx)
	result := g.freshTemp("cmp_r")
	g.emit("DEFVAR %s", result)
	g.emit("MOVE %s int@0", result)

	loopLbl := g.newLabel("cmploop")
	doneLbl := g.newLabel("cmpdone")
	mismatchLbl := g.newLabel("cmpmismatch")
	tailLbl := g.newLabel("cmptail")

	ca := g.freshTemp("cmp_ca")
	cb := g.freshTemp("cmp_cb")
	g.emit("DEFVAR %s", ca)
	g.emit("DEFVAR %s", cb)

	g.emit("LABEL %s", loopLbl)
	// stop scanning once either string runs out
	g.emit("PUSHS %s", idx)
	g.emit("PUSHS %s", lenA)
	g.emit("LTS")
	g.emit("PUSHS bool@false")
	g.emit("JUMPIFEQS %s", tailLbl)
	g.emit("PUSHS %s", idx)
	g.emit("PUSHS %s", lenB)
	g.emit("LTS")
	g.emit("PUSHS bool@false")
	g.emit("JUMPIFEQS %s", tailLbl)

	g.emit("GETCHAR %s %s %s", ca, a, idx)
	g.emit("GETCHAR %s %s %s", cb, b, idx)
	g.emit("PUSHS %s", ca)
	g.emit("PUSHS %s", cb)
	g.emit("JUMPIFNEQS %s", mismatchLbl)
	g.emit("PUSHS %s", idx)
	g.emit("PUSHS int@1")
	g.emit("ADDS")
	g.emit("POPS %s", idx)
	g.emit("JUMP %s", loopLbl)

	g.emit("LABEL %s", mismatchLbl)
	g.emit("PUSHS %s", ca)
	g.emit("PUSHS %s", cb)
	g.emit("LTS")
	g.emit("PUSHS bool@true")
	negLbl := g.newLabel("cmpneg")
	g.emit("JUMPIFEQS %s", negLbl)
	g.emit("MOVE %s int@1", result)
	g.emit("JUMP %s", doneLbl)
	g.emit("LABEL %s", negLbl)
	g.emit("MOVE %s int@-1", result)
	g.emit("JUMP %s", doneLbl)

	// equal up to the shorter string's length: shorter-or-equal-length
	// string sorts first (or they're equal).
	g.emit("LABEL %s", tailLbl)
	g.emit("PUSHS %s", lenA)
	g.emit("PUSHS %s", lenB)
	g.emit("JUMPIFEQS %s", doneLbl)
	g.emit("PUSHS %s", lenA)
	g.emit("PUSHS %s", lenB)
	g.emit("LTS")
	g.emit("PUSHS bool@true")
	shorterLbl := g.newLabel("cmpshorter")
	g.emit("JUMPIFEQS %s", shorterLbl)
	g.emit("MOVE %s int@1", result)
	g.emit("JUMP %s", doneLbl)
	g.emit("LABEL %s", shorterLbl)
	g.emit("MOVE %s int@-1", result)

	g.emit("LABEL %s", doneLbl)
	g.emit("PUSHS %s", result)
}

// genOrd implements ifj.ord(s, i): the ordinal value of the byte at index i,
// or 0 if i is out of range.
func (g *Generator) genOrd(call *ast.FnCall) {
	s := g.evalToTemp(call.Args[0].Expr, "ord_s")
	idx := g.evalToTemp(call.Args[1].Expr, "ord_i")
	ln := g.freshTemp("ord_len")
	g.emit("DEFVAR %s", ln)
	g.emit("STRLEN %s %s", ln, s)

	out := g.freshTemp("ord_r")
	g.emit("DEFVAR %s", out)
	g.emit("MOVE %s int@0", out)

	badLbl := g.newLabel("ordbad")
	endLbl := g.newLabel("ordend")
	g.emit("PUSHS %s", idx)
	g.emit("PUSHS int@0")
	g.emit("LTS")
	g.emit("PUSHS bool@true")
	g.emit("JUMPIFEQS %s", badLbl)
	g.emit("PUSHS %s", idx)
	g.emit("PUSHS %s", ln)
	g.emit("LTS")
	g.emit("PUSHS bool@false")
	g.emit("JUMPIFEQS %s", badLbl)

	g.emit("STRI2INT %s %s %s", out, s, idx)
	g.emit("JUMP %s", endLbl)
	g.emit("LABEL %s", badLbl)
	g.emit("LABEL %s", endLbl)
	g.emit("PUSHS %s", out)
}
