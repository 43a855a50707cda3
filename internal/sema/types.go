package sema

import (
	"math"

	"github.com/ifj24/ifjc/internal/ast"
)

// valType is the analyzer's internal notion of an expression's type: a
// DataType plus the orthogonal nullability bit, exactly as spec §3's data
// model separates them for declarations.
type valType struct {
	Base     ast.DataType
	Nullable bool
}

func nonNull(b ast.DataType) valType { return valType{Base: b} }

// isNullLiteralType reports whether t is the type produced by type_of on a
// bare `null` literal: Unspecified and nullable. It is never a type a
// variable can be declared with directly; it only ever appears as the type
// of an as-yet-untyped null expression awaiting a context to adopt.
func isNullLiteralType(t valType) bool {
	return t.Base == ast.Unspecified && t.Nullable
}

func isIntLiteral(n ast.Node) bool {
	_, ok := n.(*ast.IntLit)
	return ok
}

func isFloatLiteral(n ast.Node) bool {
	_, ok := n.(*ast.FloatLit)
	return ok
}

// combineNumeric implements the literal-promotion rule shared by
// arithmetic, relational, and (for mismatched numeric types) equality
// operators: same type is always fine; i32/f64 mismatch is fine only when
// the i32 side is a literal int token, in which case the result widens to
// f64.
func combineNumeric(lt, rt valType, ln, rn ast.Node) (ast.DataType, bool) {
	if !lt.Base.Numeric() || !rt.Base.Numeric() {
		return ast.Unspecified, false
	}
	if lt.Base == rt.Base {
		return lt.Base, true
	}
	if lt.Base == ast.I32 && rt.Base == ast.F64 && isIntLiteral(ln) {
		return ast.F64, true
	}
	if rt.Base == ast.I32 && lt.Base == ast.F64 && isIntLiteral(rn) {
		return ast.F64, true
	}
	return ast.Unspecified, false
}

// exactIntegerValue reports whether f is exactly representable as an i32,
// used by the f64-literal-to-i32 assignment conversion rule.
func exactIntegerValue(f float64) bool {
	if f != math.Trunc(f) {
		return false
	}
	return f >= math.MinInt32 && f <= math.MaxInt32
}

// assignable implements spec §4.3 "Assignment / declaration" step 5's
// compatibility rule, reused for variable initialization, plain
// assignment, return-value checking, and function-argument checking. lt is
// the target, rt the source. rn is the source AST node, needed to know
// whether it is a literal token eligible for promotion.
func assignable(lt valType, rt valType, rn ast.Node) bool {
	if isNullLiteralType(rt) {
		return lt.Nullable
	}
	if lt.Base == rt.Base {
		return true
	}
	if lt.Base == ast.F64 && rt.Base == ast.I32 && isIntLiteral(rn) {
		return true
	}
	if lt.Base == ast.I32 && rt.Base == ast.F64 && isFloatLiteral(rn) {
		if fl, ok := rn.(*ast.FloatLit); ok {
			return exactIntegerValue(fl.Value)
		}
	}
	return false
}
