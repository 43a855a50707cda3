package sema

import "github.com/ifj24/ifjc/internal/ast"

// builtinSig describes one member of the closed `ifj.` built-in set named
// in spec.md's GLOSSARY. params gives each parameter's expected type;
// paramAny, when true, means the built-in accepts a single argument of any
// type (this is only true for `write`, whose multi-type acceptance the
// source's variadic declaration was really gesturing at — see spec §9's
// redesign note resolving it to "exactly one argument per call site").
type builtinSig struct {
	name             string
	paramAny         bool
	params           []ast.DataType
	ret              ast.DataType
	retNullable      bool
}

// builtins is the closed set of `ifj.`-prefixed functions, keyed by the
// unqualified method name (the part after the import alias's '.').
//
// ifj.string is not named in spec §4.3's built-in signature table, only in
// the GLOSSARY's closed set; its signature is recovered here per
// SPEC_FULL.md's supplemented-feature note: a single-argument string
// literal constructor, the semantic counterpart of a StringLit AST node.
var builtins = map[string]builtinSig{
	"write":     {name: "write", paramAny: true, params: []ast.DataType{ast.Unspecified}, ret: ast.Void},
	"readstr":   {name: "readstr", ret: ast.Slice, retNullable: true},
	"readi32":   {name: "readi32", ret: ast.I32, retNullable: true},
	"readf64":   {name: "readf64", ret: ast.F64, retNullable: true},
	"i2f":       {name: "i2f", params: []ast.DataType{ast.I32}, ret: ast.F64},
	"f2i":       {name: "f2i", params: []ast.DataType{ast.F64}, ret: ast.I32},
	"string":    {name: "string", params: []ast.DataType{ast.Slice}, ret: ast.Slice},
	"length":    {name: "length", params: []ast.DataType{ast.Slice}, ret: ast.I32},
	"concat":    {name: "concat", params: []ast.DataType{ast.Slice, ast.Slice}, ret: ast.Slice},
	"substring": {name: "substring", params: []ast.DataType{ast.Slice, ast.I32, ast.I32}, ret: ast.Slice, retNullable: true},
	"strcmp":    {name: "strcmp", params: []ast.DataType{ast.Slice, ast.Slice}, ret: ast.I32},
	"ord":       {name: "ord", params: []ast.DataType{ast.Slice, ast.I32}, ret: ast.I32},
	"chr":       {name: "chr", params: []ast.DataType{ast.I32}, ret: ast.Slice},
}
