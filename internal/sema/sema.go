// Package sema implements the semantic analyzer of spec §4.3: name
// resolution, type checking, nullability propagation, and usage analysis
// over the layered symbol table of internal/symbols.
package sema

import (
	"strings"

	"github.com/ifj24/ifjc/internal/ast"
	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/symbols"
)

// Analyzer walks a Program, mutating the global symbol table and each
// function's own scope stack, and aborts (via ch) on the first violation.
type Analyzer struct {
	global *symbols.Table
	ch     *ifjerr.Channel
	alias  string
}

// Analyze runs the full semantic pass over prog. It mutates prog's
// FnDecl/VarDecl/ConstDecl nodes not at all — all derived state (symbols,
// flags) lives in the returned global table, which codegen.Generate reads
// for call return types and tests use to inspect post-analysis symbol
// state.
func Analyze(prog *ast.Program, ch *ifjerr.Channel) *symbols.Table {
	a := &Analyzer{global: symbols.NewTable(), ch: ch, alias: prog.ImportAlias}

	a.prePass(prog)
	if ch.Failed() {
		return a.global
	}

	mainSym := a.validateMain()
	if ch.Failed() {
		return a.global
	}

	a.analyzeFunction(mainSym)
	if ch.Failed() {
		return a.global
	}

	a.finalPass()
	return a.global
}

// prePass populates the global table with every top-level function
// declaration (name, signature, nullability, back-pointer). Duplicate
// function name is REDEFINITION. Top-level const and var declarations are
// not supported: the first one found is reported as a SYNTAX error and
// nothing is inserted for it.
func (a *Analyzer) prePass(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.FnDecl:
			if a.global.Lookup(n.Name) != nil {
				a.ch.Set(ifjerr.Newf(ifjerr.Redefinition, "function %q is already declared", n.Name))
				return
			}
			a.global.Insert(&symbols.FuncSymbol{
				Name:       n.Name,
				ReturnType: n.ReturnType,
				Nullable:   n.Nullable,
				FnDecl:     n,
				ScopeStack: symbols.NewScopeStack(),
			})
		case *ast.ConstDecl, *ast.VarDecl:
			a.ch.Set(ifjerr.New(ifjerr.Syntax, "top-level 'const' and 'var' declarations are not supported; only functions may be declared at global scope"))
			return
		}
	}
}

// validateMain checks the "entry function" rules of spec §4.3: a function
// named main must exist, be void, and take zero parameters.
func (a *Analyzer) validateMain() *symbols.FuncSymbol {
	sym := a.global.Lookup("main")
	if sym == nil {
		a.ch.Set(ifjerr.New(ifjerr.Undefined, "program does not define a 'main' function"))
		return nil
	}
	fn := sym.(*symbols.FuncSymbol)
	if fn.ReturnType != ast.Void || len(fn.FnDecl.Params) != 0 {
		a.ch.Set(ifjerr.New(ifjerr.Params, "'main' must take no parameters and return void"))
		return nil
	}
	fn.Used = true // main is always used by construction (it is the JUMP target)
	return fn
}

// analyzeFunction implements spec §4.3's "Function analysis" procedure. It
// is called once directly for main and otherwise lazily, the first time
// some call site needs fn's signature resolved, memoized via Initialized.
func (a *Analyzer) analyzeFunction(fn *symbols.FuncSymbol) {
	if fn.Initialized {
		return
	}
	fn.Initialized = true

	stack := fn.ScopeStack
	params := stack.Push()
	for _, p := range fn.FnDecl.Params {
		if params.Lookup(p.Name) != nil {
			a.ch.Set(ifjerr.Newf(ifjerr.Redefinition, "parameter %q is declared more than once", p.Name))
			return
		}
		params.Insert(&symbols.VarSymbol{Name: p.Name, Type: p.Type, Constant: true, Nullable: p.Nullable, Used: true})
	}
	if a.ch.Failed() {
		return
	}

	a.analyzeBlockWithExtras(fn.FnDecl.Body, stack, fn, nil)
	if a.ch.Failed() {
		return
	}

	stack.Pop()

	if fn.ReturnType != ast.Void && !fn.Nullable && !fn.HasReturn && fn.Name != "main" {
		a.ch.Set(ifjerr.Newf(ifjerr.Return, "function %q must return a value of type %s on every path", fn.Name, fn.ReturnType))
	}
}

// analyzeBlockWithExtras pushes a fresh frame (pre-populated with extra,
// used for if/while element-bind variables), analyzes every statement, and
// before popping scans the frame for unused-variable violations, per spec
// §4.3's "Block" paragraph.
func (a *Analyzer) analyzeBlockWithExtras(blk *ast.Block, stack *symbols.ScopeStack, fn *symbols.FuncSymbol, extra []*symbols.VarSymbol) {
	frame := stack.Push()
	for _, v := range extra {
		frame.Insert(v)
	}

	for _, s := range blk.Stmts {
		a.analyzeStatement(s, stack, fn)
		if a.ch.Failed() {
			return
		}
	}

	var unused *ifjerr.Error
	frame.Each(func(sym symbols.Symbol) {
		if unused != nil {
			return
		}
		v, ok := sym.(*symbols.VarSymbol)
		if !ok {
			return
		}
		if !v.Used {
			unused = ifjerr.Newf(ifjerr.UnusedVar, "variable %q is never used", v.Name)
			return
		}
		if !v.Constant && !v.Redefined {
			unused = ifjerr.Newf(ifjerr.UnusedVar, "variable %q is never reassigned; declare it 'const' or assign to it", v.Name)
		}
	})
	if unused != nil {
		a.ch.Set(unused)
		return
	}

	stack.Pop()
}

func (a *Analyzer) analyzeStatement(n ast.Node, stack *symbols.ScopeStack, fn *symbols.FuncSymbol) {
	switch s := n.(type) {
	case *ast.ConstDecl:
		a.processDeclaration(stack, s.Name, s.DeclaredType, s.Nullable, s.Init, true)
	case *ast.VarDecl:
		a.processDeclaration(stack, s.Name, s.DeclaredType, s.Nullable, s.Init, false)
	case *ast.Assignment:
		a.analyzeAssignment(s, stack)
	case *ast.If:
		a.analyzeIf(s, stack, fn)
	case *ast.While:
		a.analyzeWhile(s, stack, fn)
	case *ast.Return:
		a.analyzeReturn(s, fn, stack)
	case *ast.FnCall:
		rt := a.evalCall(s, stack)
		if a.ch.Failed() {
			return
		}
		if rt.Base != ast.Void {
			a.ch.Set(ifjerr.Newf(ifjerr.Params, "return value of %q must be used or explicitly discarded with '_'", s.Callee))
		}
	default:
		a.ch.Set(ifjerr.Newf(ifjerr.Internal, "unexpected statement node %T", n))
	}
}

func (a *Analyzer) processDeclaration(stack *symbols.ScopeStack, name string, declaredType ast.DataType, nullable bool, init ast.Node, isConst bool) {
	frame := stack.Top()
	if frame.Lookup(name) != nil {
		a.ch.Set(ifjerr.Newf(ifjerr.Redefinition, "%q is already declared in this scope", name))
		return
	}

	isNull := isNullLit(init)
	if isNull && !nullable {
		a.ch.Set(ifjerr.Newf(ifjerr.TypeDeriv, "cannot assign 'null' to non-nullable %q", name))
		return
	}

	initType := a.typeOf(init, stack)
	if a.ch.Failed() {
		return
	}

	if declaredType == ast.Unspecified {
		if isNullLiteralType(initType) {
			a.ch.Set(ifjerr.Newf(ifjerr.TypeDeriv, "cannot infer a type for %q from 'null'", name))
			return
		}
		declaredType = initType.Base
	} else if !assignable(nonNullable(declaredType, nullable), initType, init) {
		a.ch.Set(ifjerr.Newf(ifjerr.TypeCompat, "cannot initialize %q of type %s with a value of type %s", name, declaredType, initType.Base))
		return
	}

	frame.Insert(&symbols.VarSymbol{
		Name:        name,
		Type:        declaredType,
		Constant:    isConst,
		Nullable:    nullable,
		LiteralInit: isIntLiteral(init) || isFloatLiteral(init),
	})
}

func nonNullable(b ast.DataType, nullable bool) valType {
	return valType{Base: b, Nullable: nullable}
}

func isNullLit(n ast.Node) bool {
	_, ok := n.(*ast.NullLit)
	return ok
}

func (a *Analyzer) analyzeAssignment(s *ast.Assignment, stack *symbols.ScopeStack) {
	if s.Target == "_" {
		a.typeOf(s.Expr, stack)
		return
	}

	sym, ok := stack.Resolve(s.Target, a.global)
	if !ok {
		a.ch.Set(ifjerr.Newf(ifjerr.Undefined, "%q is not declared", s.Target))
		return
	}
	v, ok := sym.(*symbols.VarSymbol)
	if !ok {
		a.ch.Set(ifjerr.Newf(ifjerr.Redefinition, "%q is a function and cannot be assigned to", s.Target))
		return
	}
	if v.Constant {
		a.ch.Set(ifjerr.Newf(ifjerr.Redefinition, "cannot assign to constant %q", s.Target))
		return
	}

	rhs := a.typeOf(s.Expr, stack)
	if a.ch.Failed() {
		return
	}
	if !assignable(valType{Base: v.Type, Nullable: v.Nullable}, rhs, s.Expr) {
		a.ch.Set(ifjerr.Newf(ifjerr.TypeCompat, "cannot assign a value of type %s to %q of type %s", rhs.Base, s.Target, v.Type))
		return
	}

	v.Used = true
	v.Redefined = true
	v.LiteralInit = isIntLiteral(s.Expr) || isFloatLiteral(s.Expr)
}

func (a *Analyzer) analyzeIf(s *ast.If, stack *symbols.ScopeStack, fn *symbols.FuncSymbol) {
	condType := a.typeOf(s.Cond, stack)
	if a.ch.Failed() {
		return
	}

	var bound []*symbols.VarSymbol
	if s.ElementBind == "" {
		if condType.Base != ast.I32 || condType.Nullable {
			a.ch.Set(ifjerr.New(ifjerr.TypeCompat, "if condition must be a non-nullable i32"))
			return
		}
	} else {
		if !condType.Nullable {
			a.ch.Set(ifjerr.Newf(ifjerr.TypeCompat, "'| %s |' requires a nullable condition", s.ElementBind))
			return
		}
		bound = []*symbols.VarSymbol{{Name: s.ElementBind, Type: condType.Base, Constant: true}}
	}

	a.analyzeBlockWithExtras(s.Then, stack, fn, bound)
	if a.ch.Failed() {
		return
	}
	if s.Else != nil {
		a.analyzeBlockWithExtras(s.Else, stack, fn, nil)
	}
}

func (a *Analyzer) analyzeWhile(s *ast.While, stack *symbols.ScopeStack, fn *symbols.FuncSymbol) {
	condType := a.typeOf(s.Cond, stack)
	if a.ch.Failed() {
		return
	}

	var bound []*symbols.VarSymbol
	if s.ElementBind == "" {
		if condType.Base != ast.I32 || condType.Nullable {
			a.ch.Set(ifjerr.New(ifjerr.TypeCompat, "while condition must be a non-nullable i32"))
			return
		}
	} else {
		if !condType.Nullable {
			a.ch.Set(ifjerr.Newf(ifjerr.TypeCompat, "'| %s |' requires a nullable condition", s.ElementBind))
			return
		}
		bound = []*symbols.VarSymbol{{Name: s.ElementBind, Type: condType.Base, Constant: true}}
	}

	a.analyzeBlockWithExtras(s.Body, stack, fn, bound)
}

func (a *Analyzer) analyzeReturn(s *ast.Return, fn *symbols.FuncSymbol, stack *symbols.ScopeStack) {
	if fn == nil {
		a.ch.Set(ifjerr.New(ifjerr.Return, "'return' used outside of a function"))
		return
	}

	if fn.ReturnType == ast.Void {
		if s.Expr != nil {
			a.ch.Set(ifjerr.Newf(ifjerr.Return, "void function %q must not return a value", fn.Name))
			return
		}
		fn.HasReturn = true
		return
	}

	if s.Expr == nil {
		if !fn.Nullable {
			a.ch.Set(ifjerr.Newf(ifjerr.Return, "function %q must return a value of type %s", fn.Name, fn.ReturnType))
			return
		}
		fn.HasReturn = true
		return
	}

	retType := a.typeOf(s.Expr, stack)
	if a.ch.Failed() {
		return
	}
	if !assignable(valType{Base: fn.ReturnType, Nullable: fn.Nullable}, retType, s.Expr) {
		a.ch.Set(ifjerr.Newf(ifjerr.Return, "function %q returns %s but this expression is %s", fn.Name, fn.ReturnType, retType.Base))
		return
	}
	fn.HasReturn = true
}

// typeOf is the expression-typing function of spec §4.3: a recursive, pure
// (side-effect-free on the AST; it does mark symbols used) function from
// expression node to its type.
func (a *Analyzer) typeOf(n ast.Node, stack *symbols.ScopeStack) valType {
	if a.ch.Failed() {
		return valType{}
	}
	switch e := n.(type) {
	case *ast.IntLit:
		return nonNull(ast.I32)
	case *ast.FloatLit:
		return nonNull(ast.F64)
	case *ast.StringLit:
		return nonNull(ast.Slice)
	case *ast.NullLit:
		return valType{Base: ast.Unspecified, Nullable: true}

	case *ast.Identifier:
		sym, ok := stack.Resolve(e.Name, a.global)
		if !ok {
			a.ch.Set(ifjerr.Newf(ifjerr.Undefined, "%q is not declared", e.Name))
			return valType{}
		}
		v, ok := sym.(*symbols.VarSymbol)
		if !ok {
			a.ch.Set(ifjerr.Newf(ifjerr.Undefined, "%q is a function, not a value", e.Name))
			return valType{}
		}
		v.Used = true
		return valType{Base: v.Type, Nullable: v.Nullable}

	case *ast.FnCall:
		return a.evalCall(e, stack)

	case *ast.BinaryOp:
		return a.typeOfBinary(e, stack)

	default:
		a.ch.Set(ifjerr.Newf(ifjerr.Internal, "unexpected expression node %T", n))
		return valType{}
	}
}

func (a *Analyzer) typeOfBinary(e *ast.BinaryOp, stack *symbols.ScopeStack) valType {
	lt := a.typeOf(e.Left, stack)
	if a.ch.Failed() {
		return valType{}
	}
	rt := a.typeOf(e.Right, stack)
	if a.ch.Failed() {
		return valType{}
	}

	switch e.Op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div:
		base, ok := combineNumeric(lt, rt, e.Left, e.Right)
		if !ok {
			a.ch.Set(ifjerr.Newf(ifjerr.TypeCompat, "operator %s requires two operands of the same numeric type", e.Op))
			return valType{}
		}
		return nonNull(base)

	case ast.Lt, ast.Le, ast.Gt, ast.Ge:
		if lt.Nullable || rt.Nullable {
			a.ch.Set(ifjerr.Newf(ifjerr.TypeCompat, "operator %s does not accept nullable operands", e.Op))
			return valType{}
		}
		if _, ok := combineNumeric(lt, rt, e.Left, e.Right); !ok {
			a.ch.Set(ifjerr.Newf(ifjerr.TypeCompat, "operator %s requires two operands of the same numeric type", e.Op))
			return valType{}
		}
		return nonNull(ast.I32)

	case ast.Eq, ast.Ne:
		if isNullLiteralType(lt) || isNullLiteralType(rt) {
			other := rt
			if isNullLiteralType(rt) {
				other = lt
			}
			if !other.Nullable {
				a.ch.Set(ifjerr.Newf(ifjerr.TypeCompat, "operator %s cannot compare 'null' against a non-nullable type", e.Op))
				return valType{}
			}
			return nonNull(ast.I32)
		}
		if lt.Base == rt.Base {
			return nonNull(ast.I32)
		}
		if _, ok := combineNumeric(lt, rt, e.Left, e.Right); ok {
			return nonNull(ast.I32)
		}
		a.ch.Set(ifjerr.Newf(ifjerr.TypeCompat, "operator %s requires operands of the same type", e.Op))
		return valType{}
	}

	a.ch.Set(ifjerr.Newf(ifjerr.Internal, "unhandled binary operator %s", e.Op))
	return valType{}
}

// evalCall validates and types a call expression/statement: arity and
// per-argument type checks for both built-ins and user functions, lazy
// analysis of not-yet-initialized user functions, and marking the callee
// used.
func (a *Analyzer) evalCall(call *ast.FnCall, stack *symbols.ScopeStack) valType {
	if call.IsBuiltin {
		return a.evalBuiltinCall(call, stack)
	}

	sym := a.global.Lookup(call.Callee)
	if sym == nil {
		a.ch.Set(ifjerr.Newf(ifjerr.Undefined, "function %q is not declared", call.Callee))
		return valType{}
	}
	fn, ok := sym.(*symbols.FuncSymbol)
	if !ok {
		a.ch.Set(ifjerr.Newf(ifjerr.Undefined, "%q is not a function", call.Callee))
		return valType{}
	}

	a.analyzeFunction(fn)
	if a.ch.Failed() {
		return valType{}
	}

	params := fn.FnDecl.Params
	if len(call.Args) != len(params) {
		a.ch.Set(ifjerr.Newf(ifjerr.Params, "%q expects %d argument(s), got %d", call.Callee, len(params), len(call.Args)))
		return valType{}
	}
	for i, arg := range call.Args {
		at := a.typeOf(arg.Expr, stack)
		if a.ch.Failed() {
			return valType{}
		}
		want := valType{Base: params[i].Type, Nullable: params[i].Nullable}
		if !assignable(want, at, arg.Expr) {
			a.ch.Set(ifjerr.Newf(ifjerr.Params, "argument %d to %q must be %s, got %s", i+1, call.Callee, params[i].Type, at.Base))
			return valType{}
		}
	}

	fn.Used = true
	return valType{Base: fn.ReturnType, Nullable: fn.Nullable}
}

func (a *Analyzer) evalBuiltinCall(call *ast.FnCall, stack *symbols.ScopeStack) valType {
	_, method, found := strings.Cut(call.Callee, ".")
	if !found {
		method = call.Callee
	}
	sig, ok := builtins[method]
	if !ok {
		a.ch.Set(ifjerr.Newf(ifjerr.Undefined, "unknown built-in function %q", call.Callee))
		return valType{}
	}

	if sig.paramAny {
		if len(call.Args) != 1 {
			a.ch.Set(ifjerr.Newf(ifjerr.Params, "%q takes exactly one argument", call.Callee))
			return valType{}
		}
		a.typeOf(call.Args[0].Expr, stack)
	} else {
		if len(call.Args) != len(sig.params) {
			a.ch.Set(ifjerr.Newf(ifjerr.Params, "%q expects %d argument(s), got %d", call.Callee, len(sig.params), len(call.Args)))
			return valType{}
		}
		for i, arg := range call.Args {
			at := a.typeOf(arg.Expr, stack)
			if a.ch.Failed() {
				return valType{}
			}
			want := nonNull(sig.params[i])
			if !assignable(want, at, arg.Expr) {
				a.ch.Set(ifjerr.Newf(ifjerr.Params, "argument %d to %q must be %s, got %s", i+1, call.Callee, sig.params[i], at.Base))
				return valType{}
			}
		}
	}

	return valType{Base: sig.ret, Nullable: sig.retNullable}
}

// finalPass implements spec §4.3's "Final pass": every global function
// (other than main) that was never called is an OTHER_SEMANTIC_ERROR; every
// global variable never used is UNUSED_VAR. L has no top-level variables in
// this implementation (prePass rejects them), so the variable half of this
// pass is here for symmetry with spec.md.
func (a *Analyzer) finalPass() {
	var bad *ifjerr.Error
	a.global.Each(func(sym symbols.Symbol) {
		if bad != nil {
			return
		}
		switch s := sym.(type) {
		case *symbols.FuncSymbol:
			if s.Name != "main" && !s.Used {
				bad = ifjerr.Newf(ifjerr.OtherSem, "function %q is declared but never called", s.Name)
			}
		case *symbols.VarSymbol:
			if !s.Used {
				bad = ifjerr.Newf(ifjerr.UnusedVar, "variable %q is never used", s.Name)
			}
		}
	})
	if bad != nil {
		a.ch.Set(bad)
	}
}
