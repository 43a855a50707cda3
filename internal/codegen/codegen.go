// Package codegen lowers a type-checked Program into IFJcode24, the
// stack-oriented three-address IR consumed by the reference interpreter.
//
// The generator is a second, independent tree walk over the same AST
// internal/sema validated; it assumes the tree is well-typed and never
// raises a user-facing diagnostic. Anything it rejects is a compiler bug,
// reported through ifjerr.Internal the same way internal/parser reports an
// unreachable switch arm.
package codegen

import (
	"fmt"
	"strings"

	"github.com/ifj24/ifjc/internal/ast"
	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/symbols"
)

// Generator walks a Program and accumulates IFJcode24 text. It keeps its own
// stack of name-uniquification scopes, built and torn down in lockstep with
// internal/sema's block analysis, because IFJcode24 frame variables are flat
// (DEFVAR has no notion of nested scope): two different if-branches of the
// same function that both declare a local named `x` would collide on
// `LF@x` unless each declaration is given a distinct frame name.
type Generator struct {
	out          *strings.Builder
	ch           *ifjerr.Channel
	global       *symbols.Table
	alias        string
	labelN       int
	localN       int
	scopes       []map[string]localBinding
	localSlots   map[ast.Node]string // *ast.ConstDecl/*ast.VarDecl/*ast.If/*ast.While -> its hoisted frame slot
	divSlots     map[*ast.BinaryOp]divTemps
	fn           *ast.FnDecl
	emitComments bool
}

// divTemps names the working frame variables one division site hoists, all
// allocated once at function entry so re-entering a loop never re-DEFVARs
// them.
type divTemps struct {
	left, right  string
	ltype, rtype string
	bothInt      string
}

// localBinding pairs a source-level name's generated frame slot with its
// static type, the latter needed purely to pick the right arithmetic/
// comparison opcode family (int vs float) and insert INT2FLOATS promotions;
// internal/sema already proved these types sound, codegen just needs them
// again since the AST carries no type annotations of its own.
type localBinding struct {
	frame string
	typ   ast.DataType
}

// Generate lowers prog to IFJcode24 text. global is the table Analyze
// returned, used here only to look up each call's static return type
// (codegen does not re-derive types; it trusts the analyzer).
// emitComments, when true, precedes every function with a '#' comment
// naming it, for the CLI's --emit-comments flag.
func Generate(prog *ast.Program, global *symbols.Table, ch *ifjerr.Channel, emitComments bool) string {
	g := &Generator{out: &strings.Builder{}, ch: ch, global: global, alias: prog.ImportAlias, emitComments: emitComments}

	g.out.WriteString(".IFJcode24\n")
	g.out.WriteString("JUMP main\n")

	for _, d := range prog.Decls {
		fn, ok := d.(*ast.FnDecl)
		if !ok {
			continue
		}
		g.genFunction(fn)
		if ch.Failed() {
			return ""
		}
	}

	return g.out.String()
}

func (g *Generator) emit(format string, a ...any) {
	fmt.Fprintf(g.out, format, a...)
	g.out.WriteByte('\n')
}

func (g *Generator) newLabel(prefix string) string {
	g.labelN++
	return fmt.Sprintf("%s$%d", prefix, g.labelN)
}

func (g *Generator) pushScope() { g.scopes = append(g.scopes, map[string]localBinding{}) }
func (g *Generator) popScope()  { g.scopes = g.scopes[:len(g.scopes)-1] }

// assignSlot allocates a fresh frame name for the local declared by node (a
// const/var declaration or an if/while element-bind), DEFVARing it once and
// recording the frame name in localSlots so the generation pass can look it
// up later without re-declaring it. This is the hoisting half of the
// DEFVAR-inside-loop fix: a slot is assigned and DEFVARed exactly once per
// function, during hoistLocals, regardless of how many times its declaring
// statement's enclosing loop iterates.
func (g *Generator) assignSlot(node ast.Node, name string) string {
	g.localN++
	frameName := fmt.Sprintf("LF@%s_%d", name, g.localN)
	g.localSlots[node] = frameName
	g.emit("DEFVAR %s", frameName)
	return frameName
}

// hoistTemp allocates and DEFVARs a frame-unique working variable for an
// expression-level temporary (currently only division's runtime type probes)
// that needs a stable slot across loop iterations.
func (g *Generator) hoistTemp(prefix string) string {
	g.localN++
	name := fmt.Sprintf("LF@$%s_%d", prefix, g.localN)
	g.emit("DEFVAR %s", name)
	return name
}

// hoistLocals walks blk once, before any code for it is emitted, assigning a
// frame slot to every const/var declaration, if/while element-bind, and
// division site reachable from it — mirroring the scope nesting genBlock
// will later replay. This is what lets the generation pass emit a
// declaration's DEFVAR exactly once at function entry instead of wherever in
// a loop body the declaration happens to sit.
func (g *Generator) hoistLocals(blk *ast.Block) {
	g.pushScope()
	for _, s := range blk.Stmts {
		g.hoistStmt(s)
	}
	g.popScope()
}

func (g *Generator) hoistStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.ConstDecl:
		g.hoistExpr(s.Init)
		g.hoistDecl(s, s.Name, s.Init)
	case *ast.VarDecl:
		g.hoistExpr(s.Init)
		g.hoistDecl(s, s.Name, s.Init)
	case *ast.Assignment:
		g.hoistExpr(s.Expr)
	case *ast.Return:
		if s.Expr != nil {
			g.hoistExpr(s.Expr)
		}
	case *ast.If:
		g.hoistExpr(s.Cond)
		g.hoistIf(s)
	case *ast.While:
		g.hoistExpr(s.Cond)
		g.hoistWhile(s)
	case *ast.FnCall:
		g.hoistExpr(s)
	}
}

func (g *Generator) hoistDecl(node ast.Node, name string, init ast.Node) {
	typ := g.inferType(init)
	frameName := g.assignSlot(node, name)
	g.scopes[len(g.scopes)-1][name] = localBinding{frame: frameName, typ: typ}
}

func (g *Generator) hoistIf(s *ast.If) {
	if s.ElementBind != "" {
		condType := g.inferType(s.Cond)
		frameName := g.assignSlot(s, s.ElementBind)
		g.pushScope()
		g.scopes[len(g.scopes)-1][s.ElementBind] = localBinding{frame: frameName, typ: condType}
		g.hoistLocals(s.Then)
		g.popScope()
	} else {
		g.hoistLocals(s.Then)
	}
	if s.Else != nil {
		g.hoistLocals(s.Else)
	}
}

func (g *Generator) hoistWhile(s *ast.While) {
	if s.ElementBind != "" {
		condType := g.inferType(s.Cond)
		frameName := g.assignSlot(s, s.ElementBind)
		g.pushScope()
		g.scopes[len(g.scopes)-1][s.ElementBind] = localBinding{frame: frameName, typ: condType}
		g.hoistLocals(s.Body)
		g.popScope()
	} else {
		g.hoistLocals(s.Body)
	}
}

// hoistExpr finds every division site reachable from n and gives it its
// working temporaries up front, for the same reason hoistStmt gives
// declarations their frame slots up front.
func (g *Generator) hoistExpr(n ast.Node) {
	switch e := n.(type) {
	case *ast.BinaryOp:
		g.hoistExpr(e.Left)
		g.hoistExpr(e.Right)
		if e.Op == ast.Div {
			g.divSlots[e] = divTemps{
				left:    g.hoistTemp("divl"),
				right:   g.hoistTemp("divr"),
				ltype:   g.hoistTemp("divlt"),
				rtype:   g.hoistTemp("divrt"),
				bothInt: g.hoistTemp("divboth"),
			}
		}
	case *ast.FnCall:
		for _, a := range e.Args {
			g.hoistExpr(a.Expr)
		}
	}
}

// resolveLocal finds the frame name most recently bound to name, searching
// inner to outer scopes. It is a codegen-only bug if this ever misses, since
// internal/sema already proved every reference resolves.
func (g *Generator) resolveLocal(name string) string {
	b, ok := g.lookupLocal(name)
	if !ok {
		g.ch.Set(ifjerr.Newf(ifjerr.Internal, "codegen: unresolved local %q survived semantic analysis", name))
		return "GF@$bug"
	}
	return b.frame
}

// freshTemp allocates (without recording in any named scope) a frame-unique
// temporary variable name for builtin-call emission sequences that need
// working storage beyond the data stack.
func (g *Generator) freshTemp(prefix string) string {
	g.localN++
	return fmt.Sprintf("LF@$%s_%d", prefix, g.localN)
}

func (g *Generator) lookupLocal(name string) (localBinding, bool) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if b, ok := g.scopes[i][name]; ok {
			return b, true
		}
	}
	return localBinding{}, false
}

// genFunction lowers one function. The calling convention places the
// burden of frame setup on the caller: genUserCall CREATEFRAMEs, fills
// TF@0..TF@n-1 with evaluated argument values, then PUSHFRAMEs immediately
// before CALL, so by the time LABEL is reached the callee's own parameters
// already exist as LF@0..LF@n-1 — no further DEFVAR or POPS is needed here.
// main is the one function nothing CALLs, so it builds its own empty frame.
func (g *Generator) genFunction(fn *ast.FnDecl) {
	g.fn = fn
	g.localN = 0
	g.localSlots = map[ast.Node]string{}
	g.divSlots = map[*ast.BinaryOp]divTemps{}
	g.emit("")
	if g.emitComments {
		g.emit("# function %s", fn.Name)
	}
	g.emit("LABEL %s", fn.Name)
	if fn.Name == "main" {
		g.emit("CREATEFRAME")
		g.emit("PUSHFRAME")
	}

	g.pushScope()
	top := g.scopes[len(g.scopes)-1]
	for i, p := range fn.Params {
		top[p.Name] = localBinding{frame: fmt.Sprintf("LF@%d", i), typ: p.Type}
	}

	g.hoistLocals(fn.Body)
	g.genBlock(fn.Body, nil)
	g.popScope()

	if fn.Name == "main" {
		g.emit("EXIT int@0")
		return
	}
	// a well-typed program only reaches here through an explicit return on
	// every required path (internal/sema.analyzeFunction enforces this), so
	// this is a fallback for void functions that return implicitly.
	g.emit("POPFRAME")
	g.emit("RETURN")
}

func (g *Generator) genBlock(blk *ast.Block, bind *bindInfo) {
	g.pushScope()
	if bind != nil {
		// the bound value was already POPS'd directly into its hoisted
		// frame slot by the caller (genIf/genWhile); this only needs to
		// make the name visible in scope.
		frameName := g.localSlots[bind.node]
		g.scopes[len(g.scopes)-1][bind.name] = localBinding{frame: frameName, typ: bind.typ}
	}
	for _, s := range blk.Stmts {
		g.genStmt(s)
		if g.ch.Failed() {
			return
		}
	}
	g.popScope()
}

// bindInfo names the if/while element-bind whose value is already sitting in
// its hoisted frame slot by the time genBlock runs.
type bindInfo struct {
	node ast.Node
	name string
	typ  ast.DataType
}

func (g *Generator) genStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.ConstDecl:
		g.genDecl(s, s.Name, s.Init)
	case *ast.VarDecl:
		g.genDecl(s, s.Name, s.Init)
	case *ast.Assignment:
		g.genAssignment(s)
	case *ast.Return:
		g.genReturn(s)
	case *ast.If:
		g.genIf(s)
	case *ast.While:
		g.genWhile(s)
	case *ast.FnCall:
		g.genExpr(s)
		if !g.ch.Failed() && g.callReturnsValue(s) {
			g.emit("CLEARS")
		}
	default:
		g.ch.Set(ifjerr.Newf(ifjerr.Internal, "codegen: unexpected statement %T", n))
	}
}

func (g *Generator) genDecl(node ast.Node, name string, init ast.Node) {
	typ := g.inferType(init)
	g.genExpr(init)
	if g.ch.Failed() {
		return
	}
	frameName := g.localSlots[node]
	g.emit("POPS %s", frameName)
	g.scopes[len(g.scopes)-1][name] = localBinding{frame: frameName, typ: typ}
}

func (g *Generator) genAssignment(s *ast.Assignment) {
	g.genExpr(s.Expr)
	if g.ch.Failed() {
		return
	}
	if s.Target == "_" {
		g.emit("CLEARS")
		return
	}
	g.emit("POPS %s", g.resolveLocal(s.Target))
}

// genReturn leaves the return expression's value on the (frame-independent)
// data stack before tearing down the frame: a PUSHS survives POPFRAME, so
// the caller's own POPS after CALL picks it up directly. Unlike C, there is
// no separate return-value register to route through.
func (g *Generator) genReturn(s *ast.Return) {
	if s.Expr != nil {
		g.genExpr(s.Expr)
		if g.ch.Failed() {
			return
		}
	}
	g.emit("POPFRAME")
	g.emit("RETURN")
}

// genIf lowers both condition forms from spec §3's if statement: the plain
// i32-truthiness form and the element-bind form ("if (expr) |name| { ... }
// else { ... }"), where expr is guaranteed non-null-checked at source level
// and name is bound to its unwrapped value inside the then-block only.
func (g *Generator) genIf(s *ast.If) {
	elseLbl := g.newLabel("else")
	endLbl := g.newLabel("endif")

	if s.ElementBind == "" {
		g.genExpr(s.Cond)
		if g.ch.Failed() {
			return
		}
		g.emit("PUSHS int@0")
		g.emit("JUMPIFEQS %s", elseLbl)

		g.genBlock(s.Then, nil)
		if g.ch.Failed() {
			return
		}
		g.emit("JUMP %s", endLbl)
		g.emit("LABEL %s", elseLbl)
		if s.Else != nil {
			g.genBlock(s.Else, nil)
		}
		g.emit("LABEL %s", endLbl)
		return
	}

	// JUMPIFEQS pops both its operands regardless of whether the jump is
	// taken, so the condition value must already be stashed in its frame
	// slot before the comparison runs: pop it there, then re-push the same
	// slot to compare against nil@nil. On the taken (null) branch the
	// stack is already clean; on the fallthrough (non-null) branch the
	// slot holds the unwrapped value genBlock binds into scope.
	condType := g.inferType(s.Cond)
	frameName := g.localSlots[s]
	g.genExpr(s.Cond)
	if g.ch.Failed() {
		return
	}
	g.emit("POPS %s", frameName)
	g.emit("PUSHS %s", frameName)
	g.emit("PUSHS nil@nil")
	g.emit("JUMPIFEQS %s", elseLbl)

	g.genBlock(s.Then, &bindInfo{node: s, name: s.ElementBind, typ: condType})
	if g.ch.Failed() {
		return
	}
	g.emit("JUMP %s", endLbl)
	g.emit("LABEL %s", elseLbl)
	if s.Else != nil {
		g.genBlock(s.Else, nil)
	}
	g.emit("LABEL %s", endLbl)
}

func (g *Generator) genWhile(s *ast.While) {
	startLbl := g.newLabel("whilestart")
	endLbl := g.newLabel("whileend")
	g.emit("LABEL %s", startLbl)

	if s.ElementBind == "" {
		g.genExpr(s.Cond)
		if g.ch.Failed() {
			return
		}
		g.emit("PUSHS int@0")
		g.emit("JUMPIFEQS %s", endLbl)
		g.genBlock(s.Body, nil)
		if g.ch.Failed() {
			return
		}
		g.emit("JUMP %s", startLbl)
		g.emit("LABEL %s", endLbl)
		return
	}

	condType := g.inferType(s.Cond)
	frameName := g.localSlots[s]
	g.genExpr(s.Cond)
	if g.ch.Failed() {
		return
	}
	g.emit("POPS %s", frameName)
	g.emit("PUSHS %s", frameName)
	g.emit("PUSHS nil@nil")
	g.emit("JUMPIFEQS %s", endLbl)
	g.genBlock(s.Body, &bindInfo{node: s, name: s.ElementBind, typ: condType})
	if g.ch.Failed() {
		return
	}
	g.emit("JUMP %s", startLbl)
	g.emit("LABEL %s", endLbl)
}

// callReturnsValue reports whether call's static return type is non-void,
// consulting either the builtin table or the global function table.
func (g *Generator) callReturnsValue(call *ast.FnCall) bool {
	if call.IsBuiltin {
		_, method, found := cutDot(call.Callee)
		if !found {
			method = call.Callee
		}
		ret, ok := builtins[method]
		return ok && ret != ast.Void
	}
	sym := g.global.Lookup(call.Callee)
	fn, ok := sym.(*symbols.FuncSymbol)
	return ok && fn.ReturnType != ast.Void
}

func cutDot(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// genExpr emits the instructions that leave exactly one value on top of the
// data stack.
func (g *Generator) genExpr(n ast.Node) {
	switch e := n.(type) {
	case *ast.IntLit:
		g.emit("PUSHS int@%d", e.Value)
	case *ast.FloatLit:
		g.emit("PUSHS float@%s", floatLiteralHex(e.Value))
	case *ast.StringLit:
		g.emit("PUSHS string@%s", escapeString(e.Value))
	case *ast.NullLit:
		g.emit("PUSHS nil@nil")
	case *ast.Identifier:
		g.emit("PUSHS %s", g.resolveLocal(e.Name))
	case *ast.FnCall:
		if e.IsBuiltin {
			g.genBuiltinCall(e)
		} else {
			g.genUserCall(e)
		}
	case *ast.BinaryOp:
		g.genBinary(e)
	default:
		g.ch.Set(ifjerr.Newf(ifjerr.Internal, "codegen: unexpected expression %T", n))
	}
}

// genUserCall implements the calling convention described on genFunction:
// build a fresh temporary frame, evaluate each argument into a positional
// slot, push the frame, then CALL.
func (g *Generator) genUserCall(call *ast.FnCall) {
	g.emit("CREATEFRAME")
	for i, arg := range call.Args {
		slot := fmt.Sprintf("TF@%d", i)
		g.emit("DEFVAR %s", slot)
		g.genExpr(arg.Expr)
		if g.ch.Failed() {
			return
		}
		g.emit("POPS %s", slot)
	}
	g.emit("PUSHFRAME")
	g.emit("CALL %s", call.Callee)
}

func (g *Generator) genBinary(e *ast.BinaryOp) {
	switch e.Op {
	case ast.Add, ast.Sub, ast.Mul:
		g.genArith(e)
	case ast.Div:
		g.genDivision(e)
	case ast.Lt, ast.Gt, ast.Le, ast.Ge:
		g.genRelational(e)
	case ast.Eq, ast.Ne:
		g.genEquality(e)
	default:
		g.ch.Set(ifjerr.Newf(ifjerr.Internal, "codegen: unhandled operator %s", e.Op))
	}
}

// genArith emits a well-typed +/-/* op, inserting INT2FLOATS to widen
// whichever side is the literal-promoted i32 per the same rule
// internal/sema's combineNumeric used to accept the expression in the first
// place. Division is handled separately by genDivision: it is specified as
// runtime type-directed rather than statically resolved.
func (g *Generator) genArith(e *ast.BinaryOp) {
	lt := g.inferType(e.Left)
	rt := g.inferType(e.Right)

	g.genExpr(e.Left)
	if g.ch.Failed() {
		return
	}
	if lt == ast.I32 && rt == ast.F64 {
		g.emit("INT2FLOATS")
	}
	g.genExpr(e.Right)
	if g.ch.Failed() {
		return
	}
	if rt == ast.I32 && lt == ast.F64 {
		g.emit("INT2FLOATS")
	}

	switch e.Op {
	case ast.Add:
		g.emit("ADDS")
	case ast.Sub:
		g.emit("SUBS")
	case ast.Mul:
		g.emit("MULS")
	}
}

// genDivision lowers a '/' expression per the runtime type-directed contract:
// probe each operand's dynamic type with TYPE, promote whichever one is int
// while its sibling is float with INT2FLOAT, DIVS, then convert the float
// result back with FLOAT2INTS only when both original operands were int. Its
// working variables are pre-declared by hoistExpr, so re-entering a loop
// containing a division never re-DEFVARs them.
func (g *Generator) genDivision(e *ast.BinaryOp) {
	t := g.divSlots[e]

	g.genExpr(e.Left)
	if g.ch.Failed() {
		return
	}
	g.genExpr(e.Right)
	if g.ch.Failed() {
		return
	}
	g.emit("POPS %s", t.right)
	g.emit("POPS %s", t.left)

	g.emit("MOVE %s bool@true", t.bothInt)
	g.emit("TYPE %s %s", t.ltype, t.left)
	g.emit("TYPE %s %s", t.rtype, t.right)

	lNotFloat := g.newLabel("divlnotfloat")
	g.emit("JUMPIFNEQ %s %s string@float", lNotFloat, t.ltype)
	g.emit("MOVE %s bool@false", t.bothInt)
	g.emit("LABEL %s", lNotFloat)

	rNotFloat := g.newLabel("divrnotfloat")
	g.emit("JUMPIFNEQ %s %s string@float", rNotFloat, t.rtype)
	g.emit("MOVE %s bool@false", t.bothInt)
	g.emit("LABEL %s", rNotFloat)

	skipLPromote := g.newLabel("divskiplp")
	g.emit("JUMPIFNEQ %s %s string@int", skipLPromote, t.ltype)
	g.emit("JUMPIFNEQ %s %s string@float", skipLPromote, t.rtype)
	g.emit("INT2FLOAT %s %s", t.left, t.left)
	g.emit("LABEL %s", skipLPromote)

	skipRPromote := g.newLabel("divskiprp")
	g.emit("JUMPIFNEQ %s %s string@int", skipRPromote, t.rtype)
	g.emit("JUMPIFNEQ %s %s string@float", skipRPromote, t.ltype)
	g.emit("INT2FLOAT %s %s", t.right, t.right)
	g.emit("LABEL %s", skipRPromote)

	g.emit("PUSHS %s", t.left)
	g.emit("PUSHS %s", t.right)
	g.emit("DIVS")

	skipConv := g.newLabel("divskipconv")
	g.emit("JUMPIFNEQ %s %s bool@true", skipConv, t.bothInt)
	g.emit("FLOAT2INTS")
	g.emit("LABEL %s", skipConv)
}

func (g *Generator) genRelational(e *ast.BinaryOp) {
	lt := g.inferType(e.Left)
	rt := g.inferType(e.Right)

	g.genExpr(e.Left)
	if g.ch.Failed() {
		return
	}
	if lt == ast.I32 && rt == ast.F64 {
		g.emit("INT2FLOATS")
	}
	g.genExpr(e.Right)
	if g.ch.Failed() {
		return
	}
	if rt == ast.I32 && lt == ast.F64 {
		g.emit("INT2FLOATS")
	}

	switch e.Op {
	case ast.Lt:
		g.emit("LTS")
	case ast.Gt:
		g.emit("GTS")
	case ast.Le:
		g.emit("GTS")
		g.emit("NOTS")
	case ast.Ge:
		g.emit("LTS")
		g.emit("NOTS")
	}
	g.boolToInt()
}

func (g *Generator) genEquality(e *ast.BinaryOp) {
	_, lIsNull := e.Left.(*ast.NullLit)
	_, rIsNull := e.Right.(*ast.NullLit)

	if !lIsNull && !rIsNull {
		lt := g.inferType(e.Left)
		rt := g.inferType(e.Right)
		g.genExpr(e.Left)
		if g.ch.Failed() {
			return
		}
		if lt == ast.I32 && rt == ast.F64 {
			g.emit("INT2FLOATS")
		}
		g.genExpr(e.Right)
		if g.ch.Failed() {
			return
		}
		if rt == ast.I32 && lt == ast.F64 {
			g.emit("INT2FLOATS")
		}
	} else {
		g.genExpr(e.Left)
		if g.ch.Failed() {
			return
		}
		g.genExpr(e.Right)
		if g.ch.Failed() {
			return
		}
	}

	g.emit("EQS")
	if e.Op == ast.Ne {
		g.emit("NOTS")
	}
	g.boolToInt()
}

// boolToInt folds the bool@ value LTS/GTS/EQS/NOTS leave on the stack into
// the int@0/int@1 L expects: L's relational and equality operators are
// typed i32, not bool, so every comparison's native IFJcode24 result is
// immediately coerced right after it is produced.
func (g *Generator) boolToInt() {
	trueLbl := g.newLabel("cmptrue")
	endLbl := g.newLabel("cmpend")
	g.emit("PUSHS bool@true")
	g.emit("JUMPIFEQS %s", trueLbl)
	g.emit("PUSHS int@0")
	g.emit("JUMP %s", endLbl)
	g.emit("LABEL %s", trueLbl)
	g.emit("PUSHS int@1")
	g.emit("LABEL %s", endLbl)
}

// inferType re-derives an expression's static base type, mirroring
// internal/sema's type_of closely enough to make the int/float opcode
// choice above, but without re-validating anything: the program already
// passed semantic analysis by the time codegen runs.
func (g *Generator) inferType(n ast.Node) ast.DataType {
	switch e := n.(type) {
	case *ast.IntLit:
		return ast.I32
	case *ast.FloatLit:
		return ast.F64
	case *ast.StringLit:
		return ast.Slice
	case *ast.NullLit:
		return ast.Unspecified
	case *ast.Identifier:
		b, ok := g.lookupLocal(e.Name)
		if !ok {
			return ast.Unspecified
		}
		return b.typ
	case *ast.FnCall:
		if e.IsBuiltin {
			_, method, found := cutDot(e.Callee)
			if !found {
				method = e.Callee
			}
			return builtins[method]
		}
		sym := g.global.Lookup(e.Callee)
		if fn, ok := sym.(*symbols.FuncSymbol); ok {
			return fn.ReturnType
		}
		return ast.Unspecified
	case *ast.BinaryOp:
		switch e.Op {
		case ast.Add, ast.Sub, ast.Mul, ast.Div:
			lt, rt := g.inferType(e.Left), g.inferType(e.Right)
			if lt == ast.F64 || rt == ast.F64 {
				return ast.F64
			}
			return ast.I32
		default:
			return ast.I32
		}
	}
	return ast.Unspecified
}
