// Package symbols implements the layered name-resolution machinery used by
// internal/sema: an open-addressed SymbolTable per scope frame, and a
// ScopeStack tying frames together per function.
//
// The table's hashing and collision strategy (DJB2 string hash, linear
// probing, resize at load factor 0.75) is ported directly from the original
// compiler's symtable.c; everything else about the structure is reworked
// into idiomatic Go (an interface-typed Symbol instead of a tagged union, no
// manual memory management).
package symbols

import "github.com/ifj24/ifjc/internal/ast"

const (
	initialCapacity = 10
	loadFactor      = 0.75
)

// djb2 hashes key the same way the original keyword/symbol tables do:
// hash = hash*33 + c, seeded at 5381.
func djb2(key string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(key); i++ {
		h = ((h << 5) + h) + uint64(key[i])
	}
	return h
}

// Symbol is implemented by *FuncSymbol and *VarSymbol; it is the Go
// equivalent of the C Symbol tagged union, dispatched here by interface
// rather than a type tag.
type Symbol interface {
	symbolName() string
}

// FuncSymbol describes a declared function. ScopeStack is the function's own
// stack of block frames, built up as its body is analyzed; FnDecl is a
// non-owning back-pointer to the AST node the symbol describes (the AST, not
// the symbol table, owns that node).
type FuncSymbol struct {
	Name        string
	ReturnType  ast.DataType
	Nullable    bool
	Used        bool
	HasReturn   bool
	Initialized bool
	FnDecl      *ast.FnDecl
	ScopeStack  *ScopeStack
}

func (f *FuncSymbol) symbolName() string { return f.Name }

// VarSymbol describes a declared variable or constant.
type VarSymbol struct {
	Name           string
	Type           ast.DataType
	Constant       bool
	Nullable       bool
	Used           bool
	Redefined      bool
	LiteralInit    bool    // true when the initializer/last-assigned value was a literal
	NumericHint    float64 // value of a numeric literal initializer; internal/sema never sets it
	HasNumericHint bool    // internal/sema never sets it either
}

func (v *VarSymbol) symbolName() string { return v.Name }

// Table is an open-addressed hash table mapping names to symbols. It
// resizes (doubling capacity and rehashing every live entry) whenever
// inserting a new entry would push the load factor to or past 0.75, exactly
// as symtable.c does.
type Table struct {
	slots    []Symbol
	count    int
	capacity int
}

// NewTable returns an empty Table at the original compiler's initial
// capacity.
func NewTable() *Table {
	return &Table{
		slots:    make([]Symbol, initialCapacity),
		capacity: initialCapacity,
	}
}

func (t *Table) indexFor(name string, capacity int) int {
	return int(djb2(name) % uint64(capacity))
}

func (t *Table) resize() {
	oldSlots := t.slots
	newCap := t.capacity * 2
	newSlots := make([]Symbol, newCap)

	for _, sym := range oldSlots {
		if sym == nil {
			continue
		}
		idx := t.indexFor(sym.symbolName(), newCap)
		for newSlots[idx] != nil {
			idx = (idx + 1) % newCap
		}
		newSlots[idx] = sym
	}

	t.slots = newSlots
	t.capacity = newCap
}

// Insert adds sym to the table under its own name. Insert does not check
// for an existing entry with the same name; callers (internal/sema) are
// responsible for calling Lookup first and raising a REDEFINITION error
// themselves, since the table has no notion of what "redefinition" means
// across different scope kinds.
func (t *Table) Insert(sym Symbol) {
	if float64(t.count+1)/float64(t.capacity) >= loadFactor {
		t.resize()
	}

	idx := t.indexFor(sym.symbolName(), t.capacity)
	for t.slots[idx] != nil {
		idx = (idx + 1) % t.capacity
	}
	t.slots[idx] = sym
	t.count++
}

// Lookup returns the symbol registered under name in this table only (no
// outward scope search), or nil if absent.
func (t *Table) Lookup(name string) Symbol {
	idx := t.indexFor(name, t.capacity)
	for t.slots[idx] != nil {
		if t.slots[idx].symbolName() == name {
			return t.slots[idx]
		}
		idx = (idx + 1) % t.capacity
	}
	return nil
}

// Each calls fn once per live symbol in the table, in slot order. Used by
// internal/sema's end-of-block/end-of-program unused-name passes.
func (t *Table) Each(fn func(Symbol)) {
	for _, sym := range t.slots {
		if sym != nil {
			fn(sym)
		}
	}
}

// Count returns the number of symbols currently stored.
func (t *Table) Count() int {
	return t.count
}
