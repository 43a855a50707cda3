package symbols

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Table_InsertAndLookup(t *testing.T) {
	tbl := NewTable()
	v := &VarSymbol{Name: "x", Type: 0}
	tbl.Insert(v)

	got := tbl.Lookup("x")
	require.NotNil(t, got)
	assert.Same(t, v, got)
}

func Test_Table_LookupMissingReturnsNil(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&VarSymbol{Name: "x"})
	assert.Nil(t, tbl.Lookup("nope"))
}

func Test_Table_CountTracksInsertions(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, 0, tbl.Count())
	tbl.Insert(&VarSymbol{Name: "a"})
	tbl.Insert(&VarSymbol{Name: "b"})
	assert.Equal(t, 2, tbl.Count())
}

func Test_Table_ResizeKeepsEveryEntryReachable(t *testing.T) {
	tbl := NewTable()
	names := make([]string, 0, 64)
	for i := 0; i < 64; i++ {
		name := fmt.Sprintf("sym%d", i)
		names = append(names, name)
		tbl.Insert(&VarSymbol{Name: name})
	}

	assert.Equal(t, 64, tbl.Count())
	for _, name := range names {
		got := tbl.Lookup(name)
		require.NotNil(t, got, "lookup for %q failed after resize", name)
		vs, ok := got.(*VarSymbol)
		require.True(t, ok)
		assert.Equal(t, name, vs.Name)
	}
}

func Test_Table_Each_visitsEveryLiveSymbol(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&VarSymbol{Name: "a"})
	tbl.Insert(&VarSymbol{Name: "b"})
	tbl.Insert(&VarSymbol{Name: "c"})

	seen := map[string]bool{}
	tbl.Each(func(s Symbol) {
		seen[s.symbolName()] = true
	})
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, seen)
}

func Test_Table_FuncAndVarSymbolsCoexist(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&FuncSymbol{Name: "main"})
	tbl.Insert(&VarSymbol{Name: "main_local"})

	_, isFn := tbl.Lookup("main").(*FuncSymbol)
	assert.True(t, isFn)
	_, isVar := tbl.Lookup("main_local").(*VarSymbol)
	assert.True(t, isVar)
}

func Test_ScopeStack_PushPopDepth(t *testing.T) {
	s := NewScopeStack()
	assert.Equal(t, 0, s.Depth())

	frame := s.Push()
	require.NotNil(t, frame)
	assert.Equal(t, 1, s.Depth())
	assert.Same(t, frame, s.Top())

	popped := s.Pop()
	assert.Same(t, frame, popped)
	assert.Equal(t, 0, s.Depth())
}

func Test_ScopeStack_ResolveFindsInnermostFirst(t *testing.T) {
	s := NewScopeStack()
	outer := s.Push()
	outer.Insert(&VarSymbol{Name: "x", NumericHint: 1})

	inner := s.Push()
	inner.Insert(&VarSymbol{Name: "x", NumericHint: 2})

	sym, ok := s.Resolve("x", nil)
	require.True(t, ok)
	vs := sym.(*VarSymbol)
	assert.Equal(t, 2.0, vs.NumericHint, "inner frame's binding should shadow the outer one")

	s.Pop()
	sym, ok = s.Resolve("x", nil)
	require.True(t, ok)
	vs = sym.(*VarSymbol)
	assert.Equal(t, 1.0, vs.NumericHint)
}

func Test_ScopeStack_ResolveFallsThroughToGlobal(t *testing.T) {
	global := NewTable()
	global.Insert(&FuncSymbol{Name: "helper"})

	s := NewScopeStack()
	s.Push()

	sym, ok := s.Resolve("helper", global)
	require.True(t, ok)
	_, isFn := sym.(*FuncSymbol)
	assert.True(t, isFn)
}

func Test_ScopeStack_ResolveMissingEverywhere(t *testing.T) {
	global := NewTable()
	s := NewScopeStack()
	s.Push()

	_, ok := s.Resolve("missing", global)
	assert.False(t, ok)
}

func Test_ScopeStack_ResolveLocalDoesNotConsultGlobal(t *testing.T) {
	global := NewTable()
	global.Insert(&FuncSymbol{Name: "helper"})

	s := NewScopeStack()
	s.Push()

	_, ok := s.ResolveLocal("helper")
	assert.False(t, ok, "ResolveLocal must not fall through to the global table")
}

func Test_ScopeStack_ResolveLocalSearchesAllLocalFrames(t *testing.T) {
	s := NewScopeStack()
	outer := s.Push()
	outer.Insert(&VarSymbol{Name: "x"})
	s.Push()

	sym, ok := s.ResolveLocal("x")
	require.True(t, ok)
	assert.Equal(t, "x", sym.symbolName())
}
