package env_test

import (
	"testing"

	"github.com/cellforge/avs/env"
	"github.com/cellforge/avs/value"
)

func TestNormalize(t *testing.T) {
	if got := env.Normalize("  foo_Bar "); got != "FOO_BAR" {
		t.Errorf("Normalize = %q, want %q", got, "FOO_BAR")
	}
	n := env.Normalize("Widget")
	if got := env.Normalize(n); got != n {
		t.Errorf("normalize not idempotent: %q != %q", got, n)
	}
}

func TestBindNameConflict(t *testing.T) {
	e := env.New()
	a := e.DefineIdentifier()
	b := e.DefineIdentifier()
	if !e.BindName(a, "total") {
		t.Fatal("first bind should succeed")
	}
	if e.BindName(b, "TOTAL") {
		t.Error("binding a different symbol to an already-used name should fail")
	}
	if !e.BindName(a, "total") {
		t.Error("re-binding the same symbol to its own name should succeed")
	}
}

func TestLookupNameCaseInsensitive(t *testing.T) {
	e := env.New()
	sym := e.DefineIdentifier()
	e.BindName(sym, "Revenue")
	got, ok := e.LookupName("  revenue ")
	if !ok || got != sym {
		t.Errorf("LookupName case/whitespace mismatch: got=%v ok=%v", got, ok)
	}
	name, ok := e.NameOf(sym)
	if !ok || name != "Revenue" {
		t.Errorf("NameOf = %q, want verbatim %q", name, "Revenue")
	}
}

func TestGetOrCreateSymbolStable(t *testing.T) {
	e := env.New()
	a := e.GetOrCreateSymbol("x")
	b := e.GetOrCreateSymbol("X")
	if a != b {
		t.Errorf("GetOrCreateSymbol not stable across case: %d != %d", a, b)
	}
}

func TestResolveSymbolChain(t *testing.T) {
	e := env.New()
	a := e.DefineIdentifier()
	bSym := e.DefineIdentifier()
	e.BindValue(a, value.EncodeSymbol(bSym))
	e.BindValue(bSym, value.FromFloat64(7))

	owner, v, ok := e.ResolveSymbol(a)
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if owner != bSym || v.Float64() != 7 {
		t.Errorf("ResolveSymbol = (%d, %v), want (%d, 7)", owner, v, bSym)
	}
}

func TestResolveSymbolCycle(t *testing.T) {
	e := env.New()
	a := e.DefineIdentifier()
	b := e.DefineIdentifier()
	e.BindValue(a, value.EncodeSymbol(b))
	e.BindValue(b, value.EncodeSymbol(a))

	if _, _, ok := e.ResolveSymbol(a); ok {
		t.Error("expected cycle to fail resolution")
	}
}

func TestResolveSymbolSelfLoop(t *testing.T) {
	e := env.New()
	a := e.DefineIdentifier()
	e.BindValue(a, value.EncodeSymbol(a))
	if _, _, ok := e.ResolveSymbol(a); ok {
		t.Error("expected self-loop to fail resolution")
	}
}

func TestResolveSymbolUnboundBuiltin(t *testing.T) {
	e := env.New()
	// Any id below AppSymbolStart that was never given its own atom still
	// resolves, to itself, as an unbound built-in.
	const builtinButUnbound = 10
	owner, v, ok := e.ResolveSymbol(builtinButUnbound)
	if !ok || owner != builtinButUnbound || v != value.EncodeSymbol(builtinButUnbound) {
		t.Errorf("ResolveSymbol(unbound builtin) = (%d,%v,%v)", owner, v, ok)
	}
}

func TestResolveSymbolMissing(t *testing.T) {
	e := env.New()
	if _, _, ok := e.ResolveSymbol(env.AppSymbolStart + 999); ok {
		t.Error("expected missing non-builtin symbol to fail resolution")
	}
}

func TestCellSymbolLazyAllocation(t *testing.T) {
	e := env.New()
	first := e.CellSymbol(42)
	second := e.CellSymbol(42)
	if first != second {
		t.Errorf("CellSymbol not stable across calls: %d != %d", first, second)
	}
}

func TestBindString(t *testing.T) {
	e := env.New()
	sym := e.DefineIdentifier()
	v := e.BindString(sym, "hello")
	if value.TypeOf(v) != value.TypeString {
		t.Fatalf("BindString returned %v, want a String value", value.TypeOf(v))
	}
	s, ok := e.StringContent(v.SymbolID())
	if !ok || s != "hello" {
		t.Errorf("StringContent = (%q,%v), want (hello,true)", s, ok)
	}
}
