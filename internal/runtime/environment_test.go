package runtime

import (
	"testing"

	"github.com/prism-lang/prism/internal/value"
)

func TestEnvironment_DefineAndGet(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", value.Number(42))
	v, ok := env.Get("x")
	if !ok || v.Number != 42 {
		t.Fatalf("Get(x) = (%v, %v), want (42, true)", v, ok)
	}
}

func TestEnvironment_GetWalksParentChain(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", value.Number(1))
	inner := NewEnclosedEnvironment(outer)
	v, ok := inner.Get("x")
	if !ok || v.Number != 1 {
		t.Fatalf("expected inner scope to see outer binding, got (%v, %v)", v, ok)
	}
}

func TestEnvironment_ShadowingDoesNotMutateOuter(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", value.Number(1))
	inner := NewEnclosedEnvironment(outer)
	inner.Define("x", value.Number(2))

	innerV, _ := inner.Get("x")
	outerV, _ := outer.Get("x")
	if innerV.Number != 2 {
		t.Fatalf("inner x = %v, want 2", innerV.Number)
	}
	if outerV.Number != 1 {
		t.Fatalf("outer x = %v, want unchanged 1", outerV.Number)
	}
}

func TestEnvironment_AssignMutatesNearestDefiningScope(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", value.Number(1))
	inner := NewEnclosedEnvironment(outer)

	if ok := inner.Assign("x", value.Number(99)); !ok {
		t.Fatalf("Assign should find x in the outer scope")
	}
	outerV, _ := outer.Get("x")
	if outerV.Number != 99 {
		t.Fatalf("outer x after Assign = %v, want 99", outerV.Number)
	}
}

func TestEnvironment_AssignUndefinedFails(t *testing.T) {
	env := NewEnvironment()
	if env.Assign("missing", value.Number(1)) {
		t.Fatalf("Assign on an undefined name should return false")
	}
}

func TestEnvironment_Has(t *testing.T) {
	env := NewEnvironment()
	if env.Has("x") {
		t.Fatalf("Has should be false before Define")
	}
	env.Define("x", value.Nil)
	if !env.Has("x") {
		t.Fatalf("Has should be true after Define")
	}
}
