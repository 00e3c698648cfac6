package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEqual_ConfidenceIsPartOfIdentity(t *testing.T) {
	a := Number(42)
	b := Number(42).WithConfidence(0.72)
	if a.Equal(b) {
		t.Fatalf("expected numerically-equal values with different confidence to be unequal")
	}
	if !a.SameValue(b) {
		t.Fatalf("expected SameValue to ignore confidence and report equal payloads")
	}
}

func TestEqual_ContextIsPartOfIdentity(t *testing.T) {
	a := String("fever").WithContext("symptom")
	b := String("fever").WithContext("diagnosis")
	if a.Equal(b) {
		t.Fatalf("expected values with different context tags to be unequal")
	}
}

func TestWithConfidence_Clamps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{1.5, 1},
		{0.42, 0.42},
	}
	for _, tt := range tests {
		got := Number(1).WithConfidence(tt.in).Confidence
		if got != tt.want {
			t.Fatalf("WithConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil, false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero number", Number(0), true},
		{"empty string", String(""), true},
	}
	for _, tt := range tests {
		if got := tt.v.Truthy(); got != tt.want {
			t.Errorf("%s: Truthy() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestString_ElidesFullConfidence(t *testing.T) {
	if got, want := Number(42).String(), "42"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	got := Number(42).WithConfidence(0.72).String()
	if got != "42 ~0.72" {
		t.Fatalf("String() = %q, want %q", got, "42 ~0.72")
	}
}

func TestList_DeepEqualViaGoCmp(t *testing.T) {
	a := List([]Value{Number(1), String("x")})
	b := List([]Value{Number(1), String("x")})
	if diff := cmp.Diff(a, b, cmpopts.IgnoreUnexported(OrderedMap{})); diff != "" {
		t.Fatalf("lists should be deeply equal (-a +b):\n%s", diff)
	}
}

func TestOrderedMap_PreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", Number(1))
	m.Set("a", Number(2))
	m.Set("z", Number(3)) // overwrite, must not move to back
	if got, want := m.Keys(), []string{"z", "a"}; !cmp.Equal(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	v, _ := m.Get("z")
	if v.Number != 3 {
		t.Fatalf("expected overwritten value 3, got %v", v.Number)
	}
}

func TestOrderedMap_Equal(t *testing.T) {
	a := NewOrderedMap()
	a.Set("k", String("v"))
	b := NewOrderedMap()
	b.Set("k", String("v"))
	if !a.Equal(b) {
		t.Fatalf("expected maps with identical entries to be equal")
	}
	b.Set("k", String("v").WithConfidence(0.5))
	if a.Equal(b) {
		t.Fatalf("expected maps differing by confidence to be unequal")
	}
}
