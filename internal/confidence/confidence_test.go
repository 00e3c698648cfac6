package confidence

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCombine_Product(t *testing.T) {
	if got, want := Combine(0.9, 0.8), 0.72; !almostEqual(got, want) {
		t.Fatalf("Combine(0.9, 0.8) = %v, want %v", got, want)
	}
}

func TestCombine_EmptyIsZero(t *testing.T) {
	if got := Combine(); got != 0 {
		t.Fatalf("Combine() = %v, want 0", got)
	}
}

func TestCombine_ClampsOverflow(t *testing.T) {
	if got := Combine(2.0, 2.0); got != 1 {
		t.Fatalf("Combine(2.0, 2.0) = %v, want clamped to 1", got)
	}
}

func TestCombineWeighted(t *testing.T) {
	got := CombineWeighted([]float64{1.0, 0.5}, []float64{3, 1})
	want := (1.0*3 + 0.5*1) / 4
	if !almostEqual(got, want) {
		t.Fatalf("CombineWeighted = %v, want %v", got, want)
	}
}

func TestCombineWeighted_MismatchedLengthsIsZero(t *testing.T) {
	if got := CombineWeighted([]float64{1.0}, []float64{1, 2}); got != 0 {
		t.Fatalf("mismatched lengths: got %v, want 0", got)
	}
}

func TestCombineWeighted_ZeroWeightsIsZero(t *testing.T) {
	if got := CombineWeighted([]float64{0.9}, []float64{0}); got != 0 {
		t.Fatalf("zero total weight: got %v, want 0", got)
	}
}

func TestDecay(t *testing.T) {
	got := Decay(1.0, 0.1, 2)
	want := math.Pow(0.9, 2)
	if !almostEqual(got, want) {
		t.Fatalf("Decay = %v, want %v", got, want)
	}
}

func TestDecay_ZeroTicksIsUnchanged(t *testing.T) {
	if got := Decay(0.42, 0.5, 0); got != 0.42 {
		t.Fatalf("Decay with 0 ticks = %v, want 0.42", got)
	}
}

func TestThreshold(t *testing.T) {
	if !Threshold(0.5, 0.5) {
		t.Fatalf("Threshold(0.5, 0.5) should be satisfied (>=)")
	}
	if Threshold(0.49, 0.5) {
		t.Fatalf("Threshold(0.49, 0.5) should not be satisfied")
	}
}

func TestEngine_SetRejectsOutOfRange(t *testing.T) {
	e := NewEngine(0.1)
	if e.Set("trust", 1.5) {
		t.Fatalf("Set should reject confidence > 1")
	}
	if e.Set("trust", -0.1) {
		t.Fatalf("Set should reject confidence < 0")
	}
	if !e.Set("trust", 0.9) {
		t.Fatalf("Set should accept an in-range value")
	}
	got, ok := e.Get("trust")
	if !ok || got != 0.9 {
		t.Fatalf("Get(trust) = (%v, %v), want (0.9, true)", got, ok)
	}
}

func TestEngine_TickDecaysAllTrackedVars(t *testing.T) {
	e := NewEngine(0.5)
	e.Set("a", 1.0)
	e.Set("b", 0.8)
	e.Tick()
	a, _ := e.Get("a")
	b, _ := e.Get("b")
	if !almostEqual(a, 0.5) {
		t.Fatalf("a after tick = %v, want 0.5", a)
	}
	if !almostEqual(b, 0.4) {
		t.Fatalf("b after tick = %v, want 0.4", b)
	}
}

func TestEngine_GetUndefined(t *testing.T) {
	e := NewEngine(0)
	if _, ok := e.Get("missing"); ok {
		t.Fatalf("Get on an unset name should report ok=false")
	}
}
