package stdlib

import (
	"errors"
	"testing"

	"github.com/prism-lang/prism/internal/value"
)

func TestVerifySource_RegisterAndInvoke(t *testing.T) {
	v := NewVerifySource()
	v.Register("wiki", func(subject value.Value) (float64, error) { return 0.85, nil })

	result, err := v.Invoke([]value.Value{value.String("fever"), value.String("wiki")})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.Str != "fever" {
		t.Fatalf("subject payload changed: got %q", result.Str)
	}
	if result.Confidence != 0.85 {
		t.Fatalf("confidence = %v, want 0.85", result.Confidence)
	}
}

func TestVerifySource_UnknownSourceErrors(t *testing.T) {
	v := NewVerifySource()
	if _, err := v.Invoke([]value.Value{value.Number(1), value.String("missing")}); err == nil {
		t.Fatalf("expected an error for an unregistered source")
	}
}

func TestVerifySource_NonStringSourceArgumentErrors(t *testing.T) {
	v := NewVerifySource()
	if _, err := v.Invoke([]value.Value{value.Number(1), value.Number(2)}); err == nil {
		t.Fatalf("expected an error when the source argument isn't a string")
	}
}

func TestVerifySource_ScoringErrorIsWrapped(t *testing.T) {
	v := NewVerifySource()
	boom := errors.New("lookup failed")
	v.Register("flaky", func(subject value.Value) (float64, error) { return 0, boom })

	_, err := v.Invoke([]value.Value{value.Number(1), value.String("flaky")})
	if err == nil {
		t.Fatalf("expected an error to propagate from the scoring function")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error to unwrap to the original, got %v", err)
	}
}

func TestVerifySource_NameAndArity(t *testing.T) {
	v := NewVerifySource()
	if v.Name() != "verify" {
		t.Errorf("Name() = %q, want verify", v.Name())
	}
	if v.Arity() != 2 {
		t.Errorf("Arity() = %d, want 2", v.Arity())
	}
}
