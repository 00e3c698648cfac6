// Package stdlib provides the host functions shipped with the Prism
// evaluator itself: verification sources, an LLM-call stub, and
// small math/string helpers. Each concern gets its own file,
// following the split-by-concern convention of a builtins package
// with one file per topic rather than one per function.
package stdlib

import (
	"fmt"

	"github.com/prism-lang/prism/internal/value"
)

// VerifySource scores a subject value against a single named source
// of truth. It is the default implementation wired in as the
// `verify` host function unless an embedder replaces it.
type VerifySource struct {
	// Sources maps a source name (as passed in `verify against
	// ["name"]`) to a scoring function returning a confidence in
	// [0,1]. A subject looked up against an unregistered source name
	// causes Invoke itself to fail, which the evaluator turns into
	// HostCallFailed rather than assuming a zero score.
	Sources map[string]func(subject value.Value) (float64, error)
}

// NewVerifySource creates an empty registry of verification sources.
func NewVerifySource() *VerifySource {
	return &VerifySource{Sources: make(map[string]func(value.Value) (float64, error))}
}

// Register adds a named scoring function.
func (v *VerifySource) Register(name string, fn func(subject value.Value) (float64, error)) {
	v.Sources[name] = fn
}

func (v *VerifySource) Name() string { return "verify" }
func (v *VerifySource) Arity() int   { return 2 }

// Invoke expects (subject, sourceNameValue) and returns subject
// re-scored at the source's confidence.
func (v *VerifySource) Invoke(args []value.Value) (value.Value, error) {
	subject := args[0]
	sourceVal := args[1]
	if sourceVal.Kind != value.StringKind {
		return value.Nil, fmt.Errorf("verify: source argument must be a string")
	}
	fn, ok := v.Sources[sourceVal.Str]
	if !ok {
		return value.Nil, fmt.Errorf("verify: unknown source %q", sourceVal.Str)
	}
	score, err := fn(subject)
	if err != nil {
		return value.Nil, fmt.Errorf("verify: source %q errored: %w", sourceVal.Str, err)
	}
	return subject.WithConfidence(score), nil
}
