package stdlib

import (
	"fmt"

	"github.com/prism-lang/prism/internal/value"
)

// LLMQueryStub is the default `llm.query` host function. It never
// calls a real model: an embedder that wants actual LLM-backed
// `await llm.query(...)` calls registers its own HostFunction named
// "llm.query" in its place, implementing a real HTTP client outside
// this module. The stub exists so programs written against the
// language can be lexed, parsed, and evaluated end to end without an
// embedder present, producing a fixed low-confidence placeholder
// response.
type LLMQueryStub struct{}

func (LLMQueryStub) Name() string { return "llm.query" }
func (LLMQueryStub) Arity() int   { return 1 }

func (LLMQueryStub) Invoke(args []value.Value) (value.Value, error) {
	prompt := args[0]
	if prompt.Kind != value.StringKind {
		return value.Nil, fmt.Errorf("llm.query: prompt must be a string")
	}
	return value.String(fmt.Sprintf("[stub response to: %s]", prompt.Str)).WithConfidence(0.1), nil
}
