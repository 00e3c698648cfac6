package stdlib

import (
	"fmt"
	"strings"

	"github.com/prism-lang/prism/internal/value"
)

type stringUpper struct{}

func (stringUpper) Name() string { return "string.upper" }
func (stringUpper) Arity() int   { return 1 }
func (stringUpper) Invoke(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.StringKind {
		return value.Nil, fmt.Errorf("string.upper: argument must be a string")
	}
	return value.String(strings.ToUpper(args[0].Str)).WithConfidence(args[0].Confidence), nil
}

type stringLower struct{}

func (stringLower) Name() string { return "string.lower" }
func (stringLower) Arity() int   { return 1 }
func (stringLower) Invoke(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.StringKind {
		return value.Nil, fmt.Errorf("string.lower: argument must be a string")
	}
	return value.String(strings.ToLower(args[0].Str)).WithConfidence(args[0].Confidence), nil
}

type stringLen struct{}

func (stringLen) Name() string { return "string.len" }
func (stringLen) Arity() int   { return 1 }
func (stringLen) Invoke(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.StringKind {
		return value.Nil, fmt.Errorf("string.len: argument must be a string")
	}
	return value.Number(float64(len(args[0].Str))).WithConfidence(args[0].Confidence), nil
}

type stringContains struct{}

func (stringContains) Name() string { return "string.contains" }
func (stringContains) Arity() int   { return 2 }
func (stringContains) Invoke(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.StringKind || args[1].Kind != value.StringKind {
		return value.Nil, fmt.Errorf("string.contains: both arguments must be strings")
	}
	return value.Bool(strings.Contains(args[0].Str, args[1].Str)), nil
}

// StringFunctions returns the standard string.* host functions.
func StringFunctions() []value.HostFunction {
	return []value.HostFunction{
		stringUpper{},
		stringLower{},
		stringLen{},
		stringContains{},
	}
}
