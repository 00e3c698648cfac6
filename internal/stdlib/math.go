package stdlib

import (
	"fmt"
	"math"

	"github.com/prism-lang/prism/internal/value"
)

// mathFn wraps a variadic-free, single-argument float64 function as
// a HostFunction, for the handful of math.* helpers that share this
// shape.
type mathFn struct {
	name string
	fn   func(float64) float64
}

func (m mathFn) Name() string { return m.name }
func (m mathFn) Arity() int   { return 1 }

func (m mathFn) Invoke(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.NumberKind {
		return value.Nil, fmt.Errorf("%s: argument must be a number", m.name)
	}
	return value.Number(m.fn(args[0].Number)).WithConfidence(args[0].Confidence), nil
}

// MathFunctions returns the standard math.* host functions:
// math.abs, math.floor, math.ceil, math.round, math.sqrt.
func MathFunctions() []value.HostFunction {
	return []value.HostFunction{
		mathFn{"math.abs", math.Abs},
		mathFn{"math.floor", math.Floor},
		mathFn{"math.ceil", math.Ceil},
		mathFn{"math.round", math.Round},
		mathFn{"math.sqrt", math.Sqrt},
	}
}
