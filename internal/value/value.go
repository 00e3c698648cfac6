// Package value defines Prism's runtime value representation: every
// value carries, alongside its ordinary data, a confidence score in
// [0,1] and an optional context tag naming where that confidence came
// from.
package value

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Kind discriminates the Value variants.
type Kind int

const (
	NilKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ListKind
	MapKind
	FunctionKind
	HostFunctionKind
	ModuleKind
)

var kindNames = map[Kind]string{
	NilKind:          "nil",
	BoolKind:         "bool",
	NumberKind:       "number",
	StringKind:       "string",
	ListKind:         "list",
	MapKind:          "map",
	FunctionKind:     "function",
	HostFunctionKind: "host_function",
	ModuleKind:       "module",
}

func (k Kind) String() string { return kindNames[k] }

// Callable is implemented by Function and HostFunction so the
// evaluator can dispatch a CallExpression uniformly.
type Callable interface {
	Arity() int
	Name() string
}

// Value is a single immutable Prism runtime value. Composite
// payloads (List, Map entries, Function closures) may themselves
// hold Values with independent confidence; the parent's Confidence
// is the score of the reference to that payload, not a reduction
// over its contents.
type Value struct {
	Kind       Kind
	Confidence float64
	Context    *string

	Bool   bool
	Number float64
	Str    string
	List   []Value
	Map    *OrderedMap
	Fn     *Function
	Host   HostFunction
	Module *Module
}

// clamp confines a composed confidence score to [0,1]. Used by value
// constructors and by anything deriving confidence through
// computation; explicit engine-stored values are instead rejected
// out of range rather than clamped (internal/confidence.Engine.Set).
func clamp(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Nil is the canonical nil value at full confidence.
var Nil = Value{Kind: NilKind, Confidence: 1.0}

func Bool(b bool) Value { return Value{Kind: BoolKind, Bool: b, Confidence: 1.0} }

func Number(n float64) Value { return Value{Kind: NumberKind, Number: n, Confidence: 1.0} }

func String(s string) Value { return Value{Kind: StringKind, Str: s, Confidence: 1.0} }

func List(items []Value) Value { return Value{Kind: ListKind, List: items, Confidence: 1.0} }

func Map(m *OrderedMap) Value { return Value{Kind: MapKind, Map: m, Confidence: 1.0} }

func Fn(f *Function) Value { return Value{Kind: FunctionKind, Fn: f, Confidence: 1.0} }

func HostFn(h HostFunction) Value { return Value{Kind: HostFunctionKind, Host: h, Confidence: 1.0} }

func ModuleValue(m *Module) Value { return Value{Kind: ModuleKind, Module: m, Confidence: 1.0} }

// WithConfidence returns a copy of v carrying confidence c, clamped
// to [0,1]. Used when composing values through confidence-flow and
// function-return paths.
func (v Value) WithConfidence(c float64) Value {
	v.Confidence = clamp(c)
	return v
}

// WithContext returns a copy of v tagged with the given context name.
func (v Value) WithContext(ctx string) Value {
	v.Context = &ctx
	return v
}

// Truthy implements Prism's truthiness rule: nil and false are
// falsy, everything else (including zero and empty string) is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case NilKind:
		return false
	case BoolKind:
		return v.Bool
	default:
		return true
	}
}

// Equal compares two values by kind, payload, AND metadata: two
// numerically equal values with different confidence are distinct,
// per the data model's equality rule. SameValue ignores metadata for
// call sites (match patterns, map/list membership) that only care
// about the underlying payload.
func (v Value) Equal(other Value) bool {
	if v.Confidence != other.Confidence {
		return false
	}
	if (v.Context == nil) != (other.Context == nil) {
		return false
	}
	if v.Context != nil && *v.Context != *other.Context {
		return false
	}
	return v.SameValue(other)
}

// SameValue compares two values by kind and payload only, ignoring
// confidence and context metadata.
func (v Value) SameValue(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case NilKind:
		return true
	case BoolKind:
		return v.Bool == other.Bool
	case NumberKind:
		return v.Number == other.Number
	case StringKind:
		return v.Str == other.Str
	case ListKind:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	case MapKind:
		return v.Map.Equal(other.Map)
	case FunctionKind:
		return v.Fn == other.Fn
	case HostFunctionKind:
		return v.Host != nil && other.Host != nil && v.Host.Name() == other.Host.Name()
	case ModuleKind:
		return v.Module == other.Module
	default:
		return false
	}
}

// String renders v for display, eliding the confidence suffix when
// it is exactly 1.0 (the common, uninteresting case).
func (v Value) String() string {
	body := v.displayBody()
	if v.Confidence == 1.0 {
		return body
	}
	suffix := fmt.Sprintf(" ~%.2f", v.Confidence)
	if v.Context != nil {
		suffix += fmt.Sprintf(" @%q", *v.Context)
	}
	return body + suffix
}

func (v Value) displayBody() string {
	switch v.Kind {
	case NilKind:
		return "nil"
	case BoolKind:
		return fmt.Sprintf("%t", v.Bool)
	case NumberKind:
		return formatNumber(v.Number)
	case StringKind:
		return v.Str
	case ListKind:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case MapKind:
		return v.Map.String()
	case FunctionKind:
		return "<fn " + v.Fn.Name() + ">"
	case HostFunctionKind:
		return "<host_fn " + v.Host.Name() + ">"
	case ModuleKind:
		return "<module " + v.Module.Name + ">"
	default:
		return "<unknown>"
	}
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) {
		return fmt.Sprintf("%.0f", n)
	}
	return fmt.Sprintf("%g", n)
}

// OrderedMap is a string-keyed map that preserves insertion order for
// iteration (Keys), mirroring the teacher's convention for map-shaped
// Variant values. String renders entries sorted by key, not in
// insertion order.
type OrderedMap struct {
	keys   []string
	values map[string]Value
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]Value)}
}

func (m *OrderedMap) Set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *OrderedMap) Len() int { return len(m.keys) }

func (m *OrderedMap) Equal(other *OrderedMap) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Len() != other.Len() {
		return false
	}
	for k, v := range m.values {
		ov, ok := other.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (m *OrderedMap) String() string {
	keys := append([]string(nil), m.keys...)
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, _ := m.values[k]
		parts[i] = k + ": " + v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Function is a user-defined Prism closure.
type Function struct {
	FnName     string
	Params     []string
	Async      bool
	Body       any // *ast.BlockStatement, kept as any to avoid import cycle
	Closure    any // *runtime.Environment, same reason
}

func (f *Function) Arity() int   { return len(f.Params) }
func (f *Function) Name() string {
	if f.FnName == "" {
		return "anonymous"
	}
	return f.FnName
}

// HostFunction is the embedder extension point: any external
// capability (verification sources, LLM calls, math/string helpers)
// implements this to be callable from Prism code via a normal call
// expression or `await`.
type HostFunction interface {
	Name() string
	Arity() int
	Invoke(args []Value) (Value, error)
}

// Module is a registered, already-evaluated module's export table.
// DeclaredConfidence is the module's own `~> N` annotation (1.0 if
// none was given) and is multiplied into every export exactly once,
// at import resolution.
type Module struct {
	Name               string
	Exports            *OrderedMap
	DeclaredConfidence float64
}
