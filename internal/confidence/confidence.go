// Package confidence implements the pure arithmetic of combining and
// decaying confidence scores, plus a stateful Engine for named
// confidence variables that decay over time (exposed to Prism code by
// the evaluator as the confidence.set/get/tick host functions).
package confidence

import "math"

// Combine multiplies a set of confidence scores, the rule used
// whenever evaluation composes several confidence-bearing values into
// one (consecutive `~>` steps, function-call confidence). An empty
// input returns 0.0: nothing to combine carries no confidence at all,
// not full confidence.
func Combine(scores ...float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	result := 1.0
	for _, s := range scores {
		result *= s
	}
	return clamp(result)
}

// CombineWeighted computes a weighted average rather than a product,
// for aggregating independent verification sources where multiplying
// would be too punishing as source count grows.
func CombineWeighted(scores, weights []float64) float64 {
	if len(scores) == 0 || len(scores) != len(weights) {
		return 0
	}
	var sumWeighted, sumWeights float64
	for i, s := range scores {
		sumWeighted += s * weights[i]
		sumWeights += weights[i]
	}
	if sumWeights == 0 {
		return 0
	}
	return clamp(sumWeighted / sumWeights)
}

// Decay applies exponential decay to a confidence score over elapsed
// ticks at the given rate: result = score * (1-rate)^ticks.
func Decay(score, rate float64, ticks int) float64 {
	if ticks <= 0 {
		return clamp(score)
	}
	factor := math.Pow(1-rate, float64(ticks))
	return clamp(score * factor)
}

// Threshold reports whether score meets or exceeds the given minimum,
// the comparison backing `try confidence ... below threshold T`.
func Threshold(score, minimum float64) bool {
	return score >= minimum
}

func clamp(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Engine tracks a set of named confidence variables that share a
// decay rate and advance together on Tick, for contexts that model
// confidence eroding over the lifetime of a long-running evaluation
// (e.g. a conversation session's trust in accumulated state).
type Engine struct {
	decayRate float64
	vars      map[string]float64
}

// NewEngine creates an Engine with the given shared decay rate.
func NewEngine(decayRate float64) *Engine {
	return &Engine{decayRate: decayRate, vars: make(map[string]float64)}
}

// Set stores an explicit confidence value for name. Unlike value
// construction elsewhere in the runtime, the engine rejects
// out-of-range input instead of clamping it: a stored confidence
// variable is an explicit fact the embedder is asserting, and a
// value outside [0,1] is a caller bug worth surfacing rather than
// silently normalizing.
func (e *Engine) Set(name string, v float64) bool {
	if v < 0 || v > 1 {
		return false
	}
	e.vars[name] = v
	return true
}

// Get returns the current value of name and whether it is defined.
func (e *Engine) Get(name string) (float64, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Tick advances every tracked variable by one decay step.
func (e *Engine) Tick() {
	for name, v := range e.vars {
		e.vars[name] = Decay(v, e.decayRate, 1)
	}
}

// Names returns the set of currently tracked variable names.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	return names
}
