package runtime

// ContextFrame is one entry on the ContextStack: a named scope that
// attenuates confidence for everything evaluated inside it.
type ContextFrame struct {
	Name       string
	Confidence float64
}

// ContextStack is a LIFO stack of named confidence contexts, pushed
// by `in context "name" ~ factor { ... }` blocks. The invariant it
// enforces is that confidence is monotone non-increasing as contexts
// nest: a child context's effective confidence is the product of its
// local factor and its parent's confidence, and can never exceed the
// parent's.
type ContextStack struct {
	frames []ContextFrame
}

// NewContextStack creates an empty stack; Current returns a synthetic
// top-level frame of confidence 1.0 when empty.
func NewContextStack() *ContextStack {
	return &ContextStack{}
}

// Current returns the top frame, or a full-confidence root frame if
// the stack is empty.
func (c *ContextStack) Current() ContextFrame {
	if len(c.frames) == 0 {
		return ContextFrame{Name: "", Confidence: 1.0}
	}
	return c.frames[len(c.frames)-1]
}

// Push computes the effective confidence of a new frame named name
// with local factor localConfidence, and pushes it if the invariant
// holds. It returns an error-shaped false when effective confidence
// would exceed the current top's confidence, which should never
// happen for a well-formed localConfidence in [0,1] but is checked
// explicitly because contexts can nest arbitrarily deep.
func (c *ContextStack) Push(name string, localConfidence float64) (ContextFrame, bool) {
	parent := c.Current()
	effective := localConfidence * parent.Confidence
	if effective > parent.Confidence {
		return ContextFrame{}, false
	}
	frame := ContextFrame{Name: name, Confidence: effective}
	c.frames = append(c.frames, frame)
	return frame, true
}

// Pop removes the top frame. Popping an empty stack is a no-op.
func (c *ContextStack) Pop() {
	if len(c.frames) == 0 {
		return
	}
	c.frames = c.frames[:len(c.frames)-1]
}

// Transition replaces the current top frame with one named to, at the
// given absolute confidence, as if the stack had popped from and
// pushed to in one step (`context transition A to B with confidence c`
// in spec.md §4.6). The invariant is checked against the frame newly
// exposed below the popped one, not the frame being replaced, since
// the whole point of a transition is to let confidence name a new
// stage without being bound by the stage it replaces. On invariant
// violation the stack is left unchanged and ok is false.
func (c *ContextStack) Transition(from, to string, confidence float64) (ContextFrame, bool) {
	if len(c.frames) == 0 {
		return ContextFrame{}, false
	}
	top := c.frames[len(c.frames)-1]
	if top.Name != from {
		return ContextFrame{}, false
	}
	popped := c.frames[:len(c.frames)-1]
	parentConfidence := 1.0
	if len(popped) > 0 {
		parentConfidence = popped[len(popped)-1].Confidence
	}
	if confidence > parentConfidence {
		return ContextFrame{}, false
	}
	frame := ContextFrame{Name: to, Confidence: confidence}
	c.frames = append(popped, frame)
	return frame, true
}

// Depth reports how many frames are currently nested.
func (c *ContextStack) Depth() int { return len(c.frames) }

// Names returns the stack of context names from outermost to
// innermost, for error messages and tracing.
func (c *ContextStack) Names() []string {
	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		out[i] = f.Name
	}
	return out
}
