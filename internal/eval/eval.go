// Package eval implements Prism's tree-walking evaluator: statement
// and expression dispatch, confidence propagation through `~>`,
// `uncertain if`/`verify against`/`try confidence`/`match` semantics,
// and the HostFunction call protocol used for `await` and for
// embedder-registered capabilities.
package eval

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prism-lang/prism/internal/ast"
	"github.com/prism-lang/prism/internal/confidence"
	prismerrors "github.com/prism-lang/prism/internal/errors"
	"github.com/prism-lang/prism/internal/lexer"
	"github.com/prism-lang/prism/internal/parser"
	"github.com/prism-lang/prism/internal/runtime"
	"github.com/prism-lang/prism/internal/token"
	"github.com/prism-lang/prism/internal/value"
)

// Option configures an Evaluator at construction time, following the
// lexer and parser's functional-options convention.
type Option func(*Evaluator)

// WithLogger installs a logrus logger for host-function dispatch and
// context-entry tracing, both logged at debug level; confidence.tick
// is not logged. Without this option, New uses a logrus logger at
// warn level writing to stderr.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// WithVerificationThreshold sets the minimum source score for
// `verify against`: a lower score fails the statement with
// VerificationFailed. `try confidence` also falls back to it when the
// statement carries no explicit `below threshold N`.
func WithVerificationThreshold(t float64) Option {
	return func(e *Evaluator) { e.verificationThreshold = t }
}

// WithDecayRate sets the shared decay rate for the confidence engine
// backing named confidence variables.
func WithDecayRate(rate float64) Option {
	return func(e *Evaluator) { e.decayRate = rate }
}

// WithMaxRecursionDepth bounds call-stack depth so a runaway
// recursive Prism function fails with a PrismError instead of
// crashing the host process.
func WithMaxRecursionDepth(n int) Option {
	return func(e *Evaluator) { e.maxDepth = n }
}

// Evaluator walks a parsed Program, maintaining the variable
// environment, confidence context stack, module registry, and the
// set of host functions available to `await` and direct calls.
type Evaluator struct {
	globals *runtime.Environment
	ctx     *runtime.ContextStack
	modules *runtime.ModuleRegistry
	engine  *confidence.Engine
	hosts   map[string]value.HostFunction

	log                    *logrus.Logger
	verificationThreshold  float64
	decayRate              float64
	maxDepth               int
	depth                  int
}

// control signals unwound via panic/recover within a single Eval
// call tree, the teacher's approach for return/break/continue.
type returnSignal struct{ value value.Value }
type breakSignal struct{}
type continueSignal struct{}

// New creates an Evaluator with its own global scope, context stack,
// and module registry.
func New(opts ...Option) *Evaluator {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	e := &Evaluator{
		globals:               runtime.NewEnvironment(),
		ctx:                   runtime.NewContextStack(),
		modules:               runtime.NewModuleRegistry(),
		hosts:                 make(map[string]value.HostFunction),
		log:                   log,
		verificationThreshold: 0.5,
		decayRate:             0.0,
		maxDepth:              1000,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.engine = confidence.NewEngine(e.decayRate)
	e.registerConfidenceEngineFunctions()
	return e
}

// registerConfidenceEngineFunctions wires the stateful confidence
// Engine (spec.md §4.5 Component G) into Prism as the confidence.*
// host namespace, the same way RegisterHostFunction exposes any other
// embedder capability: confidence.set/get track a named, decaying
// confidence value across the life of the evaluation, and
// confidence.tick advances every tracked variable by one decay step
// at the evaluator's configured decay rate.
func (e *Evaluator) registerConfidenceEngineFunctions() {
	e.RegisterHostFunction(engineSetFn{e.engine})
	e.RegisterHostFunction(engineGetFn{e.engine})
	e.RegisterHostFunction(engineTickFn{e.engine})
}

type engineSetFn struct{ engine *confidence.Engine }

func (engineSetFn) Name() string { return "confidence.set" }
func (engineSetFn) Arity() int   { return 2 }

func (f engineSetFn) Invoke(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.StringKind {
		return value.Nil, fmt.Errorf("confidence.set: name must be a string")
	}
	if args[1].Kind != value.NumberKind {
		return value.Nil, fmt.Errorf("confidence.set: value must be a number")
	}
	if !f.engine.Set(args[0].Str, args[1].Number) {
		return value.Nil, fmt.Errorf("confidence.set: %v out of range [0,1]", args[1].Number)
	}
	return value.Number(args[1].Number).WithConfidence(args[1].Number), nil
}

type engineGetFn struct{ engine *confidence.Engine }

func (engineGetFn) Name() string { return "confidence.get" }
func (engineGetFn) Arity() int   { return 1 }

func (f engineGetFn) Invoke(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.StringKind {
		return value.Nil, fmt.Errorf("confidence.get: name must be a string")
	}
	v, ok := f.engine.Get(args[0].Str)
	if !ok {
		return value.Nil, fmt.Errorf("confidence.get: %q is not tracked", args[0].Str)
	}
	return value.Number(v).WithConfidence(v), nil
}

type engineTickFn struct{ engine *confidence.Engine }

func (engineTickFn) Name() string { return "confidence.tick" }
func (engineTickFn) Arity() int   { return 0 }

func (f engineTickFn) Invoke(args []value.Value) (value.Value, error) {
	f.engine.Tick()
	return value.Nil, nil
}

// RegisterHostFunction makes a host capability callable from Prism
// code by name, either via a normal call expression or `await`. A
// dotted name (`math.sqrt`) is exposed as a member lookup on a
// namespace map (`math.sqrt(x)`); a bare name is bound directly.
func (e *Evaluator) RegisterHostFunction(h value.HostFunction) {
	name := h.Name()
	e.hosts[name] = h

	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 1 {
		e.globals.Define(name, value.HostFn(h))
		return
	}

	nsName, leaf := parts[0], parts[1]
	var ns *value.OrderedMap
	if existing, ok := e.globals.Get(nsName); ok && existing.Kind == value.MapKind {
		ns = existing.Map
	} else {
		ns = value.NewOrderedMap()
		e.globals.Define(nsName, value.Map(ns))
	}
	ns.Set(leaf, value.HostFn(h))
}

// Globals exposes the top-level environment, for an embedder that
// wants to inject bindings before running a program.
func (e *Evaluator) Globals() *runtime.Environment { return e.globals }

// TransitionContext implements `context transition A to B with
// confidence c` (spec.md §4.6): pop the current top frame, named
// from, and push one named to at confidence, in a single step. There
// is no Prism surface grammar for this — §4.1's keyword list is
// closed and does not include transition/to/with — so this is an
// embedder-level operation on the evaluator's ContextStack, the way
// RegisterHostFunction is an embedder-level operation on its globals.
func (e *Evaluator) TransitionContext(from, to string, confidence float64) error {
	if _, ok := e.ctx.Transition(from, to, confidence); !ok {
		return prismerrors.New(prismerrors.InvalidContextNesting, token.Position{}, "cannot transition context %q to %q at confidence %.3f", from, to, confidence)
	}
	return nil
}

// Evaluate is the embedder entrypoint spec.md §6 describes:
// `evaluate(evaluator, source)` lexes, parses, and executes source,
// returning the value of its last statement. Unlike Run, which
// assumes it has already been handed a well-formed Program, Evaluate
// refuses to execute anything if lexing or parsing left accumulated
// errors, so a source file that failed to parse can never reach the
// evaluator's statement dispatch (where a syntax error's placeholder
// nil node would otherwise have to be handled defensively).
func (e *Evaluator) Evaluate(source string) (value.Value, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if lexErrs := l.Errors(); len(lexErrs) > 0 {
		msgs := make([]string, len(lexErrs))
		for i, le := range lexErrs {
			msgs[i] = le.Error()
		}
		return value.Nil, prismerrors.New(prismerrors.Lexical, lexErrs[0].Pos, "%s", strings.Join(msgs, "; "))
	}
	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		msgs := make([]string, len(parseErrs))
		for i, pe := range parseErrs {
			msgs[i] = pe.Error()
		}
		return value.Nil, prismerrors.New(parseErrs[0].Kind, parseErrs[0].Pos, "%s", strings.Join(msgs, "; "))
	}

	return e.Run(program)
}

// Run evaluates every top-level statement in program against the
// global environment and returns the value of the last top-level
// statement, if any (a `let` yields the value it binds). Run trusts program to be well-formed; call
// Evaluate instead when source hasn't already been checked for
// lex/parse errors.
func (e *Evaluator) Run(program *ast.Program) (value.Value, error) {
	var last value.Value
	for _, stmt := range program.Statements {
		v, err := e.evalStatement(stmt, e.globals)
		if err != nil {
			return value.Nil, err
		}
		last = v
	}
	return last, nil
}

func (e *Evaluator) evalStatement(stmt ast.Statement, env *runtime.Environment) (result value.Value, err error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return e.evalExpression(s.Expr, env)
	case *ast.LetStatement:
		return e.evalLetStatement(s, env)
	case *ast.AssignStatement:
		return e.evalAssignStatement(s, env)
	case *ast.BlockStatement:
		return e.evalBlock(s, env)
	case *ast.IfStatement:
		return e.evalIfStatement(s, env)
	case *ast.UncertainIfStatement:
		return e.evalUncertainIfStatement(s, env)
	case *ast.WhileStatement:
		return e.evalWhileStatement(s, env)
	case *ast.ForStatement:
		return e.evalForStatement(s, env)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(s, env)
	case *ast.BreakStatement:
		panic(breakSignal{})
	case *ast.ContinueStatement:
		panic(continueSignal{})
	case *ast.ThrowStatement:
		return e.evalThrowStatement(s, env)
	case *ast.VerifyAgainstStatement:
		return e.evalVerifyAgainstStatement(s, env)
	case *ast.TryConfidenceStatement:
		return e.evalTryConfidenceStatement(s, env)
	case *ast.TryCatchStatement:
		return e.evalTryCatchStatement(s, env)
	case *ast.ContextStatement:
		return e.evalContextStatement(s, env)
	case *ast.FunctionDecl:
		return e.evalFunctionDecl(s, env)
	case *ast.ModuleDecl:
		return e.evalModuleDecl(s, env)
	case *ast.ImportDecl:
		return e.evalImportDecl(s, env)
	default:
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, stmt.Pos(), "unhandled statement type %T", stmt)
	}
}

func (e *Evaluator) evalBlock(block *ast.BlockStatement, env *runtime.Environment) (value.Value, error) {
	inner := runtime.NewEnclosedEnvironment(env)
	var last value.Value
	for _, stmt := range block.Statements {
		v, err := e.evalStatement(stmt, inner)
		if err != nil {
			return value.Nil, err
		}
		last = v
	}
	return last, nil
}

func (e *Evaluator) evalLetStatement(s *ast.LetStatement, env *runtime.Environment) (value.Value, error) {
	v, err := e.evalExpression(s.Value, env)
	if err != nil {
		return value.Nil, err
	}
	if s.Confidence != nil {
		v = v.WithConfidence(s.Confidence.Value)
	}
	if s.Context != nil {
		v = v.WithContext(*s.Context)
	}
	env.Define(s.Name.Name, v)
	return v, nil
}

func (e *Evaluator) evalAssignStatement(s *ast.AssignStatement, env *runtime.Environment) (value.Value, error) {
	v, err := e.evalExpression(s.Value, env)
	if err != nil {
		return value.Nil, err
	}
	if !env.Assign(s.Name.Name, v) {
		return value.Nil, prismerrors.New(prismerrors.UndefinedVariable, s.Pos(), "undefined variable %q", s.Name.Name)
	}
	return v, nil
}

func (e *Evaluator) evalIfStatement(s *ast.IfStatement, env *runtime.Environment) (value.Value, error) {
	cond, err := e.evalExpression(s.Condition, env)
	if err != nil {
		return value.Nil, err
	}
	if cond.Truthy() {
		return e.evalBlock(s.Consequence, env)
	}
	if s.Alternative != nil {
		return e.evalStatement(s.Alternative, env)
	}
	return value.Nil, nil
}

// evalUncertainIfStatement implements `uncertain if`: the primary
// predicate is evaluated as an ordinary boolean. If true, Consequence
// runs. If false and a medium arm exists with its own predicate, that
// predicate decides whether MediumBranch runs; a medium arm with no
// predicate is taken unconditionally once the primary predicate is
// false. Otherwise LowBranch runs if present, else Alternative, else
// the result is Nil.
func (e *Evaluator) evalUncertainIfStatement(s *ast.UncertainIfStatement, env *runtime.Environment) (value.Value, error) {
	cond, err := e.evalExpression(s.Condition, env)
	if err != nil {
		return value.Nil, err
	}
	if cond.Truthy() {
		return e.evalBlock(s.Consequence, env)
	}

	if s.MediumBranch != nil {
		if s.MediumCondition != nil {
			medCond, err := e.evalExpression(s.MediumCondition, env)
			if err != nil {
				return value.Nil, err
			}
			if medCond.Truthy() {
				return e.evalBlock(s.MediumBranch, env)
			}
		} else {
			return e.evalBlock(s.MediumBranch, env)
		}
	}
	if s.LowBranch != nil {
		return e.evalBlock(s.LowBranch, env)
	}
	if s.Alternative != nil {
		return e.evalBlock(s.Alternative, env)
	}
	return value.Nil, nil
}

func (e *Evaluator) evalWhileStatement(s *ast.WhileStatement, env *runtime.Environment) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(breakSignal); ok {
				return
			}
			panic(r)
		}
	}()

	for {
		cond, cerr := e.evalExpression(s.Condition, env)
		if cerr != nil {
			return value.Nil, cerr
		}
		if !cond.Truthy() {
			break
		}
		if result, err = e.evalLoopBody(s.Body, env); err != nil {
			return value.Nil, err
		}
	}
	return result, nil
}

func (e *Evaluator) evalForStatement(s *ast.ForStatement, env *runtime.Environment) (result value.Value, err error) {
	iterable, err := e.evalExpression(s.Iterable, env)
	if err != nil {
		return value.Nil, err
	}
	if iterable.Kind != value.ListKind {
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, s.Pos(), "for-in requires a list, got %s", iterable.Kind)
	}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(breakSignal); ok {
				return
			}
			panic(r)
		}
	}()

	for _, item := range iterable.List {
		loopEnv := runtime.NewEnclosedEnvironment(env)
		loopEnv.Define(s.Variable.Name, item)
		if result, err = e.evalLoopBody(s.Body, loopEnv); err != nil {
			return value.Nil, err
		}
	}
	return result, nil
}

func (e *Evaluator) evalLoopBody(body *ast.BlockStatement, env *runtime.Environment) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(continueSignal); ok {
				return
			}
			panic(r)
		}
	}()
	return e.evalBlock(body, env)
}

func (e *Evaluator) evalReturnStatement(s *ast.ReturnStatement, env *runtime.Environment) (value.Value, error) {
	var v value.Value
	if s.Value != nil {
		var err error
		v, err = e.evalExpression(s.Value, env)
		if err != nil {
			return value.Nil, err
		}
	}
	panic(returnSignal{value: v})
}

func (e *Evaluator) evalThrowStatement(s *ast.ThrowStatement, env *runtime.Environment) (value.Value, error) {
	v, err := e.evalExpression(s.Value, env)
	if err != nil {
		return value.Nil, err
	}
	return value.Nil, prismerrors.NewUserError(s.Pos(), v)
}

// evalVerifyAgainstStatement evaluates Body exactly once, scores the
// resulting value against each named source via the registered
// `verify` host function, and multiplies in the minimum of those
// scores. A score below the configured verification threshold fails
// the whole statement with VerificationFailed naming the offending
// source; a source with no registered scorer is HostCallFailed rather
// than a silent zero.
func (e *Evaluator) evalVerifyAgainstStatement(s *ast.VerifyAgainstStatement, env *runtime.Environment) (value.Value, error) {
	inner, err := e.evalBlock(s.Body, env)
	if err != nil {
		return value.Nil, err
	}

	host, ok := e.hosts["verify"]
	if !ok {
		return value.Nil, prismerrors.NewHostCallFailed(s.Pos(), "no verify host function registered")
	}

	minScore := 1.0
	failingSource := ""
	for _, source := range s.Sources {
		corrID := uuid.NewString()
		e.log.WithFields(logrus.Fields{"source": source, "correlation_id": corrID}).Debug("dispatching verify host call")
		scored, err := host.Invoke([]value.Value{inner, value.String(source)})
		if err != nil {
			failure := prismerrors.NewHostCallFailed(s.Pos(), "verify against %q failed: %v", source, err)
			failure.CorrelationID = corrID
			return value.Nil, failure
		}
		if scored.Confidence < minScore {
			minScore = scored.Confidence
			failingSource = source
		}
	}

	result := inner.WithConfidence(confidence.Combine(inner.Confidence, minScore))
	if minScore < e.verificationThreshold {
		return value.Nil, prismerrors.New(prismerrors.VerificationFailed, s.Pos(), "source %q scored %.3f, below threshold %.3f", failingSource, minScore, e.verificationThreshold)
	}
	return result, nil
}

// evalTryConfidenceStatement runs Body; if it fails with a
// VerificationFailed error (an "uncertain" outcome) and an
// UncertainBranch exists, that branch runs instead; any other error
// propagates. If Body's
// resulting value's confidence is below Threshold (explicit or the
// evaluator default), BelowBranch runs.
func (e *Evaluator) evalTryConfidenceStatement(s *ast.TryConfidenceStatement, env *runtime.Environment) (result value.Value, err error) {
	threshold := e.verificationThreshold
	if s.Threshold != nil {
		threshold = *s.Threshold
	}

	result, err = e.evalBlock(s.Body, env)
	if err != nil {
		if s.UncertainBranch != nil && prismerrors.Is(err, prismerrors.VerificationFailed) {
			return e.evalBlock(s.UncertainBranch, env)
		}
		return value.Nil, err
	}

	if result.Confidence < threshold && s.BelowBranch != nil {
		return e.evalBlock(s.BelowBranch, env)
	}
	return result, nil
}

// evalTryCatchStatement runs Body; any error unwinding out of it binds
// to Name in a fresh child environment and runs Handler. A UserError
// binds its original thrown Value; any other PrismError binds a
// String carrying its message, so catch bodies never see a bare Go
// error. Parser/control-flow panics (break/continue) still propagate
// unchanged, matching the teacher's block-exit convention.
func (e *Evaluator) evalTryCatchStatement(s *ast.TryCatchStatement, env *runtime.Environment) (value.Value, error) {
	result, err := e.evalBlock(s.Body, env)
	if err == nil {
		return result, nil
	}

	var caught value.Value
	if pe, ok := err.(*prismerrors.PrismError); ok && pe.Kind == prismerrors.UserError {
		caught = pe.Value
	} else if ok {
		caught = value.String(pe.Message)
	} else {
		caught = value.String(err.Error())
	}

	catchEnv := runtime.NewEnclosedEnvironment(env)
	catchEnv.Define(s.Name.Name, caught)
	return e.evalBlock(s.Handler, catchEnv)
}

// evalContextStatement pushes a named confidence context, enforcing
// the monotone-non-increasing invariant, runs Body, then pops.
func (e *Evaluator) evalContextStatement(s *ast.ContextStatement, env *runtime.Environment) (value.Value, error) {
	factor := 1.0
	if s.Confidence != nil {
		factor = s.Confidence.Value
	}
	frame, ok := e.ctx.Push(s.Name, factor)
	if !ok {
		return value.Nil, prismerrors.New(prismerrors.InvalidContextNesting, s.Pos(), "context %q confidence would exceed parent", s.Name)
	}
	defer e.ctx.Pop()

	e.log.WithFields(logrus.Fields{"context": s.Name, "confidence": frame.Confidence}).Debug("entering context")

	result, err := e.evalBlock(s.Body, env)
	if err != nil {
		return value.Nil, err
	}
	return result.WithConfidence(result.Confidence * frame.Confidence), nil
}

func (e *Evaluator) evalFunctionDecl(s *ast.FunctionDecl, env *runtime.Environment) (value.Value, error) {
	fn := e.makeFunction(s.Name.Name, s.Function, env)
	env.Define(s.Name.Name, fn)
	return fn, nil
}

func (e *Evaluator) makeFunction(name string, lit *ast.FunctionLiteral, env *runtime.Environment) value.Value {
	params := make([]string, len(lit.Parameters))
	for i, p := range lit.Parameters {
		params[i] = p.Name
	}
	fn := value.Fn(&value.Function{
		FnName:  name,
		Params:  params,
		Async:   lit.Async,
		Body:    lit.Body,
		Closure: env,
	})
	if lit.Confidence != nil {
		fn = fn.WithConfidence(lit.Confidence.Value)
	}
	return fn
}

// evalModuleDecl evaluates every statement in the module body in its
// own scope chained to globals, collects the bindings written with an
// `export` modifier into an export table, and registers the module by
// name. A module-body statement without `export` still runs (for its
// side effects and for later statements in the same body to see) but
// is module-private: it never reaches the export table and is
// unreachable from `import`.
func (e *Evaluator) evalModuleDecl(s *ast.ModuleDecl, env *runtime.Environment) (value.Value, error) {
	modEnv := runtime.NewEnclosedEnvironment(env)
	for _, stmt := range s.Body {
		if _, err := e.evalStatement(stmt, modEnv); err != nil {
			return value.Nil, err
		}
	}

	exports := value.NewOrderedMap()
	for _, stmt := range s.Body {
		name, exported := exportedName(stmt)
		if !exported {
			continue
		}
		if v, ok := modEnv.Get(name); ok {
			exports.Set(name, v)
		}
	}

	declaredConfidence := 1.0
	if s.Confidence != nil {
		declaredConfidence = s.Confidence.Value
	}
	mod := &value.Module{Name: s.Name, Exports: exports, DeclaredConfidence: declaredConfidence}
	if err := e.modules.Register(mod); err != nil {
		return value.Nil, err
	}
	return value.ModuleValue(mod), nil
}

// exportedName reports the binding name a module-body statement
// introduces and whether it was declared with `export`. Only `export
// let`/`export fn` populate a module's export table (spec.md §4.2
// scenario 4); a plain `let`/`fn` inside a module body is a
// module-private helper.
func exportedName(stmt ast.Statement) (string, bool) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		return s.Name.Name, s.Exported
	case *ast.FunctionDecl:
		return s.Name.Name, s.Exported
	default:
		return "", false
	}
}

func (e *Evaluator) evalImportDecl(s *ast.ImportDecl, env *runtime.Environment) (value.Value, error) {
	for _, name := range s.Names {
		v, err := e.modules.ResolveImport(s.Module, name)
		if err != nil {
			return value.Nil, err
		}
		bindName := name
		if alias, ok := s.Alias[name]; ok {
			bindName = alias
		}
		env.Define(bindName, v)
	}
	return value.Nil, nil
}

// ---- expressions ----

func (e *Evaluator) evalExpression(expr ast.Expression, env *runtime.Environment) (value.Value, error) {
	if expr == nil {
		// A nil Expression only reaches here from a statement the
		// parser failed to build (e.g. a syntax error recorded into
		// p.Errors() and an empty ExpressionStatement left in its
		// place). Evaluate refuses to run a program with outstanding
		// parse errors; this guard covers a caller that hands Run such
		// a program, or evaluates a single AST node directly.
		return value.Nil, prismerrors.New(prismerrors.Parse, token.Position{}, "cannot evaluate a nil expression (unparsed statement)")
	}
	switch x := expr.(type) {
	case *ast.Identifier:
		v, ok := env.Get(x.Name)
		if !ok {
			return value.Nil, prismerrors.New(prismerrors.UndefinedVariable, x.Pos(), "undefined variable %q", x.Name)
		}
		return v, nil
	case *ast.NumberLiteral:
		return value.Number(x.Value), nil
	case *ast.StringLiteral:
		return value.String(x.Value), nil
	case *ast.BoolLiteral:
		return value.Bool(x.Value), nil
	case *ast.NilLiteral:
		return value.Nil, nil
	case *ast.ListLiteral:
		return e.evalListLiteral(x, env)
	case *ast.MapLiteral:
		return e.evalMapLiteral(x, env)
	case *ast.BinaryExpression:
		return e.evalBinaryExpression(x, env)
	case *ast.UnaryExpression:
		return e.evalUnaryExpression(x, env)
	case *ast.ConfidenceFlowExpression:
		return e.evalConfidenceFlowExpression(x, env)
	case *ast.CallExpression:
		return e.evalCallExpression(x, env)
	case *ast.IndexExpression:
		return e.evalIndexExpression(x, env)
	case *ast.MemberExpression:
		return e.evalMemberExpression(x, env)
	case *ast.AwaitExpression:
		return e.evalAwaitExpression(x, env)
	case *ast.FunctionLiteral:
		return e.makeFunction("", x, env), nil
	case *ast.MatchExpression:
		return e.evalMatchExpression(x, env)
	default:
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, expr.Pos(), "unhandled expression type %T", expr)
	}
}

func (e *Evaluator) evalListLiteral(x *ast.ListLiteral, env *runtime.Environment) (value.Value, error) {
	items := make([]value.Value, len(x.Elements))
	for i, elem := range x.Elements {
		v, err := e.evalExpression(elem, env)
		if err != nil {
			return value.Nil, err
		}
		items[i] = v
	}
	return value.List(items), nil
}

func (e *Evaluator) evalMapLiteral(x *ast.MapLiteral, env *runtime.Environment) (value.Value, error) {
	m := value.NewOrderedMap()
	for i, keyExpr := range x.Keys {
		key, err := e.evalExpression(keyExpr, env)
		if err != nil {
			return value.Nil, err
		}
		val, err := e.evalExpression(x.Values[i], env)
		if err != nil {
			return value.Nil, err
		}
		if key.Kind != value.StringKind {
			return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "map keys must be strings")
		}
		m.Set(key.Str, val)
	}
	return value.Map(m), nil
}

func (e *Evaluator) evalUnaryExpression(x *ast.UnaryExpression, env *runtime.Environment) (value.Value, error) {
	operand, err := e.evalExpression(x.Operand, env)
	if err != nil {
		return value.Nil, err
	}
	switch x.Operator {
	case "-":
		if operand.Kind != value.NumberKind {
			return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "operator - requires a number")
		}
		return value.Number(-operand.Number).WithConfidence(operand.Confidence), nil
	case "!":
		return value.Bool(!operand.Truthy()).WithConfidence(operand.Confidence), nil
	default:
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "unknown unary operator %q", x.Operator)
	}
}

func (e *Evaluator) evalBinaryExpression(x *ast.BinaryExpression, env *runtime.Environment) (value.Value, error) {
	left, err := e.evalExpression(x.Left, env)
	if err != nil {
		return value.Nil, err
	}

	if x.Operator == "and" {
		if !left.Truthy() {
			return left, nil
		}
		right, err := e.evalExpression(x.Right, env)
		if err != nil {
			return value.Nil, err
		}
		return right.WithConfidence(confidence.Combine(left.Confidence, right.Confidence)), nil
	}
	if x.Operator == "or" {
		if left.Truthy() {
			return left, nil
		}
		return e.evalExpression(x.Right, env)
	}

	right, err := e.evalExpression(x.Right, env)
	if err != nil {
		return value.Nil, err
	}
	combined := confidence.Combine(left.Confidence, right.Confidence)

	switch x.Operator {
	case "+":
		return e.evalAdd(left, right, combined, x.Pos())
	case "-", "*", "/", "%":
		return e.evalArithmetic(x.Operator, left, right, combined, x.Pos())
	case "==":
		return value.Bool(left.Equal(right)).WithConfidence(combined), nil
	case "!=":
		return value.Bool(!left.Equal(right)).WithConfidence(combined), nil
	case "<", "<=", ">", ">=":
		return e.evalComparison(x.Operator, left, right, combined, x.Pos())
	default:
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "unknown binary operator %q", x.Operator)
	}
}

func (e *Evaluator) evalAdd(left, right value.Value, confidenceVal float64, pos token.Position) (value.Value, error) {
	if left.Kind == value.StringKind && right.Kind == value.StringKind {
		return value.String(left.Str + right.Str).WithConfidence(confidenceVal), nil
	}
	if left.Kind == value.NumberKind && right.Kind == value.NumberKind {
		return value.Number(left.Number + right.Number).WithConfidence(confidenceVal), nil
	}
	if left.Kind == value.ListKind && right.Kind == value.ListKind {
		combined := append(append([]value.Value{}, left.List...), right.List...)
		return value.List(combined).WithConfidence(confidenceVal), nil
	}
	return value.Nil, prismerrors.New(prismerrors.TypeMismatch, pos, "cannot add %s and %s", left.Kind, right.Kind)
}

func (e *Evaluator) evalArithmetic(op string, left, right value.Value, confidenceVal float64, pos token.Position) (value.Value, error) {
	if left.Kind != value.NumberKind || right.Kind != value.NumberKind {
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, pos, "operator %s requires numbers", op)
	}
	switch op {
	case "-":
		return value.Number(left.Number - right.Number).WithConfidence(confidenceVal), nil
	case "*":
		return value.Number(left.Number * right.Number).WithConfidence(confidenceVal), nil
	case "/":
		if right.Number == 0 {
			return value.Nil, prismerrors.New(prismerrors.DivisionByZero, pos, "division by zero")
		}
		return value.Number(left.Number / right.Number).WithConfidence(confidenceVal), nil
	case "%":
		if right.Number == 0 {
			return value.Nil, prismerrors.New(prismerrors.DivisionByZero, pos, "modulo by zero")
		}
		return value.Number(float64(int(left.Number) % int(right.Number))).WithConfidence(confidenceVal), nil
	default:
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, pos, "unknown arithmetic operator %q", op)
	}
}

func (e *Evaluator) evalComparison(op string, left, right value.Value, confidenceVal float64, pos token.Position) (value.Value, error) {
	if left.Kind != value.NumberKind || right.Kind != value.NumberKind {
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, pos, "operator %s requires numbers", op)
	}
	var result bool
	switch op {
	case "<":
		result = left.Number < right.Number
	case "<=":
		result = left.Number <= right.Number
	case ">":
		result = left.Number > right.Number
	case ">=":
		result = left.Number >= right.Number
	}
	return value.Bool(result).WithConfidence(confidenceVal), nil
}

// evalConfidenceFlowExpression implements `~>`: Left's value passes
// through unchanged except for its confidence, which is multiplied by
// Right's number (clamped to [0,1]) and by Right's own confidence.
// `a ~> b ~> c` is right-associative, so the Right of the outer
// expression is itself a ConfidenceFlowExpression whose own
// evaluation already folds c into b's confidence, and that confidence
// carries into the outer product.
func (e *Evaluator) evalConfidenceFlowExpression(x *ast.ConfidenceFlowExpression, env *runtime.Environment) (value.Value, error) {
	left, err := e.evalExpression(x.Left, env)
	if err != nil {
		return value.Nil, err
	}
	right, err := e.evalExpression(x.Right, env)
	if err != nil {
		return value.Nil, err
	}
	if right.Kind != value.NumberKind {
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "confidence flow factor must be a number, got %s", right.Kind)
	}
	factor := right.Number
	if factor < 0 {
		factor = 0
	} else if factor > 1 {
		factor = 1
	}
	return left.WithConfidence(left.Confidence * factor * right.Confidence), nil
}

func (e *Evaluator) evalIndexExpression(x *ast.IndexExpression, env *runtime.Environment) (value.Value, error) {
	coll, err := e.evalExpression(x.Collection, env)
	if err != nil {
		return value.Nil, err
	}
	idx, err := e.evalExpression(x.Index, env)
	if err != nil {
		return value.Nil, err
	}

	switch coll.Kind {
	case value.ListKind:
		if idx.Kind != value.NumberKind {
			return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "list index must be a number")
		}
		i := int(idx.Number)
		if i < 0 || i >= len(coll.List) {
			return value.Nil, prismerrors.New(prismerrors.IndexOutOfBounds, x.Pos(), "index %d out of bounds for list of length %d", i, len(coll.List))
		}
		return coll.List[i].WithConfidence(confidence.Combine(coll.Confidence, coll.List[i].Confidence)), nil
	case value.MapKind:
		if idx.Kind != value.StringKind {
			return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "map key must be a string")
		}
		v, ok := coll.Map.Get(idx.Str)
		if !ok {
			return value.Nil, prismerrors.New(prismerrors.UndefinedField, x.Pos(), "key %q not found", idx.Str)
		}
		return v, nil
	default:
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "cannot index %s", coll.Kind)
	}
}

func (e *Evaluator) evalMemberExpression(x *ast.MemberExpression, env *runtime.Environment) (value.Value, error) {
	obj, err := e.evalExpression(x.Object, env)
	if err != nil {
		return value.Nil, err
	}
	switch obj.Kind {
	case value.MapKind:
		v, ok := obj.Map.Get(x.Property)
		if !ok {
			return value.Nil, prismerrors.New(prismerrors.UndefinedField, x.Pos(), "field %q not found", x.Property)
		}
		return v, nil
	case value.ModuleKind:
		v, ok := obj.Module.Exports.Get(x.Property)
		if !ok {
			return value.Nil, prismerrors.New(prismerrors.ExportNotFound, x.Pos(), "export %q not found in module %s", x.Property, obj.Module.Name)
		}
		return v, nil
	default:
		return value.Nil, prismerrors.New(prismerrors.UndefinedField, x.Pos(), "cannot access field %q on %s", x.Property, obj.Kind)
	}
}

func (e *Evaluator) evalCallExpression(x *ast.CallExpression, env *runtime.Environment) (value.Value, error) {
	callee, err := e.evalExpression(x.Callee, env)
	if err != nil {
		return value.Nil, err
	}
	args := make([]value.Value, len(x.Arguments))
	for i, a := range x.Arguments {
		v, err := e.evalExpression(a, env)
		if err != nil {
			return value.Nil, err
		}
		args[i] = v
	}

	switch callee.Kind {
	case value.FunctionKind:
		scores := make([]float64, 0, len(args)+1)
		scores = append(scores, callee.Confidence)
		for _, a := range args {
			scores = append(scores, a.Confidence)
		}
		callConfidence := confidence.Combine(scores...)
		return e.callFunction(callee.Fn, args, callConfidence, x.Pos())
	case value.HostFunctionKind:
		return e.callHost(callee.Host, args, x.Pos())
	default:
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "cannot call value of kind %s", callee.Kind)
	}
}

// callFunction invokes fn, then composes the call's output confidence
// as conf(callee) · Π conf(arg_i) · conf(body_result) — except when
// the body's result is Nil, which always ties to confidence 1.0
// regardless of how uncertain the callee or arguments were.
func (e *Evaluator) callFunction(fn *value.Function, args []value.Value, callConfidence float64, pos token.Position) (result value.Value, err error) {
	if len(args) != fn.Arity() {
		return value.Nil, prismerrors.New(prismerrors.ArityError, pos, "function %s expects %d arguments, got %d", fn.Name(), fn.Arity(), len(args))
	}
	if e.depth >= e.maxDepth {
		return value.Nil, prismerrors.New(prismerrors.ArityError, pos, "maximum recursion depth %d exceeded", e.maxDepth)
	}

	closure, _ := fn.Closure.(*runtime.Environment)
	body, _ := fn.Body.(*ast.BlockStatement)
	callEnv := runtime.NewEnclosedEnvironment(closure)
	for i, param := range fn.Params {
		callEnv.Define(param, args[i])
	}

	e.depth++
	defer func() {
		e.depth--
		if r := recover(); r != nil {
			if sig, ok := r.(returnSignal); ok {
				result = composeCallResult(sig.value, callConfidence)
				err = nil
				return
			}
			panic(r)
		}
	}()

	bodyResult, err := e.evalBlock(body, callEnv)
	if err != nil {
		return value.Nil, err
	}
	return composeCallResult(bodyResult, callConfidence), nil
}

func composeCallResult(bodyResult value.Value, callConfidence float64) value.Value {
	if bodyResult.Kind == value.NilKind {
		return bodyResult.WithConfidence(1.0)
	}
	return bodyResult.WithConfidence(confidence.Combine(callConfidence, bodyResult.Confidence))
}

func (e *Evaluator) callHost(host value.HostFunction, args []value.Value, pos token.Position) (value.Value, error) {
	if len(args) != host.Arity() {
		return value.Nil, prismerrors.New(prismerrors.ArityError, pos, "host function %s expects %d arguments, got %d", host.Name(), host.Arity(), len(args))
	}
	corrID := uuid.NewString()
	e.log.WithFields(logrus.Fields{"host_function": host.Name(), "correlation_id": corrID}).Debug("dispatching host call")
	result, err := host.Invoke(args)
	if err != nil {
		failure := prismerrors.NewHostCallFailed(pos, "%s: %v", host.Name(), err)
		failure.CorrelationID = corrID
		return value.Nil, failure
	}
	return result, nil
}

// evalAwaitExpression models `await expr` as a synchronous call: the
// operand must be a call expression, which is evaluated exactly like
// a plain call (user-defined functions included); a host function's
// Invoke runs inline on this goroutine with no concurrency introduced
// by the evaluator.
func (e *Evaluator) evalAwaitExpression(x *ast.AwaitExpression, env *runtime.Environment) (value.Value, error) {
	call, ok := x.Call.(*ast.CallExpression)
	if !ok {
		return value.Nil, prismerrors.New(prismerrors.TypeMismatch, x.Pos(), "await requires a call expression")
	}
	return e.evalCallExpression(call, env)
}

func (e *Evaluator) evalMatchExpression(x *ast.MatchExpression, env *runtime.Environment) (value.Value, error) {
	subject, err := e.evalExpression(x.Subject, env)
	if err != nil {
		return value.Nil, err
	}

	for _, arm := range x.Arms {
		matched := false
		switch {
		case arm.Wildcard:
			matched = true
		case arm.RangeLow != nil:
			matched = subject.Confidence >= *arm.RangeLow && subject.Confidence <= *arm.RangeHigh
		default:
			v, err := e.evalExpression(arm.ValueMatch, env)
			if err != nil {
				return value.Nil, err
			}
			matched = subject.SameValue(v)
		}
		if matched {
			return e.evalExpression(arm.Body, env)
		}
	}
	return value.Nil, prismerrors.New(prismerrors.MatchExhaustion, x.Pos(), "no match arm satisfied value %s", subject.String())
}
