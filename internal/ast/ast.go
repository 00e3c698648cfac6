// Package ast defines the syntax tree Prism's parser produces and its
// evaluator walks: expressions, statements, and the confidence- and
// context-aware forms layered on top of an otherwise ordinary
// dynamic-language grammar.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/prism-lang/prism/internal/token"
)

// Node is the root of every AST type: something that came from a
// token and can render itself back out for debugging and snapshots.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Position
}

// Expression is a Node that produces a value when evaluated.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a Node executed for effect.
type Statement interface {
	Node
	statementNode()
}

// Program is the root node of a parsed source file.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) == 0 {
		return ""
	}
	return p.Statements[0].TokenLiteral()
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) == 0 {
		return token.Position{Line: 1, Column: 1}
	}
	return p.Statements[0].Pos()
}

func (p *Program) String() string {
	var buf bytes.Buffer
	for _, s := range p.Statements {
		buf.WriteString(s.String())
		buf.WriteString("\n")
	}
	return buf.String()
}

// ---- base embeddables ----

type baseNode struct {
	Token token.Token
}

func (b baseNode) TokenLiteral() string  { return b.Token.Literal }
func (b baseNode) Pos() token.Position   { return b.Token.Pos }

// ---- literals ----

type Identifier struct {
	baseNode
	Name string
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) String() string  { return i.Name }

type NumberLiteral struct {
	baseNode
	Value float64
}

func (n *NumberLiteral) expressionNode() {}
func (n *NumberLiteral) String() string  { return n.Token.Literal }

type StringLiteral struct {
	baseNode
	Value string
}

func (s *StringLiteral) expressionNode() {}
func (s *StringLiteral) String() string  { return `"` + s.Value + `"` }

type BoolLiteral struct {
	baseNode
	Value bool
}

func (b *BoolLiteral) expressionNode() {}
func (b *BoolLiteral) String() string  { return b.Token.Literal }

type NilLiteral struct{ baseNode }

func (n *NilLiteral) expressionNode() {}
func (n *NilLiteral) String() string  { return "nil" }

type ListLiteral struct {
	baseNode
	Elements []Expression
}

func (l *ListLiteral) expressionNode() {}
func (l *ListLiteral) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type MapLiteral struct {
	baseNode
	Keys   []Expression
	Values []Expression
}

func (m *MapLiteral) expressionNode() {}
func (m *MapLiteral) String() string {
	parts := make([]string, len(m.Keys))
	for i := range m.Keys {
		parts[i] = m.Keys[i].String() + ": " + m.Values[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ---- expressions ----

type BinaryExpression struct {
	baseNode
	Left     Expression
	Operator string
	Right    Expression
}

func (b *BinaryExpression) expressionNode() {}
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

type UnaryExpression struct {
	baseNode
	Operator string
	Operand  Expression
}

func (u *UnaryExpression) expressionNode() {}
func (u *UnaryExpression) String() string {
	return "(" + u.Operator + u.Operand.String() + ")"
}

// ConfidenceFlowExpression is the `~>` operator: Left's value passes
// through with its confidence multiplied by Right, which is evaluated
// on its own as a numeric factor.
type ConfidenceFlowExpression struct {
	baseNode
	Left  Expression
	Right Expression
}

func (c *ConfidenceFlowExpression) expressionNode() {}
func (c *ConfidenceFlowExpression) String() string {
	return "(" + c.Left.String() + " ~> " + c.Right.String() + ")"
}

// ConfidenceAnnotation is the literal confidence written on a let
// binding or context block (`~ NUMBER`, e.g. `let x ~ 0.8 = fetch()`)
// or on a function or module declaration (`~> NUMBER`).
type ConfidenceAnnotation struct {
	baseNode
	Value float64
}

func (c *ConfidenceAnnotation) expressionNode() {}
func (c *ConfidenceAnnotation) String() string  { return c.Token.Literal }

type CallExpression struct {
	baseNode
	Callee    Expression
	Arguments []Expression
}

func (c *CallExpression) expressionNode() {}
func (c *CallExpression) String() string {
	parts := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		parts[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

type IndexExpression struct {
	baseNode
	Collection Expression
	Index      Expression
}

func (ix *IndexExpression) expressionNode() {}
func (ix *IndexExpression) String() string {
	return ix.Collection.String() + "[" + ix.Index.String() + "]"
}

type MemberExpression struct {
	baseNode
	Object   Expression
	Property string
}

func (m *MemberExpression) expressionNode() {}
func (m *MemberExpression) String() string {
	return m.Object.String() + "." + m.Property
}

type AwaitExpression struct {
	baseNode
	Call Expression
}

func (a *AwaitExpression) expressionNode() {}
func (a *AwaitExpression) String() string  { return "await " + a.Call.String() }

type FunctionLiteral struct {
	baseNode
	Async      bool
	Parameters []*Identifier
	Confidence *ConfidenceAnnotation
	Body       *BlockStatement
}

func (f *FunctionLiteral) expressionNode() {}
func (f *FunctionLiteral) String() string {
	parts := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		parts[i] = p.String()
	}
	prefix := "fn"
	if f.Async {
		prefix = "async fn"
	}
	return prefix + "(" + strings.Join(parts, ", ") + ") " + f.Body.String()
}

// MatchArm is one `pattern => expr` clause of a MatchExpression. A
// confidence-range pattern looks like `~{lo,hi}`; Wildcard marks `_`.
type MatchArm struct {
	Wildcard   bool
	RangeLow   *float64
	RangeHigh  *float64
	ValueMatch Expression
	Body       Expression
}

type MatchExpression struct {
	baseNode
	Subject Expression
	Arms    []*MatchArm
}

func (m *MatchExpression) expressionNode() {}
func (m *MatchExpression) String() string {
	var buf bytes.Buffer
	buf.WriteString("match ")
	buf.WriteString(m.Subject.String())
	buf.WriteString(" { ")
	for _, arm := range m.Arms {
		switch {
		case arm.Wildcard:
			buf.WriteString("_")
		case arm.RangeLow != nil:
			buf.WriteString("~{...}")
		default:
			buf.WriteString(arm.ValueMatch.String())
		}
		buf.WriteString(" => ")
		buf.WriteString(arm.Body.String())
		buf.WriteString("; ")
	}
	buf.WriteString("}")
	return buf.String()
}

// ---- statements ----

type BlockStatement struct {
	baseNode
	Statements []Statement
}

func (b *BlockStatement) statementNode() {}
func (b *BlockStatement) String() string {
	var buf bytes.Buffer
	buf.WriteString("{ ")
	for _, s := range b.Statements {
		buf.WriteString(s.String())
		buf.WriteString(" ")
	}
	buf.WriteString("}")
	return buf.String()
}

type ExpressionStatement struct {
	baseNode
	Expr Expression
}

func (e *ExpressionStatement) statementNode() {}
func (e *ExpressionStatement) String() string  { return e.Expr.String() }

// LetStatement is `let NAME [~ confidence] [@ "context"] = expr`.
type LetStatement struct {
	baseNode
	Name       *Identifier
	Confidence *ConfidenceAnnotation
	Context    *string
	Value      Expression
	// Exported is set when this declaration was written as `export
	// let ...` inside a module body (spec.md §4.2 moduleDecl); it is
	// meaningless outside a module and ignored there.
	Exported bool
}

func (l *LetStatement) statementNode() {}
func (l *LetStatement) String() string {
	var buf bytes.Buffer
	if l.Exported {
		buf.WriteString("export ")
	}
	buf.WriteString("let ")
	buf.WriteString(l.Name.String())
	if l.Confidence != nil {
		buf.WriteString(" ~ ")
		buf.WriteString(l.Confidence.String())
	}
	if l.Context != nil {
		buf.WriteString(" @ \"" + *l.Context + "\"")
	}
	buf.WriteString(" = ")
	buf.WriteString(l.Value.String())
	return buf.String()
}

type AssignStatement struct {
	baseNode
	Name  *Identifier
	Value Expression
}

func (a *AssignStatement) statementNode() {}
func (a *AssignStatement) String() string { return a.Name.String() + " = " + a.Value.String() }

type ReturnStatement struct {
	baseNode
	Value Expression
}

func (r *ReturnStatement) statementNode() {}
func (r *ReturnStatement) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

type BreakStatement struct{ baseNode }

func (b *BreakStatement) statementNode() {}
func (b *BreakStatement) String() string  { return "break" }

type ContinueStatement struct{ baseNode }

func (c *ContinueStatement) statementNode() {}
func (c *ContinueStatement) String() string  { return "continue" }

type ThrowStatement struct {
	baseNode
	Value Expression
}

func (t *ThrowStatement) statementNode() {}
func (t *ThrowStatement) String() string  { return "throw " + t.Value.String() }

type IfStatement struct {
	baseNode
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *IfStatement or *BlockStatement or nil
}

func (i *IfStatement) statementNode() {}
func (i *IfStatement) String() string {
	s := "if " + i.Condition.String() + " " + i.Consequence.String()
	if i.Alternative != nil {
		s += " else " + i.Alternative.String()
	}
	return s
}

// UncertainIfStatement is `uncertain if (cond) { } medium [(cond2)]? { }
// low { } else { }`. When Condition is false, MediumCondition (if
// present) decides whether MediumBranch runs; a medium clause with no
// predicate is taken unconditionally once Condition is false.
type UncertainIfStatement struct {
	baseNode
	Condition      Expression
	Consequence    *BlockStatement
	MediumCondition Expression
	MediumBranch   *BlockStatement
	LowBranch      *BlockStatement
	Alternative    *BlockStatement
}

func (u *UncertainIfStatement) statementNode() {}
func (u *UncertainIfStatement) String() string {
	s := "uncertain if " + u.Condition.String() + " " + u.Consequence.String()
	if u.MediumBranch != nil {
		s += " medium "
		if u.MediumCondition != nil {
			s += "(" + u.MediumCondition.String() + ") "
		}
		s += u.MediumBranch.String()
	}
	if u.LowBranch != nil {
		s += " low " + u.LowBranch.String()
	}
	if u.Alternative != nil {
		s += " else " + u.Alternative.String()
	}
	return s
}

type WhileStatement struct {
	baseNode
	Condition Expression
	Body      *BlockStatement
}

func (w *WhileStatement) statementNode() {}
func (w *WhileStatement) String() string {
	return "while " + w.Condition.String() + " " + w.Body.String()
}

type ForStatement struct {
	baseNode
	Variable *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (f *ForStatement) statementNode() {}
func (f *ForStatement) String() string {
	return "for " + f.Variable.String() + " in " + f.Iterable.String() + " " + f.Body.String()
}

// VerifyAgainstStatement is `verify against [src1, src2, ...] { body }`:
// Body is evaluated once, and its result's confidence is multiplied
// by the minimum verification score across Sources.
type VerifyAgainstStatement struct {
	baseNode
	Sources []string
	Body    *BlockStatement
}

func (v *VerifyAgainstStatement) statementNode() {}
func (v *VerifyAgainstStatement) String() string {
	parts := make([]string, len(v.Sources))
	for i, s := range v.Sources {
		parts[i] = strconv.Quote(s)
	}
	return "verify against [" + strings.Join(parts, ", ") + "] " + v.Body.String()
}

// TryConfidenceStatement is `try confidence { body } below threshold
// T { ... } uncertain { ... }`.
type TryConfidenceStatement struct {
	baseNode
	Body           *BlockStatement
	Threshold      *float64
	BelowBranch    *BlockStatement
	UncertainBranch *BlockStatement
}

func (t *TryConfidenceStatement) statementNode() {}
func (t *TryConfidenceStatement) String() string {
	s := "try confidence " + t.Body.String()
	if t.BelowBranch != nil {
		s += " below threshold { ... }"
	}
	if t.UncertainBranch != nil {
		s += " uncertain { ... }"
	}
	return s
}

// TryCatchStatement is `try { body } catch (name) { handler }`: thrown
// values (and, for host failures, a constructed value) bind to Name in
// Handler's scope rather than routing on confidence.
type TryCatchStatement struct {
	baseNode
	Body    *BlockStatement
	Name    *Identifier
	Handler *BlockStatement
}

func (t *TryCatchStatement) statementNode() {}
func (t *TryCatchStatement) String() string {
	return "try " + t.Body.String() + " catch (" + t.Name.String() + ") " + t.Handler.String()
}

// ContextStatement is `in context "name" [~ factor] { body }`.
type ContextStatement struct {
	baseNode
	Name       string
	Confidence *ConfidenceAnnotation
	Body       *BlockStatement
}

func (c *ContextStatement) statementNode() {}
func (c *ContextStatement) String() string {
	return "in context \"" + c.Name + "\" " + c.Body.String()
}

type FunctionDecl struct {
	baseNode
	Name     *Identifier
	Function *FunctionLiteral
	// Exported is set when this declaration was written as `export fn
	// ...` inside a module body; see LetStatement.Exported.
	Exported bool
}

func (f *FunctionDecl) statementNode() {}
func (f *FunctionDecl) String() string {
	prefix := ""
	if f.Exported {
		prefix = "export "
	}
	return prefix + "fn " + f.Name.String() + " " + f.Function.String()
}

type ModuleDecl struct {
	baseNode
	Name       string
	Confidence *ConfidenceAnnotation
	Body       []Statement
}

func (m *ModuleDecl) statementNode() {}
func (m *ModuleDecl) String() string {
	var buf bytes.Buffer
	buf.WriteString("module " + m.Name + " { ")
	for _, e := range m.Body {
		buf.WriteString(e.String())
		buf.WriteString(" ")
	}
	buf.WriteString("}")
	return buf.String()
}

// ImportDecl is `import { a, b as c } from "module"`.
type ImportDecl struct {
	baseNode
	Names  []string
	Alias  map[string]string
	Module string
}

func (i *ImportDecl) statementNode() {}
func (i *ImportDecl) String() string {
	return "import { " + strings.Join(i.Names, ", ") + " } from \"" + i.Module + "\""
}

// New<Node> constructors, used by the parser to stamp baseNode.Token
// consistently. These are thin but keep parser call sites uniform
// with the teacher's own `ast.NewX(tok, ...)` helpers.

func NewIdentifier(tok token.Token) *Identifier {
	return &Identifier{baseNode: baseNode{Token: tok}, Name: tok.Literal}
}
