package ast

import (
	"strings"
	"testing"

	"github.com/prism-lang/prism/internal/token"
)

func ident(name string) *Identifier {
	return NewIdentifier(token.Token{Type: token.IDENT, Literal: name})
}

func numberLit(v float64, lit string) *NumberLiteral {
	n := &NumberLiteral{Value: v}
	n.Token = token.Token{Type: token.NUMBER, Literal: lit}
	return n
}

func TestBinaryExpression_String(t *testing.T) {
	expr := &BinaryExpression{Left: ident("a"), Operator: "+", Right: ident("b")}
	expr.Token = token.Token{Type: token.PLUS, Literal: "+"}
	if got, want := expr.String(), "(a + b)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestConfidenceFlowExpression_String(t *testing.T) {
	expr := &ConfidenceFlowExpression{Left: ident("x"), Right: numberLit(0.8, "0.8")}
	expr.Token = token.Token{Type: token.FLOW, Literal: "~>"}
	if got, want := expr.String(), "(x ~> 0.8)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestLetStatement_StringIncludesConfidenceAndContext(t *testing.T) {
	ctx := "diagnosis"
	stmt := &LetStatement{
		Name:       ident("x"),
		Confidence: &ConfidenceAnnotation{baseNode: baseNode{Token: token.Token{Literal: "0.9"}}, Value: 0.9},
		Context:    &ctx,
		Value:      numberLit(42, "42"),
	}
	s := stmt.String()
	for _, want := range []string{"let x", "~ 0.9", `@ "diagnosis"`, "= 42"} {
		if !strings.Contains(s, want) {
			t.Fatalf("String() = %q, missing substring %q", s, want)
		}
	}
}

func TestUncertainIfStatement_StringRendersAllArms(t *testing.T) {
	cons := &BlockStatement{Statements: []Statement{&ExpressionStatement{Expr: ident("hi")}}}
	medium := &BlockStatement{Statements: []Statement{&ExpressionStatement{Expr: ident("med")}}}
	low := &BlockStatement{Statements: []Statement{&ExpressionStatement{Expr: ident("lo")}}}
	stmt := &UncertainIfStatement{
		Condition:   ident("c"),
		Consequence: cons,
		MediumCondition: ident("c2"),
		MediumBranch:    medium,
		LowBranch:       low,
	}
	s := stmt.String()
	for _, want := range []string{"uncertain if c", "medium", "(c2)", "low"} {
		if !strings.Contains(s, want) {
			t.Fatalf("String() = %q, missing substring %q", s, want)
		}
	}
}

func TestProgram_StringJoinsStatementsWithNewlines(t *testing.T) {
	prog := &Program{Statements: []Statement{
		&ExpressionStatement{Expr: ident("a")},
		&ExpressionStatement{Expr: ident("b")},
	}}
	if got, want := prog.String(), "a\nb\n"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestMatchExpression_StringRendersWildcard(t *testing.T) {
	arm := &MatchArm{Wildcard: true, Body: numberLit(1, "1")}
	expr := &MatchExpression{Subject: ident("x"), Arms: []*MatchArm{arm}}
	if got := expr.String(); !strings.Contains(got, "_ => 1") {
		t.Fatalf("String() = %q, missing wildcard arm", got)
	}
}
