package parser

import (
	"testing"

	"github.com/prism-lang/prism/internal/ast"
	prismerrors "github.com/prism-lang/prism/internal/errors"
	"github.com/prism-lang/prism/internal/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", input, p.Errors())
	}
	return program
}

func TestParseLetStatement_WithConfidenceAndContext(t *testing.T) {
	program := parseProgram(t, `let diagnosis ~ 0.8 @ "medical" = "flu";`)
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("expected *ast.LetStatement, got %T", program.Statements[0])
	}
	if stmt.Name.Name != "diagnosis" {
		t.Errorf("Name = %q, want diagnosis", stmt.Name.Name)
	}
	if stmt.Confidence == nil || stmt.Confidence.Value != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", stmt.Confidence)
	}
	if stmt.Context == nil || *stmt.Context != "medical" {
		t.Errorf("Context = %v, want medical", stmt.Context)
	}
}

func TestParseConfidenceFlow_RightAssociative(t *testing.T) {
	program := parseProgram(t, `x ~> 0.9 ~> 0.8;`)
	exprStmt := program.Statements[0].(*ast.ExpressionStatement)
	flow, ok := exprStmt.Expr.(*ast.ConfidenceFlowExpression)
	if !ok {
		t.Fatalf("expected *ast.ConfidenceFlowExpression, got %T", exprStmt.Expr)
	}
	if _, ok := flow.Left.(*ast.Identifier); !ok {
		t.Fatalf("expected outer Left to be the identifier, got %T", flow.Left)
	}
	inner, ok := flow.Right.(*ast.ConfidenceFlowExpression)
	if !ok {
		t.Fatalf("expected right-associative nesting, got %T as Right", flow.Right)
	}
	if lit, ok := inner.Left.(*ast.NumberLiteral); !ok || lit.Value != 0.9 {
		t.Fatalf("expected inner Left to be 0.9, got %v", inner.Left)
	}
	if lit, ok := inner.Right.(*ast.NumberLiteral); !ok || lit.Value != 0.8 {
		t.Fatalf("expected inner Right to be 0.8, got %v", inner.Right)
	}
}

func TestParseBinaryExpression_Precedence(t *testing.T) {
	program := parseProgram(t, `1 + 2 * 3;`)
	exprStmt := program.Statements[0].(*ast.ExpressionStatement)
	bin, ok := exprStmt.Expr.(*ast.BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expected top-level +, got %#v", exprStmt.Expr)
	}
	right, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || right.Operator != "*" {
		t.Fatalf("expected * to bind tighter, got %#v", bin.Right)
	}
}

func TestParseUncertainIfStatement_AllArms(t *testing.T) {
	input := `
uncertain if (score) {
	ok();
} medium {
	check();
} low {
	reject();
} else {
	fallback();
}`
	program := parseProgram(t, input)
	stmt, ok := program.Statements[0].(*ast.UncertainIfStatement)
	if !ok {
		t.Fatalf("expected *ast.UncertainIfStatement, got %T", program.Statements[0])
	}
	if stmt.Consequence == nil || stmt.MediumBranch == nil || stmt.LowBranch == nil || stmt.Alternative == nil {
		t.Fatalf("expected all four arms to be populated: %+v", stmt)
	}
}

func TestParseVerifyAgainstStatement(t *testing.T) {
	program := parseProgram(t, `verify against ["wiki", "textbook"] { let x = 1; }`)
	stmt, ok := program.Statements[0].(*ast.VerifyAgainstStatement)
	if !ok {
		t.Fatalf("expected *ast.VerifyAgainstStatement, got %T", program.Statements[0])
	}
	if len(stmt.Sources) != 2 || stmt.Sources[0] != "wiki" || stmt.Sources[1] != "textbook" {
		t.Fatalf("Sources = %v, want [wiki textbook]", stmt.Sources)
	}
}

func TestParseTryConfidenceStatement_BelowAndUncertain(t *testing.T) {
	input := `
try confidence {
	let x = risky();
} below threshold 0.5 {
	handleLow();
} uncertain {
	handleUncertain();
}`
	program := parseProgram(t, input)
	stmt, ok := program.Statements[0].(*ast.TryConfidenceStatement)
	if !ok {
		t.Fatalf("expected *ast.TryConfidenceStatement, got %T", program.Statements[0])
	}
	if stmt.Threshold == nil || *stmt.Threshold != 0.5 {
		t.Fatalf("Threshold = %v, want 0.5", stmt.Threshold)
	}
	if stmt.BelowBranch == nil || stmt.UncertainBranch == nil {
		t.Fatalf("expected both below and uncertain branches populated")
	}
}

func TestParseTryCatchStatement(t *testing.T) {
	input := `
try {
	throw "boom";
} catch (err) {
	err;
}`
	program := parseProgram(t, input)
	stmt, ok := program.Statements[0].(*ast.TryCatchStatement)
	if !ok {
		t.Fatalf("expected *ast.TryCatchStatement, got %T", program.Statements[0])
	}
	if stmt.Name.Name != "err" {
		t.Fatalf("Name = %q, want %q", stmt.Name.Name, "err")
	}
	if stmt.Handler == nil || len(stmt.Handler.Statements) != 1 {
		t.Fatalf("expected one statement in Handler, got %v", stmt.Handler)
	}
}

func TestParseMatchExpression_ConfidenceRangeAndWildcard(t *testing.T) {
	input := `match x {
	score ~{0.0, 0.5} => "low",
	score ~{0.5, 1.0} => "high",
	_ => "unknown",
}`
	program := parseProgram(t, input)
	exprStmt := program.Statements[0].(*ast.ExpressionStatement)
	match, ok := exprStmt.Expr.(*ast.MatchExpression)
	if !ok {
		t.Fatalf("expected *ast.MatchExpression, got %T", exprStmt.Expr)
	}
	if len(match.Arms) != 3 {
		t.Fatalf("expected 3 arms, got %d", len(match.Arms))
	}
	if match.Arms[0].RangeLow == nil || *match.Arms[0].RangeLow != 0.0 || *match.Arms[0].RangeHigh != 0.5 {
		t.Fatalf("arm 0 range = %v..%v, want 0..0.5", match.Arms[0].RangeLow, match.Arms[0].RangeHigh)
	}
	if !match.Arms[2].Wildcard {
		t.Fatalf("expected last arm to be the wildcard")
	}
}

func TestParseModuleAndImportDecl(t *testing.T) {
	program := parseProgram(t, `
module diagnostics ~> 0.9 {
	export let cutoff = 0.7;
	let helper = 1;
}
import { cutoff as limit } from "diagnostics";
`)
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	mod, ok := program.Statements[0].(*ast.ModuleDecl)
	if !ok {
		t.Fatalf("expected *ast.ModuleDecl, got %T", program.Statements[0])
	}
	if mod.Name != "diagnostics" || mod.Confidence == nil || mod.Confidence.Value != 0.9 {
		t.Fatalf("unexpected module decl: %+v", mod)
	}
	if len(mod.Body) != 2 {
		t.Fatalf("expected 2 statements in module body, got %d", len(mod.Body))
	}
	exported, ok := mod.Body[0].(*ast.LetStatement)
	if !ok || !exported.Exported || exported.Name.Name != "cutoff" {
		t.Fatalf("expected exported let cutoff, got %+v", mod.Body[0])
	}
	private, ok := mod.Body[1].(*ast.LetStatement)
	if !ok || private.Exported || private.Name.Name != "helper" {
		t.Fatalf("expected module-private let helper, got %+v", mod.Body[1])
	}
	imp, ok := program.Statements[1].(*ast.ImportDecl)
	if !ok {
		t.Fatalf("expected *ast.ImportDecl, got %T", program.Statements[1])
	}
	if imp.Module != "diagnostics" || len(imp.Names) != 1 || imp.Names[0] != "cutoff" {
		t.Fatalf("unexpected import decl: %+v", imp)
	}
	if imp.Alias["cutoff"] != "limit" {
		t.Fatalf("Alias[cutoff] = %q, want limit", imp.Alias["cutoff"])
	}
}

func TestParseLetStatement_OutOfRangeConfidenceIsInvalidConfidenceKind(t *testing.T) {
	l := lexer.New(`let x ~ 1.5 = 42;`)
	p := New(l)
	p.ParseProgram()

	errs := p.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 parse error, got %d: %v", len(errs), errs)
	}
	if errs[0].Kind != prismerrors.InvalidConfidence {
		t.Fatalf("Kind = %v, want InvalidConfidence", errs[0].Kind)
	}
}

func TestParseErrors_AccumulateAndStayLocalized(t *testing.T) {
	// The first statement is broken (missing value), but the parser
	// must synchronize and still successfully parse the second and
	// third, so one error doesn't cascade into spurious ones.
	input := `
let x = ;
let y = 2;
let z = 3;
`
	l := lexer.New(input)
	p := New(l)
	program := p.ParseProgram()

	if len(p.Errors()) == 0 {
		t.Fatalf("expected at least one parse error")
	}

	var goodLets []string
	for _, stmt := range program.Statements {
		if let, ok := stmt.(*ast.LetStatement); ok {
			goodLets = append(goodLets, let.Name.Name)
		}
	}
	found := map[string]bool{}
	for _, n := range goodLets {
		found[n] = true
	}
	if !found["y"] || !found["z"] {
		t.Fatalf("expected statements after the error to still parse, got names %v", goodLets)
	}
}

func TestParseAwaitExpression(t *testing.T) {
	program := parseProgram(t, `await query(x);`)
	exprStmt := program.Statements[0].(*ast.ExpressionStatement)
	await, ok := exprStmt.Expr.(*ast.AwaitExpression)
	if !ok {
		t.Fatalf("expected *ast.AwaitExpression, got %T", exprStmt.Expr)
	}
	if _, ok := await.Call.(*ast.CallExpression); !ok {
		t.Fatalf("expected Call to be a CallExpression, got %T", await.Call)
	}
}

func TestParseContextStatement(t *testing.T) {
	program := parseProgram(t, `context "medical" ~ 0.9 { let x = 1; }`)
	stmt, ok := program.Statements[0].(*ast.ContextStatement)
	if !ok {
		t.Fatalf("expected *ast.ContextStatement, got %T", program.Statements[0])
	}
	if stmt.Name != "medical" || stmt.Confidence == nil || stmt.Confidence.Value != 0.9 {
		t.Fatalf("unexpected context statement: %+v", stmt)
	}
}

func TestParseFunctionLiteral_WithConfidenceAnnotation(t *testing.T) {
	program := parseProgram(t, `fn guess(x) ~> 0.6 { return x; }`)
	decl, ok := program.Statements[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", program.Statements[0])
	}
	if decl.Function.Confidence == nil || decl.Function.Confidence.Value != 0.6 {
		t.Fatalf("expected function confidence annotation 0.6, got %v", decl.Function.Confidence)
	}
	if len(decl.Function.Parameters) != 1 || decl.Function.Parameters[0].Name != "x" {
		t.Fatalf("unexpected parameters: %+v", decl.Function.Parameters)
	}
}
