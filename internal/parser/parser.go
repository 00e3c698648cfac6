// Package parser turns a Prism token stream into an AST, using a
// recursive-descent parser for statements and a Pratt (precedence
// climbing) parser for expressions.
package parser

import (
	"strconv"

	"github.com/prism-lang/prism/internal/ast"
	prismerrors "github.com/prism-lang/prism/internal/errors"
	"github.com/prism-lang/prism/internal/lexer"
	"github.com/prism-lang/prism/internal/token"
)

// precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	FLOW       // ~>
	OR         // or
	AND        // and
	EQUALITY   // == !=
	COMPARISON // < <= > >=
	ADDITIVE   // + -
	MULTIPLICATIVE
	UNARY
	CALL // fn(), list[i], obj.field
)

var precedences = map[token.Type]int{
	token.FLOW:     FLOW,
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALITY,
	token.NOT_EQ:   EQUALITY,
	token.LT:       COMPARISON,
	token.LT_EQ:    COMPARISON,
	token.GT:       COMPARISON,
	token.GT_EQ:    COMPARISON,
	token.PLUS:     ADDITIVE,
	token.MINUS:    ADDITIVE,
	token.STAR:     MULTIPLICATIVE,
	token.SLASH:    MULTIPLICATIVE,
	token.PERCENT:  MULTIPLICATIVE,
	token.LPAREN:   CALL,
	token.LBRACKET: CALL,
	token.DOT:      CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser is a single-pass recursive-descent/Pratt parser. Errors are
// accumulated rather than returned immediately; call Errors after
// ParseProgram to see everything that went wrong.
type Parser struct {
	l      *lexer.Lexer
	errors []*ParserError

	curToken  token.Token
	peekToken token.Token

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New creates a Parser over a lexer, priming the first two tokens.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.NUMBER:   p.parseNumberLiteral,
		token.STRING:   p.parseStringLiteral,
		token.TRUE:     p.parseBoolLiteral,
		token.FALSE:    p.parseBoolLiteral,
		token.NIL:      p.parseNilLiteral,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACKET: p.parseListLiteral,
		token.LBRACE:   p.parseMapLiteral,
		token.BANG:     p.parseUnaryExpression,
		token.MINUS:    p.parseUnaryExpression,
		token.FN:       p.parseFunctionLiteral,
		token.ASYNC:    p.parseFunctionLiteral,
		token.AWAIT:    p.parseAwaitExpression,
		token.MATCH:    p.parseMatchExpression,

		// `confidence` is the keyword of `try confidence` and also the
		// namespace of the confidence.* host functions.
		token.CONFIDENCE: p.parseIdentifier,
	}

	p.infixFns = map[token.Type]infixParseFn{
		token.PLUS:     p.parseBinaryExpression,
		token.MINUS:    p.parseBinaryExpression,
		token.STAR:     p.parseBinaryExpression,
		token.SLASH:    p.parseBinaryExpression,
		token.PERCENT:  p.parseBinaryExpression,
		token.EQ:       p.parseBinaryExpression,
		token.NOT_EQ:   p.parseBinaryExpression,
		token.LT:       p.parseBinaryExpression,
		token.LT_EQ:    p.parseBinaryExpression,
		token.GT:       p.parseBinaryExpression,
		token.GT_EQ:    p.parseBinaryExpression,
		token.AND:      p.parseBinaryExpression,
		token.OR:       p.parseBinaryExpression,
		token.FLOW:     p.parseConfidenceFlowExpression,
		token.LPAREN:   p.parseCallExpression,
		token.LBRACKET: p.parseIndexExpression,
		token.DOT:      p.parseMemberExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every syntax error accumulated during parsing.
func (p *Parser) Errors() []*ParserError { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errors = append(p.errors, newError(p.peekToken.Pos, "expected %s, got %s", t, p.peekToken.Type))
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// statementStarters and blockClosers are the token sets synchronize
// scans forward to after a parse error, so one bad statement doesn't
// cascade into spurious errors for everything after it.
var statementStarters = map[token.Type]bool{
	token.LET: true, token.FN: true, token.IF: true, token.UNCERTAIN: true,
	token.WHILE: true, token.FOR: true, token.RETURN: true, token.BREAK: true,
	token.CONTINUE: true, token.THROW: true, token.VERIFY: true, token.TRY: true,
	token.CONTEXT: true, token.MODULE: true, token.IMPORT: true, token.EXPORT: true,
}

func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMI) {
			p.nextToken()
			return
		}
		if p.curIs(token.RBRACE) || statementStarters[p.curToken.Type] {
			return
		}
		p.nextToken()
	}
}

// ParseProgram parses the entire token stream into a Program node.
// Parsing never stops at the first error: each top-level statement
// that fails to parse is skipped via synchronize, and parsing
// resumes at the next likely statement boundary.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else {
			p.synchronize()
			continue
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.FN:
		return p.parseFunctionDecl()
	case token.IF:
		return p.parseIfStatement()
	case token.UNCERTAIN:
		return p.parseUncertainIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return &ast.BreakStatement{}
	case token.CONTINUE:
		return &ast.ContinueStatement{}
	case token.THROW:
		return p.parseThrowStatement()
	case token.VERIFY:
		return p.parseVerifyAgainstStatement()
	case token.TRY:
		if p.peekIs(token.CONFIDENCE) {
			return p.parseTryConfidenceStatement()
		}
		return p.parseTryCatchStatement()
	case token.IN:
		if p.peekIs(token.CONTEXT) {
			p.nextToken()
			return p.parseContextStatement()
		}
		return p.parseExpressionOrAssignStatement()
	case token.CONTEXT:
		return p.parseContextStatement()
	case token.MODULE:
		return p.parseModuleDecl()
	case token.IMPORT:
		return p.parseImportDecl()
	case token.EXPORT:
		return p.parseExportStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := ast.NewIdentifier(p.curToken)

	stmt := &ast.LetStatement{Name: name}
	stmt.Token = tok

	if p.peekIs(token.TILDE) {
		p.nextToken()
		if !p.expectPeek(token.NUMBER) {
			return nil
		}
		v, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.errors = append(p.errors, newError(p.curToken.Pos, "invalid confidence literal %q", p.curToken.Literal))
			return nil
		}
		if v < 0 || v > 1 {
			p.errors = append(p.errors, newErrorKind(prismerrors.InvalidConfidence, p.curToken.Pos, "confidence literal %v out of range [0,1]", v))
			return nil
		}
		stmt.Confidence = &ast.ConfidenceAnnotation{Value: v}
		stmt.Confidence.Token = p.curToken
	}

	if p.peekIs(token.AT) {
		p.nextToken()
		if !p.expectPeek(token.STRING) {
			return nil
		}
		ctx := p.curToken.Literal
		stmt.Context = &ctx
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)

	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExpressionOrAssignStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)

	if ident, ok := expr.(*ast.Identifier); ok && p.peekIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if p.peekIs(token.SEMI) {
			p.nextToken()
		}
		assign := &ast.AssignStatement{Name: ident, Value: value}
		assign.Token = tok
		return assign
	}

	stmt := &ast.ExpressionStatement{Expr: expr}
	stmt.Token = tok
	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{}
	block.Token = p.curToken
	p.nextToken()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else {
			p.synchronize()
			continue
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseFunctionDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := ast.NewIdentifier(p.curToken)
	fnLit := p.parseFunctionLiteral().(*ast.FunctionLiteral)
	decl := &ast.FunctionDecl{Name: name, Function: fnLit}
	decl.Token = tok
	return decl
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.curToken
	async := p.curIs(token.ASYNC)
	if async {
		if !p.expectPeek(token.FN) {
			return nil
		}
	}
	fn := &ast.FunctionLiteral{Async: async}
	fn.Token = tok

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn.Parameters = p.parseParameterList()

	if p.peekIs(token.FLOW) {
		p.nextToken()
		if !p.expectPeek(token.NUMBER) {
			return nil
		}
		v, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.errors = append(p.errors, newError(p.curToken.Pos, "invalid confidence literal %q", p.curToken.Literal))
			return nil
		}
		if v < 0 || v > 1 {
			p.errors = append(p.errors, newErrorKind(prismerrors.InvalidConfidence, p.curToken.Pos, "confidence literal %v out of range [0,1]", v))
			return nil
		}
		fn.Confidence = &ast.ConfidenceAnnotation{Value: v}
		fn.Confidence.Token = p.curToken
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatement()
	return fn
}

func (p *Parser) parseParameterList() []*ast.Identifier {
	var params []*ast.Identifier
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, ast.NewIdentifier(p.curToken))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, ast.NewIdentifier(p.curToken))
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	cons := p.parseBlockStatement()

	stmt := &ast.IfStatement{Condition: cond, Consequence: cons}
	stmt.Token = tok

	if p.peekIs(token.ELSE) {
		p.nextToken()
		if p.peekIs(token.IF) {
			p.nextToken()
			stmt.Alternative = p.parseIfStatement()
		} else {
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			stmt.Alternative = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseUncertainIfStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IF) {
		return nil
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	cons := p.parseBlockStatement()

	stmt := &ast.UncertainIfStatement{Condition: cond, Consequence: cons}
	stmt.Token = tok

	if p.peekIs(token.MEDIUM) {
		p.nextToken()
		if p.peekIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			stmt.MediumCondition = p.parseExpression(LOWEST)
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.MediumBranch = p.parseBlockStatement()
	}
	if p.peekIs(token.LOW) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.LowBranch = p.parseBlockStatement()
	}
	if p.peekIs(token.ELSE) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Alternative = p.parseBlockStatement()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	stmt := &ast.WhileStatement{Condition: cond, Body: body}
	stmt.Token = tok
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	variable := ast.NewIdentifier(p.curToken)
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	iterable := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	stmt := &ast.ForStatement{Variable: variable, Iterable: iterable, Body: body}
	stmt.Token = tok
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	stmt := &ast.ReturnStatement{}
	stmt.Token = tok
	if !p.peekIs(token.SEMI) && !p.peekIs(token.RBRACE) {
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
	}
	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	value := p.parseExpression(LOWEST)
	stmt := &ast.ThrowStatement{Value: value}
	stmt.Token = tok
	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseVerifyAgainstStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.AGAINST) {
		return nil
	}
	if !p.expectPeek(token.LBRACKET) {
		return nil
	}
	var sources []string
	if !p.peekIs(token.RBRACKET) {
		if !p.expectPeek(token.STRING) {
			return nil
		}
		sources = append(sources, p.curToken.Literal)
		for p.peekIs(token.COMMA) {
			p.nextToken()
			if !p.expectPeek(token.STRING) {
				return nil
			}
			sources = append(sources, p.curToken.Literal)
		}
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	stmt := &ast.VerifyAgainstStatement{Sources: sources, Body: body}
	stmt.Token = tok
	return stmt
}

func (p *Parser) parseTryConfidenceStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.CONFIDENCE) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	stmt := &ast.TryConfidenceStatement{Body: body}
	stmt.Token = tok

	if p.peekIs(token.BELOW) {
		p.nextToken()
		if !p.expectPeek(token.THRESHOLD) {
			return nil
		}
		if !p.expectPeek(token.NUMBER) {
			return nil
		}
		v, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.errors = append(p.errors, newError(p.curToken.Pos, "invalid threshold literal %q", p.curToken.Literal))
			return nil
		}
		stmt.Threshold = &v
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.BelowBranch = p.parseBlockStatement()
	}
	if p.peekIs(token.UNCERTAIN) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.UncertainBranch = p.parseBlockStatement()
	}
	return stmt
}

func (p *Parser) parseTryCatchStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	if !p.expectPeek(token.CATCH) {
		return nil
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := ast.NewIdentifier(p.curToken)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	handler := p.parseBlockStatement()
	stmt := &ast.TryCatchStatement{Body: body, Name: name, Handler: handler}
	stmt.Token = tok
	return stmt
}

func (p *Parser) parseContextStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.STRING) {
		return nil
	}
	name := p.curToken.Literal
	stmt := &ast.ContextStatement{Name: name}
	stmt.Token = tok

	if p.peekIs(token.TILDE) {
		p.nextToken()
		if !p.expectPeek(token.NUMBER) {
			return nil
		}
		v, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.errors = append(p.errors, newError(p.curToken.Pos, "invalid confidence literal %q", p.curToken.Literal))
			return nil
		}
		stmt.Confidence = &ast.ConfidenceAnnotation{Value: v}
		stmt.Confidence.Token = p.curToken
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseExportStatement parses `export <letDecl|fnDecl>`, marking the
// wrapped declaration exported so a module body (the only place
// `export` is meaningful per spec.md's scenario 4) knows which
// bindings belong in its export table versus which are module-private
// helpers.
func (p *Parser) parseExportStatement() ast.Statement {
	p.nextToken()
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	switch s := stmt.(type) {
	case *ast.LetStatement:
		s.Exported = true
		return s
	case *ast.FunctionDecl:
		s.Exported = true
		return s
	default:
		p.errors = append(p.errors, newError(p.curToken.Pos, "export can only precede a let or fn declaration, got %T", stmt))
		return nil
	}
}

func (p *Parser) parseModuleDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal

	decl := &ast.ModuleDecl{Name: name}
	decl.Token = tok

	if p.peekIs(token.FLOW) {
		p.nextToken()
		if !p.expectPeek(token.NUMBER) {
			return nil
		}
		v, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.errors = append(p.errors, newError(p.curToken.Pos, "invalid confidence literal %q", p.curToken.Literal))
			return nil
		}
		if v < 0 || v > 1 {
			p.errors = append(p.errors, newErrorKind(prismerrors.InvalidConfidence, p.curToken.Pos, "confidence literal %v out of range [0,1]", v))
			return nil
		}
		decl.Confidence = &ast.ConfidenceAnnotation{Value: v}
		decl.Confidence.Token = p.curToken
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	var body []ast.Statement
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		} else {
			p.synchronize()
			continue
		}
		p.nextToken()
	}
	decl.Body = body
	return decl
}

func (p *Parser) parseImportDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	decl := &ast.ImportDecl{Alias: map[string]string{}}
	decl.Token = tok

	p.nextToken()
	for !p.curIs(token.RBRACE) {
		if !p.curIs(token.IDENT) {
			p.errors = append(p.errors, newError(p.curToken.Pos, "expected identifier in import list, got %s", p.curToken.Type))
			return nil
		}
		name := p.curToken.Literal
		decl.Names = append(decl.Names, name)
		if p.peekIs(token.AS) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			decl.Alias[name] = p.curToken.Literal
		}
		if p.peekIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	if !p.expectPeek(token.FROM) {
		return nil
	}
	if !p.expectPeek(token.STRING) {
		return nil
	}
	decl.Module = p.curToken.Literal
	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return decl
}

// ---- expression parsing ----

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixFns[p.curToken.Type]
	if !ok {
		p.errors = append(p.errors, newError(p.curToken.Pos, "unexpected token %s", p.curToken.Type))
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMI) && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peekToken.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression { return ast.NewIdentifier(p.curToken) }

func (p *Parser) parseNumberLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errors = append(p.errors, newError(p.curToken.Pos, "invalid number literal %q", p.curToken.Literal))
		return nil
	}
	lit := &ast.NumberLiteral{Value: v}
	lit.Token = p.curToken
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	lit := &ast.StringLiteral{Value: p.curToken.Literal}
	lit.Token = p.curToken
	return lit
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	lit := &ast.BoolLiteral{Value: p.curIs(token.TRUE)}
	lit.Token = p.curToken
	return lit
}

func (p *Parser) parseNilLiteral() ast.Expression {
	lit := &ast.NilLiteral{}
	lit.Token = p.curToken
	return lit
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.curToken
	lit := &ast.ListLiteral{}
	lit.Token = tok
	lit.Elements = p.parseExpressionList(token.RBRACKET)
	return lit
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseMapLiteral() ast.Expression {
	tok := p.curToken
	lit := &ast.MapLiteral{}
	lit.Token = tok

	for !p.peekIs(token.RBRACE) {
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		lit.Keys = append(lit.Keys, key)
		lit.Values = append(lit.Values, value)
		if !p.peekIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.curToken
	expr := &ast.UnaryExpression{Operator: tok.Literal}
	expr.Token = tok
	p.nextToken()
	expr.Operand = p.parseExpression(UNARY)
	return expr
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	expr := &ast.BinaryExpression{Left: left, Operator: tok.Literal}
	expr.Token = tok
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

// parseConfidenceFlowExpression parses `~>` as right-associative: it
// recurses at FLOW-1 so a chain `a ~> b ~> c` groups as
// `a ~> (b ~> c)`, matching confidence flowing forward through the
// whole pipeline rather than left-nesting.
func (p *Parser) parseConfidenceFlowExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	expr := &ast.ConfidenceFlowExpression{Left: left}
	expr.Token = tok
	p.nextToken()
	expr.Right = p.parseExpression(FLOW - 1)
	return expr
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.curToken
	expr := &ast.CallExpression{Callee: callee}
	expr.Token = tok
	expr.Arguments = p.parseExpressionList(token.RPAREN)
	return expr
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	expr := &ast.IndexExpression{Collection: left}
	expr.Token = tok
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr := &ast.MemberExpression{Object: left, Property: p.curToken.Literal}
	expr.Token = tok
	return expr
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	call := p.parseExpression(UNARY)
	expr := &ast.AwaitExpression{Call: call}
	expr.Token = tok
	return expr
}

// parseMatchExpression parses `match subject { arm, arm, ... }` where
// each arm is `pattern => expr`, a pattern is a value literal, a
// confidence range `~{lo,hi}`, or the wildcard `_`.
func (p *Parser) parseMatchExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	subject := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expr := &ast.MatchExpression{Subject: subject}
	expr.Token = tok

	p.nextToken()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		arm := p.parseMatchArm()
		if arm == nil {
			return nil
		}
		expr.Arms = append(expr.Arms, arm)
		if p.peekIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	return expr
}

// parseConfidenceRange parses `~{lo,hi}` with curToken on LBRACE_T,
// leaving curToken on the closing RBRACE.
func (p *Parser) parseConfidenceRange() (lo, hi *float64, ok bool) {
	p.nextToken()
	low, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errors = append(p.errors, newError(p.curToken.Pos, "invalid range bound %q", p.curToken.Literal))
		return nil, nil, false
	}
	if !p.expectPeek(token.COMMA) {
		return nil, nil, false
	}
	p.nextToken()
	high, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errors = append(p.errors, newError(p.curToken.Pos, "invalid range bound %q", p.curToken.Literal))
		return nil, nil, false
	}
	if !p.expectPeek(token.RBRACE) {
		return nil, nil, false
	}
	return &low, &high, true
}

func (p *Parser) parseMatchArm() *ast.MatchArm {
	arm := &ast.MatchArm{}

	switch {
	case p.curIs(token.IDENT) && p.curToken.Literal == "_":
		arm.Wildcard = true
	case p.curIs(token.IDENT) && p.peekIs(token.LBRACE_T):
		// A confidence-range pattern names the scrutinee (`x ~{lo,hi}`)
		// before the range itself; the name is conventional only, the
		// body never references it, so it's consumed and discarded.
		p.nextToken()
		low, high, ok := p.parseConfidenceRange()
		if !ok {
			return nil
		}
		arm.RangeLow, arm.RangeHigh = low, high
	case p.curIs(token.LBRACE_T):
		low, high, ok := p.parseConfidenceRange()
		if !ok {
			return nil
		}
		arm.RangeLow, arm.RangeHigh = low, high
	default:
		arm.ValueMatch = p.parseExpression(LOWEST)
	}

	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	arm.Body = p.parseExpression(LOWEST)
	return arm
}
