// Package parser implements a Pratt parser shared by the expression
// language used in cell formulas and Backwards, the embedded scripting
// language used to define library functions. Both are tokenized by the same
// lexer and share the same expression grammar; Backwards adds the statement
// forms (function/if/while/for/assignment) on top.
//
// Grounded on the teacher's parser/parser.go: curToken/peekToken lookahead,
// a prefix/infix function table keyed by token type, and precedence-climbing
// parseExpression.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"decicalc/ast"
	"decicalc/lexer"
	"decicalc/token"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []ParseError

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

const (
	_ int = iota
	LOWEST
	OR
	AND
	EQUALS
	LESSGREATER
	SUM
	PRODUCT
	PREFIX
	CALL
)

var precedences = map[token.TokenType]int{
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NE:       EQUALS,
	token.LT:       LESSGREATER,
	token.LE:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.GE:       LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.LPAREN:   CALL,
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseVariable)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseKeywordConstant)
	p.registerPrefix(token.FALSE, p.parseKeywordConstant)
	p.registerPrefix(token.NIL, p.parseKeywordConstant)
	p.registerPrefix(token.CELLREF, p.parseCellRefOrRange)
	p.registerPrefix(token.BANG, p.parseUnaryExpression)
	p.registerPrefix(token.MINUS, p.parseUnaryExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseBinaryExpression)
	p.registerInfix(token.MINUS, p.parseBinaryExpression)
	p.registerInfix(token.SLASH, p.parseBinaryExpression)
	p.registerInfix(token.ASTERISK, p.parseBinaryExpression)
	p.registerInfix(token.EQ, p.parseBinaryExpression)
	p.registerInfix(token.NE, p.parseBinaryExpression)
	p.registerInfix(token.LT, p.parseBinaryExpression)
	p.registerInfix(token.LE, p.parseBinaryExpression)
	p.registerInfix(token.GT, p.parseBinaryExpression)
	p.registerInfix(token.GE, p.parseBinaryExpression)
	p.registerInfix(token.AND, p.parseBinaryExpression)
	p.registerInfix(token.OR, p.parseBinaryExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) Errors() []string {
	if len(p.errors) == 0 {
		return nil
	}
	out := make([]string, len(p.errors))
	for i, err := range p.errors {
		out[i] = err.Message
	}
	return out
}

func (p *Parser) ErrorsDetailed() []ParseError {
	return p.errors
}

func (p *Parser) addError(tok token.Token, msg string) {
	p.errors = append(p.errors, ParseError{Message: msg, Token: tok})
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses a full source text: either a single expression (a
// cell formula) wrapped in an ExpressionStatement, or a sequence of
// Backwards statements (a library file).
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for p.curToken.Type != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SEMICOLON:
		return &ast.NopStatement{Token: p.curToken}
	case token.FUNCTION:
		if p.peekTokenIs(token.LPAREN) {
			return p.parseExpressionStatement()
		}
		return p.parseFunctionDefStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		stmt := &ast.BreakStatement{Token: p.curToken}
		p.consumeOptionalSemicolon()
		return stmt
	case token.CONTINUE:
		stmt := &ast.ContinueStatement{Token: p.curToken}
		p.consumeOptionalSemicolon()
		return stmt
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssignStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) consumeOptionalSemicolon() {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseAssignStatement() *ast.AssignStatement {
	stmt := &ast.AssignStatement{Token: p.curToken, Name: p.curToken.Literal}
	if !p.expectPeek(token.ASSIGN) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) || p.peekBeginsBlockTerminator() {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.consumeOptionalSemicolon()
	return stmt
}

// parseBlockUntil parses statements until the peek token closes the current
// block: END, ELSEIF, ELSE, or EOF, matching the "... end <keyword>"
// closing form every Backwards block uses.
func (p *Parser) parseBlockUntil() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}

	for !p.peekBeginsBlockTerminator() {
		p.nextToken()
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	return block
}

func (p *Parser) peekBeginsBlockTerminator() bool {
	switch p.peekToken.Type {
	case token.END, token.ELSEIF, token.ELSE, token.EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parseFunctionDefStatement() *ast.FunctionDefStatement {
	stmt := &ast.FunctionDefStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return stmt
	}
	stmt.Params = p.parseParamList()

	stmt.Body = p.parseBlockUntil()
	p.expectEnd(token.FUNCTION)
	return stmt
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := &ast.FunctionLiteral{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return lit
	}
	lit.Params = p.parseParamList()

	lit.Body = p.parseBlockUntil()
	p.expectEnd(token.FUNCTION)
	return lit
}

func (p *Parser) parseParamList() []string {
	var params []string
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken()
	params = append(params, p.curToken.Literal)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.curToken.Literal)
	}

	if !p.expectPeek(token.RPAREN) {
		return params
	}
	return params
}

// expectEnd consumes "end <keyword>" closing a block, recording a parse
// error naming which keyword was expected if either part is missing.
func (p *Parser) expectEnd(kw token.TokenType) {
	if !p.expectPeek(token.END) {
		return
	}
	if !p.expectPeek(kw) {
		p.addError(p.peekToken, fmt.Sprintf("expected 'end %s'", strings.ToLower(string(kw))))
	}
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	stmt.Consequence = p.parseBlockUntil()

	switch {
	case p.peekTokenIs(token.ELSEIF):
		p.nextToken()
		stmt.Alternative = p.parseIfStatement()
		return stmt
	case p.peekTokenIs(token.ELSE):
		p.nextToken()
		stmt.Alternative = p.parseBlockUntil()
	}

	p.expectEnd(token.IF)
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	stmt.Body = p.parseBlockUntil()
	p.expectEnd(token.WHILE)
	return stmt
}

func (p *Parser) parseForStatement() *ast.ForStatement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(token.IN) {
		return stmt
	}
	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	stmt.Body = p.parseBlockUntil()
	p.expectEnd(token.FOR)
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseVariable() ast.Expression {
	return &ast.Variable{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	if _, err := strconv.ParseFloat(p.curToken.Literal, 64); err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as a number", p.curToken.Literal))
	}
	return &ast.Constant{Token: p.curToken, Text: p.curToken.Literal}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.Constant{Token: p.curToken, Text: p.curToken.Literal}
}

func (p *Parser) parseKeywordConstant() ast.Expression {
	return &ast.Constant{Token: p.curToken, Text: p.curToken.Literal}
}

// parseCellRefOrRange parses a single CELLREF token into a CellRefNode, or,
// if immediately followed by ":" and another CELLREF, a CellRangeNode
// (§4.2: "A1", "$A$1", "A1:A3").
func (p *Parser) parseCellRefOrRange() ast.Expression {
	left := p.parseOneCellRef(p.curToken)

	if !p.peekTokenIs(token.COLON) {
		return left
	}
	p.nextToken() // consume ':'
	if !p.expectPeek(token.CELLREF) {
		return left
	}
	right := p.parseOneCellRef(p.curToken)
	return &ast.CellRangeNode{Token: left.Token, Left: left, Right: right}
}

func (p *Parser) parseOneCellRef(tok token.Token) *ast.CellRefNode {
	colAbs, colOff, rowAbs, rowOff, ok := decodeCellRef(tok.Literal)
	if !ok {
		p.addError(tok, "malformed cell reference: "+tok.Literal)
	}
	return &ast.CellRefNode{Token: tok, ColAbs: colAbs, ColOff: colOff, RowAbs: rowAbs, RowOff: rowOff}
}

// decodeCellRef parses lexemes of the form "$?[A-Z]+$?[0-9]+" into the
// 0-based (col, row) offsets and absolute-reference flags CellRef stores.
func decodeCellRef(lit string) (colAbs bool, colOff int64, rowAbs bool, rowOff int64, ok bool) {
	i := 0
	if i < len(lit) && lit[i] == '$' {
		colAbs = true
		i++
	}
	letterStart := i
	for i < len(lit) && lit[i] >= 'A' && lit[i] <= 'Z' {
		i++
	}
	if i == letterStart {
		return false, 0, false, 0, false
	}
	var col int64
	for _, ch := range lit[letterStart:i] {
		col = col*26 + int64(ch-'A'+1)
	}
	colOff = col - 1

	if i < len(lit) && lit[i] == '$' {
		rowAbs = true
		i++
	}
	digitStart := i
	for i < len(lit) && lit[i] >= '0' && lit[i] <= '9' {
		i++
	}
	if i == digitStart || i != len(lit) {
		return false, 0, false, 0, false
	}
	row, err := strconv.ParseInt(lit[digitStart:i], 10, 64)
	if err != nil {
		return false, 0, false, 0, false
	}
	rowOff = row - 1
	return colAbs, colOff, rowAbs, rowOff, true
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	expr := &ast.UnaryOp{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Operand = p.parseExpression(PREFIX)
	return expr
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	expr := &ast.BinaryOp{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return exp
	}
	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	lit := &ast.ArrayLiteral{Token: p.curToken}
	lit.Elements = p.parseExpressionList(token.RBRACKET)
	return lit
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	exp := &ast.FunctionCall{Token: p.curToken, Callee: callee}
	exp.Args = p.parseExpressionList(token.RPAREN)
	return exp
}

func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return list
	}
	return list
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type)
	p.addError(p.peekToken, msg)
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	msg := fmt.Sprintf("no prefix parse function for %s found", t)
	p.addError(p.curToken, msg)
}
