package parser

import (
	"fmt"
	"strconv"

	"github.com/simonNozaki/koys/ast"
)

// Parse translates koy source text into a Program AST. A program consists of
// top-level function definitions and let bindings.
func Parse(src string) (*ast.Program, error) {
	return ParseFile("", src)
}

// ParseFile is like Parse but reports error positions against name.
func ParseFile(name, src string) (*ast.Program, error) {
	p, err := newParser(name, src)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

type parser struct {
	lx    *lexer
	curr  Token
	ahead []Token
}

func newParser(name, src string) (*parser, error) {
	lx := newLexer(src)
	if name != "" {
		lx.name = name
	}
	p := &parser{
		lx: lx,
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	if len(p.ahead) > 0 {
		p.curr = p.ahead[0]
		p.ahead = p.ahead[1:]
		return nil
	}
	tok, err := p.lx.nextToken()
	if err != nil {
		return err
	}
	p.curr = tok
	return nil
}

// peek returns the token n positions past curr; peek(0) is the next token.
func (p *parser) peek(n int) (Token, error) {
	for len(p.ahead) <= n {
		if len(p.ahead) > 0 && p.ahead[len(p.ahead)-1].Type == tokenEOF {
			return p.ahead[len(p.ahead)-1], nil
		}
		tok, err := p.lx.nextToken()
		if err != nil {
			return Token{}, err
		}
		p.ahead = append(p.ahead, tok)
	}
	return p.ahead[n], nil
}

func (p *parser) peekIs(n int, tt TokenType) (bool, error) {
	tok, err := p.peek(n)
	if err != nil {
		return false, err
	}
	return tok.Type == tt, nil
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if p.curr.Type != tt {
		return Token{}, p.errorf(p.curr.Pos, "expected %s, found %s", tt, p.describe(p.curr))
	}
	tok := p.curr
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (p *parser) skipSemicolons() error {
	for p.curr.Type == tokenSemicolon {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// endOfElement consumes the terminator after a top-level element.
func (p *parser) endOfElement() error {
	switch p.curr.Type {
	case tokenSemicolon:
		return p.advance()
	case tokenEOF:
		return nil
	default:
		return p.errorf(p.curr.Pos, "expected ; or newline, found %s", p.describe(p.curr))
	}
}

func (p *parser) parseProgram() (*ast.Program, error) {
	var defs []ast.TopLevel
	for {
		if err := p.skipSemicolons(); err != nil {
			return nil, err
		}
		if p.curr.Type == tokenEOF {
			break
		}
		def, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
		if err := p.endOfElement(); err != nil {
			return nil, err
		}
	}
	return &ast.Program{Definitions: defs}, nil
}

func (p *parser) parseTopLevel() (ast.TopLevel, error) {
	switch p.curr.Type {
	case tokenFn:
		return p.parseFunctionDefinition()
	case tokenLet, tokenMutable:
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		return &ast.ValueDefinition{
			Name:    decl.Name,
			Expr:    decl.Expr,
			Mutable: decl.Mutable,
			Posn:    decl.Posn,
		}, nil
	default:
		return nil, p.errorf(p.curr.Pos, "expected fn or let at top level, found %s", p.describe(p.curr))
	}
}

func (p *parser) parseFunctionDefinition() (*ast.FunctionDefinition, error) {
	fnTok, err := p.expect(tokenFn)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	params, body, err := p.parseSignatureAndBody()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDefinition{
		Name:   nameTok.Lexeme,
		Params: params,
		Body:   body,
		Posn:   fnTok.Pos,
	}, nil
}

func (p *parser) parseSignatureAndBody() ([]string, *ast.BlockExpr, error) {
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, nil, err
	}
	params, err := p.parseParamNames()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}
	return params, body, nil
}

func (p *parser) parseDeclaration() (*ast.Declaration, error) {
	start := p.curr
	mutable := false
	if p.curr.Type == tokenMutable {
		mutable = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokenLet); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Declaration{
		Name:    nameTok.Lexeme,
		Expr:    value,
		Mutable: mutable,
		Posn:    start.Pos,
	}, nil
}

func (p *parser) parseBlock() (*ast.BlockExpr, error) {
	braceTok, err := p.expect(tokenLBrace)
	if err != nil {
		return nil, err
	}
	var elems []ast.Expr
	for {
		if err := p.skipSemicolons(); err != nil {
			return nil, err
		}
		if p.curr.Type == tokenRBrace || p.curr.Type == tokenEOF {
			break
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, expr)
		if p.curr.Type != tokenSemicolon && p.curr.Type != tokenRBrace {
			return nil, p.errorf(p.curr.Pos, "expected ; or } after block element, found %s", p.describe(p.curr))
		}
	}
	if _, err := p.expect(tokenRBrace); err != nil {
		return nil, err
	}
	return &ast.BlockExpr{
		Elements: elems,
		Posn:     braceTok.Pos,
	}, nil
}

func (p *parser) parseExpression() (ast.Expr, error) {
	switch p.curr.Type {
	case tokenLet, tokenMutable:
		return p.parseDeclaration()
	case tokenIdentifier:
		assign, err := p.peekIs(0, tokenAssign)
		if err != nil {
			return nil, err
		}
		if assign {
			return p.parseAssignment()
		}
	}
	return p.parseLogicalOr()
}

func (p *parser) parseAssignment() (ast.Expr, error) {
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{
		Name: nameTok.Lexeme,
		Expr: value,
		Posn: nameTok.Pos,
	}, nil
}

// parseBinaryLevel parses a left-associative chain of the given operators,
// with next parsing the operands.
func (p *parser) parseBinaryLevel(next func() (ast.Expr, error), ops ...TokenType) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for containsToken(ops, p.curr.Type) {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{
			Op:   binaryOps[opTok.Type],
			Lhs:  left,
			Rhs:  right,
			Posn: opTok.Pos,
		}
	}
	return left, nil
}

func (p *parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, tokenOrOr)
}

func (p *parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseEquality, tokenAndAnd)
}

func (p *parser) parseEquality() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseComparison, tokenEqualEqual, tokenBangEqual)
}

func (p *parser) parseComparison() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseTerm, tokenLess, tokenLessEqual, tokenGreater, tokenGreaterEqual)
}

func (p *parser) parseTerm() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseFactor, tokenPlus, tokenMinus)
}

func (p *parser) parseFactor() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, tokenStar, tokenSlash, tokenPercent)
}

func (p *parser) parseUnary() (ast.Expr, error) {
	switch p.curr.Type {
	case tokenMinus:
		minusTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curr.Type == tokenNumber {
			numTok := p.curr
			if err := p.advance(); err != nil {
				return nil, err
			}
			return p.integerLiteral("-"+numTok.Lexeme, minusTok)
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{
			Op:   ast.OpSubtract,
			Lhs:  &ast.IntegerLiteral{Value: 0, Posn: minusTok.Pos},
			Rhs:  operand,
			Posn: minusTok.Pos,
		}, nil
	case tokenPlusPlus, tokenMinusMinus:
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{
			Op:      unaryOp(opTok.Type),
			Operand: operand,
			Prefix:  true,
			Posn:    opTok.Pos,
		}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenPlusPlus || p.curr.Type == tokenMinusMinus {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr = &ast.UnaryExpr{
			Op:      unaryOp(opTok.Type),
			Operand: expr,
			Posn:    opTok.Pos,
		}
	}
	return expr, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	switch p.curr.Type {
	case tokenNumber:
		tok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.integerLiteral(tok.Lexeme, tok)
	case tokenString:
		tok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Value: tok.Lexeme, Posn: tok.Pos}, nil
	case tokenTrue, tokenFalse:
		tok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolLiteral{Value: tok.Type == tokenTrue, Posn: tok.Pos}, nil
	case tokenIdentifier:
		call, err := p.peekIs(0, tokenLParen)
		if err != nil {
			return nil, err
		}
		if call {
			return p.parseCall()
		}
		tok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: tok.Lexeme, Posn: tok.Pos}, nil
	case tokenLParen:
		if _, err := p.expect(tokenLParen); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case tokenLBracket:
		startTok := p.curr
		items, err := p.parseItems(tokenLBracket, tokenRBracket)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Items: items, Posn: startTok.Pos}, nil
	case tokenSetStart:
		startTok := p.curr
		items, err := p.parseItems(tokenSetStart, tokenRBrace)
		if err != nil {
			return nil, err
		}
		return &ast.SetLiteral{Items: items, Posn: startTok.Pos}, nil
	case tokenMapStart:
		return p.parseObjectLiteral()
	case tokenFn:
		fnTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		params, body, err := p.parseSignatureAndBody()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionLiteral{Params: params, Body: body, Posn: fnTok.Pos}, nil
	case tokenLBrace:
		return p.parseBlock()
	case tokenPrintln:
		return p.parsePrintln()
	case tokenIf:
		return p.parseIf()
	case tokenWhile:
		return p.parseWhile()
	default:
		return nil, p.errorf(p.curr.Pos, "unexpected %s in expression", p.describe(p.curr))
	}
}

func (p *parser) integerLiteral(lexeme string, tok Token) (ast.Expr, error) {
	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return nil, p.invalidf(tok.Pos, "integer literal %s out of range", lexeme)
	}
	return &ast.IntegerLiteral{Value: n, Posn: tok.Pos}, nil
}

// parseCall parses name(args) or the labeled form name([a=x, b=y]).
func (p *parser) parseCall() (ast.Expr, error) {
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}
	labeled, err := p.atLabeledArguments()
	if err != nil {
		return nil, err
	}
	if labeled {
		args, err := p.parseLabeledArguments()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return &ast.LabeledCall{Name: nameTok.Lexeme, Args: args, Posn: nameTok.Pos}, nil
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: nameTok.Lexeme, Args: args, Posn: nameTok.Pos}, nil
}

// atLabeledArguments reports whether curr starts "[ident =".
func (p *parser) atLabeledArguments() (bool, error) {
	if p.curr.Type != tokenLBracket {
		return false, nil
	}
	ident, err := p.peekIs(0, tokenIdentifier)
	if err != nil || !ident {
		return false, err
	}
	return p.peekIs(1, tokenAssign)
}

func (p *parser) parseLabeledArguments() ([]ast.LabeledParameter, error) {
	if _, err := p.expect(tokenLBracket); err != nil {
		return nil, err
	}
	var args []ast.LabeledParameter
	seen := make(map[string]bool)
	for p.curr.Type != tokenRBracket {
		labelTok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		if seen[labelTok.Lexeme] {
			return nil, p.invalidf(labelTok.Pos, "duplicate label %s", labelTok.Lexeme)
		}
		seen[labelTok.Lexeme] = true
		if _, err := p.expect(tokenAssign); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, ast.LabeledParameter{Name: labelTok.Lexeme, Parameter: value})
		if p.curr.Type != tokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokenRBracket); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseArgumentList() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.curr.Type == tokenRParen {
		return args, nil
	}
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
		if p.curr.Type != tokenComma {
			break
		}
		if _, err := p.expect(tokenComma); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// parseItems parses a comma separated expression list between open and
// close. A trailing comma is allowed.
func (p *parser) parseItems(open, close TokenType) ([]ast.Expr, error) {
	if _, err := p.expect(open); err != nil {
		return nil, err
	}
	var items []ast.Expr
	for p.curr.Type != close {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, expr)
		if p.curr.Type == tokenComma {
			if _, err := p.expect(tokenComma); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(close); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *parser) parseObjectLiteral() (ast.Expr, error) {
	startTok, err := p.expect(tokenMapStart)
	if err != nil {
		return nil, err
	}
	var props []ast.Property
	for p.curr.Type != tokenRBrace {
		keyTok := p.curr
		if keyTok.Type != tokenIdentifier && keyTok.Type != tokenString {
			return nil, p.errorf(keyTok.Pos, "expected mapping key, found %s", p.describe(keyTok))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenColon); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		props = append(props, ast.Property{Key: keyTok.Lexeme, Value: value})
		if p.curr.Type != tokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokenRBrace); err != nil {
		return nil, err
	}
	return &ast.ObjectLiteral{Properties: props, Posn: startTok.Pos}, nil
}

func (p *parser) parsePrintln() (ast.Expr, error) {
	printTok, err := p.expect(tokenPrintln)
	if err != nil {
		return nil, err
	}
	arg, err := p.parseParenthesized()
	if err != nil {
		return nil, err
	}
	return &ast.PrintLn{Arg: arg, Posn: printTok.Pos}, nil
}

func (p *parser) parseIf() (ast.Expr, error) {
	ifTok, err := p.expect(tokenIf)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseParenthesized()
	if err != nil {
		return nil, err
	}
	thenExpr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	// A newline between "}" and "else" inserts a semicolon; look past it.
	if p.curr.Type == tokenSemicolon {
		isElse, err := p.peekIs(0, tokenElse)
		if err != nil {
			return nil, err
		}
		if isElse {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	var elseExpr ast.Expr
	if p.curr.Type == tokenElse {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseExpr, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfExpr{
		Cond: cond,
		Then: thenExpr,
		Else: elseExpr,
		Posn: ifTok.Pos,
	}, nil
}

func (p *parser) parseWhile() (ast.Expr, error) {
	whTok, err := p.expect(tokenWhile)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseParenthesized()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.WhileExpr{
		Cond: cond,
		Body: body,
		Posn: whTok.Pos,
	}, nil
}

func (p *parser) parseParenthesized() (ast.Expr, error) {
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) parseParamNames() ([]string, error) {
	var params []string
	if p.curr.Type == tokenRParen {
		return params, nil
	}
	seen := make(map[string]bool)
	for {
		tok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		if seen[tok.Lexeme] {
			return nil, p.invalidf(tok.Pos, "duplicate parameter %s", tok.Lexeme)
		}
		seen[tok.Lexeme] = true
		params = append(params, tok.Lexeme)
		if p.curr.Type != tokenComma {
			break
		}
		if _, err := p.expect(tokenComma); err != nil {
			return nil, err
		}
	}
	return params, nil
}

// errorf reports a syntax error at pos. Errors raised while looking at EOF
// are incomplete: more input could still make the source valid.
func (p *parser) errorf(pos ast.Position, format string, args ...interface{}) error {
	err := fmt.Errorf("%s:%d:%d: %s", p.lx.name, pos.Line, pos.Column, fmt.Sprintf(format, args...))
	if p.curr.Type == tokenEOF {
		return newIncompleteError(err)
	}
	return newError(err)
}

// invalidf reports an error that no further input can repair.
func (p *parser) invalidf(pos ast.Position, format string, args ...interface{}) error {
	return newError(fmt.Errorf("%s:%d:%d: %s", p.lx.name, pos.Line, pos.Column, fmt.Sprintf(format, args...)))
}

func (p *parser) describe(tok Token) string {
	switch tok.Type {
	case tokenIdentifier, tokenNumber:
		return fmt.Sprintf("%s %s", tok.Type, tok.Lexeme)
	case tokenString:
		return fmt.Sprintf("string %q", tok.Lexeme)
	case tokenEOF:
		return "end of input"
	default:
		return fmt.Sprintf("%q", tok.Type.String())
	}
}

func containsToken(set []TokenType, tt TokenType) bool {
	for _, candidate := range set {
		if candidate == tt {
			return true
		}
	}
	return false
}

func unaryOp(tt TokenType) ast.UnaryOp {
	if tt == tokenMinusMinus {
		return ast.OpDecrement
	}
	return ast.OpIncrement
}
