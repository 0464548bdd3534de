package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/simonNozaki/koys/ast"
)

// The lexer inserts semicolons at line ends the way Go does, but only where a
// block brace (or nothing) is the innermost open bracket. Inside (), [], %{}
// and #{} newlines are plain whitespace.
type lexer struct {
	name   string
	src    string
	pos    int
	line   int
	column int

	hasLastToken bool
	lastToken    TokenType
	lastPos      ast.Position
	bufferedTok  *Token
	open         []TokenType
}

func newLexer(src string) *lexer {
	return &lexer{
		name:   "input",
		src:    src,
		line:   1,
		column: 1,
	}
}

type runeState struct {
	pos    int
	line   int
	column int
}

func (lx *lexer) mark() runeState {
	return runeState{
		pos:    lx.pos,
		line:   lx.line,
		column: lx.column,
	}
}

func (lx *lexer) restore(state runeState) {
	lx.pos = state.pos
	lx.line = state.line
	lx.column = state.column
}

func (lx *lexer) readRune() (rune, runeState, error) {
	state := lx.mark()
	if lx.pos >= len(lx.src) {
		return 0, state, io.EOF
	}
	r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if r == utf8.RuneError && w == 1 {
		return 0, state, newError(fmt.Errorf("%s:%d:%d: invalid UTF-8 encoding", lx.name, lx.line, lx.column))
	}
	lx.pos += w
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r, state, nil
}

func (lx *lexer) skipWhitespace() (bool, error) {
	sawNewline := false
	for {
		r, state, err := lx.readRune()
		if err == io.EOF {
			return sawNewline, nil
		}
		if err != nil {
			return false, err
		}
		switch {
		case unicode.IsSpace(r):
			if r == '\n' {
				sawNewline = true
			}
		case r == '/':
			next, _, err := lx.readRune()
			switch {
			case err == nil && next == '/':
				if err := lx.skipLine(); err != nil && err != io.EOF {
					return false, err
				}
				sawNewline = true
			case err == nil && next == '*':
				newlineInComment, err := lx.skipBlockComment()
				if err != nil {
					return false, err
				}
				if newlineInComment {
					sawNewline = true
				}
			default:
				lx.restore(state)
				return sawNewline, nil
			}
		default:
			lx.restore(state)
			return sawNewline, nil
		}
	}
}

func (lx *lexer) skipLine() error {
	for {
		r, _, err := lx.readRune()
		if err != nil {
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

func (lx *lexer) skipBlockComment() (bool, error) {
	sawNewline := false
	for {
		r, _, err := lx.readRune()
		if err == io.EOF {
			return sawNewline, newIncompleteError(fmt.Errorf("%s:%d:%d: unterminated block comment", lx.name, lx.line, lx.column))
		}
		if err != nil {
			return sawNewline, err
		}
		if r == '\n' {
			sawNewline = true
		}
		if r == '*' && lx.match('/') {
			return sawNewline, nil
		}
	}
}

func (lx *lexer) nextToken() (Token, error) {
	if lx.bufferedTok != nil {
		tok := *lx.bufferedTok
		lx.bufferedTok = nil
		return lx.emit(tok), nil
	}

	sawNewline, err := lx.skipWhitespace()
	if err != nil {
		return Token{}, err
	}
	atEOF := lx.pos >= len(lx.src)
	if (sawNewline || atEOF) && lx.shouldInsertSemicolon() && lx.canInsertSemicolon() {
		return lx.emit(Token{Type: tokenSemicolon, Pos: lx.lastPos}), nil
	}

	start := lx.mark()
	r, _, err := lx.readRune()
	if err == io.EOF {
		return lx.emit(Token{Type: tokenEOF, Pos: positionFromState(start)}), nil
	}
	if err != nil {
		return Token{}, err
	}

	switch {
	case isIdentifierStart(r):
		lexeme := lx.scanIdentifier(r)
		return lx.maybeEmitWithBuffer(makeIdentifierToken(lexeme, start))
	case unicode.IsDigit(r):
		lexeme, err := lx.scanNumber(r, start)
		if err != nil {
			return Token{}, err
		}
		return lx.maybeEmitWithBuffer(Token{
			Type:   tokenNumber,
			Lexeme: lexeme,
			Pos:    positionFromState(start),
		})
	case r == '"':
		value, err := lx.scanString(start)
		if err != nil {
			return Token{}, err
		}
		return lx.maybeEmitWithBuffer(Token{
			Type:   tokenString,
			Lexeme: value,
			Pos:    positionFromState(start),
		})
	}

	var tok Token
	switch r {
	case '+':
		if lx.match('+') {
			tok = simpleToken(tokenPlusPlus, start)
		} else {
			tok = simpleToken(tokenPlus, start)
		}
	case '-':
		if lx.match('-') {
			tok = simpleToken(tokenMinusMinus, start)
		} else {
			tok = simpleToken(tokenMinus, start)
		}
	case '*':
		tok = simpleToken(tokenStar, start)
	case '/':
		tok = simpleToken(tokenSlash, start)
	case '%':
		// "%{" always opens a set; write "a % {...}" to use a block as divisor.
		if lx.match('{') {
			tok = simpleToken(tokenSetStart, start)
		} else {
			tok = simpleToken(tokenPercent, start)
		}
	case '#':
		if !lx.match('{') {
			return lx.illegal(start, fmt.Errorf("expected '{' after '#' for mapping literal"))
		}
		tok = simpleToken(tokenMapStart, start)
	case '(':
		tok = simpleToken(tokenLParen, start)
	case ')':
		tok = simpleToken(tokenRParen, start)
	case '{':
		tok = simpleToken(tokenLBrace, start)
	case '}':
		tok = simpleToken(tokenRBrace, start)
	case '[':
		tok = simpleToken(tokenLBracket, start)
	case ']':
		tok = simpleToken(tokenRBracket, start)
	case ',':
		tok = simpleToken(tokenComma, start)
	case ';':
		tok = simpleToken(tokenSemicolon, start)
	case ':':
		tok = simpleToken(tokenColon, start)
	case '=':
		if lx.match('=') {
			tok = simpleToken(tokenEqualEqual, start)
		} else {
			tok = simpleToken(tokenAssign, start)
		}
	case '!':
		if !lx.match('=') {
			return lx.illegal(start, fmt.Errorf("unexpected character '!'"))
		}
		tok = simpleToken(tokenBangEqual, start)
	case '<':
		if lx.match('=') {
			tok = simpleToken(tokenLessEqual, start)
		} else {
			tok = simpleToken(tokenLess, start)
		}
	case '>':
		if lx.match('=') {
			tok = simpleToken(tokenGreaterEqual, start)
		} else {
			tok = simpleToken(tokenGreater, start)
		}
	case '&':
		if !lx.match('&') {
			return lx.illegal(start, fmt.Errorf("unexpected character '&'"))
		}
		tok = simpleToken(tokenAndAnd, start)
	case '|':
		if !lx.match('|') {
			return lx.illegal(start, fmt.Errorf("unexpected character '|'"))
		}
		tok = simpleToken(tokenOrOr, start)
	default:
		return lx.illegal(start, fmt.Errorf("unexpected character %q", r))
	}

	return lx.maybeEmitWithBuffer(tok)
}

// maybeEmitWithBuffer terminates the last expression of a block before its
// closing brace.
func (lx *lexer) maybeEmitWithBuffer(tok Token) (Token, error) {
	if tok.Type == tokenRBrace && lx.innermost() == tokenLBrace && lx.shouldInsertSemicolon() {
		copied := tok
		lx.bufferedTok = &copied
		return lx.emit(Token{Type: tokenSemicolon, Pos: lx.lastPos}), nil
	}
	return lx.emit(tok), nil
}

func (lx *lexer) emit(tok Token) Token {
	lx.trackBrackets(tok.Type)
	lx.hasLastToken = tok.Type != tokenIllegal
	lx.lastToken = tok.Type
	lx.lastPos = tok.Pos
	return tok
}

func (lx *lexer) trackBrackets(tt TokenType) {
	switch tt {
	case tokenLParen, tokenLBracket, tokenLBrace, tokenSetStart, tokenMapStart:
		lx.open = append(lx.open, tt)
	case tokenRParen, tokenRBracket, tokenRBrace:
		if n := len(lx.open); n > 0 {
			lx.open = lx.open[:n-1]
		}
	}
}

func (lx *lexer) innermost() TokenType {
	if n := len(lx.open); n > 0 {
		return lx.open[n-1]
	}
	return tokenEOF
}

func (lx *lexer) shouldInsertSemicolon() bool {
	if !lx.hasLastToken {
		return false
	}
	switch lx.lastToken {
	case tokenIdentifier,
		tokenNumber,
		tokenString,
		tokenTrue,
		tokenFalse,
		tokenPlusPlus,
		tokenMinusMinus,
		tokenRParen,
		tokenRBracket,
		tokenRBrace:
		return true
	}
	return false
}

func (lx *lexer) canInsertSemicolon() bool {
	inner := lx.innermost()
	return inner == tokenEOF || inner == tokenLBrace
}

func (lx *lexer) match(expected rune) bool {
	r, state, err := lx.readRune()
	if err != nil {
		return false
	}
	if r != expected {
		lx.restore(state)
		return false
	}
	return true
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (lx *lexer) scanIdentifier(initial rune) string {
	var builder strings.Builder
	builder.WriteRune(initial)
	for {
		r, state, err := lx.readRune()
		if err != nil {
			break
		}
		if !isIdentifierPart(r) {
			lx.restore(state)
			break
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// scanNumber reads a decimal integer. koy has no floating point literals.
func (lx *lexer) scanNumber(initial rune, start runeState) (string, error) {
	var builder strings.Builder
	builder.WriteRune(initial)
	for {
		r, state, err := lx.readRune()
		if err != nil {
			break
		}
		if unicode.IsDigit(r) {
			builder.WriteRune(r)
			continue
		}
		if r == '.' || isIdentifierStart(r) {
			return "", newError(fmt.Errorf("%s:%d:%d: malformed integer literal %s%c", lx.name, start.line, start.column, builder.String(), r))
		}
		lx.restore(state)
		break
	}
	return builder.String(), nil
}

func (lx *lexer) scanString(start runeState) (string, error) {
	var builder strings.Builder
	for {
		r, _, err := lx.readRune()
		if err == io.EOF {
			return "", newIncompleteError(fmt.Errorf("%s:%d:%d: unterminated string literal", lx.name, start.line, start.column))
		}
		if err != nil {
			return "", err
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			esc, _, err := lx.readRune()
			if err == io.EOF {
				return "", newIncompleteError(fmt.Errorf("%s:%d:%d: unterminated escape sequence", lx.name, start.line, start.column))
			}
			if err != nil {
				return "", err
			}
			switch esc {
			case 'n':
				builder.WriteRune('\n')
			case 't':
				builder.WriteRune('\t')
			case '\\':
				builder.WriteRune('\\')
			case '"':
				builder.WriteRune('"')
			default:
				builder.WriteRune(esc)
			}
			continue
		}
		if r == '\n' {
			return "", newError(fmt.Errorf("%s:%d:%d: newline in string literal", lx.name, start.line, start.column))
		}
		builder.WriteRune(r)
	}
	return builder.String(), nil
}

func makeIdentifierToken(lexeme string, start runeState) Token {
	if keywordType, ok := keywordToken(lexeme); ok {
		return Token{
			Type:   keywordType,
			Lexeme: lexeme,
			Pos:    positionFromState(start),
		}
	}
	return Token{
		Type:   tokenIdentifier,
		Lexeme: lexeme,
		Pos:    positionFromState(start),
	}
}

func keywordToken(lexeme string) (TokenType, bool) {
	switch lexeme {
	case "fn":
		return tokenFn, true
	case "let":
		return tokenLet, true
	case "mutable":
		return tokenMutable, true
	case "if":
		return tokenIf, true
	case "else":
		return tokenElse, true
	case "while":
		return tokenWhile, true
	case "println":
		return tokenPrintln, true
	case "true":
		return tokenTrue, true
	case "false":
		return tokenFalse, true
	default:
		return tokenIllegal, false
	}
}

func simpleToken(tt TokenType, start runeState) Token {
	return Token{
		Type: tt,
		Pos:  positionFromState(start),
	}
}

func (lx *lexer) illegal(start runeState, err error) (Token, error) {
	tok := lx.emit(Token{Type: tokenIllegal, Pos: positionFromState(start)})
	return tok, newError(fmt.Errorf("%s:%d:%d: %w", lx.name, start.line, start.column, err))
}

func positionFromState(state runeState) ast.Position {
	return ast.Position{
		Offset: state.pos,
		Line:   state.line,
		Column: state.column,
	}
}
