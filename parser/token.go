package parser

import "github.com/simonNozaki/koys/ast"

// TokenType enumerates lexical categories recognised by the koy lexer.
type TokenType int

const (
	tokenEOF TokenType = iota
	tokenIllegal

	tokenIdentifier
	tokenNumber
	tokenString

	// Keywords
	tokenFn
	tokenLet
	tokenMutable
	tokenIf
	tokenElse
	tokenWhile
	tokenPrintln
	tokenTrue
	tokenFalse

	// Operators and punctuation
	tokenAssign       // =
	tokenEqualEqual   // ==
	tokenBangEqual    // !=
	tokenPlus         // +
	tokenMinus        // -
	tokenPlusPlus     // ++
	tokenMinusMinus   // --
	tokenStar         // *
	tokenSlash        // /
	tokenPercent      // %
	tokenLess         // <
	tokenLessEqual    // <=
	tokenGreater      // >
	tokenGreaterEqual // >=
	tokenAndAnd       // &&
	tokenOrOr         // ||

	tokenComma     // ,
	tokenSemicolon // ;
	tokenColon     // :
	tokenLParen    // (
	tokenRParen    // )
	tokenLBrace    // {
	tokenRBrace    // }
	tokenLBracket  // [
	tokenRBracket  // ]
	tokenSetStart  // %{
	tokenMapStart  // #{
)

func (tt TokenType) String() string {
	switch tt {
	case tokenEOF:
		return "EOF"
	case tokenIllegal:
		return "illegal"
	case tokenIdentifier:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenString:
		return "string"
	case tokenFn:
		return "fn"
	case tokenLet:
		return "let"
	case tokenMutable:
		return "mutable"
	case tokenIf:
		return "if"
	case tokenElse:
		return "else"
	case tokenWhile:
		return "while"
	case tokenPrintln:
		return "println"
	case tokenTrue:
		return "true"
	case tokenFalse:
		return "false"
	case tokenAssign:
		return "="
	case tokenEqualEqual:
		return "=="
	case tokenBangEqual:
		return "!="
	case tokenPlus:
		return "+"
	case tokenMinus:
		return "-"
	case tokenPlusPlus:
		return "++"
	case tokenMinusMinus:
		return "--"
	case tokenStar:
		return "*"
	case tokenSlash:
		return "/"
	case tokenPercent:
		return "%"
	case tokenLess:
		return "<"
	case tokenLessEqual:
		return "<="
	case tokenGreater:
		return ">"
	case tokenGreaterEqual:
		return ">="
	case tokenAndAnd:
		return "&&"
	case tokenOrOr:
		return "||"
	case tokenComma:
		return ","
	case tokenSemicolon:
		return ";"
	case tokenColon:
		return ":"
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	case tokenLBrace:
		return "{"
	case tokenRBrace:
		return "}"
	case tokenLBracket:
		return "["
	case tokenRBracket:
		return "]"
	case tokenSetStart:
		return "%{"
	case tokenMapStart:
		return "#{"
	default:
		return "unknown"
	}
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Type   TokenType
	Lexeme string // raw lexeme for identifiers and numbers, decoded text for strings
	Pos    ast.Position
}

var binaryOps = map[TokenType]ast.BinaryOp{
	tokenPlus:         ast.OpAdd,
	tokenMinus:        ast.OpSubtract,
	tokenStar:         ast.OpMultiply,
	tokenSlash:        ast.OpDivide,
	tokenPercent:      ast.OpRemainder,
	tokenLess:         ast.OpLessThan,
	tokenLessEqual:    ast.OpLessOrEqual,
	tokenGreater:      ast.OpGreaterThan,
	tokenGreaterEqual: ast.OpGreaterOrEqual,
	tokenEqualEqual:   ast.OpEqual,
	tokenBangEqual:    ast.OpNotEqual,
	tokenAndAnd:       ast.OpLogicalAnd,
	tokenOrOr:         ast.OpLogicalOr,
}
