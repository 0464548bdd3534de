// Package ast defines the koy syntax tree consumed by the evaluator.
package ast

import (
	"strconv"
	"strings"
)

// Position tracks a source location within a koy source file.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Node represents any syntax tree node with a source position.
type Node interface {
	Pos() Position
	String() string
}

// Expr is an expression node. Every koy construct below the top level is an
// expression and evaluates to exactly one value.
type Expr interface {
	Node
	exprNode()
}

// TopLevel is a declaration that may appear at the top of a program.
type TopLevel interface {
	Node
	topLevelNode()
}

// Program is the root of a parsed koy file.
type Program struct {
	Definitions []TopLevel
}

func (p *Program) String() string {
	parts := make([]string, len(p.Definitions))
	for i, def := range p.Definitions {
		parts[i] = def.String()
	}
	return strings.Join(parts, "\n")
}

// FunctionDefinition is a named top-level function.
type FunctionDefinition struct {
	Name   string
	Params []string
	Body   *BlockExpr
	Posn   Position
}

func (d *FunctionDefinition) Pos() Position { return d.Posn }
func (*FunctionDefinition) topLevelNode()   {}
func (d *FunctionDefinition) String() string {
	return "fn " + d.Name + "(" + strings.Join(d.Params, ", ") + ") " + d.Body.String()
}

// ValueDefinition binds a top-level name to the value of an expression.
type ValueDefinition struct {
	Name    string
	Expr    Expr
	Mutable bool
	Posn    Position
}

func (d *ValueDefinition) Pos() Position { return d.Posn }
func (*ValueDefinition) topLevelNode()   {}
func (d *ValueDefinition) String() string {
	return declString(d.Name, d.Expr, d.Mutable)
}

// IntegerLiteral is a 64-bit signed integer literal.
type IntegerLiteral struct {
	Value int64
	Posn  Position
}

func (e *IntegerLiteral) Pos() Position  { return e.Posn }
func (*IntegerLiteral) exprNode()        {}
func (e *IntegerLiteral) String() string { return strconv.FormatInt(e.Value, 10) }

// BoolLiteral is true or false.
type BoolLiteral struct {
	Value bool
	Posn  Position
}

func (e *BoolLiteral) Pos() Position  { return e.Posn }
func (*BoolLiteral) exprNode()        {}
func (e *BoolLiteral) String() string { return strconv.FormatBool(e.Value) }

// StringLiteral is a double-quoted text literal.
type StringLiteral struct {
	Value string
	Posn  Position
}

func (e *StringLiteral) Pos() Position  { return e.Posn }
func (*StringLiteral) exprNode()        {}
func (e *StringLiteral) String() string { return strconv.Quote(e.Value) }

// ArrayLiteral builds an ordered sequence.
type ArrayLiteral struct {
	Items []Expr
	Posn  Position
}

func (e *ArrayLiteral) Pos() Position  { return e.Posn }
func (*ArrayLiteral) exprNode()        {}
func (e *ArrayLiteral) String() string { return "[" + joinExprs(e.Items) + "]" }

// SetLiteral builds a set; duplicates collapse at evaluation time.
type SetLiteral struct {
	Items []Expr
	Posn  Position
}

func (e *SetLiteral) Pos() Position  { return e.Posn }
func (*SetLiteral) exprNode()        {}
func (e *SetLiteral) String() string { return "%{" + joinExprs(e.Items) + "}" }

// Property is a single key: value entry of an object literal.
type Property struct {
	Key   string
	Value Expr
}

// ObjectLiteral builds a string-keyed mapping. Properties keep source order,
// which is also their evaluation order.
type ObjectLiteral struct {
	Properties []Property
	Posn       Position
}

func (e *ObjectLiteral) Pos() Position { return e.Posn }
func (*ObjectLiteral) exprNode()       {}
func (e *ObjectLiteral) String() string {
	parts := make([]string, len(e.Properties))
	for i, prop := range e.Properties {
		parts[i] = prop.Key + ": " + prop.Value.String()
	}
	return "#{" + strings.Join(parts, ", ") + "}"
}

// FunctionLiteral is an anonymous function. It captures nothing.
type FunctionLiteral struct {
	Params []string
	Body   *BlockExpr
	Posn   Position
}

func (e *FunctionLiteral) Pos() Position { return e.Posn }
func (*FunctionLiteral) exprNode()       {}
func (e *FunctionLiteral) String() string {
	return "fn(" + strings.Join(e.Params, ", ") + ") " + e.Body.String()
}

// Identifier refers to a variable.
type Identifier struct {
	Name string
	Posn Position
}

func (e *Identifier) Pos() Position  { return e.Posn }
func (*Identifier) exprNode()        {}
func (e *Identifier) String() string { return e.Name }

// UnaryExpr is an increment or decrement of a variable.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
	Prefix  bool
	Posn    Position
}

func (e *UnaryExpr) Pos() Position { return e.Posn }
func (*UnaryExpr) exprNode()       {}
func (e *UnaryExpr) String() string {
	if e.Prefix {
		return e.Op.String() + e.Operand.String()
	}
	return e.Operand.String() + e.Op.String()
}

// BinaryExpr applies an infix operator.
type BinaryExpr struct {
	Op   BinaryOp
	Lhs  Expr
	Rhs  Expr
	Posn Position
}

func (e *BinaryExpr) Pos() Position { return e.Posn }
func (*BinaryExpr) exprNode()       {}
func (e *BinaryExpr) String() string {
	return "(" + e.Lhs.String() + " " + e.Op.String() + " " + e.Rhs.String() + ")"
}

// Declaration introduces a name in the current scope.
type Declaration struct {
	Name    string
	Expr    Expr
	Mutable bool
	Posn    Position
}

func (e *Declaration) Pos() Position  { return e.Posn }
func (*Declaration) exprNode()        {}
func (e *Declaration) String() string { return declString(e.Name, e.Expr, e.Mutable) }

// Assignment rebinds an existing mutable name.
type Assignment struct {
	Name string
	Expr Expr
	Posn Position
}

func (e *Assignment) Pos() Position  { return e.Posn }
func (*Assignment) exprNode()        {}
func (e *Assignment) String() string { return e.Name + " = " + e.Expr.String() }

// PrintLn writes its argument to the evaluator output.
type PrintLn struct {
	Arg  Expr
	Posn Position
}

func (e *PrintLn) Pos() Position  { return e.Posn }
func (*PrintLn) exprNode()        {}
func (e *PrintLn) String() string { return "println(" + e.Arg.String() + ")" }

// IfExpr is a conditional; Else may be nil.
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	Posn Position
}

func (e *IfExpr) Pos() Position { return e.Posn }
func (*IfExpr) exprNode()       {}
func (e *IfExpr) String() string {
	s := "if (" + e.Cond.String() + ") " + e.Then.String()
	if e.Else != nil {
		s += " else " + e.Else.String()
	}
	return s
}

// WhileExpr loops while Cond holds.
type WhileExpr struct {
	Cond Expr
	Body Expr
	Posn Position
}

func (e *WhileExpr) Pos() Position { return e.Posn }
func (*WhileExpr) exprNode()       {}
func (e *WhileExpr) String() string {
	return "while (" + e.Cond.String() + ") " + e.Body.String()
}

// BlockExpr evaluates its elements in order.
type BlockExpr struct {
	Elements []Expr
	Posn     Position
}

func (e *BlockExpr) Pos() Position { return e.Posn }
func (*BlockExpr) exprNode()       {}
func (e *BlockExpr) String() string {
	if len(e.Elements) == 0 {
		return "{}"
	}
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// FunctionCall invokes a named function with positional arguments.
type FunctionCall struct {
	Name string
	Args []Expr
	Posn Position
}

func (e *FunctionCall) Pos() Position  { return e.Posn }
func (*FunctionCall) exprNode()        {}
func (e *FunctionCall) String() string { return e.Name + "(" + joinExprs(e.Args) + ")" }

// LabeledParameter is one name=expr argument of a labeled call.
type LabeledParameter struct {
	Name      string
	Parameter Expr
}

// LabeledCall invokes a named function with arguments matched by label.
type LabeledCall struct {
	Name string
	Args []LabeledParameter
	Posn Position
}

func (e *LabeledCall) Pos() Position { return e.Posn }
func (*LabeledCall) exprNode()       {}
func (e *LabeledCall) String() string {
	parts := make([]string, len(e.Args))
	for i, arg := range e.Args {
		parts[i] = arg.Name + "=" + arg.Parameter.String()
	}
	return e.Name + "([" + strings.Join(parts, ", ") + "])"
}

func declString(name string, expr Expr, mutable bool) string {
	prefix := "let "
	if mutable {
		prefix = "mutable let "
	}
	return prefix + name + " = " + expr.String()
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
