package ast

// BinaryOp enumerates the infix operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
	OpLessThan
	OpLessOrEqual
	OpGreaterThan
	OpGreaterOrEqual
	OpEqual
	OpNotEqual
	OpLogicalAnd
	OpLogicalOr
)

// String returns the operator's source symbol.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpRemainder:
		return "%"
	case OpLessThan:
		return "<"
	case OpLessOrEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLogicalAnd:
		return "&&"
	case OpLogicalOr:
		return "||"
	default:
		return "?"
	}
}

// Name returns the operator's descriptive name used in diagnostics.
func (op BinaryOp) Name() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	case OpRemainder:
		return "remainder"
	case OpLessThan:
		return "less"
	case OpLessOrEqual:
		return "less-or-equal"
	case OpGreaterThan:
		return "greater"
	case OpGreaterOrEqual:
		return "greater-or-equal"
	case OpEqual:
		return "equal"
	case OpNotEqual:
		return "not-equal"
	case OpLogicalAnd:
		return "logical-and"
	case OpLogicalOr:
		return "logical-or"
	default:
		return "unknown"
	}
}

// UnaryOp enumerates the update operators.
type UnaryOp int

const (
	OpIncrement UnaryOp = iota
	OpDecrement
)

func (op UnaryOp) String() string {
	if op == OpDecrement {
		return "--"
	}
	return "++"
}
