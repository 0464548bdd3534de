package lang

import "github.com/simonNozaki/koys/ast"

// applyBinary applies op to already evaluated operands. Operand types never
// coerce: a combination the operator does not accept is a TypeMismatch.
func applyBinary(op ast.BinaryOp, lhs, rhs Value) (Value, error) {
	switch op {
	case ast.OpAdd:
		if lhs.IsText() && rhs.IsText() {
			a, _ := lhs.AsText()
			b, _ := rhs.AsText()
			return TextValue(a + b), nil
		}
		a, b, err := intOperands(op, lhs, rhs)
		if err != nil {
			return Value{}, err
		}
		return IntValue(a + b), nil
	case ast.OpSubtract, ast.OpMultiply, ast.OpDivide, ast.OpRemainder:
		a, b, err := intOperands(op, lhs, rhs)
		if err != nil {
			return Value{}, err
		}
		return arithmetic(op, a, b)
	case ast.OpLessThan, ast.OpLessOrEqual, ast.OpGreaterThan, ast.OpGreaterOrEqual:
		a, b, err := intOperands(op, lhs, rhs)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(compareInts(op, a, b)), nil
	case ast.OpEqual, ast.OpNotEqual:
		if lhs.Type != rhs.Type || !isComparable(lhs.Type) {
			return Value{}, operandError(op, lhs, rhs)
		}
		eq := lhs.Equal(rhs)
		if op == ast.OpNotEqual {
			eq = !eq
		}
		return BoolValue(eq), nil
	case ast.OpLogicalAnd, ast.OpLogicalOr:
		if !lhs.IsBool() || !rhs.IsBool() {
			return Value{}, operandError(op, lhs, rhs)
		}
		a, _ := lhs.AsBool()
		b, _ := rhs.AsBool()
		if op == ast.OpLogicalAnd {
			return BoolValue(a && b), nil
		}
		return BoolValue(a || b), nil
	default:
		return Value{}, newError(Unsupported, "binary operator %d", int(op))
	}
}

func arithmetic(op ast.BinaryOp, a, b int64) (Value, error) {
	switch op {
	case ast.OpSubtract:
		return IntValue(a - b), nil
	case ast.OpMultiply:
		return IntValue(a * b), nil
	case ast.OpDivide:
		if b == 0 {
			return Value{}, newError(DivisionByZero, "%d / 0", a)
		}
		return IntValue(a / b), nil
	default:
		if b == 0 {
			return Value{}, newError(DivisionByZero, "%d %% 0", a)
		}
		return IntValue(a % b), nil
	}
}

func compareInts(op ast.BinaryOp, a, b int64) bool {
	switch op {
	case ast.OpLessThan:
		return a < b
	case ast.OpLessOrEqual:
		return a <= b
	case ast.OpGreaterThan:
		return a > b
	default:
		return a >= b
	}
}

func intOperands(op ast.BinaryOp, lhs, rhs Value) (int64, int64, error) {
	if !lhs.IsInt() || !rhs.IsInt() {
		return 0, 0, operandError(op, lhs, rhs)
	}
	a, _ := lhs.AsInt()
	b, _ := rhs.AsInt()
	return a, b, nil
}

// Mappings and functions are not comparable with == and !=.
func isComparable(t ValueType) bool {
	switch t {
	case TypeInt, TypeBool, TypeText, TypeSet, TypeSequence:
		return true
	}
	return false
}

func operandError(op ast.BinaryOp, lhs, rhs Value) error {
	return newError(TypeMismatch, "%s (%s) is not defined for %s %s and %s %s",
		op.Name(), op, lhs.TypeName(), lhs, rhs.TypeName(), rhs)
}
