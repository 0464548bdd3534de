package lang

import (
	"errors"
	"fmt"
)

// ErrorKind classifies runtime failures. Every failure is fatal to the
// evaluation that raised it.
type ErrorKind int

const (
	TypeMismatch ErrorKind = iota + 1
	UnboundName
	UnknownFunction
	ImmutableAssignment
	MissingLabel
	ArityMismatch
	DivisionByZero
	MissingEntryPoint
	StackOverflow
	InvalidOperand
	Unsupported
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "type mismatch"
	case UnboundName:
		return "unbound name"
	case UnknownFunction:
		return "unknown function"
	case ImmutableAssignment:
		return "immutable assignment"
	case MissingLabel:
		return "missing label"
	case ArityMismatch:
		return "arity mismatch"
	case DivisionByZero:
		return "division by zero"
	case MissingEntryPoint:
		return "missing entry point"
	case StackOverflow:
		return "stack overflow"
	case InvalidOperand:
		return "invalid operand"
	case Unsupported:
		return "unsupported node"
	default:
		return "unknown error"
	}
}

// Error is a runtime failure carrying its kind and a short context message.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrTypeMismatch        = &Error{Kind: TypeMismatch}
	ErrUnboundName         = &Error{Kind: UnboundName}
	ErrUnknownFunction     = &Error{Kind: UnknownFunction}
	ErrImmutableAssignment = &Error{Kind: ImmutableAssignment}
	ErrMissingLabel        = &Error{Kind: MissingLabel}
	ErrArityMismatch       = &Error{Kind: ArityMismatch}
	ErrDivisionByZero      = &Error{Kind: DivisionByZero}
	ErrMissingEntryPoint   = &Error{Kind: MissingEntryPoint}
	ErrStackOverflow       = &Error{Kind: StackOverflow}
	ErrInvalidOperand      = &Error{Kind: InvalidOperand}
	ErrUnsupported         = &Error{Kind: Unsupported}
)

// KindOf extracts the kind of a runtime error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
