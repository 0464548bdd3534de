package parser

import "errors"

// Error is a syntax error. Incomplete is set when the input ended before a
// construct was closed, so appending more input may fix it.
type Error struct {
	Err        error
	Incomplete bool
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err}
}

func newIncompleteError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Err:        err,
		Incomplete: true,
	}
}

// IsIncomplete reports whether the supplied error represents incomplete input.
func IsIncomplete(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}
