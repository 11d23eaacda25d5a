package infix

import (
	"fmt"

	"github.com/pkg/errors"
)

// The closed set of evaluation failures. Any of these aborts the Evaluate
// call immediately; the Engine must be Reset before it is used again.
var (
	ErrTooManyRightParen    = errors.New(`unbalanced expression: ")" without a matching "("`)
	ErrTooManyLeftParen     = errors.New(`unbalanced expression: "(" was never closed`)
	ErrInsufficientOperands = errors.New("operator is missing an operand")
)

// UnknownSymbolError reports a run of characters that is neither an operator
// nor a valid numeric literal.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q", e.Symbol)
}

// ErrorKind returns a short machine-readable name for one of the evaluation
// errors, or the empty string for anything outside the taxonomy.
func ErrorKind(err error) string {
	cause := errors.Cause(err)
	switch cause {
	case ErrTooManyRightParen:
		return "too_many_right_paren"
	case ErrTooManyLeftParen:
		return "too_many_left_paren"
	case ErrInsufficientOperands:
		return "insufficient_operands"
	}

	if _, ok := cause.(*UnknownSymbolError); ok {
		return "unknown_symbol"
	}

	return ""
}
