package infix

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Notation selects the concrete result form an Engine produces.
type Notation int8

const (
	// NotationValue evaluates the expression to a floating-point number.
	NotationValue Notation = iota
	// NotationPrefix renders the expression in prefix form, e.g. "(+ 1 2)".
	NotationPrefix
	// NotationPostfix renders the expression in postfix form, e.g. "(1 2 +)".
	NotationPostfix
)

// ParseNotation maps a notation name to its Notation. The empty string is
// treated as "value".
func ParseNotation(s string) (Notation, error) {
	switch s {
	case "", "value":
		return NotationValue, nil
	case "prefix":
		return NotationPrefix, nil
	case "postfix":
		return NotationPostfix, nil
	default:
		return NotationValue, errors.Errorf("unknown notation %q", s)
	}
}

func (n Notation) String() string {
	switch n {
	case NotationPrefix:
		return "prefix"
	case NotationPostfix:
		return "postfix"
	default:
		return "value"
	}
}

// literal seeds a raw operand into the notation's concrete form.
func (n Notation) literal(v float64) Value {
	switch n {
	case NotationPrefix:
		return PrefixExpr(formatOperand(v))
	case NotationPostfix:
		return PostfixExpr(formatOperand(v))
	default:
		return Number(v)
	}
}

func formatOperand(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Value is a partial computation: either a literal seeded from an operand
// token or the combination of two sub-results under an operator. Combining
// never mixes concrete forms; an Engine deals in exactly one form for its
// whole lifetime.
type Value interface {
	combine(op Operator, right Value) Value
	String() string
}

// Number evaluates arithmetic directly with IEEE 754 semantics: division by
// zero and out-of-domain powers yield Inf or NaN rather than errors.
type Number float64

func (l Number) combine(op Operator, right Value) Value {
	r := right.(Number)
	switch op {
	case Add:
		return l + r
	case Sub:
		return l - r
	case Mul:
		return l * r
	case Div:
		return l / r
	case Pow:
		return Number(math.Pow(float64(l), float64(r)))
	default:
		panic(fmt.Sprintf("combine called with non-binary operator %q", op))
	}
}

func (l Number) String() string {
	return formatOperand(float64(l))
}

// Float returns the numeric value.
func (l Number) Float() float64 {
	return float64(l)
}

// PrefixExpr renders combinations as fully parenthesized prefix text.
type PrefixExpr string

func (l PrefixExpr) combine(op Operator, right Value) Value {
	mustBinary(op)
	return PrefixExpr(fmt.Sprintf("(%s %s %s)", op, l, right))
}

func (l PrefixExpr) String() string {
	return string(l)
}

// PostfixExpr renders combinations as fully parenthesized postfix text.
type PostfixExpr string

func (l PostfixExpr) combine(op Operator, right Value) Value {
	mustBinary(op)
	return PostfixExpr(fmt.Sprintf("(%s %s %s)", l, right, op))
}

func (l PostfixExpr) String() string {
	return string(l)
}

// The engine never asks a Value to combine under a parenthesis; reaching this
// with one is a defect, not an input error.
func mustBinary(op Operator) {
	if !op.binary() {
		panic(fmt.Sprintf("combine called with non-binary operator %q", op))
	}
}
