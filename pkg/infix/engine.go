package infix

import "fmt"

// Engine evaluates infix expressions using an operand stack and an operator
// stack. The operator stack always holds a sentinel "(" marking the outer
// boundary of the whole expression; end of input acts as its matching ")".
//
// An Engine is not safe for concurrent use. It may be reused across Evaluate
// calls: a successful call restores the sentinel, a failed call leaves the
// stacks inconsistent and requires Reset before the next use.
type Engine struct {
	notation  Notation
	operands  []Value
	operators []Operator
}

// New returns an Engine producing results in the given notation.
func New(n Notation) *Engine {
	return &Engine{
		notation:  n,
		operators: []Operator{LeftParen},
	}
}

// Reset clears both stacks and reseeds the boundary sentinel. Required after
// a failed Evaluate call, a no-op on a fresh or successfully used Engine.
func (e *Engine) Reset() {
	e.operands = e.operands[:0]
	e.operators = append(e.operators[:0], LeftParen)
}

// Evaluate tokenizes text and reduces it to a single result.
func (e *Engine) Evaluate(text string) (Value, error) {
	tok := NewTokenizer(text)
	for {
		t, ok, err := tok.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		switch t.Kind {
		case OperandToken:
			e.operands = append(e.operands, e.notation.literal(t.Operand))
		case OperatorToken:
			if err := e.processOperator(t.Op); err != nil {
				return nil, err
			}
		}
	}

	// End of input closes the implicit group opened by the sentinel.
	if err := e.reduceGroup(); err != nil {
		return nil, err
	}

	if len(e.operators) != 0 {
		return nil, ErrTooManyLeftParen
	}
	switch len(e.operands) {
	case 1:
	case 0:
		// Empty input or a bare "()" reaches the terminal flush with
		// nothing to return.
		return nil, ErrInsufficientOperands
	default:
		// Unreachable: every reduction pairs exactly two operands into
		// one, so a surplus means a defect in the engine itself.
		panic(fmt.Sprintf("infix: %d operands left after terminal reduction", len(e.operands)))
	}

	result := e.operands[0]
	e.operands = e.operands[:0]
	e.operators = append(e.operators, LeftParen)
	return result, nil
}

func (e *Engine) processOperator(op Operator) error {
	if len(e.operators) == 0 {
		return ErrTooManyRightParen
	}

	if op == RightParen {
		return e.reduceGroup()
	}

	top := e.operators[len(e.operators)-1]
	switch {
	case op.InputPriority() > top.StackPriority():
		// A tighter-binding operator may still arrive, so defer.
		e.operators = append(e.operators, op)
	case op.InputPriority() < top.StackPriority():
		// Everything above the nearest "(" binds tighter than op, so
		// the whole group collapses. The reduction consumes the group
		// boundary, whose real ")" has not arrived yet, so restore it.
		if err := e.reduceGroup(); err != nil {
			return err
		}
		e.operators = append(e.operators, LeftParen, op)
	default:
		// Equal priority is the left-associative case: reduce the
		// previous operator before deferring this one.
		if _, err := e.reduceOnce(); err != nil {
			return err
		}
		e.operators = append(e.operators, op)
	}

	return nil
}

// reduceOnce pops the top operator and applies it to the top two operands,
// rightmost popped first. boundary is true when the popped operator was a
// "(", which is discarded without touching the operands.
func (e *Engine) reduceOnce() (boundary bool, err error) {
	if len(e.operators) == 0 {
		return false, ErrTooManyRightParen
	}

	op := e.operators[len(e.operators)-1]
	e.operators = e.operators[:len(e.operators)-1]
	if op == LeftParen {
		return true, nil
	}

	if len(e.operands) < 2 {
		return false, ErrInsufficientOperands
	}

	right := e.operands[len(e.operands)-1]
	left := e.operands[len(e.operands)-2]
	e.operands = e.operands[:len(e.operands)-2]
	e.operands = append(e.operands, left.combine(op, right))
	return false, nil
}

// reduceGroup reduces until the nearest "(" has been popped and discarded.
func (e *Engine) reduceGroup() error {
	for {
		boundary, err := e.reduceOnce()
		if err != nil {
			return err
		}
		if boundary {
			return nil
		}
	}
}
