package infix

// Operator identifies one of the recognized operators, including the
// parentheses that delimit groups.
type Operator int8

const (
	None Operator = iota
	Add
	Sub
	Mul
	Div
	Pow
	LeftParen
	RightParen
)

// ParseOperator maps a single character to its Operator. It returns None for
// anything that is not part of the operator set.
func ParseOperator(r rune) Operator {
	switch r {
	case '+':
		return Add
	case '-':
		return Sub
	case '*':
		return Mul
	case '/':
		return Div
	case '^':
		return Pow
	case '(':
		return LeftParen
	case ')':
		return RightParen
	default:
		return None
	}
}

// Rune returns the display character of the operator.
func (o Operator) Rune() rune {
	switch o {
	case Add:
		return '+'
	case Sub:
		return '-'
	case Mul:
		return '*'
	case Div:
		return '/'
	case Pow:
		return '^'
	case LeftParen:
		return '('
	case RightParen:
		return ')'
	default:
		panic("unknown operator")
	}
}

func (o Operator) String() string {
	return string(o.Rune())
}

// StackPriority is the priority of an operator once it resides in the
// operator stack. A "(" on the stack yields to every incoming operator so
// that nested groups stay intact.
func (o Operator) StackPriority() int {
	switch o {
	case Add, Sub:
		return 1
	case Mul, Div:
		return 2
	case Pow:
		return 3
	case LeftParen:
		return 0
	default:
		return -1
	}
}

// InputPriority is the priority of an operator as it arrives from the input.
// An incoming "(" outranks everything and is always pushed.
func (o Operator) InputPriority() int {
	switch o {
	case Add, Sub:
		return 1
	case Mul, Div:
		return 2
	case Pow:
		return 3
	case LeftParen:
		return 99
	default:
		return -1
	}
}

// binary reports whether the operator combines two operands.
func (o Operator) binary() bool {
	return o >= Add && o <= Pow
}
