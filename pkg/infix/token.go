package infix

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind discriminates the two token variants.
type TokenKind int8

const (
	OperandToken TokenKind = iota
	OperatorToken
)

// Token is either a numeric operand or an operator.
type Token struct {
	Kind    TokenKind
	Operand float64
	Op      Operator
}

type lexState int8

const (
	// stateEmpty: no literal text buffered.
	stateEmpty lexState = iota
	// stateAccumulating: literal text buffered, scan in progress.
	stateAccumulating
	// statePendingOperator: a literal was just emitted and the operator
	// that terminated it is held for the next pull.
	statePendingOperator
)

// Tokenizer turns raw text into a finite sequence of tokens, pulled one at a
// time. A numeric literal is only complete once the character after it has
// been seen, so the tokenizer buffers literal text and, when an operator
// terminates a literal, emits the literal first and holds the operator for
// the following pull.
//
// Tokenizers carry no shared state: the same text may be tokenized any number
// of times by independent instances with identical results.
type Tokenizer struct {
	input   string
	pos     int
	buf     strings.Builder
	pending Operator
	state   lexState
}

func NewTokenizer(text string) *Tokenizer {
	return &Tokenizer{input: text}
}

// Next returns the next token in the input. ok is false once the input is
// exhausted. A run of characters that fails to parse as a floating-point
// literal yields an *UnknownSymbolError.
func (t *Tokenizer) Next() (tok Token, ok bool, err error) {
	if t.state == statePendingOperator {
		op := t.pending
		t.pending = None
		t.state = stateEmpty
		return Token{Kind: OperatorToken, Op: op}, true, nil
	}

	for t.pos < len(t.input) {
		r, width := utf8.DecodeRuneInString(t.input[t.pos:])
		if unicode.IsSpace(r) {
			t.pos += width
			continue
		}

		op := ParseOperator(r)
		if op == None {
			t.buf.WriteRune(r)
			t.state = stateAccumulating
			t.pos += width
			continue
		}

		t.pos += width
		if t.state == stateAccumulating {
			// The operator terminates a buffered literal: emit the
			// literal now and hold the operator until the next pull.
			tok, err := t.flushLiteral()
			if err != nil {
				return Token{}, false, err
			}
			t.pending = op
			t.state = statePendingOperator
			return tok, true, nil
		}

		return Token{Kind: OperatorToken, Op: op}, true, nil
	}

	if t.state == stateAccumulating {
		tok, err := t.flushLiteral()
		if err != nil {
			return Token{}, false, err
		}
		t.state = stateEmpty
		return tok, true, nil
	}

	return Token{}, false, nil
}

func (t *Tokenizer) flushLiteral() (Token, error) {
	text := t.buf.String()
	t.buf.Reset()

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, &UnknownSymbolError{Symbol: text}
	}

	return Token{Kind: OperandToken, Operand: v}, nil
}
