package infix

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestEvaluateValue(t *testing.T) {
	testCases := []struct {
		name       string
		expr       string
		wantResult float64
	}{
		{
			name:       "add",
			expr:       "1+2",
			wantResult: 3,
		},
		{
			name:       "mixedPriorities",
			expr:       "1*2+3/1-2^2",
			wantResult: 1,
		},
		{
			name:       "parenthesizedGroup",
			expr:       "2*2*(4-3)+8",
			wantResult: 12,
		},
		{
			name:       "leftAssociativeSub",
			expr:       "8-1-2",
			wantResult: 5,
		},
		{
			name:       "leftAssociativeDiv",
			expr:       "12/2/2",
			wantResult: 3,
		},
		{
			name:       "leftAssociativePow",
			expr:       "2^3^2",
			wantResult: 64,
		},
		{
			name:       "whitespace",
			expr:       "  1 +   2 ",
			wantResult: 3,
		},
		{
			name:       "nestedGroups",
			expr:       "((1+2)*(3+4))",
			wantResult: 21,
		},
		{
			name:       "decimalLiterals",
			expr:       "1.5*4",
			wantResult: 6,
		},
	}

	engine := New(NotationValue)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			haveResult, err := engine.Evaluate(tc.expr)
			require.NoError(t, err)
			require.Equal(t, Number(tc.wantResult), haveResult)
		})
	}
}

func TestEvaluateNotations(t *testing.T) {
	testCases := []struct {
		name       string
		notation   Notation
		expr       string
		wantResult string
	}{
		{
			name:       "prefixAdd",
			notation:   NotationPrefix,
			expr:       "1+2",
			wantResult: "(+ 1 2)",
		},
		{
			name:       "prefixMixed",
			notation:   NotationPrefix,
			expr:       "1*2+3/1-2^2",
			wantResult: "(- (+ (* 1 2) (/ 3 1)) (^ 2 2))",
		},
		{
			name:       "postfixAdd",
			notation:   NotationPostfix,
			expr:       "1+2",
			wantResult: "(1 2 +)",
		},
		{
			name:       "postfixMixed",
			notation:   NotationPostfix,
			expr:       "1*2+3",
			wantResult: "((1 2 *) 3 +)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			haveResult, err := New(tc.notation).Evaluate(tc.expr)
			require.NoError(t, err)
			require.Equal(t, tc.wantResult, haveResult.String())
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	testCases := []struct {
		name    string
		expr    string
		wantErr error
	}{
		{
			name:    "trailingOperator",
			expr:    "1+",
			wantErr: ErrInsufficientOperands,
		},
		{
			name:    "unmatchedRightParen",
			expr:    "1+2)",
			wantErr: ErrTooManyRightParen,
		},
		{
			name:    "unmatchedLeftParen",
			expr:    "(1+2",
			wantErr: ErrTooManyLeftParen,
		},
		{
			name:    "operatorAfterClosedGroup",
			expr:    "1+2)+4",
			wantErr: ErrTooManyRightParen,
		},
		{
			name:    "emptyInput",
			expr:    "",
			wantErr: ErrInsufficientOperands,
		},
		{
			name:    "whitespaceOnly",
			expr:    "   ",
			wantErr: ErrInsufficientOperands,
		},
		{
			name:    "emptyGroup",
			expr:    "()",
			wantErr: ErrInsufficientOperands,
		},
		{
			name:    "nestedEmptyGroups",
			expr:    "(())",
			wantErr: ErrInsufficientOperands,
		},
		{
			name:    "operatorOnEmptyGroup",
			expr:    "5+()",
			wantErr: ErrInsufficientOperands,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine := New(NotationValue)
			_, err := engine.Evaluate(tc.expr)
			require.Equal(t, tc.wantErr, errors.Cause(err))
		})
	}

	t.Run("unknownSymbol", func(t *testing.T) {
		_, err := New(NotationValue).Evaluate("1a+2")
		var symErr *UnknownSymbolError
		require.Error(t, err)
		require.IsType(t, symErr, errors.Cause(err))
		require.Equal(t, "1a", errors.Cause(err).(*UnknownSymbolError).Symbol)
	})
}

func TestEngineReuse(t *testing.T) {
	engine := New(NotationValue)

	t.Run("afterSuccess", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			haveResult, err := engine.Evaluate("1+2")
			require.NoError(t, err)
			require.Equal(t, Number(3), haveResult)
		}
	})

	t.Run("afterFailure", func(t *testing.T) {
		_, err := engine.Evaluate("(1+2")
		require.Error(t, err)

		engine.Reset()
		haveResult, err := engine.Evaluate("1+2")
		require.NoError(t, err)
		require.Equal(t, Number(3), haveResult)
	})
}

func TestFloatingPointEdges(t *testing.T) {
	engine := New(NotationValue)

	t.Run("divideByZero", func(t *testing.T) {
		haveResult, err := engine.Evaluate("1/0")
		require.NoError(t, err)
		require.True(t, math.IsInf(haveResult.(Number).Float(), 1))
	})

	t.Run("negativeFractionalPower", func(t *testing.T) {
		haveResult, err := engine.Evaluate("(0-1)^0.5")
		require.NoError(t, err)
		require.True(t, math.IsNaN(haveResult.(Number).Float()))
	})
}
