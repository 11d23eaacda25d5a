package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calclab/infix/pkg/history"
)

func TestService(t *testing.T) {
	store := history.NewMemory(16)
	srv := httptest.NewServer(New(store).Handler())
	defer srv.Close()

	client := NewClient(srv.URL)

	testCases := []struct {
		name       string
		notation   string
		expression string
		wantResult string
		wantKind   string
	}{
		{
			name:       "value",
			notation:   "value",
			expression: "1+2",
			wantResult: "3",
		},
		{
			name:       "defaultNotation",
			expression: "2*2*(4-3)+8",
			wantResult: "12",
		},
		{
			name:       "prefix",
			notation:   "prefix",
			expression: "1+2",
			wantResult: "(+ 1 2)",
		},
		{
			name:       "postfix",
			notation:   "postfix",
			expression: "1+2",
			wantResult: "(1 2 +)",
		},
		{
			name:       "insufficientOperands",
			expression: "1+",
			wantKind:   "insufficient_operands",
		},
		{
			name:       "tooManyRightParen",
			expression: "1+2)",
			wantKind:   "too_many_right_paren",
		},
		{
			name:       "tooManyLeftParen",
			expression: "(1+2",
			wantKind:   "too_many_left_paren",
		},
		{
			name:       "emptyGroup",
			expression: "()",
			wantKind:   "insufficient_operands",
		},
		{
			name:       "unknownSymbol",
			expression: "1a+2",
			wantKind:   "unknown_symbol",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			haveResult, err := client.Evaluate(context.Background(), tc.notation, tc.expression)
			if tc.wantKind != "" {
				require.Error(t, err)
				remoteErr, ok := err.(*RemoteError)
				require.True(t, ok)
				require.Equal(t, tc.wantKind, remoteErr.Kind)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantResult, haveResult)
		})
	}

	t.Run("history", func(t *testing.T) {
		entries, err := client.History(context.Background(), 3)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		// Newest first: the last test case above was the unknown symbol.
		require.Equal(t, "1a+2", entries[0].Expression)
		require.NotEmpty(t, entries[0].Err)
	})

	t.Run("emptyExpression", func(t *testing.T) {
		_, err := client.Evaluate(context.Background(), "", "   ")
		remoteErr, ok := err.(*RemoteError)
		require.True(t, ok)
		require.Equal(t, "", remoteErr.Kind)
	})

	t.Run("badNotation", func(t *testing.T) {
		_, err := client.Evaluate(context.Background(), "roman", "1+2")
		require.Error(t, err)
	})

	t.Run("methodNotAllowed", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/evaluate")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("malformedBody", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/evaluate", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("status", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/status")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
