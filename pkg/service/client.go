package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/calclab/infix/pkg/history"
)

// RemoteError is an evaluation failure reported by the server. Kind carries
// the machine-readable name of the failure when the server recognized it.
type RemoteError struct {
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Client calls a remote evaluation service.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
	}
}

// Evaluate submits one expression and returns its rendered result.
func (c *Client) Evaluate(ctx context.Context, notation, expression string) (string, error) {
	body, err := json.Marshal(evaluateRequest{Expression: expression, Notation: notation})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequest(http.MethodPost, c.base+"/api/evaluate", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return "", errors.Wrap(err, "request failed")
	}
	defer httpResp.Body.Close()

	var resp evaluateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", errors.Wrapf(err, "malformed response (HTTP %d)", httpResp.StatusCode)
	}

	if resp.Error != "" {
		return "", &RemoteError{Kind: resp.Kind, Message: resp.Error}
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", errors.Errorf("unexpected HTTP status %d", httpResp.StatusCode)
	}

	switch v := resp.Result.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case string:
		return v, nil
	default:
		return "", errors.Errorf("unexpected result type %T", resp.Result)
	}
}

// History returns the n most recent evaluations recorded by the server.
func (c *Client) History(ctx context.Context, n int) ([]history.Entry, error) {
	url := fmt.Sprintf("%s/api/history?n=%d", c.base, n)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	httpResp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected HTTP status %d", httpResp.StatusCode)
	}

	var entries []history.Entry
	if err := json.NewDecoder(httpResp.Body).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "malformed response")
	}
	return entries, nil
}
