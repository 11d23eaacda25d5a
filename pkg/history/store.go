// Package history records evaluated expressions so they can be replayed or
// inspected later.
package history

import "time"

// Entry is one recorded evaluation. Exactly one of Result and Err is set.
type Entry struct {
	Expression string    `json:"expression"`
	Notation   string    `json:"notation"`
	Result     string    `json:"result,omitempty"`
	Err        string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store records evaluations and serves the most recent ones, newest first.
type Store interface {
	Record(e Entry) error
	Recent(n int) ([]Entry, error)
	Close() error
}
