package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuery returned for queries with out-of-range page or size
var ErrInvalidQuery = errors.New("invalid query")

// Query is a single fetch intent. Blank Text means no filter.
type Query struct {
	Text string
	Page int // 1-based
	Size int
}

// Validate checks page and size bounds
func (q Query) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("%w: page %d, must be at least 1", ErrInvalidQuery, q.Page)
	}
	if q.Size < 1 {
		return fmt.Errorf("%w: size %d, must be at least 1", ErrInvalidQuery, q.Size)
	}
	return nil
}

// Filter returns the trimmed search text, empty if there is no filter
func (q Query) Filter() string {
	return strings.TrimSpace(q.Text)
}

// PageResult is the normalized outcome of one successful fetch.
// It replaces any previous result entirely.
type PageResult[T any] struct {
	Items      []T
	TotalPages int
}

// State is the per-domain state shown by views. Loading and Error are never set together.
type State[T any] struct {
	Items      []T    `json:"items"`
	TotalPages int    `json:"total_pages"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
	Seq        uint64 `json:"seq"`
}

// NoResults reports the settled-but-empty display state, distinct from failure
func (s State[T]) NoResults() bool {
	return !s.Loading && s.Error == "" && len(s.Items) == 0
}

// Head returns up to n first items
func (s State[T]) Head(n int) []T {
	if n >= len(s.Items) {
		return s.Items
	}
	return s.Items[:n]
}
