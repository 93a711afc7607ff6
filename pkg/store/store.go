// Package store keeps the latest fetch outcome for one data domain.
// Every request gets a sequence number; only the latest request may settle the state,
// and starting a new request cancels the one in flight.
package store

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/umputun/alertview/pkg/domain"
)

// Store holds domain state and serializes its transitions
type Store[T any] struct {
	name string

	mu     sync.Mutex
	state   domain.State[T]
	seq     uint64
	cancel  context.CancelFunc
	prevErr string // error shown before the latest request began
}

// New makes an idle store with no items and one page
func New[T any](name string) *Store[T] {
	return &Store[T]{name: name, state: domain.State[T]{Items: []T{}, TotalPages: 1}}
}

// Name returns the store's domain name
func (s *Store[T]) Name() string { return s.name }

// Begin marks a new request as loading and returns its context and sequence.
// The previous in-flight request, if any, is cancelled. Items and total pages stay as they are.
func (s *Store[T]) Begin(ctx context.Context) (context.Context, uint64) {
	reqCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	if !s.state.Loading {
		s.prevErr = s.state.Error
	}
	s.seq++
	s.state.Seq = s.seq
	s.state.Loading = true
	s.state.Error = ""
	return reqCtx, s.seq
}

// Succeed applies a successful result. Returns false if seq is stale and the result was dropped.
func (s *Store[T]) Succeed(seq uint64, res domain.PageResult[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.settle(seq) {
		return false
	}
	items := res.Items
	if items == nil {
		items = []T{}
	}
	s.state.Items = items
	s.state.TotalPages = max(res.TotalPages, 1)
	return true
}

// Fail records a failure as a display message, keeping previous items.
// Returns false if seq is stale and the failure was dropped.
func (s *Store[T]) Fail(seq uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.settle(seq) {
		return false
	}
	s.state.Error = domain.DisplayMessage(err)
	return true
}

// settle ends the loading phase for the latest request, must be called under lock
func (s *Store[T]) settle(seq uint64) bool {
	if seq != s.seq {
		log.Printf("[DEBUG] %s: dropped stale response #%d, latest #%d", s.name, seq, s.seq)
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state.Loading = false
	s.state.Error = ""
	return true
}

// Abort ends loading of request seq whose caller went away, nothing is recorded
// and the error shown before the request is restored. Returns false if seq is stale.
func (s *Store[T]) Abort(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.settle(seq) {
		return false
	}
	s.state.Error = s.prevErr
	return true
}

// Settle applies the outcome of request seq begun with parent ctx and returns the snapshot.
// A failure caused by cancellation of ctx aborts the request instead of recording an error.
func (s *Store[T]) Settle(ctx context.Context, seq uint64, res domain.PageResult[T], err error) domain.State[T] {
	switch {
	case err == nil:
		s.Succeed(seq, res)
	case ctx.Err() != nil:
		if s.Abort(seq) {
			log.Printf("[DEBUG] %s: request #%d aborted: %v", s.name, seq, ctx.Err())
		}
	case s.Fail(seq, err) && !errors.Is(err, context.Canceled):
		log.Printf("[WARN] %s: request #%d failed: %v", s.name, seq, err)
	}
	return s.Snapshot()
}

// Snapshot returns a copy of the current state
func (s *Store[T]) Snapshot() domain.State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.state
	res.Items = append([]T(nil), s.state.Items...)
	if res.Items == nil {
		res.Items = []T{}
	}
	return res
}
