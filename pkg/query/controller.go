// Package query translates page-view input (search text, page changes) into fetches
// against a domain store.
package query

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/umputun/alertview/pkg/domain"
	"github.com/umputun/alertview/pkg/store"
)

// Fetcher performs one gateway request, i.e. gateway.Client.News
type Fetcher[T any] func(ctx context.Context, q domain.Query) (domain.PageResult[T], error)

// State is the ephemeral per-view input state
type State struct {
	SearchText  string
	CurrentPage int
}

// Controller drives fetches for one page view of a domain
type Controller[T any] struct {
	store *store.Store[T]
	fetch Fetcher[T]
	size  int

	mu    sync.Mutex
	state State
}

// NewController makes a controller bound to a store, a fetcher and a page size
func NewController[T any](st *store.Store[T], fetch Fetcher[T], size int) *Controller[T] {
	return &Controller[T]{store: st, fetch: fetch, size: max(size, 1), state: State{CurrentPage: 1}}
}

// Mount resets the view state and fetches the first unfiltered page
func (c *Controller[T]) Mount(ctx context.Context) domain.State[T] {
	return c.Restore(ctx, "", 1)
}

// Restore mounts the view with the given search text and page, i.e. from url parameters
func (c *Controller[T]) Restore(ctx context.Context, text string, page int) domain.State[T] {
	c.mu.Lock()
	c.state = State{SearchText: strings.TrimSpace(text), CurrentPage: max(page, 1)}
	return c.dispatchLocked(ctx)
}

// SetPage moves to another page keeping the current search text.
// Nothing is fetched if the page didn't change, unless the last fetch failed.
func (c *Controller[T]) SetPage(ctx context.Context, page int) domain.State[T] {
	page = max(page, 1)
	c.mu.Lock()
	if page == c.state.CurrentPage {
		if st := c.store.Snapshot(); st.Error == "" {
			c.mu.Unlock()
			return st
		}
	}
	c.state.CurrentPage = page
	return c.dispatchLocked(ctx)
}

// Submit applies a search, always starting from the first page
func (c *Controller[T]) Submit(ctx context.Context, text string) domain.State[T] {
	c.mu.Lock()
	c.state = State{SearchText: strings.TrimSpace(text), CurrentPage: 1}
	return c.dispatchLocked(ctx)
}

// State returns current view state
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the bound store's state without fetching
func (c *Controller[T]) Snapshot() domain.State[T] {
	return c.store.Snapshot()
}

// View returns the view state together with the store snapshot of its latest request
// and the pagination window for both
func (c *Controller[T]) View() (State, domain.State[T], Window) {
	c.mu.Lock()
	qs, st := c.state, c.store.Snapshot()
	c.mu.Unlock()
	return qs, st, NewWindow(qs.CurrentPage, st.TotalPages)
}

// Mounted reports whether the view fetched at least once
func (c *Controller[T]) Mounted() bool {
	return c.store.Snapshot().Seq > 0
}

// dispatchLocked begins the request for the current view state and releases c.mu for the fetch.
// Must be called with c.mu held, so the store's latest request always matches the view state.
func (c *Controller[T]) dispatchLocked(ctx context.Context) domain.State[T] {
	q := domain.Query{Text: c.state.SearchText, Page: c.state.CurrentPage, Size: c.size}
	reqCtx, seq := c.store.Begin(ctx)
	c.mu.Unlock()

	log.Printf("[DEBUG] %s: fetch #%d %q, page %d, size %d", c.store.Name(), seq, q.Text, q.Page, q.Size)
	res, err := c.fetch(reqCtx, q)
	return c.store.Settle(ctx, seq, res, err)
}
