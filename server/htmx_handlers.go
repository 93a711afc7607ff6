package server

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/umputun/alertview/pkg/domain"
	"github.com/umputun/alertview/pkg/query"
)

// partial template names
const (
	templateNewsResults     = "news-results"
	templateDisasterResults = "disaster-results"
)

// resultsView is the data of a results block: items, status and pagination
type resultsView[T any] struct {
	Domain domain.Domain
	State  domain.State[T]
	Query  query.State
	Window query.Window
}

// pageView is the data of a full domain page
type pageView[T any] struct {
	ActivePage string
	Version    string
	Results    resultsView[T]
}

// homeView is the data of the home page
type homeView struct {
	ActivePage string
	Version    string
	HomeItems  int
	News       resultsView[domain.News]
	Disaster   resultsView[domain.DisasterMessage]
}

// newResultsView renders the controller's latest request, the pagination and pushed url follow its query
func newResultsView[T any](d domain.Domain, c *query.Controller[T]) resultsView[T] {
	qs, st, win := c.View()
	return resultsView[T]{Domain: d, State: st, Query: qs, Window: win}
}

// homeHandler mounts both domain views concurrently and shows the head of each
func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		sess.news.Mount(ctx)
		return nil
	})
	g.Go(func() error {
		sess.disaster.Mount(ctx)
		return nil
	})
	_ = g.Wait() // mounts never fail, errors are kept in the states

	data := homeView{
		ActivePage: "home",
		Version:    s.version,
		HomeItems:  s.config.GetFullConfig().Display.HomeItems,
		News:       newResultsView(domain.DomainNews, sess.news),
		Disaster:   newResultsView(domain.DomainDisaster, sess.disaster),
	}
	if err := s.renderPage(w, pageHome, data); err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to render page", err)
	}
}

// newsHandler displays the news page, q and page url parameters restore the view
func (s *Server) newsHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	restoreView(r, sess.news)
	writeResults(s, w, r, pageNews, templateNewsResults, newResultsView(domain.DomainNews, sess.news))
}

// newsPageHandler switches the news view to another page
func (s *Server) newsPageHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	changePage(r, sess.news)
	writeResults(s, w, r, pageNews, templateNewsResults, newResultsView(domain.DomainNews, sess.news))
}

// newsSearchHandler applies a news search from the form
func (s *Server) newsSearchHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	submitSearch(r, sess.news)
	writeResults(s, w, r, pageNews, templateNewsResults, newResultsView(domain.DomainNews, sess.news))
}

// disasterHandler displays the disaster messages page, q and page url parameters restore the view
func (s *Server) disasterHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	restoreView(r, sess.disaster)
	writeResults(s, w, r, pageDisaster, templateDisasterResults, newResultsView(domain.DomainDisaster, sess.disaster))
}

// disasterPageHandler switches the disaster view to another page
func (s *Server) disasterPageHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	changePage(r, sess.disaster)
	writeResults(s, w, r, pageDisaster, templateDisasterResults, newResultsView(domain.DomainDisaster, sess.disaster))
}

// disasterSearchHandler applies a disaster messages search from the form
func (s *Server) disasterSearchHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	submitSearch(r, sess.disaster)
	writeResults(s, w, r, pageDisaster, templateDisasterResults, newResultsView(domain.DomainDisaster, sess.disaster))
}

func restoreView[T any](r *http.Request, c *query.Controller[T]) {
	c.Restore(r.Context(), r.URL.Query().Get("q"), parsePage(r.URL.Query().Get("page")))
}

// changePage moves to the requested page, a view never mounted in this session is mounted at that page
func changePage[T any](r *http.Request, c *query.Controller[T]) {
	page := parsePage(r.URL.Query().Get("page"))
	if !c.Mounted() {
		c.Restore(r.Context(), "", page)
		return
	}
	c.SetPage(r.Context(), page)
}

func submitSearch[T any](r *http.Request, c *query.Controller[T]) {
	if err := r.ParseForm(); err != nil {
		log.Printf("[WARN] failed to parse search form: %v", err)
	}
	c.Submit(r.Context(), r.FormValue("q"))
}

// writeResults renders results partial for htmx requests and the full page otherwise.
// htmx gets the canonical url of the view pushed to browser history.
func writeResults[T any](s *Server, w http.ResponseWriter, r *http.Request, page, partial string, view resultsView[T]) {
	if isHTMX(r) {
		w.Header().Set("HX-Push-Url", canonicalURL(view.Domain, view.Query))
		s.renderPartial(w, partial, view)
		return
	}

	data := pageView[T]{ActivePage: string(view.Domain), Version: s.version, Results: view}
	if err := s.renderPage(w, page, data); err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to render page", err)
	}
}

// canonicalURL returns bookmarkable url of a view state
func canonicalURL(d domain.Domain, qs query.State) string {
	params := url.Values{}
	if qs.SearchText != "" {
		params.Set("q", qs.SearchText)
	}
	if qs.CurrentPage > 1 {
		params.Set("page", strconv.Itoa(qs.CurrentPage))
	}
	if len(params) == 0 {
		return "/" + string(d)
	}
	return "/" + string(d) + "?" + params.Encode()
}

// parsePage returns positive page number, 1 for anything invalid
func parsePage(v string) int {
	p, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
