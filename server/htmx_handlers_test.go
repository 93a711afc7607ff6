package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/alertview/pkg/domain"
	"github.com/umputun/alertview/pkg/query"
)

func TestServer_HomeHandler(t *testing.T) {
	gw := testGateway()
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	w := b.get("/", false)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	// both views mounted at the first page without filter
	require.Len(t, gw.NewsCalls(), 1)
	require.Len(t, gw.DisasterCalls(), 1)
	assert.Equal(t, domain.Query{Text: "", Page: 1, Size: 9}, gw.NewsCalls()[0].Q)
	assert.Equal(t, domain.Query{Text: "", Page: 1, Size: 10}, gw.DisasterCalls()[0].Q)

	// only head items are shown
	assert.Contains(t, body, "headline 2")
	assert.NotContains(t, body, "headline 3")
	assert.Contains(t, body, "category 2")
	assert.NotContains(t, body, "category 3")
	assert.Contains(t, body, `class="active"`)
	assert.Contains(t, body, "alertview 1.0.0")
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestServer_HomeHandler_DomainError(t *testing.T) {
	gw := testGateway()
	gw.DisasterFunc = func(ctx context.Context, q domain.Query) (domain.PageResult[domain.DisasterMessage], error) {
		return domain.PageResult[domain.DisasterMessage]{}, &domain.FetchError{Kind: domain.KindServer, Status: 500, Message: "db is down"}
	}
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	w := b.get("/", false)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "failed to load disaster messages: db is down")
	assert.Contains(t, body, "headline 0", "news shown despite disaster failure")
	assert.NotContains(t, body, "failed to load news")
}

func TestServer_NewsHandler(t *testing.T) {
	gw := testGateway()
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	w := b.get("/news", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()

	require.Len(t, gw.NewsCalls(), 1)
	assert.Equal(t, domain.Query{Text: "", Page: 1, Size: 9}, gw.NewsCalls()[0].Q)
	assert.Empty(t, gw.DisasterCalls())

	assert.Contains(t, body, "<html")
	assert.Contains(t, body, `id="results"`)
	assert.Contains(t, body, "headline 8")
	assert.Contains(t, body, "news body 0...")
	assert.Contains(t, body, "2024-03-05 10:00")
	assert.Contains(t, body, `href="https://news.example.com/0"`)
	assert.Contains(t, body, `hx-get="/news/page?page=3"`)
	assert.NotContains(t, body, `hx-get="/news/page?page=4"`)
	assert.NotContains(t, body, "no results")
	assert.NotContains(t, body, `role="alert"`)
}

func TestServer_NewsHandler_RestoreFromURL(t *testing.T) {
	gw := testGateway()
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	w := b.get("/news?q=%EA%B5%90%ED%86%B5%EC%82%AC%EA%B3%A0&page=2", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, gw.NewsCalls(), 1)
	assert.Equal(t, domain.Query{Text: "교통사고", Page: 2, Size: 9}, gw.NewsCalls()[0].Q)
	assert.Contains(t, w.Body.String(), `value="교통사고"`)
	assert.Contains(t, w.Body.String(), `aria-current="page">2</button>`)
}

func TestServer_DisasterHandler_NoDate(t *testing.T) {
	srv := New(testConfig(":3000"), testGateway(), "1.0.0", false)
	b := &browser{srv: srv}

	w := b.get("/disaster", false)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<strong>category 0</strong> - alert body 0")
	assert.Contains(t, body, "no date")
	// 12 pages, window 1..5 with jump to the last one
	assert.Contains(t, body, `hx-get="/disaster/page?page=5"`)
	assert.NotContains(t, body, `hx-get="/disaster/page?page=6"`)
	assert.Contains(t, body, `hx-get="/disaster/page?page=12"`)
	assert.Contains(t, body, "&hellip;")
}

func TestServer_PageChange(t *testing.T) {
	gw := testGateway()
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	b.get("/news", false)
	w := b.get("/news/page?page=2", true)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, gw.NewsCalls(), 2)
	assert.Equal(t, domain.Query{Text: "", Page: 2, Size: 9}, gw.NewsCalls()[1].Q)
	assert.Equal(t, "/news?page=2", w.Header().Get("HX-Push-Url"))

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(body), `<div id="results"`), body)
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, `aria-current="page">2</button>`)

	// same page again makes no request
	b.get("/news/page?page=2", true)
	assert.Len(t, gw.NewsCalls(), 2)
}

func TestServer_PageChange_NotMounted(t *testing.T) {
	gw := testGateway()
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	w := b.get("/disaster/page?page=3", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, gw.DisasterCalls(), 1)
	assert.Equal(t, domain.Query{Text: "", Page: 3, Size: 10}, gw.DisasterCalls()[0].Q)
	assert.Equal(t, "/disaster?page=3", w.Header().Get("HX-Push-Url"))
}

func TestServer_PageChange_InvalidPage(t *testing.T) {
	gw := testGateway()
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	b.get("/news?page=2", false)
	b.get("/news/page?page=-5", true)
	require.Len(t, gw.NewsCalls(), 2)
	assert.Equal(t, 1, gw.NewsCalls()[1].Q.Page)
}

func TestServer_Search(t *testing.T) {
	gw := testGateway()
	gw.DisasterFunc = func(ctx context.Context, q domain.Query) (domain.PageResult[domain.DisasterMessage], error) {
		if q.Text != "" {
			return domain.PageResult[domain.DisasterMessage]{Items: []domain.DisasterMessage{}, TotalPages: 1}, nil
		}
		return disasterPage(10, 5), nil
	}
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	b.get("/disaster", false)
	b.get("/disaster/page?page=3", true)

	w := b.search("/disaster/search", "화재", true)
	require.Equal(t, http.StatusOK, w.Code)
	calls := gw.DisasterCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, domain.Query{Text: "화재", Page: 1, Size: 10}, calls[2].Q, "search resets to the first page")
	assert.Equal(t, "/disaster?q=%ED%99%94%EC%9E%AC", w.Header().Get("HX-Push-Url"))

	body := w.Body.String()
	assert.Contains(t, body, "no results")
	assert.NotContains(t, body, `role="alert"`)
	assert.NotContains(t, body, `class="pagination"`)
}

func TestServer_Search_FullPage(t *testing.T) {
	gw := testGateway()
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	w := b.search("/news/search", "지진", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("HX-Push-Url"))
	assert.Contains(t, w.Body.String(), "<html")
	assert.Contains(t, w.Body.String(), `value="지진"`)
	require.Len(t, gw.NewsCalls(), 1)
	assert.Equal(t, domain.Query{Text: "지진", Page: 1, Size: 9}, gw.NewsCalls()[0].Q)
}

func TestServer_FailureKeepsItems(t *testing.T) {
	var mu sync.Mutex
	fail := false
	gw := testGateway()
	gw.NewsFunc = func(ctx context.Context, q domain.Query) (domain.PageResult[domain.News], error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return domain.PageResult[domain.News]{}, &domain.FetchError{Kind: domain.KindTransport,
				Message: domain.FallbackMessage, Err: errors.New("connection refused")}
		}
		return newsPage(9, 3), nil
	}
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	b.get("/news", false)
	mu.Lock()
	fail = true
	mu.Unlock()

	w := b.get("/news/page?page=2", true)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<div class="alert" role="alert">failed to load data</div>`)
	assert.Contains(t, body, "headline 0", "previous items stay visible")
	assert.NotContains(t, body, "no results")
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	gw := testGateway()
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	alice, bob := &browser{srv: srv}, &browser{srv: srv}

	alice.get("/news?page=3", false)
	bob.get("/news", false)
	require.NotEqual(t, alice.cookies[0].Value, bob.cookies[0].Value)

	// bob's view is still on the first page, so page=1 is a no-op for him and a fetch for alice
	bob.get("/news/page?page=1", true)
	assert.Len(t, gw.NewsCalls(), 2)
	alice.get("/news/page?page=1", true)
	assert.Len(t, gw.NewsCalls(), 3)
	assert.Equal(t, 2, srv.sessions.len())
}

func TestCanonicalURL(t *testing.T) {
	tbl := []struct {
		d    domain.Domain
		qs   query.State
		want string
	}{
		{domain.DomainNews, query.State{CurrentPage: 1}, "/news"},
		{domain.DomainNews, query.State{CurrentPage: 4}, "/news?page=4"},
		{domain.DomainDisaster, query.State{SearchText: "fire", CurrentPage: 1}, "/disaster?q=fire"},
		{domain.DomainDisaster, query.State{SearchText: "a b", CurrentPage: 2}, "/disaster?page=2&q=a+b"},
	}
	for _, tt := range tbl {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalURL(tt.d, tt.qs))
		})
	}
}

func TestParsePage(t *testing.T) {
	tbl := []struct {
		in   string
		want int
	}{
		{"", 1}, {"1", 1}, {"7", 7}, {" 3 ", 3}, {"0", 1}, {"-2", 1}, {"abc", 1}, {"2.5", 1},
	}
	for _, tt := range tbl {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePage(tt.in))
		})
	}
}

func TestServer_PageChange_RetryAfterFailure(t *testing.T) {
	var mu sync.Mutex
	fail := true
	gw := testGateway()
	gw.NewsFunc = func(ctx context.Context, q domain.Query) (domain.PageResult[domain.News], error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return domain.PageResult[domain.News]{}, &domain.FetchError{Kind: domain.KindServer, Status: 503, Message: "maintenance"}
		}
		return newsPage(9, 3), nil
	}
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}

	w := b.get("/news", false)
	assert.Contains(t, w.Body.String(), "maintenance")

	mu.Lock()
	fail = false
	mu.Unlock()

	// clicking the current page again retries the failed fetch
	w = b.get("/news/page?page=1", true)
	require.Len(t, gw.NewsCalls(), 2)
	assert.NotContains(t, w.Body.String(), `role="alert"`)
	assert.Contains(t, w.Body.String(), "headline 0")
}

func TestServer_DroppedRequestIsNotAnError(t *testing.T) {
	gw := testGateway()
	srv := New(testConfig(":3000"), gw, "1.0.0", false)
	b := &browser{srv: srv}
	b.get("/news", false)

	// browser aborts the page request while the backend call is in flight
	ctx, cancel := context.WithCancel(context.Background())
	gw.NewsFunc = func(reqCtx context.Context, q domain.Query) (domain.PageResult[domain.News], error) {
		cancel()
		<-reqCtx.Done()
		return domain.PageResult[domain.News]{}, &domain.FetchError{Kind: domain.KindTransport,
			Message: domain.FallbackMessage, Err: reqCtx.Err()}
	}
	req := httptest.NewRequest(http.MethodGet, "/news/page?page=2", http.NoBody).WithContext(ctx)
	req.Header.Set("HX-Request", "true")
	b.do(req)

	sess, ok := srv.sessions.cache.Get(b.cookies[0].Value)
	require.True(t, ok)
	st := sess.news.Snapshot()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.Len(t, st.Items, 9, "items of the last settled page stay")
}
