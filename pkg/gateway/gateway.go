// Package gateway issues single requests to the alerts backend and normalizes
// both success and failure into domain types.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/umputun/alertview/pkg/domain"
)

const maxBodySize = 4 * 1024 * 1024

// Endpoint describes how a domain is queried
type Endpoint struct {
	Path        string // relative to base url, i.e. "api/news"
	FilterParam string // query parameter carrying search text
}

// Options for the gateway client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	ZeroBasedPages bool
	News           Endpoint
	Disaster       Endpoint
	HTTPClient     *http.Client // optional, for tests
}

// Client fetches pages from the backend. Each call is exactly one HTTP request, no retries, no caching.
type Client struct {
	baseURL        string
	timeout        time.Duration
	zeroBasedPages bool
	endpoints      map[domain.Domain]Endpoint
	httpClient     *http.Client
}

// New makes a gateway client with default endpoints for missing ones
func New(opts Options) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		timeout:        opts.Timeout,
		zeroBasedPages: opts.ZeroBasedPages,
		httpClient:     opts.HTTPClient,
		endpoints: map[domain.Domain]Endpoint{
			domain.DomainNews:     withDefaults(opts.News, Endpoint{Path: "api/news", FilterParam: "ynaTtl"}),
			domain.DomainDisaster: withDefaults(opts.Disaster, Endpoint{Path: "api/disaster", FilterParam: "keyword"}),
		},
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

// News fetches a page of news articles
func (c *Client) News(ctx context.Context, q domain.Query) (domain.PageResult[domain.News], error) {
	return fetch[domain.News](ctx, c, domain.DomainNews, q)
}

// Disaster fetches a page of disaster messages
func (c *Client) Disaster(ctx context.Context, q domain.Query) (domain.PageResult[domain.DisasterMessage], error) {
	return fetch[domain.DisasterMessage](ctx, c, domain.DomainDisaster, q)
}

// Ping checks the backend answers at all, any http response counts as alive
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("make ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", c.baseURL, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	_ = resp.Body.Close()
	return nil
}

// URL builds request url for the domain and query, exposed for logging and tests
func (c *Client) URL(d domain.Domain, q domain.Query) (string, error) {
	ep, ok := c.endpoints[d]
	if !ok {
		return "", fmt.Errorf("unknown domain %q", d)
	}
	if err := q.Validate(); err != nil {
		return "", err
	}

	page := q.Page
	if c.zeroBasedPages {
		page--
	}

	params := url.Values{}
	if filter := q.Filter(); filter != "" {
		params.Set(ep.FilterParam, filter)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(q.Size))
	return c.baseURL + "/" + strings.TrimLeft(ep.Path, "/") + "?" + params.Encode(), nil
}

// pageResponse is the backend's paged model
type pageResponse[T any] struct {
	Content []T `json:"content"`
	Page    *struct {
		TotalPages int `json:"totalPages"`
	} `json:"page"`
}

func fetch[T any](ctx context.Context, c *Client, d domain.Domain, q domain.Query) (domain.PageResult[T], error) {
	reqURL, err := c.URL(d, q)
	if err != nil {
		return domain.PageResult[T]{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return domain.PageResult[T]{}, fmt.Errorf("make request for %s: %w", d, err)
	}
	req.Header.Set("Accept", "application/json")

	st := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[DEBUG] fetch %s failed: %v", reqURL, err)
		return domain.PageResult[T]{}, &domain.FetchError{Kind: domain.KindTransport, Message: domain.FallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return domain.PageResult[T]{}, &domain.FetchError{Kind: domain.KindTransport, Status: resp.StatusCode,
			Message: domain.FallbackMessage, Err: fmt.Errorf("read body: %w", err)}
	}
	log.Printf("[DEBUG] fetch %s, status %d, %d bytes in %v", reqURL, resp.StatusCode, len(body), time.Since(st))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.PageResult[T]{}, &domain.FetchError{Kind: domain.KindServer, Status: resp.StatusCode,
			Message: ErrorMessage(body), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	return decodePage[T](body, resp.StatusCode)
}

// decodePage normalizes a 2xx body, missing content means no items and missing total means one page
func decodePage[T any](body []byte, status int) (domain.PageResult[T], error) {
	var pr pageResponse[T]
	if err := json.Unmarshal(body, &pr); err != nil {
		return domain.PageResult[T]{}, &domain.FetchError{Kind: domain.KindServer, Status: status,
			Message: domain.FallbackMessage, Err: fmt.Errorf("decode page: %w", err)}
	}

	res := domain.PageResult[T]{Items: pr.Content, TotalPages: 1}
	if res.Items == nil {
		res.Items = []T{}
	}
	if pr.Page != nil && pr.Page.TotalPages > 0 {
		res.TotalPages = pr.Page.TotalPages
	}
	return res, nil
}

// ErrorMessage reduces an error response body to a display string.
// Objects give their "message" field or their compact json, json strings give the string,
// other text is used as is, empty bodies give the fallback message.
func ErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return domain.FallbackMessage
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return trimmed
	}

	switch val := v.(type) {
	case map[string]any:
		if msg, ok := val["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
		data, err := json.Marshal(val)
		if err != nil {
			return domain.FallbackMessage
		}
		return string(data)
	case string:
		if strings.TrimSpace(val) == "" {
			return domain.FallbackMessage
		}
		return val
	case nil:
		return domain.FallbackMessage
	default:
		return trimmed
	}
}

func withDefaults(ep, def Endpoint) Endpoint {
	if ep.Path == "" {
		ep.Path = def.Path
	}
	if ep.FilterParam == "" {
		ep.FilterParam = def.FilterParam
	}
	return ep
}
