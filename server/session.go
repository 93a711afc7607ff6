package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/umputun/alertview/pkg/domain"
	"github.com/umputun/alertview/pkg/query"
	"github.com/umputun/alertview/pkg/store"
)

const sessionCookie = "alertview_session"

// session holds per-browser view controllers and their domain stores
type session struct {
	id       string
	news     *query.Controller[domain.News]
	disaster *query.Controller[domain.DisasterMessage]
}

// sessionRegistry keeps sessions in memory, idle ones expire
type sessionRegistry struct {
	lock  sync.Mutex
	cache *expirable.LRU[string, *session]
	make  func(id string) *session
}

func newSessionRegistry(size int, ttl time.Duration, makeFn func(id string) *session) *sessionRegistry {
	return &sessionRegistry{
		cache: expirable.NewLRU[string, *session](size, nil, ttl),
		make:  makeFn,
	}
}

// newSession wires controllers for both domains to the gateway
func (s *Server) newSession(id string) *session {
	full := s.config.GetFullConfig()
	return &session{
		id:       id,
		news:     query.NewController(store.New[domain.News](string(domain.DomainNews)), s.gateway.News, full.API.News.PageSize),
		disaster: query.NewController(store.New[domain.DisasterMessage](string(domain.DomainDisaster)), s.gateway.Disaster, full.API.Disaster.PageSize),
	}
}

// get returns the caller's session, making a new one and setting the cookie if needed
func (r *sessionRegistry) get(w http.ResponseWriter, req *http.Request) *session {
	r.lock.Lock()
	defer r.lock.Unlock()

	if c, err := req.Cookie(sessionCookie); err == nil && c.Value != "" {
		if sess, ok := r.cache.Get(c.Value); ok {
			r.cache.Add(c.Value, sess) // extends expiration, get doesn't
			return sess
		}
	}

	sess := r.make(uuid.NewString())
	r.cache.Add(sess.id, sess)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// len returns number of live sessions
func (r *sessionRegistry) len() int {
	return r.cache.Len()
}
