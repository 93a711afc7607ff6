//go:build debug

package server

import (
	"log"
	"net/http"
)

// setupDebugRoutes adds state inspection, only compiled with the debug build tag
func (s *Server) setupDebugRoutes() {
	log.Printf("[WARN] debug state endpoint enabled")
	s.router.HandleFunc("GET /debug/state", s.debugStateHandler)
}

// debugStateHandler dumps caller's session state
func (s *Server) debugStateHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	renderJSON(w, r, http.StatusOK, map[string]any{
		"session": sess.id,
		"news": map[string]any{
			"query": sess.news.State(),
			"state": sess.news.Snapshot(),
		},
		"disaster": map[string]any{
			"query": sess.disaster.State(),
			"state": sess.disaster.Snapshot(),
		},
	})
}
