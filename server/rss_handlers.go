package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/umputun/alertview/pkg/domain"
)

// rssHandler serves RSS feed of the latest items for a domain.
// Supports optional ?q= filter, always the first page.
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	d := domain.Domain(r.PathValue("domain"))
	if !d.Valid() {
		renderError(w, r, fmt.Errorf("unknown feed %q", d), http.StatusNotFound)
		return
	}

	text := r.URL.Query().Get("q")
	q := domain.Query{Text: text, Page: 1, Size: s.config.GetFullConfig().RSS.Size}

	var rss string
	var err error
	switch d {
	case domain.DomainNews:
		var res domain.PageResult[domain.News]
		if res, err = s.gateway.News(r.Context(), q); err == nil {
			rss, err = s.rss.NewsRSS(res.Items, text)
		}
	case domain.DomainDisaster:
		var res domain.PageResult[domain.DisasterMessage]
		if res, err = s.gateway.Disaster(r.Context(), q); err == nil {
			rss, err = s.rss.DisasterRSS(res.Items, text)
		}
	}
	if err != nil {
		log.Printf("[ERROR] failed to generate %s RSS feed: %v", d, err)
		http.Error(w, "Failed to generate RSS feed: "+domain.DisplayMessage(err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}
