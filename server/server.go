package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/alertview/pkg/config"
	"github.com/umputun/alertview/pkg/domain"
	"github.com/umputun/alertview/pkg/feed"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/gateway.go -pkg mocks -skip-ensure -fmt goimports . Gateway

//go:embed templates
var templatesFS embed.FS

// page template names
const (
	pageHome     = "home.html"
	pageNews     = "news.html"
	pageDisaster = "disaster.html"
)

// Server represents HTTP server instance
type Server struct {
	config   ConfigProvider
	gateway  Gateway
	version  string
	debug    bool
	sessions *sessionRegistry
	rss      *feed.Generator

	loc        *time.Location
	dateFormat string
	summaryLen int

	templates     *template.Template
	pageTemplates map[string]*template.Template

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Gateway fetches pages of domain items from the backend
type Gateway interface {
	News(ctx context.Context, q domain.Query) (domain.PageResult[domain.News], error)
	Disaster(ctx context.Context, q domain.Query) (domain.PageResult[domain.DisasterMessage], error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetFullConfig() *config.Config
}

// New initializes a new server instance
func New(cfg ConfigProvider, gw Gateway, version string, debug bool) *Server {
	full := cfg.GetFullConfig()
	s := &Server{
		config:     cfg,
		gateway:    gw,
		version:    version,
		debug:      debug,
		loc:        full.Location(),
		dateFormat: full.Display.DateFormat,
		summaryLen: full.Display.SummaryLength,
		router:     routegroup.New(http.NewServeMux()),
	}
	s.sessions = newSessionRegistry(full.Session.MaxSessions, full.Session.TTL, s.newSession)
	s.rss = feed.NewGenerator(full.Server.BaseURL, s.loc, s.summaryLen)

	if err := s.loadTemplates(); err != nil {
		// templates are embedded, a failure here is a build defect
		log.Fatalf("[ERROR] failed to load templates: %v", err)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("alertview", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.homeHandler)

	s.router.Group().Route(func(web *routegroup.Bundle) {
		web.HandleFunc("GET /news", s.newsHandler)
		web.HandleFunc("GET /news/page", s.newsPageHandler)
		web.HandleFunc("POST /news/search", s.newsSearchHandler)

		web.HandleFunc("GET /disaster", s.disasterHandler)
		web.HandleFunc("GET /disaster/page", s.disasterPageHandler)
		web.HandleFunc("POST /disaster/search", s.disasterSearchHandler)
	})

	s.router.HandleFunc("GET /rss/{domain}", s.rssHandler)

	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
	})

	s.setupDebugRoutes()
}

// loadTemplates parses partials once and every page together with the layout and partials
func (s *Server) loadTemplates() error {
	funcs := template.FuncMap{
		"date": func(v string) string { return domain.FormatDate(v, s.loc, s.dateFormat) },
		"summary": func(v string) string {
			return domain.Summary(v, s.summaryLen)
		},
	}

	var err error
	s.templates, err = template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/components.html")
	if err != nil {
		return fmt.Errorf("parse components: %w", err)
	}

	s.pageTemplates = map[string]*template.Template{}
	for _, page := range []string{pageHome, pageNews, pageDisaster} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templatesFS,
			"templates/base.html", "templates/components.html", "templates/"+page)
		if err != nil {
			return fmt.Errorf("parse page %s: %w", page, err)
		}
		s.pageTemplates[page] = tmpl
	}
	return nil
}

// renderPage renders a pre-parsed page template
func (s *Server) renderPage(w http.ResponseWriter, templateName string, data any) error {
	tmpl, ok := s.pageTemplates[templateName]
	if !ok {
		return fmt.Errorf("template %s not found", templateName)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial renders a named partial template
func (s *Server) renderPartial(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[WARN] failed to render %s: %v", name, err)
	}
}

// respondWithError logs the error and sends plain text response
func (s *Server) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	log.Printf("[ERROR] %s: %v", msg, err)
	http.Error(w, msg, code)
}
