// Package api exposes the live graph, its view state, and reload control
// over HTTP.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/statecache"
)

// Server bundles the pieces the HTTP handlers operate on. All canvas access
// goes through a single mutex so concurrent requests never observe a
// half-rebuilt graph.
type Server struct {
	canvas   canvas.Canvas
	reloader *graphsync.Reloader
	load     graphsync.LoadFunc
	states   *statecache.Cache
	stateKey string
	version  string
	logger   *log.Logger

	mu sync.Mutex
}

// Config holds the dependencies for a Server.
type Config struct {
	Canvas   canvas.Canvas
	Reloader *graphsync.Reloader
	Load     graphsync.LoadFunc
	States   *statecache.Cache
	StateKey string
	Version  string
	Logger   *log.Logger
}

// NewServer creates an API server. A nil logger falls back to log.Default().
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		canvas:   cfg.Canvas,
		reloader: cfg.Reloader,
		load:     cfg.Load,
		states:   cfg.States,
		stateKey: cfg.StateKey,
		version:  cfg.Version,
		logger:   logger,
	}
}

// Router builds the HTTP router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/viewstate", s.handleGetViewState)
		r.Put("/viewstate", s.handlePutViewState)
		r.Post("/reload", s.handleReload)
		r.Get("/export.dot", s.handleExportDOT)
		r.Get("/export.svg", s.handleExportSVG)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
