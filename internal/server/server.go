// Package server exposes the tank renderer, the page header and the
// selection state over HTTP.
//
// Every request builds its own renderer on an in-memory canvas, so the
// server is safe for concurrent use while each renderer is driven by one
// caller. Errors are answered as JSON {"code": ..., "message": ...} with the
// status derived from the error code.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stlplant/tankview/pkg/api"
	"github.com/stlplant/tankview/pkg/cache"
	"github.com/stlplant/tankview/pkg/config"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/selection"
	"github.com/stlplant/tankview/pkg/theme"
)

const (
	// SelectionKeyHeader names the selection slot a request reads or writes.
	SelectionKeyHeader = "X-Selection-Key"
	// CacheHeader reports HIT or MISS for cached renders.
	CacheHeader = "X-Cache"

	maxBodyBytes    = 8 << 20
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API. Create one with [New].
type Server struct {
	logger   *log.Logger
	themes   *theme.Registry
	cache    cache.Cache
	cacheTTL time.Duration
	keyer    cache.Keyer
	client   *api.Client
	store    selection.Store
	lister   selection.RevisionLister
	render   config.RenderConfig
	router   chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithThemes sets the palettes and banners used for rendering.
func WithThemes(reg *theme.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.themes = reg
		}
	}
}

// WithCache caches rendered output in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

// WithClient enables the routes that read from the backend.
func WithClient(c *api.Client) Option { return func(s *Server) { s.client = c } }

// WithSelectionStore enables the selection routes. lister, when set, is
// used to check that a selected revision belongs to the selected plant.
func WithSelectionStore(store selection.Store, lister selection.RevisionLister) Option {
	return func(s *Server) {
		s.store = store
		s.lister = lister
	}
}

// WithRenderDefaults sets the render parameters used when a request leaves
// them out.
func WithRenderDefaults(rc config.RenderConfig) Option {
	return func(s *Server) { s.render = rc }
}

// New creates a server with its routes mounted.
func New(opts ...Option) *Server {
	s := &Server{
		logger: log.New(io.Discard),
		themes: theme.NewRegistry(),
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		render: config.Default().Render,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json", "image/svg+xml", "text/html", "text/vnd.graphviz"))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Post("/render", s.handleRender)
	r.Post("/layout", s.handleLayout)
	r.Post("/hit", s.handleHit)
	r.Get("/header", s.handleHeader)

	r.Route("/selection", func(r chi.Router) {
		r.Get("/", s.handleSelectionGet)
		r.Put("/{level}", s.handleSelectionPut)
		r.Delete("/", s.handleSelectionDelete)
	})

	r.Get("/lines/{id}/layout.{format}", s.handleLineLayout)
	r.Get("/customers/{id}/topology.{format}", s.handleTopology)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, http.StatusMethodNotAllowed, errors.New(errors.ErrCodeInvalidInput, "%s not allowed on %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, sc config.ServerConfig) error {
	srv := &http.Server{
		Addr:              sc.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       sc.ReadTimeout.Duration,
		WriteTimeout:      sc.WriteTimeout.Duration,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", sc.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", sc.Addr)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return nil
}

// requestLogger logs one line per request at info level, or warn for
// server errors.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logf := logger.Info
			if status >= 500 {
				logf = logger.Warn
			}
			logf("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
