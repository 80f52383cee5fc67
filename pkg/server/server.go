// Package server exposes the layout pipeline over HTTP.
//
// # Routes
//
//	GET    /healthz                      liveness and build version
//	POST   /v1/impose                    impose an inline document
//	GET    /v1/programs                  list stored documents
//	POST   /v1/programs                  store a document under a new id
//	GET    /v1/programs/{id}             fetch a stored document
//	PUT    /v1/programs/{id}             create or replace a document
//	DELETE /v1/programs/{id}             delete a document
//	GET    /v1/programs/{id}/layout      impose a stored document
//
// Errors are JSON objects carrying the [errors.Code] of the failure; the
// HTTP status is derived from the code.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tablelayout/pkg/pipeline"
	"github.com/matzehuels/tablelayout/pkg/store"
)

// Defaults for Config.
const (
	DefaultAddr           = ":8080"
	DefaultMaxBodyBytes   = 1 << 20
	DefaultRequestTimeout = 30 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Config holds server settings.
type Config struct {
	Addr           string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server. A nil runner gets an uncached runner, a nil store
// an in-memory one.
func New(cfg Config, runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	s := &Server{cfg: cfg, runner: runner, store: st, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/impose", s.handleImpose)
		r.Route("/programs", func(r chi.Router) {
			r.Get("/", s.handleListPrograms)
			r.Post("/", s.handleCreateProgram)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProgram)
				r.Put("/", s.handlePutProgram)
				r.Delete("/", s.handleDeleteProgram)
				r.Get("/layout", s.handleProgramLayout)
			})
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFoundRoute(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errMethodNotAllowed(r))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}
