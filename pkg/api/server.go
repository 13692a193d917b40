// Package api serves truss analyses over HTTP.
//
// Routes:
//
//	GET  /              liveness banner
//	GET  /health        service state, including whether a surrogate is loaded
//	POST /run_fea       analyse a model given as JSON
//	POST /predict       analyse the demo truss, optionally with the surrogate
//	POST /render        draw a model (topology or deformed shape)
//	GET  /records       list saved analyses, newest first
//	GET  /records/{id}  fetch one saved analysis
//
// Every JSON response carries a "success" flag. Failures add the error
// code and a human readable "detail".
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/trussfea/pkg/pipeline"
)

// Defaults applied by [Options.SetDefaults].
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 4 << 20
	DefaultListLimit      = 20
	MaxListLimit          = 500
)

// Options configures the HTTP layer.
type Options struct {
	MaxNodes       int
	RequestTimeout time.Duration
	CORSOrigins    []string
	MaxBodyBytes   int64
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.MaxNodes <= 0 {
		o.MaxNodes = pipeline.DefaultMaxNodes
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Server is the HTTP front end of a pipeline.Runner. Model availability is
// whatever the runner was built with; the server never probes the disk.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New builds a server around runner.
func New(runner *pipeline.Runner, opts Options, logger *log.Logger) *Server {
	opts.SetDefaults()
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		opts:   opts,
		logger: logger.WithPrefix("api"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// explicitOrigins reports whether origins names specific hosts. cors treats
// an empty list as "*"; credentials are only allowed for named hosts.
func explicitOrigins(origins []string) bool {
	if len(origins) == 0 {
		return false
	}
	for _, o := range origins {
		if o == "*" {
			return false
		}
	}
	return true
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: explicitOrigins(s.opts.CORSOrigins),
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/run_fea", s.handleRunFEA)
	r.Post("/predict", s.handlePredict)
	r.Post("/render", s.handleRender)
	r.Get("/records", s.handleListRecords)
	r.Get("/records/{id}", s.handleGetRecord)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests up to the request timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "model_loaded", s.runner.ModelLoaded())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
