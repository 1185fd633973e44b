package server

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/licensetower/pkg/analysis"
	"github.com/matzehuels/licensetower/pkg/cache"
	"github.com/matzehuels/licensetower/pkg/errors"
)

// Defaults applied by [New].
const (
	DefaultAddr            = ":8080"
	DefaultMaxDependencies = 5000
	DefaultMaxBodyBytes    = 4 << 20
	shutdownTimeout        = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	Addr            string             // Defaults to DefaultAddr
	Analyzer        *analysis.Analyzer // Defaults to an analyzer over Cache with no fetchers
	Cache           *cache.Cache       // Optional; cache routes are omitted when nil
	Metrics         http.Handler       // Defaults to promhttp.Handler()
	MaxDependencies int                // Per analyze request
	Workspace       string             // Root served by /v1/scan; the route is omitted when empty
	Logger          *log.Logger        // Defaults to a discarding logger
}

// Server is the licensetower HTTP API.
type Server struct {
	cfg    Config
	router chi.Router
	logger *log.Logger
}

// New builds the router for cfg.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = analysis.New(analysis.Options{Cache: cfg.Cache})
	}
	if cfg.Metrics == nil {
		cfg.Metrics = promhttp.Handler()
	}
	if cfg.MaxDependencies <= 0 {
		cfg.MaxDependencies = DefaultMaxDependencies
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	s := &Server{cfg: cfg, logger: cfg.Logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.cfg.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		if s.cfg.Workspace != "" {
			r.Get("/scan", s.handleScan)
		}
		r.Get("/compat", s.handleCompat)
		r.Post("/licenses/analyze", s.handleLicensesAnalyze)
		r.Get("/licenses/{name}", s.handleLicense)
		r.Get("/licenses/{name}/text", s.handleLicenseText)
		if s.cfg.Cache != nil {
			r.Get("/cache/stats", s.handleCacheStats)
			r.Delete("/cache", s.handleCacheClear)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, r, http.StatusMethodNotAllowed,
			errors.New(errors.ErrCodeInvalidInput, "method %s not allowed on %s", r.Method, r.URL.Path))
	})
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
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
	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errc; serveErr != nil && !stderrors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}
	s.logger.Info("server stopped")
	return err
}
