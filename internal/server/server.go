// Package server assembles the nimbusview HTTP surface: the HTML browse
// view, the JSON API, health probes, version info, and embedded static
// assets, behind a shared middleware chain.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/3leaps/nimbusview/internal/errors"
	"github.com/3leaps/nimbusview/internal/metrics"
	"github.com/3leaps/nimbusview/internal/observability"
	"github.com/3leaps/nimbusview/internal/server/handlers"
	"github.com/3leaps/nimbusview/internal/server/middleware"
	"github.com/3leaps/nimbusview/internal/webui"
	"github.com/3leaps/nimbusview/pkg/cdn"
	"github.com/3leaps/nimbusview/pkg/snapshot"
)

// Server hosts the HTTP routes over one listing snapshot.
//
// Without a snapshot store the health, version, and static routes still
// work; the browse and API routes answer 503 until a source is wired.
type Server struct {
	host string
	port int

	store    *snapshot.Store
	links    *cdn.Links
	renderer *webui.Renderer
	title    string

	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	healthEnabled   bool

	router  chi.Router
	httpSrv *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithSnapshot wires the session snapshot store the view renders from.
func WithSnapshot(store *snapshot.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithCDN wires the outbound link builder for file rows.
func WithCDN(links *cdn.Links) Option {
	return func(s *Server) { s.links = links }
}

// WithRenderer overrides the default embedded-template renderer.
func WithRenderer(renderer *webui.Renderer) Option {
	return func(s *Server) { s.renderer = renderer }
}

// WithTitle sets the page title shown on the browse view.
func WithTitle(title string) Option {
	return func(s *Server) {
		if title != "" {
			s.title = title
		}
	}
}

// WithTimeouts sets the read, write, and idle timeouts.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
		s.idleTimeout = idle
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithHealthEnabled toggles the /health route group.
func WithHealthEnabled(enabled bool) Option {
	return func(s *Server) { s.healthEnabled = enabled }
}

// New creates a server bound to host:port with all routes registered.
func New(host string, port int, opts ...Option) *Server {
	s := &Server{
		host:            host,
		port:            port,
		title:           "nimbusview",
		readTimeout:     30 * time.Second,
		writeTimeout:    30 * time.Second,
		idleTimeout:     120 * time.Second,
		shutdownTimeout: 10 * time.Second,
		healthEnabled:   true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.renderer == nil {
		renderer, err := webui.NewRenderer()
		if err != nil {
			// Browse routes answer 503 until a renderer exists
			observability.ServerLogger.Error("failed to build page renderer", zap.Error(err))
		} else {
			s.renderer = renderer
		}
	}

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(metrics.Middleware)
	r.Use(middleware.ErrorHandler)
	r.Use(middleware.SecureHeaders)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewNotFoundError("resource not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewMethodNotAllowedError("method not allowed"))
	})

	if s.healthEnabled {
		r.Get("/health", handlers.HealthHandler)
		r.Get("/health/live", handlers.LivenessHandler)
		r.Get("/health/ready", handlers.ReadinessHandler)
		r.Get("/health/startup", handlers.StartupHandler)
	}
	r.Get("/version", handlers.VersionHandler)

	redirectToBrowse := func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/browse/", http.StatusFound)
	}
	r.Get("/", redirectToBrowse)
	r.Get("/browse", redirectToBrowse)

	browse := handlers.NewBrowseHandler(s.store, s.links, s.renderer, s.title)
	r.Get("/browse/*", browse.ServeHTTP)

	static, err := webui.StaticHandler()
	if err != nil {
		observability.ServerLogger.Error("failed to mount static assets", zap.Error(err))
	} else {
		r.Method(http.MethodGet, "/static/*", http.StripPrefix("/static/", static))
	}

	api := handlers.NewAPIHandler(s.store, s.links)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/listing", api.Listing)
		r.Get("/snapshot", api.Snapshot)
		r.Get("/version", handlers.VersionHandler)
	})

	return r
}

// Handler returns the assembled router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// Run serves until ctx is canceled, then shuts down gracefully within the
// shutdown timeout. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.ServerLogger.Info("server listening", zap.String("addr", s.Addr()))
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		observability.ServerLogger.Info("server shutting down")
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
