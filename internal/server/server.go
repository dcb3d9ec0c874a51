// package server contains middleware & handlers for the local movie discovery surface
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/flickx/internal/services"
	"github.com/desertthunder/flickx/internal/session"
	"github.com/desertthunder/flickx/internal/shared"
	"github.com/desertthunder/flickx/internal/storage"
	"github.com/desertthunder/flickx/internal/watchlist"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own their route patterns.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                                           // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler, route ...Middleware) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                                                // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request)                       // ServeHTTP implements http.Handler for the entire router
}

// Lister is a storage area that can enumerate its keys.
type Lister interface {
	List(ctx context.Context) ([]storage.Entry, error)
}

// Deps are the collaborators a [Server] serves.
type Deps struct {
	Session   *session.Manager
	Watchlist *watchlist.Store
	Catalog   services.Catalog
	Logger    *log.Logger

	// Areas are listed on the admin dashboard. Optional.
	Areas []Lister
}

// Server is the local HTTP surface.
type Server struct {
	deps    Deps
	logger  *log.Logger
	router  *BasicRouter
	metrics *Metrics
}

// New builds a [Server] with every route registered.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}

	s := &Server{
		deps:    deps,
		logger:  logger,
		router:  NewBasicRouter(),
		metrics: NewMetrics(),
	}
	s.router.Use(Recover(logger), RequestLogger(logger), s.metrics.Instrument)
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.HandleFunc(http.MethodGet, "/api/movies", s.handleListMovies)
	r.HandleFunc(http.MethodGet, "/api/search", s.handleSearch)
	r.HandleFunc(http.MethodGet, "/api/movies/{id}", s.handleMovieDetail)

	r.HandleFunc(http.MethodGet, "/login", s.handleLoginPage)
	r.HandleFunc(http.MethodPost, "/api/auth/login", s.handleLogin)
	r.HandleFunc(http.MethodPost, "/api/auth/register", s.handleRegister)
	r.HandleFunc(http.MethodPost, "/api/auth/logout", s.handleLogout)
	r.HandleFunc(http.MethodGet, "/api/auth/me", s.handleMe)

	r.HandleFunc(http.MethodGet, "/api/watchlist", s.handleWatchlist, s.RequireAuth)
	r.HandleFunc(http.MethodPost, "/api/watchlist", s.handleWatchlistAdd, s.RequireAuth)
	r.HandleFunc(http.MethodDelete, "/api/watchlist/{id}", s.handleWatchlistRemove, s.RequireAuth)

	r.HandleFunc(http.MethodGet, "/api/admin", s.handleAdmin, s.RequireAdmin)

	r.Handle(http.MethodGet, "/metrics", s.metrics.Handler())
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
//
// ready, when non-nil, receives the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("server listening", "addr", ln.Addr().String())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
