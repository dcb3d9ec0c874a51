package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

// AccessDeniedMessage accompanies the 403 returned to signed-in non-administrators.
const AccessDeniedMessage = "You do not have permission to access this page. Admin privileges are required."

// RequestLogger logs one line per request.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", sw.code, "duration", time.Since(start))
		})
	}
}

// Recover turns a panicking handler into a 500.
func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic", "path", r.URL.Path, "panic", rec)
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRedirect is the login URL that returns the user to r's original destination.
func LoginRedirect(r *http.Request) string {
	return "/login?from=" + url.QueryEscape(r.URL.RequestURI())
}

// RequireAuth only lets authenticated sessions through.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Session.Loading() {
			writeError(w, http.StatusServiceUnavailable, "Loading...")
			return
		}
		if !s.deps.Session.IsAuthenticated() {
			http.Redirect(w, r, LoginRedirect(r), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin only lets authenticated administrators through.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.deps.Session.IsAdmin() {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error":   "Access Denied",
				"message": AccessDeniedMessage,
			})
			return
		}
		next.ServeHTTP(w, r)
	}))
}
