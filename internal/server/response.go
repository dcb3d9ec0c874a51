package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/flickx/internal/session"
	"github.com/desertthunder/flickx/internal/shared"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	var serr *session.Error
	switch {
	case errors.As(err, &serr) && errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &serr):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrInvalidCategory),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrMovieNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrFetchMovies),
		errors.Is(err, shared.ErrSearchFailed),
		errors.Is(err, shared.ErrAPIRequest):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageFor is the user-facing text for err: session reasons verbatim, sentinel text for upstream failures.
func messageFor(err error) string {
	var serr *session.Error
	if errors.As(err, &serr) {
		return serr.Reason
	}
	for _, sentinel := range []error{
		shared.ErrFetchMovies, shared.ErrSearchFailed, shared.ErrMovieNotFound,
		shared.ErrNotAuthenticated, shared.ErrAccessDenied,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, messageFor(err))
}
