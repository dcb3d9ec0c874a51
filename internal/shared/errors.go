package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session errors
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidEmail       = fmt.Errorf("invalid email address")
	ErrPasswordTooShort   = fmt.Errorf("password too short")
	ErrNotAuthenticated   = fmt.Errorf("login required")
	ErrAccessDenied       = fmt.Errorf("access denied")
	ErrTokenExpired       = fmt.Errorf("session token expired")
	ErrMalformedToken     = fmt.Errorf("malformed session token")

	// Catalog errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrFetchMovies        = fmt.Errorf("failed to fetch movies")
	ErrSearchFailed       = fmt.Errorf("search failed")
	ErrMovieNotFound      = fmt.Errorf("movie not found")
	ErrInvalidCategory    = fmt.Errorf("invalid category")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
