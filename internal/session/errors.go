package session

import "github.com/desertthunder/flickx/internal/shared"

// User-facing failure reasons.
const (
	ReasonInvalidCredentials = "Invalid email or password"
	ReasonInvalidEmail       = "Invalid email address"
	ReasonPasswordTooShort   = "Password must be at least 6 characters"
)

// MinPasswordLength is the shortest secret Login and Register accept, counted in characters.
const MinPasswordLength = 6

// Error is a validation failure from Login or Register. Its message is the user-facing reason.
type Error struct {
	Reason string
	err    error
}

func (e *Error) Error() string { return e.Reason }

// Unwrap returns the matching shared sentinel, so callers can use errors.Is.
func (e *Error) Unwrap() error { return e.err }

func errInvalidCredentials() *Error {
	return &Error{Reason: ReasonInvalidCredentials, err: shared.ErrInvalidCredentials}
}

func errInvalidEmail() *Error {
	return &Error{Reason: ReasonInvalidEmail, err: shared.ErrInvalidEmail}
}

func errPasswordTooShort() *Error {
	return &Error{Reason: ReasonPasswordTooShort, err: shared.ErrPasswordTooShort}
}
