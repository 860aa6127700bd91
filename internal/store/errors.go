package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
var (
	// ErrConfigNotFound is returned when a server has no stored configuration.
	ErrConfigNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "server configuration not found",
	}

	// ErrLedgerNotFound is returned when a user has no ledger entry, meaning
	// they are unranked globally. Distinct from a rank of zero.
	ErrLedgerNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "no ledger entry for user",
	}

	// ErrContributionNotFound is returned when a user has never contributed
	// XP to the given server.
	ErrContributionNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "no server contribution for user",
	}
)
