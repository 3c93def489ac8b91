package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error values shared by the auth flow, the gateway and the server
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrNotLoggedIn     = errors.New("not logged in")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// NotFoundError is returned for routes nothing is registered for. It carries
// the HTTP status the error continuation should answer with.
type NotFoundError struct {
	Path   string
	Status int
}

func NewNotFound(path string) *NotFoundError {
	return &NotFoundError{Path: path, Status: http.StatusNotFound}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
