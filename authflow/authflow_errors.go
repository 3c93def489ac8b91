package authflow

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	CsrfMismatch ErrorKind = iota + 1
	ProviderRejected
)

var (
	ErrCsrfMismatch     = errors.New("state mismatch, possible CSRF attack")
	ErrProviderRejected = errors.New("provider rejected the authorization")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case CsrfMismatch:
		return ErrCsrfMismatch
	case ProviderRejected:
		return ErrProviderRejected
	}
	return nil
}

func (k ErrorKind) String() string {
	switch k {
	case CsrfMismatch:
		return "CsrfMismatch"
	case ProviderRejected:
		return "ProviderRejected"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// AuthError is returned by the login flow. errors.Is matches both the kind's
// sentinel and the underlying cause.
type AuthError struct {
	Kind ErrorKind
	Err  error
}

func newAuthError(kind ErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Err)
}

func (e *AuthError) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}
