package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth proxy
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrStateMismatch   = errors.New("State UUID returned from OIDC provider did not match any created by us")

	// Token errors
	ErrTokenNotFound       = errors.New("token not found")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// ProviderError is returned when the OIDC provider responds with a non-2xx
// status on the token endpoint. It carries the provider's status and body.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("oidc provider returned status %d: %s", e.Status, e.Body)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
