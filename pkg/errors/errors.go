package errors

import (
	"errors"
	"fmt"
)

// Standard error types
var (
	ErrAuthentication    = errors.New("authentication error")
	ErrConfiguration     = errors.New("configuration error")
	ErrHTTPRequest       = errors.New("HTTP request error")
	ErrHTTPResponse      = errors.New("HTTP response error")
	ErrMalformedEnvelope = errors.New("malformed page envelope")
	ErrExtraction        = errors.New("data extraction error")
	ErrValidation        = errors.New("validation error")
)

// WrapError wraps an error with a standard error type.
// Both errType and err stay reachable through errors.Is and errors.As.
func WrapError(err error, errType error, message string) error {
	return fmt.Errorf("%w: %s: %w", errType, message, err)
}

// Is provides a convenience wrapper around errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As provides a convenience wrapper around errors.As
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap provides a convenience wrapper around errors.Unwrap
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
