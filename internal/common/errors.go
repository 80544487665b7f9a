package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level error kinds. Each one maps to a single HTTP status in the
	// transport layer.
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("already exists")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrUpload         = errors.New("upload failed")
	ErrorInternal     = errors.New("internal error")

	// Token errors returned by the issuer.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrRefreshTokenReused is returned by stores when a compare-and-swap
	// rotation finds a different token than the one presented.
	ErrRefreshTokenReused = errors.New("refresh token reused")
)

// Error is a domain failure with a client-safe message. Kind is one of the
// sentinel kinds above; Cause is kept for logs and never shown to clients.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

// NewError builds an *Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds an *Error of the given kind that remembers cause.
func WrapError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// MessageOf returns the client-safe message carried by err, or fallback when
// err is not an *Error.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
