package carrier

import (
	"context"
	"errors"
	"fmt"
)

// Error codes shared by every adapter.
const (
	CodeAPIError      = "API_ERROR"
	CodeTimeout       = "TIMEOUT"
	CodeUnavailable   = "SERVICE_UNAVAILABLE"
	CodeAuthFailed    = "AUTH_FAILED"
	CodeRateLimited   = "RATE_LIMITED"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidConfig = "INVALID_CONFIG"
	CodePanic         = "PANIC"
)

// Error represents an error from a courier.
type Error struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error.
func NewError(carrier, code, message string) *Error {
	return &Error{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *Error) WithStatusCode(code int) *Error {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

var (
	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrTrackingNotFound indicates the carrier does not know the tracking number.
	ErrTrackingNotFound = errors.New("tracking number not found")

	// ErrServiceUnavailable indicates the carrier service is temporarily unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrRateLimitExceeded indicates the outbound rate limit was exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrAuthenticationFailed indicates the carrier rejected the API key.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var carrierErr *Error
	if errors.As(err, &carrierErr) {
		return carrierErr.Retryable
	}
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrRateLimitExceeded)
}

// AsError converts any adapter failure into an *Error attributed to carrier.
func AsError(carrier string, err error) *Error {
	var carrierErr *Error
	if errors.As(err, &carrierErr) {
		if carrierErr.Carrier == "" {
			carrierErr.Carrier = carrier
		}
		return carrierErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(carrier, CodeTimeout, "request timed out").WithCause(err).WithRetryable(true)
	case errors.Is(err, ErrRateLimitExceeded):
		return NewError(carrier, CodeRateLimited, "outbound rate limit exceeded").WithCause(err).WithRetryable(true)
	case errors.Is(err, ErrAuthenticationFailed):
		return NewError(carrier, CodeAuthFailed, "credentials rejected").WithCause(err)
	case errors.Is(err, ErrTrackingNotFound):
		return NewError(carrier, CodeNotFound, "tracking number not found").WithCause(err)
	case errors.Is(err, ErrServiceUnavailable):
		return NewError(carrier, CodeUnavailable, "service unavailable").WithCause(err).WithRetryable(true)
	default:
		return NewError(carrier, CodeAPIError, "request failed").WithCause(err)
	}
}

// HTTPError classifies a non-2xx carrier response.
func HTTPError(carrier string, status int, body string) *Error {
	switch {
	case status == 401 || status == 403:
		return NewError(carrier, CodeAuthFailed, body).WithStatusCode(status).WithCause(ErrAuthenticationFailed)
	case status == 404:
		return NewError(carrier, CodeNotFound, body).WithStatusCode(status).WithCause(ErrTrackingNotFound)
	case status == 429:
		return NewError(carrier, CodeRateLimited, body).WithStatusCode(status).WithRetryable(true)
	case status >= 500:
		return NewError(carrier, CodeUnavailable, body).WithStatusCode(status).WithRetryable(true)
	default:
		return NewError(carrier, CodeAPIError, body).WithStatusCode(status)
	}
}
