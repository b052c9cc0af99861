package travio

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps connection-level failures: DNS, dial, TLS, timeouts.
	ErrTransport = errors.New("travio: transport failure")

	// ErrMalformedResponse is returned when a 200 response is not valid JSON
	// of the expected shape.
	ErrMalformedResponse = errors.New("travio: malformed response")

	// ErrAuth is returned when a token exchange succeeds at transport level but
	// yields no usable token.
	ErrAuth = errors.New("travio: auth error")

	ErrInvalidPayload = errors.New("travio: invalid payload")
	ErrInvalidConfig  = errors.New("travio: invalid config")

	// ErrNoCart is returned by operations that need a cart when none was given
	// and none is remembered in the session.
	ErrNoCart = errors.New("travio: no cart")
)

// APIError is a non-200 response from the API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("travio: %s: %s (status %d)", e.Endpoint, e.Message, e.StatusCode)
}

// StatusCode returns the HTTP status carried by err if it wraps an *APIError.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}
