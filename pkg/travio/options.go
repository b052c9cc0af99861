package travio

import (
	"log/slog"
	"net/http"
	"time"
)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	onRequest  RequestHook
	now        func() time.Time
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sets the client used for every call. Share one between the
// per-request clients of a server. Nil is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOnRequest registers a hook invoked after every call.
func WithOnRequest(hook RequestHook) Option {
	return func(o *options) {
		o.onRequest = hook
	}
}

// WithClock overrides the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
