package travio

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/travio/pkg/logger"
)

type contextKey struct{}

// WithClient stores c in ctx.
func WithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the client stored by WithClient or Middleware.
func FromContext(ctx context.Context) (*Client, bool) {
	c, ok := ctx.Value(contextKey{}).(*Client)
	return c, ok && c != nil
}

// Builder creates the client serving one HTTP request, usually around a
// session store resolved from a cookie.
type Builder func(r *http.Request) (*Client, error)

// Middleware builds a client per request and stores it in the request context.
// Build failures end the request with 500.
func Middleware(build Builder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := build(r)
			if err != nil {
				slog.ErrorContext(r.Context(), "travio client unavailable", logger.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), c)))
		})
	}
}
