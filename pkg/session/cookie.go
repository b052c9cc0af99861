package session

import (
	"context"
	"net/http"
	"time"
)

// CookieConfig describes the cookie carrying the session id.
type CookieConfig struct {
	Name     string        `env:"SESSION_COOKIE_NAME" envDefault:"travio_sid"`
	TTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Secure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	Domain   string        `env:"SESSION_COOKIE_DOMAIN"`
	SameSite http.SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"2"` // 2 = Lax
}

const defaultCookieName = "travio_sid"

type idKey struct{}

// WithID stores a session id in ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// IDFromContext returns the id set by WithID or CookieMiddleware.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idKey{}).(string)
	return id, ok && id != ""
}

// CookieMiddleware resolves the session id from the request cookie, issuing a
// fresh one when the cookie is missing or was not produced by NewID. The
// cookie is rewritten on every request so its expiry slides with activity.
func CookieMiddleware(cfg CookieConfig) func(http.Handler) http.Handler {
	name := cfg.Name
	if name == "" {
		name = defaultCookieName
	}
	sameSite := cfg.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(name); err == nil && ValidID(c.Value) {
				id = c.Value
			} else {
				id = NewID()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				Domain:   cfg.Domain,
				MaxAge:   int(cfg.TTL.Seconds()),
				Secure:   cfg.Secure,
				HttpOnly: true,
				SameSite: sameSite,
			})

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}
