package travio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/travio/pkg/jwt"
	"github.com/dmitrymomot/travio/pkg/logger"
	"github.com/dmitrymomot/travio/pkg/session"
)

// Session keys owned by this package.
const (
	SessionKeyAuth    = "travio-auth"
	SessionKeyProfile = "travio-user-profile"
	SessionKeyCart    = "travio-cart"
)

// AuthManager owns the bearer token of one session: it caches the token in
// the session store, renews it through the credential exchange when it is
// missing, malformed or expired, and tracks the profile of the logged user.
//
// A forced token installed with SetAuthToken belongs to this instance only
// and is never written to the store.
type AuthManager struct {
	store      session.Store
	transport  *Transport
	credential Credential
	decoder    *jwt.Decoder
	logger     *slog.Logger

	mu     sync.RWMutex
	forced string

	// renew collapses concurrent renewals into a single POST auth.
	renew singleflight.Group
}

// SetAuthToken installs a token that AuthToken returns unconditionally,
// without validation, until Logout.
func (a *AuthManager) SetAuthToken(token string) {
	a.mu.Lock()
	a.forced = token
	a.mu.Unlock()
}

func (a *AuthManager) forcedToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.forced
}

// AuthToken returns the token to send with authenticated calls.
// Order: forced token, live session token, freshly issued token. A cached
// token that fails to decode or has expired is removed from the session.
func (a *AuthManager) AuthToken(ctx context.Context) (string, error) {
	if token := a.forcedToken(); token != "" {
		return token, nil
	}

	token, err := a.cachedToken(ctx)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}

	// The shared renewal outlives any single caller; the http.Client timeout
	// bounds it. Each caller still stops waiting when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := a.renew.DoChan(SessionKeyAuth, func() (any, error) {
		token, err := a.requestAuthToken(shared)
		if err != nil {
			return "", err
		}
		if err := a.store.Set(shared, SessionKeyAuth, []byte(token)); err != nil {
			return "", fmt.Errorf("travio: caching auth token: %w", err)
		}
		a.logger.DebugContext(shared, "travio auth token issued")
		return token, nil
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %s: %w", ErrTransport, authEndpoint, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// cachedToken returns the live session token, or "" after evicting a stale one.
func (a *AuthManager) cachedToken(ctx context.Context) (string, error) {
	token, err := a.storedToken(ctx)
	if err != nil || token == "" {
		return "", err
	}

	if _, err := a.decoder.DecodeLive(token); err != nil {
		a.logger.DebugContext(ctx, "travio cached token discarded", logger.Error(err))
		if err := a.store.Delete(ctx, SessionKeyAuth); err != nil {
			return "", fmt.Errorf("travio: evicting auth token: %w", err)
		}
		return "", nil
	}
	return token, nil
}

func (a *AuthManager) storedToken(ctx context.Context) (string, error) {
	raw, err := a.store.Get(ctx, SessionKeyAuth)
	if errors.Is(err, session.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("travio: reading auth token: %w", err)
	}
	return string(raw), nil
}

// requestAuthToken exchanges the credential for a token. One attempt only.
func (a *AuthManager) requestAuthToken(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := a.transport.do(ctx, call{
		method:   http.MethodPost,
		endpoint: authEndpoint,
		payload:  a.credential,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: no token in %s response", ErrAuth, authEndpoint)
	}
	return resp.Token, nil
}

// Login exchanges user credentials for a user token and caches it in the
// session, replacing the application token. It always hits the network.
func (a *AuthManager) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := a.transport.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "login",
		payload: map[string]string{
			"username": username,
			"password": password,
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: no token in login response", ErrAuth)
	}

	if err := a.store.Set(ctx, SessionKeyAuth, []byte(resp.Token)); err != nil {
		return "", fmt.Errorf("travio: caching auth token: %w", err)
	}
	return resp.Token, nil
}

// Logged returns the profile of the user owning the session token.
// See LoggedAs.
func (a *AuthManager) Logged(ctx context.Context) (Profile, error) {
	token, err := a.storedToken(ctx)
	if err != nil {
		return nil, err
	}
	return a.LoggedAs(ctx, token)
}

// LoggedAs returns the profile of the user token belongs to.
// A nil profile with a nil error means "not authenticated": the token is
// malformed, expired or carries no "user" claim. The profile is cached in the
// session and fetched again only when the token's user changes.
func (a *AuthManager) LoggedAs(ctx context.Context, token string) (Profile, error) {
	claims, err := a.decoder.DecodeLive(token)
	if err != nil {
		return nil, nil
	}
	user, ok := claims.User()
	if !ok {
		return nil, nil
	}

	cached, err := a.cachedProfile(ctx)
	if err != nil {
		return nil, err
	}
	if cached != nil && cached.ID() == user {
		return cached, nil
	}

	var resp struct {
		User Profile `json:"user"`
	}
	err = a.transport.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "profile",
		bearer:   token,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: profile: missing user", ErrMalformedResponse)
	}

	raw, err := json.Marshal(resp.User)
	if err != nil {
		return nil, fmt.Errorf("travio: encoding profile: %w", err)
	}
	if err := a.store.Set(ctx, SessionKeyProfile, raw); err != nil {
		return nil, fmt.Errorf("travio: caching profile: %w", err)
	}
	a.logger.DebugContext(ctx, "travio profile refreshed", logger.UserID(user))

	return resp.User, nil
}

func (a *AuthManager) cachedProfile(ctx context.Context) (Profile, error) {
	raw, err := a.store.Get(ctx, SessionKeyProfile)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("travio: reading profile: %w", err)
	}

	var p Profile
	if err := decodeJSON(raw, &p); err != nil {
		// Unreadable cache entries are refetched.
		return nil, nil
	}
	return p, nil
}

// Logout drops the forced token and the session token. The cached profile is
// kept; it is replaced the next time a token for another user is checked.
func (a *AuthManager) Logout(ctx context.Context) error {
	a.SetAuthToken("")
	return a.ClearTokenCache(ctx)
}

// ClearTokenCache removes the session token only; a forced token survives.
func (a *AuthManager) ClearTokenCache(ctx context.Context) error {
	if err := a.store.Delete(ctx, SessionKeyAuth); err != nil {
		return fmt.Errorf("travio: clearing auth token: %w", err)
	}
	return nil
}
