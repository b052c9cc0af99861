package travio_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/travio/pkg/session"
	"github.com/dmitrymomot/travio/pkg/travio"
)

func TestAuthManager_AuthToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issued once then cached", func(t *testing.T) {
		api := newFakeAPI(t)
		token := makeToken(t, map[string]any{"exp": expiringIn(time.Hour)})
		api.issue(token)

		store := session.NewMemoryStore()
		c := api.client(t, store)

		for range 3 {
			got, err := c.Auth().AuthToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, token, got)
		}
		assert.Equal(t, 1, api.count(http.MethodPost, "/auth"))

		cached, err := store.Get(ctx, travio.SessionKeyAuth)
		require.NoError(t, err)
		assert.Equal(t, token, string(cached))
	})

	t.Run("session token shared between clients", func(t *testing.T) {
		api := newFakeAPI(t)
		api.issue(makeToken(t, map[string]any{"exp": expiringIn(time.Hour)}))

		store := session.NewMemoryStore()
		_, err := api.client(t, store).Auth().AuthToken(ctx)
		require.NoError(t, err)
		_, err = api.client(t, store).Auth().AuthToken(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, api.count(http.MethodPost, "/auth"))
	})

	t.Run("expired token is renewed", func(t *testing.T) {
		api := newFakeAPI(t)
		fresh := makeToken(t, map[string]any{"exp": expiringIn(time.Hour)})
		api.issue(fresh)

		store := session.NewMemoryStore()
		stale := makeToken(t, map[string]any{"exp": expiringIn(-time.Minute)})
		require.NoError(t, store.Set(ctx, travio.SessionKeyAuth, []byte(stale)))

		got, err := api.client(t, store).Auth().AuthToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, fresh, got)
		assert.Equal(t, 1, api.count(http.MethodPost, "/auth"))

		cached, err := store.Get(ctx, travio.SessionKeyAuth)
		require.NoError(t, err)
		assert.Equal(t, fresh, string(cached))
	})

	t.Run("malformed cached token is renewed", func(t *testing.T) {
		api := newFakeAPI(t)
		fresh := makeToken(t, map[string]any{})
		api.issue(fresh)

		store := session.NewMemoryStore()
		require.NoError(t, store.Set(ctx, travio.SessionKeyAuth, []byte("not-a-token")))

		got, err := api.client(t, store).Auth().AuthToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, fresh, got)
	})

	t.Run("token without expiry is never renewed", func(t *testing.T) {
		api := newFakeAPI(t)
		api.issue(makeToken(t, map[string]any{"user": 1}))

		store := session.NewMemoryStore()
		forever := makeToken(t, map[string]any{"user": 5})
		require.NoError(t, store.Set(ctx, travio.SessionKeyAuth, []byte(forever)))

		later := func() time.Time { return time.Now().AddDate(50, 0, 0) }
		got, err := api.client(t, store, travio.WithClock(later)).Auth().AuthToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, forever, got)
		assert.Zero(t, api.count(http.MethodPost, "/auth"))
	})

	t.Run("clock decides expiry", func(t *testing.T) {
		api := newFakeAPI(t)
		api.issue(makeToken(t, map[string]any{}))

		store := session.NewMemoryStore()
		token := makeToken(t, map[string]any{"exp": expiringIn(time.Hour)})
		require.NoError(t, store.Set(ctx, travio.SessionKeyAuth, []byte(token)))

		later := func() time.Time { return time.Now().Add(2 * time.Hour) }
		got, err := api.client(t, store, travio.WithClock(later)).Auth().AuthToken(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, token, got)
		assert.Equal(t, 1, api.count(http.MethodPost, "/auth"))
	})

	t.Run("missing token in response", func(t *testing.T) {
		api := newFakeAPI(t)
		api.reply(http.MethodPost, "/auth", http.StatusOK, map[string]any{"status": "ok"})

		store := session.NewMemoryStore()
		_, err := api.client(t, store).Auth().AuthToken(ctx)
		assert.ErrorIs(t, err, travio.ErrAuth)

		ok, err := store.Has(ctx, travio.SessionKeyAuth)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejected credential", func(t *testing.T) {
		api := newFakeAPI(t)
		api.reply(http.MethodPost, "/auth", http.StatusUnauthorized, map[string]any{"error": "unauthorized"})

		_, err := api.client(t, session.NewMemoryStore()).Auth().AuthToken(ctx)

		var apiErr *travio.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, 1, api.count(http.MethodPost, "/auth"), "token exchange is not retried")
	})

	t.Run("concurrent callers share one renewal", func(t *testing.T) {
		api := newFakeAPI(t)
		token := makeToken(t, map[string]any{"exp": expiringIn(time.Hour)})
		release := make(chan struct{})
		api.handle(http.MethodPost, "/auth", func(w http.ResponseWriter, _ *http.Request) {
			<-release
			writeJSON(w, http.StatusOK, map[string]any{"token": token})
		})

		c := api.client(t, session.NewMemoryStore())

		const callers = 8
		var wg sync.WaitGroup
		tokens := make([]string, callers)
		errs := make([]error, callers)
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tokens[i], errs[i] = c.Auth().AuthToken(ctx)
			}()
		}

		require.Eventually(t, func() bool {
			return api.count(http.MethodPost, "/auth") == 1
		}, time.Second, 5*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		for i := range callers {
			require.NoError(t, errs[i])
			assert.Equal(t, token, tokens[i])
		}
		assert.Equal(t, 1, api.count(http.MethodPost, "/auth"))
	})

	t.Run("cancelled caller does not fail the shared renewal", func(t *testing.T) {
		api := newFakeAPI(t)
		token := makeToken(t, map[string]any{"exp": expiringIn(time.Hour)})
		release := make(chan struct{})
		api.handle(http.MethodPost, "/auth", func(w http.ResponseWriter, _ *http.Request) {
			<-release
			writeJSON(w, http.StatusOK, map[string]any{"token": token})
		})
		unblock := sync.OnceFunc(func() { close(release) })
		defer unblock()

		store := session.NewMemoryStore()
		c := api.client(t, store)

		firstCtx, cancel := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := c.Auth().AuthToken(firstCtx)
			firstErr <- err
		}()

		require.Eventually(t, func() bool {
			return api.count(http.MethodPost, "/auth") == 1
		}, time.Second, 5*time.Millisecond)

		type result struct {
			token string
			err   error
		}
		second := make(chan result, 1)
		go func() {
			tok, err := c.Auth().AuthToken(ctx)
			second <- result{tok, err}
		}()
		time.Sleep(20 * time.Millisecond)

		cancel()
		select {
		case err := <-firstErr:
			assert.ErrorIs(t, err, context.Canceled)
			assert.ErrorIs(t, err, travio.ErrTransport)
		case <-time.After(time.Second):
			t.Fatal("cancelled caller kept waiting")
		}

		unblock()
		select {
		case res := <-second:
			require.NoError(t, res.err)
			assert.Equal(t, token, res.token)
		case <-time.After(2 * time.Second):
			t.Fatal("second caller did not get a token")
		}
		assert.Equal(t, 1, api.count(http.MethodPost, "/auth"))

		cached, err := store.Get(ctx, travio.SessionKeyAuth)
		require.NoError(t, err)
		assert.Equal(t, token, string(cached))
	})
}

func TestAuthManager_ForcedToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := newFakeAPI(t)
	issued := makeToken(t, map[string]any{"exp": expiringIn(time.Hour)})
	api.issue(issued)
	api.reply(http.MethodGet, "/rest/hotels", http.StatusOK, map[string]any{"list": []any{}})

	store := session.NewMemoryStore()
	c := api.client(t, store)

	c.Auth().SetAuthToken("forced-token")

	got, err := c.Auth().AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "forced-token", got)

	_, err = c.RestList(ctx, "hotels", travio.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer forced-token", api.last(http.MethodGet, "/rest/hotels").Header.Get("Authorization"))
	assert.Zero(t, api.count(http.MethodPost, "/auth"))

	ok, err := store.Has(ctx, travio.SessionKeyAuth)
	require.NoError(t, err)
	assert.False(t, ok, "forced token is never cached")

	require.NoError(t, c.Auth().ClearTokenCache(ctx))
	got, err = c.Auth().AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "forced-token", got, "clearing the cache keeps the forced token")

	require.NoError(t, c.Auth().Logout(ctx))
	got, err = c.Auth().AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, issued, got)
	assert.Equal(t, 1, api.count(http.MethodPost, "/auth"))
}

func TestAuthManager_LogoutDropsSessionToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := newFakeAPI(t)
	issued := makeToken(t, map[string]any{"exp": expiringIn(time.Hour), "jti": "fresh"})
	api.issue(issued)

	store := session.NewMemoryStore()
	cached := makeToken(t, map[string]any{"exp": expiringIn(time.Hour), "user": 3})
	require.NoError(t, store.Set(ctx, travio.SessionKeyAuth, []byte(cached)))

	c := api.client(t, store)

	got, err := c.Auth().AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, got)

	c.Auth().SetAuthToken("forced-token")
	require.NoError(t, c.Auth().Logout(ctx))

	got, err = c.Auth().AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, issued, got, "the previously cached token is not reused")
	assert.Equal(t, 1, api.count(http.MethodPost, "/auth"))
}

func TestAuthManager_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("replaces the session token", func(t *testing.T) {
		api := newFakeAPI(t)
		app := makeToken(t, map[string]any{"exp": expiringIn(time.Hour)})
		user := makeToken(t, map[string]any{"exp": expiringIn(time.Hour), "user": 9})
		api.issue(app)
		api.reply(http.MethodPost, "/login", http.StatusOK, map[string]any{"token": user})

		store := session.NewMemoryStore()
		c := api.client(t, store)

		got, err := c.Auth().Login(ctx, "mario", "pa55")
		require.NoError(t, err)
		assert.Equal(t, user, got)

		req := api.last(http.MethodPost, "/login")
		assert.Equal(t, "mario", req.Body["username"])
		assert.Equal(t, "pa55", req.Body["password"])
		assert.Equal(t, "Bearer "+app, req.Header.Get("Authorization"))

		cached, err := store.Get(ctx, travio.SessionKeyAuth)
		require.NoError(t, err)
		assert.Equal(t, user, string(cached))

		token, err := c.Auth().AuthToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, user, token)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		api := newFakeAPI(t)
		app := makeToken(t, map[string]any{})
		api.issue(app)
		api.reply(http.MethodPost, "/login", http.StatusUnauthorized, map[string]any{"error": "invalid_login"})

		store := session.NewMemoryStore()
		c := api.client(t, store)

		_, err := c.Auth().Login(ctx, "mario", "wrong")
		status, ok := travio.StatusCode(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, status)

		cached, err := store.Get(ctx, travio.SessionKeyAuth)
		require.NoError(t, err)
		assert.Equal(t, app, string(cached), "app token stays in place")
	})

	t.Run("missing token", func(t *testing.T) {
		api := newFakeAPI(t)
		api.issue(makeToken(t, map[string]any{}))
		api.reply(http.MethodPost, "/login", http.StatusOK, map[string]any{})

		_, err := api.client(t, session.NewMemoryStore()).Auth().Login(ctx, "mario", "pa55")
		assert.ErrorIs(t, err, travio.ErrAuth)
	})
}

func TestAuthManager_Logged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := map[string]string{
		"Bearer " + makeToken(t, map[string]any{"user": 1}): "1",
		"Bearer " + makeToken(t, map[string]any{"user": 2}): "2",
	}
	profileRoute := func(api *fakeAPI) {
		api.handle(http.MethodGet, "/profile", func(w http.ResponseWriter, r *http.Request) {
			id, ok := users[r.Header.Get("Authorization")]
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": id, "name": "user " + id}})
		})
	}

	t.Run("profile cached while the user is unchanged", func(t *testing.T) {
		api := newFakeAPI(t)
		profileRoute(api)

		store := session.NewMemoryStore()
		require.NoError(t, store.Set(ctx, travio.SessionKeyAuth, []byte(makeToken(t, map[string]any{"user": 1}))))
		c := api.client(t, store)

		p, err := c.Auth().Logged(ctx)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "1", p.ID())
		assert.Equal(t, "user 1", p["name"])

		p, err = c.Auth().Logged(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1", p.ID())
		assert.Equal(t, 1, api.count(http.MethodGet, "/profile"))

		ok, err := store.Has(ctx, travio.SessionKeyProfile)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("profile refetched when the user changes", func(t *testing.T) {
		api := newFakeAPI(t)
		profileRoute(api)

		store := session.NewMemoryStore()
		c := api.client(t, store)

		p, err := c.Auth().LoggedAs(ctx, makeToken(t, map[string]any{"user": 1}))
		require.NoError(t, err)
		assert.Equal(t, "1", p.ID())

		p, err = c.Auth().LoggedAs(ctx, makeToken(t, map[string]any{"user": 2}))
		require.NoError(t, err)
		assert.Equal(t, "2", p.ID())
		assert.Equal(t, 2, api.count(http.MethodGet, "/profile"))
	})

	t.Run("not authenticated", func(t *testing.T) {
		api := newFakeAPI(t)
		profileRoute(api)
		c := api.client(t, session.NewMemoryStore())

		p, err := c.Auth().Logged(ctx)
		assert.NoError(t, err)
		assert.Nil(t, p, "no session token")

		for _, token := range []string{
			"garbage",
			makeToken(t, map[string]any{"exp": expiringIn(time.Hour)}),
			makeToken(t, map[string]any{"user": 1, "exp": expiringIn(-time.Hour)}),
		} {
			p, err := c.Auth().LoggedAs(ctx, token)
			assert.NoError(t, err)
			assert.Nil(t, p)
		}
		assert.Zero(t, api.count(http.MethodGet, "/profile"))
	})

	t.Run("profile failure", func(t *testing.T) {
		api := newFakeAPI(t)
		api.reply(http.MethodGet, "/profile", http.StatusForbidden, map[string]any{"error": "forbidden"})
		c := api.client(t, session.NewMemoryStore())

		_, err := c.Auth().LoggedAs(ctx, makeToken(t, map[string]any{"user": 3}))
		status, ok := travio.StatusCode(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, status)
	})
}

func TestAuthManager_ClearTokenCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := newFakeAPI(t)
	api.issue(makeToken(t, map[string]any{"exp": expiringIn(time.Hour)}))

	store := session.NewMemoryStore()
	c := api.client(t, store)

	_, err := c.Auth().AuthToken(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, travio.SessionKeyCart, []byte("cart-1")))

	require.NoError(t, c.Auth().ClearTokenCache(ctx))

	ok, err := store.Has(ctx, travio.SessionKeyAuth)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Has(ctx, travio.SessionKeyCart)
	require.NoError(t, err)
	assert.True(t, ok, "other session keys are untouched")

	_, err = c.Auth().AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count(http.MethodPost, "/auth"))

	assert.NoError(t, c.Auth().ClearTokenCache(ctx), "clearing twice is fine")
}
