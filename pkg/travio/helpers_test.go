package travio_test

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/travio/pkg/session"
	"github.com/dmitrymomot/travio/pkg/travio"
)

// recorded is one request seen by the fake API.
type recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Close  bool
	Length int64
	Body   map[string]any
}

// fakeAPI is an in-process Travio API. Routes are keyed by "METHOD path".
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recorded
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{t: t, routes: map[string]http.HandlerFunc{}}
	api.srv = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.srv.Close)
	return api
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Close:  r.Close,
		Length: r.ContentLength,
		Body:   body,
	})
	h, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not_found"})
		return
	}
	h(w, r)
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	f.routes[method+" "+path] = h
	f.mu.Unlock()
}

// reply registers a route answering status with body.
func (f *fakeAPI) reply(method, path string, status int, body any) {
	f.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

// issue makes POST auth return token.
func (f *fakeAPI) issue(token string) {
	f.reply(http.MethodPost, "/auth", http.StatusOK, map[string]any{"token": token})
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// last returns the latest request to method path.
func (f *fakeAPI) last(method, path string) recorded {
	f.t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.requests) - 1; i >= 0; i-- {
		if r := f.requests[i]; r.Method == method && r.Path == path {
			return r
		}
	}
	f.t.Fatalf("no %s %s request recorded", method, path)
	return recorded{}
}

func (f *fakeAPI) config() travio.Config {
	cfg := travio.DefaultConfig()
	cfg.BaseURL = f.srv.URL
	cfg.AuthID = 42
	cfg.AuthKey = "secret"
	return cfg
}

func (f *fakeAPI) client(t *testing.T, store session.Store, opts ...travio.Option) *travio.Client {
	t.Helper()
	return f.clientWith(t, f.config(), store, opts...)
}

func (f *fakeAPI) clientWith(t *testing.T, cfg travio.Config, store session.Store, opts ...travio.Option) *travio.Client {
	t.Helper()
	c, err := travio.New(cfg, store, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// makeToken builds an unsigned token carrying claims.
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func expiringIn(d time.Duration) int64 {
	return time.Now().Add(d).Unix()
}
