package travio

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/travio/pkg/jwt"
	"github.com/dmitrymomot/travio/pkg/logger"
	"github.com/dmitrymomot/travio/pkg/session"
)

// Client is the entry point to the API for one session. It is cheap to build;
// servers create one per request around the caller's session store.
type Client struct {
	cfg       Config
	store     session.Store
	transport *Transport
	auth      *AuthManager
	logger    *slog.Logger
}

// New creates a client whose session state lives in store.
func New(cfg Config, store session.Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: session store is required", ErrInvalidConfig)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	o := &options{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg)
	}

	log := o.logger.With(logger.Component("travio"))

	t := &Transport{
		baseURL:   baseURL,
		client:    httpClient,
		logger:    log,
		onRequest: o.onRequest,
	}
	a := &AuthManager{
		store:      store,
		transport:  t,
		credential: cfg.Credential(),
		decoder:    jwt.NewDecoder(jwt.WithClock(o.now)),
		logger:     log,
	}
	t.tokens = a

	return &Client{
		cfg:       cfg,
		store:     store,
		transport: t,
		auth:      a,
		logger:    log,
	}, nil
}

// Auth returns the token and profile manager of this session.
func (c *Client) Auth() *AuthManager {
	return c.auth
}

// Request performs an arbitrary authenticated call. See Transport.Request.
func (c *Client) Request(ctx context.Context, method, endpoint string, payload any) (Response, error) {
	return c.transport.Request(ctx, method, endpoint, payload)
}

func normalizeBaseURL(raw string) (string, error) {
	if raw == "" {
		raw = DefaultBaseURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: base url: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: base url must be http or https", ErrInvalidConfig)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: base url has no host", ErrInvalidConfig)
	}

	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw, nil
}
