package travio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/travio/pkg/logger"
	"github.com/dmitrymomot/travio/pkg/requestid"
)

const (
	userAgent = "travio-go/1.0"

	// authEndpoint issues tokens and is the only call sent without one.
	authEndpoint = "auth"
)

// TokenSource supplies the bearer token attached to authenticated calls.
type TokenSource interface {
	AuthToken(ctx context.Context) (string, error)
}

// RequestResult describes one completed call, successful or not.
type RequestResult struct {
	Method     string
	Endpoint   string
	StatusCode int // zero when no response was received
	Duration   time.Duration
	Err        error
}

// RequestHook is called after every call, for metrics or auditing.
type RequestHook func(RequestResult)

// Transport performs single request/response cycles against the API origin.
// It never retries.
type Transport struct {
	baseURL   string
	client    *http.Client
	tokens    TokenSource
	logger    *slog.Logger
	onRequest RequestHook
}

// call is one request to the API.
type call struct {
	method   string
	endpoint string
	query    url.Values
	payload  any
	bearer   string // overrides the token source when set
}

// NewHTTPClient returns the http.Client used when none is supplied.
// Keep-alives are disabled because every request asks the server to close
// the connection. Share one instance between clients of the same process.
func NewHTTPClient(cfg Config) *http.Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: cfg.ConnectTimeout,
			DisableKeepAlives:   true,
		},
	}
}

// Request sends method to endpoint with payload encoded as JSON (nil means
// no body) and returns the decoded response object.
//
// Failures are classified as: ErrTransport when no response was received,
// *APIError for any status other than 200, ErrMalformedResponse when a 200
// body is not a JSON object.
func (t *Transport) Request(ctx context.Context, method, endpoint string, payload any) (Response, error) {
	return t.requestQuery(ctx, method, endpoint, nil, payload)
}

func (t *Transport) requestQuery(ctx context.Context, method, endpoint string, query url.Values, payload any) (Response, error) {
	var out Response
	if err := t.do(ctx, call{method: method, endpoint: endpoint, query: query, payload: payload}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s: null body", ErrMalformedResponse, endpoint)
	}
	return out, nil
}

func (t *Transport) do(ctx context.Context, c call, out any) (err error) {
	method := strings.ToUpper(c.method)
	start := time.Now()
	status := 0
	defer func() {
		t.observe(ctx, RequestResult{
			Method:     method,
			Endpoint:   c.endpoint,
			StatusCode: status,
			Duration:   time.Since(start),
			Err:        err,
		})
	}()

	var body io.Reader
	var raw []byte
	if c.payload != nil {
		if raw, err = json.Marshal(c.payload); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, c.endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.url(c.endpoint, c.query), body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, c.endpoint, err)
	}

	req.Close = true
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	if raw != nil {
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = int64(len(raw))
	}

	if requiresAuth(method, c.endpoint) {
		token, err := t.bearer(ctx, c)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, c.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrTransport, c.endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := errorMessage(data)
		if msg == "" {
			msg = "request failed for " + c.endpoint
		}
		return &APIError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := decodeJSON(data, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, c.endpoint, err)
	}
	return nil
}

func (t *Transport) bearer(ctx context.Context, c call) (string, error) {
	if c.bearer != "" {
		return c.bearer, nil
	}
	if t.tokens == nil {
		return "", fmt.Errorf("%w: no token source", ErrAuth)
	}
	return t.tokens.AuthToken(ctx)
}

func (t *Transport) url(endpoint string, query url.Values) string {
	u := t.baseURL + strings.TrimPrefix(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (t *Transport) observe(ctx context.Context, res RequestResult) {
	attrs := []any{
		logger.Method(res.Method),
		logger.Endpoint(res.Endpoint),
		logger.StatusCode(res.StatusCode),
		logger.Duration(res.Duration),
	}
	if res.Err != nil {
		t.logger.WarnContext(ctx, "travio request failed", append(attrs, logger.Error(res.Err))...)
	} else {
		t.logger.DebugContext(ctx, "travio request", attrs...)
	}

	if t.onRequest != nil {
		t.onRequest(res)
	}
}

// requiresAuth is false only for the token-issuing call, which must not
// depend on an existing token.
func requiresAuth(method, endpoint string) bool {
	return !(method == http.MethodPost && endpoint == authEndpoint)
}

func decodeJSON(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
