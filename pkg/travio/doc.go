// Package travio is a client for the Travio booking API that keeps its
// per-user state (bearer token, profile, active cart) in a session.Store, so
// stateless request handlers behave like one long-lived session.
//
// # Architecture
//
//   - Transport performs one request/response cycle. It attaches the bearer
//     token to every call except POST auth, sends JSON bodies and classifies
//     the outcome.
//   - AuthManager caches the token in the session, renews it through the
//     credential exchange when it is missing or stale, supports a forced
//     token and caches the user profile.
//   - Client composes both and exposes booking, cart and REST operations.
//
// # Usage
//
//	var cfg travio.Config
//	config.MustLoad(&cfg)
//
//	client, err := travio.New(cfg, session.NewMemoryStore(),
//	    travio.WithLogger(log),
//	)
//	if err != nil {
//	    // invalid configuration
//	}
//
//	res, err := client.Search(ctx, map[string]any{"type": "hotels"}, "")
//	cart, err := client.GetCart(ctx, "", nil) // reuses the search cart
//
// # Tokens
//
// Tokens are decoded without signature verification, only to learn their
// expiry and user. A token without "exp" is considered valid forever. A token
// passed to SetAuthToken is trusted as is.
//
// # Error Handling
//
//   - ErrTransport          – no response: DNS, dial, TLS, timeout
//   - *APIError             – any status other than 200, with the API message
//   - ErrMalformedResponse  – a 200 response that is not a JSON object
//   - ErrAuth               – a token exchange returned no token
//
// Outcome maps any error to a metric label, and NewMetrics records every
// call as OpenTelemetry measurements through WithOnRequest.
//
// Nothing is retried. Logged, GetCart and SignedURL report "nothing there"
// with empty results instead of errors.
//
// # Concurrency
//
// A Client belongs to one session. Concurrent AuthToken calls on the same
// Client share a single renewal; clients of the same session built for
// concurrent requests may each renew, and the last token written wins.
package travio
