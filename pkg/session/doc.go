// Package session provides the per-user key/value state that outlives a
// single call into an API client: cached bearer tokens, a decoded profile,
// the active cart id.
//
// A Store is scoped to exactly one logical session. MemoryStore keeps the
// values in process and suits CLIs, tests and single-user tools. RedisStore
// keeps them in Redis under a per-session key prefix so that stateless web
// handlers can rebuild the same view on every request from a cookie value.
//
// # Usage
//
//	import "github.com/dmitrymomot/travio/pkg/session"
//
//	sid := session.NewID()
//	store, err := session.NewRedisStore(rdb, sid, session.WithTTL(2*time.Hour))
//	if err != nil {
//	    // handle error
//	}
//
//	_ = store.Set(ctx, "travio-cart", []byte("c-123"))
//	v, err := store.Get(ctx, "travio-cart")
//	if errors.Is(err, session.ErrNotFound) {
//	    // nothing stored
//	}
//
// # Expiry
//
// RedisStore refreshes the TTL of a key on every Set. Keys that are not
// written again expire with the session, which is the only way some values
// (such as the cart id) are ever cleared.
//
// # Error Handling
//
//   - ErrNotFound   – no value under the key
//   - ErrInvalidKey – empty key
//   - ErrStore      – backing datastore failure, wraps the driver error
package session
