// Package jwt decodes three-segment signed tokens without verifying them.
//
// Tokens handed out by a remote issuer are opaque to the client: it has no key
// to verify the signature and does not need one. What it does need is to know
// whether a cached token is still worth sending, and which user it belongs to.
// Decode reads the payload segment, and Claims exposes the "exp" and "user"
// claims.
//
// # Usage
//
//	import "github.com/dmitrymomot/travio/pkg/jwt"
//
//	dec := jwt.NewDecoder()
//	claims, err := dec.DecodeLive(token)
//	switch {
//	case errors.Is(err, jwt.ErrExpiredToken):
//	    // renew
//	case err != nil:
//	    // malformed, treat as absent
//	}
//	user, ok := claims.User()
//
// # Expiry
//
// A token with no "exp" claim is treated as never expiring. Confirm this
// against the issuer's token format before relying on it.
//
// # Security
//
// Nothing in this package is a security boundary. Any syntactically valid
// token is accepted.
package jwt
