package jwt

import (
	"encoding/json"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Registered claim names read by this package.
const (
	ClaimExpiresAt = "exp"
	ClaimUser      = "user"
)

// Claims is the decoded payload segment of a token.
// Numbers are kept as json.Number so identifiers survive without float rounding.
type Claims map[string]any

// ExpiresAt returns the "exp" claim.
// The boolean is false when the claim is absent; ErrInvalidClaim is returned
// when it is present but not a numeric date.
func (c Claims) ExpiresAt() (time.Time, bool, error) {
	if _, ok := c[ClaimExpiresAt]; !ok {
		return time.Time{}, false, nil
	}

	exp, err := jwtlib.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false, ErrInvalidClaim
	}

	return exp.Time, true, nil
}

// Live reports whether the token is still usable at now.
// A token without "exp" never expires; this mirrors the issuer's behaviour
// rather than RFC 7519 defaults.
func (c Claims) Live(now time.Time) bool {
	exp, ok, err := c.ExpiresAt()
	if err != nil {
		return false
	}
	if !ok {
		return true
	}
	return exp.Unix() >= now.Unix()
}

// User returns the "user" claim as a string identifier.
func (c Claims) User() (string, bool) {
	return c.String(ClaimUser)
}

// String returns the value stored under key rendered as a string.
// Strings and numbers are accepted; any other type reports false.
func (c Claims) String(key string) (string, bool) {
	v, ok := c[key]
	if !ok || v == nil {
		return "", false
	}

	switch val := v.(type) {
	case string:
		return val, val != ""
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}
