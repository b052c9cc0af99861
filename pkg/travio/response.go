package travio

import (
	"encoding/json"
	"strings"

	"github.com/dmitrymomot/travio/pkg/jwt"
)

// Response is a decoded JSON object returned by the API.
// Numbers are json.Number.
type Response map[string]any

// String returns the string or numeric value under key, or "" when absent.
// Values are rendered exactly like token claims so ids compare equal.
func (r Response) String(key string) string {
	s, _ := jwt.Claims(r).String(key)
	return s
}

// Profile is the authenticated user as returned by GET profile.
type Profile map[string]any

// ID returns the user identifier, comparable with the token "user" claim.
func (p Profile) ID() string {
	id, _ := jwt.Claims(p).String("id")
	return id
}

// errorMessage assembles the message of a failed response from its "error"
// and "message" fields. It returns "" when the body carries neither.
func errorMessage(body []byte) string {
	var fields Response
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}

	parts := make([]string, 0, 2)
	for _, key := range []string{"error", "message"} {
		if v := fields.String(key); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " - ")
}
