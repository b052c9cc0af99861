package session

import "github.com/google/uuid"

// NewID returns a random session identifier suitable for a cookie value.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like a value produced by NewID.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}
