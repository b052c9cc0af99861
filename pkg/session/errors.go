package session

import "errors"

var (
	// ErrNotFound indicates no value is stored under the key
	ErrNotFound = errors.New("session.not_found")

	// ErrInvalidKey indicates an empty key
	ErrInvalidKey = errors.New("session.invalid_key")

	// ErrNoSessionID indicates a scoped store was built without a session id
	ErrNoSessionID = errors.New("session.no_session_id")

	// ErrStore wraps failures of the backing datastore
	ErrStore = errors.New("session.store_failed")
)
