// Package common defines shared sentinel errors used across the StuVerFlow
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrNotFound covers missing resources (404 responses, absent records).
	ErrNotFound = errors.New("not found")

	// Transport-level errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotInitialized reports use of the session manager before Initialize.
	ErrNotInitialized = errors.New("session manager not initialized")
)
