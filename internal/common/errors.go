// Package common defines shared constants and sentinel errors used across
// the scansync client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Remote service errors.
	ErrTransport    = errors.New("transport error")
	ErrServer       = errors.New("server error")
	ErrUnauthorized = errors.New("unauthorized")

	// Session errors.
	ErrNotLoggedIn = errors.New("not logged in")
	ErrEmptyToken  = errors.New("empty access token")
)
