package domain

import "errors"

// Authentication errors.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnauthorized     = errors.New("request unauthorized")
	ErrSessionClosed    = errors.New("session terminated")
)

// Refresh channel errors.
var (
	ErrRefreshFailed       = errors.New("credential refresh failed")
	ErrInvalidRefreshGrant = errors.New("refresh credential invalid or expired")
)

// Tenant errors.
var ErrUnknownTenant = errors.New("tenant not in identity's tenant set")

// State store errors.
var (
	ErrStateNotFound = errors.New("no persisted session state")
	ErrStateCorrupt  = errors.New("persisted session state is malformed")
)
