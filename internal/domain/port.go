package domain

import "context"

// StateStore persists the session record across process restarts.
// Implementations must write the whole record atomically; partial
// updates would let stale permissions survive a tenant switch.
type StateStore interface {
	Save(record *SessionRecord) error
	Load() (*SessionRecord, error)
	Clear() error
}

// TokenRefresher exchanges the cookie-held refresh credential for a new
// access token. The exchange must not carry the bearer or tenant
// headers; the cookie is the only credential on that call.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context) (string, error)
}

// Authenticator performs the credential exchange at the session
// boundary. Login happens outside the authenticated pipeline; logout
// revocation is best effort.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
}

// RefreshChannel exposes the opaque refresh cookie for persistence and
// replays it into the transport after a restore.
type RefreshChannel interface {
	RefreshCookie() string
	SetRefreshCookie(serialized string)
}

// APICaller issues authenticated JSON calls through the request
// pipeline.
type APICaller interface {
	DoJSON(ctx context.Context, method, path string, body, out any) error
}
