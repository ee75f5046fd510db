package domain

// Phase is the lifecycle phase of the session aggregate.
type Phase string

// Logout is not a phase of its own: teardown clears all state and
// lands back in PhaseUnauthenticated.
const (
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseAuthenticating  Phase = "authenticating"
	PhaseAuthenticated   Phase = "authenticated"
	PhaseRefreshing      Phase = "refreshing"
)

// LoginResult is the response shape shared by login and tenant-switch:
// everything needed to (re)build the session aggregate in one piece.
type LoginResult struct {
	Identity      *Identity     `json:"identity"`
	Tenants       []Tenant      `json:"tenants"`
	CurrentTenant string        `json:"current_tenant,omitempty"`
	AccessToken   string        `json:"access_token"`
	RefreshToken  string        `json:"refresh_token,omitempty"`
	Permissions   PermissionMap `json:"permissions"`
}

// SessionRecord is the durable snapshot of the session, written to the
// local state store on every credential mutation and read back once at
// startup by Restore.
type SessionRecord struct {
	AccessToken     string        `json:"access_token"`
	RefreshToken    string        `json:"refresh_token,omitempty"`
	Identity        *Identity     `json:"identity"`
	Tenants         []Tenant      `json:"tenants,omitempty"`
	Permissions     PermissionMap `json:"permissions,omitempty"`
	CurrentTenantID string        `json:"current_tenant_id,omitempty"`

	// RefreshCookie carries the server's HTTP-only refresh cookie in
	// serialized form. The value is opaque to this client; it is only
	// replayed into the cookie jar on restore.
	RefreshCookie string `json:"refresh_cookie,omitempty"`
}
