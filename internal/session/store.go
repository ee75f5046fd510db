// Package session holds the client-side session aggregate: identity,
// credentials, tenant set, permission map and the currently selected
// tenant. The Store is the single source of truth; every change goes
// through one of the named transition operations below so state can
// never drift through ad-hoc field writes.
package session

import (
	"errors"
	"log/slog"
	"sync"

	"erp-core/internal/ability"
	"erp-core/internal/domain"
)

// Credentials is the input to SetCredentials. Identity and AccessToken
// are always replaced. RefreshToken, Tenants and Permissions are
// replaced only when provided (non-zero), so the refresh path can rotate
// the access token while leaving everything else untouched.
type Credentials struct {
	Identity      *domain.Identity
	AccessToken   string
	RefreshToken  string
	Tenants       []domain.Tenant
	Permissions   domain.PermissionMap
	RefreshCookie string
}

// Store is the mutable session aggregate. All methods are safe for
// concurrent use; mutations are atomic from the caller's point of view.
type Store struct {
	mu     sync.RWMutex
	state  domain.StateStore
	logger *slog.Logger

	phase           domain.Phase
	identity        *domain.Identity
	accessToken     string
	refreshToken    string
	tenants         []domain.Tenant
	permissions     domain.PermissionMap
	currentTenantID string
	refreshCookie   string

	// epoch increments on every Logout. In-flight refreshes and retries
	// carry the epoch they started under and are discarded on mismatch,
	// so a late retry cannot re-populate a session that was torn down.
	epoch uint64

	// capability is rebuilt whenever identity or permissions change.
	capability *ability.Ability
}

// NewStore creates an unauthenticated session store backed by the given
// state store.
func NewStore(state domain.StateStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:  state,
		logger: logger,
		phase:  domain.PhaseUnauthenticated,
	}
}

// SetCredentials fully replaces the identity and access token, and the
// refresh token, tenant set and permission map when provided. It
// resolves the current tenant by precedence: previously selected tenant
// id if still present in the new set, then the identity's preferred
// tenant, then the first tenant. The resulting state is persisted as a
// whole record.
func (s *Store) SetCredentials(c Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = c.Identity
	s.accessToken = c.AccessToken
	if c.RefreshToken != "" {
		s.refreshToken = c.RefreshToken
	}
	if c.RefreshCookie != "" {
		s.refreshCookie = c.RefreshCookie
	}
	if c.Tenants != nil {
		s.tenants = c.Tenants
		s.currentTenantID = s.resolveCurrentTenant(c.Tenants)
	}
	if c.Permissions != nil {
		// Full replacement, never a merge: stale grants must not
		// survive a tenant switch.
		s.permissions = c.Permissions.Clone()
	}

	s.phase = domain.PhaseAuthenticated
	s.rebuildAbility()
	s.persist()
}

// resolveCurrentTenant picks the current tenant for a fresh tenant set.
// The previously selected id wins if it is still present, so a returning
// superuser exploring tenant B is not silently reset to tenant A after a
// token refresh.
func (s *Store) resolveCurrentTenant(tenants []domain.Tenant) string {
	if len(tenants) == 0 {
		return ""
	}
	if s.currentTenantID != "" {
		if _, ok := domain.FindTenant(tenants, s.currentTenantID); ok {
			return s.currentTenantID
		}
	}
	if s.identity != nil && s.identity.PreferredTenantID != "" {
		if _, ok := domain.FindTenant(tenants, s.identity.PreferredTenantID); ok {
			return s.identity.PreferredTenantID
		}
	}
	return tenants[0].ID
}

// SwitchTenant selects a tenant from the known set and persists the
// choice. It does not touch the permission map; the caller is expected
// to install the fresh map from the switch response via SetPermissions
// or SetCredentials.
func (s *Store) SwitchTenant(tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := domain.FindTenant(s.tenants, tenantID); !ok {
		return domain.ErrUnknownTenant
	}
	s.currentTenantID = tenantID
	s.persist()
	return nil
}

// SetPermissions replaces the permission map whole and persists.
func (s *Store) SetPermissions(permissions domain.PermissionMap) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.permissions = permissions.Clone()
	s.rebuildAbility()
	s.persist()
}

// BeginAuthentication marks credentials as in flight, so readers can
// render a loading state instead of an error.
func (s *Store) BeginAuthentication() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = domain.PhaseAuthenticating
}

// BeginRefresh marks a background credential refresh. Returns the epoch
// the refresh started under; pass it to ApplyRefreshedToken.
func (s *Store) BeginRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.PhaseAuthenticated {
		s.phase = domain.PhaseRefreshing
	}
	return s.epoch
}

// EndRefresh reverts an aborted refresh to the authenticated phase.
// Called when a refresh attempt fails without tearing the session down;
// the current token stays in place.
func (s *Store) EndRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.PhaseRefreshing {
		s.phase = domain.PhaseAuthenticated
	}
}

// ApplyRefreshedToken installs a rotated access token through the same
// replacement path as SetCredentials, leaving identity, tenants and
// permissions untouched. The token is discarded if a Logout happened
// after the refresh started; reports whether it was applied.
func (s *Store) ApplyRefreshedToken(accessToken string, epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || s.identity == nil {
		s.logger.Warn("discarding refreshed token for torn-down session")
		return false
	}
	s.accessToken = accessToken
	s.phase = domain.PhaseAuthenticated
	s.persist()
	return true
}

// Logout clears every field and all persisted state. Safe to call at
// any time, including concurrently with an in-flight refresh: the epoch
// bump makes late refresh results no-ops.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.identity = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.tenants = nil
	s.permissions = nil
	s.currentTenantID = ""
	s.refreshCookie = ""
	s.capability = nil
	s.phase = domain.PhaseUnauthenticated

	if s.state != nil {
		if err := s.state.Clear(); err != nil {
			s.logger.Warn("failed to clear persisted session state", "error", err)
		}
	}
}

// Restore repopulates the session from persisted state. It is
// idempotent and never returns an error to the caller: missing state
// leaves the store unauthenticated, malformed state is cleared and
// likewise falls back to unauthenticated.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return
	}
	record, err := s.state.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrStateNotFound) {
			s.logger.Warn("discarding malformed persisted session state", "error", err)
			if clearErr := s.state.Clear(); clearErr != nil {
				s.logger.Warn("failed to clear persisted session state", "error", clearErr)
			}
		}
		return
	}
	if record.Identity == nil || record.AccessToken == "" {
		s.logger.Warn("persisted session state is incomplete, discarding")
		if clearErr := s.state.Clear(); clearErr != nil {
			s.logger.Warn("failed to clear persisted session state", "error", clearErr)
		}
		return
	}

	s.identity = record.Identity
	s.accessToken = record.AccessToken
	s.refreshToken = record.RefreshToken
	s.tenants = record.Tenants
	s.permissions = record.Permissions.Clone()
	s.currentTenantID = record.CurrentTenantID
	s.refreshCookie = record.RefreshCookie
	s.phase = domain.PhaseAuthenticated
	s.rebuildAbility()
}

// rebuildAbility recomputes the capability set. Caller holds the lock.
func (s *Store) rebuildAbility() {
	s.capability = ability.Build(s.identity, s.permissions)
}

// persist writes the whole session record. Caller holds the lock.
// Persistence failures are logged, not surfaced: the in-memory session
// stays authoritative and the worst case is a re-login after restart.
func (s *Store) persist() {
	if s.state == nil {
		return
	}
	record := &domain.SessionRecord{
		AccessToken:     s.accessToken,
		RefreshToken:    s.refreshToken,
		Identity:        s.identity,
		Tenants:         s.tenants,
		Permissions:     s.permissions.Clone(),
		CurrentTenantID: s.currentTenantID,
		RefreshCookie:   s.refreshCookie,
	}
	if err := s.state.Save(record); err != nil {
		s.logger.Warn("failed to persist session state", "error", err)
	}
}

// Phase returns the current lifecycle phase.
func (s *Store) Phase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Identity returns the current identity, or nil when unauthenticated.
func (s *Store) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// AccessToken returns the current bearer credential. Callers must read
// it fresh per request; a refresh may rotate it at any time.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Tenants returns the known tenant set.
func (s *Store) Tenants() []domain.Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Tenant(nil), s.tenants...)
}

// Permissions returns a copy of the permission map.
func (s *Store) Permissions() domain.PermissionMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions.Clone()
}

// CurrentTenantID returns the selected tenant id, or "" when none.
func (s *Store) CurrentTenantID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTenantID
}

// RefreshCookie returns the serialized refresh cookie, opaque to us.
func (s *Store) RefreshCookie() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshCookie
}

// Ability returns the capability set for the current identity and
// permission map. Never nil-dereferences: an unauthenticated store
// yields an all-denying ability.
func (s *Store) Ability() *ability.Ability {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capability
}

// Epoch returns the current session epoch.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}
