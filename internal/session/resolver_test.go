package session

import (
	"log/slog"
	"testing"

	"erp-core/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestResolveTenantID_SelectedTenantWins(t *testing.T) {
	store := NewStore(&memoryState{}, slog.Default())
	store.SetCredentials(Credentials{
		Identity:    &domain.Identity{ID: "u1", IsSuperuser: true},
		AccessToken: "tok",
		Tenants:     testTenants(),
	})

	id, ok := store.ResolveTenantID("/companies/C/inventory")
	assert.True(t, ok)
	assert.Equal(t, "A", id, "explicit selection beats the path fallback")
}

func TestResolveTenantID_SoleMembership(t *testing.T) {
	store := NewStore(&memoryState{}, slog.Default())
	store.SetCredentials(Credentials{
		Identity:    &domain.Identity{ID: "u1"},
		AccessToken: "tok",
	})
	// Only the tenant list is known; no selection was made.
	store.mu.Lock()
	store.tenants = []domain.Tenant{{ID: "only", Name: "Only Co"}}
	store.currentTenantID = ""
	store.mu.Unlock()

	id, ok := store.ResolveTenantID("")
	assert.True(t, ok)
	assert.Equal(t, "only", id)
}

func TestResolveTenantID_SuperuserPathFallback(t *testing.T) {
	store := NewStore(&memoryState{}, slog.Default())
	store.SetCredentials(Credentials{
		Identity:    &domain.Identity{ID: "u1", IsSuperuser: true},
		AccessToken: "tok",
	})

	// Deep link loaded before the tenant list arrived.
	id, ok := store.ResolveTenantID("/companies/COMP-9/dispatch/12")
	assert.True(t, ok)
	assert.Equal(t, "COMP-9", id)
}

func TestResolveTenantID_SuperuserFirstKnownTenant(t *testing.T) {
	store := NewStore(&memoryState{}, slog.Default())
	store.SetCredentials(Credentials{
		Identity:    &domain.Identity{ID: "u1", IsSuperuser: true},
		AccessToken: "tok",
	})
	store.mu.Lock()
	store.tenants = testTenants()
	store.currentTenantID = ""
	store.mu.Unlock()

	id, ok := store.ResolveTenantID("/dashboard")
	assert.True(t, ok)
	assert.Equal(t, "A", id)
}

func TestResolveTenantID_MultiTenantWithoutSelection(t *testing.T) {
	store := NewStore(&memoryState{}, slog.Default())
	store.SetCredentials(Credentials{
		Identity:    &domain.Identity{ID: "u1"},
		AccessToken: "tok",
	})

	// Non-superuser with several tenants and no selection: attaching a
	// guessed header would scope the request to the wrong company.
	store.mu.Lock()
	store.tenants = testTenants()
	store.currentTenantID = ""
	store.mu.Unlock()

	_, ok := store.ResolveTenantID("/companies/B/finance")
	assert.False(t, ok)
}

func TestTenantIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/companies/COMP-1", "COMP-1"},
		{"/companies/COMP-1/visitors", "COMP-1"},
		{"/app/companies/42/reports", "42"},
		{"/companies/", ""},
		{"/companies", ""},
		{"/dashboard", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tenantIDFromPath(tt.path), "path %q", tt.path)
	}
}
