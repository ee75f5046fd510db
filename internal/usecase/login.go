package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"erp-core/internal/domain"
	"erp-core/internal/session"
)

// Login orchestrates the credential exchange and installs the resulting
// session into the store.
type Login struct {
	auth    domain.Authenticator
	channel domain.RefreshChannel
	store   *session.Store
	logger  *slog.Logger
}

// NewLogin creates a new Login usecase.
func NewLogin(auth domain.Authenticator, channel domain.RefreshChannel, store *session.Store, logger *slog.Logger) *Login {
	if logger == nil {
		logger = slog.Default()
	}
	return &Login{auth: auth, channel: channel, store: store, logger: logger}
}

// Execute performs the login and replaces the session wholesale.
func (uc *Login) Execute(ctx context.Context, email, password string) error {
	uc.store.BeginAuthentication()

	result, err := uc.auth.Login(ctx, email, password)
	if err != nil {
		uc.store.Logout()
		return fmt.Errorf("login failed: %w", err)
	}

	identity := result.Identity
	if identity.PreferredTenantID == "" && result.CurrentTenant != "" {
		identity.PreferredTenantID = result.CurrentTenant
	}

	refreshCookie := ""
	if uc.channel != nil {
		refreshCookie = uc.channel.RefreshCookie()
	}

	uc.store.SetCredentials(session.Credentials{
		Identity:      identity,
		AccessToken:   result.AccessToken,
		RefreshToken:  result.RefreshToken,
		Tenants:       result.Tenants,
		Permissions:   result.Permissions,
		RefreshCookie: refreshCookie,
	})

	uc.logger.InfoContext(ctx, "login succeeded",
		"user_id", identity.ID,
		"tenant_count", len(result.Tenants),
		"current_tenant", uc.store.CurrentTenantID())
	return nil
}
