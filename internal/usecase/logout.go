package usecase

import (
	"context"
	"log/slog"

	"erp-core/internal/domain"
	"erp-core/internal/session"
)

// Logout revokes the refresh credential server-side and tears the local
// session down. Local teardown always happens, even when revocation
// fails: the user asked to be logged out.
type Logout struct {
	auth   domain.Authenticator
	store  *session.Store
	logger *slog.Logger
}

// NewLogout creates a new Logout usecase.
func NewLogout(auth domain.Authenticator, store *session.Store, logger *slog.Logger) *Logout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logout{auth: auth, store: store, logger: logger}
}

// Execute logs out.
func (uc *Logout) Execute(ctx context.Context) {
	if uc.auth != nil {
		if err := uc.auth.Logout(ctx, uc.store.AccessToken()); err != nil {
			uc.logger.Warn("server-side logout failed, clearing local session anyway", "error", err)
		}
	}
	uc.store.Logout()
	uc.logger.InfoContext(ctx, "session terminated")
}
