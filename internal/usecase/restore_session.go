package usecase

import (
	"log/slog"

	"erp-core/internal/domain"
	"erp-core/internal/session"
)

// RestoreSession repopulates the store from persisted state at startup
// and replays the persisted refresh cookie into the transport, so the
// restored session can refresh without a fresh login.
type RestoreSession struct {
	store   *session.Store
	channel domain.RefreshChannel
	logger  *slog.Logger
}

// NewRestoreSession creates a new RestoreSession usecase.
func NewRestoreSession(store *session.Store, channel domain.RefreshChannel, logger *slog.Logger) *RestoreSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &RestoreSession{store: store, channel: channel, logger: logger}
}

// Execute restores. Idempotent; never fails. Reports whether a session
// was restored.
func (uc *RestoreSession) Execute() bool {
	uc.store.Restore()
	if uc.store.Phase() != domain.PhaseAuthenticated {
		return false
	}
	if uc.channel != nil {
		uc.channel.SetRefreshCookie(uc.store.RefreshCookie())
	}
	identity := uc.store.Identity()
	uc.logger.Info("session restored",
		"user_id", identity.ID,
		"current_tenant", uc.store.CurrentTenantID())
	return true
}
