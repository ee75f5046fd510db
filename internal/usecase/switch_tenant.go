package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"erp-core/internal/domain"
	"erp-core/internal/session"
)

// SwitchTenant changes the current company and installs the fresh
// permission map the server issues for it. Switching never merges
// permission maps; the old map is replaced whole.
type SwitchTenant struct {
	api    domain.APICaller
	store  *session.Store
	logger *slog.Logger
}

// NewSwitchTenant creates a new SwitchTenant usecase.
func NewSwitchTenant(api domain.APICaller, store *session.Store, logger *slog.Logger) *SwitchTenant {
	if logger == nil {
		logger = slog.Default()
	}
	return &SwitchTenant{api: api, store: store, logger: logger}
}

type switchRequest struct {
	CompanyID string `json:"company_id"`
}

type switchResponse struct {
	AccessToken string               `json:"access_token,omitempty"`
	Permissions domain.PermissionMap `json:"permissions"`
}

// Execute switches to tenantID. The server call runs under the old
// tenant header; only after it succeeds does the local selection move,
// together with the fresh permission map.
func (uc *SwitchTenant) Execute(ctx context.Context, tenantID string) error {
	var resp switchResponse
	err := uc.api.DoJSON(ctx, http.MethodPost, "/auth/switch-company", switchRequest{CompanyID: tenantID}, &resp)
	if err != nil {
		return fmt.Errorf("tenant switch failed: %w", err)
	}

	if err := uc.store.SwitchTenant(tenantID); err != nil {
		return err
	}
	if resp.AccessToken != "" {
		uc.store.ApplyRefreshedToken(resp.AccessToken, uc.store.Epoch())
	}
	uc.store.SetPermissions(resp.Permissions)

	uc.logger.InfoContext(ctx, "switched tenant", "tenant_id", tenantID)
	return nil
}
