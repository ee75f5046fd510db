package usecase

import (
	"context"
	"fmt"
	"net/http"

	"erp-core/internal/domain"
)

// CurrentUser fetches the server's view of the authenticated identity.
// Useful as a liveness probe for the session: it exercises the full
// pipeline including the silent refresh path.
type CurrentUser struct {
	api domain.APICaller
}

// NewCurrentUser creates a new CurrentUser usecase.
func NewCurrentUser(api domain.APICaller) *CurrentUser {
	return &CurrentUser{api: api}
}

// Execute returns the server-side identity.
func (uc *CurrentUser) Execute(ctx context.Context) (*domain.Identity, error) {
	var identity domain.Identity
	if err := uc.api.DoJSON(ctx, http.MethodGet, "/auth/me", nil, &identity); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	return &identity, nil
}
