// Package middleware provides echo middleware for applications that
// embed the session core: route guards projecting the capability set
// onto HTTP routes. The guards only filter; they never interpret
// permissions beyond a Can query.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"erp-core/internal/domain"
	"erp-core/internal/session"
)

// PermissionGuard filters routes by the session's capability set.
type PermissionGuard struct {
	store *session.Store
}

// NewPermissionGuard creates a guard over the given session store.
func NewPermissionGuard(store *session.Store) *PermissionGuard {
	return &PermissionGuard{store: store}
}

// RequireAuth rejects requests while no session is established.
// An authenticating session is a loading state, not a failure, but a
// route guard still cannot let the request through.
func (g *PermissionGuard) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.store.Phase() != domain.PhaseAuthenticated && g.store.Phase() != domain.PhaseRefreshing {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// Require rejects requests lacking the given grant. Denial is the
// default: an empty or unauthenticated capability set fails closed.
func (g *PermissionGuard) Require(action domain.Action, subject string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.store.Ability().Cannot(action, subject) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
