// Package ability builds the queryable capability set derived from the
// server-issued permission map. It replaces a rules engine with a flat
// action×subject grant set: permission matching here is pure equality,
// so a map lookup is the whole algorithm.
package ability

import "erp-core/internal/domain"

// Canonical subject names used by screens and route guards.
const (
	SubjectAll        = "all"
	SubjectProfile    = "Profile"
	SubjectInventory  = "Inventory"
	SubjectProduction = "Production"
	SubjectPurchasing = "Purchasing"
	SubjectSales      = "Sales"
	SubjectDispatch   = "Dispatch"
	SubjectVisitors   = "Visitors"
	SubjectFinance    = "Finance"
	SubjectHR         = "HumanResources"
	SubjectQuality    = "Quality"
	SubjectMaintain   = "Maintenance"
	SubjectReports    = "Reports"
	SubjectUsers      = "Users"
	SubjectCompanies  = "Companies"
	SubjectSettings   = "Settings"
)

// subjectByModule maps server module names to canonical subjects.
// Unknown module names are dropped, not errored: the server's module
// vocabulary may evolve faster than this client's.
var subjectByModule = map[string]string{
	"inventory":   SubjectInventory,
	"production":  SubjectProduction,
	"purchasing":  SubjectPurchasing,
	"sales":       SubjectSales,
	"dispatch":    SubjectDispatch,
	"visitors":    SubjectVisitors,
	"finance":     SubjectFinance,
	"hr":          SubjectHR,
	"quality":     SubjectQuality,
	"maintenance": SubjectMaintain,
	"reports":     SubjectReports,
	"users":       SubjectUsers,
	"companies":   SubjectCompanies,
	"settings":    SubjectSettings,
	"profile":     SubjectProfile,
}

type grant struct {
	action  domain.Action
	subject string
}

// Ability answers Can(action, subject) queries. It is immutable after
// Build and safe for concurrent readers. Rebuild it whenever the
// identity or the permission map changes; permission maps are small
// enough that caching beyond that is not worth it.
type Ability struct {
	superuser bool
	grants    map[grant]struct{}
}

// Build derives an Ability from the identity and its permission map.
// Superusers get an unconditional wildcard. Everyone else gets exactly
// the grants listed by the server, plus the self-service floor: update
// on the own profile subject.
func Build(identity *domain.Identity, permissions domain.PermissionMap) *Ability {
	if identity != nil && identity.IsSuperuser {
		return &Ability{superuser: true}
	}

	a := &Ability{grants: make(map[grant]struct{})}
	for module, actions := range permissions {
		subject, ok := subjectByModule[module]
		if !ok {
			continue
		}
		for _, action := range actions {
			a.grants[grant{action: action, subject: subject}] = struct{}{}
		}
	}

	if identity != nil {
		a.grants[grant{action: domain.ActionUpdate, subject: SubjectProfile}] = struct{}{}
	}
	return a
}

// Can reports whether the action is allowed on the subject. It is a
// total function: anything not granted is a denial, never an error,
// because UI code calls it unconditionally during render.
func (a *Ability) Can(action domain.Action, subject string) bool {
	if a == nil {
		return false
	}
	if a.superuser {
		return true
	}
	_, ok := a.grants[grant{action: action, subject: subject}]
	return ok
}

// Cannot is the negation of Can, for guard call sites that read better
// in the negative.
func (a *Ability) Cannot(action domain.Action, subject string) bool {
	return !a.Can(action, subject)
}
