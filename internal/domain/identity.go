package domain

// Membership describes the identity's standing within one tenant.
type Membership struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// Identity represents the authenticated principal.
type Identity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`

	// PreferredTenantID is the tenant the server suggests selecting when
	// no tenant was previously persisted for this profile.
	PreferredTenantID string `json:"preferred_tenant_id,omitempty"`

	Memberships []Membership `json:"memberships,omitempty"`
}

// MembershipFor returns the membership entry for the given tenant, if any.
func (i *Identity) MembershipFor(tenantID string) (Membership, bool) {
	for _, m := range i.Memberships {
		if m.TenantID == tenantID {
			return m, true
		}
	}
	return Membership{}, false
}
