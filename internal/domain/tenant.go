package domain

// Tenant represents a company the identity can operate under.
// Every API request is scoped to exactly one tenant at a time.
type Tenant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// FindTenant returns the tenant with the given id from the slice, if present.
func FindTenant(tenants []Tenant, id string) (Tenant, bool) {
	for _, t := range tenants {
		if t.ID == id {
			return t, true
		}
	}
	return Tenant{}, false
}
