package session

import "strings"

// The server treats a missing X-Company-ID header as a hard permission
// failure, so tenant resolution errs toward some plausible tenant over
// none. The only case that resolves to nothing is the true first-load
// race where no tenant is known at all.

// ResolveTenantID computes the tenant id to attach to an outgoing
// request. navPath is the current navigation path, used only for the
// superuser deep-link fallback; pass "" when there is none.
//
// Resolution order:
//  1. the selected tenant, if any;
//  2. the sole tenant, when the identity belongs to exactly one;
//  3. for superusers: a tenant id embedded in the navigation path
//     (deep links can load before the tenant list arrives), else the
//     first known tenant;
//  4. nothing.
func (s *Store) ResolveTenantID(navPath string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentTenantID != "" {
		return s.currentTenantID, true
	}
	if len(s.tenants) == 1 {
		return s.tenants[0].ID, true
	}
	if s.identity != nil && s.identity.IsSuperuser {
		if id := tenantIDFromPath(navPath); id != "" {
			return id, true
		}
		if len(s.tenants) > 0 {
			return s.tenants[0].ID, true
		}
	}
	return "", false
}

// tenantIDFromPath recovers a tenant id from a navigation path of the
// form .../companies/<id>[/...]. Returns "" when the path carries none.
func tenantIDFromPath(navPath string) string {
	if navPath == "" {
		return ""
	}
	segments := strings.Split(strings.Trim(navPath, "/"), "/")
	for i, segment := range segments {
		if segment == "companies" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1]
		}
	}
	return ""
}
