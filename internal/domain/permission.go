package domain

// Action is a permission verb as issued by the server. The set is open:
// the server may add verbs the client has never seen, and those must
// still round-trip through the permission map untouched.
type Action string

// Well-known actions.
const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionExport  Action = "export"
	ActionImport  Action = "import"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionManage  Action = "manage"
)

// PermissionMap is the server-issued mapping from module name to allowed
// action verbs. It is always replaced whole, never merged, so stale
// grants cannot leak across tenant switches.
type PermissionMap map[string][]Action

// Clone returns a deep copy of the map. Callers hand copies outward so
// nobody can mutate the session's map in place.
func (p PermissionMap) Clone() PermissionMap {
	if p == nil {
		return nil
	}
	out := make(PermissionMap, len(p))
	for module, actions := range p {
		out[module] = append([]Action(nil), actions...)
	}
	return out
}
