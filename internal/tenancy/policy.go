package tenancy

import "practice-service/internal/model"

// IsSystemAdmin is the one identity allowed to see every workspace.
func IsSystemAdmin(u *model.User) bool {
	return u != nil && (u.Role == model.RoleSystemAdmin || u.IsStaff)
}

// CanCreateWorkspace reports whether u may open a new workspace.
func CanCreateWorkspace(u *model.User) bool {
	return u != nil && (u.Role == model.RoleProfessional || IsSystemAdmin(u))
}

// CanManageWorkspace reports whether u may edit the settings of ws.
func CanManageWorkspace(u *model.User, ws *model.Workspace) bool {
	return IsSystemAdmin(u) || (u != nil && ws != nil && ws.OwnerID == u.ID)
}
