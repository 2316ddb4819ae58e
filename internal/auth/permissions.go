package auth

import "errors"

// RBAC роли и разрешения
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

const (
	PermApplicantsRead     = "applicants:read"
	PermApplicantsModerate = "applicants:moderate" // approve, reject, reconsider, featured
	PermApplicantsEdit     = "applicants:edit"
	PermUsersManage        = "users:manage"
)

// Permissions список разрешений
var Permissions = map[string][]string{
	RoleAdmin: {
		PermApplicantsRead,
		PermApplicantsModerate,
		PermApplicantsEdit,
		PermUsersManage,
	},
	RoleModerator: {
		PermApplicantsRead,
		PermApplicantsModerate,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CanPerformAction проверяет может ли пользователь выполнить действие
func CanPerformAction(claims *Claims, permission string) bool {
	return claims != nil && HasPermission(claims.Role, permission)
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleModerator:
		return nil
	default:
		return errors.New("invalid role")
	}
}
