// internal/app/system/authz/roles.go
package authz

// The four account roles. Roles are assigned at registration and never
// change through profile updates.
const (
	RoleCommunity  = "community"
	RoleNGO        = "ngo"
	RoleGovernment = "government"
	RoleResearcher = "researcher"
)

// Roles lists every legal role.
var Roles = []string{RoleCommunity, RoleNGO, RoleGovernment, RoleResearcher}

// AdminRoles are the roles with unconditional edit/validate override.
var AdminRoles = []string{RoleNGO, RoleGovernment}

// IsValidRole reports whether role is one of the four account roles.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdminRole reports whether role carries the admin override (ngo or
// government).
func IsAdminRole(role string) bool {
	return role == RoleNGO || role == RoleGovernment
}
