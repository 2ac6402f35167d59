package access

// Role is a console role. Roles are discrete tags with no ordering between
// them: every protected resource lists the roles it accepts explicitly.
type Role string

const (
	// RoleAdmin manages users and invites
	RoleAdmin Role = "ADMIN"
	// RoleManager runs projects
	RoleManager Role = "MANAGER"
	// RoleStaff works within assigned projects
	RoleStaff Role = "STAFF"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	default:
		return false
	}
}

// In reports membership in an allow-list. An empty list never matches; use
// Decide for the "no roles required" navigation case.
func (r Role) In(allowed []Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// AllRoles returns all predefined roles
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleManager,
		RoleStaff,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}

// UserStatus is the account status reported by the authorization service.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// IsValid checks if the status is one of the predefined statuses
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive:
		return true
	default:
		return false
	}
}
