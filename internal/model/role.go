package model

// Role is an authorization role granted to a user.
type Role string

const (
	RoleUser       Role = "USER"
	RoleClient     Role = "CLIENT"
	RoleStudent    Role = "STUDENT"
	RoleEmployee   Role = "EMPLOYEE"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// RolesToStrings converts roles to their string form for token claims.
func RolesToStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

// RolesFromStrings converts token claim strings back to roles.
func RolesFromStrings(values []string) []Role {
	out := make([]Role, 0, len(values))
	for _, v := range values {
		out = append(out, Role(v))
	}
	return out
}
