package domain

import "strings"

// Role enumerates the access tiers known to the complaint core.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the fixed wire values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Privileged reports whether the role triages complaints it does not own.
func (r Role) Privileged() bool {
	switch r {
	case RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a wire value into a Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.Valid()
}

// Actor is an authenticated identity whose role was resolved from the profile directory.
type Actor struct {
	ID          string
	Role        Role
	DisplayName string
	Email       string
	Phone       string
}

// ActorFromProfile builds the request actor. Unknown roles collapse to RoleUser.
func ActorFromProfile(p *Profile) Actor {
	role := p.Role
	if !role.Valid() {
		role = RoleUser
	}
	return Actor{
		ID:          p.ID,
		Role:        role,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Phone:       p.Phone,
	}
}

// Identity is what the identity provider asserts about a caller. ClaimedRole
// is informational only; roles come from the profile directory.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	ClaimedRole string
}
