package domain

import "fmt"

// Role is the access level carried in a user record and its sessions.
// Handlers must never compare role strings directly; ordering goes through Satisfies.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var roleLevel = map[Role]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// ParseRole validates a role string coming from storage or a request body.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleLevel[r]; !ok {
		return "", fmt.Errorf("unknown role %q: %w", s, ErrInvalidInput)
	}
	return r, nil
}

// Satisfies reports whether r meets the given minimum role.
// Admin satisfies every requirement a user does.
func (r Role) Satisfies(min Role) bool {
	return roleLevel[r] >= roleLevel[min]
}
