package model

import "fmt"

// Role partitions the user base into the two messaging sides.
type Role string

const (
	RolePlayer Role = "player"
	RoleFan    Role = "fan"
)

func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleFan
}

// ParseRole converts a raw claim or request value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
