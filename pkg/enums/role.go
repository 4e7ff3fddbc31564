package enums

import "fmt"

// Role identifies the tier a user occupies in the distribution chain.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendor   Role = "vendor"
	RoleStockist Role = "stockist"
	RoleReseller Role = "reseller"
)

var validRoles = []Role{
	RoleAdmin,
	RoleVendor,
	RoleStockist,
	RoleReseller,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
