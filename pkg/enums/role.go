package enums

import "fmt"

// Role represents an administrative permissions role.
type Role string

const (
	RoleSuperAdmin        Role = "Super Admin"
	RoleAdmin             Role = "Admin"
	RoleProductSpecialist Role = "Product Specialist"
	RoleGraphicDesigner   Role = "Graphic Designer"
)

var validRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleProductSpecialist,
	RoleGraphicDesigner,
}

// rolePrivilege orders roles from least to most privileged.
var rolePrivilege = map[Role]int{
	RoleGraphicDesigner:   1,
	RoleProductSpecialist: 2,
	RoleAdmin:             3,
	RoleSuperAdmin:        4,
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

// AtLeast reports whether the role carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return rolePrivilege[r] >= rolePrivilege[other]
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
