package domain

import "time"

// Role is the account type of a marketplace user.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// ValidRoles lists the roles the API hands out.
var ValidRoles = []Role{RoleGuest, RoleVendor, RoleAdmin}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// User is the authenticated identity returned by login and registration.
type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            Role       `json:"role"`
	Status          string     `json:"status,omitempty"` // "active", "pending", "suspended"
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsVendor reports whether the user may manage hotels and events.
func (u *User) IsVendor() bool {
	return u != nil && u.Role == RoleVendor
}
