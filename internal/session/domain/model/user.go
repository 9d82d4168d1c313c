package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownRole = errors.New("unknown role")
	ErrInvalidUser = errors.New("invalid user")
)

// Role is the closed set of roles the LMS knows about.
type Role int

const (
	RoleStudent Role = iota + 1
	RoleAdmin
)

// ParseRole maps the exact wire form ("admin", "student") onto a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "student":
		return RoleStudent, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// String returns the wire form of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStudent:
		return "student"
	default:
		return ""
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler
func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler. Unknown roles are rejected.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is the snapshot of the signed-in account returned by the backend at login.
type User struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleStudent:
		return false
	default:
		return false
	}
}

// Validate checks that the user carries a known role. Other fields are
// stored as the backend sent them.
func (u User) Validate() error {
	if !u.Role.Valid() {
		return fmt.Errorf("%w: role is required", ErrInvalidUser)
	}
	return nil
}
