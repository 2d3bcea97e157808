package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsAdmin reports whether the role grants access to administrative endpoints.
// Unknown roles are never privileged.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is a full usuarios row. Password holds whatever the configured
// hasher produced (the raw value when hashing is disabled).
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfile is a user row without the credential column.
type UserProfile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
