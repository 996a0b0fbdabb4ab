package domain

import "time"

// DefaultRole is assigned to users created through the auth callback.
const DefaultRole = "User"

// User represents an authenticated identity in the platform. The ID comes
// from the external identity provider and never changes.
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Department  string     `json:"department,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Active
}
