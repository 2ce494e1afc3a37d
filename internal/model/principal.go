package model

import "time"

// Role is the closed set of principal roles. Comparisons must go through
// this type, never raw strings.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher:
		return true
	}
	return false
}

// Principal represents an administrator or teacher identity.
// Principals are never hard-deleted; deactivation clears the Active flag.
type Principal struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the principal carries the admin role.
// Admins implicitly satisfy every permission check.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// CreatePrincipalRequest is the payload for provisioning a new principal.
type CreatePrincipalRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     string `json:"role" binding:"required,oneof=admin teacher"`
}

// ResetPasswordRequest is the payload for an administrative password reset.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6,max=128"`
}
