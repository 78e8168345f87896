package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// User represents an account identity. The invitation graph is encoded in
// InvitedBy: the single admin with a nil InvitedBy is the root of its tree.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Role          string     `json:"role"` // admin, editor, viewer
	InvitedBy     *uuid.UUID `json:"invited_by"`
	EmailVerified bool       `json:"email_verified"`
	VerifyToken   *string    `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsRoot returns true if the user is the root of an invitation tree.
func (u *User) IsRoot() bool {
	return u.Role == RoleAdmin && u.InvitedBy == nil
}

// CanEdit returns true if the user may create or modify QR codes.
func (u *User) CanEdit() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// ValidRole reports whether role is one of the known role names.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}
