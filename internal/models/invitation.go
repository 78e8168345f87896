package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation is a single-use, expiring invite to join the issuer's team.
// Consuming it creates a User whose InvitedBy points at the issuer.
type Invitation struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	InvitedBy uuid.UUID `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired returns true if the invitation can no longer be accepted.
func (i *Invitation) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}
