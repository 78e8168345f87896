package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Error correction levels accepted for QR rendering.
const (
	ECLevelLow     = "L"
	ECLevelMedium  = "M"
	ECLevelQuart   = "Q"
	ECLevelHighest = "H"
)

// QRCode represents a short slug mapped to a target URL, rendered as a QR
// symbol. Dynamic codes route scans through the tracking redirect so the
// target can change after the code has been printed; static codes embed the
// target directly and the stored URL is immutable.
type QRCode struct {
	ID           uuid.UUID       `json:"id"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Name         string          `json:"name"`
	TargetURL    string          `json:"target_url"`
	Dynamic      bool            `json:"dynamic"`
	PasswordHash *string         `json:"-"`
	ExpiresAt    *time.Time      `json:"expires_at"`
	Slug         string          `json:"slug"`
	ECLevel      string          `json:"ec_level"` // L, M, Q, H
	Format       string          `json:"format"`   // png
	Design       json.RawMessage `json:"design"`   // opaque styling blob
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// HasPassword returns true if scans of this code are password gated.
func (q *QRCode) HasPassword() bool {
	return q.PasswordHash != nil && *q.PasswordHash != ""
}

// Expired returns true if the code has an expiry strictly in the past.
func (q *QRCode) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && q.ExpiresAt.Before(now)
}

// ValidECLevel reports whether level is a known error correction level.
func ValidECLevel(level string) bool {
	switch level {
	case ECLevelLow, ECLevelMedium, ECLevelQuart, ECLevelHighest:
		return true
	}
	return false
}
