package models

import (
	"time"

	"github.com/google/uuid"
)

// Scan is a single recorded scan of a QR code. Scans are append-only and are
// bulk-deleted only when their parent code is destroyed.
type Scan struct {
	ID        uuid.UUID `json:"id"`
	QRCodeID  uuid.UUID `json:"qr_code_id"`
	IP        *string   `json:"ip"`
	UserAgent *string   `json:"user_agent"`
	Country   *string   `json:"country"`
	City      *string   `json:"city"`
	Region    *string   `json:"region"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// CountryCount is a per-country scan total used for top-N breakdowns.
type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// QRCodeScanCount pairs a QR code with its scan total.
type QRCodeScanCount struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	TargetURL string    `json:"target_url"`
	ScanCount int64     `json:"scan_count"`
}

// SlugScanCount is a per-slug scan total, emitted by the metrics collector.
type SlugScanCount struct {
	Slug  string
	Count int64
}
