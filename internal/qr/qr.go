// Package qr renders QR code images for stored codes. Dynamic codes encode
// the tracking URL so the printed payload survives target edits; static codes
// encode the target directly.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"qrlinks/internal/models"
)

const (
	// DefaultSize is the rendered image edge length in pixels.
	DefaultSize = 512

	MinSize = 64
	MaxSize = 2048
)

// Renderer produces PNG images for QR codes.
type Renderer struct {
	baseURL string
}

func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: baseURL}
}

// Payload returns the string a code's image encodes.
func (r *Renderer) Payload(code *models.QRCode) string {
	if code.Dynamic {
		return r.baseURL + "/s/" + code.Slug
	}
	return code.TargetURL
}

// RenderPNG encodes the code's payload as a PNG of the given edge length.
// Sizes outside [MinSize, MaxSize] are clamped.
func (r *Renderer) RenderPNG(code *models.QRCode, size int) ([]byte, error) {
	if size < MinSize {
		size = MinSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	png, err := qrcode.Encode(r.Payload(code), recoveryLevel(code.ECLevel), size)
	if err != nil {
		return nil, fmt.Errorf("encoding qr image for %s: %w", code.Slug, err)
	}
	return png, nil
}

func recoveryLevel(level string) qrcode.RecoveryLevel {
	switch level {
	case models.ECLevelLow:
		return qrcode.Low
	case models.ECLevelQuart:
		return qrcode.High
	case models.ECLevelHighest:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}
