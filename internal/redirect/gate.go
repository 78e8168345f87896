// Package redirect decides whether a slug resolves to a redirect, enforcing
// existence, expiry, and password policy before any side effect. The redirect
// decision is returned synchronously; scan recording is scheduled and never
// awaited.
package redirect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"qrlinks/internal/auth"
	"qrlinks/internal/models"
)

// Gate error sentinels. These are routine outcomes, not exceptional
// conditions; the HTTP layer maps each to its own status.
var (
	ErrExpired          = errors.New("qr code expired")
	ErrPasswordRequired = errors.New("password required")
	ErrWrongPassword    = errors.New("wrong password")
)

// Store is the persistence surface the gate needs.
type Store interface {
	GetQRCodeBySlug(ctx context.Context, slug string) (*models.QRCode, error)
}

// Recorder schedules a scan recording. Implementations must return
// immediately; the gate never waits on recording.
type Recorder interface {
	Record(qrCodeID uuid.UUID, ip, userAgent string)
}

// Outcome is a permitted redirect decision.
//
// Target is the resolved target of the operation: for dynamic codes it is the
// canonical tracking URL pointing back at this system, so that reprinted or
// re-resolved payloads keep routing scans through the redirect endpoint; for
// static codes it is the stored URL itself. Destination is always the stored
// URL — the address the HTTP handler actually sends the visitor to, since the
// handler has already passed the gate.
type Outcome struct {
	QRCode      *models.QRCode
	Target      string
	Destination string
}

// Gate enforces redirect policy for public slug lookups.
type Gate struct {
	store    Store
	recorder Recorder
	baseURL  string
	now      func() time.Time
}

// NewGate creates a redirect gate. baseURL is this deployment's public base
// address, used to build canonical tracking URLs.
func NewGate(store Store, recorder Recorder, baseURL string) *Gate {
	return &Gate{
		store:    store,
		recorder: recorder,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

// TrackingURL returns the canonical scan entry URL for a slug.
func (g *Gate) TrackingURL(slug string) string {
	return g.baseURL + "/s/" + slug
}

// ResolveAndLog looks up a slug, enforces expiry and password policy, and on
// success schedules a scan recording before returning the redirect decision.
// The returned error is one of the db/gate sentinels for routine denials.
func (g *Gate) ResolveAndLog(ctx context.Context, slug, password, clientIP, userAgent string) (*Outcome, error) {
	code, err := g.store.GetQRCodeBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if code.Expired(g.now()) {
		return nil, fmt.Errorf("%w: %s", ErrExpired, slug)
	}

	if code.HasPassword() {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if !auth.CheckPassword(*code.PasswordHash, password) {
			return nil, ErrWrongPassword
		}
	}

	// Fire and forget: the redirect must not wait on enrichment or
	// persistence.
	g.recorder.Record(code.ID, clientIP, userAgent)

	target := code.TargetURL
	if code.Dynamic {
		target = g.TrackingURL(code.Slug)
	}

	return &Outcome{
		QRCode:      code,
		Target:      target,
		Destination: code.TargetURL,
	}, nil
}
