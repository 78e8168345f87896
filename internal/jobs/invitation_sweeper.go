// Package jobs holds long-running background loops started from main.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"qrlinks/internal/db"
)

// InvitationSweeper periodically deletes expired, unused invitations so the
// pending-invitation uniqueness constraint does not block re-inviting someone
// whose invitation lapsed.
type InvitationSweeper struct {
	db       *db.DB
	interval time.Duration
	log      *slog.Logger
}

func NewInvitationSweeper(database *db.DB, interval time.Duration, log *slog.Logger) *InvitationSweeper {
	return &InvitationSweeper{
		db:       database,
		interval: interval,
		log:      log,
	}
}

// Start runs the sweep loop until ctx is cancelled. A sweep runs immediately
// on start, then on every tick.
func (s *InvitationSweeper) Start(ctx context.Context) {
	s.log.Info("invitation sweeper started", "interval", s.interval)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("invitation sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *InvitationSweeper) sweep(ctx context.Context) {
	deleted, err := s.db.DeleteExpiredInvitations(ctx)
	if err != nil {
		s.log.Error("invitation sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		s.log.Info("swept expired invitations", "deleted", deleted)
	}
}
