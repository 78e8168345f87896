// Package scans records scan events asynchronously, decoupled from the
// redirect response path. Recording is best effort: a full buffer or a failed
// insert costs analytics data, never a redirect.
package scans

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"qrlinks/internal/geoip"
	"qrlinks/internal/metrics"
	"qrlinks/internal/models"
)

const (
	defaultWorkerCount = 3
	defaultBufferSize  = 1024
	eventTimeout       = 15 * time.Second
)

// Event is a scan observation handed off by the redirect gate.
type Event struct {
	QRCodeID  uuid.UUID
	IP        string
	UserAgent string
}

// Store is the persistence surface the recorder needs.
type Store interface {
	InsertScan(ctx context.Context, scan *models.Scan) error
}

// Locator resolves an IP to a location. Failures are absorbed by the
// implementation; Locate never blocks past its own timeouts.
type Locator interface {
	Locate(ctx context.Context, ip string) geoip.Location
}

// Recorder consumes scan events through a worker pool. Record never blocks
// the caller; enqueueing to a full buffer drops the event.
type Recorder struct {
	store   Store
	locator Locator
	logger  *slog.Logger
	events  chan Event
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRecorder creates a scan recorder. workers <= 0 selects the default pool
// size.
func NewRecorder(store Store, locator Locator, logger *slog.Logger, workers int) *Recorder {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:   store,
		locator: locator,
		logger:  logger,
		events:  make(chan Event, defaultBufferSize),
		workers: workers,
	}
}

// Start launches the worker pool.
func (r *Recorder) Start() {
	r.ctx, r.cancel = context.WithCancel(context.Background())

	r.logger.Info("scan recorder started", "workers", r.workers)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

// Stop shuts the worker pool down. In-flight events may be lost; that is the
// accepted delivery contract for scan analytics.
func (r *Recorder) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.wg.Wait()
	r.logger.Info("scan recorder stopped")
}

// Record enqueues a scan event without blocking. A full buffer drops the
// event and logs it; the caller's redirect is never delayed.
func (r *Recorder) Record(event Event) {
	select {
	case r.events <- event:
	default:
		metrics.ScanDropped()
		r.logger.Warn("scan buffer full, event dropped", "qr_code_id", event.QRCodeID)
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case event, ok := <-r.events:
			if !ok {
				return
			}
			r.process(event)
		}
	}
}

// process enriches and persists one event. If the enriched insert fails, it
// retries once with a minimal record; a second failure loses the scan.
func (r *Recorder) process(event Event) {
	ctx, cancel := context.WithTimeout(r.ctx, eventTimeout)
	defer cancel()

	location := r.locator.Locate(ctx, event.IP)

	scan := &models.Scan{
		QRCodeID:  event.QRCodeID,
		IP:        nullIfEmpty(event.IP),
		UserAgent: nullIfEmpty(event.UserAgent),
		Country:   nullIfEmpty(location.Country),
		City:      nullIfEmpty(location.City),
		Region:    nullIfEmpty(location.Region),
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	}

	err := r.store.InsertScan(ctx, scan)
	if err == nil {
		metrics.ScanRecorded()
		return
	}
	r.logger.Warn("enriched scan insert failed, retrying minimal",
		"qr_code_id", event.QRCodeID, "error", err)

	minimal := &models.Scan{
		QRCodeID:  event.QRCodeID,
		IP:        nullIfEmpty(event.IP),
		UserAgent: nullIfEmpty(event.UserAgent),
	}
	if err := r.store.InsertScan(ctx, minimal); err != nil {
		metrics.ScanDropped()
		r.logger.Error("scan permanently lost", "qr_code_id", event.QRCodeID, "error", err)
		return
	}
	metrics.ScanRecorded()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
