package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"qrlinks/internal/db"
)

var (
	redirectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrlinks_redirects_total",
			Help: "Total redirect resolutions by outcome",
		},
		[]string{"outcome"},
	)

	scansRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qrlinks_scans_recorded_total",
		Help: "Total scan events persisted",
	})

	scansDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qrlinks_scans_dropped_total",
		Help: "Total scan events lost to full buffers or failed inserts",
	})

	scanTotalsDesc = prometheus.NewDesc(
		"qrlinks_qr_scans_total",
		"Total recorded scans per QR code slug",
		[]string{"slug"},
		nil,
	)
)

// ScanCollector is a custom Prometheus collector that reads per-code scan
// totals from the database on each scrape.
type ScanCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *ScanCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- scanTotalsDesc
}

// Collect queries the database for scan totals and emits them as counters.
func (c *ScanCollector) Collect(ch chan<- prometheus.Metric) {
	totals, err := c.db.GetScanTotals(context.Background())
	if err != nil {
		slog.Error("failed to collect scan total metrics", "error", err)
		return
	}
	for _, t := range totals {
		ch <- prometheus.MustNewConstMetric(
			scanTotalsDesc,
			prometheus.CounterValue,
			float64(t.Count),
			t.Slug,
		)
	}
}

var initOnce sync.Once

// Init registers all collectors. Must be called once at startup; the counter
// helpers below work (unregistered) even without it, which keeps unit tests
// independent of metric wiring.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(redirectsTotal, scansRecordedTotal, scansDroppedTotal)
		prometheus.MustRegister(&ScanCollector{db: database})
	})
}

// RedirectOutcome counts one redirect resolution with the given outcome
// ("ok", "not_found", "expired", "password_prompt", "wrong_password").
func RedirectOutcome(outcome string) {
	redirectsTotal.WithLabelValues(outcome).Inc()
}

// ScanRecorded counts one persisted scan event.
func ScanRecorded() {
	scansRecordedTotal.Inc()
}

// ScanDropped counts one lost scan event.
func ScanDropped() {
	scansDroppedTotal.Inc()
}
