// Package stats builds the team-scoped dashboard report: totals with
// period-over-period deltas, device mix, top countries, top codes, and a
// recent activity feed.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"qrlinks/internal/geoip"
	"qrlinks/internal/models"
)

const (
	topCountriesLimit = 5
	topQRCodesLimit   = 5
	recentScansLimit  = 5
)

// Store is the read surface the aggregator queries.
type Store interface {
	CountQRCodesByOwners(ctx context.Context, ownerIDs []uuid.UUID) (int64, error)
	CountQRCodesByOwnersInRange(ctx context.Context, ownerIDs []uuid.UUID, from, to time.Time) (int64, error)
	CountScansByOwners(ctx context.Context, ownerIDs []uuid.UUID) (int64, error)
	CountScansByOwnersInRange(ctx context.Context, ownerIDs []uuid.UUID, from, to time.Time) (int64, error)
	CountDistinctScanIPs(ctx context.Context, ownerIDs []uuid.UUID, from, to time.Time) (int64, error)
	ListScanUserAgents(ctx context.Context, ownerIDs []uuid.UUID) ([]string, error)
	TopScanCountries(ctx context.Context, ownerIDs []uuid.UUID, limit int) ([]models.CountryCount, error)
	TopQRCodesByScans(ctx context.Context, ownerIDs []uuid.UUID, limit int) ([]models.QRCodeScanCount, error)
	RecentScans(ctx context.Context, ownerIDs []uuid.UUID, limit int) ([]models.Scan, error)
}

// Aggregator assembles dashboard reports over a team's codes and scans.
type Aggregator struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewAggregator(store Store, log *slog.Logger) *Aggregator {
	return &Aggregator{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Report builds a full dashboard report for the given owner set. Counting
// queries are authoritative; the secondary panels (devices, countries, top
// codes, recent activity) degrade to empty on error rather than failing the
// whole report.
func (a *Aggregator) Report(ctx context.Context, ownerIDs []uuid.UUID) (*models.StatsReport, error) {
	now := a.now()
	periodStart := monthStart(now)
	priorStart := periodStart.AddDate(0, -1, 0)

	report := &models.StatsReport{}

	var err error
	if report.TotalQRCodes, err = a.store.CountQRCodesByOwners(ctx, ownerIDs); err != nil {
		return nil, fmt.Errorf("count qr codes: %w", err)
	}
	if report.TotalScans, err = a.store.CountScansByOwners(ctx, ownerIDs); err != nil {
		return nil, fmt.Errorf("count scans: %w", err)
	}
	if report.UniqueVisitors, err = a.store.CountDistinctScanIPs(ctx, ownerIDs, periodStart, now); err != nil {
		return nil, fmt.Errorf("count unique visitors: %w", err)
	}

	codesCur, err := a.store.CountQRCodesByOwnersInRange(ctx, ownerIDs, periodStart, now)
	if err != nil {
		return nil, fmt.Errorf("count qr codes in period: %w", err)
	}
	codesPrior, err := a.store.CountQRCodesByOwnersInRange(ctx, ownerIDs, priorStart, periodStart)
	if err != nil {
		return nil, fmt.Errorf("count qr codes in prior period: %w", err)
	}
	report.QRCodesDelta = DeltaLabel(codesCur, codesPrior)

	scansCur, err := a.store.CountScansByOwnersInRange(ctx, ownerIDs, periodStart, now)
	if err != nil {
		return nil, fmt.Errorf("count scans in period: %w", err)
	}
	scansPrior, err := a.store.CountScansByOwnersInRange(ctx, ownerIDs, priorStart, periodStart)
	if err != nil {
		return nil, fmt.Errorf("count scans in prior period: %w", err)
	}
	report.ScansDelta = DeltaLabel(scansCur, scansPrior)

	visitorsPrior, err := a.store.CountDistinctScanIPs(ctx, ownerIDs, priorStart, periodStart)
	if err != nil {
		return nil, fmt.Errorf("count prior unique visitors: %w", err)
	}
	report.UniqueVisitorsDelta = DeltaLabel(report.UniqueVisitors, visitorsPrior)

	if agents, err := a.store.ListScanUserAgents(ctx, ownerIDs); err != nil {
		a.log.Warn("device breakdown unavailable", "error", err)
	} else {
		report.Devices = DeviceMix(agents)
	}

	if countries, err := a.store.TopScanCountries(ctx, ownerIDs, topCountriesLimit); err != nil {
		a.log.Warn("top countries unavailable", "error", err)
	} else {
		for _, cc := range countries {
			report.TopCountries = append(report.TopCountries, models.CountryStat{
				Country: cc.Country,
				Flag:    FlagFor(cc.Country),
				Count:   cc.Count,
			})
		}
	}

	if tops, err := a.store.TopQRCodesByScans(ctx, ownerIDs, topQRCodesLimit); err != nil {
		a.log.Warn("top qr codes unavailable", "error", err)
	} else {
		report.TopQRCodes = tops
	}

	if scans, err := a.store.RecentScans(ctx, ownerIDs, recentScansLimit); err != nil {
		a.log.Warn("recent scans unavailable", "error", err)
	} else {
		for _, s := range scans {
			report.RecentScans = append(report.RecentScans, models.RecentScan{
				QRCodeID: s.QRCodeID.String(),
				Country:  orUnknown(s.Country),
				City:     orUnknown(s.City),
				Device:   ClassifyDevice(deref(s.UserAgent)),
				When:     RelativeTime(s.CreatedAt, now),
			})
		}
	}

	return report, nil
}

// monthStart returns midnight on the first day of t's calendar month.
// Reporting windows are calendar months, not rolling 30-day spans.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DeltaLabel renders a period-over-period change. Both periods empty means
// there is nothing to compare; a prior period of zero cannot express a
// percentage, so the label falls back to the absolute count.
func DeltaLabel(current, prior int64) string {
	switch {
	case current == 0 && prior == 0:
		return models.NoDataLabel
	case prior == 0:
		return fmt.Sprintf("+%d this period", current)
	default:
		pct := float64(current-prior) / float64(prior) * 100
		return fmt.Sprintf("%+.1f%%", pct)
	}
}

// Device class labels.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
)

// ClassifyDevice buckets a user agent string. Tablet tokens are checked
// first: iPad agents also contain "Mobile", and Android tablets contain
// "Android". Anything unrecognized, including an empty agent, counts as
// desktop.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, token := range []string{"ipad", "tablet", "kindle", "silk"} {
		if strings.Contains(ua, token) {
			return DeviceTablet
		}
	}
	for _, token := range []string{"mobile", "iphone", "android", "ipod", "windows phone"} {
		if strings.Contains(ua, token) {
			return DeviceMobile
		}
	}
	return DeviceDesktop
}

// DeviceMix computes the device-class share of the given scans, in percent.
func DeviceMix(userAgents []string) models.DeviceBreakdown {
	total := len(userAgents)
	if total == 0 {
		return models.DeviceBreakdown{}
	}

	var mobile, tablet, desktop int
	for _, ua := range userAgents {
		switch ClassifyDevice(ua) {
		case DeviceMobile:
			mobile++
		case DeviceTablet:
			tablet++
		default:
			desktop++
		}
	}

	return models.DeviceBreakdown{
		Mobile:  percent(mobile, total),
		Desktop: percent(desktop, total),
		Tablet:  percent(tablet, total),
	}
}

func percent(part, total int) float64 {
	return float64(part) / float64(total) * 100
}

// RelativeTime renders a timestamp relative to now: "just now", then
// minutes, hours, days, and finally an absolute date for anything older
// than a month.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return geoip.UnknownValue
	}
	return *s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
