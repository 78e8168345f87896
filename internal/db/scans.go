package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"qrlinks/internal/models"
)

// InsertScan persists a scan event. The caller supplies whichever enrichment
// fields it has; everything except the code reference may be nil.
func (d *DB) InsertScan(ctx context.Context, scan *models.Scan) error {
	query := `
		INSERT INTO scans (qr_code_id, ip, user_agent, country, city, region, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	return d.Pool.QueryRow(ctx, query,
		scan.QRCodeID,
		scan.IP,
		scan.UserAgent,
		scan.Country,
		scan.City,
		scan.Region,
		scan.Latitude,
		scan.Longitude,
	).Scan(&scan.ID, &scan.CreatedAt)
}

// CountScansByOwners counts scans of QR codes owned by any of the given users.
func (d *DB) CountScansByOwners(ctx context.Context, ownerIDs []uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM scans s
		JOIN qr_codes q ON q.id = s.qr_code_id
		WHERE q.owner_id = ANY($1)
	`

	var count int64
	err := d.Pool.QueryRow(ctx, query, ownerIDs).Scan(&count)
	return count, err
}

// CountScansByOwnersInRange counts scans recorded within [from, to).
func (d *DB) CountScansByOwnersInRange(ctx context.Context, ownerIDs []uuid.UUID, from, to time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM scans s
		JOIN qr_codes q ON q.id = s.qr_code_id
		WHERE q.owner_id = ANY($1) AND s.created_at >= $2 AND s.created_at < $3
	`

	var count int64
	err := d.Pool.QueryRow(ctx, query, ownerIDs, from, to).Scan(&count)
	return count, err
}

// CountDistinctScanIPs counts distinct client IPs within [from, to), a proxy
// for unique visitors.
func (d *DB) CountDistinctScanIPs(ctx context.Context, ownerIDs []uuid.UUID, from, to time.Time) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT s.ip)
		FROM scans s
		JOIN qr_codes q ON q.id = s.qr_code_id
		WHERE q.owner_id = ANY($1) AND s.ip IS NOT NULL AND s.created_at >= $2 AND s.created_at < $3
	`

	var count int64
	err := d.Pool.QueryRow(ctx, query, ownerIDs, from, to).Scan(&count)
	return count, err
}

// ListScanUserAgents returns the stored user agent strings for all scans of
// the given owners' codes. Device classification happens in Go.
func (d *DB) ListScanUserAgents(ctx context.Context, ownerIDs []uuid.UUID) ([]string, error) {
	query := `
		SELECT COALESCE(s.user_agent, '')
		FROM scans s
		JOIN qr_codes q ON q.id = s.qr_code_id
		WHERE q.owner_id = ANY($1)
	`

	rows, err := d.Pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []string
	for rows.Next() {
		var ua string
		if err := rows.Scan(&ua); err != nil {
			return nil, err
		}
		agents = append(agents, ua)
	}

	return agents, rows.Err()
}

// TopScanCountries returns per-country scan totals, descending, limited.
func (d *DB) TopScanCountries(ctx context.Context, ownerIDs []uuid.UUID, limit int) ([]models.CountryCount, error) {
	query := `
		SELECT s.country, COUNT(*) AS scan_count
		FROM scans s
		JOIN qr_codes q ON q.id = s.qr_code_id
		WHERE q.owner_id = ANY($1) AND s.country IS NOT NULL
		GROUP BY s.country
		ORDER BY scan_count DESC
		LIMIT $2
	`

	rows, err := d.Pool.Query(ctx, query, ownerIDs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.CountryCount
	for rows.Next() {
		var cc models.CountryCount
		if err := rows.Scan(&cc.Country, &cc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, cc)
	}

	return counts, rows.Err()
}

// TopQRCodesByScans returns the owners' codes ordered by scan count, descending.
func (d *DB) TopQRCodesByScans(ctx context.Context, ownerIDs []uuid.UUID, limit int) ([]models.QRCodeScanCount, error) {
	query := `
		SELECT q.id, q.name, q.slug, q.target_url, COUNT(s.id) AS scan_count
		FROM qr_codes q
		LEFT JOIN scans s ON s.qr_code_id = q.id
		WHERE q.owner_id = ANY($1)
		GROUP BY q.id, q.name, q.slug, q.target_url
		ORDER BY scan_count DESC
		LIMIT $2
	`

	rows, err := d.Pool.Query(ctx, query, ownerIDs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tops []models.QRCodeScanCount
	for rows.Next() {
		var top models.QRCodeScanCount
		if err := rows.Scan(&top.ID, &top.Name, &top.Slug, &top.TargetURL, &top.ScanCount); err != nil {
			return nil, err
		}
		tops = append(tops, top)
	}

	return tops, rows.Err()
}

// RecentScans returns the most recent scans for the owners' codes.
func (d *DB) RecentScans(ctx context.Context, ownerIDs []uuid.UUID, limit int) ([]models.Scan, error) {
	query := `
		SELECT s.id, s.qr_code_id, s.ip, s.user_agent, s.country, s.city, s.region, s.latitude, s.longitude, s.created_at
		FROM scans s
		JOIN qr_codes q ON q.id = s.qr_code_id
		WHERE q.owner_id = ANY($1)
		ORDER BY s.created_at DESC
		LIMIT $2
	`

	rows, err := d.Pool.Query(ctx, query, ownerIDs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []models.Scan
	for rows.Next() {
		var scan models.Scan
		if err := rows.Scan(
			&scan.ID,
			&scan.QRCodeID,
			&scan.IP,
			&scan.UserAgent,
			&scan.Country,
			&scan.City,
			&scan.Region,
			&scan.Latitude,
			&scan.Longitude,
			&scan.CreatedAt,
		); err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}

	return scans, rows.Err()
}

// GetScanTotals returns scan totals per slug, for the metrics collector.
func (d *DB) GetScanTotals(ctx context.Context) ([]models.SlugScanCount, error) {
	query := `
		SELECT q.slug, COUNT(s.id)
		FROM qr_codes q
		LEFT JOIN scans s ON s.qr_code_id = q.id
		GROUP BY q.slug
	`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []models.SlugScanCount
	for rows.Next() {
		var t models.SlugScanCount
		if err := rows.Scan(&t.Slug, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}
