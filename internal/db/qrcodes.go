package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"qrlinks/internal/models"
)

// qrCodeColumns is the standard column list for qr code queries.
const qrCodeColumns = `id, owner_id, name, target_url, dynamic, password_hash, expires_at,
	slug, ec_level, format, design, created_at, updated_at`

// scanQRCode scans a row into a QRCode struct.
func scanQRCode(row pgx.Row) (*models.QRCode, error) {
	var code models.QRCode
	err := row.Scan(
		&code.ID,
		&code.OwnerID,
		&code.Name,
		&code.TargetURL,
		&code.Dynamic,
		&code.PasswordHash,
		&code.ExpiresAt,
		&code.Slug,
		&code.ECLevel,
		&code.Format,
		&code.Design,
		&code.CreatedAt,
		&code.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQRCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// scanQRCodes scans multiple rows into a slice of QRCodes.
func scanQRCodes(rows pgx.Rows) ([]models.QRCode, error) {
	defer rows.Close()

	var codes []models.QRCode
	for rows.Next() {
		var code models.QRCode
		if err := rows.Scan(
			&code.ID,
			&code.OwnerID,
			&code.Name,
			&code.TargetURL,
			&code.Dynamic,
			&code.PasswordHash,
			&code.ExpiresAt,
			&code.Slug,
			&code.ECLevel,
			&code.Format,
			&code.Design,
			&code.CreatedAt,
			&code.UpdatedAt,
		); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}

// CreateQRCode creates a new QR code record.
func (d *DB) CreateQRCode(ctx context.Context, code *models.QRCode) error {
	query := `
		INSERT INTO qr_codes (owner_id, name, target_url, dynamic, password_hash, expires_at, slug, ec_level, format, design)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, '{}'::jsonb))
		RETURNING id, design, created_at, updated_at
	`

	ecLevel := code.ECLevel
	if ecLevel == "" {
		ecLevel = models.ECLevelMedium
	}
	format := code.Format
	if format == "" {
		format = "png"
	}

	err := d.Pool.QueryRow(ctx, query,
		code.OwnerID,
		code.Name,
		code.TargetURL,
		code.Dynamic,
		code.PasswordHash,
		code.ExpiresAt,
		code.Slug,
		ecLevel,
		format,
		code.Design,
	).Scan(&code.ID, &code.Design, &code.CreatedAt, &code.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return err
	}

	code.ECLevel = ecLevel
	code.Format = format
	return nil
}

// GetQRCodeByID retrieves a QR code by its ID.
func (d *DB) GetQRCodeByID(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	query := `SELECT ` + qrCodeColumns + ` FROM qr_codes WHERE id = $1`
	return scanQRCode(d.Pool.QueryRow(ctx, query, id))
}

// GetQRCodeBySlug retrieves a QR code by its public slug.
func (d *DB) GetQRCodeBySlug(ctx context.Context, slug string) (*models.QRCode, error) {
	query := `SELECT ` + qrCodeColumns + ` FROM qr_codes WHERE slug = $1`
	return scanQRCode(d.Pool.QueryRow(ctx, query, slug))
}

// ListQRCodesByOwners retrieves all QR codes owned by any of the given users.
func (d *DB) ListQRCodesByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]models.QRCode, error) {
	query := `
		SELECT ` + qrCodeColumns + `
		FROM qr_codes
		WHERE owner_id = ANY($1)
		ORDER BY created_at DESC
	`

	rows, err := d.Pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	return scanQRCodes(rows)
}

// UpdateQRCode updates a code's mutable fields. The target URL only changes
// when the code is dynamic; the slug never changes.
func (d *DB) UpdateQRCode(ctx context.Context, code *models.QRCode) error {
	query := `
		UPDATE qr_codes
		SET name = $1,
			target_url = CASE WHEN dynamic THEN $2 ELSE target_url END,
			password_hash = $3,
			expires_at = $4,
			ec_level = $5,
			design = COALESCE($6, design),
			updated_at = NOW()
		WHERE id = $7
		RETURNING target_url, updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		code.Name,
		code.TargetURL,
		code.PasswordHash,
		code.ExpiresAt,
		code.ECLevel,
		code.Design,
		code.ID,
	).Scan(&code.TargetURL, &code.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrQRCodeNotFound
	}
	return err
}

// DeleteQRCode deletes a QR code by ID. Scans cascade.
func (d *DB) DeleteQRCode(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM qr_codes WHERE id = $1`
	result, err := d.Pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrQRCodeNotFound
	}
	return nil
}

// CountQRCodesByOwners counts QR codes owned by any of the given users.
func (d *DB) CountQRCodesByOwners(ctx context.Context, ownerIDs []uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM qr_codes WHERE owner_id = ANY($1)`

	var count int64
	err := d.Pool.QueryRow(ctx, query, ownerIDs).Scan(&count)
	return count, err
}

// CountQRCodesByOwnersInRange counts QR codes created within [from, to).
func (d *DB) CountQRCodesByOwnersInRange(ctx context.Context, ownerIDs []uuid.UUID, from, to time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM qr_codes
		WHERE owner_id = ANY($1) AND created_at >= $2 AND created_at < $3
	`

	var count int64
	err := d.Pool.QueryRow(ctx, query, ownerIDs, from, to).Scan(&count)
	return count, err
}
