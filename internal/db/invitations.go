package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"qrlinks/internal/models"
)

// invitationColumns is the standard column list for invitation queries.
const invitationColumns = `id, email, role, token, expires_at, used, invited_by, created_at`

// scanInvitation scans a row into an Invitation struct.
func scanInvitation(row pgx.Row) (*models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.Email,
		&inv.Role,
		&inv.Token,
		&inv.ExpiresAt,
		&inv.Used,
		&inv.InvitedBy,
		&inv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateInvitation creates a new invitation. The partial unique index on
// (email, invited_by) enforces at most one pending invitation per pair.
func (d *DB) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (email, role, token, expires_at, invited_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, used, created_at
	`

	err := d.Pool.QueryRow(ctx, query,
		inv.Email,
		inv.Role,
		inv.Token,
		inv.ExpiresAt,
		inv.InvitedBy,
	).Scan(&inv.ID, &inv.Used, &inv.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateInvitation
		}
		return err
	}

	return nil
}

// GetInvitationByToken retrieves an invitation by its single-use token.
func (d *DB) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	return scanInvitation(d.Pool.QueryRow(ctx, query, token))
}

// ListInvitationsByIssuer retrieves invitations issued by the given user.
func (d *DB) ListInvitationsByIssuer(ctx context.Context, issuer uuid.UUID) ([]models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE invited_by = $1 ORDER BY created_at DESC`

	rows, err := d.Pool.Query(ctx, query, issuer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(
			&inv.ID,
			&inv.Email,
			&inv.Role,
			&inv.Token,
			&inv.ExpiresAt,
			&inv.Used,
			&inv.InvitedBy,
			&inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}

	return invs, rows.Err()
}

// AcceptInvitation consumes an invitation and creates the invited user in one
// transaction. The token transitions used exactly once; a second accept, or an
// accept after expiry, fails with ErrInvitationConsumed.
func (d *DB) AcceptInvitation(ctx context.Context, token, passwordHash string) (*models.User, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var inv models.Invitation
	err = tx.QueryRow(ctx, `
		UPDATE invitations
		SET used = TRUE
		WHERE token = $1 AND NOT used AND expires_at > NOW()
		RETURNING `+invitationColumns+`
	`, token).Scan(
		&inv.ID,
		&inv.Email,
		&inv.Role,
		&inv.Token,
		&inv.ExpiresAt,
		&inv.Used,
		&inv.InvitedBy,
		&inv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvitationConsumed
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:         inv.Email,
		PasswordHash:  passwordHash,
		Role:          inv.Role,
		InvitedBy:     &inv.InvitedBy,
		EmailVerified: true, // the invitation itself proves address ownership
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role, invited_by, email_verified)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at, updated_at
	`, user.Email, user.PasswordHash, user.Role, user.InvitedBy).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteExpiredInvitations removes unconsumed invitations past their expiry.
// Returns the number of rows removed.
func (d *DB) DeleteExpiredInvitations(ctx context.Context) (int64, error) {
	query := `DELETE FROM invitations WHERE NOT used AND expires_at < NOW()`
	result, err := d.Pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
