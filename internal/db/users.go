package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"qrlinks/internal/models"
)

// userColumns is the standard column list for user queries.
const userColumns = `id, email, password_hash, role, invited_by, email_verified, verify_token, created_at, updated_at`

// scanUser scans a row into a User struct.
func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.InvitedBy,
		&user.EmailVerified,
		&user.VerifyToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user. A user created at signup is a root admin; a
// user created from an invitation carries the issuer in InvitedBy.
func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, role, invited_by, email_verified, verify_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	role := user.Role
	if role == "" {
		role = models.RoleAdmin
	}

	err := d.Pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		role,
		user.InvitedBy,
		user.EmailVerified,
		user.VerifyToken,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}

	user.Role = role
	return nil
}

// GetUserByID retrieves a user by their UUID.
func (d *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(d.Pool.QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a user by their email address.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(d.Pool.QueryRow(ctx, query, email))
}

// VerifyUserEmail marks the user holding the given verification token as
// verified and clears the token.
func (d *DB) VerifyUserEmail(ctx context.Context, token string) error {
	query := `
		UPDATE users
		SET email_verified = TRUE, verify_token = NULL, updated_at = NOW()
		WHERE verify_token = $1
	`
	result, err := d.Pool.Exec(ctx, query, token)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUserIDsInvitedBy returns the IDs of users directly invited by inviter.
func (d *DB) ListUserIDsInvitedBy(ctx context.Context, inviter uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT id FROM users WHERE invited_by = $1 ORDER BY created_at ASC`

	rows, err := d.Pool.Query(ctx, query, inviter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ListUsersByIDs retrieves the users for a set of IDs, newest last.
func (d *DB) ListUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY created_at ASC`

	rows, err := d.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.InvitedBy,
			&user.EmailVerified,
			&user.VerifyToken,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
