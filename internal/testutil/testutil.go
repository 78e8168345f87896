// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qrlinks/internal/db"
	"qrlinks/internal/models"
)

// TestDB creates a test database connection and returns a cleanup function.
// Tests are skipped when TEST_DATABASE_URL is not set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data, respecting foreign keys.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	pool.Exec(ctx, "DELETE FROM scans")
	pool.Exec(ctx, "DELETE FROM qr_codes")
	pool.Exec(ctx, "DELETE FROM invitations")
	pool.Exec(ctx, "DELETE FROM users")
}

// CreateTestUser creates a user and returns it. invitedBy may be nil for a
// root account.
func CreateTestUser(t *testing.T, database *db.DB, email, role string, invitedBy *uuid.UUID) *models.User {
	t.Helper()

	user := &models.User{
		Email:         email,
		PasswordHash:  "x",
		Role:          role,
		InvitedBy:     invitedBy,
		EmailVerified: true,
	}
	if err := database.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestQRCode creates a QR code owned by the given user and returns it.
func CreateTestQRCode(t *testing.T, database *db.DB, owner uuid.UUID, slug string, dynamic bool) *models.QRCode {
	t.Helper()

	code := &models.QRCode{
		OwnerID:   owner,
		Name:      "test " + slug,
		TargetURL: "https://example.com/" + slug,
		Dynamic:   dynamic,
		Slug:      slug,
	}
	if err := database.CreateQRCode(context.Background(), code); err != nil {
		t.Fatalf("failed to create test qr code: %v", err)
	}

	return code
}

// CreateTestScan inserts a scan for the given code and returns it.
func CreateTestScan(t *testing.T, database *db.DB, codeID uuid.UUID, ip, country string) *models.Scan {
	t.Helper()

	scan := &models.Scan{
		QRCodeID: codeID,
	}
	if ip != "" {
		scan.IP = &ip
	}
	if country != "" {
		scan.Country = &country
	}
	if err := database.InsertScan(context.Background(), scan); err != nil {
		t.Fatalf("failed to create test scan: %v", err)
	}

	return scan
}
