package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"qrlinks/internal/models"
)

// setupTestDB connects to the test database, runs migrations, and returns a
// cleanup function. Tests are skipped when TEST_DATABASE_URL is not set.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	database, err := New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanup := func() {
		// Clean up in order
		database.Pool.Exec(ctx, "DELETE FROM scans")
		database.Pool.Exec(ctx, "DELETE FROM qr_codes")
		database.Pool.Exec(ctx, "DELETE FROM invitations")
		database.Pool.Exec(ctx, "DELETE FROM users")
		database.Close()
	}

	return database, cleanup
}

func createUser(t *testing.T, database *DB, email, role string, invitedBy *uuid.UUID) *models.User {
	t.Helper()

	user := &models.User{
		Email:         email,
		PasswordHash:  "x",
		Role:          role,
		InvitedBy:     invitedBy,
		EmailVerified: true,
	}
	if err := database.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}

func createCode(t *testing.T, database *DB, owner uuid.UUID, slug string, dynamic bool) *models.QRCode {
	t.Helper()

	code := &models.QRCode{
		OwnerID:   owner,
		Name:      "test " + slug,
		TargetURL: "https://example.com/" + slug,
		Dynamic:   dynamic,
		Slug:      slug,
	}
	if err := database.CreateQRCode(context.Background(), code); err != nil {
		t.Fatalf("CreateQRCode() error = %v", err)
	}
	return code
}
