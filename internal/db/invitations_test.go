package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"qrlinks/internal/models"
)

func createInvitation(t *testing.T, db *DB, email, role, token string, inviter *models.User, ttl time.Duration) *models.Invitation {
	t.Helper()

	inv := &models.Invitation{
		Email:     email,
		Role:      role,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
		InvitedBy: inviter.ID,
	}
	if err := db.CreateInvitation(context.Background(), inv); err != nil {
		t.Fatalf("CreateInvitation() error = %v", err)
	}
	return inv
}

func TestCreateInvitation_DuplicatePending(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	root := createUser(t, db, "root@example.com", models.RoleAdmin, nil)
	createInvitation(t, db, "new@example.com", models.RoleEditor, "tok-1", root, time.Hour)

	err := db.CreateInvitation(context.Background(), &models.Invitation{
		Email:     "new@example.com",
		Role:      models.RoleViewer,
		Token:     "tok-2",
		ExpiresAt: time.Now().Add(time.Hour),
		InvitedBy: root.ID,
	})
	if !errors.Is(err, ErrDuplicateInvitation) {
		t.Fatalf("CreateInvitation() error = %v, want ErrDuplicateInvitation", err)
	}
}

func TestAcceptInvitation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	root := createUser(t, db, "root@example.com", models.RoleAdmin, nil)
	createInvitation(t, db, "new@example.com", models.RoleEditor, "tok-accept", root, time.Hour)

	user, err := db.AcceptInvitation(ctx, "tok-accept", "hash")
	if err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}

	if user.Email != "new@example.com" {
		t.Errorf("AcceptInvitation() email = %q", user.Email)
	}
	if user.Role != models.RoleEditor {
		t.Errorf("AcceptInvitation() role = %q, want %q", user.Role, models.RoleEditor)
	}
	if user.InvitedBy == nil || *user.InvitedBy != root.ID {
		t.Errorf("AcceptInvitation() invited_by = %v, want %v", user.InvitedBy, root.ID)
	}
	if !user.EmailVerified {
		t.Error("AcceptInvitation() user should start verified")
	}

	// Single use
	if _, err := db.AcceptInvitation(ctx, "tok-accept", "hash"); !errors.Is(err, ErrInvitationConsumed) {
		t.Fatalf("AcceptInvitation() reuse error = %v, want ErrInvitationConsumed", err)
	}
}

func TestAcceptInvitation_Expired(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	root := createUser(t, db, "root@example.com", models.RoleAdmin, nil)
	createInvitation(t, db, "late@example.com", models.RoleViewer, "tok-late", root, -time.Hour)

	_, err := db.AcceptInvitation(context.Background(), "tok-late", "hash")
	if !errors.Is(err, ErrInvitationConsumed) {
		t.Fatalf("AcceptInvitation() error = %v, want ErrInvitationConsumed", err)
	}
}

func TestDeleteExpiredInvitations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	root := createUser(t, db, "root@example.com", models.RoleAdmin, nil)
	createInvitation(t, db, "old@example.com", models.RoleViewer, "tok-old", root, -time.Hour)
	createInvitation(t, db, "fresh@example.com", models.RoleViewer, "tok-fresh", root, time.Hour)

	deleted, err := db.DeleteExpiredInvitations(context.Background())
	if err != nil {
		t.Fatalf("DeleteExpiredInvitations() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("DeleteExpiredInvitations() deleted %d, want 1", deleted)
	}

	if _, err := db.GetInvitationByToken(context.Background(), "tok-fresh"); err != nil {
		t.Fatalf("fresh invitation should survive sweep: %v", err)
	}
	if _, err := db.GetInvitationByToken(context.Background(), "tok-old"); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("expired invitation should be gone, got %v", err)
	}
}
