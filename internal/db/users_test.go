package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"qrlinks/internal/models"
)

func TestCreateUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := &models.User{
		Email:        "root@example.com",
		PasswordHash: "hash",
	}
	if err := db.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("CreateUser() did not set ID")
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("CreateUser() default role = %q, want %q", user.Role, models.RoleAdmin)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createUser(t, db, "dup@example.com", models.RoleAdmin, nil)

	err := db.CreateUser(context.Background(), &models.User{
		Email:        "dup@example.com",
		PasswordHash: "hash",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("CreateUser() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.GetUserByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetUserByEmail() error = %v, want ErrUserNotFound", err)
	}
}

func TestVerifyUserEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	token := "verify-token-123"

	user := &models.User{
		Email:        "pending@example.com",
		PasswordHash: "hash",
		VerifyToken:  &token,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if err := db.VerifyUserEmail(ctx, token); err != nil {
		t.Fatalf("VerifyUserEmail() error = %v", err)
	}

	fetched, err := db.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if !fetched.EmailVerified {
		t.Error("VerifyUserEmail() did not mark user verified")
	}
	if fetched.VerifyToken != nil {
		t.Error("VerifyUserEmail() did not clear token")
	}

	// Second use fails
	if err := db.VerifyUserEmail(ctx, token); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("VerifyUserEmail() reuse error = %v, want ErrUserNotFound", err)
	}
}

func TestListUserIDsInvitedBy(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	root := createUser(t, db, "root@example.com", models.RoleAdmin, nil)
	a := createUser(t, db, "a@example.com", models.RoleEditor, &root.ID)
	b := createUser(t, db, "b@example.com", models.RoleViewer, &root.ID)
	createUser(t, db, "other@example.com", models.RoleAdmin, nil)

	ids, err := db.ListUserIDsInvitedBy(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("ListUserIDsInvitedBy() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ListUserIDsInvitedBy() returned %d ids, want 2", len(ids))
	}
	if ids[0] != a.ID || ids[1] != b.ID {
		t.Errorf("ListUserIDsInvitedBy() = %v, want [%v %v]", ids, a.ID, b.ID)
	}
}
