package db

import "errors"

// Domain-level database error sentinels.
var (
	// QR code errors
	ErrQRCodeNotFound = errors.New("qr code not found")
	ErrDuplicateSlug  = errors.New("slug already exists")

	// User errors
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Invitation errors
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrInvitationConsumed  = errors.New("invitation already used or expired")
	ErrDuplicateInvitation = errors.New("a pending invitation for this email already exists")
)
