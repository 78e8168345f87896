package handlers

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"qrlinks/internal/auth"
	"qrlinks/internal/config"
	"qrlinks/internal/db"
	"qrlinks/internal/email"
	"qrlinks/internal/models"
)

// InvitationHandler handles issuing and accepting team invitations.
type InvitationHandler struct {
	db       *db.DB
	cfg      *config.Config
	tokens   *auth.TokenManager
	notifier *email.Notifier
}

func NewInvitationHandler(database *db.DB, cfg *config.Config, tokens *auth.TokenManager, notifier *email.Notifier) *InvitationHandler {
	return &InvitationHandler{db: database, cfg: cfg, tokens: tokens, notifier: notifier}
}

// Create issues an invitation from the authenticated admin to an email
// address. At most one pending invitation exists per (email, inviter) pair.
func (h *InvitationHandler) Create(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	if !user.IsAdmin() {
		return jsonError(c, fiber.StatusForbidden, "only admins can invite")
	}

	var body struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if _, err := mail.ParseAddress(body.Email); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid email address")
	}

	role := body.Role
	if role == "" {
		role = models.RoleViewer
	}
	if !models.ValidRole(role) {
		return jsonError(c, fiber.StatusBadRequest, "role must be one of admin, editor, viewer")
	}

	inv := &models.Invitation{
		Email:     body.Email,
		Role:      role,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(h.cfg.InvitationTTL),
		InvitedBy: user.ID,
	}

	if err := h.db.CreateInvitation(c.Context(), inv); err != nil {
		if errors.Is(err, db.ErrDuplicateInvitation) {
			return jsonError(c, fiber.StatusConflict, "a pending invitation for this email already exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create invitation")
	}

	h.notifier.NotifyInvitation(inv, user)

	return jsonCreated(c, inv)
}

// List returns the invitations issued by the authenticated user.
func (h *InvitationHandler) List(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)

	invs, err := h.db.ListInvitationsByIssuer(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch invitations")
	}

	return jsonSuccess(c, invs)
}

// Accept consumes an invitation token and creates the invited account. The
// token is single use; expired or already consumed tokens fail.
func (h *InvitationHandler) Accept(c fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if body.Token == "" {
		return jsonError(c, fiber.StatusBadRequest, "token is required")
	}
	if len(body.Password) < minPasswordLength {
		return jsonError(c, fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to accept invitation")
	}

	user, err := h.db.AcceptInvitation(c.Context(), body.Token, hash)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrInvitationConsumed):
			return jsonError(c, fiber.StatusGone, "invitation is invalid, expired, or already used")
		case errors.Is(err, db.ErrDuplicateEmail):
			return jsonError(c, fiber.StatusConflict, "email already registered")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "failed to accept invitation")
		}
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to accept invitation")
	}

	return jsonCreated(c, fiber.Map{
		"user":  user,
		"token": token,
	})
}
