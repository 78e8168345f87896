package handlers

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"qrlinks/internal/auth"
	"qrlinks/internal/config"
	"qrlinks/internal/db"
	"qrlinks/internal/email"
	"qrlinks/internal/models"
)

const minPasswordLength = 8

// AuthHandler handles signup, login, and email verification.
type AuthHandler struct {
	db       *db.DB
	cfg      *config.Config
	tokens   *auth.TokenManager
	notifier *email.Notifier
}

func NewAuthHandler(database *db.DB, cfg *config.Config, tokens *auth.TokenManager, notifier *email.Notifier) *AuthHandler {
	return &AuthHandler{db: database, cfg: cfg, tokens: tokens, notifier: notifier}
}

// Signup registers a new root account. Users joining an existing team go
// through invitation acceptance instead.
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if _, err := mail.ParseAddress(body.Email); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid email address")
	}
	if len(body.Password) < minPasswordLength {
		return jsonError(c, fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create account")
	}

	verifyToken := uuid.NewString()
	user := &models.User{
		Email:        body.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		VerifyToken:  &verifyToken,
	}
	// Without SMTP there is no way to deliver the verification link, so the
	// account starts verified.
	if !h.cfg.IsEmailEnabled() {
		user.EmailVerified = true
		user.VerifyToken = nil
	}

	if err := h.db.CreateUser(c.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return jsonError(c, fiber.StatusConflict, "email already registered")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create account")
	}

	if !user.EmailVerified {
		h.notifier.NotifyVerifyEmail(user, verifyToken)
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create account")
	}

	return jsonCreated(c, fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Login authenticates with email and password and returns a bearer token.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	user, err := h.db.GetUserByEmail(c.Context(), body.Email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return jsonError(c, fiber.StatusInternalServerError, "login failed")
	}

	if !auth.CheckPassword(user.PasswordHash, body.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "login failed")
	}

	return jsonSuccess(c, fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Verify consumes an email verification token.
func (h *AuthHandler) Verify(c fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing verification token")
	}

	if err := h.db.VerifyUserEmail(c.Context(), token); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return jsonError(c, fiber.StatusNotFound, "invalid or already used token")
		}
		return jsonError(c, fiber.StatusInternalServerError, "verification failed")
	}

	return jsonSuccess(c, fiber.Map{"verified": true})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return jsonSuccess(c, user)
}
