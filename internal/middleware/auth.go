package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"qrlinks/internal/auth"
	"qrlinks/internal/db"
	"qrlinks/internal/models"
)

// AuthMiddleware authenticates API requests via bearer tokens.
type AuthMiddleware struct {
	tokens *auth.TokenManager
	db     *db.DB
}

func NewAuthMiddleware(tokens *auth.TokenManager, database *db.DB) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, db: database}
}

// RequireAuth validates the bearer token, loads the user, and stores it in
// request locals. Requests without a valid token get 401.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user, err := m.userFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	c.Locals("user", user)
	return c.Next()
}

// RequireAdmin builds on RequireAuth semantics: the user must already be
// loaded and must hold the admin role.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil || !user.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin access required",
		})
	}
	return c.Next()
}

// OptionalAuth loads the user when a valid token is present, but lets the
// request through either way.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user, err := m.userFromRequest(c); err == nil {
		c.Locals("user", user)
	}
	return c.Next()
}

func (m *AuthMiddleware) userFromRequest(c fiber.Ctx) (*models.User, error) {
	header := c.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, auth.ErrInvalidToken
	}

	claims, err := m.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	return m.db.GetUserByID(c.Context(), userID)
}

// CurrentUser returns the authenticated user stored by RequireAuth, or nil.
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
