package handlers

import (
	"github.com/gofiber/fiber/v3"

	"qrlinks/internal/db"
	"qrlinks/internal/models"
	"qrlinks/internal/team"
)

// UserHandler serves team membership listings.
type UserHandler struct {
	db   *db.DB
	team *team.Resolver
}

func NewUserHandler(database *db.DB, teams *team.Resolver) *UserHandler {
	return &UserHandler{db: database, team: teams}
}

// Team returns the members of the authenticated user's team.
func (h *UserHandler) Team(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)

	ids, err := h.team.TeamIDs(c.Context(), user.ID.String())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve team")
	}

	users, err := h.db.ListUsersByIDs(c.Context(), ids)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch team members")
	}

	return jsonSuccess(c, users)
}
