package handlers

import (
	"github.com/gofiber/fiber/v3"

	"qrlinks/internal/db"
	"qrlinks/internal/models"
	"qrlinks/internal/stats"
	"qrlinks/internal/team"
)

// StatsHandler serves the team dashboard report.
type StatsHandler struct {
	db         *db.DB
	team       *team.Resolver
	aggregator *stats.Aggregator
}

func NewStatsHandler(database *db.DB, teams *team.Resolver, aggregator *stats.Aggregator) *StatsHandler {
	return &StatsHandler{db: database, team: teams, aggregator: aggregator}
}

// Dashboard returns the aggregated stats for the user's team.
func (h *StatsHandler) Dashboard(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)

	owners, err := h.team.TeamIDs(c.Context(), user.ID.String())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve team")
	}

	report, err := h.aggregator.Report(c.Context(), owners)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to build stats report")
	}

	return jsonSuccess(c, report)
}
