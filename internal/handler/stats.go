package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/jss367/convora/internal/middleware"
	"github.com/jss367/convora/internal/repository"
	"github.com/jss367/convora/internal/service"
)

type StatsHandler struct {
	discussions *repository.DiscussionRepo
	hub         *service.Hub
}

func NewStatsHandler(discussions *repository.DiscussionRepo, hub *service.Hub) *StatsHandler {
	return &StatsHandler{discussions: discussions, hub: hub}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.discussions.GetStats(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch statistics")
	}

	return c.JSON(fiber.Map{
		"totals":         stats,
		"activeSessions": h.hub.SessionCount(),
		"activeTopics":   h.hub.RoomCount(),
	})
}
