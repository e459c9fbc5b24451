package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/jss367/convora/internal/middleware"
	"github.com/jss367/convora/internal/model"
	"github.com/jss367/convora/internal/repository"
	"github.com/jss367/convora/internal/service"
	"github.com/jss367/convora/pkg/slug"
)

type DiscussionHandler struct {
	discussions *repository.DiscussionRepo
	snapshots   *service.SnapshotService
}

func NewDiscussionHandler(discussions *repository.DiscussionRepo, snapshots *service.SnapshotService) *DiscussionHandler {
	return &DiscussionHandler{discussions: discussions, snapshots: snapshots}
}

// Create handles POST /api/discussions — upserts a discussion for the
// slugified topic, so creating an existing topic just returns it.
func (h *DiscussionHandler) Create(c fiber.Ctx) error {
	var req model.CreateDiscussionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	topic, errMsg := middleware.ValidateTopic(slug.Make(req.Topic))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	disc, err := h.discussions.GetOrCreate(c.Context(), topic)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create discussion")
	}

	return c.Status(fiber.StatusCreated).JSON(disc)
}

// GetByID handles GET /api/discussions/:id
func (h *DiscussionHandler) GetByID(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "Invalid discussion id")
	}

	disc, err := h.discussions.FindByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Discussion not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch discussion")
	}

	return c.JSON(disc)
}

// GetQuestions handles GET /api/discussions/topic/:topic/questions — the
// same snapshot the websocket pushes, for clients that only poll.
func (h *DiscussionHandler) GetQuestions(c fiber.Ctx) error {
	topic, errMsg := middleware.ValidateTopic(c.Params("topic"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	views, err := h.snapshots.Get(c.Context(), topic)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch questions")
	}

	return c.JSON(views)
}
