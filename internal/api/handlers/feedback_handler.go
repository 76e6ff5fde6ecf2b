package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/metrics"
	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/internal/storage/sqlite"
	"github.com/helix-agent/backend/pkg/logger"
)

type FeedbackHandler struct {
	db *sqlite.Client
}

func NewFeedbackHandler(db *sqlite.Client) *FeedbackHandler {
	return &FeedbackHandler{db: db}
}

func (h *FeedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req struct {
		QueryID string `json:"query_id"`
		Helpful bool   `json:"helpful"`
		Comment string `json:"comment"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.QueryID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query_id is required",
		})
	}

	if h.db != nil {
		err := h.db.StoreFeedback(&models.Feedback{
			QueryID: req.QueryID,
			Helpful: req.Helpful,
			Comment: req.Comment,
		})
		if err != nil {
			logger.Error("Failed to store feedback", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to store feedback",
			})
		}
	}

	metrics.FeedbackTotal.WithLabelValues(strconv.FormatBool(req.Helpful)).Inc()

	return c.JSON(fiber.Map{"message": "Feedback recorded"})
}
