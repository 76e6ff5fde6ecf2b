package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/ingestion"
	"github.com/helix-agent/backend/internal/metrics"
	"github.com/helix-agent/backend/pkg/logger"
)

type DocumentHandler struct {
	processor *ingestion.Processor
}

func NewDocumentHandler(processor *ingestion.Processor) *DocumentHandler {
	return &DocumentHandler{processor: processor}
}

// UploadPolicy ingests a policy document supplied as raw text or HTML.
func (h *DocumentHandler) UploadPolicy(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Content string `json:"content"`
		Format  string `json:"format"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and content are required",
		})
	}

	var (
		chunks int
		err    error
	)
	switch req.Format {
	case "html":
		chunks, err = h.processor.IngestHTML(c.Context(), req.Name, req.Content)
	default:
		chunks, err = h.processor.IngestText(c.Context(), req.Name, req.Content)
	}

	if err != nil {
		logger.Error("Failed to ingest policy document", zap.String("name", req.Name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to ingest policy document",
		})
	}

	metrics.DocumentsIngested.Inc()

	return c.JSON(fiber.Map{
		"message": "Policy document ingested",
		"name":    req.Name,
		"chunks":  chunks,
	})
}
