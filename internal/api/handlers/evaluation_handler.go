package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helix-agent/backend/internal/evaluation"
)

type EvaluationHandler struct {
	evaluator *evaluation.Evaluator
}

func NewEvaluationHandler(e *evaluation.Evaluator) *EvaluationHandler {
	return &EvaluationHandler{evaluator: e}
}

// RunEvaluation replays the benchmark dataset (or a caller-supplied one)
// through the pipeline and returns the aggregate report.
func (h *EvaluationHandler) RunEvaluation(c *fiber.Ctx) error {
	var req struct {
		Dataset []evaluation.DatasetItem `json:"dataset"`
	}

	// Empty body is fine; the default dataset is used.
	_ = c.BodyParser(&req)

	report := h.evaluator.Run(c.Context(), req.Dataset)
	return c.JSON(report)
}
