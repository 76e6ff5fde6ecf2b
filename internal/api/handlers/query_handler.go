package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/cache/redis"
	"github.com/helix-agent/backend/internal/metrics"
	"github.com/helix-agent/backend/internal/pipeline"
	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/internal/storage/sqlite"
	"github.com/helix-agent/backend/pkg/logger"
	"github.com/helix-agent/backend/pkg/utils"
)

type QueryHandler struct {
	pipeline *pipeline.Pipeline
	db       *sqlite.Client
	cache    *redis.Client
}

// NewQueryHandler wires the query endpoint. db and cache are optional;
// either may be nil.
func NewQueryHandler(p *pipeline.Pipeline, db *sqlite.Client, cache *redis.Client) *QueryHandler {
	return &QueryHandler{pipeline: p, db: db, cache: cache}
}

type queryResponse struct {
	ID string `json:"id"`
	pipeline.Result
	LatencyMS int `json:"latency_ms"`
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var req struct {
		Query string `json:"query"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	queryHash := utils.HashString(req.Query)
	if h.cache != nil {
		var cached queryResponse
		hit, err := h.cache.GetResponse(c.Context(), queryHash, &cached)
		if err != nil {
			logger.Warn("Response cache read failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("query").Inc()
			return c.JSON(cached)
		}
		metrics.CacheMisses.WithLabelValues("query").Inc()
	}

	start := time.Now()
	result := h.pipeline.ProcessQuery(c.Context(), req.Query)
	latency := int(time.Since(start).Milliseconds())

	resp := queryResponse{
		ID:        uuid.New().String(),
		Result:    *result,
		LatencyMS: latency,
	}

	h.record(req.Query, resp)

	metrics.QueryTotal.WithLabelValues("success", result.Intent).Inc()
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	if result.Confidence != nil {
		metrics.ConfidenceScore.Observe(result.Confidence.Score)
	}

	if h.cache != nil {
		if err := h.cache.SetResponse(c.Context(), queryHash, resp); err != nil {
			logger.Warn("Response cache write failed", zap.Error(err))
		}
	}

	return c.JSON(resp)
}

func (h *QueryHandler) record(query string, resp queryResponse) {
	if h.db == nil {
		return
	}

	policyResults := 0
	employeeFound := false
	for _, citation := range resp.Citations {
		if strings.HasPrefix(citation, "Employee DB: ") {
			employeeFound = true
		} else {
			policyResults++
		}
	}

	record := &models.QueryRecord{
		ID:            resp.ID,
		QueryText:     query,
		Response:      resp.Response,
		Intent:        resp.Intent,
		EmployeeFound: employeeFound,
		PolicyResults: policyResults,
		LatencyMS:     resp.LatencyMS,
		CreatedAt:     time.Now(),
	}
	if resp.Confidence != nil {
		record.ConfidenceScore = resp.Confidence.Score
		record.ConfidenceLevel = resp.Confidence.Level
	}

	if err := h.db.InsertQueryRecord(record); err != nil {
		logger.Warn("Failed to record query", zap.Error(err))
		return
	}
	for _, citation := range resp.Citations {
		if err := h.db.InsertQueryCitation(resp.ID, citation); err != nil {
			logger.Warn("Failed to record citation", zap.Error(err))
		}
	}
}

func (h *QueryHandler) GetQueryHistory(c *fiber.Ctx) error {
	if h.db == nil {
		return c.JSON(fiber.Map{"history": []models.QueryRecord{}})
	}

	limit := c.QueryInt("limit", 20)
	records, err := h.db.GetQueryHistory(limit)
	if err != nil {
		logger.Error("Failed to get query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get query history",
		})
	}

	if records == nil {
		records = []models.QueryRecord{}
	}
	return c.JSON(fiber.Map{"history": records})
}
