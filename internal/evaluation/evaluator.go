package evaluation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/pipeline"
	"github.com/helix-agent/backend/pkg/logger"
)

// DatasetItem is a single benchmark question with the category it probes.
type DatasetItem struct {
	Question string `json:"question"`
	Category string `json:"category"`
}

type ItemResult struct {
	Question        string   `json:"question"`
	Category        string   `json:"category"`
	Answered        bool     `json:"answered"`
	Intent          string   `json:"intent"`
	ConfidenceScore float64  `json:"confidence_score"`
	ConfidenceLevel string   `json:"confidence_level"`
	Citations       []string `json:"citations"`
	LatencyMS       int      `json:"latency_ms"`
}

type Report struct {
	Total            int            `json:"total"`
	Answered         int            `json:"answered"`
	AnswerRate       float64        `json:"answer_rate"`
	AvgConfidence    float64        `json:"avg_confidence"`
	LevelCounts      map[string]int `json:"level_counts"`
	CitationCoverage float64        `json:"citation_coverage"`
	Items            []ItemResult   `json:"items"`
}

// DefaultDataset returns the benchmark questions used to sanity-check
// retrieval quality after data or prompt changes.
func DefaultDataset() []DatasetItem {
	return []DatasetItem{
		{Question: "How many annual leave days does EMP1004 have remaining?", Category: "hybrid"},
		{Question: "Does EMP1002 need a medical certificate for sick leave?", Category: "hybrid"},
		{Question: "What is the penalty for missing a check-out in attendance?", Category: "policy"},
		{Question: "Is EMP1015 eligible for a sabbatical?", Category: "hybrid"},
		{Question: "Which bank holidays apply to EMP1010 in the London office?", Category: "hybrid"},
	}
}

type Evaluator struct {
	pipeline *pipeline.Pipeline
}

func New(p *pipeline.Pipeline) *Evaluator {
	return &Evaluator{pipeline: p}
}

// Run executes every dataset item through the query pipeline and
// aggregates answer rate, confidence, and citation coverage.
func (e *Evaluator) Run(ctx context.Context, dataset []DatasetItem) *Report {
	if len(dataset) == 0 {
		dataset = DefaultDataset()
	}

	report := &Report{
		Total:       len(dataset),
		LevelCounts: map[string]int{},
		Items:       make([]ItemResult, 0, len(dataset)),
	}

	var confidenceSum float64
	cited := 0

	for _, item := range dataset {
		select {
		case <-ctx.Done():
			logger.Warn("Evaluation cancelled", zap.Error(ctx.Err()))
			return report
		default:
		}

		start := time.Now()
		result := e.pipeline.ProcessQuery(ctx, item.Question)
		latency := int(time.Since(start).Milliseconds())

		answered := result.Response != pipeline.NoContextResponse

		ir := ItemResult{
			Question:  item.Question,
			Category:  item.Category,
			Answered:  answered,
			Intent:    result.Intent,
			Citations: result.Citations,
			LatencyMS: latency,
		}
		if result.Confidence != nil {
			ir.ConfidenceScore = result.Confidence.Score
			ir.ConfidenceLevel = result.Confidence.Level
			confidenceSum += result.Confidence.Score
			report.LevelCounts[result.Confidence.Level]++
		}

		if answered {
			report.Answered++
		}
		if len(result.Citations) > 0 {
			cited++
		}

		report.Items = append(report.Items, ir)
	}

	if report.Total > 0 {
		report.AnswerRate = float64(report.Answered) / float64(report.Total)
		report.AvgConfidence = confidenceSum / float64(report.Total)
		report.CitationCoverage = float64(cited) / float64(report.Total)
	}

	logger.Info("Evaluation run complete",
		zap.Int("total", report.Total),
		zap.Int("answered", report.Answered),
		zap.Float64("avg_confidence", report.AvgConfidence),
	)

	return report
}
