package pipeline

import (
	"fmt"
	"math"
	"strings"
)

// Confidence is a heuristic 0-100 indicator of retrieval grounding, not a
// calibrated probability.
type Confidence struct {
	Score   float64  `json:"score"`
	Level   string   `json:"level"`
	Reasons []string `json:"reasons"`
}

const (
	levelHigh   = "High"
	levelMedium = "Medium"
	levelLow    = "Low"
)

// scoreConfidence is a pure function over the shape of the retrieved
// context, so it can be tested apart from prompting and generation.
func scoreConfidence(query string, employeeMentioned, employeeFound bool, policyCount, sourceCount int) *Confidence {
	var score float64
	var reasons []string

	if employeeMentioned {
		if employeeFound {
			score += 30
			reasons = append(reasons, "Employee data found")
		} else {
			score += 10
			reasons = append(reasons, "Employee ID mentioned but data incomplete")
		}
	}

	if policyCount > 0 {
		score += math.Min(float64(policyCount)*15, 40)
		reasons = append(reasons, fmt.Sprintf("%d relevant policy documents found", policyCount))
	}

	if len(strings.Fields(query)) > 5 {
		score += 15
		reasons = append(reasons, "Detailed query")
	} else {
		score += 5
		reasons = append(reasons, "Brief query")
	}

	if sourceCount >= 2 {
		score += 15
		reasons = append(reasons, "Multiple context sources")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	level := levelLow
	switch {
	case score >= 75:
		level = levelHigh
	case score >= 50:
		level = levelMedium
	}

	return &Confidence{
		Score:   math.Round(score*10) / 10,
		Level:   level,
		Reasons: reasons,
	}
}
