// Package pipeline orchestrates one query end to end: intent detection,
// hybrid retrieval, prompt assembly, generation and confidence scoring.
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/internal/retriever"
	"github.com/helix-agent/backend/pkg/logger"
)

const (
	IntentPolicySearch       = "POLICY_SEARCH"
	IntentEmployeeInfoHybrid = "EMPLOYEE_INFO_HYBRID"
)

// NoContextResponse is returned verbatim when neither structured nor
// unstructured retrieval produced anything; generation is skipped entirely.
const NoContextResponse = "I couldn't find any relevant policy information or employee data for your query."

const defaultTopK = 3

var empIDPattern = regexp.MustCompile(`(?i)emp\d+`)

// Result is the full output contract for one processed query.
type Result struct {
	Response   string      `json:"response"`
	Citations  []string    `json:"citations"`
	Intent     string      `json:"intent"`
	Context    string      `json:"context"`
	Confidence *Confidence `json:"confidence,omitempty"`
}

type Pipeline struct {
	retriever *retriever.Retriever
	generator llm.Client
	topK      int
}

func New(r *retriever.Retriever, generator llm.Client, topK int) *Pipeline {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Pipeline{retriever: r, generator: generator, topK: topK}
}

// DetectIntent classifies a query by the presence of an employee-identifier
// token. One-shot per query; no session state is carried between calls.
func DetectIntent(query string) string {
	if empIDPattern.MatchString(query) {
		return IntentEmployeeInfoHybrid
	}
	return IntentPolicySearch
}

// ProcessQuery always returns a renderable result; every retrieval or
// generation failure degrades to a partial response and is logged here.
func (p *Pipeline) ProcessQuery(ctx context.Context, query string) *Result {
	var contextParts []string
	citations := []string{}
	intent := IntentPolicySearch

	employeeMentioned := false
	employeeFound := false

	if match := empIDPattern.FindString(query); match != "" {
		intent = IntentEmployeeInfoHybrid
		employeeMentioned = true
		empID := strings.ToUpper(match)

		block, err := p.renderEmployeeBlock(empID)
		if err != nil {
			// Employee lookup failure never fails the whole query.
			logger.Warn("Employee lookup failed", zap.String("emp_id", empID), zap.Error(err))
		} else {
			contextParts = append(contextParts, block)
			citations = append(citations, "Employee DB: "+empID)
			employeeFound = true
		}
	}

	// Policies are searched even for employee lookups; eligibility questions
	// need policy grounding regardless of the profile data.
	matches, err := p.retriever.SearchPolicies(ctx, query, p.topK)
	if err != nil {
		logger.Warn("Policy search failed", zap.Error(err))
		matches = nil
	}

	if len(matches) > 0 {
		var b strings.Builder
		b.WriteString("--- Relevant HR Policies ---\n")
		for _, m := range matches {
			fmt.Fprintf(&b, "Source: %s (Page %d)\n", m.Source, m.Page)
			fmt.Fprintf(&b, "Content: %s\n\n", m.Text)
			citations = append(citations, fmt.Sprintf("%s (Page %d)", m.Source, m.Page))
		}
		contextParts = append(contextParts, b.String())
	}

	if len(contextParts) == 0 {
		logger.Info("No context retrieved, skipping generation", zap.String("intent", intent))
		return &Result{
			Response:  NoContextResponse,
			Citations: citations,
			Intent:    intent,
			Context:   "",
		}
	}

	fullContext := strings.Join(contextParts, "\n")
	response := p.generator.GenerateText(ctx, buildPrompt(query, fullContext))

	confidence := scoreConfidence(query, employeeMentioned, employeeFound, len(matches), len(contextParts))

	logger.Info("Query processed",
		zap.String("intent", intent),
		zap.Int("policy_results", len(matches)),
		zap.Bool("employee_found", employeeFound),
		zap.Float64("confidence", confidence.Score),
	)

	return &Result{
		Response:   response,
		Citations:  citations,
		Intent:     intent,
		Context:    fullContext,
		Confidence: confidence,
	}
}

func (p *Pipeline) renderEmployeeBlock(empID string) (string, error) {
	info, err := p.retriever.GetEmployeeInfo(empID)
	if err != nil {
		return "", err
	}

	joinDate := "Unknown"
	if info.Employee.JoinDate != nil {
		joinDate = info.Employee.JoinDate.Format("2006-01-02")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Employee Profile (%s) ---\n", empID)
	fmt.Fprintf(&b, "Name: %s\n", info.Employee.Name)
	fmt.Fprintf(&b, "Department: %s\n", info.Employee.Department)
	fmt.Fprintf(&b, "Location: %s\n", info.Employee.Location)
	fmt.Fprintf(&b, "Joining Date: %s\n", joinDate)

	tenure, err := p.retriever.CalculateTenure(empID)
	if err != nil {
		logger.Warn("Tenure calculation failed", zap.String("emp_id", empID), zap.Error(err))
	} else {
		fmt.Fprintf(&b, "Tenure: %.2f years (%d days)\n", tenure.Years, tenure.Days)
		fmt.Fprintf(&b, "Sabbatical Eligible: %s\n", yesNo(tenure.SabbaticalEligible))
	}

	fmt.Fprintf(&b, "Leaves Taken: %d records\n", len(info.Leaves))
	fmt.Fprintf(&b, "Attendance Days: %d\n", info.AttendanceCount)

	return b.String(), nil
}

func buildPrompt(query, context string) string {
	return fmt.Sprintf(`You are the Helix Corp HR Intelligence Bot.
Answer the user's question strictly based on the provided context.
If the answer is not in the context, say "I don't have enough information."

Context:
%s

Question: %s

Answer:`, context, query)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
