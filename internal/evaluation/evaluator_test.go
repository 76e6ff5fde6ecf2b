package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/internal/pipeline"
	"github.com/helix-agent/backend/internal/retriever"
	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/internal/vector/memory"
)

func testEvaluator(t *testing.T, seedIndex bool) *Evaluator {
	t.Helper()

	mock := llm.NewMock()
	index := memory.NewIndex(mock)

	if seedIndex {
		chunks := []models.PolicyChunk{
			{Text: "Annual leave accrues at 25 days per year.", Source: "policy.pdf", Page: 1},
			{Text: "Sick leave beyond 3 days requires a medical certificate.", Source: "policy.pdf", Page: 2},
			{Text: "A missed check-out is flagged and repeated misses incur a penalty.", Source: "policy.pdf", Page: 3},
		}
		if err := index.Add(context.Background(), chunks, mock); err != nil {
			t.Fatalf("failed to seed index: %v", err)
		}
	}

	join := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	employees := []models.Employee{
		{ID: "EMP1002", Name: "Maya Patel", Department: "HR", Location: "Berlin", JoinDate: &join},
		{ID: "EMP1004", Name: "Priya Nair", Department: "Engineering", Location: "Bengaluru", JoinDate: &join},
		{ID: "EMP1010", Name: "Oliver Wright", Department: "Sales", Location: "London", JoinDate: &join},
		{ID: "EMP1015", Name: "Sofia Rossi", Department: "Finance", Location: "Milan", JoinDate: &join},
	}

	clock := func() time.Time { return time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC) }
	r := retriever.New(employees, nil, nil, index, mock, clock)

	return New(pipeline.New(r, mock, 3))
}

func TestRunDefaultDataset(t *testing.T) {
	e := testEvaluator(t, true)

	report := e.Run(context.Background(), nil)

	if report.Total != len(DefaultDataset()) {
		t.Fatalf("total = %d, want %d", report.Total, len(DefaultDataset()))
	}
	// Every benchmark question finds policy context in the seeded index.
	if report.Answered != report.Total {
		t.Errorf("answered = %d, want %d", report.Answered, report.Total)
	}
	if report.AnswerRate != 1 {
		t.Errorf("answer rate = %v, want 1", report.AnswerRate)
	}
	if report.CitationCoverage != 1 {
		t.Errorf("citation coverage = %v, want 1", report.CitationCoverage)
	}
	if report.AvgConfidence <= 0 {
		t.Errorf("avg confidence = %v, want > 0", report.AvgConfidence)
	}

	levelsSum := 0
	for _, n := range report.LevelCounts {
		levelsSum += n
	}
	if levelsSum != report.Total {
		t.Errorf("level counts sum to %d, want %d", levelsSum, report.Total)
	}

	if len(report.Items) != report.Total {
		t.Fatalf("items = %d, want %d", len(report.Items), report.Total)
	}
	for _, item := range report.Items {
		if item.Intent == "" {
			t.Errorf("item %q missing intent", item.Question)
		}
	}
}

func TestRunEmptyIndex(t *testing.T) {
	e := testEvaluator(t, false)

	report := e.Run(context.Background(), []DatasetItem{
		{Question: "What is the dress code?", Category: "policy"},
	})

	if report.Total != 1 {
		t.Fatalf("total = %d, want 1", report.Total)
	}
	if report.Answered != 0 {
		t.Errorf("answered = %d, want 0 with no retrievable context", report.Answered)
	}
	if report.AnswerRate != 0 {
		t.Errorf("answer rate = %v, want 0", report.AnswerRate)
	}
}

func TestRunCancelledContext(t *testing.T) {
	e := testEvaluator(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := e.Run(ctx, nil)
	if len(report.Items) != 0 {
		t.Errorf("cancelled run processed %d items", len(report.Items))
	}
}
