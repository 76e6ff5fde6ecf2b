package memory

import (
	"context"
	"testing"

	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/internal/storage/models"
)

func seedIndex(t *testing.T) (*Index, *llm.Mock) {
	t.Helper()

	mock := llm.NewMock()
	idx := NewIndex(mock)

	chunks := []models.PolicyChunk{
		{Text: "annual leave accrual rules", Source: "policy.pdf", Page: 1},
		{Text: "sick leave medical certificate requirement", Source: "policy.pdf", Page: 2},
		{Text: "sabbatical eligibility after five years", Source: "policy.pdf", Page: 3},
	}
	if err := idx.Add(context.Background(), chunks, nil); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	return idx, mock
}

func TestIndexCount(t *testing.T) {
	idx, _ := seedIndex(t)

	count, err := idx.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestSearchExactTextRanksFirst(t *testing.T) {
	idx, _ := seedIndex(t)

	matches, err := idx.Search(context.Background(), "sick leave medical certificate requirement", 3, nil)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}

	// Identical text embeds identically, so the exact chunk sits at distance 0.
	if matches[0].Page != 2 {
		t.Errorf("top match page = %d, want 2", matches[0].Page)
	}
	if matches[0].Distance != 0 {
		t.Errorf("top match distance = %v, want 0", matches[0].Distance)
	}
	if matches[1].Distance < matches[0].Distance || matches[2].Distance < matches[1].Distance {
		t.Errorf("matches not sorted by distance: %v", matches)
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	idx, _ := seedIndex(t)

	matches, err := idx.Search(context.Background(), "leave", 2, nil)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2", len(matches))
	}

	// Non-positive k falls back to the default of 3.
	matches, err = idx.Search(context.Background(), "leave", 0, nil)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("got %d matches with k=0, want 3", len(matches))
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := NewIndex(llm.NewMock())

	matches, err := idx.Search(context.Background(), "anything", 3, nil)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches from empty index", len(matches))
	}
}

func TestAddWithoutEmbedder(t *testing.T) {
	idx := NewIndex(nil)

	err := idx.Add(context.Background(), []models.PolicyChunk{{Text: "x"}}, nil)
	if err == nil {
		t.Fatal("expected error when no embedder is available")
	}
}

func TestExplicitEmbedderOverridesDefault(t *testing.T) {
	defaultMock := llm.NewMock()
	idx := NewIndex(defaultMock)

	override := llm.NewMock()
	chunks := []models.PolicyChunk{{Text: "remote work policy", Source: "policy.pdf", Page: 1}}
	if err := idx.Add(context.Background(), chunks, override); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if defaultMock.EmbeddingCalls.Load() != 0 {
		t.Error("default embedder used despite explicit override")
	}
	if override.EmbeddingCalls.Load() != 1 {
		t.Errorf("override embedder calls = %d, want 1", override.EmbeddingCalls.Load())
	}
}
