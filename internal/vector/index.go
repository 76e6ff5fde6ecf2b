package vector

import (
	"context"

	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/internal/storage/models"
)

// Match is one similarity-search hit, ordered by ascending distance.
type Match struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Source   string  `json:"source"`
	Page     int     `json:"page"`
	Distance float32 `json:"distance"`
}

// Index stores embedded policy chunks and serves nearest-neighbour search.
// A nil embedder falls back to the index's default. Queries must be embedded
// the same way documents were, or relevance degrades silently; that is the
// caller's responsibility.
type Index interface {
	Add(ctx context.Context, chunks []models.PolicyChunk, embedder llm.Client) error
	Search(ctx context.Context, query string, k int, embedder llm.Client) ([]Match, error)
	Count(ctx context.Context) (int, error)
}
