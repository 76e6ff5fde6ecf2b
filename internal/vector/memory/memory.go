// Package memory implements a brute-force in-process vector index. It is the
// default backend and the one every test runs against.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/internal/vector"
	"github.com/helix-agent/backend/pkg/logger"
)

type entry struct {
	id        string
	chunk     models.PolicyChunk
	embedding []float32
}

type Index struct {
	mu              sync.RWMutex
	entries         []entry
	defaultEmbedder llm.Client
}

func NewIndex(defaultEmbedder llm.Client) *Index {
	return &Index{defaultEmbedder: defaultEmbedder}
}

func (idx *Index) Add(ctx context.Context, chunks []models.PolicyChunk, embedder llm.Client) error {
	if embedder == nil {
		embedder = idx.defaultEmbedder
	}
	if embedder == nil {
		return errors.New("no embedder available")
	}

	added := make([]entry, 0, len(chunks))
	for _, chunk := range chunks {
		embedding := embedder.GetEmbedding(ctx, chunk.Text)
		if len(embedding) == 0 {
			logger.Warn("Skipping chunk with empty embedding",
				zap.String("source", chunk.Source),
				zap.Int("page", chunk.Page),
			)
			continue
		}
		added = append(added, entry{
			id:        uuid.New().String(),
			chunk:     chunk,
			embedding: embedding,
		})
	}

	idx.mu.Lock()
	idx.entries = append(idx.entries, added...)
	idx.mu.Unlock()

	logger.Info("Chunks indexed", zap.Int("count", len(added)))
	return nil
}

func (idx *Index) Search(ctx context.Context, query string, k int, embedder llm.Client) ([]vector.Match, error) {
	if embedder == nil {
		embedder = idx.defaultEmbedder
	}
	if embedder == nil {
		return nil, errors.New("no embedder available")
	}
	if k <= 0 {
		k = 3
	}

	queryVec := embedder.GetEmbedding(ctx, query)
	if len(queryVec) == 0 {
		return nil, errors.New("query embedding is empty")
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	matches := make([]vector.Match, 0, len(idx.entries))
	for _, e := range idx.entries {
		matches = append(matches, vector.Match{
			ID:       e.id,
			Text:     e.chunk.Text,
			Source:   e.chunk.Source,
			Page:     e.chunk.Page,
			Distance: l2Distance(queryVec, e.embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries), nil
}

func l2Distance(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
