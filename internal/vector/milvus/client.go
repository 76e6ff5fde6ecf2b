// Package milvus backs the vector index with a Milvus/Zilliz collection for
// deployments where the chunk store should outlive the process.
package milvus

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/internal/vector"
	"github.com/helix-agent/backend/pkg/logger"
)

type Index struct {
	client          client.Client
	collectionName  string
	vectorDim       int
	defaultEmbedder llm.Client
}

func NewIndex(endpoint, collectionName string, vectorDim int, defaultEmbedder llm.Client) (*Index, error) {
	c, err := client.NewGrpcClient(context.Background(), endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus index initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Index{
		client:          c,
		collectionName:  collectionName,
		vectorDim:       vectorDim,
		defaultEmbedder: defaultEmbedder,
	}, nil
}

func (m *Index) Close() error {
	return m.client.Close()
}

func (m *Index) EnsureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if has {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "HR policy chunk embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "embedding",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", m.vectorDim)},
			},
			{
				Name:       "text",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "8192"},
			},
			{
				Name:       "source",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "256"},
			},
			{
				Name:     "page",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 1024)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := m.client.LoadCollection(ctx, m.collectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))
	return nil
}

func (m *Index) Add(ctx context.Context, chunks []models.PolicyChunk, embedder llm.Client) error {
	if embedder == nil {
		embedder = m.defaultEmbedder
	}
	if embedder == nil {
		return errors.New("no embedder available")
	}
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, 0, len(chunks))
	embeddings := make([][]float32, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	sources := make([]string, 0, len(chunks))
	pages := make([]int64, 0, len(chunks))

	for _, chunk := range chunks {
		embedding := embedder.GetEmbedding(ctx, chunk.Text)
		if len(embedding) == 0 {
			logger.Warn("Skipping chunk with empty embedding",
				zap.String("source", chunk.Source),
				zap.Int("page", chunk.Page),
			)
			continue
		}
		ids = append(ids, uuid.New().String())
		embeddings = append(embeddings, embedding)
		texts = append(texts, chunk.Text)
		sources = append(sources, chunk.Source)
		pages = append(pages, int64(chunk.Page))
	}

	if len(ids) == 0 {
		return nil
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("chunk_id", ids),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("source", sources),
		entity.NewColumnInt64("page", pages),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	if err := m.client.Flush(ctx, m.collectionName, false); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Chunks indexed", zap.Int("count", len(ids)))
	return nil
}

func (m *Index) Search(ctx context.Context, query string, k int, embedder llm.Client) ([]vector.Match, error) {
	if embedder == nil {
		embedder = m.defaultEmbedder
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

	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		"",
		[]string{"chunk_id", "text", "source", "page"},
		[]entity.Vector{entity.FloatVector(queryVec)},
		"embedding",
		entity.L2,
		k,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	matches := make([]vector.Match, 0, k)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			chunkID, _ := sr.Fields.GetColumn("chunk_id").Get(i)
			text, _ := sr.Fields.GetColumn("text").Get(i)
			source, _ := sr.Fields.GetColumn("source").Get(i)
			page, _ := sr.Fields.GetColumn("page").Get(i)

			matches = append(matches, vector.Match{
				ID:       chunkID.(string),
				Text:     text.(string),
				Source:   source.(string),
				Page:     int(page.(int64)),
				Distance: sr.Scores[i],
			})
		}
	}

	logger.Debug("Vector search completed", zap.Int("k", k), zap.Int("results", len(matches)))
	return matches, nil
}

func (m *Index) Count(ctx context.Context) (int, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.collectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}
	var count int
	fmt.Sscanf(stats["row_count"], "%d", &count)
	return count, nil
}
