package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/pkg/logger"
	"github.com/helix-agent/backend/pkg/utils"
)

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))
	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetResponse caches a full pipeline result keyed by query hash.
func (c *Client) SetResponse(ctx context.Context, queryHash string, response any) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := c.client.Set(ctx, "query:"+queryHash, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set query cache: %w", err)
	}

	logger.Debug("Response cached", zap.String("query_hash", queryHash))
	return nil
}

func (c *Client) GetResponse(ctx context.Context, queryHash string, response any) (bool, error) {
	data, err := c.client.Get(ctx, "query:"+queryHash).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get query cache: %w", err)
	}

	if err := json.Unmarshal(data, response); err != nil {
		return false, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	logger.Debug("Response cache hit", zap.String("query_hash", queryHash))
	return true, nil
}

func (c *Client) SetEmbedding(ctx context.Context, textHash string, embedding []float32) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	if err := c.client.Set(ctx, "embedding:"+textHash, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set embedding cache: %w", err)
	}
	return nil
}

func (c *Client) GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, "embedding:"+textHash).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get embedding cache: %w", err)
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}
	return embedding, true, nil
}

// CachingEmbedder wraps a generation client and serves repeated embedding
// lookups from redis. Text generation passes straight through.
type CachingEmbedder struct {
	inner llm.Client
	cache *Client
}

func NewCachingEmbedder(inner llm.Client, cache *Client) *CachingEmbedder {
	return &CachingEmbedder{inner: inner, cache: cache}
}

func (e *CachingEmbedder) Name() string {
	return e.inner.Name()
}

func (e *CachingEmbedder) GenerateText(ctx context.Context, prompt string) string {
	return e.inner.GenerateText(ctx, prompt)
}

func (e *CachingEmbedder) GetEmbedding(ctx context.Context, text string) []float32 {
	hash := utils.HashString(text)

	if embedding, ok, err := e.cache.GetEmbedding(ctx, hash); err != nil {
		logger.Warn("Embedding cache read failed", zap.Error(err))
	} else if ok {
		return embedding
	}

	embedding := e.inner.GetEmbedding(ctx, text)
	if len(embedding) > 0 {
		if err := e.cache.SetEmbedding(ctx, hash, embedding); err != nil {
			logger.Warn("Embedding cache write failed", zap.Error(err))
		}
	}
	return embedding
}
