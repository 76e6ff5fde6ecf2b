package llm

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/pkg/logger"
)

// OpenAIClient talks to any OpenAI-compatible chat/embeddings API. Groq and
// Gemini expose such endpoints, so all three hosted providers share this
// implementation and differ only in base URL, key and model.
type OpenAIClient struct {
	client         *openai.Client
	name           string
	model          string
	embeddingModel string
	temperature    float32
	maxTokens      int
	timeout        time.Duration
}

func NewOpenAIClient(name, apiKey, baseURL, model, embeddingModel string, temperature float32, maxTokens, timeoutSec int) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	logger.Info("Generation client initialized",
		zap.String("provider", name),
		zap.String("model", model),
		zap.String("embedding_model", embeddingModel),
	)

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(cfg),
		name:           name,
		model:          model,
		embeddingModel: embeddingModel,
		temperature:    temperature,
		maxTokens:      maxTokens,
		timeout:        time.Duration(timeoutSec) * time.Second,
	}
}

func (c *OpenAIClient) Name() string { return c.name }

func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		logger.Error("Text generation failed", zap.String("provider", c.name), zap.Error(err))
		return ""
	}
	if len(resp.Choices) == 0 {
		logger.Warn("Text generation returned no choices", zap.String("provider", c.name))
		return ""
	}

	logger.Debug("Text generated",
		zap.String("provider", c.name),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content
}

func (c *OpenAIClient) GetEmbedding(ctx context.Context, text string) []float32 {
	if c.embeddingModel == "" {
		logger.Warn("Provider does not support embeddings", zap.String("provider", c.name))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		logger.Error("Embedding failed", zap.String("provider", c.name), zap.Error(err))
		return nil
	}
	if len(resp.Data) == 0 {
		return nil
	}

	embedding := make([]float32, len(resp.Data[0].Embedding))
	copy(embedding, resp.Data[0].Embedding)
	return embedding
}
