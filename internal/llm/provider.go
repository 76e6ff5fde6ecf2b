package llm

import (
	"go.uber.org/zap"

	"github.com/helix-agent/backend/pkg/config"
	"github.com/helix-agent/backend/pkg/logger"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	groqDefaultModel   = "llama-3.3-70b-versatile"
	geminiDefaultModel = "gemini-1.5-flash"
	geminiEmbedModel   = "text-embedding-004"
)

type candidate struct {
	name           string
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
}

// SelectClient walks an ordered list of provider candidates and returns a
// client for the first one with a configured credential. The mock client is
// the terminal fallback so the service always starts.
func SelectClient(cfg *config.LLMConfig) Client {
	candidates := []candidate{
		{name: "openai", apiKey: cfg.OpenAIKey, model: cfg.Model, embeddingModel: cfg.EmbeddingModel},
		{name: "groq", apiKey: cfg.GroqKey, baseURL: groqBaseURL, model: groqDefaultModel},
		{name: "gemini", apiKey: cfg.GeminiKey, baseURL: geminiBaseURL, model: geminiDefaultModel, embeddingModel: geminiEmbedModel},
	}

	for _, c := range candidates {
		if c.apiKey == "" {
			continue
		}
		return NewOpenAIClient(c.name, c.apiKey, c.baseURL, c.model, c.embeddingModel,
			cfg.Temperature, cfg.MaxTokens, cfg.TimeoutSec)
	}

	logger.Warn("No provider credential configured, using mock client",
		zap.String("provider", "mock"))
	return NewMock()
}
