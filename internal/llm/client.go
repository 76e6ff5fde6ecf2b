package llm

import "context"

// Client is the capability surface shared by every generation/embedding
// backend. Backend failures never cross this boundary: implementations log
// the failure and return an empty result so callers always have something
// to render.
type Client interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) string
	GetEmbedding(ctx context.Context, text string) []float32
}
