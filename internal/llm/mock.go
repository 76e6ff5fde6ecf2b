package llm

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync/atomic"
)

// MockDimension is the embedding size produced by the mock client.
const MockDimension = 768

// Mock is the deterministic stub backend used when no provider credential is
// configured, and by tests. Embeddings are a normalized hashed bag of words,
// so identical texts always embed identically and exact-text queries come
// back at zero distance.
type Mock struct {
	GenerateCalls  atomic.Int64
	EmbeddingCalls atomic.Int64
}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string { return "mock" }

func (m *Mock) GenerateText(_ context.Context, prompt string) string {
	m.GenerateCalls.Add(1)
	if len(prompt) > 50 {
		prompt = prompt[:50]
	}
	return "Mock response to: " + prompt + "..."
}

func (m *Mock) GetEmbedding(_ context.Context, text string) []float32 {
	m.EmbeddingCalls.Add(1)

	vec := make([]float32, MockDimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%MockDimension]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec
}
