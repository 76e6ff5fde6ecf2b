// Package ingestion turns policy documents into indexed, persisted chunks.
package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/internal/loader"
	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/internal/storage/sqlite"
	"github.com/helix-agent/backend/internal/vector"
	"github.com/helix-agent/backend/pkg/logger"
	"github.com/helix-agent/backend/pkg/utils"
)

const chunkSizeChars = 1000

var whitespace = regexp.MustCompile(`\s+`)

type Processor struct {
	db       *sqlite.Client
	index    vector.Index
	embedder llm.Client
}

// NewProcessor wires the ingestion path. db may be nil, in which case chunks
// are indexed but not recorded.
func NewProcessor(db *sqlite.Client, index vector.Index, embedder llm.Client) *Processor {
	return &Processor{db: db, index: index, embedder: embedder}
}

// IngestFile loads a policy file from disk (PDF or plain text) and indexes
// its page chunks.
func (p *Processor) IngestFile(ctx context.Context, path string) (int, error) {
	chunks, err := loader.LoadPolicies(path)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no text extracted from %s", path)
	}
	return p.ingest(ctx, chunks[0].Source, "file", chunks)
}

// IngestText chunks raw policy text by size and indexes it under the given
// document name.
func (p *Processor) IngestText(ctx context.Context, name, content string) (int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, fmt.Errorf("no content provided for %s", name)
	}

	var chunks []models.PolicyChunk
	for _, text := range chunkText(content, chunkSizeChars) {
		chunks = append(chunks, models.PolicyChunk{
			Text:   text,
			Source: name,
			Page:   len(chunks) + 1,
		})
	}
	return p.ingest(ctx, name, "text", chunks)
}

// IngestHTML strips markup and boilerplate from an HTML policy page, then
// ingests the remaining text.
func (p *Processor) IngestHTML(ctx context.Context, name, html string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := whitespace.ReplaceAllString(doc.Find("body").Text(), " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("no content extracted from html for %s", name)
	}

	count, err := p.IngestText(ctx, name, text)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (p *Processor) ingest(ctx context.Context, name, sourceType string, chunks []models.PolicyChunk) (int, error) {
	if err := p.index.Add(ctx, chunks, p.embedder); err != nil {
		return 0, fmt.Errorf("failed to index chunks: %w", err)
	}

	if p.db != nil {
		docID := utils.HashString(name)
		doc := &models.PolicyDocument{
			ID:         docID,
			Name:       name,
			SourceType: sourceType,
			Pages:      len(chunks),
			CreatedAt:  time.Now(),
		}
		if err := p.db.InsertPolicyDocument(doc); err != nil {
			logger.Warn("Failed to record policy document", zap.Error(err))
		} else {
			for _, chunk := range chunks {
				if err := p.db.InsertPolicyChunk(uuid.New().String(), docID, chunk.Page, chunk.Text); err != nil {
					logger.Warn("Failed to record policy chunk", zap.Error(err))
				}
			}
		}
	}

	logger.Info("Policy document ingested",
		zap.String("name", name),
		zap.String("source_type", sourceType),
		zap.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

func chunkText(text string, size int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, word := range words {
		if current.Len() > 0 && current.Len()+len(word)+1 > size {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
