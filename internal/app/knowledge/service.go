// Package knowledge ingests site content into the search index that backs
// the assistant's retrieval context.
package knowledge

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lacura/lacura-api/internal/domain"
	"github.com/lacura/lacura-api/internal/observability"
)

// ErrSearchNotConfigured is returned when no search backend was wired in.
var ErrSearchNotConfigured = errors.New("search index is not configured")

type Service struct {
	search domain.SearchClient
	now    func() time.Time
}

func NewService(search domain.SearchClient) *Service {
	return &Service{
		search: search,
		now:    time.Now,
	}
}

// IngestInput is one document to upsert. Missing ids are generated and
// missing sources default to "manual".
type IngestInput struct {
	ID      string
	Content string
	Source  string
	Title   string
}

// Ingest shapes and upserts documents, creating the index first if this is
// the first write. Oversized content is truncated, never rejected; partial
// upsert failures are reported per key, not as an error.
func (s *Service) Ingest(ctx context.Context, inputs []IngestInput) (*domain.UpsertResult, error) {
	log := observability.LoggerFromContext(ctx).With("documents", len(inputs))

	if s.search == nil {
		return nil, ErrSearchNotConfigured
	}

	if err := s.search.EnsureIndex(ctx); err != nil {
		log.Error("index creation failed", "error", err)
		return nil, err
	}

	now := s.now().UTC()
	docs := make([]domain.SearchDocument, 0, len(inputs))
	for _, in := range inputs {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		content := truncate(in.Content, domain.MaxDocumentContent)
		source := in.Source
		if source == "" {
			source = "manual"
		}
		docs = append(docs, domain.SearchDocument{
			ID:        domain.DocumentID(id),
			Content:   content,
			Source:    source,
			Title:     in.Title,
			Timestamp: now,
		})
	}

	result, err := s.search.Upsert(ctx, docs)
	if err != nil {
		log.Error("upsert failed", "error", err)
		return nil, err
	}

	log.Info("documents ingested", "succeeded", result.Succeeded, "failed", len(result.FailedKeys))
	return result, nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
