package knowledge_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lacura/lacura-api/internal/app/knowledge"
	"github.com/lacura/lacura-api/internal/domain"
)

type fakeSearch struct {
	ensured int
	docs    []domain.SearchDocument
}

func (f *fakeSearch) EnsureIndex(ctx context.Context) error {
	f.ensured++
	return nil
}

func (f *fakeSearch) Upsert(ctx context.Context, docs []domain.SearchDocument) (*domain.UpsertResult, error) {
	f.docs = append(f.docs, docs...)
	return &domain.UpsertResult{Succeeded: len(docs)}, nil
}

func (f *fakeSearch) Search(ctx context.Context, query string, limit int) ([]domain.SearchDocument, error) {
	return nil, nil
}

func TestIngestShapesDocuments(t *testing.T) {
	search := &fakeSearch{}
	svc := knowledge.NewService(search)

	result, err := svc.Ingest(context.Background(), []knowledge.IngestInput{
		{Content: "Olive oil basics"},
		{ID: "doc-2", Content: "Seasonal menus", Source: "blog", Title: "Menus"},
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.Succeeded != 2 {
		t.Fatalf("expected 2 upserted, got %d", result.Succeeded)
	}
	if search.ensured != 1 {
		t.Errorf("expected the index to be ensured once, got %d", search.ensured)
	}

	first := search.docs[0]
	if first.ID == "" {
		t.Error("expected a generated id")
	}
	if first.Source != "manual" {
		t.Errorf("expected the manual default source, got %q", first.Source)
	}
	if search.docs[1].ID != "doc-2" || search.docs[1].Source != "blog" {
		t.Errorf("expected the explicit id and source kept, got %+v", search.docs[1])
	}
}

func TestIngestTruncatesOnRuneBoundary(t *testing.T) {
	search := &fakeSearch{}
	svc := knowledge.NewService(search)

	// One leading ASCII byte pushes the two-byte runes off even offsets,
	// so the cut point lands mid-rune.
	content := "a" + strings.Repeat("é", domain.MaxDocumentContent)

	_, err := svc.Ingest(context.Background(), []knowledge.IngestInput{{Content: content}})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	got := search.docs[0].Content
	if len(got) > domain.MaxDocumentContent {
		t.Fatalf("expected at most %d bytes, got %d", domain.MaxDocumentContent, len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a rune")
	}
}

func TestIngestWithoutBackend(t *testing.T) {
	svc := knowledge.NewService(nil)

	_, err := svc.Ingest(context.Background(), []knowledge.IngestInput{{Content: "x"}})
	if err != knowledge.ErrSearchNotConfigured {
		t.Fatalf("expected ErrSearchNotConfigured, got %v", err)
	}
}
