package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lacura/lacura-api/internal/adapters/storage/memory"
	"github.com/lacura/lacura-api/internal/domain"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()

	session := &domain.ChatSession{
		ConversationID: "c1",
		Workflow:       domain.WorkflowSchedule,
		Step:           domain.StepAwaitingEmail,
	}
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Step != domain.StepAwaitingEmail {
		t.Errorf("expected awaiting_email, got %q", got.Step)
	}

	// The store hands out copies; mutating one must not leak back.
	got.Step = domain.StepAwaitingConfirmation
	again, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Step != domain.StepAwaitingEmail {
		t.Errorf("a returned session must be a copy, got step %q", again.Step)
	}
}

func TestSessionStoreUnknownID(t *testing.T) {
	store := memory.NewSessionStore()

	_, err := store.Get(context.Background(), "missing")

	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
