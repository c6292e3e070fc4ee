package domain

import (
	"context"
	"time"
)

// LLMClient defines how the application talks to a chat-completion model.
type LLMClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// CalendarClient wraps the remote calendar service. All operations are
// scoped to the single configured mailbox owner and authenticate with a
// service identity; authorization is the caller's problem.
type CalendarClient interface {
	GetFreeBusy(ctx context.Context, start, end time.Time) ([]BusyInterval, error)
	CreateEvent(ctx context.Context, req NewBookingRequest) (*Booking, error)
	ListEvents(ctx context.Context, categoryTag string) ([]*Booking, error)
	GetEvent(ctx context.Context, id BookingID) (*Booking, error)
	UpdateEventTime(ctx context.Context, id BookingID, newStart time.Time) (*Booking, error)
	DeleteEvent(ctx context.Context, id BookingID) error
}

// SearchClient wraps the remote text index.
type SearchClient interface {
	// EnsureIndex creates the index schema when absent. Idempotent.
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, docs []SearchDocument) (*UpsertResult, error)
	Search(ctx context.Context, query string, limit int) ([]SearchDocument, error)
}

// EmailClient sends a single HTML email and reports the provider's
// message id and final delivery status.
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, html string) (messageID, status string, err error)
}

// SessionStore persists conversation state between turns so the client may
// stay stateless. Get returns ErrNotFound for unknown conversation ids.
type SessionStore interface {
	Get(ctx context.Context, id ConversationID) (*ChatSession, error)
	Put(ctx context.Context, session *ChatSession) error
}
