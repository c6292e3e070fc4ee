package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lacura/lacura-api/internal/domain"
)

// SessionStore persists conversation state in a Firestore collection, for
// deployments that already live on GCP.
type SessionStore struct {
	client *firestore.Client
}

func NewSessionStore(ctx context.Context, projectID string) (*SessionStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for the Firestore session store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &SessionStore{client: client}, nil
}

func (s *SessionStore) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("chat_sessions")
}

func (s *SessionStore) sessionDoc(id domain.ConversationID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

type sessionDoc struct {
	Workflow        string      `firestore:"workflow"`
	Step            string      `firestore:"step"`
	OfferedSlots    []time.Time `firestore:"offered_slots"`
	SelectedSlot    *time.Time  `firestore:"selected_slot"`
	Email           string      `firestore:"email"`
	OfferedBookings []string    `firestore:"offered_bookings"`
	BookingID       string      `firestore:"booking_id"`
	Confirmed       bool        `firestore:"confirmed"`
	CreatedAt       time.Time   `firestore:"created_at"`
	UpdatedAt       time.Time   `firestore:"updated_at"`
}

func (s *SessionStore) Get(ctx context.Context, id domain.ConversationID) (*domain.ChatSession, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore get session: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore get session decode: %w", err)
	}

	session := &domain.ChatSession{
		ConversationID: id,
		Workflow:       domain.Workflow(doc.Workflow),
		Step:           domain.Step(doc.Step),
		OfferedSlots:   doc.OfferedSlots,
		SelectedSlot:   doc.SelectedSlot,
		Email:          doc.Email,
		BookingID:      domain.BookingID(doc.BookingID),
		Confirmed:      doc.Confirmed,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	for _, b := range doc.OfferedBookings {
		session.OfferedBookings = append(session.OfferedBookings, domain.BookingID(b))
	}
	return session, nil
}

func (s *SessionStore) Put(ctx context.Context, session *domain.ChatSession) error {
	doc := sessionDoc{
		Workflow:     string(session.Workflow),
		Step:         string(session.Step),
		OfferedSlots: session.OfferedSlots,
		SelectedSlot: session.SelectedSlot,
		Email:        session.Email,
		BookingID:    string(session.BookingID),
		Confirmed:    session.Confirmed,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
	for _, b := range session.OfferedBookings {
		doc.OfferedBookings = append(doc.OfferedBookings, string(b))
	}

	if _, err := s.sessionDoc(session.ConversationID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore put session: %w", err)
	}
	return nil
}

// CleanupExpired removes sessions untouched since the cutoff. Invoked
// periodically from main; Redis gets the same effect from its TTL.
func (s *SessionStore) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	iter := s.sessionsCol().Where("updated_at", "<", cutoff).Documents(ctx)
	defer iter.Stop()

	deleted := 0
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return deleted, fmt.Errorf("firestore cleanup query: %w", err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return deleted, fmt.Errorf("firestore cleanup delete: %w", err)
		}
		deleted++
	}
	return deleted, nil
}
