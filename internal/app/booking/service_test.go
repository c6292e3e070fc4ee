package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lacura/lacura-api/internal/app/booking"
	"github.com/lacura/lacura-api/internal/domain"
)

// fakeCalendar is an in-memory CalendarClient that records mutations.
type fakeCalendar struct {
	busy   []domain.BusyInterval
	events map[domain.BookingID]*domain.Booking

	deleted []domain.BookingID
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: make(map[domain.BookingID]*domain.Booking)}
}

func (f *fakeCalendar) GetFreeBusy(ctx context.Context, start, end time.Time) ([]domain.BusyInterval, error) {
	return f.busy, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, req domain.NewBookingRequest) (*domain.Booking, error) {
	b := &domain.Booking{
		ID:        domain.BookingID("bk-" + req.ClientEmail),
		Subject:   "La Cura Session - " + req.ClientName,
		Start:     req.Start,
		End:       req.Start.Add(domain.SlotDuration),
		Location:  req.Location,
		Attendees: []string{req.ClientEmail},
	}
	f.events[b.ID] = b
	return b, nil
}

func (f *fakeCalendar) ListEvents(ctx context.Context, categoryTag string) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0, len(f.events))
	for _, b := range f.events {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeCalendar) GetEvent(ctx context.Context, id domain.BookingID) (*domain.Booking, error) {
	b, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeCalendar) UpdateEventTime(ctx context.Context, id domain.BookingID, newStart time.Time) (*domain.Booking, error) {
	b, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b.Start = newStart
	b.End = newStart.Add(domain.SlotDuration)
	return b, nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, id domain.BookingID) error {
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	delete(f.events, id)
	return nil
}

func seedBooking(cal *fakeCalendar, id domain.BookingID, attendee string) {
	cal.events[id] = &domain.Booking{
		ID:        id,
		Subject:   "La Cura Session",
		Start:     time.Date(2024, time.November, 5, 14, 0, 0, 0, time.UTC),
		End:       time.Date(2024, time.November, 5, 14, 30, 0, 0, time.UTC),
		Attendees: []string{attendee},
	}
}

func TestAvailabilityFiltersBusySlots(t *testing.T) {
	cal := newFakeCalendar()
	cal.busy = []domain.BusyInterval{
		{
			Start: time.Date(2024, time.November, 4, 14, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.November, 4, 14, 30, 0, 0, time.UTC),
		},
	}
	svc := booking.NewService(cal)

	out, err := svc.Availability(context.Background(),
		time.Date(2024, time.November, 4, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 4, 18, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("Availability failed: %v", err)
	}

	if out.BusyCount != 1 {
		t.Errorf("expected 1 busy interval, got %d", out.BusyCount)
	}
	for _, s := range out.Slots {
		if s.Equal(time.Date(2024, time.November, 4, 14, 0, 0, 0, time.UTC)) {
			t.Error("the busy 14:00 slot must not be offered")
		}
	}
}

func TestCreateBooksThirtyMinutes(t *testing.T) {
	cal := newFakeCalendar()
	svc := booking.NewService(cal)

	start := time.Date(2024, time.November, 5, 14, 0, 0, 0, time.UTC)
	b, err := svc.Create(context.Background(), domain.NewBookingRequest{
		Start:       start,
		ClientEmail: "maria@example.com",
		ClientName:  "Maria",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if got := b.End.Sub(b.Start); got != domain.SlotDuration {
		t.Errorf("expected a 30-minute booking, got %v", got)
	}
	if !b.HasAttendee("maria@example.com") {
		t.Error("expected the client to be an attendee")
	}
}

func TestListFiltersByAttendee(t *testing.T) {
	cal := newFakeCalendar()
	seedBooking(cal, "bk-1", "maria@example.com")
	seedBooking(cal, "bk-2", "paolo@example.com")
	svc := booking.NewService(cal)

	bookings, err := svc.List(context.Background(), "maria@example.com")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}
	if bookings[0].ID != "bk-1" {
		t.Errorf("expected bk-1, got %q", bookings[0].ID)
	}
}

func TestCancelRejectsNonAttendeeWithoutDeleting(t *testing.T) {
	cal := newFakeCalendar()
	seedBooking(cal, "bk-1", "maria@example.com")
	svc := booking.NewService(cal)

	err := svc.Cancel(context.Background(), "bk-1", "intruder@example.com")

	if !errors.Is(err, domain.ErrNotAttendee) {
		t.Fatalf("expected ErrNotAttendee, got %v", err)
	}
	if len(cal.deleted) != 0 {
		t.Errorf("nothing may be deleted on an authorization failure, deleted %v", cal.deleted)
	}
}

func TestCancelDeletesForAttendee(t *testing.T) {
	cal := newFakeCalendar()
	seedBooking(cal, "bk-1", "maria@example.com")
	svc := booking.NewService(cal)

	if err := svc.Cancel(context.Background(), "bk-1", "maria@example.com"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if len(cal.deleted) != 1 || cal.deleted[0] != "bk-1" {
		t.Errorf("expected bk-1 deleted, got %v", cal.deleted)
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	svc := booking.NewService(newFakeCalendar())

	err := svc.Cancel(context.Background(), "missing", "maria@example.com")

	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRescheduleRejectsNonAttendee(t *testing.T) {
	cal := newFakeCalendar()
	seedBooking(cal, "bk-1", "maria@example.com")
	svc := booking.NewService(cal)

	_, err := svc.Reschedule(context.Background(), "bk-1",
		time.Date(2024, time.November, 6, 10, 0, 0, 0, time.UTC), "intruder@example.com")

	if !errors.Is(err, domain.ErrNotAttendee) {
		t.Fatalf("expected ErrNotAttendee, got %v", err)
	}
	if got := cal.events["bk-1"].Start.Hour(); got != 14 {
		t.Errorf("the booking must not move on an authorization failure, start hour %d", got)
	}
}

func TestRescheduleMovesBooking(t *testing.T) {
	cal := newFakeCalendar()
	seedBooking(cal, "bk-1", "maria@example.com")
	svc := booking.NewService(cal)

	newStart := time.Date(2024, time.November, 6, 10, 0, 0, 0, time.UTC)
	b, err := svc.Reschedule(context.Background(), "bk-1", newStart, "maria@example.com")
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	if !b.Start.Equal(newStart) {
		t.Errorf("expected start %v, got %v", newStart, b.Start)
	}
	if got := b.End.Sub(b.Start); got != domain.SlotDuration {
		t.Errorf("expected the 30-minute duration preserved, got %v", got)
	}
}

func TestCalendarNotConfigured(t *testing.T) {
	svc := booking.NewService(nil)

	if _, err := svc.List(context.Background(), "maria@example.com"); !errors.Is(err, booking.ErrCalendarNotConfigured) {
		t.Fatalf("expected ErrCalendarNotConfigured, got %v", err)
	}
}
