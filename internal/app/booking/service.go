// Package booking performs the actual calendar mutations the chat
// assistant only talks about: availability checks, event creation,
// cancellation and rescheduling, with attendee-based authorization.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/lacura/lacura-api/internal/app/scheduling"
	"github.com/lacura/lacura-api/internal/domain"
	"github.com/lacura/lacura-api/internal/observability"
)

// ErrCalendarNotConfigured is returned when no calendar backend was wired in.
var ErrCalendarNotConfigured = errors.New("calendar is not configured")

type Service struct {
	calendar domain.CalendarClient
	now      func() time.Time
}

func NewService(calendar domain.CalendarClient) *Service {
	return &Service{
		calendar: calendar,
		now:      time.Now,
	}
}

type AvailabilityOutput struct {
	Slots     []time.Time
	BusyCount int
}

// Availability returns the free 30-minute slots in [start, end] along with
// how many busy intervals the calendar reported.
func (s *Service) Availability(ctx context.Context, start, end time.Time) (*AvailabilityOutput, error) {
	if s.calendar == nil {
		return nil, ErrCalendarNotConfigured
	}
	log := observability.LoggerFromContext(ctx).With("start", start, "end", end)

	busy, err := s.calendar.GetFreeBusy(ctx, start, end)
	if err != nil {
		log.Error("free/busy lookup failed", "error", err)
		return nil, err
	}

	slots := scheduling.AvailableSlots(start, end, busy)
	log.Info("availability computed", "busy", len(busy), "slots", len(slots))

	return &AvailabilityOutput{Slots: slots, BusyCount: len(busy)}, nil
}

// Create books a fixed 30-minute session starting at req.Start.
func (s *Service) Create(ctx context.Context, req domain.NewBookingRequest) (*domain.Booking, error) {
	if s.calendar == nil {
		return nil, ErrCalendarNotConfigured
	}
	log := observability.LoggerFromContext(ctx).With(
		"client_email", req.ClientEmail,
		"start", req.Start,
	)

	booking, err := s.calendar.CreateEvent(ctx, req)
	if err != nil {
		log.Error("booking creation failed", "error", err)
		return nil, err
	}

	log.Info("booking created", "booking_id", booking.ID)
	return booking, nil
}

// List returns the system-created bookings the given email is an attendee
// of. Unrelated calendar entries never appear: only events carrying the
// booking category tag are considered.
func (s *Service) List(ctx context.Context, clientEmail string) ([]*domain.Booking, error) {
	if s.calendar == nil {
		return nil, ErrCalendarNotConfigured
	}
	events, err := s.calendar.ListEvents(ctx, domain.BookingCategory)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("booking list failed", "error", err)
		return nil, err
	}

	bookings := make([]*domain.Booking, 0, len(events))
	for _, e := range events {
		if e.HasAttendee(clientEmail) {
			bookings = append(bookings, e)
		}
	}
	return bookings, nil
}

// Cancel deletes a booking after verifying the acting email is one of its
// attendees. The event is fetched first; nothing is deleted on an
// authorization failure.
func (s *Service) Cancel(ctx context.Context, id domain.BookingID, clientEmail string) error {
	if s.calendar == nil {
		return ErrCalendarNotConfigured
	}
	log := observability.LoggerFromContext(ctx).With("booking_id", id, "client_email", clientEmail)

	event, err := s.calendar.GetEvent(ctx, id)
	if err != nil {
		log.Error("booking fetch failed", "error", err)
		return err
	}
	if !event.HasAttendee(clientEmail) {
		log.Warn("cancel rejected, not an attendee")
		return domain.ErrNotAttendee
	}

	if err := s.calendar.DeleteEvent(ctx, id); err != nil {
		log.Error("booking delete failed", "error", err)
		return err
	}

	log.Info("booking cancelled")
	return nil
}

// Reschedule moves a booking to newStart, keeping the fixed 30-minute
// duration. Same attendee check as Cancel.
func (s *Service) Reschedule(ctx context.Context, id domain.BookingID, newStart time.Time, clientEmail string) (*domain.Booking, error) {
	if s.calendar == nil {
		return nil, ErrCalendarNotConfigured
	}
	log := observability.LoggerFromContext(ctx).With(
		"booking_id", id,
		"client_email", clientEmail,
		"new_start", newStart,
	)

	event, err := s.calendar.GetEvent(ctx, id)
	if err != nil {
		log.Error("booking fetch failed", "error", err)
		return nil, err
	}
	if !event.HasAttendee(clientEmail) {
		log.Warn("reschedule rejected, not an attendee")
		return nil, domain.ErrNotAttendee
	}

	updated, err := s.calendar.UpdateEventTime(ctx, id, newStart)
	if err != nil {
		log.Error("booking update failed", "error", err)
		return nil, err
	}

	log.Info("booking rescheduled")
	return updated, nil
}
