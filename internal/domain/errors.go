package domain

import "errors"

var (
	// ErrNotFound is returned when a booking, session, or other resource
	// does not exist upstream.
	ErrNotFound = errors.New("not found")

	// ErrNotAttendee is returned when the acting email address is not an
	// attendee of the target booking.
	ErrNotAttendee = errors.New("not an attendee of this booking")
)
