package domain

// BookingCategory tags every calendar event this system creates. It is the
// only thing that distinguishes our bookings from unrelated entries in the
// owner's calendar.
const BookingCategory = "La Cura Booking"

// BusyInterval is a half-open [Start, End) interval during which the
// calendar owner is not available. Sourced from the calendar service,
// never produced locally.
type BusyInterval struct {
	Start Timestamp
	End   Timestamp
}

// Booking is a calendar event owned by the external calendar service.
// We never cache these; every read goes back to the service.
type Booking struct {
	ID        BookingID
	Subject   string
	Start     Timestamp
	End       Timestamp
	Location  string
	Attendees []string
	WebLink   string
}

// HasAttendee reports whether email is among the booking's attendees.
// Callers use this to enforce that only an attendee may cancel or move
// a booking; the calendar gateway itself does no authorization.
func (b *Booking) HasAttendee(email string) bool {
	for _, a := range b.Attendees {
		if a == email {
			return true
		}
	}
	return false
}

// NewBookingRequest describes an event to create. Duration is fixed at
// SlotDuration from Start.
type NewBookingRequest struct {
	Start        Timestamp
	ClientEmail  string
	ClientName   string
	Location     string
	DietaryNotes string
}

// SearchDocument is a unit of ingested site content. Content longer than
// MaxDocumentContent is truncated on ingest, not rejected.
type SearchDocument struct {
	ID        DocumentID `json:"id"`
	Content   string     `json:"content"`
	Source    string     `json:"source"`
	Title     string     `json:"title"`
	Timestamp Timestamp  `json:"timestamp"`
}

const MaxDocumentContent = 8000

// UpsertResult reports per-document outcomes; a partial failure is not an
// error at this level.
type UpsertResult struct {
	Succeeded  int
	FailedKeys []string
}
