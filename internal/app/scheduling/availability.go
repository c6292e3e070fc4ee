// Package scheduling derives bookable appointment slots from the calendar
// owner's busy intervals and the practice's business-hour rules.
package scheduling

import (
	"time"

	"github.com/lacura/lacura-api/internal/domain"
)

// Business hours, UTC. A slot must start at or after BusinessStartHour and
// strictly before BusinessEndHour.
const (
	BusinessStartHour = 9
	BusinessEndHour   = 18
)

// AvailableSlots returns the ordered start instants of every free
// 30-minute slot in [start, end). Candidates are generated by stepping in
// fixed 30-minute increments from start; each candidate is judged on its
// own (weekday, business hours, busy overlap), never clipped. A window with
// no qualifying slot yields an empty result, not an error.
func AvailableSlots(start, end time.Time, busy []domain.BusyInterval) []time.Time {
	var slots []time.Time

	end = end.UTC()
	for t := start.UTC(); !t.Add(domain.SlotDuration).After(end); t = t.Add(domain.SlotDuration) {
		if !inBusinessWindow(t) {
			continue
		}
		if overlapsAny(t, busy) {
			continue
		}
		slots = append(slots, t)
	}

	return slots
}

func inBusinessWindow(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := t.Hour()
	return h >= BusinessStartHour && h < BusinessEndHour
}

// overlapsAny uses the standard half-open overlap test: slot [t, t+30m)
// is busy iff t < busy.End && t+30m > busy.Start for some interval.
func overlapsAny(t time.Time, busy []domain.BusyInterval) bool {
	slotEnd := t.Add(domain.SlotDuration)
	for _, b := range busy {
		if t.Before(b.End) && slotEnd.After(b.Start) {
			return true
		}
	}
	return false
}
