package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lacura/lacura-api/internal/app/intent"
	"github.com/lacura/lacura-api/internal/domain"
)

// The booking workflows are driven by an explicit state machine. The
// language model phrases every reply, but which step we are on and which
// details we have captured live here, never in the prompt.

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	clockSelPattern = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)`)
	hhmmSelPattern  = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	indexPattern    = regexp.MustCompile(`\b(\d+)\b`)
	ordinalWords    = map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5}
)

func confirmed(lower string) bool {
	for _, w := range []string{"yes", "confirm", "that works", "sounds good", "perfect", "correct"} {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// advance applies the latest user message to the session, capturing slots,
// emails, selections and confirmations, and moving the step forward when a
// capture completes it. It never touches the calendar.
func advance(s *domain.ChatSession, res intent.Result, now time.Time) {
	lower := strings.ToLower(res.UserText)

	if s.Step == domain.StepNone {
		startWorkflow(s, res.Workflow)
	} else if w, ok := switchSignal(res); ok && w != s.Workflow {
		// "Actually, cancel it instead" mid-flow abandons the current
		// workflow. The email survives the switch; everything else is
		// re-collected.
		s.OfferedSlots = nil
		s.SelectedSlot = nil
		s.OfferedBookings = nil
		s.BookingID = ""
		s.Confirmed = false
		startWorkflow(s, w)
	}

	if email := emailPattern.FindString(res.UserText); email != "" {
		s.Email = email
	}

	switch s.Workflow {
	case domain.WorkflowSchedule:
		advanceSchedule(s, lower)
	case domain.WorkflowCancel:
		advanceCancel(s, lower)
	case domain.WorkflowReschedule:
		advanceReschedule(s, lower)
	}

	s.UpdatedAt = now
}

// switchSignal reports an explicit cancel or reschedule request strong
// enough to abandon a workflow already in progress. Detail answers
// (emails, times, confirmation words) never re-route, and neither do
// messages matching more than one workflow.
func switchSignal(res intent.Result) (domain.Workflow, bool) {
	if res.ProvidingDetails {
		return "", false
	}
	switch {
	case res.Cancel && !res.Schedule && !res.Reschedule:
		return domain.WorkflowCancel, true
	case res.Reschedule && !res.Schedule && !res.Cancel:
		return domain.WorkflowReschedule, true
	}
	return "", false
}

func startWorkflow(s *domain.ChatSession, w domain.Workflow) {
	switch w {
	case domain.WorkflowCancel:
		s.Workflow = domain.WorkflowCancel
		s.Step = domain.StepAwaitingEmail
	case domain.WorkflowReschedule:
		s.Workflow = domain.WorkflowReschedule
		s.Step = domain.StepAwaitingEmail
	default:
		s.Workflow = domain.WorkflowSchedule
		s.Step = domain.StepAwaitingTime
	}
}

func advanceSchedule(s *domain.ChatSession, lower string) {
	switch s.Step {
	case domain.StepAwaitingTime:
		if slot := matchSlot(lower, s.OfferedSlots); slot != nil {
			s.SelectedSlot = slot
			s.Step = domain.StepAwaitingEmail
		}
		// An email offered early is kept but does not skip the step: the
		// script still asks in order.
	case domain.StepAwaitingEmail:
		if s.Email != "" {
			s.Step = domain.StepAwaitingConfirmation
		}
	case domain.StepAwaitingConfirmation:
		if confirmed(lower) {
			s.Confirmed = true
		}
	}
}

func advanceCancel(s *domain.ChatSession, lower string) {
	switch s.Step {
	case domain.StepAwaitingEmail:
		if s.Email != "" {
			s.Step = domain.StepAwaitingSelection
		}
	case domain.StepAwaitingSelection:
		if id, ok := matchBooking(lower, s.OfferedBookings); ok {
			s.BookingID = id
			s.Step = domain.StepAwaitingConfirmation
		}
	case domain.StepAwaitingConfirmation:
		if confirmed(lower) {
			s.Confirmed = true
		}
	}
}

// Reschedule mirrors cancel up to picking the booking, then walks the
// schedule steps for the replacement time.
func advanceReschedule(s *domain.ChatSession, lower string) {
	switch s.Step {
	case domain.StepAwaitingEmail:
		if s.Email != "" {
			s.Step = domain.StepAwaitingSelection
		}
	case domain.StepAwaitingSelection:
		if id, ok := matchBooking(lower, s.OfferedBookings); ok {
			s.BookingID = id
			s.Step = domain.StepAwaitingTime
		}
	case domain.StepAwaitingTime:
		if slot := matchSlot(lower, s.OfferedSlots); slot != nil {
			s.SelectedSlot = slot
			s.Step = domain.StepAwaitingConfirmation
		}
	case domain.StepAwaitingConfirmation:
		if confirmed(lower) {
			s.Confirmed = true
		}
	}
}

// matchSlot resolves a spoken time ("2pm", "2:00 PM", "14:30") against the
// slots we previously offered. Only an offered slot can be selected.
func matchSlot(lower string, offered []time.Time) *time.Time {
	minutes, ok := parseClock(lower)
	if !ok {
		return nil
	}
	for _, slot := range offered {
		slot := slot.UTC()
		if slot.Hour()*60+slot.Minute() == minutes {
			return &slot
		}
	}
	// A 12-hour mention without am/pm ambiguity: try the afternoon reading.
	for _, slot := range offered {
		slot := slot.UTC()
		if slot.Hour()*60+slot.Minute() == minutes+12*60 {
			return &slot
		}
	}
	return nil
}

func parseClock(lower string) (minutesOfDay int, ok bool) {
	if m := clockSelPattern.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min := 0
		if m[2] != "" {
			min, _ = strconv.Atoi(m[2])
		}
		if h > 12 || min > 59 {
			return 0, false
		}
		if h == 12 {
			h = 0
		}
		if m[3] == "pm" {
			h += 12
		}
		return h*60 + min, true
	}
	if m := hhmmSelPattern.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h > 23 || min > 59 {
			return 0, false
		}
		return h*60 + min, true
	}
	return 0, false
}

// matchBooking resolves "1", "the second one" etc. against the numbered
// appointment list we previously showed.
func matchBooking(lower string, offered []domain.BookingID) (domain.BookingID, bool) {
	if len(offered) == 0 {
		return "", false
	}
	n := 0
	if m := indexPattern.FindStringSubmatch(lower); m != nil {
		n, _ = strconv.Atoi(m[1])
	} else {
		for word, v := range ordinalWords {
			if strings.Contains(lower, word) {
				n = v
				break
			}
		}
	}
	if n >= 1 && n <= len(offered) {
		return offered[n-1], true
	}
	if len(offered) == 1 && confirmed(lower) {
		return offered[0], true
	}
	return "", false
}
