// Package intent labels an incoming chat message with the booking workflow
// it most likely belongs to. It is a keyword prefilter, deliberately
// order-sensitive: the denylist wins, ties resolve to scheduling, and the
// downstream language model is trusted to reinterpret anything ambiguous.
package intent

import (
	"regexp"
	"strings"

	"github.com/lacura/lacura-api/internal/domain"
)

// Intent detection only ever looks at the first maxUserText characters of
// the latest user message.
const maxUserText = 1000

// Conversations with at most this many messages are "early": short
// greetings in them are always routed into the booking workflow.
const earlyConversationLimit = 3

var (
	clockPattern  = regexp.MustCompile(`\d+\s*(am|pm)`)
	digitPattern  = regexp.MustCompile(`\d+`)
	hhmmPattern   = regexp.MustCompile(`\d{1,2}:\d{2}`)
	weekdayTokens = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
)

// Result carries the chosen workflow plus the raw signals, which the
// orchestrator reuses to decide whether an availability lookup is needed.
type Result struct {
	Workflow domain.Workflow

	Schedule   bool
	Cancel     bool
	Reschedule bool

	InScheduleFlow   bool
	InCancelFlow     bool
	InRescheduleFlow bool

	EarlyConversation bool

	// ProvidingDetails is set when the user appears to be supplying
	// booking details (an email, a clock time, a confirmation word)
	// rather than asking for slots.
	ProvidingDetails bool

	// UserText is the truncated latest user message the signals were
	// computed from.
	UserText string
}

// Classify labels the latest user message in the conversation.
func Classify(messages []domain.ChatMessage) Result {
	userText := latestContent(messages, domain.RoleUser)
	if len(userText) > maxUserText {
		userText = userText[:maxUserText]
	}
	lower := strings.ToLower(userText)

	lastAssistant := strings.ToLower(latestContent(messages, domain.RoleAssistant))

	r := Result{
		UserText:          userText,
		EarlyConversation: len(messages) <= earlyConversationLimit,
		InScheduleFlow: containsAny(lastAssistant,
			"schedule", "available", "slots", "date or time"),
		InCancelFlow:     strings.Contains(lastAssistant, "cancel") && strings.Contains(lastAssistant, "email"),
		InRescheduleFlow: strings.Contains(lastAssistant, "reschedule") && strings.Contains(lastAssistant, "email"),
	}

	r.Schedule = isScheduleQuery(lower, r)
	r.Cancel = isCancelQuery(lower, r)
	r.Reschedule = isRescheduleQuery(lower, r)
	r.ProvidingDetails = isProvidingDetails(lower)

	switch {
	case isUnrelated(lower) && strings.TrimSpace(userText) != "":
		// FAQ-style questions are actively excluded from the booking
		// workflow. Empty input never lands here, so greetings pass.
		r.Workflow = domain.WorkflowUnrelated
	case r.Cancel && !r.Schedule && !r.Reschedule:
		r.Workflow = domain.WorkflowCancel
	case r.Reschedule && !r.Schedule && !r.Cancel:
		r.Workflow = domain.WorkflowReschedule
	default:
		// Ties and everything unclear resolve to scheduling; the model
		// adjusts from conversation context.
		r.Workflow = domain.WorkflowSchedule
	}

	return r
}

func isScheduleQuery(lower string, r Result) bool {
	if containsAny(lower,
		"schedule", "book", "booking",
		"set up", "make an appointment", "need an appointment",
		"want to see", "get a time", "available time", "when are you available") {
		return true
	}
	if strings.Contains(lower, "appointment") &&
		!strings.Contains(lower, "cancel") && !strings.Contains(lower, "reschedule") {
		return true
	}
	// Continuation phrases only count once a scheduling exchange is
	// already underway.
	if r.InScheduleFlow {
		if containsAny(lower,
			"propose", "suggest", "show me", "what times", "what slots",
			"any time", "any slot", "prefer", "date", "time", "tomorrow") {
			return true
		}
		if clockPattern.MatchString(lower) || containsAny(lower, weekdayTokens...) {
			return true
		}
	}
	if r.EarlyConversation && containsAny(lower, "hi", "hello", "help") {
		return true
	}
	return false
}

func isCancelQuery(lower string, r Result) bool {
	if containsAny(lower, "cancel", "remove", "delete", "can't make it", "cannot make it") {
		return true
	}
	if r.InCancelFlow {
		if strings.Contains(lower, "@") || digitPattern.MatchString(lower) {
			return true
		}
		if containsAny(lower, "first", "second", "yes", "confirm") {
			return true
		}
	}
	return false
}

func isRescheduleQuery(lower string, r Result) bool {
	if containsAny(lower,
		"reschedule", "move", "change",
		"different time", "different date", "another time", "another date") {
		return true
	}
	if r.InRescheduleFlow {
		if strings.Contains(lower, "@") || digitPattern.MatchString(lower) {
			return true
		}
		if containsAny(lower, "prefer", "date", "time") {
			return true
		}
	}
	return false
}

// isUnrelated is the informational denylist. The precedence quirks are
// kept as-is: "what is" only trips combined with service/practice talk,
// and "appointment" rescues service/practice mentions but not price ones.
func isUnrelated(lower string) bool {
	if containsAny(lower,
		"info about", "tell me about",
		"nutrition", "diet", "recipe", "ingredient", "menu",
		"price", "cost", "how much") {
		return true
	}
	if strings.Contains(lower, "what is") &&
		(strings.Contains(lower, "service") || strings.Contains(lower, "practice")) {
		return true
	}
	if strings.Contains(lower, "practice") && !strings.Contains(lower, "appointment") {
		return true
	}
	if strings.Contains(lower, "service") && !strings.Contains(lower, "appointment") {
		return true
	}
	return false
}

func isProvidingDetails(lower string) bool {
	if strings.Contains(lower, "@") || hhmmPattern.MatchString(lower) {
		return true
	}
	return containsAny(lower, "yes", "confirm", "that works", "sounds good", "perfect")
}

func latestContent(messages []domain.ChatMessage, role domain.Role) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == role {
			return messages[i].Content
		}
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
