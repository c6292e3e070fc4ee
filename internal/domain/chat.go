package domain

// ChatMessage is one turn of a conversation. The full history is resent
// by the client on every call; there is no message identity.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Step is where a booking workflow currently is. The zero value means no
// workflow is active.
type Step string

const (
	StepNone Step = ""

	StepAwaitingTime         Step = "awaiting_time"
	StepAwaitingEmail        Step = "awaiting_email"
	StepAwaitingConfirmation Step = "awaiting_confirmation"
	StepAwaitingSelection    Step = "awaiting_selection"
)

// ChatSession is the explicit conversation state attached to a conversation
// id. Clients that never send a conversation id still work: the same state
// is re-derived from the message history on every call.
type ChatSession struct {
	ConversationID ConversationID
	Workflow       Workflow
	Step           Step

	// Slot-filling fields, captured and validated in code. The language
	// model only phrases the replies.
	OfferedSlots    []Timestamp
	SelectedSlot    *Timestamp
	Email           string
	OfferedBookings []BookingID
	BookingID       BookingID
	Confirmed       bool

	CreatedAt Timestamp
	UpdatedAt Timestamp
}
