package domain

import "time"

type ConversationID string
type BookingID string
type DocumentID string

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Workflow string

const (
	WorkflowSchedule   Workflow = "schedule"
	WorkflowCancel     Workflow = "cancel"
	WorkflowReschedule Workflow = "reschedule"
	WorkflowUnrelated  Workflow = "unrelated"
)

// SlotDuration is the fixed length of every bookable appointment.
const SlotDuration = 30 * time.Minute

type Timestamp = time.Time
