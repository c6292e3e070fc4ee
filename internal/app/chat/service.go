// Package chat is the conversation orchestrator: it routes a message into
// a booking workflow, advances the workflow state, gathers calendar and
// content context, and asks the language model for the reply.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lacura/lacura-api/internal/app/intent"
	"github.com/lacura/lacura-api/internal/app/scheduling"
	"github.com/lacura/lacura-api/internal/domain"
	"github.com/lacura/lacura-api/internal/observability"
)

// Default budgets for the two timed external calls. Whichever of the call
// and the timer resolves first wins; the loser is abandoned, not cancelled.
const (
	DefaultCalendarTimeout = 10 * time.Second
	DefaultLLMTimeout      = 30 * time.Second
)

const retrievalLimit = 3

type Service struct {
	llm      domain.LLMClient
	calendar domain.CalendarClient
	search   domain.SearchClient
	sessions domain.SessionStore

	systemPrompt    string
	calendarTimeout time.Duration
	llmTimeout      time.Duration
	now             func() time.Time
}

// Config tunes the orchestrator. Zero values fall back to the defaults.
type Config struct {
	SystemPrompt    string
	CalendarTimeout time.Duration
	LLMTimeout      time.Duration
}

func NewService(
	llm domain.LLMClient,
	calendar domain.CalendarClient,
	search domain.SearchClient,
	sessions domain.SessionStore,
	cfg Config,
) *Service {
	if cfg.CalendarTimeout <= 0 {
		cfg.CalendarTimeout = DefaultCalendarTimeout
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = DefaultLLMTimeout
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = basePrompt
	}

	return &Service{
		llm:             llm,
		calendar:        calendar,
		search:          search,
		sessions:        sessions,
		systemPrompt:    cfg.SystemPrompt,
		calendarTimeout: cfg.CalendarTimeout,
		llmTimeout:      cfg.LLMTimeout,
		now:             time.Now,
	}
}

type AskInput struct {
	ConversationID domain.ConversationID
	Messages       []domain.ChatMessage
}

type AskOutput struct {
	ConversationID domain.ConversationID
	Message        domain.ChatMessage
}

// Ask handles one conversation turn. It never mutates the calendar; actual
// booking changes are performed by the booking endpoints once the user has
// confirmed.
func (s *Service) Ask(ctx context.Context, in AskInput) (*AskOutput, error) {
	res := intent.Classify(in.Messages)

	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", in.ConversationID,
		"workflow", res.Workflow,
	)
	log.Info("chat turn",
		"message_count", len(in.Messages),
		"in_schedule_flow", res.InScheduleFlow,
		"in_cancel_flow", res.InCancelFlow,
		"in_reschedule_flow", res.InRescheduleFlow,
	)
	observability.ChatWorkflows.WithLabelValues(string(res.Workflow)).Inc()

	if res.Workflow == domain.WorkflowUnrelated {
		return &AskOutput{
			ConversationID: in.ConversationID,
			Message:        domain.ChatMessage{Role: domain.RoleAssistant, Content: unrelatedRefusal},
		}, nil
	}

	session := s.resolveSession(ctx, in, res)
	advance(session, res, s.now())

	prompt := s.systemPrompt + workflowScript(session.Workflow)

	if s.needsAvailability(session, res) {
		prompt += s.availabilitySection(ctx, session, res.UserText)
	}
	if s.needsAppointmentLookup(session) {
		prompt += s.appointmentsSection(ctx, session)
	}
	prompt += s.retrievalSection(ctx, res.UserText)

	reply := s.complete(ctx, prompt, in.Messages)

	s.persistSession(ctx, session)

	return &AskOutput{
		ConversationID: session.ConversationID,
		Message:        domain.ChatMessage{Role: domain.RoleAssistant, Content: reply},
	}, nil
}

// resolveSession loads the explicit session when the client sent a
// conversation id, and otherwise reconstructs an equivalent one from the
// message history so fully stateless clients keep working.
func (s *Service) resolveSession(ctx context.Context, in AskInput, res intent.Result) *domain.ChatSession {
	if in.ConversationID != "" && s.sessions != nil {
		session, err := s.sessions.Get(ctx, in.ConversationID)
		if err == nil {
			return session
		}
		if err != domain.ErrNotFound {
			observability.LoggerFromContext(ctx).Error("session load failed", "error", err)
		}
	}

	id := in.ConversationID
	if id == "" {
		id = domain.ConversationID(uuid.NewString())
	}

	session := &domain.ChatSession{
		ConversationID: id,
		CreatedAt:      s.now(),
		UpdatedAt:      s.now(),
	}
	deriveState(session, in.Messages, res)
	return session
}

// deriveState re-reads the previous assistant message the way the original
// stateless implementation did, so a history-only client lands on the same
// step the scripted exchange left off at.
func deriveState(session *domain.ChatSession, messages []domain.ChatMessage, res intent.Result) {
	startWorkflow(session, res.Workflow)

	var lastAssistant string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleAssistant {
			lastAssistant = strings.ToLower(messages[i].Content)
			break
		}
	}
	if lastAssistant == "" {
		return
	}

	switch {
	case strings.Contains(lastAssistant, "which one would you like"):
		session.Step = domain.StepAwaitingSelection
	case strings.Contains(lastAssistant, "email address"):
		session.Step = domain.StepAwaitingEmail
	case strings.Contains(lastAssistant, "sound good"),
		strings.Contains(lastAssistant, "is that correct"),
		strings.Contains(lastAssistant, "does that work"):
		session.Step = domain.StepAwaitingConfirmation
	case strings.Contains(lastAssistant, "which time works"),
		strings.Contains(lastAssistant, "available 30-minute slots"):
		session.Step = domain.StepAwaitingTime
	}
}

func (s *Service) needsAvailability(session *domain.ChatSession, res intent.Result) bool {
	if s.calendar == nil {
		return false
	}
	if session.Workflow != domain.WorkflowSchedule && session.Workflow != domain.WorkflowReschedule {
		return false
	}
	return session.Step == domain.StepAwaitingTime && !res.ProvidingDetails
}

func (s *Service) needsAppointmentLookup(session *domain.ChatSession) bool {
	if s.calendar == nil {
		return false
	}
	if session.Workflow != domain.WorkflowCancel && session.Workflow != domain.WorkflowReschedule {
		return false
	}
	return session.Step == domain.StepAwaitingSelection && session.Email != ""
}

// availabilitySection races the free/busy lookup against the calendar
// timeout. On timeout or failure the model is told to ask for a preferred
// time instead of presenting slots.
func (s *Service) availabilitySection(ctx context.Context, session *domain.ChatSession, userText string) string {
	log := observability.LoggerFromContext(ctx)
	window := scheduling.DefaultWindow(userText, s.now())

	type freeBusyResult struct {
		busy []domain.BusyInterval
		err  error
	}
	ch := make(chan freeBusyResult, 1)
	go func() {
		busy, err := s.calendar.GetFreeBusy(ctx, window.Start, window.End)
		ch <- freeBusyResult{busy: busy, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			log.Warn("availability check failed", "error", r.err)
			observability.UpstreamFailures.WithLabelValues("calendar", "error").Inc()
			return availabilityUnavailableNotice
		}
		slots := scheduling.AvailableSlots(window.Start, window.End, r.busy)
		session.OfferedSlots = slots
		log.Info("availability checked",
			"window_start", window.Start,
			"window_end", window.End,
			"busy", len(r.busy),
			"slots", len(slots),
		)
		return availabilityContext(slots)
	case <-time.After(s.calendarTimeout):
		log.Warn("availability check timed out", "timeout", s.calendarTimeout)
		observability.UpstreamFailures.WithLabelValues("calendar", "timeout").Inc()
		return availabilityUnavailableNotice
	}
}

func (s *Service) appointmentsSection(ctx context.Context, session *domain.ChatSession) string {
	log := observability.LoggerFromContext(ctx)

	events, err := s.calendar.ListEvents(ctx, domain.BookingCategory)
	if err != nil {
		log.Warn("appointment lookup failed", "error", err)
		observability.UpstreamFailures.WithLabelValues("calendar", "error").Inc()
		return availabilityUnavailableNotice
	}

	var mine []*domain.Booking
	for _, e := range events {
		if e.HasAttendee(session.Email) {
			mine = append(mine, e)
		}
	}

	session.OfferedBookings = session.OfferedBookings[:0]
	for _, b := range mine {
		session.OfferedBookings = append(session.OfferedBookings, b.ID)
	}

	return appointmentsContext(mine)
}

// retrievalSection adds keyword-search context from the content index.
// Strictly best effort: a missing or failing index never blocks the turn.
func (s *Service) retrievalSection(ctx context.Context, userText string) string {
	if s.search == nil || strings.TrimSpace(userText) == "" {
		return ""
	}
	docs, err := s.search.Search(ctx, userText, retrievalLimit)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("retrieval skipped", "error", err)
		observability.UpstreamFailures.WithLabelValues("search", "error").Inc()
		return ""
	}
	return retrievalContext(docs)
}

// complete races the model call against the reply timeout and substitutes
// the scripted fallbacks on timeout, failure, or an empty reply.
func (s *Service) complete(ctx context.Context, systemPrompt string, history []domain.ChatMessage) string {
	log := observability.LoggerFromContext(ctx)

	messages := make([]domain.ChatMessage, 0, len(history)+1)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		if m.Role == domain.RoleSystem {
			continue
		}
		messages = append(messages, m)
	}

	type llmResult struct {
		reply string
		err   error
	}
	ch := make(chan llmResult, 1)
	start := s.now()
	go func() {
		reply, err := s.llm.Complete(ctx, messages)
		ch <- llmResult{reply: reply, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			log.Error("llm call failed", "error", r.err)
			observability.UpstreamFailures.WithLabelValues("llm", "error").Inc()
			return llmFailureFallback
		}
		if strings.TrimSpace(r.reply) == "" {
			return emptyReplyFallback
		}
		log.Info("llm reply generated",
			"reply_length", len(r.reply),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return r.reply
	case <-time.After(s.llmTimeout):
		log.Warn("llm call timed out", "timeout", s.llmTimeout)
		observability.UpstreamFailures.WithLabelValues("llm", "timeout").Inc()
		return timeoutApology
	}
}

func (s *Service) persistSession(ctx context.Context, session *domain.ChatSession) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		observability.LoggerFromContext(ctx).Error("session save failed", "error", err)
	}
}
