package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lacura/lacura-api/internal/app/booking"
	"github.com/lacura/lacura-api/internal/app/chat"
	"github.com/lacura/lacura-api/internal/app/content"
	"github.com/lacura/lacura-api/internal/app/knowledge"
	"github.com/lacura/lacura-api/internal/domain"
	"github.com/lacura/lacura-api/internal/observability"
)

type Server struct {
	chat      *chat.Service
	bookings  *booking.Service
	knowledge *knowledge.Service
	email     domain.EmailClient

	// Sender address used when /email/send omits "from". Empty when no
	// email client is configured.
	defaultSender string

	// Diagnostic mode echoes upstream error detail in 500 responses.
	// Only enabled outside cloud mode.
	diagnostic bool
}

type ServerConfig struct {
	Email         domain.EmailClient
	DefaultSender string
	Diagnostic    bool
}

func NewServer(
	chatSvc *chat.Service,
	bookingSvc *booking.Service,
	knowledgeSvc *knowledge.Service,
	cfg ServerConfig,
) http.Handler {
	s := &Server{
		chat:          chatSvc,
		bookings:      bookingSvc,
		knowledge:     knowledgeSvc,
		email:         cfg.Email,
		defaultSender: cfg.DefaultSender,
		diagnostic:    cfg.Diagnostic,
	}

	mux := http.NewServeMux()

	// /chat/ask → one conversation turn (POST)
	mux.HandleFunc("/chat/ask", s.handleChatAsk)

	// /bookings/availability → free slots (POST)
	// /bookings/create       → book a session (POST)
	// /bookings/list         → bookings for an attendee (GET)
	// /bookings/cancel       → cancel a booking (POST)
	// /bookings/reschedule   → move a booking (POST)
	mux.HandleFunc("/bookings/", s.handleBookings)

	mux.HandleFunc("/email/send", s.handleEmailSend)
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/content/generate", s.handleContentGenerate)

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatAskRequest struct {
	ConversationID string        `json:"conversation_id,omitempty"`
	Messages       []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatAskResponse struct {
	ConversationID string      `json:"conversation_id"`
	Message        chatMessage `json:"message"`
}

type availabilityRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type availabilityResponse struct {
	Slots     []time.Time `json:"slots"`
	BusyCount int         `json:"busy_count"`
}

type createBookingRequest struct {
	Start        time.Time `json:"start"`
	ClientEmail  string    `json:"client_email"`
	ClientName   string    `json:"client_name"`
	Location     string    `json:"location,omitempty"`
	DietaryNotes string    `json:"dietary_notes,omitempty"`
}

type bookingResponse struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Location  string    `json:"location,omitempty"`
	Attendees []string  `json:"attendees"`
	WebLink   string    `json:"web_link,omitempty"`
}

type listBookingsResponse struct {
	Bookings []bookingResponse `json:"bookings"`
}

type cancelBookingRequest struct {
	BookingID   string `json:"booking_id"`
	ClientEmail string `json:"client_email"`
}

type rescheduleBookingRequest struct {
	BookingID   string    `json:"booking_id"`
	ClientEmail string    `json:"client_email"`
	NewStart    time.Time `json:"new_start"`
}

type sendEmailRequest struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type sendEmailResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

type ingestRequest struct {
	Documents []ingestDocument `json:"documents"`

	// Single-document shorthand: {"text": ..., "source"?, "title"?}.
	Text   string `json:"text,omitempty"`
	Source string `json:"source,omitempty"`
	Title  string `json:"title,omitempty"`
}

type ingestDocument struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
	Title   string `json:"title,omitempty"`
}

type ingestResponse struct {
	Succeeded  int      `json:"succeeded"`
	FailedKeys []string `json:"failed_keys,omitempty"`
}

type generateContentRequest struct {
	Type           string `json:"type"`
	Topic          string `json:"topic"`
	Tone           string `json:"tone,omitempty"`
	PracticeType   string `json:"practice_type,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
	Length         string `json:"length,omitempty"`
}

type generateContentResponse struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

// /bookings/{action}
func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/bookings/")

	switch action {
	case "availability":
		requirePost(w, r, s.handleAvailability)
	case "create":
		requirePost(w, r, s.handleCreateBooking)
	case "list":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleListBookings(w, r)
	case "cancel":
		requirePost(w, r, s.handleCancelBooking)
	case "reschedule":
		requirePost(w, r, s.handleRescheduleBooking)
	default:
		http.NotFound(w, r)
	}
}

func requirePost(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	h(w, r)
}

// ─────────────────────────────────────────────
// Chat
// ─────────────────────────────────────────────

func (s *Server) handleChatAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatAskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if len(req.Messages) == 0 {
		badRequest(w, "messages is required")
		return
	}

	messages := make([]domain.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role, ok := parseRole(m.Role)
		if !ok {
			badRequest(w, "message role must be system, user or assistant")
			return
		}
		messages = append(messages, domain.ChatMessage{Role: role, Content: m.Content})
	}
	if messages[len(messages)-1].Role != domain.RoleUser {
		badRequest(w, "last message must be from the user")
		return
	}

	out, err := s.chat.Ask(r.Context(), chat.AskInput{
		ConversationID: domain.ConversationID(req.ConversationID),
		Messages:       messages,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatAskResponse{
		ConversationID: string(out.ConversationID),
		Message: chatMessage{
			Role:    string(out.Message.Role),
			Content: out.Message.Content,
		},
	})
}

func parseRole(s string) (domain.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "system":
		return domain.RoleSystem, true
	case "user":
		return domain.RoleUser, true
	case "assistant":
		return domain.RoleAssistant, true
	default:
		return "", false
	}
}

// ─────────────────────────────────────────────
// Bookings
// ─────────────────────────────────────────────

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Start.IsZero() || req.End.IsZero() {
		badRequest(w, "start and end are required")
		return
	}
	if !req.End.After(req.Start) {
		badRequest(w, "end must be after start")
		return
	}

	out, err := s.bookings.Availability(r.Context(), req.Start, req.End)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	slots := out.Slots
	if slots == nil {
		slots = []time.Time{}
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		Slots:     slots,
		BusyCount: out.BusyCount,
	})
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Start.IsZero() {
		badRequest(w, "start is required")
		return
	}
	if req.ClientEmail == "" {
		badRequest(w, "client_email is required")
		return
	}

	// client_name is optional; the calendar adapter falls back to the
	// email address in the event subject.
	b, err := s.bookings.Create(r.Context(), domain.NewBookingRequest{
		Start:        req.Start,
		ClientEmail:  req.ClientEmail,
		ClientName:   req.ClientName,
		Location:     req.Location,
		DietaryNotes: req.DietaryNotes,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		badRequest(w, "email query parameter is required")
		return
	}

	bookings, err := s.bookings.List(r.Context(), email)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := listBookingsResponse{Bookings: make([]bookingResponse, 0, len(bookings))}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.BookingID == "" {
		badRequest(w, "booking_id is required")
		return
	}
	if req.ClientEmail == "" {
		badRequest(w, "client_email is required")
		return
	}

	err := s.bookings.Cancel(r.Context(), domain.BookingID(req.BookingID), req.ClientEmail)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleRescheduleBooking(w http.ResponseWriter, r *http.Request) {
	var req rescheduleBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.BookingID == "" {
		badRequest(w, "booking_id is required")
		return
	}
	if req.ClientEmail == "" {
		badRequest(w, "client_email is required")
		return
	}
	if req.NewStart.IsZero() {
		badRequest(w, "new_start is required")
		return
	}

	b, err := s.bookings.Reschedule(r.Context(), domain.BookingID(req.BookingID), req.NewStart, req.ClientEmail)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	attendees := b.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return bookingResponse{
		ID:        string(b.ID),
		Subject:   b.Subject,
		Start:     b.Start,
		End:       b.End,
		Location:  b.Location,
		Attendees: attendees,
		WebLink:   b.WebLink,
	}
}

// ─────────────────────────────────────────────
// Email, ingest and content
// ─────────────────────────────────────────────

func (s *Server) handleEmailSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.email == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "email is not configured",
		})
		return
	}

	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.To == "" {
		badRequest(w, "to is required")
		return
	}

	subject := req.Subject
	if subject == "" {
		subject = "Message from Wellness Practice"
	}
	html := req.HTML
	if html == "" {
		html = "<p>Hello from La Cura.</p>"
	}
	from := req.From
	if from == "" {
		from = s.defaultSender
	}

	messageID, status, err := s.email.Send(r.Context(), from, req.To, subject, html)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sendEmailResponse{MessageID: messageID, Status: status})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	docs := req.Documents
	if len(docs) == 0 && req.Text != "" {
		docs = []ingestDocument{{Content: req.Text, Source: req.Source, Title: req.Title}}
	}
	if len(docs) == 0 {
		badRequest(w, "no content provided")
		return
	}
	for _, d := range docs {
		if d.Content == "" {
			badRequest(w, "every document needs content")
			return
		}
	}

	inputs := make([]knowledge.IngestInput, 0, len(docs))
	for _, d := range docs {
		inputs = append(inputs, knowledge.IngestInput{
			ID:      d.ID,
			Content: d.Content,
			Source:  d.Source,
			Title:   d.Title,
		})
	}

	result, err := s.knowledge.Ingest(r.Context(), inputs)
	if err != nil {
		if errors.Is(err, knowledge.ErrSearchNotConfigured) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "search index is not configured",
			})
			return
		}
		s.internalError(w, r, err)
		return
	}

	// Partial upsert failures are a 207, never a hard error.
	status := http.StatusOK
	if len(result.FailedKeys) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, ingestResponse{
		Succeeded:  result.Succeeded,
		FailedKeys: result.FailedKeys,
	})
}

func (s *Server) handleContentGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req generateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Topic == "" {
		badRequest(w, "topic is required")
		return
	}

	out, err := content.Generate(content.Request{
		Type:           content.Type(strings.ToLower(strings.TrimSpace(req.Type))),
		Topic:          req.Topic,
		Tone:           content.Tone(strings.ToLower(strings.TrimSpace(req.Tone))),
		PracticeType:   req.PracticeType,
		TargetAudience: req.TargetAudience,
		Length:         content.Length(strings.ToLower(strings.TrimSpace(req.Length))),
	})
	if err != nil {
		if errors.Is(err, content.ErrUnsupportedType) {
			badRequest(w, "type must be social_post, newsletter, email_sequence or blog_post")
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateContentResponse{
		Type:    req.Type,
		Content: out,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

// writeDomainError maps booking sentinel errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "booking not found",
		})
	case errors.Is(err, domain.ErrNotAttendee):
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": "only an attendee may modify this booking",
		})
	case errors.Is(err, booking.ErrCalendarNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "calendar is not configured",
		})
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	body := map[string]string{
		"error":      "internal server error",
		"request_id": observability.RequestID(r.Context()),
	}
	if s.diagnostic && err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
