// Package calendar wraps the Microsoft Graph calendar API for the single
// configured mailbox owner. Authentication is an app-only client
// credential; the gateway performs no per-user authorization.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lacura/lacura-api/internal/domain"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0"
	loginBaseURL = "https://login.microsoftonline.com"
	graphScope   = "https://graph.microsoft.com/.default"

	// Refresh the cached token this long before it actually expires.
	tokenSlack = 2 * time.Minute
)

type GraphClient struct {
	httpClient *http.Client
	baseURL    string
	tokenURL   string

	ownerEmail   string
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewGraphClient(tenantID, clientID, clientSecret, ownerEmail string) (*GraphClient, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("GRAPH_TENANT_ID, GRAPH_CLIENT_ID and GRAPH_CLIENT_SECRET must be set")
	}
	if ownerEmail == "" {
		return nil, fmt.Errorf("CALENDAR_OWNER_EMAIL must be set")
	}

	return &GraphClient{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      graphBaseURL,
		tokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", loginBaseURL, tenantID),
		ownerEmail:   ownerEmail,
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

// ─────────────────────────────────────────────
// Token handling
// ─────────────────────────────────────────────

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *GraphClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSlack)) {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"scope":         {graphScope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("graph token request: status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("graph token decode: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// ─────────────────────────────────────────────
// Wire types
// ─────────────────────────────────────────────

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func utcDateTime(t time.Time) graphDateTime {
	return graphDateTime{DateTime: t.UTC().Format(time.RFC3339), TimeZone: "UTC"}
}

// Graph emits "2024-11-04T14:00:00.0000000" with the zone in a sibling
// field; accept that alongside RFC3339.
func parseGraphTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.9999999", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse graph time %q: %w", s, err)
	}
	return t.UTC(), nil
}

type graphAttendee struct {
	EmailAddress struct {
		Address string `json:"address"`
		Name    string `json:"name,omitempty"`
	} `json:"emailAddress"`
}

type graphEvent struct {
	ID       string        `json:"id,omitempty"`
	Subject  string        `json:"subject,omitempty"`
	Start    graphDateTime `json:"start"`
	End      graphDateTime `json:"end"`
	Location *struct {
		DisplayName string `json:"displayName"`
	} `json:"location,omitempty"`
	Body *struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body,omitempty"`
	Attendees  []graphAttendee `json:"attendees,omitempty"`
	Categories []string        `json:"categories,omitempty"`
	WebLink    string          `json:"webLink,omitempty"`
}

func (e *graphEvent) toBooking() (*domain.Booking, error) {
	start, err := parseGraphTime(e.Start.DateTime)
	if err != nil {
		return nil, err
	}
	end, err := parseGraphTime(e.End.DateTime)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		ID:      domain.BookingID(e.ID),
		Subject: e.Subject,
		Start:   start,
		End:     end,
		WebLink: e.WebLink,
	}
	if e.Location != nil {
		b.Location = e.Location.DisplayName
	}
	for _, a := range e.Attendees {
		b.Attendees = append(b.Attendees, a.EmailAddress.Address)
	}
	return b, nil
}

// ─────────────────────────────────────────────
// CalendarClient implementation
// ─────────────────────────────────────────────

func (c *GraphClient) GetFreeBusy(ctx context.Context, start, end time.Time) ([]domain.BusyInterval, error) {
	body := map[string]any{
		"schedules": []string{c.ownerEmail},
		"startTime": utcDateTime(start),
		"endTime":   utcDateTime(end),
	}

	var out struct {
		Value []struct {
			ScheduleItems []struct {
				Start graphDateTime `json:"start"`
				End   graphDateTime `json:"end"`
			} `json:"scheduleItems"`
		} `json:"value"`
	}

	path := fmt.Sprintf("/users/%s/calendar/getFreeBusy", url.PathEscape(c.ownerEmail))
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}

	if len(out.Value) == 0 {
		return nil, nil
	}

	var busy []domain.BusyInterval
	for _, item := range out.Value[0].ScheduleItems {
		s, err := parseGraphTime(item.Start.DateTime)
		if err != nil {
			return nil, err
		}
		e, err := parseGraphTime(item.End.DateTime)
		if err != nil {
			return nil, err
		}
		busy = append(busy, domain.BusyInterval{Start: s, End: e})
	}
	return busy, nil
}

func (c *GraphClient) CreateEvent(ctx context.Context, req domain.NewBookingRequest) (*domain.Booking, error) {
	start := req.Start.UTC()
	end := start.Add(domain.SlotDuration)

	name := req.ClientName
	if name == "" {
		name = req.ClientEmail
	}

	content := "Client: " + req.ClientEmail
	if req.DietaryNotes != "" {
		content += "\n\nDietary Notes: " + req.DietaryNotes
	}

	ev := graphEvent{
		Subject:    "La Cura Session - " + name,
		Start:      utcDateTime(start),
		End:        utcDateTime(end),
		Categories: []string{domain.BookingCategory},
	}
	ev.Body = &struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	}{ContentType: "text", Content: content}
	if req.Location != "" {
		ev.Location = &struct {
			DisplayName string `json:"displayName"`
		}{DisplayName: req.Location}
	}
	var attendee graphAttendee
	attendee.EmailAddress.Address = req.ClientEmail
	ev.Attendees = []graphAttendee{attendee}

	var created graphEvent
	path := fmt.Sprintf("/users/%s/calendar/events", url.PathEscape(c.ownerEmail))
	if err := c.do(ctx, http.MethodPost, path, ev, &created); err != nil {
		return nil, err
	}
	return created.toBooking()
}

func (c *GraphClient) ListEvents(ctx context.Context, categoryTag string) ([]*domain.Booking, error) {
	q := url.Values{
		"$filter": {fmt.Sprintf("categories/any(c: c eq '%s')", categoryTag)},
		"$select": {"id,subject,start,end,location,attendees,webLink"},
	}
	path := fmt.Sprintf("/users/%s/calendar/events?%s", url.PathEscape(c.ownerEmail), q.Encode())

	var out struct {
		Value []graphEvent `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	bookings := make([]*domain.Booking, 0, len(out.Value))
	for i := range out.Value {
		b, err := out.Value[i].toBooking()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (c *GraphClient) GetEvent(ctx context.Context, id domain.BookingID) (*domain.Booking, error) {
	var ev graphEvent
	if err := c.do(ctx, http.MethodGet, c.eventPath(id), nil, &ev); err != nil {
		return nil, err
	}
	return ev.toBooking()
}

// UpdateEventTime moves an event; the end is always recomputed as start
// plus the fixed slot duration, arbitrary durations are unsupported.
func (c *GraphClient) UpdateEventTime(ctx context.Context, id domain.BookingID, newStart time.Time) (*domain.Booking, error) {
	start := newStart.UTC()
	patch := map[string]any{
		"start": utcDateTime(start),
		"end":   utcDateTime(start.Add(domain.SlotDuration)),
	}

	var ev graphEvent
	if err := c.do(ctx, http.MethodPatch, c.eventPath(id), patch, &ev); err != nil {
		return nil, err
	}
	return ev.toBooking()
}

func (c *GraphClient) DeleteEvent(ctx context.Context, id domain.BookingID) error {
	return c.do(ctx, http.MethodDelete, c.eventPath(id), nil, nil)
}

func (c *GraphClient) eventPath(id domain.BookingID) string {
	return fmt.Sprintf("/users/%s/calendar/events/%s", url.PathEscape(c.ownerEmail), url.PathEscape(string(id)))
}

// ─────────────────────────────────────────────
// HTTP plumbing
// ─────────────────────────────────────────────

func (c *GraphClient) do(ctx context.Context, method, path string, body, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var apiErr struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("graph %s %s: status %d code=%s", method, path, resp.StatusCode, apiErr.Error.Code)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("graph %s %s decode: %w", method, path, err)
	}
	return nil
}
