package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lacura/lacura-api/internal/domain"
)

// newTestGraphClient points a client at in-process token and API servers.
func newTestGraphClient(t *testing.T, api http.Handler) *GraphClient {
	t.Helper()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "test-token", ExpiresIn: 3600})
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(api)
	t.Cleanup(apiSrv.Close)

	c, err := NewGraphClient("tenant", "client", "secret", "andrea@example.com")
	if err != nil {
		t.Fatalf("NewGraphClient failed: %v", err)
	}
	c.tokenURL = tokenSrv.URL
	c.baseURL = apiSrv.URL
	return c
}

func TestGetFreeBusyParsesScheduleItems(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{
			"value": [{
				"scheduleItems": [
					{"start": {"dateTime": "2024-11-04T14:00:00.0000000", "timeZone": "UTC"},
					 "end":   {"dateTime": "2024-11-04T14:30:00.0000000", "timeZone": "UTC"}}
				]
			}]
		}`))
	})
	c := newTestGraphClient(t, api)

	busy, err := c.GetFreeBusy(context.Background(),
		time.Date(2024, time.November, 4, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 4, 18, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("GetFreeBusy failed: %v", err)
	}

	if len(busy) != 1 {
		t.Fatalf("expected 1 busy interval, got %d", len(busy))
	}
	want := time.Date(2024, time.November, 4, 14, 0, 0, 0, time.UTC)
	if !busy[0].Start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, busy[0].Start)
	}
}

func TestCreateEventFixedDuration(t *testing.T) {
	var received graphEvent
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received.ID = "bk-1"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(received)
	})
	c := newTestGraphClient(t, api)

	start := time.Date(2024, time.November, 5, 14, 0, 0, 0, time.UTC)
	b, err := c.CreateEvent(context.Background(), domain.NewBookingRequest{
		Start:        start,
		ClientEmail:  "maria@example.com",
		ClientName:   "Maria",
		DietaryNotes: "vegetarian",
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if received.Subject != "La Cura Session - Maria" {
		t.Errorf("expected the session subject, got %q", received.Subject)
	}
	if len(received.Categories) != 1 || received.Categories[0] != domain.BookingCategory {
		t.Errorf("expected the booking category tag, got %v", received.Categories)
	}
	if received.Body == nil || received.Body.Content == "" {
		t.Error("expected dietary notes in the event body")
	}
	if got := b.End.Sub(b.Start); got != domain.SlotDuration {
		t.Errorf("expected a 30-minute event, got %v", got)
	}
	if !b.HasAttendee("maria@example.com") {
		t.Error("expected the client as attendee")
	}
}

func TestGetEventNotFound(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newTestGraphClient(t, api)

	_, err := c.GetEvent(context.Background(), "missing")

	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	tokenCalls := 0
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "test-token", ExpiresIn: 3600})
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value": []}`))
	}))
	t.Cleanup(apiSrv.Close)

	c, err := NewGraphClient("tenant", "client", "secret", "andrea@example.com")
	if err != nil {
		t.Fatalf("NewGraphClient failed: %v", err)
	}
	c.tokenURL = tokenSrv.URL
	c.baseURL = apiSrv.URL

	ctx := context.Background()
	if _, err := c.ListEvents(ctx, domain.BookingCategory); err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if _, err := c.ListEvents(ctx, domain.BookingCategory); err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}

	if tokenCalls != 1 {
		t.Errorf("expected the token fetched once, got %d calls", tokenCalls)
	}
}

func TestParseGraphTimeFormats(t *testing.T) {
	for _, s := range []string{
		"2024-11-04T14:00:00Z",
		"2024-11-04T14:00:00.0000000",
	} {
		got, err := parseGraphTime(s)
		if err != nil {
			t.Fatalf("parseGraphTime(%q) failed: %v", s, err)
		}
		want := time.Date(2024, time.November, 4, 14, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("parseGraphTime(%q): expected %v, got %v", s, want, got)
		}
	}
}
