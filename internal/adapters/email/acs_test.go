package email_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lacura/lacura-api/internal/adapters/email"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte("test-access-key"))
}

func TestNewACSClientParsesConnectionString(t *testing.T) {
	c, err := email.NewACSClient("endpoint=https://acs.example.com/;accesskey="+testKey(), "no-reply@example.com")
	if err != nil {
		t.Fatalf("NewACSClient failed: %v", err)
	}
	if c.DefaultSender() != "no-reply@example.com" {
		t.Errorf("expected the default sender, got %q", c.DefaultSender())
	}
}

func TestNewACSClientRejectsBadConnectionStrings(t *testing.T) {
	for _, cs := range []string{
		"",
		"endpoint=https://acs.example.com",
		"accesskey=" + testKey(),
		"endpoint=https://acs.example.com;accesskey=not-base64!!!",
	} {
		if _, err := email.NewACSClient(cs, ""); err == nil {
			t.Errorf("expected an error for connection string %q", cs)
		}
	}
}

func TestSendSignsRequestAndReturnsStatus(t *testing.T) {
	var gotAuth, gotDate, gotHash string
	var gotBody struct {
		SenderAddress string `json:"senderAddress"`
		Content       struct {
			Subject string `json:"subject"`
			HTML    string `json:"html"`
		} `json:"content"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDate = r.Header.Get("x-ms-date")
		gotHash = r.Header.Get("x-ms-content-sha256")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "op-1", "status": "Succeeded"})
	}))
	defer srv.Close()

	c, err := email.NewACSClient("endpoint="+srv.URL+";accesskey="+testKey(), "no-reply@example.com")
	if err != nil {
		t.Fatalf("NewACSClient failed: %v", err)
	}

	id, status, err := c.Send(context.Background(), "", "maria@example.com", "Your booking", "<p>See you soon</p>")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if id != "op-1" || status != "Succeeded" {
		t.Errorf("expected op-1/Succeeded, got %q/%q", id, status)
	}
	if gotAuth == "" || gotDate == "" || gotHash == "" {
		t.Error("expected the HMAC signing headers on the request")
	}
	if gotBody.SenderAddress != "no-reply@example.com" {
		t.Errorf("expected the default sender substituted, got %q", gotBody.SenderAddress)
	}
	if gotBody.Content.Subject != "Your booking" {
		t.Errorf("expected the subject, got %q", gotBody.Content.Subject)
	}
}

func TestSendPollsUntilTerminalStatus(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "op-2", "status": "Running"})
			return
		}
		polls++
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "op-2", "status": "Succeeded"})
	}))
	defer srv.Close()

	c, err := email.NewACSClient("endpoint="+srv.URL+";accesskey="+testKey(), "no-reply@example.com")
	if err != nil {
		t.Fatalf("NewACSClient failed: %v", err)
	}

	_, status, err := c.Send(context.Background(), "no-reply@example.com", "maria@example.com", "Hi", "<p>Hi</p>")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if polls != 1 {
		t.Errorf("expected one status poll, got %d", polls)
	}
	if status != "Succeeded" {
		t.Errorf("expected Succeeded, got %q", status)
	}
}
