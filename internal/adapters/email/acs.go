// Package email sends transactional mail through Azure Communication
// Services. Requests are HMAC-signed with the access key from the
// connection string; a send is polled until the service reports a
// terminal status.
package email

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lacura/lacura-api/internal/domain"
)

const (
	apiVersion   = "2023-03-31"
	pollInterval = 2 * time.Second
	maxPolls     = 15
)

type ACSClient struct {
	httpClient *http.Client
	endpoint   *url.URL
	accessKey  []byte
	sender     string
}

// NewACSClient parses an ACS connection string of the form
// "endpoint=https://...;accesskey=...".
func NewACSClient(connectionString, defaultSender string) (*ACSClient, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("ACS_CONNECTION_STRING must be set")
	}

	var endpoint, key string
	for _, part := range strings.Split(connectionString, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(k) {
		case "endpoint":
			endpoint = v
		case "accesskey":
			key = v
		}
	}
	if endpoint == "" || key == "" {
		return nil, fmt.Errorf("connection string is missing endpoint or accesskey")
	}

	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ACS endpoint: %w", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("decode ACS access key: %w", err)
	}

	return &ACSClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   u,
		accessKey:  decoded,
		sender:     defaultSender,
	}, nil
}

// DefaultSender is the configured fallback sender address.
func (c *ACSClient) DefaultSender() string {
	return c.sender
}

type sendRequest struct {
	SenderAddress string `json:"senderAddress"`
	Content       struct {
		Subject string `json:"subject"`
		HTML    string `json:"html"`
	} `json:"content"`
	Recipients struct {
		To []struct {
			Address string `json:"address"`
		} `json:"to"`
	} `json:"recipients"`
}

type operationStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Send submits the email and polls the returned operation until it leaves
// the NotStarted/Running states or the poll budget runs out, mirroring
// the begin-send / poll-until-done flow of the hosted SDKs.
func (c *ACSClient) Send(ctx context.Context, from, to, subject, html string) (string, string, error) {
	if from == "" {
		from = c.sender
	}

	var req sendRequest
	req.SenderAddress = from
	req.Content.Subject = subject
	req.Content.HTML = html
	req.Recipients.To = append(req.Recipients.To, struct {
		Address string `json:"address"`
	}{Address: to})

	var op operationStatus
	path := "/emails:send?api-version=" + apiVersion
	if err := c.do(ctx, http.MethodPost, path, req, &op); err != nil {
		return "", "", err
	}

	for i := 0; i < maxPolls && (op.Status == "NotStarted" || op.Status == "Running"); i++ {
		select {
		case <-ctx.Done():
			return op.ID, op.Status, ctx.Err()
		case <-time.After(pollInterval):
		}

		statusPath := fmt.Sprintf("/emails/operations/%s?api-version=%s", url.PathEscape(op.ID), apiVersion)
		if err := c.do(ctx, http.MethodGet, statusPath, nil, &op); err != nil {
			return op.ID, op.Status, err
		}
	}

	if op.Status == "Failed" {
		return op.ID, op.Status, fmt.Errorf("email send failed")
	}
	return op.ID, op.Status, nil
}

var _ domain.EmailClient = (*ACSClient)(nil)

func (c *ACSClient) do(ctx context.Context, method, pathAndQuery string, body, out any) error {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint.String()+pathAndQuery, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	c.sign(req, pathAndQuery, raw)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("acs %s %s: %w", method, pathAndQuery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("acs %s %s: status %d", method, pathAndQuery, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("acs %s %s decode: %w", method, pathAndQuery, err)
		}
	}
	return nil
}

// sign applies the ACS HMAC-SHA256 scheme: the content hash, UTC date and
// host are folded into the string-to-sign and the signature travels in the
// Authorization header.
func (c *ACSClient) sign(req *http.Request, pathAndQuery string, body []byte) {
	contentHash := sha256.Sum256(body)
	contentHashB64 := base64.StdEncoding.EncodeToString(contentHash[:])
	date := time.Now().UTC().Format(http.TimeFormat)

	stringToSign := fmt.Sprintf("%s\n%s\n%s;%s;%s",
		req.Method, pathAndQuery, date, c.endpoint.Host, contentHashB64)

	mac := hmac.New(sha256.New, c.accessKey)
	mac.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("x-ms-date", date)
	req.Header.Set("x-ms-content-sha256", contentHashB64)
	req.Header.Set("Authorization",
		"HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature="+signature)
}
