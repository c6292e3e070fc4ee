// Package search wraps an Azure AI Search index: lazy schema creation,
// document upsert and keyword (BM25) queries. Nothing here is semantic.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lacura/lacura-api/internal/domain"
)

const apiVersion = "2023-11-01"

type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	index      string
}

func NewClient(endpoint, apiKey, index string) (*Client, error) {
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("AI_SEARCH_ENDPOINT and AI_SEARCH_API_KEY must be set")
	}
	if index == "" {
		index = "content"
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		index:      index,
	}, nil
}

// EnsureIndex creates a minimal BM25 text index when it does not exist
// yet. Calling it again is a no-op; vectorization can be added later.
func (c *Client) EnsureIndex(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, c.indexPath(), nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}

	schema := map[string]any{
		"name": c.index,
		"fields": []map[string]any{
			{"name": "id", "type": "Edm.String", "key": true, "filterable": true},
			{"name": "content", "type": "Edm.String", "searchable": true},
			{"name": "source", "type": "Edm.String", "filterable": true, "facetable": true},
			{"name": "title", "type": "Edm.String", "searchable": true},
			{"name": "timestamp", "type": "Edm.DateTimeOffset", "filterable": true, "sortable": true},
		},
	}

	status, err = c.do(ctx, http.MethodPut, c.indexPath(), schema, nil)
	if err != nil {
		return err
	}
	if status != http.StatusCreated && status != http.StatusNoContent && status != http.StatusOK {
		return fmt.Errorf("create index %q: status %d", c.index, status)
	}
	return nil
}

type wireDocument struct {
	Action    string `json:"@search.action,omitempty"`
	ID        string `json:"id"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	Title     string `json:"title,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Upsert merge-or-uploads documents. Azure reports per-document outcomes;
// those are surfaced as-is, a partial failure is not an error here.
func (c *Client) Upsert(ctx context.Context, docs []domain.SearchDocument) (*domain.UpsertResult, error) {
	value := make([]wireDocument, 0, len(docs))
	for _, d := range docs {
		value = append(value, wireDocument{
			Action:    "mergeOrUpload",
			ID:        string(d.ID),
			Content:   d.Content,
			Source:    d.Source,
			Title:     d.Title,
			Timestamp: d.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	var out struct {
		Value []struct {
			Key       string `json:"key"`
			Succeeded bool   `json:"status"`
		} `json:"value"`
	}

	path := c.docsPath("index")
	status, err := c.do(ctx, http.MethodPost, path, map[string]any{"value": value}, &out)
	if err != nil {
		return nil, err
	}
	// 207 means some documents failed; the per-key statuses carry that.
	if status != http.StatusOK && status != http.StatusMultiStatus {
		return nil, fmt.Errorf("upsert documents: status %d", status)
	}

	result := &domain.UpsertResult{}
	for _, r := range out.Value {
		if r.Succeeded {
			result.Succeeded++
		} else {
			result.FailedKeys = append(result.FailedKeys, r.Key)
		}
	}
	return result, nil
}

// Search runs a keyword query and returns up to limit documents in rank
// order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.SearchDocument, error) {
	if limit <= 0 {
		limit = 10
	}

	body := map[string]any{
		"search": query,
		"top":    limit,
	}

	var out struct {
		Value []struct {
			ID        string `json:"id"`
			Content   string `json:"content"`
			Source    string `json:"source"`
			Title     string `json:"title"`
			Timestamp string `json:"timestamp"`
		} `json:"value"`
	}

	status, err := c.do(ctx, http.MethodPost, c.docsPath("search"), body, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search: status %d", status)
	}

	docs := make([]domain.SearchDocument, 0, len(out.Value))
	for _, v := range out.Value {
		ts, _ := time.Parse(time.RFC3339, v.Timestamp)
		docs = append(docs, domain.SearchDocument{
			ID:        domain.DocumentID(v.ID),
			Content:   v.Content,
			Source:    v.Source,
			Title:     v.Title,
			Timestamp: ts,
		})
	}
	return docs, nil
}

func (c *Client) indexPath() string {
	return fmt.Sprintf("/indexes/%s", url.PathEscape(c.index))
}

func (c *Client) docsPath(op string) string {
	return fmt.Sprintf("/indexes/%s/docs/%s", url.PathEscape(c.index), op)
}

// do issues one request and decodes the response when out is non-nil.
// A 404 is returned as a plain status, not an error: EnsureIndex needs it.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	u := fmt.Sprintf("%s%s?api-version=%s", c.endpoint, path, apiVersion)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("search %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return resp.StatusCode, fmt.Errorf("search %s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil && (resp.StatusCode < 300 || resp.StatusCode == http.StatusMultiStatus) {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("search %s %s decode: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}
