package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
	"github.com/jwpark-dev/lawsearch/internal/infrastructure/resilience"
)

// Client is a read-only Qdrant accessor over its HTTP API. The ingestion
// pipeline owns collection creation and population; at query time the
// collection is assumed to exist.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, collection string) *Client {
	return NewWithOptions(baseURL, collection, Options{})
}

func NewWithOptions(baseURL, collection string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

// Search runs nearest-neighbor retrieval under cosine similarity. Qdrant
// reports a similarity score (1 = identical); hits are converted to the
// cosine distance convention (0 = identical) at this boundary so the
// engine only ever sees distances.
func (c *Client) Search(ctx context.Context, vector []float32, topN int, filters map[string]string) ([]domain.ChunkHit, error) {
	reqBody := map[string]any{
		"vector":       vector,
		"limit":        topN,
		"with_payload": true,
	}
	if len(filters) > 0 {
		must := make([]map[string]any, 0, len(filters))
		for key, value := range filters {
			must = append(must, map[string]any{
				"key":   key,
				"match": map[string]any{"value": value},
			})
		}
		reqBody["filter"] = map[string]any{"must": must}
	}

	var searchResp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := c.postJSON(ctx, fmt.Sprintf("/collections/%s/points/search", c.collection), reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.ChunkHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.ChunkHit{
			ID:       stringifyID(r.ID),
			Text:     getStringPayload(r.Payload, "text"),
			Meta:     metaFromPayload(r.Payload),
			Distance: 1 - r.Score,
		})
	}
	return out, nil
}

// GetByIDs fetches chunk texts by identity for the exact-citation path.
// Qdrant does not guarantee retrieve order, so results are re-ordered to
// match ids; IDs absent from the index are skipped, not errors.
func (c *Client) GetByIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"ids":          ids,
		"with_payload": true,
	}

	var retrieveResp struct {
		Result []struct {
			ID      any            `json:"id"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := c.postJSON(ctx, fmt.Sprintf("/collections/%s/points", c.collection), reqBody, &retrieveResp, "retrieve"); err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(retrieveResp.Result))
	for _, r := range retrieveResp.Result {
		byID[stringifyID(r.ID)] = getStringPayload(r.Payload, "text")
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if text, ok := byID[id]; ok {
			out = append(out, text)
		}
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	call := func(ctx context.Context) error {
		return c.doPostJSON(ctx, path, payload, out, operation)
	}
	if c.executor != nil {
		return c.executor.Execute(ctx, "qdrant."+operation, call, classifyQdrantError)
	}
	return call(ctx)
}

func (c *Client) doPostJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func metaFromPayload(payload map[string]any) domain.ChunkMeta {
	return domain.ChunkMeta{
		LawTitle:  getStringPayload(payload, "law_title"),
		ArticleNo: getStringPayload(payload, "article_no"),
		DocType:   domain.DocType(getStringPayload(payload, "doc_type")),
	}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func stringifyID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		// Qdrant numeric point IDs decode as float64.
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
