package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwpark-dev/lawsearch/internal/infrastructure/resilience"
)

func TestEmbedQuerySendsPinnedModel(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer server.Close()

	client := New(server.URL, "bge-m3")
	vector, err := client.EmbedQuery(context.Background(), "전세 보증금 반환")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vector) != 3 {
		t.Fatalf("vector length = %d, want 3", len(vector))
	}
	if captured["model"] != "bge-m3" {
		t.Fatalf("model = %v, want bge-m3", captured["model"])
	}
}

func TestEmbedQueryEmptyResultIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{}})
	}))
	defer server.Close()

	client := New(server.URL, "bge-m3")
	if _, err := client.EmbedQuery(context.Background(), "전세"); err == nil {
		t.Fatalf("expected error for empty embedding result")
	}
}

func TestEmbedEmptyInputSkipsRequest(t *testing.T) {
	client := New("http://127.0.0.1:1", "bge-m3")
	vectors, err := client.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed(nil) error = %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected nil result, got %v", vectors)
	}
}

func TestClassifyOllamaError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		record    bool
	}{
		{
			name:      "server overloaded",
			err:       &HTTPStatusError{Operation: "embed", StatusCode: http.StatusServiceUnavailable},
			retryable: true,
			record:    true,
		},
		{
			name:      "bad request",
			err:       &HTTPStatusError{Operation: "embed", StatusCode: http.StatusBadRequest},
			retryable: false,
			record:    false,
		},
		{
			name:      "cancelled context",
			err:       context.Canceled,
			retryable: false,
			record:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class := classifyOllamaError(tt.err)
			if class.Retryable != tt.retryable || class.RecordFailure != tt.record {
				t.Fatalf("classifyOllamaError(%v) = %+v", tt.err, class)
			}
		})
	}
}

func TestEmbedRetriesThroughExecutor(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.5}},
		})
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: 1,
		RetryMaxBackoff:     1,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})
	client := NewWithOptions(server.URL, "bge-m3", Options{ResilienceExecutor: executor})

	vector, err := client.EmbedQuery(context.Background(), "전세")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if len(vector) != 1 {
		t.Fatalf("vector length = %d, want 1", len(vector))
	}
}
