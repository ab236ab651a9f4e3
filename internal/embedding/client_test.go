package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func embedServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestEmbedSuccess(t *testing.T) {
	var gotAuth string
	server := embedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Input string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Input == "" {
			t.Fatalf("bad request body: %v", err)
		}

		vector := make([]float32, Dimension)
		vector[0] = 0.42
		_ = json.NewEncoder(w).Encode(map[string]any{"vector": vector, "model": "minilm"})
	})

	client := NewClient(server.URL, "key-123", "minilm", time.Second, zerolog.Nop())
	vector, err := client.Embed(context.Background(), "ergot ledger")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vector) != Dimension || vector[0] != 0.42 {
		t.Fatalf("unexpected vector: len=%d first=%f", len(vector), vector[0])
	}
	if gotAuth != "Bearer key-123" {
		t.Fatalf("expected bearer api key, got %q", gotAuth)
	}
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	client := NewClient("http://unused", "", "minilm", time.Second, zerolog.Nop())
	if _, err := client.Embed(context.Background(), "   "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestEmbedRejectsWrongDimension(t *testing.T) {
	server := embedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"vector": []float32{1, 2, 3}})
	})

	client := NewClient(server.URL, "", "minilm", time.Second, zerolog.Nop())
	if _, err := client.Embed(context.Background(), "text"); !errors.Is(err, ErrServiceUnusable) {
		t.Fatalf("expected ErrServiceUnusable, got %v", err)
	}
}

func TestEmbedRejectsErrorStatus(t *testing.T) {
	server := embedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := NewClient(server.URL, "", "minilm", time.Second, zerolog.Nop())
	if _, err := client.Embed(context.Background(), "text"); !errors.Is(err, ErrServiceUnusable) {
		t.Fatalf("expected ErrServiceUnusable, got %v", err)
	}
}

func TestWarmUpSwallowsFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", "minilm", 100*time.Millisecond, zerolog.Nop())
	// Must not panic or block beyond the client timeout.
	client.WarmUp(context.Background())
}
