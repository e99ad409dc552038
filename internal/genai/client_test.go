package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newGenerateServer(t *testing.T, capture *generateRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Fatalf("api key not forwarded")
		}
		if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"role": "model", "parts": []map[string]string{{"text": "generated text"}}}},
			},
		})
	}))
}

func TestGenerateText(t *testing.T) {
	var captured generateRequest
	srv := newGenerateServer(t, &captured)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "")
	text, err := client.GenerateText(context.Background(), "describe my salon")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if text != "generated text" {
		t.Fatalf("unexpected text: %q", text)
	}
	if len(captured.Contents) != 1 || captured.Contents[0].Parts[0].Text != "describe my salon" {
		t.Fatalf("unexpected request: %#v", captured)
	}
}

func TestChat_NormalizesHistory(t *testing.T) {
	var captured generateRequest
	srv := newGenerateServer(t, &captured)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "")
	history := []Message{
		{Role: "assistant", Content: "welcome"}, // before the first user turn, dropped
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"}, // non-user roles become "model"
	}
	if _, err := client.Chat(context.Background(), history, "book me at 2"); err != nil {
		t.Fatalf("chat failed: %v", err)
	}

	if len(captured.Contents) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(captured.Contents))
	}
	if captured.Contents[0].Role != "user" || captured.Contents[0].Parts[0].Text != "hi" {
		t.Fatalf("leading non-user turns must be dropped: %#v", captured.Contents)
	}
	if captured.Contents[1].Role != "model" {
		t.Fatalf("assistant turn must map to model, got %s", captured.Contents[1].Role)
	}
	if captured.Contents[2].Role != "user" || captured.Contents[2].Parts[0].Text != "book me at 2" {
		t.Fatalf("message must come last as a user turn: %#v", captured.Contents)
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "quota exceeded"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "")
	_, err := client.GenerateText(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected upstream error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("upstream message must surface: %v", err)
	}
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "")
	if _, err := client.GenerateText(context.Background(), "hi"); err != ErrEmptyResponse {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
