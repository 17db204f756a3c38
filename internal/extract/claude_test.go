// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/citeharvest/pkg/types"
)

func newClaudeServer(t *testing.T, handler http.HandlerFunc) *ClaudeBackend {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() { claudeAPIURL = old })

	return NewClaudeBackend(types.ExtractionConfig{APIKey: "test-key"}, ts.Client())
}

func TestClaudeExtract(t *testing.T) {
	backend := newClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version = %q", got)
		}

		var req claudeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != defaultClaudeModel {
			t.Errorf("model = %q, want %q", req.Model, defaultClaudeModel)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "We sampled beetles") {
			t.Error("prompt does not contain document text")
		}

		json.NewEncoder(w).Encode(claudeResponse{Content: []claudeContent{
			{Type: "text", Text: "```json\n[{\"species\": \"Carabus auratus\", \"number\": \"40\"}]\n```"},
		}})
	})

	facts, err := backend.Extract(context.Background(), "We sampled beetles in the canopy.")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(facts) != 1 || facts[0]["species"] != "Carabus auratus" {
		t.Errorf("Extract() = %v", facts)
	}
}

func TestClaudeExtractAPIError(t *testing.T) {
	backend := newClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error"}}`))
	})

	if _, err := backend.Extract(context.Background(), "some text"); err == nil {
		t.Error("Extract() on HTTP 429 succeeded, want error")
	}
}

func TestClaudeExtractNoTextBlock(t *testing.T) {
	backend := newClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(claudeResponse{Content: []claudeContent{
			{Type: "tool_use", Text: ""},
		}})
	})

	if _, err := backend.Extract(context.Background(), "some text"); err == nil {
		t.Error("Extract() without a text block succeeded, want error")
	}
}

func TestClaudeModelOverride(t *testing.T) {
	backend := NewClaudeBackend(types.ExtractionConfig{Model: "claude-3-5-sonnet-20241022"}, nil)
	if backend.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("Model = %q", backend.Model)
	}
}
