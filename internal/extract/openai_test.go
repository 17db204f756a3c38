// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/citeharvest/pkg/types"
)

func TestOpenAIExtract(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: `[{"species": "Apis mellifera", "location": "meadow"}]`,
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	backend := NewOpenAIBackend(
		types.ExtractionConfig{APIKey: "test-key"},
		WithOpenAIBaseURL(ts.URL),
	)

	facts, err := backend.Extract(context.Background(), "Bees were observed in the meadow.")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(facts) != 1 || facts[0]["species"] != "Apis mellifera" {
		t.Errorf("Extract() = %v", facts)
	}
}

func TestOpenAIExtractAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	backend := NewOpenAIBackend(
		types.ExtractionConfig{APIKey: "test-key"},
		WithOpenAIBaseURL(ts.URL),
	)

	if _, err := backend.Extract(context.Background(), "some text"); err == nil {
		t.Error("Extract() on HTTP 500 succeeded, want error")
	}
}
