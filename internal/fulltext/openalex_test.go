// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fulltext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newOpenAlexTextServer(t *testing.T, handler http.HandlerFunc) *OpenAlexSource {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := openAlexWorksBase
	openAlexWorksBase = ts.URL + "/works"
	t.Cleanup(func() { openAlexWorksBase = old })

	return &OpenAlexSource{Client: ts.Client(), Email: "dev@example.org"}
}

func TestOpenAlexFetch(t *testing.T) {
	src := newOpenAlexTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "doi.org/10.1/a") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
		  "title": "Canopy Beetle Survey",
		  "abstract_inverted_index": {
		    "We": [0], "sampled": [1], "beetles": [2], "in": [3], "the": [4], "canopy": [5]
		  }
		}`))
	})

	text, err := src.Fetch(context.Background(), "10.1/a")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	want := "Title: Canopy Beetle Survey\n\nAbstract: We sampled beetles in the canopy"
	if text != want {
		t.Errorf("Fetch() = %q, want %q", text, want)
	}
}

func TestOpenAlexFetchWorkID(t *testing.T) {
	src := newOpenAlexTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/works/W42") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"title": "A Work Without DOI"}`))
	})

	text, err := src.Fetch(context.Background(), "https://openalex.org/W42")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if text != "Title: A Work Without DOI" {
		t.Errorf("Fetch() = %q", text)
	}
}

func TestOpenAlexFetchNotFoundIsEmpty(t *testing.T) {
	src := newOpenAlexTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	text, err := src.Fetch(context.Background(), "10.1/unknown")
	if err != nil || text != "" {
		t.Errorf("Fetch() = %q, %v, want empty, nil", text, err)
	}
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil map", nil, ""},
		{"single word", map[string][]int{"beetles": {0}}, "beetles"},
		{
			"repeated word",
			map[string][]int{"the": {0, 2}, "beetle": {1}, "survey": {3}},
			"the beetle the survey",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reconstructAbstract(tt.index); got != tt.want {
				t.Errorf("reconstructAbstract() = %q, want %q", got, tt.want)
			}
		})
	}
}
