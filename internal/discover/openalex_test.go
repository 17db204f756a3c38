// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/citeharvest/pkg/types"
)

func placeholderItem() types.WorkItem {
	return types.WorkItem{Ref: types.DocumentRef{ID: types.PlaceholderID, Title: types.PlaceholderTitle}}
}

func newOpenAlexServer(t *testing.T, handler http.HandlerFunc) *OpenAlexSource {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := openAlexWorksBase
	openAlexWorksBase = ts.URL + "/works"
	t.Cleanup(func() { openAlexWorksBase = old })

	return &OpenAlexSource{Client: ts.Client(), Email: "dev@example.org"}
}

func TestOpenAlexReferences(t *testing.T) {
	var gotFilter string
	src := newOpenAlexServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "doi.org/10.1/seed") {
			if r.URL.Query().Get("mailto") != "dev@example.org" {
				t.Error("work lookup missing mailto parameter")
			}
			w.Write([]byte(`{
			  "id": "https://openalex.org/W100",
			  "title": "Seed Paper",
			  "doi": "https://doi.org/10.1/seed",
			  "referenced_works": ["https://openalex.org/W1", "https://openalex.org/W2"]
			}`))
			return
		}
		gotFilter = r.URL.Query().Get("filter")
		w.Write([]byte(`{"results":[
		  {"id":"https://openalex.org/W1","title":"Canopy Beetle Survey","doi":"https://doi.org/10.1/a"},
		  {"id":"https://openalex.org/W2","title":"Untitled-less work","doi":""}
		]}`))
	})

	refs, err := src.References(context.Background(), "10.1/seed")
	if err != nil {
		t.Fatalf("References() error: %v", err)
	}

	if gotFilter != "openalex_id:W1|W2" {
		t.Errorf("filter = %q, want openalex_id:W1|W2", gotFilter)
	}
	if len(refs) != 2 {
		t.Fatalf("References() returned %d refs, want 2", len(refs))
	}
	if refs[0].ID != "10.1/a" {
		t.Errorf("refs[0].ID = %q, want bare DOI", refs[0].ID)
	}
	// A work without a DOI keeps its OpenAlex ID.
	if refs[1].ID != "https://openalex.org/W2" {
		t.Errorf("refs[1].ID = %q, want OpenAlex ID fallback", refs[1].ID)
	}
}

func TestOpenAlexReferencesUnknownDOI(t *testing.T) {
	src := newOpenAlexServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	refs, err := src.References(context.Background(), "10.1/unknown")
	if err != nil {
		t.Fatalf("References() error: %v, want nil for 404", err)
	}
	if refs != nil {
		t.Errorf("References() = %v, want nil", refs)
	}
}

func TestOpenAlexReferencesNoReferencedWorks(t *testing.T) {
	var listCalls int
	src := newOpenAlexServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "doi.org/") {
			w.Write([]byte(`{"id":"https://openalex.org/W100","title":"Lonely","referenced_works":[]}`))
			return
		}
		listCalls++
	})

	refs, err := src.References(context.Background(), "10.1/lonely")
	if err != nil {
		t.Fatalf("References() error: %v", err)
	}
	if refs != nil || listCalls != 0 {
		t.Errorf("References() = %v (list calls %d), want nil and no batch query", refs, listCalls)
	}
}

func TestOpenAlexSearchByTitle(t *testing.T) {
	var gotSearch string
	src := newOpenAlexServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		w.Write([]byte(`{"results":[
		  {"id":"https://openalex.org/W7","title":"Beetle Diversity Gradients","doi":"https://doi.org/10.1/x"}
		]}`))
	})

	refs, err := src.SearchByTitle(context.Background(), "Beetle Diversity", []string{"beetle", "diversity"}, 15)
	if err != nil {
		t.Fatalf("SearchByTitle() error: %v", err)
	}
	if gotSearch != "beetle diversity" {
		t.Errorf("search = %q, want %q", gotSearch, "beetle diversity")
	}
	if len(refs) != 1 || refs[0].ID != "10.1/x" || refs[0].Title != "Beetle Diversity Gradients" {
		t.Errorf("SearchByTitle() = %v", refs)
	}
}

func TestReferenceStrategySkipsPlaceholder(t *testing.T) {
	// The placeholder seed identifier cannot be looked up anywhere, so
	// the primary strategy must stand aside without touching the source.
	src := newOpenAlexServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("source queried for placeholder identifier")
	})

	s := ReferenceStrategy{Source: src}
	refs, err := s.Discover(context.Background(), placeholderItem())
	if err != nil || refs != nil {
		t.Errorf("Discover() = %v, %v, want nil, nil", refs, err)
	}
}

func TestTitleSearchStrategyDerivesTerms(t *testing.T) {
	var gotSearch, gotPerPage string
	src := newOpenAlexServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		gotPerPage = r.URL.Query().Get("per_page")
		w.Write([]byte(`{"results":[]}`))
	})

	s := TitleSearchStrategy{Source: src}
	item := placeholderItem()
	item.Ref.Title = "Forest Canopy Arthropod Diversity"
	if _, err := s.Discover(context.Background(), item); err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	if gotSearch != "forest canopy arthropod" {
		t.Errorf("search = %q, want %q", gotSearch, "forest canopy arthropod")
	}
	if gotPerPage != "15" {
		t.Errorf("per_page = %q, want default limit 15", gotPerPage)
	}
}
