// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fulltext

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pdiddy/citeharvest/internal/httputil"
)

// scopusSearchBase is the Scopus search endpoint. Declared as a var so
// tests can substitute an httptest server.
var scopusSearchBase = "https://api.elsevier.com/content/search/scopus"

// ScopusSource fetches title+abstract text for a DOI from the Scopus
// search API. Fetched text is cached in memory: the same DOI is often
// rediscovered on several branches of the citation graph, and each
// upstream call is rate limited.
type ScopusSource struct {
	Client    *http.Client
	APIKey    string
	UserAgent string

	cache *gocache.Cache
}

// NewScopusSource creates a Scopus text source with a one-hour text cache.
func NewScopusSource(client *http.Client, apiKey, userAgent string) *ScopusSource {
	return &ScopusSource{
		Client:    client,
		APIKey:    apiKey,
		UserAgent: userAgent,
		cache:     gocache.New(time.Hour, 10*time.Minute),
	}
}

// Fetch returns "Title: ...\n\nAbstract: ..." for the DOI, or the empty
// string when Scopus has no record or no abstract. Empty is not an
// error; only transport and auth failures are.
func (s *ScopusSource) Fetch(ctx context.Context, id string) (string, error) {
	if v, ok := s.cache.Get(id); ok {
		return v.(string), nil
	}

	params := url.Values{
		"query": {fmt.Sprintf("DOI(%q)", id)},
		"count": {"1"},
		"field": {"dc:title,dc:description,dc:creator"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scopusSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-ELS-APIKey", s.APIKey)
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("Scopus text request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Scopus text query returned HTTP %d", resp.StatusCode)
	}

	var sr scopusTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("parsing Scopus text response: %w", err)
	}
	if len(sr.SearchResults.Entry) == 0 {
		return "", nil
	}

	text := composeText(sr.SearchResults.Entry[0].Title, sr.SearchResults.Entry[0].Description)
	if text != "" {
		s.cache.Set(id, text, gocache.DefaultExpiration)
	}
	return text, nil
}

// composeText joins the labelled title and abstract parts, skipping
// whichever is missing.
func composeText(title, abstract string) string {
	var parts []string
	if title != "" {
		parts = append(parts, "Title: "+title)
	}
	if abstract != "" {
		parts = append(parts, "Abstract: "+abstract)
	}
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "\n\n" + p
	}
	return out
}

type scopusTextResponse struct {
	SearchResults struct {
		Entry []struct {
			Title       string `json:"dc:title"`
			Description string `json:"dc:description"`
		} `json:"entry"`
	} `json:"search-results"`
}
