// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fulltext

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/citeharvest/internal/httputil"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

// OpenAlexSource fetches title+abstract text for a document from the
// OpenAlex API. OpenAlex stores abstracts as an inverted index, which is
// reconstructed into plain text.
type OpenAlexSource struct {
	Client    *http.Client
	Email     string
	UserAgent string
}

// Fetch returns "Title: ...\n\nAbstract: ..." for the identifier (a bare
// DOI, or an OpenAlex work URL for works without one). Empty means the
// work is unknown or has no abstract.
func (o *OpenAlexSource) Fetch(ctx context.Context, id string) (string, error) {
	workURL := openAlexWorksBase + "/" + workPath(id)
	if o.Email != "" {
		workURL += "?mailto=" + url.QueryEscape(o.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, workURL, nil)
	if err != nil {
		return "", err
	}
	if o.UserAgent != "" {
		req.Header.Set("User-Agent", o.UserAgent)
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("OpenAlex text request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAlex text query returned HTTP %d", resp.StatusCode)
	}

	var work struct {
		Title                 string           `json:"title"`
		AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return "", fmt.Errorf("parsing OpenAlex work: %w", err)
	}

	return composeText(work.Title, reconstructAbstract(work.AbstractInvertedIndex)), nil
}

// workPath maps an identifier to the Works URL path segment: OpenAlex
// work URLs keep their bare W-ID, everything else is treated as a DOI.
func workPath(id string) string {
	if strings.HasPrefix(id, "https://openalex.org/") {
		return strings.TrimPrefix(id, "https://openalex.org/")
	}
	return "https://doi.org/" + id
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back
// to plain text. The inverted index maps each word to the positions
// where it appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}
