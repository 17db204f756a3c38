// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/citeharvest/internal/httputil"
	"github.com/pdiddy/citeharvest/pkg/types"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

// OpenAlexSource queries the OpenAlex API for references and title
// searches. OpenAlex needs no API key; the Email field feeds the mailto
// parameter for polite pool access.
type OpenAlexSource struct {
	Client    *http.Client
	Email     string
	UserAgent string

	// RefsPerPaper caps References results (default 10).
	RefsPerPaper int
}

// References looks up the work by DOI and resolves its referenced_works
// list into document refs via a batched ID filter query. Unknown DOIs
// yield an empty list.
func (o *OpenAlexSource) References(ctx context.Context, id string) ([]types.DocumentRef, error) {
	workURL := openAlexWorksBase + "/https://doi.org/" + id + o.mailtoSuffix("?")
	resp, err := o.get(ctx, workURL)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex work request: %w", err)
	}
	defer resp.Body.Close()

	if noAccessibleData(resp.StatusCode) {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex work lookup returned HTTP %d", resp.StatusCode)
	}

	var work openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex work: %w", err)
	}
	if len(work.ReferencedWorks) == 0 {
		return nil, nil
	}

	maxRefs := o.RefsPerPaper
	if maxRefs <= 0 {
		maxRefs = defaultRefsPerPaper
	}

	ids := make([]string, 0, maxRefs)
	for _, w := range work.ReferencedWorks {
		// referenced_works entries are full URLs like
		// https://openalex.org/W2741809807; the filter wants bare IDs.
		if i := strings.LastIndexByte(w, '/'); i >= 0 {
			w = w[i+1:]
		}
		if w == "" {
			continue
		}
		ids = append(ids, w)
		if len(ids) == maxRefs {
			break
		}
	}

	params := url.Values{
		"filter":   {"openalex_id:" + strings.Join(ids, "|")},
		"per_page": {fmt.Sprintf("%d", len(ids))},
	}
	return o.listWorks(ctx, params)
}

// SearchByTitle runs a relevance-ranked full-text search with the
// derived terms.
func (o *OpenAlexSource) SearchByTitle(ctx context.Context, title string, terms []string, limit int) ([]types.DocumentRef, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	params := url.Values{
		"search":   {strings.Join(terms, " ")},
		"per_page": {fmt.Sprintf("%d", limit)},
		"page":     {"1"},
	}
	return o.listWorks(ctx, params)
}

// listWorks runs a Works list query and converts the results. The bare
// DOI is preferred as identifier since OpenAlex is DOI-centric; works
// without one keep their OpenAlex ID.
func (o *OpenAlexSource) listWorks(ctx context.Context, params url.Values) ([]types.DocumentRef, error) {
	if o.Email != "" {
		params.Set("mailto", o.Email)
	}

	resp, err := o.get(ctx, openAlexWorksBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("OpenAlex works request: %w", err)
	}
	defer resp.Body.Close()

	if noAccessibleData(resp.StatusCode) {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex works query returned HTTP %d", resp.StatusCode)
	}

	var lr openAlexListResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex works response: %w", err)
	}

	var refs []types.DocumentRef
	for _, w := range lr.Results {
		id := strings.TrimPrefix(w.DOI, "https://doi.org/")
		if id == "" {
			id = w.ID
		}
		if id == "" || w.Title == "" {
			continue
		}
		refs = append(refs, types.DocumentRef{ID: id, Title: w.Title})
	}
	return refs, nil
}

func (o *OpenAlexSource) mailtoSuffix(sep string) string {
	if o.Email == "" {
		return ""
	}
	return sep + "mailto=" + url.QueryEscape(o.Email)
}

func (o *OpenAlexSource) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if o.UserAgent != "" {
		req.Header.Set("User-Agent", o.UserAgent)
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	return httputil.DoWithRetry(ctx, client, req, 0)
}

// OpenAlex API JSON structures.

type openAlexListResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	DOI             string   `json:"doi"`
	ReferencedWorks []string `json:"referenced_works"`
}
