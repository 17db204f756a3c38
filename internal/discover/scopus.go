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

// Scopus API endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	scopusSearchBase   = "https://api.elsevier.com/content/search/scopus"
	scopusAbstractBase = "https://api.elsevier.com/content/abstract/scopus_id/"
)

const (
	// defaultRefsPerPaper caps references returned per parent document.
	defaultRefsPerPaper = 10

	// scopusRefsRequested is how many raw references are requested before
	// filtering; entries without a DOI or a usable title are dropped.
	scopusRefsRequested = 20
)

// ScopusSource queries the Elsevier Scopus API for references and
// title searches.
type ScopusSource struct {
	Client    *http.Client
	APIKey    string
	UserAgent string

	// RefsPerPaper caps References results (default 10).
	RefsPerPaper int
}

// References resolves the DOI to a Scopus ID and lists the paper's
// references. Papers unknown to Scopus, or whose references are not
// accessible (HTTP 400/404), yield an empty list.
func (s *ScopusSource) References(ctx context.Context, id string) ([]types.DocumentRef, error) {
	scopusID, err := s.lookupScopusID(ctx, id)
	if err != nil || scopusID == "" {
		return nil, err
	}

	refsURL := scopusAbstractBase + url.PathEscape(scopusID) + "/references?count=" +
		fmt.Sprintf("%d", scopusRefsRequested)
	resp, err := s.get(ctx, refsURL)
	if err != nil {
		return nil, fmt.Errorf("Scopus references request: %w", err)
	}
	defer resp.Body.Close()

	if noAccessibleData(resp.StatusCode) {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Scopus references returned HTTP %d", resp.StatusCode)
	}

	var rr scopusRefsResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("parsing Scopus references: %w", err)
	}

	maxRefs := s.RefsPerPaper
	if maxRefs <= 0 {
		maxRefs = defaultRefsPerPaper
	}

	var refs []types.DocumentRef
	for _, r := range rr.AbstractRetrievalResponse.References.Reference {
		doi := r.RefInfo.PublicationTitle.DOI
		title := r.RefInfo.title()
		// Entries missing a DOI or carrying a stub title are unusable.
		if doi == "" || len(title) <= 10 {
			continue
		}
		refs = append(refs, types.DocumentRef{ID: doi, Title: title})
		if len(refs) == maxRefs {
			break
		}
	}
	return refs, nil
}

// SearchByTitle runs a TITLE-ABS-KEY search with the derived terms and
// returns candidates that carry both a DOI and a title.
func (s *ScopusSource) SearchByTitle(ctx context.Context, title string, terms []string, limit int) ([]types.DocumentRef, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	clauses := make([]string, len(terms))
	for i, term := range terms {
		clauses[i] = fmt.Sprintf("TITLE-ABS-KEY(%q)", term)
	}

	params := url.Values{
		"query": {strings.Join(clauses, " AND ")},
		"count": {fmt.Sprintf("%d", limit)},
		"sort":  {"relevancy"},
		"field": {"dc:title,prism:doi"},
	}

	entries, err := s.search(ctx, params)
	if err != nil {
		return nil, err
	}

	var refs []types.DocumentRef
	for _, e := range entries {
		if e.DOI == "" || e.Title == "" {
			continue
		}
		refs = append(refs, types.DocumentRef{ID: e.DOI, Title: e.Title})
	}
	return refs, nil
}

// lookupScopusID finds the internal Scopus identifier for a DOI. An
// unknown DOI returns the empty string without error.
func (s *ScopusSource) lookupScopusID(ctx context.Context, doi string) (string, error) {
	params := url.Values{
		"query": {fmt.Sprintf("DOI(%q)", doi)},
		"count": {"1"},
		"field": {"dc:identifier"},
	}

	entries, err := s.search(ctx, params)
	if err != nil || len(entries) == 0 {
		return "", err
	}
	return strings.TrimPrefix(entries[0].Identifier, "SCOPUS_ID:"), nil
}

// search issues a Scopus search request and returns the result entries.
// HTTP 400/404 responses mean "no accessible data" and map to nil.
func (s *ScopusSource) search(ctx context.Context, params url.Values) ([]scopusEntry, error) {
	resp, err := s.get(ctx, scopusSearchBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("Scopus search request: %w", err)
	}
	defer resp.Body.Close()

	if noAccessibleData(resp.StatusCode) {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Scopus search returned HTTP %d", resp.StatusCode)
	}

	var sr scopusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Scopus search response: %w", err)
	}
	return sr.SearchResults.Entry, nil
}

func (s *ScopusSource) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
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
	return httputil.DoWithRetry(ctx, client, req, 0)
}

// noAccessibleData reports whether the status code signals "legitimately
// empty" rather than a transport or auth failure.
func noAccessibleData(status int) bool {
	return status == http.StatusBadRequest || status == http.StatusNotFound
}

// Scopus API JSON structures.

type scopusSearchResponse struct {
	SearchResults struct {
		Entry []scopusEntry `json:"entry"`
	} `json:"search-results"`
}

type scopusEntry struct {
	Identifier string `json:"dc:identifier"`
	Title      string `json:"dc:title"`
	DOI        string `json:"prism:doi"`
}

type scopusRefsResponse struct {
	AbstractRetrievalResponse struct {
		References struct {
			Reference scopusReferenceList `json:"reference"`
		} `json:"references"`
	} `json:"abstract-retrieval-response"`
}

type scopusReference struct {
	RefInfo scopusRefInfo `json:"ref-info"`
}

type scopusRefInfo struct {
	Title            scopusRefTitle `json:"ref-title"`
	TitleText        string         `json:"ref-titletext"`
	PublicationTitle struct {
		DOI string `json:"prism:doi"`
	} `json:"ref-publicationtitle"`
}

// title returns the reference title from whichever field Scopus used.
func (ri scopusRefInfo) title() string {
	if ri.Title.Text != "" {
		return ri.Title.Text
	}
	return ri.TitleText
}

// scopusReferenceList tolerates the references field being either a
// single object or an array, which the API alternates between depending
// on the reference count.
type scopusReferenceList []scopusReference

func (l *scopusReferenceList) UnmarshalJSON(data []byte) error {
	var many []scopusReference
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one scopusReference
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = scopusReferenceList{one}
	return nil
}

// scopusRefTitle tolerates ref-title being either a plain string or an
// object holding ref-titletext.
type scopusRefTitle struct {
	Text string
}

func (t *scopusRefTitle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Text = s
		return nil
	}
	var obj struct {
		Text string `json:"ref-titletext"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Text = obj.Text
	return nil
}
