// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"regexp"
	"strings"

	"github.com/pdiddy/citeharvest/pkg/types"
)

// titleWordRe matches candidate search terms: runs of four or more letters.
var titleWordRe = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

// stopWords are excluded from derived search terms.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"this": true, "that": true, "these": true, "those": true,
}

// maxSearchTerms caps how many title words feed the fallback search query.
const maxSearchTerms = 3

// SearchTerms derives fallback search terms from a paper title: words of
// at least four letters, lowercased, stop words removed, deduplicated,
// in first-occurrence order, capped at maxSearchTerms.
func SearchTerms(title string) []string {
	words := titleWordRe.FindAllString(strings.ToLower(title), -1)

	seen := make(map[string]bool)
	var terms []string
	for _, w := range words {
		if stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
		if len(terms) == maxSearchTerms {
			break
		}
	}
	return terms
}

// FilterByKeywords retains only the candidates whose title contains at
// least one keyword, matched as a case-insensitive substring. An empty
// keyword list retains all candidates. Order is preserved.
func FilterByKeywords(candidates []types.DocumentRef, keywords []string) []types.DocumentRef {
	if len(keywords) == 0 {
		return candidates
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	var kept []types.DocumentRef
	for _, c := range candidates {
		title := strings.ToLower(c.Title)
		for _, kw := range lowered {
			if strings.Contains(title, kw) {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}
