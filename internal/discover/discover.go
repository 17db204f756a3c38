// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover finds candidate related documents for a processed
// paper. The primary route lists the paper's own references; when that
// yields nothing, a title/keyword search against the same corpus serves
// as the fallback. Each bibliographic backend (Scopus, OpenAlex)
// implements the Source interface per the Strategy pattern.
package discover

import (
	"context"

	"github.com/pdiddy/citeharvest/internal/crawl"
	"github.com/pdiddy/citeharvest/pkg/types"
)

// Source is one bibliographic corpus. Both methods return an empty list
// (not an error) when the upstream has no accessible data for the
// document; only genuine transport or auth failures surface as errors.
type Source interface {
	// References lists the documents cited by the paper with the given ID.
	References(ctx context.Context, id string) ([]types.DocumentRef, error)

	// SearchByTitle finds documents related to a paper title using the
	// derived search terms, capped at limit results.
	SearchByTitle(ctx context.Context, title string, terms []string, limit int) ([]types.DocumentRef, error)
}

// defaultSearchLimit caps fallback title-search results.
const defaultSearchLimit = 15

// ReferenceStrategy is the primary discovery route: direct reference
// listing by document identifier. Placeholder identifiers cannot be
// looked up, so the strategy yields nothing for them and lets the
// fallback take over.
type ReferenceStrategy struct {
	Source Source
}

// Name returns the strategy identifier.
func (s ReferenceStrategy) Name() string { return "references" }

// Discover lists the references of the processed item.
func (s ReferenceStrategy) Discover(ctx context.Context, item types.WorkItem) ([]types.DocumentRef, error) {
	if item.Ref.ID == types.PlaceholderID {
		return nil, nil
	}
	return s.Source.References(ctx, item.Ref.ID)
}

// TitleSearchStrategy is the fallback discovery route: a keyword search
// built from the most significant words of the parent's title.
type TitleSearchStrategy struct {
	Source Source

	// Limit caps the number of search results (default 15).
	Limit int
}

// Name returns the strategy identifier.
func (s TitleSearchStrategy) Name() string { return "title-search" }

// Discover searches the corpus with terms derived from the item's title.
func (s TitleSearchStrategy) Discover(ctx context.Context, item types.WorkItem) ([]types.DocumentRef, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	terms := crawl.SearchTerms(item.Ref.Title)
	if len(terms) == 0 {
		return nil, nil
	}
	return s.Source.SearchByTitle(ctx, item.Ref.Title, terms, limit)
}
