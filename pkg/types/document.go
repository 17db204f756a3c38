// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Placeholder identity used when the seed document carries no
// recognizable DOI or title of its own.
const (
	PlaceholderID    = "SEED_PAPER"
	PlaceholderTitle = "Seed Paper"
)

// DocumentRef identifies a paper discovered in the citation graph.
// Identity is by ID: two refs with equal IDs denote the same document
// regardless of title text.
type DocumentRef struct {
	// ID is the canonical identifier, usually a bare DOI
	// (e.g. "10.1016/j.foreco.2019.03.001").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title as reported by the discovery source.
	Title string `json:"title" yaml:"title"`
}

// WorkItem is one document awaiting processing: a discovered reference
// whose text has already been fetched. Immutable once created; the
// crawler consumes each item exactly once.
type WorkItem struct {
	Ref DocumentRef

	// Distance is the number of reference-hops from the seed document.
	// The seed itself has distance 0.
	Distance int

	// Text is the full text (or abstract) the facts are extracted from.
	Text string
}

// FactRecord is one structured unit of extracted domain information,
// stamped with the document it came from and its graph distance.
// Records are appended to the run result and never mutated afterward.
type FactRecord struct {
	// SourceID is the identifier of the paper the fact was extracted from.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Distance is the BFS depth of the source paper.
	Distance int `json:"distance" yaml:"distance"`

	// Title is the source paper title.
	Title string `json:"title" yaml:"title"`

	// Payload holds the domain fields (species, abundance, location, ...).
	// Opaque to the crawler; only the extractor and the sinks interpret it.
	Payload map[string]string `json:"payload" yaml:"payload"`
}
