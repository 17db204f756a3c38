// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citeharvest pipeline.
package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citeharvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CrawlConfig holds settings for the traversal loop.
type CrawlConfig struct {
	// MaxPapers is the global visit budget: the maximum number of
	// documents ever dequeued for processing (default 20).
	MaxPapers int `json:"max_papers" yaml:"max_papers"`

	// MaxDepth is the per-branch depth limit. Discovery is skipped for
	// items at this distance, so no work item exceeds it (default 2).
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Keywords filters discovered candidates: when non-empty, only
	// candidates whose title contains at least one keyword
	// (case-insensitive) are fetched. Empty retains all.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Delay is the pause between successive document-processing
	// iterations, a courtesy to rate-limited upstream APIs (default 3s).
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// Corpus identifies the bibliographic API used for discovery and text.
type Corpus string

const (
	CorpusScopus   Corpus = "scopus"
	CorpusOpenAlex Corpus = "openalex"
)

// DiscoveryConfig holds settings for the reference/search backends.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// Corpus selects the bibliographic backend: scopus or openalex.
	Corpus Corpus `json:"corpus" yaml:"corpus"`

	// ScopusAPIKey authenticates against the Elsevier Scopus API.
	ScopusAPIKey string `json:"scopus_api_key,omitempty" yaml:"scopus_api_key,omitempty"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// RefsPerPaper caps how many references the reference listing yields
	// per parent document (default 10).
	RefsPerPaper int `json:"refs_per_paper" yaml:"refs_per_paper"`

	// SearchLimit is the result cap for fallback title search (default 15).
	SearchLimit int `json:"search_limit" yaml:"search_limit"`
}

// AIProvider identifies the generative AI backend used for extraction.
type AIProvider string

const (
	ProviderClaude AIProvider = "claude"
	ProviderOpenAI AIProvider = "openai"
)

// ExtractionConfig holds settings for the fact-extraction stage.
type ExtractionConfig struct {
	// Provider selects the AI backend: claude or openai.
	Provider AIProvider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "claude-3-haiku-20240307").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxChars truncates document text sent to the model (default 40000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`

	// Timeout is the per-call deadline for extraction requests (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// SinkConfig holds settings for result output.
type SinkConfig struct {
	// OutputPath is the CSV file the fact table is written to.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// DBPath, when set, additionally archives records to a SQLite database.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`

	// ManifestPath, when set, writes a YAML run summary next to the results.
	ManifestPath string `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty"`
}

// PipelineConfig groups all stage configurations for one harvest run.
type PipelineConfig struct {
	Crawl      CrawlConfig      `json:"crawl" yaml:"crawl"`
	Discovery  DiscoveryConfig  `json:"discovery" yaml:"discovery"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Sink       SinkConfig       `json:"sink" yaml:"sink"`
}
