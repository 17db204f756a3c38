// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls structured species observations out of paper
// text through a generative AI backend. Each backend (Claude, OpenAI)
// implements the Backend interface per the Strategy pattern.
package extract

import (
	"bytes"
	"context"
	"text/template"
	"time"
)

// Backend extracts fact payloads from one document's text. Implementations
// must keep each call within a bounded time; the crawler treats a failed
// call as zero facts and moves on.
type Backend interface {
	Extract(ctx context.Context, text string) ([]map[string]string, error)
}

// defaultMaxChars bounds how much document text is sent to the model.
const defaultMaxChars = 40000

// defaultTimeout bounds one extraction call.
const defaultTimeout = 60 * time.Second

// speciesPromptTmpl instructs the model to extract per-species
// observation data and answer with bare JSON.
var speciesPromptTmpl = template.Must(template.New("species").Parse(`Extract species information from this research paper. Return ONLY a JSON array.

For each species in the study, extract:
- species: scientific name (Genus species)
- abundance_or_biomass: population data, density, biomass measurements
- number: specimen count or sample size
- location: study location or habitat

Return format:
[
  {
    "species": "Genus species",
    "abundance_or_biomass": "density/biomass data or not specified",
    "number": "count or not specified",
    "location": "location"
  }
]

Text: {{.Text}}
`))

// renderPrompt executes the extraction prompt with the document text,
// truncated to maxChars.
func renderPrompt(text string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	if len(text) > maxChars {
		text = text[:maxChars]
	}

	var buf bytes.Buffer
	if err := speciesPromptTmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
