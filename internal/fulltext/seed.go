// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fulltext obtains the processable text of documents: the seed
// paper from a local file, every other paper from the bibliographic
// corpus that discovered it.
package fulltext

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/citeharvest/pkg/types"
)

// Seed is the starting document of a crawl, with whatever identity
// could be recovered from its own text.
type Seed struct {
	ID    string
	Title string
	Text  string
}

// doiRe matches a DOI-shaped token preceded by a "doi" label.
var doiRe = regexp.MustCompile(`(?i)doi:?\s*(10\.\d+/[^\s\]\),;]+)`)

// titleExclusions mark lines that look like running headers or footers
// rather than a paper title.
var titleExclusions = []string{"doi", "page", "journal", "research article"}

const titleScanLines = 15

// LoadSeed reads the seed document from path and recovers a best-effort
// identifier and title from its text. PDF files are extracted with the
// pdf library; any other extension is read as plain text.
func LoadSeed(path string) (Seed, error) {
	var text string
	var err error

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = extractPDFText(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		return Seed{}, fmt.Errorf("reading seed document %s: %w", path, err)
	}

	return ParseSeed(text), nil
}

// ParseSeed recovers seed identity from extracted text. The title is
// the first of the opening lines that is plausibly a title (20-200
// characters, not a running header); a DOI-shaped token anywhere in the
// text supplies the identifier. Placeholders fill whatever cannot be
// recovered.
func ParseSeed(text string) Seed {
	seed := Seed{
		ID:    types.PlaceholderID,
		Title: types.PlaceholderTitle,
		Text:  text,
	}

	if m := doiRe.FindStringSubmatch(text); m != nil {
		seed.ID = m[1]
	}

	lines := strings.Split(text, "\n")
	if len(lines) > titleScanLines {
		lines = lines[:titleScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 20 || len(line) > 200 {
			continue
		}
		if looksLikeHeader(line) {
			continue
		}
		seed.Title = line
		break
	}

	return seed
}

func looksLikeHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range titleExclusions {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}
