// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Models wrap their JSON in markdown fences or surrounding prose often
// enough that a strict parse would throw away usable answers. ParseFacts
// recovers the embedded JSON best-effort.
var (
	fenceOpenRe  = regexp.MustCompile("```(?:json)?\n")
	fenceCloseRe = regexp.MustCompile("\n```")
	embeddedRe   = regexp.MustCompile(`(?s)(\[.*\]|\{.*\})`)
)

// ParseFacts extracts fact payloads from a raw model response. Markdown
// code fences are stripped, the first embedded JSON array or object is
// parsed, a bare object counts as a one-element array, and non-object
// elements are skipped. All payload values are stringified and trimmed.
func ParseFacts(raw string) ([]map[string]string, error) {
	cleaned := fenceOpenRe.ReplaceAllString(raw, "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")

	jsonText := cleaned
	if m := embeddedRe.FindString(cleaned); m != "" {
		jsonText = m
	}

	var items []any
	if err := json.Unmarshal([]byte(jsonText), &items); err != nil {
		var single map[string]any
		if err := json.Unmarshal([]byte(jsonText), &single); err != nil {
			return nil, fmt.Errorf("no JSON array or object in model response")
		}
		items = []any{single}
	}

	var facts []map[string]string
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		payload := make(map[string]string, len(obj))
		for k, v := range obj {
			payload[k] = strings.TrimSpace(stringify(v))
		}
		facts = append(facts, payload)
	}
	return facts, nil
}

// stringify renders a JSON value the way it would read in a table cell.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case float64:
		// Whole numbers print without the trailing ".0" JSON decoding adds.
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%v", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
