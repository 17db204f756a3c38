// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sink writes harvested fact records to their output forms: a
// CSV table, an optional SQLite database, and an optional YAML run
// manifest.
package sink

import (
	"strconv"

	"github.com/pdiddy/citeharvest/pkg/types"
)

// Unspecified fills any payload field the extractor left blank, so
// downstream consumers can tell "not reported" from an empty cell.
const Unspecified = "UNSPECIFIED"

// Columns is the output column order. The first and last two columns
// carry provenance; the middle ones come from the extraction payload.
var Columns = []string{
	"doi",
	"species",
	"abundance_or_biomass",
	"number",
	"location",
	"distance_from_seed",
	"title",
}

// payloadColumns are the Columns filled from the extraction payload.
var payloadColumns = []string{"species", "abundance_or_biomass", "number", "location"}

// rowFor flattens one fact record into output column order.
func rowFor(rec types.FactRecord) []string {
	row := make([]string, 0, len(Columns))
	for _, col := range Columns {
		switch col {
		case "doi":
			row = append(row, rec.SourceID)
		case "distance_from_seed":
			row = append(row, strconv.Itoa(rec.Distance))
		case "title":
			row = append(row, rec.Title)
		default:
			v := rec.Payload[col]
			if v == "" {
				v = Unspecified
			}
			row = append(row, v)
		}
	}
	return row
}
