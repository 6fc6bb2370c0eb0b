// Package shapers turns a RawRecord into fixed-shape, fully typed entities.
//
// Collection shapers select the first candidate location holding a non-empty
// list and use it in its entirety; rows from different candidates are never
// merged. Each row is then resolved field by field through the canonical
// resolvers, so every field ends up populated. Shaping is deterministic.
package shapers

import (
	"strconv"

	"certforge/internal/canonical"
	"certforge/internal/domain"
)

// MaxSynthesizedRows caps the placeholder rows produced from a count hint.
const MaxSynthesizedRows = 60

// Inputs are the optional collections supplied alongside the record.
type Inputs struct {
	InspectionItems []map[string]any
	Observations    []map[string]any
	// CompanyProfile holds stored branding defaults for the inspector's company.
	CompanyProfile map[string]any
}

// Shape runs every shaper over rec.
func Shape(rec canonical.Record, in Inputs) domain.Certificate {
	circuits := Circuits(rec)
	cert := domain.Certificate{
		Header:          Header(rec),
		Client:          Client(rec),
		Inspector:       Inspector(rec),
		Branding:        Branding(rec, canonical.Record(in.CompanyProfile)),
		Supply:          Supply(rec),
		Installation:    Installation(rec),
		Circuits:        circuits,
		TestResults:     TestResults(rec, circuits),
		Observations:    Observations(rec, in.Observations),
		InspectionItems: InspectionItems(rec, in.InspectionItems),
	}
	cert.Declaration = DeclarationFor(rec, cert.Observations)
	return cert
}

// selectRows returns the caller-supplied rows when present, otherwise the
// first non-empty candidate list in rec.
func selectRows(rec canonical.Record, supplied []map[string]any, paths ...string) []canonical.Record {
	if len(supplied) > 0 {
		rows := make([]canonical.Record, len(supplied))
		for i, m := range supplied {
			rows[i] = canonical.Record(m)
			if rows[i] == nil {
				rows[i] = canonical.Record{}
			}
		}
		return rows
	}
	items, _ := rec.List(paths...)
	rows := make([]canonical.Record, len(items))
	for i, it := range items {
		rows[i] = canonical.AsRecord(it)
	}
	return rows
}

func ordinal(i int) string { return strconv.Itoa(i + 1) }
