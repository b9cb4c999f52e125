// Package extract turns classified identifier tokens into raw control
// and mapping tuples. The anchor engine handles column-layout text where
// a heading governs subsequent entries; the tabular extractor handles
// row-oriented sources with explicit source/target cells. Both produce a
// RawResult that the deduplicator filters before the orchestrator stamps
// provenance onto it.
package extract

import (
	"strings"

	"github.com/ppiankov/zuordnung/internal/classify"
	"github.com/ppiankov/zuordnung/internal/model"
)

// Pair is a raw (source -> target) mapping tuple before provenance
// stamping and deduplication
type Pair struct {
	Source string
	Target string
}

// RawResult collects everything one extraction pass produced
type RawResult struct {
	Controls []model.ControlRecord
	Pairs    []Pair
	Warnings []string
}

// bsiStandardTitles gives BSI-Standard references their published titles
var bsiStandardTitles = map[string]string{
	"BSI-Std-200-1": "BSI-Standard 200-1: Managementsysteme fuer Informationssicherheit (ISMS)",
	"BSI-Std-200-2": "BSI-Standard 200-2: IT-Grundschutz-Methodik",
	"BSI-Std-200-3": "BSI-Standard 200-3: Risikoanalyse auf der Basis von IT-Grundschutz",
	"BSI-Std-200-4": "BSI-Standard 200-4: Business Continuity Management",
	"BSI-ElemGef":   "Elementare Gefaehrdungen (G0) des IT-Grundschutz-Kompendiums",
}

// controlFromToken builds a control record for a classified identifier
func controlFromToken(tok model.Token) model.ControlRecord {
	rec := model.ControlRecord{
		Framework: tok.Framework,
		ControlID: tok.Normalized,
	}
	switch tok.Framework {
	case model.FrameworkISO:
		rec.Category = isoCategory(tok.Normalized)
	case model.FrameworkBSIStandardRef:
		rec.Title = bsiStandardTitles[tok.Normalized]
		rec.Category = "BSI-Standard"
	default:
		rec.Category = classify.Category(tok.Normalized)
	}
	return rec
}

// isoCategory distinguishes Annex A controls from main-body clauses
func isoCategory(controlID string) string {
	if strings.HasPrefix(controlID, "A.") {
		return "Annex A"
	}
	return "Clause"
}
