package extract

import (
	"fmt"

	"github.com/ppiankov/zuordnung/internal/model"
)

// Dedupe enforces the per-parse uniqueness invariants: controls unique
// by (framework, control id), pairs unique by (source, target). First
// occurrence wins; a later repeat with conflicting attributes keeps the
// first-seen values and records a warning noting the discarded variant.
// Output order is first-occurrence order. State is a fresh keyed map per
// call, discarded afterwards.
func Dedupe(raw *RawResult) ([]model.ControlRecord, []Pair, []string) {
	warnings := append([]string(nil), raw.Warnings...)

	controlIdx := make(map[string]int)
	var controls []model.ControlRecord
	for _, rec := range raw.Controls {
		i, seen := controlIdx[rec.Key()]
		if !seen {
			controlIdx[rec.Key()] = len(controls)
			controls = append(controls, rec)
			continue
		}

		first := &controls[i]
		// A later occurrence may fill fields the first left empty, but
		// never overrides a value already seen.
		if first.Title == "" {
			first.Title = rec.Title
		} else if rec.Title != "" && rec.Title != first.Title {
			warnings = append(warnings,
				fmt.Sprintf("duplicate control %s: keeping title %q, discarding %q",
					rec.ControlID, first.Title, rec.Title))
		}
		if first.Category == "" {
			first.Category = rec.Category
		}
	}

	pairSeen := make(map[Pair]bool)
	var pairs []Pair
	for _, p := range raw.Pairs {
		if pairSeen[p] {
			warnings = append(warnings,
				fmt.Sprintf("duplicate mapping %s -> %s ignored", p.Source, p.Target))
			continue
		}
		pairSeen[p] = true
		pairs = append(pairs, p)
	}

	return controls, pairs, warnings
}
