package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/zuordnung/internal/model"
)

// grammar binds one identifier pattern to its framework tag. Extending
// the classifier means adding a row to the table below, never branching
// logic elsewhere.
type grammar struct {
	framework model.Framework
	pattern   *regexp.Regexp
	cellOnly  bool                    // too loose for free-text line scanning
	normalize func(raw string) string // nil means identity
}

// grammars is ordered most specific first. An earlier grammar claims its
// span before later grammars are consulted, so an ISO-shaped substring
// inside a BSI requirement is never emitted separately.
var grammars = []grammar{
	{
		framework: model.FrameworkBSIStandardRef,
		pattern:   regexp.MustCompile(`BSI-Standard\s+200-[1-4](?:,\s*Kapitel\s+\d+)?`),
		normalize: normalizeStandardRef,
	},
	{
		// The "Elementare Gefaehrdungen" (G0) catalogue is referenced by
		// name, not by identifier.
		framework: model.FrameworkBSIStandardRef,
		pattern:   regexp.MustCompile(`Elementare\s+Gef\w*`),
		normalize: func(string) string { return "BSI-ElemGef" },
	},
	{
		framework: model.FrameworkBSIRequirement,
		pattern:   regexp.MustCompile(`\b[A-Z]{2,5}\.\d+(?:\.\d+)?\.A\d+\b`),
	},
	{
		framework: model.FrameworkC5,
		pattern:   regexp.MustCompile(`\b[A-Z]{2,5}-\d{2}\b`),
	},
	{
		framework: model.FrameworkISO,
		pattern:   regexp.MustCompile(`\bA\.\d+\.\d+(?:\.\d+)?\b`),
	},
	{
		// Clause headings ("9.3 Managementbewertung") open the clause
		// section blocks. Anchored at line start with a capital letter
		// following, so version numbers and dates never match.
		framework: model.FrameworkISO,
		pattern:   regexp.MustCompile(`^(\d+\.\d+(?:\.\d+)*)\s+[A-Z]`),
	},
	{
		// Bare clause references ("4.1", "10.2") appear in table cells
		// but would match version numbers and dates in free text.
		framework: model.FrameworkISO,
		pattern:   regexp.MustCompile(`\b\d+\.\d+\b`),
		cellOnly:  true,
	},
}

var stdRefNumber = regexp.MustCompile(`200-([1-4])`)

// normalizeStandardRef collapses a BSI-Standard reference to the short
// control id used by the store (e.g. "BSI-Std-200-2").
func normalizeStandardRef(raw string) string {
	m := stdRefNumber.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	return "BSI-Std-200-" + m[1]
}

// emptyMarkers are cell values that mean "no mapping"
var emptyMarkers = map[string]bool{
	"": true, "-": true, "n/a": true, "nan": true,
}

// Match is a classified token with its span in the scanned string
type Match struct {
	Token model.Token
	Start int
	End   int
}

// Classify returns the single most specific token for a text fragment,
// or false if no grammar matches. Pure and stateless: the same input
// always yields the same token.
func Classify(fragment string) (model.Token, bool) {
	fragment = strings.TrimSpace(fragment)
	if emptyMarkers[strings.ToLower(fragment)] {
		return model.Token{}, false
	}

	matches := scan(fragment, true)
	if len(matches) == 0 {
		return model.Token{}, false
	}
	return matches[0].Token, true
}

// ClassifyAll returns every identifier in a cell that may list several
// (newline/comma separated values), in order of appearance, deduplicated
// by normalized form.
func ClassifyAll(cell string) []model.Token {
	cell = strings.TrimSpace(cell)
	if emptyMarkers[strings.ToLower(cell)] {
		return nil
	}

	matches := scan(cell, true)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })

	seen := make(map[string]bool)
	var tokens []model.Token
	for _, m := range matches {
		if !seen[m.Token.Normalized] {
			seen[m.Token.Normalized] = true
			tokens = append(tokens, m.Token)
		}
	}
	return tokens
}

// Scan finds all free-text tokens in a line, in order of appearance.
// Cell-only grammars are excluded.
func Scan(line string) []Match {
	matches := scan(line, false)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

// scan runs the grammar table over s. Grammars run in specificity order
// and each match claims its span; later grammars skip claimed text, so
// matching never consumes text belonging to a more specific grammar.
// The returned matches are ordered by grammar specificity.
func scan(s string, includeCellOnly bool) []Match {
	type span struct{ start, end int }
	var claimed []span

	overlaps := func(start, end int) bool {
		for _, c := range claimed {
			if start < c.end && end > c.start {
				return true
			}
		}
		return false
	}

	var matches []Match
	for _, g := range grammars {
		if g.cellOnly && !includeCellOnly {
			continue
		}
		for _, idx := range g.pattern.FindAllStringSubmatchIndex(s, -1) {
			// A capture group narrows the token to the identifier,
			// leaving surrounding context (heading text) unclaimed.
			start, end := idx[0], idx[1]
			if len(idx) > 2 && idx[2] >= 0 {
				start, end = idx[2], idx[3]
			}
			if overlaps(start, end) {
				continue
			}
			claimed = append(claimed, span{start, end})

			raw := s[start:end]
			normalized := raw
			if g.normalize != nil {
				normalized = g.normalize(raw)
			}
			matches = append(matches, Match{
				Token: model.Token{
					Raw:        raw,
					Framework:  g.framework,
					Normalized: normalized,
				},
				Start: start,
				End:   end,
			})
		}
	}
	return matches
}

var categoryPrefix = regexp.MustCompile(`^[A-Z]+`)

// Category derives a control category from the identifier's leading
// letter group (e.g. "ISMS" from "ISMS.1.A3", "OIS" from "OIS-01").
func Category(controlID string) string {
	return categoryPrefix.FindString(controlID)
}
