package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/zuordnung/internal/classify"
	"github.com/ppiankov/zuordnung/internal/model"
)

// anchorState is the explicit state threaded through the line fold.
// There is no package-level state: concurrent extractions share nothing.
type anchorState struct {
	anchor *model.Token
}

// ExtractAnchored walks page-ordered lines and attributes every target
// identifier to the nearest preceding anchor identifier, reproducing the
// two-column layout where a left-column heading governs all following
// right-column entries until the next heading.
//
// A re-occurring anchor id starts a fresh association block: the later
// occurrence wins, since documents repeat a heading when a block spans a
// page break. Target identifiers seen before any anchor produce a
// warning and no mapping. The fold is linear in the line count and
// always terminates.
func ExtractAnchored(lines []string) *RawResult {
	res := &RawResult{}
	state := anchorState{}

	for _, line := range lines {
		for _, m := range classify.Scan(line) {
			tok := m.Token

			if tok.Framework.IsAnchor() {
				anchor := tok
				state.anchor = &anchor

				rec := controlFromToken(tok)
				rec.Title = anchorTitle(line, m)
				res.Controls = append(res.Controls, rec)
				continue
			}

			if state.anchor == nil {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("orphan target identifier %s before any anchor", tok.Normalized))
				continue
			}

			res.Controls = append(res.Controls, controlFromToken(tok))
			res.Pairs = append(res.Pairs, Pair{
				Source: state.anchor.Normalized,
				Target: tok.Normalized,
			})
		}
	}

	return res
}

// anchorTitle takes the text after the anchor token as the control
// title, with any other identifier tokens stripped out.
func anchorTitle(line string, m classify.Match) string {
	rest := line[m.End:]
	for _, other := range classify.Scan(rest) {
		rest = strings.Replace(rest, other.Token.Raw, " ", 1)
	}
	return strings.Join(strings.Fields(rest), " ")
}
