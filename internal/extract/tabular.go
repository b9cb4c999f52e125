package extract

import (
	"fmt"

	"github.com/ppiankov/zuordnung/internal/classify"
	"github.com/ppiankov/zuordnung/internal/model"
)

// ExtractTabular emits one mapping tuple per (source identifier, target
// identifier) combination found in each row. No anchor state is needed:
// the association is explicit in the row structure.
//
// When the caller did not declare the columns itself, the first row
// whose cells both fail classification is dropped as the header. Any
// other row with an unclassifiable cell is skipped with a warning
// carrying the row index; one bad row never aborts the batch.
func ExtractTabular(rows []model.Row, columnsDeclared bool) *RawResult {
	res := &RawResult{}

	for i, row := range rows {
		sources := classify.ClassifyAll(row.Source)
		target, targetOK := classify.Classify(row.Target)

		if len(sources) == 0 || !targetOK {
			if i == 0 && !columnsDeclared && len(sources) == 0 && !targetOK {
				continue // header row
			}
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("row %d skipped: source %q or target %q is not a recognized identifier",
					i, row.Source, row.Target))
			continue
		}

		rec := controlFromToken(target)
		if row.Title != "" {
			rec.Title = row.Title
		}
		if row.Category != "" {
			rec.Category = row.Category
		}
		res.Controls = append(res.Controls, rec)

		for _, src := range sources {
			res.Controls = append(res.Controls, controlFromToken(src))
			res.Pairs = append(res.Pairs, Pair{
				Source: src.Normalized,
				Target: target.Normalized,
			})
		}
	}

	return res
}
