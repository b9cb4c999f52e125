package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/zuordnung/internal/model"
)

// ErrFrameworkNotFound means a referenced framework short name is unknown
var ErrFrameworkNotFound = errors.New("framework not found")

// Import writes a parse result into the store. Controls land in the
// target framework; mapping sources that do not exist yet are created in
// the source framework so official cross-references never dangle.
// Already-present controls and mappings are left untouched, so importing
// the same document twice adds nothing.
func (s *Store) Import(ctx context.Context, result *model.ParseResult, sourceFramework, targetFramework string) (model.ImportStats, error) {
	var stats model.ImportStats

	srcFW, err := s.FrameworkByShortName(ctx, sourceFramework)
	if err != nil {
		return stats, err
	}
	tgtFW, err := s.FrameworkByShortName(ctx, targetFramework)
	if err != nil {
		return stats, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	// Extracted controls go into the target framework, except source-side
	// identifiers (ISO anchors) which belong to the source framework.
	for _, c := range result.Controls {
		fwID := tgtFW.ID
		if c.Framework.IsAnchor() {
			fwID = srcFW.ID
		}
		added, err := insertControl(ctx, tx, fwID, c.ControlID, c.Title, c.Category)
		if err != nil {
			return stats, err
		}
		if added {
			stats.ControlsAdded++
		}
	}

	for _, m := range result.Mappings {
		srcID, err := controlRowID(ctx, tx, srcFW.ID, m.SourceControlID)
		if err != nil {
			return stats, err
		}
		if srcID == 0 {
			// Referenced source control missing: create it with the known
			// clause title so the mapping never dangles.
			title, category := sourceControlDefaults(m.SourceControlID)
			if _, err := insertControl(ctx, tx, srcFW.ID, m.SourceControlID, title, category); err != nil {
				return stats, err
			}
			srcID, err = controlRowID(ctx, tx, srcFW.ID, m.SourceControlID)
			if err != nil {
				return stats, err
			}
			stats.ControlsAdded++
		}

		tgtID, err := controlRowID(ctx, tx, tgtFW.ID, m.TargetControlID)
		if err != nil {
			return stats, err
		}
		if tgtID == 0 {
			continue
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO mappings (source_control_id, target_control_id, confidence, source_type, source_document)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(source_control_id, target_control_id) DO NOTHING`,
			srcID, tgtID, m.Confidence, string(m.SourceType), m.SourceDocument)
		if err != nil {
			return stats, fmt.Errorf("insert mapping %s -> %s: %w", m.SourceControlID, m.TargetControlID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.MappingsAdded++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit import: %w", err)
	}
	return stats, nil
}

// insertControl adds a control if absent, reporting whether a row was
// written
func insertControl(ctx context.Context, tx *sql.Tx, frameworkID int64, controlID, title, category string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO controls (framework_id, control_id, title, category)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(framework_id, control_id) DO NOTHING`,
		frameworkID, controlID, title, category)
	if err != nil {
		return false, fmt.Errorf("insert control %s: %w", controlID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// controlRowID resolves a control to its row id, 0 when absent
func controlRowID(ctx context.Context, tx *sql.Tx, frameworkID int64, controlID string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM controls WHERE framework_id = ? AND control_id = ?`,
		frameworkID, controlID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lookup control %s: %w", controlID, err)
	}
	return id, nil
}

// sourceControlDefaults picks the title and category for an
// auto-created source control. Management clauses carry their known
// titles; anything else falls back to a placeholder.
func sourceControlDefaults(controlID string) (title, category string) {
	if t, ok := isoClauseTitles[controlID]; ok {
		return t, "Clause"
	}
	if strings.HasPrefix(controlID, "A.") {
		return "ISO " + controlID, "Annex A"
	}
	return "ISO " + controlID, "Clause"
}
