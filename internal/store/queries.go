package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Frameworks lists all frameworks with their control counts
func (s *Store) Frameworks(ctx context.Context) ([]Framework, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.name, f.short_name, f.version, f.description, f.is_active,
		        COUNT(c.id)
		 FROM frameworks f
		 LEFT JOIN controls c ON c.framework_id = f.id
		 GROUP BY f.id
		 ORDER BY f.id`)
	if err != nil {
		return nil, fmt.Errorf("list frameworks: %w", err)
	}
	defer rows.Close()

	var out []Framework
	for rows.Next() {
		var fw Framework
		if err := rows.Scan(&fw.ID, &fw.Name, &fw.ShortName, &fw.Version, &fw.Description, &fw.IsActive, &fw.ControlCount); err != nil {
			return nil, err
		}
		out = append(out, fw)
	}
	return out, rows.Err()
}

// FrameworkByShortName resolves a framework by its short name
func (s *Store) FrameworkByShortName(ctx context.Context, shortName string) (*Framework, error) {
	var fw Framework
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, short_name, version, description, is_active
		 FROM frameworks WHERE short_name = ?`, shortName).
		Scan(&fw.ID, &fw.Name, &fw.ShortName, &fw.Version, &fw.Description, &fw.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrFrameworkNotFound, shortName)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup framework %s: %w", shortName, err)
	}
	return &fw, nil
}

// SearchControls finds controls matching the query in id, title or
// description. An exact identifier match sorts first so "A.5.1" never
// hides behind "A.5.10". Results are capped at 100.
func (s *Store) SearchControls(ctx context.Context, query string, frameworkID int64) ([]Control, error) {
	q := `SELECT c.id, c.framework_id, c.control_id, c.title, c.description, c.category, f.short_name
	      FROM controls c
	      JOIN frameworks f ON f.id = c.framework_id`
	var args []any
	var where []string

	if frameworkID != 0 {
		where = append(where, "c.framework_id = ?")
		args = append(args, frameworkID)
	}
	if query != "" {
		where = append(where, "(c.control_id LIKE ? OR c.title LIKE ? OR c.description LIKE ?)")
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern, pattern)
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	if query != "" {
		q += ` ORDER BY CASE WHEN lower(c.control_id) = lower(?) THEN 0 ELSE 1 END, c.control_id`
		args = append(args, query)
	} else {
		q += ` ORDER BY c.control_id`
	}
	q += ` LIMIT 100`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search controls: %w", err)
	}
	defer rows.Close()

	var out []Control
	for rows.Next() {
		var c Control
		if err := rows.Scan(&c.ID, &c.FrameworkID, &c.ControlID, &c.Title, &c.Description, &c.Category, &c.FrameworkShortName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ControlsForFramework lists every control in a framework, ordered by
// identifier
func (s *Store) ControlsForFramework(ctx context.Context, frameworkID int64) ([]Control, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.framework_id, c.control_id, c.title, c.description, c.category, f.short_name
		 FROM controls c
		 JOIN frameworks f ON f.id = c.framework_id
		 WHERE c.framework_id = ?
		 ORDER BY c.control_id`, frameworkID)
	if err != nil {
		return nil, fmt.Errorf("list controls: %w", err)
	}
	defer rows.Close()

	var out []Control
	for rows.Next() {
		var c Control
		if err := rows.Scan(&c.ID, &c.FrameworkID, &c.ControlID, &c.Title, &c.Description, &c.Category, &c.FrameworkShortName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MappingsFor returns the controls mapped to the given control in
// either direction, together with the control itself
func (s *Store) MappingsFor(ctx context.Context, controlID string, frameworkID int64) (*Control, []MappedControl, error) {
	q := `SELECT c.id, c.framework_id, c.control_id, c.title, c.description, c.category, f.short_name
	      FROM controls c
	      JOIN frameworks f ON f.id = c.framework_id
	      WHERE c.control_id = ?`
	args := []any{controlID}
	if frameworkID != 0 {
		q += " AND c.framework_id = ?"
		args = append(args, frameworkID)
	}

	var source Control
	err := s.db.QueryRowContext(ctx, q, args...).
		Scan(&source.ID, &source.FrameworkID, &source.ControlID, &source.Title, &source.Description, &source.Category, &source.FrameworkShortName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("control not found: %s", controlID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup control %s: %w", controlID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.control_id, c.title, c.description, c.category, f.short_name,
		        m.confidence, m.source_type, m.source_document
		 FROM mappings m
		 JOIN controls c ON c.id = CASE WHEN m.source_control_id = ? THEN m.target_control_id ELSE m.source_control_id END
		 JOIN frameworks f ON f.id = c.framework_id
		 WHERE (m.source_control_id = ? OR m.target_control_id = ?) AND c.id != ?
		 ORDER BY c.control_id`,
		source.ID, source.ID, source.ID, source.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list mappings for %s: %w", controlID, err)
	}
	defer rows.Close()

	var mapped []MappedControl
	for rows.Next() {
		var m MappedControl
		if err := rows.Scan(&m.ControlID, &m.Title, &m.Description, &m.Category, &m.FrameworkShortName, &m.Confidence, &m.SourceType, &m.SourceDocument); err != nil {
			return nil, nil, err
		}
		mapped = append(mapped, m)
	}
	return &source, mapped, rows.Err()
}

// Coverage reports how much of the source framework is mapped to the
// target framework
type Coverage struct {
	SourceFramework    string
	TargetFramework    string
	TotalSourceCount   int
	MappedCount        int
	UnmappedCount      int
	CoveragePercent    float64
	UnmappedControlIDs []string
	GapControlIDs      []string
}

// Coverage computes bidirectional mapping coverage between two
// frameworks. Gap controls are target controls nothing maps onto.
func (s *Store) Coverage(ctx context.Context, sourceFramework, targetFramework string) (*Coverage, error) {
	srcFW, err := s.FrameworkByShortName(ctx, sourceFramework)
	if err != nil {
		return nil, err
	}
	tgtFW, err := s.FrameworkByShortName(ctx, targetFramework)
	if err != nil {
		return nil, err
	}

	srcControls, err := s.ControlsForFramework(ctx, srcFW.ID)
	if err != nil {
		return nil, err
	}
	tgtControls, err := s.ControlsForFramework(ctx, tgtFW.ID)
	if err != nil {
		return nil, err
	}

	srcByID := make(map[int64]string, len(srcControls))
	for _, c := range srcControls {
		srcByID[c.ID] = c.ControlID
	}
	tgtByID := make(map[int64]string, len(tgtControls))
	for _, c := range tgtControls {
		tgtByID[c.ID] = c.ControlID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT m.source_control_id, m.target_control_id
		 FROM mappings m
		 JOIN controls sc ON sc.id = m.source_control_id
		 JOIN controls tc ON tc.id = m.target_control_id
		 WHERE (sc.framework_id = ? AND tc.framework_id = ?)
		    OR (sc.framework_id = ? AND tc.framework_id = ?)`,
		srcFW.ID, tgtFW.ID, tgtFW.ID, srcFW.ID)
	if err != nil {
		return nil, fmt.Errorf("coverage query: %w", err)
	}
	defer rows.Close()

	mappedSrc := make(map[int64]bool)
	mappedTgt := make(map[int64]bool)
	for rows.Next() {
		var a, b int64
		if err := rows.Scan(&a, &b); err != nil {
			return nil, err
		}
		if _, ok := srcByID[a]; ok {
			mappedSrc[a] = true
			mappedTgt[b] = true
		} else {
			mappedSrc[b] = true
			mappedTgt[a] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cov := &Coverage{
		SourceFramework:  srcFW.ShortName,
		TargetFramework:  tgtFW.ShortName,
		TotalSourceCount: len(srcControls),
		MappedCount:      len(mappedSrc),
	}
	cov.UnmappedCount = cov.TotalSourceCount - cov.MappedCount
	if cov.TotalSourceCount > 0 {
		cov.CoveragePercent = float64(cov.MappedCount) / float64(cov.TotalSourceCount) * 100
	}
	for _, c := range srcControls {
		if !mappedSrc[c.ID] {
			cov.UnmappedControlIDs = append(cov.UnmappedControlIDs, c.ControlID)
		}
	}
	for _, c := range tgtControls {
		if !mappedTgt[c.ID] {
			cov.GapControlIDs = append(cov.GapControlIDs, c.ControlID)
		}
	}
	return cov, nil
}

// CoverageRow is one line of the full mapping table between two
// frameworks. Unmapped source controls appear with an empty target and
// source type "gap".
type CoverageRow struct {
	SourceID    string
	SourceTitle string
	TargetID    string
	TargetTitle string
	Confidence  float64
	SourceType  string
}

// CoverageTable produces the full source-to-target mapping table
func (s *Store) CoverageTable(ctx context.Context, sourceFramework, targetFramework string) ([]CoverageRow, error) {
	srcFW, err := s.FrameworkByShortName(ctx, sourceFramework)
	if err != nil {
		return nil, err
	}
	tgtFW, err := s.FrameworkByShortName(ctx, targetFramework)
	if err != nil {
		return nil, err
	}

	srcControls, err := s.ControlsForFramework(ctx, srcFW.ID)
	if err != nil {
		return nil, err
	}

	var out []CoverageRow
	for _, sc := range srcControls {
		rows, err := s.db.QueryContext(ctx,
			`SELECT c.control_id, c.title, m.confidence, m.source_type
			 FROM mappings m
			 JOIN controls c ON c.id = CASE WHEN m.source_control_id = ? THEN m.target_control_id ELSE m.source_control_id END
			 WHERE (m.source_control_id = ? OR m.target_control_id = ?) AND c.framework_id = ?
			 ORDER BY c.control_id`,
			sc.ID, sc.ID, sc.ID, tgtFW.ID)
		if err != nil {
			return nil, fmt.Errorf("coverage table: %w", err)
		}

		found := false
		for rows.Next() {
			var row CoverageRow
			row.SourceID = sc.ControlID
			row.SourceTitle = sc.Title
			if err := rows.Scan(&row.TargetID, &row.TargetTitle, &row.Confidence, &row.SourceType); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, row)
			found = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		if !found {
			out = append(out, CoverageRow{
				SourceID:    sc.ControlID,
				SourceTitle: sc.Title,
				SourceType:  "gap",
			})
		}
	}
	return out, nil
}

// VersionTransitions lists the recorded edition transitions for a
// framework with their change counts
func (s *Store) VersionTransitions(ctx context.Context, frameworkShortName string) ([]Transition, error) {
	fw, err := s.FrameworkByShortName(ctx, frameworkShortName)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT old_version, new_version, COUNT(id)
		 FROM version_changes
		 WHERE framework_id = ?
		 GROUP BY old_version, new_version
		 ORDER BY old_version`, fw.ID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.OldVersion, &t.NewVersion, &t.ChangeCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// VersionChanges lists change records for a framework, optionally
// filtered to one edition transition
func (s *Store) VersionChanges(ctx context.Context, frameworkShortName, oldVersion, newVersion string) ([]VersionChange, error) {
	fw, err := s.FrameworkByShortName(ctx, frameworkShortName)
	if err != nil {
		return nil, err
	}

	q := `SELECT id, old_version, new_version, change_type, old_control_id, new_control_id, description, category
	      FROM version_changes WHERE framework_id = ?`
	args := []any{fw.ID}
	if oldVersion != "" {
		q += " AND old_version = ?"
		args = append(args, oldVersion)
	}
	if newVersion != "" {
		q += " AND new_version = ?"
		args = append(args, newVersion)
	}
	q += " ORDER BY change_type, old_control_id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list version changes: %w", err)
	}
	defer rows.Close()

	var out []VersionChange
	for rows.Next() {
		var vc VersionChange
		if err := rows.Scan(&vc.ID, &vc.OldVersion, &vc.NewVersion, &vc.ChangeType, &vc.OldControlID, &vc.NewControlID, &vc.Description, &vc.Category); err != nil {
			return nil, err
		}
		out = append(out, vc)
	}
	return out, rows.Err()
}

// AddVersionChanges bulk-inserts change records for a framework
func (s *Store) AddVersionChanges(ctx context.Context, frameworkShortName string, changes []VersionChange) (int, error) {
	fw, err := s.FrameworkByShortName(ctx, frameworkShortName)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin version changes: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, ch := range changes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO version_changes (framework_id, old_version, new_version, change_type, old_control_id, new_control_id, description, category)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			fw.ID, ch.OldVersion, ch.NewVersion, ch.ChangeType, ch.OldControlID, ch.NewControlID, ch.Description, ch.Category); err != nil {
			return 0, fmt.Errorf("insert version change: %w", err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit version changes: %w", err)
	}
	return added, nil
}
