package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ppiankov/zuordnung/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSeed_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stats, err := s.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if stats.FrameworksAdded != 3 {
		t.Errorf("Expected 3 frameworks added, got %d", stats.FrameworksAdded)
	}
	if stats.ControlsAdded != len(isoControls) {
		t.Errorf("Expected %d controls added, got %d", len(isoControls), stats.ControlsAdded)
	}

	stats, err = s.Seed(ctx)
	if err != nil {
		t.Fatalf("Second seed failed: %v", err)
	}
	if stats.FrameworksAdded != 0 || stats.ControlsAdded != 0 {
		t.Errorf("Expected second seed to add nothing, got %+v", stats)
	}
}

func TestImport_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	result := &model.ParseResult{
		Controls: []model.ControlRecord{
			{Framework: model.FrameworkBSIRequirement, ControlID: "OPS.1.1.A1", Title: "Patch management"},
			{Framework: model.FrameworkBSIRequirement, ControlID: "NET.1.1.A5"},
		},
		Mappings: []model.MappingRecord{
			{SourceControlID: "A.8.8", TargetControlID: "OPS.1.1.A1", SourceType: model.SourceOfficial, Confidence: 1.0, SourceDocument: "zuordnung.pdf"},
			{SourceControlID: "A.8.20", TargetControlID: "NET.1.1.A5", SourceType: model.SourceOfficial, Confidence: 1.0, SourceDocument: "zuordnung.pdf"},
		},
	}

	stats, err := s.Import(ctx, result, "ISO27001", "BSI")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if stats.ControlsAdded != 2 {
		t.Errorf("Expected 2 controls added, got %d", stats.ControlsAdded)
	}
	if stats.MappingsAdded != 2 {
		t.Errorf("Expected 2 mappings added, got %d", stats.MappingsAdded)
	}

	stats, err = s.Import(ctx, result, "ISO27001", "BSI")
	if err != nil {
		t.Fatalf("Re-import failed: %v", err)
	}
	if stats.ControlsAdded != 0 || stats.MappingsAdded != 0 {
		t.Errorf("Expected re-import to add nothing, got %+v", stats)
	}
}

func TestImport_CreatesMissingSourceControl(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	// Clause 9.2 is not seeded as a control; the mapping must create it
	// with the known clause title.
	result := &model.ParseResult{
		Controls: []model.ControlRecord{
			{Framework: model.FrameworkBSIRequirement, ControlID: "DER.3.1.A1"},
		},
		Mappings: []model.MappingRecord{
			{SourceControlID: "9.2", TargetControlID: "DER.3.1.A1", SourceType: model.SourceOfficial, Confidence: 1.0},
		},
	}

	stats, err := s.Import(ctx, result, "ISO27001", "BSI")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if stats.ControlsAdded != 2 {
		t.Errorf("Expected 2 controls added (target + auto-created source), got %d", stats.ControlsAdded)
	}

	controls, err := s.SearchControls(ctx, "9.2", 0)
	if err != nil {
		t.Fatalf("SearchControls failed: %v", err)
	}
	if len(controls) == 0 {
		t.Fatal("Expected auto-created clause 9.2")
	}
	if controls[0].Title != "Internal audit" {
		t.Errorf("Expected clause title 'Internal audit', got %q", controls[0].Title)
	}
	if controls[0].Category != "Clause" {
		t.Errorf("Expected category 'Clause', got %q", controls[0].Category)
	}
}

func TestImport_UnknownFramework(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	_, err := s.Import(ctx, &model.ParseResult{}, "ISO27001", "NIST")
	if err == nil {
		t.Fatal("Expected error for unknown framework, got nil")
	}
}

func TestSearchControls_ExactMatchFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	// "A.5.1" is a prefix of A.5.10 through A.5.19; the exact match must
	// still sort first.
	controls, err := s.SearchControls(ctx, "A.5.1", 0)
	if err != nil {
		t.Fatalf("SearchControls failed: %v", err)
	}
	if len(controls) == 0 {
		t.Fatal("Expected search results")
	}
	if controls[0].ControlID != "A.5.1" {
		t.Errorf("Expected exact match A.5.1 first, got %s", controls[0].ControlID)
	}
}

func TestMappingsFor_Bidirectional(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	result := &model.ParseResult{
		Controls: []model.ControlRecord{
			{Framework: model.FrameworkBSIRequirement, ControlID: "OPS.1.1.A1", Title: "Patch management"},
		},
		Mappings: []model.MappingRecord{
			{SourceControlID: "A.8.8", TargetControlID: "OPS.1.1.A1", SourceType: model.SourceOfficial, Confidence: 1.0},
		},
	}
	if _, err := s.Import(ctx, result, "ISO27001", "BSI"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// Forward direction.
	source, mapped, err := s.MappingsFor(ctx, "A.8.8", 0)
	if err != nil {
		t.Fatalf("MappingsFor failed: %v", err)
	}
	if source.FrameworkShortName != "ISO27001" {
		t.Errorf("Expected framework ISO27001, got %s", source.FrameworkShortName)
	}
	if len(mapped) != 1 || mapped[0].ControlID != "OPS.1.1.A1" {
		t.Fatalf("Expected mapping to OPS.1.1.A1, got %+v", mapped)
	}

	// Reverse direction finds the same link.
	_, mapped, err = s.MappingsFor(ctx, "OPS.1.1.A1", 0)
	if err != nil {
		t.Fatalf("MappingsFor reverse failed: %v", err)
	}
	if len(mapped) != 1 || mapped[0].ControlID != "A.8.8" {
		t.Fatalf("Expected reverse mapping to A.8.8, got %+v", mapped)
	}
}

func TestCoverage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	result := &model.ParseResult{
		Controls: []model.ControlRecord{
			{Framework: model.FrameworkBSIRequirement, ControlID: "OPS.1.1.A1"},
			{Framework: model.FrameworkBSIRequirement, ControlID: "NET.1.1.A5"},
		},
		Mappings: []model.MappingRecord{
			{SourceControlID: "A.8.8", TargetControlID: "OPS.1.1.A1", SourceType: model.SourceOfficial, Confidence: 1.0},
		},
	}
	if _, err := s.Import(ctx, result, "ISO27001", "BSI"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	cov, err := s.Coverage(ctx, "ISO27001", "BSI")
	if err != nil {
		t.Fatalf("Coverage failed: %v", err)
	}
	if cov.TotalSourceCount != len(isoControls) {
		t.Errorf("Expected %d source controls, got %d", len(isoControls), cov.TotalSourceCount)
	}
	if cov.MappedCount != 1 {
		t.Errorf("Expected 1 mapped control, got %d", cov.MappedCount)
	}
	if cov.UnmappedCount != len(isoControls)-1 {
		t.Errorf("Expected %d unmapped, got %d", len(isoControls)-1, cov.UnmappedCount)
	}

	// NET.1.1.A5 has nothing mapping onto it.
	foundGap := false
	for _, id := range cov.GapControlIDs {
		if id == "NET.1.1.A5" {
			foundGap = true
		}
	}
	if !foundGap {
		t.Errorf("Expected NET.1.1.A5 in gap controls, got %v", cov.GapControlIDs)
	}
}

func TestCoverageTable_GapRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	result := &model.ParseResult{
		Controls: []model.ControlRecord{
			{Framework: model.FrameworkBSIRequirement, ControlID: "OPS.1.1.A1", Title: "Patch management"},
		},
		Mappings: []model.MappingRecord{
			{SourceControlID: "A.8.8", TargetControlID: "OPS.1.1.A1", SourceType: model.SourceOfficial, Confidence: 1.0},
		},
	}
	if _, err := s.Import(ctx, result, "ISO27001", "BSI"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	rows, err := s.CoverageTable(ctx, "ISO27001", "BSI")
	if err != nil {
		t.Fatalf("CoverageTable failed: %v", err)
	}

	var mappedRow, gapRows int
	for _, row := range rows {
		if row.SourceID == "A.8.8" {
			if row.TargetID != "OPS.1.1.A1" || row.SourceType != "official" {
				t.Errorf("Unexpected mapped row: %+v", row)
			}
			mappedRow++
		} else if row.SourceType == "gap" && row.TargetID == "" {
			gapRows++
		}
	}
	if mappedRow != 1 {
		t.Errorf("Expected 1 mapped row for A.8.8, got %d", mappedRow)
	}
	if gapRows != len(isoControls)-1 {
		t.Errorf("Expected %d gap rows, got %d", len(isoControls)-1, gapRows)
	}
}

func TestVersionChanges(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	changes := []VersionChange{
		{OldVersion: "2013", NewVersion: "2022", ChangeType: "merged", OldControlID: "A.12.4.1", NewControlID: "A.8.15"},
		{OldVersion: "2013", NewVersion: "2022", ChangeType: "added", NewControlID: "A.5.7"},
	}
	added, err := s.AddVersionChanges(ctx, "ISO27001", changes)
	if err != nil {
		t.Fatalf("AddVersionChanges failed: %v", err)
	}
	if added != 2 {
		t.Errorf("Expected 2 changes added, got %d", added)
	}

	transitions, err := s.VersionTransitions(ctx, "ISO27001")
	if err != nil {
		t.Fatalf("VersionTransitions failed: %v", err)
	}
	if len(transitions) != 1 {
		t.Fatalf("Expected 1 transition, got %d", len(transitions))
	}
	if transitions[0].ChangeCount != 2 {
		t.Errorf("Expected change count 2, got %d", transitions[0].ChangeCount)
	}

	got, err := s.VersionChanges(ctx, "ISO27001", "2013", "2022")
	if err != nil {
		t.Fatalf("VersionChanges failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 changes, got %d", len(got))
	}
	// Ordered by change type, then old control id.
	if got[0].ChangeType != "added" {
		t.Errorf("Expected 'added' first, got %s", got[0].ChangeType)
	}
}
