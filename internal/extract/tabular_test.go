package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ppiankov/zuordnung/internal/model"
)

func TestExtractTabular_BasicRows(t *testing.T) {
	rows := []model.Row{
		{Source: "A.8.8", Target: "OPS.1.1.A1"},
		{Source: "A.8.20", Target: "NET.1.1.A5"},
	}

	res := ExtractTabular(rows, true)

	if len(res.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d: %+v", len(res.Pairs), res.Pairs)
	}
	if res.Pairs[0] != (Pair{Source: "A.8.8", Target: "OPS.1.1.A1"}) {
		t.Errorf("Unexpected first pair: %+v", res.Pairs[0])
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", res.Warnings)
	}
}

func TestExtractTabular_HeaderRowSkippedSilently(t *testing.T) {
	rows := []model.Row{
		{Source: "ISO 27001 Reference", Target: "IT-Grundschutz Requirement"},
		{Source: "A.8.8", Target: "OPS.1.1.A1"},
	}

	res := ExtractTabular(rows, false)

	if len(res.Pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d: %+v", len(res.Pairs), res.Pairs)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Expected no warnings for the header row, got %v", res.Warnings)
	}
}

func TestExtractTabular_HeaderNotSkippedWhenColumnsDeclared(t *testing.T) {
	rows := []model.Row{
		{Source: "ISO 27001 Reference", Target: "IT-Grundschutz Requirement"},
		{Source: "A.8.8", Target: "OPS.1.1.A1"},
	}

	res := ExtractTabular(rows, true)

	if len(res.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d: %v", len(res.Warnings), res.Warnings)
	}
	if !strings.Contains(res.Warnings[0], "row 0 skipped") {
		t.Errorf("Expected row 0 warning, got %s", res.Warnings[0])
	}
}

func TestExtractTabular_BadRowWarnsWithIndex(t *testing.T) {
	rows := []model.Row{
		{Source: "A.8.8", Target: "OPS.1.1.A1"},
		{Source: "A.8.20", Target: "not an identifier"},
		{Source: "A.5.1", Target: "ISMS.1.A3"},
	}

	res := ExtractTabular(rows, true)

	if len(res.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d: %+v", len(res.Pairs), res.Pairs)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d: %v", len(res.Warnings), res.Warnings)
	}
	want := fmt.Sprintf("row %d skipped: source %q or target %q is not a recognized identifier",
		1, "A.8.20", "not an identifier")
	if res.Warnings[0] != want {
		t.Errorf("Expected warning %q, got %q", want, res.Warnings[0])
	}
}

func TestExtractTabular_MultiSourceCell(t *testing.T) {
	rows := []model.Row{
		{Source: "A.5.1, A.5.2", Target: "ISMS.1.A3"},
	}

	res := ExtractTabular(rows, true)

	if len(res.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d: %+v", len(res.Pairs), res.Pairs)
	}
	if res.Pairs[0] != (Pair{Source: "A.5.1", Target: "ISMS.1.A3"}) {
		t.Errorf("Unexpected first pair: %+v", res.Pairs[0])
	}
	if res.Pairs[1] != (Pair{Source: "A.5.2", Target: "ISMS.1.A3"}) {
		t.Errorf("Unexpected second pair: %+v", res.Pairs[1])
	}
}

func TestExtractTabular_EmptySourceCellWarns(t *testing.T) {
	rows := []model.Row{
		{Source: "-", Target: "OPS.1.1.A1"},
	}

	res := ExtractTabular(rows, true)

	if len(res.Pairs) != 0 {
		t.Fatalf("Expected no pairs, got %+v", res.Pairs)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %v", res.Warnings)
	}
}

func TestExtractTabular_TitleAndCategoryFromRow(t *testing.T) {
	rows := []model.Row{
		{Source: "A.5.23", Target: "OIS-01", Title: "Organisation of information security", Category: "OIS"},
	}

	res := ExtractTabular(rows, true)

	var target *model.ControlRecord
	for i := range res.Controls {
		if res.Controls[i].ControlID == "OIS-01" {
			target = &res.Controls[i]
		}
	}
	if target == nil {
		t.Fatal("Expected a control record for OIS-01")
	}
	if target.Title != "Organisation of information security" {
		t.Errorf("Unexpected title: %q", target.Title)
	}
	if target.Category != "OIS" {
		t.Errorf("Unexpected category: %q", target.Category)
	}
}

func TestExtractTabular_BareClauseInCell(t *testing.T) {
	// Bare clause references classify inside table cells even though
	// they are excluded from free-text line scans.
	rows := []model.Row{
		{Source: "4.1", Target: "ISMS.1.A1"},
	}

	res := ExtractTabular(rows, true)

	if len(res.Pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d: %+v", len(res.Pairs), res.Pairs)
	}
	if res.Pairs[0].Source != "4.1" {
		t.Errorf("Expected source 4.1, got %s", res.Pairs[0].Source)
	}

	var clause *model.ControlRecord
	for i := range res.Controls {
		if res.Controls[i].ControlID == "4.1" {
			clause = &res.Controls[i]
		}
	}
	if clause == nil {
		t.Fatal("Expected a control record for clause 4.1")
	}
	if clause.Category != "Clause" {
		t.Errorf("Expected category Clause, got %q", clause.Category)
	}
}
