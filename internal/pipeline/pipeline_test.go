package pipeline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/zuordnung/internal/cache"
	"github.com/ppiankov/zuordnung/internal/model"
)

func TestParse_TextWithAnchors(t *testing.T) {
	p := NewParser(nil)

	result, err := p.Parse(model.ParseRequest{
		Shape: model.ShapeTextWithAnchors,
		Lines: []string{
			"A.8.8 Management of technical vulnerabilities",
			"OPS.1.1.A1",
			"OPS.1.1.A2",
		},
		SourceDocument: "kompendium.txt",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.Mappings) != 2 {
		t.Fatalf("Expected 2 mappings, got %d", len(result.Mappings))
	}
	m := result.Mappings[0]
	if m.SourceControlID != "A.8.8" || m.TargetControlID != "OPS.1.1.A1" {
		t.Errorf("Unexpected mapping: %+v", m)
	}
	if m.SourceType != model.SourceOfficial {
		t.Errorf("Expected default source type official, got %s", m.SourceType)
	}
	if m.Confidence != model.DefaultConfidence {
		t.Errorf("Expected default confidence, got %f", m.Confidence)
	}
	if m.SourceDocument != "kompendium.txt" {
		t.Errorf("Expected source document stamped, got %q", m.SourceDocument)
	}
}

func TestParse_ClauseSectionMapsToStandards(t *testing.T) {
	p := NewParser(nil)

	result, err := p.Parse(model.ParseRequest{
		Shape: model.ShapeTextWithAnchors,
		Lines: []string{
			"9.3 Managementbewertung",
			"BSI-Standard 200-2, Kapitel 10",
		},
		SourceDocument: "zuordnungstabelle.txt",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.Mappings) != 1 {
		t.Fatalf("Expected 1 mapping, got %d (warnings %v)", len(result.Mappings), result.Warnings)
	}
	m := result.Mappings[0]
	if m.SourceControlID != "9.3" || m.TargetControlID != "BSI-Std-200-2" {
		t.Errorf("Unexpected mapping: %+v", m)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

func TestParse_Tabular(t *testing.T) {
	p := NewParser(nil)

	result, err := p.Parse(model.ParseRequest{
		Shape: model.ShapeTabular,
		Rows: []model.Row{
			{Source: "A.5.1, A.5.2", Target: "ISMS.1.A3"},
		},
		DefaultSourceType: model.SourceManual,
		ColumnsDeclared:   true,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.Mappings) != 2 {
		t.Fatalf("Expected 2 mappings, got %d", len(result.Mappings))
	}
	for _, m := range result.Mappings {
		if m.SourceType != model.SourceManual {
			t.Errorf("Expected manual source type, got %s", m.SourceType)
		}
	}
}

func TestParse_EmptyInput(t *testing.T) {
	p := NewParser(nil)

	_, err := p.Parse(model.ParseRequest{Shape: model.ShapeTextWithAnchors})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput for no lines, got %v", err)
	}

	_, err = p.Parse(model.ParseRequest{Shape: model.ShapeTabular})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput for no rows, got %v", err)
	}
}

func TestParse_UnsupportedShape(t *testing.T) {
	p := NewParser(nil)

	_, err := p.Parse(model.ParseRequest{Shape: "spreadsheet", Lines: []string{"x"}})
	if !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("Expected ErrUnsupportedShape, got %v", err)
	}
}

func TestParse_InvalidSourceType(t *testing.T) {
	p := NewParser(nil)

	_, err := p.Parse(model.ParseRequest{
		Shape:             model.ShapeTextWithAnchors,
		Lines:             []string{"A.8.8 Title"},
		DefaultSourceType: "guesswork",
	})
	if err == nil {
		t.Fatal("Expected error for invalid source type")
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := NewParser(nil)
	req := model.ParseRequest{
		Shape: model.ShapeTextWithAnchors,
		Lines: []string{
			"A.8.8 Management of technical vulnerabilities",
			"OPS.1.1.A1",
			"BSI-Standard 200-2, Kapitel 8",
			"A.8.20 Networks security",
			"NET.1.1.A5",
		},
		SourceDocument: "doc.txt",
	}

	first, err := p.Parse(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := p.Parse(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("Expected identical results for repeated parses:\n%s\n%s", a, b)
	}
}

func TestParseDocument_DefaultsSourceDocument(t *testing.T) {
	p := NewParser(nil)

	result, err := p.ParseDocument(DocumentRequest{
		Filename: "/data/uploads/mapping.csv",
		Data:     []byte("A.8.8,OPS.1.1.A1\n"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.Mappings) != 1 {
		t.Fatalf("Expected 1 mapping, got %d", len(result.Mappings))
	}
	if result.Mappings[0].SourceDocument != "mapping.csv" {
		t.Errorf("Expected base filename as source document, got %q", result.Mappings[0].SourceDocument)
	}
}

func TestParseDocument_CacheHit(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	p := NewParser(c)

	req := DocumentRequest{
		Filename: "mapping.csv",
		Data:     []byte("A.8.8,OPS.1.1.A1\n"),
	}

	first, err := p.ParseDocument(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	key := cache.Key(req.Filename, "mapping.csv", "", string(req.Data))
	if _, found := c.Get(key); !found {
		t.Fatal("Expected result cached after first parse")
	}

	second, err := p.ParseDocument(req)
	if err != nil {
		t.Fatalf("Expected no error on cache hit, got %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("Expected cached result to equal fresh result:\n%s\n%s", a, b)
	}
}

func TestParseDocument_CorruptCacheEntry(t *testing.T) {
	dir := t.TempDir()
	c := cache.NewDiskCache(dir, time.Minute)
	p := NewParser(c)

	req := DocumentRequest{
		Filename: "mapping.csv",
		Data:     []byte("A.8.8,OPS.1.1.A1\n"),
	}

	if _, err := p.ParseDocument(req); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("Expected 1 cache file, got %d (err %v)", len(entries), err)
	}
	path := filepath.Join(dir, entries[0].Name())
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Expected no error corrupting file, got %v", err)
	}

	result, err := p.ParseDocument(req)
	if err != nil {
		t.Fatalf("Expected fresh parse past corrupt entry, got %v", err)
	}
	if len(result.Mappings) != 1 {
		t.Errorf("Expected 1 mapping, got %d", len(result.Mappings))
	}
}

func TestParseDocument_DistinctProvenanceDistinctKeys(t *testing.T) {
	data := []byte("A.8.8,OPS.1.1.A1\n")
	a := cache.Key("mapping.csv", "upload-a", "", string(data))
	b := cache.Key("mapping.csv", "upload-b", "", string(data))
	if a == b {
		t.Error("Expected different source documents to produce different cache keys")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.csv")
	if err := os.WriteFile(path, []byte("A.8.8,OPS.1.1.A1\n"), 0o644); err != nil {
		t.Fatalf("Expected no error writing fixture, got %v", err)
	}

	p := NewParser(nil)
	result, err := p.ParseFile(path, "", model.SourceOfficial)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Mappings) != 1 {
		t.Fatalf("Expected 1 mapping, got %d", len(result.Mappings))
	}
	if result.Mappings[0].SourceDocument != "mapping.csv" {
		t.Errorf("Expected base filename as source document, got %q", result.Mappings[0].SourceDocument)
	}
}

func TestParseFile_Missing(t *testing.T) {
	p := NewParser(nil)
	_, err := p.ParseFile(filepath.Join(t.TempDir(), "absent.csv"), "", model.SourceOfficial)
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}
