package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/ppiankov/zuordnung/internal/classify"
	"github.com/ppiankov/zuordnung/internal/model"
)

// CSVAdapter reads comma-separated cross-reference tables
type CSVAdapter struct{}

// NewCSVAdapter creates a new CSV adapter
func NewCSVAdapter() *CSVAdapter {
	return &CSVAdapter{}
}

// Name returns the adapter name
func (a *CSVAdapter) Name() string {
	return "csv"
}

// CanHandle checks the filename extension
func (a *CSVAdapter) CanHandle(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".csv")
}

// Read parses the CSV and resolves source/target columns from the header
// row when one is present. Without a recognizable header the first two
// columns are taken positionally and header detection is left to the
// extractor.
func (a *CSVAdapter) Read(data []byte) (*Document, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are the norm in exports
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return &Document{Shape: model.ShapeTabular}, nil
	}

	if cm, ok := detectColumns(records[0]); ok {
		return &Document{
			Shape:           model.ShapeTabular,
			Rows:            rowsFromRecords(records[1:], cm),
			ColumnsDeclared: true,
		}, nil
	}

	// Positional fallback: col 0 = source, col 1 = target. Headerless
	// C5 exports lead with the criterion id instead, followed by title,
	// description and the ISO reference; only a C5-classified first cell
	// selects that layout.
	cm := columnMap{source: 0, target: 1, title: -1, description: -1, category: -1}
	if len(records[0]) >= 4 {
		if tok, ok := classify.Classify(records[0][0]); ok && tok.Framework == model.FrameworkC5 {
			cm = columnMap{target: 0, title: 1, description: 2, source: 3, category: -1}
		}
	}
	return &Document{
		Shape: model.ShapeTabular,
		Rows:  rowsFromRecords(records, cm),
	}, nil
}
