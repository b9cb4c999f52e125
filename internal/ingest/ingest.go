// Package ingest converts raw document bytes into the core input
// contract: page-ordered lines for anchor-shaped text, resolved rows for
// tabular sources. Extraction mechanics live here so the parsing core
// only ever sees lines and rows.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppiankov/zuordnung/internal/model"
)

// Document is adapter output ready for a ParseRequest
type Document struct {
	Shape model.DocumentShape
	Lines []string
	Rows  []model.Row

	// ColumnsDeclared is set when the adapter resolved source/target
	// columns from a header row, so the extractor must not drop the
	// first data row as a header.
	ColumnsDeclared bool
}

// Adapter reads one raw document format
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter handles the given filename
	CanHandle(filename string) bool

	// Read converts raw bytes into a Document
	Read(data []byte) (*Document, error)
}

// Registry dispatches filenames to format adapters
type Registry struct {
	adapters []Adapter
	fallback Adapter
}

// NewRegistry creates a registry with the built-in adapters. Plain text
// is the fallback: pre-extracted PDF text arrives without a telling
// extension.
func NewRegistry() *Registry {
	return &Registry{
		adapters: []Adapter{NewCSVAdapter(), NewHTMLAdapter()},
		fallback: NewTextAdapter(),
	}
}

// Find returns the adapter for the given filename
func (r *Registry) Find(filename string) Adapter {
	for _, a := range r.adapters {
		if a.CanHandle(filename) {
			return a
		}
	}
	return r.fallback
}

// Read converts raw bytes using the adapter matching the filename
func (r *Registry) Read(filename string, data []byte) (*Document, error) {
	doc, err := r.Find(filename).Read(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(filename), err)
	}
	return doc, nil
}

// columnMap holds resolved column indexes; -1 means absent
type columnMap struct {
	source      int
	target      int
	title       int
	description int
	category    int
}

// detectColumns maps header cells to semantic roles by keyword, the way
// the published C5 cross-reference sheets label them. The second
// unqualified "Ref" column in those sheets is the ISO reference.
func detectColumns(header []string) (columnMap, bool) {
	cm := columnMap{source: -1, target: -1, title: -1, description: -1, category: -1}
	refSeen := false

	for i, cell := range header {
		low := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case low == "":
			continue
		case strings.Contains(low, "iso") || strings.Contains(low, "27001") || strings.Contains(low, "source"):
			if cm.source == -1 {
				cm.source = i
			}
		case strings.Contains(low, "bsi") || strings.Contains(low, "c5") || strings.Contains(low, "target"):
			if cm.target == -1 {
				cm.target = i
			}
		case strings.Contains(low, "ref"):
			if !refSeen {
				refSeen = true
				if cm.target == -1 {
					cm.target = i
				}
			} else if cm.source == -1 {
				cm.source = i
			}
		case strings.Contains(low, "title"):
			cm.title = i
		case strings.Contains(low, "criteria") || strings.Contains(low, "description") || strings.Contains(low, "basic"):
			cm.description = i
		case strings.Contains(low, "category") || strings.Contains(low, "domain"):
			cm.category = i
		}
	}

	return cm, cm.source != -1 && cm.target != -1
}

// rowsFromRecords applies a column map to raw records
func rowsFromRecords(records [][]string, cm columnMap) []model.Row {
	cell := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make([]model.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, model.Row{
			Source:      cell(rec, cm.source),
			Target:      cell(rec, cm.target),
			Title:       cell(rec, cm.title),
			Description: cell(rec, cm.description),
			Category:    cell(rec, cm.category),
		})
	}
	return rows
}
