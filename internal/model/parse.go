package model

// DocumentShape declares the structural mode of an input document
type DocumentShape string

const (
	// ShapeTextWithAnchors is anchor-based free text: a left-column
	// heading governs subsequent entries until the next heading.
	ShapeTextWithAnchors DocumentShape = "text-with-anchors"

	// ShapeTabular is an explicit row/column table with declared
	// source and target cells.
	ShapeTabular DocumentShape = "tabular"
)

// Row is one row of a tabular source after column resolution.
// Source and Target hold the raw cell text; a source cell may list
// several identifiers. The remaining fields are optional metadata for
// the target control.
type Row struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// ParseRequest is the core input contract for one parse invocation
type ParseRequest struct {
	Shape             DocumentShape `json:"shape"`
	Lines             []string      `json:"lines,omitempty"` // for text-with-anchors
	Rows              []Row         `json:"rows,omitempty"`  // for tabular
	SourceDocument    string        `json:"source_document"`
	DefaultSourceType SourceType    `json:"default_source_type"`

	// ColumnsDeclared marks that the caller resolved the source/target
	// columns itself, so the first row is never treated as a header.
	ColumnsDeclared bool `json:"columns_declared,omitempty"`
}

// ParseResult is the output of one parse invocation. Slices are ordered
// by first occurrence in the source input; no two controls share a
// (framework, control id) key and no two mappings share a
// (source, target, source document) key.
type ParseResult struct {
	Controls []ControlRecord `json:"controls"`
	Mappings []MappingRecord `json:"mappings"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ImportStats reports what an import actually added to the store.
// Counts reflect only records that did not already exist.
type ImportStats struct {
	ControlsAdded int `json:"controls_added"`
	MappingsAdded int `json:"mappings_added"`
}
