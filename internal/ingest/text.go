package ingest

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/ppiankov/zuordnung/internal/model"
)

// TextAdapter reads plain text (pre-extracted PDF text) into
// page-ordered lines for the anchor engine
type TextAdapter struct{}

// NewTextAdapter creates a new plain-text adapter
func NewTextAdapter() *TextAdapter {
	return &TextAdapter{}
}

// Name returns the adapter name
func (a *TextAdapter) Name() string {
	return "text"
}

// CanHandle checks the filename extension
func (a *TextAdapter) CanHandle(filename string) bool {
	low := strings.ToLower(filename)
	return strings.HasSuffix(low, ".txt") || strings.HasSuffix(low, ".text")
}

// Read splits the document into lines, preserving order and dropping
// blank lines the anchor engine would ignore anyway
func (a *TextAdapter) Read(data []byte) (*Document, error) {
	var lines []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Document{
		Shape: model.ShapeTextWithAnchors,
		Lines: lines,
	}, nil
}
