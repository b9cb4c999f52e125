package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/zuordnung/internal/model"
)

// Renderer writes parse results to JSON and Markdown outputs
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the result as indented JSON to the given path
func (r *Renderer) RenderJSON(result *model.ParseResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes the result as a Markdown report to the given path
func (r *Renderer) RenderMarkdown(result *model.ParseResult, path string) error {
	var b strings.Builder

	b.WriteString("# Control Mapping Report\n\n")
	fmt.Fprintf(&b, "Extracted %d controls and %d mappings.\n\n", len(result.Controls), len(result.Mappings))

	if len(result.Mappings) > 0 {
		b.WriteString("## Mappings\n\n")
		b.WriteString("| Source | Target | Type | Confidence |\n")
		b.WriteString("|--------|--------|------|------------|\n")
		for _, m := range result.Mappings {
			fmt.Fprintf(&b, "| %s | %s | %s | %.2f |\n", m.SourceControlID, m.TargetControlID, m.SourceType, m.Confidence)
		}
		b.WriteString("\n")
	}

	if len(result.Controls) > 0 {
		b.WriteString("## Controls\n\n")
		b.WriteString("| Framework | Control | Title |\n")
		b.WriteString("|-----------|---------|-------|\n")
		for _, c := range result.Controls {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", c.Framework, c.ControlID, c.Title)
		}
		b.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\nGenerated by zuordnung on %s\n", time.Now().UTC().Format(time.RFC3339))
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// RenderSummary prints a short summary to stdout
func (r *Renderer) RenderSummary(result *model.ParseResult) {
	fmt.Printf("Controls:  %d\n", len(result.Controls))
	fmt.Printf("Mappings:  %d\n", len(result.Mappings))
	fmt.Printf("Warnings:  %d\n", len(result.Warnings))
	for _, w := range result.Warnings {
		fmt.Printf("  ⚠ %s\n", w)
	}
}
