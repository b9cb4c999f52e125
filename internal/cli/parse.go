package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/zuordnung/internal/cache"
	"github.com/ppiankov/zuordnung/internal/model"
	"github.com/ppiankov/zuordnung/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON    string
	outMD      string
	sourceDoc  string
	sourceType string
	noCache    bool
	noFooter   bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a cross-reference document and extract control mappings",
	Long: `Parse extracts controls and mappings from a single document:
- Plain text with ISO anchors (pre-extracted BSI Zuordnungstabelle text)
- CSV cross-reference tables (C5 exports)
- HTML tables

Rows and lines that carry no recognizable identifier are skipped with a
warning; the parse itself only fails on empty input or an unsupported
document shape.

Example:
  zuordnung parse bsi-zuordnung.txt
  zuordnung parse c5-crossref.csv --json mappings.json --md mappings.md
  zuordnung parse table.html --source-doc "C5 2020" --source-type manual`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	parseCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	parseCmd.Flags().StringVar(&sourceDoc, "source-doc", "", "source document label (default: base filename)")
	parseCmd.Flags().StringVar(&sourceType, "source-type", "official", "mapping provenance (official, manual, ai_suggested)")
	parseCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable parse result cache")
	parseCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

// buildCache creates the configured parse-result cache, nil when
// disabled
func buildCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	return cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
}

func runParse(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	parser := pipeline.NewParser(buildCache(cfg))

	if verbose {
		fmt.Fprintf(os.Stderr, "Parsing: %s\n", file)
	}

	result, err := parser.ParseFile(file, sourceDoc, model.SourceType(sourceType))
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(result, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(result)
	return nil
}
