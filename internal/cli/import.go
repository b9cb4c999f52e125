package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/zuordnung/internal/model"
	"github.com/ppiankov/zuordnung/internal/pipeline"
	"github.com/ppiankov/zuordnung/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath         string
	importSourceFW string
	importTargetFW string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Parse a document and import its mappings into the database",
	Long: `Import parses a cross-reference document and writes the extracted
controls and mappings into the mapping database. Importing is
idempotent: controls and mappings that already exist are left
untouched, so re-importing the same document adds nothing.

ISO source controls referenced by a mapping but missing from the
database are created automatically with their known clause titles.

Example:
  zuordnung import bsi-zuordnung.txt
  zuordnung import c5-crossref.csv --target-framework C5
  zuordnung import table.html --db ./mappings.db --source-doc "C5 2020"`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&dbPath, "db", "", "database path (default from config)")
	importCmd.Flags().StringVar(&importSourceFW, "source-framework", "ISO27001", "source framework short name")
	importCmd.Flags().StringVar(&importTargetFW, "target-framework", "BSI", "target framework short name")
	importCmd.Flags().StringVar(&sourceDoc, "source-doc", "", "source document label (default: base filename)")
	importCmd.Flags().StringVar(&sourceType, "source-type", "official", "mapping provenance (official, manual, ai_suggested)")
	importCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable parse result cache")
}

// openStore opens the mapping database at the flag path or the
// configured default
func openStore(cfg *model.Config) (*store.Store, error) {
	path := dbPath
	if path == "" {
		path = cfg.Database.Path
	}
	return store.Open(path)
}

func runImport(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx := context.Background()

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = !noCache

	parser := pipeline.NewParser(buildCache(cfg))
	result, err := parser.ParseFile(file, sourceDoc, model.SourceType(sourceType))
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	// Frameworks must exist before anything can be imported.
	if _, err := s.Seed(ctx); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	stats, err := s.Import(ctx, result, importSourceFW, importTargetFW)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Controls added:  %d\n", stats.ControlsAdded)
	fmt.Printf("Mappings added:  %d\n", stats.MappingsAdded)
	return nil
}
