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
	seedBSI string
	seedC5  string
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with frameworks and ISO 27001 controls",
	Long: `Seed creates the built-in framework records (ISO27001, BSI, C5) and
the ISO 27001:2022 Annex A controls. Seeding is idempotent.

Cross-reference documents can be ingested in the same run:

Example:
  zuordnung seed
  zuordnung seed --bsi bsi-zuordnung.txt --c5 c5-crossref.csv`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedBSI, "bsi", "", "path to BSI Zuordnungstabelle document")
	seedCmd.Flags().StringVar(&seedC5, "c5", "", "path to C5 cross-reference document")
	seedCmd.Flags().StringVar(&dbPath, "db", "", "database path (default from config)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := model.DefaultConfig()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	stats, err := s.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	fmt.Printf("Frameworks added:  %d\n", stats.FrameworksAdded)
	fmt.Printf("Controls added:    %d\n", stats.ControlsAdded)

	parser := pipeline.NewParser(buildCache(cfg))

	if seedBSI != "" {
		if err := seedDocument(ctx, s, parser, seedBSI, "BSI"); err != nil {
			return err
		}
	}
	if seedC5 != "" {
		if err := seedDocument(ctx, s, parser, seedC5, "C5"); err != nil {
			return err
		}
	}
	return nil
}

func seedDocument(ctx context.Context, s *store.Store, parser *pipeline.Parser, path, targetFramework string) error {
	fmt.Printf("Ingesting %s document: %s\n", targetFramework, path)

	result, err := parser.ParseFile(path, "", model.SourceOfficial)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
	}

	stats, err := s.Import(ctx, result, "ISO27001", targetFramework)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	fmt.Printf("  Controls added: %d, Mappings added: %d\n", stats.ControlsAdded, stats.MappingsAdded)
	return nil
}
