package cli

import (
	"context"
	"fmt"

	"github.com/ppiankov/zuordnung/internal/model"
	"github.com/spf13/cobra"
)

var (
	coverageSource string
	coverageTarget string
	coverageTable  bool
)

// coverageCmd represents the coverage command
var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report mapping coverage between two frameworks",
	Long: `Coverage reports how much of the source framework is mapped to the
target framework. Mappings count in both directions. Gap controls are
target controls nothing maps onto.

Example:
  zuordnung coverage --source ISO27001 --target BSI
  zuordnung coverage --source ISO27001 --target C5 --table`,
	RunE: runCoverage,
}

func init() {
	rootCmd.AddCommand(coverageCmd)

	coverageCmd.Flags().StringVar(&coverageSource, "source", "ISO27001", "source framework short name")
	coverageCmd.Flags().StringVar(&coverageTarget, "target", "BSI", "target framework short name")
	coverageCmd.Flags().BoolVar(&coverageTable, "table", false, "print the full mapping table")
	coverageCmd.Flags().StringVar(&dbPath, "db", "", "database path (default from config)")
}

func runCoverage(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := openStore(model.DefaultConfig())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if coverageTable {
		rows, err := s.CoverageTable(ctx, coverageSource, coverageTarget)
		if err != nil {
			return err
		}
		fmt.Printf("%-10s %-45s %-14s %s\n", "SOURCE", "TITLE", "TARGET", "TYPE")
		for _, row := range rows {
			title := row.SourceTitle
			if len(title) > 45 {
				title = title[:42] + "..."
			}
			fmt.Printf("%-10s %-45s %-14s %s\n", row.SourceID, title, row.TargetID, row.SourceType)
		}
		return nil
	}

	cov, err := s.Coverage(ctx, coverageSource, coverageTarget)
	if err != nil {
		return err
	}

	fmt.Printf("Coverage: %s -> %s\n\n", cov.SourceFramework, cov.TargetFramework)
	fmt.Printf("  Source controls:  %d\n", cov.TotalSourceCount)
	fmt.Printf("  Mapped:           %d (%.1f%%)\n", cov.MappedCount, cov.CoveragePercent)
	fmt.Printf("  Unmapped:         %d\n", cov.UnmappedCount)

	if len(cov.UnmappedControlIDs) > 0 {
		fmt.Printf("\nUnmapped source controls:\n")
		for _, id := range cov.UnmappedControlIDs {
			fmt.Printf("  %s\n", id)
		}
	}
	if len(cov.GapControlIDs) > 0 {
		fmt.Printf("\nTarget controls with no mapping:\n")
		for _, id := range cov.GapControlIDs {
			fmt.Printf("  %s\n", id)
		}
	}
	return nil
}
