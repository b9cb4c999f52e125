package cli

import (
	"context"
	"fmt"

	"github.com/ppiankov/zuordnung/internal/model"
	"github.com/spf13/cobra"
)

var searchFramework string

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored controls by identifier, title or description",
	Long: `Search finds controls matching the query. An exact identifier match
sorts first.

Example:
  zuordnung search A.8.8
  zuordnung search "patch" --framework BSI`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// mappingsCmd represents the mappings command
var mappingsCmd = &cobra.Command{
	Use:   "mappings <control-id>",
	Short: "Show all mappings for a control",
	Long: `Mappings lists the controls mapped to the given control in either
direction, with provenance and confidence.

Example:
  zuordnung mappings A.8.8
  zuordnung mappings OPS.1.1.A1`,
	Args: cobra.ExactArgs(1),
	RunE: runMappings,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(mappingsCmd)

	searchCmd.Flags().StringVar(&searchFramework, "framework", "", "restrict to one framework short name")
	searchCmd.Flags().StringVar(&dbPath, "db", "", "database path (default from config)")
	mappingsCmd.Flags().StringVar(&dbPath, "db", "", "database path (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := openStore(model.DefaultConfig())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var frameworkID int64
	if searchFramework != "" {
		fw, err := s.FrameworkByShortName(ctx, searchFramework)
		if err != nil {
			return err
		}
		frameworkID = fw.ID
	}

	controls, err := s.SearchControls(ctx, args[0], frameworkID)
	if err != nil {
		return err
	}
	if len(controls) == 0 {
		fmt.Println("No controls found.")
		return nil
	}

	for _, c := range controls {
		fmt.Printf("%-10s %-14s %s\n", c.FrameworkShortName, c.ControlID, c.Title)
	}
	return nil
}

func runMappings(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := openStore(model.DefaultConfig())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	source, mapped, err := s.MappingsFor(ctx, args[0], 0)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s: %s\n\n", source.FrameworkShortName, source.ControlID, source.Title)
	if len(mapped) == 0 {
		fmt.Println("No mappings.")
		return nil
	}

	for _, m := range mapped {
		fmt.Printf("  %-10s %-14s %-12s %.2f  %s\n",
			m.FrameworkShortName, m.ControlID, m.SourceType, m.Confidence, m.Title)
	}
	return nil
}
