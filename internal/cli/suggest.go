package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/zuordnung/internal/model"
	"github.com/ppiankov/zuordnung/internal/store"
	"github.com/ppiankov/zuordnung/internal/suggest"
	"github.com/spf13/cobra"
)

var (
	suggestSource string
	suggestTarget string
	suggestModel  string
	suggestImport bool
)

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Propose candidate mappings between two frameworks using an LLM",
	Long: `Suggest asks an LLM to propose mappings between the stored controls
of two frameworks. Proposals are verified against the stored
identifiers; anything the model invents is discarded. Accepted pairs
are marked ai_suggested and never overwrite official mappings.

Requires OPENAI_API_KEY in the environment.

Example:
  zuordnung suggest --source ISO27001 --target BSI
  zuordnung suggest --source ISO27001 --target C5 --import`,
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().StringVar(&suggestSource, "source", "ISO27001", "source framework short name")
	suggestCmd.Flags().StringVar(&suggestTarget, "target", "BSI", "target framework short name")
	suggestCmd.Flags().StringVar(&suggestModel, "model", "", "LLM model name (default: provider default)")
	suggestCmd.Flags().BoolVar(&suggestImport, "import", false, "import accepted suggestions into the database")
	suggestCmd.Flags().StringVar(&dbPath, "db", "", "database path (default from config)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := model.DefaultConfig()

	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = suggestModel
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	provider, err := suggest.NewProvider(suggest.ConfigFromModel(cfg.LLM))
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	req, err := buildSuggestRequest(ctx, s)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Asking %s for %s -> %s candidates (%d x %d controls)\n",
		provider.Name(), suggestSource, suggestTarget, len(req.SourceControls), len(req.TargetControls))

	resp, err := provider.Suggest(ctx, req)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	if len(resp.Pairs) == 0 {
		fmt.Println("No verified suggestions.")
		return nil
	}

	for _, pair := range resp.Pairs {
		fmt.Printf("%s -> %s\n", pair.Source, pair.Target)
	}
	fmt.Fprintf(os.Stderr, "\n%d verified suggestions (model %s, %d tokens)\n",
		len(resp.Pairs), resp.Model, resp.TokensUsed)

	if !suggestImport {
		return nil
	}

	result := &model.ParseResult{
		Mappings: suggest.Mappings(resp, "llm:"+resp.Model, nil),
	}
	stats, err := s.Import(ctx, result, suggestSource, suggestTarget)
	if err != nil {
		return fmt.Errorf("import suggestions: %w", err)
	}
	fmt.Printf("Mappings added: %d\n", stats.MappingsAdded)
	return nil
}

func buildSuggestRequest(ctx context.Context, s *store.Store) (suggest.Request, error) {
	var req suggest.Request

	srcFW, err := s.FrameworkByShortName(ctx, suggestSource)
	if err != nil {
		return req, err
	}
	tgtFW, err := s.FrameworkByShortName(ctx, suggestTarget)
	if err != nil {
		return req, err
	}

	srcControls, err := s.ControlsForFramework(ctx, srcFW.ID)
	if err != nil {
		return req, err
	}
	tgtControls, err := s.ControlsForFramework(ctx, tgtFW.ID)
	if err != nil {
		return req, err
	}

	for _, c := range srcControls {
		req.SourceControls = append(req.SourceControls, suggest.ControlSummary{ID: c.ControlID, Title: c.Title})
	}
	for _, c := range tgtControls {
		req.TargetControls = append(req.TargetControls, suggest.ControlSummary{ID: c.ControlID, Title: c.Title})
	}

	if len(req.SourceControls) == 0 || len(req.TargetControls) == 0 {
		return req, fmt.Errorf("both frameworks need stored controls; run 'zuordnung seed' and 'zuordnung import' first")
	}
	return req, nil
}
