package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/zuordnung/internal/model"
	"github.com/ppiankov/zuordnung/internal/pipeline"
	"github.com/ppiankov/zuordnung/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Parse multiple documents from a list file in parallel",
	Long: `Batch parses multiple cross-reference documents concurrently:
- Read document paths from an input file (one per line)
- Parse documents in parallel with a configurable worker count
- Write one JSON report per document

Example:
  zuordnung batch documents.txt
  zuordnung batch documents.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./zuordnung-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&sourceType, "source-type", "official", "mapping provenance (official, manual, ai_suggested)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable parse result cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Concurrency.Workers = concurrency
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	parser := pipeline.NewParser(buildCache(cfg))
	processor := worker.NewBatchProcessor(parser, concurrency)

	fmt.Fprintf(os.Stderr, "Reading document paths from %s\n", file)
	results, err := processor.ProcessFile(ctx, file, model.SourceType(sourceType))
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processing %d documents with %d workers\n\n", len(results), concurrency)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		successCount++

		slug := sanitizeFilename(result.Path)
		jsonPath := filepath.Join(outputDir, slug+".json")
		if err := renderer.RenderJSON(result.Result, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (%d controls, %d mappings, %d warnings)\n",
			result.Path, len(result.Result.Controls), len(result.Result.Mappings), len(result.Result.Warnings))
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d, Success: %d, Failures: %d, Output: %s\n",
		len(results), successCount, failureCount, outputDir)

	return nil
}

// sanitizeFilename turns a document path into a safe report filename
func sanitizeFilename(path string) string {
	s := filepath.Base(path)
	if ext := filepath.Ext(s); ext != "" {
		s = strings.TrimSuffix(s, ext)
	}

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	s = replacer.Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
