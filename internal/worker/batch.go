package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/zuordnung/internal/model"
)

// Parser defines the interface for parsing one document file
type Parser interface {
	ParseFile(path string, sourceDoc string, sourceType model.SourceType) (*model.ParseResult, error)
}

// ParseJob parses one document file
type ParseJob struct {
	Path       string
	SourceType model.SourceType
	Parser     Parser
}

// Execute executes the parse job
func (j *ParseJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ParseOutcome{Path: j.Path, Error: err}
	}

	result, err := j.Parser.ParseFile(j.Path, "", j.SourceType)
	return &ParseOutcome{
		Path:   j.Path,
		Result: result,
		Error:  err,
	}
}

// ParseOutcome represents the result of a parse job
type ParseOutcome struct {
	Path   string
	Result *model.ParseResult
	Error  error
}

// GetError returns the error from the parse outcome
func (r *ParseOutcome) GetError() error {
	return r.Error
}

// BatchProcessor parses multiple document files concurrently
type BatchProcessor struct {
	parser      Parser
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(parser Parser, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		parser:      parser,
		concurrency: concurrency,
	}
}

// ProcessPaths parses the given files concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string, sourceType model.SourceType) []*ParseOutcome {
	if len(paths) == 0 {
		return []*ParseOutcome{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&ParseJob{
			Path:       path,
			SourceType: sourceType,
			Parser:     b.parser,
		})
	}

	results := pool.Wait()

	outcomes := make([]*ParseOutcome, len(results))
	for i, result := range results {
		outcomes[i] = result.(*ParseOutcome)
	}
	return outcomes
}

// ProcessFile reads document paths from a list file and parses them
// concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string, sourceType model.SourceType) ([]*ParseOutcome, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths, sourceType), nil
}

// ReadPathsFromFile reads document paths from a file (one per line).
// Blank lines and comments are skipped, duplicates are dropped.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
