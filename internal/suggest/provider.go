// Package suggest proposes candidate mappings between stored controls
// using an LLM. Suggestions are always marked ai_suggested and never
// overwrite official mappings.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/zuordnung/internal/model"
)

// Provider defines the interface for suggestion providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Suggest proposes candidate mappings between the given controls
	Suggest(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ControlSummary is the minimal control view shown to the provider
type ControlSummary struct {
	ID    string
	Title string
}

// Request contains the input for mapping suggestion
type Request struct {
	// SourceControls and TargetControls are the STRICT allowlists of
	// identifiers the provider may pair. Pairs referencing anything
	// else are discarded.
	SourceControls []ControlSummary
	TargetControls []ControlSummary

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// CandidatePair is one proposed source-to-target mapping
type CandidatePair struct {
	Source string
	Target string
}

// Response contains the provider's verified proposals
type Response struct {
	Pairs      []CandidatePair
	Model      string
	TokensUsed int
}

// Config holds suggestion provider configuration
type Config struct {
	// Provider name: "openai", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts model.LLMConfig to suggest.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:  modelConfig.Provider,
		Model:     modelConfig.Model,
		APIKey:    modelConfig.APIKey,
		BaseURL:   modelConfig.BaseURL,
		Timeout:   modelConfig.Timeout,
		MaxTokens: modelConfig.MaxTokens,
	}
}

// NewProvider creates a suggestion provider based on configuration. An
// empty provider name disables suggestions and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown suggestion provider: %s (supported: openai)", config.Provider)
	}
}

// Scorer assigns a confidence to a candidate pair. The current
// implementation is a fixed score; semantic scoring plugs in here.
type Scorer interface {
	Score(pair CandidatePair) float64
}

// FixedScorer scores every pair with the default confidence
type FixedScorer struct{}

// Score returns the default confidence
func (FixedScorer) Score(pair CandidatePair) float64 {
	return model.DefaultConfidence
}

// Mappings converts verified proposals into mapping records marked as
// AI-suggested
func Mappings(resp *Response, sourceDocument string, scorer Scorer) []model.MappingRecord {
	if scorer == nil {
		scorer = FixedScorer{}
	}
	out := make([]model.MappingRecord, 0, len(resp.Pairs))
	for _, pair := range resp.Pairs {
		out = append(out, model.MappingRecord{
			SourceControlID: pair.Source,
			TargetControlID: pair.Target,
			SourceType:      model.SourceAISuggested,
			Confidence:      scorer.Score(pair),
			SourceDocument:  sourceDocument,
		})
	}
	return out
}

// BuildPrompt constructs the default suggestion prompt
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString(`You are mapping information security controls between two compliance frameworks.

CRITICAL RULES:
1. You MUST ONLY pair identifiers from the two lists below.
2. DO NOT invent, abbreviate or reformat identifiers.
3. Only propose pairs where the controls address the same security concern.
4. Output ONE pair per line in exactly this format: SOURCE_ID -> TARGET_ID
5. Output nothing else: no numbering, no explanations.

Source controls:
`)
	for _, c := range req.SourceControls {
		fmt.Fprintf(&b, "- %s: %s\n", c.ID, c.Title)
	}
	b.WriteString("\nTarget controls:\n")
	for _, c := range req.TargetControls {
		fmt.Fprintf(&b, "- %s: %s\n", c.ID, c.Title)
	}

	return b.String()
}

// parsePairs extracts "SOURCE -> TARGET" lines from provider output
func parsePairs(text string) []CandidatePair {
	var pairs []CandidatePair
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		parts := strings.Split(line, "->")
		if len(parts) != 2 {
			continue
		}
		source := strings.TrimSpace(parts[0])
		target := strings.TrimSpace(parts[1])
		if source == "" || target == "" {
			continue
		}
		pairs = append(pairs, CandidatePair{Source: source, Target: target})
	}
	return pairs
}

// verifyPairs drops pairs referencing identifiers outside the request
// allowlists, and deduplicates
func verifyPairs(req Request, pairs []CandidatePair) []CandidatePair {
	sources := make(map[string]bool, len(req.SourceControls))
	for _, c := range req.SourceControls {
		sources[c.ID] = true
	}
	targets := make(map[string]bool, len(req.TargetControls))
	for _, c := range req.TargetControls {
		targets[c.ID] = true
	}

	seen := make(map[string]bool)
	var verified []CandidatePair
	for _, pair := range pairs {
		if !sources[pair.Source] || !targets[pair.Target] {
			continue
		}
		key := pair.Source + "|" + pair.Target
		if seen[key] {
			continue
		}
		seen[key] = true
		verified = append(verified, pair)
	}
	return verified
}
