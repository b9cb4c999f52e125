package model

// SourceType tags the provenance of a mapping
type SourceType string

const (
	SourceOfficial    SourceType = "official"     // From a published cross-reference document
	SourceManual      SourceType = "manual"       // User-entered
	SourceAISuggested SourceType = "ai_suggested" // Proposed by the suggestion provider
)

// Valid reports whether the source type is one of the known provenance tags
func (s SourceType) Valid() bool {
	switch s {
	case SourceOfficial, SourceManual, SourceAISuggested:
		return true
	}
	return false
}

// DefaultConfidence is stamped on every mapping. Semantic equivalence
// scoring would replace this constant; until then it is fixed.
const DefaultConfidence = 1.0

// MappingRecord links a source control to a target control
type MappingRecord struct {
	SourceControlID string     `json:"source_control_id"`
	TargetControlID string     `json:"target_control_id"`
	SourceType      SourceType `json:"source_type"`
	Confidence      float64    `json:"confidence,omitempty"`
	SourceDocument  string     `json:"source_document"`
}

// Key returns the per-parse uniqueness key (source, target, document)
func (m MappingRecord) Key() string {
	return m.SourceControlID + "|" + m.TargetControlID + "|" + m.SourceDocument
}
