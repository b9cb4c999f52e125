package model

// Framework identifies the grammar family an identifier belongs to
type Framework string

const (
	FrameworkISO            Framework = "ISO"              // ISO/IEC 27001 clause or Annex A control (e.g. A.5.1)
	FrameworkBSIRequirement Framework = "BSI_REQUIREMENT"  // IT-Grundschutz requirement (e.g. ISMS.1.A3)
	FrameworkBSIStandardRef Framework = "BSI_STANDARD_REF" // BSI-Standard 200-x or G0 catalogue reference
	FrameworkC5             Framework = "C5"               // C5 criterion (e.g. OIS-01)
)

// IsAnchor reports whether tokens of this framework govern subsequent
// target identifiers in anchor-shaped documents
func (f Framework) IsAnchor() bool {
	return f == FrameworkISO
}

// Token is a classified identifier found in source text
type Token struct {
	Raw        string    `json:"raw"`        // Exact matched text
	Framework  Framework `json:"framework"`  // Grammar that matched
	Normalized string    `json:"normalized"` // Canonical identifier form
}

// ControlRecord is one normalized control extracted from a document
type ControlRecord struct {
	Framework Framework `json:"framework"`
	ControlID string    `json:"control_id"`
	Title     string    `json:"title,omitempty"`
	Category  string    `json:"category,omitempty"`
}

// Key returns the per-parse uniqueness key (framework, control id)
func (c ControlRecord) Key() string {
	return string(c.Framework) + "|" + c.ControlID
}
