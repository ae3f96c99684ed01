package domain

// Severity ranks a compliance violation.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Violation is one compliance finding against generated content.
type Violation struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// GenerationResult is the final product of one generation task. Image
// payloads are always persisted to blob storage and carried by URL; the
// result never holds raw image bytes. ImageError records a partial failure
// where copy succeeded but the image step did not.
type GenerationResult struct {
	TextContent          string      `json:"text_content"`
	ImageURL             string      `json:"image_url,omitempty"`
	ImagePrompt          string      `json:"image_prompt,omitempty"`
	ImageError           string      `json:"image_error,omitempty"`
	Violations           []Violation `json:"violations,omitempty"`
	RequiresModification bool        `json:"requires_modification"`
}

// Finalize recomputes RequiresModification, which is true iff at least one
// violation has severity error.
func (r *GenerationResult) Finalize() {
	r.RequiresModification = false
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			r.RequiresModification = true
			return
		}
	}
}
