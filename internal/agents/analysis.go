package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// BriefAnalysis is the planning agent's structured verdict on a free-text
// brief. The caller re-checks completeness independently; status here is a
// claim, not a fact.
type BriefAnalysis struct {
	Status            string            `json:"status"`
	ExtractedFields   map[string]string `json:"extracted_fields,omitempty"`
	MissingFields     []string          `json:"missing_fields,omitempty"`
	ClarifyingMessage string            `json:"clarifying_message,omitempty"`
}

const briefAnalysisSchema = `{
  "type": "object",
  "required": ["status"],
  "additionalProperties": false,
  "properties": {
    "status": {"type": "string", "enum": ["complete", "incomplete"]},
    "extracted_fields": {"type": "object", "additionalProperties": {"type": "string"}},
    "missing_fields": {"type": "array", "items": {"type": "string"}},
    "clarifying_message": {"type": "string"}
  }
}`

var briefAnalysisSchemaLoader = gojsonschema.NewStringLoader(briefAnalysisSchema)

// DecodeBriefAnalysis extracts and validates a brief analysis from raw
// planning output.
func DecodeBriefAnalysis(raw string) (BriefAnalysis, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return BriefAnalysis{}, err
	}
	result, err := gojsonschema.Validate(briefAnalysisSchemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return BriefAnalysis{}, fmt.Errorf("agents: validate brief analysis: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		return BriefAnalysis{}, fmt.Errorf("agents: brief analysis rejected by schema: %s", strings.Join(msgs, "; "))
	}
	var analysis BriefAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return BriefAnalysis{}, fmt.Errorf("agents: decode brief analysis: %w", err)
	}
	return analysis, nil
}
