package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// RoutingAction is the coordinator's choice for the next step.
type RoutingAction string

const (
	ActionHandoff RoutingAction = "handoff"
	ActionAskUser RoutingAction = "ask_user"
	ActionRespond RoutingAction = "respond"
)

// RoutingDecision is the structured output the coordinator must emit after
// every turn. It is validated against a strict schema before the router acts
// on it; free text around the JSON object is tolerated, anything else is not.
type RoutingDecision struct {
	Action  RoutingAction `json:"action"`
	Target  string        `json:"target,omitempty"`
	Message string        `json:"message"`
}

const routingSchema = `{
  "type": "object",
  "required": ["action", "message"],
  "additionalProperties": false,
  "properties": {
    "action": {"type": "string", "enum": ["handoff", "ask_user", "respond"]},
    "target": {"type": "string"},
    "message": {"type": "string"}
  }
}`

var routingSchemaLoader = gojsonschema.NewStringLoader(routingSchema)

// DecodeRoutingDecision extracts and validates a routing decision from raw
// coordinator output. It never trusts the model: schema violations and
// missing handoff targets are errors, which the router maps to its
// illegal-handoff path.
func DecodeRoutingDecision(raw string) (RoutingDecision, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return RoutingDecision{}, err
	}
	result, err := gojsonschema.Validate(routingSchemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return RoutingDecision{}, fmt.Errorf("agents: validate routing decision: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		return RoutingDecision{}, fmt.Errorf("agents: routing decision rejected by schema: %s", strings.Join(msgs, "; "))
	}
	var decision RoutingDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return RoutingDecision{}, fmt.Errorf("agents: decode routing decision: %w", err)
	}
	if decision.Action == ActionHandoff && strings.TrimSpace(decision.Target) == "" {
		return RoutingDecision{}, fmt.Errorf("agents: handoff decision without target")
	}
	return decision, nil
}

// extractJSONObject returns the outermost JSON object embedded in the text.
func extractJSONObject(raw string) ([]byte, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("agents: no JSON object in output")
	}
	payload := []byte(raw[start : end+1])
	if !json.Valid(payload) {
		return nil, fmt.Errorf("agents: malformed JSON object in output")
	}
	return payload, nil
}
