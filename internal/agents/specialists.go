package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"server/internal/domain"
	"server/internal/products"
	"server/internal/providers/chat"
	imageprov "server/internal/providers/image"
)

// renderBrief flattens a brief into the labelled block the specialist
// instructions expect.
func renderBrief(b domain.CreativeBrief) string {
	pairs := []struct{ label, value string }{
		{"Overview", b.Overview},
		{"Objectives", b.Objectives},
		{"Target audience", b.TargetAudience},
		{"Key message", b.KeyMessage},
		{"Tone and style", b.ToneAndStyle},
		{"Deliverable", b.Deliverable},
		{"Timelines", b.Timelines},
		{"Visual guidelines", b.VisualGuidelines},
		{"Call to action", b.CTA},
	}
	var lines []string
	for _, p := range pairs {
		if strings.TrimSpace(p.value) != "" {
			lines = append(lines, p.label+": "+p.value)
		}
	}
	return strings.Join(lines, "\n")
}

// TextComposer writes the copy deliverable for a confirmed brief.
type TextComposer struct {
	agent *Agent
}

func NewTextComposer(completer chat.Completer) (*TextComposer, error) {
	agent, err := New(NameTextContent, domain.RoleSpecialist, textContentInstructions, completer)
	if err != nil {
		return nil, err
	}
	return &TextComposer{agent: agent}, nil
}

func (c *TextComposer) Compose(ctx context.Context, brief domain.CreativeBrief, productContext string) (string, error) {
	input := renderBrief(brief)
	if productContext != "" {
		input += "\n\nProduct context:\n" + productContext
	}
	out, err := c.agent.Respond(ctx, nil, input)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("agents: text content agent returned empty copy")
	}
	return out, nil
}

// ImagePrompter turns a brief plus product context into an image-model
// prompt, keeping the context within the model's prompt budget.
type ImagePrompter struct {
	agent  *Agent
	budget int
}

func NewImagePrompter(completer chat.Completer, budget int) (*ImagePrompter, error) {
	agent, err := New(NameImageContent, domain.RoleSpecialist, imageContentInstructions, completer)
	if err != nil {
		return nil, err
	}
	if budget <= 0 {
		budget = imageprov.DefaultPromptBudget
	}
	return &ImagePrompter{agent: agent, budget: budget}, nil
}

func (p *ImagePrompter) BuildPrompt(ctx context.Context, brief domain.CreativeBrief, productContext string) (string, error) {
	input := renderBrief(brief)
	if productContext != "" {
		input += "\n\nProduct context:\n" + imageprov.ReduceProductContext(productContext, p.budget)
	}
	out, err := p.agent.Respond(ctx, nil, input)
	if err != nil {
		return "", err
	}
	prompt := decodeImagePrompt(out)
	if prompt == "" {
		return "", fmt.Errorf("agents: image content agent returned empty prompt")
	}
	if len(prompt) > p.budget {
		cut := p.budget - len(imageprov.TruncationMarker)
		if cut < 0 {
			cut = 0
		}
		prompt = prompt[:cut] + imageprov.TruncationMarker
	}
	return prompt, nil
}

// decodeImagePrompt reads {"image_prompt": "..."}; raw text is accepted as a
// degrade path when the model skipped the JSON envelope.
func decodeImagePrompt(raw string) string {
	if payload, err := extractJSONObject(raw); err == nil {
		var out struct {
			ImagePrompt string `json:"image_prompt"`
		}
		if err := json.Unmarshal(payload, &out); err == nil && strings.TrimSpace(out.ImagePrompt) != "" {
			return strings.TrimSpace(out.ImagePrompt)
		}
	}
	return strings.TrimSpace(raw)
}

// Reviewer runs the compliance check over generated text and image prompt.
type Reviewer struct {
	agent *Agent
}

const violationsSchema = `{
  "type": "object",
  "required": ["violations"],
  "additionalProperties": false,
  "properties": {
    "violations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["severity", "message"],
        "additionalProperties": false,
        "properties": {
          "severity": {"type": "string", "enum": ["info", "warning", "error"]},
          "message": {"type": "string"},
          "suggestion": {"type": "string"}
        }
      }
    }
  }
}`

var violationsSchemaLoader = gojsonschema.NewStringLoader(violationsSchema)

func NewReviewer(completer chat.Completer) (*Reviewer, error) {
	agent, err := New(NameCompliance, domain.RoleSpecialist, complianceInstructions, completer)
	if err != nil {
		return nil, err
	}
	return &Reviewer{agent: agent}, nil
}

func (r *Reviewer) Review(ctx context.Context, text, imagePrompt string) ([]domain.Violation, error) {
	input := "Copy under review:\n" + text
	if imagePrompt != "" {
		input += "\n\nImage prompt under review:\n" + imagePrompt
	}
	out, err := r.agent.Respond(ctx, nil, input)
	if err != nil {
		return nil, err
	}
	return DecodeViolations(out)
}

// DecodeViolations extracts and validates the compliance agent's findings.
func DecodeViolations(raw string) ([]domain.Violation, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	result, err := gojsonschema.Validate(violationsSchemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("agents: validate violations: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		return nil, fmt.Errorf("agents: violations rejected by schema: %s", strings.Join(msgs, "; "))
	}
	var out struct {
		Violations []domain.Violation `json:"violations"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("agents: decode violations: %w", err)
	}
	return out.Violations, nil
}

// Researcher assembles product context for a brief through the product
// search port.
type Researcher struct {
	agent    *Agent
	searcher products.Searcher
}

func NewResearcher(completer chat.Completer, searcher products.Searcher) (*Researcher, error) {
	agent, err := New(NameResearch, domain.RoleSpecialist, researchInstructions, completer)
	if err != nil {
		return nil, err
	}
	return &Researcher{agent: agent, searcher: searcher}, nil
}

// ProductContext looks the query up in the catalogue and lets the research
// agent condense the hits. With no searcher configured or no hits it returns
// "" and the pipeline proceeds without product context.
func (r *Researcher) ProductContext(ctx context.Context, query string) (string, error) {
	if r.searcher == nil {
		return "", nil
	}
	hits, err := r.searcher.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("agents: product search: %w", err)
	}
	if len(hits) == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, p := range hits {
		b.WriteString(p.Name)
		b.WriteString(":\n")
		b.WriteString(p.Description)
		b.WriteString("\n\n")
	}
	out, err := r.agent.Respond(ctx, nil, b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
