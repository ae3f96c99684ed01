// Package brief turns free-text creative briefs into structured form,
// asking follow-up questions rather than inventing missing information.
package brief

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"server/internal/agents"
	"server/internal/domain"
	"server/internal/providers/chat"
)

// ParseResult is the outcome of one clarification pass. Blocked means the
// upstream safety layer refused the request outright; ClarifyingQuestion
// then carries the refusal explanation and the draft is unusable.
type ParseResult struct {
	Draft              domain.CreativeBrief `json:"draft"`
	ClarifyingQuestion string               `json:"clarifying_question,omitempty"`
	Blocked            bool                 `json:"blocked"`
}

// Parser runs the planning agent over free text and independently verifies
// its claims.
type Parser struct {
	planner *agents.Agent
	logger  zerolog.Logger
}

// NewParser builds the clarification loop over a completer.
func NewParser(completer chat.Completer, logger zerolog.Logger) (*Parser, error) {
	planner, err := agents.NewPlanner(completer)
	if err != nil {
		return nil, err
	}
	return &Parser{planner: planner, logger: logger}, nil
}

// Parse extracts a draft brief. The planning agent's "complete" claim is
// never trusted on its own: the critical fields are re-checked here, and a
// claimed-complete brief with an empty critical field is downgraded to
// incomplete. Malformed agent output degrades to label-scan extraction.
func (p *Parser) Parse(ctx context.Context, briefText string) (ParseResult, error) {
	out, err := p.planner.Respond(ctx, nil, briefText)
	if err != nil {
		if errors.Is(err, domain.ErrSafetyRefused) {
			return ParseResult{Blocked: true, ClarifyingQuestion: err.Error()}, nil
		}
		return ParseResult{}, fmt.Errorf("brief: planning turn: %w", err)
	}

	analysis, err := agents.DecodeBriefAnalysis(out)
	if err != nil {
		// Best-effort degrade path; it fills only what the text states and
		// never asks a question.
		p.logger.Warn().Err(err).Msg("brief analysis unparseable, falling back to label scan")
		return ParseResult{Draft: ScanLabels(briefText)}, nil
	}

	var draft domain.CreativeBrief
	for name, value := range analysis.ExtractedFields {
		draft.SetField(name, strings.TrimSpace(value))
	}

	missing := draft.MissingCritical()
	if len(missing) == 0 {
		return ParseResult{Draft: draft}, nil
	}

	question := strings.TrimSpace(analysis.ClarifyingMessage)
	if analysis.Status == "complete" || question == "" {
		if analysis.Status == "complete" {
			p.logger.Warn().Strs("missing", missing).Msg("agent claimed complete brief with empty critical fields, downgrading")
		}
		question = genericQuestion(missing)
	}
	return ParseResult{Draft: draft, ClarifyingQuestion: question}, nil
}

func genericQuestion(missing []string) string {
	labels := make([]string, len(missing))
	for i, name := range missing {
		labels[i] = strings.ReplaceAll(name, "_", " ")
	}
	return fmt.Sprintf("To proceed with generation, please also describe: %s.", strings.Join(labels, ", "))
}
