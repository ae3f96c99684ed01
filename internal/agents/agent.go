// Package agents defines the specialist roles that make up the content
// generation workflow. Each agent binds one fixed instruction set to one
// chat-completion call and parses that call's structured output.
package agents

import (
	"context"
	"errors"
	"fmt"

	"server/internal/domain"
	"server/internal/providers/chat"
)

// Agent names used across the handoff graph.
const (
	NameCoordinator  = "coordinator"
	NamePlanning     = "planning"
	NameResearch     = "research"
	NameTextContent  = "text_content"
	NameImageContent = "image_content"
	NameCompliance   = "compliance"
)

// Agent is one named role bound to a fixed instruction set.
type Agent struct {
	Name         string
	Role         domain.AgentRole
	Instructions string

	completer chat.Completer
}

// New builds an agent over the given completer.
func New(name string, role domain.AgentRole, instructions string, completer chat.Completer) (*Agent, error) {
	if name == "" {
		return nil, errors.New("agents: name is required")
	}
	if completer == nil {
		return nil, errors.New("agents: completer is required")
	}
	return &Agent{Name: name, Role: role, Instructions: instructions, completer: completer}, nil
}

// Respond runs one turn: the agent's instructions plus the conversation
// history and the current input produce one output text.
func (a *Agent) Respond(ctx context.Context, history []chat.Message, input string) (string, error) {
	msgs := make([]chat.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, chat.Message{Role: "user", Content: input})
	out, err := a.completer.Complete(ctx, a.Instructions, msgs)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.Name, err)
	}
	return out, nil
}

// NewPlanner builds the standalone planning agent used by the brief
// clarification loop.
func NewPlanner(completer chat.Completer) (*Agent, error) {
	return New(NamePlanning, domain.RoleSpecialist, planningInstructions, completer)
}

// Roster is the full agent set for one workflow, keyed by name.
type Roster map[string]*Agent

// NewRoster builds the coordinator and every specialist over one completer.
func NewRoster(completer chat.Completer) (Roster, error) {
	specs := []struct {
		name         string
		role         domain.AgentRole
		instructions string
	}{
		{NameCoordinator, domain.RoleCoordinator, coordinatorInstructions},
		{NamePlanning, domain.RoleSpecialist, planningInstructions},
		{NameResearch, domain.RoleSpecialist, researchInstructions},
		{NameTextContent, domain.RoleSpecialist, textContentInstructions},
		{NameImageContent, domain.RoleSpecialist, imageContentInstructions},
		{NameCompliance, domain.RoleSpecialist, complianceInstructions},
	}
	roster := make(Roster, len(specs))
	for _, s := range specs {
		agent, err := New(s.name, s.role, s.instructions, completer)
		if err != nil {
			return nil, err
		}
		roster[s.name] = agent
	}
	return roster, nil
}
