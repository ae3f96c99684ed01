package domain

import "time"

// AgentRole distinguishes the coordinator from specialist agents.
type AgentRole string

const (
	RoleCoordinator AgentRole = "coordinator"
	RoleSpecialist  AgentRole = "specialist"
)

// AgentTurn records one exchange with an agent. Turns are append-only and
// never mutated after creation.
type AgentTurn struct {
	AgentName  string    `json:"agent_name"`
	Role       AgentRole `json:"role"`
	InputText  string    `json:"input_text"`
	OutputText string    `json:"output_text"`
}

// Conversation is the ordered turn history for one workflow run. The user
// turn count bounds the run (see the router's caller-turn cap).
type Conversation struct {
	ID        string      `json:"id"`
	Turns     []AgentTurn `json:"turns"`
	UserTurns int         `json:"user_turns"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// LastAgentOutput returns the most recent non-user output text, or "" when no
// agent has spoken yet.
func (c Conversation) LastAgentOutput() string {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].OutputText != "" {
			return c.Turns[i].OutputText
		}
	}
	return ""
}
