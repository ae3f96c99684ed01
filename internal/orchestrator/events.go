package orchestrator

// EventType tags the variants of a workflow event.
type EventType string

const (
	EventStatus         EventType = "status"
	EventNeedsUserInput EventType = "needs_user_input"
	EventOutput         EventType = "output"
	EventError          EventType = "error"
)

// Event is one entry in a workflow run's event stream. Exactly one terminal
// variant (output, needs_user_input or error) closes every run.
type Event struct {
	Type EventType `json:"type"`

	// Status
	Phase string `json:"phase,omitempty"`

	// NeedsUserInput
	Prompt           string `json:"prompt,omitempty"`
	PendingRequestID string `json:"pending_request_id,omitempty"`

	// Output
	FinalText string `json:"final_text,omitempty"`
	Author    string `json:"author,omitempty"`

	// Error
	Message string `json:"message,omitempty"`

	ConversationID string `json:"conversation_id,omitempty"`
}
