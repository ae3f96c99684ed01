package chat

import "context"

// Message is one entry of a completion history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the chat-completion capability port. Implementations classify
// upstream failures with the domain sentinels: domain.ErrUnavailable,
// domain.ErrRateLimited, and domain.ErrSafetyRefused. A safety refusal is a
// hard block by the provider, distinct from a normal completion whose content
// happens to read like a refusal.
type Completer interface {
	Complete(ctx context.Context, instructions string, history []Message) (string, error)
}
