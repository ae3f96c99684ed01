package chat

import (
	"context"
	"strings"
)

// StaticCompleter returns canned completions so the service can run in
// development and test environments without provider credentials.
type StaticCompleter struct{}

func NewStaticCompleter() *StaticCompleter {
	return &StaticCompleter{}
}

// Complete echoes a deterministic completion derived from the last history
// entry. Structured-output callers fall back to their degrade paths when the
// canned text does not parse, which is the intended behaviour.
func (s *StaticCompleter) Complete(ctx context.Context, instructions string, history []Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	var b strings.Builder
	b.WriteString("Draft marketing copy based on the supplied brief.")
	if last != "" {
		b.WriteString(" Context: ")
		if len(last) > 120 {
			last = last[:120]
		}
		b.WriteString(last)
	}
	return b.String(), nil
}

var _ Completer = (*StaticCompleter)(nil)
