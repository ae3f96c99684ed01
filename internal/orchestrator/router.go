package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/agents"
	"server/internal/convstore"
	"server/internal/domain"
	"server/internal/providers/chat"
)

// DefaultMaxUserTurns bounds how many caller turns one conversation may
// consume before the router forces a terminal output.
const DefaultMaxUserTurns = 10

// defaultMaxHops bounds agent-to-agent handoffs within a single caller turn.
const defaultMaxHops = 16

// Options configures a Router.
type Options struct {
	Graph        Graph
	Roster       agents.Roster
	Store        convstore.Store
	Logger       zerolog.Logger
	MaxUserTurns int
	MaxHops      int
}

// Router walks the handoff graph: the coordinator decides every hop through a
// validated routing decision, specialists always return control to the
// coordinator, and the caller-turn cap is a hard stop.
type Router struct {
	graph        Graph
	roster       agents.Roster
	store        convstore.Store
	logger       zerolog.Logger
	maxUserTurns int
	maxHops      int
}

// NewRouter validates the graph against the roster and builds a router.
func NewRouter(opts Options) (*Router, error) {
	if opts.Roster == nil {
		return nil, errors.New("orchestrator: roster is required")
	}
	if opts.Store == nil {
		return nil, errors.New("orchestrator: conversation store is required")
	}
	graph := opts.Graph
	if len(graph.edges) == 0 {
		graph = DefaultGraph()
	}
	var specialists []string
	for name, agent := range opts.Roster {
		if agent.Role == domain.RoleSpecialist {
			specialists = append(specialists, name)
		}
	}
	if err := graph.Validate(agents.NameCoordinator, specialists); err != nil {
		return nil, err
	}
	maxUserTurns := opts.MaxUserTurns
	if maxUserTurns <= 0 {
		maxUserTurns = DefaultMaxUserTurns
	}
	maxHops := opts.MaxHops
	if maxHops <= 0 {
		maxHops = defaultMaxHops
	}
	return &Router{
		graph:        graph,
		roster:       opts.Roster,
		store:        opts.Store,
		logger:       opts.Logger,
		maxUserTurns: maxUserTurns,
		maxHops:      maxHops,
	}, nil
}

// Run starts or continues the conversation with one caller turn and streams
// workflow events until the turn settles. The channel is closed after the
// terminal event.
func (r *Router) Run(ctx context.Context, conversationID, input string) <-chan Event {
	ch := make(chan Event, 8)
	go func() {
		defer close(ch)
		rec, err := r.loadOrCreate(ctx, conversationID)
		if err != nil {
			ch <- Event{Type: EventError, Message: err.Error()}
			return
		}
		r.callerTurn(ctx, rec, input, ch)
	}()
	return ch
}

// Resume answers a pending clarification request and continues the suspended
// conversation.
func (r *Router) Resume(ctx context.Context, pendingRequestID, answer string) <-chan Event {
	ch := make(chan Event, 8)
	go func() {
		defer close(ch)
		recs, err := r.store.Query(ctx, convstore.Filter{PendingRequestID: pendingRequestID, Limit: 1})
		if err != nil {
			ch <- Event{Type: EventError, Message: fmt.Sprintf("load pending request: %v", err)}
			return
		}
		if len(recs) == 0 {
			ch <- Event{Type: EventError, Message: fmt.Sprintf("unknown pending request %q", pendingRequestID)}
			return
		}
		rec := recs[0]
		rec.PendingRequestID = ""
		rec.PendingPrompt = ""
		r.callerTurn(ctx, &rec, answer, ch)
	}()
	return ch
}

func (r *Router) loadOrCreate(ctx context.Context, conversationID string) (*convstore.Record, error) {
	if conversationID == "" {
		return &convstore.Record{ID: uuid.NewString()}, nil
	}
	rec, err := r.store.Get(ctx, conversationID, "")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &convstore.Record{ID: conversationID}, nil
		}
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return rec, nil
}

// callerTurn accounts one external caller turn against the cap, then drives
// the handoff loop for it.
func (r *Router) callerTurn(ctx context.Context, rec *convstore.Record, input string, ch chan<- Event) {
	rec.UserTurns++
	if rec.UserTurns > r.maxUserTurns {
		final := rec2conversation(rec).LastAgentOutput()
		if final == "" {
			final = "The conversation turn limit was reached before any content was produced."
		}
		r.logger.Warn().Str("conversation_id", rec.ID).Int("user_turns", rec.UserTurns).Msg("caller turn cap reached")
		r.persist(ctx, rec)
		ch <- Event{Type: EventOutput, FinalText: final, Author: agents.NameCoordinator, ConversationID: rec.ID}
		return
	}
	r.drive(ctx, rec, input, ch)
}

// drive runs the handoff loop for one caller turn. Control starts at the
// coordinator; every hop it requests is checked against the graph before it
// is followed.
func (r *Router) drive(ctx context.Context, rec *convstore.Record, input string, ch chan<- Event) {
	current := agents.NameCoordinator
	for hop := 0; hop < r.maxHops; hop++ {
		agent, ok := r.roster[current]
		if !ok {
			r.fail(ctx, rec, ch, fmt.Sprintf("agent %q is not registered", current))
			return
		}

		out, err := agent.Respond(ctx, historyMessages(rec.Turns), input)
		if err != nil {
			r.logger.Error().Err(err).Str("agent", current).Str("conversation_id", rec.ID).Msg("agent turn failed")
			r.fail(ctx, rec, ch, fmt.Sprintf("agent %s failed: %v", current, err))
			return
		}
		rec.Turns = append(rec.Turns, domain.AgentTurn{
			AgentName:  current,
			Role:       agent.Role,
			InputText:  input,
			OutputText: out,
		})

		if current != agents.NameCoordinator {
			// Specialists never hand off on their own; their output returns
			// to the coordinator.
			input = out
			current = agents.NameCoordinator
			continue
		}

		decision, err := agents.DecodeRoutingDecision(out)
		if err != nil {
			r.logger.Warn().Err(err).Str("conversation_id", rec.ID).Msg("unroutable coordinator decision")
			r.fail(ctx, rec, ch, fmt.Sprintf("%v: %v", domain.ErrIllegalHandoff, err))
			return
		}

		switch decision.Action {
		case agents.ActionRespond:
			r.persist(ctx, rec)
			ch <- Event{Type: EventOutput, FinalText: decision.Message, Author: current, ConversationID: rec.ID}
			return

		case agents.ActionAskUser:
			rec.PendingRequestID = uuid.NewString()
			rec.PendingPrompt = decision.Message
			r.persist(ctx, rec)
			ch <- Event{
				Type:             EventNeedsUserInput,
				Prompt:           decision.Message,
				PendingRequestID: rec.PendingRequestID,
				ConversationID:   rec.ID,
			}
			return

		case agents.ActionHandoff:
			target := strings.TrimSpace(decision.Target)
			if _, ok := r.roster[target]; !ok || !r.graph.Allowed(current, target) {
				r.logger.Warn().Str("from", current).Str("to", target).Str("conversation_id", rec.ID).Msg("illegal handoff target")
				r.fail(ctx, rec, ch, fmt.Sprintf("%v: %s -> %s", domain.ErrIllegalHandoff, current, target))
				return
			}
			ch <- Event{Type: EventStatus, Phase: target, ConversationID: rec.ID}
			input = decision.Message
			current = target
		}
	}
	r.fail(ctx, rec, ch, "handoff hop limit reached")
}

// fail persists what we have and emits a single terminal error event; agent
// failures never escape the router boundary.
func (r *Router) fail(ctx context.Context, rec *convstore.Record, ch chan<- Event, msg string) {
	r.persist(ctx, rec)
	ch <- Event{Type: EventError, Message: msg, ConversationID: rec.ID}
}

func (r *Router) persist(ctx context.Context, rec *convstore.Record) {
	if _, err := r.store.Upsert(ctx, rec); err != nil {
		r.logger.Error().Err(err).Str("conversation_id", rec.ID).Msg("persist conversation failed")
	}
}

// historyMessages flattens prior turns into completion history.
func historyMessages(turns []domain.AgentTurn) []chat.Message {
	msgs := make([]chat.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, chat.Message{
			Role:    "assistant",
			Content: t.AgentName + ": " + t.OutputText,
		})
	}
	return msgs
}

func rec2conversation(rec *convstore.Record) domain.Conversation {
	return domain.Conversation{
		ID:        rec.ID,
		Turns:     rec.Turns,
		UserTurns: rec.UserTurns,
		UpdatedAt: rec.UpdatedAt,
	}
}
