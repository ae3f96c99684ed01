package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"server/internal/agents"
	"server/internal/brief"
	"server/internal/convstore"
	"server/internal/domain"
	"server/internal/orchestrator"
	"server/internal/providers/chat"
	"server/internal/tasks"
)

type completerFunc func(ctx context.Context, instructions string, history []chat.Message) (string, error)

func (f completerFunc) Complete(ctx context.Context, instructions string, history []chat.Message) (string, error) {
	return f(ctx, instructions, history)
}

type stubComposer struct {
	text  string
	err   error
	block chan struct{}
}

func (c *stubComposer) Compose(ctx context.Context, _ domain.CreativeBrief, _ string) (string, error) {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return c.text, c.err
}

type stubReviewer struct{}

func (stubReviewer) Review(context.Context, string, string) ([]domain.Violation, error) {
	return nil, nil
}

func completeBrief() domain.CreativeBrief {
	return domain.CreativeBrief{
		Objectives:     "drive preorders",
		TargetAudience: "urban commuters",
		KeyMessage:     "charge anywhere",
		ToneAndStyle:   "confident, plain",
		Deliverable:    "instagram post",
	}
}

func newTestApp(t *testing.T, composer *stubComposer, planner chat.Completer) *App {
	t.Helper()
	mgr, err := tasks.NewManager(tasks.Deps{
		Composer: composer,
		Reviewer: stubReviewer{},
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	app := &App{Logger: zerolog.Nop(), Tasks: mgr}
	if planner != nil {
		parser, err := brief.NewParser(planner, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewParser: %v", err)
		}
		app.Briefs = parser
	}
	return app
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestBriefsParseAsksForMissingFields(t *testing.T) {
	planner := completerFunc(func(context.Context, string, []chat.Message) (string, error) {
		analysis := agents.BriefAnalysis{
			Status:            "incomplete",
			ExtractedFields:   map[string]string{"objectives": "drive preorders"},
			MissingFields:     []string{"target_audience"},
			ClarifyingMessage: "Who is the audience?",
		}
		out, _ := json.Marshal(analysis)
		return string(out), nil
	})
	app := newTestApp(t, &stubComposer{text: "copy"}, planner)

	rec := postJSON(t, app.BriefsParse, map[string]string{"brief_text": "we sell a power bank"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var result brief.ParseResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.ClarifyingQuestion == "" {
		t.Fatal("expected a clarifying question for an incomplete brief")
	}
	if result.Draft.Objectives != "drive preorders" {
		t.Fatalf("draft objectives = %q", result.Draft.Objectives)
	}
}

func TestGenerationsStartRejectsIncompleteBrief(t *testing.T) {
	app := newTestApp(t, &stubComposer{text: "copy"}, nil)

	rec := postJSON(t, app.GenerationsStart, generateRequest{
		Brief: domain.CreativeBrief{Objectives: "sell"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestGenerationsStartAndPoll(t *testing.T) {
	app := newTestApp(t, &stubComposer{text: "launch copy"}, nil)

	rec := postJSON(t, app.GenerationsStart, generateRequest{Brief: completeBrief()})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body %s", rec.Code, rec.Body.String())
	}
	var created generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.TaskID == "" {
		t.Fatal("missing task_id")
	}

	done, err := app.Tasks.Done(created.TaskID)
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not finish")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/generations/"+created.TaskID, nil)
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("task_id", created.TaskID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
	poll := httptest.NewRecorder()
	app.GenerationsStatus(poll, req)
	if poll.Code != http.StatusOK {
		t.Fatalf("poll status = %d; body %s", poll.Code, poll.Body.String())
	}
	var task domain.GenerationTask
	if err := json.Unmarshal(poll.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if task.Status != domain.TaskStatusCompleted {
		t.Fatalf("task status = %q", task.Status)
	}
	if task.Result == nil || task.Result.TextContent != "launch copy" {
		t.Fatalf("unexpected result: %+v", task.Result)
	}
}

func TestGenerationsStatusUnknownTask(t *testing.T) {
	app := newTestApp(t, &stubComposer{text: "copy"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/generations/nope", nil)
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("task_id", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
	rec := httptest.NewRecorder()
	app.GenerationsStatus(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGenerationsStreamEmitsTerminalThenDone(t *testing.T) {
	app := newTestApp(t, &stubComposer{text: "stream copy"}, nil)
	app.HeartbeatInterval = time.Minute

	rec := postJSON(t, app.GenerationsStream, generateRequest{Brief: completeBrief()})
	body := rec.Body.String()

	respIdx := strings.Index(body, "event: agent_response")
	doneIdx := strings.Index(body, "data: [DONE]")
	if respIdx < 0 {
		t.Fatalf("missing agent_response frame: %q", body)
	}
	if doneIdx < 0 {
		t.Fatalf("missing [DONE] frame: %q", body)
	}
	if doneIdx < respIdx {
		t.Fatalf("end marker before terminal event: %q", body)
	}
	if strings.Count(body, "event: agent_response")+strings.Count(body, "event: error") != 1 {
		t.Fatalf("expected exactly one terminal event: %q", body)
	}
}

func TestGenerationsStreamHeartbeatsThenTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	app := newTestApp(t, &stubComposer{text: "copy", block: block}, nil)
	app.HeartbeatInterval = time.Millisecond
	app.MaxHeartbeats = 3

	rec := postJSON(t, app.GenerationsStream, generateRequest{Brief: completeBrief()})
	body := rec.Body.String()

	if got := strings.Count(body, "event: heartbeat"); got != 3 {
		t.Fatalf("heartbeats = %d, want 3: %q", got, body)
	}
	if !strings.Contains(body, "event: error") {
		t.Fatalf("missing timeout error frame: %q", body)
	}
	if !strings.Contains(body, `"code":"timeout"`) {
		t.Fatalf("error frame is not a timeout: %q", body)
	}
	if !strings.HasSuffix(strings.TrimSpace(body), "data: [DONE]") {
		t.Fatalf("stream must end with [DONE]: %q", body)
	}
}

func TestWorkflowRunRespondsDirectly(t *testing.T) {
	decision, _ := json.Marshal(agents.RoutingDecision{
		Action:  agents.ActionRespond,
		Message: "Here is your launch plan.",
	})
	completer := completerFunc(func(context.Context, string, []chat.Message) (string, error) {
		return string(decision), nil
	})
	roster, err := agents.NewRoster(completer)
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	router, err := orchestrator.NewRouter(orchestrator.Options{
		Roster: roster,
		Store:  convstore.NewMemoryStore(),
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	app := &App{Logger: zerolog.Nop(), Workflow: router}

	rec := postJSON(t, app.WorkflowRun, workflowRunRequest{Input: "plan a campaign"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var resp workflowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Final.Type != orchestrator.EventOutput {
		t.Fatalf("final event = %q, want output", resp.Final.Type)
	}
	if resp.Final.FinalText != "Here is your launch plan." {
		t.Fatalf("final text = %q", resp.Final.FinalText)
	}
}

func TestWorkflowResumeUnknownPendingRequest(t *testing.T) {
	completer := completerFunc(func(context.Context, string, []chat.Message) (string, error) {
		return `{"action":"respond","message":"ok"}`, nil
	})
	roster, err := agents.NewRoster(completer)
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	router, err := orchestrator.NewRouter(orchestrator.Options{
		Roster: roster,
		Store:  convstore.NewMemoryStore(),
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	app := &App{Logger: zerolog.Nop(), Workflow: router}

	rec := postJSON(t, app.WorkflowResume, workflowResumeRequest{
		PendingRequestID: "missing",
		Answer:           "blue",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502; body %s", rec.Code, rec.Body.String())
	}
}
