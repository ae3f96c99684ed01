package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/image"
)

type fakeComposer struct {
	fn func(ctx context.Context, brief domain.CreativeBrief, productContext string) (string, error)
}

func (f fakeComposer) Compose(ctx context.Context, brief domain.CreativeBrief, productContext string) (string, error) {
	if f.fn != nil {
		return f.fn(ctx, brief, productContext)
	}
	return "generated copy", nil
}

type fakePrompter struct {
	fn func(ctx context.Context, brief domain.CreativeBrief, productContext string) (string, error)
}

func (f fakePrompter) BuildPrompt(ctx context.Context, brief domain.CreativeBrief, productContext string) (string, error) {
	if f.fn != nil {
		return f.fn(ctx, brief, productContext)
	}
	return "an image prompt", nil
}

type fakeReviewer struct {
	violations []domain.Violation
	err        error
}

func (f fakeReviewer) Review(ctx context.Context, text, imagePrompt string) ([]domain.Violation, error) {
	return f.violations, f.err
}

type fakeImageGen struct {
	err error
}

func (f fakeImageGen) Generate(ctx context.Context, prompt string, opts image.Options) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png bytes"), nil
}

type fakeBlobs struct {
	err error
}

func (f fakeBlobs) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "http://localhost:8080/static/blob.png", nil
}

func (f fakeBlobs) Get(ctx context.Context, url string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func completeBrief() domain.CreativeBrief {
	return domain.CreativeBrief{
		Objectives:     "Drive preorders",
		TargetAudience: "Design-conscious remote workers",
		KeyMessage:     "Light that adapts to you",
		ToneAndStyle:   "Warm and confident",
		Deliverable:    "Instagram post",
	}
}

func newTestManager(t *testing.T, deps Deps) *Manager {
	t.Helper()
	if deps.Composer == nil {
		deps.Composer = fakeComposer{}
	}
	if deps.Prompter == nil {
		deps.Prompter = fakePrompter{}
	}
	if deps.Reviewer == nil {
		deps.Reviewer = fakeReviewer{}
	}
	if deps.Images == nil {
		deps.Images = fakeImageGen{}
	}
	if deps.Blobs == nil {
		deps.Blobs = fakeBlobs{}
	}
	deps.Logger = zerolog.Nop()
	m, err := NewManager(deps)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func waitDone(t *testing.T, m *Manager, id string) {
	t.Helper()
	done, err := m.Done(id)
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish")
	}
}

func TestManagerCompletesWithImage(t *testing.T) {
	m := newTestManager(t, Deps{
		Reviewer: fakeReviewer{violations: []domain.Violation{
			{Severity: domain.SeverityError, Message: "guaranteed outcome claim"},
		}},
	})

	id, err := m.Start(Request{Brief: completeBrief(), GenerateImages: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, m, id)

	task, err := m.Status(id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if task.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, error = %s", task.Status, task.Error)
	}
	res := task.Result
	if res == nil {
		t.Fatal("missing result")
	}
	if res.TextContent == "" || res.ImagePrompt == "" {
		t.Fatalf("result = %+v", res)
	}
	if res.ImageURL != "http://localhost:8080/static/blob.png" {
		t.Fatalf("image url = %q", res.ImageURL)
	}
	if !res.RequiresModification {
		t.Fatal("error-severity violation must set requires_modification")
	}
	if task.StartedAt == nil || task.CompletedAt == nil {
		t.Fatal("missing timestamps")
	}
}

func TestManagerImageFailureIsPartial(t *testing.T) {
	m := newTestManager(t, Deps{
		Images: fakeImageGen{err: fmt.Errorf("image: down: %w", domain.ErrUnavailable)},
	})

	id, err := m.Start(Request{Brief: completeBrief(), GenerateImages: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, m, id)

	task, _ := m.Status(id)
	if task.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, want completed despite image failure", task.Status)
	}
	if task.Result.TextContent == "" {
		t.Fatal("text content must survive image failure")
	}
	if task.Result.ImageError == "" {
		t.Fatal("image_error must record the partial failure")
	}
	if task.Result.ImageURL != "" {
		t.Fatalf("image url = %q on failed image step", task.Result.ImageURL)
	}
}

func TestManagerTextFailureFailsTask(t *testing.T) {
	m := newTestManager(t, Deps{
		Composer: fakeComposer{fn: func(context.Context, domain.CreativeBrief, string) (string, error) {
			return "", errors.New("llm exploded")
		}},
	})

	id, err := m.Start(Request{Brief: completeBrief()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, m, id)

	task, _ := m.Status(id)
	if task.Status != domain.TaskStatusFailed {
		t.Fatalf("status = %s", task.Status)
	}
	if task.Error == "" || task.Result != nil {
		t.Fatalf("task = %+v", task)
	}
}

func TestManagerRejectsIncompleteBrief(t *testing.T) {
	m := newTestManager(t, Deps{})
	brief := completeBrief()
	brief.ToneAndStyle = "   "
	if _, err := m.Start(Request{Brief: brief}); !errors.Is(err, domain.ErrInvalidBrief) {
		t.Fatalf("err = %v", err)
	}
}

func TestManagerStatusUnknownID(t *testing.T) {
	m := newTestManager(t, Deps{})
	if _, err := m.Status("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestManagerStatusMonotonic(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m := newTestManager(t, Deps{
		Composer: fakeComposer{fn: func(ctx context.Context, _ domain.CreativeBrief, _ string) (string, error) {
			close(started)
			<-release
			return "copy", nil
		}},
	})

	id, err := m.Start(Request{Brief: completeBrief()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	<-started
	task, _ := m.Status(id)
	if task.Status != domain.TaskStatusRunning {
		t.Fatalf("mid-run status = %s", task.Status)
	}

	close(release)
	waitDone(t, m, id)
	for i := 0; i < 5; i++ {
		task, _ = m.Status(id)
		if task.Status != domain.TaskStatusCompleted {
			t.Fatalf("terminal state regressed to %s", task.Status)
		}
	}
}

func TestManagerCancel(t *testing.T) {
	started := make(chan struct{})
	m := newTestManager(t, Deps{
		Composer: fakeComposer{fn: func(ctx context.Context, _ domain.CreativeBrief, _ string) (string, error) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}},
	})

	id, err := m.Start(Request{Brief: completeBrief()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-started
	if err := m.Cancel(id); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	waitDone(t, m, id)

	task, _ := m.Status(id)
	if task.Status != domain.TaskStatusFailed {
		t.Fatalf("status = %s", task.Status)
	}
}

func TestManagerEvict(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m := newTestManager(t, Deps{
		Composer: fakeComposer{fn: func(ctx context.Context, _ domain.CreativeBrief, _ string) (string, error) {
			close(started)
			<-release
			return "copy", nil
		}},
	})

	id, _ := m.Start(Request{Brief: completeBrief()})
	<-started
	if err := m.Evict(id); !errors.Is(err, domain.ErrTaskNotDone) {
		t.Fatalf("evicting live task: err = %v", err)
	}

	close(release)
	waitDone(t, m, id)
	if err := m.Evict(id); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if _, err := m.Status(id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("evicted task still visible: %v", err)
	}
}

func TestManagerSweep(t *testing.T) {
	m := newTestManager(t, Deps{})
	id, _ := m.Start(Request{Brief: completeBrief()})
	waitDone(t, m, id)

	if removed := m.sweep(time.Hour); removed != 0 {
		t.Fatalf("fresh task swept: %d", removed)
	}
	if removed := m.sweep(-time.Second); removed != 1 {
		t.Fatalf("sweep removed %d, want 1", removed)
	}
	if _, err := m.Status(id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("swept task still visible: %v", err)
	}
}
