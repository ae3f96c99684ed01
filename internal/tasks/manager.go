// Package tasks owns the lifecycle of background generation work. A task is
// created pending, picked up by exactly one goroutine that is its sole
// writer, and observed by any number of pollers through snapshots.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/image"
	"server/internal/storage"
)

// TextComposer writes the copy for a confirmed brief.
type TextComposer interface {
	Compose(ctx context.Context, brief domain.CreativeBrief, productContext string) (string, error)
}

// ImagePrompter builds the image-model prompt for a brief.
type ImagePrompter interface {
	BuildPrompt(ctx context.Context, brief domain.CreativeBrief, productContext string) (string, error)
}

// Reviewer runs the compliance check over the final text and image prompt.
type Reviewer interface {
	Review(ctx context.Context, text, imagePrompt string) ([]domain.Violation, error)
}

// Deps are the collaborators one generation run needs.
type Deps struct {
	Composer     TextComposer
	Prompter     ImagePrompter
	Reviewer     Reviewer
	Images       image.Generator
	Blobs        storage.BlobStore
	ImageOptions image.Options
	Logger       zerolog.Logger
}

type entry struct {
	task   domain.GenerationTask
	done   chan struct{}
	cancel context.CancelFunc
}

// Manager is the in-memory task registry. It is owned by the server process
// and injected wherever tasks are started or observed; get/set on the
// registry is atomic under one mutex, and each task record is replaced
// whole, never updated field by field.
type Manager struct {
	deps Deps

	mu    sync.Mutex
	tasks map[string]*entry
}

// NewManager builds an empty registry over the given collaborators.
func NewManager(deps Deps) (*Manager, error) {
	if deps.Composer == nil {
		return nil, fmt.Errorf("tasks: text composer is required")
	}
	return &Manager{deps: deps, tasks: make(map[string]*entry)}, nil
}

// Request describes one generation unit of work.
type Request struct {
	Brief          domain.CreativeBrief
	ProductContext string
	GenerateImages bool
}

// Start allocates a pending task, schedules its run, and returns immediately
// with the task id. The brief must be complete.
func (m *Manager) Start(req Request) (string, error) {
	if missing := req.Brief.MissingCritical(); len(missing) > 0 {
		return "", fmt.Errorf("%w: missing critical fields %v", domain.ErrInvalidBrief, missing)
	}

	id := uuid.NewString()
	runCtx, cancel := context.WithCancel(context.Background())
	e := &entry{
		task: domain.GenerationTask{
			ID:        id,
			Status:    domain.TaskStatusPending,
			CreatedAt: time.Now().UTC(),
		},
		done:   make(chan struct{}),
		cancel: cancel,
	}

	m.mu.Lock()
	m.tasks[id] = e
	m.mu.Unlock()

	go m.run(runCtx, id, req)
	return id, nil
}

// Status returns a snapshot of the task. Unknown ids yield domain.ErrNotFound.
func (m *Manager) Status(id string) (domain.GenerationTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tasks[id]
	if !ok {
		return domain.GenerationTask{}, domain.ErrNotFound
	}
	return copyTask(e.task), nil
}

// Done returns a channel closed when the task reaches a terminal state.
func (m *Manager) Done(id string) (<-chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.done, nil
}

// Cancel aborts the in-flight run. The task settles as failed; its partial
// state is not resumable.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	e, ok := m.tasks[id]
	m.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	e.cancel()
	return nil
}

// Evict removes a task from the registry. Only terminal tasks may be
// evicted; doing otherwise would orphan a live writer.
func (m *Manager) Evict(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !e.task.Status.Terminal() {
		return domain.ErrTaskNotDone
	}
	delete(m.tasks, id)
	return nil
}

// sweep evicts terminal tasks whose completion is older than ttl and returns
// how many were removed.
func (m *Manager) sweep(ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.tasks {
		if e.task.Status.Terminal() && e.task.CompletedAt != nil && e.task.CompletedAt.Before(cutoff) {
			delete(m.tasks, id)
			removed++
		}
	}
	return removed
}

// run is the single writer for its task: pending -> running -> exactly one
// of completed or failed. Steps are strictly sequential; only a text failure
// fails the task, image trouble is recorded as a partial result.
func (m *Manager) run(ctx context.Context, id string, req Request) {
	m.transition(id, func(t *domain.GenerationTask) {
		now := time.Now().UTC()
		t.Status = domain.TaskStatusRunning
		t.StartedAt = &now
	})

	text, err := m.deps.Composer.Compose(ctx, req.Brief, req.ProductContext)
	if err != nil {
		m.deps.Logger.Error().Err(err).Str("task_id", id).Msg("text generation failed")
		m.finish(id, nil, fmt.Sprintf("text generation: %v", err))
		return
	}

	result := &domain.GenerationResult{TextContent: text}
	if req.GenerateImages {
		m.generateImage(ctx, id, req, result)
	}

	violations, err := m.deps.Reviewer.Review(ctx, result.TextContent, result.ImagePrompt)
	if err != nil {
		// Compliance trouble does not lose the generated content.
		m.deps.Logger.Warn().Err(err).Str("task_id", id).Msg("compliance review failed")
	} else {
		result.Violations = violations
	}
	result.Finalize()

	m.finish(id, result, "")
}

func (m *Manager) generateImage(ctx context.Context, id string, req Request, result *domain.GenerationResult) {
	prompt, err := m.deps.Prompter.BuildPrompt(ctx, req.Brief, req.ProductContext)
	if err != nil {
		m.deps.Logger.Warn().Err(err).Str("task_id", id).Msg("image prompt failed")
		result.ImageError = fmt.Sprintf("image prompt: %v", err)
		return
	}
	result.ImagePrompt = prompt

	data, err := m.deps.Images.Generate(ctx, prompt, m.deps.ImageOptions)
	if err != nil {
		m.deps.Logger.Warn().Err(err).Str("task_id", id).Msg("image generation failed")
		result.ImageError = fmt.Sprintf("image generation: %v", err)
		return
	}

	// Persist and carry a URL; results never hold raw image bytes.
	url, err := m.deps.Blobs.Put(ctx, data, "image/png")
	if err != nil {
		m.deps.Logger.Warn().Err(err).Str("task_id", id).Msg("image upload failed")
		result.ImageError = fmt.Sprintf("image upload: %v", err)
		return
	}
	result.ImageURL = url
}

// finish publishes the terminal state and releases waiters.
func (m *Manager) finish(id string, result *domain.GenerationResult, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tasks[id]
	if !ok || e.task.Status.Terminal() {
		return
	}
	now := time.Now().UTC()
	e.task.CompletedAt = &now
	if errMsg != "" {
		e.task.Status = domain.TaskStatusFailed
		e.task.Error = errMsg
	} else {
		e.task.Status = domain.TaskStatusCompleted
		e.task.Result = result
	}
	close(e.done)
}

func (m *Manager) transition(id string, mutate func(*domain.GenerationTask)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tasks[id]
	if !ok || e.task.Status.Terminal() {
		return
	}
	mutate(&e.task)
}

func copyTask(t domain.GenerationTask) domain.GenerationTask {
	out := t
	if t.Result != nil {
		res := *t.Result
		res.Violations = append([]domain.Violation(nil), t.Result.Violations...)
		out.Result = &res
	}
	return out
}
