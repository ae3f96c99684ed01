package domain

import "time"

// TaskStatus enumerates generation task lifecycle states.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// GenerationTask tracks one unit of background content generation. Status is
// monotonic: pending -> running -> exactly one of completed or failed. Only
// the background unit of work assigned to the task mutates it; everyone else
// reads snapshots.
type GenerationTask struct {
	ID          string            `json:"id"`
	Status      TaskStatus        `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Result      *GenerationResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
}
