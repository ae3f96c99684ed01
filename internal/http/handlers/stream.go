package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/tasks"
)

type streamErrorPayload struct {
	TaskID  string `json:"task_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type streamHeartbeatPayload struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type streamResultPayload struct {
	TaskID string                   `json:"task_id"`
	Status string                   `json:"status"`
	Result *domain.GenerationResult `json:"result"`
}

// GenerationsStream starts a generation task and streams its lifecycle as
// server-sent events: zero or more heartbeats while the task runs, then a
// single agent_response or error event, then the [DONE] frame. If the client
// disconnects mid-stream the task is cancelled.
func (a *App) GenerationsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	taskID, err := a.Tasks.Start(tasks.Request{
		Brief:          req.Brief,
		ProductContext: a.productContext(r, req),
		GenerateImages: req.GenerateImages,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBrief) {
			a.error(w, http.StatusUnprocessableEntity, "invalid_brief", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("failed to start generation task")
		a.error(w, http.StatusInternalServerError, "internal", "failed to start generation")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	interval := a.heartbeatInterval()
	maxBeats := a.maxHeartbeats()

	done, err := a.Tasks.Done(taskID)
	if err != nil {
		a.writeEvent(w, flusher, "error", streamErrorPayload{TaskID: taskID, Code: "not_found", Message: "task not found"})
		a.writeDone(w, flusher)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	beats := 0
	for {
		select {
		case <-r.Context().Done():
			a.Tasks.Cancel(taskID)
			return
		case <-done:
			a.writeTerminal(w, flusher, taskID)
			return
		case <-ticker.C:
			beats++
			if beats > maxBeats {
				a.Tasks.Cancel(taskID)
				a.writeEvent(w, flusher, "error", streamErrorPayload{
					TaskID:  taskID,
					Code:    "timeout",
					Message: "generation timed out",
				})
				a.writeDone(w, flusher)
				return
			}
			a.writeEvent(w, flusher, "heartbeat", streamHeartbeatPayload{
				TaskID: taskID,
				Status: string(domain.TaskStatusRunning),
			})
		}
	}
}

func (a *App) writeTerminal(w http.ResponseWriter, flusher http.Flusher, taskID string) {
	task, err := a.Tasks.Status(taskID)
	if err != nil {
		a.writeEvent(w, flusher, "error", streamErrorPayload{TaskID: taskID, Code: "not_found", Message: "task not found"})
		a.writeDone(w, flusher)
		return
	}
	switch task.Status {
	case domain.TaskStatusCompleted:
		a.writeEvent(w, flusher, "agent_response", streamResultPayload{
			TaskID: taskID,
			Status: string(task.Status),
			Result: task.Result,
		})
	default:
		a.writeEvent(w, flusher, "error", streamErrorPayload{
			TaskID:  taskID,
			Code:    "generation_failed",
			Message: task.Error,
		})
	}
	a.writeDone(w, flusher)
}

func (a *App) writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		a.Logger.Error().Err(err).Str("event", event).Msg("failed to encode stream event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}

func (a *App) writeDone(w http.ResponseWriter, flusher http.Flusher) {
	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}
