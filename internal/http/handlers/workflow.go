package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"server/internal/orchestrator"
)

type workflowRunRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Input          string `json:"input"`
}

type workflowResumeRequest struct {
	PendingRequestID string `json:"pending_request_id"`
	Answer           string `json:"answer"`
}

type workflowResponse struct {
	ConversationID string               `json:"conversation_id"`
	Events         []orchestrator.Event `json:"events"`
	Final          orchestrator.Event   `json:"final"`
}

// WorkflowRun drives a multi-agent conversation to completion or suspension
// and returns the full event trail plus the terminal event.
func (a *App) WorkflowRun(w http.ResponseWriter, r *http.Request) {
	var req workflowRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Input == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "input required")
		return
	}
	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}
	a.collectWorkflow(w, r, convID, a.Workflow.Run(r.Context(), convID, req.Input))
}

// WorkflowResume answers a pending clarification request and continues the
// suspended conversation.
func (a *App) WorkflowResume(w http.ResponseWriter, r *http.Request) {
	var req workflowResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PendingRequestID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "pending_request_id required")
		return
	}
	a.collectWorkflow(w, r, "", a.Workflow.Resume(r.Context(), req.PendingRequestID, req.Answer))
}

func (a *App) collectWorkflow(w http.ResponseWriter, r *http.Request, convID string, events <-chan orchestrator.Event) {
	var trail []orchestrator.Event
	for ev := range events {
		trail = append(trail, ev)
	}
	if len(trail) == 0 {
		a.error(w, http.StatusInternalServerError, "internal", "workflow produced no events")
		return
	}
	final := trail[len(trail)-1]
	if convID == "" {
		convID = final.ConversationID
	}
	status := http.StatusOK
	if final.Type == orchestrator.EventError {
		status = http.StatusBadGateway
	}
	a.json(w, status, workflowResponse{ConversationID: convID, Events: trail, Final: final})
}
