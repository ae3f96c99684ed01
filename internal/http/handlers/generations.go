package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/tasks"
)

type generateRequest struct {
	Brief          domain.CreativeBrief `json:"brief"`
	ProductContext string               `json:"product_context,omitempty"`
	GenerateImages bool                 `json:"generate_images"`
}

type generateResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// productContext prefers caller-supplied context and otherwise asks the
// research agent to assemble one from the brief. Research failures degrade to
// no context rather than blocking generation.
func (a *App) productContext(r *http.Request, req generateRequest) string {
	if req.ProductContext != "" || a.Research == nil {
		return req.ProductContext
	}
	query := req.Brief.Overview
	if query == "" {
		query = req.Brief.KeyMessage
	}
	ctxText, err := a.Research.ProductContext(r.Context(), query)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("product research failed")
		return ""
	}
	return ctxText
}

// GenerationsStart validates the brief and schedules a background task,
// returning immediately with its id.
func (a *App) GenerationsStart(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	id, err := a.Tasks.Start(tasks.Request{
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
	a.json(w, http.StatusAccepted, generateResponse{TaskID: id, Status: string(domain.TaskStatusPending)})
}

// GenerationsStatus returns a snapshot of one task; 404 on unknown ids.
func (a *App) GenerationsStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "task_id required")
		return
	}
	task, err := a.Tasks.Status(taskID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "task not found")
		return
	}
	a.json(w, http.StatusOK, task)
}
