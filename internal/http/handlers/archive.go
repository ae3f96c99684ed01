package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/pkg/zip"
)

// GenerationsArchive bundles a completed task's assets into one zip download.
func (a *App) GenerationsArchive(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	task, err := a.Tasks.Status(taskID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "task not found")
		return
	}
	if task.Status != domain.TaskStatusCompleted || task.Result == nil {
		a.error(w, http.StatusConflict, "not_completed", "task has no downloadable result")
		return
	}

	assets := []zip.Asset{
		{Filename: "content.txt", Data: []byte(task.Result.TextContent)},
	}
	if task.Result.ImagePrompt != "" {
		assets = append(assets, zip.Asset{Filename: "image_prompt.txt", Data: []byte(task.Result.ImagePrompt)})
	}
	if task.Result.ImageURL != "" && a.Blobs != nil {
		data, err := a.Blobs.Get(r.Context(), task.Result.ImageURL)
		if err != nil {
			a.Logger.Warn().Err(err).Str("task_id", taskID).Msg("archive image fetch failed")
		} else {
			assets = append(assets, zip.Asset{Filename: "image.png", Data: data})
		}
	}

	archive, err := zip.Archive(assets)
	if err != nil {
		a.Logger.Error().Err(err).Str("task_id", taskID).Msg("archive build failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="generation-`+taskID+`.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
