package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

type briefParseRequest struct {
	BriefText string `json:"brief_text"`
}

// BriefsParse runs the clarification loop over a free-text brief. Incomplete
// briefs come back with a clarifying question, safety refusals with
// blocked=true; neither is an HTTP error.
func (a *App) BriefsParse(w http.ResponseWriter, r *http.Request) {
	var req briefParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.BriefText) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "brief_text required")
		return
	}

	res, err := a.Briefs.Parse(r.Context(), req.BriefText)
	if err != nil {
		a.Logger.Error().Err(err).Msg("brief parse failed")
		a.error(w, http.StatusBadGateway, "upstream_error", "brief analysis unavailable")
		return
	}
	a.json(w, http.StatusOK, res)
}
