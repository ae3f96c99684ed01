package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"server/internal/agents"
	"server/internal/brief"
	"server/internal/orchestrator"
	"server/internal/storage"
	"server/internal/tasks"
)

// DefaultHeartbeatInterval is how often the streaming endpoint emits a
// keepalive while a task is still running.
const DefaultHeartbeatInterval = 15 * time.Second

// DefaultMaxHeartbeats caps how long a stream keeps a connection alive
// before giving up with a timeout event.
const DefaultMaxHeartbeats = 40

// App carries the handler dependencies.
type App struct {
	Logger   zerolog.Logger
	Briefs   *brief.Parser
	Tasks    *tasks.Manager
	Workflow *orchestrator.Router
	Research *agents.Researcher
	Blobs    storage.BlobStore

	HeartbeatInterval time.Duration
	MaxHeartbeats     int
}

func (a *App) heartbeatInterval() time.Duration {
	if a.HeartbeatInterval > 0 {
		return a.HeartbeatInterval
	}
	return DefaultHeartbeatInterval
}

func (a *App) maxHeartbeats() int {
	if a.MaxHeartbeats > 0 {
		return a.MaxHeartbeats
	}
	return DefaultMaxHeartbeats
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
