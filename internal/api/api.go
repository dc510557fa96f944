// Package api exposes the chat and session endpoints over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopassist/gateway/internal/orchestrator"
	"github.com/shopassist/gateway/internal/session"
	"github.com/shopassist/gateway/internal/tokens"
)

// Handler wires the orchestration core to HTTP routes.
type Handler struct {
	orch      *orchestrator.Orchestrator
	sessions  *session.Manager
	estimator *tokens.Estimator
	logger    *slog.Logger
}

// NewHandler creates the API handler. estimator may be nil, in which case
// prompt token counts are omitted.
func NewHandler(orch *orchestrator.Orchestrator, sessions *session.Manager, estimator *tokens.Estimator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		orch:      orch,
		sessions:  sessions,
		estimator: estimator,
		logger:    logger,
	}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/chat", h.handleChat)
	r.Post("/v1/sessions", h.handleCreateSession)
	r.Get("/v1/sessions/{id}/history", h.handleSessionHistory)
	r.Delete("/v1/sessions/{id}", h.handleClearSession)
	r.Get("/health", h.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
