package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.Create(r.Context())
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (h *Handler) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history := h.sessions.History(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"messages":   history,
	})
}

func (h *Handler) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if existed := h.sessions.Clear(r.Context(), id); !existed {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "cleared": true})
}
