package api

import (
	"net/http"
	"time"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// handleHealth reports liveness plus a snapshot of every capability
// breaker, so dashboards can see which routes are degraded.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	states := h.orch.BreakerStates()
	breakers := make(map[string]string, len(states))
	for name, state := range states {
		breakers[name] = string(state)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "shopassist-gateway",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"breakers":  breakers,
	})
}
