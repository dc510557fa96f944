package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopassist/gateway/internal/orchestrator"
	"github.com/shopassist/gateway/internal/server"
	"github.com/shopassist/gateway/internal/session"
)

type chatRequest struct {
	Message    string         `json:"message"`
	SessionID  string         `json:"session_id,omitempty"`
	MaxResults int            `json:"max_results,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

type chatResponse struct {
	SessionID    string         `json:"session_id"`
	Intent       string         `json:"intent"`
	Confidence   float64        `json:"confidence"`
	Entities     map[string]any `json:"entities,omitempty"`
	AgentUsed    string         `json:"agent_used"`
	Response     string         `json:"response"`
	Success      bool           `json:"success"`
	Error        string         `json:"error,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	PromptTokens int            `json:"prompt_tokens,omitempty"`
}

// handleChat runs one conversational turn: load history, enrich the query
// with it, route through the orchestrator, then record the turn back into
// the session.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.AddError(r.Context(), err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		server.AddLogField(r.Context(), "error", "message is required")
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.sessions.Create(ctx)
	}

	history := h.sessions.History(ctx, sessionID)
	enriched := session.BuildEnrichedQuery(req.Message, history)

	promptTokens := 0
	if h.estimator != nil {
		promptTokens = h.estimator.Count(enriched)
	}

	reqCtx := req.Context
	if req.MaxResults > 0 {
		if reqCtx == nil {
			reqCtx = map[string]any{}
		}
		reqCtx["max_results"] = req.MaxResults
	}

	result := h.orch.Handle(ctx, enriched, reqCtx)
	h.sessions.AppendTurn(ctx, sessionID, req.Message, result.Response.Text)

	server.AddLogField(ctx, "intent", string(result.Intent.Intent))
	server.AddLogField(ctx, "agent", result.Handler)
	server.AddLogField(ctx, "capability_error", result.Response.Error)

	h.logger.Info("chat turn",
		slog.String("session_id", sessionID),
		slog.String("intent", string(result.Intent.Intent)),
		slog.Float64("confidence", result.Intent.Confidence),
		slog.String("agent", result.Handler),
		slog.Bool("success", result.Response.Success),
		slog.Int("prompt_tokens", promptTokens),
	)

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:    sessionID,
		Intent:       string(result.Intent.Intent),
		Confidence:   result.Intent.Confidence,
		Entities:     entitiesFrom(result),
		AgentUsed:    result.Handler,
		Response:     result.Response.Text,
		Success:      result.Response.Success,
		Error:        result.Response.Error,
		Data:         result.Response.Data,
		PromptTokens: promptTokens,
	})
}

func entitiesFrom(result *orchestrator.Result) map[string]any {
	e := map[string]any{}
	if result.Intent.ProductName != "" {
		e["product_name"] = result.Intent.ProductName
	}
	if result.Intent.Category != "" {
		e["category"] = result.Intent.Category
	}
	if result.Intent.MinPrice != nil {
		e["min_price"] = *result.Intent.MinPrice
	}
	if result.Intent.MaxPrice != nil {
		e["max_price"] = *result.Intent.MaxPrice
	}
	if len(e) == 0 {
		return nil
	}
	return e
}
