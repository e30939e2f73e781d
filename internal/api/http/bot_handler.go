// internal/api/http/bot_handler.go
package http

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

// handleBots dispatches requests on /bots
func (h *DispatchHandler) handleBots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleAddBot(w, r)
	case http.MethodDelete:
		h.handleRemoveBot(w, r)
	case http.MethodGet:
		h.handleListBots(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *DispatchHandler) handleAddBot(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.AddBot")
	defer span.End()

	bot := h.service.AddBot(ctx)
	span.SetAttributes(attribute.Int64("bot.id", int64(bot.ID)))

	writeJSON(w, http.StatusCreated, bot)
}

// handleRemoveBot answers 204 when there was no bot to remove.
func (h *DispatchHandler) handleRemoveBot(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.RemoveBot")
	defer span.End()

	id, ok := h.service.RemoveBot(ctx)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	span.SetAttributes(attribute.Int64("bot.id", int64(id)))

	writeJSON(w, http.StatusOK, RemoveBotResponse{RemovedBotID: id})
}

func (h *DispatchHandler) handleListBots(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.ListBots")
	defer span.End()

	writeJSON(w, http.StatusOK, h.service.ListBots(ctx))
}
