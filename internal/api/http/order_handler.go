// internal/api/http/order_handler.go
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bot-dispatch/internal/domain"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// handleOrders is a general dispatcher for the /orders path
func (h *DispatchHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	// e.g. /orders/VIP-1/completion -> ["orders", "VIP-1", "completion"]
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) > 3 || pathParts[0] != "orders" {
		http.NotFound(w, r)
		return
	}

	var orderID, action string
	if len(pathParts) > 1 {
		orderID = pathParts[1]
	}
	if len(pathParts) > 2 {
		action = pathParts[2]
	}

	switch {
	case action != "":
		if r.Method == http.MethodGet && action == "completion" {
			h.handleGetCompletion(w, r, domain.JobID(orderID))
		} else if action != "completion" {
			http.NotFound(w, r)
		} else {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	case r.Method == http.MethodPost && orderID == "":
		h.handleSubmitOrder(w, r)
	case r.Method == http.MethodGet && orderID == "":
		h.handleListOrders(w, r)
	case r.Method == http.MethodGet && orderID == "history":
		h.handleListHistory(w, r)
	case r.Method == http.MethodGet:
		h.handleGetOrder(w, r, domain.JobID(orderID))
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSubmitOrder handles POST /orders
func (h *DispatchHandler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.SubmitOrder")
	defer span.End()

	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.SetStatus(codes.Error, "Failed to decode request body")
		span.RecordError(err)
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		span.SetStatus(codes.Error, "Validation failed")
		span.RecordError(err)
		var details []string
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fe := range validationErrors {
				details = append(details, "Field '"+fe.Field()+"' failed on the '"+fe.Tag()+"' tag.")
			}
		}
		writeError(w, http.StatusBadRequest, "Validation failed", details...)
		return
	}

	order, err := h.service.SubmitOrder(ctx, req.ToPriority())
	if err != nil {
		span.SetStatus(codes.Error, "Failed to submit order in service")
		span.RecordError(err)
		if errors.Is(err, domain.ErrInvalidPriority) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("error submitting order", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	span.SetAttributes(attribute.String("order.id", string(order.ID)))

	writeJSON(w, http.StatusCreated, order)
}

// handleListOrders handles GET /orders[?status=pending|processing|completed]
func (h *DispatchHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.ListOrders")
	defer span.End()

	status := r.URL.Query().Get("status")
	span.SetAttributes(attribute.String("order.status", status))

	snap := h.service.Snapshot(ctx)
	switch status {
	case "":
		writeJSON(w, http.StatusOK, OrdersResponse{
			Pending:    snap.Pending,
			Processing: snap.Processing,
			Completed:  snap.Completed,
		})
	case "pending":
		writeJSON(w, http.StatusOK, snap.Pending)
	case "processing":
		writeJSON(w, http.StatusOK, snap.Processing)
	case "completed":
		writeJSON(w, http.StatusOK, snap.Completed)
	default:
		writeError(w, http.StatusBadRequest, "status must be one of pending, processing, completed")
	}
}

// handleGetOrder handles GET /orders/{id}
func (h *DispatchHandler) handleGetOrder(w http.ResponseWriter, r *http.Request, id domain.JobID) {
	ctx, span := h.tracer.Start(r.Context(), "handler.GetOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", string(id)))

	order, err := h.service.GetOrder(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to get order from service")
		span.RecordError(err)
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			h.logger.Error("error getting order", "order_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// handleGetCompletion handles GET /orders/{id}/completion
func (h *DispatchHandler) handleGetCompletion(w http.ResponseWriter, r *http.Request, id domain.JobID) {
	ctx, span := h.tracer.Start(r.Context(), "handler.GetCompletion")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", string(id)))

	record, err := h.service.GetCompletion(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to get completion record from service")
		span.RecordError(err)
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			h.logger.Error("error getting completion record", "order_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleListHistory handles GET /orders/history?page=&pageSize=
func (h *DispatchHandler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.ListHistory")
	defer span.End()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20 // default and max page size
	}
	span.SetAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize))

	history, err := h.service.ListHistory(ctx, page, pageSize)
	if err != nil {
		h.logger.Error("error listing completion history", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, history)
}
