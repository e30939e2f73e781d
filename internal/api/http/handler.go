// internal/api/http/handler.go
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bot-dispatch/internal/config"
	"bot-dispatch/internal/metrics"
	"bot-dispatch/internal/usecase"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DispatchHandler serves the order and bot endpoints.
type DispatchHandler struct {
	service  *usecase.DispatchService
	logger   *slog.Logger
	validate *validator.Validate
	tracer   trace.Tracer
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(service *usecase.DispatchService, logger *slog.Logger) *DispatchHandler {
	return &DispatchHandler{
		service:  service,
		logger:   logger.With("component", "dispatch-handler"),
		validate: config.NewValidator(),
		tracer:   otel.Tracer("bot-dispatch-api"),
	}
}

// A helper struct to capture the status code
type instrumentedResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *instrumentedResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// RegisterRoutes registers order and bot routes to the http.ServeMux.
func (h *DispatchHandler) RegisterRoutes(mux *http.ServeMux) {
	orders := h.instrument(http.HandlerFunc(h.handleOrders), routeTemplate)
	bots := h.instrument(http.HandlerFunc(h.handleBots), routeTemplate)

	mux.Handle("/orders", orders)
	mux.Handle("/orders/", orders)
	mux.Handle("/bots", bots)
}

// routeTemplate keeps metric label cardinality bounded.
func routeTemplate(r *http.Request) string {
	switch p := strings.TrimSuffix(r.URL.Path, "/"); {
	case p == "/orders/history":
		return "/orders/history"
	case strings.HasPrefix(p, "/orders/") && strings.HasSuffix(p, "/completion"):
		return "/orders/{id}/completion"
	case strings.HasPrefix(p, "/orders/"):
		return "/orders/{id}"
	default:
		return p
	}
}

func (h *DispatchHandler) instrument(next http.Handler, route func(*http.Request) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := route(r)

		ctx, span := h.tracer.Start(r.Context(), "HTTP "+r.Method+" "+path, trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		))
		defer span.End()

		r = r.WithContext(ctx)

		iw := &instrumentedResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(iw, r)

		metrics.HttpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(iw.statusCode)).Inc()

		span.SetAttributes(attribute.Int("http.status_code", iw.statusCode))
		if iw.statusCode >= 500 {
			span.SetStatus(codes.Error, "Server Error")
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}
