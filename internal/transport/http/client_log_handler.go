package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	apierrors "apbdcli/internal/errors"
	"apbdcli/internal/middleware"
	v1 "apbdcli/pkg/contracts/api/v1"
)

// ClientLogHandler receives log entries from the dashboard so browser-side
// failures land in the server log stream.
type ClientLogHandler struct {
	validation *middleware.ValidationMiddleware
	logger     *slog.Logger
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(validation *middleware.ValidationMiddleware, logger *slog.Logger) *ClientLogHandler {
	return &ClientLogHandler{
		validation: validation,
		logger:     logger.With(slog.String("handler", "client_log")),
	}
}

// Handle processes client logging requests
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req v1.ClientLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, apierrors.NewValidationError("Invalid request format"))
		return
	}

	// Unknown levels become info rather than an error; telemetry should
	// never bounce.
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[req.Level] {
		req.Level = "info"
	}

	if err := h.validation.ValidateStruct(r.Context(), &req); err != nil {
		apierrors.WriteError(w, apierrors.NewValidationError("Log entry requires a message"))
		return
	}

	attrs := []slog.Attr{
		slog.String("client_source", req.Source),
		slog.String("timestamp", time.Now().Format(time.RFC3339)),
	}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}

	var level slog.Level
	switch req.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	h.logger.LogAttrs(r.Context(), level, req.Message, attrs...)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}
