package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "apbdcli/internal/errors"
	"apbdcli/internal/exporter"
	"apbdcli/internal/middleware"
)

// TemplateHandler serves the blank APBD workbook template download.
type TemplateHandler struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TemplateHandler {
	return &TemplateHandler{
		logger:       logger.With(slog.String("component", "template_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the template routes
func (h *TemplateHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Download)
	return r
}

// Download handles GET /api/v1/template: builds the workbook in memory and
// streams it as an attachment.
func (h *TemplateHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := exporter.TemplateBytes()
	if err != nil {
		h.logger.ErrorContext(ctx, "template build failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(ctx)),
		)
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("build template", err))
		return
	}

	w.Header().Set("Content-Type", exporter.TemplateContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.TemplateFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		h.logger.WarnContext(ctx, "template download interrupted",
			slog.String("error", err.Error()),
		)
	}
}
