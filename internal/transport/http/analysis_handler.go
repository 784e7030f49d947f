package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"apbdcli/internal/config"
	apierrors "apbdcli/internal/errors"
	"apbdcli/internal/infrastructure"
	"apbdcli/internal/middleware"
	"apbdcli/internal/security"
	"apbdcli/internal/services"
	v1 "apbdcli/pkg/contracts/api/v1"
)

// AnalysisHandler handles workbook uploads, cached run retrieval and the
// aggregated CSV export.
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	uploads      *security.UploadValidator
	validation   *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler. maxUpload caps the
// whole multipart body; zero or negative falls back to the default limit.
func NewAnalysisHandler(
	service AnalysisServiceInterface,
	uploads *security.UploadValidator,
	validation *middleware.ValidationMiddleware,
	maxUpload int64,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *AnalysisHandler {
	if maxUpload <= 0 {
		maxUpload = config.DefaultUploadLimit
	}
	return &AnalysisHandler{
		service:      service,
		uploads:      uploads,
		validation:   validation,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Analyze)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.RunCtx)
		r.Get("/", h.GetRun)
		r.Get("/export.csv", h.ExportCSV)
	})

	return r
}

// RunCtx validates the run ID path parameter before it reaches a handler.
func (h *AnalysisHandler) RunCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := v1.AnalysisRunRequest{ID: chi.URLParam(r, "id")}
		if err := h.validation.ValidateStruct(r.Context(), &req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Analyze handles POST /api/v1/analysis: a multipart workbook upload plus
// the optional narrative form fields, answered with the full report payload.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	metrics := middleware.MetricsFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile(config.UploadFieldName)
	if err != nil {
		h.logger.WarnContext(ctx, "upload form rejected",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			infrastructure.RecordUploadMetrics(ctx, metrics, maxErr.Limit, false, security.ThreatOversized)
			render.Render(w, r, apierrors.MapAnalysisError(services.ErrUploadTooLarge, infrastructure.GetTraceID(ctx)))
			return
		}

		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			fmt.Sprintf("Multipart field %q with an .xlsx workbook is required", config.UploadFieldName),
			map[string]interface{}{
				"field": config.UploadFieldName,
			},
		))
		return
	}
	defer file.Close()

	// The magic-byte screen needs the first bytes; rewind afterwards so the
	// parser sees the whole file.
	head := make([]byte, 8)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("read upload", err))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("rewind upload", err))
		return
	}

	result := h.uploads.ValidateWorkbookUpload(ctx, header.Filename, header.Size, head[:n])
	if !result.IsValid {
		reason := "invalid"
		if len(result.Threats) > 0 {
			reason = result.Threats[0]
		}
		infrastructure.RecordUploadMetrics(ctx, metrics, header.Size, false, reason)

		uploadErr := services.ErrUploadNotXLSX
		for _, threat := range result.Threats {
			if threat == security.ThreatOversized {
				uploadErr = services.ErrUploadTooLarge
			}
		}
		render.Render(w, r, apierrors.MapAnalysisError(uploadErr, infrastructure.GetTraceID(ctx)))
		return
	}
	infrastructure.RecordUploadMetrics(ctx, metrics, header.Size, true, "")

	req, err := h.parseUploadForm(r, result.SanitizedName)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "workbook upload accepted",
		slog.String("request_id", reqID),
		slog.String("filename", result.SanitizedName),
		slog.Int64("size", header.Size),
		slog.Bool("narrative", req.Narrative),
	)

	report, err := h.service.AnalyzeUpload(ctx, file, services.AnalyzeOptions{
		Source:    result.SanitizedName,
		Narrative: req.Narrative,
		TopN:      req.TopN,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "analysis failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("filename", result.SanitizedName),
		)
		render.Render(w, r, apierrors.MapAnalysisError(err, infrastructure.GetTraceID(ctx)))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": config.MsgAnalysisDone,
		"data":    report,
	})
}

// parseUploadForm reads the optional narrative/top_n fields that ride along
// with the upload and validates them against the v1 contract.
func (h *AnalysisHandler) parseUploadForm(r *http.Request, sanitizedName string) (v1.AnalysisUploadRequest, error) {
	req := v1.AnalysisUploadRequest{Filename: sanitizedName}

	if raw := r.FormValue("narrative"); raw != "" {
		narrative, err := strconv.ParseBool(raw)
		if err != nil {
			return req, apierrors.ErrValidation("narrative", "must be a boolean")
		}
		req.Narrative = narrative
	}

	if raw := r.FormValue("top_n"); raw != "" {
		topN, err := strconv.Atoi(raw)
		if err != nil {
			return req, apierrors.ErrValidation("top_n", "must be an integer")
		}
		req.TopN = topN
	}

	if err := h.validation.ValidateStruct(r.Context(), &req); err != nil {
		return req, err
	}
	return req, nil
}

// GetRun handles GET /api/v1/analysis/{id}: re-fetches a cached report.
func (h *AnalysisHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	report, err := h.service.GetRun(ctx, id)
	if err != nil {
		h.logger.InfoContext(ctx, "run lookup missed",
			slog.String("request_id", middleware.GetReqID(ctx)),
			slog.String("run_id", id),
		)
		render.Render(w, r, apierrors.MapAnalysisError(err, infrastructure.GetTraceID(ctx)))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
	})
}

// ExportCSV handles GET /api/v1/analysis/{id}/export.csv: streams the
// aggregated category rows as a BOM-prefixed CSV attachment. The sep
// query parameter picks the field separator; semicolon is what Excel
// under Indonesian regional settings expects.
func (h *AnalysisHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	sepName, ok := h.query.ValidateEnum(w, r, "sep", "comma", "comma", "semicolon")
	if !ok {
		return
	}
	sep := ','
	if sepName == "semicolon" {
		sep = ';'
	}

	payload, filename, err := h.service.ExportAggregateCSV(ctx, id, sep)
	if err != nil {
		h.logger.InfoContext(ctx, "export lookup missed",
			slog.String("request_id", middleware.GetReqID(ctx)),
			slog.String("run_id", id),
		)
		render.Render(w, r, apierrors.MapAnalysisError(err, infrastructure.GetTraceID(ctx)))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		h.logger.WarnContext(ctx, "csv download interrupted",
			slog.String("error", err.Error()),
			slog.String("run_id", id),
		)
	}
}
