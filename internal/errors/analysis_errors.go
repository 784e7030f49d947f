package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"apbdcli/internal/config"
	"apbdcli/internal/dataprocessing"
)

// Analysis-specific sentinel errors. Services return these; the HTTP layer
// maps them to problem details via MapAnalysisError.
var (
	ErrAnalysisRunNotFound  = errors.New("analysis run not found")
	ErrWorkbookEmpty        = errors.New("workbook has no usable rows")
	ErrUploadTooLarge       = errors.New("upload exceeds size limit")
	ErrUploadNotXLSX        = errors.New("upload is not an xlsx workbook")
	ErrNarrativeDisabled    = errors.New("narrative generation disabled")
	ErrNarrativeUnavailable = errors.New("narrative service unavailable")
)

// MapAnalysisError maps analysis domain errors to HTTP problem details.
// Detail texts are the Indonesian operator messages; the title and type
// stay machine-oriented.
func MapAnalysisError(err error, traceID string) render.Renderer {
	instance := fmt.Sprintf("/api/v1/analysis#trace-%s", traceID)

	// Pre-built API errors pass through with their own code and status.
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		problem := NewProblemDetails(
			apiErr.StatusCode,
			TypeInternal,
			http.StatusText(apiErr.StatusCode),
			apiErr.Message,
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", apiErr.ErrorCode)
		if apiErr.Details != nil {
			problem.WithExtension("details", apiErr.Details)
		}
		return problem
	}

	switch {
	case errors.Is(err, dataprocessing.ErrMissingColumn):
		problem := NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeMissingColumns,
			"Missing Required Columns",
			config.ErrMissingColumns,
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "MISSING_REQUIRED_COLUMN")

		var missing *dataprocessing.MissingColumnError
		if errors.As(err, &missing) {
			problem.WithExtension("missing_roles", missing.Roles)
		}
		return problem

	case errors.Is(err, ErrWorkbookEmpty):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeWorkbookEmpty,
			"Empty Workbook",
			config.ErrWorkbookEmpty,
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "WORKBOOK_EMPTY")

	case errors.Is(err, ErrAnalysisRunNotFound):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeRunNotFound,
			"Analysis Run Not Found",
			config.ErrRunNotFound,
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "RUN_NOT_FOUND")

	case errors.Is(err, ErrUploadTooLarge):
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Upload Too Large",
			config.ErrUploadTooLarge,
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "UPLOAD_TOO_LARGE")

	case errors.Is(err, ErrUploadNotXLSX):
		return NewProblemDetails(
			http.StatusUnsupportedMediaType,
			TypeUploadInvalid,
			"Unsupported Upload Type",
			config.ErrUploadNotXLSX,
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INVALID_UPLOAD").
			WithExtension("expected_extension", config.UploadExtension)

	case errors.Is(err, ErrNarrativeDisabled), errors.Is(err, ErrNarrativeUnavailable):
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeNarrativeDown,
			"Narrative Unavailable",
			config.ErrNarrativeOffline,
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "NARRATIVE_UNAVAILABLE")

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "TIMEOUT")

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INTERNAL_ERROR")
	}
}
