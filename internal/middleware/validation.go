package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apierrors "apbdcli/internal/errors"
)

// ValidationMiddleware provides request validation for JSON endpoints.
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates validation middleware with the domain
// validators registered.
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New()

	// Report the json tag name in validation errors, not the Go field.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("sheetname", validateSheetName)
	v.RegisterValidation("filename", validateFilename)

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger,
		errorHandler: errorHandler,
		maxBodySize:  1 << 20, // JSON bodies only; uploads have their own limit
	}
}

// validateSheetName accepts worksheet names Excel itself would accept:
// non-empty, at most 31 characters, no control characters and none of
// the reserved punctuation.
func validateSheetName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > 31 {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) || strings.ContainsRune(`[]:*?/\`, r) {
			return false
		}
	}
	return true
}

// validateFilename rejects path traversal and separator characters in
// user-supplied report names.
func validateFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > 255 {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) || strings.ContainsRune(`/\<>:"|?*`, r) {
			return false
		}
	}
	return true
}

// ValidateRequest returns middleware that decodes and validates a JSON
// body into a fresh instance of the given prototype struct. The decoded
// value is stored in the request context under validatedKey.
func (vm *ValidationMiddleware) ValidateRequest(prototype interface{}) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if r.Body == nil {
				vm.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, vm.maxBodySize))
			if err != nil {
				vm.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			target := reflect.New(reflect.TypeOf(prototype).Elem()).Interface()
			if err := json.Unmarshal(body, target); err != nil {
				vm.logger.WarnContext(ctx, "request body is not valid JSON", "error", err)
				vm.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
				return
			}

			if err := vm.ValidateStruct(ctx, target); err != nil {
				vm.errorHandler.HandleError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, validatedKey{}, target)))
		})
	}
}

// validatedKey is the context key type for validated request bodies
type validatedKey struct{}

// ValidatedBody retrieves the struct stored by ValidateRequest.
func ValidatedBody(ctx context.Context) interface{} {
	return ctx.Value(validatedKey{})
}

// ValidateStruct validates any struct with the registered validators and
// converts failures into a field-level API error.
func (vm *ValidationMiddleware) ValidateStruct(ctx context.Context, s interface{}) error {
	if err := vm.validator.StructCtx(ctx, s); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return apierrors.InvalidRequestWithError(err)
		}

		fields := make([]apierrors.ValidationError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, apierrors.ValidationError{
				Field:   fe.Field(),
				Message: formatValidationError(fe),
			})
		}

		vm.logger.WarnContext(ctx, "request validation failed", "field_count", len(fields))
		return apierrors.NewValidationErrors(fields)
	}
	return nil
}

// formatValidationError produces a human-readable message per failed tag.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "sheetname":
		return "must be a valid worksheet name"
	case "filename":
		return "must be a valid file name without path separators"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ContentTypeValidator ensures requests carry one of the accepted content
// types. Used on the upload endpoint to reject non-multipart posts early.
func ContentTypeValidator(accepted ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			for _, a := range accepted {
				if strings.HasPrefix(contentType, a) {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusUnsupportedMediaType)
			response := fmt.Sprintf(`{"type":"/errors/upload/invalid","title":"Unsupported Media Type","status":415,"detail":"Content-Type must be one of: %s"}`, strings.Join(accepted, ", "))
			w.Write([]byte(response))
		})
	}
}

// QueryParamValidator validates query parameters on read endpoints.
type QueryParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a query parameter validator.
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{logger: logger, errorHandler: errorHandler}
}

// ValidateInt parses an integer query parameter within [min, max].
// Returns (defaultValue, true) when the parameter is absent.
func (qv *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, defaultValue, min, max int) (int, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return defaultValue, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		qv.errorHandler.HandleError(w, r,
			apierrors.ErrValidation(param, fmt.Sprintf("must be an integer, got %q", raw)))
		return 0, false
	}

	if value < min || value > max {
		qv.errorHandler.HandleError(w, r,
			apierrors.ErrValidation(param, fmt.Sprintf("must be between %d and %d", min, max)))
		return 0, false
	}

	return value, true
}

// ValidateEnum checks that a query parameter is one of the allowed values.
// Returns (defaultValue, true) when the parameter is absent.
func (qv *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param, defaultValue string, allowed ...string) (string, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if raw == a {
			return raw, true
		}
	}

	qv.errorHandler.HandleError(w, r,
		apierrors.ErrValidation(param, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", "))))
	return "", false
}
