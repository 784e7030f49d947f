package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "apbdcli/internal/errors"
)

// analyzeOptions mirrors the JSON options accepted by the analysis endpoints.
type analyzeOptions struct {
	SheetName  string `json:"sheet_name" validate:"omitempty,sheetname"`
	TopRows    int    `json:"top_rows" validate:"omitempty,gte=1,lte=500"`
	ReportName string `json:"report_name" validate:"omitempty,filename"`
}

func newTestValidation() *ValidationMiddleware {
	logger := testLogger()
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateStructSheetName(t *testing.T) {
	vm := newTestValidation()

	tests := []struct {
		name    string
		sheet   string
		wantErr bool
	}{
		{"plain name", "APBD", false},
		{"name with spaces", "Laporan Realisasi 2024", false},
		{"empty skipped by omitempty", "", false},
		{"reserved bracket", "Laporan[1]", true},
		{"path separator", "a/b", true},
		{"colon", "Sheet:1", true},
		{"too long", strings.Repeat("x", 32), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vm.ValidateStruct(context.Background(), &analyzeOptions{SheetName: tt.sheet})
			if tt.wantErr {
				require.Error(t, err)
				var apiErr *apierrors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStructFilename(t *testing.T) {
	vm := newTestValidation()

	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"simple report name", "laporan_apbd_2024.xlsx", false},
		{"path traversal", "../../etc/passwd", true},
		{"forward slash", "reports/apbd.xlsx", true},
		{"windows reserved chars", `apbd<2024>.xlsx`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vm.ValidateStruct(context.Background(), &analyzeOptions{ReportName: tt.filename})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStructRange(t *testing.T) {
	vm := newTestValidation()

	assert.NoError(t, vm.ValidateStruct(context.Background(), &analyzeOptions{TopRows: 25}))
	assert.Error(t, vm.ValidateStruct(context.Background(), &analyzeOptions{TopRows: 501}))
}

func TestValidateRequest(t *testing.T) {
	vm := newTestValidation()

	t.Run("valid body reaches handler", func(t *testing.T) {
		var got *analyzeOptions
		handler := vm.ValidateRequest(&analyzeOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ok bool
			got, ok = ValidatedBody(r.Context()).(*analyzeOptions)
			require.True(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		body := `{"sheet_name":"APBD","top_rows":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "APBD", got.SheetName)
		assert.Equal(t, 10, got.TopRows)
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		handler := vm.ValidateRequest(&analyzeOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run on malformed JSON")
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("failing validation rejected with field details", func(t *testing.T) {
		handler := vm.ValidateRequest(&analyzeOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run on invalid payload")
		}))

		body := `{"sheet_name":"bad[name"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var problem map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, "/errors/validation", problem["type"])
	})
}

func TestQueryParamValidateInt(t *testing.T) {
	logger := testLogger()
	qv := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("absent uses default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/abc", nil)
		rec := httptest.NewRecorder()

		got, ok := qv.ValidateInt(rec, req, "top", 20, 1, 500)
		require.True(t, ok)
		assert.Equal(t, 20, got)
	})

	t.Run("valid value parsed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/run?top=50", nil)
		rec := httptest.NewRecorder()

		got, ok := qv.ValidateInt(rec, req, "top", 20, 1, 500)
		require.True(t, ok)
		assert.Equal(t, 50, got)
	})

	t.Run("non-integer rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/run?top=lots", nil)
		rec := httptest.NewRecorder()

		_, ok := qv.ValidateInt(rec, req, "top", 20, 1, 500)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("out of range rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/run?top=100000", nil)
		rec := httptest.NewRecorder()

		_, ok := qv.ValidateInt(rec, req, "top", 20, 1, 500)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQueryParamValidateEnum(t *testing.T) {
	logger := testLogger()
	qv := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("absent uses default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/run", nil)
		got, ok := qv.ValidateEnum(httptest.NewRecorder(), req, "sep", "comma", "comma", "semicolon")
		require.True(t, ok)
		assert.Equal(t, "comma", got)
	})

	t.Run("allowed value accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/run?sep=semicolon", nil)
		got, ok := qv.ValidateEnum(httptest.NewRecorder(), req, "sep", "comma", "comma", "semicolon")
		require.True(t, ok)
		assert.Equal(t, "semicolon", got)
	})

	t.Run("unknown value rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/run?sep=tab", nil)
		rec := httptest.NewRecorder()
		_, ok := qv.ValidateEnum(rec, req, "sep", "comma", "comma", "semicolon")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
