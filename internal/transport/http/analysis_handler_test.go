package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"apbdcli/internal/config"
	apierrors "apbdcli/internal/errors"
	"apbdcli/internal/middleware"
	"apbdcli/internal/security"
	"apbdcli/internal/services"
	"apbdcli/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeXLSXContent carries the ZIP magic so it passes the upload screen
// without being a parseable workbook. Used with mocked services only.
var fakeXLSXContent = []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00}

func fixtureWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := "APBD"
	f.SetSheetName(f.GetSheetName(0), sheet)

	header := []interface{}{"Akun", "Anggaran", "Realisasi", "Tahun"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))

	rows := [][]interface{}{
		{"Pendapatan Asli Daerah (PAD)", "500.000.000", "450.000.000", "2024"},
		{"Dana Alokasi Umum (DAU)", "900.000.000", "900.000.000", "2024"},
		{"Pendapatan Daerah", "2.000.000.000", "1.800.000.000", "2024"},
		{"Belanja Pegawai", "700.000.000", "650.000.000", "2024"},
		{"Belanja Modal Jalan", "400.000.000", "200.000.000", "2024"},
	}
	for i := range rows {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &rows[i]))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func notesWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	header := []interface{}{"Keterangan", "Catatan"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	row := []interface{}{"Halaman pertama", "lampiran"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// multipartUpload builds a multipart body with the workbook under the
// upload field plus any extra form fields.
func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if filename != "" {
		part, err := writer.CreateFormFile(config.UploadFieldName, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func newTestAnalysisHandler(t *testing.T, service AnalysisServiceInterface, maxUpload, validatorMax int64) *AnalysisHandler {
	t.Helper()

	logger := testLogger()
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validation := middleware.NewValidationMiddleware(logger, errorHandler)
	uploads := security.NewUploadValidator(validatorMax, logger)

	if service == nil {
		runs := services.NewRunStore(time.Minute, 8, nil, logger)
		service = services.NewAnalysisService(config.Default(), runs, nil, nil, logger)
	}
	return NewAnalysisHandler(service, uploads, validation, maxUpload, logger, errorHandler)
}

// MockAnalysisService is a mock implementation of AnalysisServiceInterface
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) AnalyzeUpload(ctx context.Context, r io.Reader, opts services.AnalyzeOptions) (*domain.AnalysisReport, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisReport), args.Error(1)
}

func (m *MockAnalysisService) GetRun(ctx context.Context, id string) (*domain.AnalysisReport, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisReport), args.Error(1)
}

func (m *MockAnalysisService) ExportAggregateCSV(ctx context.Context, id string, sep rune) ([]byte, string, error) {
	args := m.Called(id, sep)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func TestAnalysisHandler_UploadAndFetch(t *testing.T) {
	handler := newTestAnalysisHandler(t, nil, 0, config.DefaultUploadLimit)
	router := handler.Routes()

	body, contentType := multipartUpload(t, "apbd_2024.xlsx", fixtureWorkbook(t), nil)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"success"`)
	assert.Contains(t, rec.Body.String(), config.MsgAnalysisDone)

	var resp struct {
		Status  string                 `json:"status"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, _ := resp.Data["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "apbd_2024.xlsx", resp.Data["source"])

	// The cached run is retrievable by ID.
	req = httptest.NewRequest("GET", "/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"source":"apbd_2024.xlsx"`)

	// And exportable as CSV.
	req = httptest.NewRequest("GET", "/"+id+"/export.csv", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "apbd_aggregated.csv")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Body.String(), "Kategori,Anggaran_sum,Realisasi_sum")
}

func TestAnalysisHandler_UploadRejections(t *testing.T) {
	tests := []struct {
		name           string
		buildRequest   func(t *testing.T) *http.Request
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "missing file field",
			buildRequest: func(t *testing.T) *http.Request {
				body, contentType := multipartUpload(t, "", nil, map[string]string{"narrative": "false"})
				req := httptest.NewRequest("POST", "/", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_REQUEST"`,
		},
		{
			name: "wrong extension",
			buildRequest: func(t *testing.T) *http.Request {
				body, contentType := multipartUpload(t, "data.txt", fakeXLSXContent, nil)
				req := httptest.NewRequest("POST", "/", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedBody:   `"INVALID_UPLOAD"`,
		},
		{
			name: "renamed csv",
			buildRequest: func(t *testing.T) *http.Request {
				body, contentType := multipartUpload(t, "fake.xlsx", []byte("Kategori;Anggaran;Realisasi"), nil)
				req := httptest.NewRequest("POST", "/", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedBody:   `"INVALID_UPLOAD"`,
		},
		{
			name: "missing columns",
			buildRequest: func(t *testing.T) *http.Request {
				body, contentType := multipartUpload(t, "notes.xlsx", notesWorkbook(t), nil)
				req := httptest.NewRequest("POST", "/", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"MISSING_REQUIRED_COLUMN"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestAnalysisHandler(t, nil, 0, config.DefaultUploadLimit)
			rec := httptest.NewRecorder()

			handler.Routes().ServeHTTP(rec, tt.buildRequest(t))

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestAnalysisHandler_UploadBodyTooLarge(t *testing.T) {
	handler := newTestAnalysisHandler(t, nil, 1024, config.DefaultUploadLimit)

	body, contentType := multipartUpload(t, "apbd.xlsx", fixtureWorkbook(t), nil)
	require.Greater(t, body.Len(), 1024)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"UPLOAD_TOO_LARGE"`)
}

func TestAnalysisHandler_UploadDeclaredOversized(t *testing.T) {
	// The body fits the request cap but the file exceeds the validator's
	// limit, so the threat path reports it as too large, not invalid.
	handler := newTestAnalysisHandler(t, nil, 0, 1024)

	body, contentType := multipartUpload(t, "apbd.xlsx", fixtureWorkbook(t), nil)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"UPLOAD_TOO_LARGE"`)
}

func TestAnalysisHandler_FormOptionValidation(t *testing.T) {
	tests := []struct {
		name         string
		fields       map[string]string
		expectedBody string
	}{
		{
			name:         "top_n not a number",
			fields:       map[string]string{"top_n": "banyak"},
			expectedBody: "top_n",
		},
		{
			name:         "top_n above limit",
			fields:       map[string]string{"top_n": "99"},
			expectedBody: "top_n",
		},
		{
			name:         "narrative not a boolean",
			fields:       map[string]string{"narrative": "ya"},
			expectedBody: "narrative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestAnalysisHandler(t, nil, 0, config.DefaultUploadLimit)

			body, contentType := multipartUpload(t, "apbd.xlsx", fixtureWorkbook(t), tt.fields)
			req := httptest.NewRequest("POST", "/", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.Routes().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"VALIDATION_FAILED"`)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestAnalysisHandler_GetRunInvalidID(t *testing.T) {
	handler := newTestAnalysisHandler(t, nil, 0, config.DefaultUploadLimit)

	req := httptest.NewRequest("GET", "/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"VALIDATION_FAILED"`)
}

func TestAnalysisHandler_GetRunUnknown(t *testing.T) {
	handler := newTestAnalysisHandler(t, nil, 0, config.DefaultUploadLimit)

	req := httptest.NewRequest("GET", "/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"RUN_NOT_FOUND"`)
}

func TestAnalysisHandler_ExportUnknownRun(t *testing.T) {
	handler := newTestAnalysisHandler(t, nil, 0, config.DefaultUploadLimit)

	req := httptest.NewRequest("GET", "/"+uuid.NewString()+"/export.csv", nil)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"RUN_NOT_FOUND"`)
}

func TestAnalysisHandler_ExportSeparator(t *testing.T) {
	handler := newTestAnalysisHandler(t, nil, 0, config.DefaultUploadLimit)
	router := handler.Routes()

	body, contentType := multipartUpload(t, "apbd.xlsx", fixtureWorkbook(t), nil)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, _ := resp.Data["id"].(string)
	require.NotEmpty(t, id)

	t.Run("semicolon for Indonesian Excel", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/"+id+"/export.csv?sep=semicolon", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "Kategori;Anggaran_sum;Realisasi_sum")
	})

	t.Run("unknown separator rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/"+id+"/export.csv?sep=tab", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"VALIDATION_FAILED"`)
	})
}

func TestAnalysisHandler_FormOptionsReachService(t *testing.T) {
	mockService := new(MockAnalysisService)
	mockService.On("AnalyzeUpload", services.AnalyzeOptions{
		Source:    "apbd_2024.xlsx",
		Narrative: true,
		TopN:      5,
	}).Return(&domain.AnalysisReport{ID: uuid.NewString(), Source: "apbd_2024.xlsx"}, nil)

	handler := newTestAnalysisHandler(t, mockService, 0, config.DefaultUploadLimit)

	body, contentType := multipartUpload(t, "apbd_2024.xlsx", fakeXLSXContent, map[string]string{
		"narrative": "true",
		"top_n":     "5",
	})
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mockService.AssertExpectations(t)
}

func TestAnalysisHandler_ServiceTimeoutMapsToProblem(t *testing.T) {
	mockService := new(MockAnalysisService)
	mockService.On("AnalyzeUpload", mock.Anything).Return(nil, context.DeadlineExceeded)

	handler := newTestAnalysisHandler(t, mockService, 0, config.DefaultUploadLimit)

	body, contentType := multipartUpload(t, "apbd.xlsx", fakeXLSXContent, nil)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"TIMEOUT"`)
	mockService.AssertExpectations(t)
}
