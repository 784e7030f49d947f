package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with cause",
			err:  NewParsingError("failed to open workbook", errors.New("zip: not a valid zip file")),
			want: "[PARSING] failed to open workbook: zip: not a valid zip file",
		},
		{
			name: "without cause",
			err:  NewAppValidationError("sheet name is empty"),
			want: "[VALIDATION] sheet name is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("narrative request failed", cause)

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeNetwork, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewAnalysisError("aggregation failed", nil).
		WithContext("sheet", "APBD").
		WithContext("rows", 42)

	assert.Equal(t, "APBD", err.Context["sheet"])
	assert.Equal(t, 42, err.Context["rows"])
}

func TestAppErrorHelpers(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{"parsing", NewParsingError("m", cause), ErrTypeParsing},
		{"analysis", NewAnalysisError("m", cause), ErrTypeAnalysis},
		{"narrative", NewNarrativeError("m", cause), ErrTypeNarrative},
		{"network", NewNetworkError("m", cause), ErrTypeNetwork},
		{"storage", NewStorageError("m", cause), ErrTypeStorage},
		{"validation", NewAppValidationError("m"), ErrTypeValidation},
		{"not found", NewNotFoundError("run"), ErrTypeNotFound},
		{"config", NewConfigError("m", cause), ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("analysis run")
	assert.Equal(t, "[NOT_FOUND] analysis run not found", err.Error())
	assert.Nil(t, err.Unwrap())
}
