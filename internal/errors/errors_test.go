package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())

	var target *APIError
	assert.True(t, errors.As(error(err), &target))
}

func TestAPIError_Render(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, render.Render(rec, req, ErrPayloadTooLarge))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PAYLOAD_TOO_LARGE", body.ErrorCode)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err    *APIError
		status int
		code   string
	}{
		{ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{ErrExportFailed, http.StatusInternalServerError, "EXPORT_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestHelpers(t *testing.T) {
	cause := errors.New(`sheet "FUND1_BASE", row 3, column R: invalid cell value`)

	tests := []struct {
		name    string
		err     *APIError
		status  int
		code    string
		details interface{}
	}{
		{"invalid request", InvalidRequestWithError(cause), http.StatusBadRequest, "INVALID_REQUEST", cause.Error()},
		{"validation", ErrValidation("peers", "peers is required"), http.StatusBadRequest, "VALIDATION_FAILED",
			ValidationError{Field: "peers", Message: "peers is required"}},
		{"export", ExportError("FUND1.xlsx"), http.StatusInternalServerError, "EXPORT_FAILED", "FUND1.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
			assert.Equal(t, tt.details, tt.err.Details)
		})
	}
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "analysis", Message: "analysis is required"},
		{Field: "peers", Message: "peers must have at least 1 entries"},
	})

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
}
