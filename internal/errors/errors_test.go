package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusNotFound, "STUDENT_NOT_FOUND", "Student not found")

	assert.Equal(t, "Student not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "STUDENT_NOT_FOUND", err.ErrorCode)
	assert.Nil(t, err.Details)
}

func TestNewWithDetails(t *testing.T) {
	err := NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER", "bad bins", "bins must be 2-50")
	assert.Equal(t, "bins must be 2-50", err.Details)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{name: "invalid request", err: ErrInvalidRequest, wantStatus: 400, wantCode: "INVALID_REQUEST"},
		{name: "student not found", err: ErrStudentNotFound, wantStatus: 404, wantCode: "STUDENT_NOT_FOUND"},
		{name: "dataset missing", err: ErrDatasetMissing, wantStatus: 404, wantCode: "DATASET_MISSING"},
		{name: "stage running", err: ErrStageRunning, wantStatus: 409, wantCode: "STAGE_ALREADY_RUNNING"},
		{name: "rate limit", err: ErrRateLimitExceeded, wantStatus: 429, wantCode: "RATE_LIMIT_EXCEEDED"},
		{name: "stage failed", err: ErrStageFailed, wantStatus: 500, wantCode: "STAGE_FAILED"},
		{name: "service unavailable", err: ErrServiceUnavailable, wantStatus: 503, wantCode: "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("bins", "must be between 2 and 50")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "bins", detail.Field)
}

func TestStageExecutionError(t *testing.T) {
	cause := assert.AnError
	err := StageExecutionError("pipeline", cause)

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "STAGE_FAILED", err.ErrorCode)
	assert.Contains(t, err.Message, "pipeline")
	assert.Equal(t, cause.Error(), err.Details)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrStudentNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "STUDENT_NOT_FOUND", resp.Error.ErrorCode)
}
