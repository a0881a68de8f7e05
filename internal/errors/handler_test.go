package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "api error maps by error code",
			err:        ErrStudentNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeStudentNotFound,
		},
		{
			name:       "stage conflict",
			err:        ErrStageRunning,
			wantStatus: http.StatusConflict,
			wantType:   TypeStageRunning,
		},
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "plain not-found message",
			err:        fmt.Errorf("student STU0001 not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "stage already in progress message",
			err:        fmt.Errorf("a stage run is already in progress"),
			wantStatus: http.StatusConflict,
			wantType:   TypeStageRunning,
		},
		{
			name:       "unknown error is internal",
			err:        fmt.Errorf("disk exploded"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

			testHandler().HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, problem["type"])
			assert.Equal(t, float64(tt.wantStatus), problem["status"])
		})
	}
}

func TestHandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

	testHandler().HandleError(rec, req, nil)
	assert.Empty(t, rec.Body.String())
}

func TestHandleErrorIncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

	testHandler().HandleError(rec, req, ErrValidation("bins", "out of range"))

	problem := decodeProblem(t, rec)
	assert.Equal(t, TypeValidation, problem["type"])
	assert.Equal(t, "VALIDATION_FAILED", problem["error_code"])
	assert.Contains(t, problem, "details")
}

func TestHandlePanic(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/operations/eda", nil)

	testHandler().HandlePanic(rec, req, "boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, problem["type"])
	assert.NotContains(t, problem, "stack", "stack is only exposed when enabled")
}

func TestHandlePanicWithStack(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/operations/eda", nil)

	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), true)
	h.HandlePanic(rec, req, "boom")

	problem := decodeProblem(t, rec)
	assert.Contains(t, problem, "stack")
	assert.Equal(t, "boom", problem["panic"])
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)

	testHandler().NotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "/nope", problem["instance"])
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/dashboard/records", nil)

	testHandler().MethodNotAllowed(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Contains(t, problem["detail"], "DELETE")
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	pd := NewProblemDetails(400, TypeValidation, "Bad Request", "bins out of range", "/api/dashboard/heatmap").
		WithExtension("error_code", "INVALID_PARAMETER")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeValidation, decoded["type"])
	assert.Equal(t, "bins out of range", decoded["detail"])
	assert.Equal(t, "INVALID_PARAMETER", decoded["error_code"])
}
