package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edupulse/internal/config"
	apierrors "edupulse/internal/errors"
	"edupulse/internal/pipeline"
	"edupulse/internal/services"
	"edupulse/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dashboardRecords() []domain.CleanedRecord {
	rec := func(enrollmentID, studentID, dept, courseID, semester string,
		attendance, midterm, final float64, outcome domain.OutcomeLabel) domain.CleanedRecord {
		return domain.CleanedRecord{
			EnrollmentID:   enrollmentID,
			StudentID:      studentID,
			CourseID:       courseID,
			CourseName:     "Course " + courseID,
			Semester:       semester,
			Name:           "Student " + studentID,
			Age:            21,
			Gender:         "M",
			Department:     dept,
			AdmissionYear:  2021,
			LMSHours:       100,
			AttendanceRate: attendance,
			MidtermGrade:   midterm,
			FinalGrade:     final,
			LetterGrade:    domain.LetterGrade(final),
			Outcome:        outcome,
		}
	}

	return []domain.CleanedRecord{
		rec("e1", "STU0001", "Engineering", "CRS001", "Fall 2023", 92, 85, 88, domain.OutcomeNormal),
		rec("e2", "STU0002", "Engineering", "CRS001", "Fall 2023", 25, 40, 0, domain.OutcomeDropout),
		rec("e3", "STU0003", "Arts", "CRS013", "Spring 2024", 90, 70, 72, domain.OutcomeNormal),
	}
}

func dashboardServer(t *testing.T, records []domain.CleanedRecord) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{BaseDir: dir, LogsDir: filepath.Join(dir, "logs")})
	require.NoError(t, paths.EnsureDirectories())

	svc := services.NewDataService(paths, config.DefaultRules(), discardLogger(), nil)
	if len(records) > 0 {
		ctx := context.Background()
		require.NoError(t, pipeline.WriteCleaned(ctx, nil, paths.CleanedMasterCSV, records))
		require.NoError(t, svc.Load(ctx))
	}

	handler := NewDashboardHandler(svc, discardLogger(), apierrors.NewErrorHandler(discardLogger(), false))
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]interface{} {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestGetMetrics(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/metrics", http.StatusOK)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total_students"])
	assert.Equal(t, float64(3), data["total_records"])
	assert.Equal(t, float64(1), data["at_risk_count"])
	assert.Equal(t, float64(1), data["dropout_count"])
}

func TestGetMetricsFiltered(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/metrics?department=Arts", http.StatusOK)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total_records"])
	assert.Equal(t, float64(0), data["at_risk_count"])
}

func TestGetRecords(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/records", http.StatusOK)
	assert.Equal(t, float64(3), body["count"])
	assert.Len(t, body["data"], 3)
}

func TestGetRecordsFilterCombinations(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "department", query: "?department=Engineering", want: 2},
		{name: "course", query: "?course=CRS013", want: 1},
		{name: "semester", query: "?semester=Fall+2023", want: 2},
		{name: "at risk", query: "?at_risk=true", want: 1},
		{name: "no match", query: "?department=Science", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := getJSON(t, server.URL+"/records"+tt.query, http.StatusOK)
			assert.Equal(t, float64(tt.want), body["count"])
		})
	}
}

func TestGetRecordsEmptyDataset(t *testing.T) {
	// No dataset loaded at all: still a 200 with an empty result, the
	// frontend renders its placeholder from it.
	server := dashboardServer(t, nil)

	body := getJSON(t, server.URL+"/records", http.StatusOK)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(0), body["count"])
}

func TestGetFilters(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/filters", http.StatusOK)
	data := body["data"].(map[string]interface{})

	assert.Len(t, data["departments"], len(config.Departments))
	courses := data["courses"].([]interface{})
	require.Len(t, courses, 2)
	first := courses[0].(map[string]interface{})
	assert.Equal(t, "CRS001", first["id"])
}

func TestGetStudent(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/students/STU0001", http.StatusOK)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "STU0001", data["student_id"])
	assert.Len(t, data["enrollments"], 1)
	assert.Equal(t, false, data["at_risk"])
	assert.Contains(t, data, "avg_attendance")
	assert.Contains(t, data, "total_lms_hours")
}

func TestGetStudentNotFound(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/students/STU9999", http.StatusNotFound)
	assert.Equal(t, apierrors.TypeStudentNotFound, body["type"])
	assert.Equal(t, "STUDENT_NOT_FOUND", body["error_code"])
}

func TestGetStudentInvalidID(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/students/THIS-ID-IS-FAR-TOO-LONG-TO-BE-VALID", http.StatusBadRequest)
	assert.Equal(t, apierrors.TypeValidation, body["type"])
}

func TestGetHeatmap(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/heatmap?bins=10", http.StatusOK)
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["x_buckets"], 10)
	assert.Len(t, data["counts"], 10)
}

func TestGetHeatmapDefaultBins(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/heatmap", http.StatusOK)
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["x_buckets"], 12)
}

func TestGetHeatmapInvalidBins(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	for _, bins := range []string{"1", "51", "abc"} {
		body := getJSON(t, server.URL+"/heatmap?bins="+bins, http.StatusBadRequest)
		assert.Equal(t, apierrors.TypeValidation, body["type"], "bins=%s", bins)
	}
}

func TestGetJourney(t *testing.T) {
	server := dashboardServer(t, dashboardRecords())

	body := getJSON(t, server.URL+"/journey", http.StatusOK)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["nodes"])
	assert.NotEmpty(t, data["links"])
}
