package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsolatedRegistries(t *testing.T) {
	// Two instances must not collide; each carries its own registry.
	first := New()
	second := New()

	first.DatasetRowsGauge.Set(100)
	second.DatasetRowsGauge.Set(7)

	assert.Equal(t, 100.0, testutil.ToFloat64(first.DatasetRowsGauge))
	assert.Equal(t, 7.0, testutil.ToFloat64(second.DatasetRowsGauge))
}

func TestCounters(t *testing.T) {
	m := New()

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/dashboard/records", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/dashboard/records", "200").Inc()
	m.StageRunsTotal.WithLabelValues("pipeline", "completed").Inc()
	m.RowsProcessed.WithLabelValues("pipeline", "cleaned_master").Add(1185)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/dashboard/records", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRunsTotal.WithLabelValues("pipeline", "completed")))
	assert.Equal(t, 1185.0, testutil.ToFloat64(m.RowsProcessed.WithLabelValues("pipeline", "cleaned_master")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.WSConnections.Set(3)
	m.DatasetReloads.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "edupulse_websocket_connections 3")
	assert.Contains(t, body, "edupulse_dataset_reloads_total 1")
	assert.Contains(t, body, "go_goroutines")
}
