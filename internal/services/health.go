package services

import (
	"time"

	"edupulse/internal/config"
)

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`

	Dataset DatasetHealth `json:"dataset"`
}

// DatasetHealth describes the state of the cleaned dataset.
type DatasetHealth struct {
	Loaded     bool      `json:"loaded"`
	Rows       int       `json:"rows"`
	LoadedAt   time.Time `json:"loaded_at,omitempty"`
	FileExists bool      `json:"file_exists"`
}

// HealthService reports liveness and readiness for the web server.
type HealthService struct {
	paths     *config.Paths
	data      *DataService
	version   string
	startedAt time.Time
}

// NewHealthService creates the health reporter.
func NewHealthService(paths *config.Paths, data *DataService, version string) *HealthService {
	return &HealthService{
		paths:     paths,
		data:      data,
		version:   version,
		startedAt: time.Now(),
	}
}

// Health returns the full health payload. Status degrades to "degraded" when
// no dataset is resident; the server itself is still alive.
func (s *HealthService) Health() HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Version:   s.version,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		Timestamp: time.Now(),
		Dataset: DatasetHealth{
			Loaded:     s.data.Loaded(),
			Rows:       s.data.RowCount(),
			FileExists: config.FileExists(s.paths.CleanedMasterCSV),
		},
	}
	if s.data.Loaded() {
		status.Dataset.LoadedAt = s.data.LoadedAt()
	} else {
		status.Status = "degraded"
	}
	return status
}

// Ready reports whether the server can answer dashboard queries.
func (s *HealthService) Ready() bool {
	return s.data.Loaded()
}
