package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"edupulse/internal/config"
	"edupulse/internal/eda"
	"edupulse/internal/generator"
	"edupulse/internal/metrics"
	"edupulse/internal/pipeline"
	"edupulse/internal/websocket"
)

// Stage names accepted by the operations API.
const (
	StageGenerate = "generate"
	StagePipeline = "pipeline"
	StageEDA      = "eda"
)

// ErrStageInProgress is returned when a run is requested while another is
// still executing. Stage runs are serialized.
var ErrStageInProgress = fmt.Errorf("a stage run is already in progress")

// StageResult describes one finished stage run.
type StageResult struct {
	Stage      string    `json:"stage"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

// OperationService executes the batch stages in-process on behalf of the
// dashboard and streams progress over the hub.
type OperationService struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	hub     *websocket.Hub
	data    *DataService
	metrics *metrics.Metrics

	mu      sync.Mutex
	running bool
	last    map[string]StageResult
}

// NewOperationService wires the stage runner.
func NewOperationService(cfg *config.Config, paths *config.Paths, data *DataService,
	hub *websocket.Hub, m *metrics.Metrics, logger *slog.Logger) *OperationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationService{
		cfg:     cfg,
		paths:   paths,
		logger:  logger.With(slog.String("component", "operation_service")),
		hub:     hub,
		data:    data,
		metrics: m,
		last:    make(map[string]StageResult),
	}
}

// Running reports whether a stage is currently executing.
func (s *OperationService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastResults returns the most recent result per stage.
func (s *OperationService) LastResults() map[string]StageResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]StageResult, len(s.last))
	for k, v := range s.last {
		out[k] = v
	}
	return out
}

// RunStage executes one named stage synchronously. Only one stage may run at
// a time; concurrent requests get ErrStageInProgress.
func (s *OperationService) RunStage(ctx context.Context, stage string) (StageResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return StageResult{}, ErrStageInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	result := StageResult{Stage: stage, StartedAt: time.Now()}
	s.broadcastStatus(stage, "running", "")
	s.logger.InfoContext(ctx, "stage started", slog.String("stage", stage))

	err := s.execute(ctx, stage)

	result.FinishedAt = time.Now()
	if err != nil {
		result.Status = "failed"
		result.Error = err.Error()
		s.broadcastStatus(stage, "failed", err.Error())
		s.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", stage),
			slog.String("error", err.Error()),
			slog.Duration("duration", result.FinishedAt.Sub(result.StartedAt)))
	} else {
		result.Status = "completed"
		s.broadcastStatus(stage, "completed", "")
		s.logger.InfoContext(ctx, "stage completed",
			slog.String("stage", stage),
			slog.Duration("duration", result.FinishedAt.Sub(result.StartedAt)))
	}

	if s.metrics != nil {
		s.metrics.StageRunsTotal.WithLabelValues(stage, result.Status).Inc()
		s.metrics.StageDuration.WithLabelValues(stage).
			Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}

	s.mu.Lock()
	s.last[stage] = result
	s.mu.Unlock()

	if err != nil {
		return result, err
	}
	return result, nil
}

func (s *OperationService) execute(ctx context.Context, stage string) error {
	switch stage {
	case StageGenerate:
		gen := generator.New(s.cfg.Generator, s.logger)
		dataset, err := gen.Generate(ctx)
		if err != nil {
			return err
		}
		s.broadcastProgress(stage, 80, "writing raw files")
		if err := gen.WriteFiles(ctx, dataset, s.paths); err != nil {
			return err
		}
		s.countRows(stage, "students", len(dataset.Students))
		s.countRows(stage, "enrollments", len(dataset.Enrollments))
		s.countRows(stage, "grade_records", len(dataset.Grades))
		return nil

	case StagePipeline:
		if err := pipeline.Run(ctx, s.logger, s.cfg.Rules, s.paths); err != nil {
			return err
		}
		s.broadcastProgress(stage, 90, "reloading dataset")
		if err := s.data.Load(ctx); err != nil {
			return err
		}
		s.countRows(stage, "cleaned_master", s.data.RowCount())
		if s.hub != nil {
			s.hub.BroadcastDataUpdate(s.data.RowCount())
		}
		return nil

	case StageEDA:
		return eda.Run(ctx, s.logger, s.cfg.Rules, s.paths)

	default:
		return fmt.Errorf("unknown stage: %s", stage)
	}
}

func (s *OperationService) countRows(stage, table string, n int) {
	if s.metrics != nil {
		s.metrics.RowsProcessed.WithLabelValues(stage, table).Add(float64(n))
	}
}

func (s *OperationService) broadcastStatus(stage, status, message string) {
	if s.hub != nil {
		s.hub.BroadcastStageStatus(stage, status, message)
	}
}

func (s *OperationService) broadcastProgress(stage string, progress int, message string) {
	if s.hub != nil {
		s.hub.BroadcastProgress(stage, progress, message)
	}
}
