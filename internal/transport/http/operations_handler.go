package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "edupulse/internal/errors"
	"edupulse/internal/services"
)

// OperationsHandler exposes the stage runner over HTTP.
type OperationsHandler struct {
	service      *services.OperationService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewOperationsHandler creates a new operations handler
func NewOperationsHandler(service *services.OperationService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *OperationsHandler {
	return &OperationsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "operations_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the operations routes
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetStatus)
	r.Post("/generate", h.runStage(services.StageGenerate))
	r.Post("/pipeline", h.runStage(services.StagePipeline))
	r.Post("/eda", h.runStage(services.StageEDA))

	return r
}

// GetStatus handles GET /api/operations
func (h *OperationsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"running": h.service.Running(),
			"stages":  h.service.LastResults(),
		},
	})
}

// runStage builds the POST handler for one stage.
func (h *OperationsHandler) runStage(stage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		h.logger.InfoContext(r.Context(), "stage run requested",
			slog.String("stage", stage),
			slog.String("request_id", reqID))

		result, err := h.service.RunStage(r.Context(), stage)
		if err != nil {
			if errors.Is(err, services.ErrStageInProgress) {
				h.errorHandler.HandleError(w, r, apierrors.ErrStageRunning)
				return
			}
			h.errorHandler.HandleError(w, r, apierrors.StageExecutionError(stage, err))
			return
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    result,
		})
	}
}
