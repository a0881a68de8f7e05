package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"edupulse/internal/services"
)

// HealthHandler serves liveness and readiness endpoints.
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetHealth)
	r.Get("/live", h.GetLive)
	r.Get("/ready", h.GetReady)

	return r
}

// GetHealth handles GET /api/health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Health())
}

// GetLive handles GET /api/health/live. Always 200 while the process serves
// requests.
func (h *HealthHandler) GetLive(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"alive": true})
}

// GetReady handles GET /api/health/ready. Returns 503 until a dataset is
// resident.
func (h *HealthHandler) GetReady(w http.ResponseWriter, r *http.Request) {
	if !h.service.Ready() {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{"ready": false})
		return
	}
	render.JSON(w, r, map[string]interface{}{"ready": true})
}
