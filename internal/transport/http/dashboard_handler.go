// Package http contains the chi HTTP handlers of the dashboard API.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "edupulse/internal/errors"
	"edupulse/internal/services"
)

// DashboardHandler serves the dashboard query endpoints.
type DashboardHandler struct {
	service      *services.DataService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *services.DataService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/metrics", h.GetMetrics)
	r.Get("/filters", h.GetFilters)
	r.Get("/records", h.GetRecords)
	r.Get("/heatmap", h.GetHeatmap)
	r.Get("/journey", h.GetJourney)

	r.Route("/students/{studentID}", func(r chi.Router) {
		r.Use(h.StudentCtx)
		r.Get("/", h.GetStudent)
	})

	return r
}

// StudentCtx validates the studentID parameter
func (h *DashboardHandler) StudentCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "studentID")
		if id == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("studentID", "Student ID is required"))
			return
		}
		if len(id) > 16 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("studentID", "Invalid student ID format"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// filterFromQuery extracts the common filter parameters.
func filterFromQuery(r *http.Request) services.Filter {
	q := r.URL.Query()
	return services.Filter{
		Department: q.Get("department"),
		CourseID:   q.Get("course"),
		Semester:   q.Get("semester"),
		AtRiskOnly: q.Get("at_risk") == "true",
	}
}

// GetMetrics handles GET /api/dashboard/metrics
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	cards := h.service.Metrics(filterFromQuery(r))
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"data":    cards,
	})
}

// GetFilters handles GET /api/dashboard/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"data":    h.service.FilterOptions(),
	})
}

// GetRecords handles GET /api/dashboard/records
func (h *DashboardHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	records := h.service.Records(filterFromQuery(r))

	// An empty result is a valid state, not an error; the frontend renders
	// its empty placeholder from it.
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"count":   len(records),
		"data":    records,
	})
}

// GetStudent handles GET /api/dashboard/students/{studentID}
func (h *DashboardHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "studentID")

	detail, ok := h.service.Student(id)
	if !ok {
		h.logger.InfoContext(r.Context(), "student not found",
			slog.String("student_id", id),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, apierrors.ErrStudentNotFound)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"data":    detail,
	})
}

// GetHeatmap handles GET /api/dashboard/heatmap
func (h *DashboardHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	bins := 12
	if v := r.URL.Query().Get("bins"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 2 || parsed > 50 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("bins", "bins must be an integer between 2 and 50"))
			return
		}
		bins = parsed
	}

	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"data":    h.service.Heatmap(filterFromQuery(r), bins),
	})
}

// GetJourney handles GET /api/dashboard/journey
func (h *DashboardHandler) GetJourney(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"data":    h.service.Journey(filterFromQuery(r)),
	})
}
