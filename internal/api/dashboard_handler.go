package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/planora/planora-api/internal/api/shared"
	"github.com/planora/planora-api/internal/domain"
	"github.com/planora/planora-api/internal/platform/logger"
	"github.com/planora/planora-api/internal/service"
	"github.com/planora/planora-api/internal/stats"
)

// DashboardHandler serves the dashboard summary and analytics endpoints.
type DashboardHandler struct {
	taskService *service.TaskService
	timeFunc    func() time.Time // Injectable for testing
	logger      *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(taskService *service.TaskService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		taskService: taskService,
		timeFunc:    time.Now,
		logger:      logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Summary handles GET /dashboard/summary. Due-today, overdue and
// completion-rate figures are computed here at request time, never stored.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	summary, err := h.taskService.Summary(r.Context(), userID, h.timeFunc())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute summary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// Analytics handles GET /dashboard/analytics?range=7d|30d|all. An absent
// or unknown range falls back to 7d.
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	window := stats.Window(r.URL.Query().Get("range"))
	if !window.IsValid() {
		window = stats.WindowLast7Days
	}

	analytics, err := h.taskService.Analytics(r.Context(), userID, window, h.timeFunc())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute analytics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, analytics)
}
