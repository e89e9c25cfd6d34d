package handlers

import (
	"net/http"
	"time"

	"classquest/internal/service"
)

// AdminHandler exposes operational endpoints
type AdminHandler struct {
	scheduler *service.SchedulerService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(scheduler *service.SchedulerService) *AdminHandler {
	return &AdminHandler{scheduler: scheduler}
}

// Tick handles POST /api/admin/tick. It runs one scheduler pass immediately;
// because every transition is idempotent, running it alongside the background
// ticker is safe.
func (h *AdminHandler) Tick(w http.ResponseWriter, r *http.Request) {
	report, err := h.scheduler.Tick(time.Now())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Tick failed", "manual tick failed", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Health handles GET /health
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
