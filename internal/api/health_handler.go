package api

import (
	"net/http"

	"github.com/advancetodo/api/internal/api/shared"
	"github.com/advancetodo/api/internal/reminder"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	clock reminder.Clock
}

// NewHealthHandler creates a HealthHandler. A nil clock means the system clock.
func NewHealthHandler(clock reminder.Clock) *HealthHandler {
	if clock == nil {
		clock = reminder.SystemClock
	}
	return &HealthHandler{clock: clock}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: h.clock.Now().UTC(),
	})
}
