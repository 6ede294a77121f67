package handlers

import (
	"net/http"

	"github.com/fixmate/go_booking/internal/database"
	"github.com/fixmate/go_booking/internal/queue"
)

// HealthHandler reports gateway liveness: database and queue reachability.
// The upstream marketplace is deliberately excluded; its outages should
// not flap this instance out of the load balancer.
type HealthHandler struct {
	db    *database.DB
	queue queue.Queue
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.DB, q queue.Queue) *HealthHandler {
	return &HealthHandler{
		db:    db,
		queue: q,
	}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"database": "ok",
		"queue":    "ok",
	}
	healthy := true

	if err := h.db.HealthCheck(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}

	if err := h.queue.HealthCheck(ctx); err != nil {
		checks["queue"] = err.Error()
		healthy = false
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, ctx, statusCode, APIResponse{
		Status: healthy,
		Data:   checks,
	})
}
