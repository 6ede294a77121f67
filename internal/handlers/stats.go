package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fixmate/go_booking/internal/logger"
	"github.com/fixmate/go_booking/internal/models"
	"github.com/fixmate/go_booking/internal/repository"
)

// LeadCounts summarizes cached lead snapshots by order status.
type LeadCounts struct {
	NewBooking     int `json:"new_booking"`
	Accepted       int `json:"accepted"`
	Rescheduled    int `json:"rescheduled"`
	Completed      int `json:"completed"`
	Cancelled      int `json:"cancelled"`
	CustomerDenied int `json:"customer_denied"`
	Total          int `json:"total"`
}

// StatsHandler serves operational views over the gateway's local state:
// snapshot counts, recent refreshes, and the action history of a lead.
// Everything here reads the local database only; no upstream calls.
type StatsHandler struct {
	snapshots repository.SnapshotRepository
	attempts  repository.ActionAttemptRepository
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(snapshots repository.SnapshotRepository, attempts repository.ActionAttemptRepository) *StatsHandler {
	return &StatsHandler{
		snapshots: snapshots,
		attempts:  attempts,
	}
}

// HandleLeadCounts handles GET /stats/leads/counts
func (h *StatsHandler) HandleLeadCounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byStatus, err := h.snapshots.GetCountsByStatus(ctx)
	if err != nil {
		logger.LogError(ctx, "Failed to get lead counts", err)
		respondError(w, ctx, http.StatusInternalServerError, "failed to get lead counts")
		return
	}

	counts := LeadCounts{
		NewBooking:     byStatus[string(models.OrderStatusNewBooking)],
		Accepted:       byStatus[string(models.OrderStatusAccepted)],
		Rescheduled:    byStatus[string(models.OrderStatusRescheduled)],
		Completed:      byStatus[string(models.OrderStatusCompleted)],
		Cancelled:      byStatus[string(models.OrderStatusCancelled)],
		CustomerDenied: byStatus[string(models.OrderStatusCustomerDenied)],
	}
	for _, n := range byStatus {
		counts.Total += n
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{Status: true, Data: counts})
}

// HandleRecentLeads handles GET /stats/leads/recent?limit=N
func (h *StatsHandler) HandleRecentLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			respondError(w, ctx, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	snapshots, err := h.snapshots.GetRecentSnapshots(ctx, limit)
	if err != nil {
		logger.LogError(ctx, "Failed to get recent snapshots", err)
		respondError(w, ctx, http.StatusInternalServerError, "failed to get recent leads")
		return
	}

	type summary struct {
		LeadID    int64              `json:"lead_id"`
		Status    models.OrderStatus `json:"status"`
		FetchedAt string             `json:"fetched_at"`
	}

	summaries := make([]summary, 0, len(snapshots))
	for _, s := range snapshots {
		summaries = append(summaries, summary{
			LeadID:    s.LeadID,
			Status:    s.Status,
			FetchedAt: s.FetchedAt.UTC().Format(time.RFC3339),
		})
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{Status: true, Data: summaries})
}

// HandleLeadHistory handles GET /stats/leads/{id}/history: the cached
// snapshot plus every recorded action attempt for the lead.
func (h *StatsHandler) HandleLeadHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leadID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid lead ID")
		return
	}

	ctx = context.WithValue(ctx, logger.LeadIDKey, leadID)

	snapshot, err := h.snapshots.GetSnapshot(ctx, leadID)
	if err != nil && !errors.Is(err, repository.ErrSnapshotNotFound) {
		logger.LogError(ctx, "Failed to get snapshot", err)
		respondError(w, ctx, http.StatusInternalServerError, "failed to get lead history")
		return
	}

	attempts, err := h.attempts.GetAttemptsByLeadID(ctx, leadID)
	if err != nil {
		logger.LogError(ctx, "Failed to get action attempts", err)
		respondError(w, ctx, http.StatusInternalServerError, "failed to get lead history")
		return
	}

	if snapshot == nil && len(attempts) == 0 {
		respondError(w, ctx, http.StatusNotFound, "no local history for this lead")
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{
		Status: true,
		Data: map[string]interface{}{
			"snapshot": snapshot,
			"attempts": attempts,
		},
	})
}
