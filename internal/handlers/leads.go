package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fixmate/go_booking/internal/client"
	"github.com/fixmate/go_booking/internal/logger"
	"github.com/fixmate/go_booking/internal/models"
	"github.com/fixmate/go_booking/internal/queue"
	"github.com/fixmate/go_booking/internal/repository"
	"github.com/fixmate/go_booking/internal/services"
)

// MarketplaceAPI is the slice of the upstream client the handlers use.
type MarketplaceAPI interface {
	GetLead(ctx context.Context, leadID int64) (*models.Lead, error)
	AcceptLead(ctx context.Context, leadID int64) (client.Outcome, int, error)
	CancelLead(ctx context.Context, leadID int64) (client.Outcome, int, error)
	CompleteLead(ctx context.Context, leadID int64, req models.CompleteLeadRequest) (client.Outcome, int, error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID int64) (client.Outcome, int, error)
	RescheduleOrder(ctx context.Context, orderID int64, req models.RescheduleRequest) (client.Outcome, int, error)
	GetEarnings(ctx context.Context, partnerID int64) ([]models.EarningEntry, error)
}

// LeadHandler serves the partner-side lead endpoints: state reads, action
// resolution and the three mutating actions (accept, cancel, complete).
type LeadHandler struct {
	api       MarketplaceAPI
	attempts  repository.ActionAttemptRepository
	snapshots repository.SnapshotRepository
	queue     queue.Queue
	inflight  *InflightRegistry
	validator *services.Validator
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(
	api MarketplaceAPI,
	attempts repository.ActionAttemptRepository,
	snapshots repository.SnapshotRepository,
	q queue.Queue,
	inflight *InflightRegistry,
) *LeadHandler {
	return &LeadHandler{
		api:       api,
		attempts:  attempts,
		snapshots: snapshots,
		queue:     q,
		inflight:  inflight,
		validator: services.NewValidator(),
	}
}

// HandleGetLead handles GET /leads/{id}: fetches fresh state from the
// marketplace and returns it with the resolved actions for the caller.
func (h *LeadHandler) HandleGetLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leadID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid lead ID")
		return
	}

	ctx = context.WithValue(ctx, logger.LeadIDKey, leadID)

	lead, err := h.api.GetLead(ctx, leadID)
	if err != nil {
		logger.LogError(ctx, "Failed to fetch lead", err)
		respondUpstreamError(w, ctx, err)
		return
	}

	h.storeSnapshot(ctx, lead)

	respondJSON(w, ctx, http.StatusOK, APIResponse{
		Status: true,
		Data: map[string]interface{}{
			"lead":    lead,
			"actions": services.ResolveLeadActions(lead, actorFromRequest(r)),
		},
	})
}

// HandleLeadActions handles GET /leads/{id}/actions: resolves the action
// set without returning the full lead payload.
func (h *LeadHandler) HandleLeadActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leadID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid lead ID")
		return
	}

	ctx = context.WithValue(ctx, logger.LeadIDKey, leadID)

	lead, err := h.api.GetLead(ctx, leadID)
	if err != nil {
		logger.LogError(ctx, "Failed to fetch lead", err)
		respondUpstreamError(w, ctx, err)
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{
		Status: true,
		Data:   services.ResolveLeadActions(lead, actorFromRequest(r)),
	})
}

// HandleAccept handles POST /leads/{id}/accept
func (h *LeadHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, models.LeadActionAccept, func(ctx context.Context, lead *models.Lead, user *models.User) (string, bool) {
		actions := services.ResolveLeadActions(lead, user)
		if !actions.ShowAccept {
			return "lead can no longer be accepted", false
		}
		return "", true
	}, func(ctx context.Context, leadID int64) (client.Outcome, int, error) {
		return h.api.AcceptLead(ctx, leadID)
	}, nil)
}

// HandleCancel handles POST /leads/{id}/cancel
func (h *LeadHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, models.LeadActionCancel, func(ctx context.Context, lead *models.Lead, user *models.User) (string, bool) {
		actions := services.ResolveLeadActions(lead, user)
		if !actions.ShowCancel {
			return "lead cannot be cancelled by this partner", false
		}
		if !actions.CancelEnabled {
			return "lead is not in a cancellable stage", false
		}
		return "", true
	}, func(ctx context.Context, leadID int64) (client.Outcome, int, error) {
		return h.api.CancelLead(ctx, leadID)
	}, nil)
}

// HandleComplete handles POST /leads/{id}/complete. Input is validated
// before any upstream call; a validation failure never reaches the
// marketplace. On success the response carries the receivable amount the
// partner should collect.
func (h *LeadHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CompleteLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	if ve := h.validator.ValidateCompleteRequest(req); ve != nil {
		respondJSON(w, ctx, http.StatusBadRequest, APIResponse{
			Status:  false,
			Message: ve.Message,
			Field:   ve.Field,
		})
		return
	}

	h.runAction(w, r, models.LeadActionComplete, func(ctx context.Context, lead *models.Lead, user *models.User) (string, bool) {
		if lead.CancelledByCustomer() {
			return "lead was cancelled by the customer", false
		}
		if lead.OrderStatus.Slug.IsTerminal() {
			return "lead is already in a terminal state", false
		}
		return "", true
	}, func(ctx context.Context, leadID int64) (client.Outcome, int, error) {
		return h.api.CompleteLead(ctx, leadID, req)
	}, func(lead *models.Lead) interface{} {
		return map[string]interface{}{
			"receivable_amount": services.Receivable(req, lead.TotalServicePrice()),
		}
	})
}

// runAction is the shared skeleton of a mutating lead action: acquire the
// busy flag, fetch current state, check eligibility, call upstream exactly
// once, record the attempt, enqueue a refresh on success. The busy flag is
// released on every exit path.
func (h *LeadHandler) runAction(
	w http.ResponseWriter,
	r *http.Request,
	action models.LeadAction,
	eligible func(ctx context.Context, lead *models.Lead, user *models.User) (string, bool),
	call func(ctx context.Context, leadID int64) (client.Outcome, int, error),
	successData func(lead *models.Lead) interface{},
) {
	ctx := r.Context()

	leadID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid lead ID")
		return
	}

	ctx = context.WithValue(ctx, logger.LeadIDKey, leadID)

	if !h.inflight.Acquire(string(action), leadID) {
		logger.Warn(ctx, "Rejected concurrent action", "action", action)
		respondError(w, ctx, http.StatusConflict, "action already in progress for this lead")
		return
	}
	defer h.inflight.Release(string(action), leadID)

	lead, err := h.api.GetLead(ctx, leadID)
	if err != nil {
		logger.LogError(ctx, "Failed to fetch lead before action", err, "action", action)
		respondUpstreamError(w, ctx, err)
		return
	}

	if reason, ok := eligible(ctx, lead, actorFromRequest(r)); !ok {
		respondJSON(w, ctx, http.StatusUnprocessableEntity, APIResponse{Status: false, Message: reason})
		return
	}

	attempt := models.NewActionAttempt(leadID, action)
	outcome, statusCode, err := call(ctx, leadID)

	if err != nil {
		// transport failure; the action is NOT retried, its fate is unknown
		attempt.MarkFailure(nil, client.FallbackMessage)
		h.storeAttempt(ctx, attempt)
		logger.LogError(ctx, "Action failed in transit", err, "action", action)
		respondUpstreamError(w, ctx, err)
		return
	}

	if !outcome.OK {
		attempt.MarkFailure(&statusCode, outcome.Message)
		h.storeAttempt(ctx, attempt)
		logger.Warn(ctx, "Marketplace rejected action", "action", action, "message", outcome.Message)
		respondOutcomeFailure(w, ctx, outcome)
		return
	}

	attempt.MarkSuccess(statusCode, outcome.Message)
	h.storeAttempt(ctx, attempt)

	if err := h.queue.Enqueue(ctx, queue.JobTypeRefreshLead, queue.NewRefreshPayload(leadID)); err != nil {
		// the action succeeded upstream; a stale snapshot is acceptable
		logger.LogError(ctx, "Failed to enqueue snapshot refresh", err, "action", action)
	}

	resp := APIResponse{Status: true, Message: outcome.Message}
	if successData != nil {
		resp.Data = successData(lead)
	}
	respondJSON(w, ctx, http.StatusOK, resp)
}

// storeSnapshot persists lead state best-effort; reads never fail over it
func (h *LeadHandler) storeSnapshot(ctx context.Context, lead *models.Lead) {
	raw, err := json.Marshal(lead)
	if err != nil {
		logger.LogError(ctx, "Failed to marshal lead for snapshot", err)
		return
	}

	var payload models.JSONB
	if err := json.Unmarshal(raw, &payload); err != nil {
		logger.LogError(ctx, "Failed to build snapshot payload", err)
		return
	}

	snapshot := &models.LeadSnapshot{
		LeadID:    lead.ID,
		Status:    lead.OrderStatus.Slug,
		Payload:   payload,
		FetchedAt: time.Now(),
	}

	if err := h.snapshots.UpsertSnapshot(ctx, snapshot); err != nil {
		logger.LogError(ctx, "Failed to upsert lead snapshot", err)
	}
}

// storeAttempt persists the audit record best-effort
func (h *LeadHandler) storeAttempt(ctx context.Context, attempt *models.ActionAttempt) {
	if err := h.attempts.CreateAttempt(ctx, attempt); err != nil {
		logger.LogError(ctx, "Failed to record action attempt", err, "action", attempt.Action)
	}
}
