package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fixmate/go_booking/internal/logger"
	"github.com/fixmate/go_booking/internal/models"
	"github.com/fixmate/go_booking/internal/services"
)

const bookingDateLayout = "2006-01-02"

// OrderHandler serves the customer-side order endpoints.
type OrderHandler struct {
	api      MarketplaceAPI
	inflight *InflightRegistry
	clock    services.Clock
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(api MarketplaceAPI, inflight *InflightRegistry, clock services.Clock) *OrderHandler {
	if clock == nil {
		clock = time.Now
	}
	return &OrderHandler{
		api:      api,
		inflight: inflight,
		clock:    clock,
	}
}

// HandleGetOrder handles GET /orders/{id}
func (h *OrderHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid order ID")
		return
	}

	ctx = context.WithValue(ctx, logger.OrderIDKey, orderID)

	order, err := h.api.GetOrder(ctx, orderID)
	if err != nil {
		logger.LogError(ctx, "Failed to fetch order", err)
		respondUpstreamError(w, ctx, err)
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{
		Status: true,
		Data: map[string]interface{}{
			"order":   order,
			"actions": services.ResolveOrderActions(order),
		},
	})
}

// HandleOrderActions handles GET /orders/{id}/actions
func (h *OrderHandler) HandleOrderActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid order ID")
		return
	}

	ctx = context.WithValue(ctx, logger.OrderIDKey, orderID)

	order, err := h.api.GetOrder(ctx, orderID)
	if err != nil {
		logger.LogError(ctx, "Failed to fetch order", err)
		respondUpstreamError(w, ctx, err)
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{
		Status: true,
		Data:   services.ResolveOrderActions(order),
	})
}

// HandleCancelOrder handles POST /orders/{id}/cancel
func (h *OrderHandler) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid order ID")
		return
	}

	ctx = context.WithValue(ctx, logger.OrderIDKey, orderID)

	if !h.inflight.Acquire("cancel-order", orderID) {
		logger.Warn(ctx, "Rejected concurrent order cancel")
		respondError(w, ctx, http.StatusConflict, "action already in progress for this order")
		return
	}
	defer h.inflight.Release("cancel-order", orderID)

	order, err := h.api.GetOrder(ctx, orderID)
	if err != nil {
		logger.LogError(ctx, "Failed to fetch order before cancel", err)
		respondUpstreamError(w, ctx, err)
		return
	}

	if actions := services.ResolveOrderActions(order); !actions.ShowCancel {
		respondJSON(w, ctx, http.StatusUnprocessableEntity, APIResponse{
			Status:  false,
			Message: "order can no longer be cancelled",
		})
		return
	}

	outcome, _, err := h.api.CancelOrder(ctx, orderID)
	if err != nil {
		logger.LogError(ctx, "Order cancel failed in transit", err)
		respondUpstreamError(w, ctx, err)
		return
	}

	if !outcome.OK {
		logger.Warn(ctx, "Marketplace rejected order cancel", "message", outcome.Message)
		respondOutcomeFailure(w, ctx, outcome)
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{Status: true, Message: outcome.Message})
}

// HandleReschedule handles POST /orders/{id}/reschedule. The requested date
// and slot are validated against the slot grid before the marketplace is
// asked to move anything; a slot that already passed today is rejected.
func (h *OrderHandler) HandleReschedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid order ID")
		return
	}

	ctx = context.WithValue(ctx, logger.OrderIDKey, orderID)

	var req models.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	selected, err := time.ParseInLocation(bookingDateLayout, req.Date, h.clock().Location())
	if err != nil {
		respondJSON(w, ctx, http.StatusBadRequest, APIResponse{
			Status:  false,
			Message: "date must be in YYYY-MM-DD format",
			Field:   "date",
		})
		return
	}

	slot, ok := services.SlotByLabel(selected, h.clock, req.Slot)
	if !ok {
		respondJSON(w, ctx, http.StatusBadRequest, APIResponse{
			Status:  false,
			Message: "invalid time slot",
			Field:   "slot",
		})
		return
	}

	if slot.Disabled {
		respondJSON(w, ctx, http.StatusUnprocessableEntity, APIResponse{
			Status:  false,
			Message: "selected time slot has already passed",
			Field:   "slot",
		})
		return
	}

	if !h.inflight.Acquire("reschedule-order", orderID) {
		logger.Warn(ctx, "Rejected concurrent order reschedule")
		respondError(w, ctx, http.StatusConflict, "action already in progress for this order")
		return
	}
	defer h.inflight.Release("reschedule-order", orderID)

	order, err := h.api.GetOrder(ctx, orderID)
	if err != nil {
		logger.LogError(ctx, "Failed to fetch order before reschedule", err)
		respondUpstreamError(w, ctx, err)
		return
	}

	if actions := services.ResolveOrderActions(order); !actions.ShowReschedule {
		respondJSON(w, ctx, http.StatusUnprocessableEntity, APIResponse{
			Status:  false,
			Message: "order can no longer be rescheduled",
		})
		return
	}

	outcome, _, err := h.api.RescheduleOrder(ctx, orderID, req)
	if err != nil {
		logger.LogError(ctx, "Order reschedule failed in transit", err)
		respondUpstreamError(w, ctx, err)
		return
	}

	if !outcome.OK {
		logger.Warn(ctx, "Marketplace rejected order reschedule", "message", outcome.Message)
		respondOutcomeFailure(w, ctx, outcome)
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{Status: true, Message: outcome.Message})
}
