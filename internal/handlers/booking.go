package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fixmate/go_booking/internal/logger"
	"github.com/fixmate/go_booking/internal/repository"
	"github.com/fixmate/go_booking/internal/services"
	"github.com/gorilla/mux"
)

// maxKVValueBytes caps a single stored blob; the cart and booking draft
// are small client-side structures.
const maxKVValueBytes = 64 * 1024

// BookingHandler serves the booking-support endpoints: the time-slot grid
// and the per-user key-value store.
type BookingHandler struct {
	kv    repository.KVRepository
	clock services.Clock
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(kv repository.KVRepository, clock services.Clock) *BookingHandler {
	if clock == nil {
		clock = time.Now
	}
	return &BookingHandler{
		kv:    kv,
		clock: clock,
	}
}

// HandleSlots handles GET /slots?date=YYYY-MM-DD
func (h *BookingHandler) HandleSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := r.URL.Query().Get("date")
	if raw == "" {
		respondJSON(w, ctx, http.StatusBadRequest, APIResponse{
			Status:  false,
			Message: "date query parameter is required",
			Field:   "date",
		})
		return
	}

	selected, err := time.ParseInLocation(bookingDateLayout, raw, h.clock().Location())
	if err != nil {
		respondJSON(w, ctx, http.StatusBadRequest, APIResponse{
			Status:  false,
			Message: "date must be in YYYY-MM-DD format",
			Field:   "date",
		})
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{
		Status: true,
		Data: map[string]interface{}{
			"date":  raw,
			"slots": services.DaySlots(selected, h.clock),
		},
	})
}

// HandleGetKV handles GET /users/{id}/kv/{key}
func (h *BookingHandler) HandleGetKV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, key, ok := h.kvParams(w, r)
	if !ok {
		return
	}

	value, err := h.kv.Get(ctx, userID, key)
	if err != nil {
		if errors.Is(err, repository.ErrKVNotFound) {
			respondError(w, ctx, http.StatusNotFound, "no value stored for this key")
			return
		}
		logger.LogError(ctx, "Failed to read kv entry", err, "key", key)
		respondError(w, ctx, http.StatusInternalServerError, "failed to read value")
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{
		Status: true,
		Data:   json.RawMessage(value),
	})
}

// HandlePutKV handles PUT /users/{id}/kv/{key}. The body must be valid
// JSON; it is stored opaque and replaces any previous value.
func (h *BookingHandler) HandlePutKV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, key, ok := h.kvParams(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxKVValueBytes+1))
	if err != nil {
		respondError(w, ctx, http.StatusBadRequest, "failed to read request body")
		return
	}

	if len(body) > maxKVValueBytes {
		respondError(w, ctx, http.StatusRequestEntityTooLarge, "value too large")
		return
	}

	if !json.Valid(body) {
		respondError(w, ctx, http.StatusBadRequest, "value must be valid JSON")
		return
	}

	if err := h.kv.Put(ctx, userID, key, body); err != nil {
		logger.LogError(ctx, "Failed to store kv entry", err, "key", key)
		respondError(w, ctx, http.StatusInternalServerError, "failed to store value")
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{Status: true, Message: "value stored"})
}

// HandleDeleteKV handles DELETE /users/{id}/kv/{key}
func (h *BookingHandler) HandleDeleteKV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, key, ok := h.kvParams(w, r)
	if !ok {
		return
	}

	if err := h.kv.Delete(ctx, userID, key); err != nil {
		logger.LogError(ctx, "Failed to delete kv entry", err, "key", key)
		respondError(w, ctx, http.StatusInternalServerError, "failed to delete value")
		return
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{Status: true, Message: "value deleted"})
}

// kvParams validates the {id} and {key} path variables
func (h *BookingHandler) kvParams(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	ctx := r.Context()

	userID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid user ID")
		return 0, "", false
	}

	key := mux.Vars(r)["key"]
	if !repository.KnownKVKey(key) {
		respondError(w, ctx, http.StatusBadRequest, "unknown storage key")
		return 0, "", false
	}

	return userID, key, true
}
