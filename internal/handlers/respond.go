package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fixmate/go_booking/internal/client"
	"github.com/fixmate/go_booking/internal/logger"
	"github.com/fixmate/go_booking/internal/models"
	"github.com/gorilla/mux"
)

// APIResponse is the gateway's uniform response envelope. Unlike the
// marketplace, the gateway always signals success through "status".
type APIResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Field   string      `json:"field,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, ctx context.Context, statusCode int, data interface{}) {
	if correlationID, ok := ctx.Value(logger.CorrelationIDKey).(string); ok {
		w.Header().Set("X-Correlation-ID", correlationID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.LogError(ctx, "Failed to encode response", err)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, ctx context.Context, statusCode int, message string) {
	correlationID := ""
	if id, ok := ctx.Value(logger.CorrelationIDKey).(string); ok {
		correlationID = id
	}

	respondJSON(w, ctx, statusCode, ErrorResponse{
		Error:         message,
		CorrelationID: correlationID,
	})
}

// respondOutcomeFailure surfaces an upstream rejection verbatim
func respondOutcomeFailure(w http.ResponseWriter, ctx context.Context, out client.Outcome) {
	message := out.Message
	if message == "" {
		message = client.FallbackMessage
	}
	respondJSON(w, ctx, http.StatusUnprocessableEntity, APIResponse{Status: false, Message: message})
}

// respondUpstreamError maps an upstream failure to a gateway response.
// Transport failures get the generic fallback message; HTTP-level
// rejections surface the server's message verbatim.
func respondUpstreamError(w http.ResponseWriter, ctx context.Context, err error) {
	var upstreamErr *models.UpstreamError
	if errors.As(err, &upstreamErr) && !upstreamErr.IsTransport() {
		message := upstreamErr.Message
		if message == "" {
			message = client.FallbackMessage
		}
		respondJSON(w, ctx, http.StatusUnprocessableEntity, APIResponse{Status: false, Message: message})
		return
	}

	respondJSON(w, ctx, http.StatusBadGateway, APIResponse{Status: false, Message: client.FallbackMessage})
}

// pathID extracts a positive int64 path variable
func pathID(r *http.Request, name string) (int64, bool) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// actorFromRequest builds the acting user from the identity headers set by
// the authenticating edge. Absent headers mean an anonymous caller with no
// permissions.
func actorFromRequest(r *http.Request) *models.User {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}

	return &models.User{
		ID:                 id,
		IsAbleToAcceptLead: r.Header.Get("X-User-Can-Accept") == "true",
	}
}
