package handlers

import (
	"net/http"

	"github.com/fixmate/go_booking/internal/logger"
	"github.com/fixmate/go_booking/internal/models"
	"github.com/fixmate/go_booking/internal/services"
)

// EarningRow is one settled ledger entry with its computed earnings.
// RefundEarning is present only when the entry carries a refund; the
// refund adjustment is shown as its own figure, never merged into Earning.
type EarningRow struct {
	Entry         models.EarningEntry `json:"entry"`
	Earning       float64             `json:"earning"`
	RefundEarning *float64            `json:"refund_earning,omitempty"`
	RunningTotal  float64             `json:"running_total"`
}

// EarningsHandler serves the partner earnings ledger.
type EarningsHandler struct {
	api MarketplaceAPI
}

// NewEarningsHandler creates a new EarningsHandler
func NewEarningsHandler(api MarketplaceAPI) *EarningsHandler {
	return &EarningsHandler{
		api: api,
	}
}

// HandleEarnings handles GET /partners/{id}/earnings: fetches the raw
// ledger upstream and annotates each row with its earning, any refund
// adjustment, and the running total folded left to right.
func (h *EarningsHandler) HandleEarnings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	partnerID, ok := pathID(r, "id")
	if !ok {
		respondError(w, ctx, http.StatusBadRequest, "invalid partner ID")
		return
	}

	entries, err := h.api.GetEarnings(ctx, partnerID)
	if err != nil {
		logger.LogError(ctx, "Failed to fetch earnings", err, "partner_id", partnerID)
		respondUpstreamError(w, ctx, err)
		return
	}

	rows := make([]EarningRow, 0, len(entries))
	total := 0.0
	for _, entry := range entries {
		row := EarningRow{
			Entry:   entry,
			Earning: services.RowEarning(entry),
		}
		total += row.Earning

		if entry.HasRefund() {
			refund := services.RefundEarning(entry)
			row.RefundEarning = &refund
			total += refund
		}

		row.RunningTotal = total
		rows = append(rows, row)
	}

	respondJSON(w, ctx, http.StatusOK, APIResponse{
		Status: true,
		Data: map[string]interface{}{
			"entries": rows,
			"total":   total,
		},
	})
}
