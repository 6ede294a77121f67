package models

// EarningEntry is a settled financial event for one booking, as returned
// by the marketplace earnings endpoint. Entries are read-only; the gateway
// derives per-row earnings and the running total but never mutates them.
type EarningEntry struct {
	ID              int64  `json:"id"`
	BookingID       int64  `json:"booking_id"`
	TotalPriceAfter Money  `json:"total_price_after"`
	Deduction       Money  `json:"deduction"`
	Token           Money  `json:"token"`
	ServiceCharge   Money  `json:"service_charge"`
	RefundID        *int64 `json:"refund_id"`
	RefundDeduction Money  `json:"refund_deduction"`
	RefundToken     Money  `json:"refund_token"`
	RefundAmount    Money  `json:"refund_amount"`
}

// HasRefund reports whether this entry carries a refund adjustment.
func (e *EarningEntry) HasRefund() bool {
	return e.RefundID != nil
}
