package models

import "time"

// OrderItem is one booked service line on a customer order.
type OrderItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Qty   int    `json:"qty"`
	Price Money  `json:"price"`
}

// Order is the customer-facing counterpart of a Lead. It shares the same
// cost fields and status shape; AssignPartnerID and CancelByID gate the
// cancel/reschedule eligibility on the customer side.
type Order struct {
	ID              int64       `json:"id"`
	OrderStatus     StatusRef   `json:"order_status"`
	AssignPartnerID *int64      `json:"assign_partner_id"`
	CancelByID      *int64      `json:"cancel_by_id"`
	Price           Money       `json:"price"`
	Token           Money       `json:"token"`
	VisitingCost    Money       `json:"visiting_inspection_cost"`
	RepairCost      Money       `json:"repair_cost"`
	ConvenienceCost Money       `json:"convenience_cost"`
	TotalPrice      Money       `json:"total_price"`
	Items           []OrderItem `json:"items,omitempty"`
	BookedDate      string      `json:"booked_date,omitempty"`
	BookedSlot      string      `json:"booked_slot,omitempty"`
	CreatedAt       *time.Time  `json:"created_at,omitempty"`
}

// CancelledByCustomer reports whether the customer cancelled this order.
func (o *Order) CancelledByCustomer() bool {
	return o.CancelByID != nil
}

// RescheduleRequest carries the new date and slot for an order reschedule.
type RescheduleRequest struct {
	Date string `json:"date"`
	Slot string `json:"slot"`
}
