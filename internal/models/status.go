package models

// OrderStatus represents the canonical lifecycle stage of a booking.
// The same slug vocabulary is used for the overall order status and for
// the partner_job assignment status.
type OrderStatus string

const (
	// OrderStatusNewBooking indicates a freshly created booking not yet accepted by a partner
	OrderStatusNewBooking OrderStatus = "new-booking"

	// OrderStatusAccepted indicates a partner has accepted the job
	OrderStatusAccepted OrderStatus = "accepted"

	// OrderStatusRescheduled indicates the customer moved the booking to a new slot
	OrderStatusRescheduled OrderStatus = "rescheduled"

	// OrderStatusCompleted indicates the job was completed by the partner
	OrderStatusCompleted OrderStatus = "completed"

	// OrderStatusCancelled indicates the booking was cancelled
	OrderStatusCancelled OrderStatus = "cancelled"

	// OrderStatusCustomerDenied indicates the customer denied service after a technician visit
	OrderStatusCustomerDenied OrderStatus = "customer-denied-service"
)

// IsValid checks if the status is a known slug
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNewBooking, OrderStatusAccepted, OrderStatusRescheduled,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusCustomerDenied:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status represents a terminal state
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled || s == OrderStatusCustomerDenied
}

// StatusRef is the nested order_status object carried on leads and orders.
type StatusRef struct {
	Slug OrderStatus `json:"slug"`
}

// CompleteMode selects how a job completion is settled.
type CompleteMode string

const (
	// CompleteModeComplete settles the full job: services plus visiting, repair and convenience costs
	CompleteModeComplete CompleteMode = "complete"

	// CompleteModeCustomerDenied settles only the visiting & inspection cost
	CompleteModeCustomerDenied CompleteMode = "customer"
)

// IsValid checks if the mode is a known value
func (m CompleteMode) IsValid() bool {
	return m == CompleteModeComplete || m == CompleteModeCustomerDenied
}

// PaymentStatus is how the customer settled the receivable amount.
type PaymentStatus string

const (
	PaymentStatusCash   PaymentStatus = "Cash"
	PaymentStatusOnline PaymentStatus = "Online"
)

// IsValid checks if the payment status is a known value
func (p PaymentStatus) IsValid() bool {
	return p == PaymentStatusCash || p == PaymentStatusOnline
}
