package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*j = result
	return nil
}

// PartnerJob is the assignment record linking a lead to a specific partner.
// Its status tracks the assignment independently of the overall order status.
type PartnerJob struct {
	ID        int64       `json:"id"`
	PartnerID int64       `json:"partner_id"`
	Status    OrderStatus `json:"status"`
}

// ServiceLine is one line of the nested service breakdown on a lead.
type ServiceLine struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Qty   int    `json:"qty"`
	Price Money  `json:"price"`
}

// LeadBreakdown is the nested service breakdown attached to a lead.
// TotalServicePrice is authoritative; it is read, never recomputed from lines.
type LeadBreakdown struct {
	Services          []ServiceLine `json:"services"`
	TotalServicePrice Money         `json:"total_service_price"`
}

// Lead is a service job offered to partner technicians.
//
// A lead with a non-nil CancelByID is terminal: the customer cancelled and
// no further state-changing action is permitted, whatever the other fields
// say. All lead state lives on the marketplace; the gateway only holds
// transient copies refreshed after every mutating action.
type Lead struct {
	ID              int64          `json:"id"`
	PCID            int64          `json:"pcid"`
	AssignPartnerID *int64         `json:"assign_partner_id"`
	CancelByID      *int64         `json:"cancel_by_id"`
	OrderStatus     StatusRef      `json:"order_status"`
	PartnerJob      *PartnerJob    `json:"partner_job"`
	Price           Money          `json:"price"`
	Token           Money          `json:"token"`
	VisitingCost    Money          `json:"visiting_inspection_cost"`
	RepairCost      Money          `json:"repair_cost"`
	ConvenienceCost Money          `json:"convenience_cost"`
	TotalPrice      Money          `json:"total_price"`
	Data            *LeadBreakdown `json:"data"`
	BookedAt        *time.Time     `json:"booked_at,omitempty"`
}

// CancelledByCustomer reports whether the customer cancelled this lead.
func (l *Lead) CancelledByCustomer() bool {
	return l.CancelByID != nil
}

// TotalServicePrice returns the breakdown total, 0 when no breakdown exists.
func (l *Lead) TotalServicePrice() Money {
	if l.Data == nil {
		return 0
	}
	return l.Data.TotalServicePrice
}

// User is the authenticated actor evaluating or performing lead actions.
type User struct {
	ID                 int64 `json:"id"`
	IsAbleToAcceptLead bool  `json:"is_able_to_accept_lead"`
}

// CompleteLeadRequest carries user input for the job-completion flow.
//
// The cost fields are raw strings exactly as typed; the completion
// validator parses them before any upstream call is attempted. The value
// only exists to shape the outbound completion request and is discarded
// once the request resolves.
type CompleteLeadRequest struct {
	Service         CompleteMode  `json:"service"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	VisitingCost    string        `json:"visiting_cost"`
	RepairCost      string        `json:"repair_cost,omitempty"`
	ConvenienceCost string        `json:"convenience_cost,omitempty"`
}

// LeadSnapshot is the gateway's cached copy of upstream lead state,
// refreshed after every successful mutating action.
type LeadSnapshot struct {
	LeadID    int64       `json:"lead_id" db:"lead_id"`
	Status    OrderStatus `json:"status" db:"status"`
	Payload   JSONB       `json:"payload" db:"payload"`
	FetchedAt time.Time   `json:"fetched_at" db:"fetched_at"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// LeadAction names a mutating operation on a lead.
type LeadAction string

const (
	LeadActionAccept   LeadAction = "accept"
	LeadActionCancel   LeadAction = "cancel"
	LeadActionComplete LeadAction = "complete"
)

// ActionAttempt records a single invocation of a mutating action against
// the marketplace API, successful or not.
type ActionAttempt struct {
	ID             int64      `json:"id" db:"id"`
	LeadID         int64      `json:"lead_id" db:"lead_id"`
	Action         LeadAction `json:"action" db:"action"`
	RequestedAt    time.Time  `json:"requested_at" db:"requested_at"`
	ResponseStatus *int       `json:"response_status,omitempty" db:"response_status"`
	Message        *string    `json:"message,omitempty" db:"message"`
	Success        bool       `json:"success" db:"success"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// NewActionAttempt creates an attempt record for a lead action.
func NewActionAttempt(leadID int64, action LeadAction) *ActionAttempt {
	now := time.Now()
	return &ActionAttempt{
		LeadID:      leadID,
		Action:      action,
		RequestedAt: now,
		Success:     false,
		CreatedAt:   now,
	}
}

// MarkSuccess marks the attempt as accepted by the marketplace.
func (a *ActionAttempt) MarkSuccess(statusCode int, message string) {
	a.Success = true
	a.ResponseStatus = &statusCode
	if message != "" {
		a.Message = &message
	}
}

// MarkFailure marks the attempt as rejected or failed in transit.
func (a *ActionAttempt) MarkFailure(statusCode *int, message string) {
	a.Success = false
	a.ResponseStatus = statusCode
	a.Message = &message
}
