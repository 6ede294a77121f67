package services

import (
	"github.com/fixmate/go_booking/internal/models"
)

// LeadActions is the resolved action set for a lead as seen by one actor.
// CancelEnabled is a sub-gate on the Cancel button: the button may be
// visible (ShowCancel) yet disabled while the order is not in an
// accepted/rescheduled stage.
type LeadActions struct {
	CancelledByCustomer bool `json:"cancelled_by_customer"`
	ShowAccept          bool `json:"show_accept"`
	ShowCancel          bool `json:"show_cancel"`
	CancelEnabled       bool `json:"cancel_enabled"`
	ShowFooter          bool `json:"show_footer"`
}

// ResolveLeadActions computes which actions the acting user may take on a
// lead. Pure computation, safe to re-run on every request.
//
// A customer cancellation (non-nil cancel_by_id) locks the lead out
// completely: the footer renders only the cancelled indicator. Otherwise a
// lead is acceptable when it is newly offered to this partner, re-offered
// after someone else's cancellation, or brand new and unassigned; it is
// cancellable only by the partner currently holding the accepted job.
//
// Accept and cancel are mutually exclusive by construction of the
// predicates. Malformed upstream data could in principle satisfy both; in
// that case cancel wins and accept is suppressed, so the resolution stays
// deterministic.
func ResolveLeadActions(lead *models.Lead, user *models.User) LeadActions {
	var actions LeadActions

	actions.CancelledByCustomer = lead.CancelledByCustomer()
	if actions.CancelledByCustomer {
		actions.ShowFooter = true
		return actions
	}

	canAccept := user != nil && user.IsAbleToAcceptLead
	pcidMismatch := user == nil || lead.PCID != user.ID
	notCancelled := lead.OrderStatus.Slug != models.OrderStatusCancelled

	if job := lead.PartnerJob; job != nil {
		if notCancelled && canAccept {
			switch {
			case job.Status == models.OrderStatusNewBooking && job.PartnerID == user.ID:
				// newly offered to this partner
				actions.ShowAccept = true
			case pcidMismatch && job.Status == models.OrderStatusCancelled && (user == nil || job.PartnerID != user.ID):
				// re-offered after being cancelled by someone else
				actions.ShowAccept = true
			}
		}

		if job.Status == models.OrderStatusAccepted && user != nil && job.PartnerID == user.ID {
			actions.ShowCancel = true
		}
	} else if notCancelled && canAccept {
		// brand-new unassigned lead
		actions.ShowAccept = true
	}

	// cancel takes precedence should upstream data ever satisfy both
	if actions.ShowAccept && actions.ShowCancel {
		actions.ShowAccept = false
	}

	actions.CancelEnabled = lead.OrderStatus.Slug == models.OrderStatusAccepted ||
		lead.OrderStatus.Slug == models.OrderStatusRescheduled

	actions.ShowFooter = actions.ShowAccept || actions.ShowCancel
	return actions
}

// OrderActions is the resolved action set for a customer order.
type OrderActions struct {
	CancelledByCustomer bool `json:"cancelled_by_customer"`
	ShowCancel          bool `json:"show_cancel"`
	ShowReschedule      bool `json:"show_reschedule"`
}

// ResolveOrderActions computes the customer-side actions for an order.
// Rescheduling is only permitted while the order is unassigned and not
// cancelled; a terminal order permits nothing.
func ResolveOrderActions(order *models.Order) OrderActions {
	var actions OrderActions

	actions.CancelledByCustomer = order.CancelledByCustomer()
	if actions.CancelledByCustomer || order.OrderStatus.Slug.IsTerminal() {
		return actions
	}

	actions.ShowCancel = true
	actions.ShowReschedule = order.AssignPartnerID == nil
	return actions
}
