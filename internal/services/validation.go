package services

import (
	"strconv"
	"strings"

	"github.com/fixmate/go_booking/internal/models"
)

// Validator validates completion requests before any upstream call is made.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCompleteRequest checks a completion request against the
// client-side rules. It returns a field-specific ValidationError on the
// first failure; the marketplace may still independently reject the
// request, and that rejection is surfaced as-is by the caller.
//
// visiting_cost must parse as a non-negative number in both modes. In
// complete mode repair_cost and convenience_cost must as well.
func (v *Validator) ValidateCompleteRequest(req models.CompleteLeadRequest) *models.ValidationError {
	if !req.Service.IsValid() {
		return models.NewValidationError("service", "service must be 'complete' or 'customer'")
	}

	if !req.PaymentStatus.IsValid() {
		return models.NewValidationError("payment_status", "payment status must be 'Cash' or 'Online'")
	}

	if err := validateCost("visiting_cost", "visiting cost", req.VisitingCost); err != nil {
		return err
	}

	if req.Service == models.CompleteModeComplete {
		if err := validateCost("repair_cost", "repair cost", req.RepairCost); err != nil {
			return err
		}
		if err := validateCost("convenience_cost", "convenience cost", req.ConvenienceCost); err != nil {
			return err
		}
	}

	return nil
}

// validateCost requires a parsable, non-negative amount.
func validateCost(field, display, value string) *models.ValidationError {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return models.NewValidationError(field, display+" is required")
	}

	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return models.NewValidationError(field, display+" must be a number")
	}

	if amount < 0 {
		return models.NewValidationError(field, display+" must not be negative")
	}

	return nil
}
