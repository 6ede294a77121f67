package services

import (
	"github.com/fixmate/go_booking/internal/models"
)

// Receivable computes the amount a partner expects to collect when
// completing a job, before the completion request is submitted.
//
// In customer-denied mode only the visiting & inspection cost is collected;
// in complete mode the breakdown total plus visiting, repair and
// convenience costs. Unparsable inputs coerce to 0.
func Receivable(req models.CompleteLeadRequest, totalServicePrice models.Money) float64 {
	visiting := models.ParseAmount(req.VisitingCost)

	if req.Service == models.CompleteModeCustomerDenied {
		return visiting
	}

	return totalServicePrice.Float() +
		visiting +
		models.ParseAmount(req.RepairCost) +
		models.ParseAmount(req.ConvenienceCost)
}

// RowEarning computes the settled earning for a single ledger entry:
// the post-completion price less platform deduction and token advance.
func RowEarning(entry models.EarningEntry) float64 {
	return entry.TotalPriceAfter.Float() - entry.Deduction.Float() - entry.Token.Float()
}

// RefundEarning computes the refund adjustment for an entry that carries a
// refund. It is reported separately, never folded silently into the row
// earning shown to the partner.
func RefundEarning(entry models.EarningEntry) float64 {
	return entry.RefundDeduction.Float() + entry.RefundToken.Float() - entry.RefundAmount.Float()
}

// RunningTotal folds the per-row earnings and refund adjustments across a
// ledger left to right, in list order.
func RunningTotal(entries []models.EarningEntry) float64 {
	total := 0.0
	for _, entry := range entries {
		total += RowEarning(entry)
		if entry.HasRefund() {
			total += RefundEarning(entry)
		}
	}
	return total
}
