package ledger

import "github.com/bismi-foods/backoffice/internal/money"

// ComputeBalance derives a customer's outstanding position from their
// orders and manual adjustments. Orders stored as paid are excluded even
// when a residual balance remains; overpaid unpaid orders contribute
// negative amounts and net out against the rest. Empty inputs yield a
// zero balance.
func ComputeBalance(orders []Order, adjustments []Adjustment, customerID string) Balance {
	var orderDebt float64
	for _, o := range orders {
		if o.CustomerID != customerID || o.PaymentStatus == StatusPaid {
			continue
		}
		orderDebt = money.Round2(orderDebt + money.Round2(o.RemainingBalance()))
	}

	var adjustmentBalance float64
	for _, a := range adjustments {
		if a.CustomerID != customerID {
			continue
		}
		if a.Type == AdjustmentDebit {
			adjustmentBalance = money.Round2(adjustmentBalance + a.Amount)
		} else {
			adjustmentBalance = money.Round2(adjustmentBalance - a.Amount)
		}
	}

	return Balance{
		OrderDebt:         orderDebt,
		AdjustmentBalance: adjustmentBalance,
		TotalOwed:         money.Round2(orderDebt + adjustmentBalance),
	}
}
